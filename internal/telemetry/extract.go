package telemetry

import "regexp"

type pattern struct {
	re   *regexp.Regexp
	keys []Key
}

// patterns mirror the bracketed tokens DJI writes into its per-frame SRT
// captions, e.g. "[iso : 100] [shutter : 1/200.0] [latitude: 12.500000]".
var patterns = []pattern{
	{regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`), []Key{KeyDate}},
	{regexp.MustCompile(`(\d{2}:\d{2}:\d{2}.\d{3})`), []Key{KeyTime}},
	{regexp.MustCompile(`\[iso : (\d+)\]`), []Key{KeyISO}},
	{regexp.MustCompile(`\[shutter : ([\d/.]+)\]`), []Key{KeyShutter}},
	{regexp.MustCompile(`\[fnum : (\d+)\]`), []Key{KeyFNumber}},
	{regexp.MustCompile(`\[ev : ([\d.+-]+)\]`), []Key{KeyEV}},
	{regexp.MustCompile(`\[ct : (\d+)\]`), []Key{KeyColorTemp}},
	{regexp.MustCompile(`\[color_md : (\w+)\]`), []Key{KeyColorMode}},
	{regexp.MustCompile(`\[focal_len : (\d+)\]`), []Key{KeyFocalLen}},
	{regexp.MustCompile(`\[dzoom_ratio: (\d+), delta:(\d+)\]`), []Key{KeyDZoomRatio, KeyDZoomDelta}},
	{regexp.MustCompile(`\[latitude: ([\d.+-]+)\]`), []Key{KeyLatitude}},
	{regexp.MustCompile(`\[longitude: ([\d.+-]+)\]`), []Key{KeyLongitude}},
	{regexp.MustCompile(`\[rel_alt: ([\d.+-]+)\]`), []Key{KeyRelAlt}},
	{regexp.MustCompile(`\[abs_alt: ([\d.+-]+)\]`), []Key{KeyAbsAlt}},
}

// Extract applies every token pattern to the caption text. The first match of
// each pattern wins; fields whose token is absent are omitted.
func Extract(text string) Fields {
	fields := make(Fields)
	for _, p := range patterns {
		match := p.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		for i, key := range p.keys {
			fields[key] = match[i+1]
		}
	}
	return fields
}
