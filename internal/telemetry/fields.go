package telemetry

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Key names one telemetry token of a caption.
type Key string

const (
	KeyDate       Key = "date"
	KeyTime       Key = "time"
	KeyISO        Key = "iso"
	KeyShutter    Key = "shutter"
	KeyFNumber    Key = "fnum"
	KeyEV         Key = "ev"
	KeyColorTemp  Key = "ct"
	KeyColorMode  Key = "color_md"
	KeyFocalLen   Key = "focal_len"
	KeyDZoomRatio Key = "dzoom_ratio"
	KeyDZoomDelta Key = "dzoom_delta"
	KeyLatitude   Key = "latitude"
	KeyLongitude  Key = "longitude"
	KeyRelAlt     Key = "rel_alt"
	KeyAbsAlt     Key = "abs_alt"
)

// Keys lists every key in caption order.
var Keys = []Key{
	KeyDate, KeyTime, KeyISO, KeyShutter, KeyFNumber, KeyEV, KeyColorTemp,
	KeyColorMode, KeyFocalLen, KeyDZoomRatio, KeyDZoomDelta, KeyLatitude,
	KeyLongitude, KeyRelAlt, KeyAbsAlt,
}

// Fields is the flat mapping extracted from one caption. A key is present only
// when its token appeared in the caption; values are the captured substrings.
type Fields map[Key]string

// Has reports whether key was captured.
func (f Fields) Has(key Key) bool {
	_, ok := f[key]
	return ok
}

// Float parses a captured decimal value. ok is false when the key is absent.
func (f Fields) Float(key Key) (value float64, ok bool, err error) {
	raw, ok := f[key]
	if !ok {
		return 0, false, nil
	}
	value, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, true, fmt.Errorf("%s: parse %q: %w", key, raw, err)
	}
	return value, true, nil
}

// Int parses a captured integer value. ok is false when the key is absent.
func (f Fields) Int(key Key) (value int, ok bool, err error) {
	raw, ok := f[key]
	if !ok {
		return 0, false, nil
	}
	value, err = strconv.Atoi(raw)
	if err != nil {
		return 0, true, fmt.Errorf("%s: parse %q: %w", key, raw, err)
	}
	return value, true, nil
}

// Shutter is a shutter-speed token, either a fraction ("1/200") or a decimal
// ("0.005"). Den is 0 for decimal tokens.
type Shutter struct {
	Num     float64
	Den     float64
	Decimal float64
}

// Seconds returns the exposure time in seconds.
func (s Shutter) Seconds() float64 {
	if s.Den != 0 {
		return s.Num / s.Den
	}
	return s.Decimal
}

// IsFraction reports whether the token was written as a ratio.
func (s Shutter) IsFraction() bool {
	return s.Den != 0
}

// Shutter parses the shutter token.
func (f Fields) Shutter() (Shutter, bool, error) {
	raw, ok := f[KeyShutter]
	if !ok {
		return Shutter{}, false, nil
	}
	if num, den, found := strings.Cut(raw, "/"); found {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN != nil || errD != nil || d == 0 {
			return Shutter{}, true, fmt.Errorf("%s: invalid fraction %q", KeyShutter, raw)
		}
		return Shutter{Num: n, Den: d}, true, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Shutter{}, true, fmt.Errorf("%s: parse %q: %w", KeyShutter, raw, err)
	}
	return Shutter{Decimal: value}, true, nil
}

const captureLayout = "2006-01-02 15:04:05.000"

// CaptureTime combines the date and time tokens. ok is false unless both are
// present.
func (f Fields) CaptureTime() (time.Time, bool, error) {
	date, okDate := f[KeyDate]
	clock, okTime := f[KeyTime]
	if !okDate || !okTime {
		return time.Time{}, false, nil
	}
	// The time pattern accepts any separator before the milliseconds.
	if len(clock) == len("15:04:05.000") {
		clock = clock[:8] + "." + clock[9:]
	}
	ts, err := time.Parse(captureLayout, date+" "+clock)
	if err != nil {
		return time.Time{}, true, fmt.Errorf("capture time: %w", err)
	}
	return ts, true, nil
}

// SortedKeys returns the captured keys in caption order.
func (f Fields) SortedKeys() []Key {
	order := make(map[Key]int, len(Keys))
	for i, k := range Keys {
		order[k] = i
	}
	keys := make([]Key, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return order[keys[i]] < order[keys[j]] })
	return keys
}
