package exifmeta

import (
	"errors"
	"fmt"
	"os"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

// ErrNoExif reports an image without an EXIF block.
var ErrNoExif = errors.New("no exif data")

// Entry is one decoded tag.
type Entry struct {
	IFD   string
	Tag   string
	Value string
	Raw   any
}

// Read decodes the EXIF block of the image at path into flat entries.
func Read(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	return Decode(data)
}

// Decode decodes the EXIF block embedded in image bytes.
func Decode(data []byte) ([]Entry, error) {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return nil, ErrNoExif
		}
		return nil, fmt.Errorf("locate exif: %w", err)
	}
	tags, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil, fmt.Errorf("decode exif: %w", err)
	}
	entries := make([]Entry, 0, len(tags))
	for _, tag := range tags {
		if tag.ChildIfdPath != "" {
			continue
		}
		entries = append(entries, Entry{
			IFD:   tag.IfdPath,
			Tag:   tag.TagName,
			Value: tag.Formatted,
			Raw:   tag.Value,
		})
	}
	return entries, nil
}

// Find returns the first entry named tag.
func Find(entries []Entry, tag string) (Entry, bool) {
	for _, e := range entries {
		if e.Tag == tag {
			return e, true
		}
	}
	return Entry{}, false
}

// RationalsOf converts a decoded RATIONAL tag value.
func RationalsOf(e Entry) ([]Rational, bool) {
	values, ok := e.Raw.([]exifcommon.Rational)
	if !ok {
		return nil, false
	}
	out := make([]Rational, len(values))
	for i, v := range values {
		out[i] = Rational{Num: v.Numerator, Den: v.Denominator}
	}
	return out, true
}

// SignedRationalsOf converts a decoded SRATIONAL tag value.
func SignedRationalsOf(e Entry) ([]SignedRational, bool) {
	values, ok := e.Raw.([]exifcommon.SignedRational)
	if !ok {
		return nil, false
	}
	out := make([]SignedRational, len(values))
	for i, v := range values {
		out[i] = SignedRational{Num: v.Numerator, Den: v.Denominator}
	}
	return out, true
}

// ShortsOf converts a decoded SHORT tag value.
func ShortsOf(e Entry) ([]uint16, bool) {
	values, ok := e.Raw.([]uint16)
	return values, ok
}
