package exifmeta

import (
	"bytes"
	"fmt"
	"os"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
)

const (
	ifdExifPath = "IFD/Exif"
	ifdGPSPath  = "IFD/GPSInfo"
)

// Write inserts tags into the JPEG at path, rewriting the file in place. An
// existing EXIF block is kept and updated; otherwise a new one is created.
func Write(path string, tags Tags) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	updated, err := Embed(data, tags)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat image: %w", err)
	}
	if err := os.WriteFile(path, updated, info.Mode().Perm()); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}

// Embed returns jpegData with tags inserted into its APP1 EXIF segment.
func Embed(jpegData []byte, tags Tags) ([]byte, error) {
	parser := jpegstructure.NewJpegMediaParser()
	mc, err := parser.ParseBytes(jpegData)
	if err != nil {
		return nil, fmt.Errorf("parse jpeg: %w", err)
	}
	sl, ok := mc.(*jpegstructure.SegmentList)
	if !ok {
		return nil, fmt.Errorf("parse jpeg: unexpected media context %T", mc)
	}

	rootIb, err := sl.ConstructExifBuilder()
	if err != nil {
		if rootIb, err = newRootBuilder(); err != nil {
			return nil, err
		}
	}

	if err := applyTags(rootIb, tags); err != nil {
		return nil, err
	}
	if err := sl.SetExif(rootIb); err != nil {
		return nil, fmt.Errorf("set exif: %w", err)
	}

	var buf bytes.Buffer
	if err := sl.Write(&buf); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func newRootBuilder() (*exif.IfdBuilder, error) {
	im := exifcommon.NewIfdMapping()
	if err := exifcommon.LoadStandardIfds(im); err != nil {
		return nil, fmt.Errorf("load ifd mapping: %w", err)
	}
	ti := exif.NewTagIndex()
	return exif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder), nil
}

type tagSetter struct {
	ib  *exif.IfdBuilder
	ifd string
	err error
}

func (s *tagSetter) set(name string, value any) {
	if s.err != nil {
		return
	}
	if err := s.ib.SetStandardWithName(name, value); err != nil {
		s.err = fmt.Errorf("set %s/%s: %w", s.ifd, name, err)
	}
}

func applyTags(rootIb *exif.IfdBuilder, tags Tags) error {
	root := &tagSetter{ib: rootIb, ifd: "IFD0"}
	if tags.Make != "" {
		root.set("Make", tags.Make)
	}
	if tags.Model != "" {
		root.set("Model", tags.Model)
	}
	if tags.Software != "" {
		root.set("Software", tags.Software)
	}
	if root.err != nil {
		return root.err
	}

	exifIb, err := exif.GetOrCreateIbFromRootIb(rootIb, ifdExifPath)
	if err != nil {
		return fmt.Errorf("exif ifd: %w", err)
	}
	sub := &tagSetter{ib: exifIb, ifd: ifdExifPath}
	if tags.ExposureTime != nil {
		sub.set("ExposureTime", rationals(*tags.ExposureTime))
	}
	if tags.ISO != nil {
		sub.set("ISOSpeedRatings", []uint16{*tags.ISO})
	}
	if tags.FNumber != nil {
		sub.set("FNumber", rationals(*tags.FNumber))
	}
	if tags.ExposureBias != nil {
		sub.set("ExposureBiasValue", []exifcommon.SignedRational{{
			Numerator:   tags.ExposureBias.Num,
			Denominator: tags.ExposureBias.Den,
		}})
	}
	if tags.FocalLength != nil {
		sub.set("FocalLength", rationals(*tags.FocalLength))
	}
	if tags.DateTimeOriginal != "" {
		sub.set("DateTimeOriginal", tags.DateTimeOriginal)
	}
	if sub.err != nil {
		return sub.err
	}

	if !tags.GPS.HasPosition && !tags.GPS.HasAltitude {
		return nil
	}
	gpsIb, err := exif.GetOrCreateIbFromRootIb(rootIb, ifdGPSPath)
	if err != nil {
		return fmt.Errorf("gps ifd: %w", err)
	}
	gps := &tagSetter{ib: gpsIb, ifd: ifdGPSPath}
	if tags.GPS.HasPosition {
		gps.set("GPSLatitudeRef", tags.GPS.LatitudeRef)
		gps.set("GPSLatitude", rationals(tags.GPS.Latitude[:]...))
		gps.set("GPSLongitudeRef", tags.GPS.LongitudeRef)
		gps.set("GPSLongitude", rationals(tags.GPS.Longitude[:]...))
	}
	if tags.GPS.HasAltitude {
		gps.set("GPSAltitudeRef", []byte{tags.GPS.AltitudeRef})
		gps.set("GPSAltitude", rationals(tags.GPS.Altitude))
	}
	return gps.err
}

func rationals(values ...Rational) []exifcommon.Rational {
	out := make([]exifcommon.Rational, len(values))
	for i, v := range values {
		out[i] = exifcommon.Rational{Numerator: v.Num, Denominator: v.Den}
	}
	return out
}
