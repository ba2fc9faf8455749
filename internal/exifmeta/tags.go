package exifmeta

import (
	"fmt"
	"math"

	"geotag/internal/telemetry"
)

// Encoding selects how decimal telemetry values become EXIF rationals.
type Encoding string

const (
	// EncodingLegacy truncates to a fixed 1/100 denominator.
	EncodingLegacy Encoding = "legacy"
	// EncodingPrecise keeps shutter fractions exact and rounds decimals at 1/10000.
	EncodingPrecise Encoding = "precise"
)

// Camera holds the IFD0 identification strings.
type Camera struct {
	Make     string
	Model    string
	Software string
}

// BuildOptions controls Build.
type BuildOptions struct {
	Camera   Camera
	Encoding Encoding
	// AltitudeKey selects the caption field written as GPSAltitude.
	AltitudeKey telemetry.Key
}

// GPS holds the GPS IFD values. Coordinates are only set as a pair.
type GPS struct {
	HasPosition  bool
	LatitudeRef  string
	Latitude     [3]Rational
	LongitudeRef string
	Longitude    [3]Rational
	HasAltitude  bool
	AltitudeRef  byte
	Altitude     Rational
}

// Tags is the typed tag set written into one frame. Nil pointers are omitted.
type Tags struct {
	Make     string
	Model    string
	Software string

	ExposureTime     *Rational
	ISO              *uint16
	FNumber          *Rational
	ExposureBias     *SignedRational
	FocalLength      *Rational
	DateTimeOriginal string
	GPS              GPS
}

// Build converts a caption's telemetry into EXIF tags. The first malformed
// value aborts the build with an error naming the field.
func Build(fields telemetry.Fields, opts BuildOptions) (Tags, error) {
	tags := Tags{
		Make:     opts.Camera.Make,
		Model:    opts.Camera.Model,
		Software: opts.Camera.Software,
	}
	precise := opts.Encoding == EncodingPrecise
	ratio := ToRatio
	signed := ToSignedRatio
	dms := ToDMS
	if precise {
		ratio = ToPreciseRatio
		signed = ToPreciseSignedRatio
		dms = ToPreciseDMS
	}

	lat, hasLat, err := fields.Float(telemetry.KeyLatitude)
	if err != nil {
		return Tags{}, err
	}
	lon, hasLon, err := fields.Float(telemetry.KeyLongitude)
	if err != nil {
		return Tags{}, err
	}
	if hasLat && hasLon {
		tags.GPS.HasPosition = true
		tags.GPS.LatitudeRef = "N"
		if lat < 0 {
			tags.GPS.LatitudeRef = "S"
		}
		tags.GPS.Latitude = dms(lat)
		tags.GPS.LongitudeRef = "E"
		if lon < 0 {
			tags.GPS.LongitudeRef = "W"
		}
		tags.GPS.Longitude = dms(lon)
	}

	altKey := opts.AltitudeKey
	if altKey == "" {
		altKey = telemetry.KeyRelAlt
	}
	alt, hasAlt, err := fields.Float(altKey)
	if err != nil {
		return Tags{}, err
	}
	if hasAlt {
		tags.GPS.HasAltitude = true
		if alt < 0 {
			tags.GPS.AltitudeRef = 1
		}
		tags.GPS.Altitude = ratio(math.Abs(alt))
	}

	shutter, hasShutter, err := fields.Shutter()
	if err != nil {
		return Tags{}, err
	}
	if hasShutter {
		var r Rational
		if precise && shutter.IsFraction() && isWhole(shutter.Num) && isWhole(shutter.Den) {
			r = reduce(uint32(shutter.Num), uint32(shutter.Den))
		} else {
			r = ratio(shutter.Seconds())
		}
		tags.ExposureTime = &r
	}

	iso, hasISO, err := fields.Int(telemetry.KeyISO)
	if err != nil {
		return Tags{}, err
	}
	if hasISO {
		if iso < 0 || iso > math.MaxUint16 {
			return Tags{}, fmt.Errorf("%s: %d out of range", telemetry.KeyISO, iso)
		}
		v := uint16(iso)
		tags.ISO = &v
	}

	if fnum, ok, err := fields.Float(telemetry.KeyFNumber); err != nil {
		return Tags{}, err
	} else if ok {
		r := ratio(fnum)
		tags.FNumber = &r
	}

	if ev, ok, err := fields.Float(telemetry.KeyEV); err != nil {
		return Tags{}, err
	} else if ok {
		r := signed(ev)
		tags.ExposureBias = &r
	}

	if focal, ok, err := fields.Float(telemetry.KeyFocalLen); err != nil {
		return Tags{}, err
	} else if ok {
		r := ratio(focal)
		tags.FocalLength = &r
	}

	if ts, ok, err := fields.CaptureTime(); err != nil {
		return Tags{}, err
	} else if ok {
		tags.DateTimeOriginal = ts.Format("2006:01:02 15:04:05")
	}

	return tags, nil
}

func isWhole(v float64) bool {
	return v >= 0 && v <= math.MaxUint32 && v == math.Trunc(v)
}
