package exifmeta

import (
	"fmt"
	"math"
)

// Rational is an unsigned EXIF RATIONAL value.
type Rational struct {
	Num uint32
	Den uint32
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Float returns the value as a float64; a zero denominator yields 0.
func (r Rational) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// SignedRational is an EXIF SRATIONAL value.
type SignedRational struct {
	Num int32
	Den int32
}

func (r SignedRational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// ratioDenominator is the fixed denominator of legacy ratio encoding.
const ratioDenominator = 100

// ToRatio encodes v as trunc(v*100)/100. Precision below 1/100 is discarded and
// negative inputs clamp to zero.
func ToRatio(v float64) Rational {
	n := math.Trunc(v * ratioDenominator)
	if n < 0 || math.IsNaN(n) {
		n = 0
	}
	if n > math.MaxUint32 {
		n = math.MaxUint32
	}
	return Rational{Num: uint32(n), Den: ratioDenominator}
}

// ToSignedRatio is ToRatio for signed values.
func ToSignedRatio(v float64) SignedRational {
	n := math.Trunc(v * ratioDenominator)
	if math.IsNaN(n) {
		n = 0
	}
	n = math.Max(math.Min(n, math.MaxInt32), math.MinInt32)
	return SignedRational{Num: int32(n), Den: ratioDenominator}
}

// ToDMS converts decimal degrees to the degrees/minutes/seconds triple EXIF
// stores for GPS coordinates. Every step truncates: degrees = trunc(x),
// minutes = trunc(frac*60), seconds = trunc(rest*3600*100)/100. The sign of
// the input is dropped; callers carry it in the N/S or E/W reference tag.
func ToDMS(decimal float64) [3]Rational {
	decimal = math.Abs(decimal)
	degrees := math.Trunc(decimal)
	minutes := math.Trunc((decimal - degrees) * 60)
	seconds := math.Trunc((decimal - degrees - minutes/60) * 3600 * ratioDenominator)
	if seconds < 0 {
		seconds = 0
	}
	return [3]Rational{
		{Num: uint32(degrees), Den: 1},
		{Num: uint32(minutes), Den: 1},
		{Num: uint32(seconds), Den: ratioDenominator},
	}
}

// preciseDenominator bounds the precise encoding before GCD reduction.
const preciseDenominator = 10000

// ToPreciseRatio rounds v to the nearest 1/10000 and reduces the fraction.
func ToPreciseRatio(v float64) Rational {
	n := math.Round(v * preciseDenominator)
	if n < 0 || math.IsNaN(n) {
		n = 0
	}
	if n > math.MaxUint32 {
		n = math.MaxUint32
	}
	return reduce(uint32(n), preciseDenominator)
}

// ToPreciseSignedRatio is ToPreciseRatio for signed values.
func ToPreciseSignedRatio(v float64) SignedRational {
	n := math.Round(v * preciseDenominator)
	if math.IsNaN(n) {
		n = 0
	}
	n = math.Max(math.Min(n, math.MaxInt32), math.MinInt32)
	neg := n < 0
	r := reduce(uint32(math.Abs(n)), preciseDenominator)
	num := int32(r.Num)
	if neg {
		num = -num
	}
	return SignedRational{Num: num, Den: int32(r.Den)}
}

// ToPreciseDMS keeps whole degrees and minutes and rounds seconds to 1/10000.
func ToPreciseDMS(decimal float64) [3]Rational {
	decimal = math.Abs(decimal)
	degrees := math.Trunc(decimal)
	minutes := math.Trunc((decimal - degrees) * 60)
	seconds := (decimal - degrees - minutes/60) * 3600
	return [3]Rational{
		{Num: uint32(degrees), Den: 1},
		{Num: uint32(minutes), Den: 1},
		ToPreciseRatio(seconds),
	}
}

func reduce(num, den uint32) Rational {
	if num == 0 {
		return Rational{Num: 0, Den: 1}
	}
	a, b := num, den
	for b != 0 {
		a, b = b, a%b
	}
	return Rational{Num: num / a, Den: den / a}
}
