// Package angle holds the angle type shared by the coordinate and event
// code, plus sexagesimal (degrees/hours, minutes, seconds) conversions.
// Unit scaling and display go through github.com/soniakeys/unit and
// github.com/soniakeys/sexagesimal.
package angle

import (
	"fmt"
	"math"

	sexa "github.com/soniakeys/sexagesimal"
	"github.com/soniakeys/unit"
)

// Conversion factors.
const (
	TwoPi          = 2 * math.Pi
	HalfPi         = math.Pi / 2
	RadPerDeg      = math.Pi / 180
	DegPerRad      = 180 / math.Pi
	RadPerHour     = math.Pi / 12
	HourPerRad     = 12 / math.Pi
	ArcsecPerRad   = 3600 * DegPerRad
	RadPerArcsec   = RadPerDeg / 3600
	RadPerArcmin   = RadPerDeg / 60
	SecondsPerHour = 3600.0
)

// Angle is an angle in radians.
type Angle float64

// FromDegrees converts degrees to an Angle.
func FromDegrees(deg float64) Angle { return Angle(unit.AngleFromDeg(deg)) }

// FromHours converts hours of right ascension (15 degrees each) to an Angle.
func FromHours(h float64) Angle { return Angle(unit.HourAngleFromHour(h)) }

// FromArcsec converts arcseconds to an Angle.
func FromArcsec(as float64) Angle { return Angle(unit.AngleFromSec(as)) }

// FromArcmin converts arcminutes to an Angle.
func FromArcmin(am float64) Angle { return Angle(unit.AngleFromMin(am)) }

// FromUnit converts a unit.Angle as returned by the meeus packages.
func FromUnit(a unit.Angle) Angle { return Angle(a) }

// Unit returns a as a unit.Angle.
func (a Angle) Unit() unit.Angle { return unit.Angle(a) }

// Rad returns a in radians.
func (a Angle) Rad() float64 { return float64(a) }

// Degrees returns a in degrees.
func (a Angle) Degrees() float64 { return unit.Angle(a).Deg() }

// Hours returns a in hours.
func (a Angle) Hours() float64 { return unit.Angle(a).HourAngle().Hour() }

// Arcsec returns a in arcseconds.
func (a Angle) Arcsec() float64 { return unit.Angle(a).Sec() }

// Arcmin returns a in arcminutes.
func (a Angle) Arcmin() float64 { return unit.Angle(a).Min() }

// Mod2Pi reduces a to [0, 2π).
func (a Angle) Mod2Pi() Angle { return Angle(unit.Angle(a).Mod1()) }

// ModPi reduces a to [-π, π).
func (a Angle) ModPi() Angle { return Angle(ModPi(float64(a))) }

// DMS returns a as signed degrees, minutes, seconds.
func (a Angle) DMS() DMS { return DMSFromDegrees(a.Degrees()) }

// HMS returns a as hours, minutes, seconds wrapped to [0, 24h).
func (a Angle) HMS() HMS { return HMSFromHours(a.Hours()) }

// FormatDMS renders a as degrees, minutes and seconds with prec decimals on
// the seconds, e.g. "-16°42′58.0″".
func (a Angle) FormatDMS(prec int) string {
	return fmt.Sprintf("%.*s", prec, sexa.FmtAngle(unit.Angle(a)))
}

// FormatHMS renders a as right ascension, e.g. "6ʰ45ᵐ08.9ˢ".
func (a Angle) FormatHMS(prec int) string {
	return fmt.Sprintf("%.*s", prec, sexa.FmtRA(unit.RAFromRad(float64(a))))
}

// Mod2Pi reduces radians to [0, 2π).
func Mod2Pi(r float64) float64 {
	return unit.PMod(r, TwoPi)
}

// ModPi reduces radians to [-π, π).
func ModPi(r float64) float64 {
	return Mod2Pi(r+math.Pi) - math.Pi
}

// Mod360 reduces degrees to [0, 360).
func Mod360(d float64) float64 {
	return unit.PMod(d, 360)
}

// Mod180 reduces degrees to [-180, 180).
func Mod180(d float64) float64 {
	return Mod360(d+180) - 180
}

// Mod24 reduces hours to [0, 24).
func Mod24(h float64) float64 {
	return unit.PMod(h, 24)
}

// Atan2Pos is math.Atan2 with the result in [0, 2π).
func Atan2Pos(y, x float64) float64 {
	return Mod2Pi(math.Atan2(y, x))
}

// Asin is math.Asin with its argument clamped to [-1, 1], so rounding noise
// just past ±1 does not produce NaN.
func Asin(x float64) float64 {
	return math.Asin(clamp(x))
}

// Acos is math.Acos with its argument clamped to [-1, 1].
func Acos(x float64) float64 {
	return math.Acos(clamp(x))
}

func clamp(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
