// Package astrotime represents moments as Julian Dates with a local zone
// offset and converts them to and from civil calendar dates.
package astrotime

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/unit"
)

// Epochs and unit conversions.
const (
	J2000 = 2451545.0 // 2000 Jan 1.5 TT
	J1970 = 2440587.5 // Unix epoch
	B1900 = 2415020.3135

	SecondsPerDay        = 86400.0
	DaysPerJulianYear    = 365.25
	DaysPerJulianCentury = 36525.0
	DaysPerBesselianYear = 365.242198781

	// SiderealPerSolarDays is the ratio of sidereal to solar day lengths.
	SiderealPerSolarDays = 1.00273790934
)

// Time is a moment expressed as a UTC Julian Date plus the local zone
// offset used when the moment is shown as a calendar date.
type Time struct {
	JD   float64 // Julian Date, UTC
	Zone float64 // hours east of Greenwich
}

// New returns a Time at the given Julian Date and zone.
func New(jd, zone float64) Time {
	return Time{JD: jd, Zone: zone}
}

// Now reads the system clock once and returns the current moment with the
// system's local zone offset.
func Now() Time {
	return FromGoTime(time.Now())
}

// FromGoTime converts a time.Time. The zone is taken from t's location.
func FromGoTime(t time.Time) Time {
	_, offset := t.Zone()
	sec := float64(t.Unix()) + float64(t.Nanosecond())/1e9
	return Time{
		JD:   J1970 + sec/SecondsPerDay,
		Zone: float64(offset) / 3600.0,
	}
}

// GoTime converts to a time.Time in a fixed zone matching t.Zone.
func (t Time) GoTime() time.Time {
	sec := (t.JD - J1970) * SecondsPerDay
	whole := math.Floor(sec)
	nsec := math.Round((sec - whole) * 1e9)
	loc := time.FixedZone("", int(math.Round(t.Zone*3600)))
	return time.Unix(int64(whole), int64(nsec)).In(loc)
}

// FromUnixTime returns the UTC moment sec seconds after 1970 Jan 1.0.
func FromUnixTime(sec float64) Time {
	return Time{JD: J1970 + sec/SecondsPerDay}
}

// UnixTime returns seconds since 1970 Jan 1.0 UTC.
func (t Time) UnixTime() float64 {
	return (t.JD - J1970) * SecondsPerDay
}

// FromJulianYear returns the UTC moment at the given Julian epoch, e.g. 2000.0.
func FromJulianYear(year float64) Time {
	return Time{JD: J2000 + DaysPerJulianYear*(year-2000.0)}
}

// FromBesselianYear returns the UTC moment at the given Besselian epoch, e.g. 1950.0.
func FromBesselianYear(year float64) Time {
	return Time{JD: B1900 + DaysPerBesselianYear*(year-1900.0)}
}

// JulianYear returns the Julian epoch of t.
func (t Time) JulianYear() float64 {
	return (t.JD-J2000)/DaysPerJulianYear + 2000.0
}

// BesselianYear returns the Besselian epoch of t.
func (t Time) BesselianYear() float64 {
	return (t.JD-B1900)/DaysPerBesselianYear + 1900.0
}

// Add returns t shifted by days. The zone is kept.
func (t Time) Add(days float64) Time {
	return Time{JD: t.JD + days, Zone: t.Zone}
}

// Sub returns t - u in days.
func (t Time) Sub(u Time) float64 {
	return t.JD - u.JD
}

// Before reports whether t is earlier than u.
func (t Time) Before(u Time) bool {
	return t.JD < u.JD
}

// After reports whether t is later than u.
func (t Time) After(u Time) bool {
	return t.JD > u.JD
}

// Weekday returns the local day of the week, 0 = Sunday.
func (t Time) Weekday() int {
	d := int64(math.Floor(t.JD + t.Zone/24.0 + 0.5))
	d = (d + 1) % 7
	if d < 0 {
		d += 7
	}
	return int(d)
}

// LocalMidnight returns the moment that starts t's local calendar day.
func (t Time) LocalMidnight() Time {
	jd0 := math.Floor(t.JD-0.5+t.Zone/24.0) + 0.5 - t.Zone/24.0
	return Time{JD: jd0, Zone: t.Zone}
}

// JED returns the Julian Ephemeris Date (TT) for t.
func (t Time) JED() float64 {
	return JulianEphemerisDate(t)
}

// JulianEphemerisDate applies the DeltaT model to t's UTC Julian Date.
func JulianEphemerisDate(t Time) float64 {
	return t.JD + DeltaT(t.JD)/SecondsPerDay
}

// SiderealTime returns local mean sidereal time in radians, [0, 2π), at
// east longitude lon (radians). Pass 0 for Greenwich.
func (t Time) SiderealTime(lon float64) float64 {
	return unit.PMod(sidereal.Mean(t.JD).Rad()+lon, 2*math.Pi)
}

// SiderealTime returns local apparent sidereal time at east longitude lon,
// adding the equation of the equinoxes dpsi*cos(eps) to the mean value.
// dpsi is nutation in longitude and eps the true obliquity, both radians.
func SiderealTime(t Time, lon, dpsi, eps float64) float64 {
	return t.SiderealTime(lon + dpsi*math.Cos(eps))
}
