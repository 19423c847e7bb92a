package angle

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/soniakeys/unit"
)

// ErrParse is returned for malformed sexagesimal strings. Parsing never
// falls back to a zero angle.
var ErrParse = errors.New("malformed sexagesimal string")

// DMS is a signed angle in degrees, arcminutes and arcseconds.
type DMS struct {
	Sign byte // '+' or '-'
	Deg  int
	Min  int
	Sec  float64
}

// HMS is an angle in hours, minutes and seconds of time, in [0, 24h).
type HMS struct {
	Hour int
	Min  int
	Sec  float64
}

// DMSFromAngle splits a into degrees, minutes, seconds.
func DMSFromAngle(a Angle) DMS { return DMSFromDegrees(a.Degrees()) }

// DMSFromDegrees splits decimal degrees into degrees, minutes, seconds.
func DMSFromDegrees(deg float64) DMS {
	d := DMS{Sign: '+'}
	if deg < 0 || (deg == 0 && math.Signbit(deg)) {
		d.Sign = '-'
	}
	deg = math.Abs(deg)
	d.Deg = int(deg)
	d.Min = int(60 * (deg - float64(d.Deg)))
	d.Sec = 3600 * (deg - float64(d.Deg) - float64(d.Min)/60)
	return d
}

// Degrees returns d in decimal degrees.
func (d DMS) Degrees() float64 {
	return unit.FromSexa(d.Sign, d.Deg, d.Min, d.Sec)
}

// Angle returns d in radians.
func (d DMS) Angle() Angle {
	return Angle(unit.NewAngle(d.Sign, d.Deg, d.Min, d.Sec))
}

// String formats d as "+DD MM SS.S". Seconds that round up to 60 carry into
// the minutes and degrees.
func (d DMS) String() string {
	deg, min := d.Deg, d.Min
	sec := math.Round(d.Sec*10) / 10
	if sec >= 60 {
		sec -= 60
		min++
	}
	if min >= 60 {
		min -= 60
		deg++
	}
	return fmt.Sprintf("%c%02d %02d %04.1f", d.Sign, deg, min, sec)
}

// ParseDMS parses "DD MM SS.S", "DD MM.M" or "DD.D". A sign is allowed on
// the first field only, and "-00 30" parses as -0.5 degrees.
func ParseDMS(s string) (DMS, error) {
	deg, err := parseSexagesimal(s)
	if err != nil {
		return DMS{}, err
	}
	return DMSFromDegrees(deg), nil
}

// HMSFromAngle splits a into hours, minutes, seconds wrapped to [0, 24h).
func HMSFromAngle(a Angle) HMS { return HMSFromHours(a.Hours()) }

// HMSFromHours splits decimal hours into hours, minutes, seconds after
// reducing to [0, 24).
func HMSFromHours(hours float64) HMS {
	hours = Mod24(hours)
	h := HMS{Hour: int(hours)}
	h.Min = int(60 * (hours - float64(h.Hour)))
	h.Sec = 3600 * (hours - float64(h.Hour) - float64(h.Min)/60)
	return h
}

// Hours returns h in decimal hours.
func (h HMS) Hours() float64 {
	return unit.FromSexa(0, h.Hour, h.Min, h.Sec)
}

// Angle returns h in radians, wrapped to [0, 2π).
func (h HMS) Angle() Angle {
	return Angle(unit.NewRA(h.Hour, h.Min, h.Sec))
}

// String formats h as "HH MM SS.SS".
func (h HMS) String() string {
	hour, min := h.Hour, h.Min
	sec := math.Round(h.Sec*100) / 100
	if sec >= 60 {
		sec -= 60
		min++
	}
	if min >= 60 {
		min -= 60
		hour++
	}
	if hour >= 24 {
		hour -= 24
	}
	return fmt.Sprintf("%02d %02d %05.2f", hour, min, sec)
}

// ParseHMS parses "HH MM SS.SS", "HH MM.M" or "HH.H" and wraps the result
// to [0, 24h).
func ParseHMS(s string) (HMS, error) {
	hours, err := parseSexagesimal(s)
	if err != nil {
		return HMS{}, err
	}
	return HMSFromHours(hours), nil
}

// parseSexagesimal reads one to three whitespace separated fields and
// returns |first| + second/60 + third/3600, negated when the first field
// carries a minus sign.
func parseSexagesimal(s string) (float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 3 {
		return 0, fmt.Errorf("%w: %q: want 1 to 3 fields", ErrParse, s)
	}

	var vals [3]float64
	for i, f := range fields {
		if i > 0 && (strings.HasPrefix(f, "-") || strings.HasPrefix(f, "+")) {
			return 0, fmt.Errorf("%w: %q: sign on field %d", ErrParse, s, i+1)
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: %q: field %q", ErrParse, s, f)
		}
		if i > 0 && v >= 60 {
			return 0, fmt.Errorf("%w: %q: field %q not below 60", ErrParse, s, f)
		}
		vals[i] = v
	}

	v := math.Abs(vals[0]) + vals[1]/60 + vals[2]/3600
	if strings.HasPrefix(fields[0], "-") {
		v = -v
	}
	return v, nil
}
