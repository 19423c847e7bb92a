package propagation

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/star/skycore/internal/astrotime"
	"github.com/star/skycore/internal/coords"
	"github.com/star/skycore/internal/tle"
	"github.com/star/skycore/internal/vecmat"
)

// SGP4 library choice: github.com/joshuaferrara/go-satellite
//
// Note: Propagate() takes Satellite by value so SGP4 error codes are not visible
// to the caller. We detect propagation failures by checking output for NaN/Inf
// and unreasonable position magnitudes. It also only accepts whole seconds;
// the fractional part is carried by the velocity (under 5 m of error in LEO).

// TEME is a state vector in the true-equator, mean-equinox frame SGP4
// works in, in km and km/s.
type TEME struct {
	Pos vecmat.Vector
	Vel vecmat.Vector
}

// SGP4Propagator wraps the go-satellite library for a single satellite.
type SGP4Propagator struct {
	sat     satellite.Satellite
	noradID int
}

// NewSGP4Propagator creates an SGP4 propagator for a parsed element set.
// Returns an error if the SGP4 model fails to initialize.
//
// Pre-validates TLE format before passing to the library, because go-satellite
// calls log.Fatal on malformed input (which would kill the process).
func NewSGP4Propagator(e tle.TLEEntry) (*SGP4Propagator, error) {
	if err := validateTLELines(e.Line1, e.Line2); err != nil {
		return nil, fmt.Errorf("invalid TLE for NORAD %d: %w", e.NORADID, err)
	}

	sat := satellite.TLEToSat(e.Line1, e.Line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed for NORAD %d: code=%d %s", e.NORADID, sat.Error, sat.ErrorStr)
	}
	return &SGP4Propagator{sat: sat, noradID: e.NORADID}, nil
}

// validateTLELines performs basic format validation on TLE lines.
func validateTLELines(line1, line2 string) error {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if len(line1) < 68 || len(line1) > 69 {
		return fmt.Errorf("line1 length %d, expected 68 or 69", len(line1))
	}
	if len(line2) < 68 || len(line2) > 69 {
		return fmt.Errorf("line2 length %d, expected 68 or 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got '%c'", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got '%c'", line2[0])
	}
	return nil
}

// NORADID returns the catalog number the propagator was built for.
func (p *SGP4Propagator) NORADID() int { return p.noradID }

// Propagate computes the satellite state at t.
func (p *SGP4Propagator) Propagate(t time.Time) (TEME, error) {
	t = t.UTC()
	whole := t.Truncate(time.Second)
	frac := t.Sub(whole).Seconds()

	pos, vel := satellite.Propagate(p.sat, whole.Year(), int(whole.Month()), whole.Day(),
		whole.Hour(), whole.Minute(), whole.Second())

	// Detect propagation failures via NaN/Inf check.
	for _, c := range []float64{pos.X, pos.Y, pos.Z, vel.X, vel.Y, vel.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return TEME{}, fmt.Errorf("sgp4 propagation failed for NORAD %d: output is NaN/Inf", p.noradID)
		}
	}

	// Sanity check: position magnitude should be between ~6200km and ~50000km.
	mag := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
	if mag < 6200.0 || mag > 50000.0 {
		return TEME{}, fmt.Errorf("sgp4 propagation failed for NORAD %d: unreasonable position magnitude %.1f km", p.noradID, mag)
	}

	v := vecmat.Vector{X: vel.X, Y: vel.Y, Z: vel.Z}
	return TEME{
		Pos: vecmat.Vector{X: pos.X, Y: pos.Y, Z: pos.Z}.Add(v.Scale(frac)),
		Vel: v,
	}, nil
}

// PropagateJD is Propagate at a UTC Julian Date.
func (p *SGP4Propagator) PropagateJD(jd float64) (TEME, error) {
	return p.Propagate(astrotime.New(jd, 0).GoTime())
}

// Fundamental converts a geocentric TEME state to the J2000 equatorial
// frame of c, in AU and AU/day. TEME differs from the true equator of date
// by the equation of the equinoxes.
func (s TEME) Fundamental(c *coords.Coordinates) (pos, vel vecmat.Vector) {
	dpsi, deps := c.Nutation()
	eqeq := dpsi * math.Cos(c.Obliquity()+deps)
	m := c.EquatorialMatrix().Transpose().Mul(vecmat.Elemental(vecmat.AxisZ, eqeq))
	pos = m.Apply(s.Pos).Scale(1 / coords.KmPerAU)
	vel = m.Apply(s.Vel).Scale(astrotime.SecondsPerDay / coords.KmPerAU)
	return pos, vel
}

// Geodetic returns the sub-satellite longitude and latitude (radians,
// longitude in [-π, π)) and height in km at UTC time t.
func (s TEME) Geodetic(t astrotime.Time) (lon, lat, alt float64) {
	gmst := t.SiderealTime(0)
	ecef := vecmat.Elemental(vecmat.AxisZ, -gmst).Apply(s.Pos)
	lon, lat, alt, _ = coords.ToGeodetic(ecef, coords.KmPerEarthRadius, coords.EarthFlattening, 10)
	if lon >= math.Pi {
		lon -= 2 * math.Pi
	}
	return lon, lat, alt
}

// LookAngles returns the azimuth east of north and elevation (radians,
// unrefracted) and the range in km of the satellite from c's observer. c
// must have no ephemeris so that its observer position is geocentric.
func (s TEME) LookAngles(c *coords.Coordinates) (az, el, rangeKm float64, err error) {
	if c.Ephemeris() != nil {
		return 0, 0, 0, errors.New("look angles need a geocentric observer")
	}
	obs, err := c.ObserverPosition()
	if err != nil {
		return 0, 0, 0, err
	}
	pos, _ := s.Fundamental(c)
	rel := pos.Sub(obs)
	hor, err := c.Transform(coords.Fundamental, coords.Horizon, rel)
	if err != nil {
		return 0, 0, 0, err
	}
	sph := hor.ToSpherical()
	return sph.Lon, sph.Lat, rel.Magnitude() * coords.KmPerAU, nil
}
