package coords

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/soniakeys/meeus/v3/nutation"

	"github.com/star/skycore/internal/angle"
	"github.com/star/skycore/internal/vecmat"
)

// ErrUnsupportedFrame is returned for a Frame value outside the known set.
var ErrUnsupportedFrame = errors.New("unsupported frame")

// Frame identifies a reference frame.
type Frame int

const (
	// Fundamental is the J2000 mean equator and equinox, standing in for ICRS.
	Fundamental Frame = iota
	// Equatorial is the true equator and equinox of date.
	Equatorial
	// Ecliptic is the true ecliptic and equinox of date.
	Ecliptic
	// Galactic is the IAU 1958 galactic frame.
	Galactic
	// Horizon is the local frame: x north, y east, z zenith, azimuth
	// measured from north through east.
	Horizon
)

var frameNames = [...]string{"fundamental", "equatorial", "ecliptic", "galactic", "horizon"}

func (f Frame) String() string {
	if f < 0 || int(f) >= len(frameNames) {
		return fmt.Sprintf("Frame(%d)", int(f))
	}
	return frameNames[f]
}

// ParseFrame matches a frame name case-insensitively.
func ParseFrame(s string) (Frame, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range frameNames {
		if n == s {
			return Frame(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFrame, s)
}

// Obliquity returns the mean obliquity of the ecliptic in radians at
// Julian Ephemeris Date jed.
func Obliquity(jed float64) float64 {
	return nutation.MeanObliquity(jed).Rad()
}

// Nutation returns nutation in longitude and obliquity, in radians, from
// the full IAU 1980 series.
func Nutation(jed float64) (dpsi, deps float64) {
	Δψ, Δε := nutation.Nutation(jed)
	return Δψ.Rad(), Δε.Rad()
}

// PrecessionAngles returns the IAU 1976 equatorial precession angles
// zeta, z and theta in radians from J2000 to jed.
func PrecessionAngles(jed float64) (zeta, z, theta float64) {
	t := (jed - j2000) / 36525.0
	t2, t3 := t*t, t*t*t
	zeta = (2306.2181*t + 0.30188*t2 + 0.017998*t3) * angle.RadPerArcsec
	z = (2306.2181*t + 1.09468*t2 + 0.018203*t3) * angle.RadPerArcsec
	theta = (2004.3109*t - 0.42665*t2 - 0.041833*t3) * angle.RadPerArcsec
	return zeta, z, theta
}

// PrecessionMatrix rotates J2000 mean equatorial vectors to the mean
// equator and equinox of jed.
func PrecessionMatrix(jed float64) vecmat.Matrix {
	zeta, z, theta := PrecessionAngles(jed)
	return vecmat.Rotation(
		vecmat.Step{Axis: vecmat.AxisZ, Angle: zeta},
		vecmat.Step{Axis: vecmat.AxisY, Angle: theta},
		vecmat.Step{Axis: vecmat.AxisZ, Angle: z},
	)
}

// NutationMatrix rotates mean equatorial vectors of date to the true
// equator of date, given mean obliquity obq and the nutation angles.
func NutationMatrix(obq, dpsi, deps float64) vecmat.Matrix {
	return vecmat.Rotation(
		vecmat.Step{Axis: vecmat.AxisX, Angle: -obq},
		vecmat.Step{Axis: vecmat.AxisZ, Angle: dpsi},
		vecmat.Step{Axis: vecmat.AxisX, Angle: obq + deps},
	)
}

// EclipticMatrix rotates equatorial vectors to the ecliptic for obliquity eps.
func EclipticMatrix(eps float64) vecmat.Matrix {
	return vecmat.Elemental(vecmat.AxisX, -eps)
}

var galactic = vecmat.Matrix{
	{-0.054875539390, -0.873437104725, -0.483834991775},
	{+0.494109453633, -0.444829594298, +0.746982248696},
	{-0.867666135681, -0.198076389622, +0.455983794523},
}

// GalacticMatrix rotates J2000 equatorial vectors to galactic coordinates.
func GalacticMatrix() vecmat.Matrix { return galactic }

// HorizonMatrix rotates equatorial-of-date vectors into the horizon frame
// of an observer at local sidereal time lst and geodetic latitude lat.
func HorizonMatrix(lst, lat float64) vecmat.Matrix {
	m := vecmat.Rotation(
		vecmat.Step{Axis: vecmat.AxisZ, Angle: math.Pi - lst},
		vecmat.Step{Axis: vecmat.AxisY, Angle: lat - angle.HalfPi},
	)
	// Flip y so azimuth increases toward the east.
	m[1][0], m[1][1], m[1][2] = -m[1][0], -m[1][1], -m[1][2]
	return m
}
