package coords

import (
	"math"

	"github.com/star/skycore/internal/vecmat"
)

// ToGeocentric converts geodetic longitude and latitude (radians) and
// height alt above an ellipsoid with equatorial radius a and flattening f
// to a rectangular position in the units of a and alt.
func ToGeocentric(lon, lat, alt, a, f float64) vecmat.Vector {
	cp, sp := math.Cos(lat), math.Sin(lat)
	ff := (1 - f) * (1 - f)
	c := 1 / math.Sqrt(cp*cp+ff*sp*sp)
	s := ff * c
	return vecmat.Vector{
		X: (a*c + alt) * cp * math.Cos(lon),
		Y: (a*c + alt) * cp * math.Sin(lon),
		Z: (a*s + alt) * sp,
	}
}

const geodeticTolerance = 1e-8

// ToGeodetic inverts ToGeocentric by fixed-point iteration on latitude.
// It stops after maxIter passes and reports whether the last change was
// within 1e-8 radians.
func ToGeodetic(v vecmat.Vector, a, f float64, maxIter int) (lon, lat, alt float64, converged bool) {
	e2 := 2*f - f*f
	r := math.Hypot(v.X, v.Y)
	lon = math.Atan2(v.Y, v.X)
	if lon < 0 {
		lon += 2 * math.Pi
	}

	if r == 0 {
		switch {
		case v.Z > 0:
			lat = math.Pi / 2
		case v.Z < 0:
			lat = -math.Pi / 2
		}
		return 0, lat, math.Abs(v.Z) - a*(1-f), true
	}

	lat = math.Atan2(v.Z, r)
	for i := 0; i < maxIter; i++ {
		s := math.Sin(lat)
		c := 1 / math.Sqrt(1-e2*s*s)
		next := math.Atan((v.Z + a*c*e2*s) / r)
		delta := math.Abs(next - lat)
		lat = next
		if delta <= geodeticTolerance {
			converged = true
			break
		}
	}
	s := math.Sin(lat)
	c := 1 / math.Sqrt(1-e2*s*s)
	alt = r*math.Cos(lat) + v.Z*s - a/c
	return lon, lat, alt, converged
}
