package vecmat

import (
	"math"

	"github.com/star/skycore/internal/angle"
)

// Spherical is a point given by longitude and latitude in radians and a
// radial distance. A Rad of 1 marks a pure direction.
type Spherical struct {
	Lon, Lat, Rad float64
}

// Vector converts s to rectangular coordinates.
func (s Spherical) Vector() Vector {
	cl := math.Cos(s.Lat)
	return Vector{
		X: s.Rad * cl * math.Cos(s.Lon),
		Y: s.Rad * cl * math.Sin(s.Lon),
		Z: s.Rad * math.Sin(s.Lat),
	}
}

// VectorVelocity converts spherical rates vel (lon/lat in radians per time
// unit, rad in distance per time unit) at position s to a rectangular velocity.
func (s Spherical) VectorVelocity(vel Spherical) Vector {
	p := s.Vector()
	cl, sl := math.Cos(s.Lon), math.Sin(s.Lon)
	cb := math.Cos(s.Lat)
	out := Vector{
		X: -p.Y*vel.Lon - p.Z*vel.Lat*cl,
		Y: p.X*vel.Lon - p.Z*vel.Lat*sl,
		Z: s.Rad * vel.Lat * cb,
	}
	if s.Rad != 0 {
		out = out.Add(p.Scale(vel.Rad / s.Rad))
	}
	return out
}

func haversin(a float64) float64 {
	s := math.Sin(a / 2)
	return s * s
}

// AngularSeparation returns the great-circle angle between s and o using
// the haversine formula, which stays accurate from 0 to π. Radii are ignored.
func (s Spherical) AngularSeparation(o Spherical) float64 {
	h := haversin(o.Lat-s.Lat) + math.Cos(s.Lat)*math.Cos(o.Lat)*haversin(o.Lon-s.Lon)
	if h < 0 {
		h = 0
	} else if h > 1 {
		h = 1
	}
	return 2 * math.Asin(math.Sqrt(h))
}

// PositionAngle returns the position angle of o as seen from s, measured
// from north through east, in [0, 2π).
func (s Spherical) PositionAngle(o Spherical) float64 {
	eta := math.Cos(o.Lat) * math.Sin(o.Lon-s.Lon)
	xi := math.Cos(s.Lat)*math.Sin(o.Lat) - math.Sin(s.Lat)*math.Cos(o.Lat)*math.Cos(o.Lon-s.Lon)
	return angle.Atan2Pos(eta, xi)
}
