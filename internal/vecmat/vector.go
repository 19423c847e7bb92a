// Package vecmat provides the 3-vector, 3x3 matrix and spherical
// coordinate types used by the frame transforms.
package vecmat

import (
	"math"

	"github.com/star/skycore/internal/angle"
)

// Vector is a rectangular 3-vector in arbitrary units.
type Vector struct {
	X, Y, Z float64
}

// Add returns v + u.
func (v Vector) Add(u Vector) Vector { return Vector{v.X + u.X, v.Y + u.Y, v.Z + u.Z} }

// Sub returns v - u.
func (v Vector) Sub(u Vector) Vector { return Vector{v.X - u.X, v.Y - u.Y, v.Z - u.Z} }

// Scale returns s·v.
func (v Vector) Scale(s float64) Vector { return Vector{v.X * s, v.Y * s, v.Z * s} }

// Dot returns v·u.
func (v Vector) Dot(u Vector) float64 { return v.X*u.X + v.Y*u.Y + v.Z*u.Z }

// Cross returns v×u.
func (v Vector) Cross(u Vector) Vector {
	return Vector{
		v.Y*u.Z - v.Z*u.Y,
		v.Z*u.X - v.X*u.Z,
		v.X*u.Y - v.Y*u.X,
	}
}

// Magnitude returns |v|.
func (v Vector) Magnitude() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns v scaled to unit length. The zero vector is returned unchanged.
func (v Vector) Normalize() Vector {
	m := v.Magnitude()
	if m == 0 {
		return v
	}
	return v.Scale(1 / m)
}

// Distance returns |v - u|.
func (v Vector) Distance(u Vector) float64 { return v.Sub(u).Magnitude() }

// IsZero reports whether all components are zero.
func (v Vector) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// AngularSeparation returns the angle between the directions of v and u,
// computed from the chord between their unit vectors.
func (v Vector) AngularSeparation(u Vector) float64 {
	d := v.Normalize().Sub(u.Normalize()).Magnitude()
	return 2 * angle.Asin(d/2)
}

// PositionAngle returns the position angle of u's direction as seen from
// v's direction, measured from north (+Z) through east: north 0, east π/2.
// Both directions are normalized first.
func (v Vector) PositionAngle(u Vector) float64 {
	a := v.Normalize()
	b := u.Normalize()

	nz := math.Sqrt(1 - a.Z*a.Z)
	if nz == 0 {
		return 0
	}
	nx := -a.X * a.Z / nz
	ny := -a.Y * a.Z / nz
	ex := -a.Y / nz
	ey := a.X / nz

	e := ex*b.X + ey*b.Y
	n := nx*b.X + ny*b.Y + nz*b.Z
	if e == 0 && n == 0 {
		return 0
	}
	return angle.Atan2Pos(e, n)
}

// ToSpherical converts v to spherical coordinates, lon in [0, 2π).
func (v Vector) ToSpherical() Spherical {
	r := v.Magnitude()
	if r == 0 {
		return Spherical{}
	}
	return Spherical{
		Lon: angle.Atan2Pos(v.Y, v.X),
		Lat: angle.Asin(v.Z / r),
		Rad: r,
	}
}

// ToSphericalVelocity converts the rectangular velocity vel at position v to
// spherical rates: lon and lat in radians per time unit, rad in distance per
// time unit. Positions on the polar axis return zero rates.
func (v Vector) ToSphericalVelocity(vel Vector) Spherical {
	r := v.Magnitude()
	if r == 0 || (v.X == 0 && v.Y == 0) {
		return Spherical{}
	}
	x2 := v.X * v.X
	y2 := v.Y * v.Y
	vrad := v.Dot(vel) / r
	return Spherical{
		Lon: (v.X*vel.Y - v.Y*vel.X) / (x2 + y2),
		Lat: (r*vel.Z - v.Z*vrad) / (math.Sqrt(x2+y2) * r),
		Rad: vrad,
	}
}
