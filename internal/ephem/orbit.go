package ephem

import (
	"math"

	"github.com/star/skycore/internal/angle"
	"github.com/star/skycore/internal/vecmat"
)

// Gaussian gravitational constants.
const (
	GaussHelio = 0.01720209895 // heliocentric, AU and days
	GaussGeo   = 0.0743669161  // geocentric, Earth radii and minutes
)

const (
	keplerMaxIter   = 1000
	keplerTolerance = 1e-9
)

// Orbit is a set of Keplerian elements. Angles are radians, Q is in the
// caller's distance unit and MM is radians per day.
type Orbit struct {
	T  float64 // epoch, JED
	Q  float64 // periapse distance
	E  float64 // eccentricity
	I  float64 // inclination
	W  float64 // argument of periapse
	N  float64 // longitude of ascending node
	M  float64 // mean anomaly at T
	MM float64 // mean motion
}

// MeanMotion returns the mean motion for periapse q, eccentricity e and
// gravity constant g.
func MeanMotion(e, q, g float64) float64 {
	switch {
	case e < 1:
		a := q / (1 - e)
		return g / math.Sqrt(a*a*a)
	case e == 1:
		return g * 3 / math.Sqrt(2*q*q*q)
	default:
		a := q / (e - 1)
		return g / math.Sqrt(a*a*a)
	}
}

// PeriapseDistance inverts MeanMotion for q.
func PeriapseDistance(e, mm, g float64) float64 {
	mu := g * g
	switch {
	case e < 1:
		return math.Cbrt(mu/(mm*mm)) * (1 - e)
	case e == 1:
		return math.Cbrt(9 * mu / (2 * mm * mm))
	default:
		return math.Cbrt(mu/(mm*mm)) / (e - 1)
	}
}

// GravityConstant recovers the Gaussian constant implied by e, q and mm.
func GravityConstant(e, q, mm float64) float64 {
	switch {
	case e < 1:
		a := q / (1 - e)
		return mm * math.Sqrt(a*a*a)
	case e == 1:
		return mm * math.Sqrt(2*q*q*q) / 3
	default:
		a := q / (e - 1)
		return mm * math.Sqrt(a*a*a)
	}
}

func (o Orbit) SemiMajorAxis() float64 {
	if o.E == 1 {
		return math.Inf(1)
	}
	return o.Q / (1 - o.E)
}

func (o Orbit) Apoapse() float64 {
	if o.E >= 1 {
		return math.Inf(1)
	}
	return o.SemiMajorAxis() * (1 + o.E)
}

// Period returns the orbital period in days, infinite for open orbits.
func (o Orbit) Period() float64 {
	if o.E >= 1 {
		return math.Inf(1)
	}
	return angle.TwoPi / o.MM
}

// Anomaly solves Kepler's equation at jed and returns the true anomaly
// and the distance from the primary. Elliptic anomalies fall in [0, 2π).
// The solver stops after a fixed number of iterations whether or not it
// has converged.
func (o Orbit) Anomaly(jed float64) (nu, r float64) {
	if o.Q == 0 {
		return 0, 0
	}
	e := math.Abs(o.E)
	ma := o.M + o.MM*(jed-o.T)

	switch {
	case e < 1:
		ma = angle.Mod2Pi(ma)
		ea := ma
		for i := 0; i < keplerMaxIter; i++ {
			delta := ea - e*math.Sin(ea) - ma
			if math.Abs(delta) <= keplerTolerance {
				break
			}
			step := delta / (1 - e*math.Cos(ea))
			step = math.Max(-0.5, math.Min(0.5, step))
			ea -= step
		}
		nu = angle.Mod2Pi(2 * math.Atan(math.Sqrt((1+e)/(1-e))*math.Tan(ea/2)))
		r = o.Q * (1 + e) / (1 + e*math.Cos(nu))

	case e == 1:
		s := ma
		for i := 0; i < keplerMaxIter; i++ {
			s2 := s * s
			s = (2*s2*s + ma) / (3 * (s2 + 1))
			if math.Abs(s*s*s+3*s-ma) <= keplerTolerance {
				break
			}
		}
		nu = 2 * math.Atan(s)
		r = o.Q * (1 + s*s)

	default:
		ha := math.Asinh(ma / e)
		for i := 0; i < keplerMaxIter; i++ {
			delta := ha - e*math.Sinh(ha) + ma
			if math.Abs(delta) <= keplerTolerance {
				break
			}
			ha -= delta / (1 - e*math.Cosh(ha))
		}
		nu = 2 * math.Atan(math.Sqrt((e+1)/(e-1))*math.Tanh(ha/2))
		r = o.Q * (1 + e) / (1 + e*math.Cos(nu))
	}
	return nu, r
}

// PositionVelocity returns the position and velocity relative to the
// primary at jed, in the frame the angular elements are referred to.
// Velocity is in Q units per day.
func (o Orbit) PositionVelocity(jed float64) (pos, vel vecmat.Vector) {
	nu, r := o.Anomaly(jed)
	if r == 0 {
		return pos, vel
	}
	e := math.Abs(o.E)
	g := GravityConstant(e, o.Q, o.MM)
	p := o.Q * (1 + e)
	h := math.Sqrt(g * g * p)
	dnu := h / (r * r)
	dr := h * e * math.Sin(nu) / p

	cu, su := math.Cos(o.W+nu), math.Sin(o.W+nu)
	ci, si := math.Cos(o.I), math.Sin(o.I)
	cn, sn := math.Cos(o.N), math.Sin(o.N)

	pos = vecmat.Vector{
		X: r * (cu*cn - su*ci*sn),
		Y: r * (cu*sn + su*ci*cn),
		Z: r * su * si,
	}
	vel = vecmat.Vector{
		X: pos.X*dr/r + r*dnu*(-su*cn-cu*ci*sn),
		Y: pos.Y*dr/r + r*dnu*(-su*sn+cu*ci*cn),
		Z: pos.Z*dr/r + r*dnu*cu*si,
	}
	return pos, vel
}

// Kepler is shorthand for o.PositionVelocity(jed).
func Kepler(o Orbit, jed float64) (pos, vel vecmat.Vector) {
	return o.PositionVelocity(jed)
}

// OrbitFromState derives elements at jed from a position and velocity
// relative to the primary, with gravity constant g.
func OrbitFromState(jed float64, pos, vel vecmat.Vector, g float64) Orbit {
	mu := g * g
	hv := pos.Cross(vel)
	r := pos.Magnitude()
	v2 := vel.Dot(vel)
	rv := pos.Dot(vel)
	h2 := hv.Dot(hv)
	h := math.Sqrt(h2)

	p := h2 / mu
	a := 1 / (2/r - v2/mu)
	e := math.Sqrt(math.Max(0, 1-p/a))
	if math.Abs(e-1) < 1e-6 {
		e = 1
	}
	q := p / (1 + e)
	nu := 0.0
	if e > 0 {
		nu = angle.Acos((p/r - 1) / e)
	}
	if rv < 0 {
		nu = -nu
	}

	var m, mm float64
	switch {
	case e < 1:
		ea := 2 * math.Atan(math.Sqrt((1-e)/(1+e))*math.Tan(nu/2))
		m = angle.Mod2Pi(ea - e*math.Sin(ea))
		mm = math.Sqrt(mu / (a * a * a))
	case e == 1:
		s := math.Tan(nu / 2)
		m = s*s*s + 3*s
		mm = 3 * math.Sqrt(mu/(2*q*q*q))
	default:
		ha := 2 * math.Atanh(math.Sqrt((e-1)/(e+1))*math.Tan(nu/2))
		m = e*math.Sinh(ha) - ha
		mm = math.Sqrt(-mu / (a * a * a))
	}

	i := math.Acos(hv.Z / h)
	n := angle.Atan2Pos(hv.X, -hv.Y)
	var u float64
	if si := math.Sin(i); si != 0 {
		u = angle.Atan2Pos(pos.Z/si, pos.X*math.Cos(n)+pos.Y*math.Sin(n))
	} else {
		u = angle.Atan2Pos(pos.Y, pos.X) - n
	}
	w := angle.Mod2Pi(u - nu)

	return Orbit{T: jed, Q: q, E: e, I: i, W: w, N: n, M: m, MM: mm}
}

// Transform re-expresses the angular elements in the frame that rot maps
// the orbit's current frame into.
func (o Orbit) Transform(rot vecmat.Matrix) Orbit {
	cw, sw := math.Cos(o.W), math.Sin(o.W)
	ci, si := math.Cos(o.I), math.Sin(o.I)
	cn, sn := math.Cos(o.N), math.Sin(o.N)

	// Unit vectors toward periapse and along the angular momentum.
	ev := rot.Apply(vecmat.Vector{X: cw*cn - sw*sn*ci, Y: cw*sn + sw*cn*ci, Z: sw * si})
	hv := rot.Apply(vecmat.Vector{X: sn * si, Y: -cn * si, Z: ci})

	ci = hv.Z
	si = math.Hypot(hv.X, hv.Y)
	cn, sn = 1.0, 0.0
	if si != 0 {
		cn, sn = -hv.Y/si, hv.X/si
	}
	cw = ev.X*cn + ev.Y*sn
	if ci == 0 {
		sw = ev.Z
	} else {
		sw = (-ev.X*sn + ev.Y*cn) / ci
	}

	out := o
	out.I = angle.Atan2Pos(si, ci)
	out.N = angle.Atan2Pos(sn, cn)
	out.W = angle.Atan2Pos(sw, cw)
	return out
}
