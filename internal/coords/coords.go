// Package coords transforms positions between the fundamental J2000 frame
// and the equatorial, ecliptic, galactic and horizon frames of a given
// time and observer location.
package coords

import (
	"fmt"
	"math"

	"github.com/star/skycore/internal/angle"
	"github.com/star/skycore/internal/astrotime"
	"github.com/star/skycore/internal/vecmat"
)

const (
	KmPerAU          = 149597870.7
	KmPerEarthRadius = 6378.137
	EarthFlattening  = 1 / 298.257
	LightAUPerDay    = 173.1446327
	AUPerParsec      = 206264.806
	LightYearPerPC   = 3.261563777

	// EarthBody is the ephemeris body number of the Earth.
	EarthBody = 3

	j2000 = astrotime.J2000
)

// Ephemeris supplies heliocentric J2000 equatorial position (AU) and
// velocity (AU/day) of solar-system bodies at a Julian Ephemeris Date.
type Ephemeris interface {
	PositionVelocity(body int, jed float64) (pos, vel vecmat.Vector, err error)
}

// Options selects the apparent-place corrections applied when objects
// compute their positions.
type Options struct {
	Aberration   bool
	LightTime    bool
	Refraction   bool
	StarParallax bool
	StarMotion   bool
}

// DefaultOptions enables every correction except refraction.
func DefaultOptions() Options {
	return Options{Aberration: true, LightTime: true, StarParallax: true, StarMotion: true}
}

// Option adjusts Options in New.
type Option func(*Options)

func WithAberration(on bool) Option { return func(o *Options) { o.Aberration = on } }
func WithLightTime(on bool) Option  { return func(o *Options) { o.LightTime = on } }
func WithRefraction(on bool) Option { return func(o *Options) { o.Refraction = on } }

// WithStarCorrections toggles stellar parallax and proper motion together.
func WithStarCorrections(on bool) Option {
	return func(o *Options) { o.StarParallax, o.StarMotion = on, on }
}

// Coordinates is the frame-transformation context for one time and one
// observer. Derived quantities are computed lazily and cached until the
// time or location changes. A Coordinates is not safe for concurrent use;
// Clone it per goroutine.
type Coordinates struct {
	t    astrotime.Time
	loc  vecmat.Spherical // lon, lat radians; Rad is height in km
	eph  Ephemeris
	opts Options

	timeValid bool
	jed       float64
	obq       float64
	dpsi      float64
	deps      float64
	preMat    vecmat.Matrix
	nutMat    vecmat.Matrix
	equMat    vecmat.Matrix
	eclMat    vecmat.Matrix

	locValid bool
	lst      float64
	horMat   vecmat.Matrix

	obsValid bool
	obsPos   vecmat.Vector
	obsVel   vecmat.Vector
	obsErr   error
}

// New returns a context for time t and observer loc (east longitude and
// geodetic latitude in radians, height in km). eph may be nil, in which
// case observer positions are geocentric.
func New(t astrotime.Time, loc vecmat.Spherical, eph Ephemeris, opts ...Option) *Coordinates {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Coordinates{t: t, loc: loc, eph: eph, opts: o}
}

// Clone returns an independent copy sharing the same Ephemeris.
func (c *Coordinates) Clone() *Coordinates {
	cp := *c
	return &cp
}

func (c *Coordinates) Time() astrotime.Time       { return c.t }
func (c *Coordinates) Location() vecmat.Spherical { return c.loc }
func (c *Coordinates) Ephemeris() Ephemeris       { return c.eph }
func (c *Coordinates) Options() Options           { return c.opts }
func (c *Coordinates) SetOptions(o Options)       { c.opts = o }

// SetEphemeris replaces the ephemeris and drops the cached observer state.
func (c *Coordinates) SetEphemeris(eph Ephemeris) {
	c.eph = eph
	c.obsValid = false
}

// SetTime moves the context to t and drops every cached quantity.
func (c *Coordinates) SetTime(t astrotime.Time) {
	c.t = t
	c.timeValid = false
	c.locValid = false
	c.obsValid = false
}

// SetLocation moves the observer and drops the location-dependent caches.
func (c *Coordinates) SetLocation(loc vecmat.Spherical) {
	c.loc = loc
	c.locValid = false
	c.obsValid = false
}

func (c *Coordinates) updateTime() {
	if c.timeValid {
		return
	}
	c.jed = c.t.JED()
	c.obq = Obliquity(c.jed)
	c.dpsi, c.deps = Nutation(c.jed)
	c.preMat = PrecessionMatrix(c.jed)
	c.nutMat = NutationMatrix(c.obq, c.dpsi, c.deps)
	c.equMat = c.nutMat.Mul(c.preMat)
	c.eclMat = EclipticMatrix(c.obq + c.deps).Mul(c.equMat)
	c.timeValid = true
}

func (c *Coordinates) updateLocation() {
	c.updateTime()
	if c.locValid {
		return
	}
	c.lst = astrotime.SiderealTime(c.t, c.loc.Lon, c.dpsi, c.obq+c.deps)
	c.horMat = HorizonMatrix(c.lst, c.loc.Lat).Mul(c.equMat)
	c.locValid = true
}

func (c *Coordinates) updateObserver() {
	c.updateLocation()
	if c.obsValid {
		return
	}

	// Site position and rotational velocity in the equatorial frame of date,
	// rotated back to the fundamental frame.
	site := ToGeocentric(c.lst, c.loc.Lat, c.loc.Rad, KmPerEarthRadius, EarthFlattening).Scale(1 / KmPerAU)
	omega := angle.TwoPi * astrotime.SiderealPerSolarDays
	spin := vecmat.Vector{X: -omega * site.Y, Y: omega * site.X}
	inv := c.equMat.Transpose()
	c.obsPos = inv.Apply(site)
	c.obsVel = inv.Apply(spin)
	c.obsErr = nil

	if c.eph != nil {
		pos, vel, err := c.eph.PositionVelocity(EarthBody, c.jed)
		if err != nil {
			c.obsErr = fmt.Errorf("earth position at jed %.5f: %w", c.jed, err)
		} else {
			c.obsPos = c.obsPos.Add(pos)
			c.obsVel = c.obsVel.Add(vel)
		}
	}
	c.obsValid = true
}

// JED returns the Julian Ephemeris Date of the context time.
func (c *Coordinates) JED() float64 { c.updateTime(); return c.jed }

// Obliquity returns the mean obliquity of the ecliptic, radians.
func (c *Coordinates) Obliquity() float64 { c.updateTime(); return c.obq }

// Nutation returns nutation in longitude and obliquity, radians.
func (c *Coordinates) Nutation() (dpsi, deps float64) { c.updateTime(); return c.dpsi, c.deps }

// LST returns local apparent sidereal time, radians.
func (c *Coordinates) LST() float64 { c.updateLocation(); return c.lst }

func (c *Coordinates) PrecessionMatrix() vecmat.Matrix { c.updateTime(); return c.preMat }
func (c *Coordinates) NutationMatrix() vecmat.Matrix   { c.updateTime(); return c.nutMat }

// EquatorialMatrix rotates fundamental vectors to the true equator of date.
func (c *Coordinates) EquatorialMatrix() vecmat.Matrix { c.updateTime(); return c.equMat }

// EclipticMatrix rotates fundamental vectors to the true ecliptic of date.
func (c *Coordinates) EclipticMatrix() vecmat.Matrix { c.updateTime(); return c.eclMat }

// HorizonMatrix rotates fundamental vectors to the observer's horizon frame.
func (c *Coordinates) HorizonMatrix() vecmat.Matrix { c.updateLocation(); return c.horMat }

// ObserverPosition returns the observer's heliocentric position in AU in
// the fundamental frame. Without an ephemeris it is relative to the
// Earth's center.
func (c *Coordinates) ObserverPosition() (vecmat.Vector, error) {
	c.updateObserver()
	return c.obsPos, c.obsErr
}

// ObserverVelocity returns the observer's velocity in AU/day in the
// fundamental frame, including the Earth's rotation.
func (c *Coordinates) ObserverVelocity() (vecmat.Vector, error) {
	c.updateObserver()
	return c.obsVel, c.obsErr
}

func (c *Coordinates) matrix(f Frame) (vecmat.Matrix, error) {
	switch f {
	case Fundamental:
		return vecmat.Identity(), nil
	case Equatorial:
		c.updateTime()
		return c.equMat, nil
	case Ecliptic:
		c.updateTime()
		return c.eclMat, nil
	case Galactic:
		return galactic, nil
	case Horizon:
		c.updateLocation()
		return c.horMat, nil
	}
	return vecmat.Matrix{}, fmt.Errorf("%w: %d", ErrUnsupportedFrame, int(f))
}

// Transform rotates v from frame from to frame to.
func (c *Coordinates) Transform(from, to Frame, v vecmat.Vector) (vecmat.Vector, error) {
	mf, err := c.matrix(from)
	if err != nil {
		return vecmat.Vector{}, err
	}
	mt, err := c.matrix(to)
	if err != nil {
		return vecmat.Vector{}, err
	}
	if from == to {
		return v, nil
	}
	return mt.Apply(mf.Transpose().Apply(v)), nil
}

// TransformSpherical is Transform on spherical coordinates. The radial
// component passes through unchanged.
func (c *Coordinates) TransformSpherical(from, to Frame, s vecmat.Spherical) (vecmat.Spherical, error) {
	u := vecmat.Spherical{Lon: s.Lon, Lat: s.Lat, Rad: 1}.Vector()
	w, err := c.Transform(from, to, u)
	if err != nil {
		return vecmat.Spherical{}, err
	}
	out := w.ToSpherical()
	out.Rad = s.Rad
	return out, nil
}

// ApplyAberration shifts the unit direction p in the fundamental frame by
// the observer's velocity using the relativistic formula.
func (c *Coordinates) ApplyAberration(p vecmat.Vector) (vecmat.Vector, error) {
	vel, err := c.ObserverVelocity()
	if err != nil {
		return p, err
	}
	v := vel.Scale(1 / LightAUPerDay)
	beta := math.Sqrt(1 - v.Dot(v))
	dot := v.Dot(p)
	s := 1 + dot/(1+beta)
	n := 1 + dot
	return p.Scale(beta).Add(v.Scale(s)).Scale(1 / n), nil
}

// RemoveAberration undoes ApplyAberration to first order.
func (c *Coordinates) RemoveAberration(p vecmat.Vector) (vecmat.Vector, error) {
	vel, err := c.ObserverVelocity()
	if err != nil {
		return p, err
	}
	return p.Sub(vel.Scale(1 / LightAUPerDay)).Normalize(), nil
}

// ApplyRefraction raises a horizon-frame vector from its geometric to its
// apparent altitude. Magnitude is preserved.
func (c *Coordinates) ApplyRefraction(v vecmat.Vector) vecmat.Vector {
	s := v.ToSpherical()
	if s.Rad == 0 {
		return v
	}
	s.Lat += RefractionAngle(s.Lat, false)
	s.Lat = math.Min(s.Lat, angle.HalfPi)
	return s.Vector()
}

// RemoveRefraction lowers a horizon-frame vector from apparent to
// geometric altitude.
func (c *Coordinates) RemoveRefraction(v vecmat.Vector) vecmat.Vector {
	s := v.ToSpherical()
	if s.Rad == 0 {
		return v
	}
	s.Lat -= RefractionAngle(s.Lat, true)
	s.Lat = math.Max(s.Lat, -angle.HalfPi)
	return s.Vector()
}
