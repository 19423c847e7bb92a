// Package catalog models stars, deep-sky objects, solar-system bodies and
// artificial satellites, computes their apparent places, and reads and
// writes the flat-file catalogs they come from.
package catalog

import (
	"fmt"
	"math"

	"github.com/star/skycore/internal/angle"
	"github.com/star/skycore/internal/astrotime"
	"github.com/star/skycore/internal/coords"
	"github.com/star/skycore/internal/ephem"
	"github.com/star/skycore/internal/propagation"
	"github.com/star/skycore/internal/tle"
	"github.com/star/skycore/internal/vecmat"
)

const lightKmPerSec = 299792.458

// LunaID is the JPL number of the Earth's Moon.
const LunaID = 301

// Object is one catalog entry. Exactly one of Star, Planet, Satellite and
// Constellation is set, selected by Type. Direction, Distance and Magnitude hold the
// apparent place from the last ComputeEphemeris call. An Object is not
// safe for concurrent use.
type Object struct {
	Type        Type
	Names       []string
	Identifiers []Identifier

	Direction vecmat.Vector // unit vector, fundamental frame
	Distance  float64       // AU; +Inf when unknown
	Magnitude float64       // visual; +Inf when unknown

	Star          *Star
	Planet        *Planet
	Satellite     *Satellite
	Constellation *Constellation
}

// Star holds J2000 catalog data for stars and deep-sky objects. Unknown
// values are NaN, except magnitudes, which are +Inf.
type Star struct {
	RA, Dec   float64 // radians, J2000 at epoch 2000
	PMRA      float64 // radians of RA per Julian year
	PMDec     float64 // radians per Julian year
	Parsecs   float64 // distance; +Inf when unknown
	RadVel    float64 // km/s, positive receding
	VMag      float64
	BMag      float64
	Spectrum  string
	MajorAxis float64 // deep sky only, radians
	MinorAxis float64
	PA        float64

	Double   *DoubleStar   // double and double variable stars
	Variable *VariableStar // variable and double variable stars
}

// DoubleStar describes the pair a double star catalog entry belongs to.
type DoubleStar struct {
	Components string  // e.g. "AB"; empty when unknown
	DeltaMag   float64 // magnitude difference; +Inf when unknown
	Sep        float64 // radians; NaN when unknown
	PA         float64 // radians, J2000, brighter to fainter; NaN when unknown
	PAEpoch    float64 // Julian year of the PA measurement; NaN when unknown
}

// VariableStar describes a star's variability. Magnitudes are +Inf and
// the rest NaN when unknown.
type VariableStar struct {
	VarType string  // GCVS type, e.g. "SRC"
	MinMag  float64 // when brightest
	MaxMag  float64 // when faintest
	Period  float64 // days
	Epoch   float64 // Julian Date
}

// Planet holds orbit and photometric data for planets, moons, asteroids
// and comets. Orbit.Q is in AU and the angles are J2000 ecliptic.
type Planet struct {
	ID     int // JPL number; moons use primary*100 + n
	Orbit  ephem.Orbit
	H, G   float64 // +Inf when unknown
	Radius float64 // km; +Inf when unknown

	Position vecmat.Vector // heliocentric AU, from the last computation
	Velocity vecmat.Vector // AU/day
}

// Satellite holds an artificial satellite's element set and McCants
// photometric data.
type Satellite struct {
	TLE    tle.TLEEntry
	StdMag float64 // magnitude at 1000 km, half lit; +Inf when unknown
	Length float64 // meters

	Position vecmat.Vector
	Velocity vecmat.Vector

	prop *propagation.SGP4Propagator
}

func newObject(t Type, names []string, idents []Identifier) *Object {
	return &Object{
		Type:        t,
		Names:       names,
		Identifiers: idents,
		Distance:    math.Inf(1),
		Magnitude:   math.Inf(1),
	}
}

// NewStar returns a star or deep-sky object.
func NewStar(t Type, s Star, names []string, idents []Identifier) *Object {
	o := newObject(t, names, idents)
	o.Star = &s
	o.Magnitude = s.VMag
	return o
}

// NewPlanet returns a planet, moon, asteroid or comet. Planets and moons
// are given a JPL identifier from p.ID.
func NewPlanet(t Type, p Planet, names []string, idents []Identifier) *Object {
	if t == TypePlanet || t == TypeMoon {
		idents = append([]Identifier{{CatJPL, int64(p.ID)}}, idents...)
	}
	o := newObject(t, names, idents)
	o.Planet = &p
	return o
}

// NewSatellite returns a satellite named after its element set, with its
// international designator as a second name.
func NewSatellite(e tle.TLEEntry) *Object {
	names := []string{e.Name}
	if e.IntlDesignator != "" && e.IntlDesignator != e.Name {
		names = append(names, e.IntlDesignator)
	}
	o := newObject(TypeSatellite, names, []Identifier{{CatNORAD, int64(e.NORADID)}})
	o.Satellite = &Satellite{TLE: e, StdMag: math.Inf(1)}
	return o
}

// Name returns the i-th name, or "" when there is none.
func (o *Object) Name(i int) string {
	if i < 0 || i >= len(o.Names) {
		return ""
	}
	return o.Names[i]
}

// Identifier returns o's identifier in catalog cat, or the zero
// Identifier. CatUnknown returns the first identifier.
func (o *Object) Identifier(cat Catalog) Identifier {
	for _, id := range o.Identifiers {
		if cat == CatUnknown || id.Catalog == cat {
			return id
		}
	}
	return Identifier{}
}

// AddIdentifier appends id unless it is zero or already present.
func (o *Object) AddIdentifier(id Identifier) bool {
	if id.IsZero() {
		return false
	}
	for _, have := range o.Identifiers {
		if have == id {
			return false
		}
	}
	o.Identifiers = append(o.Identifiers, id)
	return true
}

// AngularSeparation is the angle between the computed directions of o and p.
func (o *Object) AngularSeparation(p *Object) float64 {
	return o.Direction.AngularSeparation(p.Direction)
}

// Horizon returns o's computed direction as azimuth (Lon) and altitude
// (Lat) for the observer in c, refracted when c asks for it.
func (o *Object) Horizon(c *coords.Coordinates) vecmat.Spherical {
	v, _ := c.Transform(coords.Fundamental, coords.Horizon, o.Direction)
	if c.Options().Refraction {
		v = c.ApplyRefraction(v)
	}
	return v.ToSpherical()
}

// ComputeEphemeris updates Direction, Distance and Magnitude for the time,
// location and corrections in c.
func (o *Object) ComputeEphemeris(c *coords.Coordinates) error {
	switch {
	case o.Star != nil:
		return o.computeStar(c)
	case o.Planet != nil:
		return o.computeSolarSystem(c)
	case o.Satellite != nil:
		return o.computeSolarSystem(c)
	case o.Constellation != nil:
		o.Direction = o.Constellation.center()
		return nil
	}
	return fmt.Errorf("%s object has no payload", o.Type)
}

func (o *Object) computeStar(c *coords.Coordinates) error {
	s := o.Star
	opts := c.Options()
	pos := vecmat.Spherical{Lon: s.RA, Lat: s.Dec, Rad: 1}.Vector()
	dir := pos

	if opts.StarMotion && !math.IsNaN(s.PMRA) && !math.IsNaN(s.PMDec) {
		rv := 0.0
		if !math.IsNaN(s.RadVel) && !math.IsInf(s.Parsecs, 0) && s.Parsecs > 0 {
			// Light years per year over distance in light years.
			rv = s.RadVel / lightKmPerSec / (s.Parsecs * coords.LightYearPerPC)
		}
		vel := vecmat.Spherical{Lon: s.RA, Lat: s.Dec, Rad: 1}.VectorVelocity(vecmat.Spherical{Lon: s.PMRA, Lat: s.PMDec, Rad: rv})
		dir = dir.Add(vel.Scale((c.JED() - astrotime.J2000) / astrotime.DaysPerJulianYear))
	}

	parallax := 0.0
	if s.Parsecs > 0 && !math.IsInf(s.Parsecs, 0) && !math.IsNaN(s.Parsecs) {
		parallax = 1 / s.Parsecs
	}
	if opts.StarParallax && parallax > 0 {
		obs, err := c.ObserverPosition()
		if err != nil {
			return err
		}
		dir = dir.Sub(obs.Scale(parallax / coords.AUPerParsec))
	}

	delta := dir.Magnitude()
	o.Direction = dir.Scale(1 / delta)
	o.Distance = math.Inf(1)
	if parallax > 0 {
		o.Distance = delta * coords.AUPerParsec / parallax
	}
	o.Magnitude = s.VMag + 5*math.Log10(delta)

	if opts.Aberration {
		d, err := c.ApplyAberration(o.Direction)
		if err != nil {
			return err
		}
		o.Direction = d
	}
	return nil
}

func (o *Object) computeSolarSystem(c *coords.Coordinates) error {
	obs, err := c.ObserverPosition()
	if err != nil {
		return err
	}
	pos, vel, err := o.PositionVelocity(c, 0)
	if err != nil {
		return err
	}
	if c.Options().LightTime {
		lt := pos.Distance(obs) / coords.LightAUPerDay
		if pos, vel, err = o.PositionVelocity(c, lt); err != nil {
			return err
		}
	}

	rel := pos.Sub(obs)
	o.Distance = rel.Magnitude()
	o.Direction = rel.Normalize()
	if c.Options().Aberration {
		if o.Direction, err = c.ApplyAberration(o.Direction); err != nil {
			return err
		}
	}

	phase := 0.0
	if r := pos.Magnitude(); r > 0 {
		phase = angle.Acos(pos.Dot(o.Direction) / r)
	}
	if o.Planet != nil {
		o.Planet.Position, o.Planet.Velocity = pos, vel
		o.Magnitude = o.planetMagnitude(pos.Magnitude(), o.Distance, phase)
	} else {
		o.Satellite.Position, o.Satellite.Velocity = pos, vel
		o.Magnitude = math.Inf(1)
		if c.Ephemeris() != nil {
			o.Magnitude = satelliteMagnitude(o.Distance*coords.KmPerAU, phase, o.Satellite.StdMag)
		}
	}
	return nil
}

// PositionVelocity returns a solar-system object's or satellite's
// heliocentric position (AU) and velocity (AU/day) in the fundamental
// frame at c's time less light time lt in days. Without an ephemeris,
// satellites are placed relative to the Earth's center and every other
// body returns ErrNoEphemeris.
func (o *Object) PositionVelocity(c *coords.Coordinates, lt float64) (pos, vel vecmat.Vector, err error) {
	eph := c.Ephemeris()
	jed := c.JED()

	if sat := o.Satellite; sat != nil {
		if sat.prop == nil {
			if sat.prop, err = propagation.NewSGP4Propagator(sat.TLE); err != nil {
				return pos, vel, err
			}
		}
		state, err := sat.prop.PropagateJD(c.Time().JD - lt)
		if err != nil {
			return pos, vel, err
		}
		pos, vel = state.Fundamental(c)
		if eph != nil {
			ep, ev, err := eph.PositionVelocity(ephem.Earth, jed)
			if err != nil {
				return pos, vel, err
			}
			pos = pos.Add(ep).Sub(ev.Scale(lt))
			vel = vel.Add(ev)
		}
		return pos, vel, nil
	}

	p := o.Planet
	if p == nil {
		return pos, vel, fmt.Errorf("%s is not a solar-system object", o.Type)
	}
	if eph == nil {
		return pos, vel, ErrNoEphemeris
	}

	switch {
	case o.Type == TypePlanet && p.ID >= ephem.Sun && p.ID <= ephem.Moon,
		p.ID == LunaID:
		body := p.ID
		if body == LunaID {
			body = ephem.Moon
		}
		return eph.PositionVelocity(body, jed-lt)

	case o.Type == TypeMoon:
		primary := p.ID / 100
		if primary < ephem.Mercury || primary > ephem.Pluto {
			return pos, vel, fmt.Errorf("moon %d has no primary planet", p.ID)
		}
		pos, vel, err = o.keplerian(jed - lt)
		if err != nil {
			return pos, vel, err
		}
		pp, pv, err := eph.PositionVelocity(primary, jed)
		if err != nil {
			return pos, vel, err
		}
		return pos.Add(pp).Sub(pv.Scale(lt)), vel.Add(pv), nil

	case o.Type == TypeAsteroid || o.Type == TypeComet:
		return o.keplerian(jed - lt)
	}
	return pos, vel, fmt.Errorf("planet %d is not in the ephemeris", p.ID)
}

// j2000Ecliptic rotates J2000 ecliptic vectors into the fundamental frame.
var j2000Ecliptic = coords.EclipticMatrix(coords.Obliquity(astrotime.J2000)).Transpose()

func (o *Object) keplerian(jed float64) (pos, vel vecmat.Vector, err error) {
	orb := o.Planet.Orbit
	for _, v := range []float64{orb.Q, orb.E, orb.I, orb.W, orb.N, orb.M, orb.T} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return pos, vel, fmt.Errorf("%s %q has no orbit", o.Type, o.Name(0))
		}
	}
	if math.IsInf(orb.MM, 0) || math.IsNaN(orb.MM) || orb.MM == 0 {
		if o.Type == TypeMoon {
			return pos, vel, fmt.Errorf("moon %q has no mean motion", o.Name(0))
		}
		orb.MM = ephem.MeanMotion(orb.E, orb.Q, ephem.GaussHelio)
	}
	pos, vel = ephem.Kepler(orb, jed)
	return j2000Ecliptic.Apply(pos), j2000Ecliptic.Apply(vel), nil
}

// saturnPole is the J2000 direction of Saturn's north pole.
var saturnPole = vecmat.Spherical{Lon: 40.589 * angle.RadPerDeg, Lat: 83.537 * angle.RadPerDeg, Rad: 1}.Vector()

// planetMagnitude uses Meeus, Astronomical Algorithms ch. 41 for the
// major planets and the H, G system for everything else. rad and dist are
// AU from the Sun and the observer.
func (o *Object) planetMagnitude(rad, dist, phase float64) float64 {
	p := o.Planet
	b := phase * angle.DegPerRad
	b2, b3 := b*b, b*b*b
	rd := 5 * math.Log10(rad*dist)

	if o.Type == TypePlanet {
		switch p.ID {
		case ephem.Sun:
			return -26.72 + 5*math.Log10(dist)
		case ephem.Mercury:
			return -0.42 + rd + 0.0380*b - 0.000273*b2 + 0.000002*b3
		case ephem.Venus:
			return -4.40 + rd + 0.0009*b + 0.000239*b2 - 0.00000065*b3
		case ephem.Earth:
			return -3.86 + rd
		case ephem.Mars:
			return -1.52 + rd + 0.016*b
		case ephem.Jupiter:
			return -9.40 + rd + 0.005*b
		case ephem.Saturn:
			rinc := angle.HalfPi - angle.Acos(o.Direction.Dot(saturnPole))
			return -8.88 + rd + 0.044*b - 2.60*math.Abs(rinc) + 1.25*rinc*rinc
		case ephem.Uranus:
			return -7.19 + rd + 0.0028*b
		case ephem.Neptune:
			return -6.87 + rd
		case ephem.Pluto:
			return -1.01 + rd + 0.041*b
		}
	}
	if p.ID == LunaID || (o.Type == TypePlanet && p.ID == ephem.Moon) {
		return asteroidMagnitude(rad, dist, phase, 0.21, 0.25)
	}
	switch o.Type {
	case TypeMoon:
		g := p.G
		if math.IsInf(g, 0) || math.IsNaN(g) {
			g = 0.15
		}
		return asteroidMagnitude(rad, dist, phase, p.H, g)
	case TypeAsteroid:
		return asteroidMagnitude(rad, dist, phase, p.H, p.G)
	case TypeComet:
		return p.H + 5*math.Log10(dist) + 2.5*p.G*math.Log10(rad)
	}
	return math.Inf(1)
}

func asteroidMagnitude(rad, dist, phase, h, g float64) float64 {
	t := math.Tan(phase / 2)
	phi1 := math.Exp(-3.33 * math.Pow(t, 0.63))
	phi2 := math.Exp(-1.87 * math.Pow(t, 1.22))
	m := (1-g)*phi1 + g*phi2
	if m <= 0 {
		return math.Inf(1)
	}
	return h + 5*math.Log10(rad*dist) - 2.5*math.Log10(m)
}

// satelliteMagnitude is the McCants formula: stdmag is the magnitude at
// 1000 km range and half illumination, dist is km.
func satelliteMagnitude(dist, phase, stdmag float64) float64 {
	if phase >= math.Pi {
		return math.Inf(1)
	}
	return stdmag - 15.75 + 2.5*math.Log10(dist*dist/((1+math.Cos(phase))/2))
}
