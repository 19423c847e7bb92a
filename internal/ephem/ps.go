package ephem

import (
	"fmt"
	"math"

	"github.com/star/skycore/internal/angle"
	"github.com/star/skycore/internal/astrotime"
	"github.com/star/skycore/internal/coords"
	"github.com/star/skycore/internal/ephem/jpl"
	"github.com/star/skycore/internal/vecmat"
)

// Body numbers shared with the JPL reader.
const (
	Sun = iota
	Mercury
	Venus
	Earth
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
	Moon
)

// ErrInvalidBody is returned for body numbers outside 0-10.
var ErrInvalidBody = jpl.ErrInvalidBody

// psElements are mean elements referred to the ecliptic of date, each a
// constant plus a daily rate in days from 1999 Dec 31.0 TT. Angles are
// degrees.
type psElements struct {
	a, da float64
	e, de float64
	i, di float64
	m, dm float64
	n, dn float64
	w, dw float64
}

var psPlanets = [...]psElements{
	Mercury: {0.387098, 0, 0.205635, 5.59e-10, 7.0047, 5.00e-8, 168.6562, 4.0923344368, 48.3313, 3.24587e-5, 29.1241, 1.01444e-5},
	Venus:   {0.723330, 0, 0.006773, -1.302e-9, 3.3946, 2.75e-8, 48.0052, 1.6021302244, 76.6799, 2.46590e-5, 54.8910, 1.38374e-5},
	Earth:   {1.000000, 0, 0.016709, -1.151e-9, 0, 0, 356.0470, 0.9856002585, 0, 0, 102.9404, 4.70935e-5},
	Mars:    {1.523688, 0, 0.093405, 2.516e-9, 1.8497, -1.78e-8, 18.6021, 0.5240207766, 49.5574, 2.11081e-5, 286.5016, 2.92961e-5},
	Jupiter: {5.20256, 0, 0.048498, 4.469e-9, 1.3030, -1.557e-7, 19.8950, 0.0830853001, 100.4542, 2.76854e-5, 273.8777, 1.64505e-5},
	Saturn:  {9.55475, 0, 0.055546, -9.499e-9, 2.4886, -1.081e-7, 316.9670, 0.0334442282, 113.6634, 2.38980e-5, 339.3939, 2.97661e-5},
	Uranus:  {19.18171, -1.55e-8, 0.047318, 7.45e-9, 0.7733, 1.9e-8, 142.5905, 0.011725806, 74.0005, 1.3978e-5, 96.6612, 3.0565e-5},
	Neptune: {30.05826, 3.313e-8, 0.008606, 2.15e-9, 1.7700, -2.55e-7, 260.2471, 0.005995147, 131.7806, 3.0173e-5, 272.8461, -6.027e-6},
	Moon:    {60.2666, 0, 0.054900, 0, 5.1454, 0, 115.3654, 13.0649929509, 125.1228, -0.0529538083, 318.0634, 0.1643573223},
}

// psDay is the day count the element rates are referred to.
func psDay(jed float64) float64 { return jed - astrotime.J2000 + 1.5 }

func (el psElements) orbit(jed float64) Orbit {
	d := psDay(jed)
	a := el.a + el.da*d
	e := el.e + el.de*d
	rad := func(deg float64) float64 { return deg * angle.RadPerDeg }
	return Orbit{
		T:  jed,
		Q:  a * (1 - e),
		E:  e,
		I:  rad(el.i + el.di*d),
		W:  angle.Mod2Pi(rad(el.w + el.dw*d)),
		N:  angle.Mod2Pi(rad(el.n + el.dn*d)),
		M:  angle.Mod2Pi(rad(el.m + el.dm*d)),
		MM: rad(el.dm),
	}
}

// PS is Paul Schlyter's low-precision analytic ephemeris: mean Keplerian
// elements plus the largest periodic perturbations for Jupiter, Saturn,
// Uranus and the Moon, and a curve fit for Pluto. Positions are good to
// about an arcminute between 1800 and 2100. The zero value is ready to use.
type PS struct{}

// Ecliptic returns the body's heliocentric position (AU) and velocity
// (AU/day) referred to the ecliptic and equinox of date. The Moon is
// heliocentric here too.
func (PS) Ecliptic(body int, jed float64) (pos, vel vecmat.Vector, err error) {
	switch body {
	case Sun:
		return pos, vel, nil
	case Mercury, Venus, Earth, Mars, Neptune:
		pos, vel = psPlanets[body].orbit(jed).PositionVelocity(jed)
		return pos, vel, nil
	case Jupiter, Saturn, Uranus:
		pos, vel = psPlanets[body].orbit(jed).PositionVelocity(jed)
		return perturbPlanet(body, jed, pos), vel, nil
	case Pluto:
		// The Pluto fit has no rate terms; differentiate it numerically.
		const h = 0.5
		pos = plutoEcliptic(jed)
		vel = plutoEcliptic(jed + h).Sub(plutoEcliptic(jed - h)).Scale(1 / (2 * h))
		return pos, vel, nil
	case Moon:
		gp, gv := moonGeocentric(jed)
		ep, ev := psPlanets[Earth].orbit(jed).PositionVelocity(jed)
		return ep.Add(gp), ev.Add(gv), nil
	}
	return pos, vel, fmt.Errorf("%w: %d", ErrInvalidBody, body)
}

// PositionVelocity implements coords.Ephemeris: heliocentric J2000
// equatorial position in AU and velocity in AU/day.
func (p PS) PositionVelocity(body int, jed float64) (pos, vel vecmat.Vector, err error) {
	pos, vel, err = p.Ecliptic(body, jed)
	if err != nil {
		return pos, vel, err
	}
	m := ofDateEclipticToFundamental(jed)
	return m.Apply(pos), m.Apply(vel), nil
}

// MoonGeocentric returns the Moon's position (AU) and velocity (AU/day)
// relative to the Earth in the J2000 equatorial frame.
func (PS) MoonGeocentric(jed float64) (pos, vel vecmat.Vector) {
	pos, vel = moonGeocentric(jed)
	m := ofDateEclipticToFundamental(jed)
	return m.Apply(pos), m.Apply(vel)
}

func ofDateEclipticToFundamental(jed float64) vecmat.Matrix {
	return coords.PrecessionMatrix(jed).Transpose().Mul(coords.EclipticMatrix(coords.Obliquity(jed)).Transpose())
}

func sinDeg(x float64) float64 { return math.Sin(x * angle.RadPerDeg) }
func cosDeg(x float64) float64 { return math.Cos(x * angle.RadPerDeg) }

// perturbPlanet applies the mutual Jupiter-Saturn-Uranus terms to an
// ecliptic position, preserving its distance.
func perturbPlanet(body int, jed float64, pos vecmat.Vector) vecmat.Vector {
	d := psDay(jed)
	mj := angle.Mod360(19.8950 + 0.0830853001*d)
	ms := angle.Mod360(316.9670 + 0.0334442282*d)
	mu := angle.Mod360(142.5905 + 0.011725806*d)

	var dlon, dlat float64
	switch body {
	case Jupiter:
		dlon = -0.332*sinDeg(2*mj-5*ms-67.6) -
			0.056*sinDeg(2*mj-2*ms+21) +
			0.042*sinDeg(3*mj-5*ms+21) -
			0.036*sinDeg(mj-2*ms) +
			0.022*cosDeg(mj-ms) +
			0.023*sinDeg(2*mj-3*ms+52) -
			0.016*sinDeg(mj-5*ms-69)
	case Saturn:
		dlon = 0.812*sinDeg(2*mj-5*ms-67.6) -
			0.229*cosDeg(2*mj-4*ms-2) +
			0.119*sinDeg(mj-2*ms-3) +
			0.046*sinDeg(2*mj-6*ms-69) +
			0.014*sinDeg(mj-3*ms+32)
		dlat = -0.020*cosDeg(2*mj-4*ms-2) +
			0.018*sinDeg(2*mj-6*ms-49)
	case Uranus:
		dlon = 0.040*sinDeg(ms-2*mu+6) +
			0.035*sinDeg(ms-3*mu+33) -
			0.015*sinDeg(mj-mu+20)
	}

	s := pos.ToSpherical()
	s.Lon += dlon * angle.RadPerDeg
	s.Lat += dlat * angle.RadPerDeg
	return s.Vector()
}

// plutoEcliptic is a curve fit to numerical integration, valid from
// about 1800 to 2100.
func plutoEcliptic(jed float64) vecmat.Vector {
	d := psDay(jed)
	s := angle.Mod360(50.03+0.033459652*d) * angle.RadPerDeg
	p := angle.Mod360(238.95+0.003968789*d) * angle.RadPerDeg

	lon := 238.9508 + 0.00400703*d -
		19.799*math.Sin(p) + 19.848*math.Cos(p) +
		0.897*math.Sin(2*p) - 4.956*math.Cos(2*p) +
		0.610*math.Sin(3*p) + 1.211*math.Cos(3*p) -
		0.341*math.Sin(4*p) - 0.190*math.Cos(4*p) +
		0.128*math.Sin(5*p) - 0.034*math.Cos(5*p) -
		0.038*math.Sin(6*p) + 0.031*math.Cos(6*p) +
		0.020*math.Sin(s-p) - 0.010*math.Cos(s-p)

	lat := -3.9082 -
		5.453*math.Sin(p) - 14.975*math.Cos(p) +
		3.527*math.Sin(2*p) + 1.673*math.Cos(2*p) -
		1.051*math.Sin(3*p) + 0.328*math.Cos(3*p) +
		0.179*math.Sin(4*p) - 0.292*math.Cos(4*p) +
		0.019*math.Sin(5*p) + 0.100*math.Cos(5*p) -
		0.031*math.Sin(6*p) - 0.026*math.Cos(6*p) +
		0.011*math.Cos(s-p)

	r := 40.72 +
		6.68*math.Sin(p) + 6.90*math.Cos(p) -
		1.18*math.Sin(2*p) - 0.03*math.Cos(2*p) +
		0.15*math.Sin(3*p) - 0.14*math.Cos(3*p)

	return vecmat.Spherical{
		Lon: angle.Mod360(lon) * angle.RadPerDeg,
		Lat: lat * angle.RadPerDeg,
		Rad: r,
	}.Vector()
}

// moonGeocentric returns the perturbed lunar position and unperturbed
// orbital velocity relative to the Earth, ecliptic of date, in AU.
func moonGeocentric(jed float64) (pos, vel vecmat.Vector) {
	d := psDay(jed)
	rad := func(deg float64) float64 { return angle.Mod2Pi(deg * angle.RadPerDeg) }
	ms := rad(356.0470 + 0.9856002585*d)
	mm := rad(115.3654 + 13.0649929509*d)
	nm := rad(125.1228 - 0.0529538083*d)
	ws := rad(282.9404 + 4.70935e-5*d)
	wm := rad(318.0634 + 0.1643573223*d)
	ls := angle.Mod2Pi(ms + ws)
	lm := angle.Mod2Pi(mm + wm + nm)
	dd := angle.Mod2Pi(lm - ls)
	f := angle.Mod2Pi(lm - nm)

	pos, vel = psPlanets[Moon].orbit(jed).PositionVelocity(jed)
	s := pos.ToSpherical()

	s.Lon += angle.RadPerDeg * (-1.274*math.Sin(mm-2*dd) + // evection
		0.658*math.Sin(2*dd) - // variation
		0.186*math.Sin(ms) - // yearly equation
		0.059*math.Sin(2*mm-2*dd) -
		0.057*math.Sin(mm-2*dd+ms) +
		0.053*math.Sin(mm+2*dd) +
		0.046*math.Sin(2*dd-ms) +
		0.041*math.Sin(mm-ms) -
		0.035*math.Sin(dd) - // parallactic equation
		0.031*math.Sin(mm+ms) -
		0.015*math.Sin(2*f-2*dd) +
		0.011*math.Sin(mm-4*dd))

	s.Lat += angle.RadPerDeg * (-0.173*math.Sin(f-2*dd) -
		0.055*math.Sin(mm-f-2*dd) -
		0.046*math.Sin(mm+f-2*dd) +
		0.033*math.Sin(f+2*dd) +
		0.017*math.Sin(2*mm+f))

	s.Rad += -0.58*math.Cos(mm-2*dd) - 0.46*math.Cos(2*dd)

	const auPerEarthRadius = coords.KmPerEarthRadius / coords.KmPerAU
	return s.Vector().Scale(auPerEarthRadius), vel.Scale(auPerEarthRadius)
}
