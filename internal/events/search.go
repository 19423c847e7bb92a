package events

import (
	"math"
	"time"

	"github.com/star/skycore/internal/angle"
	"github.com/star/skycore/internal/astrotime"
	"github.com/star/skycore/internal/catalog"
	"github.com/star/skycore/internal/coords"
	"github.com/star/skycore/internal/metrics"
	"github.com/star/skycore/internal/vecmat"
)

const (
	scanStep       = 1.0 // days
	goldenMaxIter  = 100
	goldenTol      = 1 / astrotime.SecondsPerDay
	invGoldenRatio = 0.6180339887498949
)

// EventTime is the moment of an extremum and the value reached there:
// radians for separations, AU for distances.
type EventTime struct {
	Time  astrotime.Time
	Value float64
}

// valueFunc measures a pair of objects after both have been computed.
type valueFunc func(c *coords.Coordinates, a, b *catalog.Object) float64

func separation(_ *coords.Coordinates, a, b *catalog.Object) float64 {
	return a.Direction.AngularSeparation(b.Direction)
}

func distance(_ *coords.Coordinates, a, b *catalog.Object) float64 {
	return a.Direction.Scale(a.Distance).Distance(b.Direction.Scale(b.Distance))
}

// FindConjunctions returns the times between start and end when the
// angular separation of a and b reaches a local minimum, at most maxCount
// of them, in chronological order.
func FindConjunctions(c *coords.Coordinates, a, b *catalog.Object, start, end astrotime.Time, maxCount int) ([]EventTime, error) {
	defer metrics.ObserveEventSearch("conjunction", time.Now())
	return findExtrema(c, a, b, start, end, maxCount, true, separation)
}

// FindOppositions is FindConjunctions for separation maxima.
func FindOppositions(c *coords.Coordinates, a, b *catalog.Object, start, end astrotime.Time, maxCount int) ([]EventTime, error) {
	defer metrics.ObserveEventSearch("opposition", time.Now())
	return findExtrema(c, a, b, start, end, maxCount, false, separation)
}

// FindNearestDistances returns the local minima of the distance between a
// and b.
func FindNearestDistances(c *coords.Coordinates, a, b *catalog.Object, start, end astrotime.Time, maxCount int) ([]EventTime, error) {
	defer metrics.ObserveEventSearch("nearest", time.Now())
	return findExtrema(c, a, b, start, end, maxCount, true, distance)
}

// FindFarthestDistances returns the local maxima of the distance between
// a and b.
func FindFarthestDistances(c *coords.Coordinates, a, b *catalog.Object, start, end astrotime.Time, maxCount int) ([]EventTime, error) {
	defer metrics.ObserveEventSearch("farthest", time.Now())
	return findExtrema(c, a, b, start, end, maxCount, false, distance)
}

// sampler evaluates f for a and b at arbitrary times. Maxima are found by
// minimizing -f.
type sampler struct {
	c    *coords.Coordinates
	a, b *catalog.Object
	f    valueFunc
	sign float64
}

func (s *sampler) at(jd float64) (float64, error) {
	s.c.SetTime(astrotime.New(jd, s.c.Time().Zone))
	if err := s.a.ComputeEphemeris(s.c); err != nil {
		return 0, err
	}
	if err := s.b.ComputeEphemeris(s.c); err != nil {
		return 0, err
	}
	return s.sign * s.f(s.c, s.a, s.b), nil
}

// findExtrema scans from one step before start to one step after end a
// day at a time, so an extremum near either edge is still bracketed.
// Whenever three consecutive samples bracket a minimum of sign*f, it is
// refined by golden-section search to a second and kept if it falls within
// [start, end].
func findExtrema(c *coords.Coordinates, a, b *catalog.Object, start, end astrotime.Time, maxCount int, minimum bool, f valueFunc) ([]EventTime, error) {
	s := &sampler{c: c, a: a, b: b, f: f, sign: 1}
	if !minimum {
		s.sign = -1
	}

	first, last := start.JD-scanStep, end.JD+scanStep
	var events []EventTime
	var prev, cur float64
	for n := 0; len(events) < maxCount; n++ {
		jd := first + float64(n)*scanStep
		if jd > last {
			break
		}
		next, err := s.at(jd)
		if err != nil {
			return events, err
		}
		if n >= 2 && cur < prev && cur <= next {
			t, v, err := goldenSection(s, jd-2*scanStep, jd)
			if err != nil {
				return events, err
			}
			if t >= start.JD && t <= end.JD {
				events = append(events, EventTime{Time: astrotime.New(t, start.Zone), Value: s.sign * v})
			}
		}
		prev, cur = cur, next
	}
	return events, nil
}

// goldenSection minimizes s over [lo, hi], which must bracket a single
// minimum, to within goldenTol days.
func goldenSection(s *sampler, lo, hi float64) (float64, float64, error) {
	x1 := hi - invGoldenRatio*(hi-lo)
	x2 := lo + invGoldenRatio*(hi-lo)
	f1, err := s.at(x1)
	if err != nil {
		return 0, 0, err
	}
	f2, err := s.at(x2)
	if err != nil {
		return 0, 0, err
	}

	for i := 0; i < goldenMaxIter && hi-lo > goldenTol; i++ {
		if f1 < f2 {
			hi, x2, f2 = x2, x1, f1
			x1 = hi - invGoldenRatio*(hi-lo)
			if f1, err = s.at(x1); err != nil {
				return 0, 0, err
			}
		} else {
			lo, x1, f1 = x1, x2, f2
			x2 = lo + invGoldenRatio*(hi-lo)
			if f2, err = s.at(x2); err != nil {
				return 0, 0, err
			}
		}
	}

	t := (lo + hi) / 2
	v, err := s.at(t)
	return t, v, err
}

// Phase is a principal moon phase, by the Moon's ecliptic longitude less
// the Sun's.
type Phase int

const (
	New Phase = iota
	FirstQuarter
	Full
	LastQuarter
)

// Angle returns the Sun-Moon elongation in longitude that defines p.
func (p Phase) Angle() float64 { return float64(p) * angle.HalfPi }

func (p Phase) String() string {
	switch p {
	case New:
		return "new moon"
	case FirstQuarter:
		return "first quarter"
	case Full:
		return "full moon"
	case LastQuarter:
		return "last quarter"
	}
	return "unknown phase"
}

const (
	synodicMonth   = 29.530589 // days
	phaseMaxIter   = 10
	phasePrecision = 1.0 / (24 * 60) // days
)

// NextMoonPhase returns the first time after t when the Moon reaches
// phase, seen from the Earth's center. sun and moon are recomputed; c is
// not modified. converged reports whether the estimate settled within a
// minute.
func NextMoonPhase(t astrotime.Time, c *coords.Coordinates, sun, moon *catalog.Object, phase Phase) (astrotime.Time, bool, error) {
	defer metrics.ObserveEventSearch("moon_phase", time.Now())

	geo := c.Clone()
	geo.SetLocation(vecmat.Spherical{Rad: -coords.KmPerEarthRadius})

	for i := range phaseMaxIter {
		geo.SetTime(t)
		sunLon, err := eclipticLongitude(geo, sun)
		if err != nil {
			return t, false, err
		}
		moonLon, err := eclipticLongitude(geo, moon)
		if err != nil {
			return t, false, err
		}

		// The first step must go forward.
		dlon := angle.ModPi(moonLon - sunLon - phase.Angle())
		if i == 0 && dlon > 0 {
			dlon -= angle.TwoPi
		}
		dt := dlon / (angle.TwoPi / synodicMonth)
		t = t.Add(-dt)
		if math.Abs(dt) <= phasePrecision {
			return t, true, nil
		}
	}
	return t, false, nil
}

func eclipticLongitude(c *coords.Coordinates, o *catalog.Object) (float64, error) {
	if err := o.ComputeEphemeris(c); err != nil {
		return 0, err
	}
	v, err := c.Transform(coords.Fundamental, coords.Ecliptic, o.Direction)
	if err != nil {
		return 0, err
	}
	return v.ToSpherical().Lon, nil
}
