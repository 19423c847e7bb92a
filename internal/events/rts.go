// Package events finds rise, transit and set times, conjunctions and
// distance extrema, moon phases and satellite passes.
//
// Every search moves the Coordinates it is given to the times it samples
// and recomputes the objects involved. Functions that say so restore the
// original time before returning.
package events

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/star/skycore/internal/angle"
	"github.com/star/skycore/internal/astrotime"
	"github.com/star/skycore/internal/catalog"
	"github.com/star/skycore/internal/coords"
	"github.com/star/skycore/internal/metrics"
)

var (
	// ErrNoEvent is returned when a search finds no crossing.
	ErrNoEvent = errors.New("no event")

	ErrNeverRises = fmt.Errorf("%w: object never rises", ErrNoEvent)
	ErrNeverSets  = fmt.Errorf("%w: object never sets", ErrNoEvent)
)

// Horizon altitudes for rise and set searches, radians.
const (
	PointAltitude    = -30.0 / 60 * angle.RadPerDeg // refraction for a point source
	SunMoonAltitude  = -50.0 / 60 * angle.RadPerDeg // refraction plus semidiameter
	CivilDawn        = -6 * angle.RadPerDeg
	NauticalDawn     = -12 * angle.RadPerDeg
	AstronomicalDawn = -18 * angle.RadPerDeg
)

const (
	rtsMaxIter   = 10
	rtsPrecision = 1 / astrotime.SecondsPerDay
)

// Which selects rising, transit or setting.
type Which int

const (
	Rise    Which = -1
	Transit Which = 0
	Set     Which = 1
)

func (w Which) String() string {
	switch w {
	case Rise:
		return "rise"
	case Transit:
		return "transit"
	case Set:
		return "set"
	}
	return fmt.Sprintf("Which(%d)", int(w))
}

// ArcStatus qualifies a semi-diurnal arc.
type ArcStatus int

const (
	Crosses     ArcStatus = iota // rises and sets
	Circumpolar                  // always above the altitude; arc is π
	NeverRises                   // always below the altitude; arc is 0
)

func (s ArcStatus) String() string {
	switch s {
	case Crosses:
		return "crosses"
	case Circumpolar:
		return "circumpolar"
	case NeverRises:
		return "never rises"
	}
	return fmt.Sprintf("ArcStatus(%d)", int(s))
}

// SemiDiurnalArc returns the hour angle at which a body at declination dec
// reaches altitude alt as seen from latitude lat. All angles are radians.
func SemiDiurnalArc(lat, dec, alt float64) (float64, ArcStatus) {
	cosha := (math.Sin(alt) - math.Sin(dec)*math.Sin(lat)) / (math.Cos(dec) * math.Cos(lat))
	switch {
	case cosha >= 1:
		return 0, NeverRises
	case cosha <= -1:
		return math.Pi, Circumpolar
	}
	return math.Acos(cosha), Crosses
}

// RiseTransitSet returns the time within half a day of t when a body at
// fixed equatorial position (ra, dec) of date rises, transits or sets
// through altitude alt, seen from latitude lat where the local apparent
// sidereal time at t is lst. Angles are radians. A body that never rises returns ErrNeverRises for
// rise and set and ErrNoEvent for transit; one that never sets returns
// ErrNeverSets for rise and set.
func RiseTransitSet(t astrotime.Time, ra, dec float64, sign Which, lst, lat, alt float64) (astrotime.Time, error) {
	ha, status := SemiDiurnalArc(lat, dec, alt)
	switch {
	case status == NeverRises && sign == Transit:
		return t, ErrNoEvent
	case status == NeverRises:
		return t, ErrNeverRises
	case status == Circumpolar && sign != Transit:
		return t, ErrNeverSets
	}

	theta := angle.ModPi(ra - lst + float64(sign)*ha)
	return t.Add(theta / angle.TwoPi / astrotime.SiderealPerSolarDays), nil
}

// objectRTS is RiseTransitSet for o's current direction and c's location.
// c must be set to t. The true-of-date RA is measured against the apparent
// sidereal time c carries, which includes nutation.
func objectRTS(t astrotime.Time, c *coords.Coordinates, o *catalog.Object, sign Which, alt float64) (astrotime.Time, error) {
	v, err := c.Transform(coords.Fundamental, coords.Equatorial, o.Direction)
	if err != nil {
		return t, err
	}
	equ := v.ToSpherical()
	return RiseTransitSet(t, equ.Lon, equ.Lat, sign, c.LST(), c.Location().Lat, alt)
}

// RiseTransitSetSearch finds the rise, transit or set of a moving body
// nearest t by recomputing o's position at each estimate, up to ten times,
// until successive estimates agree within a second. converged reports
// whether they did. c and o are left at the returned time. This does not
// work for bodies that rise more than once a day, such as satellites.
func RiseTransitSetSearch(t astrotime.Time, c *coords.Coordinates, o *catalog.Object, sign Which, alt float64) (result astrotime.Time, converged bool, err error) {
	defer metrics.ObserveEventSearch("rts", time.Now())

	for range rtsMaxIter {
		c.SetTime(t)
		if err := o.ComputeEphemeris(c); err != nil {
			return t, false, err
		}
		next, err := objectRTS(t, c, o, sign, alt)
		if err != nil {
			return t, false, err
		}
		converged = math.Abs(next.Sub(t)) <= rtsPrecision
		t = next
		if converged {
			break
		}
	}
	c.SetTime(t)
	return t, converged, o.ComputeEphemeris(c)
}

// RiseTransitSetDay finds the rise, transit or set of o during the local
// calendar day containing today. Events that fall on another day return
// ErrNeverRises for rise, ErrNeverSets for set and ErrNoEvent for transit.
// c and o are left at the last time searched.
func RiseTransitSetDay(today astrotime.Time, c *coords.Coordinates, o *catalog.Object, sign Which, alt float64) (astrotime.Time, error) {
	start := today.LocalMidnight()
	end := start.Add(1)

	t, _, err := RiseTransitSetSearch(start.Add(0.5), c, o, sign, alt)
	if err == nil {
		switch {
		case t.After(end):
			t, _, err = RiseTransitSetSearch(start.Add(-0.5), c, o, sign, alt)
		case t.Before(start):
			t, _, err = RiseTransitSetSearch(end.Add(0.5), c, o, sign, alt)
		}
	}
	if err != nil {
		if errors.Is(err, ErrNoEvent) {
			return t, err
		}
		return t, fmt.Errorf("%s search: %w", sign, err)
	}

	if t.After(end) || t.Before(start) {
		switch sign {
		case Rise:
			return t, ErrNeverRises
		case Set:
			return t, ErrNeverSets
		}
		return t, ErrNoEvent
	}
	return t, nil
}

// PassEvent is one moment of a pass. Azimuth is measured east from north.
// Err is set, and the other fields are zero, when the event did not occur.
type PassEvent struct {
	Time     astrotime.Time
	Azimuth  float64
	Altitude float64
	Err      error
}

// OK reports whether the event occurred.
func (e PassEvent) OK() bool { return e.Err == nil }

// Pass is a rising, the transit (peak altitude) and the setting of an
// object.
type Pass struct {
	Rising  PassEvent
	Transit PassEvent
	Setting PassEvent
}

// RiseTransitSetPass returns the rising and setting of o through altitude
// alt and its transit on the local day containing today. c's time and o's
// position are restored before returning.
func RiseTransitSetPass(today astrotime.Time, c *coords.Coordinates, o *catalog.Object, alt float64) Pass {
	saved := c.Time()
	defer func() {
		c.SetTime(saved)
		_ = o.ComputeEphemeris(c)
	}()

	event := func(sign Which, alt float64) PassEvent {
		t, err := RiseTransitSetDay(today, c, o, sign, alt)
		if err != nil {
			return PassEvent{Err: err}
		}
		hor := o.Horizon(c)
		return PassEvent{Time: t, Azimuth: hor.Lon, Altitude: hor.Lat}
	}

	return Pass{
		Rising:  event(Rise, alt),
		Transit: event(Transit, 0),
		Setting: event(Set, alt),
	}
}
