package events

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/star/skycore/internal/angle"
	"github.com/star/skycore/internal/astrotime"
	"github.com/star/skycore/internal/catalog"
	"github.com/star/skycore/internal/coords"
	"github.com/star/skycore/internal/ephem"
	"github.com/star/skycore/internal/vecmat"
)

const minute = 1.0 / (24 * 60)

var geocenter = vecmat.Spherical{Rad: -coords.KmPerEarthRadius}

func utc(y int, m time.Month, d, h, min int) astrotime.Time {
	return astrotime.FromGoTime(time.Date(y, m, d, h, min, 0, 0, time.UTC))
}

func sunAndMoon() (sun, moon *catalog.Object) {
	sun = catalog.NewPlanet(catalog.TypePlanet, catalog.Planet{ID: ephem.Sun}, []string{"Sun"}, nil)
	moon = catalog.NewPlanet(catalog.TypeMoon, catalog.Planet{ID: catalog.LunaID}, []string{"Moon"}, nil)
	return sun, moon
}

func TestSemiDiurnalArc(t *testing.T) {
	deg := angle.RadPerDeg
	tests := []struct {
		name          string
		lat, dec, alt float64
		want          float64
		status        ArcStatus
	}{
		{"equator", 0, 0, 0, math.Pi / 2, Crosses},
		{"equinox midlatitude", 45 * deg, 0, 0, math.Pi / 2, Crosses},
		{"circumpolar", 60 * deg, 45 * deg, 0, math.Pi, Circumpolar},
		{"never rises", 60 * deg, -45 * deg, 0, 0, NeverRises},
		{"summer sun at 45N", 45 * deg, 23.44 * deg, 0, math.Acos(-math.Tan(45*deg) * math.Tan(23.44*deg)), Crosses},
	}
	for _, tt := range tests {
		got, status := SemiDiurnalArc(tt.lat, tt.dec, tt.alt)
		if status != tt.status || math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("%s: SemiDiurnalArc = %v, %v, want %v, %v", tt.name, got, status, tt.want, tt.status)
		}
	}
}

func TestRiseTransitSetFixed(t *testing.T) {
	now := utc(2024, time.March, 20, 0, 0)
	lat := 40 * angle.RadPerDeg
	lst := now.SiderealTime(0)
	ra := angle.Mod2Pi(lst + 0.1)

	transit, err := RiseTransitSet(now, ra, 0, Transit, lst, lat, 0)
	require.NoError(t, err)
	want := 0.1 / angle.TwoPi / astrotime.SiderealPerSolarDays
	assert.InDelta(t, want, transit.Sub(now), 1e-9)

	// On the celestial equator the body is up for half a sidereal day.
	rise, err := RiseTransitSet(now, ra, 0, Rise, lst, lat, 0)
	require.NoError(t, err)
	set, err := RiseTransitSet(now, ra, 0, Set, lst, lat, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.25/astrotime.SiderealPerSolarDays, transit.Sub(rise), 1e-9)
	assert.InDelta(t, 0.25/astrotime.SiderealPerSolarDays, set.Sub(transit), 1e-9)
}

// A star placed 0.1 rad east of the apparent meridian transits 0.1 rad of
// sidereal rotation later. Measuring its true-of-date RA against mean
// sidereal time would be off by the equation of the equinoxes, about a
// second in 2024.
func TestObjectTransitUsesApparentSiderealTime(t *testing.T) {
	now := utc(2024, time.March, 20, 0, 0)
	site := vecmat.Spherical{Lon: -74 * angle.RadPerDeg, Lat: 40 * angle.RadPerDeg}
	c := coords.New(now, site, nil)

	dpsi, _ := c.Nutation()
	require.Greater(t, math.Abs(dpsi), 1.0*angle.RadPerArcsec, "nutation should be non-trivial")

	equ := vecmat.Spherical{Lon: angle.Mod2Pi(c.LST() + 0.1), Lat: 0, Rad: 1}.Vector()
	fund, err := c.Transform(coords.Equatorial, coords.Fundamental, equ)
	require.NoError(t, err)
	star := catalog.NewStar(catalog.TypeStar, catalog.Star{}, []string{"Test"}, nil)
	star.Direction = fund

	transit, err := objectRTS(now, c, star, Transit, 0)
	require.NoError(t, err)
	want := 0.1 / angle.TwoPi / astrotime.SiderealPerSolarDays
	assert.InDelta(t, want, transit.Sub(now), 1e-9)

	eqeq := math.Remainder(c.LST()-now.SiderealTime(site.Lon), angle.TwoPi)
	assert.Greater(t, math.Abs(eqeq/angle.TwoPi*astrotime.SecondsPerDay), 0.1,
		"apparent and mean sidereal time should differ")
}

func TestRiseTransitSetNoEvent(t *testing.T) {
	now := utc(2024, time.March, 20, 0, 0)
	lat := 50 * angle.RadPerDeg
	polaris, south := 89*angle.RadPerDeg, -89*angle.RadPerDeg

	tests := []struct {
		name string
		dec  float64
		sign Which
		want error
	}{
		{"circumpolar rise", polaris, Rise, ErrNeverSets},
		{"circumpolar set", polaris, Set, ErrNeverSets},
		{"circumpolar transit", polaris, Transit, nil},
		{"hidden rise", south, Rise, ErrNeverRises},
		{"hidden set", south, Set, ErrNeverRises},
		{"hidden transit", south, Transit, ErrNoEvent},
	}
	for _, tt := range tests {
		_, err := RiseTransitSet(now, 1, tt.dec, tt.sign, now.SiderealTime(0), lat, 0)
		if !errors.Is(err, tt.want) || (tt.want == nil && err != nil) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
		if tt.want != nil && !errors.Is(err, ErrNoEvent) {
			t.Errorf("%s: %v does not wrap ErrNoEvent", tt.name, err)
		}
	}
}

func TestSunRiseTransitSetGreenwich(t *testing.T) {
	sun, _ := sunAndMoon()
	greenwich := vecmat.Spherical{Lon: -0.0015 * angle.RadPerDeg, Lat: 51.4769 * angle.RadPerDeg, Rad: 0.046}
	noon := utc(2024, time.March, 20, 12, 0)
	c := coords.New(noon, greenwich, ephem.PS{})

	pass := RiseTransitSetPass(noon, c, sun, SunMoonAltitude)
	require.NoError(t, pass.Rising.Err)
	require.NoError(t, pass.Transit.Err)
	require.NoError(t, pass.Setting.Err)

	checks := []struct {
		name string
		got  astrotime.Time
		want astrotime.Time
	}{
		{"sunrise", pass.Rising.Time, utc(2024, time.March, 20, 6, 2)},
		{"transit", pass.Transit.Time, utc(2024, time.March, 20, 12, 7)},
		{"sunset", pass.Setting.Time, utc(2024, time.March, 20, 18, 13)},
	}
	for _, ck := range checks {
		if d := math.Abs(ck.got.Sub(ck.want)); d > 5*minute {
			t.Errorf("%s = %v, want %v", ck.name, ck.got.GoTime(), ck.want.GoTime())
		}
	}

	// Near the equinox the Sun rises close to due east and sets close to due west.
	assert.InDelta(t, 90, pass.Rising.Azimuth*angle.DegPerRad, 3)
	assert.InDelta(t, 270, pass.Setting.Azimuth*angle.DegPerRad, 3)
	assert.InDelta(t, 38.5, pass.Transit.Altitude*angle.DegPerRad, 1)
	assert.InDelta(t, -50.0/60, pass.Rising.Altitude*angle.DegPerRad, 0.05)

	assert.Equal(t, noon, c.Time(), "time restored")
}

func TestRiseTransitSetDayPolarNight(t *testing.T) {
	sun, _ := sunAndMoon()
	svalbard := vecmat.Spherical{Lon: 15.6 * angle.RadPerDeg, Lat: 78.2 * angle.RadPerDeg}
	day := utc(2024, time.December, 21, 12, 0)
	c := coords.New(day, svalbard, ephem.PS{})

	_, err := RiseTransitSetDay(day, c, sun, Rise, SunMoonAltitude)
	assert.ErrorIs(t, err, ErrNeverRises)
	_, err = RiseTransitSetDay(day, c, sun, Set, SunMoonAltitude)
	assert.ErrorIs(t, err, ErrNoEvent)
}

// New moons of 2024, UTC.
var newMoons2024 = []astrotime.Time{
	utc(2024, time.January, 11, 11, 57),
	utc(2024, time.February, 9, 22, 59),
	utc(2024, time.March, 10, 9, 0),
	utc(2024, time.April, 8, 18, 21),
	utc(2024, time.May, 8, 3, 22),
	utc(2024, time.June, 6, 12, 38),
	utc(2024, time.July, 5, 22, 57),
	utc(2024, time.August, 4, 11, 13),
	utc(2024, time.September, 3, 1, 55),
	utc(2024, time.October, 2, 18, 49),
	utc(2024, time.November, 1, 12, 47),
	utc(2024, time.December, 1, 6, 21),
	utc(2024, time.December, 30, 22, 27),
}

func TestFindConjunctionsNewMoons(t *testing.T) {
	sun, moon := sunAndMoon()
	start := utc(2024, time.January, 1, 0, 0)
	c := coords.New(start, geocenter, ephem.PS{})

	events, err := FindConjunctions(c, sun, moon, start, utc(2025, time.January, 1, 0, 0), 20)
	require.NoError(t, err)
	require.Len(t, events, len(newMoons2024))

	for i, ev := range events {
		if ev.Value > 5.5*angle.RadPerDeg {
			t.Errorf("event %d separation = %.2f deg", i, ev.Value*angle.DegPerRad)
		}
		if i > 0 {
			gap := ev.Time.Sub(events[i-1].Time)
			if gap < 28.9 || gap > 30.2 {
				t.Errorf("gap before event %d = %.2f days", i, gap)
			}
		}
		nearest := math.Inf(1)
		for _, nm := range newMoons2024 {
			nearest = math.Min(nearest, math.Abs(ev.Time.Sub(nm)))
		}
		if nearest > 0.5 {
			t.Errorf("event %d at %v is %.2f days from any new moon", i, ev.Time.GoTime(), nearest)
		}
	}
	mean := events[len(events)-1].Time.Sub(events[0].Time) / float64(len(events)-1)
	assert.InDelta(t, 29.53, mean, 0.15)

	capped, err := FindConjunctions(c, sun, moon, start, utc(2025, time.January, 1, 0, 0), 3)
	require.NoError(t, err)
	require.Len(t, capped, 3)
	for i := range capped {
		assert.InDelta(t, events[i].Time.JD, capped[i].Time.JD, 1e-9)
	}
}

// Extrema within a scan step of either end of the window are still found,
// and nothing outside the window is reported.
func TestFindConjunctionsNearWindowEdges(t *testing.T) {
	sun, moon := sunAndMoon()
	first, last := newMoons2024[0], newMoons2024[len(newMoons2024)-1]

	tests := []struct {
		name       string
		start, end astrotime.Time
		want       int
	}{
		{"new moon 3h after start", first.Add(-3.0 / 24), first.Add(10), 1},
		{"new moon 3h before end", last.Add(-10), last.Add(3.0 / 24), 1},
		{"year from two hours before the first", utc(2024, time.January, 11, 10, 0), utc(2025, time.January, 11, 10, 0), 13},
		{"window between new moons", first.Add(2), first.Add(20), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := coords.New(tt.start, geocenter, ephem.PS{})
			events, err := FindConjunctions(c, sun, moon, tt.start, tt.end, 20)
			require.NoError(t, err)
			require.Len(t, events, tt.want)
			for _, ev := range events {
				assert.False(t, ev.Time.Before(tt.start) || ev.Time.After(tt.end),
					"event at %v outside window", ev.Time.GoTime())
			}
		})
	}
}

func TestFindOppositionsFullMoons(t *testing.T) {
	sun, moon := sunAndMoon()
	start := utc(2024, time.January, 1, 0, 0)
	c := coords.New(start, geocenter, ephem.PS{})

	events, err := FindOppositions(c, sun, moon, start, utc(2024, time.April, 1, 0, 0), 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	// Full moons of January, February and March 2024.
	want := []astrotime.Time{
		utc(2024, time.January, 25, 17, 54),
		utc(2024, time.February, 24, 12, 30),
		utc(2024, time.March, 25, 7, 0),
	}
	for i, ev := range events {
		assert.InDelta(t, want[i].JD, ev.Time.JD, 0.5, "full moon %d", i)
		assert.Greater(t, ev.Value*angle.DegPerRad, 174.0)
	}
}

func TestFindNearestDistancesMarsPerihelion(t *testing.T) {
	sun := catalog.NewPlanet(catalog.TypePlanet, catalog.Planet{ID: ephem.Sun}, []string{"Sun"}, nil)
	mars := catalog.NewPlanet(catalog.TypePlanet, catalog.Planet{ID: ephem.Mars}, []string{"Mars"}, nil)
	start := utc(2024, time.January, 1, 0, 0)
	c := coords.New(start, geocenter, ephem.PS{})

	events, err := FindNearestDistances(c, sun, mars, start, utc(2024, time.December, 31, 0, 0), 5)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.InDelta(t, utc(2024, time.May, 8, 0, 0).JD, events[0].Time.JD, 3)
	assert.InDelta(t, 1.3814, events[0].Value, 0.003)

	far, err := FindFarthestDistances(c, sun, mars, utc(2023, time.January, 1, 0, 0), start, 5)
	require.NoError(t, err)
	require.Len(t, far, 1)
	assert.InDelta(t, utc(2023, time.May, 30, 0, 0).JD, far[0].Time.JD, 3)
	assert.InDelta(t, 1.6660, far[0].Value, 0.003)
}

func TestNextMoonPhase(t *testing.T) {
	sun, moon := sunAndMoon()
	start := utc(2024, time.January, 1, 0, 0)
	greenwich := vecmat.Spherical{Lat: 51.4769 * angle.RadPerDeg}
	c := coords.New(start, greenwich, ephem.PS{})

	tests := []struct {
		phase Phase
		want  astrotime.Time
	}{
		{LastQuarter, utc(2024, time.January, 4, 3, 30)},
		{New, utc(2024, time.January, 11, 11, 57)},
		{FirstQuarter, utc(2024, time.January, 18, 3, 53)},
		{Full, utc(2024, time.January, 25, 17, 54)},
	}
	for _, tt := range tests {
		got, converged, err := NextMoonPhase(start, c, sun, moon, tt.phase)
		require.NoError(t, err)
		if !converged {
			t.Errorf("%v did not converge", tt.phase)
		}
		if d := math.Abs(got.Sub(tt.want)); d > 15*minute {
			t.Errorf("%v = %v, want %v", tt.phase, got.GoTime(), tt.want.GoTime())
		}
	}
	assert.Equal(t, greenwich, c.Location(), "caller's coordinates untouched")
	assert.Equal(t, start, c.Time())
}
