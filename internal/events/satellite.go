package events

import (
	"time"

	"github.com/star/skycore/internal/angle"
	"github.com/star/skycore/internal/astrotime"
	"github.com/star/skycore/internal/catalog"
	"github.com/star/skycore/internal/coords"
	"github.com/star/skycore/internal/metrics"
)

const (
	passCoarseStep = 1.0 / (24 * 60)            // one minute, in days
	passFineStep   = 1 / astrotime.SecondsPerDay // one second
	passFineBelow  = -1 * angle.RadPerDeg        // fine stepping starts here
)

// FindSatellitePasses scans [start, end] for passes of sat above minAlt
// radians, at most maxCount of them. The scan steps a minute at a time
// while the satellite is more than a degree below the horizon and a
// second at a time otherwise. Rising and setting are the first samples
// above and below minAlt; transit is the highest sample. A pass already
// under way at start, or not finished by end, is left out. c's time and
// sat's position are restored before returning.
func FindSatellitePasses(c *coords.Coordinates, sat *catalog.Object, start, end astrotime.Time, minAlt float64, maxCount int) ([]Pass, error) {
	defer metrics.ObserveEventSearch("satellite_pass", time.Now())

	saved := c.Time()
	defer func() {
		c.SetTime(saved)
		_ = sat.ComputeEphemeris(c)
	}()

	var (
		passes   []Pass
		pass     Pass
		inPass   bool
		prevJD   float64
		prevAlt  float64
		havePrev bool
	)
	// After a rewind, fine stepping continues through fineTo.
	fineTo := start.JD
	step := passCoarseStep

	for jd := start.JD; jd <= end.JD && len(passes) < maxCount; jd += step {
		c.SetTime(astrotime.New(jd, start.Zone))
		if err := sat.ComputeEphemeris(c); err != nil {
			return passes, err
		}
		hor := sat.Horizon(c)
		alt := hor.Lat

		if alt > passFineBelow && step == passCoarseStep && havePrev {
			// A coarse step landed near the horizon; redo it a second at a time.
			fineTo = jd
			step = passFineStep
			jd = prevJD
			continue
		}
		if alt > passFineBelow || jd < fineTo {
			step = passFineStep
		} else {
			step = passCoarseStep
		}

		ev := PassEvent{Time: c.Time(), Azimuth: hor.Lon, Altitude: alt}
		switch {
		case !havePrev:
			// A pass under way at start is skipped.
		case !inPass && prevAlt <= minAlt && alt > minAlt:
			inPass = true
			pass = Pass{Rising: ev, Transit: ev}
		case inPass && alt > pass.Transit.Altitude:
			pass.Transit = ev
		case inPass && alt <= minAlt:
			pass.Setting = ev
			passes = append(passes, pass)
			inPass = false
		}

		prevJD, prevAlt, havePrev = jd, alt, true
	}
	return passes, nil
}
