// Package passes predicts satellite passes over one observer for many
// satellites at once.
package passes

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/star/skycore/internal/angle"
	"github.com/star/skycore/internal/astrotime"
	"github.com/star/skycore/internal/catalog"
	"github.com/star/skycore/internal/coords"
	"github.com/star/skycore/internal/events"
	"github.com/star/skycore/internal/metrics"
	"github.com/star/skycore/internal/propagation"
	"github.com/star/skycore/internal/tle"
	"github.com/star/skycore/internal/vecmat"
)

// GroundTrackPoint is a sub-satellite position at a specific time during a pass.
type GroundTrackPoint struct {
	Time      time.Time `json:"time"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Altitude  float64   `json:"altitude"`  // meters
	Elevation float64   `json:"elevation"` // degrees above observer's horizon
}

// PassEvent describes a single satellite pass over an observer location.
// Angles are degrees.
type PassEvent struct {
	StartTime        time.Time          `json:"start_time"`
	MaxElevationTime time.Time          `json:"max_elevation_time"`
	EndTime          time.Time          `json:"end_time"`
	DurationSeconds  float64            `json:"duration_seconds"`
	MaxElevation     float64            `json:"max_elevation"`
	AzimuthAtMax     float64            `json:"azimuth_at_max"`
	StartAzimuth     float64            `json:"start_azimuth"`
	EndAzimuth       float64            `json:"end_azimuth"`
	GroundTrack      []GroundTrackPoint `json:"ground_track"`
}

// SatellitePasses holds the predicted passes for one satellite.
type SatellitePasses struct {
	NORADID int         `json:"norad_id"`
	Name    string      `json:"name,omitempty"`
	Passes  []PassEvent `json:"passes"`
	Error   string      `json:"error,omitempty"`
}

// Observer is a site on the WGS84 ellipsoid.
type Observer struct {
	LatDeg float64
	LonDeg float64 // east positive
	AltM   float64
}

// Location returns o in the form coords.New expects.
func (o Observer) Location() vecmat.Spherical {
	return vecmat.Spherical{
		Lon: o.LonDeg * angle.RadPerDeg,
		Lat: o.LatDeg * angle.RadPerDeg,
		Rad: o.AltM / 1000,
	}
}

// Request holds the parameters for a pass prediction request.
type Request struct {
	Observer     Observer
	Entries      []tle.TLEEntry
	Start        time.Time
	HorizonHours float64
	MinElevation float64 // degrees
	MaxPasses    int

	// Workers bounds the satellites predicted concurrently; zero means
	// runtime.NumCPU().
	Workers int

	// Ephemeris is optional. Without one positions stay geocentric, which
	// is all pass geometry needs.
	Ephemeris coords.Ephemeris
}

const (
	groundTrackStep = 10 * time.Second
	minPassDur      = 10 * time.Second
)

// Predict computes satellite passes for the given request. Satellites run
// concurrently, each with its own Coordinates. A satellite that fails
// reports its error in its result; the returned error is the context's.
func Predict(ctx context.Context, req Request) ([]SatellitePasses, error) {
	results := make([]SatellitePasses, len(req.Entries))

	workers := req.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, e := range req.Entries {
		g.Go(func() error {
			res := SatellitePasses{NORADID: e.NORADID, Name: e.Name}
			if gctx.Err() != nil {
				res.Error = "cancelled"
				results[i] = res
				return nil
			}
			passes, err := predictSatellite(req, e)
			if err != nil {
				res.Error = err.Error()
			}
			res.Passes = passes
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	var found int
	for _, r := range results {
		found += len(r.Passes)
	}
	metrics.RecordPassesFound(found)

	return results, ctx.Err()
}

// predictSatellite finds all passes for a single satellite.
func predictSatellite(req Request, entry tle.TLEEntry) ([]PassEvent, error) {
	prop, err := propagation.NewSGP4Propagator(entry)
	if err != nil {
		return nil, fmt.Errorf("sgp4 init: %w", err)
	}

	start := astrotime.FromGoTime(req.Start)
	end := start.Add(req.HorizonHours / 24)
	c := coords.New(start, req.Observer.Location(), req.Ephemeris)
	sat := catalog.NewSatellite(entry)

	found, err := events.FindSatellitePasses(c, sat, start, end, req.MinElevation*angle.RadPerDeg, req.MaxPasses)
	if err != nil {
		return nil, err
	}

	passes := make([]PassEvent, 0, len(found))
	for _, p := range found {
		ev := passEvent(p)
		if ev.EndTime.Sub(ev.StartTime) < minPassDur {
			continue
		}
		if ev.GroundTrack, err = groundTrack(c, sat, prop, p); err != nil {
			return passes, err
		}
		passes = append(passes, ev)
	}
	return passes, nil
}

func passEvent(p events.Pass) PassEvent {
	start, peak, end := p.Rising.Time.GoTime(), p.Transit.Time.GoTime(), p.Setting.Time.GoTime()
	return PassEvent{
		StartTime:        start,
		MaxElevationTime: peak,
		EndTime:          end,
		DurationSeconds:  end.Sub(start).Seconds(),
		MaxElevation:     p.Transit.Altitude * angle.DegPerRad,
		AzimuthAtMax:     p.Transit.Azimuth * angle.DegPerRad,
		StartAzimuth:     p.Rising.Azimuth * angle.DegPerRad,
		EndAzimuth:       p.Setting.Azimuth * angle.DegPerRad,
	}
}

// groundTrack samples the sub-satellite point every groundTrackStep from
// rising until setting.
func groundTrack(c *coords.Coordinates, sat *catalog.Object, prop *propagation.SGP4Propagator, p events.Pass) ([]GroundTrackPoint, error) {
	step := groundTrackStep.Seconds() / astrotime.SecondsPerDay
	var track []GroundTrackPoint
	for jd := p.Rising.Time.JD; jd < p.Setting.Time.JD; jd += step {
		t := astrotime.New(jd, p.Rising.Time.Zone)
		state, err := prop.PropagateJD(jd)
		if err != nil {
			return track, err
		}
		c.SetTime(t)
		if err := sat.ComputeEphemeris(c); err != nil {
			return track, err
		}
		lon, lat, alt := state.Geodetic(t)
		track = append(track, GroundTrackPoint{
			Time:      t.GoTime(),
			Latitude:  lat * angle.DegPerRad,
			Longitude: lon * angle.DegPerRad,
			Altitude:  alt * 1000,
			Elevation: sat.Horizon(c).Lat * angle.DegPerRad,
		})
	}
	return track, nil
}
