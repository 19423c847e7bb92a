package propagation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/star/skycore/internal/astrotime"
	"github.com/star/skycore/internal/coords"
	"github.com/star/skycore/internal/tle"
	"github.com/star/skycore/internal/vecmat"
)

// WorkerPool fans SGP4 propagation of a batch of satellites out over a
// fixed number of goroutines.
type WorkerPool struct {
	workers int
	site    *vecmat.Spherical
	logger  *slog.Logger
}

// NewWorkerPool creates a worker pool with the given number of workers.
// site may be nil; otherwise snapshots carry look angles from it.
func NewWorkerPool(workers int, site *vecmat.Spherical, logger *slog.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{workers: workers, site: site, logger: logger}
}

// batchResult is one slot of a batch; ok is false for satellites that
// failed or were never reached before cancellation.
type batchResult struct {
	snapshot Snapshot
	err      error
	ok       bool
}

// PropagateBatch propagates every entry to t. props may hold prebuilt
// propagators keyed by NORAD number; entries without one get a fresh one.
// Snapshots come back in entry order. Failures are logged and counted, and
// entries not started before ctx is done are left out.
func (wp *WorkerPool) PropagateBatch(ctx context.Context, entries []tle.TLEEntry, t time.Time, props map[int]*SGP4Propagator) (snapshots []Snapshot, success, failed int) {
	if len(entries) == 0 {
		return nil, 0, 0
	}

	at := astrotime.FromGoTime(t)
	results := make([]batchResult, len(entries))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range min(wp.workers, len(entries)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each worker owns its Coordinates.
			var c *coords.Coordinates
			if wp.site != nil {
				c = coords.New(at, *wp.site, nil)
			}
			for i := range jobs {
				results[i] = propagateOne(entries[i], props[entries[i].NORADID], t, at, c)
			}
		}()
	}

	for i := range entries {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	snapshots = make([]Snapshot, 0, len(entries))
	for i, r := range results {
		switch {
		case r.ok:
			success++
			snapshots = append(snapshots, r.snapshot)
		case r.err != nil:
			failed++
			wp.logger.Warn("propagation failed", "norad_id", entries[i].NORADID, "error", r.err)
		}
	}
	return snapshots, success, failed
}

// propagateOne runs SGP4 for one satellite, locates its sub-point and,
// when c is non-nil, its look angles from c's site.
func propagateOne(e tle.TLEEntry, prop *SGP4Propagator, t time.Time, at astrotime.Time, c *coords.Coordinates) batchResult {
	if prop == nil {
		var err error
		if prop, err = NewSGP4Propagator(e); err != nil {
			return batchResult{err: err}
		}
	}

	state, err := prop.Propagate(t)
	if err != nil {
		return batchResult{err: err}
	}

	lon, lat, alt := state.Geodetic(at)
	snap := Snapshot{
		NORADID:   e.NORADID,
		Name:      e.Name,
		Time:      t,
		State:     state,
		Longitude: lon,
		Latitude:  lat,
		Altitude:  alt,
	}
	if c != nil {
		c.SetTime(at)
		snap.Azimuth, snap.Elevation, snap.Range, err = state.LookAngles(c)
		if err != nil {
			return batchResult{err: err}
		}
		snap.HasLook = true
	}
	return batchResult{snapshot: snap, ok: true}
}
