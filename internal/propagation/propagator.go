package propagation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/star/skycore/internal/metrics"
	"github.com/star/skycore/internal/tle"
)

// ErrNoDataset is returned when the store has no TLE data loaded.
var ErrNoDataset = errors.New("no TLE dataset loaded")

// Propagator generates ground-track keyframes for the dataset held in a
// tle.Store. It keeps one SGP4 propagator per satellite of the current
// dataset and rebuilds them when the store is given a new one.
type Propagator struct {
	store  *tle.Store
	pool   *WorkerPool
	config PropConfig
	logger *slog.Logger

	mu      sync.Mutex
	builtOn *tle.Dataset
	props   map[int]*SGP4Propagator
}

// NewPropagator creates a new propagation orchestrator.
func NewPropagator(store *tle.Store, config PropConfig, logger *slog.Logger) *Propagator {
	return &Propagator{
		store:  store,
		pool:   NewWorkerPool(config.Workers, config.Site, logger),
		config: config,
		logger: logger,
	}
}

// propagators returns the SGP4 propagators for ds, building them on first
// use. Entries whose elements SGP4 rejects are logged and left out; the
// worker pool reports them again when it meets them.
func (p *Propagator) propagators(ds *tle.Dataset) map[int]*SGP4Propagator {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.builtOn == ds {
		return p.props
	}

	props := make(map[int]*SGP4Propagator, len(ds.Satellites))
	rejected := 0
	for _, e := range ds.Satellites {
		if _, dup := props[e.NORADID]; dup {
			continue
		}
		sp, err := NewSGP4Propagator(e)
		if err != nil {
			p.logger.Warn("sgp4 init failed", "norad_id", e.NORADID, "error", err)
			rejected++
			continue
		}
		props[e.NORADID] = sp
	}
	p.logger.Info("sgp4 propagators built",
		"source", ds.Source,
		"satellites", len(props),
		"rejected", rejected,
	)
	p.builtOn, p.props = ds, props
	return props
}

// PropagateToTime returns the keyframe for the store's current dataset at t.
func (p *Propagator) PropagateToTime(ctx context.Context, t time.Time) (*Keyframe, error) {
	ds := p.store.Get()
	if ds == nil {
		return nil, ErrNoDataset
	}

	start := time.Now()
	snaps, ok, failed := p.pool.PropagateBatch(ctx, ds.Satellites, t, p.propagators(ds))
	elapsed := time.Since(start)
	metrics.RecordPropagation(ok, failed, elapsed)

	p.logger.Debug("keyframe propagated",
		"time", t.UTC().Format(time.RFC3339),
		"success", ok,
		"errors", failed,
		"duration_ms", elapsed.Milliseconds(),
	)
	return &Keyframe{Timestamp: t, Satellites: snaps}, nil
}

// GenerateKeyframes returns keyframes every config.Step from start through
// start+config.Horizon. On cancellation it returns the frames made so far
// with the context's error.
func (p *Propagator) GenerateKeyframes(ctx context.Context, start time.Time) ([]*Keyframe, error) {
	if p.store.Get() == nil {
		return nil, ErrNoDataset
	}
	if p.config.Step <= 0 {
		return nil, fmt.Errorf("keyframe step %v must be positive", p.config.Step)
	}

	n := int(p.config.Horizon/p.config.Step) + 1
	frames := make([]*Keyframe, 0, n)
	for i := range n {
		if err := ctx.Err(); err != nil {
			return frames, err
		}
		t := start.Add(time.Duration(i) * p.config.Step)
		kf, err := p.PropagateToTime(ctx, t)
		if err != nil {
			return frames, fmt.Errorf("keyframe %d at %s: %w", i, t.Format(time.RFC3339), err)
		}
		frames = append(frames, kf)
	}
	return frames, nil
}
