// Package ephem supplies solar-system positions: a JPL DE file when one is
// open and covers the date, otherwise a low-precision analytic theory.
package ephem

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/star/skycore/internal/ephem/jpl"
	"github.com/star/skycore/internal/metrics"
	"github.com/star/skycore/internal/vecmat"
)

// Source is a coords.Ephemeris backed by an optional JPL reader with the
// PS theory as fallback. It is safe for concurrent use; lookups against
// the reader are serialized since the reader caches one record.
type Source struct {
	mu     sync.Mutex
	de     *jpl.Reader
	ps     PS
	logger *slog.Logger

	warnedRange bool
}

// NewSource returns a Source over de, which may be nil or closed.
func NewSource(de *jpl.Reader, logger *slog.Logger) *Source {
	return &Source{de: de, logger: logger}
}

// OpenSource opens the DE file at path. An empty path yields an
// analytic-only Source.
func OpenSource(path string, logger *slog.Logger) (*Source, error) {
	if path == "" {
		logger.Info("no JPL ephemeris configured, using analytic theory")
		return NewSource(nil, logger), nil
	}
	var de jpl.Reader
	if err := de.Open(path); err != nil {
		return nil, fmt.Errorf("open ephemeris %s: %w", path, err)
	}
	logger.Info("JPL ephemeris opened",
		"path", path,
		"version", de.Version(),
		"start_jed", de.StartJED(),
		"stop_jed", de.StopJED(),
	)
	return NewSource(&de, logger), nil
}

// Close releases the DE file, if any.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.de == nil {
		return nil
	}
	return s.de.Close()
}

// Describe names the active backend.
func (s *Source) Describe() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.de != nil && s.de.IsOpen() {
		return s.de.String()
	}
	return "analytic"
}

// PositionVelocity returns heliocentric J2000 equatorial position (AU) and
// velocity (AU/day) for body 0-10 at jed.
func (s *Source) PositionVelocity(body int, jed float64) (pos, vel vecmat.Vector, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.de != nil && s.de.IsOpen() {
		pos, vel, err = s.de.Compute(body, jed, true)
		switch {
		case err == nil:
			metrics.RecordEphemerisLookup("jpl", metrics.ResultOK)
			return pos, vel, nil
		case errors.Is(err, jpl.ErrOutOfRange):
			metrics.RecordEphemerisLookup("jpl", metrics.ResultOutOfRange)
			if !s.warnedRange {
				s.logger.Warn("date outside JPL ephemeris, falling back to analytic theory",
					"jed", jed,
					"start_jed", s.de.StartJED(),
					"stop_jed", s.de.StopJED(),
				)
				s.warnedRange = true
			}
		default:
			metrics.RecordEphemerisLookup("jpl", metrics.ResultError)
			return pos, vel, fmt.Errorf("jpl body %d: %w", body, err)
		}
	}

	pos, vel, err = s.ps.PositionVelocity(body, jed)
	if err != nil {
		metrics.RecordEphemerisLookup("analytic", metrics.ResultError)
		return pos, vel, err
	}
	metrics.RecordEphemerisLookup("analytic", metrics.ResultOK)
	return pos, vel, nil
}

// Nutations returns JPL nutation angles at jed when the open file carries
// them. ok is false otherwise and callers use the series in coords.
func (s *Source) Nutations(jed float64) (dpsi, deps float64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.de == nil || !s.de.IsOpen() {
		return 0, 0, false
	}
	dpsi, deps, err := s.de.Nutations(jed)
	if err != nil {
		return 0, 0, false
	}
	return dpsi, deps, true
}
