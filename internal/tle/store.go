package tle

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Store provides thread-safe access to the current TLE dataset.
type Store struct {
	dataset atomic.Pointer[Dataset]
	mu      sync.Mutex // serializes loads
}

// NewStore creates a new empty Store.
func NewStore() *Store {
	return &Store{}
}

// Get returns the current dataset, or nil if none has been loaded.
func (s *Store) Get() *Dataset {
	return s.dataset.Load()
}

// Set atomically replaces the current dataset.
func (s *Store) Set(ds *Dataset) {
	s.dataset.Store(ds)
}

// LoadFile parses the TLE file at path and makes it the current dataset.
func (s *Store) LoadFile(path string, logger *slog.Logger) (*Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening TLE file: %w", err)
	}
	defer f.Close()

	entries, skipped, err := Parse(f, logger)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	ds := NewDataset(path, entries, skipped, time.Now())
	s.Set(ds)
	logger.Info("TLE dataset loaded",
		"path", path,
		"satellites", len(entries),
		"skipped", skipped,
		"epoch_min", ds.EpochRange.Min,
		"epoch_max", ds.EpochRange.Max,
	)
	return ds, nil
}

// ElementAge returns how far at lies from the epoch furthest from it in
// the current dataset, or zero if none has been loaded. SGP4 accuracy
// falls off with this age.
func (s *Store) ElementAge(at time.Time) time.Duration {
	ds := s.dataset.Load()
	if ds == nil || len(ds.Satellites) == 0 {
		return 0
	}
	return max(absDuration(at.Sub(ds.EpochRange.Min)), absDuration(at.Sub(ds.EpochRange.Max)))
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
