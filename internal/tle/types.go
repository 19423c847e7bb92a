package tle

import "time"

// TLEEntry is one satellite's two-line element set plus the fields the
// catalog and propagator need. Angles are degrees as written in the set.
type TLEEntry struct {
	NORADID        int
	Name           string
	IntlDesignator string
	Epoch          time.Time
	Inclination    float64
	RAAN           float64
	Eccentricity   float64
	ArgPerigee     float64
	MeanAnomaly    float64
	MeanMotion     float64 // revolutions per day
	BStar          float64
	ElementSet     int
	Line1          string
	Line2          string
}

// EpochRange represents the minimum and maximum epoch times in a dataset.
type EpochRange struct {
	Min time.Time
	Max time.Time
}

// Dataset is one loaded TLE file.
type Dataset struct {
	Source     string
	LoadedAt   time.Time
	EpochRange EpochRange
	Satellites []TLEEntry
	Skipped    int
}

// NewDataset wraps entries read from source and computes their epoch range.
func NewDataset(source string, entries []TLEEntry, skipped int, loadedAt time.Time) *Dataset {
	ds := &Dataset{
		Source:     source,
		LoadedAt:   loadedAt,
		Satellites: entries,
		Skipped:    skipped,
	}
	for i, e := range entries {
		if i == 0 || e.Epoch.Before(ds.EpochRange.Min) {
			ds.EpochRange.Min = e.Epoch
		}
		if i == 0 || e.Epoch.After(ds.EpochRange.Max) {
			ds.EpochRange.Max = e.Epoch
		}
	}
	return ds
}

// Find returns the entry with the given NORAD number.
func (ds *Dataset) Find(norad int) (TLEEntry, bool) {
	for _, e := range ds.Satellites {
		if e.NORADID == norad {
			return e, true
		}
	}
	return TLEEntry{}, false
}

// Names is one record of a McCants satellite names file. Sizes are
// meters; Magnitude is +Inf when the file gives none.
type Names struct {
	NORADID   int
	Name      string
	Length    float64
	Width     float64
	Depth     float64
	Magnitude float64
}
