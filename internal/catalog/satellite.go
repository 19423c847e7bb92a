package catalog

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/star/skycore/internal/metrics"
	"github.com/star/skycore/internal/tle"
)

// ImportTLEFile opens path and imports it with ImportTLE.
func (a *Array) ImportTLEFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening TLE file: %w", err)
	}
	defer f.Close()

	n, err := a.ImportTLE(f)
	if err != nil {
		return n, fmt.Errorf("reading %s: %w", path, err)
	}
	a.logger.Info("TLE file imported", "path", path, "satellites", n, "skipped", a.Skipped())
	return n, nil
}

// ImportTLE appends a satellite for every element set in r, two- or
// three-line, and returns how many it added.
func (a *Array) ImportTLE(r io.Reader) (int, error) {
	entries, skipped, err := tle.Parse(r, a.logger)
	if err != nil {
		return 0, err
	}
	a.skipped += skipped
	for range skipped {
		metrics.RecordCatalogRecord("tle", metrics.ResultSkipped)
	}
	for _, e := range entries {
		a.Append(NewSatellite(e))
		metrics.RecordCatalogRecord("tle", metrics.ResultOK)
	}
	return len(entries), nil
}

// ImportNamesFile opens path and imports it with ImportNames.
func (a *Array) ImportNamesFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening names file: %w", err)
	}
	defer f.Close()
	return a.ImportNames(f)
}

// ImportNames applies a McCants names file to the satellites already in
// the array, matched by NORAD number. Matching satellites take the file's
// name as their first name and its magnitude and length. It returns how
// many satellites matched.
func (a *Array) ImportNames(r io.Reader) (int, error) {
	names, err := tle.ParseNames(r, a.logger)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, o := range a.objects {
		if o.Satellite == nil {
			continue
		}
		n, ok := names[o.Satellite.TLE.NORADID]
		if !ok {
			continue
		}
		if n.Name != "" {
			if len(o.Names) == 0 {
				o.Names = []string{n.Name}
			} else if o.Names[0] != n.Name {
				o.Names = append([]string{n.Name}, o.Names...)
			}
		}
		if !math.IsInf(n.Magnitude, 0) {
			o.Satellite.StdMag = n.Magnitude
		}
		o.Satellite.Length = n.Length
		metrics.RecordCatalogRecord("names", metrics.ResultOK)
		count++
	}
	return count, nil
}

// Satellites returns the TLE entries of every satellite in the array,
// named by each object's first name.
func (a *Array) Satellites() []tle.TLEEntry {
	var out []tle.TLEEntry
	for _, o := range a.objects {
		if o.Satellite == nil {
			continue
		}
		e := o.Satellite.TLE
		if n := o.Name(0); n != "" {
			e.Name = n
		}
		out = append(out, e)
	}
	return out
}
