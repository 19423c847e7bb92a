package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	catalogRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skycore_catalog_records_total",
			Help: "Catalog records read by importers, by record kind and result.",
		},
		[]string{"kind", "result"},
	)

	ephemerisLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skycore_ephemeris_lookups_total",
			Help: "Solar-system ephemeris lookups, by source and result.",
		},
		[]string{"source", "result"},
	)

	eventSearchDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skycore_event_search_duration_seconds",
			Help:    "Duration of astronomical event searches in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	propagationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skycore_propagation_total",
			Help: "SGP4 propagations, by result.",
		},
		[]string{"result"},
	)

	propagationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "skycore_propagation_duration_seconds",
			Help:    "Duration of batch SGP4 propagation in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	passesFoundTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "skycore_passes_found_total",
			Help: "Satellite passes found by pass prediction.",
		},
	)
)

func init() {
	prometheus.MustRegister(catalogRecordsTotal)
	prometheus.MustRegister(ephemerisLookupsTotal)
	prometheus.MustRegister(eventSearchDurationSeconds)
	prometheus.MustRegister(propagationTotal)
	prometheus.MustRegister(propagationDurationSeconds)
	prometheus.MustRegister(passesFoundTotal)
}

// Result labels.
const (
	ResultOK         = "ok"
	ResultSkipped    = "skipped"
	ResultError      = "error"
	ResultOutOfRange = "out_of_range"
)

// knownKinds bounds the kind label on catalog and event metrics; anything
// else collapses to "other" so a bad CSV cannot explode cardinality.
var knownKinds = map[string]bool{
	"PL": true, "MN": true, "AS": true, "CM": true, "ST": true, "SC": true,
	"SS": true, "DS": true, "VS": true, "DV": true, "OC": true, "GC": true,
	"BN": true, "DN": true, "PN": true, "GX": true, "CN": true, "AM": true,
	"csv": true, "tle": true, "names": true,
	"rts": true, "conjunction": true, "opposition": true, "nearest": true,
	"farthest": true, "moon_phase": true, "satellite_pass": true,
}

func normalizeKind(kind string) string {
	if knownKinds[kind] {
		return kind
	}
	if up := strings.ToUpper(kind); knownKinds[up] {
		return up
	}
	return "other"
}

// RecordCatalogRecord counts one imported (or skipped) catalog record.
func RecordCatalogRecord(kind, result string) {
	catalogRecordsTotal.WithLabelValues(normalizeKind(kind), result).Inc()
}

// RecordEphemerisLookup counts one lookup against source ("jpl" or "analytic").
func RecordEphemerisLookup(source, result string) {
	ephemerisLookupsTotal.WithLabelValues(source, result).Inc()
}

// ObserveEventSearch records the wall time of one event search started at start.
func ObserveEventSearch(kind string, start time.Time) {
	eventSearchDurationSeconds.WithLabelValues(normalizeKind(kind)).Observe(time.Since(start).Seconds())
}

// RecordPropagation adds the outcome counts of one batch and its duration.
func RecordPropagation(success, failed int, d time.Duration) {
	propagationTotal.WithLabelValues(ResultOK).Add(float64(success))
	propagationTotal.WithLabelValues(ResultError).Add(float64(failed))
	propagationDurationSeconds.Observe(d.Seconds())
}

// RecordPassesFound adds n to the passes-found counter.
func RecordPassesFound(n int) {
	passesFoundTotal.Add(float64(n))
}

// WriteToTextfile dumps the default registry in text exposition format.
func WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
