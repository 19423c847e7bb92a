package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNormalizeKind(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		// Type codes and import formats pass through.
		{"PL", "PL"},
		{"GX", "GX"},
		{"tle", "tle"},
		{"satellite_pass", "satellite_pass"},

		// Lowercase type codes are folded.
		{"pl", "PL"},
		{"oc", "OC"},

		// Anything else collapses.
		{"", "other"},
		{"XX", "other"},
		{"1,2,3", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			got := normalizeKind(tt.kind)
			if got != tt.want {
				t.Errorf("normalizeKind(%q) = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

// TestMetricsCardinality verifies that garbage type fields from 100 bad
// CSV rows produce exactly 1 distinct kind label.
func TestMetricsCardinality(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		label := normalizeKind("Z" + string(rune('0'+i%10)) + string(rune('0'+i/10)))
		seen[label] = true
	}
	if len(seen) != 1 {
		t.Errorf("expected 1 unique label for unknown kinds, got %d: %v", len(seen), seen)
	}
}

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(catalogRecordsTotal.WithLabelValues("AS", ResultSkipped))
	RecordCatalogRecord("as", ResultSkipped)
	if got := testutil.ToFloat64(catalogRecordsTotal.WithLabelValues("AS", ResultSkipped)); got != before+1 {
		t.Errorf("catalog counter = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(passesFoundTotal)
	RecordPassesFound(3)
	if got := testutil.ToFloat64(passesFoundTotal); got != before+3 {
		t.Errorf("passes counter = %v, want %v", got, before+3)
	}
}

func TestWriteToTextfile(t *testing.T) {
	RecordEphemerisLookup("analytic", ResultOK)
	path := filepath.Join(t.TempDir(), "skycore.prom")
	if err := WriteToTextfile(path); err != nil {
		t.Fatalf("WriteToTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `skycore_ephemeris_lookups_total{result="ok",source="analytic"}`) {
		t.Errorf("textfile missing lookup series:\n%s", data)
	}
}
