package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/star/skycore/internal/angle"
)

const (
	planetsCSV = "../../internal/catalog/testdata/planets.csv"
	starsCSV   = "../../internal/catalog/testdata/stars.csv"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestTimeCommand(t *testing.T) {
	out, err := execute(t, "time", "--date", "2000-01-01 12:00")
	require.NoError(t, err)
	assert.Contains(t, out, "2451545.000000")
	assert.Contains(t, out, "gregorian")
	assert.Contains(t, out, "islamic")
}

func TestConvertCommand(t *testing.T) {
	out, err := execute(t, "convert", "--from", "fundamental", "--to", "galactic",
		"--date", "2000-01-01 12:00", "17:45:37.2", "-28:56:10")
	require.NoError(t, err)
	assert.Contains(t, out, "galactic")

	_, err = execute(t, "convert", "--to", "nowhere", "0", "0")
	assert.Error(t, err)
	_, err = execute(t, "convert", "0", "95")
	assert.Error(t, err)
}

func TestImportCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	_, err := execute(t, "import", "--catalog", planetsCSV, "--catalog", starsCSV, "--out", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Ceres")
	assert.Contains(t, string(data), "Sirius")

	_, err = execute(t, "import")
	assert.Error(t, err, "no catalogs")
}

func TestEphemCommandMetricsFile(t *testing.T) {
	metricsPath := filepath.Join(t.TempDir(), "skycore.prom")
	out, err := execute(t, "--metrics-file", metricsPath, "--lat", "51.48",
		"ephem", "--catalog", planetsCSV, "--date", "2024-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Jupiter")
	assert.Contains(t, out, "Moon")

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "skycore_catalog_records_total")
}

func TestRootFlagValidation(t *testing.T) {
	_, err := execute(t, "--lat", "100", "time")
	assert.Error(t, err)
	_, err = execute(t, "--log-format", "xml", "time")
	assert.Error(t, err)
}

func TestParseAngle(t *testing.T) {
	tests := []struct {
		in    string
		hours bool
		want  float64 // degrees
	}{
		{"12.5", false, 12.5},
		{"12.5", true, 12.5},
		{"06 45 08.9", true, (6 + 45.0/60 + 8.9/3600) * 15},
		{"06:45:08.9", true, (6 + 45.0/60 + 8.9/3600) * 15},
		{"-16 42 58", false, -(16 + 42.0/60 + 58.0/3600)},
	}
	for _, tt := range tests {
		got, err := parseAngle(tt.in, tt.hours)
		if err != nil {
			t.Errorf("parseAngle(%q) error: %v", tt.in, err)
			continue
		}
		if math.Abs(got*angle.DegPerRad-tt.want) > 1e-9 {
			t.Errorf("parseAngle(%q) = %v deg, want %v", tt.in, got*angle.DegPerRad, tt.want)
		}
	}
	for _, bad := range []string{"", "abc", "10 75 00"} {
		if _, err := parseAngle(bad, false); err == nil {
			t.Errorf("parseAngle(%q) should fail", bad)
		}
	}
}

func TestMajorBody(t *testing.T) {
	for _, b := range majorBodies {
		o := majorBody(strings.ToLower(b.name))
		if o == nil || o.Name(0) != b.name {
			t.Errorf("majorBody(%q) = %v", b.name, o)
		}
	}
	if majorBody("Vulcan") != nil {
		t.Error("unknown body should be nil")
	}
}
