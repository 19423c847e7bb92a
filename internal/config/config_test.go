package config

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/star/skycore/internal/angle"
	"github.com/star/skycore/internal/coords"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const siteYAML = `
site:
  name: greenwich
  latitude: 51.4769
  longitude: -0.0005
  altitude: 46
  zone: 0
paths:
  ephemeris: /data/de440.bin
  catalogs: [planets.csv, stars.csv]
  tle: stations.txt
  names: names.txt
passes:
  min_elevation: 15
  max_passes: 5
corrections:
  refraction: true
  aberration: false
  light_time: true
workers: 3
`

const siteTOML = `
workers = 3

[site]
name = "greenwich"
latitude = 51.4769
longitude = -0.0005
altitude = 46.0
zone = 0.0

[paths]
ephemeris = "/data/de440.bin"
catalogs = ["planets.csv", "stars.csv"]
tle = "stations.txt"
names = "names.txt"

[passes]
min_elevation = 15.0
max_passes = 5

[corrections]
refraction = true
aberration = false
light_time = true
`

func TestLoadFormatsAgree(t *testing.T) {
	want := &Config{
		Site: SiteConfig{Name: "greenwich", Latitude: 51.4769, Longitude: -0.0005, Altitude: 46},
		Paths: PathsConfig{
			Ephemeris: "/data/de440.bin",
			Catalogs:  []string{"planets.csv", "stars.csv"},
			TLE:       "stations.txt",
			Names:     "names.txt",
		},
		Passes:      PassesConfig{MinElevation: 15, MaxPasses: 5},
		Corrections: CorrectionsConfig{Refraction: true, LightTime: true},
		Workers:     3,
	}

	for _, tc := range []struct{ name, content string }{
		{"site.yaml", siteYAML},
		{"site.yml", siteYAML},
		{"site.toml", siteTOML},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Load(writeFile(t, tc.name, tc.content), testLogger())
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadEmptyPath(t *testing.T) {
	got, err := Load("", testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(writeFile(t, "site.json", "{}"), testLogger()); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("json: err = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), testLogger()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing: err = %v, want os.ErrNotExist", err)
	}
	if _, err := Load(writeFile(t, "bad.toml", "workers = [\n"), testLogger()); err == nil {
		t.Error("malformed toml: expected error")
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	path := writeFile(t, "site.yaml", `
site:
  latitude: 123
  longitude: 10
  zone: 30
passes:
  min_elevation: 95
  max_passes: 0
workers: -2
`)
	got, err := Load(path, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if got.Site.Latitude != def.Site.Latitude {
		t.Errorf("Latitude = %v, want %v", got.Site.Latitude, def.Site.Latitude)
	}
	if got.Site.Longitude != 10 {
		t.Errorf("Longitude = %v, want 10", got.Site.Longitude)
	}
	if got.Site.Zone != def.Site.Zone {
		t.Errorf("Zone = %v, want %v", got.Site.Zone, def.Site.Zone)
	}
	if got.Workers != runtime.NumCPU() {
		t.Errorf("Workers = %d, want %d", got.Workers, runtime.NumCPU())
	}
	if got.Passes.MinElevation != def.Passes.MinElevation {
		t.Errorf("MinElevation = %v, want %v", got.Passes.MinElevation, def.Passes.MinElevation)
	}
	if got.Passes.MaxPasses != def.Passes.MaxPasses {
		t.Errorf("MaxPasses = %d, want %d", got.Passes.MaxPasses, def.Passes.MaxPasses)
	}
}

func TestLocationAndOptions(t *testing.T) {
	cfg := Default()
	cfg.Site.Latitude, cfg.Site.Longitude, cfg.Site.Altitude = 45, -90, 1500
	cfg.Corrections = CorrectionsConfig{Refraction: true}

	loc := cfg.Location()
	if math.Abs(loc.Lat-45*angle.RadPerDeg) > 1e-12 || math.Abs(loc.Lon+90*angle.RadPerDeg) > 1e-12 {
		t.Errorf("Location = %+v", loc)
	}
	if loc.Rad != 1.5 {
		t.Errorf("height = %v km, want 1.5", loc.Rad)
	}

	var opts coords.Options
	for _, fn := range cfg.CoordOptions() {
		fn(&opts)
	}
	if !opts.Refraction || opts.Aberration || opts.LightTime {
		t.Errorf("options = %+v", opts)
	}
}
