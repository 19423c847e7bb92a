// Package config loads observer site files for the skycore CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/star/skycore/internal/angle"
	"github.com/star/skycore/internal/coords"
	"github.com/star/skycore/internal/vecmat"
)

// ErrUnsupportedFormat is returned for a config file whose extension is
// not .yaml, .yml or .toml.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config is one observer site and the files and settings used with it.
type Config struct {
	Site        SiteConfig        `yaml:"site" toml:"site"`
	Paths       PathsConfig       `yaml:"paths" toml:"paths"`
	Passes      PassesConfig      `yaml:"passes" toml:"passes"`
	Corrections CorrectionsConfig `yaml:"corrections" toml:"corrections"`
	Workers     int               `yaml:"workers" toml:"workers"`
}

// SiteConfig locates the observer. Angles are degrees, east and north
// positive; Zone is hours east of UTC.
type SiteConfig struct {
	Name      string  `yaml:"name" toml:"name"`
	Latitude  float64 `yaml:"latitude" toml:"latitude"`
	Longitude float64 `yaml:"longitude" toml:"longitude"`
	Altitude  float64 `yaml:"altitude" toml:"altitude"` // meters
	Zone      float64 `yaml:"zone" toml:"zone"`
}

type PathsConfig struct {
	Ephemeris string   `yaml:"ephemeris" toml:"ephemeris"`
	Catalogs  []string `yaml:"catalogs" toml:"catalogs"`
	TLE       string   `yaml:"tle" toml:"tle"`
	Names     string   `yaml:"names" toml:"names"`
}

type PassesConfig struct {
	MinElevation float64 `yaml:"min_elevation" toml:"min_elevation"` // degrees
	MaxPasses    int     `yaml:"max_passes" toml:"max_passes"`
}

type CorrectionsConfig struct {
	Refraction bool `yaml:"refraction" toml:"refraction"`
	Aberration bool `yaml:"aberration" toml:"aberration"`
	LightTime  bool `yaml:"light_time" toml:"light_time"`
}

// Default returns the configuration used when no file is given: the
// Greenwich meridian at the equator, all corrections but refraction on.
func Default() *Config {
	return &Config{
		Site: SiteConfig{Name: "default"},
		Passes: PassesConfig{
			MinElevation: 10,
			MaxPasses:    10,
		},
		Corrections: CorrectionsConfig{
			Aberration: true,
			LightTime:  true,
		},
		Workers: runtime.NumCPU(),
	}
}

// Load reads the file at path over the defaults, choosing the decoder by
// extension. An empty path returns the defaults. Out-of-range values are
// logged and replaced by their defaults.
func Load(path string, logger *slog.Logger) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.validate(logger)
	logger.Info("config loaded",
		"path", path,
		"site", cfg.Site.Name,
		"latitude", cfg.Site.Latitude,
		"longitude", cfg.Site.Longitude,
		"workers", cfg.Workers,
	)
	return cfg, nil
}

func (c *Config) validate(logger *slog.Logger) {
	def := Default()

	if lat := c.Site.Latitude; math.IsNaN(lat) || lat < -90 || lat > 90 {
		logger.Warn("invalid site latitude, using default", "value", lat, "default", def.Site.Latitude)
		c.Site.Latitude = def.Site.Latitude
	}
	if lon := c.Site.Longitude; math.IsNaN(lon) || lon < -180 || lon > 360 {
		logger.Warn("invalid site longitude, using default", "value", lon, "default", def.Site.Longitude)
		c.Site.Longitude = def.Site.Longitude
	}
	if z := c.Site.Zone; math.IsNaN(z) || z < -14 || z > 14 {
		logger.Warn("invalid site zone, using default", "value", z, "default", def.Site.Zone)
		c.Site.Zone = def.Site.Zone
	}
	if c.Workers < 1 {
		logger.Warn("invalid workers value, using default", "value", c.Workers, "default", def.Workers)
		c.Workers = def.Workers
	}
	if el := c.Passes.MinElevation; math.IsNaN(el) || el < -90 || el > 90 {
		logger.Warn("invalid passes.min_elevation value, using default", "value", el, "default", def.Passes.MinElevation)
		c.Passes.MinElevation = def.Passes.MinElevation
	}
	if c.Passes.MaxPasses < 1 {
		logger.Warn("invalid passes.max_passes value, using default", "value", c.Passes.MaxPasses, "default", def.Passes.MaxPasses)
		c.Passes.MaxPasses = def.Passes.MaxPasses
	}
}

// Location returns the site in the form coords.New expects.
func (c *Config) Location() vecmat.Spherical {
	return vecmat.Spherical{
		Lon: c.Site.Longitude * angle.RadPerDeg,
		Lat: c.Site.Latitude * angle.RadPerDeg,
		Rad: c.Site.Altitude / 1000,
	}
}

// CoordOptions returns the configured corrections as coords options.
func (c *Config) CoordOptions() []coords.Option {
	return []coords.Option{
		coords.WithRefraction(c.Corrections.Refraction),
		coords.WithAberration(c.Corrections.Aberration),
		coords.WithLightTime(c.Corrections.LightTime),
	}
}
