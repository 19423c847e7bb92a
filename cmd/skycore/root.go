package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/star/skycore/internal/astrotime"
	"github.com/star/skycore/internal/config"
	"github.com/star/skycore/internal/coords"
	"github.com/star/skycore/internal/ephem"
	"github.com/star/skycore/internal/metrics"
)

// app is the state shared by every subcommand once the root pre-run has
// loaded configuration and built the logger.
type app struct {
	logger *slog.Logger
	cfg    *config.Config
	runID  string

	configPath  string
	lat, lon    float64
	alt, zone   float64
	logFormat   string
	logLevel    string
	metricsFile string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "skycore",
		Short:         "Astronomical computations: time, coordinates, ephemerides and events",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.metricsFile == "" {
				return nil
			}
			if err := metrics.WriteToTextfile(a.metricsFile); err != nil {
				return fmt.Errorf("writing metrics: %w", err)
			}
			a.logger.Debug("metrics written", "path", a.metricsFile)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "site config file (.yaml, .yml or .toml)")
	pf.Float64Var(&a.lat, "lat", 0, "observer latitude, degrees north")
	pf.Float64Var(&a.lon, "lon", 0, "observer longitude, degrees east")
	pf.Float64Var(&a.alt, "alt", 0, "observer altitude, meters")
	pf.Float64Var(&a.zone, "zone", 0, "time zone, hours east of UTC")
	pf.StringVar(&a.logFormat, "log-format", "json", "log format: json or text")
	pf.StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	pf.StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	root.AddCommand(
		newTimeCmd(a),
		newConvertCmd(a),
		newRTSCmd(a),
		newConjCmd(a),
		newPhasesCmd(a),
		newPassesCmd(a),
		newTrackCmd(a),
		newEphemCmd(a),
		newImportCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	logger, err := newLogger(cmd.ErrOrStderr(), a.logFormat, a.logLevel)
	if err != nil {
		return err
	}
	a.runID = uuid.NewString()
	a.logger = logger.With("run_id", a.runID, "command", cmd.Name())

	cfg, err := config.Load(a.configPath, a.logger)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("lat") {
		cfg.Site.Latitude = a.lat
	}
	if flags.Changed("lon") {
		cfg.Site.Longitude = a.lon
	}
	if flags.Changed("alt") {
		cfg.Site.Altitude = a.alt
	}
	if flags.Changed("zone") {
		cfg.Site.Zone = a.zone
	}
	if cfg.Site.Latitude < -90 || cfg.Site.Latitude > 90 {
		return fmt.Errorf("--lat %v out of range [-90, 90]", cfg.Site.Latitude)
	}
	a.cfg = cfg
	return nil
}

// newLogger builds the root logger: slog's JSON handler, or a
// charmbracelet logger serving as the slog handler for text output.
func newLogger(w io.Writer, format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", level)
	}

	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
	case "text":
		h := charmlog.NewWithOptions(w, charmlog.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           charmlog.Level(lvl),
		})
		return slog.New(h), nil
	}
	return nil, fmt.Errorf("invalid --log-format %q: want json or text", format)
}

// parseTime reads a date in the Gregorian/Julian calendar in the site's
// zone. An empty string means now.
func (a *app) parseTime(s string) (astrotime.Time, error) {
	if s == "" {
		t := astrotime.Now()
		t.Zone = a.cfg.Site.Zone
		return t, nil
	}
	d, err := astrotime.ParseDate(s, astrotime.GregorianJulian, a.cfg.Site.Zone)
	if err != nil {
		return astrotime.Time{}, err
	}
	return astrotime.FromCalendar(d)
}

// openEphemeris opens the configured JPL file, or the analytic theory when
// none is configured. The caller closes it.
func (a *app) openEphemeris() (*ephem.Source, error) {
	return ephem.OpenSource(a.cfg.Paths.Ephemeris, a.logger)
}

// coordinates returns a context for the site at t.
func (a *app) coordinates(t astrotime.Time, eph coords.Ephemeris) *coords.Coordinates {
	return coords.New(t, a.cfg.Location(), eph, a.cfg.CoordOptions()...)
}

// formatTime shows t as a calendar date in its own zone.
func formatTime(t astrotime.Time) string {
	d, err := t.ToCalendar(astrotime.GregorianJulian)
	if err != nil {
		return fmt.Sprintf("JD %.5f", t.JD)
	}
	return fmt.Sprintf("%s %+05.1fh", d, t.Zone)
}

func closeQuietly(c io.Closer, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Warn("close failed", "error", err)
	}
}
