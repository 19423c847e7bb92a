package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/star/skycore/internal/angle"
	"github.com/star/skycore/internal/catalog"
	"github.com/star/skycore/internal/passes"
	"github.com/star/skycore/internal/propagation"
	"github.com/star/skycore/internal/tle"
)

// SGP4 errors grow quickly once elements are more than a couple of weeks
// from the propagation time.
const staleElements = 14 * 24 * time.Hour

func newPassesCmd(a *app) *cobra.Command {
	var (
		tlePath   string
		namesPath string
		start     string
		hours     float64
		minEl     float64
		maxPasses int
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "passes",
		Short: "Predict satellite passes over the site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tlePath == "" {
				tlePath = a.cfg.Paths.TLE
			}
			if tlePath == "" {
				return fmt.Errorf("no TLE file: use --tle or paths.tle in the config")
			}
			if namesPath == "" {
				namesPath = a.cfg.Paths.Names
			}
			if !cmd.Flags().Changed("min-el") {
				minEl = a.cfg.Passes.MinElevation
			}
			if !cmd.Flags().Changed("max") {
				maxPasses = a.cfg.Passes.MaxPasses
			}
			t, err := a.parseTime(start)
			if err != nil {
				return err
			}

			arr := catalog.NewArray(a.logger)
			if _, err := arr.ImportTLEFile(tlePath); err != nil {
				return err
			}
			if namesPath != "" {
				if _, err := arr.ImportNamesFile(namesPath); err != nil {
					return err
				}
			}

			req := passes.Request{
				Observer: passes.Observer{
					LatDeg: a.cfg.Site.Latitude,
					LonDeg: a.cfg.Site.Longitude,
					AltM:   a.cfg.Site.Altitude,
				},
				Entries:      arr.Satellites(),
				Start:        t.GoTime(),
				HorizonHours: hours,
				MinElevation: minEl,
				MaxPasses:    maxPasses,
				Workers:      a.cfg.Workers,
			}
			a.logger.Info("predicting passes",
				"satellites", len(req.Entries),
				"start", req.Start.Format(time.RFC3339),
				"hours", hours,
				"min_elevation", minEl,
			)
			results, err := passes.Predict(cmd.Context(), req)
			if err != nil {
				return err
			}
			for _, r := range results {
				if r.Error != "" {
					a.logger.Warn("pass prediction failed", "norad_id", r.NORADID, "error", r.Error)
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NORAD\tNAME\tRISE\tAZ\tPEAK\tMAX EL\tSET\tAZ")
			for _, r := range results {
				for _, p := range r.Passes {
					fmt.Fprintf(w, "%d\t%s\t%s\t%.0f°\t%s\t%.1f°\t%s\t%.0f°\n",
						r.NORADID, r.Name,
						p.StartTime.Format(time.TimeOnly), p.StartAzimuth,
						p.MaxElevationTime.Format(time.TimeOnly), p.MaxElevation,
						p.EndTime.Format(time.TimeOnly), p.EndAzimuth,
					)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&tlePath, "tle", "", "TLE file (default from config)")
	cmd.Flags().StringVar(&namesPath, "names", "", "McCants names file (default from config)")
	cmd.Flags().StringVar(&start, "start", "", "start as YYYY-MM-DD[ HH:MM] (default now)")
	cmd.Flags().Float64Var(&hours, "hours", 24, "prediction window in hours")
	cmd.Flags().Float64Var(&minEl, "min-el", 10, "minimum elevation in degrees (default from config)")
	cmd.Flags().IntVar(&maxPasses, "max", 10, "maximum passes per satellite (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func newTrackCmd(a *app) *cobra.Command {
	var (
		tlePath string
		start   string
		step    time.Duration
		horizon time.Duration
	)
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Sub-satellite points for every satellite at regular steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tlePath == "" {
				tlePath = a.cfg.Paths.TLE
			}
			if tlePath == "" {
				return fmt.Errorf("no TLE file: use --tle or paths.tle in the config")
			}
			if step <= 0 || horizon < 0 {
				return fmt.Errorf("--step must be positive and --horizon not negative")
			}
			t, err := a.parseTime(start)
			if err != nil {
				return err
			}

			store := tle.NewStore()
			if _, err := store.LoadFile(tlePath, a.logger); err != nil {
				return err
			}
			if age := store.ElementAge(t.GoTime()); age > staleElements {
				a.logger.Warn("TLE elements are far from the requested time", "age", age.Round(time.Hour).String())
			}
			site := a.cfg.Location()
			prop := propagation.NewPropagator(store, propagation.PropConfig{
				Workers: a.cfg.Workers,
				Step:    step,
				Horizon: horizon,
				Site:    &site,
			}, a.logger)

			keyframes, err := prop.GenerateKeyframes(cmd.Context(), t.GoTime())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tNORAD\tNAME\tLAT\tLON\tALT KM\tAZ\tEL\tRANGE KM")
			for _, kf := range keyframes {
				for _, s := range kf.Satellites {
					fmt.Fprintf(w, "%s\t%d\t%s\t%.3f\t%.3f\t%.1f\t%.1f\t%.1f\t%.0f\n",
						kf.Timestamp.UTC().Format(time.RFC3339), s.NORADID, s.Name,
						s.Latitude*angle.DegPerRad, s.Longitude*angle.DegPerRad, s.Altitude,
						s.Azimuth*angle.DegPerRad, s.Elevation*angle.DegPerRad, s.Range)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&tlePath, "tle", "", "TLE file (default from config)")
	cmd.Flags().StringVar(&start, "start", "", "start as YYYY-MM-DD[ HH:MM] (default now)")
	cmd.Flags().DurationVar(&step, "step", time.Minute, "time between keyframes")
	cmd.Flags().DurationVar(&horizon, "horizon", 10*time.Minute, "time covered by keyframes")
	return cmd
}
