package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/star/skycore/internal/angle"
	"github.com/star/skycore/internal/astrotime"
	"github.com/star/skycore/internal/catalog"
	"github.com/star/skycore/internal/coords"
	"github.com/star/skycore/internal/events"
)

func newRTSCmd(a *app) *cobra.Command {
	var (
		catalogs []string
		name     string
		date     string
		altitude float64
	)
	cmd := &cobra.Command{
		Use:   "rts",
		Short: "Rise, transit and set of an object on one local day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.parseTime(date)
			if err != nil {
				return err
			}
			arr, err := a.loadCatalogs(catalogs)
			if err != nil {
				return err
			}
			obj, err := lookup(arr, name)
			if err != nil {
				return err
			}
			src, err := a.openEphemeris()
			if err != nil {
				return err
			}
			defer closeQuietly(src, a.logger)

			alt := events.PointAltitude
			if obj.Planet != nil && (obj.Planet.ID == 0 || obj.Planet.ID == catalog.LunaID) {
				alt = events.SunMoonAltitude
			}
			if cmd.Flags().Changed("altitude") {
				alt = altitude * angle.RadPerDeg
			}

			c := a.coordinates(t, src)
			pass := events.RiseTransitSetPass(t, c, obj, alt)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "object\t%s\n", obj.Name(0))
			writePassEvent(w, "rise", pass.Rising, false)
			writePassEvent(w, "transit", pass.Transit, true)
			writePassEvent(w, "set", pass.Setting, false)
			return w.Flush()
		},
	}
	cmd.Flags().StringSliceVar(&catalogs, "catalog", nil, "catalog CSV files (default from config)")
	cmd.Flags().StringVar(&name, "name", "Sun", "object name or identifier")
	cmd.Flags().StringVar(&date, "date", "", "local day as YYYY-MM-DD (default today)")
	cmd.Flags().Float64Var(&altitude, "altitude", 0, "horizon altitude in degrees (default depends on object)")
	return cmd
}

func writePassEvent(w io.Writer, label string, e events.PassEvent, showAlt bool) {
	switch {
	case errors.Is(e.Err, events.ErrNoEvent):
		fmt.Fprintf(w, "%s\t%v\n", label, e.Err)
	case e.Err != nil:
		fmt.Fprintf(w, "%s\terror: %v\n", label, e.Err)
	case showAlt:
		fmt.Fprintf(w, "%s\t%s\talt %.2f°\n", label, formatTime(e.Time), e.Altitude*angle.DegPerRad)
	default:
		fmt.Fprintf(w, "%s\t%s\taz %.2f°\n", label, formatTime(e.Time), e.Azimuth*angle.DegPerRad)
	}
}

func newConjCmd(a *app) *cobra.Command {
	var (
		catalogs []string
		nameA    string
		nameB    string
		start    string
		days     float64
		maxCount int
	)
	cmd := &cobra.Command{
		Use:   "conj",
		Short: "Conjunctions, oppositions and distance extrema of two objects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.parseTime(start)
			if err != nil {
				return err
			}
			arr, err := a.loadCatalogs(catalogs)
			if err != nil {
				return err
			}
			objA, err := lookup(arr, nameA)
			if err != nil {
				return err
			}
			objB, err := lookup(arr, nameB)
			if err != nil {
				return err
			}
			src, err := a.openEphemeris()
			if err != nil {
				return err
			}
			defer closeQuietly(src, a.logger)

			c := a.coordinates(t, src)
			end := t.Add(days)
			searches := []struct {
				label string
				find  func(*coords.Coordinates, *catalog.Object, *catalog.Object, astrotime.Time, astrotime.Time, int) ([]events.EventTime, error)
				unit  func(float64) string
			}{
				{"conjunction", events.FindConjunctions, degrees},
				{"opposition", events.FindOppositions, degrees},
				{"nearest", events.FindNearestDistances, au},
				{"farthest", events.FindFarthestDistances, au},
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "%s / %s\n", objA.Name(0), objB.Name(0))
			for _, s := range searches {
				found, err := s.find(c, objA, objB, t, end, maxCount)
				if err != nil {
					return fmt.Errorf("%s search: %w", s.label, err)
				}
				a.logger.Debug("event search done", "kind", s.label, "found", len(found))
				for _, e := range found {
					fmt.Fprintf(w, "%s\t%s\t%s\n", s.label, formatTime(e.Time), s.unit(e.Value))
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringSliceVar(&catalogs, "catalog", nil, "catalog CSV files (default from config)")
	cmd.Flags().StringVar(&nameA, "a", "Sun", "first object")
	cmd.Flags().StringVar(&nameB, "b", "Moon", "second object")
	cmd.Flags().StringVar(&start, "start", "", "search start as YYYY-MM-DD[ HH:MM] (default now)")
	cmd.Flags().Float64Var(&days, "days", 365, "search length in days")
	cmd.Flags().IntVar(&maxCount, "max", 20, "maximum events of each kind")
	return cmd
}

func degrees(r float64) string { return fmt.Sprintf("%.4f°", r*angle.DegPerRad) }
func au(d float64) string      { return fmt.Sprintf("%.6f AU", d) }

func newPhasesCmd(a *app) *cobra.Command {
	var (
		start string
		count int
	)
	cmd := &cobra.Command{
		Use:   "phases",
		Short: "Upcoming principal moon phases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.parseTime(start)
			if err != nil {
				return err
			}
			src, err := a.openEphemeris()
			if err != nil {
				return err
			}
			defer closeQuietly(src, a.logger)

			c := a.coordinates(t, src)
			sun, moon := majorBody("Sun"), majorBody("Moon")
			phases := []events.Phase{events.New, events.FirstQuarter, events.Full, events.LastQuarter}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for range count {
				var (
					next  astrotime.Time
					which events.Phase
					found bool
				)
				for _, p := range phases {
					pt, ok, err := events.NextMoonPhase(t, c, sun, moon, p)
					if err != nil {
						return err
					}
					if !ok {
						a.logger.Warn("moon phase search did not converge", "phase", p.String(), "from", formatTime(t))
					}
					if !found || pt.Before(next) {
						next, which, found = pt, p, true
					}
				}
				fmt.Fprintf(w, "%s\t%s\n", which, formatTime(next))
				t = next.Add(1.0 / 24)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "start as YYYY-MM-DD[ HH:MM] (default now)")
	cmd.Flags().IntVar(&count, "count", 8, "number of phases to list")
	return cmd
}
