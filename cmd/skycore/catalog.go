package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/star/skycore/internal/angle"
	"github.com/star/skycore/internal/catalog"
	"github.com/star/skycore/internal/coords"
)

func newEphemCmd(a *app) *cobra.Command {
	var (
		catalogs []string
		tlePath  string
		date     string
	)
	cmd := &cobra.Command{
		Use:   "ephem",
		Short: "Positions of catalog objects at one moment",
		Long: `Print the apparent place of every object in the catalogs. With no
catalogs configured the Sun, Moon and planets are listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.parseTime(date)
			if err != nil {
				return err
			}
			arr, err := a.loadCatalogs(catalogs)
			if err != nil {
				return err
			}
			if tlePath != "" {
				if _, err := arr.ImportTLEFile(tlePath); err != nil {
					return err
				}
			}
			if arr.Len() == 0 {
				for _, b := range majorBodies {
					arr.Append(majorBody(b.name))
				}
			}
			src, err := a.openEphemeris()
			if err != nil {
				return err
			}
			defer closeQuietly(src, a.logger)

			c := a.coordinates(t, src)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "# %s\n", formatTime(t))
			fmt.Fprintln(w, "NAME\tTYPE\tRA\tDEC\tAZ\tALT\tDIST\tMAG")
			var failed int
			for _, o := range arr.Objects() {
				if err := o.ComputeEphemeris(c); err != nil {
					failed++
					a.logger.Warn("ephemeris failed", "object", o.Name(0), "error", err)
					continue
				}
				equ, err := c.Transform(coords.Fundamental, coords.Equatorial, o.Direction)
				if err != nil {
					return err
				}
				radec := equ.ToSpherical()
				hor := o.Horizon(c)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%.2f\t%s\t%s\n",
					o.Name(0), o.Type,
					angle.Angle(radec.Lon).FormatHMS(2), angle.Angle(radec.Lat).FormatDMS(1),
					hor.Lon*angle.DegPerRad, hor.Lat*angle.DegPerRad,
					formatDistance(o), formatMagnitude(o.Magnitude),
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if failed > 0 {
				a.logger.Info("some objects had no position", "failed", failed, "total", arr.Len())
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&catalogs, "catalog", nil, "catalog CSV files (default from config)")
	cmd.Flags().StringVar(&tlePath, "tle", "", "also list the satellites in this TLE file")
	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD[ HH:MM[:SS]] in the site zone (default now)")
	return cmd
}

func formatDistance(o *catalog.Object) string {
	switch {
	case math.IsInf(o.Distance, 1):
		return "-"
	case o.Satellite != nil:
		return fmt.Sprintf("%.0f km", o.Distance*coords.KmPerAU)
	case o.Star != nil:
		return fmt.Sprintf("%.1f ly", o.Distance/coords.AUPerParsec*coords.LightYearPerPC)
	}
	return fmt.Sprintf("%.5f AU", o.Distance)
}

func formatMagnitude(m float64) string {
	if math.IsInf(m, 0) || math.IsNaN(m) {
		return "-"
	}
	return fmt.Sprintf("%+.2f", m)
}

func newImportCmd(a *app) *cobra.Command {
	var (
		catalogs []string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Read catalog CSV files and write them back in normalized form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			arr, err := a.loadCatalogs(catalogs)
			if err != nil {
				return err
			}
			if arr.Len() == 0 {
				return errors.New("no catalog records read: use --catalog or paths.catalogs in the config")
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				defer closeQuietly(f, a.logger)
				w = f
			}
			n, err := arr.ExportCSV(w)
			if err != nil {
				return err
			}
			a.logger.Info("catalog exported", "records", n, "skipped_on_import", arr.Skipped(), "out", out)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&catalogs, "catalog", nil, "catalog CSV files (default from config)")
	cmd.Flags().StringVar(&out, "out", "", "output file (default stdout)")
	return cmd
}
