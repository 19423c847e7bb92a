package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/star/skycore/internal/angle"
	"github.com/star/skycore/internal/astrotime"
	"github.com/star/skycore/internal/coords"
	"github.com/star/skycore/internal/vecmat"
)

var allCalendars = []astrotime.Calendar{
	astrotime.GregorianJulian,
	astrotime.Gregorian,
	astrotime.Julian,
	astrotime.Jewish,
	astrotime.Islamic,
	astrotime.Indian,
}

func newTimeCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "time",
		Short: "Show a moment as Julian dates, sidereal time and calendar dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.parseTime(date)
			if err != nil {
				return err
			}
			c := a.coordinates(t, nil)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "JD\t%.6f\n", t.JD)
			fmt.Fprintf(w, "JED\t%.6f\n", c.JED())
			fmt.Fprintf(w, "Delta T\t%.2f s\n", astrotime.DeltaT(t.JD))
			fmt.Fprintf(w, "LST\t%s\n", angle.Angle(c.LST()).FormatHMS(3))
			fmt.Fprintf(w, "Weekday\t%d\n", t.Weekday())
			for _, cal := range allCalendars {
				d, err := t.ToCalendar(cal)
				if err != nil {
					fmt.Fprintf(w, "%s\t%v\n", cal, err)
					continue
				}
				fmt.Fprintf(w, "%s\t%s (%s)\n", cal, d, d.MonthName())
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD[ HH:MM[:SS]] in the site zone (default now)")
	return cmd
}

func newConvertCmd(a *app) *cobra.Command {
	var from, to, date string
	cmd := &cobra.Command{
		Use:   "convert LON LAT",
		Short: "Convert a direction between reference frames",
		Long: `Convert a direction between the fundamental, equatorial, ecliptic,
galactic and horizon frames. LON and LAT are decimal degrees or
sexagesimal strings such as "06 45 08.9" (hours, for the longitude of the
fundamental and equatorial frames) and "-16 42 58".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fromFrame, err := coords.ParseFrame(from)
			if err != nil {
				return err
			}
			toFrame, err := coords.ParseFrame(to)
			if err != nil {
				return err
			}
			t, err := a.parseTime(date)
			if err != nil {
				return err
			}

			lon, err := parseAngle(args[0], hoursFrame(fromFrame))
			if err != nil {
				return fmt.Errorf("longitude: %w", err)
			}
			lat, err := parseAngle(args[1], false)
			if err != nil {
				return fmt.Errorf("latitude: %w", err)
			}
			if lat < -angle.HalfPi || lat > angle.HalfPi {
				return fmt.Errorf("latitude %s out of range", args[1])
			}

			c := a.coordinates(t, nil)
			out, err := c.TransformSpherical(fromFrame, toFrame, vecmat.Spherical{Lon: lon, Lat: lat, Rad: 1})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "frame\t%s\n", toFrame)
			if hoursFrame(toFrame) {
				fmt.Fprintf(w, "lon\t%s\t%.6f°\n", angle.Angle(out.Lon).HMS(), out.Lon*angle.DegPerRad)
			} else {
				fmt.Fprintf(w, "lon\t%s\t%.6f°\n", angle.Angle(out.Lon).DMS(), out.Lon*angle.DegPerRad)
			}
			fmt.Fprintf(w, "lat\t%s\t%.6f°\n", angle.Angle(out.Lat).DMS(), out.Lat*angle.DegPerRad)
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&from, "from", "fundamental", "input frame")
	cmd.Flags().StringVar(&to, "to", "horizon", "output frame")
	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD[ HH:MM[:SS]] in the site zone (default now)")
	return cmd
}

// hoursFrame reports whether longitudes in f are conventionally hours.
func hoursFrame(f coords.Frame) bool {
	return f == coords.Fundamental || f == coords.Equatorial
}

// parseAngle reads decimal degrees, or a sexagesimal string in hours or
// degrees. Colons separate fields as well as spaces.
func parseAngle(s string, hours bool) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ":", " ")
	if !strings.Contains(s, " ") {
		deg, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", angle.ErrParse, s)
		}
		return deg * angle.RadPerDeg, nil
	}
	if hours {
		h, err := angle.ParseHMS(s)
		if err != nil {
			return 0, err
		}
		return h.Angle().Rad(), nil
	}
	d, err := angle.ParseDMS(s)
	if err != nil {
		return 0, err
	}
	return d.Angle().Rad(), nil
}
