// Package jpl reads JPL DE binary planetary ephemeris files (DE200, DE4xx)
// through github.com/mshafiee/jpleph and maps its results onto skycore's
// body numbering, vectors and errors.
package jpl

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strings"

	"github.com/mshafiee/jpleph"

	"github.com/star/skycore/internal/vecmat"
)

var (
	ErrFileNotFound  = errors.New("ephemeris file not found")
	ErrCorruptHeader = errors.New("ephemeris header corrupt")
	ErrOutOfRange    = errors.New("date outside ephemeris range")
	ErrNotOpen       = errors.New("ephemeris not open")
	ErrAlreadyOpen   = errors.New("ephemeris already open")
	ErrInvalidBody   = errors.New("invalid ephemeris body")
)

// Body numbers accepted by Compute. 1-9 are Mercury through Pluto.
const (
	Sun  = 0
	Moon = 10
)

// jpleph interpolates with fixed-size Chebyshev tables.
const maxCheby = 18

// ipt rows holding data skycore reads.
const (
	iptRows      = 13
	iptNutations = 11
)

// Reader is an open DE ephemeris file. The zero value is closed. A Reader
// caches the last record it read and is not safe for concurrent use.
type Reader struct {
	eph *jpleph.Ephemeris

	start, stop, step float64
	au, emrat         float64
	version           int
	hasNutations      bool
	names             []string
	values            []float64
}

// Open reads the header and constants of the DE file at path.
func (r *Reader) Open(path string) error {
	if r.eph != nil {
		return ErrAlreadyOpen
	}
	eph, err := jpleph.NewEphemeris(path, true)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("%w: %s: %v", ErrCorruptHeader, path, err)
	}
	if err := r.readHeader(eph); err != nil {
		eph.Close()
		*r = Reader{}
		return fmt.Errorf("%s: %w", path, err)
	}
	r.eph = eph
	return nil
}

func (r *Reader) readHeader(eph *jpleph.Ephemeris) error {
	r.start = eph.GetEphemerisDouble(jpleph.EphemerisStartJD)
	r.stop = eph.GetEphemerisDouble(jpleph.EphemerisEndJD)
	r.step = eph.GetEphemerisDouble(jpleph.EphemerisStep)
	r.au = eph.GetEphemerisDouble(jpleph.AUinKM)
	r.emrat = eph.GetEphemerisDouble(jpleph.EarthMoonMassRatio)
	r.version = int(eph.GetEphemerisLong(jpleph.EphemerisVersion))
	if !(r.step > 0) || !(r.stop > r.start) {
		return fmt.Errorf("%w: range %.1f-%.1f step %.1f", ErrCorruptHeader, r.start, r.stop, r.step)
	}

	for row := range iptRows {
		ncf := eph.GetIPTArrayValue(row*3 + 1)
		if ncf < 0 || ncf >= maxCheby {
			return fmt.Errorf("%w: ipt[%d] has %d coefficients", ErrCorruptHeader, row, ncf)
		}
		if row == iptNutations {
			r.hasNutations = ncf > 0
		}
	}

	n := int(eph.GetEphemerisLong(jpleph.NumberOfConstants))
	r.names = make([]string, 0, n)
	r.values = make([]float64, 0, n)
	for i := range n {
		name, err := eph.GetConstantName(i)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptHeader, err)
		}
		v, err := eph.GetConstantValue(i)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptHeader, err)
		}
		r.names = append(r.names, strings.TrimSpace(name))
		r.values = append(r.values, v)
	}
	if !(r.au > 0) {
		r.au = r.Constant("AU")
	}
	if !(r.au > 0) {
		return fmt.Errorf("%w: no AU constant", ErrCorruptHeader)
	}
	return nil
}

// Close releases the file. Closing a closed Reader is a no-op.
func (r *Reader) Close() error {
	if r.eph == nil {
		return nil
	}
	err := r.eph.Close()
	*r = Reader{}
	return err
}

// IsOpen reports whether a file is open.
func (r *Reader) IsOpen() bool { return r.eph != nil }

func (r *Reader) StartJED() float64 { return r.start }
func (r *Reader) StopJED() float64  { return r.stop }
func (r *Reader) Step() float64     { return r.step }

// Version returns the DE number, e.g. 405.
func (r *Reader) Version() int { return r.version }

// ConstantNames returns the header constant names in file order.
func (r *Reader) ConstantNames() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Constant returns the value of the named header constant, or 0 if absent.
func (r *Reader) Constant(name string) float64 {
	for i, n := range r.names {
		if n == name {
			return r.values[i]
		}
	}
	return 0
}

// check rejects closed readers and dates the file does not cover. jpleph
// does not catch NaN itself.
func (r *Reader) check(jed float64) error {
	if r.eph == nil {
		return ErrNotOpen
	}
	if math.IsNaN(jed) || jed < r.start || jed > r.stop {
		return fmt.Errorf("%w: jed %.6f not in [%.1f, %.1f]", ErrOutOfRange, jed, r.start, r.stop)
	}
	return nil
}

func target(body int) (jpleph.Planet, error) {
	switch {
	case body == Sun:
		return jpleph.Sun, nil
	case body >= 1 && body <= Moon:
		return jpleph.Planet(body), nil
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidBody, body)
}

func (r *Reader) compute(body int, jed float64, center jpleph.CenterBody, wantVelocity bool) (pos, vel vecmat.Vector, err error) {
	tgt, err := target(body)
	if err != nil {
		return pos, vel, err
	}
	if err := r.check(jed); err != nil {
		return pos, vel, err
	}
	p, v, err := r.eph.CalculatePV(jed, tgt, center, wantVelocity)
	if err != nil {
		return pos, vel, mapError(err)
	}
	pos = vecmat.Vector{X: p.X, Y: p.Y, Z: p.Z}
	if wantVelocity {
		vel = vecmat.Vector{X: v.DX, Y: v.DY, Z: v.DZ}
	}
	return pos, vel, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, jpleph.ErrOutsideRange):
		return fmt.Errorf("%w: %v", ErrOutOfRange, err)
	case errors.Is(err, jpleph.ErrInvalidIndex), errors.Is(err, jpleph.ErrQuantityNotInEphemeris):
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return fmt.Errorf("read ephemeris: %w", err)
}

// Compute returns the heliocentric position (AU) and velocity (AU/day) of
// body in the J2000 equatorial frame. Bodies are 0 for the Sun, 1-9 for
// Mercury through Pluto and 10 for the Moon. Velocity is zero unless
// wantVelocity is set.
func (r *Reader) Compute(body int, jed float64, wantVelocity bool) (pos, vel vecmat.Vector, err error) {
	return r.compute(body, jed, jpleph.CenterSun, wantVelocity)
}

// ComputeBarycentric is Compute relative to the solar-system barycenter.
func (r *Reader) ComputeBarycentric(body int, jed float64, wantVelocity bool) (pos, vel vecmat.Vector, err error) {
	return r.compute(body, jed, jpleph.CenterSolarSystemBarycenter, wantVelocity)
}

// Nutations returns the nutation in longitude and obliquity (radians)
// stored in the file at jed.
func (r *Reader) Nutations(jed float64) (dpsi, deps float64, err error) {
	if err := r.check(jed); err != nil {
		return 0, 0, err
	}
	if !r.hasNutations {
		return 0, 0, fmt.Errorf("%w: no nutations in DE%d", ErrInvalidBody, r.version)
	}
	p, _, err := r.eph.CalculatePV(jed, jpleph.Nutations, jpleph.CenterSun, false)
	if err != nil {
		return 0, 0, mapError(err)
	}
	return p.X, p.Y, nil
}

// String identifies the open file, e.g. "DE405 2305424.5-2525008.5".
func (r *Reader) String() string {
	if r.eph == nil {
		return "closed"
	}
	return fmt.Sprintf("DE%d %.1f-%.1f", r.version, r.start, r.stop)
}
