package tle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrChecksum  = errors.New("tle checksum mismatch")
	ErrMalformed = errors.New("malformed tle")
)

// minLineLen is a line without its checksum column.
const minLineLen = 68

// Checksum returns the mod-10 checksum of the first 68 columns of a TLE
// line: digits count their value, minus signs count one.
func Checksum(line string) int {
	sum := 0
	for i := 0; i < len(line) && i < minLineLen; i++ {
		switch c := line[i]; {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	return sum % 10
}

// Parse reads 2-line or 3-line NORAD TLE sets from r. Sets that fail to
// parse are logged at Warn and counted in skipped.
func Parse(r io.Reader, logger *slog.Logger) (entries []TLEEntry, skipped int, err error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("reading TLE data: %w", err)
	}

	isLine := func(i int, c byte) bool {
		return i < len(lines) && len(lines[i]) > 1 && lines[i][0] == c && lines[i][1] == ' '
	}

	for i := 0; i < len(lines); {
		var name, line1, line2 string
		switch {
		case isLine(i, '1') && isLine(i+1, '2'):
			line1, line2 = lines[i], lines[i+1]
			i += 2
		case isLine(i+1, '1') && isLine(i+2, '2'):
			name, line1, line2 = lines[i], lines[i+1], lines[i+2]
			i += 3
		default:
			logger.Warn("skipping line outside a TLE set", "line", i+1, "text", lines[i])
			skipped++
			i++
			continue
		}

		entry, err := ParseEntry(name, line1, line2)
		if err != nil {
			logger.Warn("skipping malformed TLE entry", "name", strings.TrimSpace(name), "error", err)
			skipped++
			continue
		}
		entries = append(entries, entry)
	}

	return entries, skipped, nil
}

// ParseEntry parses one element set. name may be empty and may carry the
// "0 " line number used by space-track 3LE files. A checksum column, when
// present, must match.
func ParseEntry(name, line1, line2 string) (TLEEntry, error) {
	if len(line1) < minLineLen || len(line2) < minLineLen {
		return TLEEntry{}, fmt.Errorf("%w: lines must be at least %d columns", ErrMalformed, minLineLen)
	}
	if line1[0] != '1' || line2[0] != '2' {
		return TLEEntry{}, fmt.Errorf("%w: line numbers must be 1 and 2", ErrMalformed)
	}
	for n, line := range []string{line1, line2} {
		if len(line) > minLineLen && line[minLineLen] >= '0' && line[minLineLen] <= '9' {
			if want := int(line[minLineLen] - '0'); Checksum(line) != want {
				return TLEEntry{}, fmt.Errorf("%w: line %d has %d, computed %d", ErrChecksum, n+1, want, Checksum(line))
			}
		}
	}

	p := fieldParser{}
	e := TLEEntry{
		Name:           entryName(name),
		IntlDesignator: strings.TrimSpace(line1[9:17]),
		Line1:          line1,
		Line2:          line2,
	}
	e.NORADID = p.int("satellite number", line1[2:7])
	if n2 := p.int("line 2 satellite number", line2[2:7]); p.err == nil && n2 != e.NORADID {
		return TLEEntry{}, fmt.Errorf("%w: satellite numbers differ (%d vs %d)", ErrMalformed, e.NORADID, n2)
	}
	e.BStar = p.exp("bstar", line1[53:59], line1[59:61])
	e.ElementSet = p.int("element set", line1[64:68])
	e.Inclination = p.float("inclination", line2[8:16])
	e.RAAN = p.float("right ascension", line2[17:25])
	e.Eccentricity = p.float("eccentricity", "0."+strings.TrimSpace(line2[26:33]))
	e.ArgPerigee = p.float("argument of perigee", line2[34:42])
	e.MeanAnomaly = p.float("mean anomaly", line2[43:51])
	e.MeanMotion = p.float("mean motion", line2[52:63])
	if p.err != nil {
		return TLEEntry{}, p.err
	}

	epoch, err := parseEpoch(strings.TrimSpace(line1[18:32]))
	if err != nil {
		return TLEEntry{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	e.Epoch = epoch

	if e.MeanMotion <= 0 {
		return TLEEntry{}, fmt.Errorf("%w: mean motion %v", ErrMalformed, e.MeanMotion)
	}
	if e.Name == "" {
		e.Name = e.IntlDesignator
	}
	return e, nil
}

// fieldParser keeps the first column error.
type fieldParser struct{ err error }

func (p *fieldParser) int(field, s string) int {
	if p.err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		p.err = fmt.Errorf("%w: invalid %s %q", ErrMalformed, field, s)
	}
	return n
}

func (p *fieldParser) float(field, s string) float64 {
	if p.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		p.err = fmt.Errorf("%w: invalid %s %q", ErrMalformed, field, s)
	}
	return f
}

// exp parses the assumed-decimal "SNNNNN" mantissa and "±E" exponent form.
func (p *fieldParser) exp(field, mantissa, exponent string) float64 {
	m := p.float(field, mantissa)
	x := p.int(field+" exponent", exponent)
	return m * 1e-5 * math.Pow(10, float64(x))
}

// parseEpoch converts a TLE epoch string in YYDDD.DDDDDDDD format to time.Time.
// Year 00-56 → 2000s, 57-99 → 1900s.
func parseEpoch(s string) (time.Time, error) {
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("epoch string too short: %q", s)
	}

	year, err := strconv.Atoi(s[:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch year %q: %w", s[:2], err)
	}
	if year >= 57 {
		year += 1900
	} else {
		year += 2000
	}

	dayOfYear, err := strconv.ParseFloat(s[2:], 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch day %q: %w", s[2:], err)
	}

	// dayOfYear is 1-based: day 1.0 is Jan 1 00:00.
	nanos := math.Round((dayOfYear - 1) * 86400e9)
	return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(nanos)), nil
}

// Write emits entries in 3-line form.
func Write(w io.Writer, entries []TLEEntry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		fmt.Fprintf(bw, "%s\n%s\n%s\n", e.Name, e.Line1, e.Line2)
	}
	return bw.Flush()
}

// entryName trims a title line and drops a leading "0 " line number.
func entryName(name string) string {
	name = strings.TrimSpace(name)
	if rest, ok := strings.CutPrefix(name, "0 "); ok {
		return strings.TrimSpace(rest)
	}
	return name
}
