package tle

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// McCants names file columns.
const (
	namesNameStart = 6
	namesNameEnd   = 22
	namesFieldLen  = 4
)

var namesFieldStart = [4]int{22, 27, 32, 37} // length, width, depth, magnitude

// ParseNames reads a Mike McCants satellite names file into records keyed
// by NORAD number. Lines without a NORAD number are skipped; absent
// fields read as zero.
func ParseNames(r io.Reader, logger *slog.Logger) (map[int]Names, error) {
	out := make(map[int]Names)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if len(line) < 5 {
			continue
		}
		norad, err := strconv.Atoi(strings.TrimSpace(line[:5]))
		if err != nil || norad <= 0 {
			logger.Debug("skipping names line without NORAD number", "line", lineNo)
			continue
		}

		n := Names{NORADID: norad}
		if len(line) > namesNameStart {
			n.Name = strings.TrimSpace(line[namesNameStart:min(len(line), namesNameEnd)])
		}
		vals := [4]float64{}
		for i, start := range namesFieldStart {
			if len(line) <= start {
				break
			}
			f := strings.TrimSpace(line[start:min(len(line), start+namesFieldLen)])
			if f == "" {
				continue
			}
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				logger.Warn("bad numeric field in names file", "line", lineNo, "field", f, "error", err)
				continue
			}
			vals[i] = v
		}
		n.Length, n.Width, n.Depth, n.Magnitude = vals[0], vals[1], vals[2], vals[3]
		if n.Magnitude == 0 {
			n.Magnitude = math.Inf(1)
		}
		out[norad] = n
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading names data: %w", err)
	}
	return out, nil
}
