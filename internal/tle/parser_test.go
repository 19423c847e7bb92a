package tle

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

const (
	issName  = "ISS (ZARYA)"
	issLine1 = "1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927"
	issLine2 = "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{issLine1, 7},
		{issLine2, 7},
		{"1 00000", 1},
		{"- - -", 3},
	}
	for _, tt := range tests {
		if got := Checksum(tt.line); got != tt.want {
			t.Errorf("Checksum(%q) = %d, want %d", tt.line, got, tt.want)
		}
	}
}

func TestParseEntryFields(t *testing.T) {
	e, err := ParseEntry(issName, issLine1, issLine2)
	if err != nil {
		t.Fatalf("ParseEntry: %v", err)
	}
	if e.NORADID != 25544 || e.Name != issName || e.IntlDesignator != "98067A" {
		t.Errorf("ids = %d %q %q", e.NORADID, e.Name, e.IntlDesignator)
	}
	wantEpoch := time.Date(2008, 9, 20, 12, 25, 40, 104192000, time.UTC)
	if d := e.Epoch.Sub(wantEpoch); d < -time.Millisecond || d > time.Millisecond {
		t.Errorf("Epoch = %v, want %v", e.Epoch, wantEpoch)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"Inclination", e.Inclination, 51.6416},
		{"RAAN", e.RAAN, 247.4627},
		{"Eccentricity", e.Eccentricity, 0.0006703},
		{"ArgPerigee", e.ArgPerigee, 130.5360},
		{"MeanAnomaly", e.MeanAnomaly, 325.0288},
		{"MeanMotion", e.MeanMotion, 15.72125391},
		{"BStar", e.BStar, -0.11606e-4},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-12 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if e.ElementSet != 292 {
		t.Errorf("ElementSet = %d, want 292", e.ElementSet)
	}
}

func TestParseEntryErrors(t *testing.T) {
	badSum := issLine1[:68] + "0"
	mismatched := strings.Replace(issLine2, "25544", "25545", 1)
	tests := []struct {
		name   string
		l1, l2 string
		want   error
	}{
		{"checksum", badSum, issLine2, ErrChecksum},
		{"short", issLine1[:40], issLine2, ErrMalformed},
		{"swapped", issLine2, issLine1, ErrMalformed},
		{"numbers differ", issLine1, mismatched[:68], ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEntry("", tt.l1, tt.l2)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseEntryWithoutChecksumColumn(t *testing.T) {
	e, err := ParseEntry("", issLine1[:68], issLine2[:68])
	if err != nil {
		t.Fatalf("ParseEntry: %v", err)
	}
	if e.Name != "98067A" {
		t.Errorf("Name = %q, want designator fallback", e.Name)
	}
}

func TestParseMixedSets(t *testing.T) {
	input := strings.Join([]string{
		issName, issLine1, issLine2,
		issLine1, issLine2, // 2-line set
		"stray header",
		"BROKEN", issLine1[:68] + "0", issLine2, // bad checksum
		"",
	}, "\n")

	entries, skipped, err := Parse(strings.NewReader(input), testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if entries[0].Name != issName || entries[1].Name != "98067A" {
		t.Errorf("names = %q, %q", entries[0].Name, entries[1].Name)
	}
}

func TestParseSpaceTrackNames(t *testing.T) {
	input := strings.Join([]string{
		"0 " + issName, issLine1, issLine2,
		"0  VANGUARD 1 ", issLine1, issLine2,
	}, "\n")

	entries, skipped, err := Parse(strings.NewReader(input), testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || skipped != 0 {
		t.Fatalf("len(entries) = %d, skipped = %d", len(entries), skipped)
	}
	if entries[0].Name != issName {
		t.Errorf("name = %q, want %q", entries[0].Name, issName)
	}
	if entries[1].Name != "VANGUARD 1" {
		t.Errorf("name = %q, want VANGUARD 1", entries[1].Name)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	entries, _, err := Parse(strings.NewReader(issName+"\n"+issLine1+"\n"+issLine2+"\n"), testLogger)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, entries); err != nil {
		t.Fatal(err)
	}
	want := issName + "\n" + issLine1 + "\n" + issLine2 + "\n"
	if buf.String() != want {
		t.Errorf("Write =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestParseNames(t *testing.T) {
	input := strings.Join([]string{
		"25544 ISS             30.0 20.0 10.0 -0.5",
		"00005 Vanguard 1       0.2  0.2  0.0",
		"xxxxx not a record",
		"12",
	}, "\n")
	names, err := ParseNames(strings.NewReader(input), testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Fatalf("len = %d, want 2", len(names))
	}
	iss := names[25544]
	if iss.Name != "ISS" || iss.Length != 30 || iss.Width != 20 || iss.Depth != 10 || iss.Magnitude != -0.5 {
		t.Errorf("ISS = %+v", iss)
	}
	v := names[5]
	if v.Name != "Vanguard 1" || v.Length != 0.2 || !math.IsInf(v.Magnitude, 1) {
		t.Errorf("Vanguard = %+v", v)
	}
}

func TestStoreLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iss.tle")
	if err := os.WriteFile(path, []byte(issName+"\n"+issLine1+"\n"+issLine2+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewStore()
	if s.Get() != nil || s.ElementAge(time.Now()) != 0 {
		t.Fatal("new store is not empty")
	}
	ds, err := s.LoadFile(path, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if s.Get() != ds || len(ds.Satellites) != 1 {
		t.Errorf("dataset = %+v", ds)
	}
	if !ds.EpochRange.Min.Equal(ds.Satellites[0].Epoch) || !ds.EpochRange.Max.Equal(ds.EpochRange.Min) {
		t.Errorf("EpochRange = %+v", ds.EpochRange)
	}
	if _, ok := ds.Find(25544); !ok {
		t.Error("Find(25544) missed")
	}
	epoch := ds.Satellites[0].Epoch
	for _, at := range []time.Time{epoch.Add(-36 * time.Hour), epoch.Add(36 * time.Hour)} {
		if got := s.ElementAge(at); got != 36*time.Hour {
			t.Errorf("ElementAge(%v) = %v, want 36h", at, got)
		}
	}
	if _, err := s.LoadFile(filepath.Join(t.TempDir(), "nope.tle"), testLogger); err == nil {
		t.Error("LoadFile on missing path succeeded")
	}
}
