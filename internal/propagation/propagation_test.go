package propagation

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/star/skycore/internal/astrotime"
	"github.com/star/skycore/internal/coords"
	"github.com/star/skycore/internal/tle"
	"github.com/star/skycore/internal/vecmat"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ISS elements from September 2008.
const (
	issLine1 = "1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927"
	issLine2 = "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537"
)

var nearEpoch = time.Date(2008, 9, 20, 12, 30, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func issEntry(t testing.TB) tle.TLEEntry {
	t.Helper()
	e, err := tle.ParseEntry("ISS (ZARYA)", issLine1, issLine2)
	if err != nil {
		t.Fatalf("ParseEntry: %v", err)
	}
	return e
}

func TestPropagateSingle(t *testing.T) {
	prop, err := NewSGP4Propagator(issEntry(t))
	if err != nil {
		t.Fatalf("NewSGP4Propagator failed: %v", err)
	}
	if prop.NORADID() != 25544 {
		t.Errorf("NORADID = %d, want 25544", prop.NORADID())
	}

	s, err := prop.Propagate(nearEpoch)
	if err != nil {
		t.Fatalf("Propagate failed: %v", err)
	}

	// Mean motion 15.72 rev/day puts the semi-major axis near 6731 km.
	if mag := s.Pos.Magnitude(); mag < 6650 || mag > 6800 {
		t.Errorf("TEME position magnitude = %.1f km, expected ~6731 km", mag)
	}
	if speed := s.Vel.Magnitude(); speed < 7.5 || speed > 7.9 {
		t.Errorf("TEME speed = %.3f km/s, expected ~7.7 km/s", speed)
	}
}

func TestPropagateSubSecond(t *testing.T) {
	prop, err := NewSGP4Propagator(issEntry(t))
	if err != nil {
		t.Fatal(err)
	}
	a, err := prop.Propagate(nearEpoch)
	if err != nil {
		t.Fatal(err)
	}
	b, err := prop.Propagate(nearEpoch.Add(time.Second))
	if err != nil {
		t.Fatal(err)
	}
	mid, err := prop.Propagate(nearEpoch.Add(500 * time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	chord := a.Pos.Add(b.Pos).Scale(0.5)
	if d := mid.Pos.Distance(chord); d > 0.01 {
		t.Errorf("half-second position is %.4f km from the chord midpoint", d)
	}
	if d := mid.Pos.Distance(a.Pos); d < 3 {
		t.Errorf("half-second position moved only %.4f km", d)
	}
}

func TestPropagateJDMatchesTime(t *testing.T) {
	prop, err := NewSGP4Propagator(issEntry(t))
	if err != nil {
		t.Fatal(err)
	}
	a, err := prop.Propagate(nearEpoch)
	if err != nil {
		t.Fatal(err)
	}
	b, err := prop.PropagateJD(astrotime.FromGoTime(nearEpoch).JD)
	if err != nil {
		t.Fatal(err)
	}
	if d := a.Pos.Distance(b.Pos); d > 0.01 {
		t.Errorf("PropagateJD differs from Propagate by %.4f km", d)
	}
}

func TestPropagateInvalidTLE(t *testing.T) {
	tests := []struct {
		name   string
		l1, l2 string
	}{
		{"garbage", "invalid line 1", "invalid line 2"},
		{"swapped", issLine2, issLine1},
		{"truncated", issLine1[:60], issLine2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSGP4Propagator(tle.TLEEntry{NORADID: 99999, Line1: tt.l1, Line2: tt.l2})
			if err == nil {
				t.Fatal("expected error for invalid TLE, got nil")
			}
		})
	}
}

func TestTEMEFundamental(t *testing.T) {
	prop, err := NewSGP4Propagator(issEntry(t))
	if err != nil {
		t.Fatal(err)
	}
	s, err := prop.Propagate(nearEpoch)
	if err != nil {
		t.Fatal(err)
	}
	c := coords.New(astrotime.FromGoTime(nearEpoch), vecmat.Spherical{}, nil)
	pos, vel := s.Fundamental(c)

	if got, want := pos.Magnitude()*coords.KmPerAU, s.Pos.Magnitude(); math.Abs(got-want) > 1e-6 {
		t.Errorf("|pos| = %.6f km, want %.6f", got, want)
	}
	wantVel := s.Vel.Magnitude() * astrotime.SecondsPerDay / coords.KmPerAU
	if got := vel.Magnitude(); math.Abs(got-wantVel) > 1e-12 {
		t.Errorf("|vel| = %v AU/day, want %v", got, wantVel)
	}
	// Precession since 2000 is under a degree; the frames stay close.
	if sep := pos.AngularSeparation(s.Pos); sep > 0.01 {
		t.Errorf("J2000 and TEME directions differ by %.4f rad", sep)
	}
}

func TestTEMEGeodetic(t *testing.T) {
	prop, err := NewSGP4Propagator(issEntry(t))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 6; i++ {
		at := nearEpoch.Add(time.Duration(i) * 15 * time.Minute)
		s, err := prop.Propagate(at)
		if err != nil {
			t.Fatal(err)
		}
		lon, lat, alt := s.Geodetic(astrotime.FromGoTime(at))
		if lon < -math.Pi || lon >= math.Pi {
			t.Errorf("%v: longitude %v out of range", at, lon)
		}
		if math.Abs(lat) > 52*angleDeg {
			t.Errorf("%v: latitude %.2f deg beyond inclination", at, lat/angleDeg)
		}
		if alt < 300 || alt > 420 {
			t.Errorf("%v: altitude %.1f km, expected ~350 km", at, alt)
		}
	}
}

const angleDeg = math.Pi / 180

func TestWorkerPoolBatch(t *testing.T) {
	iss := issEntry(t)
	entries := []tle.TLEEntry{
		iss,
		{NORADID: 99999, Name: "BROKEN", Line1: "bad", Line2: "bad"},
	}
	second := iss
	second.NORADID = 25545
	second.Name = "ISS COPY"
	entries = append(entries, second)

	pool := NewWorkerPool(4, nil, testLogger())
	snaps, ok, failed := pool.PropagateBatch(context.Background(), entries, nearEpoch, nil)
	if ok != 2 || failed != 1 {
		t.Fatalf("success=%d failed=%d, want 2 and 1", ok, failed)
	}
	if len(snaps) != 2 {
		t.Fatalf("len(snapshots) = %d, want 2", len(snaps))
	}
	if snaps[0].NORADID != 25544 || snaps[1].NORADID != 25545 {
		t.Errorf("snapshots out of entry order: %d, %d", snaps[0].NORADID, snaps[1].NORADID)
	}
	for _, s := range snaps {
		if !s.Time.Equal(nearEpoch) {
			t.Errorf("NORAD %d: time = %v", s.NORADID, s.Time)
		}
		if s.Altitude < 300 || s.Altitude > 420 {
			t.Errorf("NORAD %d: altitude = %.1f", s.NORADID, s.Altitude)
		}
	}
}

func TestWorkerPoolCancellation(t *testing.T) {
	iss := issEntry(t)
	entries := make([]tle.TLEEntry, 1000)
	for i := range entries {
		entries[i] = iss
		entries[i].NORADID = 30000 + i
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewWorkerPool(4, nil, testLogger())
	snaps, _, _ := pool.PropagateBatch(ctx, entries, nearEpoch, nil)
	if len(snaps) >= len(entries) {
		t.Errorf("expected fewer results with cancelled context, got %d/%d", len(snaps), len(entries))
	}
}

func TestPropagatorGenerateKeyframes(t *testing.T) {
	store := tle.NewStore()
	store.Set(tle.NewDataset("test", []tle.TLEEntry{issEntry(t)}, 0, time.Now()))

	cfg := PropConfig{
		Workers: 2,
		Step:    5 * time.Second,
		Horizon: 15 * time.Second,
	}
	prop := NewPropagator(store, cfg, testLogger())

	keyframes, err := prop.GenerateKeyframes(context.Background(), nearEpoch)
	if err != nil {
		t.Fatalf("GenerateKeyframes failed: %v", err)
	}
	// Frames at 0s, 5s, 10s, 15s.
	if len(keyframes) != 4 {
		t.Fatalf("got %d keyframes, want 4", len(keyframes))
	}
	for i, kf := range keyframes {
		want := nearEpoch.Add(time.Duration(i) * cfg.Step)
		if !kf.Timestamp.Equal(want) {
			t.Errorf("keyframe %d: time = %v, want %v", i, kf.Timestamp, want)
		}
		if len(kf.Satellites) != 1 {
			t.Errorf("keyframe %d: %d satellites", i, len(kf.Satellites))
		}
	}
	if prop.builtOn != store.Get() || len(prop.props) != 1 {
		t.Error("propagators not built for the current dataset")
	}

	// A new dataset replaces the propagators.
	second := issEntry(t)
	second.NORADID = 25545
	store.Set(tle.NewDataset("second", []tle.TLEEntry{issEntry(t), second}, 0, time.Now()))
	kf, err := prop.PropagateToTime(context.Background(), nearEpoch)
	if err != nil {
		t.Fatal(err)
	}
	if len(kf.Satellites) != 2 || len(prop.props) != 2 {
		t.Errorf("after reload: %d snapshots, %d propagators", len(kf.Satellites), len(prop.props))
	}
}

func TestWorkerPoolLookAngles(t *testing.T) {
	site := vecmat.Spherical{Lon: -74.006 * angleDeg, Lat: 40.7128 * angleDeg, Rad: 0.01}
	pool := NewWorkerPool(2, &site, testLogger())

	var sawAbove bool
	for i := 0; i < 96; i++ {
		at := nearEpoch.Add(time.Duration(i) * 15 * time.Minute)
		snaps, ok, _ := pool.PropagateBatch(context.Background(), []tle.TLEEntry{issEntry(t)}, at, nil)
		if ok != 1 {
			t.Fatalf("%v: propagation failed", at)
		}
		s := snaps[0]
		if !s.HasLook {
			t.Fatal("snapshot has no look angles")
		}
		if s.Azimuth < 0 || s.Azimuth >= 2*math.Pi || math.Abs(s.Elevation) > math.Pi/2 {
			t.Errorf("%v: az %v el %v out of range", at, s.Azimuth, s.Elevation)
		}
		if s.Range < s.Altitude-1 || s.Range > 2*6378+s.Altitude {
			t.Errorf("%v: range %.1f km with altitude %.1f km", at, s.Range, s.Altitude)
		}
		// Above the horizon the satellite is within about 2300 km.
		if s.Elevation > 0 {
			sawAbove = true
			if s.Range > 2500 {
				t.Errorf("%v: elevation %.2f deg at range %.0f km", at, s.Elevation/angleDeg, s.Range)
			}
		}
	}
	if !sawAbove {
		t.Log("no sample above the horizon in 24h")
	}

	if _, _, _, err := (TEME{}).LookAngles(coords.New(astrotime.FromGoTime(nearEpoch), site, fakeEphemeris{})); err == nil {
		t.Error("LookAngles with an ephemeris should fail")
	}
}

type fakeEphemeris struct{}

func (fakeEphemeris) PositionVelocity(int, float64) (vecmat.Vector, vecmat.Vector, error) {
	return vecmat.Vector{X: 1}, vecmat.Vector{}, nil
}

func TestPropagatorNoDataset(t *testing.T) {
	cfg := PropConfig{Workers: 2, Step: 5 * time.Second, Horizon: 60 * time.Second}
	prop := NewPropagator(tle.NewStore(), cfg, testLogger())

	_, err := prop.PropagateToTime(context.Background(), time.Now())
	if !errors.Is(err, ErrNoDataset) {
		t.Fatalf("err = %v, want ErrNoDataset", err)
	}
}

func BenchmarkPropagate1000(b *testing.B) {
	iss := issEntry(b)
	entries := make([]tle.TLEEntry, 1000)
	for i := range entries {
		entries[i] = iss
		entries[i].NORADID = 30000 + i
	}
	store := tle.NewStore()
	store.Set(tle.NewDataset("bench", entries, 0, time.Now()))

	cfg := PropConfig{Workers: 4, Step: 5 * time.Second, Horizon: 5 * time.Second}
	prop := NewPropagator(store, cfg, testLogger())
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := prop.PropagateToTime(ctx, nearEpoch); err != nil {
			b.Fatal(err)
		}
	}
}
