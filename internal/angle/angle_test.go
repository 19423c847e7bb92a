package angle

import (
	"math"
	"strings"
	"testing"

	"github.com/soniakeys/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSexagesimalRoundTrip(t *testing.T) {
	dms := []string{"-16 42 58.0", "+05 13 30.0", "+89 59 59.9", "-00 30 00.0", "+00 00 00.0", "+45 00 00.0"}
	for _, s := range dms {
		d, err := ParseDMS(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, d.String())
	}

	hms := []string{"06 45 08.92", "07 39 18.12", "23 59 59.99", "00 00 00.00", "12 30 00.00"}
	for _, s := range hms {
		h, err := ParseHMS(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, h.String())
	}
}

func TestParseValues(t *testing.T) {
	tests := []struct {
		in   string
		want float64 // degrees
	}{
		{"-16 42 58.0", -(16 + 42.0/60 + 58.0/3600)},
		{"+05 13 30", 5 + 13.0/60 + 30.0/3600},
		{"12 30.5", 12 + 30.5/60},
		{"-0.25", -0.25},
		{"  7   5  ", 7 + 5.0/60},
		{"-00 30", -0.5},
	}
	for _, tt := range tests {
		d, err := ParseDMS(tt.in)
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, d.Degrees(), 1e-12, tt.in)
	}

	h, err := ParseHMS("06 45 08.92")
	require.NoError(t, err)
	assert.InDelta(t, 6+45.0/60+8.92/3600, h.Hours(), 1e-12)
	assert.InDelta(t, h.Hours()*15*RadPerDeg, h.Angle().Rad(), 1e-12)
}

func TestParseErrors(t *testing.T) {
	bad := []string{"", "   ", "abc", "12 xx", "10 -20 30", "10 20 +30", "1 2 3 4", "10 60 00", "10 20 60.5", "NaN", "Inf"}
	for _, s := range bad {
		_, err := ParseDMS(s)
		assert.ErrorIs(t, err, ErrParse, "ParseDMS(%q)", s)
		_, err = ParseHMS(s)
		assert.ErrorIs(t, err, ErrParse, "ParseHMS(%q)", s)
	}
}

func TestHMSWrap(t *testing.T) {
	assert.Equal(t, "01 00 00.00", HMSFromHours(25).String())
	assert.Equal(t, "23 00 00.00", HMSFromHours(-1).String())
	h, err := ParseHMS("-1 00 00")
	require.NoError(t, err)
	assert.Equal(t, 23, h.Hour)
}

func TestStringCarry(t *testing.T) {
	d := DMS{Sign: '+', Deg: 10, Min: 59, Sec: 59.97}
	assert.Equal(t, "+11 00 00.0", d.String())
	h := HMS{Hour: 23, Min: 59, Sec: 59.999}
	assert.Equal(t, "00 00 00.00", h.String())
}

func TestAngleConversions(t *testing.T) {
	a := FromDegrees(180)
	assert.InDelta(t, math.Pi, a.Rad(), 1e-15)
	assert.InDelta(t, 12.0, a.Hours(), 1e-12)
	assert.InDelta(t, 648000.0, a.Arcsec(), 1e-6)
	assert.InDelta(t, 10800.0, a.Arcmin(), 1e-9)
	assert.InDelta(t, FromHours(6).Rad(), FromDegrees(90).Rad(), 1e-15)
	assert.InDelta(t, FromArcsec(3600).Rad(), FromArcmin(60).Rad(), 1e-15)

	assert.InDelta(t, 0.5, Angle(2*math.Pi+0.5).Mod2Pi().Rad(), 1e-12)
	assert.InDelta(t, 2*math.Pi-0.5, Angle(-0.5).Mod2Pi().Rad(), 1e-12)
	assert.InDelta(t, -0.5, Angle(2*math.Pi-0.5).ModPi().Rad(), 1e-12)
	assert.InDelta(t, 350.0, Mod360(-10), 1e-12)
	assert.InDelta(t, -10.0, Mod180(350), 1e-12)
	assert.InDelta(t, 3*math.Pi/2, Atan2Pos(-1, 0), 1e-12)

	assert.False(t, math.IsNaN(Asin(1+1e-15)))
	assert.False(t, math.IsNaN(Acos(-1-1e-15)))

	dms := FromDegrees(-16.716).DMS()
	assert.Equal(t, byte('-'), dms.Sign)
	assert.Equal(t, 16, dms.Deg)
	assert.Equal(t, 42, dms.Min)
	assert.InDelta(t, -16.716, dms.Angle().Degrees(), 1e-12)
	assert.Equal(t, 6, FromHours(6.75).HMS().Hour)
}

func TestFormat(t *testing.T) {
	dec := FromDegrees(-16.716)
	s := dec.FormatDMS(1)
	assert.NotContains(t, s, "%!")
	assert.True(t, strings.HasPrefix(s, "-"), "FormatDMS = %q", s)
	assert.Contains(t, s, "16")
	assert.Contains(t, s, "42")

	ra := FromHours(6.75)
	s = ra.FormatHMS(2)
	assert.NotContains(t, s, "%!")
	assert.Contains(t, s, "45")
	assert.False(t, strings.HasPrefix(s, "-"))

	// Negative right ascension wraps rather than printing a sign.
	assert.False(t, strings.HasPrefix(FromHours(-1).FormatHMS(0), "-"))

	assert.InDelta(t, dec.Rad(), dec.Unit().Rad(), 0)
	assert.InDelta(t, 12.5, FromUnit(unit.AngleFromDeg(12.5)).Degrees(), 1e-12)
}
