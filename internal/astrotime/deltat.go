package astrotime

import "github.com/soniakeys/meeus/v3/deltat"

// DeltaT returns TT - UT in seconds at the UTC Julian Date jd. Between
// 1620 and 1998 it interpolates the observed values of Meeus table 10.A;
// elsewhere it uses the Espenak and Meeus polynomial fits (NASA eclipse
// site, 2004 revision). The 2005-2050 branch uses a refit that better
// matches observed values through 2015 while still reaching about 93 s in
// 2050.
func DeltaT(jd float64) float64 {
	y := (jd-J2000)/DaysPerJulianYear + 2000.0 - 0.5/12.0
	if y >= 1620 && y < 1998 {
		return deltat.Interp10A(jd).Sec()
	}

	switch {
	case y < -500:
		u := (y - 1820) / 100
		return -20 + 32*u*u
	case y < 500:
		u := y / 100
		return poly(u, 10538.6, -1014.41, 33.78311, -5.952053, -0.1798452, 0.022174192, 0.0090316521)
	case y < 1600:
		u := (y - 1000) / 100
		return poly(u, 1574.2, -556.01, 71.23472, 0.319781, -0.8503463, -0.005050998, 0.0083572073)
	case y < 1700:
		t := y - 1600
		return poly(t, 120, -0.9808, -0.01532, 1.0/7129.0)
	case y < 1800:
		t := y - 1700
		return poly(t, 8.83, 0.1603, -0.0059285, 0.00013336, -1.0/1174000.0)
	case y < 1860:
		t := y - 1800
		return poly(t, 13.72, -0.332447, 0.0068612, 0.0041116, -0.00037436, 0.0000121272, -0.0000001699, 0.000000000875)
	case y < 1900:
		t := y - 1860
		return poly(t, 7.62, 0.5737, -0.251754, 0.01680668, -0.0004473624, 1.0/233174.0)
	case y < 1920:
		t := y - 1900
		return poly(t, -2.79, 1.494119, -0.0598939, 0.0061966, -0.000197)
	case y < 1940:
		t := y - 1920
		return poly(t, 21.20, 0.84493, -0.076100, 0.0020936)
	case y < 1960:
		t := y - 1950
		return poly(t, 29.07, 0.407, -1.0/233.0, 1.0/2547.0)
	case y < 1985:
		t := y - 1975
		return poly(t, 45.45, 1.067, -1.0/260.0, -1.0/718.0)
	case y < 2005:
		t := y - 2000
		return poly(t, 63.86, 0.3345, -0.060374, 0.0017275, 0.000651814, 0.00002373599)
	case y < 2050:
		t := y - 2000
		return poly(t, 63.83, 0.1102, 0.009464)
	case y < 2150:
		u := (y - 1820) / 100
		return -20 + 32*u*u - 0.5628*(2150-y)
	default:
		u := (y - 1820) / 100
		return -20 + 32*u*u
	}
}

// poly evaluates c[0] + c[1]x + c[2]x² + ... by Horner's rule.
func poly(x float64, c ...float64) float64 {
	r := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		r = r*x + c[i]
	}
	return r
}
