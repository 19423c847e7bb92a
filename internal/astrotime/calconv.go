package astrotime

import (
	"math"

	"github.com/soniakeys/meeus/v3/jm"
	"github.com/soniakeys/meeus/v3/julian"
)

// Conversions between Julian Dates and calendar dates. Forward Julian and
// Gregorian conversions, the mixed calendar inverse and the Moslem
// calendar go through github.com/soniakeys/meeus/v3. meeus has no
// proleptic inverses, no Jewish month structure and no Indian civil
// calendar, so those use the Explanatory Supplement to the Astronomical
// Almanac, whose formulas rely on integer division truncating toward zero.

// calendarToJD converts a date in the Julian calendar before 1582 Oct 5 and
// the Gregorian calendar from then on.
func calendarToJD(y, m int, d float64) float64 {
	if y > 1582 || (y == 1582 && (m > 10 || (m == 10 && d >= 5))) {
		return julian.CalendarGregorianToJD(y, m, d)
	}
	return julian.CalendarJulianToJD(y, m, d)
}

func jdToCalendar(jd float64) (int, int, float64) {
	return julian.JDToCalendar(jd)
}

func gregorianToJD(y, m int, d float64) float64 {
	return julian.CalendarGregorianToJD(y, m, d)
}

func jdToGregorian(jd float64) (int, int, float64) {
	jd += 0.5
	j := int64(math.Floor(jd))
	f := jd - float64(j)

	l := j + 68569
	n := (4 * l) / 146097
	l = l - (146097*n+3)/4
	i := (4000 * (l + 1)) / 1461001
	l = l - (1461*i)/4 + 31
	j = (80 * l) / 2447

	d := float64(l-(2447*j)/80) + f
	l = j / 11
	m := j + 2 - 12*l
	y := 100*(n-49) + i + l
	return int(y), int(m), d
}

func julianToJD(y, m int, d float64) float64 {
	return julian.CalendarJulianToJD(y, m, d)
}

func jdToJulian(jd float64) (int, int, float64) {
	jd += 0.5
	j := int64(math.Floor(jd))
	f := jd - float64(j)

	j += 1402
	k := (j - 1) / 1461
	l := j - 1461*k
	n := (l-1)/365 - l/1461
	i := l - 365*n + 30
	j = (80 * i) / 2447

	d := float64(i-(2447*j)/80) + f
	i = j / 11
	m := j + 2 - 12*i
	y := 4*k + n + i - 4716
	return int(y), int(m), d
}

// tishri1 returns the day number of 1 Tishri of Jewish year y. jm gives
// the western date of the new year that falls in each western year.
func tishri1(y int64) int64 {
	wy := int(y) - 3761
	_, _, _, m, d, _, _ := jm.JewishCalendar(wy)
	if wy < 1583 {
		return int64(julian.CalendarJulianToJD(wy, m, float64(d)) + 0.5)
	}
	return int64(julian.CalendarGregorianToJD(wy, m, float64(d)) + 0.5)
}

// jewishMonthStart[k-1][m-1] is the day offset of month m from 1 Tishri in
// a year of type k. Types 1-3 are deficient, regular and complete common
// years; 4-6 the same for leap years.
var jewishMonthStart = [6][13]int64{
	{0, 30, 59, 88, 117, 147, 176, 206, 235, 265, 294, 324, 999},
	{0, 30, 59, 89, 118, 148, 177, 207, 236, 266, 295, 325, 999},
	{0, 30, 60, 90, 119, 149, 178, 208, 237, 267, 296, 326, 999},
	{0, 30, 59, 88, 117, 147, 177, 206, 236, 265, 295, 324, 354},
	{0, 30, 59, 89, 118, 148, 178, 207, 237, 266, 296, 325, 355},
	{0, 30, 60, 90, 119, 149, 179, 208, 238, 267, 297, 326, 356},
}

func jewdays(k, m int64) int64 {
	if k > 0 && k < 7 && m > 0 && m < 14 {
		return jewishMonthStart[k-1][m-1]
	}
	return 0
}

func jewishYearType(y int64) (start, k int64) {
	a := tishri1(y)
	b := tishri1(y + 1)
	return a, b - a - 352 - 27*(((7*y+13)%19)/12)
}

func isJewishLeapYear(y int) bool {
	_, k := jewishYearType(int64(y))
	return k > 3
}

func jewishToJD(y, m int, d float64) float64 {
	a, k := jewishYearType(int64(y))
	return float64(a+jewdays(k, int64(m))) + d - 1.5
}

func jdToJewish(jd float64) (int, int, float64) {
	jd += 0.5
	j := int64(math.Floor(jd))
	f := jd - float64(j)

	M := (25920 * (j - 347996)) / 765433
	y := 19*(M/235) + (19*(M%235)-2)/235 + 1
	if tishri1(y) > j {
		y--
	} else if tishri1(y+1) <= j {
		y++
	}

	a, k := jewishYearType(y)
	c := j - a + 1

	m := int64(1)
	for ; m < 14; m++ {
		if jewdays(k, m) >= c {
			break
		}
	}
	m--
	d := float64(c-jewdays(k, m)) + f
	return int(y), int(m), d
}

// islamicToJD uses the tabular Moslem calendar of jm, which works in whole
// days on the Julian calendar.
func islamicToJD(y, m int, d float64) float64 {
	day := math.Floor(d)
	jy, doy := jm.MoslemToJulian(y, m, int(day))
	return julian.CalendarJulianToJD(jy, 1, float64(doy)) + d - day
}

func jdToIslamic(jd float64) (int, int, float64) {
	y, m, d := jdToJulian(jd)
	day := math.Floor(d)
	my, mm, md := jm.JulianToMoslem(y, m, int(day))
	return my, mm, float64(md) + d - day
}

func indianToJD(y, m int, d float64) float64 {
	Y, M := int64(y), int64(m)
	first := int64(0) // 1/M in the Supplement's integer arithmetic
	if M == 1 {
		first = 1
	}
	n := 365*Y + (Y+78-first)/4 + 31*M - (M+9)/11 -
		(M/7)*(M-7) -
		(3*((Y+78-first)/100+1))/4
	return float64(n) + d + 1749578.5
}

func jdToIndian(jd float64) (int, int, float64) {
	jd += 0.5
	j := int64(math.Floor(jd))
	f := jd - float64(j)

	l := j + 68518
	n := (4 * l) / 146097
	l = l - (146097*n+3)/4
	i := (4000 * (l + 1)) / 1461001
	l = l - (1461*i)/4 + 1
	j = ((l-1)/31)*(1-l/185) + (l/185)*((l-156)/30+5) - l/366

	d := float64(l-31*j+((j+2)/8)*(j-5)) + f
	l = j / 11
	m := j + 2 - 12*l
	y := 100*(n-49) + l + i - 78
	return int(y), int(m), d
}
