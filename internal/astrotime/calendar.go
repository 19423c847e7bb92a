package astrotime

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnsupportedCalendar is returned for calendar kinds without a conversion.
var ErrUnsupportedCalendar = errors.New("unsupported calendar")

// ErrParse is returned when a date string cannot be parsed.
var ErrParse = errors.New("invalid date string")

// Calendar selects the civil calendar system used by a Date.
type Calendar int

const (
	// GregorianJulian uses the Julian calendar up to 1582 Oct 4 and the
	// Gregorian calendar from 1582 Oct 15.
	GregorianJulian Calendar = iota
	Gregorian
	Julian
	Jewish
	Islamic
	Indian
)

var calendarNames = map[Calendar]string{
	GregorianJulian: "gregorian-julian",
	Gregorian:       "gregorian",
	Julian:          "julian",
	Jewish:          "jewish",
	Islamic:         "islamic",
	Indian:          "indian",
}

func (c Calendar) String() string {
	if s, ok := calendarNames[c]; ok {
		return s
	}
	return "calendar(" + strconv.Itoa(int(c)) + ")"
}

// ParseCalendar maps a calendar name as printed by String back to a Calendar.
func ParseCalendar(s string) (Calendar, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range calendarNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedCalendar, s)
}

// Date is a local civil date and time in a particular calendar.
type Date struct {
	Calendar Calendar
	Zone     float64 // hours east of Greenwich
	Year     int
	Month    int
	Day      int
	Hour     int
	Min      int
	Sec      float64
}

// DayFraction returns the day of month plus the fraction of the day elapsed.
func (d Date) DayFraction() float64 {
	return float64(d.Day) + float64(d.Hour)/24.0 + float64(d.Min)/1440.0 + d.Sec/SecondsPerDay
}

// FromCalendar converts a local calendar date to a Time.
func FromCalendar(d Date) (Time, error) {
	dayf := d.DayFraction() - d.Zone/24.0

	var jd float64
	switch d.Calendar {
	case Gregorian:
		jd = gregorianToJD(d.Year, d.Month, dayf)
	case Julian:
		jd = julianToJD(d.Year, d.Month, dayf)
	case Jewish:
		jd = jewishToJD(d.Year, d.Month, dayf)
	case Islamic:
		jd = islamicToJD(d.Year, d.Month, dayf)
	case Indian:
		jd = indianToJD(d.Year, d.Month, dayf)
	case GregorianJulian:
		jd = calendarToJD(d.Year, d.Month, dayf)
	default:
		return Time{}, fmt.Errorf("from calendar %v: %w", d.Calendar, ErrUnsupportedCalendar)
	}
	return Time{JD: jd, Zone: d.Zone}, nil
}

// ToCalendar converts t to a local date in calendar cal, using t.Zone.
func (t Time) ToCalendar(cal Calendar) (Date, error) {
	jd := t.JD + t.Zone/24.0

	var (
		y, m int
		dayf float64
	)
	switch cal {
	case Gregorian:
		y, m, dayf = jdToGregorian(jd)
	case Julian:
		y, m, dayf = jdToJulian(jd)
	case Jewish:
		y, m, dayf = jdToJewish(jd)
	case Islamic:
		y, m, dayf = jdToIslamic(jd)
	case Indian:
		y, m, dayf = jdToIndian(jd)
	case GregorianJulian:
		y, m, dayf = jdToCalendar(jd)
	default:
		return Date{}, fmt.Errorf("to calendar %v: %w", cal, ErrUnsupportedCalendar)
	}

	day := math.Floor(dayf)
	frac := dayf - day
	hour := math.Floor(frac * 24.0)
	min := math.Floor(frac*1440.0 - hour*60.0)
	if min < 0 {
		min = 0
	}
	sec := frac*SecondsPerDay - hour*3600.0 - min*60.0
	if sec < 0 {
		sec = 0
	}

	return Date{
		Calendar: cal,
		Zone:     t.Zone,
		Year:     y,
		Month:    m,
		Day:      int(day),
		Hour:     int(hour),
		Min:      int(min),
		Sec:      sec,
	}, nil
}

// String formats d as "YYYY-MM-DD HH:MM:SS.ss".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%05.2f", d.Year, d.Month, d.Day, d.Hour, d.Min, d.Sec)
}

// ParseDate parses "YYYY-MM-DD", "YYYY-MM-DD HH:MM" or "YYYY-MM-DD HH:MM:SS.s".
// A leading '-' marks a negative year.
func ParseDate(s string, cal Calendar, zone float64) (Date, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	datePart, timePart, _ := strings.Cut(s, " ")
	if tp, dp, ok := strings.Cut(s, "T"); ok {
		datePart, timePart = tp, dp
	}

	ymd := strings.Split(datePart, "-")
	if len(ymd) != 3 {
		return Date{}, fmt.Errorf("%w: %q", ErrParse, s)
	}
	var nums [3]int
	for i, f := range ymd {
		n, err := strconv.Atoi(f)
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q: %v", ErrParse, s, err)
		}
		nums[i] = n
	}

	d := Date{Calendar: cal, Zone: zone, Year: nums[0], Month: nums[1], Day: nums[2]}
	if neg {
		d.Year = -d.Year
	}
	if d.Month < 1 || d.Month > 13 || d.Day < 1 || d.Day > 31 {
		return Date{}, fmt.Errorf("%w: %q: month or day out of range", ErrParse, s)
	}

	timePart = strings.TrimSpace(timePart)
	if timePart == "" {
		return d, nil
	}
	hms := strings.Split(timePart, ":")
	if len(hms) < 2 || len(hms) > 3 {
		return Date{}, fmt.Errorf("%w: %q", ErrParse, timePart)
	}
	h, err := strconv.Atoi(hms[0])
	if err != nil || h < 0 || h > 23 {
		return Date{}, fmt.Errorf("%w: hour %q", ErrParse, hms[0])
	}
	m, err := strconv.Atoi(hms[1])
	if err != nil || m < 0 || m > 59 {
		return Date{}, fmt.Errorf("%w: minute %q", ErrParse, hms[1])
	}
	d.Hour, d.Min = h, m
	if len(hms) == 3 {
		sec, err := strconv.ParseFloat(strings.TrimSuffix(hms[2], "Z"), 64)
		if err != nil || sec < 0 || sec >= 60 {
			return Date{}, fmt.Errorf("%w: second %q", ErrParse, hms[2])
		}
		d.Sec = sec
	}
	return d, nil
}

// DaysInMonth returns the length of d's month in d's calendar.
func (d Date) DaysInMonth() int {
	first := Date{Calendar: d.Calendar, Year: d.Year, Month: d.Month, Day: 1}
	next := first
	next.Month++
	if next.Month > d.monthsInYear() {
		next.Month = 1
		next.Year++
	}
	t0, err0 := FromCalendar(first)
	t1, err1 := FromCalendar(next)
	if err0 != nil || err1 != nil {
		return 0
	}
	return int(math.Round(t1.JD - t0.JD))
}

func (d Date) monthsInYear() int {
	if d.Calendar == Jewish && isJewishLeapYear(d.Year) {
		return 13
	}
	return 12
}

var (
	westernMonths = [...]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"}
	jewishMonths  = [...]string{"Tishri", "Heshvan", "Kislev", "Tevet", "Shevat", "Adar", "Adar II", "Nisan", "Iyar", "Sivan", "Tammuz", "Av", "Elul"}
	islamicMonths = [...]string{"Muharram", "Safar", "Rabi'al-Awwal", "Rabi'ath-Thani", "Jumada l-Ula", "Jumada t-Tania", "Rajab", "Sha'ban", "Ramadan", "Shawwal", "Dhu l-Qa'da", "Dhu l-Hijja"}
	indianMonths  = [...]string{"Caitra", "Vaisakha", "Jyaistha", "Asadha", "Sravana", "Bhadra", "Asvina", "Kartika", "Agrahayana", "Pausa", "Magha", "Phalguna"}
)

// MonthName returns the name of d's month in d's calendar.
func (d Date) MonthName() string {
	var names []string
	switch d.Calendar {
	case Jewish:
		names = jewishMonths[:]
		// Common years have no Adar II; Nisan onward shifts down one slot.
		if !isJewishLeapYear(d.Year) && d.Month >= 7 {
			if d.Month-1 < len(names)-1 {
				return names[d.Month]
			}
			return ""
		}
	case Islamic:
		names = islamicMonths[:]
	case Indian:
		names = indianMonths[:]
	default:
		names = westernMonths[:]
	}
	if d.Month < 1 || d.Month > len(names) {
		return ""
	}
	return names[d.Month-1]
}
