package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// CALENDAR DIFF - Difference in calendar units, not elapsed duration
// =============================================================================

// CalendarDiff is the difference between two instants expressed in calendar
// components. Months and years have their real lengths: Jan 31 to Mar 1 is
// one month and one day, not 29 days.
//
// Components carry the sign of (to - from). TotalDays is the number of whole
// days elapsed with years and months folded in.
type CalendarDiff struct {
	Years     int
	Months    int
	Days      int
	Hours     int
	Minutes   int
	Seconds   int
	TotalDays int
}

const secondsPerDay = 24 * 60 * 60

// Diff computes the calendar difference from -> to.
//
// The computation runs on wall-clock fields in from's location so a DST
// transition never turns a calendar day into 23 or 25 hours. When the day
// component has to borrow from months, it borrows the length of from's month.
func Diff(from, to time.Time) CalendarDiff {
	to = to.In(from.Location())
	if to.Before(from) {
		return Diff(to, from).negate()
	}

	y1, m1, d1 := from.Date()
	y2, m2, d2 := to.Date()

	years := y2 - y1
	months := int(m2 - m1)
	days := d2 - d1
	secs := clockSeconds(to) - clockSeconds(from)

	if secs < 0 {
		secs += secondsPerDay
		days--
	}
	if days < 0 {
		days += DaysIn(y1, m1)
		months--
	}
	if months < 0 {
		months += 12
		years--
	}

	total := civilDays(y1, m1, d1, y2, m2, d2)
	if clockSeconds(to) < clockSeconds(from) {
		total--
	}

	return CalendarDiff{
		Years:     years,
		Months:    months,
		Days:      days,
		Hours:     secs / 3600,
		Minutes:   secs % 3600 / 60,
		Seconds:   secs % 60,
		TotalDays: total,
	}
}

func (d CalendarDiff) negate() CalendarDiff {
	return CalendarDiff{
		Years:     -d.Years,
		Months:    -d.Months,
		Days:      -d.Days,
		Hours:     -d.Hours,
		Minutes:   -d.Minutes,
		Seconds:   -d.Seconds,
		TotalDays: -d.TotalDays,
	}
}

// IsZero reports whether every component is zero.
func (d CalendarDiff) IsZero() bool { return d == CalendarDiff{} }

// String renders the diff as "+1y 2m 3d 04:05:06".
func (d CalendarDiff) String() string {
	sign := "+"
	if d.Years < 0 || d.Months < 0 || d.Days < 0 || d.Hours < 0 || d.Minutes < 0 || d.Seconds < 0 {
		sign = "-"
		d = d.negate()
	}
	return fmt.Sprintf("%s%dy %dm %dd %02d:%02d:%02d", sign, d.Years, d.Months, d.Days, d.Hours, d.Minutes, d.Seconds)
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func clockSeconds(t time.Time) int {
	h, m, s := t.Clock()
	return h*3600 + m*60 + s
}

func civilDays(y1 int, m1 time.Month, d1 int, y2 int, m2 time.Month, d2 int) int {
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// Date is a convenience constructor for a UTC midnight instant.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
