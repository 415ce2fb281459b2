// Package datenorm converts between the backend's UTC instants and the
// timezone-less calendar days shown to the user. Every conversion goes
// through a single fixed display offset.
package datenorm

import (
	"fmt"
	"time"
)

// DayLayout is the textual form of a CalendarDay.
const DayLayout = "2006-01-02"

// CalendarDay is a date as seen by the user: no time of day, no zone.
// The zero value is the unknown day.
type CalendarDay struct {
	Year  int
	Month time.Month
	Day   int
}

// UnknownDay is returned for instants that are missing or malformed.
// Entries on the unknown day are excluded from any day-based grouping.
var UnknownDay = CalendarDay{}

// NewDay returns a range-checked calendar day.
func NewDay(year int, month time.Month, day int) (CalendarDay, error) {
	if year < 1 || year > 9999 {
		return UnknownDay, fmt.Errorf("year %d out of range", year)
	}
	if month < time.January || month > time.December {
		return UnknownDay, fmt.Errorf("month %d out of range", month)
	}
	if day < 1 || day > daysIn(year, month) {
		return UnknownDay, fmt.Errorf("day %d out of range for %04d-%02d", day, year, month)
	}
	return CalendarDay{Year: year, Month: month, Day: day}, nil
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (CalendarDay, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return UnknownDay, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return CalendarDay{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// IsKnown reports whether d is a valid calendar date.
func (d CalendarDay) IsKnown() bool {
	if d == UnknownDay {
		return false
	}
	_, err := NewDay(d.Year, d.Month, d.Day)
	return err == nil
}

func (d CalendarDay) String() string {
	if !d.IsKnown() {
		return "unknown"
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// AddDays returns the day n days after d (n may be negative).
func (d CalendarDay) AddDays(n int) CalendarDay {
	if !d.IsKnown() {
		return UnknownDay
	}
	t := d.midnight().AddDate(0, 0, n)
	return CalendarDay{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Before reports whether d is strictly earlier than o.
func (d CalendarDay) Before(o CalendarDay) bool {
	return d.midnight().Before(o.midnight())
}

// FirstOfMonth returns the first day of d's month.
func (d CalendarDay) FirstOfMonth() CalendarDay {
	return CalendarDay{Year: d.Year, Month: d.Month, Day: 1}
}

// DaysInMonth returns the number of days in d's month.
func (d CalendarDay) DaysInMonth() int {
	return daysIn(d.Year, d.Month)
}

// Weekday of d.
func (d CalendarDay) Weekday() time.Weekday {
	return d.midnight().Weekday()
}

// DayEquals is exact field equality.
func DayEquals(a, b CalendarDay) bool {
	return a.Year == b.Year && a.Month == b.Month && a.Day == b.Day
}

// midnight is d at 00:00 UTC; only used for calendar arithmetic.
func (d CalendarDay) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
