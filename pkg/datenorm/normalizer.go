package datenorm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultOffset is the backend's locale (KST).
const DefaultOffset = 9 * time.Hour

const maxOffset = 14 * time.Hour

// Normalizer applies one fixed UTC offset to every instant/day conversion.
// It holds no mutable state and is safe to share.
type Normalizer struct {
	offset time.Duration
	zone   *time.Location
}

// New returns a Normalizer for the given offset east of UTC.
func New(offset time.Duration) (Normalizer, error) {
	if offset < -maxOffset || offset > maxOffset {
		return Normalizer{}, fmt.Errorf("offset %s out of range", offset)
	}
	if offset%time.Minute != 0 {
		return Normalizer{}, fmt.Errorf("offset %s is not a whole number of minutes", offset)
	}
	return Normalizer{
		offset: offset,
		zone:   time.FixedZone(FormatOffset(offset), int(offset/time.Second)),
	}, nil
}

// MustNew is New for offsets known to be valid.
func MustNew(offset time.Duration) Normalizer {
	n, err := New(offset)
	if err != nil {
		panic(err)
	}
	return n
}

// Offset returns the fixed display offset.
func (n Normalizer) Offset() time.Duration {
	return n.offset
}

// InstantToLocalDay shifts the instant by the display offset and truncates
// it to a day. Invalid instants map to UnknownDay.
func (n Normalizer) InstantToLocalDay(i Instant) CalendarDay {
	if !i.Valid || i.Time.IsZero() {
		return UnknownDay
	}
	shifted := i.Time.UTC().Add(n.offset)
	return CalendarDay{Year: shifted.Year(), Month: shifted.Month(), Day: shifted.Day()}
}

// LocalDayAndTimeToInstant composes a wall-clock moment on day and shifts it
// back by the display offset, producing the instant to submit.
func (n Normalizer) LocalDayAndTimeToInstant(day CalendarDay, hour, minute int) (Instant, error) {
	if !day.IsKnown() {
		return Instant{}, fmt.Errorf("invalid day %+v", day)
	}
	if hour < 0 || hour > 23 {
		return Instant{}, fmt.Errorf("hour %d out of range", hour)
	}
	if minute < 0 || minute > 59 {
		return Instant{}, fmt.Errorf("minute %d out of range", minute)
	}
	wall := time.Date(day.Year, day.Month, day.Day, hour, minute, 0, 0, time.UTC)
	return At(wall.Add(-n.offset)), nil
}

// Today is the local day containing now.
func (n Normalizer) Today(now time.Time) CalendarDay {
	return n.InstantToLocalDay(At(now))
}

// DayBounds returns the UTC half-open range [start, end) covering day.
func (n Normalizer) DayBounds(day CalendarDay) (start, end Instant, err error) {
	start, err = n.LocalDayAndTimeToInstant(day, 0, 0)
	if err != nil {
		return Instant{}, Instant{}, err
	}
	return start, At(start.Time.Add(24 * time.Hour)), nil
}

// LocalClock formats the wall-clock time of i as HH:MM, or "--:--".
func (n Normalizer) LocalClock(i Instant) string {
	if !i.Valid {
		return "--:--"
	}
	return i.Time.In(n.zone).Format("15:04")
}

// FilterDay keeps the items whose instant falls on day.
func FilterDay[T any](n Normalizer, items []T, day CalendarDay, instantOf func(T) Instant) []T {
	var out []T
	if !day.IsKnown() {
		return out
	}
	for _, it := range items {
		d := n.InstantToLocalDay(instantOf(it))
		if d.IsKnown() && DayEquals(d, day) {
			out = append(out, it)
		}
	}
	return out
}

// DayGroup is the set of items on one local day.
type DayGroup[T any] struct {
	Day   CalendarDay
	Items []T
}

// GroupByDay groups items by local day in ascending day order. Items on the
// unknown day are returned separately and never appear in a group.
func GroupByDay[T any](n Normalizer, items []T, instantOf func(T) Instant) (groups []DayGroup[T], ungrouped []T) {
	byDay := make(map[CalendarDay][]T)
	for _, it := range items {
		d := n.InstantToLocalDay(instantOf(it))
		if !d.IsKnown() {
			ungrouped = append(ungrouped, it)
			continue
		}
		byDay[d] = append(byDay[d], it)
	}
	for d, its := range byDay {
		groups = append(groups, DayGroup[T]{Day: d, Items: its})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Day.Before(groups[j].Day) })
	return groups, ungrouped
}

// ParseClock parses HH:MM.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q: use HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

// ParseOffset accepts "+09:00", "-05:30", "+0900" or a bare hour count
// such as "9" or "-5".
func ParseOffset(s string) (time.Duration, error) {
	in := strings.TrimSpace(s)
	if in == "" {
		return 0, fmt.Errorf("empty offset")
	}

	sign := time.Duration(1)
	rest := in
	switch rest[0] {
	case '+':
		rest = rest[1:]
	case '-':
		sign = -1
		rest = rest[1:]
	}

	if !strings.Contains(rest, ":") && len(rest) <= 2 {
		h, err := parseDigits(rest)
		if err != nil {
			return 0, fmt.Errorf("invalid offset %q", in)
		}
		return sign * time.Duration(h) * time.Hour, nil
	}

	rest = strings.Replace(rest, ":", "", 1)
	if len(rest) != 4 {
		return 0, fmt.Errorf("invalid offset %q", in)
	}
	h, err := parseDigits(rest[:2])
	if err != nil {
		return 0, fmt.Errorf("invalid offset hours %q", rest[:2])
	}
	m, err := parseDigits(rest[2:])
	if err != nil || m > 59 {
		return 0, fmt.Errorf("invalid offset minutes %q", rest[2:])
	}
	return sign * (time.Duration(h)*time.Hour + time.Duration(m)*time.Minute), nil
}

// parseDigits is strconv.Atoi without sign handling.
func parseDigits(s string) (int, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return strconv.Atoi(s)
}

// FormatOffset renders an offset as +HH:MM.
func FormatOffset(d time.Duration) string {
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	return fmt.Sprintf("%s%02d:%02d", sign, int(d/time.Hour), int((d%time.Hour)/time.Minute))
}
