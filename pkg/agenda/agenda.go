// Package agenda derives the day-based selections shown by the views and
// commands from the raw todo and schedule lists. Every day computation goes
// through a datenorm.Normalizer.
package agenda

import (
	"fmt"
	"sort"

	"dayplan/pkg/api"
	"dayplan/pkg/datenorm"
)

// Indexes returns 0..n-1.
func Indexes(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// SchedulesOn returns the indexes of the schedules starting on day, ordered
// by start time.
func SchedulesOn(n datenorm.Normalizer, schedules []api.Schedule, day datenorm.CalendarDay) []int {
	idx := datenorm.FilterDay(n, Indexes(len(schedules)), day, func(i int) datenorm.Instant {
		return schedules[i].StartTime
	})
	sort.SliceStable(idx, func(i, j int) bool {
		return schedules[idx[i]].StartTime.Time.Before(schedules[idx[j]].StartTime.Time)
	})
	return idx
}

// SchedulesBetween returns the indexes of the schedules starting within the
// days local days beginning at from, ordered by start time.
func SchedulesBetween(n datenorm.Normalizer, schedules []api.Schedule, from datenorm.CalendarDay, days int) ([]int, error) {
	if days < 1 {
		return nil, fmt.Errorf("days must be at least 1, got %d", days)
	}
	start, _, err := n.DayBounds(from)
	if err != nil {
		return nil, err
	}
	_, end, err := n.DayBounds(from.AddDays(days - 1))
	if err != nil {
		return nil, err
	}

	var idx []int
	for i, s := range schedules {
		if !s.StartTime.Valid || s.StartTime.Time.Before(start.Time) || !s.StartTime.Time.Before(end.Time) {
			continue
		}
		idx = append(idx, i)
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return schedules[idx[i]].StartTime.Time.Before(schedules[idx[j]].StartTime.Time)
	})
	return idx, nil
}

// Ongoing returns the indexes of the todos due on day that are not
// completed.
func Ongoing(n datenorm.Normalizer, todos []api.Todo, day datenorm.CalendarDay) []int {
	var out []int
	for _, i := range datenorm.FilterDay(n, Indexes(len(todos)), day, func(i int) datenorm.Instant {
		return todos[i].DueDate
	}) {
		if !todos[i].Completed() {
			out = append(out, i)
		}
	}
	return out
}

// Overdue reports whether t is open and due before today.
func Overdue(n datenorm.Normalizer, t api.Todo, today datenorm.CalendarDay) bool {
	if t.Completed() {
		return false
	}
	day := n.InstantToLocalDay(t.DueDate)
	return day.IsKnown() && day.Before(today)
}

// History selects completed and overdue todos and groups them by local due
// day, newest first. Completed todos without a due date are returned
// separately.
func History(n datenorm.Normalizer, todos []api.Todo, today datenorm.CalendarDay) (groups []datenorm.DayGroup[int], undated []int) {
	var picked []int
	for i, t := range todos {
		if t.Completed() || Overdue(n, t, today) {
			picked = append(picked, i)
		}
	}
	groups, undated = datenorm.GroupByDay(n, picked, func(i int) datenorm.Instant {
		return todos[i].DueDate
	})
	for l, r := 0, len(groups)-1; l < r; l, r = l+1, r-1 {
		groups[l], groups[r] = groups[r], groups[l]
	}
	return groups, undated
}

// ScheduleDays is the set of local days with at least one schedule.
func ScheduleDays(n datenorm.Normalizer, schedules []api.Schedule) map[datenorm.CalendarDay]bool {
	days := make(map[datenorm.CalendarDay]bool)
	for _, s := range schedules {
		if d := n.InstantToLocalDay(s.StartTime); d.IsKnown() {
			days[d] = true
		}
	}
	return days
}
