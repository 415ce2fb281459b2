package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"dayplan/pkg/api"
	"dayplan/pkg/datenorm"
)

// SortBy is the todo sort key.
type SortBy int

const (
	SortByDueDate SortBy = iota
	SortByTitle
	SortByStatus
	SortByCategory
	sortByCount
)

func (s SortBy) String() string {
	return [...]string{"due date", "title", "status", "category"}[s]
}

// GroupBy is the todo grouping.
type GroupBy int

const (
	GroupByNone GroupBy = iota
	GroupByCategory
	GroupByDueDateDaily
	GroupByDueDateWeekly
	GroupByDueDateMonthly
	groupByCount
)

func (g GroupBy) String() string {
	return [...]string{"none", "category", "daily", "weekly", "monthly"}[g]
}

// SortOrder is ascending or descending.
type SortOrder int

const (
	SortAsc SortOrder = iota
	SortDesc
)

// todoOrder bundles the todo list presentation settings.
type todoOrder struct {
	sortBy    SortBy
	groupBy   GroupBy
	sortOrder SortOrder
}

// GroupedTodos is a titled run of todos. Index refers back to the input
// slice.
type GroupedTodos struct {
	GroupName string
	Index     []int
}

const noDueDate = "No due date"

// sortTodos returns the indexes of todos in display order.
func (o todoOrder) sortTodos(todos []api.Todo, idx []int) []int {
	sorted := make([]int, len(idx))
	copy(sorted, idx)

	less := func(a, b api.Todo) bool {
		switch o.sortBy {
		case SortByTitle:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case SortByStatus:
			return !a.Completed() && b.Completed() // Undone first
		case SortByCategory:
			return strings.ToLower(a.Category) < strings.ToLower(b.Category)
		default:
			return a.DueDate.Time.Before(b.DueDate.Time)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := todos[sorted[i]], todos[sorted[j]]
		// Unknown dates sort last regardless of order.
		if o.sortBy == SortByDueDate && a.DueDate.Valid != b.DueDate.Valid {
			return a.DueDate.Valid
		}
		if o.sortOrder == SortDesc {
			return less(b, a)
		}
		return less(a, b)
	})
	return sorted
}

// groupTodos groups and sorts todos. Groups are ordered by name, with the
// "no due date"/"no category" bucket last.
func (o todoOrder) groupTodos(n datenorm.Normalizer, todos []api.Todo) []GroupedTodos {
	all := make([]int, len(todos))
	for i := range todos {
		all[i] = i
	}
	if o.groupBy == GroupByNone {
		return []GroupedTodos{{GroupName: "", Index: o.sortTodos(todos, all)}}
	}

	groups := make(map[string][]int)
	var leftover string
	for i, todo := range todos {
		key := o.groupKey(n, todo)
		if key == noDueDate || key == "No category" {
			leftover = key
		}
		groups[key] = append(groups[key], i)
	}

	var names []string
	for name := range groups {
		if name != leftover {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if leftover != "" {
		names = append(names, leftover)
	}

	result := make([]GroupedTodos, 0, len(names))
	for _, name := range names {
		result = append(result, GroupedTodos{GroupName: name, Index: o.sortTodos(todos, groups[name])})
	}
	return result
}

func (o todoOrder) groupKey(n datenorm.Normalizer, todo api.Todo) string {
	if o.groupBy == GroupByCategory {
		if todo.Category == "" {
			return "No category"
		}
		return "+" + todo.Category
	}

	day := n.InstantToLocalDay(todo.DueDate)
	if !day.IsKnown() {
		return noDueDate
	}
	switch o.groupBy {
	case GroupByDueDateWeekly:
		year, week := time.Date(day.Year, day.Month, day.Day, 0, 0, 0, 0, time.UTC).ISOWeek()
		return fmt.Sprintf("%d week %02d", year, week)
	case GroupByDueDateMonthly:
		return fmt.Sprintf("%04d-%02d %s", day.Year, int(day.Month), day.Month)
	default:
		return day.String()
	}
}
