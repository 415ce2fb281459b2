package ui

import (
	"reflect"
	"testing"
	"time"

	"dayplan/pkg/api"
	"dayplan/pkg/datenorm"
)

func sampleTodos(t *testing.T) []api.Todo {
	t.Helper()
	at := func(s string) datenorm.Instant {
		i, ok := datenorm.ParseInstant(s)
		if !ok {
			t.Fatalf("ParseInstant(%q) failed", s)
		}
		return i
	}
	return []api.Todo{
		{Title: "banana", Category: "shop", Status: api.StatusCompleted, DueDate: at("2025-01-20T00:00:00Z")},
		{Title: "Apple", Status: api.StatusNotDone},
		{Title: "cherry", Category: "home", Status: api.StatusNotDone, DueDate: at("2025-01-05T00:00:00Z")},
		{Title: "date", Category: "shop", Status: api.StatusNotDone, DueDate: at("2025-01-06T00:00:00Z")},
	}
}

func TestSortTodos(t *testing.T) {
	todos := sampleTodos(t)
	all := []int{0, 1, 2, 3}

	cases := []struct {
		name  string
		order todoOrder
		want  []int
	}{
		{"due asc, undated last", todoOrder{sortBy: SortByDueDate}, []int{2, 3, 0, 1}},
		{"due desc, undated last", todoOrder{sortBy: SortByDueDate, sortOrder: SortDesc}, []int{0, 3, 2, 1}},
		{"title ignores case", todoOrder{sortBy: SortByTitle}, []int{1, 0, 2, 3}},
		{"status undone first, stable", todoOrder{sortBy: SortByStatus}, []int{1, 2, 3, 0}},
		{"status desc", todoOrder{sortBy: SortByStatus, sortOrder: SortDesc}, []int{0, 1, 2, 3}},
		{"category", todoOrder{sortBy: SortByCategory}, []int{1, 2, 0, 3}},
	}
	for _, tc := range cases {
		if got := tc.order.sortTodos(todos, all); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestGroupTodos(t *testing.T) {
	todos := sampleTodos(t)
	n := datenorm.MustNew(9 * time.Hour)

	names := func(groups []GroupedTodos) []string {
		var out []string
		for _, g := range groups {
			out = append(out, g.GroupName)
		}
		return out
	}

	byCategory := todoOrder{groupBy: GroupByCategory}.groupTodos(n, todos)
	if want := []string{"+home", "+shop", "No category"}; !reflect.DeepEqual(names(byCategory), want) {
		t.Fatalf("expected %v, got %v", want, names(byCategory))
	}
	if want := []int{3, 0}; !reflect.DeepEqual(byCategory[1].Index, want) {
		t.Fatalf("expected +shop sorted by due date %v, got %v", want, byCategory[1].Index)
	}

	monthly := todoOrder{groupBy: GroupByDueDateMonthly}.groupTodos(n, todos)
	if want := []string{"2025-01 January", noDueDate}; !reflect.DeepEqual(names(monthly), want) {
		t.Fatalf("expected %v, got %v", want, names(monthly))
	}

	weekly := todoOrder{groupBy: GroupByDueDateWeekly}.groupTodos(n, todos)
	if want := []string{"2025 week 01", "2025 week 02", "2025 week 04", noDueDate}; !reflect.DeepEqual(names(weekly), want) {
		t.Fatalf("expected %v, got %v", want, names(weekly))
	}
}
