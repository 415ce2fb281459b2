package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dayplan/pkg/agenda"
	"dayplan/pkg/api"
	"dayplan/pkg/datenorm"
)

// HistoryEntry is one exported history record.
type HistoryEntry struct {
	Day      string `json:"day,omitempty"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
	Status   string `json:"status"`
	Overdue  bool   `json:"overdue"`
}

// History returns completed and overdue todos, newest day first, followed
// by completed todos without a due date.
func History(n datenorm.Normalizer, todos []api.Todo, today datenorm.CalendarDay) []HistoryEntry {
	entry := func(day string, t api.Todo) HistoryEntry {
		return HistoryEntry{
			Day:      day,
			ID:       t.ID,
			Title:    t.Title,
			Category: t.Category,
			Status:   t.Status,
			Overdue:  agenda.Overdue(n, t, today),
		}
	}

	groups, undated := agenda.History(n, todos, today)
	var out []HistoryEntry
	for _, g := range groups {
		for _, i := range g.Items {
			out = append(out, entry(g.Day.String(), todos[i]))
		}
	}
	for _, i := range undated {
		out = append(out, entry("", todos[i]))
	}
	return out
}

func (e *Env) history(ctx context.Context) ([]HistoryEntry, error) {
	if _, err := e.RequireSession(ctx); err != nil {
		return nil, err
	}
	todos, err := e.Client.ListTodos(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading todos: %w", err)
	}
	return History(e.Norm, todos, e.today()), nil
}

// ListHistory prints the history grouped by day.
func ListHistory(ctx context.Context, env *Env) error {
	entries, err := env.history(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(env.Out, "No completed or overdue todos.")
		return nil
	}
	fmt.Fprintln(env.Out, FormatHistoryText(entries))
	return nil
}

// FormatHistoryText renders entries in the plain-text todo format read by
// ParseTodoList, with DD.MM.YYYY day headers.
func FormatHistoryText(entries []HistoryEntry) string {
	var lines []string
	lastDay := "-"
	for _, e := range entries {
		if e.Day != lastDay {
			header := "No due date:"
			if day, err := datenorm.ParseDay(e.Day); err == nil {
				header = fmt.Sprintf("%02d.%02d.%04d:", day.Day, int(day.Month), day.Year)
			}
			lines = append(lines, "\n"+header)
			lastDay = e.Day
		}

		status := " "
		if e.Status == api.StatusCompleted {
			status = "x"
		}
		text := e.Title
		if e.Category != "" {
			text += " +" + e.Category
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s", status, text))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ExportHistory writes the history to filename as json or txt.
func ExportHistory(ctx context.Context, env *Env, filename, exportType string) error {
	var render func([]HistoryEntry) ([]byte, error)
	switch exportType {
	case "json":
		render = func(entries []HistoryEntry) ([]byte, error) {
			if entries == nil {
				entries = []HistoryEntry{}
			}
			return json.MarshalIndent(entries, "", "  ")
		}
	case "txt":
		render = func(entries []HistoryEntry) ([]byte, error) {
			return []byte(FormatHistoryText(entries)), nil
		}
	default:
		return fmt.Errorf("unknown export type: %s", exportType)
	}

	entries, err := env.history(ctx)
	if err != nil {
		return err
	}
	content, err := render(entries)
	if err != nil {
		return fmt.Errorf("rendering history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(filename, content, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	fmt.Fprintf(env.Out, "Successfully exported %d todo(s) to %s\n", len(entries), filename)
	return nil
}
