package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"dayplan/pkg/api"
	"dayplan/pkg/datenorm"
	"dayplan/pkg/utils"
)

var dateLine = regexp.MustCompile(`^(?:(\d{2})\.(\d{2})\.(\d{4})|(\d{4})-(\d{2})-(\d{2})):?$`)

// ParseTodoList reads the plain-text todo format: date lines
// (DD.MM.YYYY: or YYYY-MM-DD:) followed by "- [ ] title +category" entries.
// Entries before any date line are due on fallback.
func ParseTodoList(r io.Reader, n datenorm.Normalizer, fallback datenorm.CalendarDay) ([]api.Todo, error) {
	var todos []api.Todo
	current := fallback

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if m := dateLine.FindStringSubmatch(line); m != nil {
			var year, month, day int
			if m[1] != "" {
				day, _ = strconv.Atoi(m[1])
				month, _ = strconv.Atoi(m[2])
				year, _ = strconv.Atoi(m[3])
			} else {
				year, _ = strconv.Atoi(m[4])
				month, _ = strconv.Atoi(m[5])
				day, _ = strconv.Atoi(m[6])
			}
			d, err := datenorm.NewDay(year, time.Month(month), day)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			current = d
			continue
		}

		if !strings.HasPrefix(line, "- ") {
			continue
		}
		text := strings.TrimSpace(strings.TrimPrefix(line, "- "))
		status := api.StatusNotDone
		switch {
		case strings.HasPrefix(text, "[x]"), strings.HasPrefix(text, "[X]"):
			status = api.StatusCompleted
			text = strings.TrimSpace(text[3:])
		case strings.HasPrefix(text, "[ ]"):
			text = strings.TrimSpace(text[3:])
		}
		title, category := utils.SplitCategory(text)
		if title == "" {
			continue
		}

		due, err := n.LocalDayAndTimeToInstant(current, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		todos = append(todos, api.Todo{Title: title, DueDate: due, Status: status, Category: category})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return todos, nil
}

// ImportTodos creates a todo for every entry in filename. Entries the
// backend rejects are reported and skipped.
func ImportTodos(ctx context.Context, env *Env, filename string) (int, error) {
	if _, err := env.RequireSession(ctx); err != nil {
		return 0, err
	}
	f, err := os.Open(filename)
	if err != nil {
		return 0, fmt.Errorf("reading file: %w", err)
	}
	defer f.Close()

	todos, err := ParseTodoList(f, env.Norm, env.today())
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", filename, err)
	}

	added := 0
	for _, t := range todos {
		if _, err := env.Client.CreateTodo(ctx, t); err != nil {
			utils.LogError("import entry rejected", err, "title", t.Title)
			fmt.Fprintf(env.Out, "Error adding todo '%s': %s\n", t.Title, api.Message(err))
			continue
		}
		added++
	}
	fmt.Fprintf(env.Out, "Successfully imported %d todo(s) from %s\n", added, filename)
	return added, nil
}
