package commands

import (
	"context"
	"fmt"
	"io"

	"dayplan/pkg/agenda"
	"dayplan/pkg/api"
	"dayplan/pkg/datenorm"
)

// TodoFilter narrows the todo listing.
type TodoFilter struct {
	Day      string
	Category string
	Done     bool
	Undone   bool
}

func (f TodoFilter) match(n datenorm.Normalizer, t api.Todo) (bool, error) {
	if f.Day != "" {
		day, err := datenorm.ParseDay(f.Day)
		if err != nil {
			return false, err
		}
		if !datenorm.DayEquals(n.InstantToLocalDay(t.DueDate), day) {
			return false, nil
		}
	}
	if f.Category != "" && t.Category != f.Category {
		return false, nil
	}
	if f.Done && !t.Completed() {
		return false, nil
	}
	if f.Undone && t.Completed() {
		return false, nil
	}
	return true, nil
}

func (f TodoFilter) apply(n datenorm.Normalizer, todos []api.Todo) ([]api.Todo, error) {
	var out []api.Todo
	for _, t := range todos {
		ok, err := f.match(n, t)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// ListTodos prints the todos that pass filter.
func ListTodos(ctx context.Context, env *Env, filter TodoFilter) error {
	if _, err := env.RequireSession(ctx); err != nil {
		return err
	}
	todos, err := env.Client.ListTodos(ctx)
	if err != nil {
		return fmt.Errorf("loading todos: %w", err)
	}
	todos, err = filter.apply(env.Norm, todos)
	if err != nil {
		return err
	}
	if len(todos) == 0 {
		fmt.Fprintln(env.Out, "No todos.")
		return nil
	}
	today := env.today()
	for _, t := range todos {
		writeTodoLine(env.Out, env.Norm, t, agenda.Overdue(env.Norm, t, today))
	}
	return nil
}

func writeTodoLine(w io.Writer, n datenorm.Normalizer, t api.Todo, overdue bool) {
	status := " "
	switch {
	case t.Completed():
		status = "x"
	case overdue:
		status = "!"
	}
	due := "----------"
	if day := n.InstantToLocalDay(t.DueDate); day.IsKnown() {
		due = day.String()
	}
	fmt.Fprintf(w, "%s  [%s] %s  %s\n", t.ID, status, due, todoText(t))
}

func todoText(t api.Todo) string {
	if t.Category == "" {
		return t.Title
	}
	return t.Title + " +" + t.Category
}

// SetTodoDone marks the todo with id completed or not done.
func SetTodoDone(ctx context.Context, env *Env, id string, done bool) error {
	if _, err := env.RequireSession(ctx); err != nil {
		return err
	}
	if _, err := env.Client.SetTodoStatus(ctx, id, done); err != nil {
		return fmt.Errorf("updating todo %s: %w", id, notFound("todo", id, err))
	}
	if done {
		fmt.Fprintf(env.Out, "Marked %s done\n", id)
	} else {
		fmt.Fprintf(env.Out, "Marked %s not done\n", id)
	}
	return nil
}

// DeleteTodo removes the todo with id.
func DeleteTodo(ctx context.Context, env *Env, id string) error {
	if _, err := env.RequireSession(ctx); err != nil {
		return err
	}
	if err := env.Client.DeleteTodo(ctx, id); err != nil {
		return fmt.Errorf("deleting todo %s: %w", id, notFound("todo", id, err))
	}
	fmt.Fprintf(env.Out, "Deleted %s\n", id)
	return nil
}
