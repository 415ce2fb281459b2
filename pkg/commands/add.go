package commands

import (
	"context"
	"fmt"

	"dayplan/pkg/api"
	"dayplan/pkg/datenorm"
	"dayplan/pkg/utils"
)

// AddTodo creates a todo from text, which may carry a +category tag. An
// empty date means today; the due instant is local midnight of that day.
func AddTodo(ctx context.Context, env *Env, text, dateStr, description string) (api.Todo, error) {
	if _, err := env.RequireSession(ctx); err != nil {
		return api.Todo{}, err
	}

	day := env.today()
	if dateStr != "" {
		var err error
		if day, err = datenorm.ParseDay(dateStr); err != nil {
			return api.Todo{}, err
		}
	}
	due, err := env.Norm.LocalDayAndTimeToInstant(day, 0, 0)
	if err != nil {
		return api.Todo{}, err
	}

	title, category := utils.SplitCategory(text)
	todo := api.Todo{
		Title:       title,
		Description: description,
		DueDate:     due,
		Status:      api.StatusNotDone,
		Category:    category,
	}
	created, err := env.Client.CreateTodo(ctx, todo)
	if err != nil {
		return api.Todo{}, fmt.Errorf("adding todo: %w", err)
	}
	utils.Log("todo added", "id", created.ID, "day", day.String())
	fmt.Fprintf(env.Out, "Todo added: %s (due %s)\n", created.Title, day)
	return created, nil
}
