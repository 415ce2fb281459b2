package commands

import (
	"context"
	"fmt"

	"dayplan/pkg/utils"
)

// PurgeTodos deletes every todo matching filter, asking first unless
// skipConfirm is set. A failed delete stops the purge.
func PurgeTodos(ctx context.Context, env *Env, filter TodoFilter, skipConfirm bool) (int, error) {
	if _, err := env.RequireSession(ctx); err != nil {
		return 0, err
	}
	todos, err := env.Client.ListTodos(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading todos: %w", err)
	}
	todos, err = filter.apply(env.Norm, todos)
	if err != nil {
		return 0, err
	}
	if len(todos) == 0 {
		fmt.Fprintln(env.Out, "Nothing to delete.")
		return 0, nil
	}

	if !skipConfirm {
		ok, err := env.confirm(fmt.Sprintf("Are you sure you want to delete %d todo(s)?", len(todos)))
		if err != nil {
			return 0, err
		}
		if !ok {
			fmt.Fprintln(env.Out, "Operation cancelled.")
			return 0, nil
		}
	}

	deleted := 0
	for _, t := range todos {
		if err := env.Client.DeleteTodo(ctx, t.ID); err != nil {
			fmt.Fprintf(env.Out, "Deleted %d todo(s) before failing\n", deleted)
			return deleted, fmt.Errorf("deleting %q: %w", t.Title, err)
		}
		utils.Log("purged todo", "id", t.ID)
		deleted++
	}
	fmt.Fprintf(env.Out, "Successfully deleted %d todo(s)\n", deleted)
	return deleted, nil
}
