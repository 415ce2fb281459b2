package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"dayplan/pkg/commands"
)

func newTodoCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Manage todos",
	}

	cmd.AddCommand(newTodoListCmd(app))
	cmd.AddCommand(newTodoAddCmd(app))
	cmd.AddCommand(newTodoStatusCmd(app, "done", "Mark a todo completed", true))
	cmd.AddCommand(newTodoStatusCmd(app, "undo", "Mark a todo not done", false))
	cmd.AddCommand(newTodoDeleteCmd(app))
	cmd.AddCommand(newTodoImportCmd(app))
	cmd.AddCommand(newTodoPurgeCmd(app))

	return cmd
}

func addFilterFlags(cmd *cobra.Command, f *commands.TodoFilter) {
	cmd.Flags().StringVar(&f.Day, "date", "", "Only todos due on this day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.Category, "category", "", "Only todos with this category")
	cmd.Flags().BoolVar(&f.Done, "done", false, "Only completed todos")
	cmd.Flags().BoolVar(&f.Undone, "undone", false, "Only todos not done")
	cmd.MarkFlagsMutuallyExclusive("done", "undone")
}

func newTodoListCmd(app *App) *cobra.Command {
	var filter commands.TodoFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEnv(cmd, func(ctx context.Context, env *commands.Env) error {
				return commands.ListTodos(ctx, env, filter)
			})
		},
	}

	addFilterFlags(cmd, &filter)
	return cmd
}

func newTodoAddCmd(app *App) *cobra.Command {
	var date string
	var description string

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a todo; a +word in the text sets its category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return errors.New("todo text is empty")
			}
			return app.withEnv(cmd, func(ctx context.Context, env *commands.Env) error {
				_, err := commands.AddTodo(ctx, env, text, date, description)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Due day (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	return cmd
}

func newTodoStatusCmd(app *App, use, short string, done bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <todo-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEnv(cmd, func(ctx context.Context, env *commands.Env) error {
				return commands.SetTodoDone(ctx, env, args[0], done)
			})
		},
	}
}

func newTodoDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <todo-id>",
		Short: "Delete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEnv(cmd, func(ctx context.Context, env *commands.Env) error {
				return commands.DeleteTodo(ctx, env, args[0])
			})
		},
	}
}

func newTodoImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Create todos from a plain-text list",
		Long: strings.TrimSpace(`
Create todos from a plain-text list. Date lines (DD.MM.YYYY: or YYYY-MM-DD:)
set the due day of the entries that follow; entries look like
"- [ ] title +category" or "- [x] title" for completed ones.`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEnv(cmd, func(ctx context.Context, env *commands.Env) error {
				_, err := commands.ImportTodos(ctx, env, args[0])
				return err
			})
		},
	}
}

func newTodoPurgeCmd(app *App) *cobra.Command {
	var filter commands.TodoFilter
	var yes bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every todo matching the filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEnv(cmd, func(ctx context.Context, env *commands.Env) error {
				_, err := commands.PurgeTodos(ctx, env, filter, yes)
				return err
			})
		},
	}

	addFilterFlags(cmd, &filter)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}
