package cli

import (
	"context"

	"github.com/spf13/cobra"

	"dayplan/pkg/commands"
)

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Completed and overdue todos",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the history grouped by day, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEnv(cmd, commands.ListHistory)
		},
	})
	cmd.AddCommand(newHistoryExportCmd(app))

	return cmd
}

func newHistoryExportCmd(app *App) *cobra.Command {
	var exportType string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the history to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEnv(cmd, func(ctx context.Context, env *commands.Env) error {
				return commands.ExportHistory(ctx, env, args[0], exportType)
			})
		},
	}

	cmd.Flags().StringVar(&exportType, "type", "json", "Export file type (json, txt)")
	return cmd
}
