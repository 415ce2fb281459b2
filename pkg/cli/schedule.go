package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"dayplan/pkg/commands"
)

func newScheduleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage schedules",
	}

	cmd.AddCommand(newScheduleListCmd(app))
	cmd.AddCommand(newScheduleAddCmd(app))
	cmd.AddCommand(newScheduleDeleteCmd(app))
	cmd.AddCommand(newScheduleExportCmd(app))

	return cmd
}

func newScheduleListCmd(app *App) *cobra.Command {
	var date string
	var days int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the schedules of a day or a run of days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEnv(cmd, func(ctx context.Context, env *commands.Env) error {
				return commands.ListSchedules(ctx, env, date, days)
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&days, "days", 1, "Number of days to list, starting at --date")
	return cmd
}

func newScheduleAddCmd(app *App) *cobra.Command {
	var date string
	var start string
	var end string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a schedule",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			return app.withEnv(cmd, func(ctx context.Context, env *commands.Env) error {
				_, err := commands.AddSchedule(ctx, env, title, date, start, end)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "End time (HH:MM)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newScheduleDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <schedule-id>",
		Short: "Delete a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEnv(cmd, func(ctx context.Context, env *commands.Env) error {
				return commands.DeleteSchedule(ctx, env, args[0])
			})
		},
	}
}

func newScheduleExportCmd(app *App) *cobra.Command {
	var file string
	var date string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export schedules as iCalendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEnv(cmd, func(ctx context.Context, env *commands.Env) error {
				return commands.ExportSchedules(ctx, env, file, date)
			})
		},
	}

	cmd.Flags().StringVar(&file, "ics", "-", "Output .ics file (- for stdout)")
	cmd.Flags().StringVar(&date, "date", "", "Only this day (YYYY-MM-DD)")
	return cmd
}
