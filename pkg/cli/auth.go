package cli

import (
	"context"

	"github.com/spf13/cobra"

	"dayplan/pkg/commands"
)

func newLoginCmd(app *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEnv(cmd, func(ctx context.Context, env *commands.Env) error {
				return commands.Login(ctx, env, email)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted when empty)")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEnv(cmd, func(ctx context.Context, env *commands.Env) error {
				commands.Logout(env)
				return nil
			})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEnv(cmd, commands.Whoami)
		},
	}
}

func newSignupCmd(app *App) *cobra.Command {
	var name string
	var email string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an email account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withEnv(cmd, func(ctx context.Context, env *commands.Env) error {
				return commands.Signup(ctx, env, name, email)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (prompted when empty)")
	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted when empty)")
	return cmd
}
