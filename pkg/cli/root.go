// Package cli wires configuration, storage, the session store and the
// backend client into the dayplan command tree.
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"dayplan/pkg/api"
	"dayplan/pkg/commands"
	"dayplan/pkg/config"
	"dayplan/pkg/database"
	"dayplan/pkg/datenorm"
	"dayplan/pkg/session"
	"dayplan/pkg/ui"
	"dayplan/pkg/utils"
)

// App holds the persistent flags.
type App struct {
	ConfigPath string
	Verbose    bool
	BaseURL    string

	now func() time.Time
}

// runtime is everything one command invocation needs.
type runtime struct {
	cfg    config.Config
	styles config.Styles
	norm   datenorm.Normalizer
	kv     *database.KV
	store  *session.Store
	client *api.Client
}

// NewRootCmd builds the dayplan command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{now: time.Now})
}

func newRootCmd(app *App) *cobra.Command {
	var view string

	cmd := &cobra.Command{
		Use:          "dayplan",
		Short:        "Todos, schedules and history in the terminal",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  dayplan

  # Open the TUI on the schedule view
  dayplan --view /schedule

  # Scriptable commands
  dayplan login --email you@example.com
  dayplan todo add "buy milk +home" --date 2025-01-20
  dayplan schedule export --ics week.ics
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, ok := ui.ParseRoute(view)
			if !ok {
				return fmt.Errorf("unknown view %q", view)
			}
			return app.runTUI(cmd.Context(), start)
		},
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Path to configuration file")
	cmd.PersistentFlags().BoolVar(&app.Verbose, "verbose", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&app.BaseURL, "base-url", "", "Backend URL (overrides base_url from config)")
	cmd.Flags().StringVar(&view, "view", "/", "View to open (/, /todo, /schedule, /history, /login, /signup)")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newSignupCmd(app))
	cmd.AddCommand(newTodoCmd(app))
	cmd.AddCommand(newScheduleCmd(app))
	cmd.AddCommand(newHistoryCmd(app))

	return cmd
}

// open loads configuration and builds the storage, session and client.
func (app *App) open() (*runtime, error) {
	cfg, styles, err := config.Load(app.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if app.BaseURL != "" {
		cfg.BaseURL = app.BaseURL
	}
	norm, err := cfg.Normalizer()
	if err != nil {
		return nil, err
	}

	utils.InitLogger(app.Verbose, cfg.LogFile)

	kv, err := database.Open(cfg.Database)
	if err != nil {
		utils.CloseLogger()
		return nil, err
	}

	opts := []api.Option{
		api.WithTokenStrategy(cfg.Strategy()),
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(utils.Logger()),
	}
	// Login and Me carry their own credentials, so the store's
	// authenticator needs no token source.
	store := session.New(api.New(cfg.BaseURL, opts...), kv, session.WithClock(app.clock()))
	client := api.New(cfg.BaseURL, append(opts, api.WithTokenSource(store))...)

	utils.Log("runtime ready", "base_url", client.BaseURL(), "database", cfg.Database, "offset", datenorm.FormatOffset(norm.Offset()))
	return &runtime{cfg: cfg, styles: styles, norm: norm, kv: kv, store: store, client: client}, nil
}

func (rt *runtime) close() {
	if err := rt.kv.Close(); err != nil {
		utils.LogError("closing database", err)
	}
	utils.CloseLogger()
}

func (app *App) clock() func() time.Time {
	if app.now == nil {
		return time.Now
	}
	return app.now
}

// withEnv runs fn with a command environment and releases it afterwards.
func (app *App) withEnv(cmd *cobra.Command, fn func(ctx context.Context, env *commands.Env) error) error {
	rt, err := app.open()
	if err != nil {
		return err
	}
	defer rt.close()

	env := &commands.Env{
		Client:   rt.client,
		Sessions: rt.store,
		Norm:     rt.norm,
		Now:      app.clock(),
		In:       cmd.InOrStdin(),
		Out:      cmd.OutOrStdout(),
	}
	return fn(cmd.Context(), env)
}

func (app *App) runTUI(ctx context.Context, start ui.Route) error {
	rt, err := app.open()
	if err != nil {
		return err
	}
	defer rt.close()

	model := ui.NewApp(ui.Options{
		Context:    ctx,
		Backend:    rt.client,
		Sessions:   rt.store,
		Normalizer: rt.norm,
		Config:     rt.cfg,
		Styles:     rt.styles,
		Start:      start,
		Now:        app.clock(),
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
