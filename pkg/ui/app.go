// Package ui is the terminal front end: one bubbletea model that routes
// between the dashboard, todo, schedule, history, login and signup views.
package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"dayplan/pkg/api"
	"dayplan/pkg/config"
	"dayplan/pkg/datenorm"
	"dayplan/pkg/keymaps"
	"dayplan/pkg/session"
	"dayplan/pkg/utils"
)

// Backend is the part of the API client the views call.
type Backend interface {
	ListTodos(ctx context.Context) ([]api.Todo, error)
	CreateTodo(ctx context.Context, t api.Todo) (api.Todo, error)
	UpdateTodo(ctx context.Context, id string, p api.TodoPatch) (api.Todo, error)
	SetTodoStatus(ctx context.Context, id string, completed bool) (api.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
	ListSchedules(ctx context.Context) ([]api.Schedule, error)
	CreateSchedule(ctx context.Context, s api.Schedule) (api.Schedule, error)
	UpdateSchedule(ctx context.Context, id string, p api.SchedulePatch) (api.Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error
	Signup(ctx context.Context, req api.SignupRequest) (api.User, error)
}

// Sessions is the session store as the views see it.
type Sessions interface {
	Current() (session.Session, bool)
	Login(ctx context.Context, creds api.Credentials) session.Result
	Logout()
	Restore(ctx context.Context) error
	Subscribe(fn func(session.Event)) (unsubscribe func())
}

// InputMode represents the current input mode of a view
type InputMode int

const (
	NormalMode InputMode = iota
	AddMode
	EditMode
	DeleteConfirmMode
	CalendarMode
)

// Options configure NewApp.
type Options struct {
	Context    context.Context
	Backend    Backend
	Sessions   Sessions
	Normalizer datenorm.Normalizer
	Config     config.Config
	Styles     config.Styles
	// Start is the route requested at launch.
	Start Route
	Now   func() time.Time
}

// App is the root model.
type App struct {
	ctx      context.Context
	backend  Backend
	sessions Sessions
	norm     datenorm.Normalizer
	now      func() time.Time
	styles   config.Styles
	keyMap   keymaps.KeyMap

	events      chan session.Event
	unsubscribe func()
	initCmd     tea.Cmd

	route     Route
	redirect  Route
	restoring bool
	showHelp  bool
	width     int
	height    int
	err       string
	notice    string

	// seqs holds the latest fetch sequence per route; responses carrying
	// an older number are stale.
	seqs    [routeCount]uint64
	loading [routeCount]bool

	todos     []api.Todo
	schedules []api.Schedule

	home     dayView
	todo     todoView
	schedule scheduleView
	history  historyView
	login    authForm
	signup   authForm
}

// NewApp builds the root model. The session is restored asynchronously by
// Init; until then only public views are reachable.
func NewApp(opts Options) *App {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	a := &App{
		ctx:      opts.Context,
		backend:  opts.Backend,
		sessions: opts.Sessions,
		norm:     opts.Normalizer,
		now:      opts.Now,
		styles:   opts.Styles,
		keyMap:   keymaps.BuildKeyMap(opts.Config.KeyMap),
		events:   make(chan session.Event, 8),
		route:    RouteLogin,
		redirect: RouteHome,
		login:    newLoginForm(),
		signup:   newSignupForm(),
	}

	today := a.today()
	a.home = newDayView(opts.Styles, today)
	a.todo = newTodoView(opts.Styles)
	a.schedule = newScheduleView(opts.Styles, today)
	a.history = newHistoryView(opts.Styles)

	// Events only prompt a re-check of Current, so a full buffer loses
	// nothing.
	a.unsubscribe = a.sessions.Subscribe(func(e session.Event) {
		select {
		case a.events <- e:
		default:
		}
	})

	a.initCmd = tea.Batch(a.navigate(opts.Start), a.restoreCmd())
	return a
}

type sessionMsg session.Event

type restoredMsg struct{ err error }

type loadedMsg struct {
	route        Route
	seq          uint64
	todos        []api.Todo
	schedules    []api.Schedule
	hasTodos     bool
	hasSchedules bool
	err          error
}

type mutatedMsg struct {
	route  Route
	notice string
	err    error
}

func waitForSession(events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		return sessionMsg(<-events)
	}
}

// Init starts the session restore and the session event pump.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.initCmd, waitForSession(a.events))
}

// Route returns the view currently shown.
func (a App) Route() Route {
	return a.route
}

func (a App) today() datenorm.CalendarDay {
	return a.norm.Today(a.now())
}

func (a *App) restoreCmd() tea.Cmd {
	a.restoring = true
	ctx, sessions := a.ctx, a.sessions
	return func() tea.Msg {
		return restoredMsg{err: sessions.Restore(ctx)}
	}
}

// navigate applies the route guard and starts loading the target view.
func (a *App) navigate(r Route) tea.Cmd {
	_, authed := a.sessions.Current()
	target := Guard(r, authed)
	if target != r {
		a.redirect = r
	}
	if target != a.route {
		// In-flight fetches of the view being left must not land.
		a.seqs[a.route]++
		a.loading[a.route] = false
		a.route = target
		a.err = ""
	}
	return a.fetch(target)
}

// fetch reloads the data a protected view shows.
func (a *App) fetch(r Route) tea.Cmd {
	if !r.Protected() {
		return nil
	}
	a.seqs[r]++
	a.loading[r] = true

	seq, ctx, backend := a.seqs[r], a.ctx, a.backend
	wantTodos := r != RouteSchedule
	wantSchedules := r == RouteHome || r == RouteSchedule
	return func() tea.Msg {
		msg := loadedMsg{route: r, seq: seq}
		if wantTodos {
			msg.todos, msg.err = backend.ListTodos(ctx)
			if msg.err != nil {
				return msg
			}
			msg.hasTodos = true
		}
		if wantSchedules {
			msg.schedules, msg.err = backend.ListSchedules(ctx)
			msg.hasSchedules = msg.err == nil
		}
		return msg
	}
}

func (a *App) onLoaded(msg loadedMsg) tea.Cmd {
	if msg.seq != a.seqs[msg.route] {
		utils.Log("discarding stale response", "route", msg.route.String(), "seq", msg.seq, "latest", a.seqs[msg.route])
		return nil
	}
	a.loading[msg.route] = false
	if msg.hasTodos {
		a.todos = msg.todos
	}
	if msg.hasSchedules {
		a.schedules = msg.schedules
	}
	a.refreshRows()
	if msg.err != nil {
		return a.fail(msg.err)
	}
	return nil
}

// mutate runs fn against the backend; the current view is re-fetched once
// it completes.
func (a *App) mutate(notice string, fn func(ctx context.Context, b Backend) error) tea.Cmd {
	r, ctx, backend := a.route, a.ctx, a.backend
	a.err, a.notice = "", ""
	return func() tea.Msg {
		return mutatedMsg{route: r, notice: notice, err: fn(ctx, backend)}
	}
}

func (a *App) onMutated(msg mutatedMsg) tea.Cmd {
	if msg.err != nil {
		if cmd := a.fail(msg.err); cmd != nil {
			return cmd
		}
	} else {
		a.notice = msg.notice
	}
	return a.fetch(a.route)
}

// fail reports err on the current view. Authentication failures instead
// re-validate the session, which logs out on an invalid token.
func (a *App) fail(err error) tea.Cmd {
	utils.LogError("request failed", err, "route", a.route.String())
	if errors.Is(err, api.ErrAuth) {
		a.notice = "session expired, please log in again"
		return a.restoreCmd()
	}
	a.err = api.Message(err)
	return nil
}

func (a *App) onSession(e session.Event) tea.Cmd {
	utils.Log("session changed", "event", e.Kind.String(), "route", a.route.String())
	if _, authed := a.sessions.Current(); !authed {
		a.clearData()
		return a.navigate(a.route)
	}
	if !a.route.Protected() {
		target := a.redirect
		a.redirect = RouteHome
		a.login.reset()
		a.signup.reset()
		return a.navigate(target)
	}
	return nil
}

func (a *App) logout() tea.Cmd {
	a.sessions.Logout()
	a.clearData()
	cmd := a.navigate(a.route)
	a.redirect = RouteHome
	a.notice = "logged out"
	return cmd
}

// clearData drops everything fetched for the previous user.
func (a *App) clearData() {
	for r := range a.seqs {
		a.seqs[r]++
		a.loading[r] = false
	}
	a.todos, a.schedules = nil, nil
	a.todo.mode, a.schedule.mode, a.history.mode = NormalMode, NormalMode, NormalMode
	a.refreshRows()
}

func (a *App) quit() tea.Cmd {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	return tea.Quit
}

// refreshRows rebuilds every view's rows from the fetched data.
func (a *App) refreshRows() {
	a.buildHomeRows()
	a.buildTodoRows()
	a.buildScheduleRows()
	a.buildHistoryRows()
}

// modal reports whether the current view owns the keyboard.
func (a App) modal() bool {
	switch a.route {
	case RouteLogin, RouteSignup:
		return true
	case RouteTodo:
		return a.todo.mode != NormalMode
	case RouteSchedule:
		return a.schedule.mode != NormalMode && a.schedule.mode != CalendarMode
	case RouteHistory:
		return a.history.mode != NormalMode
	}
	return false
}

func (a *App) resize(width, height int) {
	a.width, a.height = width, height
	a.home.pane.resize(width, height)
	a.todo.pane.resize(width, height)
	a.schedule.pane.resize(width, height)
	a.history.pane.resize(width, height)
}

func (a App) selectedTodo(p listPane) (api.Todo, bool) {
	ref, ok := p.selected()
	if !ok || ref.kind != refTodo || ref.index >= len(a.todos) {
		return api.Todo{}, false
	}
	return a.todos[ref.index], true
}

func (a App) selectedSchedule(p listPane) (api.Schedule, bool) {
	ref, ok := p.selected()
	if !ok || ref.kind != refSchedule || ref.index >= len(a.schedules) {
		return api.Schedule{}, false
	}
	return a.schedules[ref.index], true
}

func (a *App) toggleTodo(t api.Todo) tea.Cmd {
	id, done := t.ID, !t.Completed()
	notice := "marked done: " + t.Title
	if !done {
		notice = "marked not done: " + t.Title
	}
	return a.mutate(notice, func(ctx context.Context, b Backend) error {
		_, err := b.SetTodoStatus(ctx, id, done)
		return err
	})
}
