package ui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"dayplan/pkg/session"
	"dayplan/pkg/utils"
)

// Update handles messages and updates the model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)

	case sessionMsg:
		cmd = tea.Batch(a.onSession(session.Event(msg)), waitForSession(a.events))

	case restoredMsg:
		a.restoring = false
		if msg.err != nil && !errors.Is(msg.err, session.ErrSuperseded) {
			utils.LogError("restore failed", msg.err)
		}

	case loginDoneMsg:
		cmd = a.onLoginDone(msg)

	case signupDoneMsg:
		cmd = a.onSignupDone(msg)

	case loadedMsg:
		cmd = a.onLoaded(msg)

	case mutatedMsg:
		cmd = a.onMutated(msg)

	case tea.KeyMsg:
		cmd = a.handleKey(msg)

	default:
		// Cursor blink and other input plumbing go to the focused form.
		if f := a.activeForm(); f != nil {
			cmd = f.update(msg)
		}
	}

	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return a.quit()
	}

	if a.showHelp {
		switch {
		case key.Matches(msg, a.keyMap.QuitApp):
			return a.quit()
		case key.Matches(msg, a.keyMap.ShowHelp), msg.String() == "esc":
			a.showHelp = false
		}
		return nil
	}

	if !a.modal() {
		switch {
		case key.Matches(msg, a.keyMap.QuitApp):
			return a.quit()
		case key.Matches(msg, a.keyMap.ShowHelp):
			a.showHelp = true
			return nil
		case key.Matches(msg, a.keyMap.GoHome):
			return a.navigate(RouteHome)
		case key.Matches(msg, a.keyMap.GoTodo):
			return a.navigate(RouteTodo)
		case key.Matches(msg, a.keyMap.GoSchedule):
			return a.navigate(RouteSchedule)
		case key.Matches(msg, a.keyMap.GoHistory):
			return a.navigate(RouteHistory)
		case key.Matches(msg, a.keyMap.Logout):
			return a.logout()
		case key.Matches(msg, a.keyMap.Refresh):
			return a.fetch(a.route)
		}
	}

	switch a.route {
	case RouteLogin:
		return a.updateLogin(msg)
	case RouteSignup:
		return a.updateSignup(msg)
	case RouteTodo:
		return a.updateTodo(msg)
	case RouteSchedule:
		return a.updateSchedule(msg)
	case RouteHistory:
		return a.updateHistory(msg)
	default:
		return a.updateHome(msg)
	}
}

// activeForm returns the form receiving keystrokes, if any.
func (a *App) activeForm() *form {
	switch a.route {
	case RouteLogin:
		return &a.login.form
	case RouteSignup:
		return &a.signup.form
	case RouteTodo:
		if a.todo.mode == AddMode || a.todo.mode == EditMode {
			return &a.todo.form
		}
	case RouteSchedule:
		if a.schedule.mode == AddMode || a.schedule.mode == EditMode {
			return &a.schedule.form
		}
	}
	return nil
}
