package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"dayplan/pkg/api"
)

var routeTitles = [routeCount]string{"Dashboard", "Todos", "Schedule", "History", "Log in", "Sign up"}

// View renders the current route
func (a App) View() string {
	var sb strings.Builder

	if a.showHelp {
		sb.WriteString(a.helpView())
		sb.WriteString("\n")
		sb.WriteString(a.helpBar())
		return sb.String()
	}

	sb.WriteString(a.titleBar())
	sb.WriteString("\n\n")

	switch a.route {
	case RouteLogin:
		sb.WriteString(a.authView(a.login, "Log in to continue"))
	case RouteSignup:
		sb.WriteString(a.authView(a.signup, "Create an account"))
	case RouteTodo:
		sb.WriteString(a.todoView())
	case RouteSchedule:
		sb.WriteString(a.scheduleView())
	case RouteHistory:
		sb.WriteString(a.listView(a.history.pane, "No completed or overdue todos."))
		sb.WriteString(a.confirmView(a.history.mode, a.history.target.Title))
	default:
		sb.WriteString(a.statusLine(fmt.Sprintf("Showing %s", a.home.day)))
		sb.WriteString("\n")
		sb.WriteString(a.listView(a.home.pane, ""))
	}

	if a.loading[a.route] {
		sb.WriteString("\n")
		sb.WriteString(a.statusLine("loading..."))
	}
	if a.notice != "" {
		sb.WriteString("\n")
		sb.WriteString(a.statusLine(a.notice))
	}
	if a.err != "" {
		sb.WriteString("\n")
		sb.WriteString(a.errorLine("Error: " + a.err))
	}

	sb.WriteString("\n")
	sb.WriteString(a.helpBar())
	return sb.String()
}

func (a App) titleBar() string {
	title := fmt.Sprintf(" dayplan - %s ", routeTitles[a.route])
	bar := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(a.styles.SelectedTextColor)).
		Background(lipgloss.Color(a.styles.AccentColor)).
		Padding(0, 1).
		Render(title)
	if s, ok := a.sessions.Current(); ok {
		who := s.User.Name
		if who == "" {
			who = s.User.Email
		}
		bar += " " + a.statusLine(who)
	}
	return bar
}

func (a App) headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(a.styles.AccentColor))
}

func (a App) statusLine(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(a.styles.NormalTextColor)).Render(s)
}

func (a App) errorLine(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(a.styles.ErrorColor)).Render(s)
}

func (a App) listView(p listPane, empty string) string {
	if v := p.view(); v != "" {
		return v
	}
	if a.loading[a.route] || empty == "" {
		return ""
	}
	return a.statusLine(empty)
}

// todoLine renders a todo row with its status box and highlighted category.
func (a App) todoLine(t api.Todo, overdue bool) string {
	status := "[ ]"
	text := t.Title
	if t.Category != "" {
		text += " " + lipgloss.NewStyle().Foreground(lipgloss.Color(a.styles.CategoryColor)).Render("+"+t.Category)
	}
	switch {
	case t.Completed():
		status = "[x]"
		text = lipgloss.NewStyle().Foreground(lipgloss.Color(a.styles.DoneColor)).Render(text)
	case overdue:
		status = "[!]"
		text += " " + lipgloss.NewStyle().Foreground(lipgloss.Color(a.styles.OverdueColor)).Render("(overdue)")
	}
	if day := a.norm.InstantToLocalDay(t.DueDate); day.IsKnown() && a.route == RouteTodo {
		text += " " + a.statusLine(day.String())
	}
	return fmt.Sprintf("%s %s", status, text)
}

func (a App) scheduleLine(s api.Schedule) string {
	return fmt.Sprintf("%s-%s  %s", a.norm.LocalClock(s.StartTime), a.norm.LocalClock(s.EndTime), s.Title)
}

func (a App) todoView() string {
	v := a.todo
	switch v.mode {
	case AddMode, EditMode:
		title := " Add New Todo "
		if v.mode == EditMode {
			title = " Edit Todo "
		}
		return a.formView(title, v.form)
	}

	var sb strings.Builder
	sb.WriteString(a.listView(v.pane, "No todos yet. Press "+a.keyMap.AddEntry.Help().Key+" to add one."))
	sb.WriteString("\n")
	sb.WriteString(a.statusLine(fmt.Sprintf("Showing %d todos | %s", len(a.todos), v.status())))
	sb.WriteString(a.confirmView(v.mode, v.target.Title))
	return sb.String()
}

func (a App) scheduleView() string {
	v := a.schedule
	switch v.mode {
	case AddMode, EditMode:
		title := fmt.Sprintf(" Add Schedule on %s ", v.day)
		if v.mode == EditMode {
			title = fmt.Sprintf(" Edit Schedule on %s ", v.day)
		}
		return a.formView(title, v.form)
	case CalendarMode:
		return a.renderCalendar()
	}

	var sb strings.Builder
	sb.WriteString(a.statusLine(fmt.Sprintf("Schedules on %s", v.day)))
	sb.WriteString("\n")
	sb.WriteString(a.listView(v.pane, "Nothing scheduled."))
	sb.WriteString(a.confirmView(v.mode, v.target.Title))
	return sb.String()
}

func (a App) formView(title string, f form) string {
	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(a.styles.SelectedTextColor)).
		Background(lipgloss.Color(a.styles.AccentColor)).
		Padding(0, 1).
		Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(f.view())
	if f.err != "" {
		sb.WriteString("\n\n")
		sb.WriteString(a.errorLine(f.err))
	}
	return sb.String()
}

func (a App) confirmView(mode InputMode, title string) string {
	if mode != DeleteConfirmMode {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(a.styles.SelectedTextColor)).
		Background(lipgloss.Color(a.styles.ErrorColor)).
		Padding(0, 1).
		Render(" Delete "))
	sb.WriteString(fmt.Sprintf("\n\nAre you sure you want to delete %q?\n\n", title))
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Press Y to confirm, N to cancel"))
	return sb.String()
}

func (a App) authView(f authForm, heading string) string {
	var sb strings.Builder
	sb.WriteString(a.formView(" "+heading+" ", f.form))
	switch {
	case f.submitting:
		sb.WriteString("\n\n")
		sb.WriteString(a.statusLine("please wait..."))
	case a.restoring && a.route == RouteLogin:
		sb.WriteString("\n\n")
		sb.WriteString(a.statusLine("checking saved session..."))
	}
	return sb.String()
}

// helpView lists every binding
func (a App) helpView() string {
	var sb strings.Builder

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(a.styles.AccentColor)).
		Bold(true)
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(a.styles.NormalTextColor))

	section := func(title string, bindings ...key.Binding) {
		sb.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
		sb.WriteString("\n\n")
		for _, b := range bindings {
			sb.WriteString(fmt.Sprintf("%s: %s\n", descStyle.Render(b.Help().Desc), keyStyle.Render(b.Help().Key)))
		}
		sb.WriteString("\n")
	}

	km := a.keyMap
	section("Available Commands", km.QuitApp, km.ShowHelp, km.Refresh, km.Logout,
		km.ToggleStatus, km.AddEntry, km.EditEntry, km.DeleteEntry,
		km.ToggleSortBy, km.ToggleGroupBy, km.ToggleSortOrder)
	section("Navigation Commands", km.GoHome, km.GoTodo, km.GoSchedule, km.GoHistory, km.GoSignup,
		km.PrevDay, km.NextDay, km.JumpToToday)
	section("Calendar Commands", km.ToggleCalendarView, km.CalendarLeft, km.CalendarRight,
		km.CalendarUp, km.CalendarDown, km.CalendarSelect)
	return sb.String()
}

// helpBar renders a status bar with the actions available right now
func (a App) helpBar() string {
	var actions []string

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(a.styles.AccentColor)).
		Bold(true)
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(a.styles.NormalTextColor))
	separator := lipgloss.NewStyle().
		Foreground(lipgloss.Color(a.styles.BorderColor)).
		Render(" • ")

	addAction := func(k, desc string) {
		actions = append(actions, fmt.Sprintf("%s %s", keyStyle.Render(k), descStyle.Render(desc)))
	}
	addBinding := func(b key.Binding, desc string) {
		addAction(b.Help().Key, desc)
	}
	km := a.keyMap

	switch {
	case a.showHelp:
		addBinding(km.ShowHelp, "back")
		addBinding(km.QuitApp, "quit")
		return strings.Join(actions, separator)

	case a.route == RouteLogin:
		addAction("tab", "next field")
		addAction("enter", "log in")
		addBinding(km.GoSignup, "sign up")
		addAction("ctrl+c", "quit")
		return strings.Join(actions, separator)

	case a.route == RouteSignup:
		addAction("tab", "next field")
		addAction("enter", "create account")
		addAction("esc", "back to login")
		return strings.Join(actions, separator)

	case a.activeForm() != nil:
		addAction("tab", "next field")
		addAction("enter", "save")
		addAction("esc", "cancel")
		return strings.Join(actions, separator)

	case a.modal():
		addAction("y", "confirm")
		addAction("n", "cancel")
		return strings.Join(actions, separator)
	}

	switch a.route {
	case RouteHome:
		addBinding(km.ToggleStatus, "done")
		addAction("[ ]", "day")
		addBinding(km.JumpToToday, "today")
	case RouteTodo:
		addBinding(km.AddEntry, "add")
		addBinding(km.EditEntry, "edit")
		addBinding(km.DeleteEntry, "del")
		addBinding(km.ToggleStatus, "toggle")
		addAction("s/g/o", "sort/grp/ord")
	case RouteSchedule:
		if a.schedule.mode == CalendarMode {
			addAction("←↑↓→", "nav")
			addBinding(km.CalendarSelect, "select")
			addAction("esc", "exit cal")
			return strings.Join(actions, separator)
		}
		addBinding(km.AddEntry, "add")
		addBinding(km.EditEntry, "edit")
		addBinding(km.DeleteEntry, "del")
		addAction("[ ]", "day")
		addBinding(km.ToggleCalendarView, "cal")
	case RouteHistory:
		addBinding(km.ToggleStatus, "toggle")
		addBinding(km.DeleteEntry, "del")
	}
	addAction("1-4", "views")
	addBinding(km.Refresh, "reload")
	addBinding(km.Logout, "logout")
	addBinding(km.ShowHelp, "help")
	addBinding(km.QuitApp, "quit")

	return strings.Join(actions, separator)
}
