package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"dayplan/pkg/agenda"
	"dayplan/pkg/config"
	"dayplan/pkg/datenorm"
)

// dayView is the dashboard: one selected day's schedules and open todos.
type dayView struct {
	pane listPane
	day  datenorm.CalendarDay
}

func newDayView(styles config.Styles, today datenorm.CalendarDay) dayView {
	return dayView{pane: newListPane(styles), day: today}
}

func (a *App) buildHomeRows() {
	sched := agenda.SchedulesOn(a.norm, a.schedules, a.home.day)
	ongoing := agenda.Ongoing(a.norm, a.todos, a.home.day)

	var b rowBuilder
	b.header(a.headerStyle(), fmt.Sprintf("Schedules (%d)", len(sched)))
	for _, i := range sched {
		b.add(a.scheduleLine(a.schedules[i]), rowRef{kind: refSchedule, index: i})
	}
	b.spacer()
	b.header(a.headerStyle(), fmt.Sprintf("Ongoing todos (%d)", len(ongoing)))
	for _, i := range ongoing {
		b.add(a.todoLine(a.todos[i], false), rowRef{kind: refTodo, index: i})
	}
	b.apply(&a.home.pane)
}

// setDay moves a day-based view and reloads it.
func (a *App) setDay(day *datenorm.CalendarDay, to datenorm.CalendarDay) tea.Cmd {
	if !to.IsKnown() {
		return nil
	}
	*day = to
	a.refreshRows()
	return a.fetch(a.route)
}

func (a *App) updateHome(msg tea.KeyMsg) tea.Cmd {
	v := &a.home
	switch {
	case key.Matches(msg, a.keyMap.PrevDay):
		return a.setDay(&v.day, v.day.AddDays(-1))
	case key.Matches(msg, a.keyMap.NextDay):
		return a.setDay(&v.day, v.day.AddDays(1))
	case key.Matches(msg, a.keyMap.JumpToToday):
		return a.setDay(&v.day, a.today())
	case key.Matches(msg, a.keyMap.ToggleStatus):
		if t, ok := a.selectedTodo(v.pane); ok {
			return a.toggleTodo(t)
		}
		return nil
	}
	return v.pane.update(msg)
}
