package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"dayplan/pkg/agenda"
	"dayplan/pkg/api"
	"dayplan/pkg/config"
	"dayplan/pkg/datenorm"
	"dayplan/pkg/utils"
)

const (
	scheduleTitleField = iota
	scheduleStartField
	scheduleEndField
)

type scheduleView struct {
	pane   listPane
	day    datenorm.CalendarDay
	mode   InputMode
	form   form
	target api.Schedule
	// cursor is the highlighted day in calendar mode.
	cursor datenorm.CalendarDay
}

func newScheduleView(styles config.Styles, today datenorm.CalendarDay) scheduleView {
	return scheduleView{
		pane: newListPane(styles),
		day:  today,
		form: newForm(
			formField{label: "Title", placeholder: "Title"},
			formField{label: "Start (HH:MM)", placeholder: "09:00"},
			formField{label: "End (HH:MM)", placeholder: "10:00"},
		),
	}
}

func (a *App) buildScheduleRows() {
	v := &a.schedule
	var b rowBuilder
	for _, i := range agenda.SchedulesOn(a.norm, a.schedules, v.day) {
		b.add(a.scheduleLine(a.schedules[i]), rowRef{kind: refSchedule, index: i})
	}
	b.apply(&v.pane)
}

func (a *App) updateSchedule(msg tea.KeyMsg) tea.Cmd {
	v := &a.schedule

	switch v.mode {
	case AddMode, EditMode:
		submit, cancel, cmd := v.form.handleKey(msg)
		switch {
		case cancel:
			v.mode = NormalMode
			v.form.reset()
		case submit:
			return a.submitSchedule()
		}
		return cmd

	case DeleteConfirmMode:
		switch msg.String() {
		case "y", "Y":
			id, title := v.target.ID, v.target.Title
			v.mode = NormalMode
			utils.Log("deleting schedule", "id", id)
			return a.mutate("deleted: "+title, func(ctx context.Context, b Backend) error {
				return b.DeleteSchedule(ctx, id)
			})
		case "n", "N", "esc":
			v.mode = NormalMode
		}
		return nil

	case CalendarMode:
		return a.updateCalendar(msg)
	}

	switch {
	case key.Matches(msg, a.keyMap.PrevDay):
		return a.setDay(&v.day, v.day.AddDays(-1))
	case key.Matches(msg, a.keyMap.NextDay):
		return a.setDay(&v.day, v.day.AddDays(1))
	case key.Matches(msg, a.keyMap.JumpToToday):
		return a.setDay(&v.day, a.today())

	case key.Matches(msg, a.keyMap.ToggleCalendarView):
		v.mode = CalendarMode
		v.cursor = v.day

	case key.Matches(msg, a.keyMap.AddEntry):
		v.mode = AddMode
		v.form.reset()
		v.form.set(scheduleStartField, "09:00")
		v.form.set(scheduleEndField, "10:00")

	case key.Matches(msg, a.keyMap.EditEntry):
		if s, ok := a.selectedSchedule(v.pane); ok {
			v.mode = EditMode
			v.target = s
			v.form.reset()
			v.form.set(scheduleTitleField, s.Title)
			v.form.set(scheduleStartField, a.norm.LocalClock(s.StartTime))
			v.form.set(scheduleEndField, a.norm.LocalClock(s.EndTime))
		}

	case key.Matches(msg, a.keyMap.DeleteEntry):
		if s, ok := a.selectedSchedule(v.pane); ok {
			v.mode = DeleteConfirmMode
			v.target = s
		}

	default:
		return v.pane.update(msg)
	}
	return nil
}

func (a *App) updateCalendar(msg tea.KeyMsg) tea.Cmd {
	v := &a.schedule
	switch {
	case key.Matches(msg, a.keyMap.CalendarLeft):
		v.cursor = v.cursor.AddDays(-1)
	case key.Matches(msg, a.keyMap.CalendarRight):
		v.cursor = v.cursor.AddDays(1)
	case key.Matches(msg, a.keyMap.CalendarUp):
		v.cursor = v.cursor.AddDays(-7)
	case key.Matches(msg, a.keyMap.CalendarDown):
		v.cursor = v.cursor.AddDays(7)
	case key.Matches(msg, a.keyMap.JumpToToday):
		v.cursor = a.today()
	case key.Matches(msg, a.keyMap.CalendarSelect):
		v.mode = NormalMode
		return a.setDay(&v.day, v.cursor)
	case key.Matches(msg, a.keyMap.ToggleCalendarView), msg.String() == "esc":
		v.mode = NormalMode
	}
	return nil
}

// submitSchedule converts the entered wall-clock times on the selected day
// to instants. Invalid input never reaches the backend.
func (a *App) submitSchedule() tea.Cmd {
	v := &a.schedule
	f := &v.form

	title := f.value(scheduleTitleField)
	if title == "" {
		f.err = "title is required"
		return nil
	}
	start, err := a.clockOn(v.day, f.value(scheduleStartField))
	if err != nil {
		f.err = "start: " + err.Error()
		return nil
	}
	end, err := a.clockOn(v.day, f.value(scheduleEndField))
	if err != nil {
		f.err = "end: " + err.Error()
		return nil
	}
	if end.Time.Before(start.Time) {
		f.err = "end time must not be before start time"
		return nil
	}

	mode := v.mode
	v.mode = NormalMode
	f.reset()

	if mode == EditMode {
		id := v.target.ID
		patch := api.SchedulePatch{Title: &title, StartTime: &start, EndTime: &end}
		return a.mutate("updated: "+title, func(ctx context.Context, b Backend) error {
			_, err := b.UpdateSchedule(ctx, id, patch)
			return err
		})
	}

	s := api.Schedule{Title: title, StartTime: start, EndTime: end}
	return a.mutate("added: "+title, func(ctx context.Context, b Backend) error {
		_, err := b.CreateSchedule(ctx, s)
		return err
	})
}

func (a App) clockOn(day datenorm.CalendarDay, clock string) (datenorm.Instant, error) {
	h, m, err := datenorm.ParseClock(clock)
	if err != nil {
		return datenorm.Instant{}, fmt.Errorf("use HH:MM")
	}
	return a.norm.LocalDayAndTimeToInstant(day, h, m)
}
