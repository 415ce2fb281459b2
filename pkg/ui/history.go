package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"dayplan/pkg/agenda"
	"dayplan/pkg/api"
	"dayplan/pkg/config"
)

type historyView struct {
	pane   listPane
	mode   InputMode
	target api.Todo
}

func newHistoryView(styles config.Styles) historyView {
	return historyView{pane: newListPane(styles)}
}

func (a *App) buildHistoryRows() {
	today := a.today()
	groups, undated := agenda.History(a.norm, a.todos, today)

	var b rowBuilder
	for gi, g := range groups {
		if gi > 0 {
			b.spacer()
		}
		b.header(a.headerStyle(), g.Day.String())
		for _, i := range g.Items {
			b.add(a.todoLine(a.todos[i], agenda.Overdue(a.norm, a.todos[i], today)), rowRef{kind: refTodo, index: i})
		}
	}
	if len(undated) > 0 {
		if len(groups) > 0 {
			b.spacer()
		}
		b.header(a.headerStyle(), noDueDate)
		for _, i := range undated {
			b.add(a.todoLine(a.todos[i], false), rowRef{kind: refTodo, index: i})
		}
	}
	b.apply(&a.history.pane)
}

func (a *App) updateHistory(msg tea.KeyMsg) tea.Cmd {
	v := &a.history

	if v.mode == DeleteConfirmMode {
		switch msg.String() {
		case "y", "Y":
			id, title := v.target.ID, v.target.Title
			v.mode = NormalMode
			return a.mutate("deleted: "+title, func(ctx context.Context, b Backend) error {
				return b.DeleteTodo(ctx, id)
			})
		case "n", "N", "esc":
			v.mode = NormalMode
		}
		return nil
	}

	switch {
	case key.Matches(msg, a.keyMap.ToggleStatus):
		if t, ok := a.selectedTodo(v.pane); ok {
			return a.toggleTodo(t)
		}
	case key.Matches(msg, a.keyMap.DeleteEntry):
		if t, ok := a.selectedTodo(v.pane); ok {
			v.mode = DeleteConfirmMode
			v.target = t
		}
	default:
		return v.pane.update(msg)
	}
	return nil
}
