package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"dayplan/pkg/api"
	"dayplan/pkg/config"
	"dayplan/pkg/datenorm"
	"dayplan/pkg/utils"
)

const (
	todoTitleField = iota
	todoDescField
	todoDueField
)

type todoView struct {
	pane   listPane
	mode   InputMode
	form   form
	order  todoOrder
	target api.Todo
}

func newTodoView(styles config.Styles) todoView {
	return todoView{
		pane: newListPane(styles),
		form: newForm(
			formField{label: "Title", placeholder: "Title (you can include a +category tag)"},
			formField{label: "Description", placeholder: "Description"},
			formField{label: "Due Date (YYYY-MM-DD)", placeholder: "Due Date (YYYY-MM-DD, empty for today)"},
		),
	}
}

func (a *App) buildTodoRows() {
	v := &a.todo
	groups := v.order.groupTodos(a.norm, a.todos)

	var b rowBuilder
	for gi, group := range groups {
		if v.order.groupBy != GroupByNone {
			b.header(a.headerStyle(), group.GroupName)
		}
		for _, i := range group.Index {
			b.add(a.todoLine(a.todos[i], false), rowRef{kind: refTodo, index: i})
		}
		if v.order.groupBy != GroupByNone && gi < len(groups)-1 {
			b.spacer()
		}
	}
	b.apply(&v.pane)
}

func (a *App) updateTodo(msg tea.KeyMsg) tea.Cmd {
	v := &a.todo

	switch v.mode {
	case AddMode, EditMode:
		submit, cancel, cmd := v.form.handleKey(msg)
		switch {
		case cancel:
			v.mode = NormalMode
			v.form.reset()
		case submit:
			return a.submitTodo()
		}
		return cmd

	case DeleteConfirmMode:
		switch msg.String() {
		case "y", "Y":
			id, title := v.target.ID, v.target.Title
			v.mode = NormalMode
			utils.Log("deleting todo", "id", id)
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

	case key.Matches(msg, a.keyMap.AddEntry):
		v.mode = AddMode
		v.form.reset()
		v.form.set(todoDueField, a.today().String())

	case key.Matches(msg, a.keyMap.EditEntry):
		if t, ok := a.selectedTodo(v.pane); ok {
			v.mode = EditMode
			v.target = t
			v.form.reset()
			title := t.Title
			if t.Category != "" {
				title += " +" + t.Category
			}
			v.form.set(todoTitleField, title)
			v.form.set(todoDescField, t.Description)
			if day := a.norm.InstantToLocalDay(t.DueDate); day.IsKnown() {
				v.form.set(todoDueField, day.String())
			}
		}

	case key.Matches(msg, a.keyMap.DeleteEntry):
		if t, ok := a.selectedTodo(v.pane); ok {
			v.mode = DeleteConfirmMode
			v.target = t
		}

	case key.Matches(msg, a.keyMap.ToggleSortBy):
		v.order.sortBy = (v.order.sortBy + 1) % sortByCount
		a.buildTodoRows()

	case key.Matches(msg, a.keyMap.ToggleGroupBy):
		v.order.groupBy = (v.order.groupBy + 1) % groupByCount
		a.buildTodoRows()

	case key.Matches(msg, a.keyMap.ToggleSortOrder):
		if v.order.sortOrder == SortAsc {
			v.order.sortOrder = SortDesc
		} else {
			v.order.sortOrder = SortAsc
		}
		a.buildTodoRows()

	default:
		return v.pane.update(msg)
	}
	return nil
}

// submitTodo validates the form and sends it; nothing is sent while the
// form is invalid.
func (a *App) submitTodo() tea.Cmd {
	v := &a.todo
	f := &v.form

	title, category := utils.SplitCategory(f.value(todoTitleField))
	if title == "" {
		f.err = "title is required"
		return nil
	}
	day := a.today()
	if s := f.value(todoDueField); s != "" {
		parsed, err := datenorm.ParseDay(s)
		if err != nil {
			f.err = "invalid date format: use YYYY-MM-DD"
			return nil
		}
		day = parsed
	}
	due, err := a.norm.LocalDayAndTimeToInstant(day, 0, 0)
	if err != nil {
		f.err = err.Error()
		return nil
	}
	desc := f.value(todoDescField)

	mode := v.mode
	v.mode = NormalMode
	f.reset()

	if mode == EditMode {
		id := v.target.ID
		patch := api.TodoPatch{Title: &title, Description: &desc, DueDate: &due, Category: &category}
		return a.mutate("updated: "+title, func(ctx context.Context, b Backend) error {
			_, err := b.UpdateTodo(ctx, id, patch)
			return err
		})
	}

	todo := api.Todo{Title: title, Description: desc, DueDate: due, Category: category}
	return a.mutate("added: "+title, func(ctx context.Context, b Backend) error {
		_, err := b.CreateTodo(ctx, todo)
		return err
	})
}

func (v todoView) status() string {
	var sb strings.Builder
	sb.WriteString("sorted by " + v.order.sortBy.String())
	if v.order.sortOrder == SortDesc {
		sb.WriteString(" (desc)")
	} else {
		sb.WriteString(" (asc)")
	}
	if v.order.groupBy != GroupByNone {
		sb.WriteString(", grouped " + v.order.groupBy.String())
	}
	return sb.String()
}
