package ui

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dayplan/pkg/config"
)

type refKind int

const (
	refNone refKind = iota
	refTodo
	refSchedule
)

// rowRef points a table row back at the entry it shows. Group headers and
// spacers use refNone.
type rowRef struct {
	kind  refKind
	index int
}

// listPane is a single-column table whose rows map to entries.
type listPane struct {
	table table.Model
	refs  []rowRef
}

func newListPane(styles config.Styles) listPane {
	// Create an empty column - the title will be empty to avoid showing a header
	columns := []table.Column{
		{Title: "", Width: 60},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.HiddenBorder()).
		BorderBottom(false).
		Bold(false).
		Foreground(lipgloss.NoColor{})

	s.Selected = s.Selected.
		Foreground(lipgloss.Color(styles.SelectedTextColor)).
		Background(lipgloss.Color(styles.SelectedBgColor)).
		Bold(true)
	t.SetStyles(s)

	return listPane{table: t}
}

func (p *listPane) setRows(rows []table.Row, refs []rowRef) {
	p.refs = refs
	p.table.SetRows(rows)
	if c := p.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		p.table.SetCursor(len(rows) - 1)
	}
}

// selected returns the entry under the cursor.
func (p listPane) selected() (rowRef, bool) {
	c := p.table.Cursor()
	if c < 0 || c >= len(p.refs) || p.refs[c].kind == refNone {
		return rowRef{}, false
	}
	return p.refs[c], true
}

func (p *listPane) resize(width, height int) {
	p.table.SetColumns([]table.Column{{Title: "", Width: max(width-4, 20)}})
	p.table.SetWidth(width - 4)
	p.table.SetHeight(max(height-8, 3))
}

func (p *listPane) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return cmd
}

func (p listPane) view() string {
	if len(p.refs) == 0 {
		return ""
	}
	return p.table.View()
}

// rowBuilder accumulates rows and their refs in step.
type rowBuilder struct {
	rows []table.Row
	refs []rowRef
}

func (b *rowBuilder) add(text string, ref rowRef) {
	b.rows = append(b.rows, table.Row{text})
	b.refs = append(b.refs, ref)
}

func (b *rowBuilder) header(style lipgloss.Style, title string) {
	b.add(style.Render("== "+title+" =="), rowRef{})
}

func (b *rowBuilder) spacer() {
	b.add("", rowRef{})
}

func (b rowBuilder) apply(p *listPane) {
	p.setRows(b.rows, b.refs)
}
