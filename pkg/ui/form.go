package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type formField struct {
	label       string
	placeholder string
	password    bool
}

// form is a vertical list of text inputs with one focused at a time.
type form struct {
	fields []formField
	inputs []textinput.Model
	active int
	err    string
}

func newForm(fields ...formField) form {
	f := form{fields: fields}
	for _, field := range fields {
		in := textinput.New()
		in.Placeholder = field.placeholder
		in.Width = 40
		if field.password {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.inputs = append(f.inputs, in)
	}
	f.focus(0)
	return f
}

func (f *form) focus(i int) {
	n := len(f.inputs)
	f.active = ((i % n) + n) % n
	for j := range f.inputs {
		if j == f.active {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

// reset clears all inputs and the error line
func (f *form) reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	f.err = ""
	f.focus(0)
}

func (f form) value(i int) string {
	if f.fields[i].password {
		return f.inputs[i].Value()
	}
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f *form) set(i int, v string) {
	f.inputs[i].SetValue(v)
}

// handleKey moves focus on tab/enter and feeds everything else to the
// focused input. submit is true for enter on the last field.
func (f *form) handleKey(msg tea.KeyMsg) (submit, cancel bool, cmd tea.Cmd) {
	switch msg.String() {
	case "esc":
		return false, true, nil
	case "tab", "down":
		f.focus(f.active + 1)
		return false, false, nil
	case "shift+tab", "up":
		f.focus(f.active - 1)
		return false, false, nil
	case "enter":
		if f.active == len(f.inputs)-1 {
			return true, false, nil
		}
		f.focus(f.active + 1)
		return false, false, nil
	}
	f.inputs[f.active], cmd = f.inputs[f.active].Update(msg)
	return false, false, cmd
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.active], cmd = f.inputs[f.active].Update(msg)
	return cmd
}

func (f form) view() string {
	var sb strings.Builder
	for i, field := range f.fields {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(field.label + ":\n")
		sb.WriteString(f.inputs[i].View())
	}
	return sb.String()
}
