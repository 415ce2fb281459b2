package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"dayplan/pkg/agenda"
	"dayplan/pkg/datenorm"
)

// renderCalendar renders the month around the calendar cursor, marking
// days that have schedules.
func (a App) renderCalendar() string {
	var sb strings.Builder

	cursor := a.schedule.cursor
	first := cursor.FirstOfMonth()
	daysInMonth := cursor.DaysInMonth()
	firstWeekday := int(first.Weekday())
	today := a.today()
	busy := agenda.ScheduleDays(a.norm, a.schedules)

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(a.styles.SelectedTextColor)).
		Background(lipgloss.Color(a.styles.AccentColor)).
		Padding(0, 1).
		Render(fmt.Sprintf(" %s %d ", first.Month, first.Year))
	sb.WriteString(header)
	sb.WriteString("\n\n")

	weekdayRow := ""
	for _, day := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		weekdayRow += fmt.Sprintf("%-4s", day)
	}
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(weekdayRow))
	sb.WriteString("\n")

	current := 1
	for week := 0; week < 6 && current <= daysInMonth; week++ {
		row := ""
		for weekday := 0; weekday < 7; weekday++ {
			if (week == 0 && weekday < firstWeekday) || current > daysInMonth {
				row += "    "
				continue
			}

			day := datenorm.CalendarDay{Year: first.Year, Month: first.Month, Day: current}
			style := lipgloss.NewStyle()
			switch {
			case datenorm.DayEquals(day, cursor):
				style = style.Background(lipgloss.Color(a.styles.AccentColor)).
					Foreground(lipgloss.Color(a.styles.SelectedTextColor)).Bold(true)
			case datenorm.DayEquals(day, today):
				style = style.Background(lipgloss.Color(a.styles.SelectedBgColor)).
					Foreground(lipgloss.Color(a.styles.SelectedTextColor))
			case busy[day]:
				style = style.Foreground(lipgloss.Color(a.styles.AccentColor)).Bold(true)
			}
			row += style.Render(fmt.Sprintf("%-4d", current))
			current++
		}
		sb.WriteString(row)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(a.statusLine("Navigate: ←→↑↓  |  Select day: enter  |  Today: " +
		a.keyMap.JumpToToday.Help().Key + "  |  Exit: esc"))

	return sb.String()
}
