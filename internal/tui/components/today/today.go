// Package today renders the day board: habits grouped by goal with the
// day's completion against what the fasting rules leave achievable.
package today

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/stride/internal/tracker"
)

type ToggleHabitMsg struct {
	HabitID   string
	Day       string
	Completed bool
}

// ShiftDayMsg moves the board by Offset days; zero returns to today.
type ShiftDayMsg struct {
	Offset int
}

type AddHabitMsg struct{}

var (
	groupStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	barFull  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	barEmpty = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	PrevDay key.Binding
	NextDay key.Binding
	Today   key.Binding
	Add     key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle"),
		),
		PrevDay: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev day"),
		),
		NextDay: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next day"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add habit"),
		),
	}
}

type Model struct {
	Keys   KeyMap
	view   tracker.DayView
	rows   []tracker.HabitDay
	cursor int
}

func New() Model {
	return Model{Keys: DefaultKeyMap()}
}

// SetDay replaces the board. The cursor stays on the same position when the
// day still has that many habits.
func (m *Model) SetDay(view tracker.DayView) {
	m.view = view
	m.rows = nil
	for _, g := range view.Groups {
		m.rows = append(m.rows, g.Habits...)
	}
	if m.cursor >= len(m.rows) {
		m.cursor = max(0, len(m.rows)-1)
	}
}

func (m Model) Day() tracker.DayView { return m.view }

func (m Model) Selected() (tracker.HabitDay, bool) {
	if len(m.rows) == 0 {
		return tracker.HabitDay{}, false
	}
	return m.rows[m.cursor], true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.Keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.Keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.Keys.Toggle):
		if h, ok := m.Selected(); ok && !m.view.ReadOnly {
			msg := ToggleHabitMsg{HabitID: h.Habit.ID, Day: m.view.Day, Completed: !h.Completed}
			return m, func() tea.Msg { return msg }
		}
	case key.Matches(keyMsg, m.Keys.PrevDay):
		return m, func() tea.Msg { return ShiftDayMsg{Offset: -1} }
	case key.Matches(keyMsg, m.Keys.NextDay):
		if m.view.Day < m.view.Today {
			return m, func() tea.Msg { return ShiftDayMsg{Offset: 1} }
		}
	case key.Matches(keyMsg, m.Keys.Today):
		return m, func() tea.Msg { return ShiftDayMsg{} }
	case key.Matches(keyMsg, m.Keys.Add):
		return m, func() tea.Msg { return AddHabitMsg{} }
	}
	return m, nil
}

func bar(percent, width int) string {
	filled := min(width, percent*width/100)
	return barFull.Render(strings.Repeat("█", filled)) + barEmpty.Render(strings.Repeat("░", width-filled))
}

func (m Model) View() string {
	var b strings.Builder
	header := m.view.Day
	if m.view.ReadOnly {
		header += mutedStyle.Render("  read-only")
	}
	b.WriteString(header + "\n")

	if len(m.rows) == 0 {
		b.WriteString("\n  No habits yet.\n  Press 'a' to add one, or create a goal with 'stride goal add'.")
		return b.String()
	}

	i := 0
	for _, g := range m.view.Groups {
		title := "Other habits"
		if g.Goal != nil {
			title = g.Goal.Title
		}
		fmt.Fprintf(&b, "\n%s  %s %d/%d (%d%%)\n", groupStyle.Render(title), bar(g.Percent, 20), g.Completed, g.MaxAchievable, g.Percent)
		for _, h := range g.Habits {
			check := "[ ]"
			if h.Completed {
				check = doneStyle.Render("[x]")
			}
			line := check + " " + h.Habit.Name
			if h.Habit.CurrentStreak > 0 {
				line += mutedStyle.Render(fmt.Sprintf("  🔥 %d", h.Habit.CurrentStreak))
			}
			if h.Notes != "" {
				line += mutedStyle.Render("  " + h.Notes)
			}
			if i == m.cursor {
				b.WriteString(cursorStyle.Render("> ") + line + "\n")
			} else {
				b.WriteString("  " + line + "\n")
			}
			i++
		}
	}
	return b.String()
}
