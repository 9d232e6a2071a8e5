package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/stride/internal/tui/components/today"
	"github.com/julianstephens/stride/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == StateAddHabit {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.goalsModel.SetSize(msg.Width-4, msg.Height-6)
		m.achievementsModel.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case today.ToggleHabitMsg:
		m.toggle(msg)
		return m, nil

	case today.ShiftDayMsg:
		m.shiftDay(msg.Offset)
		return m, nil

	case today.AddHabitMsg:
		form, err := m.newHabitForm()
		if err != nil {
			m.setStatus("⚠ "+err.Error(), true)
			return m, nil
		}
		m.form = form
		m.state = StateAddHabit
		return m, m.form.Init()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.NextTab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.PrevTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.setStatus("", false)
			m.reload()
			return m, nil
		}
		for i, b := range m.keys.Jump {
			if key.Matches(msg, b) {
				m.state = SessionState(i)
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateToday:
		m.todayModel, cmd = m.todayModel.Update(msg)
	case StateGoals:
		m.goalsModel, cmd = m.goalsModel.Update(msg)
	case StateAchievements:
		m.achievementsModel, cmd = m.achievementsModel.Update(msg)
	}
	return m, cmd
}

// shiftDay moves the board. Reaching today (or asking for offset zero)
// makes the board follow the current day again.
func (m *Model) shiftDay(offset int) {
	view := m.todayModel.Day()
	next := ""
	if offset != 0 && view.Day != "" {
		next = utils.AddDays(view.Day, offset)
		if next >= view.Today {
			next = ""
		}
	}
	m.day = next
	m.setStatus("", false)
	m.loadDay()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateToday
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if err := m.saveHabit(); err != nil {
			m.setStatus("⚠ "+err.Error(), true)
		}
		m.state = StateToday
		m.form = nil
	case huh.StateAborted:
		m.state = StateToday
		m.form = nil
	}
	return m, cmd
}
