package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var tabTitles = [tabCount]string{"Today", "Goals", "Achievements"}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.state {
	case StateToday:
		body = m.todayModel.View()
	case StateGoals:
		body = m.goalsModel.View()
	case StateAchievements:
		body = m.achievementsModel.View()
	case StateAddHabit:
		body = m.form.View()
	}

	parts := []string{m.tabBar(), bodyStyle.Render(body)}
	if m.status != "" {
		style := statusStyle
		if m.statusErr {
			style = errorStyle
		}
		parts = append(parts, bodyStyle.Render(style.Render(m.status)))
	}
	parts = append(parts, bodyStyle.Render(m.help.View(m)))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// tabBar highlights the tab that owns the current state; the add-habit form
// belongs to Today.
func (m Model) tabBar() string {
	owner := m.state
	if owner == StateAddHabit {
		owner = StateToday
	}
	tabs := make([]string, 0, tabCount)
	for i, title := range tabTitles {
		style := tabStyle
		if SessionState(i) == owner {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(title))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
