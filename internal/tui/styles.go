package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("42")
	colorMuted  = lipgloss.Color("243")
	colorBar    = lipgloss.Color("235")
	colorNotice = lipgloss.Color("179")
	colorError  = lipgloss.Color("203")
)

var (
	tabStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 2)

	activeTabStyle = tabStyle.
			Foreground(colorAccent).
			Background(colorBar).
			Bold(true).
			Underline(true)

	statusStyle = lipgloss.NewStyle().Foreground(colorNotice)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	bodyStyle = lipgloss.NewStyle().Margin(1, 2, 0, 2)
)
