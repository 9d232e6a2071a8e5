package achievements

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/models"
)

const cardWidth = 24

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(cardWidth)

	lockedStyle = cardStyle.
			BorderForeground(lipgloss.Color("238")).
			Foreground(lipgloss.Color("240"))

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	rarityColors = map[constants.Rarity]lipgloss.Color{
		constants.RarityCommon:    lipgloss.Color("250"),
		constants.RarityRare:      lipgloss.Color("39"),
		constants.RarityEpic:      lipgloss.Color("135"),
		constants.RarityLegendary: lipgloss.Color("214"),
	}
)

type KeyMap struct {
	Up   key.Binding
	Down key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model lays the catalog out as a grid of cards, unlocked ones colored by
// rarity.
type Model struct {
	Keys   KeyMap
	items  []models.AchievementStatus
	offset int
	width  int
	height int
}

func New(width, height int) Model {
	return Model{Keys: DefaultKeyMap(), width: width, height: height}
}

func (m *Model) SetAchievements(items []models.AchievementStatus) {
	m.items = items
	m.offset = min(m.offset, max(0, m.rows()-1))
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) columns() int {
	return max(1, m.width/(cardWidth+4))
}

func (m Model) rows() int {
	cols := m.columns()
	return (len(m.items) + cols - 1) / cols
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.Keys.Up):
			if m.offset > 0 {
				m.offset--
			}
		case key.Matches(msg, m.Keys.Down):
			if m.offset < m.rows()-1 {
				m.offset++
			}
		}
	}
	return m, nil
}

func card(a models.AchievementStatus) string {
	if !a.Unlocked {
		return lockedStyle.Render(fmt.Sprintf("🔒 %s\n%s", a.Name, a.Description))
	}
	body := fmt.Sprintf("%s %s\n%s", a.Icon, a.Name, a.Description)
	if a.UnlockedAt != nil {
		body += "\n" + a.UnlockedAt.Local().Format("2006-01-02")
	}
	return cardStyle.BorderForeground(rarityColors[a.Rarity]).Render(body)
}

func (m Model) View() string {
	if len(m.items) == 0 {
		return "No achievements in the catalog."
	}

	unlocked := 0
	for _, a := range m.items {
		if a.Unlocked {
			unlocked++
		}
	}
	lines := []string{summaryStyle.Render(fmt.Sprintf("Unlocked %d of %d", unlocked, len(m.items)))}

	cols := m.columns()
	for r := m.offset; r < m.rows(); r++ {
		var cards []string
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if i >= len(m.items) {
				break
			}
			cards = append(cards, card(m.items[i]))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
