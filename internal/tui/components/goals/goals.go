package goals

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/projection"
	"github.com/julianstephens/stride/internal/tracker"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(14)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

// Summary is everything the tab shows for one goal.
type Summary struct {
	Goal       models.Goal
	Projection projection.Projection
	Week       tracker.WeekProgress
	Timeline   []models.WeeklyProgress
}

type Model struct {
	viewport  viewport.Model
	summaries []Summary
	width     int
	height    int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.summaries) == 0 {
		return "No goals yet. Create one with 'stride goal add'."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

func (m *Model) SetGoals(summaries []Summary) {
	m.summaries = summaries
	m.Render()
}

// Content is the rendered text of every goal, independent of scrolling.
func (m Model) Content() string {
	var b strings.Builder
	for i, s := range m.summaries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderGoal(s))
	}
	return b.String()
}

func (m *Model) Render() {
	m.viewport.SetContent(m.Content())
}

func field(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}

func renderGoal(s Summary) string {
	g := s.Goal
	var b strings.Builder
	b.WriteString(titleStyle.Render(g.Title) + "\n")
	b.WriteString(field("Progress", fmt.Sprintf("%s → %s %s (now %s)", num(g.StartValue), num(g.TargetValue), g.Unit, num(g.CurrentValue))))
	b.WriteString(field("Deadline", fmt.Sprintf("%s (%d weeks)", g.Deadline, g.DurationWeeks)))
	b.WriteString(field("Projection", s.Projection.String()))

	w := s.Week
	week := fmt.Sprintf("week %d, %s to %s: %d/%d habits (%.0f%%)", w.WeekNumber, w.WeekStart, w.WeekEnd, w.HabitsCompleted, w.HabitsAvailable, w.CompletionRate)
	b.WriteString(field("This week", week))

	if len(s.Timeline) > 0 {
		b.WriteString("\n" + timeline(s.Timeline).View() + "\n")
	}
	return b.String()
}

func timeline(weeks []models.WeeklyProgress) table.Model {
	rows := make([]table.Row, 0, len(weeks))
	for _, w := range weeks {
		metric := "-"
		if v, ok := w.Metric(); ok {
			metric = num(v)
		}
		delta := "-"
		if w.ProgressDelta != nil {
			delta = fmt.Sprintf("%+.1f", *w.ProgressDelta)
		}
		rows = append(rows, table.Row{
			strconv.Itoa(w.WeekNumber),
			w.WeekStart,
			metric,
			delta,
			fmt.Sprintf("%d/%d", w.HabitsCompletedCount, w.TotalHabitsAvailable),
			fmt.Sprintf("%.0f%%", w.CompletionRate),
		})
	}
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Week", Width: 4},
			{Title: "Start", Width: 10},
			{Title: "Metric", Width: 7},
			{Title: "Delta", Width: 6},
			{Title: "Habits", Width: 7},
			{Title: "Rate", Width: 5},
		}),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)
	t.Blur()
	return t
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
