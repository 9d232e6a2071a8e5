package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/logger"
	"github.com/julianstephens/stride/internal/tracker"
	"github.com/julianstephens/stride/internal/tui/components/achievements"
	"github.com/julianstephens/stride/internal/tui/components/goals"
	"github.com/julianstephens/stride/internal/tui/components/today"
	"github.com/julianstephens/stride/internal/validation"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateGoals
	StateAchievements
	StateAddHabit
)

// tabCount is the number of states reachable with tab
const tabCount = 3

type HabitFormModel struct {
	Name      string
	GoalID    string
	Frequency constants.Frequency
}

type Model struct {
	tracker           *tracker.Service
	userID            string
	state             SessionState
	keys              KeyMap
	help              help.Model
	todayModel        today.Model
	goalsModel        goals.Model
	achievementsModel achievements.Model
	form              *huh.Form
	habitForm         *HabitFormModel
	day               string // empty follows today
	status            string
	statusErr         bool
	quitting          bool
	width             int
	height            int
}

func NewModel(trk *tracker.Service, userID string) Model {
	m := Model{
		tracker:           trk,
		userID:            userID,
		state:             StateToday,
		keys:              DefaultKeyMap(),
		help:              help.New(),
		todayModel:        today.New(),
		goalsModel:        goals.New(0, 0),
		achievementsModel: achievements.New(0, 0),
	}
	m.reload()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.NextTab, m.keys.Quit, m.keys.Help}
	if m.state == StateToday {
		tk := m.todayModel.Keys
		keys = append(keys, tk.Toggle, tk.PrevDay, tk.NextDay, tk.Add)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.NextTab, m.keys.PrevTab}
	global = append(global, m.keys.Jump[:]...)
	global = append(global, m.keys.Refresh, m.keys.Help, m.keys.Quit)

	var actions []key.Binding
	switch m.state {
	case StateToday:
		tk := m.todayModel.Keys
		actions = []key.Binding{tk.Up, tk.Down, tk.Toggle, tk.PrevDay, tk.NextDay, tk.Today, tk.Add}
	case StateAchievements:
		ak := m.achievementsModel.Keys
		actions = []key.Binding{ak.Up, ak.Down}
	}
	return [][]key.Binding{global, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// reload refreshes every tab from the store. Load failures are shown in the
// status line rather than ending the program.
func (m *Model) reload() {
	m.loadDay()
	m.loadGoals()
	m.loadAchievements()
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) fail(what string, err error) {
	logger.Warn("TUI load failed", "what", what, "error", err)
	m.setStatus(fmt.Sprintf("⚠ %s: %v", what, err), true)
}

func (m *Model) loadDay() {
	view, err := m.tracker.Day(context.Background(), m.userID, m.day)
	if err != nil {
		m.fail("loading day", err)
		return
	}
	m.todayModel.SetDay(view)
}

func (m *Model) loadGoals() {
	ctx := context.Background()
	list, err := m.tracker.ListGoals(ctx, m.userID)
	if err != nil {
		m.fail("loading goals", err)
		return
	}
	summaries := make([]goals.Summary, 0, len(list))
	for _, g := range list {
		s := goals.Summary{Goal: g}
		if s.Projection, err = m.tracker.ProjectCompletion(ctx, g.ID); err != nil {
			m.fail("projecting "+g.Title, err)
			return
		}
		if s.Week, err = m.tracker.CurrentWeekProgress(ctx, g.ID); err != nil {
			m.fail("loading week of "+g.Title, err)
			return
		}
		if s.Timeline, err = m.tracker.ProgressTimeline(ctx, g.ID); err != nil {
			m.fail("loading timeline of "+g.Title, err)
			return
		}
		summaries = append(summaries, s)
	}
	m.goalsModel.SetGoals(summaries)
}

func (m *Model) loadAchievements() {
	list, err := m.tracker.ListAchievementsWithStatus(context.Background(), m.userID)
	if err != nil {
		m.fail("loading achievements", err)
		return
	}
	m.achievementsModel.SetAchievements(list)
}

// toggle writes the habit through the conflict resolver and reports the
// siblings it un-marked.
func (m *Model) toggle(msg today.ToggleHabitMsg) {
	writes, err := m.tracker.ResolveConflictsAndToggle(context.Background(), msg.HabitID, msg.Day, msg.Completed)
	if err != nil {
		m.setStatus("⚠ "+err.Error(), true)
		return
	}
	names := make(map[string]string)
	for _, g := range m.todayModel.Day().Groups {
		for _, h := range g.Habits {
			names[h.Habit.ID] = h.Habit.Name
		}
	}
	var demoted []string
	for _, w := range writes {
		if w.Demoted {
			demoted = append(demoted, names[w.HabitID])
		}
	}
	m.setStatus("", false)
	if len(demoted) > 0 {
		m.setStatus(fmt.Sprintf("un-marked %s (conflicts with %s)", strings.Join(demoted, ", "), names[msg.HabitID]), false)
	}
	m.reload()
}

func (m *Model) newHabitForm() (*huh.Form, error) {
	list, err := m.tracker.ListGoals(context.Background(), m.userID)
	if err != nil {
		return nil, err
	}
	goalOptions := []huh.Option[string]{huh.NewOption("No goal", "")}
	for _, g := range list {
		goalOptions = append(goalOptions, huh.NewOption(g.Title, g.ID))
	}

	m.habitForm = &HabitFormModel{Frequency: constants.FrequencyDaily}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.habitForm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Goal").
				Options(goalOptions...).
				Value(&m.habitForm.GoalID),
			huh.NewSelect[constants.Frequency]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", constants.FrequencyDaily),
					huh.NewOption("Weekly", constants.FrequencyWeekly),
					huh.NewOption("Flexible", constants.FrequencyFlexible),
				).
				Value(&m.habitForm.Frequency),
		),
	), nil
}

// saveHabit creates the habit described by the completed form.
func (m *Model) saveHabit() error {
	_, err := m.tracker.CreateHabit(context.Background(), m.userID, validation.HabitRequest{
		Name:      m.habitForm.Name,
		GoalID:    m.habitForm.GoalID,
		Frequency: m.habitForm.Frequency,
	})
	if err != nil {
		return err
	}
	m.setStatus("Added habit "+strings.TrimSpace(m.habitForm.Name), false)
	m.habitForm = nil
	m.reload()
	return nil
}
