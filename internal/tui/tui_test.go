package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/storage/sqlite"
	"github.com/julianstephens/stride/internal/tracker"
	"github.com/julianstephens/stride/internal/tui/components/today"
	"github.com/julianstephens/stride/internal/utils"
	"github.com/julianstephens/stride/internal/validation"
)

func setupTracker(t *testing.T) (*tracker.Service, string) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "stride.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	settings, err := store.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	settings.Timezone = "UTC"
	if err := store.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	clock := utils.NewFakeClock(time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC))
	trk, err := tracker.New(store, tracker.WithClock(clock))
	if err != nil {
		t.Fatalf("tracker.New failed: %v", err)
	}
	user, err := trk.LocalUser(ctx)
	if err != nil {
		t.Fatalf("LocalUser failed: %v", err)
	}
	return trk, user
}

func addFastingGoal(t *testing.T, trk *tracker.Service, user string) {
	t.Helper()
	_, _, err := trk.CreateGoalWithHabits(context.Background(), user, validation.GoalRequest{
		Type: constants.GoalWeightLoss, Title: "Cut", StartValue: 90, TargetValue: 80, Deadline: "2024-10-01",
		Habits: []validation.HabitRequest{
			{Name: "OMAD", TemplateID: constants.TemplateOMAD},
			{Name: "Autophagy", TemplateID: constants.TemplateAutophagy},
		},
	})
	if err != nil {
		t.Fatalf("CreateGoalWithHabits failed: %v", err)
	}
}

var (
	space    = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	down     = tea.KeyMsg{Type: tea.KeyDown}
	left     = tea.KeyMsg{Type: tea.KeyLeft}
	right    = tea.KeyMsg{Type: tea.KeyRight}
	tab      = tea.KeyMsg{Type: tea.KeyTab}
	shiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	esc      = tea.KeyMsg{Type: tea.KeyEsc}
	addKey   = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}
)

// press sends msg and feeds back a message produced by the day board, the
// way the runtime would.
func press(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m, nil
	}
	switch follow := cmd().(type) {
	case today.ToggleHabitMsg, today.ShiftDayMsg, today.AddHabitMsg:
		next, cmd = m.Update(follow)
		return next.(Model), cmd
	}
	return m, cmd
}

// selectTemplate moves the cursor to the habit with the template id.
func selectTemplate(t *testing.T, m Model, template string) Model {
	t.Helper()
	for range 5 {
		if h, ok := m.todayModel.Selected(); ok && h.Habit.TemplateID == template {
			return m
		}
		m, _ = press(t, m, down)
	}
	t.Fatalf("no habit with template %q on the board", template)
	return m
}

func completed(t *testing.T, trk *tracker.Service, user string) map[string]bool {
	t.Helper()
	view, err := trk.Day(context.Background(), user, "")
	if err != nil {
		t.Fatalf("Day failed: %v", err)
	}
	done := make(map[string]bool)
	for _, g := range view.Groups {
		for _, h := range g.Habits {
			done[h.Habit.TemplateID] = h.Completed
		}
	}
	return done
}

func TestToggleResolvesConflicts(t *testing.T) {
	trk, user := setupTracker(t)
	addFastingGoal(t, trk, user)
	m := NewModel(trk, user)

	if v := m.View(); !strings.Contains(v, "Cut") || !strings.Contains(v, "0/1 (0%)") {
		t.Fatalf("unexpected initial board:\n%s", v)
	}

	m = selectTemplate(t, m, constants.TemplateOMAD)
	m, _ = press(t, m, space)
	if done := completed(t, trk, user); !done[constants.TemplateOMAD] {
		t.Fatalf("omad should be completed, got %v", done)
	}

	m = selectTemplate(t, m, constants.TemplateAutophagy)
	m, _ = press(t, m, space)
	done := completed(t, trk, user)
	if done[constants.TemplateOMAD] || !done[constants.TemplateAutophagy] {
		t.Errorf("autophagy should demote omad, got %v", done)
	}
	if !strings.Contains(m.status, "un-marked OMAD (conflicts with Autophagy)") {
		t.Errorf("status = %q", m.status)
	}
	if v := m.View(); !strings.Contains(v, "1/1 (100%)") {
		t.Errorf("board should show the day complete:\n%s", v)
	}

	// Toggling again un-marks autophagy.
	m, _ = press(t, m, space)
	if done := completed(t, trk, user); done[constants.TemplateAutophagy] {
		t.Errorf("second toggle should un-mark autophagy, got %v", done)
	}
}

func TestPastDaysAreReadOnly(t *testing.T) {
	trk, user := setupTracker(t)
	addFastingGoal(t, trk, user)
	m := NewModel(trk, user)

	m, _ = press(t, m, left)
	day := m.todayModel.Day()
	if day.Day != "2024-06-04" || !day.ReadOnly {
		t.Fatalf("expected read-only 2024-06-04, got %s (read-only %v)", day.Day, day.ReadOnly)
	}
	if !strings.Contains(m.View(), "read-only") {
		t.Error("view should mark the day read-only")
	}

	_, cmd := m.Update(space)
	if cmd != nil {
		t.Error("toggling a past day should do nothing")
	}

	m, _ = press(t, m, right)
	if day := m.todayModel.Day(); day.Day != "2024-06-05" || day.ReadOnly {
		t.Errorf("expected today again, got %s", day.Day)
	}

	// There is nothing after today.
	m, _ = press(t, m, right)
	if day := m.todayModel.Day(); day.Day != "2024-06-05" {
		t.Errorf("moved past today to %s", day.Day)
	}
}

func TestTabs(t *testing.T) {
	trk, user := setupTracker(t)
	addFastingGoal(t, trk, user)
	m := NewModel(trk, user)
	m, _ = press(t, m, tea.WindowSizeMsg{Width: 120, Height: 60})

	m, _ = press(t, m, tab)
	if m.state != StateGoals {
		t.Fatalf("state = %v, want goals", m.state)
	}
	content := m.goalsModel.Content()
	for _, want := range []string{"Cut", "not enough progress to project", "week 0"} {
		if !strings.Contains(content, want) {
			t.Errorf("goals tab missing %q:\n%s", want, content)
		}
	}

	m, _ = press(t, m, tab)
	if m.state != StateAchievements || !strings.Contains(m.View(), "Unlocked 0 of") {
		t.Errorf("expected achievements tab, got state %v:\n%s", m.state, m.View())
	}

	m, _ = press(t, m, tab)
	if m.state != StateToday {
		t.Errorf("tab should wrap to today, got %v", m.state)
	}
	m, _ = press(t, m, shiftTab)
	if m.state != StateAchievements {
		t.Errorf("shift+tab should wrap to achievements, got %v", m.state)
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	if m.state != StateGoals {
		t.Errorf("2 should jump to goals, got %v", m.state)
	}
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	if m.state != StateToday {
		t.Errorf("1 should jump to today, got %v", m.state)
	}
}

func TestAddHabitForm(t *testing.T) {
	trk, user := setupTracker(t)
	m := NewModel(trk, user)

	if !strings.Contains(m.View(), "No habits yet") {
		t.Fatalf("expected empty board:\n%s", m.View())
	}

	m, _ = press(t, m, addKey)
	if m.state != StateAddHabit || m.form == nil {
		t.Fatalf("expected the add-habit form, got state %v", m.state)
	}
	m, _ = press(t, m, esc)
	if m.state != StateToday || m.form != nil {
		t.Fatalf("esc should close the form, got state %v", m.state)
	}

	m, _ = press(t, m, addKey)
	m.habitForm.Name = "Stretch"
	if err := m.saveHabit(); err != nil {
		t.Fatalf("saveHabit failed: %v", err)
	}
	if !strings.Contains(m.todayModel.View(), "Stretch") {
		t.Errorf("new habit missing from the board:\n%s", m.todayModel.View())
	}
	if m.status != "Added habit Stretch" {
		t.Errorf("status = %q", m.status)
	}
}
