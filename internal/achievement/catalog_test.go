package achievement

import (
	"slices"
	"testing"

	"github.com/julianstephens/stride/internal/constants"
)

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if c.Len() == 0 {
		t.Fatal("catalog is empty")
	}
	a, ok := c.Get("streak_7")
	if !ok || a.Requirement != 7 || a.Category != constants.CategoryStreak || a.Type != constants.AchievementTypeStreak {
		t.Errorf("streak_7 = %+v", a)
	}
	if g, ok := c.Get("goal_first"); !ok || g.Type != constants.AchievementTypeGoal {
		t.Errorf("goal_first = %+v", g)
	}
	if gym, _ := c.Get("gym_rat"); !slices.Equal(gym.Templates, []string{"gym"}) {
		t.Errorf("gym_rat templates = %v", gym.Templates)
	}
}

func TestParseCatalogRejectsDuplicates(t *testing.T) {
	data := []byte("- id: a\n  requirement: 1\n- id: a\n  requirement: 2\n")
	if _, err := ParseCatalog(data); err == nil {
		t.Error("expected duplicate id error")
	}
	if _, err := ParseCatalog([]byte("- name: nameless\n")); err == nil {
		t.Error("expected missing id error")
	}
}

func TestCategoryFor(t *testing.T) {
	tests := map[Trigger]constants.AchievementCategory{
		TriggerStreak:           constants.CategoryStreak,
		TriggerGoalCompleted:    constants.CategoryGoals,
		TriggerCommunityJoined:  constants.CategorySocial,
		TriggerCommunityCreated: constants.CategorySocial,
		TriggerCheerSent:        constants.CategorySocial,
		TriggerSessions:         constants.CategoryConsistency,
	}
	for trigger, want := range tests {
		got, err := CategoryFor(trigger)
		if err != nil || got != want {
			t.Errorf("CategoryFor(%s) = %s, %v; want %s", trigger, got, err, want)
		}
	}
	if _, err := CategoryFor("dance_off"); err == nil {
		t.Error("expected error for unknown trigger")
	}
}

func TestEarned(t *testing.T) {
	c, err := LoadCatalog()
	if err != nil {
		t.Fatal(err)
	}
	entries := c.All()

	got := Earned(entries, constants.CategoryStreak, 7, "", nil)
	for _, want := range []string{"first_fast", "streak_7", "gym_rat", "bookworm"} {
		if !slices.Contains(got, want) {
			t.Errorf("Earned(streak, 7) missing %s: %v", want, got)
		}
	}
	if slices.Contains(got, "fasts_10") {
		t.Errorf("Earned(streak, 7) includes fasts_10: %v", got)
	}

	gymOnly := Earned(entries, constants.CategoryStreak, 7, "gym", nil)
	if !slices.Contains(gymOnly, "gym_rat") || slices.Contains(gymOnly, "bookworm") {
		t.Errorf("Earned for gym template = %v", gymOnly)
	}

	already := Earned(entries, constants.CategoryStreak, 7, "gym", map[string]bool{"streak_7": true, "first_fast": true, "gym_rat": true})
	if len(already) != 0 {
		t.Errorf("Earned with everything unlocked = %v, want none", already)
	}
}

func TestRevocable(t *testing.T) {
	c, err := LoadCatalog()
	if err != nil {
		t.Fatal(err)
	}
	got := Revocable(c.All(), []string{"streak_7", "goal_first", "iron_pumper", "team_player", "unknown"})
	if !slices.Equal(got, []string{"streak_7", "iron_pumper"}) {
		t.Errorf("Revocable() = %v, want [streak_7 iron_pumper]", got)
	}
}
