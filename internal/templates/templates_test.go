package templates

import (
	"testing"

	"github.com/julianstephens/stride/internal/constants"
)

func TestForGoal(t *testing.T) {
	wl, err := ForGoal(constants.GoalWeightLoss)
	if err != nil {
		t.Fatalf("ForGoal(weight-loss) error = %v", err)
	}
	if len(wl.Habits) != 7 || wl.Unit != "kg" {
		t.Errorf("weight-loss = %d habits, unit %q", len(wl.Habits), wl.Unit)
	}
	reading, err := ForGoal(constants.GoalReading)
	if err != nil {
		t.Fatalf("ForGoal(reading) error = %v", err)
	}
	if len(reading.Habits) != 4 {
		t.Errorf("reading has %d habits, want 4", len(reading.Habits))
	}
	if _, err := ForGoal("running"); err == nil {
		t.Error("expected error for unknown goal type")
	}
}

func TestHabit(t *testing.T) {
	h, ok := Habit(constants.GoalWeightLoss, "autophagy")
	if !ok || h.Frequency != constants.FrequencyFlexible {
		t.Errorf("autophagy = %+v, %v", h, ok)
	}
	if _, ok := Habit(constants.GoalReading, "gym"); ok {
		t.Error("gym should not be a reading template")
	}
}
