package models

import (
	"testing"

	"github.com/julianstephens/stride/internal/constants"
)

func TestSettingsMapRoundTrip(t *testing.T) {
	in := DefaultSettings("user-1")
	in.LastStreakRefresh = "2024-06-01"
	in.LastWeeklyCapture = "2024-06-01T23:55:00Z"

	out, err := MapToSettings(SettingsToMap(in))
	if err != nil {
		t.Fatalf("MapToSettings() error = %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestMapToSettingsInvalidWindow(t *testing.T) {
	_, err := MapToSettings(map[string]string{constants.SettingRateWindowDays: "week"})
	if err == nil {
		t.Error("expected error for non-numeric rate_window_days")
	}
}

func TestGoalIsComplete(t *testing.T) {
	tests := []struct {
		name string
		goal Goal
		want bool
	}{
		{"reading below target", Goal{Type: constants.GoalReading, CurrentValue: 3, TargetValue: 12}, false},
		{"reading at target", Goal{Type: constants.GoalReading, CurrentValue: 12, TargetValue: 12}, true},
		{"weight above target", Goal{Type: constants.GoalWeightLoss, CurrentValue: 80, TargetValue: 75}, false},
		{"weight at target", Goal{Type: constants.GoalWeightLoss, CurrentValue: 75, TargetValue: 75}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.goal.IsComplete(); got != tt.want {
				t.Errorf("IsComplete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHabitIsConflictTemplate(t *testing.T) {
	for _, tmpl := range []string{"omad", "moran", "autophagy"} {
		if !(Habit{TemplateID: tmpl}).IsConflictTemplate() {
			t.Errorf("%s should be a conflict template", tmpl)
		}
	}
	if (Habit{TemplateID: "gym"}).IsConflictTemplate() {
		t.Error("gym should not be a conflict template")
	}
}
