package projection

import (
	"testing"
	"time"

	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/models"
)

func TestProject(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	tenDaysAgo := now.AddDate(0, 0, -10)

	tests := []struct {
		name       string
		goal       models.Goal
		wantStatus Status
		wantDays   int
	}{
		{
			name:       "half a unit per day",
			goal:       models.Goal{Type: constants.GoalReading, CurrentValue: 5, TargetValue: 20, CreatedAt: tenDaysAgo},
			wantStatus: StatusProjected,
			wantDays:   30,
		},
		{
			name:       "no progress",
			goal:       models.Goal{Type: constants.GoalReading, CurrentValue: 0, TargetValue: 20, CreatedAt: tenDaysAgo},
			wantStatus: StatusUnknown,
		},
		{
			name:       "complete regardless of elapsed time",
			goal:       models.Goal{Type: constants.GoalReading, CurrentValue: 20, TargetValue: 20, CreatedAt: now},
			wantStatus: StatusCompleted,
		},
		{
			name:       "created today counts as one day",
			goal:       models.Goal{Type: constants.GoalReading, CurrentValue: 2, TargetValue: 10, CreatedAt: now.Add(-3 * time.Hour)},
			wantStatus: StatusProjected,
			wantDays:   4,
		},
		{
			name:       "weight loss measures distance from the start",
			goal:       models.Goal{Type: constants.GoalWeightLoss, StartValue: 90, CurrentValue: 85, TargetValue: 75, CreatedAt: tenDaysAgo},
			wantStatus: StatusProjected,
			wantDays:   20,
		},
		{
			name:       "weight gained is no progress",
			goal:       models.Goal{Type: constants.GoalWeightLoss, StartValue: 90, CurrentValue: 91, TargetValue: 75, CreatedAt: tenDaysAgo},
			wantStatus: StatusUnknown,
		},
		{
			name:       "weight at target",
			goal:       models.Goal{Type: constants.GoalWeightLoss, StartValue: 90, CurrentValue: 74.5, TargetValue: 75, CreatedAt: tenDaysAgo},
			wantStatus: StatusCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(tt.goal, now)
			if got.Status != tt.wantStatus {
				t.Fatalf("Status = %s, want %s", got.Status, tt.wantStatus)
			}
			if tt.wantStatus != StatusProjected {
				if got.Date != nil {
					t.Errorf("Date = %v, want nil", got.Date)
				}
				return
			}
			if got.DaysRemaining != tt.wantDays {
				t.Errorf("DaysRemaining = %d, want %d", got.DaysRemaining, tt.wantDays)
			}
			if want := now.AddDate(0, 0, tt.wantDays); !got.Date.Equal(want) {
				t.Errorf("Date = %v, want %v", got.Date, want)
			}
		})
	}
}

func TestProjectionString(t *testing.T) {
	if got := (Projection{Status: StatusCompleted}).String(); got != "Completed!" {
		t.Errorf("String() = %q, want Completed!", got)
	}
	d := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	if got := (Projection{Status: StatusProjected, Date: &d}).String(); got != "2024-07-15" {
		t.Errorf("String() = %q", got)
	}
}
