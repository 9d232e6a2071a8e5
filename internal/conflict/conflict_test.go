package conflict

import (
	"testing"

	"github.com/julianstephens/stride/internal/models"
)

const day = "2024-06-15"

var (
	omad      = models.Habit{ID: "omad", TemplateID: "omad"}
	moran     = models.Habit{ID: "moran", TemplateID: "moran"}
	autophagy = models.Habit{ID: "auto", TemplateID: "autophagy"}
	gym       = models.Habit{ID: "gym", TemplateID: "gym"}
)

func done(ids ...string) []models.HabitLog {
	var logs []models.HabitLog
	for _, id := range ids {
		logs = append(logs, models.HabitLog{HabitID: id, Day: day, Completed: true})
	}
	return logs
}

func TestPlan(t *testing.T) {
	all := []models.Habit{omad, moran, autophagy, gym}

	tests := []struct {
		name      string
		target    models.Habit
		logs      []models.HabitLog
		completed bool
		want      []Write
	}{
		{
			name:      "autophagy demotes omad and moran",
			target:    autophagy,
			logs:      done("omad", "moran"),
			completed: true,
			want: []Write{
				{HabitID: "omad", Day: day, Demoted: true},
				{HabitID: "moran", Day: day, Demoted: true},
				{HabitID: "auto", Day: day, Completed: true},
			},
		},
		{
			name:      "omad demotes autophagy",
			target:    omad,
			logs:      done("auto"),
			completed: true,
			want: []Write{
				{HabitID: "auto", Day: day, Demoted: true},
				{HabitID: "omad", Day: day, Completed: true},
			},
		},
		{
			name:      "omad leaves moran alone",
			target:    omad,
			logs:      done("moran", "gym"),
			completed: true,
			want:      []Write{{HabitID: "omad", Day: day, Completed: true}},
		},
		{
			name:      "uncompleting never cascades",
			target:    autophagy,
			logs:      done("omad", "auto"),
			completed: false,
			want:      []Write{{HabitID: "auto", Day: day}},
		},
		{
			name:      "non-conflict habit",
			target:    gym,
			logs:      done("auto"),
			completed: true,
			want:      []Write{{HabitID: "gym", Day: day, Completed: true}},
		},
		{
			name:      "logs on other days are ignored",
			target:    autophagy,
			logs:      []models.HabitLog{{HabitID: "omad", Day: "2024-06-14", Completed: true}},
			completed: true,
			want:      []Write{{HabitID: "auto", Day: day, Completed: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.target, all, tt.logs, day, tt.completed, "")
			if len(got) != len(tt.want) {
				t.Fatalf("Plan() = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("write %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMaxAchievable(t *testing.T) {
	tests := []struct {
		name   string
		habits []models.Habit
		logs   []models.HabitLog
		want   int
	}{
		{name: "no conflict templates", habits: []models.Habit{gym, {ID: "walk", TemplateID: "walking"}}, want: 2},
		{name: "all three before completion", habits: []models.Habit{omad, moran, autophagy}, want: 2},
		{name: "all three after autophagy", habits: []models.Habit{omad, moran, autophagy}, logs: done("auto"), want: 1},
		{name: "mixed with gym", habits: []models.Habit{omad, autophagy, gym}, want: 2},
		{name: "mixed with gym after autophagy", habits: []models.Habit{omad, autophagy, gym}, logs: done("auto", "gym"), want: 2},
		{name: "autophagy alone", habits: []models.Habit{autophagy}, want: 1},
		{name: "no habits", habits: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxAchievable(tt.habits, tt.logs, day); got != tt.want {
				t.Errorf("MaxAchievable() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCompletedCountIsCapped(t *testing.T) {
	habits := []models.Habit{omad, moran, autophagy}
	// a state the resolver never produces, but stored data may contain
	if got := CompletedCount(habits, done("omad", "moran", "auto"), day); got != 1 {
		t.Errorf("CompletedCount() = %d, want 1", got)
	}
	if got := CompletedCount(habits, done("omad", "moran"), day); got != 2 {
		t.Errorf("CompletedCount() = %d, want 2", got)
	}
}
