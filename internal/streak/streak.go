// Package streak computes consecutive-day streaks from a habit's log history.
package streak

import (
	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/utils"
)

// Current walks backward from asOf one day at a time and counts completed days.
// A day with no completed log ends the walk, except asOf itself: today not
// yet logged is not a break. Days in protected (shielded days) never break the
// walk and count only when they also have a completed log. The walk is bounded
// to constants.StreakLookbackDays.
func Current(logs []models.HabitLog, asOf string, protected map[string]bool) int {
	completed := make(map[string]bool, len(logs))
	for _, l := range logs {
		if l.Completed {
			completed[l.Day] = true
		}
	}

	count := 0
	day := asOf
	for i := 0; i < constants.StreakLookbackDays; i++ {
		switch {
		case completed[day]:
			count++
		case day == asOf, protected[day]:
		default:
			return count
		}
		day = utils.AddDays(day, -1)
	}
	return count
}

// Compute returns the streak pair as of asOf. Longest never decreases below previousLongest.
func Compute(logs []models.HabitLog, asOf string, previousLongest int, protected map[string]bool) models.Streak {
	current := Current(logs, asOf, protected)
	return models.Streak{
		Current: current,
		Longest: max(previousLongest, current),
	}
}

// Broken reports whether a streak that was running has dropped to zero.
func Broken(before, after models.Streak) bool {
	return before.Current > 0 && after.Current == 0
}
