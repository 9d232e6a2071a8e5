// Package stats derives completion rates from habit logs.
package stats

import (
	"math"

	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/utils"
)

// Window returns the first and last day of the trailing window of n days ending on asOf.
func Window(asOf string, n int) (string, string) {
	if n < 1 {
		n = 1
	}
	return utils.AddDays(asOf, -(n - 1)), asOf
}

// CompletionRate returns round(100 * completed / logged) over the logs that
// fall inside the trailing window. No logs in the window is a rate of 0.
func CompletionRate(logs []models.HabitLog, asOf string, windowDays int) int {
	from, to := Window(asOf, windowDays)

	total, completed := 0, 0
	for _, l := range logs {
		if l.Day < from || l.Day > to {
			continue
		}
		total++
		if l.Completed {
			completed++
		}
	}
	return Percent(completed, total)
}

// Percent rounds 100*part/whole half away from zero, 0 when whole is 0.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}
