// Package projection estimates when a goal will be reached.
//
// The estimate is a straight line from the goal's creation: the average
// daily progress so far, extended until the target. It is not a regression
// over recent weeks.
package projection

import (
	"math"
	"time"

	"github.com/julianstephens/stride/internal/models"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusProjected Status = "projected"
	// StatusUnknown means there is no progress yet to extrapolate from
	StatusUnknown Status = "unknown"
)

// CompletedLabel is how a reached goal is presented instead of a date
const CompletedLabel = "Completed!"

type Projection struct {
	Status        Status     `json:"status"`
	Date          *time.Time `json:"date,omitempty"`
	DaysRemaining int        `json:"days_remaining,omitempty"`
	RatePerDay    float64    `json:"rate_per_day,omitempty"`
}

func (p Projection) String() string {
	switch p.Status {
	case StatusCompleted:
		return CompletedLabel
	case StatusProjected:
		return p.Date.Format("2006-01-02")
	}
	return "not enough progress to project"
}

// Project extrapolates goal completion from now.
//
// For increasing goals (reading) progress is the current value itself and the
// remaining distance is target minus current. Weight-loss goals measure
// progress as start minus current and the remaining distance as current
// minus target.
func Project(goal models.Goal, now time.Time) Projection {
	if goal.IsComplete() {
		return Projection{Status: StatusCompleted}
	}

	daysPassed := max(1, int(math.Floor(now.Sub(goal.CreatedAt).Hours()/24)))

	progress := goal.CurrentValue
	remaining := goal.TargetValue - goal.CurrentValue
	if goal.Decreasing() {
		progress = goal.StartValue - goal.CurrentValue
		remaining = goal.CurrentValue - goal.TargetValue
	}

	rate := progress / float64(daysPassed)
	if rate <= 0 {
		return Projection{Status: StatusUnknown}
	}

	daysRemaining := int(math.Ceil(remaining / rate))
	date := now.AddDate(0, 0, daysRemaining)
	return Projection{
		Status:        StatusProjected,
		Date:          &date,
		DaysRemaining: daysRemaining,
		RatePerDay:    rate,
	}
}
