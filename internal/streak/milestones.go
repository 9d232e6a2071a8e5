package streak

import "github.com/julianstephens/stride/internal/constants"

// Milestones summarizes a streak against constants.StreakMilestones
type Milestones struct {
	Reached    []int `json:"reached"`
	Next       int   `json:"next,omitempty"` // 0 once every milestone is reached
	DaysToNext int   `json:"days_to_next,omitempty"`
}

func MilestonesFor(current int) Milestones {
	m := Milestones{Reached: []int{}}
	for _, ms := range constants.StreakMilestones {
		if current >= ms {
			m.Reached = append(m.Reached, ms)
			continue
		}
		if m.Next == 0 {
			m.Next = ms
			m.DaysToNext = ms - current
		}
	}
	return m
}

// IsMilestone reports whether n is exactly one of the milestone lengths.
func IsMilestone(n int) bool {
	for _, ms := range constants.StreakMilestones {
		if n == ms {
			return true
		}
	}
	return false
}
