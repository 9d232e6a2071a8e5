// Package conflict resolves the omad/moran/autophagy exclusivity rule.
// At most one of {omad, moran} or autophagy may count as completed on a day.
package conflict

import (
	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/models"
)

// Write is one log upsert the caller must apply, in order.
type Write struct {
	HabitID   string `json:"habit_id"`
	Day       string `json:"day"`
	Completed bool   `json:"completed"`
	Notes     string `json:"notes,omitempty"`
	// Demoted marks a write forced by the conflict rule rather than requested
	Demoted bool `json:"demoted"`
}

// Plan returns the ordered writes that toggle target to completed on day.
// siblings are the habits competing with target (same goal); dayLogs are
// their logs for day. Demotions come first, the requested write last.
func Plan(target models.Habit, siblings []models.Habit, dayLogs []models.HabitLog, day string, completed bool, notes string) []Write {
	var writes []Write

	if completed && target.IsConflictTemplate() {
		done := completedOn(dayLogs, day)
		for _, h := range siblings {
			if h.ID == target.ID || !done[h.ID] || !supersedes(target.TemplateID, h.TemplateID) {
				continue
			}
			writes = append(writes, Write{HabitID: h.ID, Day: day, Completed: false, Demoted: true})
		}
	}

	return append(writes, Write{HabitID: target.ID, Day: day, Completed: completed, Notes: notes})
}

// supersedes reports whether completing template a forces b off for the day.
func supersedes(a, b string) bool {
	switch a {
	case constants.TemplateAutophagy:
		return b == constants.TemplateOMAD || b == constants.TemplateMoran
	case constants.TemplateOMAD, constants.TemplateMoran:
		return b == constants.TemplateAutophagy
	}
	return false
}

// MaxAchievable is the number of habits that can count as completed on the
// day. It is the denominator of the day's completion percentage.
//
//	max = total - conflictPresent + (1 if autophagy completed else omad+moran present)
//
// A goal whose only conflict habit is an uncompleted autophagy still offers
// that one slot.
func MaxAchievable(habits []models.Habit, dayLogs []models.HabitLog, day string) int {
	total := len(habits)
	done := completedOn(dayLogs, day)

	conflictPresent, omadMoran := 0, 0
	autophagyPresent, autophagyDone := false, false
	for _, h := range habits {
		switch h.TemplateID {
		case constants.TemplateOMAD, constants.TemplateMoran:
			conflictPresent++
			omadMoran++
		case constants.TemplateAutophagy:
			conflictPresent++
			autophagyPresent = true
			if done[h.ID] {
				autophagyDone = true
			}
		}
	}

	if conflictPresent == 0 {
		return total
	}
	if autophagyDone {
		return total - conflictPresent + 1
	}
	if omadMoran == 0 && autophagyPresent {
		return total - conflictPresent + 1
	}
	return total - conflictPresent + omadMoran
}

// CompletedCount counts habits with a completed log on day, honoring the
// exclusivity rule so the count never exceeds MaxAchievable.
func CompletedCount(habits []models.Habit, dayLogs []models.HabitLog, day string) int {
	done := completedOn(dayLogs, day)
	count := 0
	for _, h := range habits {
		if done[h.ID] {
			count++
		}
	}
	return min(count, MaxAchievable(habits, dayLogs, day))
}

func completedOn(logs []models.HabitLog, day string) map[string]bool {
	done := make(map[string]bool, len(logs))
	for _, l := range logs {
		if l.Day == day && l.Completed {
			done[l.HabitID] = true
		}
	}
	return done
}
