package tracker

import (
	"context"
	"fmt"

	"github.com/julianstephens/stride/internal/conflict"
	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/logger"
	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/observability"
	"github.com/julianstephens/stride/internal/storage"
	"github.com/julianstephens/stride/internal/streak"
	"github.com/julianstephens/stride/internal/utils"
)

// streakChange is the before/after streak of one habit touched by a write.
type streakChange struct {
	habit  models.Habit
	before models.Streak
	after  models.Streak
}

// LogHabitCompletion upserts the (habit, day) record. Completing a habit in
// the omad/moran/autophagy group first demotes the competing habits, exactly
// as ResolveConflictsAndToggle does. Returns the stored record.
func (s *Service) LogHabitCompletion(ctx context.Context, habitID, day string, completed bool, notes string) (models.HabitLog, error) {
	_, record, err := s.toggle(ctx, habitID, day, completed, notes)
	return record, err
}

// ResolveConflictsAndToggle sets the habit's completion for day and returns
// every write applied, demotions first.
func (s *Service) ResolveConflictsAndToggle(ctx context.Context, habitID, day string, completed bool) ([]conflict.Write, error) {
	writes, _, err := s.toggle(ctx, habitID, day, completed, "")
	return writes, err
}

// LogHabit is LogHabitCompletion that also reports every write applied.
func (s *Service) LogHabit(ctx context.Context, habitID, day string, completed bool, notes string) ([]conflict.Write, models.HabitLog, error) {
	return s.toggle(ctx, habitID, day, completed, notes)
}

func (s *Service) toggle(ctx context.Context, habitID, day string, completed bool, notes string) ([]conflict.Write, models.HabitLog, error) {
	today, err := s.Today(ctx)
	if err != nil {
		return nil, models.HabitLog{}, err
	}
	if err := checkDay(day, today); err != nil {
		return nil, models.HabitLog{}, err
	}

	var (
		writes  []conflict.Write
		record  models.HabitLog
		changes []streakChange
	)
	err = s.store.WithTx(ctx, func(tx storage.Store) error {
		target, err := tx.GetHabit(ctx, habitID)
		if err != nil {
			return err
		}
		siblings, err := siblingsOf(ctx, tx, target)
		if err != nil {
			return err
		}
		dayLogs, err := tx.ListUserLogs(ctx, target.UserID, day, day)
		if err != nil {
			return err
		}

		writes = conflict.Plan(target, siblings, dayLogs, day, completed, notes)
		byID := make(map[string]models.Habit, len(siblings)+1)
		byID[target.ID] = target
		for _, h := range siblings {
			byID[h.ID] = h
		}
		existingNotes := make(map[string]string, len(dayLogs))
		for _, l := range dayLogs {
			existingNotes[l.HabitID] = l.Notes
		}

		for _, w := range writes {
			h := byID[w.HabitID]
			n := w.Notes
			if w.Demoted {
				n = existingNotes[w.HabitID]
			}
			stored, err := s.upsertLog(ctx, tx, h, w.Day, w.Completed, n)
			if err != nil {
				return err
			}
			observability.RecordHabitLogWrite(w.Completed, w.Demoted)
			change, err := s.recomputeStreak(ctx, tx, h, today)
			if err != nil {
				return err
			}
			changes = append(changes, change)
			if w.HabitID == target.ID && !w.Demoted {
				record = stored
			}
		}
		return nil
	})
	if err != nil {
		return nil, models.HabitLog{}, err
	}

	s.afterLogWrite(ctx, changes, record)
	return writes, record, nil
}

// siblingsOf returns the habits competing with h for the conflict rule: the
// same user's habits in the same goal, or the user's unattached habits.
func siblingsOf(ctx context.Context, st storage.Store, h models.Habit) ([]models.Habit, error) {
	if h.GoalID != "" {
		return st.ListGoalHabits(ctx, h.GoalID)
	}
	all, err := st.ListHabits(ctx, h.UserID)
	if err != nil {
		return nil, err
	}
	var out []models.Habit
	for _, other := range all {
		if other.GoalID == "" {
			out = append(out, other)
		}
	}
	return out, nil
}

func (s *Service) upsertLog(ctx context.Context, st storage.Store, h models.Habit, day string, completed bool, notes string) (models.HabitLog, error) {
	now := s.Now()
	return st.UpsertHabitLog(ctx, models.HabitLog{
		ID:        newID(),
		HabitID:   h.ID,
		UserID:    h.UserID,
		Day:       day,
		Completed: completed,
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// protectedDays returns the days covered by the user's shields for habit h.
func protectedDays(ctx context.Context, st storage.Store, h models.Habit) (map[string]bool, error) {
	shields, err := st.ListShields(ctx, h.UserID)
	if err != nil {
		return nil, err
	}
	days := make(map[string]bool, len(shields))
	for _, sh := range shields {
		if sh.HabitID == "" || sh.HabitID == h.ID {
			days[sh.Day] = true
		}
	}
	return days, nil
}

// computeStreak evaluates the habit's streak as of asOf from its stored logs.
func computeStreak(ctx context.Context, st storage.Store, h models.Habit, asOf string) (models.Streak, error) {
	logs, err := st.ListHabitLogs(ctx, h.ID, utils.AddDays(asOf, -constants.StreakLookbackDays), asOf)
	if err != nil {
		return models.Streak{}, fmt.Errorf("loading logs for habit %s: %w", h.ID, err)
	}
	protected, err := protectedDays(ctx, st, h)
	if err != nil {
		return models.Streak{}, err
	}
	return streak.Compute(logs, asOf, h.LongestStreak, protected), nil
}

// recomputeStreak refreshes and persists the habit's cached streak. It runs
// after every log write, completed or not.
func (s *Service) recomputeStreak(ctx context.Context, st storage.Store, h models.Habit, asOf string) (streakChange, error) {
	before := models.Streak{Current: h.CurrentStreak, Longest: h.LongestStreak}
	after, err := computeStreak(ctx, st, h, asOf)
	if err != nil {
		return streakChange{}, err
	}
	if after != before {
		if err := st.UpdateHabitStreak(ctx, h.ID, after); err != nil {
			return streakChange{}, err
		}
	}
	h.CurrentStreak, h.LongestStreak = after.Current, after.Longest
	return streakChange{habit: h, before: before, after: after}, nil
}

// afterLogWrite runs the follow-ups of a committed log write. Nothing here
// can fail the write.
func (s *Service) afterLogWrite(ctx context.Context, changes []streakChange, record models.HabitLog) {
	broken := false
	for _, c := range changes {
		if streak.Broken(c.before, c.after) {
			broken = true
		}
	}
	if len(changes) == 0 {
		return
	}
	userID := changes[0].habit.UserID
	if broken {
		if _, err := s.RevokeStreakBadges(ctx, userID); err != nil {
			observability.RecordFanoutFailure("achievement")
			logger.Warn("Failed to revoke streak badges", "user", userID, "error", err)
		}
	}

	if !record.Completed {
		return
	}
	var target streakChange
	for _, c := range changes {
		if c.habit.ID == record.HabitID {
			target = c
		}
	}
	h := target.habit
	current := target.after.Current

	unlocked, err := s.unlock(ctx, userID, constants.CategoryStreak, current, h.TemplateID)
	if err != nil {
		observability.RecordFanoutFailure("achievement")
		logger.Warn("Failed to check streak achievements", "user", userID, "habit", h.ID, "error", err)
	}
	sessions, err := s.unlockConsistency(ctx, userID)
	if err != nil {
		observability.RecordFanoutFailure("achievement")
		logger.Warn("Failed to check consistency achievements", "user", userID, "error", err)
	}
	s.announceUnlocks(ctx, append(unlocked, sessions...))

	s.publish(ctx, userID, constants.ActivityHabitCompleted, fmt.Sprintf("completed %s", h.Name))
	if target.after.Current != target.before.Current && streak.IsMilestone(current) {
		msg := fmt.Sprintf("reached a %d-day streak on %s", current, h.Name)
		s.publish(ctx, userID, constants.ActivityStreakMilestone, msg)
		s.notify(ctx, fmt.Sprintf("🔥 %d-day streak: %s", current, h.Name))
	}
}

// announceUnlocks sends one notification per newly unlocked achievement.
func (s *Service) announceUnlocks(ctx context.Context, ids []string) {
	for _, id := range ids {
		if a, ok := s.catalog.Get(id); ok {
			s.notify(ctx, fmt.Sprintf("%s Achievement unlocked: %s", a.Icon, a.Name))
		}
	}
}
