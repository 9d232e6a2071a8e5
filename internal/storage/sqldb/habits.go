package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/models"
)

const habitColumns = `id, user_id, goal_id, name, description, frequency, template_id, color,
	current_streak, longest_streak, created_at`

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	var goalID sql.NullString
	var frequency, createdAt string
	err := row.Scan(&h.ID, &h.UserID, &goalID, &h.Name, &h.Description, &frequency, &h.TemplateID,
		&h.Color, &h.CurrentStreak, &h.LongestStreak, &createdAt)
	if err != nil {
		return models.Habit{}, err
	}
	h.GoalID = goalID.String
	h.Frequency = constants.Frequency(frequency)
	if h.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (d *DB) AddHabit(ctx context.Context, h models.Habit) error {
	_, err := d.exec(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.UserID, nullString(h.GoalID), h.Name, h.Description, string(h.Frequency), h.TemplateID,
		h.Color, h.CurrentStreak, h.LongestStreak, formatTime(h.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting habit: %w", err)
	}
	return nil
}

func (d *DB) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	h, err := scanHabit(d.queryRow(ctx, "SELECT "+habitColumns+" FROM habits WHERE id = ?", id))
	if err != nil {
		return models.Habit{}, notFound(err, "habit", id)
	}
	return h, nil
}

func (d *DB) listHabits(ctx context.Context, where string, args ...any) ([]models.Habit, error) {
	query := "SELECT " + habitColumns + " FROM habits"
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY created_at, id"

	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (d *DB) ListHabits(ctx context.Context, userID string) ([]models.Habit, error) {
	if userID == "" {
		return d.listHabits(ctx, "")
	}
	return d.listHabits(ctx, "user_id = ?", userID)
}

func (d *DB) ListGoalHabits(ctx context.Context, goalID string) ([]models.Habit, error) {
	return d.listHabits(ctx, "goal_id = ?", goalID)
}

func (d *DB) UpdateHabitStreak(ctx context.Context, habitID string, s models.Streak) error {
	res, err := d.exec(ctx, "UPDATE habits SET current_streak = ?, longest_streak = ? WHERE id = ?",
		s.Current, s.Longest, habitID)
	if err != nil {
		return fmt.Errorf("updating habit streak: %w", err)
	}
	return requireRow(res, "habit", habitID)
}

func (d *DB) DeleteHabit(ctx context.Context, id string) error {
	res, err := d.exec(ctx, "DELETE FROM habits WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting habit: %w", err)
	}
	return requireRow(res, "habit", id)
}
