package sqldb

import (
	"context"
	"fmt"

	"github.com/julianstephens/stride/internal/models"
)

const logColumns = "id, habit_id, user_id, day, completed, notes, created_at, updated_at"

func scanLog(row scanner) (models.HabitLog, error) {
	var l models.HabitLog
	var createdAt, updatedAt string
	err := row.Scan(&l.ID, &l.HabitID, &l.UserID, &l.Day, &l.Completed, &l.Notes, &createdAt, &updatedAt)
	if err != nil {
		return models.HabitLog{}, err
	}
	if l.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return models.HabitLog{}, err
	}
	if l.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return models.HabitLog{}, err
	}
	return l, nil
}

// UpsertHabitLog writes the single (habit, day) record. An existing row
// keeps its id and created_at.
func (d *DB) UpsertHabitLog(ctx context.Context, l models.HabitLog) (models.HabitLog, error) {
	_, err := d.exec(ctx, `
		INSERT INTO habit_logs (`+logColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (habit_id, day) DO UPDATE SET
			completed = excluded.completed,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		l.ID, l.HabitID, l.UserID, l.Day, l.Completed, l.Notes, formatTime(l.CreatedAt), formatTime(l.UpdatedAt))
	if err != nil {
		return models.HabitLog{}, fmt.Errorf("upserting habit log: %w", err)
	}
	return d.GetHabitLog(ctx, l.HabitID, l.Day)
}

func (d *DB) GetHabitLog(ctx context.Context, habitID, day string) (models.HabitLog, error) {
	l, err := scanLog(d.queryRow(ctx,
		"SELECT "+logColumns+" FROM habit_logs WHERE habit_id = ? AND day = ?", habitID, day))
	if err != nil {
		return models.HabitLog{}, notFound(err, "habit log", habitID+"@"+day)
	}
	return l, nil
}

func (d *DB) listLogs(ctx context.Context, column, value, from, to string) ([]models.HabitLog, error) {
	query := "SELECT " + logColumns + " FROM habit_logs WHERE " + column + " = ?"
	args := []any{value}
	if from != "" {
		query += " AND day >= ?"
		args = append(args, from)
	}
	if to != "" {
		query += " AND day <= ?"
		args = append(args, to)
	}
	query += " ORDER BY day, habit_id"

	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.HabitLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (d *DB) ListHabitLogs(ctx context.Context, habitID, from, to string) ([]models.HabitLog, error) {
	return d.listLogs(ctx, "habit_id", habitID, from, to)
}

func (d *DB) ListUserLogs(ctx context.Context, userID, from, to string) ([]models.HabitLog, error) {
	return d.listLogs(ctx, "user_id", userID, from, to)
}

// CountCompletedLogs counts the user's completed logs, restricted to habits
// with one of the given templates when templates is non-empty.
func (d *DB) CountCompletedLogs(ctx context.Context, userID string, templates []string) (int, error) {
	query := `
		SELECT COUNT(*) FROM habit_logs l
		JOIN habits h ON h.id = l.habit_id
		WHERE l.user_id = ? AND l.completed = ?`
	args := []any{userID, true}
	if len(templates) > 0 {
		query += " AND h.template_id IN (" + placeholders(len(templates)) + ")"
		for _, t := range templates {
			args = append(args, t)
		}
	}
	var n int
	if err := d.queryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting completed logs: %w", err)
	}
	return n, nil
}
