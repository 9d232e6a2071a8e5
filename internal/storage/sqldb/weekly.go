package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/julianstephens/stride/internal/models"
)

const weeklyColumns = `id, goal_id, user_id, week_number, snapshot_date, week_start, week_end,
	weight_value, books_completed, habits_completed_count, total_habits_available,
	completion_rate, has_progress, progress_delta, notes, created_at, updated_at`

const weeklyValues = "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"

func weeklyArgs(w models.WeeklyProgress) []any {
	return []any{
		w.ID, w.GoalID, w.UserID, w.WeekNumber, w.SnapshotDate, w.WeekStart, w.WeekEnd,
		nullFloat(w.WeightValue), nullInt(w.BooksCompleted), w.HabitsCompletedCount, w.TotalHabitsAvailable,
		w.CompletionRate, w.HasProgress, nullFloat(w.ProgressDelta), w.Notes,
		formatTime(w.CreatedAt), formatTime(w.UpdatedAt),
	}
}

func scanWeekly(row scanner) (models.WeeklyProgress, error) {
	var w models.WeeklyProgress
	var weight, delta sql.NullFloat64
	var books sql.NullInt64
	var createdAt, updatedAt string
	err := row.Scan(&w.ID, &w.GoalID, &w.UserID, &w.WeekNumber, &w.SnapshotDate, &w.WeekStart, &w.WeekEnd,
		&weight, &books, &w.HabitsCompletedCount, &w.TotalHabitsAvailable,
		&w.CompletionRate, &w.HasProgress, &delta, &w.Notes, &createdAt, &updatedAt)
	if err != nil {
		return models.WeeklyProgress{}, err
	}
	if weight.Valid {
		v := weight.Float64
		w.WeightValue = &v
	}
	if books.Valid {
		v := int(books.Int64)
		w.BooksCompleted = &v
	}
	if delta.Valid {
		v := delta.Float64
		w.ProgressDelta = &v
	}
	if w.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return models.WeeklyProgress{}, err
	}
	if w.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return models.WeeklyProgress{}, err
	}
	return w, nil
}

func (d *DB) GetWeeklyProgress(ctx context.Context, goalID string, week int) (models.WeeklyProgress, error) {
	w, err := scanWeekly(d.queryRow(ctx,
		"SELECT "+weeklyColumns+" FROM weekly_progress WHERE goal_id = ? AND week_number = ?", goalID, week))
	if err != nil {
		return models.WeeklyProgress{}, notFound(err, "weekly progress", goalID+"#"+strconv.Itoa(week))
	}
	return w, nil
}

func (d *DB) UpsertWeeklyProgress(ctx context.Context, w models.WeeklyProgress) (models.WeeklyProgress, error) {
	_, err := d.exec(ctx, `
		INSERT INTO weekly_progress (`+weeklyColumns+`) VALUES `+weeklyValues+`
		ON CONFLICT (goal_id, week_number) DO UPDATE SET
			snapshot_date = excluded.snapshot_date,
			week_start = excluded.week_start,
			week_end = excluded.week_end,
			weight_value = excluded.weight_value,
			books_completed = excluded.books_completed,
			habits_completed_count = excluded.habits_completed_count,
			total_habits_available = excluded.total_habits_available,
			completion_rate = excluded.completion_rate,
			has_progress = excluded.has_progress,
			progress_delta = excluded.progress_delta,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		weeklyArgs(w)...)
	if err != nil {
		return models.WeeklyProgress{}, fmt.Errorf("upserting weekly progress: %w", err)
	}
	return d.GetWeeklyProgress(ctx, w.GoalID, w.WeekNumber)
}

func (d *DB) InsertWeeklyProgress(ctx context.Context, w models.WeeklyProgress) (bool, error) {
	res, err := d.exec(ctx, `
		INSERT INTO weekly_progress (`+weeklyColumns+`) VALUES `+weeklyValues+`
		ON CONFLICT (goal_id, week_number) DO NOTHING`,
		weeklyArgs(w)...)
	if err != nil {
		return false, fmt.Errorf("inserting weekly progress: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *DB) ListWeeklyProgress(ctx context.Context, goalID string) ([]models.WeeklyProgress, error) {
	rows, err := d.query(ctx,
		"SELECT "+weeklyColumns+" FROM weekly_progress WHERE goal_id = ? ORDER BY week_number", goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.WeeklyProgress
	for rows.Next() {
		w, err := scanWeekly(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
