package sqldb

import (
	"context"
	"fmt"

	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/models"
)

const goalColumns = `id, user_id, type, title, start_value, target_value, current_value,
	unit, start_date, deadline, duration_weeks, created_at`

func scanGoal(row scanner) (models.Goal, error) {
	var g models.Goal
	var goalType, createdAt string
	err := row.Scan(&g.ID, &g.UserID, &goalType, &g.Title, &g.StartValue, &g.TargetValue,
		&g.CurrentValue, &g.Unit, &g.StartDate, &g.Deadline, &g.DurationWeeks, &createdAt)
	if err != nil {
		return models.Goal{}, err
	}
	g.Type = constants.GoalType(goalType)
	if g.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return models.Goal{}, err
	}
	return g, nil
}

func (d *DB) AddGoal(ctx context.Context, g models.Goal) error {
	_, err := d.exec(ctx, `
		INSERT INTO goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, string(g.Type), g.Title, g.StartValue, g.TargetValue, g.CurrentValue,
		g.Unit, g.StartDate, g.Deadline, g.DurationWeeks, formatTime(g.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting goal: %w", err)
	}
	return nil
}

func (d *DB) GetGoal(ctx context.Context, id string) (models.Goal, error) {
	g, err := scanGoal(d.queryRow(ctx, "SELECT "+goalColumns+" FROM goals WHERE id = ?", id))
	if err != nil {
		return models.Goal{}, notFound(err, "goal", id)
	}
	return g, nil
}

func (d *DB) ListGoals(ctx context.Context, userID string) ([]models.Goal, error) {
	query := "SELECT " + goalColumns + " FROM goals"
	var args []any
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY created_at, id"

	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (d *DB) UpdateGoal(ctx context.Context, g models.Goal) error {
	res, err := d.exec(ctx, `
		UPDATE goals SET title = ?, target_value = ?, current_value = ?, deadline = ?, duration_weeks = ?
		WHERE id = ?`,
		g.Title, g.TargetValue, g.CurrentValue, g.Deadline, g.DurationWeeks, g.ID)
	if err != nil {
		return fmt.Errorf("updating goal: %w", err)
	}
	return requireRow(res, "goal", g.ID)
}

// DeleteGoal removes the goal; habits, logs, progress logs and snapshots
// go with it through ON DELETE CASCADE.
func (d *DB) DeleteGoal(ctx context.Context, id string) error {
	res, err := d.exec(ctx, "DELETE FROM goals WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting goal: %w", err)
	}
	return requireRow(res, "goal", id)
}

func (d *DB) AddProgressLog(ctx context.Context, p models.ProgressLog) error {
	_, err := d.exec(ctx, `
		INSERT INTO progress_logs (id, goal_id, day, value, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.GoalID, p.Day, p.Value, p.Notes, formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting progress log: %w", err)
	}
	return nil
}

const progressColumns = "id, goal_id, day, value, notes, created_at"

func scanProgress(row scanner) (models.ProgressLog, error) {
	var p models.ProgressLog
	var createdAt string
	if err := row.Scan(&p.ID, &p.GoalID, &p.Day, &p.Value, &p.Notes, &createdAt); err != nil {
		return models.ProgressLog{}, err
	}
	var err error
	if p.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return models.ProgressLog{}, err
	}
	return p, nil
}

func (d *DB) LatestProgressLog(ctx context.Context, goalID string) (models.ProgressLog, error) {
	p, err := scanProgress(d.queryRow(ctx, `
		SELECT `+progressColumns+` FROM progress_logs
		WHERE goal_id = ? ORDER BY created_at DESC, day DESC LIMIT 1`, goalID))
	if err != nil {
		return models.ProgressLog{}, notFound(err, "progress log for goal", goalID)
	}
	return p, nil
}

func (d *DB) ListProgressLogs(ctx context.Context, goalID string) ([]models.ProgressLog, error) {
	rows, err := d.query(ctx, `
		SELECT `+progressColumns+` FROM progress_logs
		WHERE goal_id = ? ORDER BY created_at, day`, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ProgressLog
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
