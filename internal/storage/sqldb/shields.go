package sqldb

import (
	"context"
	"fmt"

	"github.com/julianstephens/stride/internal/models"
)

const shieldColumns = "id, user_id, habit_id, day, used_at, expires_at"

func scanShield(row scanner) (models.StreakShield, error) {
	var s models.StreakShield
	var usedAt, expiresAt string
	err := row.Scan(&s.ID, &s.UserID, &s.HabitID, &s.Day, &usedAt, &expiresAt)
	if err != nil {
		return models.StreakShield{}, err
	}
	if s.UsedAt, err = parseTime(usedAt, "used_at"); err != nil {
		return models.StreakShield{}, err
	}
	if s.ExpiresAt, err = parseTime(expiresAt, "expires_at"); err != nil {
		return models.StreakShield{}, err
	}
	return s, nil
}

func (d *DB) AddShield(ctx context.Context, s models.StreakShield) error {
	_, err := d.exec(ctx, "INSERT INTO streak_shields ("+shieldColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		s.ID, s.UserID, s.HabitID, s.Day, formatTime(s.UsedAt), formatTime(s.ExpiresAt))
	if err != nil {
		return fmt.Errorf("inserting streak shield: %w", err)
	}
	return nil
}

func (d *DB) LatestShield(ctx context.Context, userID string) (models.StreakShield, error) {
	s, err := scanShield(d.queryRow(ctx,
		"SELECT "+shieldColumns+" FROM streak_shields WHERE user_id = ? ORDER BY used_at DESC LIMIT 1", userID))
	if err != nil {
		return models.StreakShield{}, notFound(err, "streak shield for user", userID)
	}
	return s, nil
}

func (d *DB) ListShields(ctx context.Context, userID string) ([]models.StreakShield, error) {
	rows, err := d.query(ctx,
		"SELECT "+shieldColumns+" FROM streak_shields WHERE user_id = ? ORDER BY used_at", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StreakShield
	for rows.Next() {
		s, err := scanShield(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
