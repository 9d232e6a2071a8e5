package sqldb

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/models"
)

// InsertMissingAchievements adds catalog entries that are not yet stored and
// returns how many were inserted. Existing rows are left untouched.
func (d *DB) InsertMissingAchievements(ctx context.Context, entries []models.Achievement) (int, error) {
	inserted := 0
	for _, a := range entries {
		res, err := d.exec(ctx, `
			INSERT INTO achievements (id, name, description, icon, category, type, requirement, rarity, templates)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING`,
			a.ID, a.Name, a.Description, a.Icon, string(a.Category), a.Type, a.Requirement,
			string(a.Rarity), strings.Join(a.Templates, ","))
		if err != nil {
			return inserted, fmt.Errorf("inserting achievement %s: %w", a.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

func (d *DB) ListAchievements(ctx context.Context) ([]models.Achievement, error) {
	rows, err := d.query(ctx, `
		SELECT id, name, description, icon, category, type, requirement, rarity, templates
		FROM achievements ORDER BY category, requirement, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Achievement
	for rows.Next() {
		var a models.Achievement
		var category, rarity, templates string
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Icon, &category, &a.Type,
			&a.Requirement, &rarity, &templates); err != nil {
			return nil, err
		}
		a.Category = constants.AchievementCategory(category)
		a.Rarity = constants.Rarity(rarity)
		if templates != "" {
			a.Templates = strings.Split(templates, ",")
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (d *DB) ListUserAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error) {
	rows, err := d.query(ctx, `
		SELECT user_id, achievement_id, unlocked_at FROM user_achievements
		WHERE user_id = ? ORDER BY unlocked_at, achievement_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.UserAchievement
	for rows.Next() {
		var ua models.UserAchievement
		var unlockedAt string
		if err := rows.Scan(&ua.UserID, &ua.AchievementID, &unlockedAt); err != nil {
			return nil, err
		}
		if ua.UnlockedAt, err = parseTime(unlockedAt, "unlocked_at"); err != nil {
			return nil, err
		}
		out = append(out, ua)
	}
	return out, rows.Err()
}

func (d *DB) UnlockAchievement(ctx context.Context, ua models.UserAchievement) (bool, error) {
	res, err := d.exec(ctx, `
		INSERT INTO user_achievements (user_id, achievement_id, unlocked_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id, achievement_id) DO NOTHING`,
		ua.UserID, ua.AchievementID, formatTime(ua.UnlockedAt))
	if err != nil {
		return false, fmt.Errorf("unlocking achievement %s: %w", ua.AchievementID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *DB) DeleteUserAchievements(ctx context.Context, userID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := []any{userID}
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := d.exec(ctx,
		"DELETE FROM user_achievements WHERE user_id = ? AND achievement_id IN ("+placeholders(len(ids))+")",
		args...)
	if err != nil {
		return 0, fmt.Errorf("deleting user achievements: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}
