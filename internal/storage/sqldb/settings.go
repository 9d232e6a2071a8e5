package sqldb

import (
	"context"
	"fmt"

	"github.com/julianstephens/stride/internal/models"
)

func (d *DB) GetSettings(ctx context.Context) (models.Settings, error) {
	rows, err := d.query(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, err
	}
	defer rows.Close()

	data := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, err
		}
		data[key] = value
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, err
	}
	if len(data) == 0 {
		return models.Settings{}, fmt.Errorf("settings not initialized")
	}
	return models.MapToSettings(data)
}

func (d *DB) SaveSettings(ctx context.Context, settings models.Settings) error {
	for key, value := range models.SettingsToMap(settings) {
		_, err := d.exec(ctx, `
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
		if err != nil {
			return fmt.Errorf("saving setting %s: %w", key, err)
		}
	}
	return nil
}
