package database

import (
	"context"
	"fmt"
	"strconv"

	"asterbot/internal/models"
)

func (db *DB) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM bot_settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", notFound(err, "setting "+key)
	}
	return value, nil
}

func (db *DB) SetSetting(ctx context.Context, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO bot_settings (key, value) VALUES (?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// IsBotOpen флаг открытого доступа; без записи бот закрыт.
func (db *DB) IsBotOpen(ctx context.Context) (bool, error) {
	value, err := db.GetSetting(ctx, models.SettingBotOpen)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	open, err := strconv.ParseBool(value)
	if err != nil {
		return false, nil
	}
	return open, nil
}

func (db *DB) SetBotOpen(ctx context.Context, open bool) error {
	return db.SetSetting(ctx, models.SettingBotOpen, strconv.FormatBool(open))
}
