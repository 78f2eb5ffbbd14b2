package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"asterbot/internal/filters"
	"asterbot/internal/models"
)

// Счетчики дневной статистики.
const (
	StatMessagesSent = "messages_sent"
	StatLinksSent    = "links_sent"
)

const dateLayout = "2006-01-02"

// IncrementStat увеличивает счетчик за день now и обновляет снимок числа пользователей.
func (db *DB) IncrementStat(ctx context.Context, counter string, now time.Time) error {
	if counter != StatMessagesSent && counter != StatLinksSent {
		return fmt.Errorf("unknown statistics counter %q", counter)
	}

	dayStart := startOfDay(now)
	total, err := db.CountUsers(ctx)
	if err != nil {
		return err
	}
	newUsers, err := db.CountUsersJoinedSince(ctx, dayStart)
	if err != nil {
		return err
	}

	query := `INSERT INTO statistics (date, total_users, new_users, ` + counter + `)
              VALUES (?, ?, ?, 1)
              ON CONFLICT(date) DO UPDATE SET
                total_users = excluded.total_users,
                new_users = excluded.new_users,
                ` + counter + ` = ` + counter + ` + 1`
	if _, err := db.ExecContext(ctx, query, dayStart.Format(dateLayout), total, newUsers); err != nil {
		return fmt.Errorf("failed to update statistics: %w", err)
	}
	return nil
}

func (db *DB) GetDailyStatistics(ctx context.Context, day time.Time) (*models.DailyStatistics, error) {
	var s models.DailyStatistics
	err := db.QueryRowContext(ctx,
		`SELECT date, total_users, new_users, messages_sent, links_sent FROM statistics WHERE date = ?`,
		startOfDay(day).Format(dateLayout),
	).Scan(&s.Date, &s.TotalUsers, &s.NewUsers, &s.MessagesSent, &s.LinksSent)
	if err != nil {
		return nil, notFound(err, "statistics")
	}
	return &s, nil
}

// GetSelectionStats сводка бота подбора: пользователи, новые за день now, сумма счетчиков.
func (db *DB) GetSelectionStats(ctx context.Context, now time.Time) (*models.SelectionStats, error) {
	var stats models.SelectionStats
	var err error

	if stats.TotalUsers, err = db.CountUsers(ctx); err != nil {
		return nil, err
	}
	if stats.NewUsersToday, err = db.CountUsersJoinedSince(ctx, startOfDay(now)); err != nil {
		return nil, err
	}
	err = db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(messages_sent), 0), COALESCE(SUM(links_sent), 0) FROM statistics`,
	).Scan(&stats.MessagesSent, &stats.LinksSent)
	if err != nil {
		return nil, fmt.Errorf("failed to sum statistics: %w", err)
	}
	return &stats, nil
}

// GetSalesStats сводка бота продаж; активные считаются с activeSince.
func (db *DB) GetSalesStats(ctx context.Context, activeSince time.Time) (*models.SalesStats, error) {
	var stats models.SalesStats
	var err error

	if stats.TotalUsers, err = db.CountUsers(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveUsers, err = db.CountUsersActiveSince(ctx, activeSince); err != nil {
		return nil, err
	}
	if stats.Ads, err = db.CountAds(ctx); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SaveUserRequest сохраняет извлеченные из диалога фильтры.
func (db *DB) SaveUserRequest(ctx context.Context, userID int64, preferences filters.Set) error {
	data, err := json.Marshal(preferences)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO user_requests (user_id, preferences, created_at) VALUES (?, ?, ?)`,
		userID, string(data), db.utcNow(),
	)
	if err != nil {
		return fmt.Errorf("failed to save user request: %w", err)
	}
	return nil
}

// LatestPreferences последние сохраненные фильтры пользователя; ErrNotFound, если их нет.
func (db *DB) LatestPreferences(ctx context.Context, userID int64) (filters.Set, error) {
	var raw string
	err := db.QueryRowContext(ctx,
		`SELECT preferences FROM user_requests WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		userID,
	).Scan(&raw)
	if err != nil {
		return nil, notFound(err, "user request")
	}

	var prefs filters.Set
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return prefs, nil
}

func (db *DB) ListUserRequests(ctx context.Context, userID int64) ([]models.UserRequest, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, preferences, created_at FROM user_requests WHERE user_id = ? ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list user requests: %w", err)
	}
	defer rows.Close()

	var out []models.UserRequest
	for rows.Next() {
		var r models.UserRequest
		var raw string
		if err := rows.Scan(&r.ID, &r.UserID, &raw, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user request: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &r.Preferences); err != nil {
			return nil, fmt.Errorf("failed to decode preferences: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
