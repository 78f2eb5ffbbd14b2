package database

import (
	"context"
	"database/sql"
	"fmt"

	"asterbot/internal/models"
)

func (db *DB) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	now := db.utcNow()
	res, err := db.ExecContext(ctx,
		`INSERT INTO subscriptions (user_id, model, price_min, price_max, year_min, year_max, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sub.UserID, sub.Model, sub.PriceMin, sub.PriceMax, sub.YearMin, sub.YearMax, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	sub.ID = id
	sub.CreatedAt = now
	return nil
}

func (db *DB) ListSubscriptions(ctx context.Context, userID int64) ([]*models.Subscription, error) {
	return db.querySubscriptions(ctx,
		`SELECT id, user_id, model, price_min, price_max, year_min, year_max, created_at
         FROM subscriptions WHERE user_id = ? ORDER BY id`,
		userID,
	)
}

func (db *DB) ListAllSubscriptions(ctx context.Context) ([]*models.Subscription, error) {
	return db.querySubscriptions(ctx,
		`SELECT id, user_id, model, price_min, price_max, year_min, year_max, created_at
         FROM subscriptions ORDER BY id`,
	)
}

// DeleteSubscription удаляет подписку только ее владельца.
func (db *DB) DeleteSubscription(ctx context.Context, id, userID int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return expectAffected(res, "subscription")
}

func (db *DB) querySubscriptions(ctx context.Context, query string, args ...any) ([]*models.Subscription, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		var s models.Subscription
		var priceMin, priceMax, yearMin, yearMax sql.NullInt64
		if err := rows.Scan(&s.ID, &s.UserID, &s.Model, &priceMin, &priceMax, &yearMin, &yearMax, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		if priceMin.Valid {
			s.PriceMin = &priceMin.Int64
		}
		if priceMax.Valid {
			s.PriceMax = &priceMax.Int64
		}
		if yearMin.Valid {
			y := int(yearMin.Int64)
			s.YearMin = &y
		}
		if yearMax.Valid {
			y := int(yearMax.Int64)
			s.YearMax = &y
		}
		subs = append(subs, &s)
	}
	return subs, rows.Err()
}
