package database

import (
	"context"
	"errors"
	"fmt"

	"asterbot/internal/models"

	"github.com/mattn/go-sqlite3"
)

// ErrPrizeAlreadyAssigned у пользователя уже есть приз акции.
var ErrPrizeAlreadyAssigned = errors.New("prize already assigned")

func (db *DB) ListPrizes(ctx context.Context) ([]models.Prize, error) {
	rows, err := db.QueryContext(ctx, `SELECT prize_id, prize_name FROM prizes ORDER BY prize_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list prizes: %w", err)
	}
	defer rows.Close()

	var out []models.Prize
	for rows.Next() {
		var p models.Prize
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan prize: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AssignPrize выдает приз. Второй приз тому же пользователю дает ErrPrizeAlreadyAssigned.
func (db *DB) AssignPrize(ctx context.Context, userID, prizeID int64, promoCode string) (*models.UserPrize, error) {
	now := db.utcNow()
	_, err := db.ExecContext(ctx,
		`INSERT INTO user_prizes (user_id, prize_id, promo_code, won_at) VALUES (?, ?, ?, ?)`,
		userID, prizeID, promoCode, now,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return nil, ErrPrizeAlreadyAssigned
		}
		return nil, fmt.Errorf("failed to assign prize: %w", err)
	}
	return db.GetUserPrize(ctx, userID)
}

func (db *DB) GetUserPrize(ctx context.Context, userID int64) (*models.UserPrize, error) {
	var up models.UserPrize
	err := db.QueryRowContext(ctx,
		`SELECT up.user_id, up.prize_id, p.prize_name, up.promo_code, up.won_at
         FROM user_prizes up JOIN prizes p ON p.prize_id = up.prize_id
         WHERE up.user_id = ?`,
		userID,
	).Scan(&up.UserID, &up.PrizeID, &up.PrizeName, &up.PromoCode, &up.WonAt)
	if err != nil {
		return nil, notFound(err, "user prize")
	}
	return &up, nil
}

// ListUserPrizes призы пользователя для экрана "Мои призы".
func (db *DB) ListUserPrizes(ctx context.Context, userID int64) ([]models.UserPrize, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT up.user_id, up.prize_id, p.prize_name, up.promo_code, up.won_at
         FROM user_prizes up JOIN prizes p ON p.prize_id = up.prize_id
         WHERE up.user_id = ? ORDER BY up.won_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list user prizes: %w", err)
	}
	defer rows.Close()

	var out []models.UserPrize
	for rows.Next() {
		var up models.UserPrize
		if err := rows.Scan(&up.UserID, &up.PrizeID, &up.PrizeName, &up.PromoCode, &up.WonAt); err != nil {
			return nil, fmt.Errorf("failed to scan user prize: %w", err)
		}
		out = append(out, up)
	}
	return out, rows.Err()
}

// PurgePrizes удаляет все выданные призы (еженедельный сброс акции).
func (db *DB) PurgePrizes(ctx context.Context) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM user_prizes`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge prizes: %w", err)
	}
	return res.RowsAffected()
}
