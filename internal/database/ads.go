package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"asterbot/internal/models"
)

const adColumns = `ad_id, title, model, year, price, description,
                   photos, inspection_photos, thickness_photos, created_at`

// CreateAd сохраняет объявление и заполняет ID и CreatedAt.
func (db *DB) CreateAd(ctx context.Context, ad *models.Ad) error {
	photos, inspection, thickness, err := encodePhotos(ad)
	if err != nil {
		return err
	}

	now := db.utcNow()
	res, err := db.ExecContext(ctx,
		`INSERT INTO ads (title, model, year, price, description, photos, inspection_photos, thickness_photos, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ad.Title, ad.Model, ad.Year, ad.Price, ad.Description, photos, inspection, thickness, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create ad: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	ad.ID = id
	ad.CreatedAt = now
	return nil
}

func (db *DB) GetAd(ctx context.Context, id int64) (*models.Ad, error) {
	row := db.QueryRowContext(ctx, `SELECT `+adColumns+` FROM ads WHERE ad_id = ?`, id)
	ad, err := scanAd(row)
	if err != nil {
		return nil, notFound(err, "ad")
	}
	return ad, nil
}

// ListAds все объявления в порядке добавления.
func (db *DB) ListAds(ctx context.Context) ([]*models.Ad, error) {
	return db.queryAds(ctx, `SELECT `+adColumns+` FROM ads ORDER BY ad_id`)
}

// DeleteAd удаляет объявление вместе с отметками избранного.
func (db *DB) DeleteAd(ctx context.Context, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE ad_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete favorites: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM ads WHERE ad_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ad: %w", err)
	}
	if err := expectAffected(res, "ad"); err != nil {
		return err
	}
	return tx.Commit()
}

func (db *DB) CountAds(ctx context.Context) (int, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM ads`)
}

// CountAdsSince объявления, добавленные начиная с since.
func (db *DB) CountAdsSince(ctx context.Context, since time.Time) (int, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM ads WHERE created_at >= ?`, since.UTC())
}

func (db *DB) IsFavorite(ctx context.Context, userID, adID int64) (bool, error) {
	n, err := db.count(ctx, `SELECT COUNT(*) FROM favorites WHERE user_id = ? AND ad_id = ?`, userID, adID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AddFavorite идемпотентна.
func (db *DB) AddFavorite(ctx context.Context, userID, adID int64) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO favorites (user_id, ad_id, created_at) VALUES (?, ?, ?)`,
		userID, adID, db.utcNow(),
	)
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite идемпотентна.
func (db *DB) RemoveFavorite(ctx context.Context, userID, adID int64) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ? AND ad_id = ?`, userID, adID); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

func (db *DB) ListFavoriteAds(ctx context.Context, userID int64) ([]*models.Ad, error) {
	return db.queryAds(ctx,
		`SELECT a.ad_id, a.title, a.model, a.year, a.price, a.description,
                a.photos, a.inspection_photos, a.thickness_photos, a.created_at
         FROM ads a JOIN favorites f ON f.ad_id = a.ad_id
         WHERE f.user_id = ? ORDER BY f.created_at, a.ad_id`,
		userID,
	)
}

func (db *DB) queryAds(ctx context.Context, query string, args ...any) ([]*models.Ad, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ads: %w", err)
	}
	defer rows.Close()

	var ads []*models.Ad
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ad: %w", err)
		}
		ads = append(ads, ad)
	}
	return ads, rows.Err()
}

func scanAd(row rowScanner) (*models.Ad, error) {
	var ad models.Ad
	var photos, inspection, thickness string
	err := row.Scan(
		&ad.ID, &ad.Title, &ad.Model, &ad.Year, &ad.Price, &ad.Description,
		&photos, &inspection, &thickness, &ad.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	for _, p := range []struct {
		raw string
		dst *[]string
	}{
		{photos, &ad.Photos},
		{inspection, &ad.InspectionPhotos},
		{thickness, &ad.ThicknessPhotos},
	} {
		if err := json.Unmarshal([]byte(p.raw), p.dst); err != nil {
			return nil, fmt.Errorf("failed to decode photos: %w", err)
		}
	}
	return &ad, nil
}

func encodePhotos(ad *models.Ad) (photos, inspection, thickness string, err error) {
	enc := func(ids []string) (string, error) {
		if ids == nil {
			ids = []string{}
		}
		b, err := json.Marshal(ids)
		return string(b), err
	}
	if photos, err = enc(ad.Photos); err != nil {
		return "", "", "", fmt.Errorf("failed to encode photos: %w", err)
	}
	if inspection, err = enc(ad.InspectionPhotos); err != nil {
		return "", "", "", fmt.Errorf("failed to encode photos: %w", err)
	}
	if thickness, err = enc(ad.ThicknessPhotos); err != nil {
		return "", "", "", fmt.Errorf("failed to encode photos: %w", err)
	}
	return photos, inspection, thickness, nil
}
