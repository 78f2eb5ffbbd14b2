package database

import (
	"context"
	"fmt"
	"time"

	"asterbot/internal/models"
)

const userColumns = `user_id, username, first_name, last_name, phone, name, city,
                     status, cheque_file_id, joined_at, last_active`

// UpsertUser регистрирует пользователя или обновляет его профиль Telegram.
// Контакт, статус и даты существующей записи не меняются.
func (db *DB) UpsertUser(ctx context.Context, user *models.User) error {
	status := user.Status
	if status == "" {
		status = models.UserStatusPending
	}
	now := db.utcNow()
	query := `INSERT INTO users (user_id, username, first_name, last_name, status, joined_at, last_active)
              VALUES (?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(user_id) DO UPDATE SET
                username = excluded.username,
                first_name = excluded.first_name,
                last_name = excluded.last_name`
	_, err := db.ExecContext(ctx, query, user.ID, user.Username, user.FirstName, user.LastName, status, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// CreateUser добавляет пользователя, если его еще нет. Возвращает true, если запись создана.
func (db *DB) CreateUser(ctx context.Context, user *models.User) (bool, error) {
	status := user.Status
	if status == "" {
		status = models.UserStatusPending
	}
	now := db.utcNow()
	res, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (user_id, username, first_name, last_name, status, joined_at, last_active)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.FirstName, user.LastName, status, now, now,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

func (db *DB) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	row := db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = ?`, userID)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Phone, &u.Name, &u.City,
		&u.Status, &u.ChequeFileID, &u.JoinedAt, &u.LastActive,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUserPhone, UpdateUserName и UpdateUserCity сохраняют поля контакта по одному.
func (db *DB) UpdateUserPhone(ctx context.Context, userID int64, phone string) error {
	return db.updateUserColumn(ctx, userID, "phone", phone)
}

func (db *DB) UpdateUserName(ctx context.Context, userID int64, name string) error {
	return db.updateUserColumn(ctx, userID, "name", name)
}

func (db *DB) UpdateUserCity(ctx context.Context, userID int64, city string) error {
	return db.updateUserColumn(ctx, userID, "city", city)
}

func (db *DB) UpdateUserStatus(ctx context.Context, userID int64, status string) error {
	return db.updateUserColumn(ctx, userID, "status", status)
}

func (db *DB) UpdateUserCheque(ctx context.Context, userID int64, fileID string) error {
	return db.updateUserColumn(ctx, userID, "cheque_file_id", fileID)
}

// column подставляется только из констант этого файла.
func (db *DB) updateUserColumn(ctx context.Context, userID int64, column, value string) error {
	res, err := db.ExecContext(ctx, `UPDATE users SET `+column+` = ? WHERE user_id = ?`, value, userID)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", column, err)
	}
	return expectAffected(res, "user")
}

// UpdateUserContact сохраняет все три поля контакта одной операцией.
func (db *DB) UpdateUserContact(ctx context.Context, userID int64, c models.Contact) error {
	res, err := db.ExecContext(ctx,
		`UPDATE users SET name = ?, phone = ?, city = ? WHERE user_id = ?`,
		c.Name, c.Phone, c.City, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user contact: %w", err)
	}
	return expectAffected(res, "user")
}

// TouchUser обновляет время последней активности.
func (db *DB) TouchUser(ctx context.Context, userID int64) error {
	_, err := db.ExecContext(ctx, `UPDATE users SET last_active = ? WHERE user_id = ?`, db.utcNow(), userID)
	if err != nil {
		return fmt.Errorf("failed to update last active: %w", err)
	}
	return nil
}

// ListUserIDs все пользователи, для рассылки бота подбора.
func (db *DB) ListUserIDs(ctx context.Context) ([]int64, error) {
	return db.queryIDs(ctx, `SELECT user_id FROM users ORDER BY user_id`)
}

func (db *DB) ListApprovedUserIDs(ctx context.Context) ([]int64, error) {
	return db.queryIDs(ctx, `SELECT user_id FROM users WHERE status = ? ORDER BY user_id`, models.UserStatusApproved)
}

// ListInactiveUserIDs пользователи, не проявлявшие активность после cutoff (включительно).
func (db *DB) ListInactiveUserIDs(ctx context.Context, cutoff time.Time) ([]int64, error) {
	return db.queryIDs(ctx, `SELECT user_id FROM users WHERE last_active <= ? ORDER BY user_id`, cutoff.UTC())
}

func (db *DB) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (db *DB) ListContacts(ctx context.Context, f models.ContactFilter) ([]models.Contact, error) {
	query := `SELECT name, phone, city FROM users WHERE 1 = 1`
	var args []any
	if !f.JoinedSince.IsZero() {
		query += ` AND joined_at >= ?`
		args = append(args, f.JoinedSince.UTC())
	}
	if f.CompleteOnly {
		query += ` AND name != '' AND phone != '' AND city != ''`
	}
	query += ` ORDER BY joined_at`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.Name, &c.Phone, &c.City); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (db *DB) CountUsers(ctx context.Context) (int, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM users`)
}

// CountUsersJoinedSince новые пользователи начиная с since.
func (db *DB) CountUsersJoinedSince(ctx context.Context, since time.Time) (int, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM users WHERE joined_at >= ?`, since.UTC())
}

// CountUsersActiveSince пользователи с активностью начиная с since.
func (db *DB) CountUsersActiveSince(ctx context.Context, since time.Time) (int, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM users WHERE last_active >= ?`, since.UTC())
}

func (db *DB) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return n, nil
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func expectAffected(res rowsAffected, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
