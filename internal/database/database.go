// Package database хранит пользователей, объявления, подписки, призы и статистику в SQLite.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"asterbot/internal/config"
	"asterbot/internal/models"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// ErrNotFound запись не найдена.
var ErrNotFound = errors.New("not found")

const memoryPath = ":memory:"

type DB struct {
	*sql.DB
	logger *zerolog.Logger
	now    func() time.Time
}

// NewDB открывает базу, ограничивает пул соединений и создает схему.
func NewDB(cfg config.DatabaseConfig, logger *zerolog.Logger) (*DB, error) {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}

	dsn := cfg.Path
	maxOpen := cfg.MaxOpenConns
	if cfg.Path == memoryPath {
		// у каждого соединения своя база в памяти
		maxOpen = 1
	} else {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = "file:" + cfg.Path + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
	}
	if maxOpen <= 0 {
		maxOpen = 10
	}

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: sqlDB, logger: logger, now: time.Now}
	if err := db.createTables(context.Background()); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", cfg.Path).Int("max_open_conns", maxOpen).Msg("База данных инициализирована")
	return db, nil
}

func (db *DB) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
            user_id INTEGER PRIMARY KEY,
            username TEXT NOT NULL DEFAULT '',
            first_name TEXT NOT NULL DEFAULT '',
            last_name TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            name TEXT NOT NULL DEFAULT '',
            city TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'pending',
            cheque_file_id TEXT NOT NULL DEFAULT '',
            joined_at DATETIME NOT NULL,
            last_active DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS statistics (
            date TEXT PRIMARY KEY,
            total_users INTEGER NOT NULL DEFAULT 0,
            new_users INTEGER NOT NULL DEFAULT 0,
            messages_sent INTEGER NOT NULL DEFAULT 0,
            links_sent INTEGER NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS user_requests (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id INTEGER NOT NULL,
            preferences TEXT NOT NULL,
            created_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS prizes (
            prize_id INTEGER PRIMARY KEY,
            prize_name TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS user_prizes (
            user_id INTEGER PRIMARY KEY,
            prize_id INTEGER NOT NULL REFERENCES prizes(prize_id),
            promo_code TEXT NOT NULL,
            won_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS ads (
            ad_id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL,
            model TEXT NOT NULL,
            year INTEGER NOT NULL,
            price INTEGER NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            photos TEXT NOT NULL DEFAULT '[]',
            inspection_photos TEXT NOT NULL DEFAULT '[]',
            thickness_photos TEXT NOT NULL DEFAULT '[]',
            created_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS favorites (
            user_id INTEGER NOT NULL,
            ad_id INTEGER NOT NULL REFERENCES ads(ad_id) ON DELETE CASCADE,
            created_at DATETIME NOT NULL,
            PRIMARY KEY (user_id, ad_id)
        )`,
		`CREATE TABLE IF NOT EXISTS subscriptions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id INTEGER NOT NULL,
            model TEXT NOT NULL DEFAULT '',
            price_min INTEGER,
            price_max INTEGER,
            year_min INTEGER,
            year_max INTEGER,
            created_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS bot_settings (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS sync_queue (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_type TEXT NOT NULL,
            user_id INTEGER NOT NULL,
            payload TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME NOT NULL,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,

		`CREATE INDEX IF NOT EXISTS idx_users_status ON users(status)`,
		`CREATE INDEX IF NOT EXISTS idx_users_last_active ON users(last_active)`,
		`CREATE INDEX IF NOT EXISTS idx_users_joined_at ON users(joined_at)`,
		`CREATE INDEX IF NOT EXISTS idx_user_requests_user ON user_requests(user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_ads_created_at ON ads(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_user ON subscriptions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_queue_status ON sync_queue(status, next_retry_at)`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("error executing query %s: %w", firstLine(query), err)
		}
	}

	return db.seedPrizes(ctx)
}

func (db *DB) seedPrizes(ctx context.Context) error {
	for _, p := range models.DefaultPrizes {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO prizes (prize_id, prize_name) VALUES (?, ?)
             ON CONFLICT(prize_id) DO UPDATE SET prize_name = excluded.prize_name`,
			p.ID, p.Name,
		); err != nil {
			return fmt.Errorf("failed to seed prize %d: %w", p.ID, err)
		}
	}
	return nil
}

func (db *DB) utcNow() time.Time {
	return db.now().UTC()
}

func firstLine(query string) string {
	if i := strings.IndexByte(query, '\n'); i > 0 {
		return query[:i]
	}
	return query
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
