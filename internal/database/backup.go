package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"asterbot/internal/config"

	"github.com/rs/zerolog"
)

const (
	defaultBackupInterval = 24 * time.Hour
	backupTimeLayout      = "20060102T150405Z"
	backupExt             = ".db"
)

// BackupService снимает копии файла SQLite по расписанию и держит не больше RetentionDays дней истории.
type BackupService struct {
	dbPath string
	cfg    config.BackupConfig
	logger *zerolog.Logger
	now    func() time.Time
}

func NewBackupService(dbPath string, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultBackupInterval
	}
	return &BackupService{dbPath: dbPath, cfg: cfg, logger: logger, now: time.Now}
}

// prefix имя базы без расширения: копии разных ботов в одном каталоге не пересекаются.
func (s *BackupService) prefix() string {
	base := filepath.Base(s.dbPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_"
}

// Start снимает копию сразу и затем каждые Interval. Блокируется до отмены ctx.
func (s *BackupService) Start(ctx context.Context) {
	if !s.cfg.Enabled {
		s.logger.Info().Msg("database backups disabled")
		return
	}
	s.logger.Info().Dur("interval", s.cfg.Interval).Str("dir", s.cfg.StoragePath).Msg("database backups started")

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		s.runOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *BackupService) runOnce(ctx context.Context) {
	path, err := s.Backup(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("database backup failed")
		return
	}
	removed, err := s.Prune()
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to prune old backups")
	}
	s.logger.Info().Str("path", path).Int("pruned", removed).Msg("database backup done")
}

// Backup пишет согласованную копию через VACUUM INTO и возвращает ее путь.
// Если VACUUM INTO недоступен, копирует файл как есть.
func (s *BackupService) Backup(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.cfg.StoragePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	target := filepath.Join(s.cfg.StoragePath, s.prefix()+s.now().UTC().Format(backupTimeLayout)+backupExt)

	src, err := sql.Open("sqlite3", s.dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer src.Close()

	quoted := strings.ReplaceAll(target, "'", "''")
	if _, err := src.ExecContext(ctx, "VACUUM INTO '"+quoted+"'"); err != nil {
		s.logger.Warn().Err(err).Msg("VACUUM INTO failed, copying database file")
		if err := copyFile(s.dbPath, target); err != nil {
			return "", err
		}
	}
	return target, nil
}

func copyFile(from, to string) error {
	in, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("failed to open database file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy database file: %w", err)
	}
	return out.Close()
}

// Prune удаляет копии этой базы старше RetentionDays. Время берется из имени файла.
func (s *BackupService) Prune() (int, error) {
	if s.cfg.RetentionDays <= 0 {
		return 0, nil
	}
	backups, err := s.List()
	if err != nil {
		return 0, err
	}

	cutoff := s.now().UTC().AddDate(0, 0, -s.cfg.RetentionDays)
	removed := 0
	for _, b := range backups {
		if !b.TakenAt.Before(cutoff) {
			continue
		}
		if err := os.Remove(b.Path); err != nil {
			s.logger.Warn().Err(err).Str("path", b.Path).Msg("failed to remove old backup")
			continue
		}
		removed++
	}
	return removed, nil
}

type BackupFile struct {
	Path    string
	TakenAt time.Time
}

// List возвращает копии этой базы от старых к новым. Чужие файлы каталога пропускаются.
func (s *BackupService) List() ([]BackupFile, error) {
	entries, err := os.ReadDir(s.cfg.StoragePath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	prefix := s.prefix()
	var out []BackupFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, backupExt) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), backupExt)
		takenAt, err := time.Parse(backupTimeLayout, stamp)
		if err != nil {
			continue
		}
		out = append(out, BackupFile{Path: filepath.Join(s.cfg.StoragePath, name), TakenAt: takenAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TakenAt.Before(out[j].TakenAt) })
	return out, nil
}
