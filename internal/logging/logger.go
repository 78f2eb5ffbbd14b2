// Package logging собирает zerolog-логгер процесса и логгеры отдельных апдейтов.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"asterbot/internal/config"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// New строит логгер по настройкам: JSON, уровень info и stdout, если поля пустые.
// Closer не nil только для вывода в файл.
func New(cfg config.LoggingConfig, app config.AppConfig) (*zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out, closer, err := openOutput(cfg)
	if err != nil {
		return nil, nil, err
	}

	if strings.EqualFold(strings.TrimSpace(cfg.Format), "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("app", app.Name).
		Str("env", app.Environment).
		Str("version", app.Version).
		Logger()

	return &logger, closer, nil
}

func openOutput(cfg config.LoggingConfig) (io.Writer, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Output)) {
	case "stderr":
		return os.Stderr, nil, nil
	case "file":
		if cfg.FilePath == "" {
			return nil, nil, fmt.Errorf("logging.output=file requires logging.file_path")
		}
		file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return file, file, nil
	default:
		return os.Stdout, nil, nil
	}
}

// ForUpdate кладет в контекст дочерний логгер с request_id и user_id одного апдейта.
func ForUpdate(ctx context.Context, base *zerolog.Logger, userID int64) (context.Context, *zerolog.Logger) {
	l := base.With().
		Str("request_id", uuid.NewString()).
		Int64("user_id", userID).
		Logger()
	return l.WithContext(ctx), &l
}
