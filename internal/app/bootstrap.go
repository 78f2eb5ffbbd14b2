// Package app собирает общую инфраструктуру процессов ботов: конфиг и логгер,
// базу, хранилище сессий, служебный API и резервное копирование.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"asterbot/internal/api"
	"asterbot/internal/config"
	"asterbot/internal/database"
	"asterbot/internal/domain"
	"asterbot/internal/events"
	"asterbot/internal/logging"
	"asterbot/internal/models"
	"asterbot/internal/repository"
	"asterbot/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

// LoadConfig читает конфиг из CONFIG_PATH или defaultPath и строит логгер процесса.
func LoadConfig(kind, defaultPath string) (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.ValidateFor(kind); err != nil {
		return nil, nil, nil, fmt.Errorf("config validation failed: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := baseLogger.With().Str("bot", kind).Logger()
	return cfg, &logger, closer, nil
}

// PrepareDirectories создает каталоги выгрузок и копий.
func PrepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg.Exports.Path != "" {
		if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
			logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
			return err
		}
	}
	if cfg.Backup.Enabled {
		if err := os.MkdirAll(cfg.Backup.StoragePath, 0o755); err != nil {
			logger.Error().Err(err).Msg("Ошибка создания директории для резервных копий")
			return err
		}
	}
	return nil
}

// InitSessions поднимает хранилище состояний: Redis с переключением на память или только память.
// Клиент Redis nil, если адрес не задан.
func InitSessions(
	ctx context.Context,
	cfg *config.Config,
	prefix string,
	timers *service.IdleTimers,
	logger *zerolog.Logger,
) (*redis.Client, *service.SessionService) {
	ttl := time.Duration(models.DefaultRedisTTL) * time.Second
	memory := repository.NewMemoryStateRepository(ttl)

	var stateRepo domain.StateRepository = memory
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if err := repository.Ping(ctx, redisClient); err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, sessions start in memory")
		}
		primary := repository.NewRedisStateRepository(redisClient, prefix, ttl)
		stateRepo = repository.NewFailoverStateRepository(primary, memory, logger)
	} else {
		logger.Info().Msg("Redis address is empty, sessions are kept in memory")
	}

	return redisClient, service.NewSessionService(stateRepo, timers, logger)
}

// RedisPinger проверка Redis для /healthz; nil, если Redis не настроен.
func RedisPinger(client *redis.Client) api.Pinger {
	if client == nil {
		return nil
	}
	return func(ctx context.Context) error {
		return repository.Ping(ctx, client)
	}
}

// StartAPI запускает служебные HTTP и gRPC серверы, если они включены.
// Возвращаемая функция останавливает их.
func StartAPI(cfg *config.Config, kind string, db *database.DB, redisClient *redis.Client, logger *zerolog.Logger) (func(), error) {
	if !cfg.API.Enabled {
		return func() {}, nil
	}

	var stops []func(ctx context.Context)

	if cfg.API.HTTP.Enabled {
		httpServer := api.NewHTTPServer(api.HTTPDeps{
			Config: cfg,
			Kind:   kind,
			Store:  db,
			Redis:  RedisPinger(redisClient),
			Logger: logger,
		})
		go func() {
			if err := httpServer.Start(); err != nil {
				logger.Error().Err(err).Msg("HTTP API server error")
			}
		}()
		stops = append(stops, func(ctx context.Context) {
			if err := httpServer.Shutdown(ctx); err != nil {
				logger.Warn().Err(err).Msg("HTTP API shutdown failed")
			}
		})
	}

	if cfg.API.GRPC.Enabled {
		grpcServer, err := api.NewGRPCServer(cfg.API.GRPC, logger)
		if err != nil {
			for _, stop := range stops {
				stop(context.Background())
			}
			return nil, err
		}
		go func() {
			if err := grpcServer.Serve(); err != nil {
				logger.Error().Err(err).Msg("gRPC API server error")
			}
		}()
		stops = append(stops, grpcServer.Shutdown)
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, stop := range stops {
			stop(ctx)
		}
	}, nil
}

// StartBackup запускает периодическое копирование базы в фоне.
func StartBackup(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Backup.Enabled || cfg.Database.Path == "" {
		return
	}
	backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, logger)
	go backupService.Start(ctx)
}

// SubscribeAudit пишет доменные события в лог.
func SubscribeAudit(bus *events.EventBus, logger *zerolog.Logger, eventTypes ...string) {
	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, func(ev *events.Event) error {
			logger.Info().Str("event", ev.Type).RawJSON("payload", ev.Payload).Msg("domain event")
			return nil
		})
	}
}

// CloseRedis закрывает клиент, если он есть.
func CloseRedis(client *redis.Client, logger *zerolog.Logger) {
	if err := repository.Close(client); err != nil && !errors.Is(err, redis.ErrClosed) {
		logger.Warn().Err(err).Msg("failed to close redis client")
	}
}
