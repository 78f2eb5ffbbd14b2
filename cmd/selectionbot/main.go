package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"asterbot/internal/app"
	"asterbot/internal/bot"
	"asterbot/internal/bot/selection"
	"asterbot/internal/config"
	"asterbot/internal/database"
	"asterbot/internal/dialogue"
	"asterbot/internal/domain"
	"asterbot/internal/events"
	"asterbot/internal/google"
	"asterbot/internal/llm"
	"asterbot/internal/service"
	"asterbot/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := app.LoadConfig(config.KindSelection, "configs/selectionbot.yaml")
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := app.PrepareDirectories(cfg, logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timers := service.NewIdleTimers(cfg.Selection.IdleTimeout)
	defer timers.Stop()

	redisClient, sessions := app.InitSessions(ctx, cfg, "selection", timers, logger)
	defer app.CloseRedis(redisClient, logger)

	leads := initLeads(ctx, cfg, db, redisClient, logger)

	eventBus := events.NewEventBus()
	app.SubscribeAudit(eventBus, logger, events.EventLeadCaptured)

	stopAPI, err := app.StartAPI(cfg, config.KindSelection, db, redisClient, logger)
	if err != nil {
		return err
	}
	defer stopAPI()

	app.StartBackup(ctx, cfg, logger)
	startPurge(ctx, cfg, db, logger)

	botWrapper, err := bot.Connect(cfg.Telegram.BotToken, cfg.Telegram.Debug)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return err
	}
	tgService := service.NewTelegramService(botWrapper)
	userService := service.NewUserService(db, cfg, logger)
	metrics := bot.NewMetrics(prometheus.DefaultRegisterer)

	engine := dialogue.NewEngine(llm.NewClient(cfg.OpenAI), db, logger)

	handler := selection.New(selection.Deps{
		Config:   cfg,
		Telegram: tgService,
		Sessions: sessions,
		Repo:     db,
		Users:    userService,
		Dialogue: engine,
		Leads:    leads,
		Events:   eventBus,
		Metrics:  metrics,
		Logger:   logger,
	})

	telegramBot := bot.NewBot(tgService, cfg, sessions, userService, handler, metrics, logger)

	logger.Info().Msg("Бот подбора запущен...")
	telegramBot.Start(ctx)
	telegramBot.Stop()
	handler.Wait()

	logger.Info().Msg("Shutdown complete.")
	return nil
}

// initLeads запускает выгрузку лидов в Google Sheets. Без настроек Google лиды не выгружаются.
func initLeads(ctx context.Context, cfg *config.Config, db *database.DB, redisClient *redis.Client, logger *zerolog.Logger) domain.LeadQueue {
	if !cfg.Google.Enabled {
		logger.Info().Msg("Google Sheets disabled, leads are not exported")
		return nil
	}

	sheetsSvc, err := google.NewLeadsService(ctx, cfg.Google.GoogleCredentialsFile, cfg.Google.LeadsSpreadsheetID, cfg.Google.LeadsSheetName)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize Google Sheets service")
		return nil
	}
	if err := sheetsSvc.TestConnection(ctx); err != nil {
		logger.Error().Err(err).Msg("Google Sheets connection test failed")
		return nil
	}
	if email, err := google.ServiceAccountEmail(cfg.Google.GoogleCredentialsFile); err == nil {
		logger.Info().Str("service_account", email).Msg("Google Sheets service initialized successfully")
	}

	leadsWorker := worker.NewLeadsWorker(db, sheetsSvc, redisClient, worker.DefaultRetryPolicy, logger)
	go leadsWorker.Start(ctx)
	return leadsWorker
}

// startPurge раз в неделю сбрасывает выданные призы акции.
func startPurge(ctx context.Context, cfg *config.Config, db *database.DB, logger *zerolog.Logger) {
	loc, err := time.LoadLocation(cfg.Selection.Timezone)
	if err != nil {
		logger.Warn().Err(err).Str("timezone", cfg.Selection.Timezone).Msg("unknown timezone, using UTC")
		loc = time.UTC
	}

	weekday := time.Weekday(cfg.Selection.PurgeWeekday)
	next := func(now time.Time) time.Time {
		return worker.NextWeekly(now, weekday, cfg.Selection.PurgeHour, loc)
	}
	go worker.RunSchedule(ctx, "purge_prizes", next, worker.PurgePrizesJob(db, logger), logger)
}
