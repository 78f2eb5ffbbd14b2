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
	"asterbot/internal/bot/sales"
	"asterbot/internal/config"
	"asterbot/internal/database"
	"asterbot/internal/events"
	"asterbot/internal/service"
	"asterbot/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := app.LoadConfig(config.KindSales, "configs/salesbot.yaml")
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

	redisClient, sessions := app.InitSessions(ctx, cfg, "sales", nil, logger)
	defer app.CloseRedis(redisClient, logger)

	eventBus := events.NewEventBus()
	app.SubscribeAudit(eventBus, logger, events.EventAdPublished, events.EventAccessApproved, events.EventAccessRejected)

	stopAPI, err := app.StartAPI(cfg, config.KindSales, db, redisClient, logger)
	if err != nil {
		return err
	}
	defer stopAPI()

	app.StartBackup(ctx, cfg, logger)

	botWrapper, err := bot.Connect(cfg.Telegram.BotToken, cfg.Telegram.Debug)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return err
	}
	tgService := service.NewTelegramService(botWrapper)
	userService := service.NewUserService(db, cfg, logger)
	metrics := bot.NewMetrics(prometheus.DefaultRegisterer)

	startInactiveNotify(ctx, cfg, db, tgService, logger)

	handler := sales.New(sales.Deps{
		Config:   cfg,
		Telegram: tgService,
		Sessions: sessions,
		Repo:     db,
		Users:    userService,
		Events:   eventBus,
		Metrics:  metrics,
		Logger:   logger,
	})

	telegramBot := bot.NewBot(tgService, cfg, sessions, userService, handler, metrics, logger)

	logger.Info().Msg("Бот продаж запущен...")
	telegramBot.Start(ctx)
	telegramBot.Stop()
	handler.Wait()

	logger.Info().Msg("Shutdown complete.")
	return nil
}

// startInactiveNotify раз в сутки напоминает неактивным пользователям о новых объявлениях.
func startInactiveNotify(ctx context.Context, cfg *config.Config, db *database.DB, sender worker.TextSender, logger *zerolog.Logger) {
	rps := cfg.Bot.BroadcastRPS
	if rps <= 0 {
		rps = 20
	}
	notifier := worker.NewInactiveNotifier(db, sender, rate.NewLimiter(rate.Limit(rps), 1), logger)

	next := func(now time.Time) time.Time {
		return worker.NextDaily(now, cfg.Sales.NotifyHourUTC, time.UTC)
	}
	go worker.RunSchedule(ctx, "notify_inactive", next, notifier.Job(), logger)
}
