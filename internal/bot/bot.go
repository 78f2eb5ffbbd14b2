// Package bot содержит общий для обоих ботов цикл обработки обновлений Telegram:
// восстановление после паники, ограничение частоты, учет активности и метрики.
// Логика конкретного бота живет в подпакетах selection и sales.
package bot

import (
	"context"
	"os"
	"time"

	"asterbot/internal/config"
	"asterbot/internal/domain"
	"asterbot/internal/logging"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const updateTimeout = 30 * time.Second

// UpdateHandler обрабатывает сообщения и нажатия кнопок конкретного бота.
type UpdateHandler interface {
	HandleMessage(ctx context.Context, msg *tgbotapi.Message)
	HandleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery)
}

// RateLimiter проверяет частоту сообщений пользователя.
type RateLimiter interface {
	Allow(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

// Users роли и учет активности пользователей.
type Users interface {
	IsManager(userID int64) bool
	UpdateUserActivity(ctx context.Context, userID int64) error
}

type Bot struct {
	tgService domain.TelegramService
	config    *config.Config
	limiter   RateLimiter
	users     Users
	handler   UpdateHandler
	metrics   *Metrics
	logger    *zerolog.Logger
	queues    *userQueues
}

func NewBot(
	tgService domain.TelegramService,
	config *config.Config,
	limiter RateLimiter,
	users Users,
	handler UpdateHandler,
	metrics *Metrics,
	logger *zerolog.Logger,
) *Bot {
	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	return &Bot{
		tgService: tgService,
		config:    config,
		limiter:   limiter,
		users:     users,
		handler:   handler,
		metrics:   metrics,
		logger:    logger,
		queues:    newUserQueues(),
	}
}

// Start читает обновления до отмены ctx. Обновления одного пользователя обрабатываются
// по порядку, разных пользователей параллельно.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.config.Telegram.UpdateTimeout
	if u.Timeout == 0 {
		u.Timeout = 60
	}

	updates := b.tgService.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tgService.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.queues.push(UpdateUserID(update), func() { b.processUpdate(ctx, update) })
		}
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.UpdateProcessingTime.Observe(time.Since(start).Seconds())
		}
	}()

	userID := UpdateUserID(update)
	updateCtx, cancel := context.WithTimeout(ctx, updateTimeout)
	defer cancel()
	updateCtx, _ = logging.ForUpdate(updateCtx, b.logger, userID)

	defer b.recoverUpdate(updateCtx, update)

	if userID == 0 {
		return
	}

	b.trackActivity(updateCtx, userID)

	if !b.users.IsManager(userID) && !b.allow(updateCtx, update, userID) {
		return
	}

	if update.CallbackQuery != nil {
		b.countUpdate("callback")
		b.handler.HandleCallback(updateCtx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}
	b.countUpdate("message")
	b.handler.HandleMessage(updateCtx, update.Message)
}

// allow проверяет частоту сообщений. Ошибка хранилища не блокирует пользователя.
func (b *Bot) allow(ctx context.Context, update tgbotapi.Update, userID int64) bool {
	allowed, err := b.limiter.Allow(
		ctx,
		userID,
		b.config.Bot.RateLimitMessages,
		time.Duration(b.config.Bot.RateLimitWindow)*time.Second,
	)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Rate limit check failed")
		return true
	}
	if allowed {
		return true
	}

	b.logger.Warn().Int64("user_id", userID).Msg("Rate limit exceeded")
	if b.metrics != nil {
		b.metrics.RateLimited.Inc()
	}
	if update.Message != nil {
		if err := b.tgService.SendText(update.Message.Chat.ID, TextRateLimited); err != nil {
			b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to send rate limit notice")
		}
	}
	return false
}

func (b *Bot) countUpdate(kind string) {
	if b.metrics != nil {
		b.metrics.UpdatesTotal.WithLabelValues(kind).Inc()
	}
}

// Stop прекращает long polling и дожидается обновлений, уже принятых в очереди.
func (b *Bot) Stop() {
	if b == nil || b.tgService == nil {
		return
	}
	b.tgService.StopReceivingUpdates()
	b.queues.wait()
}
