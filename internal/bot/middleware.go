package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const activityTimeout = 5 * time.Second

// recoverUpdate вызывается через defer: паника обработчика не роняет цикл обновлений.
func (b *Bot) recoverUpdate(ctx context.Context, update tgbotapi.Update) {
	r := recover()
	if r == nil {
		return
	}
	if b.metrics != nil {
		b.metrics.ErrorsTotal.Inc()
	}
	zerolog.Ctx(ctx).Error().
		Interface("panic", r).
		Int("update_id", update.UpdateID).
		Int64("user_id", UpdateUserID(update)).
		Msg("update handler panicked")
}

// trackActivity обновляет last_active в фоне. Контекст отвязан от отмены апдейта,
// но сохраняет логгер с request_id.
func (b *Bot) trackActivity(ctx context.Context, userID int64) {
	if userID == 0 {
		return
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(bg, activityTimeout)
		defer cancel()
		if err := b.users.UpdateUserActivity(ctx, userID); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Int64("user_id", userID).Msg("failed to update user activity")
		}
	}()
}
