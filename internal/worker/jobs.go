package worker

import (
	"context"
	"fmt"
	"time"

	"asterbot/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// InactiveStore данные для ежедневной рассылки о новых объявлениях.
type InactiveStore interface {
	CountAdsSince(ctx context.Context, since time.Time) (int, error)
	ListInactiveUserIDs(ctx context.Context, cutoff time.Time) ([]int64, error)
}

type TextSender interface {
	SendText(chatID int64, text string) error
}

// InactiveNotifier напоминает неактивным пользователям о новых объявлениях за сутки.
type InactiveNotifier struct {
	store   InactiveStore
	sender  TextSender
	limiter *rate.Limiter
	now     func() time.Time
	logger  *zerolog.Logger
}

func NewInactiveNotifier(store InactiveStore, sender TextSender, limiter *rate.Limiter, logger *zerolog.Logger) *InactiveNotifier {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	return &InactiveNotifier{store: store, sender: sender, limiter: limiter, now: time.Now, logger: logger}
}

// NewAdsText текст напоминания.
func NewAdsText(n int) string {
	return fmt.Sprintf("У нас появилось %d новых объявлений! Зайдите в бота, чтобы посмотреть.", n)
}

// Run отправляет напоминание; без новых объявлений ничего не делает. Возвращает число доставленных.
func (n *InactiveNotifier) Run(ctx context.Context) (int, error) {
	cutoff := n.now().UTC().Add(-models.InactivityWindowHours * time.Hour)

	count, err := n.store.CountAdsSince(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to count new ads: %w", err)
	}
	if count == 0 {
		n.logger.Info().Msg("no new ads, inactive users notification skipped")
		return 0, nil
	}

	ids, err := n.store.ListInactiveUserIDs(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list inactive users: %w", err)
	}

	text := NewAdsText(count)
	sent := 0
	for _, id := range ids {
		if n.limiter != nil {
			if err := n.limiter.Wait(ctx); err != nil {
				return sent, err
			}
		}
		if err := n.sender.SendText(id, text); err != nil {
			n.logger.Warn().Err(err).Int64("user_id", id).Msg("failed to notify inactive user")
			continue
		}
		sent++
	}

	n.logger.Info().Int("new_ads", count).Int("users", len(ids)).Int("sent", sent).Msg("inactive users notified")
	return sent, nil
}

// Job обертка для RunSchedule.
func (n *InactiveNotifier) Job() Job {
	return func(ctx context.Context) error {
		_, err := n.Run(ctx)
		return err
	}
}

type PrizePurger interface {
	PurgePrizes(ctx context.Context) (int64, error)
}

// PurgePrizesJob удаляет все выданные призы по окончании акции.
func PurgePrizesJob(store PrizePurger, logger *zerolog.Logger) Job {
	return func(ctx context.Context) error {
		n, err := store.PurgePrizes(ctx)
		if err != nil {
			return fmt.Errorf("failed to purge prizes: %w", err)
		}
		if logger != nil {
			logger.Info().Int64("deleted", n).Msg("prizes purged")
		}
		return nil
	}
}
