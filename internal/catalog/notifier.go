package catalog

import (
	"context"
	"fmt"

	"asterbot/internal/models"

	"github.com/rs/zerolog"
)

// NotificationTemplate текст уведомления подписчику.
const NotificationTemplate = "Появилось новое объявление, соответствующее вашей подписке: %s"

type SubscriptionLister interface {
	ListAllSubscriptions(ctx context.Context) ([]*models.Subscription, error)
}

// Sender доставляет текст пользователю.
type Sender interface {
	SendText(chatID int64, text string) error
}

type Notifier struct {
	subs   SubscriptionLister
	sender Sender
	logger *zerolog.Logger
}

func NewNotifier(subs SubscriptionLister, sender Sender, logger *zerolog.Logger) *Notifier {
	return &Notifier{subs: subs, sender: sender, logger: logger}
}

// Report итог рассылки по одному объявлению.
type Report struct {
	Matched []int64
	Failed  []int64
}

// NotifyNewAd уведомляет подписчиков о сохраненном объявлении.
// Ошибка доставки одному подписчику логируется и не прерывает остальных.
func (n *Notifier) NotifyNewAd(ctx context.Context, ad *models.Ad) (Report, error) {
	subs, err := n.subs.ListAllSubscriptions(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load subscriptions: %w", err)
	}

	report := Report{Matched: MatchSubscribers(ad, subs)}
	text := fmt.Sprintf(NotificationTemplate, ad.Title)
	for _, userID := range report.Matched {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if err := n.sender.SendText(userID, text); err != nil {
			report.Failed = append(report.Failed, userID)
			n.logger.Error().Err(err).Int64("user_id", userID).Int64("ad_id", ad.ID).Msg("failed to notify subscriber")
		}
	}

	n.logger.Info().
		Int64("ad_id", ad.ID).
		Int("matched", len(report.Matched)).
		Int("failed", len(report.Failed)).
		Msg("subscribers notified")
	return report, nil
}
