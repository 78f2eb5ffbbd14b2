package sales

import (
	"context"
	"errors"

	"asterbot/internal/bot"
	"asterbot/internal/database"
	"asterbot/internal/wizard"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (h *Handler) showSubscriptionsMenu(chatID int64) {
	kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnCreateSubscription),
		tgbotapi.NewKeyboardButton(btnMySubscriptions),
		tgbotapi.NewKeyboardButton(btnCancel),
	))
	kb.ResizeKeyboard = true
	if _, err := h.tg.SendWithKeyboard(chatID, textChooseAction, kb); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send subscriptions menu")
	}
}

func (h *Handler) completeSubscription(ctx context.Context, msg *tgbotapi.Message, res wizard.Result) completion {
	sub := wizard.ToSubscription(res.State, msg.From.ID)
	if err := h.repo.CreateSubscription(ctx, sub); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", msg.From.ID).Msg("failed to create subscription")
		h.reply(msg.Chat.ID, textSubscriptionSaveErr)
		return completionRetry
	}
	h.sendMainMenu(msg.Chat.ID, msg.From.ID, res.Done)
	return completionDone
}

func (h *Handler) listSubscriptions(ctx context.Context, userID, chatID int64) {
	subs, err := h.repo.ListSubscriptions(ctx, userID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("failed to list subscriptions")
		h.reply(chatID, textSubscriptionsError)
		return
	}
	if len(subs) == 0 {
		h.reply(chatID, textNoSubscriptions)
		return
	}

	for _, sub := range subs {
		kb := tgbotapi.NewInlineKeyboardMarkup(bot.DataRow(btnDelete, bot.DataID(bot.ActionDeleteSubscription, sub.ID)))
		if _, err := h.tg.SendWithInlineKeyboard(chatID, sub.Describe(), kb); err != nil {
			h.logger.Error().Err(err).Int64("subscription_id", sub.ID).Msg("failed to send subscription")
		}
	}
}

// deleteSubscription удаляет только подписку нажавшего пользователя.
func (h *Handler) deleteSubscription(ctx context.Context, cb *tgbotapi.CallbackQuery, id int64) {
	l := zerolog.Ctx(ctx)
	err := h.repo.DeleteSubscription(ctx, id, cb.From.ID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		h.answer(cb, textSubscriptionMissing)
		return
	case err != nil:
		l.Error().Err(err).Int64("subscription_id", id).Msg("failed to delete subscription")
		h.alert(cb, textSubscriptionDelErr)
		return
	}

	h.answer(cb, textSubscriptionDeleted)
	if err := h.tg.DeleteMessage(cb.Message.Chat.ID, cb.Message.MessageID); err != nil {
		l.Warn().Err(err).Msg("failed to delete subscription message")
	}
	l.Info().Int64("user_id", cb.From.ID).Int64("subscription_id", id).Msg("subscription deleted")
}
