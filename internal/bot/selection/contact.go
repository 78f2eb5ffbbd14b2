package selection

import (
	"context"
	"fmt"

	"asterbot/internal/bot"
	"asterbot/internal/events"
	"asterbot/internal/models"
	"asterbot/internal/wizard"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (h *Handler) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	l := zerolog.Ctx(ctx)
	userID := msg.From.ID
	chatID := msg.Chat.ID

	user, created, err := h.users.Register(ctx, msg.From, "")
	if err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("failed to register user")
		h.reply(chatID, textGenericError)
		return
	}
	if created {
		l.Info().Int64("user_id", userID).Str("username", msg.From.UserName).Msg("user registered")
	}

	if err := h.sessions.Reset(ctx, userID); err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("failed to reset session")
	}

	if user.HasContact() {
		h.replyRemoveKeyboard(chatID, fmt.Sprintf(textWelcomeBack, user.DisplayName()))
		h.sendMainMenu(chatID, textMenu)
		return
	}

	st, prompt, err := h.wizards.Start(wizard.KindSelectionContact, map[string]string{
		wizard.FieldPhone: user.Phone,
		wizard.FieldName:  user.Name,
		wizard.FieldCity:  user.City,
	})
	if err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("failed to start contact wizard")
		h.reply(chatID, textGenericError)
		return
	}
	if err := h.sessions.StartWizard(ctx, userID, st); err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("failed to save wizard")
		h.reply(chatID, bot.ErrorMessage(err))
		return
	}

	if user.Phone == "" {
		if created {
			prompt = textWelcomeNew
		}
		h.askPhone(chatID, prompt)
		return
	}
	h.reply(chatID, prompt)
}

func (h *Handler) askPhone(chatID int64, text string) {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact(textShareContact)),
	)
	kb.OneTimeKeyboard = true
	kb.ResizeKeyboard = true
	if _, err := h.tg.SendWithKeyboard(chatID, text, kb); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send contact request")
	}
}

// advanceContact обрабатывает шаг мастера контакта. Каждое поле сохраняется сразу,
// чтобы прерванная регистрация продолжалась с первого пустого поля.
func (h *Handler) advanceContact(ctx context.Context, msg *tgbotapi.Message, cur *models.WizardState) {
	l := zerolog.Ctx(ctx)
	userID := msg.From.ID
	chatID := msg.Chat.ID

	res, err := h.wizards.Advance(cur, bot.WizardInput(msg))
	if err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("contact wizard failed")
		_ = h.sessions.Reset(ctx, userID)
		h.reply(chatID, textGenericError)
		return
	}

	switch res.Outcome {
	case wizard.Cancelled:
		h.metrics.WizardCancelled(cur.Kind)
		if err := h.sessions.Reset(ctx, userID); err != nil {
			l.Error().Err(err).Int64("user_id", userID).Msg("failed to reset session")
		}
		h.replyRemoveKeyboard(chatID, res.Messages[0])
		return

	case wizard.Reprompt:
		if cur.Step == 0 && cur.Field(wizard.FieldPhone) == "" {
			h.askPhone(chatID, res.Messages[0])
			return
		}
		h.sendAll(chatID, res.Messages)
		return
	}

	if err := h.saveContactField(ctx, userID, res.Field, res.Value); err != nil {
		l.Error().Err(err).Int64("user_id", userID).Str("field", res.Field).Msg("failed to save contact field")
		h.reply(chatID, textGenericError)
		return
	}

	if res.Outcome == wizard.Completed {
		if err := h.sessions.Reset(ctx, userID); err != nil {
			l.Error().Err(err).Int64("user_id", userID).Msg("failed to reset session")
		}
		h.sendContactMessages(chatID, res)
		h.completeContact(ctx, msg.From, chatID)
		return
	}

	if err := h.sessions.SaveWizard(ctx, userID, res.State); err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("failed to save wizard")
		h.reply(chatID, bot.ErrorMessage(err))
		return
	}
	h.sendContactMessages(chatID, res)
}

// sendContactMessages после принятия телефона убирает кнопку "Поделиться контактом".
func (h *Handler) sendContactMessages(chatID int64, res wizard.Result) {
	if len(res.Messages) == 0 {
		return
	}
	if res.Field == wizard.FieldPhone {
		h.replyRemoveKeyboard(chatID, res.Messages[0])
		h.sendAll(chatID, res.Messages[1:])
		return
	}
	h.sendAll(chatID, res.Messages)
}

func (h *Handler) sendAll(chatID int64, messages []string) {
	for _, m := range messages {
		h.reply(chatID, m)
	}
}

func (h *Handler) saveContactField(ctx context.Context, userID int64, field, value string) error {
	switch field {
	case wizard.FieldPhone:
		return h.repo.UpdateUserPhone(ctx, userID, value)
	case wizard.FieldName:
		return h.repo.UpdateUserName(ctx, userID, value)
	case wizard.FieldCity:
		return h.repo.UpdateUserCity(ctx, userID, value)
	}
	return fmt.Errorf("unexpected contact field %q", field)
}

// completeContact передает лид в выгрузку и показывает акцию или главное меню.
func (h *Handler) completeContact(ctx context.Context, from *tgbotapi.User, chatID int64) {
	l := zerolog.Ctx(ctx)
	h.metrics.WizardCompleted(wizard.KindSelectionContact)

	user, err := h.repo.GetUser(ctx, from.ID)
	if err != nil {
		l.Error().Err(err).Int64("user_id", from.ID).Msg("failed to load user after registration")
	} else {
		lead := &models.Lead{
			UserID:    user.ID,
			Username:  user.Username,
			Name:      user.Name,
			Phone:     user.Phone,
			City:      user.City,
			CreatedAt: h.now().UTC(),
		}
		h.publish(events.EventLeadCaptured, lead)
		if h.leads != nil {
			if err := h.leads.EnqueueLead(ctx, lead); err != nil {
				l.Error().Err(err).Int64("user_id", from.ID).Msg("failed to enqueue lead")
			}
		}
		l.Info().Int64("user_id", from.ID).Str("city", user.City).Msg("contact captured")
	}

	if h.promoActive() {
		kb := tgbotapi.NewInlineKeyboardMarkup(
			bot.DataRow(textJoinPromo, bot.Data(bot.ActionSelectPrize)),
			bot.URLRow(textViewAll, h.cfg.Catalog.BaseURL),
		)
		if _, err := h.tg.SendWithInlineKeyboard(chatID, textPromoOffer, kb); err != nil {
			l.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send promo offer")
		}
	} else {
		h.sendMainMenu(chatID, textMenu)
	}
	h.armIdle(from.ID, chatID)
}

func (h *Handler) publish(eventType string, payload interface{}) {
	if h.events == nil {
		return
	}
	if err := h.events.PublishJSON(eventType, payload); err != nil {
		h.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}
