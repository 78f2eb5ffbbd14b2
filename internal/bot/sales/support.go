package sales

import (
	"context"
	"fmt"
	"strconv"

	"asterbot/internal/bot"
	"asterbot/internal/wizard"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (h *Handler) startSupport(ctx context.Context, msg *tgbotapi.Message) {
	h.startWizard(ctx, msg.From.ID, msg.Chat.ID, wizard.KindSupport, nil)
}

// completeSupport пересылает обращение менеджерам с кнопкой ответа.
func (h *Handler) completeSupport(ctx context.Context, msg *tgbotapi.Message, res wizard.Result) completion {
	l := zerolog.Ctx(ctx)
	userID := msg.From.ID
	kind := wizard.AttachmentKind(res.State, wizard.FieldMessage)
	payload := res.State.Field(wizard.FieldMessage)

	header := fmt.Sprintf(textSupportFrom, bot.Username(msg.From))
	kb := tgbotapi.NewInlineKeyboardMarkup(bot.DataRow(btnReply, bot.DataID(bot.ActionReply, userID)))

	managers := h.users.ManagerIDs()
	delivered := 0
	for _, managerID := range managers {
		err := h.tg.SendText(managerID, header)
		if err == nil {
			err = h.forward(managerID, kind, payload, msg.Caption)
		}
		if err == nil {
			_, err = h.tg.SendWithInlineKeyboard(managerID, textSupportReplyHint, kb)
		}
		h.metrics.Notification("support", err)
		if err != nil {
			l.Error().Err(err).Int64("manager_id", managerID).Int64("user_id", userID).Msg("failed to forward support message")
			continue
		}
		delivered++
	}

	if len(managers) > 0 && delivered == 0 {
		h.reply(msg.Chat.ID, textSupportError)
		return completionRetry
	}
	h.sendMainMenu(msg.Chat.ID, userID, res.Done)
	l.Info().Int64("user_id", userID).Str("kind", kind).Int("managers", delivered).Msg("support message forwarded")
	return completionDone
}

func (h *Handler) startReply(ctx context.Context, cb *tgbotapi.CallbackQuery, targetID int64) {
	if !h.users.IsManager(cb.From.ID) {
		zerolog.Ctx(ctx).Warn().Int64("user_id", cb.From.ID).Msg("support reply denied")
		h.alert(cb, textNoRights)
		return
	}
	h.startWizard(ctx, cb.From.ID, cb.Message.Chat.ID, wizard.KindSupportReply, map[string]string{
		wizard.FieldReplyTo: strconv.FormatInt(targetID, 10),
	})
	h.answer(cb, "")
}

func (h *Handler) completeReply(ctx context.Context, msg *tgbotapi.Message, res wizard.Result) completion {
	l := zerolog.Ctx(ctx)
	targetID, ok := res.State.Int64Field(wizard.FieldReplyTo)
	if !ok {
		l.Error().Int64("manager_id", msg.From.ID).Msg("support reply without recipient")
		h.sendMainMenu(msg.Chat.ID, msg.From.ID, textReplyFailed)
		return completionAbort
	}

	err := h.tg.SendText(targetID, fmt.Sprintf(textManagerAnswer, res.State.Field(wizard.FieldMessage)))
	h.metrics.Notification("support_reply", err)
	if err != nil {
		l.Error().Err(err).Int64("user_id", targetID).Msg("failed to deliver manager reply")
		h.reply(msg.Chat.ID, textReplyFailed)
		return completionRetry
	}
	h.sendMainMenu(msg.Chat.ID, msg.From.ID, textReplyDelivered)
	l.Info().Int64("user_id", targetID).Int64("manager_id", msg.From.ID).Msg("manager reply delivered")
	return completionDone
}
