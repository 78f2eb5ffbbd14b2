package selection

import (
	"context"
	"fmt"
	"strings"

	"asterbot/internal/bot"
	"asterbot/internal/database"
	"asterbot/internal/dialogue"
	"asterbot/internal/filters"
	"asterbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// openDialogue начинает подбор заново с пустым буфером.
func (h *Handler) openDialogue(ctx context.Context, userID, chatID int64) {
	l := zerolog.Ctx(ctx)
	if err := h.sessions.StartDialogue(ctx, userID); err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("failed to start dialogue")
		h.reply(chatID, bot.ErrorMessage(err))
		return
	}
	l.Info().Int64("user_id", userID).Msg("dialogue started")
	h.reply(chatID, dialogue.Greeting)
	h.countStat(ctx, database.StatMessagesSent)
	h.armIdle(userID, chatID)
}

func (h *Handler) handleDialogue(ctx context.Context, msg *tgbotapi.Message, state *models.UserState) {
	l := zerolog.Ctx(ctx)
	userID := msg.From.ID
	chatID := msg.Chat.ID

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		h.armIdle(userID, chatID)
		return
	}

	out, err := h.dialogue.Turn(ctx, userID, state.Dialogue, text)
	if err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("dialogue turn failed")
		h.reply(chatID, bot.ErrorMessage(err))
		h.armIdle(userID, chatID)
		return
	}
	h.metrics.ObserveTurn(out.Result)

	if out.Done() {
		if err := h.sessions.SaveDialogue(ctx, userID, nil); err != nil {
			l.Error().Err(err).Int64("user_id", userID).Msg("failed to close dialogue")
		}
		h.sendLink(ctx, userID, chatID, out.Filters)
		h.armIdle(userID, chatID)
		return
	}

	if err := h.sessions.SaveDialogue(ctx, userID, out.Buffer); err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("failed to save dialogue")
	}
	if out.Result == dialogue.ResultContinue {
		h.reply(chatID, out.Reply)
		h.countStat(ctx, database.StatMessagesSent)
	}
	h.armIdle(userID, chatID)
}

func (h *Handler) sendLink(ctx context.Context, userID, chatID int64, set filters.Set) {
	var user *models.User
	if u, err := h.repo.GetUser(ctx, userID); err == nil {
		user = u
	}
	name := user.DisplayName()

	link := filters.BuildURL(h.cfg.Catalog.BaseURL, set)
	kb := tgbotapi.NewInlineKeyboardMarkup(bot.URLRow(textViewAll, link))
	if _, err := h.tg.SendWithInlineKeyboard(chatID, fmt.Sprintf(textLink, name), kb); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("failed to send link")
		return
	}
	h.metrics.LinkSent()
	h.countStat(ctx, database.StatLinksSent)
	zerolog.Ctx(ctx).Info().Int64("user_id", userID).Str("url", link).Msg("link sent")
}

// armIdle заводит напоминание. Оно не отправляется, пока пользователь заполняет мастер.
func (h *Handler) armIdle(userID, chatID int64) {
	h.sessions.ArmIdle(userID, func() {
		ctx := context.Background()
		state, err := h.sessions.Get(ctx, userID)
		if err == nil && state.InWizard("") {
			return
		}
		kb := tgbotapi.NewInlineKeyboardMarkup(
			bot.DataRow(textContinueSelect, bot.Data(bot.ActionSelectCar)),
			bot.URLRow(textContactManager, h.cfg.Selection.WhatsAppLink),
		)
		_, err = h.tg.SendWithInlineKeyboard(chatID, textIdleNudge, kb)
		h.metrics.Notification("idle", err)
		if err != nil {
			h.logger.Warn().Err(err).Int64("user_id", userID).Msg("failed to send idle reminder")
		}
	})
}

func (h *Handler) countStat(ctx context.Context, counter string) {
	if err := h.repo.IncrementStat(ctx, counter, h.now().In(h.loc)); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("counter", counter).Msg("failed to update statistics")
	}
}
