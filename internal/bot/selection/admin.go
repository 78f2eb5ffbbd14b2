package selection

import (
	"context"
	"fmt"
	"os"
	"time"

	"asterbot/internal/bot"
	"asterbot/internal/export"
	"asterbot/internal/models"
	"asterbot/internal/wizard"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Периоды выгрузки контактов.
const (
	periodWeek  = "week"
	periodMonth = "month"
	periodAll   = "all"
)

func (h *Handler) handleAdmin(ctx context.Context, msg *tgbotapi.Message) {
	if !h.users.IsAdmin(msg.From.ID) {
		zerolog.Ctx(ctx).Warn().Int64("user_id", msg.From.ID).Msg("admin command denied")
		h.reply(msg.Chat.ID, textNoAdminAccess)
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, textAdminPanel)
	out.ParseMode = tgbotapi.ModeMarkdown
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		bot.DataRow("📣 Рассылка сообщений", bot.Data(bot.ActionAdminBroadcast)),
		bot.DataRow("📈 Просмотр статистики", bot.Data(bot.ActionAdminStats)),
		bot.DataRow("📂 Экспорт контактов", bot.Data(bot.ActionAdminExportMenu)),
	)
	if _, err := h.tg.Send(out); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("failed to send admin panel")
	}
}

func (h *Handler) handleAdminAction(ctx context.Context, userID, chatID int64, msgID int, action bot.Action) {
	switch action.Kind {
	case bot.ActionAdminStats:
		h.showStats(ctx, chatID, msgID)
	case bot.ActionAdminExportMenu:
		kb := tgbotapi.NewInlineKeyboardMarkup(
			bot.DataRow("📅 Последняя неделя", bot.Action{Kind: bot.ActionAdminExport, Arg: periodWeek}.Encode()),
			bot.DataRow("📅 Последний месяц", bot.Action{Kind: bot.ActionAdminExport, Arg: periodMonth}.Encode()),
			bot.DataRow("🗂 Все время", bot.Action{Kind: bot.ActionAdminExport, Arg: periodAll}.Encode()),
		)
		h.edit(chatID, msgID, textExportPeriod, &kb)
	case bot.ActionAdminExport:
		h.exportContacts(ctx, chatID, msgID, action.Arg)
	case bot.ActionAdminBroadcast:
		h.startBroadcast(ctx, userID, chatID, msgID)
	}
}

func (h *Handler) showStats(ctx context.Context, chatID int64, msgID int) {
	stats, err := h.repo.GetSelectionStats(ctx, h.now().In(h.loc))
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to get statistics")
		h.edit(chatID, msgID, textStatsError, nil)
		return
	}
	h.editMarkdown(chatID, msgID, fmt.Sprintf(textStats,
		stats.TotalUsers, stats.NewUsersToday, stats.MessagesSent, stats.LinksSent), nil)
}

// periodStart начало периода выгрузки; нулевое время означает "все время".
func periodStart(period string, now time.Time) (time.Time, bool) {
	switch period {
	case periodWeek:
		return now.AddDate(0, 0, -7), true
	case periodMonth:
		return now.AddDate(0, -1, 0), true
	case periodAll:
		return time.Time{}, true
	}
	return time.Time{}, false
}

func (h *Handler) exportContacts(ctx context.Context, chatID int64, msgID int, period string) {
	l := zerolog.Ctx(ctx)

	since, ok := periodStart(period, h.now())
	if !ok {
		h.edit(chatID, msgID, textExportBadPeriod, nil)
		return
	}

	contacts, err := h.repo.ListContacts(ctx, models.ContactFilter{JoinedSince: since})
	if err != nil {
		l.Error().Err(err).Str("period", period).Msg("failed to list contacts")
		h.edit(chatID, msgID, textExportError, nil)
		return
	}

	name := fmt.Sprintf("contacts_%s_%s.xlsx", period, uuid.NewString()[:8])
	path, err := h.exporter.WriteContacts(name, export.SelectionLayout, contacts)
	if err != nil {
		l.Error().Err(err).Str("period", period).Msg("failed to write contacts")
		h.edit(chatID, msgID, textExportError, nil)
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			l.Warn().Err(err).Str("path", path).Msg("failed to remove export file")
		}
	}()

	if _, err := h.tg.SendDocument(chatID, tgbotapi.FilePath(path), ""); err != nil {
		l.Error().Err(err).Str("path", path).Msg("failed to send export file")
		h.edit(chatID, msgID, textExportError, nil)
		return
	}
	h.edit(chatID, msgID, textExportDone, nil)
	l.Info().Str("period", period).Int("contacts", len(contacts)).Msg("contacts exported")
}

func (h *Handler) startBroadcast(ctx context.Context, userID, chatID int64, msgID int) {
	st, prompt, err := h.wizards.Start(wizard.KindBroadcast, nil)
	if err == nil {
		err = h.sessions.StartWizard(ctx, userID, st)
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("failed to start broadcast")
		h.edit(chatID, msgID, bot.ErrorMessage(err), nil)
		return
	}
	h.edit(chatID, msgID, prompt, nil)
}

func (h *Handler) advanceBroadcast(ctx context.Context, msg *tgbotapi.Message, cur *models.WizardState) {
	l := zerolog.Ctx(ctx)
	userID := msg.From.ID
	chatID := msg.Chat.ID

	res, err := h.wizards.Advance(cur, bot.WizardInput(msg))
	if err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("broadcast wizard failed")
		_ = h.sessions.Reset(ctx, userID)
		h.reply(chatID, textGenericError)
		return
	}

	switch res.Outcome {
	case wizard.Cancelled:
		h.metrics.WizardCancelled(cur.Kind)
		_ = h.sessions.Reset(ctx, userID)
		h.sendAll(chatID, res.Messages)
		return
	case wizard.Reprompt:
		h.sendAll(chatID, res.Messages)
		return
	}

	ids, err := h.repo.ListUserIDs(ctx)
	if err != nil {
		// мастер остается на шаге сообщения, администратор может отправить его снова
		l.Error().Err(err).Msg("failed to list users for broadcast")
		h.reply(chatID, textUsersListError)
		if prompt, err := h.wizards.Prompt(cur); err == nil {
			h.reply(chatID, prompt)
		}
		return
	}

	if err := h.sessions.Reset(ctx, userID); err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("failed to reset session")
	}
	h.metrics.WizardCompleted(cur.Kind)

	kind := wizard.AttachmentKind(res.State, wizard.FieldMessage)
	payload := res.State.Field(wizard.FieldMessage)
	caption := msg.Caption

	h.reply(chatID, textBroadcastStarted)
	l.Info().Int("recipients", len(ids)).Str("kind", kind).Msg("broadcast started")

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.runBroadcast(context.WithoutCancel(ctx), chatID, ids, kind, payload, caption)
	}()
}

// runBroadcast рассылает сообщение с ограничением частоты и отчитывается администратору.
func (h *Handler) runBroadcast(ctx context.Context, adminChatID int64, ids []int64, kind, payload, caption string) {
	var sent, failed int
	for _, id := range ids {
		if err := h.broadcast.Wait(ctx); err != nil {
			h.logger.Warn().Err(err).Msg("broadcast interrupted")
			break
		}

		var err error
		switch kind {
		case wizard.MessagePhoto:
			_, err = h.tg.SendPhoto(id, payload, caption, nil)
		case wizard.MessageDocument:
			_, err = h.tg.SendDocument(id, tgbotapi.FileID(payload), caption)
		default:
			err = h.tg.SendText(id, payload)
		}
		h.metrics.Notification("broadcast", err)
		if err != nil {
			failed++
			h.logger.Warn().Err(err).Int64("user_id", id).Msg("broadcast delivery failed")
			continue
		}
		sent++
	}

	h.logger.Info().Int("sent", sent).Int("failed", failed).Msg("broadcast finished")
	if _, err := h.tg.SendMarkdown(adminChatID, fmt.Sprintf(textBroadcastDone, sent, failed)); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", adminChatID).Msg("failed to send broadcast report")
	}
}
