package sales

import (
	"context"
	"errors"
	"fmt"
	"os"

	"asterbot/internal/bot"
	"asterbot/internal/database"
	"asterbot/internal/events"
	"asterbot/internal/export"
	"asterbot/internal/models"
	"asterbot/internal/wizard"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func (h *Handler) showAdminPanel(ctx context.Context, msg *tgbotapi.Message) {
	if !h.users.IsAdmin(msg.From.ID) {
		zerolog.Ctx(ctx).Warn().Int64("user_id", msg.From.ID).Msg("admin panel denied")
		h.reply(msg.Chat.ID, textAdminNoAccess)
		return
	}
	h.sendAdminPanel(msg.Chat.ID, textAdminPanel)
}

func (h *Handler) sendAdminPanel(chatID int64, text string) {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnAddAd), tgbotapi.NewKeyboardButton(btnManageAds)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnStats), tgbotapi.NewKeyboardButton(btnMailing)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnExport), tgbotapi.NewKeyboardButton(btnToggleOpen)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
	kb.ResizeKeyboard = true
	if _, err := h.tg.SendWithKeyboard(chatID, text, kb); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send admin panel")
	}
}

func (h *Handler) handleAdminButton(ctx context.Context, msg *tgbotapi.Message, button string) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	if !h.users.IsAdmin(userID) {
		zerolog.Ctx(ctx).Warn().Int64("user_id", userID).Str("button", button).Msg("admin action denied")
		h.reply(chatID, textAdminNoAccess)
		return
	}

	switch button {
	case btnAddAd:
		h.startWizard(ctx, userID, chatID, wizard.KindAd, nil)
	case btnManageAds:
		h.listAdsForAdmin(ctx, chatID)
	case btnStats:
		h.showStats(ctx, chatID)
	case btnMailing:
		h.startWizard(ctx, userID, chatID, wizard.KindMailing, nil)
	case btnExport:
		h.exportContacts(ctx, chatID)
	case btnToggleOpen:
		h.toggleOpen(ctx, userID, chatID)
	}
}

// completeAd сохраняет объявление и сразу уведомляет подходящих подписчиков.
func (h *Handler) completeAd(ctx context.Context, msg *tgbotapi.Message, res wizard.Result) completion {
	l := zerolog.Ctx(ctx)
	chatID := msg.Chat.ID

	ad, err := wizard.ToAd(res.State)
	if err == nil {
		err = h.repo.CreateAd(ctx, ad)
	}
	if err != nil {
		l.Error().Err(err).Int64("user_id", msg.From.ID).Msg("failed to save ad")
		h.reply(chatID, textAdSaveError)
		return completionRetry
	}
	h.sendAdminPanel(chatID, res.Done)
	l.Info().Int64("ad_id", ad.ID).Str("title", ad.Title).Msg("ad created")

	report, err := h.notifier.NotifyNewAd(ctx, ad)
	if err != nil {
		l.Error().Err(err).Int64("ad_id", ad.ID).Msg("failed to notify subscribers")
	}
	h.publish(events.EventAdPublished, events.AdEventPayload{
		AdID:      ad.ID,
		Title:     ad.Title,
		Model:     ad.Model,
		Year:      ad.Year,
		Price:     ad.Price,
		Matched:   len(report.Matched),
		Notified:  len(report.Matched) - len(report.Failed),
		CreatedBy: msg.From.ID,
	})
	return completionDone
}

func (h *Handler) listAdsForAdmin(ctx context.Context, chatID int64) {
	ads, err := h.repo.ListAds(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list ads")
		h.reply(chatID, textAdsError)
		return
	}
	if len(ads) == 0 {
		h.reply(chatID, textNoAds)
		return
	}

	for _, ad := range ads {
		kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnEdit, bot.DataID(bot.ActionEditAd, ad.ID)),
			tgbotapi.NewInlineKeyboardButtonData(btnDelete, bot.DataID(bot.ActionDeleteAd, ad.ID)),
		))
		if _, err := h.tg.SendWithInlineKeyboard(chatID, fmt.Sprintf(textAdListItem, ad.ID, ad.Title), kb); err != nil {
			h.logger.Error().Err(err).Int64("ad_id", ad.ID).Msg("failed to send ad item")
		}
	}
}

func (h *Handler) deleteAd(ctx context.Context, cb *tgbotapi.CallbackQuery, adID int64) {
	l := zerolog.Ctx(ctx)
	err := h.repo.DeleteAd(ctx, adID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		h.alert(cb, textAdNotFound)
		return
	case err != nil:
		l.Error().Err(err).Int64("ad_id", adID).Msg("failed to delete ad")
		h.alert(cb, textAdDeleteError)
		return
	}

	h.alert(cb, textAdDeleted)
	if err := h.tg.DeleteMessage(cb.Message.Chat.ID, cb.Message.MessageID); err != nil {
		l.Warn().Err(err).Msg("failed to delete ad message")
	}
	l.Info().Int64("ad_id", adID).Int64("admin_id", cb.From.ID).Msg("ad deleted")
}

func (h *Handler) showStats(ctx context.Context, chatID int64) {
	since := h.now().AddDate(0, 0, -models.ActiveUsersDays)
	stats, err := h.repo.GetSalesStats(ctx, since)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to get statistics")
		h.reply(chatID, textStatsError)
		return
	}
	h.reply(chatID, fmt.Sprintf(textStats, stats.TotalUsers, stats.ActiveUsers, stats.Ads))
}

func (h *Handler) completeMailing(ctx context.Context, msg *tgbotapi.Message, res wizard.Result) completion {
	l := zerolog.Ctx(ctx)
	chatID := msg.Chat.ID

	ids, err := h.repo.ListApprovedUserIDs(ctx)
	if err != nil {
		l.Error().Err(err).Msg("failed to list users for mailing")
		h.reply(chatID, textUsersListError)
		return completionRetry
	}
	if len(ids) == 0 {
		h.sendAdminPanel(chatID, textNoMailingUsers)
		return completionDone
	}

	text := res.State.Field(wizard.FieldMessage)
	h.sendAdminPanel(chatID, textMailingStarted)
	l.Info().Int("recipients", len(ids)).Msg("mailing started")

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.runMailing(context.WithoutCancel(ctx), chatID, ids, text)
	}()
	return completionDone
}

// runMailing рассылает текст одобренным пользователям с ограничением частоты.
func (h *Handler) runMailing(ctx context.Context, adminChatID int64, ids []int64, text string) {
	sent := 0
	for _, id := range ids {
		if err := h.mailing.Wait(ctx); err != nil {
			h.logger.Warn().Err(err).Msg("mailing interrupted")
			break
		}
		err := h.tg.SendText(id, text)
		h.metrics.Notification("mailing", err)
		if err != nil {
			h.logger.Warn().Err(err).Int64("user_id", id).Msg("mailing delivery failed")
			continue
		}
		sent++
	}

	h.logger.Info().Int("sent", sent).Int("total", len(ids)).Msg("mailing finished")
	h.reply(adminChatID, fmt.Sprintf(textMailingDone, sent, len(ids)))
}

func (h *Handler) exportContacts(ctx context.Context, chatID int64) {
	l := zerolog.Ctx(ctx)

	contacts, err := h.repo.ListContacts(ctx, models.ContactFilter{CompleteOnly: true})
	if err != nil {
		l.Error().Err(err).Msg("failed to list contacts")
		h.reply(chatID, textContactsError)
		return
	}
	if len(contacts) == 0 {
		h.reply(chatID, textNoUsersToExport)
		return
	}

	name := fmt.Sprintf("contacts_%s.xlsx", uuid.NewString()[:8])
	path, err := h.exporter.WriteContacts(name, export.SalesLayout, contacts)
	if err != nil {
		l.Error().Err(err).Msg("failed to write contacts")
		h.reply(chatID, textContactsError)
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			l.Warn().Err(err).Str("path", path).Msg("failed to remove export file")
		}
	}()

	if _, err := h.tg.SendDocument(chatID, tgbotapi.FilePath(path), ""); err != nil {
		l.Error().Err(err).Str("path", path).Msg("failed to send export file")
		h.reply(chatID, textExportSendError)
		return
	}
	l.Info().Int("contacts", len(contacts)).Msg("contacts exported")
}

func (h *Handler) toggleOpen(ctx context.Context, userID, chatID int64) {
	l := zerolog.Ctx(ctx)
	open, err := h.repo.IsBotOpen(ctx)
	if err == nil {
		open = !open
		err = h.repo.SetBotOpen(ctx, open)
	}
	if err != nil {
		l.Error().Err(err).Msg("failed to toggle bot status")
		h.reply(chatID, textToggleError)
		return
	}

	if open {
		h.sendAdminPanel(chatID, textBotOpened)
	} else {
		h.sendAdminPanel(chatID, textBotClosedByAdmin)
	}
	l.Info().Bool("open", open).Int64("admin_id", userID).Msg("bot status changed")
}

// notifySender считает доставку уведомлений о новых объявлениях.
type notifySender struct {
	tg      interface{ SendText(chatID int64, text string) error }
	metrics *bot.Metrics
}

func (s notifySender) SendText(chatID int64, text string) error {
	err := s.tg.SendText(chatID, text)
	s.metrics.Notification("new_ad", err)
	return err
}
