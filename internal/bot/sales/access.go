package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"asterbot/internal/bot"
	"asterbot/internal/database"
	"asterbot/internal/events"
	"asterbot/internal/models"
	"asterbot/internal/wizard"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// allowMessage пропускает администраторов и менеджеров всегда, остальных только при открытом боте
// или одобренном доступе. /start и оплата доступны всем.
func (h *Handler) allowMessage(ctx context.Context, msg *tgbotapi.Message, state *models.UserState) bool {
	userID := msg.From.ID
	if h.users.IsManager(userID) {
		return true
	}

	open, err := h.repo.IsBotOpen(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to read bot status")
		h.reply(msg.Chat.ID, textGenericError)
		return false
	}
	if open || h.approved(ctx, userID) {
		return true
	}
	if bot.IsCommand(msg, "start") || strings.TrimSpace(msg.Text) == btnPaid || state.InWizard(wizard.KindPayment) {
		return true
	}

	zerolog.Ctx(ctx).Debug().Int64("user_id", userID).Msg("access denied, bot is closed")
	h.reply(msg.Chat.ID, textBotClosed)
	return false
}

func (h *Handler) allowCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) bool {
	userID := cb.From.ID
	if h.users.IsManager(userID) || h.approved(ctx, userID) {
		return true
	}

	open, err := h.repo.IsBotOpen(ctx)
	switch {
	case err != nil:
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to read bot status")
		h.alert(cb, textGenericError)
	case open:
		h.alert(cb, textNoAccess)
	default:
		h.alert(cb, textBotClosedAlert)
	}
	return false
}

func (h *Handler) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	l := zerolog.Ctx(ctx)
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if err := h.sessions.Reset(ctx, userID); err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("failed to reset session")
	}

	open, err := h.repo.IsBotOpen(ctx)
	if err != nil {
		l.Error().Err(err).Msg("failed to read bot status")
		h.reply(chatID, textGenericError)
		return
	}

	status := models.UserStatusPending
	if open || h.users.IsAdmin(userID) {
		status = models.UserStatusApproved
	}
	user, created, err := h.users.Register(ctx, msg.From, status)
	if err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("failed to register user")
		h.reply(chatID, textGenericError)
		return
	}

	switch {
	case user.IsApproved():
		switch {
		case user.HasContact():
			h.sendMainMenu(chatID, userID, textAlreadyApproved)
		case created:
			h.reply(chatID, textWelcome)
			h.startWizard(ctx, userID, chatID, wizard.KindSalesContact, nil)
		default:
			h.reply(chatID, textApprovedNeedInfo)
			h.startWizard(ctx, userID, chatID, wizard.KindSalesContact, nil)
		}

	case user.Status == models.UserStatusPending && user.ChequeFileID != "":
		h.reply(chatID, textPendingApproval)

	case open && user.Status == models.UserStatusPending:
		// заявка без чека из закрытого периода: в открытом режиме оплата не нужна
		if err := h.repo.UpdateUserStatus(ctx, userID, models.UserStatusApproved); err != nil {
			l.Error().Err(err).Int64("user_id", userID).Msg("failed to approve user")
			h.reply(chatID, textGenericError)
			return
		}
		h.reply(chatID, textWelcome)
		h.startWizard(ctx, userID, chatID, wizard.KindSalesContact, nil)

	case open:
		h.reply(chatID, textStatusForbidden)

	default:
		h.askPayment(chatID)
	}
}

func (h *Handler) askPayment(chatID int64) {
	kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnPaid)))
	kb.ResizeKeyboard = true

	out := tgbotapi.NewMessage(chatID, h.cfg.Sales.PaymentText)
	out.ParseMode = tgbotapi.ModeMarkdown
	out.ReplyMarkup = kb
	if _, err := h.tg.Send(out); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send payment text")
	}
}

func (h *Handler) startPayment(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	user, _, err := h.users.Register(ctx, msg.From, models.UserStatusPending)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("failed to register user")
		h.reply(msg.Chat.ID, textGenericError)
		return
	}
	if user.IsApproved() {
		h.sendMainMenu(msg.Chat.ID, userID, textAlreadyApproved)
		return
	}
	h.startWizard(ctx, userID, msg.Chat.ID, wizard.KindPayment, nil)
}

// completePayment сохраняет чек, возвращает заявку в ожидание и пересылает чек администраторам.
func (h *Handler) completePayment(ctx context.Context, msg *tgbotapi.Message, res wizard.Result) completion {
	l := zerolog.Ctx(ctx)
	userID := msg.From.ID
	fileID := res.State.Field(wizard.FieldCheque)
	kind := wizard.AttachmentKind(res.State, wizard.FieldCheque)

	err := h.repo.UpdateUserCheque(ctx, userID, fileID)
	if err == nil {
		err = h.repo.UpdateUserStatus(ctx, userID, models.UserStatusPending)
	}
	if err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("failed to save cheque")
		h.reply(msg.Chat.ID, textChequeSaveError)
		return completionRetry
	}
	h.reply(msg.Chat.ID, res.Done)

	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(btnApprove, bot.DataID(bot.ActionApprove, userID)),
		tgbotapi.NewInlineKeyboardButtonData(btnReject, bot.DataID(bot.ActionReject, userID)),
	))
	text := fmt.Sprintf(textNewApplication, bot.Username(msg.From))
	for _, adminID := range h.users.AdminIDs() {
		_, err := h.tg.SendWithInlineKeyboard(adminID, text, kb)
		if err == nil {
			err = h.forward(adminID, kind, fileID, "")
		}
		h.metrics.Notification("application", err)
		if err != nil {
			l.Error().Err(err).Int64("admin_id", adminID).Int64("user_id", userID).Msg("failed to notify admin about application")
		}
	}
	l.Info().Int64("user_id", userID).Str("kind", kind).Msg("payment cheque received")
	return completionDone
}

func (h *Handler) approve(ctx context.Context, cb *tgbotapi.CallbackQuery, targetID int64) {
	l := zerolog.Ctx(ctx)
	if err := h.repo.UpdateUserStatus(ctx, targetID, models.UserStatusApproved); err != nil {
		l.Error().Err(err).Int64("user_id", targetID).Msg("failed to approve user")
		if errors.Is(err, database.ErrNotFound) {
			h.alert(cb, textUserNotFound)
			return
		}
		h.alert(cb, textApproveError)
		return
	}

	// мастер контакта запускается в сессии одобренного пользователя
	h.reply(targetID, textApprovedNeedInfo)
	h.startWizard(ctx, targetID, targetID, wizard.KindSalesContact, nil)

	h.answer(cb, textUserApproved)
	h.publish(events.EventAccessApproved, events.AccessEventPayload{
		UserID:    targetID,
		Status:    models.UserStatusApproved,
		DecidedBy: cb.From.ID,
	})
	l.Info().Int64("user_id", targetID).Int64("admin_id", cb.From.ID).Msg("user approved")
}

func (h *Handler) reject(ctx context.Context, cb *tgbotapi.CallbackQuery, targetID int64) {
	l := zerolog.Ctx(ctx)
	if err := h.repo.UpdateUserStatus(ctx, targetID, models.UserStatusRejected); err != nil {
		l.Error().Err(err).Int64("user_id", targetID).Msg("failed to reject user")
		if errors.Is(err, database.ErrNotFound) {
			h.alert(cb, textUserNotFound)
			return
		}
		h.alert(cb, textRejectError)
		return
	}

	h.reply(targetID, textAccessRejected)
	h.answer(cb, textUserRejected)
	h.publish(events.EventAccessRejected, events.AccessEventPayload{
		UserID:    targetID,
		Status:    models.UserStatusRejected,
		DecidedBy: cb.From.ID,
	})
	l.Info().Int64("user_id", targetID).Int64("admin_id", cb.From.ID).Msg("user rejected")
}

func (h *Handler) completeContact(ctx context.Context, msg *tgbotapi.Message, res wizard.Result) completion {
	userID := msg.From.ID
	contact := wizard.ToContact(res.State)
	if err := h.repo.UpdateUserContact(ctx, userID, contact); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("failed to save contact")
		h.reply(msg.Chat.ID, textContactSaveError)
		return completionRetry
	}
	h.sendMainMenu(msg.Chat.ID, userID, res.Done)
	return completionDone
}

// forward пересылает вложение или текст мастера получателю.
func (h *Handler) forward(chatID int64, kind, payload, caption string) error {
	var err error
	switch kind {
	case wizard.MessagePhoto:
		_, err = h.tg.SendPhoto(chatID, payload, caption, nil)
	case wizard.MessageDocument:
		_, err = h.tg.SendDocument(chatID, tgbotapi.FileID(payload), caption)
	default:
		err = h.tg.SendText(chatID, payload)
	}
	return err
}
