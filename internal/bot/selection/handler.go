// Package selection реализует бота подбора автомобиля: регистрацию контакта,
// диалог с языковой моделью, акцию с призами и админ-панель.
package selection

import (
	"context"
	"strings"
	"sync"
	"time"

	"asterbot/internal/bot"
	"asterbot/internal/config"
	"asterbot/internal/dialogue"
	"asterbot/internal/domain"
	"asterbot/internal/export"
	"asterbot/internal/models"
	"asterbot/internal/wizard"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Users регистрация и роли пользователей.
type Users interface {
	IsAdmin(userID int64) bool
	Register(ctx context.Context, from *tgbotapi.User, status string) (*models.User, bool, error)
}

// Dialogue один ход диалога подбора.
type Dialogue interface {
	Turn(ctx context.Context, userID int64, buffer []models.DialogueMessage, utterance string) (dialogue.Outcome, error)
}

// Deps зависимости обработчика. Leads, Events и Metrics необязательны.
type Deps struct {
	Config   *config.Config
	Telegram domain.TelegramService
	Sessions domain.SessionManager
	Repo     domain.SelectionRepository
	Users    Users
	Dialogue Dialogue
	Wizards  *wizard.Machine
	Exporter *export.Exporter
	Leads    domain.LeadQueue
	Events   domain.EventPublisher
	Metrics  *bot.Metrics
	Logger   *zerolog.Logger
}

type Handler struct {
	cfg       *config.Config
	tg        domain.TelegramService
	sessions  domain.SessionManager
	repo      domain.SelectionRepository
	users     Users
	dialogue  Dialogue
	wizards   *wizard.Machine
	exporter  *export.Exporter
	leads     domain.LeadQueue
	events    domain.EventPublisher
	metrics   *bot.Metrics
	broadcast *rate.Limiter
	loc       *time.Location
	now       func() time.Time
	wg        sync.WaitGroup
	logger    *zerolog.Logger
}

var _ bot.UpdateHandler = (*Handler)(nil)

func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	wizards := d.Wizards
	if wizards == nil {
		wizards = wizard.New()
	}
	exporter := d.Exporter
	if exporter == nil {
		exporter = export.NewExporter(d.Config.Exports.Path, logger)
	}

	loc, err := time.LoadLocation(d.Config.Selection.Timezone)
	if err != nil {
		logger.Warn().Err(err).Str("timezone", d.Config.Selection.Timezone).Msg("unknown timezone, using UTC")
		loc = time.UTC
	}

	rps := d.Config.Bot.BroadcastRPS
	if rps <= 0 {
		rps = 20
	}

	return &Handler{
		cfg:       d.Config,
		tg:        d.Telegram,
		sessions:  d.Sessions,
		repo:      d.Repo,
		users:     d.Users,
		dialogue:  d.Dialogue,
		wizards:   wizards,
		exporter:  exporter,
		leads:     d.Leads,
		events:    d.Events,
		metrics:   d.Metrics,
		broadcast: rate.NewLimiter(rate.Limit(rps), 1),
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

// Wait дожидается фоновых рассылок.
func (h *Handler) Wait() {
	h.wg.Wait()
}

func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	userID := msg.From.ID
	l := zerolog.Ctx(ctx)
	l.Debug().Int64("user_id", userID).Str("text", msg.Text).Msg("Handling message")

	// любая активность снимает напоминание; диалог заводит его заново
	h.sessions.CancelIdle(userID)

	switch {
	case bot.IsCommand(msg, "start"):
		h.handleStart(ctx, msg)
		return
	case bot.IsCommand(msg, "cancel"):
		h.handleCancel(ctx, msg)
		return
	case bot.IsCommand(msg, "admin"):
		h.handleAdmin(ctx, msg)
		return
	}

	state, err := h.sessions.Get(ctx, userID)
	if err != nil {
		h.reply(msg.Chat.ID, bot.ErrorMessage(err))
		return
	}

	switch {
	case state.InWizard(wizard.KindSelectionContact):
		h.advanceContact(ctx, msg, state.Wizard)
	case state.InWizard(wizard.KindBroadcast) && h.users.IsAdmin(userID):
		h.advanceBroadcast(ctx, msg, state.Wizard)
	case state.InDialogue():
		h.handleDialogue(ctx, msg, state)
	default:
		h.sendMainMenu(msg.Chat.ID, textChooseAction)
	}
}

func (h *Handler) HandleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.From == nil || cb.Message == nil {
		return
	}
	l := zerolog.Ctx(ctx)
	chatID := cb.Message.Chat.ID
	msgID := cb.Message.MessageID
	h.sessions.CancelIdle(cb.From.ID)

	if err := h.tg.AnswerCallback(cb.ID, ""); err != nil {
		l.Warn().Err(err).Msg("failed to answer callback")
	}

	action, err := bot.DecodeAction(cb.Data)
	if err != nil {
		l.Warn().Err(err).Int64("user_id", cb.From.ID).Msg("unknown callback data")
		h.edit(chatID, msgID, textTryAgain, nil)
		return
	}

	switch action.Kind {
	case bot.ActionSelectCar:
		h.openDialogue(ctx, cb.From.ID, chatID)
	case bot.ActionMyPrizes:
		h.showMyPrizes(ctx, cb.From.ID, chatID, msgID)
	case bot.ActionSelectPrize:
		h.showPrizes(ctx, cb.From.ID, chatID, msgID)
	case bot.ActionPrize:
		h.choosePrize(ctx, cb.From, chatID, msgID, action.ID)
	case bot.ActionAdminBroadcast, bot.ActionAdminStats, bot.ActionAdminExportMenu, bot.ActionAdminExport:
		if !h.users.IsAdmin(cb.From.ID) {
			l.Warn().Int64("user_id", cb.From.ID).Msg("admin action denied")
			h.edit(chatID, msgID, textNoAdminAccess, nil)
			return
		}
		h.handleAdminAction(ctx, cb.From.ID, chatID, msgID, action)
	default:
		h.edit(chatID, msgID, bot.TextUnknownAction, nil)
	}
}

func (h *Handler) handleCancel(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	if state, err := h.sessions.Get(ctx, userID); err == nil && state.Wizard != nil {
		h.metrics.WizardCancelled(state.Wizard.Kind)
	}
	if err := h.sessions.Reset(ctx, userID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("failed to reset session")
	}
	h.replyRemoveKeyboard(msg.Chat.ID, textCancelled)
	zerolog.Ctx(ctx).Info().Int64("user_id", userID).Msg("dialogue cancelled")
}

func (h *Handler) mainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		bot.DataRow("🔍 Подобрать авто", bot.Data(bot.ActionSelectCar)),
		bot.DataRow("🎁 Мои призы", bot.Data(bot.ActionMyPrizes)),
		bot.URLRow(textContactManager, h.cfg.Selection.WhatsAppLink),
	)
}

func (h *Handler) sendMainMenu(chatID int64, text string) {
	if _, err := h.tg.SendWithInlineKeyboard(chatID, text, h.mainMenu()); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send main menu")
	}
}

func (h *Handler) promoActive() bool {
	today := int(h.now().In(h.loc).Weekday())
	for _, d := range h.cfg.Selection.PromoWeekdays {
		if d == today {
			return true
		}
	}
	return false
}

func (h *Handler) reply(chatID int64, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if err := h.tg.SendText(chatID, text); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

func (h *Handler) replyRemoveKeyboard(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := h.tg.Send(msg); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

func (h *Handler) edit(chatID int64, msgID int, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	if _, err := h.tg.EditMessage(chatID, msgID, text, kb); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to edit message")
	}
}

func (h *Handler) editMarkdown(chatID int64, msgID int, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	cfg := tgbotapi.NewEditMessageText(chatID, msgID, text)
	cfg.ParseMode = tgbotapi.ModeMarkdown
	cfg.ReplyMarkup = kb
	if _, err := h.tg.Send(cfg); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to edit message")
	}
}
