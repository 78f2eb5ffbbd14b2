// Package sales реализует бота продаж: платный или одобренный доступ, каталог объявлений,
// избранное, подписки, поддержку и админ-панель.
package sales

import (
	"context"
	"strings"
	"sync"
	"time"

	"asterbot/internal/bot"
	"asterbot/internal/catalog"
	"asterbot/internal/config"
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
	IsManager(userID int64) bool
	AdminIDs() []int64
	ManagerIDs() []int64
	Register(ctx context.Context, from *tgbotapi.User, status string) (*models.User, bool, error)
}

// Deps зависимости обработчика. Notifier, Exporter, Events и Metrics необязательны.
type Deps struct {
	Config   *config.Config
	Telegram domain.TelegramService
	Sessions domain.SessionManager
	Repo     domain.SalesRepository
	Users    Users
	Wizards  *wizard.Machine
	Notifier *catalog.Notifier
	Exporter *export.Exporter
	Events   domain.EventPublisher
	Metrics  *bot.Metrics
	Logger   *zerolog.Logger
}

type Handler struct {
	cfg      *config.Config
	tg       domain.TelegramService
	sessions domain.SessionManager
	repo     domain.SalesRepository
	users    Users
	wizards  *wizard.Machine
	notifier *catalog.Notifier
	exporter *export.Exporter
	events   domain.EventPublisher
	metrics  *bot.Metrics
	mailing  *rate.Limiter
	now      func() time.Time
	wg       sync.WaitGroup
	logger   *zerolog.Logger
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
	notifier := d.Notifier
	if notifier == nil {
		notifier = catalog.NewNotifier(d.Repo, notifySender{tg: d.Telegram, metrics: d.Metrics}, logger)
	}
	exporter := d.Exporter
	if exporter == nil {
		exporter = export.NewExporter(d.Config.Exports.Path, logger)
	}

	rps := d.Config.Bot.BroadcastRPS
	if rps <= 0 {
		rps = 20
	}

	return &Handler{
		cfg:      d.Config,
		tg:       d.Telegram,
		sessions: d.Sessions,
		repo:     d.Repo,
		users:    d.Users,
		wizards:  wizards,
		notifier: notifier,
		exporter: exporter,
		events:   d.Events,
		metrics:  d.Metrics,
		mailing:  rate.NewLimiter(rate.Limit(rps), 1),
		now:      time.Now,
		logger:   logger,
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
	chatID := msg.Chat.ID
	l := zerolog.Ctx(ctx)
	l.Debug().Int64("user_id", userID).Str("text", msg.Text).Msg("Handling message")

	state, err := h.sessions.Get(ctx, userID)
	if err != nil {
		h.reply(chatID, bot.ErrorMessage(err))
		return
	}

	if !h.allowMessage(ctx, msg, state) {
		return
	}

	switch {
	case bot.IsCommand(msg, "start"):
		h.handleStart(ctx, msg)
		return
	case bot.IsCommand(msg, "admin"):
		h.showAdminPanel(ctx, msg)
		return
	case bot.IsCommand(msg, "support"):
		h.startSupport(ctx, msg)
		return
	}

	if state.InWizard("") {
		h.advanceWizard(ctx, msg, state.Wizard)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if wizard.IsCancel(text) {
		h.handleCancel(ctx, msg)
		return
	}

	switch text {
	case btnPaid:
		h.startPayment(ctx, msg)
		return
	case btnAddAd, btnManageAds, btnStats, btnMailing, btnExport, btnToggleOpen:
		h.handleAdminButton(ctx, msg, text)
		return
	}

	if !h.approved(ctx, userID) {
		h.reply(chatID, textNoAccess)
		return
	}

	switch text {
	case btnAllAds:
		h.browseAll(ctx, msg)
	case btnFavorites:
		h.browseFavorites(ctx, msg)
	case btnSubscriptions:
		h.showSubscriptionsMenu(chatID)
	case btnCreateSubscription:
		h.startWizard(ctx, userID, chatID, wizard.KindSubscription, nil)
	case btnMySubscriptions:
		h.listSubscriptions(ctx, userID, chatID)
	case btnSupport:
		h.startSupport(ctx, msg)
	case btnAdminPanel:
		h.showAdminPanel(ctx, msg)
	default:
		h.sendMainMenu(chatID, userID, textChooseAction)
	}
}

func (h *Handler) HandleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.From == nil || cb.Message == nil {
		return
	}
	l := zerolog.Ctx(ctx)
	userID := cb.From.ID

	if !h.allowCallback(ctx, cb) {
		return
	}

	action, err := bot.DecodeAction(cb.Data)
	if err != nil {
		l.Warn().Err(err).Int64("user_id", userID).Msg("unknown callback data")
		h.answer(cb, bot.TextUnknownAction)
		return
	}

	switch action.Kind {
	case bot.ActionApprove, bot.ActionReject, bot.ActionEditAd, bot.ActionDeleteAd:
		if !h.users.IsAdmin(userID) {
			l.Warn().Int64("user_id", userID).Str("data", cb.Data).Msg("admin action denied")
			h.alert(cb, textNoRights)
			return
		}
	}

	switch action.Kind {
	case bot.ActionApprove:
		h.approve(ctx, cb, action.ID)
	case bot.ActionReject:
		h.reject(ctx, cb, action.ID)
	case bot.ActionPrevAd, bot.ActionNextAd:
		h.navigate(ctx, cb, action.Kind == bot.ActionNextAd)
	case bot.ActionAddFavorite:
		h.toggleFavorite(ctx, cb, action.ID, true)
	case bot.ActionRemoveFavorite:
		h.toggleFavorite(ctx, cb, action.ID, false)
	case bot.ActionShowPhotos, bot.ActionDescription, bot.ActionInspection, bot.ActionThickness:
		h.showDetails(ctx, cb, action)
	case bot.ActionBuy:
		h.requestBuy(ctx, cb, action.ID)
	case bot.ActionDiscount:
		h.requestDiscount(ctx, cb, action.ID)
	case bot.ActionDeleteSubscription:
		h.deleteSubscription(ctx, cb, action.ID)
	case bot.ActionReply:
		h.startReply(ctx, cb, action.ID)
	case bot.ActionEditAd:
		h.alert(cb, textEditNotReady)
	case bot.ActionDeleteAd:
		h.deleteAd(ctx, cb, action.ID)
	default:
		h.answer(cb, bot.TextUnknownAction)
	}
}

func (h *Handler) handleCancel(ctx context.Context, msg *tgbotapi.Message) {
	if err := h.sessions.Reset(ctx, msg.From.ID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", msg.From.ID).Msg("failed to reset session")
	}
	h.sendMainMenu(msg.Chat.ID, msg.From.ID, textCancelled)
}

// startWizard запускает мастер и отправляет первый вопрос.
func (h *Handler) startWizard(ctx context.Context, userID, chatID int64, kind string, seed map[string]string) bool {
	st, prompt, err := h.wizards.Start(kind, seed)
	if err == nil {
		err = h.sessions.StartWizard(ctx, userID, st)
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Str("wizard", kind).Msg("failed to start wizard")
		h.reply(chatID, bot.ErrorMessage(err))
		return false
	}
	h.replyCancelable(chatID, prompt)
	return true
}

// completion итог обработчика завершения мастера.
type completion int

const (
	completionDone completion = iota
	// completionRetry результат не сохранен, мастер остается на последнем шаге.
	completionRetry
	// completionAbort повторять нечего, мастер закрывается без результата.
	completionAbort
)

// advanceWizard применяет сообщение к активному мастеру и после завершения
// передает собранные данные обработчику вида мастера.
func (h *Handler) advanceWizard(ctx context.Context, msg *tgbotapi.Message, cur *models.WizardState) {
	l := zerolog.Ctx(ctx)
	userID := msg.From.ID
	chatID := msg.Chat.ID

	res, err := h.wizards.Advance(cur, bot.WizardInput(msg))
	if err != nil {
		l.Error().Err(err).Int64("user_id", userID).Str("wizard", cur.Kind).Msg("wizard failed")
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
		h.sendMainMenu(chatID, userID, textCancelled)
		return
	case wizard.Reprompt:
		h.sendAll(chatID, res.Messages)
		return
	case wizard.Collected, wizard.Next:
		if err := h.sessions.SaveWizard(ctx, userID, res.State); err != nil {
			l.Error().Err(err).Int64("user_id", userID).Msg("failed to save wizard")
			h.reply(chatID, bot.ErrorMessage(err))
			return
		}
		h.sendAll(chatID, res.Messages)
		return
	}

	h.sendAll(chatID, res.Messages)

	var done completion
	switch cur.Kind {
	case wizard.KindSalesContact:
		done = h.completeContact(ctx, msg, res)
	case wizard.KindPayment:
		done = h.completePayment(ctx, msg, res)
	case wizard.KindSubscription:
		done = h.completeSubscription(ctx, msg, res)
	case wizard.KindDiscount:
		done = h.completeDiscount(ctx, msg, res)
	case wizard.KindSupport:
		done = h.completeSupport(ctx, msg, res)
	case wizard.KindSupportReply:
		done = h.completeReply(ctx, msg, res)
	case wizard.KindAd:
		done = h.completeAd(ctx, msg, res)
	case wizard.KindMailing:
		done = h.completeMailing(ctx, msg, res)
	default:
		l.Warn().Str("wizard", cur.Kind).Msg("wizard is not handled by sales bot")
		h.reply(chatID, textGenericError)
		done = completionAbort
	}

	if done == completionRetry {
		// сессия остается на последнем шаге, пользователь может повторить ввод
		l.Warn().Int64("user_id", userID).Str("wizard", cur.Kind).Msg("wizard result not saved, step kept")
		if prompt, err := h.wizards.Prompt(cur); err == nil {
			h.replyCancelable(chatID, prompt)
		}
		return
	}

	if err := h.sessions.Reset(ctx, userID); err != nil {
		l.Error().Err(err).Int64("user_id", userID).Msg("failed to reset session")
	}
	if done == completionDone {
		h.metrics.WizardCompleted(cur.Kind)
		l.Info().Int64("user_id", userID).Str("wizard", cur.Kind).Msg("wizard completed")
	}
}

// approved сообщает, открыт ли пользователю каталог. Администраторы проходят всегда.
func (h *Handler) approved(ctx context.Context, userID int64) bool {
	if h.users.IsAdmin(userID) {
		return true
	}
	user, err := h.repo.GetUser(ctx, userID)
	if err != nil {
		return false
	}
	return user.IsApproved()
}

func (h *Handler) mainMenu(userID int64) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAllAds),
			tgbotapi.NewKeyboardButton(btnFavorites),
			tgbotapi.NewKeyboardButton(btnSubscriptions),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnSupport)),
	}
	if h.users.IsAdmin(userID) {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnAdminPanel)))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func (h *Handler) sendMainMenu(chatID, userID int64, text string) {
	if _, err := h.tg.SendWithKeyboard(chatID, text, h.mainMenu(userID)); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send main menu")
	}
}

// replyCancelable вопрос мастера с кнопкой "Отмена".
func (h *Handler) replyCancelable(chatID int64, text string) {
	kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)))
	kb.ResizeKeyboard = true
	if _, err := h.tg.SendWithKeyboard(chatID, text, kb); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

func (h *Handler) reply(chatID int64, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if err := h.tg.SendText(chatID, text); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

func (h *Handler) sendAll(chatID int64, messages []string) {
	for _, m := range messages {
		h.reply(chatID, m)
	}
}

func (h *Handler) answer(cb *tgbotapi.CallbackQuery, text string) {
	if err := h.tg.AnswerCallback(cb.ID, text); err != nil {
		h.logger.Warn().Err(err).Msg("failed to answer callback")
	}
}

func (h *Handler) alert(cb *tgbotapi.CallbackQuery, text string) {
	if err := h.tg.AnswerCallbackAlert(cb.ID, text); err != nil {
		h.logger.Warn().Err(err).Msg("failed to answer callback")
	}
}

func (h *Handler) publish(eventType string, payload interface{}) {
	if h.events == nil {
		return
	}
	if err := h.events.PublishJSON(eventType, payload); err != nil {
		h.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}
