package domain

import (
	"context"
	"time"

	"asterbot/internal/filters"
	"asterbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, state *models.UserState) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

// SessionManager единственный владелец правил состояния пользователя.
type SessionManager interface {
	Get(ctx context.Context, userID int64) (*models.UserState, error)
	StartDialogue(ctx context.Context, userID int64) error
	SaveDialogue(ctx context.Context, userID int64, buffer []models.DialogueMessage) error
	StartWizard(ctx context.Context, userID int64, wizard *models.WizardState) error
	SaveWizard(ctx context.Context, userID int64, wizard *models.WizardState) error
	SetBrowse(ctx context.Context, userID int64, browse *models.BrowseState) error
	Reset(ctx context.Context, userID int64) error
	Allow(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
	ArmIdle(userID int64, fire func())
	CancelIdle(userID int64)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (bool, error)
	UpsertUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	UpdateUserPhone(ctx context.Context, userID int64, phone string) error
	UpdateUserName(ctx context.Context, userID int64, name string) error
	UpdateUserCity(ctx context.Context, userID int64, city string) error
	UpdateUserContact(ctx context.Context, userID int64, c models.Contact) error
	TouchUser(ctx context.Context, userID int64) error
	ListUserIDs(ctx context.Context) ([]int64, error)
	ListContacts(ctx context.Context, f models.ContactFilter) ([]models.Contact, error)
	CountUsers(ctx context.Context) (int, error)
}

type SelectionRepository interface {
	UserRepository
	SaveUserRequest(ctx context.Context, userID int64, preferences filters.Set) error
	LatestPreferences(ctx context.Context, userID int64) (filters.Set, error)
	ListPrizes(ctx context.Context) ([]models.Prize, error)
	AssignPrize(ctx context.Context, userID, prizeID int64, promoCode string) (*models.UserPrize, error)
	GetUserPrize(ctx context.Context, userID int64) (*models.UserPrize, error)
	ListUserPrizes(ctx context.Context, userID int64) ([]models.UserPrize, error)
	PurgePrizes(ctx context.Context) (int64, error)
	IncrementStat(ctx context.Context, counter string, now time.Time) error
	GetSelectionStats(ctx context.Context, now time.Time) (*models.SelectionStats, error)
}

type SalesRepository interface {
	UserRepository
	UpdateUserStatus(ctx context.Context, userID int64, status string) error
	UpdateUserCheque(ctx context.Context, userID int64, fileID string) error
	ListApprovedUserIDs(ctx context.Context) ([]int64, error)
	ListInactiveUserIDs(ctx context.Context, cutoff time.Time) ([]int64, error)
	IsBotOpen(ctx context.Context) (bool, error)
	SetBotOpen(ctx context.Context, open bool) error
	CreateAd(ctx context.Context, ad *models.Ad) error
	GetAd(ctx context.Context, id int64) (*models.Ad, error)
	ListAds(ctx context.Context) ([]*models.Ad, error)
	DeleteAd(ctx context.Context, id int64) error
	CountAdsSince(ctx context.Context, since time.Time) (int, error)
	IsFavorite(ctx context.Context, userID, adID int64) (bool, error)
	AddFavorite(ctx context.Context, userID, adID int64) error
	RemoveFavorite(ctx context.Context, userID, adID int64) error
	ListFavoriteAds(ctx context.Context, userID int64) ([]*models.Ad, error)
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	ListSubscriptions(ctx context.Context, userID int64) ([]*models.Subscription, error)
	ListAllSubscriptions(ctx context.Context) ([]*models.Subscription, error)
	DeleteSubscription(ctx context.Context, id, userID int64) error
	GetSalesStats(ctx context.Context, activeSince time.Time) (*models.SalesStats, error)
}

type SyncQueueRepository interface {
	CreateSyncTask(ctx context.Context, task *models.SyncTask) error
	GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error)
	UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMediaGroup(config tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type SheetsWriter interface {
	AppendLead(ctx context.Context, lead *models.Lead) error
}

type LeadQueue interface {
	EnqueueLead(ctx context.Context, lead *models.Lead) error
}

type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendText(chatID int64, text string) error
	SendMarkdown(chatID int64, text string) (tgbotapi.Message, error)
	SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	SendPhoto(chatID int64, fileID, caption string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	SendDocument(chatID int64, file tgbotapi.RequestFileData, caption string) (tgbotapi.Message, error)
	SendMediaGroup(chatID int64, fileIDs []string, caption string) error
	EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	EditPhoto(chatID int64, messageID int, fileID, caption string, keyboard *tgbotapi.InlineKeyboardMarkup) error
	DeleteMessage(chatID int64, messageID int) error
	AnswerCallback(callbackID string, text string) error
	AnswerCallbackAlert(callbackID string, text string) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type UserService interface {
	IsAdmin(userID int64) bool
	IsManager(userID int64) bool
	AdminIDs() []int64
	ManagerIDs() []int64
}
