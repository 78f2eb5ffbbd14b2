package models

const ParseModeMarkdown = "Markdown"

// SettingBotOpen ключ флага "бот открыт" в bot_settings.
const SettingBotOpen = "is_open"

const (
	DefaultRedisTTL   = 24 * 60 * 60 // сек
	RateLimitMessages = 20
	RateLimitWindow   = 60 // сек

	// WorkerQueueSize буфер задач синхронизации лидов
	WorkerQueueSize = 1000

	PromoCodeLength = 8
	MinAdYear       = 1900

	// InactivityWindowHours пользователь без сообщений дольше окна получает напоминание
	InactivityWindowHours = 24
	ActiveUsersDays       = 7
)
