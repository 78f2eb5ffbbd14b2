package models

import "time"

// UserRequest сохраненный результат успешного подбора.
type UserRequest struct {
	ID          int64          `json:"id"`
	UserID      int64          `json:"user_id"`
	Preferences map[string]any `json:"preferences"`
	CreatedAt   time.Time      `json:"created_at"`
}

// DailyStatistics строка таблицы statistics.
type DailyStatistics struct {
	Date         string `json:"date"`
	TotalUsers   int    `json:"total_users"`
	NewUsers     int    `json:"new_users"`
	MessagesSent int    `json:"messages_sent"`
	LinksSent    int    `json:"links_sent"`
}

// SelectionStats сводка для админ-панели бота подбора.
type SelectionStats struct {
	TotalUsers    int `json:"total_users"`
	NewUsersToday int `json:"new_users_today"`
	MessagesSent  int `json:"messages_sent"`
	LinksSent     int `json:"links_sent"`
}

// SalesStats сводка для админ-панели бота продаж.
type SalesStats struct {
	TotalUsers  int `json:"total_users"`
	ActiveUsers int `json:"active_users"`
	Ads         int `json:"ads"`
}
