package models

import "time"

// Lead контакт, оставленный пользователем бота подбора.
type Lead struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"created_at"`
}

// Row строка для выгрузки в таблицу.
func (l *Lead) Row() []interface{} {
	return []interface{}{
		l.CreatedAt.Format("2006-01-02 15:04:05"),
		l.UserID,
		l.Username,
		l.Name,
		l.Phone,
		l.City,
	}
}
