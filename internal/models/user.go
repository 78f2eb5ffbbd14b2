package models

import "time"

// User статусы доступа к каталогу продаж.
const (
	UserStatusPending  = "pending"
	UserStatusApproved = "approved"
	UserStatusRejected = "rejected"
)

type User struct {
	ID           int64     `json:"id"` // Telegram ID
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone"`
	Name         string    `json:"name"` // Как к пользователю обращаться
	City         string    `json:"city"`
	Status       string    `json:"status"`
	ChequeFileID string    `json:"cheque_file_id,omitempty"`
	JoinedAt     time.Time `json:"joined_at"`
	LastActive   time.Time `json:"last_active"`
}

// HasContact сообщает, заполнены ли все три контактных поля.
func (u *User) HasContact() bool {
	return u.Name != "" && u.Phone != "" && u.City != ""
}

func (u *User) IsApproved() bool {
	return u.Status == UserStatusApproved
}

// DisplayName возвращает имя для обращения или fallback.
func (u *User) DisplayName() string {
	if u == nil || u.Name == "" {
		return "Пользователь"
	}
	return u.Name
}

// Contact строка выгрузки контактов.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	City  string `json:"city"`
}

// ContactFilter отбор пользователей для выгрузки контактов.
type ContactFilter struct {
	// JoinedSince нулевое значение означает "за все время".
	JoinedSince time.Time
	// CompleteOnly только пользователи с именем, телефоном и городом.
	CompleteOnly bool
}
