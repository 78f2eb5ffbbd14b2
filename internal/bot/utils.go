package bot

import (
	"strings"

	"asterbot/internal/wizard"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// UpdateUserID возвращает автора обновления или 0.
func UpdateUserID(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID
	}
	return 0
}

// WizardInput переводит сообщение в ввод шага мастера.
// Для фото берется самый крупный вариант, подпись к вложению считается текстом.
func WizardInput(msg *tgbotapi.Message) wizard.Input {
	in := wizard.Input{Text: msg.Text}
	if in.Text == "" {
		in.Text = msg.Caption
	}
	if msg.Contact != nil {
		in.ContactPhone = msg.Contact.PhoneNumber
	}
	if n := len(msg.Photo); n > 0 {
		in.PhotoID = msg.Photo[n-1].FileID
	}
	if msg.Document != nil {
		in.DocumentID = msg.Document.FileID
	}
	return in
}

// IsCommand сообщает, является ли текст указанной командой (с упоминанием бота или без).
func IsCommand(msg *tgbotapi.Message, command string) bool {
	if msg == nil || !msg.IsCommand() {
		return false
	}
	return strings.EqualFold(msg.Command(), command)
}

// Username возвращает @username или имя, если username не задан.
func Username(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	if u.UserName != "" {
		return "@" + u.UserName
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// URLRow строка из одной кнопки-ссылки.
func URLRow(text, url string) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(text, url))
}

// DataRow строка из одной кнопки с данными.
func DataRow(text, data string) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(text, data))
}
