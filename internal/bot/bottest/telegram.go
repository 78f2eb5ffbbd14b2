// Package bottest содержит поддельный Telegram-сервис для тестов обработчиков.
package bottest

import (
	"errors"
	"strings"
	"sync"

	"asterbot/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var _ domain.TelegramService = (*Telegram)(nil)

// Sent одно исходящее действие.
type Sent struct {
	ChatID    int64
	Kind      string // text, photo, document, album, edit, edit_photo, delete, callback, alert
	Text      string
	FileIDs   []string
	MessageID int
	Inline    *tgbotapi.InlineKeyboardMarkup
	Reply     interface{}
	ParseMode string
}

// Buttons подписи inline-кнопок по порядку.
func (s Sent) Buttons() []string {
	if s.Inline == nil {
		return nil
	}
	var out []string
	for _, row := range s.Inline.InlineKeyboard {
		for _, b := range row {
			out = append(out, b.Text)
		}
	}
	return out
}

// Data данные inline-кнопок по порядку.
func (s Sent) Data() []string {
	if s.Inline == nil {
		return nil
	}
	var out []string
	for _, row := range s.Inline.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData != nil {
				out = append(out, *b.CallbackData)
			}
			if b.URL != nil {
				out = append(out, *b.URL)
			}
		}
	}
	return out
}

// Telegram записывает все исходящие вызовы. Безопасен для параллельного использования.
type Telegram struct {
	mu      sync.Mutex
	sent    []Sent
	nextID  int
	failFor map[int64]bool
	Updates chan tgbotapi.Update
	Stopped bool
}

func NewTelegram() *Telegram {
	return &Telegram{
		failFor: make(map[int64]bool),
		Updates: make(chan tgbotapi.Update, 16),
	}
}

// FailFor заставляет отправки в чат завершаться ошибкой (пользователь заблокировал бота).
func (t *Telegram) FailFor(chatID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failFor[chatID] = true
}

func (t *Telegram) record(s Sent) (tgbotapi.Message, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failFor[s.ChatID] {
		return tgbotapi.Message{}, errors.New("Forbidden: bot was blocked by the user")
	}
	t.nextID++
	t.sent = append(t.sent, s)
	return tgbotapi.Message{MessageID: t.nextID, Chat: &tgbotapi.Chat{ID: s.ChatID}}, nil
}

// All копия всех записанных действий.
func (t *Telegram) All() []Sent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Sent(nil), t.sent...)
}

// To действия в указанный чат.
func (t *Telegram) To(chatID int64) []Sent {
	var out []Sent
	for _, s := range t.All() {
		if s.ChatID == chatID {
			out = append(out, s)
		}
	}
	return out
}

// Texts тексты и подписи, отправленные в чат.
func (t *Telegram) Texts(chatID int64) []string {
	var out []string
	for _, s := range t.To(chatID) {
		if s.Text != "" {
			out = append(out, s.Text)
		}
	}
	return out
}

// Last последнее действие в чат.
func (t *Telegram) Last(chatID int64) (Sent, bool) {
	sent := t.To(chatID)
	if len(sent) == 0 {
		return Sent{}, false
	}
	return sent[len(sent)-1], true
}

// Contains сообщает, отправлялся ли в чат текст, содержащий substr.
func (t *Telegram) Contains(chatID int64, substr string) bool {
	for _, text := range t.Texts(chatID) {
		if strings.Contains(text, substr) {
			return true
		}
	}
	return false
}

func (t *Telegram) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = nil
}

func (t *Telegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		s := Sent{ChatID: m.ChatID, Kind: "text", Text: m.Text, Reply: m.ReplyMarkup, ParseMode: m.ParseMode}
		if kb, ok := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); ok {
			s.Inline = &kb
		}
		return t.record(s)
	case tgbotapi.EditMessageTextConfig:
		return t.record(Sent{
			ChatID: m.ChatID, Kind: "edit", Text: m.Text, MessageID: m.MessageID,
			Inline: m.ReplyMarkup, ParseMode: m.ParseMode,
		})
	case tgbotapi.PhotoConfig:
		return t.SendPhoto(m.ChatID, fileID(m.File), m.Caption, nil)
	case tgbotapi.DocumentConfig:
		return t.SendDocument(m.ChatID, m.File, m.Caption)
	}
	return t.record(Sent{Kind: "other"})
}

func (t *Telegram) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if _, err := t.Send(c); err != nil {
		return nil, err
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (t *Telegram) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	return t.record(Sent{ChatID: chatID, Kind: "text", Text: text})
}

func (t *Telegram) SendText(chatID int64, text string) error {
	_, err := t.SendMessage(chatID, text)
	return err
}

func (t *Telegram) SendMarkdown(chatID int64, text string) (tgbotapi.Message, error) {
	return t.record(Sent{ChatID: chatID, Kind: "text", Text: text, ParseMode: tgbotapi.ModeMarkdown})
}

func (t *Telegram) SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error) {
	return t.record(Sent{ChatID: chatID, Kind: "text", Text: text, Reply: keyboard})
}

func (t *Telegram) SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	return t.record(Sent{ChatID: chatID, Kind: "text", Text: text, Inline: &keyboard})
}

func (t *Telegram) SendPhoto(chatID int64, fileID, caption string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	return t.record(Sent{ChatID: chatID, Kind: "photo", Text: caption, FileIDs: []string{fileID}, Inline: keyboard})
}

func (t *Telegram) SendDocument(chatID int64, file tgbotapi.RequestFileData, caption string) (tgbotapi.Message, error) {
	return t.record(Sent{ChatID: chatID, Kind: "document", Text: caption, FileIDs: []string{fileID(file)}})
}

func (t *Telegram) SendMediaGroup(chatID int64, fileIDs []string, caption string) error {
	_, err := t.record(Sent{ChatID: chatID, Kind: "album", Text: caption, FileIDs: append([]string(nil), fileIDs...)})
	return err
}

func (t *Telegram) EditMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	return t.record(Sent{ChatID: chatID, Kind: "edit", Text: text, MessageID: messageID, Inline: keyboard})
}

func (t *Telegram) EditPhoto(chatID int64, messageID int, fileID, caption string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	_, err := t.record(Sent{
		ChatID: chatID, Kind: "edit_photo", Text: caption, MessageID: messageID,
		FileIDs: []string{fileID}, Inline: keyboard,
	})
	return err
}

func (t *Telegram) DeleteMessage(chatID int64, messageID int) error {
	_, err := t.record(Sent{ChatID: chatID, Kind: "delete", MessageID: messageID})
	return err
}

// Ответы на нажатия записываются с ChatID 0.
func (t *Telegram) AnswerCallback(callbackID, text string) error {
	_, err := t.record(Sent{Kind: "callback", Text: text})
	return err
}

func (t *Telegram) AnswerCallbackAlert(callbackID, text string) error {
	_, err := t.record(Sent{Kind: "alert", Text: text})
	return err
}

// Answers тексты ответов на нажатия кнопок.
func (t *Telegram) Answers() []string {
	var out []string
	for _, s := range t.All() {
		if (s.Kind == "callback" || s.Kind == "alert") && s.Text != "" {
			out = append(out, s.Text)
		}
	}
	return out
}

func (t *Telegram) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return t.Updates
}

func (t *Telegram) GetSelf() tgbotapi.User {
	return tgbotapi.User{UserName: "test_bot"}
}

func (t *Telegram) StopReceivingUpdates() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Stopped = true
}

func fileID(f tgbotapi.RequestFileData) string {
	switch v := f.(type) {
	case tgbotapi.FileID:
		return string(v)
	case tgbotapi.FilePath:
		return string(v)
	case tgbotapi.FileBytes:
		return v.Name
	}
	return ""
}
