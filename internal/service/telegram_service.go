package service

import (
	"fmt"

	"asterbot/internal/domain"
	"asterbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxAlbumSize ограничение Telegram на число элементов альбома.
const maxAlbumSize = 10

type TelegramService struct {
	bot domain.TelegramSender
}

func NewTelegramService(bot domain.TelegramSender) *TelegramService {
	return &TelegramService{
		bot: bot,
	}
}

func (s *TelegramService) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return s.bot.Send(c)
}

func (s *TelegramService) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return s.bot.Request(c)
}

func (s *TelegramService) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	return s.bot.Send(msg)
}

// SendText отправляет текст, когда отправленное сообщение не нужно.
func (s *TelegramService) SendText(chatID int64, text string) error {
	_, err := s.SendMessage(chatID, text)
	return err
}

func (s *TelegramService) SendMarkdown(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = models.ParseModeMarkdown
	return s.bot.Send(msg)
}

func (s *TelegramService) SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	return s.bot.Send(msg)
}

func (s *TelegramService) SendWithInlineKeyboard(
	chatID int64,
	text string,
	keyboard tgbotapi.InlineKeyboardMarkup,
) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	return s.bot.Send(msg)
}

func (s *TelegramService) SendPhoto(
	chatID int64,
	fileID, caption string,
	keyboard *tgbotapi.InlineKeyboardMarkup,
) (tgbotapi.Message, error) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	photo.Caption = caption
	if keyboard != nil {
		photo.ReplyMarkup = *keyboard
	}
	return s.bot.Send(photo)
}

func (s *TelegramService) SendDocument(chatID int64, file tgbotapi.RequestFileData, caption string) (tgbotapi.Message, error) {
	doc := tgbotapi.NewDocument(chatID, file)
	doc.Caption = caption
	return s.bot.Send(doc)
}

// SendMediaGroup отправляет фото альбомами по 10; подпись только у первого фото.
// Одиночное фото уходит обычным сообщением, альбом из одного элемента Telegram не принимает.
func (s *TelegramService) SendMediaGroup(chatID int64, fileIDs []string, caption string) error {
	if len(fileIDs) == 0 {
		return nil
	}
	if len(fileIDs) == 1 {
		_, err := s.SendPhoto(chatID, fileIDs[0], caption, nil)
		return err
	}

	for start := 0; start < len(fileIDs); start += maxAlbumSize {
		end := start + maxAlbumSize
		if end > len(fileIDs) {
			end = len(fileIDs)
		}

		media := make([]interface{}, 0, end-start)
		for i, id := range fileIDs[start:end] {
			photo := tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(id))
			if start == 0 && i == 0 {
				photo.Caption = caption
			}
			media = append(media, photo)
		}

		// хвост из одного фото
		if len(media) == 1 {
			if _, err := s.SendPhoto(chatID, fileIDs[start], "", nil); err != nil {
				return err
			}
			continue
		}

		if _, err := s.bot.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, media)); err != nil {
			return fmt.Errorf("failed to send media group: %w", err)
		}
	}
	return nil
}

func (s *TelegramService) EditMessage(
	chatID int64,
	messageID int,
	text string,
	keyboard *tgbotapi.InlineKeyboardMarkup,
) (tgbotapi.Message, error) {
	if keyboard != nil {
		msg := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *keyboard)
		return s.bot.Send(msg)
	}
	msg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	return s.bot.Send(msg)
}

// EditPhoto заменяет фото и подпись карточки на месте.
func (s *TelegramService) EditPhoto(
	chatID int64,
	messageID int,
	fileID, caption string,
	keyboard *tgbotapi.InlineKeyboardMarkup,
) error {
	photo := tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(fileID))
	photo.Caption = caption

	edit := tgbotapi.EditMessageMediaConfig{
		BaseEdit: tgbotapi.BaseEdit{
			ChatID:      chatID,
			MessageID:   messageID,
			ReplyMarkup: keyboard,
		},
		Media: photo,
	}
	_, err := s.bot.Request(edit)
	return err
}

func (s *TelegramService) DeleteMessage(chatID int64, messageID int) error {
	_, err := s.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

func (s *TelegramService) AnswerCallback(callbackID, text string) error {
	callback := tgbotapi.NewCallback(callbackID, text)
	_, err := s.bot.Request(callback)
	return err
}

// AnswerCallbackAlert отвечает на нажатие всплывающим окном.
func (s *TelegramService) AnswerCallbackAlert(callbackID, text string) error {
	callback := tgbotapi.NewCallbackWithAlert(callbackID, text)
	_, err := s.bot.Request(callback)
	return err
}

func (s *TelegramService) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return s.bot.GetUpdatesChan(config)
}

func (s *TelegramService) GetSelf() tgbotapi.User {
	return s.bot.GetSelf()
}

func (s *TelegramService) StopReceivingUpdates() {
	s.bot.StopReceivingUpdates()
}
