package service

import (
	"errors"
	"fmt"
	"testing"

	"asterbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockTelegramSender struct {
	mock.Mock
}

func (m *mockTelegramSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func (m *mockTelegramSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	args := m.Called(c)
	return args.Get(0).(*tgbotapi.APIResponse), args.Error(1)
}

func (m *mockTelegramSender) SendMediaGroup(config tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error) {
	args := m.Called(config)
	return nil, args.Error(0)
}

func (m *mockTelegramSender) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	args := m.Called(config)
	return args.Get(0).(tgbotapi.UpdatesChannel)
}

func (m *mockTelegramSender) GetSelf() tgbotapi.User {
	args := m.Called()
	return args.Get(0).(tgbotapi.User)
}

func (m *mockTelegramSender) StopReceivingUpdates() {
	m.Called()
}

func fileIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("f%d", i)
	}
	return ids
}

func TestTelegramService(t *testing.T) {
	mockSender := new(mockTelegramSender)
	svc := NewTelegramService(mockSender)

	t.Run("SendMessage", func(t *testing.T) {
		mockSender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			msg, ok := c.(tgbotapi.MessageConfig)
			return ok && msg.Text == "hello" && msg.ChatID == 123
		})).Return(tgbotapi.Message{}, nil).Once()

		_, err := svc.SendMessage(123, "hello")
		assert.NoError(t, err)
		mockSender.AssertExpectations(t)
	})

	t.Run("SendTextError", func(t *testing.T) {
		mockSender.On("Send", mock.Anything).Return(tgbotapi.Message{}, errors.New("blocked")).Once()

		err := svc.SendText(123, "hello")
		assert.Error(t, err)
		mockSender.AssertExpectations(t)
	})

	t.Run("SendMarkdown", func(t *testing.T) {
		mockSender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			msg, ok := c.(tgbotapi.MessageConfig)
			return ok && msg.ParseMode == models.ParseModeMarkdown
		})).Return(tgbotapi.Message{}, nil).Once()

		_, err := svc.SendMarkdown(123, "*bold*")
		assert.NoError(t, err)
		mockSender.AssertExpectations(t)
	})

	t.Run("SendPhotoWithKeyboard", func(t *testing.T) {
		kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Купить", "buy_1"),
		))
		mockSender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			p, ok := c.(tgbotapi.PhotoConfig)
			return ok && p.Caption == "Camry" && p.ReplyMarkup != nil
		})).Return(tgbotapi.Message{MessageID: 7}, nil).Once()

		msg, err := svc.SendPhoto(123, "file", "Camry", &kb)
		assert.NoError(t, err)
		assert.Equal(t, 7, msg.MessageID)
		mockSender.AssertExpectations(t)
	})

	t.Run("AnswerCallback", func(t *testing.T) {
		mockSender.On("Request", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			_, ok := c.(tgbotapi.CallbackConfig)
			return ok
		})).Return(&tgbotapi.APIResponse{Ok: true}, nil).Once()

		err := svc.AnswerCallback("cb123", "ok")
		assert.NoError(t, err)
		mockSender.AssertExpectations(t)
	})

	t.Run("AnswerCallbackAlert", func(t *testing.T) {
		mockSender.On("Request", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			cb, ok := c.(tgbotapi.CallbackConfig)
			return ok && cb.ShowAlert
		})).Return(&tgbotapi.APIResponse{Ok: true}, nil).Once()

		assert.NoError(t, svc.AnswerCallbackAlert("cb123", "У вас нет прав."))
		mockSender.AssertExpectations(t)
	})

	t.Run("EditPhoto", func(t *testing.T) {
		mockSender.On("Request", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			e, ok := c.(tgbotapi.EditMessageMediaConfig)
			return ok && e.MessageID == 5 && e.ChatID == 123
		})).Return(&tgbotapi.APIResponse{Ok: true}, nil).Once()

		assert.NoError(t, svc.EditPhoto(123, 5, "file", "caption", nil))
		mockSender.AssertExpectations(t)
	})
}

func TestTelegramService_SendMediaGroup(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		sender := new(mockTelegramSender)
		assert.NoError(t, NewTelegramService(sender).SendMediaGroup(1, nil, "x"))
		sender.AssertNotCalled(t, "Send", mock.Anything)
	})

	t.Run("SinglePhoto", func(t *testing.T) {
		sender := new(mockTelegramSender)
		sender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			p, ok := c.(tgbotapi.PhotoConfig)
			return ok && p.Caption == "Акт осмотра: Camry"
		})).Return(tgbotapi.Message{}, nil).Once()

		assert.NoError(t, NewTelegramService(sender).SendMediaGroup(1, fileIDs(1), "Акт осмотра: Camry"))
		sender.AssertExpectations(t)
	})

	t.Run("SplitsIntoAlbums", func(t *testing.T) {
		sender := new(mockTelegramSender)
		sender.On("SendMediaGroup", mock.MatchedBy(func(c tgbotapi.MediaGroupConfig) bool {
			return len(c.Media) == 10
		})).Return(nil).Once()
		sender.On("SendMediaGroup", mock.MatchedBy(func(c tgbotapi.MediaGroupConfig) bool {
			return len(c.Media) == 2
		})).Return(nil).Once()

		assert.NoError(t, NewTelegramService(sender).SendMediaGroup(1, fileIDs(12), "все фото"))
		sender.AssertExpectations(t)
	})

	t.Run("SingleTail", func(t *testing.T) {
		sender := new(mockTelegramSender)
		sender.On("SendMediaGroup", mock.Anything).Return(nil).Once()
		sender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			_, ok := c.(tgbotapi.PhotoConfig)
			return ok
		})).Return(tgbotapi.Message{}, nil).Once()

		assert.NoError(t, NewTelegramService(sender).SendMediaGroup(1, fileIDs(11), ""))
		sender.AssertExpectations(t)
	})

	t.Run("AlbumError", func(t *testing.T) {
		sender := new(mockTelegramSender)
		sender.On("SendMediaGroup", mock.Anything).Return(errors.New("flood")).Once()

		assert.Error(t, NewTelegramService(sender).SendMediaGroup(1, fileIDs(3), ""))
	})
}
