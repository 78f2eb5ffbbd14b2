package bot

import (
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// long polling держит соединение до 60 с, таймаут клиента должен быть больше
const apiHTTPTimeout = 90 * time.Second

// APIClient реализует domain.TelegramSender поверх *tgbotapi.BotAPI.
type APIClient struct {
	*tgbotapi.BotAPI
}

func (c *APIClient) GetSelf() tgbotapi.User { return c.Self }

// Connect авторизуется в Telegram по токену.
func Connect(token string, debug bool) (*APIClient, error) {
	httpClient := &http.Client{Timeout: apiHTTPTimeout}
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize telegram bot: %w", err)
	}
	api.Debug = debug
	return &APIClient{BotAPI: api}, nil
}
