package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: "test_token"
database:
  path: "test.db"
admins: [1, 2]
openai:
  api_key: "${ASTERBOT_TEST_KEY}"
selection:
  idle_timeout: 10m
`)
	t.Setenv("ASTERBOT_TEST_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test_token", cfg.Telegram.BotToken)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, []int64{1, 2}, cfg.Admins)
	assert.Equal(t, 10*time.Minute, cfg.Selection.IdleTimeout)

	t.Run("Defaults", func(t *testing.T) {
		assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
		assert.Equal(t, 150, cfg.OpenAI.MaxTokens)
		assert.InDelta(t, 0.7, cfg.OpenAI.Temperature, 0.0001)
		assert.Equal(t, DefaultCatalogURL, cfg.Catalog.BaseURL)
		assert.Equal(t, 10, cfg.Database.MaxOpenConns)
		assert.Equal(t, []int{1, 2, 3, 4, 5}, cfg.Selection.PromoWeekdays)
		assert.Equal(t, int(time.Saturday), cfg.Selection.PurgeWeekday)
		assert.Equal(t, 12, cfg.Selection.PurgeHour)
		assert.Equal(t, 9, cfg.Sales.NotifyHourUTC)
		assert.Equal(t, DefaultPaymentText, cfg.Sales.PaymentText)
		assert.Equal(t, "x-api-key", cfg.API.Auth.HeaderAPIKey)
	})
}

func TestLoadConfig_EnvOverlay(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: "from_file"
database:
  path: "test.db"
`)
	t.Setenv("TELEGRAM_API_TOKEN", "from_env")
	t.Setenv("ADMIN_IDS", "10,20")
	t.Setenv("MANAGER_IDS", "30")
	t.Setenv("REDIS_ADDRESS", "redis:6379")
	t.Setenv("DATABASE_PATH", "/data/bot.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from_env", cfg.Telegram.BotToken)
	assert.Equal(t, []int64{10, 20}, cfg.Admins)
	assert.Equal(t, []int64{30}, cfg.Managers)
	assert.Equal(t, "redis:6379", cfg.Redis.Address)
	assert.Equal(t, "/data/bot.db", cfg.Database.Path)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
				Database: DatabaseConfig{Path: "path"},
			},
		},
		{
			name: "missing token",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
			},
			wantErr: true,
		},
		{
			name: "placeholder token",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "YOUR_BOT_TOKEN_HERE"},
				Database: DatabaseConfig{Path: "path"},
			},
			wantErr: true,
		},
		{
			name: "missing db path",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
			},
			wantErr: true,
		},
		{
			name: "bad promo weekday",
			cfg: Config{
				Telegram:  TelegramConfig{BotToken: "token"},
				Database:  DatabaseConfig{Path: "path"},
				Selection: SelectionConfig{PromoWeekdays: []int{7}},
			},
			wantErr: true,
		},
		{
			name: "google without spreadsheet",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
				Database: DatabaseConfig{Path: "path"},
				Google:   GoogleConfig{Enabled: true, GoogleCredentialsFile: "creds.json"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFor(t *testing.T) {
	cfg := Config{
		Telegram: TelegramConfig{BotToken: "token"},
		Database: DatabaseConfig{Path: "path"},
	}

	assert.Error(t, cfg.ValidateFor(KindSelection))
	assert.NoError(t, cfg.ValidateFor(KindSales))
	assert.Error(t, cfg.ValidateFor("other"))

	cfg.OpenAI.APIKey = "sk"
	assert.NoError(t, cfg.ValidateFor(KindSelection))
}

func TestAdminsAndManagers(t *testing.T) {
	cfg := Config{Admins: []int64{1, 2}}
	assert.True(t, cfg.IsAdmin(2))
	assert.False(t, cfg.IsAdmin(3))
	assert.Equal(t, []int64{1, 2}, cfg.ManagerIDs())

	cfg.Managers = []int64{5}
	assert.Equal(t, []int64{5}, cfg.ManagerIDs())
}
