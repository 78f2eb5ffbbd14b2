package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"asterbot/internal/models"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Виды процессов, для которых проверяется конфигурация.
const (
	KindSelection = "selection"
	KindSales     = "sales"
)

const (
	DefaultCatalogURL   = "https://aster.kz/cars"
	DefaultWhatsAppLink = "https://wa.me/77019911161?text=Здравствуйте%20я%20перешел%20из%20телеграмма."
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Backup    BackupConfig    `yaml:"backup"`
	Logging   LoggingConfig   `yaml:"logging"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	API       APIConfig       `yaml:"api"`
	Admins    []int64         `yaml:"admins"    env:"ADMIN_IDS"   envSeparator:","`
	Managers  []int64         `yaml:"managers"  env:"MANAGER_IDS" envSeparator:","`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Selection SelectionConfig `yaml:"selection"`
	Sales     SalesConfig     `yaml:"sales"`
	Exports   ExportConfig    `yaml:"exports"`
	Google    GoogleConfig    `yaml:"google"`
	Bot       BotConfig       `yaml:"bot"`
}

type BotConfig struct {
	RateLimitMessages int     `yaml:"rate_limit_messages"`
	RateLimitWindow   int     `yaml:"rate_limit_window"`
	BroadcastRPS      float64 `yaml:"broadcast_rps"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	GRPC      APIGRPCConfig      `yaml:"grpc"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type APIGRPCConfig struct {
	Enabled    bool `yaml:"enabled"`
	Port       int  `yaml:"port"`
	Reflection bool `yaml:"reflection"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type TelegramConfig struct {
	BotToken      string `yaml:"bot_token"      env:"TELEGRAM_API_TOKEN"`
	Debug         bool   `yaml:"debug"`
	UpdateTimeout int    `yaml:"update_timeout"`
}

type DatabaseConfig struct {
	Path         string `yaml:"path"           env:"DATABASE_PATH"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type RedisConfig struct {
	Address  string `yaml:"address"   env:"REDIS_ADDRESS"`
	Password string `yaml:"password"  env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Interval      time.Duration `yaml:"interval"`
	RetentionDays int           `yaml:"retention_days"`
	StoragePath   string        `yaml:"storage_path"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type OpenAIConfig struct {
	APIKey      string        `yaml:"api_key"     env:"OPENAI_API_KEY"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

type CatalogConfig struct {
	BaseURL string `yaml:"base_url"`
}

// SelectionConfig настройки бота подбора. PromoWeekdays дни недели акции (0 = воскресенье).
type SelectionConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	WhatsAppLink  string        `yaml:"whatsapp_link"`
	PromoWeekdays []int         `yaml:"promo_weekdays"`
	PurgeWeekday  int           `yaml:"purge_weekday"`
	PurgeHour     int           `yaml:"purge_hour"`
	Timezone      string        `yaml:"timezone"`
}

type SalesConfig struct {
	NotifyHourUTC int    `yaml:"notify_hour_utc"`
	PaymentText   string `yaml:"payment_text"`
}

type GoogleConfig struct {
	Enabled               bool   `yaml:"enabled"`
	GoogleCredentialsFile string `yaml:"credentials_file"`
	LeadsSpreadsheetID    string `yaml:"leads_spreadsheet_id"`
	LeadsSheetName        string `yaml:"leads_sheet_name"`
}

// Load читает YAML, подставляет переменные окружения и накладывает секреты из env.
func Load(configPath string) (*Config, error) {
	// .env необязателен
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" || c.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		return errors.New("telegram bot token is required")
	}

	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	for _, d := range c.Selection.PromoWeekdays {
		if d < 0 || d > 6 {
			return fmt.Errorf("invalid promo weekday: %d", d)
		}
	}

	if c.Google.Enabled && (c.Google.GoogleCredentialsFile == "" || c.Google.LeadsSpreadsheetID == "") {
		return errors.New("google credentials_file and leads_spreadsheet_id are required when google is enabled")
	}

	return nil
}

// ValidateFor дополняет Validate проверками конкретного бота.
func (c *Config) ValidateFor(kind string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	switch kind {
	case KindSelection:
		if strings.TrimSpace(c.OpenAI.APIKey) == "" {
			return errors.New("openai api key is required")
		}
	case KindSales:
	default:
		return fmt.Errorf("unknown bot kind %q", kind)
	}
	return nil
}

// IsAdmin сообщает, входит ли пользователь в список администраторов.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admins {
		if id == userID {
			return true
		}
	}
	return false
}

// ManagerIDs получатели уведомлений менеджеров; без явного списка это администраторы.
func (c *Config) ManagerIDs() []int64 {
	if len(c.Managers) > 0 {
		return c.Managers
	}
	return c.Admins
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "asterbot"
	}
	if c.Telegram.UpdateTimeout == 0 {
		c.Telegram.UpdateTimeout = 60
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}

	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.OpenAI.MaxTokens == 0 {
		c.OpenAI.MaxTokens = 150
	}
	if c.OpenAI.Temperature == 0 {
		c.OpenAI.Temperature = 0.7
	}
	if c.OpenAI.Timeout == 0 {
		c.OpenAI.Timeout = 20 * time.Second
	}

	if c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = DefaultCatalogURL
	}

	if c.Selection.IdleTimeout == 0 {
		c.Selection.IdleTimeout = 30 * time.Minute
	}
	if c.Selection.WhatsAppLink == "" {
		c.Selection.WhatsAppLink = DefaultWhatsAppLink
	}
	if len(c.Selection.PromoWeekdays) == 0 {
		c.Selection.PromoWeekdays = []int{1, 2, 3, 4, 5}
	}
	if c.Selection.PurgeWeekday == 0 && c.Selection.PurgeHour == 0 {
		c.Selection.PurgeWeekday = int(time.Saturday)
		c.Selection.PurgeHour = 12
	}
	if c.Selection.Timezone == "" {
		c.Selection.Timezone = "Asia/Almaty"
	}

	if c.Sales.NotifyHourUTC == 0 {
		c.Sales.NotifyHourUTC = 9
	}
	if c.Sales.PaymentText == "" {
		c.Sales.PaymentText = DefaultPaymentText
	}

	if c.Bot.RateLimitMessages == 0 {
		c.Bot.RateLimitMessages = models.RateLimitMessages
	}
	if c.Bot.RateLimitWindow == 0 {
		c.Bot.RateLimitWindow = models.RateLimitWindow
	}
	if c.Bot.BroadcastRPS == 0 {
		c.Bot.BroadcastRPS = 20
	}

	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
	if c.Backup.Interval == 0 {
		c.Backup.Interval = 24 * time.Hour
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "backups"
	}
	if c.Google.LeadsSheetName == "" {
		c.Google.LeadsSheetName = "Leads"
	}

	if c.API.GRPC.Port == 0 {
		c.API.GRPC.Port = 8081
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if !c.API.HTTP.Enabled && c.API.Enabled {
		c.API.HTTP.Enabled = true
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = 5
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 10
	}
}

const DefaultPaymentText = "Это закрытая платформа. Для доступа оплатите `10.000` Тенге на Kaspi Gold `+77028517037` (Гульбаршин.К).\n" +
	"После оплаты нажмите 'Я оплатил' и отправьте чек."
