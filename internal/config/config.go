package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ivanoskov/budget_bot/internal/model"
	"github.com/ivanoskov/budget_bot/internal/retry"
)

// Бэкенды хранилища строк
const (
	StoreSheets   = "sheets"
	StoreSupabase = "supabase"
	StoreMemory   = "memory"
)

// Бэкенды хранилища сессий
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// Политики удаления последней строки
const (
	DeleteLatest   = "latest"
	DeleteVerified = "verified"
	DeleteCaptured = "captured"
)

type Config struct {
	Telegram        TelegramConfig   `mapstructure:"telegram"`
	Store           StoreConfig      `mapstructure:"store"`
	Session         SessionConfig    `mapstructure:"session"`
	Limits          LimitsConfig     `mapstructure:"limits"`
	Currencies      []model.Currency `mapstructure:"currencies"`
	Categories      []string         `mapstructure:"categories"`
	IncomeTypes     []string         `mapstructure:"income_types"`
	AuthorizedUsers []int64          `mapstructure:"authorized_users"`
	Timezone        string           `mapstructure:"timezone"`
	Retry           retry.Policy     `mapstructure:"retry"`
	Delete          DeleteConfig     `mapstructure:"delete"`
	HTTP            HTTPConfig       `mapstructure:"http"`
	Log             LogConfig        `mapstructure:"log"`
}

type TelegramConfig struct {
	Token         string `mapstructure:"token"`
	Debug         bool   `mapstructure:"debug"`
	PollTimeout   int    `mapstructure:"poll_timeout"`
	WebhookPath   string `mapstructure:"webhook_path"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	APIEndpoint   string `mapstructure:"api_endpoint"`
}

type StoreConfig struct {
	Backend  string         `mapstructure:"backend"`
	Sheets   SheetsConfig   `mapstructure:"sheets"`
	Supabase SupabaseConfig `mapstructure:"supabase"`
}

type SheetsConfig struct {
	CredentialsPath string `mapstructure:"credentials_path"`
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	ExpenseSheet    string `mapstructure:"expense_sheet"`
	IncomeSheet     string `mapstructure:"income_sheet"`
}

type SupabaseConfig struct {
	URL          string `mapstructure:"url"`
	Key          string `mapstructure:"key"`
	ExpenseTable string `mapstructure:"expense_table"`
	IncomeTable  string `mapstructure:"income_table"`
}

type SessionConfig struct {
	Backend string      `mapstructure:"backend"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LimitsConfig - ограничения на ввод пользователя
type LimitsConfig struct {
	MaxValue             float64 `mapstructure:"max_value"`
	MaxDescriptionLength int     `mapstructure:"max_description_length"`
}

type DeleteConfig struct {
	Policy string `mapstructure:"policy"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.debug", false)
	v.SetDefault("telegram.poll_timeout", 60)
	v.SetDefault("telegram.webhook_path", "/webhook")
	v.SetDefault("telegram.webhook_secret", "")
	v.SetDefault("telegram.api_endpoint", "https://api.telegram.org/bot%s/%s")

	v.SetDefault("store.backend", StoreSheets)
	v.SetDefault("store.sheets.credentials_path", "gdrive_creds.json")
	v.SetDefault("store.sheets.spreadsheet_id", "")
	v.SetDefault("store.sheets.expense_sheet", "Expenses")
	v.SetDefault("store.sheets.income_sheet", "Income")
	v.SetDefault("store.supabase.url", "")
	v.SetDefault("store.supabase.key", "")
	v.SetDefault("store.supabase.expense_table", "expenses")
	v.SetDefault("store.supabase.income_table", "incomes")

	v.SetDefault("session.backend", SessionMemory)
	v.SetDefault("session.redis.addr", "localhost:6379")
	v.SetDefault("session.redis.password", "")
	v.SetDefault("session.redis.db", 0)
	v.SetDefault("session.redis.prefix", "budgetbot:session:")
	v.SetDefault("session.redis.ttl", time.Duration(0))

	v.SetDefault("limits.max_value", 10_000_000)
	v.SetDefault("limits.max_description_length", 200)

	v.SetDefault("currencies", []map[string]any{
		{"code": "RUB", "flag": "🇷🇺"},
		{"code": "RSD", "flag": "🇷🇸"},
	})
	v.SetDefault("categories", []string{
		"Groceries", "Restaurants", "Transport", "Housing", "Health",
		"Entertainment", "Shopping", "Travel", "Other",
	})
	v.SetDefault("income_types", []string{"Salary", "Freelance", "Gift", "Investment", "Other"})
	v.SetDefault("authorized_users", []int64{})
	v.SetDefault("timezone", "")

	p := retry.DefaultPolicy()
	v.SetDefault("retry.max_attempts", p.MaxAttempts)
	v.SetDefault("retry.initial_delay", p.InitialDelay)
	v.SetDefault("retry.max_delay", p.MaxDelay)
	v.SetDefault("retry.multiplier", p.Multiplier)

	v.SetDefault("delete.policy", DeleteLatest)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// LoadConfig читает .env, файл конфигурации (если есть) и переменные окружения BUDGETBOT_*.
// Пустой path означает поиск budgetbot.yaml в текущем каталоге и ~/.config/budgetbot.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BUDGETBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Имена переменных из прежней версии бота
	_ = v.BindEnv("telegram.token", "BUDGETBOT_TELEGRAM_TOKEN", "TELEGRAM_TOKEN")
	_ = v.BindEnv("store.supabase.url", "BUDGETBOT_STORE_SUPABASE_URL", "SUPABASE_URL")
	_ = v.BindEnv("store.supabase.key", "BUDGETBOT_STORE_SUPABASE_KEY", "SUPABASE_KEY")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("budgetbot")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/budgetbot")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Validate проверяет конфигурацию и возвращает первую найденную ошибку
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram token is required")
	}
	if strings.Count(c.Telegram.APIEndpoint, "%s") != 2 {
		return errors.New("telegram.api_endpoint must contain two %s placeholders")
	}
	if len(c.Currencies) == 0 {
		return errors.New("at least one currency is required")
	}
	for _, cur := range c.Currencies {
		if cur.Code == "" {
			return errors.New("currency code must not be empty")
		}
	}
	if len(c.Categories) == 0 {
		return errors.New("at least one category is required")
	}
	if len(c.IncomeTypes) == 0 {
		return errors.New("at least one income type is required")
	}
	if c.Limits.MaxValue <= 0 {
		return errors.New("limits.max_value must be positive")
	}
	if c.Limits.MaxDescriptionLength <= 0 {
		return errors.New("limits.max_description_length must be positive")
	}

	switch c.Store.Backend {
	case StoreSheets:
		if c.Store.Sheets.SpreadsheetID == "" {
			return errors.New("store.sheets.spreadsheet_id is required")
		}
		if c.Store.Sheets.CredentialsPath == "" {
			return errors.New("store.sheets.credentials_path is required")
		}
		if c.Store.Sheets.ExpenseSheet == c.Store.Sheets.IncomeSheet {
			return errors.New("expense and income sheets must differ")
		}
	case StoreSupabase:
		if c.Store.Supabase.URL == "" || c.Store.Supabase.Key == "" {
			return errors.New("store.supabase.url and store.supabase.key are required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store backend: %q", c.Store.Backend)
	}

	switch c.Session.Backend {
	case SessionMemory:
	case SessionRedis:
		if c.Session.Redis.Addr == "" {
			return errors.New("session.redis.addr is required")
		}
	default:
		return fmt.Errorf("unknown session backend: %q", c.Session.Backend)
	}

	switch c.Delete.Policy {
	case DeleteLatest, DeleteVerified, DeleteCaptured:
	default:
		return fmt.Errorf("unknown delete policy: %q", c.Delete.Policy)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

// Location возвращает часовой пояс для дат записей
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Options возвращает наборы кнопок для диалога
func (c *Config) Options() model.Options {
	return model.Options{
		Currencies:  c.Currencies,
		Categories:  c.Categories,
		IncomeTypes: c.IncomeTypes,
	}
}
