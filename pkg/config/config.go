package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Sheets   SheetsConfig
	Script   ScriptConfig
	Platform PlatformConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Sync     SyncConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WARDSTOCK_APP_ENV" required:"true"`
	Port         string `envconfig:"WARDSTOCK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WARDSTOCK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WARDSTOCK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// SheetsConfig points the read gateway at the spreadsheet values API.
type SheetsConfig struct {
	BaseURL           string        `envconfig:"WARDSTOCK_SHEETS_BASE_URL" default:"https://sheets.googleapis.com/v4/spreadsheets"`
	SpreadsheetID     string        `envconfig:"WARDSTOCK_SPREADSHEET_ID" required:"true"`
	APIKey            string        `envconfig:"WARDSTOCK_SHEETS_API_KEY"`
	ProductsRange     string        `envconfig:"WARDSTOCK_SHEETS_PRODUCTS_RANGE" default:"Products!A2:K"`
	TransactionsRange string        `envconfig:"WARDSTOCK_SHEETS_TRANSACTIONS_RANGE" default:"Transactions!A2:J"`
	AllowListRange    string        `envconfig:"WARDSTOCK_SHEETS_ALLOWLIST_RANGE" default:"AllowedUsers!A2:A"`
	Timeout           time.Duration `envconfig:"WARDSTOCK_SHEETS_TIMEOUT" default:"10s"`
	MaxRetries        int           `envconfig:"WARDSTOCK_SHEETS_MAX_RETRIES" default:"2"`
}

// ScriptConfig points the write gateway at the command endpoint.
type ScriptConfig struct {
	URL       string        `envconfig:"WARDSTOCK_SCRIPT_URL"`
	Confirmed bool          `envconfig:"WARDSTOCK_SCRIPT_CONFIRMED" default:"true"`
	Timeout   time.Duration `envconfig:"WARDSTOCK_SCRIPT_TIMEOUT" default:"15s"`
}

// PlatformConfig configures the messaging-platform SSO widget client.
type PlatformConfig struct {
	AppID   string        `envconfig:"WARDSTOCK_PLATFORM_APP_ID"`
	BaseURL string        `envconfig:"WARDSTOCK_PLATFORM_BASE_URL" default:"https://api.line.me"`
	Timeout time.Duration `envconfig:"WARDSTOCK_PLATFORM_TIMEOUT" default:"10s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"WARDSTOCK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"WARDSTOCK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"WARDSTOCK_JWT_EXPIRATION_MINUTES" default:"720"`
}

// SessionTTL returns the session token lifetime.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type RedisConfig struct {
	URL          string        `envconfig:"WARDSTOCK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WARDSTOCK_REDIS_ADDR"`
	Password     string        `envconfig:"WARDSTOCK_REDIS_PASSWORD"`
	DB           int           `envconfig:"WARDSTOCK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WARDSTOCK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WARDSTOCK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WARDSTOCK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WARDSTOCK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WARDSTOCK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SyncConfig tunes the background refresh poller.
type SyncConfig struct {
	PollInterval time.Duration `envconfig:"WARDSTOCK_SYNC_POLL_INTERVAL" default:"30s"`
	PollEnabled  bool          `envconfig:"WARDSTOCK_SYNC_POLL_ENABLED" default:"true"`
}
