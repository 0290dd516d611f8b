// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces all environment variables.
const EnvPrefix = "MSANA"

// Config is the full service configuration.
type Config struct {
	App      AppConfig
	DB       DBConfig
	JWT      JWTConfig
	Invoice  InvoiceConfig
	Alerts   AlertsConfig
	Telegram TelegramConfig
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// AppConfig holds the HTTP server and logging settings.
type AppConfig struct {
	Env             string        `envconfig:"MSANA_APP_ENV" default:"development"`
	Port            string        `envconfig:"MSANA_APP_PORT" default:"8080"`
	LogLevel        string        `envconfig:"MSANA_LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `envconfig:"MSANA_SHUTDOWN_TIMEOUT" default:"15s"`
	CORSOrigins     []string      `envconfig:"MSANA_CORS_ORIGINS" default:"http://localhost:5173"`
}

// IsDevelopment reports whether the service runs in development mode.
func (a AppConfig) IsDevelopment() bool {
	return a.Env == "development"
}

// DBConfig holds the PostgreSQL connection settings.
type DBConfig struct {
	DSN             string        `envconfig:"MSANA_DB_DSN" required:"true"`
	MaxConns        int32         `envconfig:"MSANA_DB_MAX_CONNS" default:"20"`
	MinConns        int32         `envconfig:"MSANA_DB_MIN_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"MSANA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnectTimeout  time.Duration `envconfig:"MSANA_DB_CONNECT_TIMEOUT" default:"10s"`
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret   string        `envconfig:"MSANA_JWT_SECRET" required:"true"`
	Issuer   string        `envconfig:"MSANA_JWT_ISSUER" default:"msana"`
	TokenTTL time.Duration `envconfig:"MSANA_JWT_TOKEN_TTL" default:"24h"`
}

// InvoiceConfig holds document numbering settings.
type InvoiceConfig struct {
	Prefix string `envconfig:"MSANA_INVOICE_PREFIX" default:"INV"`
}

// AlertsConfig holds the stock monitor settings.
type AlertsConfig struct {
	Enabled      bool          `envconfig:"MSANA_ALERTS_ENABLED" default:"true"`
	ScanInterval time.Duration `envconfig:"MSANA_ALERTS_SCAN_INTERVAL" default:"5m"`
	MaxTracked   int           `envconfig:"MSANA_ALERTS_MAX_TRACKED" default:"1000"`
}

// TelegramConfig holds bot delivery settings. Alerts degrade to log-only when
// the token is empty.
type TelegramConfig struct {
	BotToken string        `envconfig:"MSANA_TELEGRAM_BOT_TOKEN"`
	ChatIDs  []string      `envconfig:"MSANA_TELEGRAM_CHAT_IDS"`
	Timeout  time.Duration `envconfig:"MSANA_TELEGRAM_TIMEOUT" default:"10s"`
}
