// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverDynamoDB = "dynamodb"
	DriverSQLite   = "sqlite"
)

// Config is the root configuration shared by the server and the lambdas.
type Config struct {
	HTTP       HTTPConfig
	Log        LogConfig
	Storage    StorageConfig
	Events     EventsConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Settlement SettlementConfig
	Rewards    RewardConfig
	Prices     PriceConfig
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            string        `env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
}

// StorageConfig selects and configures the document store.
type StorageConfig struct {
	Driver           string `env:"STORAGE_DRIVER" env-default:"dynamodb"`
	SQLiteDSN        string `env:"SQLITE_DSN" env-default:"file:swap.db?_busy_timeout=5000"`
	UsersTable       string `env:"DYNAMODB_USERS_TABLE_NAME" env-default:"swap-users"`
	ItemsTable       string `env:"DYNAMODB_ITEMS_TABLE_NAME" env-default:"swap-items"`
	LedgerTable      string `env:"DYNAMODB_LEDGER_TABLE_NAME" env-default:"swap-ledger"`
	RedemptionsTable string `env:"DYNAMODB_REDEMPTIONS_TABLE_NAME" env-default:"swap-redemptions"`
	SwapsTable       string `env:"DYNAMODB_SWAPS_TABLE_NAME" env-default:"swap-swaps"`
	ReportsTable     string `env:"DYNAMODB_REPORTS_TABLE_NAME" env-default:"swap-reports"`
	AWSEndpointURL   string `env:"AWS_ENDPOINT_URL"`
}

// EventsConfig configures settlement event delivery.
type EventsConfig struct {
	QueueURL string `env:"SQS_EVENTS_QUEUE_URL"`
}

// AuthConfig configures caller verification.
type AuthConfig struct {
	JWTSecret  string `env:"JWT_SECRET"`
	JWTIssuer  string `env:"JWT_ISSUER" env-default:"clothing-swap"`
	DevHeaders bool   `env:"AUTH_DEV_HEADERS" env-default:"false"`
}

// RateLimitConfig configures the per-caller request limiter. A zero rate disables it.
type RateLimitConfig struct {
	RPS   float64 `env:"RATE_LIMIT_RPS" env-default:"20"`
	Burst int     `env:"RATE_LIMIT_BURST" env-default:"40"`
}

// SettlementConfig tunes settlement retries and the periodic ledger audit.
type SettlementConfig struct {
	MaxRetries    uint64 `env:"SETTLEMENT_MAX_RETRIES" env-default:"3"`
	AuditSchedule string `env:"AUDIT_SCHEDULE"`
}

// RewardConfig is the approval reward per item condition.
type RewardConfig struct {
	LikeNew   int64 `env:"APPROVAL_REWARD_LIKE_NEW" env-default:"15"`
	Excellent int64 `env:"APPROVAL_REWARD_EXCELLENT" env-default:"10"`
	Good      int64 `env:"APPROVAL_REWARD_GOOD" env-default:"5"`
	Default   int64 `env:"APPROVAL_REWARD_DEFAULT" env-default:"3"`
}

// PriceConfig is the redemption price per item condition.
type PriceConfig struct {
	LikeNew   int64 `env:"REDEMPTION_PRICE_LIKE_NEW" env-default:"90"`
	Excellent int64 `env:"REDEMPTION_PRICE_EXCELLENT" env-default:"70"`
	Good      int64 `env:"REDEMPTION_PRICE_GOOD" env-default:"50"`
	Default   int64 `env:"REDEMPTION_PRICE_DEFAULT" env-default:"30"`
}

// Schedule returns the approval reward schedule.
func (c RewardConfig) Schedule() models.PointsSchedule {
	return models.PointsSchedule{LikeNew: c.LikeNew, Excellent: c.Excellent, Good: c.Good, Default: c.Default}
}

// Schedule returns the redemption price schedule.
func (c PriceConfig) Schedule() models.PointsSchedule {
	return models.PointsSchedule{LikeNew: c.LikeNew, Excellent: c.Excellent, Good: c.Good, Default: c.Default}
}

// Load reads an optional .env file, then the environment, then validates.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks business rules that env tags cannot express.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverDynamoDB:
		for name, table := range map[string]string{
			"users":       c.Storage.UsersTable,
			"items":       c.Storage.ItemsTable,
			"ledger":      c.Storage.LedgerTable,
			"redemptions": c.Storage.RedemptionsTable,
			"swaps":       c.Storage.SwapsTable,
			"reports":     c.Storage.ReportsTable,
		} {
			if table == "" {
				return fmt.Errorf("storage: %s table name is required", name)
			}
		}
	case DriverSQLite:
		if c.Storage.SQLiteDSN == "" {
			return fmt.Errorf("storage: SQLITE_DSN is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("storage: unknown driver %q", c.Storage.Driver)
	}

	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth: JWT_SECRET must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if c.Auth.JWTSecret == "" && !c.Auth.DevHeaders {
		return fmt.Errorf("auth: JWT_SECRET is required unless AUTH_DEV_HEADERS is enabled")
	}

	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit: values must not be negative")
	}
	if c.Settlement.MaxRetries == 0 {
		return fmt.Errorf("settlement: SETTLEMENT_MAX_RETRIES must be > 0")
	}

	for name, s := range map[string]models.PointsSchedule{
		"approval reward":  c.Rewards.Schedule(),
		"redemption price": c.Prices.Schedule(),
	} {
		if s.LikeNew <= 0 || s.Excellent <= 0 || s.Good <= 0 || s.Default <= 0 {
			return fmt.Errorf("%s schedule: every value must be > 0", name)
		}
	}
	return nil
}

// NewLogger creates a *slog.Logger based on the provided LogConfig and sets it
// as the default logger. Format "text" adds source locations for development.
func NewLogger(cfg LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: strings.EqualFold(cfg.Format, "text"),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
