// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, language handling, AI settings, and rate limits.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// LINE Bot Configuration
	LineChannelToken  string
	LineChannelSecret string

	// AI Configuration (OpenAI-compatible chat completions endpoint)
	AIAPIKey      string  // API key for the chat completions provider
	AIBaseURL     string  // Base URL override (empty = provider default)
	AIModel       string  // Model name (default: gpt-4o-mini)
	AITemperature float64 // Sampling temperature for assistant replies (default: 0.7)
	AIMaxTokens   int     // Completion token cap (default: 1000)

	// Conversation Configuration
	DefaultLanguage  string        // Fallback language code when detection is inconclusive (default: "id")
	HistoryWindow    int           // Number of recent turns sent to the AI (default: 10)
	HistoryRetention time.Duration // How long conversation turns stay in SQLite (default: 720h)

	// Admin Configuration
	AdminUserIDs []string // LINE user IDs allowed to use admin commands

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir string // Data directory for SQLite database

	// Rich Menu Configuration
	MenuImageDir string // Directory holding per-language rich menu images

	// Archive Configuration (R2 object storage, optional)
	R2Enabled         bool
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string

	// Sentry Configuration (optional)
	SentryDSN         string
	SentryEnvironment string
	SentrySampleRate  float64

	// Better Stack Configuration (optional)
	BetterStackToken    string
	BetterStackEndpoint string

	// Bot Configuration (embedded)
	Bot BotConfig
}

// BotConfig holds bot-specific configuration
type BotConfig struct {
	// Timeouts
	WebhookTimeout time.Duration // Timeout for webhook event processing (see config/timeouts.go)

	// Rate Limits (Token Bucket Algorithm)
	UserRateLimitBurst        float64 // Maximum burst tokens per user (default: 15)
	UserRateLimitRefillPerSec float64 // Tokens refilled per second (default: 0.1 = 1 per 10s)

	// AI Rate Limits
	AIBurstTokens   float64 // Maximum burst tokens for AI calls per user (default: 20)
	AIRefillPerHour float64 // AI tokens refilled per hour (default: 30)
	AIDailyLimit    int     // AI calls per user per rolling 24h, 0 disables (default: 100)

	GlobalRateLimitRPS float64 // Global rate limit in requests per second (default: 100)

	// LINE API Constraints
	MaxMessagesPerReply int // Maximum messages per reply (LINE API limit: 5)
	MaxEventsPerWebhook int // Maximum events per webhook (default: 100)
	MinReplyTokenLength int // Minimum reply token length (default: 10)
	MaxMessageLength    int // Maximum message length (LINE API limit: 20000)
	MaxPostbackDataSize int // Maximum postback data size (LINE API limit: 300)
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// LINE Bot Configuration
		LineChannelToken:  getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
		LineChannelSecret: getEnv("LINE_CHANNEL_SECRET", ""),

		// AI Configuration
		AIAPIKey:      getEnv("AI_API_KEY", ""),
		AIBaseURL:     getEnv("AI_BASE_URL", ""),
		AIModel:       getEnv("AI_MODEL", "gpt-4o-mini"),
		AITemperature: getFloatEnv("AI_TEMPERATURE", 0.7),
		AIMaxTokens:   getIntEnv("AI_MAX_TOKENS", 1000),

		// Conversation Configuration
		DefaultLanguage:  getEnv("DEFAULT_LANGUAGE", "id"),
		HistoryWindow:    getIntEnv("HISTORY_WINDOW", 10),
		HistoryRetention: getDurationEnv("HISTORY_RETENTION", DefaultHistoryRetention),

		// Admin Configuration
		AdminUserIDs: getListEnv("ADMIN_USER_IDS"),

		// Metrics Authentication
		MetricsUsername: getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),

		// Server Configuration
		Port:            getEnv("PORT", "10000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", GracefulShutdown),

		// Data Configuration
		DataDir: getEnv("DATA_DIR", getDefaultDataDir()),

		// Rich Menu Configuration
		MenuImageDir: getEnv("MENU_IMAGE_DIR", "./assets/richmenu"),

		// Archive Configuration
		R2Enabled:         getBoolEnv("R2_ENABLED", false),
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),

		// Sentry Configuration
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "production"),
		SentrySampleRate:  getFloatEnv("SENTRY_SAMPLE_RATE", 1.0),

		// Better Stack Configuration
		BetterStackToken:    getEnv("BETTERSTACK_TOKEN", ""),
		BetterStackEndpoint: getEnv("BETTERSTACK_ENDPOINT", ""),

		// Bot Configuration
		Bot: BotConfig{
			WebhookTimeout:            getDurationEnv("WEBHOOK_TIMEOUT", WebhookProcessing),
			UserRateLimitBurst:        getFloatEnv("USER_RATE_LIMIT_BURST", 15.0),
			UserRateLimitRefillPerSec: getFloatEnv("USER_RATE_LIMIT_REFILL_PER_SEC", 0.1), // 1 per 10s
			AIBurstTokens:             getFloatEnv("AI_BURST_TOKENS", 20.0),
			AIRefillPerHour:           getFloatEnv("AI_REFILL_PER_HOUR", 30.0),
			AIDailyLimit:              getIntEnv("AI_DAILY_LIMIT", 100),
			GlobalRateLimitRPS:        getFloatEnv("GLOBAL_RATE_LIMIT_RPS", 100.0),
			MaxMessagesPerReply:       5,
			MaxEventsPerWebhook:       100,
			MinReplyTokenLength:       10,
			MaxMessageLength:          20000,
			MaxPostbackDataSize:       300,
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.LineChannelToken == "" {
		errs = append(errs, errors.New("LINE_CHANNEL_ACCESS_TOKEN is required"))
	}
	if c.LineChannelSecret == "" {
		errs = append(errs, errors.New("LINE_CHANNEL_SECRET is required"))
	}
	if c.AIAPIKey == "" {
		errs = append(errs, errors.New("AI_API_KEY is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required"))
	}
	if c.HistoryWindow < 1 {
		errs = append(errs, fmt.Errorf("HISTORY_WINDOW must be positive, got %d", c.HistoryWindow))
	}
	if c.HistoryRetention <= 0 {
		errs = append(errs, fmt.Errorf("HISTORY_RETENTION must be positive, got %v", c.HistoryRetention))
	}
	if c.AITemperature < 0 || c.AITemperature > 2 {
		errs = append(errs, fmt.Errorf("AI_TEMPERATURE must be in [0, 2], got %v", c.AITemperature))
	}
	if err := c.Bot.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("bot config: %w", err))
	}
	if c.R2Enabled {
		if c.R2AccountID == "" || c.R2AccessKeyID == "" || c.R2SecretAccessKey == "" || c.R2BucketName == "" {
			errs = append(errs, errors.New("R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY and R2_BUCKET_NAME are required when R2_ENABLED=true"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks if the bot configuration is valid.
func (c *BotConfig) Validate() error {
	var errs []error

	if c.WebhookTimeout <= 0 {
		errs = append(errs, fmt.Errorf("webhook timeout must be positive, got %v", c.WebhookTimeout))
	}
	if c.MaxMessagesPerReply < 1 || c.MaxMessagesPerReply > 5 {
		errs = append(errs, fmt.Errorf("max messages per reply must be 1-5 (LINE API limit), got %d", c.MaxMessagesPerReply))
	}
	if c.MaxEventsPerWebhook < 1 {
		errs = append(errs, fmt.Errorf("max events per webhook must be positive, got %d", c.MaxEventsPerWebhook))
	}
	if c.UserRateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("user rate limit burst must be positive, got %f", c.UserRateLimitBurst))
	}
	if c.UserRateLimitRefillPerSec <= 0 {
		errs = append(errs, fmt.Errorf("user rate limit refill rate must be positive, got %f", c.UserRateLimitRefillPerSec))
	}
	if c.AIBurstTokens <= 0 {
		errs = append(errs, fmt.Errorf("AI burst tokens must be positive, got %f", c.AIBurstTokens))
	}
	if c.AIDailyLimit < 0 {
		errs = append(errs, fmt.Errorf("AI daily limit must not be negative, got %d", c.AIDailyLimit))
	}
	if c.GlobalRateLimitRPS <= 0 {
		errs = append(errs, fmt.Errorf("global rate limit RPS must be positive, got %f", c.GlobalRateLimitRPS))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getListEnv retrieves a comma-separated environment variable as a slice.
// Returns nil when the variable is unset or empty.
func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "imigo.db")
}

// IsAdmin reports whether the given LINE user ID may use admin commands.
func (c *Config) IsAdmin(userID string) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
