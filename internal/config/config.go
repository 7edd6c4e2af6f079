// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Database DatabaseConfig
	Bot      BotConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DatabaseConfig holds storage configuration.
type DatabaseConfig struct {
	Path string
}

// BotConfig holds bot behavior configuration.
type BotConfig struct {
	// AllowedUserIDs is the access allow-list. Empty means nobody is
	// authorized; the bot is private by default.
	AllowedUserIDs []int64
	// RateLimitRPS and RateLimitBurst throttle inbound actions per user.
	RateLimitRPS   float64
	RateLimitBurst int
	// SessionTTL is how long an abandoned wizard draft survives.
	// Zero disables expiry.
	SessionTTL time.Duration
}

// Flags carries command-line overrides into LoadConfig. Keeping flag
// registration out of this package lets tests call LoadConfig repeatedly.
type Flags struct {
	Environment string
	LogLevel    string
	DBPath      string
	EnvFile     string
}

// LoadConfig loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(flags Flags) (*Config, error) {
	envFile := flags.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// Load .env into the process environment; missing file is fine.
	_ = godotenv.Load(envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(flags.Environment, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(flags.LogLevel, "LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Path: getConfigValue(flags.DBPath, "DATABASE_PATH", "books.db"),
		},
		Bot: BotConfig{
			RateLimitRPS:   getFloatConfigValue("", "BOT_RATE_LIMIT_RPS", 2),
			RateLimitBurst: getIntConfigValue("", "BOT_RATE_LIMIT_BURST", 5),
		},
	}

	ids, err := parseUserIDs(os.Getenv("ALLOWED_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid ALLOWED_IDS: %w", err)
	}
	cfg.Bot.AllowedUserIDs = ids

	ttlStr := getConfigValue("", "BOT_SESSION_TTL", "0s")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid session TTL %q: %w", ttlStr, err)
	}
	cfg.Bot.SessionTTL = ttl

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment %q", c.App.Environment)
	}
	if c.Bot.RateLimitRPS <= 0 || c.Bot.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be positive (rps=%v burst=%d)",
			c.Bot.RateLimitRPS, c.Bot.RateLimitBurst)
	}
	if c.Bot.SessionTTL < 0 {
		return fmt.Errorf("session TTL must not be negative")
	}
	return nil
}

// Authorized reports whether a user is on the allow-list.
func (c BotConfig) Authorized(userID int64) bool {
	for _, id := range c.AllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// parseUserIDs parses a comma-separated list of numeric user IDs.
func parseUserIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse user id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// getConfigValue returns the first non-empty value among flag, env var, and default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return defaultValue
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue
	}
	return v
}
