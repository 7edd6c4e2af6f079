package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(Flags{EnvFile: "does-not-exist.env"})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "books.db", cfg.Database.Path)
	assert.Empty(t, cfg.Bot.AllowedUserIDs)
	assert.Equal(t, time.Duration(0), cfg.Bot.SessionTTL)
}

func TestLoadConfigEnvPrecedence(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_PATH", "/data/library.db")
	t.Setenv("ALLOWED_IDS", "100, 200,300")
	t.Setenv("BOT_SESSION_TTL", "30m")

	cfg, err := LoadConfig(Flags{EnvFile: "does-not-exist.env"})
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Environment)
	assert.Equal(t, "/data/library.db", cfg.Database.Path)
	assert.Equal(t, []int64{100, 200, 300}, cfg.Bot.AllowedUserIDs)
	assert.Equal(t, 30*time.Minute, cfg.Bot.SessionTTL)
}

func TestLoadConfigFlagBeatsEnv(t *testing.T) {
	t.Setenv("ENV", "production")

	cfg, err := LoadConfig(Flags{Environment: "staging", EnvFile: "does-not-exist.env"})
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.App.Environment)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("ALLOWED_IDS", "abc")
	_, err := LoadConfig(Flags{EnvFile: "does-not-exist.env"})
	require.Error(t, err)
}

func TestAuthorized(t *testing.T) {
	bot := BotConfig{AllowedUserIDs: []int64{1, 2}}
	assert.True(t, bot.Authorized(1))
	assert.False(t, bot.Authorized(3))

	// Empty allow-list authorizes nobody.
	assert.False(t, BotConfig{}.Authorized(1))
}
