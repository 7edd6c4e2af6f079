// Package providers contains dependency injection providers for the BookDen bot.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookdenapp/bookden-bot/internal/config"
	"github.com/bookdenapp/bookden-bot/internal/logger"
)

// ProvideConfig provides the application configuration. The parsed
// command-line flags are injected as a value by main.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	flags := do.MustInvoke[config.Flags](i)
	return config.LoadConfig(flags)
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	log.Info("Starting BookDen bot",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"database", cfg.Database.Path,
		"allowed_users", len(cfg.Bot.AllowedUserIDs),
	)

	return log, nil
}
