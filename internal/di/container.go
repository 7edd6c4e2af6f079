// Package di provides dependency injection configuration for the BookDen bot.
package di

import (
	"github.com/samber/do/v2"

	"github.com/bookdenapp/bookden-bot/internal/bot"
	"github.com/bookdenapp/bookden-bot/internal/config"
	"github.com/bookdenapp/bookden-bot/internal/di/providers"
	"github.com/bookdenapp/bookden-bot/internal/logger"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer(flags config.Flags) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, flags)

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage
	do.Provide(injector, providers.ProvideStore)

	// Bot core
	do.Provide(injector, providers.ProvideEngine)
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideSender)
	do.Provide(injector, providers.ProvideDispatcher)

	return injector
}

// Bootstrap initializes all services eagerly so configuration and
// storage problems surface at startup, not on the first message.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*bot.Dispatcher](injector); err != nil {
		return err
	}
	return nil
}
