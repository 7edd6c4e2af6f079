package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/bookdenapp/bookden-bot/internal/bot"
	"github.com/bookdenapp/bookden-bot/internal/bot/flow"
	"github.com/bookdenapp/bookden-bot/internal/config"
	"github.com/bookdenapp/bookden-bot/internal/logger"
	"github.com/bookdenapp/bookden-bot/internal/ratelimit"
	"github.com/bookdenapp/bookden-bot/internal/store/sqlite"
	"github.com/bookdenapp/bookden-bot/internal/transport"
	"github.com/bookdenapp/bookden-bot/internal/validation"
	"github.com/bookdenapp/bookden-bot/internal/wizard"
)

// StoreHandle wraps the store for lifecycle management.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Store.Close()
}

// ProvideStore provides the sqlite-backed library store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := sqlite.Open(cfg.Database.Path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database opened", "path", cfg.Database.Path)
	return &StoreHandle{Store: st}, nil
}

// ProvideEngine provides the wizard engine.
func ProvideEngine(i do.Injector) (*wizard.Engine, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	return wizard.NewEngine(log.Logger, cfg.Bot.SessionTTL), nil
}

// ProvideRateLimiter provides the per-user throttle.
func ProvideRateLimiter(i do.Injector) (*ratelimit.KeyedRateLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return ratelimit.New(cfg.Bot.RateLimitRPS, cfg.Bot.RateLimitBurst), nil
}

// ProvideValidator provides the draft validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideSender provides the outbound transport. The console adapter is
// the built-in one; a messaging platform adapter replaces it at this
// seam without touching the core.
func ProvideSender(i do.Injector) (transport.Sender, error) {
	return transport.NewConsole(os.Stdout, "."), nil
}

// ProvideDispatcher provides the inbound event dispatcher.
func ProvideDispatcher(i do.Injector) (*bot.Dispatcher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*StoreHandle](i)
	engine := do.MustInvoke[*wizard.Engine](i)
	limiter := do.MustInvoke[*ratelimit.KeyedRateLimiter](i)
	sender := do.MustInvoke[transport.Sender](i)
	validator := do.MustInvoke[*validation.Validator](i)

	deps := flow.Deps{
		Store:     st.Store,
		Sender:    sender,
		Validator: validator,
		Logger:    log.Logger,
	}

	return bot.NewDispatcher(engine, limiter, cfg.Bot, log.Logger, deps), nil
}
