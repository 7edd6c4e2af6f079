// Package bot routes inbound events: authorization, throttling,
// conversation routing, and the stateless query commands.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bookdenapp/bookden-bot/internal/bot/flow"
	"github.com/bookdenapp/bookden-bot/internal/config"
	"github.com/bookdenapp/bookden-bot/internal/ratelimit"
	"github.com/bookdenapp/bookden-bot/internal/store"
	"github.com/bookdenapp/bookden-bot/internal/transport"
	"github.com/bookdenapp/bookden-bot/internal/wizard"
)

// keyboardCommands maps the reply-keyboard button labels onto the same
// commands the slash forms trigger.
var keyboardCommands = map[string]string{
	"➕ Add book":    "add",
	"📚 My library":  "list",
	"📖 My statuses": "my",
	"🔍 Search":      "search",
	"ℹ️ Book info":   "book_info",
	"✏️ Edit":        "edit",
	"🗑 Delete":      "delete",
	"📈 Status":      "status",
	"📊 Statistics":  "statistics",
	"📤 Export":      "export_library",
	"❌ Cancel":      "cancel",
}

// Dispatcher is the single entry point for inbound events.
type Dispatcher struct {
	engine  *wizard.Engine
	store   store.Store
	sender  transport.Sender
	limiter *ratelimit.KeyedRateLimiter
	cfg     config.BotConfig
	logger  *slog.Logger
	deps    flow.Deps
}

// NewDispatcher wires the dispatcher. flowDeps carries the collaborators
// the wizard flows need; the dispatcher reuses its Store and Sender.
func NewDispatcher(
	engine *wizard.Engine,
	limiter *ratelimit.KeyedRateLimiter,
	cfg config.BotConfig,
	logger *slog.Logger,
	flowDeps flow.Deps,
) *Dispatcher {
	return &Dispatcher{
		engine:  engine,
		store:   flowDeps.Store,
		sender:  flowDeps.Sender,
		limiter: limiter,
		cfg:     cfg,
		logger:  logger,
		deps:    flowDeps,
	}
}

// Handle processes one inbound event end to end. It only returns an
// error for infrastructure failures the caller may want to log; every
// user-level problem is answered with a message instead.
func (d *Dispatcher) Handle(ctx context.Context, ev transport.Event) error {
	if !d.cfg.Authorized(ev.UserID) {
		d.logger.Warn("unauthorized access attempt", "user_id", ev.UserID)
		d.send(ctx, ev.UserID, "Sorry, this bot is private. You are not on its access list.")
		return nil
	}

	if !d.limiter.Allow(ev.UserID) {
		d.send(ctx, ev.UserID, "Too many requests. Give it a second and try again.")
		return nil
	}

	cmd, args := d.command(ev)

	// Cancellation wins over everything, including an active wizard.
	if cmd == "cancel" {
		if !d.engine.Cancel(ctx, ev.UserID) {
			d.send(ctx, ev.UserID, "Nothing to cancel.")
		}
		return nil
	}

	// A fresh command interrupts an in-flight conversation; plain input
	// goes to it.
	if cmd == "" && d.engine.Active(ev.UserID) {
		return d.step(ctx, ev)
	}

	switch cmd {
	case "":
		d.send(ctx, ev.UserID, "I didn't catch that. Send /help to see what I can do.")
		return nil
	case "start", "menu":
		d.send(ctx, ev.UserID, welcomeText)
		return nil
	case "help":
		d.send(ctx, ev.UserID, helpText)
		return nil
	case "add":
		return d.startFlow(ctx, ev.UserID, flow.Add(d.deps, ev.UserID))
	case "edit":
		return d.startFlow(ctx, ev.UserID, flow.Edit(d.deps, ev.UserID))
	case "delete":
		return d.startFlow(ctx, ev.UserID, flow.Delete(d.deps, ev.UserID))
	case "status":
		return d.startFlow(ctx, ev.UserID, flow.Status(d.deps, ev.UserID))
	case "book_info":
		return d.startFlow(ctx, ev.UserID, flow.BookInfo(d.deps, ev.UserID))
	case "search":
		if args != "" {
			return flow.RunSearch(ctx, d.deps, ev.UserID, args)
		}
		return d.startFlow(ctx, ev.UserID, flow.Search(d.deps, ev.UserID))
	case "list":
		return d.handleList(ctx, ev.UserID)
	case "my":
		return d.handleMyBooks(ctx, ev.UserID)
	case "series":
		return d.handleSeries(ctx, ev.UserID)
	case "covers":
		return d.handleCovers(ctx, ev.UserID)
	case "statistics":
		return d.handleStatistics(ctx, ev.UserID)
	case "export_library":
		return d.handleExport(ctx, ev.UserID)
	default:
		d.send(ctx, ev.UserID, fmt.Sprintf("Unknown command /%s. Send /help to see what I can do.", cmd))
		return nil
	}
}

// command extracts the command keyword and its inline arguments from an
// event. Keyboard button labels count as commands too.
func (d *Dispatcher) command(ev transport.Event) (cmd, args string) {
	if ev.Keyword != "" {
		return ev.Keyword, strings.TrimSpace(ev.Text)
	}

	text := strings.TrimSpace(ev.Text)
	if c, ok := keyboardCommands[text]; ok {
		return c, ""
	}
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}

	rest := strings.TrimPrefix(text, "/")
	cmd, args, _ = strings.Cut(rest, " ")
	// Group-chat style addressing: /search@somebot.
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd), strings.TrimSpace(args)
}

func (d *Dispatcher) startFlow(ctx context.Context, userID int64, conv *wizard.Conversation) error {
	if err := d.engine.Start(ctx, userID, conv); err != nil {
		d.logger.Error("conversation start failed", "user_id", userID, "error", err)
		d.send(ctx, userID, "Something went wrong on my side. Please try again.")
	}
	return nil
}

func (d *Dispatcher) step(ctx context.Context, ev transport.Event) error {
	err := d.engine.Step(ctx, ev.UserID, wizard.Input{Text: ev.Text, Photo: ev.Photo})
	if errors.Is(err, wizard.ErrNoSession) {
		d.send(ctx, ev.UserID, "I didn't catch that. Send /help to see what I can do.")
		return nil
	}
	if err != nil {
		d.logger.Error("conversation step failed", "user_id", ev.UserID, "error", err)
	}
	return nil
}

func (d *Dispatcher) send(ctx context.Context, userID int64, text string) {
	if err := d.sender.SendText(ctx, userID, text); err != nil {
		d.logger.Warn("send failed", "user_id", userID, "error", err)
	}
}

const welcomeText = `Hi! I'm BookDen, your personal library. 📚

I keep track of the books you own, who wrote them, which series they
belong to, and how far you've got with reading them.

Send /help for the full command list, or /add to put your first book in.`

const helpText = `Here's what I can do:

/add — add a book step by step (title, description, cover, ISBN, authors, series)
/edit — change one field of a book
/delete — remove a book and everything attached to it
/status — set your reading status for a book
/book_info — full details of one book, cover included
/search <text> — find books by title or author
/list — every book in the library
/my — your books with reading statuses
/series — series and their books in order
/covers — which books have a cover stored
/statistics — library totals and your reading counts
/export_library — download the library as a text file
/cancel — abort the current conversation`
