// Package main provides the entry point for the BookDen bot.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/bookdenapp/bookden-bot/internal/bot"
	"github.com/bookdenapp/bookden-bot/internal/config"
	"github.com/bookdenapp/bookden-bot/internal/di"
	"github.com/bookdenapp/bookden-bot/internal/logger"
	"github.com/bookdenapp/bookden-bot/internal/transport"
)

func main() {
	var flags config.Flags
	flag.StringVar(&flags.Environment, "env", "", "environment (development, staging, production)")
	flag.StringVar(&flags.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flag.StringVar(&flags.DBPath, "db", "", "path to the sqlite database")
	flag.StringVar(&flags.EnvFile, "env-file", "", "path to a .env file")
	flag.Parse()

	injector := di.NewContainer(flags)

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap bot: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)
	cfg := do.MustInvoke[*config.Config](injector)
	dispatcher := do.MustInvoke[*bot.Dispatcher](injector)

	ctx, cancel := context.WithCancel(context.Background())
	go readLoop(ctx, dispatcher, cfg, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	cancel()

	log.Info("Shutting down...")
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	log.Info("The library is closed for today.")
}

// readLoop drives the dispatcher from stdin, one event per line. A line
// of the form "photo:<path>" attaches the file's bytes as the event's
// photo, which is how a cover reaches the add wizard from a terminal.
func readLoop(ctx context.Context, dispatcher *bot.Dispatcher, cfg *config.Config, log *logger.Logger) {
	if len(cfg.Bot.AllowedUserIDs) == 0 {
		log.Warn("ALLOWED_IDS is empty, every message will be denied")
	}
	var userID int64 = 1
	if len(cfg.Bot.AllowedUserIDs) > 0 {
		userID = cfg.Bot.AllowedUserIDs[0]
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := scanner.Text()
		ev := transport.Event{UserID: userID, Text: line}

		if path, ok := strings.CutPrefix(line, "photo:"); ok {
			data, err := os.ReadFile(strings.TrimSpace(path))
			if err != nil {
				log.Error("Failed to read photo", "path", path, "error", err)
				continue
			}
			ev = transport.Event{UserID: userID, Photo: data}
		}

		if err := dispatcher.Handle(ctx, ev); err != nil {
			log.Error("Failed to handle event", "error", err)
		}
	}

	if err := scanner.Err(); err != nil {
		log.Error("Input error", "error", err)
	}
}
