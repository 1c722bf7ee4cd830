// ChatWarden - chat moderation and permission pipeline
// License: MIT

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sipeed/chatwarden/pkg/adminapi"
	"github.com/sipeed/chatwarden/pkg/alerts"
	"github.com/sipeed/chatwarden/pkg/config"
	"github.com/sipeed/chatwarden/pkg/hooks"
	"github.com/sipeed/chatwarden/pkg/host"
	"github.com/sipeed/chatwarden/pkg/logger"
	"github.com/sipeed/chatwarden/pkg/notify"
	"github.com/sipeed/chatwarden/pkg/perms"
	"github.com/sipeed/chatwarden/pkg/settings"
	"github.com/sipeed/chatwarden/pkg/store"
	"github.com/sipeed/chatwarden/pkg/version"
)

func main() {
	configPath := flag.String("config", "chatwarden.yaml", "path to the service config file")
	flag.Parse()

	// .env is optional; missing files are fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	if cfg.Log.File != "" {
		logger.UseFile(cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups)
	}
	logger.InfoC("main", "ChatWarden starting")

	// Advisory only: an incompatible host version is logged, never fatal.
	if !version.IsCompatible(cfg.HostVersion) {
		logger.WarnC("main", "Pipeline may not function correctly with this host version")
	}

	st := openStore(cfg.SettingsDBPath)
	resolver := settings.NewResolver(st)
	resolver.Refresh()

	directory := host.NewHTTPDirectory(cfg.HostAPIBaseURL)
	feed := notify.NewFeed()
	sink := buildSink(cfg.Notify)

	alertDispatcher := alerts.NewDispatcher(sink, directory, resolver.Resolve)
	alertDispatcher.AfterDispatch = func(alert alerts.Record, _ bool) {
		feed.Publish(alert)
	}

	pipeline := hooks.NewPipeline(perms.NewGate(directory), alertDispatcher, resolver.Resolve)

	dispatcher := hooks.NewDispatcher(openAudit(cfg.AuditPath))
	for _, kind := range hooks.KnownKinds() {
		dispatcher.Register(kind, pipeline)
	}
	logger.InfoCF("main", "Hooks registered", map[string]any{"kinds": dispatcher.HandlerCount()})

	server := adminapi.NewServer(cfg.ListenAddr, st, resolver, feed, dispatcher)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.InfoCF("main", "Shutting down", map[string]any{"signal": sig.String()})
	case err := <-errCh:
		if err != nil {
			logger.ErrorCF("main", "Admin server failed", map[string]any{"error": err.Error()})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.WarnCF("main", "Shutdown incomplete", map[string]any{"error": err.Error()})
	}
	if closer, ok := st.(*store.SQLiteStore); ok {
		_ = closer.Close()
	}
}

// openStore opens the SQLite settings store, falling back to an in-memory
// store when the database cannot be opened. Settings then resolve from
// defaults and environment only.
func openStore(dbPath string) store.Store {
	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.WarnCF("main", "Settings store unavailable, using in-memory store", map[string]any{"error": err.Error()})
		return store.NewMemoryStore()
	}
	return st
}

// openAudit opens the JSONL hook audit sink; auditing is best effort.
func openAudit(path string) hooks.AuditSink {
	if path == "" {
		return nil
	}
	sink, err := hooks.NewJSONLAuditSink(path)
	if err != nil {
		logger.WarnCF("main", "Hook audit disabled", map[string]any{"error": err.Error()})
		return nil
	}
	return sink
}

// buildSink assembles the configured alert delivery backends into one
// fan-out sink. With nothing configured, dispatch reports failure and the
// pipeline carries on.
func buildSink(cfg config.NotifyConfig) *notify.Fanout {
	var out []host.NotificationSink
	if cfg.Slack.Enabled() {
		out = append(out, notify.NewSlackSink(cfg.Slack.Token, cfg.Slack.Channel))
		logger.InfoC("main", "Slack alert sink enabled")
	}
	if cfg.Discord.Enabled() {
		sink, err := notify.NewDiscordSink(cfg.Discord.BotToken, cfg.Discord.ChannelID)
		if err != nil {
			logger.WarnCF("main", "Discord alert sink unavailable", map[string]any{"error": err.Error()})
		} else {
			out = append(out, sink)
			logger.InfoC("main", "Discord alert sink enabled")
		}
	}
	if cfg.Telegram.Enabled() {
		sink, err := notify.NewTelegramSink(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			logger.WarnCF("main", "Telegram alert sink unavailable", map[string]any{"error": err.Error()})
		} else {
			out = append(out, sink)
			logger.InfoC("main", "Telegram alert sink enabled")
		}
	}
	if cfg.Lark.Enabled() {
		out = append(out, notify.NewLarkSink(cfg.Lark.AppID, cfg.Lark.AppSecret, cfg.Lark.ChatID))
		logger.InfoC("main", "Lark alert sink enabled")
	}
	return notify.NewFanout(out...)
}
