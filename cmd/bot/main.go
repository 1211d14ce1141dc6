package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/ashmarin/codemail/internal/config"
	"github.com/ashmarin/codemail/internal/database"
	"github.com/ashmarin/codemail/internal/email"
	"github.com/ashmarin/codemail/internal/extract"
	"github.com/ashmarin/codemail/internal/formatter"
	"github.com/ashmarin/codemail/internal/mailcow"
	"github.com/ashmarin/codemail/internal/parser"
	"github.com/ashmarin/codemail/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting codemail")

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations completed")

	emailManager := email.NewManager(cfg, logger)
	renderer := parser.NewRenderer()
	extractor := extract.NewExtractor()
	msgFormatter := formatter.NewMessageFormatter()

	var mailcowClient *mailcow.Client
	if cfg.MailcowEnabled() {
		mailcowClient = mailcow.NewClient(mailcow.Config{
			BaseURL: cfg.MailcowURL,
			APIKey:  cfg.MailcowAPIKey,
			Domain:  cfg.MailcowDomain,
		})
		logger.Info("mailcow integration enabled", "domain", cfg.MailcowDomain)
	}

	bot, err := telegram.NewBot(telegram.BotDeps{
		Config:       cfg,
		DB:           db,
		EmailManager: emailManager,
		Mailcow:      mailcowClient,
		Renderer:     renderer,
		Extractor:    extractor,
		Formatter:    msgFormatter,
		Logger:       logger,
	})
	if err != nil {
		logger.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	bot.SetupEmailCallbacks()

	// Restore watched mailboxes from the database
	accounts, err := db.GetAllActiveAccounts(ctx)
	if err != nil {
		logger.Error("failed to get active accounts", "error", err)
		os.Exit(1)
	}
	if len(accounts) > 0 {
		logger.Info("restoring email connections", "count", len(accounts))
		emailManager.RestoreAll(ctx, accounts)
	}

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		logger.Info("received shutdown signal", "signal", sig)
		emailManager.StopAll()
		cancel()
	}()

	logger.Info("bot is running, press Ctrl+C to stop")
	bot.Start(ctx)

	logger.Info("bot stopped")
}

func setupLogger(level, format string) *slog.Logger {
	var handler slog.Handler
	logLevel := parseLevel(level)

	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		})
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.DateTime,
		})
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
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
