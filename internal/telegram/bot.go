package telegram

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ashmarin/codemail/internal/config"
	"github.com/ashmarin/codemail/internal/database"
	"github.com/ashmarin/codemail/internal/email"
	"github.com/ashmarin/codemail/internal/extract"
	"github.com/ashmarin/codemail/internal/formatter"
	"github.com/ashmarin/codemail/internal/mailcow"
	"github.com/ashmarin/codemail/internal/parser"
)

// Bot is the Telegram front end: one supergroup topic per watched mailbox.
type Bot struct {
	bot          *bot.Bot
	db           *database.DB
	emailManager *email.Manager
	mailcow      *mailcow.Client
	renderer     *parser.Renderer
	extractor    *extract.Extractor
	formatter    *formatter.MessageFormatter
	logger       *slog.Logger
	config       *config.Config
}

// BotDeps dependencies for creating a bot.
type BotDeps struct {
	Config       *config.Config
	DB           *database.DB
	EmailManager *email.Manager
	Mailcow      *mailcow.Client
	Renderer     *parser.Renderer
	Extractor    *extract.Extractor
	Formatter    *formatter.MessageFormatter
	Logger       *slog.Logger
}

// NewBot creates a new Telegram bot.
func NewBot(deps BotDeps) (*Bot, error) {
	b := &Bot{
		db:           deps.DB,
		emailManager: deps.EmailManager,
		mailcow:      deps.Mailcow,
		renderer:     deps.Renderer,
		extractor:    deps.Extractor,
		formatter:    deps.Formatter,
		logger:       deps.Logger.With("component", "telegram_bot"),
		config:       deps.Config,
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(b.defaultHandler),
	}

	tgBot, err := bot.New(deps.Config.TelegramToken, opts...)
	if err != nil {
		return nil, err
	}

	b.bot = tgBot
	b.registerHandlers()

	return b, nil
}

// registerHandlers registers command handlers.
func (b *Bot) registerHandlers() {
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/connect", bot.MatchTypePrefix, b.handleConnect)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/create", bot.MatchTypePrefix, b.handleCreate)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/disconnect", bot.MatchTypePrefix, b.handleDisconnect)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypePrefix, b.handleStatus)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/code", bot.MatchTypePrefix, b.handleCode)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, b.handleStart)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypePrefix, b.handleHelp)
	b.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, b.handleCallback)
}

// Start starts the bot.
func (b *Bot) Start(ctx context.Context) {
	b.logger.Info("starting telegram bot")
	b.bot.Start(ctx)
}

// defaultHandler handles unknown messages.
func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	if update.Message.Text != "" && update.Message.Text[0] == '/' {
		b.logger.Debug("unknown command", "text", update.Message.Text)
	}
}

// handleStart handles /start command.
func (b *Bot) handleStart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleHelp(ctx, tgBot, update)
}

// handleHelp handles /help command.
func (b *Bot) handleHelp(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message

	text := `<b>codemail</b>

Watches mailboxes and posts incoming mail with the detected verification code into this topic.

<b>Commands:</b>
/connect email password - watch an existing mailbox
/disconnect - stop watching the topic's mailbox
/code - show the most recent detected code
/status - show connection status`

	if b.mailcow != nil && b.mailcow.IsConfigured() {
		text += "\n/create username - provision a new mailbox on " + b.formatter.EscapeHTML(b.mailcow.GetDomain())
	}

	b.sendMessage(ctx, msg.Chat.ID, msg.MessageThreadID, text)
}
