package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ashmarin/codemail/internal/database"
	"github.com/ashmarin/codemail/internal/email"
	"github.com/ashmarin/codemail/internal/formatter"
	appmodels "github.com/ashmarin/codemail/pkg/models"
)

// requireTopicAdmin runs the shared checks for account-management commands:
// forum supergroup and admin rights. It replies on failure and returns false.
func (b *Bot) requireTopicAdmin(ctx context.Context, msg *models.Message) bool {
	if msg.Chat.Type != "supergroup" || !msg.Chat.IsForum {
		b.sendMessage(ctx, msg.Chat.ID, msg.MessageThreadID, "This command only works in supergroups with topics")
		return false
	}

	isAdmin, err := b.isUserAdmin(ctx, msg.Chat.ID, msg.From.ID)
	if err != nil {
		b.logger.Error("failed to check admin status", "error", err)
		b.sendMessage(ctx, msg.Chat.ID, msg.MessageThreadID, "Failed to verify admin rights")
		return false
	}
	if !isAdmin {
		b.sendMessage(ctx, msg.Chat.ID, msg.MessageThreadID, "Only admins can manage mailboxes")
		return false
	}

	return true
}

// topicIsFree replies and returns false when the topic already watches a
// mailbox.
func (b *Bot) topicIsFree(ctx context.Context, chatID int64, topicID int) bool {
	existing, err := b.db.GetAccountByChatAndTopic(ctx, chatID, topicID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		b.logger.Error("failed to check existing account", "error", err)
		b.sendMessage(ctx, chatID, topicID, "Failed to check existing connection")
		return false
	}
	if existing != nil {
		b.sendMessage(ctx, chatID, topicID,
			fmt.Sprintf("This topic already watches %s\nUse /disconnect first", existing.Email))
		return false
	}
	return true
}

// startWatching stores an account and spins up its IMAP client.
func (b *Bot) startWatching(ctx context.Context, account *appmodels.EmailAccount) error {
	if err := b.db.CreateAccount(ctx, account); err != nil {
		return fmt.Errorf("failed to store account: %w", err)
	}

	if err := b.emailManager.AddAccount(ctx, account); err != nil {
		b.db.DeleteAccount(ctx, account.ID)
		return fmt.Errorf("failed to start connection: %w", err)
	}

	return nil
}

// handleConnect handles /connect.
// Usage: /connect email password [imap_server]
func (b *Bot) handleConnect(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	if !b.requireTopicAdmin(ctx, msg) {
		return
	}

	parts := strings.Fields(msg.Text)
	if len(parts) < 3 || len(parts) > 4 {
		b.sendMessage(ctx, msg.Chat.ID, msg.MessageThreadID,
			"Usage: <code>/connect email@example.com password</code>\nOr: <code>/connect email@example.com password imap.server.com:993</code>")
		return
	}

	emailAddr := parts[1]
	password := parts[2]
	topicID := msg.MessageThreadID

	// The command contains a password; get it off screen immediately.
	if err := b.deleteMessage(ctx, msg.Chat.ID, msg.ID); err != nil {
		b.logger.Warn("failed to delete connect message", "error", err)
	}

	var imapServer string
	if len(parts) == 4 {
		imapServer = parts[3]
	} else {
		b.sendMessage(ctx, msg.Chat.ID, topicID, "Resolving IMAP server...")
		var err error
		imapServer, err = email.ResolveIMAPServer(emailAddr)
		if err != nil {
			b.logger.Error("failed to resolve IMAP server", "error", err)
			b.sendMessage(ctx, msg.Chat.ID, topicID,
				fmt.Sprintf("Could not resolve an IMAP server for %s\nSpecify it explicitly: <code>/connect email password imap.server.com:993</code>", emailAddr))
			return
		}
		b.logger.Info("resolved IMAP server", "email", emailAddr, "server", imapServer)
	}

	if !b.topicIsFree(ctx, msg.Chat.ID, topicID) {
		return
	}

	b.sendMessage(ctx, msg.Chat.ID, topicID, fmt.Sprintf("Testing connection to %s...", imapServer))
	if err := b.emailManager.TestConnection(ctx, emailAddr, password, imapServer); err != nil {
		b.logger.Error("connection test failed", "error", err)
		b.sendMessage(ctx, msg.Chat.ID, topicID, fmt.Sprintf("Connection failed: %v", err))
		return
	}

	encryptedPassword, err := b.encryptPassword(password)
	if err != nil {
		b.logger.Error("failed to encrypt password", "error", err)
		b.sendMessage(ctx, msg.Chat.ID, topicID, "Failed to encrypt password")
		return
	}

	account := &appmodels.EmailAccount{
		Email:      emailAddr,
		Password:   encryptedPassword,
		IMAPServer: imapServer,
		ChatID:     msg.Chat.ID,
		TopicID:    topicID,
		IsActive:   true,
		CreatedBy:  msg.From.ID,
	}

	if err := b.startWatching(ctx, account); err != nil {
		b.logger.Error("failed to start watching", "error", err)
		b.sendMessage(ctx, msg.Chat.ID, topicID, fmt.Sprintf("Error: %v", err))
		return
	}

	b.sendMessage(ctx, msg.Chat.ID, topicID,
		fmt.Sprintf("Now watching <b>%s</b> (%s)\nIncoming mail and detected codes will be posted here.", emailAddr, imapServer))
}

// handleCreate handles /create: provision a mailbox via Mailcow and watch it.
// Usage: /create local_part [password] [name]
func (b *Bot) handleCreate(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message

	if b.mailcow == nil || !b.mailcow.IsConfigured() {
		b.sendMessage(ctx, msg.Chat.ID, msg.MessageThreadID, "Mailcow integration is not configured")
		return
	}

	if !b.requireTopicAdmin(ctx, msg) {
		return
	}

	parts := strings.Fields(msg.Text)
	if len(parts) < 2 {
		b.sendMessage(ctx, msg.Chat.ID, msg.MessageThreadID,
			fmt.Sprintf("Usage: <code>/create username</code>\nOr: <code>/create username password</code>\n\nCreates username@%s", b.mailcow.GetDomain()))
		return
	}

	localPart := parts[1]
	password := ""
	name := localPart
	if len(parts) >= 3 {
		password = parts[2]
	}
	if len(parts) >= 4 {
		name = strings.Join(parts[3:], " ")
	}

	topicID := msg.MessageThreadID

	if len(parts) >= 3 {
		if err := b.deleteMessage(ctx, msg.Chat.ID, msg.ID); err != nil {
			b.logger.Warn("failed to delete create message", "error", err)
		}
	}

	if !b.topicIsFree(ctx, msg.Chat.ID, topicID) {
		return
	}

	b.sendMessage(ctx, msg.Chat.ID, topicID, "Creating mailbox...")

	mailbox, err := b.mailcow.CreateMailbox(ctx, localPart, name, password, 1024)
	if err != nil {
		b.logger.Error("failed to create mailbox", "error", err)
		b.sendMessage(ctx, msg.Chat.ID, topicID, fmt.Sprintf("Failed to create mailbox: %v", err))
		return
	}

	emailAddr := mailbox.LocalPart + "@" + mailbox.Domain
	imapServer := b.mailcow.GetIMAPServer()

	encryptedPassword, err := b.encryptPassword(mailbox.Password)
	if err != nil {
		b.logger.Error("failed to encrypt password", "error", err)
		b.sendMessage(ctx, msg.Chat.ID, topicID, "Failed to encrypt password")
		return
	}

	account := &appmodels.EmailAccount{
		Email:      emailAddr,
		Password:   encryptedPassword,
		IMAPServer: imapServer,
		ChatID:     msg.Chat.ID,
		TopicID:    topicID,
		IsActive:   true,
		CreatedBy:  msg.From.ID,
	}

	if err := b.startWatching(ctx, account); err != nil {
		b.logger.Error("failed to start watching", "error", err)
		b.sendMessage(ctx, msg.Chat.ID, topicID, fmt.Sprintf("Error: %v", err))
		return
	}

	credentialsMsg := fmt.Sprintf(
		"Mailbox created.\n\n"+
			"<b>Email:</b> <code>%s</code>\n"+
			"<b>Password:</b> <code>%s</code>\n"+
			"<b>IMAP:</b> %s\n"+
			"<b>SMTP:</b> %s\n\n"+
			"Incoming mail and detected codes will be posted here.",
		emailAddr,
		b.formatter.EscapeHTML(mailbox.Password),
		imapServer,
		strings.Replace(imapServer, ":993", ":587", 1),
	)
	b.sendMessage(ctx, msg.Chat.ID, topicID, credentialsMsg)
}

// handleDisconnect handles /disconnect.
func (b *Bot) handleDisconnect(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message

	isAdmin, err := b.isUserAdmin(ctx, msg.Chat.ID, msg.From.ID)
	if err != nil {
		b.logger.Error("failed to check admin status", "error", err)
		b.sendMessage(ctx, msg.Chat.ID, msg.MessageThreadID, "Failed to verify admin rights")
		return
	}
	if !isAdmin {
		b.sendMessage(ctx, msg.Chat.ID, msg.MessageThreadID, "Only admins can manage mailboxes")
		return
	}

	topicID := msg.MessageThreadID

	account, err := b.db.GetAccountByChatAndTopic(ctx, msg.Chat.ID, topicID)
	if errors.Is(err, database.ErrNotFound) {
		b.sendMessage(ctx, msg.Chat.ID, topicID, "No mailbox is watched in this topic")
		return
	}
	if err != nil {
		b.logger.Error("failed to get account", "error", err)
		b.sendMessage(ctx, msg.Chat.ID, topicID, "Failed to look up the account")
		return
	}

	if err := b.emailManager.RemoveAccount(account.ID); err != nil {
		b.logger.Error("failed to stop email client", "error", err)
	}

	if err := b.db.DeleteAccount(ctx, account.ID); err != nil {
		b.logger.Error("failed to delete account", "error", err)
		b.sendMessage(ctx, msg.Chat.ID, topicID, "Failed to delete the account")
		return
	}

	b.logger.Info("mailbox disconnected", "email", account.Email, "chat_id", msg.Chat.ID, "topic_id", topicID)
	b.sendMessage(ctx, msg.Chat.ID, topicID,
		fmt.Sprintf("Stopped watching <b>%s</b>", account.Email))
}

// handleStatus handles /status.
func (b *Bot) handleStatus(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message

	accounts, err := b.db.GetAccountsByChatID(ctx, msg.Chat.ID)
	if err != nil {
		b.logger.Error("failed to get accounts", "error", err)
		b.sendMessage(ctx, msg.Chat.ID, msg.MessageThreadID, "Failed to list accounts")
		return
	}

	if len(accounts) == 0 {
		b.sendMessage(ctx, msg.Chat.ID, msg.MessageThreadID, "No mailboxes are watched in this group")
		return
	}

	var sb strings.Builder
	sb.WriteString("<b>Watched mailboxes:</b>\n\n")
	for _, acc := range accounts {
		status := b.emailManager.GetStatus(acc.ID)
		marker := "🔴"
		switch status {
		case "connected":
			marker = "🟢"
		case "reconnecting":
			marker = "🟡"
		}
		sb.WriteString(fmt.Sprintf("%s <b>%s</b> — %s (topic %d)\n", marker, b.formatter.EscapeHTML(acc.Email), status, acc.TopicID))
	}

	b.sendMessage(ctx, msg.Chat.ID, msg.MessageThreadID, sb.String())
}

// handleCode handles /code: re-show the most recent detected code for the
// topic's mailbox.
func (b *Bot) handleCode(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	topicID := msg.MessageThreadID

	account, err := b.db.GetAccountByChatAndTopic(ctx, msg.Chat.ID, topicID)
	if errors.Is(err, database.ErrNotFound) {
		b.sendMessage(ctx, msg.Chat.ID, topicID, "No mailbox is watched in this topic")
		return
	}
	if err != nil {
		b.logger.Error("failed to get account", "error", err)
		b.sendMessage(ctx, msg.Chat.ID, topicID, "Failed to look up the account")
		return
	}

	latest, err := b.db.GetLatestCodeMessage(ctx, account.ID)
	if errors.Is(err, database.ErrNotFound) {
		b.sendMessage(ctx, msg.Chat.ID, topicID, "No code detected yet — check the mail body manually")
		return
	}
	if err != nil {
		b.logger.Error("failed to get latest code", "error", err)
		b.sendMessage(ctx, msg.Chat.ID, topicID, "Failed to look up the latest code")
		return
	}

	b.sendMessage(ctx, msg.Chat.ID, topicID, b.formatter.FormatCode(latest))
}

// handleCallback handles inline button callbacks.
func (b *Bot) handleCallback(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	data, err := formatter.DecodeCallback(callback.Data)
	if err != nil {
		b.logger.Error("failed to decode callback", "error", err, "data", callback.Data)
		b.answerCallback(ctx, callback.ID, "Error", false)
		return
	}

	switch data.Action {
	case appmodels.CallbackMarkRead:
		b.handleMarkRead(ctx, callback, data)
	case appmodels.CallbackDelete:
		b.handleDelete(ctx, callback, data)
	case appmodels.CallbackShowCode:
		b.handleShowCode(ctx, callback, data)
	default:
		b.answerCallback(ctx, callback.ID, "Unknown action", false)
	}
}

// handleMarkRead marks the message as read in IMAP and in the database.
func (b *Bot) handleMarkRead(ctx context.Context, callback *models.CallbackQuery, data appmodels.CallbackData) {
	msg, err := b.db.GetMessageByID(ctx, data.MessageID)
	if err != nil {
		b.logger.Error("failed to get message", "error", err)
		b.answerCallback(ctx, callback.ID, "Message not found", false)
		return
	}

	account, err := b.db.GetAccountByID(ctx, msg.AccountID)
	if err != nil {
		b.logger.Error("failed to get account", "error", err)
		b.answerCallback(ctx, callback.ID, "Account not found", false)
		return
	}

	if err := b.emailManager.MarkAsRead(account.ID, msg.UID); err != nil {
		b.logger.Error("failed to mark as read", "error", err)
		b.answerCallback(ctx, callback.ID, "Error: "+err.Error(), false)
		return
	}

	if err := b.db.MarkMessageAsRead(ctx, msg.ID); err != nil {
		b.logger.Error("failed to update message", "error", err)
	}

	keyboard := formatter.BuildEmailKeyboard(msg.ID, msg.Code, true)
	b.editMessageReplyMarkup(ctx, account.ChatID, msg.TelegramMsgID, keyboard)

	b.answerCallback(ctx, callback.ID, "Marked as read", false)
}

// handleDelete deletes the message from IMAP and hides it in Telegram.
func (b *Bot) handleDelete(ctx context.Context, callback *models.CallbackQuery, data appmodels.CallbackData) {
	msg, err := b.db.GetMessageByID(ctx, data.MessageID)
	if err != nil {
		b.logger.Error("failed to get message", "error", err)
		b.answerCallback(ctx, callback.ID, "Message not found", false)
		return
	}

	account, err := b.db.GetAccountByID(ctx, msg.AccountID)
	if err != nil {
		b.logger.Error("failed to get account", "error", err)
		b.answerCallback(ctx, callback.ID, "Account not found", false)
		return
	}

	if err := b.emailManager.DeleteMessage(account.ID, msg.UID); err != nil {
		b.logger.Error("failed to delete message", "error", err)
		b.answerCallback(ctx, callback.ID, "Error: "+err.Error(), false)
		return
	}

	if err := b.db.MarkMessageAsDeleted(ctx, msg.ID); err != nil {
		b.logger.Error("failed to update message", "error", err)
	}

	b.deleteMessage(ctx, account.ChatID, msg.TelegramMsgID)
	b.answerCallback(ctx, callback.ID, "Email deleted", false)
}

// handleShowCode shows the stored code in an alert so it can be copied.
func (b *Bot) handleShowCode(ctx context.Context, callback *models.CallbackQuery, data appmodels.CallbackData) {
	msg, err := b.db.GetMessageByID(ctx, data.MessageID)
	if err != nil {
		b.logger.Error("failed to get message", "error", err)
		b.answerCallback(ctx, callback.ID, "Message not found", false)
		return
	}

	if !msg.HasCode() {
		b.answerCallback(ctx, callback.ID, "No code detected in this email", false)
		return
	}

	b.answerCallback(ctx, callback.ID, fmt.Sprintf("Code: %s", msg.Code), true)
}
