package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/ashmarin/codemail/internal/database"
	"github.com/ashmarin/codemail/internal/email"
	"github.com/ashmarin/codemail/internal/extract"
	"github.com/ashmarin/codemail/internal/formatter"
	"github.com/ashmarin/codemail/internal/parser"
	"github.com/ashmarin/codemail/pkg/models"
)

// SetupEmailCallbacks wires the email manager into the bot.
func (b *Bot) SetupEmailCallbacks() {
	b.emailManager.SetMessageHandler(b.onNewEmail)
	b.emailManager.SetErrorHandler(b.onEmailError)
	b.emailManager.SetDecryptFunc(b.DecryptPasswordFunc())
}

// onNewEmail handles a new email: render the body, mine it for a
// verification code, store the message and announce it in the topic.
func (b *Bot) onNewEmail(accountID int64, rawEmail *email.RawEmail) {
	ctx := context.Background()

	b.logger.Info("received new email",
		"account_id", accountID,
		"from", rawEmail.From.Address,
		"subject", rawEmail.Subject,
	)

	account, err := b.db.GetAccountByID(ctx, accountID)
	if err != nil {
		b.logger.Error("failed to get account", "error", err, "account_id", accountID)
		return
	}

	// Readable text for display
	bodyText := rawEmail.BodyText
	if rawEmail.BodyHTML != "" {
		rendered, err := b.renderer.Render(rawEmail.BodyHTML)
		if err != nil {
			b.logger.Warn("failed to render HTML body", "error", err)
		} else {
			bodyText = rendered
		}
	}
	preview := b.renderer.Preview(bodyText, parser.PreviewLength)

	// Code extraction works on the raw body and falls back to the subject;
	// the extractor does its own HTML normalization.
	code, found := b.extractor.ExtractFromMessage(&extract.Message{
		Subject: rawEmail.Subject,
		Body: extract.Body{
			Content:     rawBody(rawEmail),
			ContentType: rawEmail.ContentType,
		},
		BodyPreview: preview,
	})
	if !found {
		code, _ = b.extractor.ExtractCode(rawEmail.Subject)
	}

	emailMsg := &models.EmailMessage{
		AccountID:   accountID,
		UID:         rawEmail.UID,
		MessageID:   rawEmail.MessageID,
		FromAddr:    rawEmail.From.Address,
		FromName:    rawEmail.From.Name,
		Subject:     rawEmail.Subject,
		BodyText:    bodyText,
		BodyHTML:    rawEmail.BodyHTML,
		BodyPreview: preview,
		ContentType: rawEmail.ContentType,
		Code:        code,
		ReceivedAt:  rawEmail.Date,
	}

	if err := b.db.CreateMessage(ctx, emailMsg); err != nil {
		if errors.Is(err, database.ErrAlreadyExists) {
			b.logger.Debug("message already exists, skipping", "uid", rawEmail.UID)
			return
		}
		b.logger.Error("failed to save message", "error", err)
		return
	}

	text := b.formatter.FormatEmail(emailMsg)
	keyboard := formatter.BuildEmailKeyboard(emailMsg.ID, emailMsg.Code, false)

	tgMsg, err := b.sendMessageWithKeyboard(ctx, account.ChatID, account.TopicID, text, keyboard)
	if err != nil {
		b.logger.Error("failed to send to telegram", "error", err)
		return
	}

	if err := b.db.UpdateMessageTelegramMsgID(ctx, emailMsg.ID, tgMsg.ID); err != nil {
		b.logger.Error("failed to update telegram msg id", "error", err)
	}

	if err := b.db.UpdateAccountLastUID(ctx, accountID, rawEmail.UID); err != nil {
		b.logger.Error("failed to update last uid", "error", err)
	}

	b.logger.Info("email announced",
		"account_id", accountID,
		"telegram_msg_id", tgMsg.ID,
		"code_found", emailMsg.HasCode(),
	)
}

// rawBody picks the body variant the extractor should mine.
func rawBody(rawEmail *email.RawEmail) string {
	if rawEmail.BodyHTML != "" {
		return rawEmail.BodyHTML
	}
	return rawEmail.BodyText
}

// onEmailError handles an email connection error.
func (b *Bot) onEmailError(accountID int64, err error) {
	ctx := context.Background()

	b.logger.Error("email error", "account_id", accountID, "error", err)

	account, errDB := b.db.GetAccountByID(ctx, accountID)
	if errDB != nil {
		b.logger.Error("failed to get account for error notification", "error", errDB)
		return
	}

	text := fmt.Sprintf("Connection error for <b>%s</b>:\n<code>%v</code>\n\nReconnecting...",
		b.formatter.EscapeHTML(account.Email), err)
	b.sendMessage(ctx, account.ChatID, account.TopicID, text)
}
