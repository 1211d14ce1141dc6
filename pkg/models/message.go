package models

import "time"

// Body content types, set by the fetching layer.
const (
	ContentTypeHTML = "html"
	ContentTypeText = "text"
)

// EmailMessage is a fetched email with its extraction result.
type EmailMessage struct {
	ID            int64     `db:"id"`
	AccountID     int64     `db:"account_id"`   // FK to EmailAccount
	UID           uint32    `db:"uid"`          // IMAP UID
	MessageID     string    `db:"message_id"`   // Message-ID header
	FromAddr      string    `db:"from_addr"`    // Sender email
	FromName      string    `db:"from_name"`    // Sender name
	Subject       string    `db:"subject"`
	BodyText      string    `db:"body_text"`    // readable plain-text body
	BodyHTML      string    `db:"body_html"`    // original HTML body, if any
	BodyPreview   string    `db:"body_preview"` // short plain-text preview
	ContentType   string    `db:"content_type"` // "html" or "text"
	Code          string    `db:"code"`         // extracted verification code, empty when none found
	ReceivedAt    time.Time `db:"received_at"`
	IsRead        bool      `db:"is_read"`
	IsDeleted     bool      `db:"is_deleted"`
	TelegramMsgID int       `db:"telegram_msg_id"`
	CreatedAt     time.Time `db:"created_at"`
}

// HasCode reports whether a verification code was detected in this message.
func (m *EmailMessage) HasCode() bool {
	return m.Code != ""
}
