package formatter

import (
	"fmt"
	"strings"

	"github.com/ashmarin/codemail/pkg/models"
)

// MessageFormatter renders email messages for Telegram HTML parse mode.
type MessageFormatter struct {
	maxLength int
}

// NewMessageFormatter creates a new formatter.
func NewMessageFormatter() *MessageFormatter {
	return &MessageFormatter{
		maxLength: 4000, // Telegram caps messages at 4096, leave room for markup
	}
}

// FormatEmail formats a stored email, leading with the detected code when one
// was found.
func (f *MessageFormatter) FormatEmail(msg *models.EmailMessage) string {
	var sb strings.Builder

	from := f.EscapeHTML(msg.FromAddr)
	if msg.FromName != "" {
		from = fmt.Sprintf("%s &lt;%s&gt;", f.EscapeHTML(msg.FromName), f.EscapeHTML(msg.FromAddr))
	}

	sb.WriteString(fmt.Sprintf("<b>From:</b> %s\n", from))
	sb.WriteString(fmt.Sprintf("<b>Subject:</b> %s\n", f.EscapeHTML(msg.Subject)))
	sb.WriteString(fmt.Sprintf("<b>Date:</b> %s\n", msg.ReceivedAt.Format("2006-01-02 15:04")))
	sb.WriteString("\n")

	if msg.HasCode() {
		sb.WriteString(fmt.Sprintf("<b>Verification code:</b> <code>%s</code>\n\n", f.EscapeHTML(msg.Code)))
	}

	sb.WriteString("<b>Message:</b>\n")
	body := f.truncate(msg.BodyText, f.maxLength-sb.Len()-50)
	sb.WriteString(f.EscapeHTML(body))

	return sb.String()
}

// FormatCode formats a code-only reply for the /code command.
func (f *MessageFormatter) FormatCode(msg *models.EmailMessage) string {
	return fmt.Sprintf(
		"<b>Latest code:</b> <code>%s</code>\nFrom %s, %s",
		f.EscapeHTML(msg.Code),
		f.EscapeHTML(msg.FromAddr),
		msg.ReceivedAt.Format("2006-01-02 15:04"),
	)
}

// EscapeHTML escapes HTML special characters for Telegram.
func (f *MessageFormatter) EscapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// truncate limits text to maxLen characters.
func (f *MessageFormatter) truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 100
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	// Plain-text suffix: the body is escaped after truncation.
	return string(runes[:maxLen]) + "\n\n… (message truncated)"
}
