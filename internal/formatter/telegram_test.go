package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appmodels "github.com/ashmarin/codemail/pkg/models"
)

func sampleMessage() *appmodels.EmailMessage {
	return &appmodels.EmailMessage{
		ID:         7,
		FromAddr:   "noreply@example.com",
		FromName:   "Example <Security>",
		Subject:    "Your login code",
		BodyText:   "Your verification code is 654321",
		Code:       "654321",
		ReceivedAt: time.Date(2025, 3, 14, 9, 26, 0, 0, time.UTC),
	}
}

func TestFormatEmail_IncludesCodeAndEscapes(t *testing.T) {
	f := NewMessageFormatter()
	text := f.FormatEmail(sampleMessage())

	assert.Contains(t, text, "<code>654321</code>")
	assert.Contains(t, text, "Example &lt;Security&gt;")
	assert.Contains(t, text, "Your login code")
	assert.NotContains(t, text, "<Security>")
}

func TestFormatEmail_NoCodeSection(t *testing.T) {
	f := NewMessageFormatter()
	msg := sampleMessage()
	msg.Code = ""

	assert.NotContains(t, f.FormatEmail(msg), "Verification code")
}

func TestFormatEmail_TruncatesLongBodies(t *testing.T) {
	f := NewMessageFormatter()
	msg := sampleMessage()
	msg.BodyText = strings.Repeat("long ", 2000)

	text := f.FormatEmail(msg)
	assert.LessOrEqual(t, len([]rune(text)), 4096)
	assert.Contains(t, text, "truncated")
}

func TestFormatCode(t *testing.T) {
	f := NewMessageFormatter()
	text := f.FormatCode(sampleMessage())

	assert.Contains(t, text, "<code>654321</code>")
	assert.Contains(t, text, "noreply@example.com")
}

func TestCallbackRoundTrip(t *testing.T) {
	in := appmodels.CallbackData{Action: appmodels.CallbackShowCode, MessageID: 42}

	encoded := EncodeCallback(in)
	assert.LessOrEqual(t, len(encoded), 64, "telegram callback data limit")

	out, err := DecodeCallback(encoded)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestBuildEmailKeyboard(t *testing.T) {
	kb := BuildEmailKeyboard(7, "654321", false)
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Equal(t, "654321", kb.InlineKeyboard[0][0].Text)
	assert.Len(t, kb.InlineKeyboard[1], 2)

	// Read messages lose the mark-read button; no code drops the code row.
	kb = BuildEmailKeyboard(7, "", true)
	require.Len(t, kb.InlineKeyboard, 1)
	assert.Len(t, kb.InlineKeyboard[0], 1)
	assert.Equal(t, "Delete", kb.InlineKeyboard[0][0].Text)
}
