package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCode_Scenarios(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"english keyword", "Your verification code is 654321", "654321", true},
		{"chinese keyword", "您的验证码是 123456，请勿泄露", "123456", true},
		{"invoice noise", "Invoice #2024 total $45.00 due", "", false},
		{"otp beats order id", "Your OTP is 4321. Order number 987654321.", "4321", true},
		{"bare code fallback", "use 481516 anywhere", "481516", true},
		{"alphanumeric code", "code: A1B2C3", "A1B2C3", true},
		{"letters only", "code: ABCDEF", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.ExtractCode(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractCode_Deterministic(t *testing.T) {
	e := NewExtractor()
	texts := []string{
		"Your verification code is 654321",
		"约 1200 条消息，取件码 8899，时间 0930",
		"pin 5566 or maybe 7788",
	}

	for _, text := range texts {
		first, okFirst := e.ExtractCode(text)
		second, okSecond := e.ExtractCode(text)
		assert.Equal(t, first, second)
		assert.Equal(t, okFirst, okSecond)
	}
}

func TestExtractFromMessage_NilSafe(t *testing.T) {
	e := NewExtractor()

	code, ok := e.ExtractFromMessage(nil)
	assert.False(t, ok)
	assert.Empty(t, code)
}

func TestExtractFromMessage_EmptyBodyAndPreview(t *testing.T) {
	e := NewExtractor()

	code, ok := e.ExtractFromMessage(&Message{Subject: "hello"})
	assert.False(t, ok)
	assert.Empty(t, code)
}

func TestExtractFromMessage_HTMLBody(t *testing.T) {
	e := NewExtractor()

	code, ok := e.ExtractFromMessage(&Message{
		Body: Body{
			Content:     "<p>Code: <b>987654</b></p>",
			ContentType: ContentTypeHTML,
		},
	})
	require.True(t, ok)
	assert.Equal(t, "987654", code)
}

func TestExtractFromMessage_DetectsUnlabeledHTML(t *testing.T) {
	e := NewExtractor()

	// Content type says text, but the body carries markup.
	code, ok := e.ExtractFromMessage(&Message{
		Body: Body{
			Content:     "<div>verification code <b>246810</b></div>",
			ContentType: ContentTypeText,
		},
	})
	require.True(t, ok)
	assert.Equal(t, "246810", code)
}

func TestExtractFromMessage_MalformedHTMLDoesNotPanic(t *testing.T) {
	e := NewExtractor()

	code, ok := e.ExtractFromMessage(&Message{
		Body: Body{
			Content:     "<div><b>Code: 123456",
			ContentType: ContentTypeHTML,
		},
	})
	require.True(t, ok)
	assert.Equal(t, "123456", code)
}

func TestExtractFromMessage_PreviewFallback(t *testing.T) {
	e := NewExtractor()

	code, ok := e.ExtractFromMessage(&Message{BodyPreview: "验证码 887766"})
	require.True(t, ok)
	assert.Equal(t, "887766", code)
}

func TestExtractFromMessage_PrefersBodyOverPreview(t *testing.T) {
	e := NewExtractor()

	code, ok := e.ExtractFromMessage(&Message{
		Body:        Body{Content: "verification code 111222", ContentType: ContentTypeText},
		BodyPreview: "verification code 333444",
	})
	require.True(t, ok)
	assert.Equal(t, "111222", code)
}
