package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_BasicHTML(t *testing.T) {
	r := NewRenderer()

	text, err := r.Render("<html><body><p>Hello</p><p>Your code is 123456</p></body></html>")
	require.NoError(t, err)
	assert.Equal(t, "Hello\nYour code is 123456", text)
}

func TestRender_DropsScriptAndStyle(t *testing.T) {
	r := NewRenderer()

	text, err := r.Render("<style>p{}</style><script>x()</script><p>visible</p>")
	require.NoError(t, err)
	assert.Equal(t, "visible", text)
}

func TestRender_StripsInvisibleCharacters(t *testing.T) {
	r := NewRenderer()

	text, err := r.Render("<p>12​34‍56</p>")
	require.NoError(t, err)
	assert.Equal(t, "123456", text)
}

func TestRender_Empty(t *testing.T) {
	r := NewRenderer()

	text, err := r.Render("")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestPreview(t *testing.T) {
	r := NewRenderer()

	assert.Equal(t, "a b c", r.Preview("a\n b\t\tc", 10))
	assert.Equal(t, "abcde…", r.Preview("abcdefgh", 5))
	assert.Equal(t, "验证码…", r.Preview("验证码123456", 3))
}
