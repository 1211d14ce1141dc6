package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_StripsTags(t *testing.T) {
	assert.Equal(t, "Hello world", Normalize("<p>Hello <b>world</b></p>"))
}

func TestNormalize_DropsScriptAndStyleWithContent(t *testing.T) {
	in := "<script>var secret = 999999;</script><p>Hi</p><style>.a{color:red}</style>"
	assert.Equal(t, "Hi", Normalize(in))
}

func TestNormalize_ScriptBlockIsCaseInsensitiveAndMultiline(t *testing.T) {
	in := "<SCRIPT type=\"text/javascript\">\nalert(1)\n</SCRIPT>ok"
	assert.Equal(t, "ok", Normalize(in))
}

func TestNormalize_DecodesNamedEntities(t *testing.T) {
	assert.Equal(t, `a b & " ' <x>`, Normalize("a&nbsp;b &amp; &quot; &#39; &lt;x&gt;"))
}

func TestNormalize_DoesNotDoubleDecodeAmp(t *testing.T) {
	// &amp;lt; is the literal text "&lt;", not a tag.
	assert.Equal(t, "&lt;", Normalize("&amp;lt;"))
}

func TestNormalize_DecodesNumericEntities(t *testing.T) {
	assert.Equal(t, "ABC", Normalize("&#65;&#66;&#x43;"))
	assert.Equal(t, "验", Normalize("&#x9A8C;"))
}

func TestNormalize_KeepsInvalidNumericEntities(t *testing.T) {
	assert.Equal(t, "&#99999999;", Normalize("&#99999999;"))
}

func TestNormalize_CollapsesWhitespaceAndTrims(t *testing.T) {
	assert.Equal(t, "a b c", Normalize("  a\n\t b \r\n  c  "))
}

func TestNormalize_ToleratesMalformedHTML(t *testing.T) {
	// Unterminated tags stay as text; nothing panics.
	assert.Equal(t, "<p unclosed attr", Normalize("<p unclosed attr"))
	assert.Equal(t, "text", Normalize("<div><b>text"))
	assert.Equal(t, "", Normalize(""))
}

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, LooksLikeHTML("<b>bold</b>"))
	assert.True(t, LooksLikeHTML("before <br/> after"))
	assert.False(t, LooksLikeHTML("your code is 123456"))
	assert.False(t, LooksLikeHTML(""))
}
