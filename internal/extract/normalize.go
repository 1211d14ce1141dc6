package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	scriptBlockRegex = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleBlockRegex  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	tagRegex         = regexp.MustCompile(`<[^>]*>`)
	htmlLikeRegex    = regexp.MustCompile(`<[^>]+>`)
	decEntityRegex   = regexp.MustCompile(`&#([0-9]+);`)
	hexEntityRegex   = regexp.MustCompile(`&#[xX]([0-9a-fA-F]+);`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)
)

// namedEntities is the fixed entity table. &amp; is decoded last so that
// sequences like &amp;lt; are not decoded twice.
var namedEntities = [][2]string{
	{"&nbsp;", " "},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
	{"&apos;", "'"},
	{"&amp;", "&"},
}

// LooksLikeHTML reports whether the text contains tag-like markup.
func LooksLikeHTML(s string) bool {
	return htmlLikeRegex.MatchString(s)
}

// Normalize converts HTML or lightly marked-up text into clean plain text:
// script/style blocks are dropped with their content, remaining tags become
// single spaces, entities are decoded and whitespace runs collapse to one
// space. Malformed markup is tolerated; unterminated tags stay as text.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	text := scriptBlockRegex.ReplaceAllString(raw, " ")
	text = styleBlockRegex.ReplaceAllString(text, " ")
	text = tagRegex.ReplaceAllString(text, " ")

	for _, e := range namedEntities {
		text = strings.ReplaceAll(text, e[0], e[1])
	}
	text = decEntityRegex.ReplaceAllStringFunc(text, decodeNumericEntity)
	text = hexEntityRegex.ReplaceAllStringFunc(text, decodeNumericEntity)

	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// decodeNumericEntity decodes &#NNN; or &#xHHH; leaving invalid references
// untouched.
func decodeNumericEntity(entity string) string {
	body := entity[2 : len(entity)-1] // strip "&#" and ";"

	base := 10
	if len(body) > 0 && (body[0] == 'x' || body[0] == 'X') {
		base = 16
		body = body[1:]
	}

	n, err := strconv.ParseInt(body, base, 32)
	if err != nil || n < 0 || n > 0x10FFFF {
		return entity
	}
	return string(rune(n))
}
