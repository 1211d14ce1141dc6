// Package parser renders HTML email bodies into readable plain text for
// display. Code extraction uses its own normalizer in internal/extract; this
// renderer keeps line structure so the Telegram output stays legible.
package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PreviewLength is the default length of generated body previews.
const PreviewLength = 160

// Renderer converts HTML emails to readable plain text.
type Renderer struct {
	spacesRegex    *regexp.Regexp
	newlineRegex   *regexp.Regexp
	invisibleRegex *regexp.Regexp
}

// NewRenderer creates a new HTML renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		spacesRegex:  regexp.MustCompile(`[^\S\n]+`),
		newlineRegex: regexp.MustCompile(`\n{3,}`),
		// Zero-width and other invisible Unicode characters that mail
		// providers like to sprinkle into bodies.
		invisibleRegex: regexp.MustCompile(`[\x{200B}-\x{200D}\x{FEFF}\x{00AD}\x{034F}\x{061C}\x{2060}-\x{2064}\x{206A}-\x{206F}\x{FE00}-\x{FE0F}\x{FFF0}-\x{FFF8}]+`),
	}
}

// Render converts HTML to clean multi-line plain text.
func (r *Renderer) Render(html string) (string, error) {
	if html == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, head, meta, link").Remove()

	// Keep block boundaries as newlines.
	doc.Find("p, div, br, h1, h2, h3, h4, h5, h6, li, tr").Each(func(i int, s *goquery.Selection) {
		s.PrependHtml("\n")
	})

	text := doc.Text()
	text = r.invisibleRegex.ReplaceAllString(text, "")
	text = r.spacesRegex.ReplaceAllString(text, " ")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	text = strings.Join(lines, "\n")
	text = r.newlineRegex.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text), nil
}

// Preview flattens text into a single line of at most n characters, suitable
// for the body_preview column and list views.
func (r *Renderer) Preview(text string, n int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= n {
		return flat
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
