// Package extract finds the single most plausible verification code (OTP,
// PIN) in free-form email text, English or Chinese, HTML or plain. It is a
// best-effort heuristic: a miss is a normal outcome, not an error. The
// package does no I/O and keeps no state, so an Extractor is safe for
// concurrent use.
package extract

// Content types for Message bodies.
const (
	ContentTypeHTML = "html"
	ContentTypeText = "text"
)

// Body is a message body as delivered by the mail-fetching layer.
type Body struct {
	Content     string
	ContentType string
}

// Message is the boundary contract with the mail-fetching layer. Any field
// may be empty; extraction works on whatever text is available.
type Message struct {
	Subject     string
	Body        Body
	BodyPreview string
}

// Extractor runs an ordered chain of candidate strategies over the text and
// returns the top-scoring candidate.
type Extractor struct {
	strategies []strategy
}

// NewExtractor creates an extractor with the default strategy chain:
// keyword-context first, full-text fallback second.
func NewExtractor() *Extractor {
	return &Extractor{
		strategies: []strategy{
			keywordContextCandidates,
			fullTextCandidates,
		},
	}
}

// ExtractCode returns the most likely verification code in text. The text is
// expected to be plain; run Normalize first for HTML input. ok is false when
// no plausible code was found.
func (e *Extractor) ExtractCode(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	return selectBest(e.generate(text))
}

// ExtractFromMessage extracts a code from a fetched message. It is nil-safe,
// prefers the full body over the preview and normalizes HTML content.
func (e *Extractor) ExtractFromMessage(msg *Message) (string, bool) {
	if msg == nil {
		return "", false
	}

	text := msg.Body.Content
	if text == "" {
		text = msg.BodyPreview
	}
	if text == "" {
		return "", false
	}

	if msg.Body.ContentType == ContentTypeHTML || LooksLikeHTML(text) {
		text = Normalize(text)
	}

	return e.ExtractCode(text)
}

// generate tries each strategy in order and returns the first non-empty
// candidate list.
func (e *Extractor) generate(text string) []Candidate {
	for _, s := range e.strategies {
		if cands := s(text); len(cands) > 0 {
			return cands
		}
	}
	return nil
}
