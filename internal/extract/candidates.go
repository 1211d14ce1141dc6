package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Candidate is a code-shaped substring under evaluation. Candidates live only
// for the duration of a single extraction call.
type Candidate struct {
	Code   string
	Score  int
	Source string
}

// Candidate sources.
const (
	SourceKeywordContext = "keyword-context"
	SourceFullText       = "full-text"
)

const (
	// contextWindowSize is how many characters after a keyword match are
	// searched for a code.
	contextWindowSize = 50

	// scoreContextSize is how many characters around a full-text match feed
	// the contextual scoring.
	scoreContextSize = 5

	// keywordProximityBonus rewards codes that follow an explicit keyword.
	keywordProximityBonus = 20
)

// strategy produces candidates from normalized text. Strategies are tried in
// order with early exit on the first non-empty result.
type strategy func(text string) []Candidate

// keywordContextCandidates looks for codes in the window right after each
// recognized keyword. Text before the keyword is deliberately ignored.
func keywordContextCandidates(text string) []Candidate {
	var cands []Candidate
	for _, kw := range keywordPatterns {
		loc := kw.Pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		window := headRunes(text[loc[1]:], contextWindowSize)
		for _, shape := range codePatterns {
			code, ok := firstBoundedMatch(shape.Pattern, window)
			if !ok || !containsDigit(code) {
				continue
			}
			cands = append(cands, Candidate{
				Code:   code,
				Score:  kw.Weight + shape.Weight + keywordProximityBonus,
				Source: SourceKeywordContext,
			})
		}
	}
	return cands
}

// fullTextCandidates scans the whole text for code shapes, then applies
// contextual penalties to weed out dates, amounts and other look-alikes.
func fullTextCandidates(text string) []Candidate {
	var cands []Candidate
	for _, shape := range codePatterns {
		for _, loc := range shape.Pattern.FindAllStringIndex(text, -1) {
			if !bounded(text, loc[0], loc[1]) {
				continue
			}
			code := text[loc[0]:loc[1]]
			if !containsDigit(code) {
				continue
			}
			before := tailRunes(text[:loc[0]], scoreContextSize)
			after := headRunes(text[loc[1]:], scoreContextSize)
			score := shape.Weight + scoreCandidate(code, before, after)
			if score <= 0 {
				continue
			}
			cands = append(cands, Candidate{Code: code, Score: score, Source: SourceFullText})
		}
	}
	return cands
}

// firstBoundedMatch returns the first match of re in s that is bounded by
// non-alphanumeric characters or string edges.
func firstBoundedMatch(re *regexp.Regexp, s string) (string, bool) {
	for _, loc := range re.FindAllStringIndex(s, -1) {
		if bounded(s, loc[0], loc[1]) {
			return s[loc[0]:loc[1]], true
		}
	}
	return "", false
}

// bounded reports whether s[start:end] is not embedded in a longer
// alphanumeric run, so a code never matches a substring of a bigger number.
func bounded(s string, start, end int) bool {
	if start > 0 && isAlnum(s[start-1]) {
		return false
	}
	if end < len(s) && isAlnum(s[end]) {
		return false
	}
	return true
}

func isAlnum(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func containsDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

// headRunes returns the first n characters of s.
func headRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

// tailRunes returns the last n characters of s.
func tailRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[len(runes)-n:])
}
