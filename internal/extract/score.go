package extract

import (
	"regexp"
	"sort"
	"strings"
)

const currencySymbols = "$¥€£"

var (
	yearShape = regexp.MustCompile(`^20[0-9]{2}$`)
	timeShape = regexp.MustCompile(`^[0-2][0-9][0-5][0-9]$`)
)

// scoreCandidate returns the contextual adjustment for a full-text candidate.
// before and after are the characters immediately around the match. The
// constants are empirically tuned; tests depend on their relative ordering.
func scoreCandidate(code, before, after string) int {
	adj := 0

	if strings.ContainsAny(before, currencySymbols) {
		adj -= 8
	}
	if strings.HasSuffix(before, ".") || strings.HasPrefix(after, ".") {
		adj -= 6
	}
	if yearShape.MatchString(code) {
		adj -= 5
	}
	if timeShape.MatchString(code) {
		adj -= 3
	}
	if allSame(code) {
		adj -= 4
	}
	// Pure letters should already be filtered by the digit requirement;
	// kept as a backstop for shapes that allow all-letter matches.
	if !containsDigit(code) {
		adj -= 10
	}
	if containsDigit(code) && containsLetter(code) {
		adj += 3
	}

	return adj
}

// selectBest picks the highest-scoring candidate. The sort is stable, so ties
// keep generation order and the result is deterministic.
func selectBest(cands []Candidate) (string, bool) {
	if len(cands) == 0 {
		return "", false
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Score > cands[j].Score
	})
	return cands[0].Code, true
}

func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return len(s) > 0
}

func containsLetter(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' {
			return true
		}
	}
	return false
}
