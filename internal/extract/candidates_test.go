package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordContext_FindsCodeAfterKeyword(t *testing.T) {
	cands := keywordContextCandidates("Your verification code is 654321")

	require.NotEmpty(t, cands)
	// First table entry is the most specific keyword, first shape is 6-digit.
	assert.Equal(t, "654321", cands[0].Code)
	assert.Equal(t, SourceKeywordContext, cands[0].Source)
	assert.Equal(t, 12+10+keywordProximityBonus, cands[0].Score)
}

func TestKeywordContext_ChineseKeyword(t *testing.T) {
	cands := keywordContextCandidates("您的验证码是 123456，请勿泄露")

	require.NotEmpty(t, cands)
	assert.Equal(t, "123456", cands[0].Code)
}

func TestKeywordContext_IgnoresTextBeforeKeyword(t *testing.T) {
	// 999999 appears before the keyword and must not be picked up.
	cands := keywordContextCandidates("ref 999999 your pin 4433 thanks")

	require.NotEmpty(t, cands)
	for _, c := range cands {
		assert.Equal(t, "4433", c.Code)
	}
}

func TestKeywordContext_WindowIsLimited(t *testing.T) {
	// The code sits well past the 50-character window.
	text := "code " + strings.Repeat("x ", 30) + "123456"
	assert.Empty(t, keywordContextCandidates(text))
}

func TestKeywordContext_RejectsAllLetterMatches(t *testing.T) {
	assert.Empty(t, keywordContextCandidates("code: ABCDEF"))
}

func TestFullText_BoundedMatchesOnly(t *testing.T) {
	// A 13-digit run contains no bounded 4-8 digit substring.
	assert.Empty(t, fullTextCandidates("id 1234567890123 end"))
}

func TestFullText_PlainSixDigit(t *testing.T) {
	cands := fullTextCandidates("use 481516 anywhere")

	require.NotEmpty(t, cands)
	best, ok := selectBest(cands)
	require.True(t, ok)
	assert.Equal(t, "481516", best)
	for _, c := range cands {
		assert.Equal(t, SourceFullText, c.Source)
	}
}

func TestFullText_RequiresDigit(t *testing.T) {
	assert.Empty(t, fullTextCandidates("please ignore plain words here"))
}

func TestFullText_DiscardsNonPositiveScores(t *testing.T) {
	assert.Empty(t, fullTextCandidates("Invoice #2024 total $45.00 due"))
}

func TestHeadTailRunes(t *testing.T) {
	assert.Equal(t, "abc", headRunes("abcdef", 3))
	assert.Equal(t, "abcdef", headRunes("abcdef", 10))
	assert.Equal(t, "验证码", headRunes("验证码是", 3))
	assert.Equal(t, "def", tailRunes("abcdef", 3))
	assert.Equal(t, "abc", tailRunes("abc", 5))
	assert.Equal(t, "码是", tailRunes("验证码是", 2))
}

func TestPatternTables_WeightOrdering(t *testing.T) {
	// Six digits is the most distinctive shape.
	assert.Equal(t, 10, codePatterns[0].Weight)
	for _, p := range codePatterns[1:] {
		assert.Less(t, p.Weight, codePatterns[0].Weight)
	}
	// Generic "code" is the weakest keyword.
	last := keywordPatterns[len(keywordPatterns)-1]
	for _, p := range keywordPatterns[:len(keywordPatterns)-1] {
		assert.Greater(t, p.Weight, last.Weight)
	}
}
