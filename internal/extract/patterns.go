package extract

import "regexp"

// KeywordPattern recognizes verification-related vocabulary that tends to
// appear right before a code.
type KeywordPattern struct {
	Pattern *regexp.Regexp
	Weight  int
}

// CodePattern recognizes the shape of a candidate code. Weight reflects how
// distinctive the shape is on its own.
type CodePattern struct {
	Pattern *regexp.Regexp
	Weight  int
}

// Keyword vocabulary, English and Chinese. Ordered roughly by specificity;
// only the weight matters for scoring.
var keywordPatterns = []KeywordPattern{
	{regexp.MustCompile(`(?i)verification\s*code`), 12},
	{regexp.MustCompile(`验证码|驗證碼`), 12},
	{regexp.MustCompile(`(?i)one[-\s]?time\s*(?:password|passcode|code|pin)`), 11},
	{regexp.MustCompile(`(?i)\botp\b`), 11},
	{regexp.MustCompile(`校验码|动态密码|动态口令`), 10},
	{regexp.MustCompile(`(?i)security\s*code`), 10},
	{regexp.MustCompile(`(?i)(?:auth(?:entication)?|login|sign[-\s]?in)\s*code`), 9},
	{regexp.MustCompile(`确认码|激活码|认证码|取件码`), 9},
	{regexp.MustCompile(`(?i)\bpin\b`), 8},
	{regexp.MustCompile(`(?i)\bcode\b`), 5},
}

// Code shapes, tried in table order. Matches are additionally required to be
// bounded by non-alphanumeric characters (see bounded) and to contain at
// least one digit.
var codePatterns = []CodePattern{
	{regexp.MustCompile(`[0-9]{6}`), 10},
	{regexp.MustCompile(`[0-9]{4}`), 6},
	{regexp.MustCompile(`[0-9]{5}`), 7},
	{regexp.MustCompile(`[A-Za-z0-9]{6}`), 8},
	{regexp.MustCompile(`[0-9]{7,8}`), 5},
	{regexp.MustCompile(`[A-Za-z0-9]{4,8}`), 3},
}
