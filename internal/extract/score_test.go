package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreCandidate(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		before string
		after  string
		want   int
	}{
		{"neutral", "9876", "is ", " tha", 0},
		{"currency before", "9876", "ty $", "", -8},
		{"decimal before", "9876", "0.", "", -6},
		{"decimal after", "9876", "", ".50", -6},
		{"year shape", "2024", "", "", -5 - 3}, // 20NN also matches the time shape
		{"time of day", "1230", "at ", "", -3},
		{"repeated digits", "7777", "", "", -4},
		{"pure letters backstop", "ABCD", "", "", -10},
		{"mixed letters and digits", "A1B2C3", "", "", 3},
		{"currency and decimal", "9876", "$ 0.", ".0", -8 - 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoreCandidate(tt.code, tt.before, tt.after))
		})
	}
}

func TestSelectBest_Empty(t *testing.T) {
	code, ok := selectBest(nil)
	assert.False(t, ok)
	assert.Empty(t, code)
}

func TestSelectBest_HighestScoreWins(t *testing.T) {
	code, ok := selectBest([]Candidate{
		{Code: "1111", Score: 3},
		{Code: "2222", Score: 30},
		{Code: "3333", Score: 12},
	})
	assert.True(t, ok)
	assert.Equal(t, "2222", code)
}

func TestSelectBest_TiesKeepGenerationOrder(t *testing.T) {
	code, ok := selectBest([]Candidate{
		{Code: "first", Score: 10},
		{Code: "second", Score: 10},
	})
	assert.True(t, ok)
	assert.Equal(t, "first", code)
}

func TestAllSame(t *testing.T) {
	assert.True(t, allSame("1111"))
	assert.True(t, allSame("aa"))
	assert.False(t, allSame("1112"))
	assert.False(t, allSame(""))
}
