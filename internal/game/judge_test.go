package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Similarity is the Sørensen–Dice coefficient over character bigrams; any
// deterministic, symmetric measure normalized to [0,1] satisfies the judge,
// and Dice is what these expectations are calibrated against.

func TestSimilarityBasics(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("Paris", "paris"), "case-insensitive exact match")
	assert.Equal(t, 1.0, Similarity("  new   york ", "new york"), "whitespace collapsed")
	assert.Equal(t, 0.0, Similarity("paris", "tokyo"))
	assert.Equal(t, 0.0, Similarity("", "paris"))

	a := Similarity("night", "nacht")
	b := Similarity("nacht", "night")
	assert.InDelta(t, a, b, 1e-12, "symmetric")
	assert.Greater(t, a, 0.0)
	assert.Less(t, a, 1.0)
}

func TestThresholdShape(t *testing.T) {
	judge := Judge{}

	short := judge.Threshold("ru")
	medium := judge.Threshold("jupiter")
	long := judge.Threshold("automated teller machine")

	// Strictly inside (0, 0.95) and monotonically increasing in length:
	// longer canonical answers demand closer matches.
	for _, th := range []float64{short, medium, long} {
		assert.Greater(t, th, 0.0)
		assert.Less(t, th, 0.95)
	}
	assert.Less(t, short, medium)
	assert.Less(t, medium, long)
}

func TestThresholdEmptyAnswerPanics(t *testing.T) {
	assert.Panics(t, func() { Judge{}.Threshold("") })
}

func TestJudgeSinglePart(t *testing.T) {
	judge := Judge{}
	answers := []string{"automated teller machine"}

	assert.True(t, judge.Correct(answers, 1, []string{"automated teller machine"}))
	// Minor typo still above the length-adaptive threshold.
	assert.True(t, judge.Correct(answers, 1, []string{"automate teller machine"}))
	assert.False(t, judge.Correct(answers, 1, []string{"cash register"}))
}

func TestJudgeSinglePartAnyAnswerMatches(t *testing.T) {
	judge := Judge{}
	answers := []string{"william shakespeare", "shakespeare"}

	assert.True(t, judge.Correct(answers, 1, []string{"shakespeare"}))
	assert.True(t, judge.Correct(answers, 1, []string{"william shakespeare"}))
}

func TestJudgeMultiPartOrderIndependent(t *testing.T) {
	judge := Judge{}
	answers := []string{"paris", "france"}

	assert.True(t, judge.Correct(answers, 2, []string{"France", "Paris"}),
		"reverse submission order must still satisfy a multi-part question")
	assert.True(t, judge.Correct(answers, 2, []string{"paris", "france"}))
}

func TestJudgeMultiPartMissingOneFails(t *testing.T) {
	judge := Judge{}
	answers := []string{"paris", "france"}

	assert.False(t, judge.Correct(answers, 2, []string{"paris"}))
	assert.False(t, judge.Correct(answers, 2, []string{"paris", "germany"}))
}

func TestJudgeNoDoubleCounting(t *testing.T) {
	judge := Judge{}
	// Both expected answers are similar to "washington"; submitting it twice
	// must not satisfy both parts, because each pool entry matches once.
	answers := []string{"washington", "washington dc"}

	require.True(t, judge.Correct(answers, 2, []string{"washington", "washington dc"}))
	assert.False(t, judge.Correct(answers, 2, []string{"washington", "washington"}),
		"one expected answer must not satisfy two submissions")
}

func TestJudgeDoesNotMutateAnswers(t *testing.T) {
	judge := Judge{}
	answers := []string{"paris", "france"}

	judge.Correct(answers, 2, []string{"france", "paris"})
	assert.Equal(t, []string{"paris", "france"}, answers)
}

func TestJudgeNoAnswersPanics(t *testing.T) {
	assert.Panics(t, func() { Judge{}.Correct(nil, 1, []string{"x"}) })
}
