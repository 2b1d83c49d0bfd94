package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool       { return &b }
func floatPtr(f float64) *float64 { return &f }

func TestAggregateScoreBasic(t *testing.T) {
	graded := []GradedAnswer{
		{QuestionID: 1, IsCorrect: boolPtr(true), PointsEarned: 2},
		{QuestionID: 2, IsCorrect: boolPtr(false), PointsEarned: 0},
		{QuestionID: 3, IsCorrect: boolPtr(true), PointsEarned: 1},
	}
	maxPoints := map[uint]float64{1: 2, 2: 2, 3: 1}

	summary := AggregateScore(graded, maxPoints, floatPtr(55))

	assert.Equal(t, float64(3), summary.TotalScore)
	assert.Equal(t, float64(5), summary.MaxPossibleScore)
	assert.Equal(t, 2, summary.CorrectCount)
	assert.Equal(t, 60, summary.Percentage)
	require.NotNil(t, summary.Passed)
	assert.True(t, *summary.Passed)
}

func TestAggregateScoreRoundsHalfUp(t *testing.T) {
	graded := []GradedAnswer{
		{QuestionID: 1, IsCorrect: boolPtr(true), PointsEarned: 1},
	}
	// 1/3 = 33.33 -> 33, 2/3 = 66.66 -> 67, 1/2 of 5% steps checked below.
	summary := AggregateScore(graded, map[uint]float64{1: 1, 2: 1, 3: 1}, nil)
	assert.Equal(t, 33, summary.Percentage)

	graded = append(graded, GradedAnswer{QuestionID: 2, IsCorrect: boolPtr(true), PointsEarned: 1})
	summary = AggregateScore(graded, map[uint]float64{1: 1, 2: 1, 3: 1}, nil)
	assert.Equal(t, 67, summary.Percentage)

	// Exactly .5 rounds up: 1 of 8 = 12.5 -> 13.
	summary = AggregateScore(
		[]GradedAnswer{{QuestionID: 1, IsCorrect: boolPtr(true), PointsEarned: 1}},
		map[uint]float64{1: 1, 2: 1, 3: 1, 4: 1, 5: 1, 6: 1, 7: 1, 8: 1},
		nil,
	)
	assert.Equal(t, 13, summary.Percentage)
}

func TestAggregateScoreZeroMaxYieldsZeroPercentage(t *testing.T) {
	summary := AggregateScore(nil, map[uint]float64{}, floatPtr(50))
	assert.Equal(t, 0, summary.Percentage)
	assert.Equal(t, float64(0), summary.MaxPossibleScore)
	require.NotNil(t, summary.Passed)
	assert.False(t, *summary.Passed)
}

func TestAggregateScoreNilThresholdMeansNoVerdict(t *testing.T) {
	graded := []GradedAnswer{{QuestionID: 1, IsCorrect: boolPtr(true), PointsEarned: 1}}
	summary := AggregateScore(graded, map[uint]float64{1: 1}, nil)
	assert.Nil(t, summary.Passed)
	assert.Equal(t, 100, summary.Percentage)
}

func TestAggregateScoreExcludesPendingReview(t *testing.T) {
	graded := []GradedAnswer{
		{QuestionID: 1, IsCorrect: boolPtr(true), PointsEarned: 1},
		{QuestionID: 2, IsCorrect: nil, PointsEarned: 0}, // free text, pending
	}
	// Max only counts the auto-gradable question; the pending one was not
	// given a max entry by the caller.
	summary := AggregateScore(graded, map[uint]float64{1: 1}, floatPtr(100))
	assert.Equal(t, 1, summary.CorrectCount)
	assert.Equal(t, 100, summary.Percentage)
	require.NotNil(t, summary.Passed)
	assert.True(t, *summary.Passed)
}

func TestAggregateScoreExactThresholdPasses(t *testing.T) {
	graded := []GradedAnswer{
		{QuestionID: 1, IsCorrect: boolPtr(true), PointsEarned: 1},
		{QuestionID: 2, IsCorrect: boolPtr(false)},
	}
	summary := AggregateScore(graded, map[uint]float64{1: 1, 2: 1}, floatPtr(50))
	assert.Equal(t, 50, summary.Percentage)
	require.NotNil(t, summary.Passed)
	assert.True(t, *summary.Passed)
}
