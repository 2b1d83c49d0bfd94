package service

import "math"

// ScoreSummary folds per-question verdicts into the attempt's aggregate.
type ScoreSummary struct {
	TotalScore       float64
	MaxPossibleScore float64
	CorrectCount     int
	Percentage       int
	Passed           *bool
}

// AggregateScore totals the graded answers against the max points of every
// question the respondent was actually shown, not the exam's full bank.
// Percentage is rounded half-up; a zero max yields 0 rather than dividing.
// Passed is nil when the form configures no threshold (ungraded surveys).
// Answers pending manual review carry nil correctness and are excluded from
// automatic scoring entirely.
func AggregateScore(graded []GradedAnswer, questionMaxPoints map[uint]float64, passingScore *float64) ScoreSummary {
	var summary ScoreSummary

	for _, max := range questionMaxPoints {
		summary.MaxPossibleScore += max
	}

	for _, g := range graded {
		if g.IsCorrect != nil && *g.IsCorrect {
			summary.CorrectCount++
			summary.TotalScore += g.PointsEarned
		}
	}

	if summary.MaxPossibleScore > 0 {
		summary.Percentage = roundHalfUp(summary.TotalScore / summary.MaxPossibleScore * 100)
	}

	if passingScore != nil {
		passed := float64(summary.Percentage) >= *passingScore
		summary.Passed = &passed
	}

	return summary
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
