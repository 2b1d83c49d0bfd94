package service

import (
	"time"

	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/model"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/repository"
)

const defaultMaxAttempts = 2

type AttemptState string

const (
	NoAttempt          AttemptState = "NO_ATTEMPT"
	AttemptedFail      AttemptState = "ATTEMPTED_FAIL"
	AttemptedFailFinal AttemptState = "ATTEMPTED_FAIL_FINAL"
	AttemptedPass      AttemptState = "ATTEMPTED_PASS"
)

// PreviousResult is what gets surfaced to a respondent who is denied a new
// attempt, or shown alongside the retry prompt.
type PreviousResult struct {
	ResponseUUID   string     `json:"response_uuid"`
	Score          int        `json:"score"`
	Passed         bool       `json:"passed"`
	CorrectCount   int        `json:"correct_count"`
	TotalQuestions int        `json:"total_questions"`
	TotalScore     float64    `json:"total_score"`
	MaxScore       float64    `json:"max_score"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	CertificateID  *int64     `json:"certificate_id,omitempty"`
	CertificatePDF *string    `json:"certificate_pdf,omitempty"`
}

type AttemptStatus struct {
	State        AttemptState    `json:"state"`
	CanAttempt   bool            `json:"can_attempt"`
	AttemptsUsed int             `json:"attempts_used"`
	MaxAttempts  int             `json:"max_attempts"`
	LastResult   *PreviousResult `json:"last_result,omitempty"`
}

// EvaluateAttemptHistory runs the per-(form, respondent) state machine:
//
//	NO_ATTEMPT -> ATTEMPTED_FAIL -> ATTEMPTED_FAIL_FINAL | ATTEMPTED_PASS
//
// Any pass is terminal and surfaces the prior certificate/score; hitting the
// attempt cap without passing is terminal as well. history must be ordered
// by submitted_at descending. tallies carries correct/total counts from the
// per-answer rows for responses that have them; totalQuestions is the
// count of active questions in the bank, used by the legacy fallback.
func EvaluateAttemptHistory(form *model.Form, history []model.FormResponse, tallies map[uint]repository.AnswerTally, totalQuestions int) AttemptStatus {
	maxAttempts := form.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	status := AttemptStatus{
		State:        NoAttempt,
		CanAttempt:   true,
		AttemptsUsed: len(history),
		MaxAttempts:  maxAttempts,
	}

	if len(history) == 0 {
		return status
	}

	for i := range history {
		resp := &history[i]
		if resp.Passed != nil && *resp.Passed {
			status.State = AttemptedPass
			status.CanAttempt = false
			status.LastResult = buildPreviousResult(form, resp, tallies, totalQuestions)
			return status
		}
	}

	status.LastResult = buildPreviousResult(form, &history[0], tallies, totalQuestions)

	if len(history) >= maxAttempts {
		status.State = AttemptedFailFinal
		status.CanAttempt = false
		return status
	}

	status.State = AttemptedFail
	return status
}

func buildPreviousResult(form *model.Form, resp *model.FormResponse, tallies map[uint]repository.AnswerTally, totalQuestions int) *PreviousResult {
	result := &PreviousResult{
		ResponseUUID:   resp.ResponseUUID,
		Score:          resp.PercentageScore,
		Passed:         resp.Passed != nil && *resp.Passed,
		TotalScore:     resp.TotalScore,
		MaxScore:       resp.MaxPossibleScore,
		SubmittedAt:    resp.SubmittedAt,
		CertificateID:  resp.OdooCertificateID,
		CertificatePDF: resp.OdooCertificatePDF,
	}

	result.CorrectCount, result.TotalQuestions = deriveCounts(form, resp, tallies, totalQuestions)
	return result
}

// deriveCounts prefers the persisted per-answer rows. An older schema
// generation did not always write them, so historical responses fall back
// to reconstructing the counts from the aggregates and the bank
// configuration. New responses always persist rows; the fallback is
// legacy compatibility only.
func deriveCounts(form *model.Form, resp *model.FormResponse, tallies map[uint]repository.AnswerTally, totalQuestions int) (int, int) {
	if tally, ok := tallies[resp.ID]; ok && tally.Total > 0 {
		return tally.Correct, tally.Total
	}

	total := totalQuestions
	if form.UseQuestionBank && form.QuestionsToShow != nil && *form.QuestionsToShow < total {
		total = *form.QuestionsToShow
	}
	if total <= 0 {
		return 0, 0
	}

	if resp.MaxPossibleScore > 0 {
		perQuestion := resp.MaxPossibleScore / float64(total)
		if perQuestion > 0 {
			return roundHalfUp(resp.TotalScore / perQuestion), total
		}
	}

	return roundHalfUp(float64(resp.PercentageScore) / 100 * float64(total)), total
}
