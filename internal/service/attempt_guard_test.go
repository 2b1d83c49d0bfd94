package service

import (
	"testing"
	"time"

	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/model"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func examForm() *model.Form {
	return &model.Form{
		BaseModel:    model.BaseModel{ID: 1},
		FormType:     model.FormTypeExam,
		PassingScore: floatPtr(55),
		MaxAttempts:  2,
	}
}

func failedResponse(id uint, daysAgo int) model.FormResponse {
	failed := false
	return model.FormResponse{
		BaseModel:        model.BaseModel{ID: id},
		ResponseUUID:     model.GenerateUUID(),
		PercentageScore:  40,
		TotalScore:       2,
		MaxPossibleScore: 5,
		Passed:           &failed,
		SubmittedAt:      time.Now().AddDate(0, 0, -daysAgo),
	}
}

func TestNoAttemptHistory(t *testing.T) {
	status := EvaluateAttemptHistory(examForm(), nil, nil, 5)
	assert.Equal(t, NoAttempt, status.State)
	assert.True(t, status.CanAttempt)
	assert.Zero(t, status.AttemptsUsed)
	assert.Equal(t, 2, status.MaxAttempts)
	assert.Nil(t, status.LastResult)
}

func TestOneFailureAllowsRetry(t *testing.T) {
	history := []model.FormResponse{failedResponse(10, 1)}
	tallies := map[uint]repository.AnswerTally{
		10: {ResponseID: 10, Correct: 2, Total: 5},
	}

	status := EvaluateAttemptHistory(examForm(), history, tallies, 5)
	assert.Equal(t, AttemptedFail, status.State)
	assert.True(t, status.CanAttempt)
	assert.Equal(t, 1, status.AttemptsUsed)
	require.NotNil(t, status.LastResult)
	assert.Equal(t, 40, status.LastResult.Score)
	assert.Equal(t, 2, status.LastResult.CorrectCount)
	assert.Equal(t, 5, status.LastResult.TotalQuestions)
	assert.False(t, status.LastResult.Passed)
}

func TestTwoFailuresAreTerminal(t *testing.T) {
	history := []model.FormResponse{failedResponse(11, 1), failedResponse(10, 2)}

	status := EvaluateAttemptHistory(examForm(), history, nil, 5)
	assert.Equal(t, AttemptedFailFinal, status.State)
	assert.False(t, status.CanAttempt)
	assert.Equal(t, 2, status.AttemptsUsed)
	require.NotNil(t, status.LastResult)
	// Most recent attempt is what gets surfaced.
	assert.Equal(t, history[0].ResponseUUID, status.LastResult.ResponseUUID)
}

func TestPassIsTerminalEvenWithAttemptsLeft(t *testing.T) {
	passed := true
	certID := int64(777)
	pdf := "https://example.com/cert.pdf"
	history := []model.FormResponse{
		{
			BaseModel:          model.BaseModel{ID: 20},
			ResponseUUID:       "pass-uuid",
			PercentageScore:    80,
			TotalScore:         4,
			MaxPossibleScore:   5,
			Passed:             &passed,
			OdooCertificateID:  &certID,
			OdooCertificatePDF: &pdf,
			SubmittedAt:        time.Now(),
		},
	}

	status := EvaluateAttemptHistory(examForm(), history, nil, 5)
	assert.Equal(t, AttemptedPass, status.State)
	assert.False(t, status.CanAttempt)
	require.NotNil(t, status.LastResult)
	assert.Equal(t, "pass-uuid", status.LastResult.ResponseUUID)
	assert.True(t, status.LastResult.Passed)
	require.NotNil(t, status.LastResult.CertificateID)
	assert.Equal(t, int64(777), *status.LastResult.CertificateID)
}

func TestPassBuriedInHistoryStillTerminal(t *testing.T) {
	passed := true
	history := []model.FormResponse{
		failedResponse(31, 1),
		{
			BaseModel:        model.BaseModel{ID: 30},
			ResponseUUID:     "old-pass",
			PercentageScore:  90,
			TotalScore:       9,
			MaxPossibleScore: 10,
			Passed:           &passed,
			SubmittedAt:      time.Now().AddDate(0, 0, -5),
		},
	}

	status := EvaluateAttemptHistory(examForm(), history, nil, 10)
	assert.Equal(t, AttemptedPass, status.State)
	assert.False(t, status.CanAttempt)
	require.NotNil(t, status.LastResult)
	assert.Equal(t, "old-pass", status.LastResult.ResponseUUID)
}

func TestCustomMaxAttempts(t *testing.T) {
	form := examForm()
	form.MaxAttempts = 3
	history := []model.FormResponse{failedResponse(41, 1), failedResponse(40, 2)}

	status := EvaluateAttemptHistory(form, history, nil, 5)
	assert.Equal(t, AttemptedFail, status.State)
	assert.True(t, status.CanAttempt)
	assert.Equal(t, 3, status.MaxAttempts)
}

func TestZeroMaxAttemptsUsesDefault(t *testing.T) {
	form := examForm()
	form.MaxAttempts = 0

	status := EvaluateAttemptHistory(form, nil, nil, 5)
	assert.Equal(t, 2, status.MaxAttempts)
}

func TestLegacyCountFallbackFromScores(t *testing.T) {
	// No answer rows persisted: counts reconstructed from aggregates.
	history := []model.FormResponse{failedResponse(50, 1)}

	status := EvaluateAttemptHistory(examForm(), history, map[uint]repository.AnswerTally{}, 5)
	require.NotNil(t, status.LastResult)
	// 2 of 5 points, 1 point per question -> 2 correct of 5.
	assert.Equal(t, 2, status.LastResult.CorrectCount)
	assert.Equal(t, 5, status.LastResult.TotalQuestions)
}

func TestLegacyCountFallbackUsesBankConfig(t *testing.T) {
	form := examForm()
	form.UseQuestionBank = true
	form.QuestionsToShow = intPtr(4)

	resp := failedResponse(60, 1)
	resp.MaxPossibleScore = 4
	resp.TotalScore = 1

	status := EvaluateAttemptHistory(form, []model.FormResponse{resp}, nil, 10)
	require.NotNil(t, status.LastResult)
	assert.Equal(t, 4, status.LastResult.TotalQuestions)
	assert.Equal(t, 1, status.LastResult.CorrectCount)
}

func TestLegacyCountFallbackFromPercentageWhenNoMax(t *testing.T) {
	resp := failedResponse(70, 1)
	resp.MaxPossibleScore = 0
	resp.TotalScore = 0
	resp.PercentageScore = 60

	status := EvaluateAttemptHistory(examForm(), []model.FormResponse{resp}, nil, 5)
	require.NotNil(t, status.LastResult)
	// 60% of 5 questions -> 3.
	assert.Equal(t, 3, status.LastResult.CorrectCount)
	assert.Equal(t, 5, status.LastResult.TotalQuestions)
}
