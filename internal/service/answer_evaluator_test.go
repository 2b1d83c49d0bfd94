package service

import (
	"testing"

	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func option(id uint, text string, correct bool, points float64) model.QuestionOption {
	return model.QuestionOption{
		BaseModel: model.BaseModel{ID: id},
		OptionText: text,
		IsCorrect:  correct,
		Points:     points,
		IsActive:   true,
	}
}

func singleChoiceQuestion() *model.Question {
	return &model.Question{
		BaseModel: model.BaseModel{ID: 10},
		TypeCode:  "SINGLE_CHOICE",
		Points:    2,
		Options: []model.QuestionOption{
			option(101, "Lima", true, 0),
			option(102, "Cusco", false, 0),
			option(103, "Arequipa", false, 0),
		},
	}
}

func TestEvaluateSingleChoice(t *testing.T) {
	q := singleChoiceQuestion()

	tests := []struct {
		name        string
		value       interface{}
		wantCorrect bool
		wantPoints  float64
		wantText    string
	}{
		{"correct option as number", float64(101), true, 2, "Lima"},
		{"correct option as string id", "101", true, 2, "Lima"},
		{"correct option wrapped in array", []interface{}{float64(101)}, true, 2, "Lima"},
		{"wrong option", float64(102), false, 0, "Cusco"},
		{"unknown option id", float64(999), false, 0, "999"},
		{"nil answer", nil, false, 0, "Sin respuesta"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			graded := EvaluateAnswer(q, RawAnswer{QuestionID: q.ID, Value: tt.value})
			require.NotNil(t, graded.IsCorrect)
			assert.Equal(t, tt.wantCorrect, *graded.IsCorrect)
			assert.Equal(t, tt.wantPoints, graded.PointsEarned)
			assert.Equal(t, tt.wantText, graded.AnswerText)
			assert.Equal(t, float64(2), graded.MaxPoints)
		})
	}
}

func TestEvaluateSingleChoiceLegacyTypeCodes(t *testing.T) {
	for _, code := range []string{"RADIO", "SELECT", "DROPDOWN"} {
		q := singleChoiceQuestion()
		q.TypeCode = code
		graded := EvaluateAnswer(q, RawAnswer{QuestionID: q.ID, Value: float64(101)})
		require.NotNil(t, graded.IsCorrect, code)
		assert.True(t, *graded.IsCorrect, code)
	}
}

func TestEvaluateMultiChoiceAllOrNothing(t *testing.T) {
	q := &model.Question{
		BaseModel: model.BaseModel{ID: 20},
		TypeCode:  "MULTI_CHOICE",
		Points:    3,
		Options: []model.QuestionOption{
			option(201, "Go", true, 0),
			option(202, "Rust", true, 0),
			option(203, "COBOL", false, 0),
		},
	}

	tests := []struct {
		name        string
		value       interface{}
		wantCorrect bool
	}{
		{"exact correct set", []interface{}{float64(201), float64(202)}, true},
		{"order does not matter", []interface{}{float64(202), float64(201)}, true},
		{"subset is wrong", []interface{}{float64(201)}, false},
		{"superset is wrong", []interface{}{float64(201), float64(202), float64(203)}, false},
		{"overlap is wrong", []interface{}{float64(201), float64(203)}, false},
		{"empty selection is wrong", []interface{}{}, false},
		{"nil is wrong", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			graded := EvaluateAnswer(q, RawAnswer{QuestionID: q.ID, Value: tt.value})
			require.NotNil(t, graded.IsCorrect)
			assert.Equal(t, tt.wantCorrect, *graded.IsCorrect)
			if tt.wantCorrect {
				assert.Equal(t, float64(3), graded.PointsEarned)
			} else {
				assert.Zero(t, graded.PointsEarned)
			}
		})
	}
}

func TestEvaluateBoolean(t *testing.T) {
	q := &model.Question{
		BaseModel: model.BaseModel{ID: 30},
		TypeCode:  "TRUE_FALSE",
		Points:    1,
		Options: []model.QuestionOption{
			option(301, "Verdadero", true, 0),
			option(302, "Falso", false, 0),
		},
	}

	tests := []struct {
		name        string
		value       interface{}
		wantCorrect bool
		wantText    string
	}{
		{"literal true", true, true, "Verdadero"},
		{"spanish text", "verdadero", true, "Verdadero"},
		{"single letter", "v", true, "Verdadero"},
		{"english text", "true", true, "Verdadero"},
		{"literal false", false, false, "Falso"},
		{"spanish false", "falso", false, "Falso"},
		{"unanswerable value", 42, false, "Falso"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			graded := EvaluateAnswer(q, RawAnswer{QuestionID: q.ID, Value: tt.value})
			require.NotNil(t, graded.IsCorrect)
			assert.Equal(t, tt.wantCorrect, *graded.IsCorrect)
			assert.Equal(t, tt.wantText, graded.AnswerText)
		})
	}
}

func TestEvaluateBooleanCorrectAnswerIsFalse(t *testing.T) {
	q := &model.Question{
		BaseModel: model.BaseModel{ID: 31},
		TypeCode:  "BOOLEAN",
		Points:    1,
		Options: []model.QuestionOption{
			option(311, "Verdadero", false, 0),
			option(312, "Falso", true, 0),
		},
	}

	graded := EvaluateAnswer(q, RawAnswer{QuestionID: q.ID, Value: false})
	require.NotNil(t, graded.IsCorrect)
	assert.True(t, *graded.IsCorrect)

	graded = EvaluateAnswer(q, RawAnswer{QuestionID: q.ID, Value: true})
	require.NotNil(t, graded.IsCorrect)
	assert.False(t, *graded.IsCorrect)
}

func TestEvaluateScaleAndFreeTextHaveNoVerdict(t *testing.T) {
	scale := &model.Question{BaseModel: model.BaseModel{ID: 40}, TypeCode: "SCALE"}
	graded := EvaluateAnswer(scale, RawAnswer{QuestionID: 40, Value: float64(4)})
	assert.Nil(t, graded.IsCorrect)
	assert.Equal(t, "4", graded.AnswerText)
	assert.Empty(t, graded.CorrectText)

	scale = &model.Question{BaseModel: model.BaseModel{ID: 41}, TypeCode: "RATING"}
	graded = EvaluateAnswer(scale, RawAnswer{QuestionID: 41, Value: nil})
	assert.Nil(t, graded.IsCorrect)
	assert.Equal(t, "0", graded.AnswerText)

	free := &model.Question{BaseModel: model.BaseModel{ID: 42}, TypeCode: "FREE_TEXT"}
	graded = EvaluateAnswer(free, RawAnswer{QuestionID: 42, Value: "mi opinión"})
	assert.Nil(t, graded.IsCorrect)
	assert.Equal(t, "mi opinión", graded.AnswerText)
	assert.Equal(t, "(Requiere revisión manual)", graded.CorrectText)
}

func TestUnknownTypeCodeFallsBackToManualReview(t *testing.T) {
	q := &model.Question{BaseModel: model.BaseModel{ID: 50}, TypeCode: "HOLOGRAM"}
	graded := EvaluateAnswer(q, RawAnswer{QuestionID: 50, Value: "algo"})
	assert.Nil(t, graded.IsCorrect)
}

func TestQuestionMaxPointsFallbackChain(t *testing.T) {
	// Explicit question points win.
	q := &model.Question{TypeCode: "SINGLE_CHOICE", Points: 5,
		Options: []model.QuestionOption{option(1, "a", true, 3)}}
	assert.Equal(t, float64(5), QuestionMaxPoints(q))

	// No question points: sum of correct option points.
	q = &model.Question{TypeCode: "MULTI_CHOICE",
		Options: []model.QuestionOption{
			option(1, "a", true, 2),
			option(2, "b", true, 3),
			option(3, "c", false, 7),
		}}
	assert.Equal(t, float64(5), QuestionMaxPoints(q))

	// Correct options with zero points count as 1 each.
	q = &model.Question{TypeCode: "MULTI_CHOICE",
		Options: []model.QuestionOption{
			option(1, "a", true, 0),
			option(2, "b", true, 0),
		}}
	assert.Equal(t, float64(2), QuestionMaxPoints(q))

	// Nothing configured at all: worth 1.
	q = &model.Question{TypeCode: "FREE_TEXT"}
	assert.Equal(t, float64(1), QuestionMaxPoints(q))
}

func TestEvaluateIgnoresInactiveOptions(t *testing.T) {
	inactive := option(104, "Trujillo", true, 0)
	inactive.IsActive = false

	q := &model.Question{
		BaseModel: model.BaseModel{ID: 60},
		TypeCode:  "SINGLE_CHOICE",
		Points:    1,
		Options: []model.QuestionOption{
			option(101, "Lima", true, 0),
			inactive,
		},
	}

	graded := EvaluateAnswer(q, RawAnswer{QuestionID: 60, Value: float64(104)})
	require.NotNil(t, graded.IsCorrect)
	assert.False(t, *graded.IsCorrect)
	assert.Equal(t, "Lima", graded.CorrectText)
}
