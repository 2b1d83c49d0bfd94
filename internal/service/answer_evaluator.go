package service

import (
	"strings"

	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/model"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/util"
)

const (
	noAnswerText     = "Sin respuesta"
	manualReviewText = "(Requiere revisión manual)"
)

// RawAnswer is one submitted answer as it arrives off the wire. Value is a
// scalar, list or boolean depending on the widget.
type RawAnswer struct {
	QuestionID uint        `json:"question_id" binding:"required"`
	Value      interface{} `json:"answer_value"`
}

// GradedAnswer is the evaluator's verdict for one question. IsCorrect is
// nil for answer types with no automated correctness (pending manual
// review); those never contribute to automatic pass/fail scoring.
type GradedAnswer struct {
	QuestionID   uint
	AnswerText   string
	CorrectText  string
	IsCorrect    *bool
	PointsEarned float64
	MaxPoints    float64
}

/// QuestionMaxPoints resolves the worth of a question once: the configured
// point value, else the sum of correct-option point values, else 1. Zero
// means unset and falls through; a negative value is kept so the aggregate
// surfaces the misconfiguration instead of silently rewriting it.
func QuestionMaxPoints(q *model.Question) float64 {
	if q.Points != 0 {
		return q.Points
	}

	var sum float64
	for _, opt := range q.Options {
		if opt.IsCorrect && opt.IsActive {
			if opt.Points != 0 {
				sum += opt.Points
			} else {
				sum++
			}
		}
	}
	if sum != 0 {
		return sum
	}
	return 1
}

// EvaluateAnswer grades one raw answer against its question. Pure function:
// (question + option correctness + submitted value) -> verdict + points.
func EvaluateAnswer(q *model.Question, raw RawAnswer) GradedAnswer {
	maxPoints := QuestionMaxPoints(q)
	options := activeOptions(q)
	correct := correctOptions(options)

	graded := GradedAnswer{
		QuestionID:  q.ID,
		CorrectText: joinOptionTexts(correct),
		MaxPoints:   maxPoints,
	}

	switch q.Type() {
	case model.SingleChoice:
		evaluateSingleChoice(&graded, options, raw.Value, maxPoints)
	case model.MultiChoice:
		evaluateMultiChoice(&graded, options, correct, raw.Value, maxPoints)
	case model.Boolean:
		evaluateBoolean(&graded, correct, raw.Value, maxPoints)
	case model.Scale:
		graded.AnswerText = util.Stringify(raw.Value)
		if graded.AnswerText == "" {
			graded.AnswerText = "0"
		}
		graded.IsCorrect = nil
		graded.CorrectText = ""
	default: // model.FreeText and anything unrecognized
		graded.AnswerText = util.Stringify(raw.Value)
		graded.IsCorrect = nil
		graded.CorrectText = manualReviewText
	}

	return graded
}

func evaluateSingleChoice(graded *GradedAnswer, options []model.QuestionOption, value interface{}, maxPoints float64) {
	wrong := false
	graded.IsCorrect = &wrong

	selectedID, ok := util.OptionID(value)
	if !ok {
		graded.AnswerText = fallbackText(value)
		return
	}

	for i := range options {
		if int64(options[i].ID) != selectedID {
			continue
		}
		graded.AnswerText = options[i].OptionText
		if options[i].IsCorrect {
			right := true
			graded.IsCorrect = &right
			graded.PointsEarned = maxPoints
		}
		return
	}

	// Selection did not match any stored option; keep the raw value so the
	// record shows what the client sent.
	graded.AnswerText = fallbackText(value)
}

func evaluateMultiChoice(graded *GradedAnswer, options, correct []model.QuestionOption, value interface{}, maxPoints float64) {
	selectedIDs := util.OptionIDs(value)

	selectedSet := make(map[int64]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		selectedSet[id] = true
	}

	var selectedTexts []string
	for i := range options {
		if selectedSet[int64(options[i].ID)] {
			selectedTexts = append(selectedTexts, options[i].OptionText)
		}
	}
	graded.AnswerText = strings.Join(selectedTexts, ", ")
	if graded.AnswerText == "" {
		graded.AnswerText = noAnswerText
	}

	// All-or-nothing: the selected set must equal the correct set, no
	// omissions and no extras. Partial credit is not awarded.
	isCorrect := len(selectedSet) > 0 && len(selectedSet) == len(correct)
	if isCorrect {
		for i := range correct {
			if !selectedSet[int64(correct[i].ID)] {
				isCorrect = false
				break
			}
		}
	}

	graded.IsCorrect = &isCorrect
	if isCorrect {
		graded.PointsEarned = maxPoints
	}
}

func evaluateBoolean(graded *GradedAnswer, correct []model.QuestionOption, value interface{}, maxPoints float64) {
	wrong := false
	graded.IsCorrect = &wrong

	userBool, answered := util.BoolValue(value)
	if userBool {
		graded.AnswerText = "Verdadero"
	} else {
		graded.AnswerText = "Falso"
	}

	if !answered || len(correct) == 0 {
		return
	}

	correctBool, ok := util.BoolValue(correct[0].OptionText)
	if !ok {
		// The correct option may store a literal boolean rendering.
		correctBool = strings.EqualFold(strings.TrimSpace(correct[0].OptionText), "1")
	}

	if userBool == correctBool {
		right := true
		graded.IsCorrect = &right
		graded.PointsEarned = maxPoints
	}
}

func activeOptions(q *model.Question) []model.QuestionOption {
	options := make([]model.QuestionOption, 0, len(q.Options))
	for _, opt := range q.Options {
		if opt.IsActive {
			options = append(options, opt)
		}
	}
	return options
}

func correctOptions(options []model.QuestionOption) []model.QuestionOption {
	var correct []model.QuestionOption
	for _, opt := range options {
		if opt.IsCorrect {
			correct = append(correct, opt)
		}
	}
	return correct
}

func joinOptionTexts(options []model.QuestionOption) string {
	texts := make([]string, 0, len(options))
	for _, opt := range options {
		texts = append(texts, opt.OptionText)
	}
	return strings.Join(texts, ", ")
}

func fallbackText(value interface{}) string {
	text := util.Stringify(value)
	if text == "" {
		return noAnswerText
	}
	return text
}
