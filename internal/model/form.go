package model

import (
	"strings"
	"time"
)

const (
	FormTypeExam   = "EXAM"
	FormTypeSurvey = "SURVEY"
)

// Form is read-only input during grading; authoring lives in a separate
// subsystem and writes these rows directly.
type Form struct {
	BaseModel
	UUID                   string     `gorm:"size:36;uniqueIndex;not null" json:"uuid"`
	Title                  string     `gorm:"size:255;not null" json:"title"`
	Description            string     `gorm:"type:text" json:"description"`
	FormType               string     `gorm:"size:20;default:'SURVEY'" json:"formType"`
	PassingScore           *float64   `json:"passingScore"` // percentage threshold; nil = ungraded survey
	ShowScoreAfterSubmit   bool       `gorm:"default:false" json:"showScoreAfterSubmit"`
	ShowCorrectAnswers     bool       `gorm:"default:false" json:"showCorrectAnswers"`
	ShuffleQuestions       bool       `gorm:"default:false" json:"shuffleQuestions"`
	UseQuestionBank        bool       `gorm:"default:false" json:"useQuestionBank"`
	QuestionsToShow        *int       `json:"questionsToShow"`
	MaxAttempts            int        `gorm:"default:2" json:"maxAttempts"`
	RequiresOdooValidation bool       `gorm:"default:false" json:"requiresOdooValidation"`
	OdooCourseName         string     `gorm:"size:255" json:"odooCourseName"`
	TimeLimitMinutes       *int       `json:"timeLimitMinutes"`
	AvailableFrom          *time.Time `json:"availableFrom"`
	AvailableUntil         *time.Time `json:"availableUntil"`
	IsActive               bool       `gorm:"default:true" json:"isActive"`
	Questions              []Question `gorm:"foreignKey:FormID" json:"questions,omitempty"`
}

func (Form) TableName() string {
	return "forms"
}

func (f *Form) IsExam() bool {
	return f.FormType == FormTypeExam
}

// AvailableAt reports whether the form accepts submissions at t.
func (f *Form) AvailableAt(t time.Time) bool {
	if f.AvailableFrom != nil && t.Before(*f.AvailableFrom) {
		return false
	}
	if f.AvailableUntil != nil && t.After(*f.AvailableUntil) {
		return false
	}
	return true
}

// QuestionType is the canonical variant an evaluator dispatches on. The
// stored type codes carry legacy aliases (RADIO, SELECT, CHECKBOX, ...) that
// all collapse onto one of these.
type QuestionType string

const (
	SingleChoice QuestionType = "SINGLE_CHOICE"
	MultiChoice  QuestionType = "MULTI_CHOICE"
	Boolean      QuestionType = "TRUE_FALSE"
	Scale        QuestionType = "SCALE"
	FreeText     QuestionType = "FREE_TEXT"
)

type Question struct {
	BaseModel
	FormID       uint             `gorm:"index;not null" json:"formId"`
	QuestionText string           `gorm:"type:text;not null" json:"questionText"`
	TypeCode     string           `gorm:"size:50;not null" json:"typeCode"`
	Points       float64          `gorm:"default:0" json:"points"`
	DisplayOrder int              `gorm:"default:0" json:"displayOrder"`
	IsRequired   bool             `gorm:"default:false" json:"isRequired"`
	IsActive     bool             `gorm:"default:true" json:"isActive"`
	Options      []QuestionOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// Type resolves the stored code, legacy aliases included, to its canonical
// variant. Unknown codes fall back to FREE_TEXT (manual review).
func (q *Question) Type() QuestionType {
	switch strings.ToUpper(strings.TrimSpace(q.TypeCode)) {
	case "SINGLE_CHOICE", "RADIO", "SELECT", "DROPDOWN":
		return SingleChoice
	case "MULTI_CHOICE", "MULTIPLE_CHOICE", "CHECKBOX":
		return MultiChoice
	case "TRUE_FALSE", "BOOLEAN":
		return Boolean
	case "SCALE", "RATING":
		return Scale
	default:
		return FreeText
	}
}

type QuestionOption struct {
	BaseModel
	QuestionID   uint    `gorm:"index;not null" json:"questionId"`
	OptionText   string  `gorm:"type:text;not null" json:"optionText"`
	IsCorrect    bool    `gorm:"default:false" json:"isCorrect"`
	Points       float64 `gorm:"default:0" json:"points"`
	DisplayOrder int     `gorm:"default:0" json:"displayOrder"`
	IsActive     bool    `gorm:"default:true" json:"isActive"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}
