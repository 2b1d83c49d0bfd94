package model

import "time"

const ResponseStatusSubmitted = "SUBMITTED"

// FormResponse is one graded attempt. Rows are append-only after the commit,
// except the certificate columns which flip from NULL to a value exactly once
// when the certification worker succeeds.
//
// The unique index over (form_id, respondent_email, attempt_number) is the
// hard guarantee that two racing submissions cannot both take the same
// attempt slot; the redis lock in the orchestrator only narrows the window.
type FormResponse struct {
	BaseModel
	ResponseUUID        string  `gorm:"size:36;uniqueIndex;not null" json:"responseUuid"`
	FormID              uint    `gorm:"not null;uniqueIndex:idx_form_respondent_attempt" json:"formId"`
	RespondentEmail     string  `gorm:"size:255;not null;uniqueIndex:idx_form_respondent_attempt" json:"respondentEmail"`
	AttemptNumber       int     `gorm:"not null;default:1;uniqueIndex:idx_form_respondent_attempt" json:"attemptNumber"`
	RespondentName      string  `gorm:"size:255" json:"respondentName"`
	OdooPartnerID       *int64  `json:"odooPartnerId,omitempty"`
	OdooStudentNames    string  `gorm:"size:255" json:"odooStudentNames,omitempty"`
	OdooStudentSurnames string  `gorm:"size:255" json:"odooStudentSurnames,omitempty"`
	Status              string  `gorm:"size:20;default:'SUBMITTED'" json:"status"`
	TotalScore          float64 `gorm:"default:0" json:"totalScore"`
	MaxPossibleScore    float64 `gorm:"default:0" json:"maxPossibleScore"`
	PercentageScore     int     `gorm:"default:0" json:"percentageScore"`
	Passed              *bool   `json:"passed"`
	TimeSpent           int     `gorm:"default:0" json:"timeSpent"` // seconds, client-reported
	OdooCertificateID   *int64  `json:"odooCertificateId,omitempty"`
	OdooCertificatePDF  *string `gorm:"size:1024" json:"odooCertificatePdf,omitempty"`
	StartedAt           time.Time `json:"startedAt"`
	SubmittedAt         time.Time `gorm:"index" json:"submittedAt"`
}

func (FormResponse) TableName() string {
	return "form_responses"
}

type ResponseAnswer struct {
	BaseModel
	ResponseID   uint    `gorm:"index;not null" json:"responseId"`
	QuestionID   uint    `gorm:"index;not null" json:"questionId"`
	AnswerText   string  `gorm:"type:text" json:"answerText"`
	IsCorrect    *bool   `json:"isCorrect"` // nil = pending manual review
	PointsEarned float64 `gorm:"default:0" json:"pointsEarned"`
}

func (ResponseAnswer) TableName() string {
	return "response_answers"
}
