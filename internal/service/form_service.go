package service

import (
	"errors"
	"time"

	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/repository"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/util"

	"gorm.io/gorm"
)

type FormService struct {
	Forms    *repository.FormRepository
	Selector *QuestionSelector
}

func NewFormService(forms *repository.FormRepository, selector *QuestionSelector) *FormService {
	return &FormService{Forms: forms, Selector: selector}
}

// PublicOption is an answer choice as the respondent sees it. Correctness
// and point values never leave the server.
type PublicOption struct {
	ID           uint   `json:"id"`
	OptionText   string `json:"option_text"`
	DisplayOrder int    `json:"display_order"`
}

type PublicQuestion struct {
	ID           uint           `json:"id"`
	QuestionText string         `json:"question_text"`
	TypeCode     string         `json:"type_code"`
	Points       float64        `json:"points"`
	DisplayOrder int            `json:"display_order"`
	IsRequired   bool           `json:"is_required"`
	Options      []PublicOption `json:"options,omitempty"`
}

type PublicForm struct {
	UUID                   string           `json:"uuid"`
	Title                  string           `json:"title"`
	Description            string           `json:"description"`
	FormType               string           `json:"form_type"`
	PassingScore           *float64         `json:"passing_score,omitempty"`
	TimeLimitMinutes       *int             `json:"time_limit_minutes,omitempty"`
	MaxAttempts            int              `json:"max_attempts"`
	RequiresOdooValidation bool             `json:"requires_odoo_validation"`
	TotalQuestions         int              `json:"total_questions"`
	MaxPossibleScore       float64          `json:"max_possible_score"`
	Questions              []PublicQuestion `json:"questions"`
}

// GetPublicForm is what a respondent loads before answering. The selector
// runs here, so a bank-sampled exam hands each visitor their subset; the
// client echoes those question ids back on submit.
func (s *FormService) GetPublicForm(uuid string) (*PublicForm, error) {
	form, err := s.Forms.FindActiveByUUID(uuid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrFormNotFound
		}
		return nil, err
	}

	if !form.AvailableAt(time.Now()) {
		return nil, util.ErrFormInactive
	}

	bank, err := s.Forms.ActiveQuestions(form.ID)
	if err != nil {
		return nil, err
	}

	selected := s.Selector.Select(form, bank)

	public := &PublicForm{
		UUID:                   form.UUID,
		Title:                  form.Title,
		Description:            form.Description,
		FormType:               form.FormType,
		PassingScore:           form.PassingScore,
		TimeLimitMinutes:       form.TimeLimitMinutes,
		MaxAttempts:            form.MaxAttempts,
		RequiresOdooValidation: form.RequiresOdooValidation,
		TotalQuestions:         len(selected),
		Questions:              make([]PublicQuestion, 0, len(selected)),
	}

	for i := range selected {
		q := &selected[i]
		public.MaxPossibleScore += QuestionMaxPoints(q)

		pq := PublicQuestion{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			TypeCode:     string(q.Type()),
			Points:       QuestionMaxPoints(q),
			DisplayOrder: q.DisplayOrder,
			IsRequired:   q.IsRequired,
		}
		for _, opt := range q.Options {
			if !opt.IsActive {
				continue
			}
			pq.Options = append(pq.Options, PublicOption{
				ID:           opt.ID,
				OptionText:   opt.OptionText,
				DisplayOrder: opt.DisplayOrder,
			})
		}
		public.Questions = append(public.Questions, pq)
	}

	return public, nil
}
