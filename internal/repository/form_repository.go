package repository

import (
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/model"

	"gorm.io/gorm"
)

type FormRepository struct {
	DB *gorm.DB
}

func NewFormRepository(db *gorm.DB) *FormRepository {
	return &FormRepository{DB: db}
}

func (r *FormRepository) FindActiveByUUID(uuid string) (*model.Form, error) {
	var form model.Form
	err := r.DB.Where("uuid = ? AND is_active = ?", uuid, true).First(&form).Error
	if err != nil {
		return nil, err
	}
	return &form, nil
}

func (r *FormRepository) FindByID(id uint) (*model.Form, error) {
	var form model.Form
	err := r.DB.First(&form, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// ActiveQuestions returns the form's active questions in display order with
// their active options preloaded. This is the full bank the selector and
// evaluator work from.
func (r *FormRepository) ActiveQuestions(formID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.
		Preload("Options", "is_active = ?", true).
		Where("form_id = ? AND is_active = ?", formID, true).
		Order("display_order asc, id asc").
		Find(&qs).Error
	return qs, err
}

func (r *FormRepository) CountActiveQuestions(formID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).
		Where("form_id = ? AND is_active = ?", formID, true).
		Count(&count).Error
	return count, err
}

// CorrectOptionTexts maps question id to the texts of its correct options,
// used when a result reveals correct answers.
func (r *FormRepository) CorrectOptionTexts(questionIDs []uint) (map[uint][]string, error) {
	texts := make(map[uint][]string)
	if len(questionIDs) == 0 {
		return texts, nil
	}

	var opts []model.QuestionOption
	err := r.DB.
		Where("question_id IN ? AND is_correct = ? AND is_active = ?", questionIDs, true, true).
		Order("display_order asc").
		Find(&opts).Error
	if err != nil {
		return nil, err
	}

	for _, opt := range opts {
		texts[opt.QuestionID] = append(texts[opt.QuestionID], opt.OptionText)
	}
	return texts, nil
}
