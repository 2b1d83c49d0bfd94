package repository

import (
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/model"

	"gorm.io/gorm"
)

type ResponseRepository struct {
	DB *gorm.DB
}

func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{DB: db}
}

// CreateWithAnswers persists the response and its per-question rows in one
// transaction. A crash mid-write never leaves a response without its
// answers or with a stale aggregate.
func (r *ResponseRepository) CreateWithAnswers(resp *model.FormResponse, answers []model.ResponseAnswer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(resp).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].ResponseID = resp.ID
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// HistoryByFormAndEmail is the attempt history for a (form, respondent)
// pair, most recent first.
func (r *ResponseRepository) HistoryByFormAndEmail(formID uint, email string) ([]model.FormResponse, error) {
	var responses []model.FormResponse
	err := r.DB.
		Where("form_id = ? AND respondent_email = ?", formID, email).
		Order("submitted_at desc").
		Find(&responses).Error
	return responses, err
}

// AnswerTally is the per-response correct/total count over persisted answer
// rows. Responses from the pre-granular schema generation have no rows and
// simply do not appear in the map.
type AnswerTally struct {
	ResponseID uint
	Correct    int
	Total      int
}

func (r *ResponseRepository) AnswerTallies(responseIDs []uint) (map[uint]AnswerTally, error) {
	tallies := make(map[uint]AnswerTally)
	if len(responseIDs) == 0 {
		return tallies, nil
	}

	var rows []AnswerTally
	err := r.DB.Model(&model.ResponseAnswer{}).
		Select("response_id, COUNT(*) as total, SUM(CASE WHEN is_correct = 1 THEN 1 ELSE 0 END) as correct").
		Where("response_id IN ?", responseIDs).
		Group("response_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		tallies[row.ResponseID] = row
	}
	return tallies, nil
}

func (r *ResponseRepository) FindByUUID(uuid string) (*model.FormResponse, error) {
	var resp model.FormResponse
	err := r.DB.Where("response_uuid = ?", uuid).First(&resp).Error
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *ResponseRepository) FindByID(id uint) (*model.FormResponse, error) {
	var resp model.FormResponse
	err := r.DB.First(&resp, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// AnswerDetailRow joins an answer with its question for result views.
type AnswerDetailRow struct {
	model.ResponseAnswer
	QuestionText   string  `json:"questionText"`
	QuestionPoints float64 `json:"questionPoints"`
}

func (r *ResponseRepository) ListAnswers(responseID uint) ([]AnswerDetailRow, error) {
	var rows []AnswerDetailRow
	err := r.DB.Table("response_answers ra").
		Select("ra.*, q.question_text, q.points as question_points").
		Joins("JOIN questions q ON ra.question_id = q.id").
		Where("ra.response_id = ? AND ra.deleted_at IS NULL", responseID).
		Order("q.display_order asc").
		Scan(&rows).Error
	return rows, err
}

type ResponseListRow struct {
	model.FormResponse
	FormTitle string `json:"formTitle"`
	FormType  string `json:"formType"`
}

func (r *ResponseRepository) List(formID uint, status string, page, limit int) ([]ResponseListRow, int64, error) {
	query := r.DB.Table("form_responses r").
		Select("r.*, f.title as form_title, f.form_type").
		Joins("JOIN forms f ON r.form_id = f.id").
		Where("r.deleted_at IS NULL")

	if formID != 0 {
		query = query.Where("r.form_id = ?", formID)
	}
	if status != "" {
		query = query.Where("r.status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ResponseListRow
	offset := (page - 1) * limit
	err := query.Order("r.submitted_at desc").Offset(offset).Limit(limit).Scan(&rows).Error
	return rows, total, err
}

func (r *ResponseRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("response_id = ?", id).Delete(&model.ResponseAnswer{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.FormResponse{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// SetCertificate populates the certificate columns once. The NULL guard
// makes re-invocation of the certification worker a no-op and prevents
// double issuance from overwriting an earlier certificate.
func (r *ResponseRepository) SetCertificate(responseID uint, certificateID int64, pdfURL string) (bool, error) {
	result := r.DB.Model(&model.FormResponse{}).
		Where("id = ? AND odoo_certificate_id IS NULL", responseID).
		Updates(map[string]interface{}{
			"odoo_certificate_id":  certificateID,
			"odoo_certificate_pdf": pdfURL,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *ResponseRepository) HasCertificate(responseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.FormResponse{}).
		Where("id = ? AND odoo_certificate_id IS NOT NULL", responseID).
		Count(&count).Error
	return count > 0, err
}
