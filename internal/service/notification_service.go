package service

import (
	"fmt"

	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/model"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/repository"
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/pkg/logger"

	"go.uber.org/zap"
)

// NotificationService records admin-facing notifications. All failures are
// log-only; a lost notification never affects a graded submission.
type NotificationService struct {
	Notifications *repository.NotificationRepository
}

func NewNotificationService(notifications *repository.NotificationRepository) *NotificationService {
	return &NotificationService{Notifications: notifications}
}

func (s *NotificationService) NotifyNewResponse(form *model.Form, resp *model.FormResponse) {
	title := "Nueva respuesta recibida"
	message := fmt.Sprintf("%s respondió el formulario \"%s\"", resp.RespondentEmail, form.Title)
	if form.IsExam() {
		title = "Nuevo examen completado"
		verdict := "sin calificar"
		if resp.Passed != nil {
			if *resp.Passed {
				verdict = "aprobado"
			} else {
				verdict = "desaprobado"
			}
		}
		message = fmt.Sprintf("%s completó el examen \"%s\" con %d%% (%s)",
			resp.RespondentEmail, form.Title, resp.PercentageScore, verdict)
	}

	n := &model.Notification{
		Type:       "NEW_RESPONSE",
		Title:      title,
		Message:    message,
		FormID:     form.ID,
		ResponseID: resp.ID,
	}

	if err := s.Notifications.Create(n); err != nil {
		logger.Log.Error("notification create failed",
			zap.String("responseUuid", resp.ResponseUUID), zap.Error(err))
	}
}

func (s *NotificationService) List(page, limit int) ([]model.Notification, int64, error) {
	return s.Notifications.List(page, limit)
}

func (s *NotificationService) MarkRead(id uint) error {
	return s.Notifications.MarkRead(id)
}
