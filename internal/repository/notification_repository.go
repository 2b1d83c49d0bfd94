package repository

import (
	"github.com/1608-EQUIPOSISTEMAS/SystemFormsWe-Backend/internal/model"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(n *model.Notification) error {
	return r.DB.Create(n).Error
}

func (r *NotificationRepository) List(page, limit int) ([]model.Notification, int64, error) {
	var total int64
	if err := r.DB.Model(&model.Notification{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Notification
	offset := (page - 1) * limit
	err := r.DB.Order("created_at desc").Offset(offset).Limit(limit).Find(&items).Error
	return items, total, err
}

func (r *NotificationRepository) MarkRead(id uint) error {
	return r.DB.Model(&model.Notification{}).Where("id = ?", id).Update("is_read", true).Error
}
