package model

type Notification struct {
	BaseModel
	Type       string `gorm:"size:50;not null" json:"type"`
	Title      string `gorm:"size:255" json:"title"`
	Message    string `gorm:"type:text" json:"message"`
	FormID     uint   `gorm:"index" json:"formId"`
	ResponseID uint   `gorm:"index" json:"responseId"`
	IsRead     bool   `gorm:"default:false" json:"isRead"`
}

func (Notification) TableName() string {
	return "notifications"
}
