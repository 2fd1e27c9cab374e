package models

type Notification struct {
	BaseModel
	UserID  string `gorm:"type:uuid;not null;index"`
	Message string `gorm:"not null"`
	Link    *string
	IsRead  bool `gorm:"not null;default:false"`
}
