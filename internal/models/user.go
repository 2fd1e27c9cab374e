package models

import "time"

type User struct {
	BaseModel
	Email         *string  `gorm:"uniqueIndex"` // nil для входа по телефону
	FullName      string   `gorm:"not null;default:''"`
	Role          UserRole `gorm:"type:varchar(20);not null;default:'WORKER'"`
	Tier          UserTier `gorm:"type:varchar(10);not null;default:'FREE'"`
	Phone         *string  `gorm:"uniqueIndex"`
	AvatarURL     *string
	ServiceRole   *string
	BaseLocation  *string
	DailyRate     *float64 `gorm:"type:decimal(10,2)"`
	ReferralCode  *string  `gorm:"type:varchar(16);uniqueIndex"`
	ReferralCount int      `gorm:"not null;default:0"`
	ReferredBy    *string  `gorm:"type:uuid;index"`
	ProExpiresAt  *time.Time
	AverageRating float64 `gorm:"type:decimal(3,2);not null;default:0"`
	RatingCount   int     `gorm:"not null;default:0"`
}

func (u *User) IsPro() bool {
	return u.Tier == UserTierPro
}
