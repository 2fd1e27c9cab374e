package models

import (
	"time"

	"gorm.io/datatypes"
)

// PaymentOrder - заказ, созданный в Razorpay для покупки PRO
type PaymentOrder struct {
	BaseModel
	UserID            string `gorm:"type:uuid;not null;index"`
	RazorpayOrderID   string `gorm:"uniqueIndex;not null"`
	RazorpayPaymentID *string
	Amount            int64         `gorm:"not null"` // пайсы
	Currency          string        `gorm:"type:varchar(3);not null"`
	Receipt           string        `gorm:"not null"`
	Status            PaymentStatus `gorm:"type:varchar(20);not null;default:'CREATED'"`
	GatewayResponse   datatypes.JSON
	PaidAt            *time.Time
}
