package models

// MinJobPay - минимальная дневная оплата, рупии
const MinJobPay = 300

const (
	DefaultJobCategory = "Catering"
	DefaultJobLocation = "General"
)

type Job struct {
	BaseModel
	OwnerID     string `gorm:"type:uuid;not null;index"`
	Title       string `gorm:"not null"`
	Description string
	Pay         float64   `gorm:"type:decimal(10,2);not null;check:pay > 0"`
	Category    string    `gorm:"not null;default:'Catering'"`
	Location    string    `gorm:"not null;default:'General'"`
	IsEmergency bool      `gorm:"not null;default:false"`
	Status      JobStatus `gorm:"type:varchar(20);not null;default:'OPEN';index"`

	// Relations
	Owner *User `gorm:"foreignKey:OwnerID"`
}
