package dto

import "time"

type PublicListQuery struct {
	Limit int `form:"limit"`
}

// PublicJob - без контактов владельца
type PublicJob struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Pay         float64   `json:"pay"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	IsEmergency bool      `json:"is_emergency"`
	CreatedAt   time.Time `json:"created_at"`
	OwnerName   string    `json:"owner_name"`
	OwnerAvatar *string   `json:"owner_avatar,omitempty"`
}

// PublicWorker - без email и телефона
type PublicWorker struct {
	ID            string    `json:"id"`
	FullName      string    `json:"full_name"`
	AvatarURL     *string   `json:"avatar_url,omitempty"`
	Role          string    `json:"role"`
	ServiceRole   *string   `json:"service_role,omitempty"`
	BaseLocation  *string   `json:"base_location,omitempty"`
	DailyRate     *float64  `json:"daily_rate,omitempty"`
	AverageRating float64   `json:"average_rating"`
	RatingCount   int       `json:"rating_count"`
	CreatedAt     time.Time `json:"created_at"`
}
