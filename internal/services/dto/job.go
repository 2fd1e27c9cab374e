package dto

import "time"

type CreateJobRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=120"`
	Pay         float64 `json:"pay" validate:"required"`
	Category    string  `json:"category" validate:"omitempty,max=50"`
	Location    string  `json:"location" validate:"omitempty,max=100"`
	IsEmergency bool    `json:"is_emergency"`
	Description string  `json:"description" validate:"omitempty,max=2000"`
}

type JobResponse struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"owner_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Pay         float64      `json:"pay"`
	Category    string       `json:"category"`
	Location    string       `json:"location"`
	IsEmergency bool         `json:"is_emergency"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	Owner       *UserSummary `json:"owner,omitempty"`
}
