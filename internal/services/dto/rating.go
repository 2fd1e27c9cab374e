package dto

import "time"

type SubmitRatingRequest struct {
	JobID       string `json:"job_id" validate:"required,uuid"`
	RatedUserID string `json:"rated_user_id" validate:"required,uuid"`
	Value       int    `json:"value"`
	Review      string `json:"review" validate:"omitempty,max=1000"`
}

type RatingCheckQuery struct {
	JobID       string `form:"job_id" validate:"required,uuid"`
	RatedUserID string `form:"rated_user_id" validate:"required,uuid"`
}

type RatingResponse struct {
	ID          string    `json:"id"`
	JobID       string    `json:"job_id"`
	RaterID     string    `json:"rater_id"`
	RatedUserID string    `json:"rated_user_id"`
	Value       int       `json:"value"`
	Review      string    `json:"review,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type RatingCheckResponse struct {
	HasRated bool            `json:"has_rated"`
	Rating   *RatingResponse `json:"rating,omitempty"`
}
