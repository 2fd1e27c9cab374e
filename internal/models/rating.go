package models

const (
	MinRatingValue = 1
	MaxRatingValue = 5
)

// Rating не изменяется после создания
type Rating struct {
	BaseModel
	JobID       string `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_job_rater_rated"`
	RaterID     string `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_job_rater_rated"`
	RatedUserID string `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_job_rater_rated"`
	Value       int    `gorm:"not null;check:value >= 1 AND value <= 5"`
	Review      string
}
