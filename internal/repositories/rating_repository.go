package repositories

import (
	"errors"

	"caterconnect_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrRatingNotFound = errors.New("rating not found")
	ErrRatingExists   = errors.New("rating already exists for this job, rater and rated user")
)

type RatingRepository interface {
	Create(db *gorm.DB, rating *models.Rating) error
	Find(db *gorm.DB, jobID, raterID, ratedUserID string) (*models.Rating, error)
	Exists(db *gorm.DB, jobID, raterID, ratedUserID string) (bool, error)
	FindByRatedUser(db *gorm.DB, userID string) ([]models.Rating, error)
}

type RatingRepositoryImpl struct{}

func NewRatingRepository() RatingRepository {
	return &RatingRepositoryImpl{}
}

// Create - дубль тройки (job, rater, rated) -> ErrRatingExists
func (r *RatingRepositoryImpl) Create(db *gorm.DB, rating *models.Rating) error {
	inserted, err := insertIgnore(db, rating)
	if err != nil {
		return err
	}
	if !inserted {
		return ErrRatingExists
	}
	return nil
}

func (r *RatingRepositoryImpl) Find(db *gorm.DB, jobID, raterID, ratedUserID string) (*models.Rating, error) {
	var rating models.Rating
	err := db.Where("job_id = ? AND rater_id = ? AND rated_user_id = ?", jobID, raterID, ratedUserID).
		First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	return &rating, nil
}

func (r *RatingRepositoryImpl) Exists(db *gorm.DB, jobID, raterID, ratedUserID string) (bool, error) {
	var count int64
	err := db.Model(&models.Rating{}).
		Where("job_id = ? AND rater_id = ? AND rated_user_id = ?", jobID, raterID, ratedUserID).
		Count(&count).Error
	return count > 0, err
}

func (r *RatingRepositoryImpl) FindByRatedUser(db *gorm.DB, userID string) ([]models.Rating, error) {
	var ratings []models.Rating
	err := db.Where("rated_user_id = ?", userID).Order("created_at DESC").Find(&ratings).Error
	return ratings, err
}
