package repositories

import (
	"errors"

	"caterconnect_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrJobNotFound = errors.New("job not found")
)

type JobRepository interface {
	Create(db *gorm.DB, job *models.Job) error
	FindByID(db *gorm.DB, id string) (*models.Job, error)
	FindAllWithOwner(db *gorm.DB) ([]models.Job, error)
	FindByOwner(db *gorm.DB, ownerID string) ([]models.Job, error)
	FindOpenWithOwner(db *gorm.DB, limit int) ([]models.Job, error)
	MarkCompleted(db *gorm.DB, id string) error
	DeleteCascade(db *gorm.DB, id string) ([]string, error)
}

type JobRepositoryImpl struct{}

func NewJobRepository() JobRepository {
	return &JobRepositoryImpl{}
}

func (r *JobRepositoryImpl) Create(db *gorm.DB, job *models.Job) error {
	return db.Create(job).Error
}

func (r *JobRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Job, error) {
	var job models.Job
	if err := db.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *JobRepositoryImpl) FindAllWithOwner(db *gorm.DB) ([]models.Job, error) {
	var jobs []models.Job
	err := db.Preload("Owner").Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

func (r *JobRepositoryImpl) FindByOwner(db *gorm.DB, ownerID string) ([]models.Job, error) {
	var jobs []models.Job
	err := db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

func (r *JobRepositoryImpl) FindOpenWithOwner(db *gorm.DB, limit int) ([]models.Job, error) {
	var jobs []models.Job
	err := db.Preload("Owner").
		Where("status = ?", models.JobStatusOpen).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

// MarkCompleted - COMPLETED необратим, повторный вызов ничего не меняет
func (r *JobRepositoryImpl) MarkCompleted(db *gorm.DB, id string) error {
	result := db.Model(&models.Job{}).
		Where("id = ?", id).
		Update("status", models.JobStatusCompleted)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

// DeleteCascade удаляет оценки, заявки и саму работу. Вызывать в транзакции.
// Возвращает пользователей, чьи оценки удалены: их рейтинг нужно пересчитать.
func (r *JobRepositoryImpl) DeleteCascade(db *gorm.DB, id string) ([]string, error) {
	var ratedUserIDs []string
	if err := db.Model(&models.Rating{}).
		Where("job_id = ?", id).
		Distinct().
		Pluck("rated_user_id", &ratedUserIDs).Error; err != nil {
		return nil, err
	}

	if err := db.Where("job_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
		return nil, err
	}
	if err := db.Where("job_id = ?", id).Delete(&models.Application{}).Error; err != nil {
		return nil, err
	}
	result := db.Where("id = ?", id).Delete(&models.Job{})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrJobNotFound
	}
	return ratedUserIDs, nil
}
