package repositories

import (
	"errors"
	"time"

	"caterconnect_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrApplicationExists   = errors.New("application already exists for this job and worker")
	ErrStatusMismatch      = errors.New("application status changed concurrently")
)

type ApplicationRepository interface {
	Create(db *gorm.DB, application *models.Application) error
	FindByID(db *gorm.DB, id string) (*models.Application, error)
	FindByWorker(db *gorm.DB, workerID string) ([]models.Application, error)
	FindByOwner(db *gorm.DB, ownerID string) ([]models.Application, error)
	FindByJob(db *gorm.DB, jobID string) ([]models.Application, error)
	FindStartedBefore(db *gorm.DB, before time.Time) ([]models.Application, error)
	HasCompleted(db *gorm.DB, jobID, workerID string) (bool, error)

	UpdateStatus(db *gorm.DB, id string, from, to models.ApplicationStatus) error
	RejectPending(db *gorm.DB, jobID string) (int64, error)
}

type ApplicationRepositoryImpl struct{}

func NewApplicationRepository() ApplicationRepository {
	return &ApplicationRepositoryImpl{}
}

// Create вставляет заявку; дубль по (job_id, worker_id) -> ErrApplicationExists
func (r *ApplicationRepositoryImpl) Create(db *gorm.DB, application *models.Application) error {
	if application.Status == "" {
		application.Status = models.ApplicationStatusPending
	}
	inserted, err := insertIgnore(db, application)
	if err != nil {
		return err
	}
	if !inserted {
		return ErrApplicationExists
	}
	return nil
}

func (r *ApplicationRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Application, error) {
	var application models.Application
	if err := db.Preload("Job").Where("id = ?", id).First(&application).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}

func (r *ApplicationRepositoryImpl) FindByWorker(db *gorm.DB, workerID string) ([]models.Application, error) {
	var applications []models.Application
	err := db.Preload("Job").Preload("Job.Owner").
		Where("worker_id = ?", workerID).
		Order("created_at DESC").
		Find(&applications).Error
	return applications, err
}

func (r *ApplicationRepositoryImpl) FindByOwner(db *gorm.DB, ownerID string) ([]models.Application, error) {
	var applications []models.Application
	ownerJobs := db.Model(&models.Job{}).Select("id").Where("owner_id = ?", ownerID)
	err := db.Preload("Job").Preload("Worker").
		Where("job_id IN (?)", ownerJobs).
		Order("created_at DESC").
		Find(&applications).Error
	return applications, err
}

func (r *ApplicationRepositoryImpl) FindByJob(db *gorm.DB, jobID string) ([]models.Application, error) {
	var applications []models.Application
	err := db.Preload("Worker").
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		Find(&applications).Error
	return applications, err
}

// HasCompleted - у работника есть заявка COMPLETED на эту работу
func (r *ApplicationRepositoryImpl) HasCompleted(db *gorm.DB, jobID, workerID string) (bool, error) {
	var count int64
	err := db.Model(&models.Application{}).
		Where("job_id = ? AND worker_id = ? AND status = ?", jobID, workerID, models.ApplicationStatusCompleted).
		Count(&count).Error
	return count > 0, err
}

// FindStartedBefore - заявки в STARTED, которые не менялись с before
func (r *ApplicationRepositoryImpl) FindStartedBefore(db *gorm.DB, before time.Time) ([]models.Application, error) {
	var applications []models.Application
	err := db.Preload("Job").
		Where("status = ? AND updated_at <= ?", models.ApplicationStatusStarted, before).
		Find(&applications).Error
	return applications, err
}

// UpdateStatus пишет новый статус, только если текущий все еще from
func (r *ApplicationRepositoryImpl) UpdateStatus(db *gorm.DB, id string, from, to models.ApplicationStatus) error {
	result := db.Model(&models.Application{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": db.NowFunc(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStatusMismatch
	}
	return nil
}

// RejectPending отклоняет все PENDING заявки работы одним запросом
func (r *ApplicationRepositoryImpl) RejectPending(db *gorm.DB, jobID string) (int64, error) {
	result := db.Model(&models.Application{}).
		Where("job_id = ? AND status = ?", jobID, models.ApplicationStatusPending).
		Updates(map[string]interface{}{
			"status":     models.ApplicationStatusRejected,
			"updated_at": db.NowFunc(),
		})
	return result.RowsAffected, result.Error
}
