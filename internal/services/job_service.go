package services

import (
	"errors"
	"strings"
	"time"

	"caterconnect_backend/internal/logger"
	"caterconnect_backend/internal/models"
	"caterconnect_backend/internal/repositories"
	"caterconnect_backend/internal/services/dto"
	"caterconnect_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type JobService interface {
	CreateJob(db *gorm.DB, ownerID string, req *dto.CreateJobRequest) (*dto.JobResponse, error)
	GetJobs(db *gorm.DB) []*dto.JobResponse
	GetOwnerJobs(db *gorm.DB, ownerID string) []*dto.JobResponse
	GetJob(db *gorm.DB, jobID string) (*dto.JobResponse, error)
	DeleteJob(db *gorm.DB, jobID, callerID string) error
}

type JobServiceImpl struct {
	jobRepo  repositories.JobRepository
	userRepo repositories.UserRepository
}

func NewJobService(jobRepo repositories.JobRepository, userRepo repositories.UserRepository) JobService {
	return &JobServiceImpl{
		jobRepo:  jobRepo,
		userRepo: userRepo,
	}
}

func (s *JobServiceImpl) CreateJob(db *gorm.DB, ownerID string, req *dto.CreateJobRequest) (*dto.JobResponse, error) {
	owner, err := s.userRepo.FindByID(db, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrProfileRequired
		}
		return nil, apperrors.DatabaseError(err)
	}
	if owner.Role != models.UserRoleOwner {
		return nil, apperrors.ErrInsufficientPermissions
	}

	if req.Pay < models.MinJobPay {
		return nil, apperrors.ErrPayBelowMinimum
	}
	if req.IsEmergency && !hasActivePro(owner, time.Now().UTC()) {
		return nil, apperrors.ErrEmergencyRequiresPro
	}

	job := &models.Job{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Pay:         req.Pay,
		Category:    defaultString(req.Category, models.DefaultJobCategory),
		Location:    defaultString(req.Location, models.DefaultJobLocation),
		IsEmergency: req.IsEmergency,
		Status:      models.JobStatusOpen,
	}
	if err := s.jobRepo.Create(db, job); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	logger.CtxInfo(db.Statement.Context, "job created", "job_id", job.ID, "emergency", job.IsEmergency)
	job.Owner = owner
	return toJobResponse(job), nil
}

func (s *JobServiceImpl) GetJobs(db *gorm.DB) []*dto.JobResponse {
	jobs, err := s.jobRepo.FindAllWithOwner(db)
	if err != nil {
		logger.CtxWithError(db.Statement.Context, "failed to load jobs", err)
		return []*dto.JobResponse{}
	}
	return toJobResponses(jobs)
}

func (s *JobServiceImpl) GetOwnerJobs(db *gorm.DB, ownerID string) []*dto.JobResponse {
	jobs, err := s.jobRepo.FindByOwner(db, ownerID)
	if err != nil {
		logger.CtxWithError(db.Statement.Context, "failed to load owner jobs", err, "owner_id", ownerID)
		return []*dto.JobResponse{}
	}
	return toJobResponses(jobs)
}

func (s *JobServiceImpl) GetJob(db *gorm.DB, jobID string) (*dto.JobResponse, error) {
	job, err := s.jobRepo.FindByID(db, jobID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return toJobResponse(job), nil
}

func (s *JobServiceImpl) DeleteJob(db *gorm.DB, jobID, callerID string) error {
	job, err := s.jobRepo.FindByID(db, jobID)
	if err != nil {
		return mapRepoError(err)
	}
	if job.OwnerID != callerID {
		return apperrors.ErrNotJobOwner
	}

	tx, err := beginTx(db)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ratedUserIDs, err := s.jobRepo.DeleteCascade(tx, jobID)
	if err != nil {
		return mapRepoError(err)
	}
	for _, userID := range ratedUserIDs {
		if err := s.userRepo.RecomputeRating(tx, userID); err != nil {
			return mapRepoError(err)
		}
	}
	if err := commitTx(tx); err != nil {
		return err
	}

	logger.CtxInfo(db.Statement.Context, "job deleted", "job_id", jobID)
	return nil
}

// hasActivePro - PRO, срок которого еще не истек (воркер мог не успеть понизить)
func hasActivePro(u *models.User, now time.Time) bool {
	if !u.IsPro() {
		return false
	}
	return u.ProExpiresAt == nil || u.ProExpiresAt.After(now)
}

func defaultString(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
