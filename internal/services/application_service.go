package services

import (
	"errors"
	"fmt"
	"strings"

	"caterconnect_backend/internal/logger"
	"caterconnect_backend/internal/metrics"
	"caterconnect_backend/internal/models"
	"caterconnect_backend/internal/repositories"
	"caterconnect_backend/internal/services/dto"
	"caterconnect_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	myJobsLink         = "/dashboard/my-jobs"
	myApplicationsLink = "/dashboard/my-applications"
)

type ApplicationService interface {
	ApplyToJob(db *gorm.DB, jobID, workerID string) (*dto.ApplicationResponse, error)
	UpdateStatus(db *gorm.DB, applicationID, callerID string, status models.ApplicationStatus) (*dto.ApplicationResponse, error)
	RejectPending(db *gorm.DB, jobID, callerID string) (int64, error)

	GetWorkerApplications(db *gorm.DB, workerID string) []*dto.ApplicationResponse
	GetOwnerJobApplications(db *gorm.DB, ownerID string) []*dto.ApplicationResponse
	GetApplicationsForJob(db *gorm.DB, jobID, callerID string) ([]*dto.ApplicationResponse, error)
}

type ApplicationServiceImpl struct {
	applicationRepo     repositories.ApplicationRepository
	jobRepo             repositories.JobRepository
	userRepo            repositories.UserRepository
	notificationService NotificationService
}

func NewApplicationService(
	applicationRepo repositories.ApplicationRepository,
	jobRepo repositories.JobRepository,
	userRepo repositories.UserRepository,
	notificationService NotificationService,
) ApplicationService {
	return &ApplicationServiceImpl{
		applicationRepo:     applicationRepo,
		jobRepo:             jobRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
	}
}

func (s *ApplicationServiceImpl) ApplyToJob(db *gorm.DB, jobID, workerID string) (*dto.ApplicationResponse, error) {
	job, err := s.jobRepo.FindByID(db, jobID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if job.Status != models.JobStatusOpen {
		return nil, apperrors.ErrJobClosed
	}
	if job.OwnerID == workerID {
		return nil, apperrors.ErrInvalidOperation("application", "You cannot apply to your own job")
	}

	if _, err := s.userRepo.FindByID(db, workerID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrProfileRequired
		}
		return nil, apperrors.DatabaseError(err)
	}

	application := &models.Application{
		JobID:    jobID,
		WorkerID: workerID,
		Status:   models.ApplicationStatusPending,
	}
	if err := s.applicationRepo.Create(db, application); err != nil {
		return nil, mapRepoError(err)
	}

	metrics.RecordTransition(string(models.ApplicationStatusPending))
	logger.CtxInfo(db.Statement.Context, "application created", "application_id", application.ID, "job_id", jobID)

	s.notificationService.Notify(db, job.OwnerID, "New applicant for your gig: "+job.Title, myJobsLink)

	application.Job = job
	return toApplicationResponse(application), nil
}

func (s *ApplicationServiceImpl) UpdateStatus(
	db *gorm.DB,
	applicationID, callerID string,
	status models.ApplicationStatus,
) (*dto.ApplicationResponse, error) {
	if !status.IsValid() {
		return nil, apperrors.ErrInvalidStatus("application", "Unknown application status")
	}

	application, err := s.applicationRepo.FindByID(db, applicationID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	job := application.Job
	if job == nil {
		if job, err = s.jobRepo.FindByID(db, application.JobID); err != nil {
			return nil, mapRepoError(err)
		}
	}
	if job.OwnerID != callerID {
		return nil, apperrors.ErrNotJobOwner
	}

	from := application.Status
	if !from.CanTransition(status) {
		return nil, apperrors.ErrInvalidTransition.WithDetails(map[string]string{
			"from": string(from),
			"to":   string(status),
		})
	}

	tx, err := beginTx(db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.applicationRepo.UpdateStatus(tx, applicationID, from, status); err != nil {
		return nil, mapRepoError(err)
	}
	if status == models.ApplicationStatusCompleted {
		if err := s.jobRepo.MarkCompleted(tx, job.ID); err != nil {
			return nil, mapRepoError(err)
		}
	}

	updated, err := s.applicationRepo.FindByID(tx, applicationID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := commitTx(tx); err != nil {
		return nil, err
	}

	metrics.RecordTransition(string(status))
	logger.CtxInfo(db.Statement.Context, "application status changed",
		"application_id", applicationID,
		"from", from,
		"to", status,
	)

	message := fmt.Sprintf("Your application for %s was %s", job.Title, strings.ToLower(string(status)))
	s.notificationService.Notify(db, application.WorkerID, message, myApplicationsLink)

	return toApplicationResponse(updated), nil
}

func (s *ApplicationServiceImpl) RejectPending(db *gorm.DB, jobID, callerID string) (int64, error) {
	job, err := s.jobRepo.FindByID(db, jobID)
	if err != nil {
		return 0, mapRepoError(err)
	}
	if job.OwnerID != callerID {
		return 0, apperrors.ErrNotJobOwner
	}

	rejected, err := s.applicationRepo.RejectPending(db, jobID)
	if err != nil {
		return 0, apperrors.DatabaseError(err)
	}

	logger.CtxInfo(db.Statement.Context, "pending applications rejected", "job_id", jobID, "count", rejected)
	return rejected, nil
}

func (s *ApplicationServiceImpl) GetWorkerApplications(db *gorm.DB, workerID string) []*dto.ApplicationResponse {
	applications, err := s.applicationRepo.FindByWorker(db, workerID)
	if err != nil {
		logger.CtxWithError(db.Statement.Context, "failed to load worker applications", err)
		return []*dto.ApplicationResponse{}
	}
	return toApplicationResponses(applications)
}

func (s *ApplicationServiceImpl) GetOwnerJobApplications(db *gorm.DB, ownerID string) []*dto.ApplicationResponse {
	applications, err := s.applicationRepo.FindByOwner(db, ownerID)
	if err != nil {
		logger.CtxWithError(db.Statement.Context, "failed to load owner applications", err)
		return []*dto.ApplicationResponse{}
	}
	return toApplicationResponses(applications)
}

func (s *ApplicationServiceImpl) GetApplicationsForJob(db *gorm.DB, jobID, callerID string) ([]*dto.ApplicationResponse, error) {
	job, err := s.jobRepo.FindByID(db, jobID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if job.OwnerID != callerID {
		return nil, apperrors.ErrNotJobOwner
	}

	applications, err := s.applicationRepo.FindByJob(db, jobID)
	if err != nil {
		logger.CtxWithError(db.Statement.Context, "failed to load job applications", err, "job_id", jobID)
		return []*dto.ApplicationResponse{}, nil
	}
	return toApplicationResponses(applications), nil
}
