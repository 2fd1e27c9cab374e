package services

import (
	"caterconnect_backend/internal/logger"
	"caterconnect_backend/internal/repositories"
	"caterconnect_backend/internal/services/dto"

	"gorm.io/gorm"
)

const (
	DefaultPublicLimit = 10
	MaxPublicLimit     = 50
)

// PublicService - витрина без авторизации, контакты не отдаются
type PublicService interface {
	GetPublicJobs(db *gorm.DB, limit int) []*dto.PublicJob
	GetPublicWorkers(db *gorm.DB, limit int) []*dto.PublicWorker
}

type PublicServiceImpl struct {
	jobRepo  repositories.JobRepository
	userRepo repositories.UserRepository
}

func NewPublicService(jobRepo repositories.JobRepository, userRepo repositories.UserRepository) PublicService {
	return &PublicServiceImpl{jobRepo: jobRepo, userRepo: userRepo}
}

// ClampPublicLimit: 0 -> по умолчанию, дальше [1, 50]
func ClampPublicLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultPublicLimit
	case limit < 1:
		return 1
	case limit > MaxPublicLimit:
		return MaxPublicLimit
	}
	return limit
}

func (s *PublicServiceImpl) GetPublicJobs(db *gorm.DB, limit int) []*dto.PublicJob {
	jobs, err := s.jobRepo.FindOpenWithOwner(db, ClampPublicLimit(limit))
	if err != nil {
		logger.CtxWithError(db.Statement.Context, "failed to load public jobs", err)
		return []*dto.PublicJob{}
	}

	result := make([]*dto.PublicJob, 0, len(jobs))
	for i := range jobs {
		result = append(result, toPublicJob(&jobs[i]))
	}
	return result
}

func (s *PublicServiceImpl) GetPublicWorkers(db *gorm.DB, limit int) []*dto.PublicWorker {
	users, err := s.userRepo.FindPublicWorkers(db, ClampPublicLimit(limit))
	if err != nil {
		logger.CtxWithError(db.Statement.Context, "failed to load public workers", err)
		return []*dto.PublicWorker{}
	}

	result := make([]*dto.PublicWorker, 0, len(users))
	for i := range users {
		result = append(result, toPublicWorker(&users[i]))
	}
	return result
}
