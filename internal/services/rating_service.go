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

type RatingService interface {
	SubmitRating(db *gorm.DB, raterID string, req *dto.SubmitRatingRequest) (*dto.RatingResponse, error)
	HasUserRated(db *gorm.DB, jobID, raterID, ratedUserID string) (bool, error)
	GetUserRating(db *gorm.DB, jobID, raterID, ratedUserID string) (*dto.RatingResponse, error)
	GetUserRatings(db *gorm.DB, userID string) []*dto.RatingResponse
}

type RatingServiceImpl struct {
	ratingRepo          repositories.RatingRepository
	jobRepo             repositories.JobRepository
	userRepo            repositories.UserRepository
	applicationRepo     repositories.ApplicationRepository
	notificationService NotificationService
}

func NewRatingService(
	ratingRepo repositories.RatingRepository,
	jobRepo repositories.JobRepository,
	userRepo repositories.UserRepository,
	applicationRepo repositories.ApplicationRepository,
	notificationService NotificationService,
) RatingService {
	return &RatingServiceImpl{
		ratingRepo:          ratingRepo,
		jobRepo:             jobRepo,
		userRepo:            userRepo,
		applicationRepo:     applicationRepo,
		notificationService: notificationService,
	}
}

func (s *RatingServiceImpl) SubmitRating(db *gorm.DB, raterID string, req *dto.SubmitRatingRequest) (*dto.RatingResponse, error) {
	if req.Value < models.MinRatingValue || req.Value > models.MaxRatingValue {
		return nil, apperrors.ErrInvalidRating
	}
	if raterID == req.RatedUserID {
		return nil, apperrors.ErrSelfRating
	}

	job, err := s.jobRepo.FindByID(db, req.JobID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if job.Status != models.JobStatusCompleted {
		return nil, apperrors.ErrRatingJobNotCompleted
	}
	if err := s.checkParticipants(db, job, raterID, req.RatedUserID); err != nil {
		return nil, err
	}

	rating := &models.Rating{
		JobID:       req.JobID,
		RaterID:     raterID,
		RatedUserID: req.RatedUserID,
		Value:       req.Value,
		Review:      strings.TrimSpace(req.Review),
	}

	tx, err := beginTx(db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// строка оцениваемого блокируется до commit, пересчеты идут по очереди
	if _, err := s.userRepo.FindByIDForUpdate(tx, req.RatedUserID); err != nil {
		return nil, mapRepoError(err)
	}
	if err := s.ratingRepo.Create(tx, rating); err != nil {
		return nil, mapRepoError(err)
	}
	if err := s.userRepo.RecomputeRating(tx, req.RatedUserID); err != nil {
		return nil, mapRepoError(err)
	}
	if err := commitTx(tx); err != nil {
		return nil, err
	}

	metrics.RecordRating()
	logger.CtxInfo(db.Statement.Context, "rating submitted",
		"job_id", rating.JobID,
		"rated_user_id", rating.RatedUserID,
		"value", rating.Value,
	)

	s.notificationService.Notify(db, req.RatedUserID, fmt.Sprintf("You received a %d-star rating!", req.Value), profileLink)

	return toRatingResponse(rating), nil
}

// checkParticipants: одна сторона - владелец работы, другая - работник,
// доведший заявку до COMPLETED
func (s *RatingServiceImpl) checkParticipants(db *gorm.DB, job *models.Job, raterID, ratedUserID string) error {
	var workerID string
	switch job.OwnerID {
	case raterID:
		workerID = ratedUserID
	case ratedUserID:
		workerID = raterID
	default:
		return apperrors.ErrRatingNotParticipant
	}

	hired, err := s.applicationRepo.HasCompleted(db, job.ID, workerID)
	if err != nil {
		return apperrors.DatabaseError(err)
	}
	if !hired {
		return apperrors.ErrRatingNotParticipant
	}
	return nil
}

func (s *RatingServiceImpl) HasUserRated(db *gorm.DB, jobID, raterID, ratedUserID string) (bool, error) {
	exists, err := s.ratingRepo.Exists(db, jobID, raterID, ratedUserID)
	if err != nil {
		return false, apperrors.DatabaseError(err)
	}
	return exists, nil
}

func (s *RatingServiceImpl) GetUserRating(db *gorm.DB, jobID, raterID, ratedUserID string) (*dto.RatingResponse, error) {
	rating, err := s.ratingRepo.Find(db, jobID, raterID, ratedUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrRatingNotFound) {
			return nil, apperrors.ErrRatingNotFound
		}
		return nil, apperrors.DatabaseError(err)
	}
	return toRatingResponse(rating), nil
}

func (s *RatingServiceImpl) GetUserRatings(db *gorm.DB, userID string) []*dto.RatingResponse {
	ratings, err := s.ratingRepo.FindByRatedUser(db, userID)
	if err != nil {
		logger.CtxWithError(db.Statement.Context, "failed to load ratings", err, "user_id", userID)
		return []*dto.RatingResponse{}
	}

	result := make([]*dto.RatingResponse, 0, len(ratings))
	for i := range ratings {
		result = append(result, toRatingResponse(&ratings[i]))
	}
	return result
}
