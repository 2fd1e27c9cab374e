package services

import (
	"errors"
	"strings"
	"time"

	"caterconnect_backend/internal/logger"
	"caterconnect_backend/internal/metrics"
	"caterconnect_backend/internal/models"
	"caterconnect_backend/internal/repositories"
	"caterconnect_backend/internal/services/dto"
	"caterconnect_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	profileLink = "/dashboard/profile"

	msgReferralJoined = "Someone joined with your referral code!"
	msgReferralReward = "You unlocked 1 month of PRO for referring 5 friends!"
)

type UserService interface {
	SyncProfile(db *gorm.DB, identity *dto.Identity, req *dto.SyncProfileRequest) (*dto.UserResponse, error)
	GetCurrentUser(db *gorm.DB, identity *dto.Identity) *dto.CurrentUserResponse
	GenerateMissingReferralCode(db *gorm.DB, userID string) (*dto.ReferralCodeResponse, error)
	GetReferralStats(db *gorm.DB, userID string) (*dto.ReferralStatsResponse, error)
}

type UserServiceImpl struct {
	userRepo            repositories.UserRepository
	notificationService NotificationService
	codes               *referralCodes
}

func NewUserService(
	userRepo repositories.UserRepository,
	notificationService NotificationService,
) UserService {
	return &UserServiceImpl{
		userRepo:            userRepo,
		notificationService: notificationService,
		codes:               &referralCodes{userRepo: userRepo},
	}
}

// referralOutcome - что случилось с пригласившим, уведомляем после commit
type referralOutcome struct {
	referrerID string
	rewarded   bool
}

func (s *UserServiceImpl) SyncProfile(db *gorm.DB, identity *dto.Identity, req *dto.SyncProfileRequest) (*dto.UserResponse, error) {
	if identity == nil || identity.ID == "" {
		return nil, apperrors.NewUnauthorizedError("Not authenticated")
	}

	role := models.UserRole(strings.ToUpper(strings.TrimSpace(req.Role)))
	fullName := strings.TrimSpace(req.FullName)
	phone := strings.TrimSpace(req.Phone)

	details := map[string]string{}
	if !role.IsValid() {
		details["role"] = "must be OWNER or WORKER"
	}
	if fullName == "" {
		details["full_name"] = "is required"
	}
	if phone == "" {
		details["phone"] = "is required"
	}
	if len(details) > 0 {
		return nil, apperrors.ValidationError(details)
	}

	existing, err := s.userRepo.FindByID(db, identity.ID)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.DatabaseError(err)
	}

	if existing != nil {
		return s.updateProfile(db, existing, role, fullName, phone, req)
	}
	return s.createProfile(db, identity, role, fullName, phone, req)
}

func (s *UserServiceImpl) createProfile(
	db *gorm.DB,
	identity *dto.Identity,
	role models.UserRole,
	fullName, phone string,
	req *dto.SyncProfileRequest,
) (*dto.UserResponse, error) {
	if err := s.ensurePhoneFree(db, phone, identity.ID); err != nil {
		return nil, err
	}

	referralCode := identity.ReferredByCode()
	if req.ReferralCode != nil && strings.TrimSpace(*req.ReferralCode) != "" {
		referralCode = *req.ReferralCode
	}
	referralCode = NormalizeReferralCode(referralCode)

	tx, err := beginTx(db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	code, err := s.codes.unique(tx, fullName)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		BaseModel:    models.BaseModel{ID: identity.ID},
		Email:        optionalString(identity.Email),
		FullName:     fullName,
		Role:         role,
		Tier:         models.UserTierFree,
		Phone:        &phone,
		ReferralCode: &code,
		AvatarURL:    req.AvatarURL,
		ServiceRole:  req.ServiceRole,
		BaseLocation: req.BaseLocation,
		DailyRate:    req.DailyRate,
	}

	var referrer *models.User
	if referralCode != "" {
		referrer, err = s.userRepo.FindByReferralCode(tx, referralCode)
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			// неизвестный код игнорируем
			logger.CtxInfo(db.Statement.Context, "unknown referral code ignored", "code", referralCode)
		case err != nil:
			return nil, apperrors.DatabaseError(err)
		default:
			user.ReferredBy = &referrer.ID
		}
	}

	if err := s.userRepo.Create(tx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrAlreadyExists(err, "user", "User with this email or phone already exists")
		}
		return nil, apperrors.DatabaseError(err)
	}

	var outcome *referralOutcome
	if referrer != nil {
		outcome, err = s.creditReferrer(tx, referrer.ID)
		if err != nil {
			return nil, err
		}
	}

	if err := commitTx(tx); err != nil {
		return nil, err
	}

	if outcome != nil {
		s.notifyReferrer(db, outcome)
	}

	logger.CtxInfo(db.Statement.Context, "profile created", "user_id", user.ID, "role", user.Role)
	return toUserResponse(user), nil
}

// creditReferrer: +1 к счетчику, награда ровно на пятом приглашенном
func (s *UserServiceImpl) creditReferrer(tx *gorm.DB, referrerID string) (*referralOutcome, error) {
	count, err := s.userRepo.IncrementReferralCount(tx, referrerID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	outcome := &referralOutcome{referrerID: referrerID}
	if count == ReferralRewardThreshold {
		until := time.Now().UTC().AddDate(0, 1, 0)
		if err := s.userRepo.GrantPro(tx, referrerID, until); err != nil {
			return nil, mapRepoError(err)
		}
		outcome.rewarded = true
	}
	return outcome, nil
}

func (s *UserServiceImpl) notifyReferrer(db *gorm.DB, outcome *referralOutcome) {
	s.notificationService.Notify(db, outcome.referrerID, msgReferralJoined, profileLink)
	if outcome.rewarded {
		metrics.RecordReferralReward()
		logger.CtxInfo(db.Statement.Context, "referral reward granted", "referrer_id", outcome.referrerID)
		s.notificationService.Notify(db, outcome.referrerID, msgReferralReward, profileLink)
	}
}

func (s *UserServiceImpl) updateProfile(
	db *gorm.DB,
	user *models.User,
	role models.UserRole,
	fullName, phone string,
	req *dto.SyncProfileRequest,
) (*dto.UserResponse, error) {
	if user.Phone == nil || *user.Phone != phone {
		if err := s.ensurePhoneFree(db, phone, user.ID); err != nil {
			return nil, err
		}
	}

	fields := map[string]interface{}{
		"full_name": fullName,
		"role":      role,
		"phone":     phone,
	}
	if req.AvatarURL != nil {
		fields["avatar_url"] = *req.AvatarURL
	}
	if req.ServiceRole != nil {
		fields["service_role"] = *req.ServiceRole
	}
	if req.BaseLocation != nil {
		fields["base_location"] = *req.BaseLocation
	}
	if req.DailyRate != nil {
		fields["daily_rate"] = *req.DailyRate
	}

	tx, err := beginTx(db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.userRepo.UpdateFields(tx, user.ID, fields); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicatePhone.WithError(err)
		}
		return nil, mapRepoError(err)
	}

	if user.ReferralCode == nil {
		code, err := s.codes.unique(tx, fullName)
		if err != nil {
			return nil, err
		}
		if _, err := s.userRepo.SetReferralCodeIfMissing(tx, user.ID, code); err != nil {
			return nil, apperrors.DatabaseError(err)
		}
	}

	updated, err := s.userRepo.FindByID(tx, user.ID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	if err := commitTx(tx); err != nil {
		return nil, err
	}
	return toUserResponse(updated), nil
}

func (s *UserServiceImpl) ensurePhoneFree(db *gorm.DB, phone, userID string) error {
	owner, err := s.userRepo.FindByPhone(db, phone)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.DatabaseError(err)
	}
	if owner.ID != userID {
		return apperrors.ErrDuplicatePhone
	}
	return nil
}

func (s *UserServiceImpl) GetCurrentUser(db *gorm.DB, identity *dto.Identity) *dto.CurrentUserResponse {
	result := &dto.CurrentUserResponse{Identity: identity}
	if identity == nil {
		return result
	}

	user, err := s.userRepo.FindByID(db, identity.ID)
	if err != nil {
		if !errors.Is(err, repositories.ErrUserNotFound) {
			logger.CtxWithError(db.Statement.Context, "failed to load current user", err)
		}
		return result
	}
	result.User = toUserResponse(user)
	return result
}

func (s *UserServiceImpl) GenerateMissingReferralCode(db *gorm.DB, userID string) (*dto.ReferralCodeResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if user.ReferralCode != nil {
		return &dto.ReferralCodeResponse{ReferralCode: *user.ReferralCode}, nil
	}

	code, err := s.codes.unique(db, user.FullName)
	if err != nil {
		return nil, err
	}
	set, err := s.userRepo.SetReferralCodeIfMissing(db, userID, code)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrReferralCodeExhausted.WithError(err)
		}
		return nil, apperrors.DatabaseError(err)
	}
	if !set {
		// параллельный запрос успел выдать код раньше
		user, err = s.userRepo.FindByID(db, userID)
		if err != nil {
			return nil, mapRepoError(err)
		}
		if user.ReferralCode != nil {
			code = *user.ReferralCode
		}
	}
	return &dto.ReferralCodeResponse{ReferralCode: code}, nil
}

func (s *UserServiceImpl) GetReferralStats(db *gorm.DB, userID string) (*dto.ReferralStatsResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	remaining := ReferralRewardThreshold - user.ReferralCount
	if remaining < 0 {
		remaining = 0
	}
	return &dto.ReferralStatsResponse{
		ReferralCode:  user.ReferralCode,
		ReferralCount: user.ReferralCount,
		RewardAt:      ReferralRewardThreshold,
		Remaining:     remaining,
		ProExpiresAt:  user.ProExpiresAt,
	}, nil
}
