package repositories

import (
	"errors"
	"time"

	"caterconnect_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByIDForUpdate(db *gorm.DB, id string) (*models.User, error)
	FindByPhone(db *gorm.DB, phone string) (*models.User, error)
	FindByReferralCode(db *gorm.DB, code string) (*models.User, error)
	ReferralCodeExists(db *gorm.DB, code string) (bool, error)
	UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error
	SetReferralCodeIfMissing(db *gorm.DB, id, code string) (bool, error)

	// Counters
	IncrementReferralCount(db *gorm.DB, id string) (int, error)
	RecomputeRating(db *gorm.DB, id string) error

	// Tier
	GrantPro(db *gorm.DB, id string, until time.Time) error
	SetFree(db *gorm.DB, id string) error
	ExpireProTiers(db *gorm.DB, now time.Time) (int64, error)

	// Public
	FindPublicWorkers(db *gorm.DB, limit int) ([]models.User, error)
}

type UserRepositoryImpl struct{}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

func (r *UserRepositoryImpl) Create(db *gorm.DB, user *models.User) error {
	return db.Create(user).Error
}

func (r *UserRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.User, error) {
	return r.first(db.Where("id = ?", id))
}

func (r *UserRepositoryImpl) FindByIDForUpdate(db *gorm.DB, id string) (*models.User, error) {
	return r.first(forUpdate(db).Where("id = ?", id))
}

func (r *UserRepositoryImpl) FindByPhone(db *gorm.DB, phone string) (*models.User, error) {
	return r.first(db.Where("phone = ?", phone))
}

func (r *UserRepositoryImpl) FindByReferralCode(db *gorm.DB, code string) (*models.User, error) {
	return r.first(db.Where("referral_code = ?", code))
}

func (r *UserRepositoryImpl) first(query *gorm.DB) (*models.User, error) {
	var user models.User
	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) ReferralCodeExists(db *gorm.DB, code string) (bool, error) {
	var count int64
	err := db.Model(&models.User{}).Where("referral_code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *UserRepositoryImpl) UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error {
	result := db.Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetReferralCodeIfMissing не перезаписывает уже выданный код
func (r *UserRepositoryImpl) SetReferralCodeIfMissing(db *gorm.DB, id, code string) (bool, error) {
	result := db.Model(&models.User{}).
		Where("id = ? AND referral_code IS NULL", id).
		Update("referral_code", code)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IncrementReferralCount атомарно прибавляет 1 и возвращает новое значение.
// Вызывать внутри транзакции: строка остается заблокированной до commit.
func (r *UserRepositoryImpl) IncrementReferralCount(db *gorm.DB, id string) (int, error) {
	result := db.Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("referral_count", gorm.Expr("referral_count + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrUserNotFound
	}

	var count int
	if err := db.Model(&models.User{}).Select("referral_count").Where("id = ?", id).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// RecomputeRating пересчитывает average_rating и rating_count одним UPDATE по всем оценкам
func (r *UserRepositoryImpl) RecomputeRating(db *gorm.DB, id string) error {
	result := db.Exec(`
		UPDATE users
		SET average_rating = COALESCE((SELECT ROUND(AVG(value), 2) FROM ratings WHERE rated_user_id = ?), 0),
		    rating_count = (SELECT COUNT(*) FROM ratings WHERE rated_user_id = ?),
		    updated_at = ?
		WHERE id = ?`,
		id, id, db.NowFunc(), id,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) GrantPro(db *gorm.DB, id string, until time.Time) error {
	return r.UpdateFields(db, id, map[string]interface{}{
		"tier":           models.UserTierPro,
		"pro_expires_at": until,
	})
}

func (r *UserRepositoryImpl) SetFree(db *gorm.DB, id string) error {
	return r.UpdateFields(db, id, map[string]interface{}{
		"tier":           models.UserTierFree,
		"pro_expires_at": nil,
	})
}

// ExpireProTiers возвращает FREE всем, у кого PRO истек
func (r *UserRepositoryImpl) ExpireProTiers(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&models.User{}).
		Where("tier = ? AND pro_expires_at IS NOT NULL AND pro_expires_at < ?", models.UserTierPro, now).
		Updates(map[string]interface{}{"tier": models.UserTierFree})
	return result.RowsAffected, result.Error
}

func (r *UserRepositoryImpl) FindPublicWorkers(db *gorm.DB, limit int) ([]models.User, error) {
	var users []models.User
	err := db.Where("role = ?", models.UserRoleWorker).
		Order("created_at DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
