package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"caterconnect_backend/database"
	"caterconnect_backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// JWTSecret - секрет, которым тесты подписывают токены Supabase
const JWTSecret = "test_supabase_jwt_secret_0123456789"

var phoneSeq atomic.Int64

// NewTestDB создает отдельную in-memory SQLite на каждый тест.
// Одно соединение: транзакции сервисов идут строго по очереди.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := database.GormConfig("test")
	cfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	require.NoError(t, err, "Не удалось открыть тестовую БД")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, database.AutoMigrate(db), "AutoMigrate для тестовой БД")

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// UserOption меняет пользователя перед вставкой
type UserOption func(*models.User)

func WithName(name string) UserOption {
	return func(u *models.User) { u.FullName = name }
}

func WithPro(expiresAt *time.Time) UserOption {
	return func(u *models.User) {
		u.Tier = models.UserTierPro
		u.ProExpiresAt = expiresAt
	}
}

func WithReferralCode(code string) UserOption {
	return func(u *models.User) { u.ReferralCode = &code }
}

// CreateUser создает профиль с уникальными email и телефоном
func CreateUser(t *testing.T, db *gorm.DB, role models.UserRole, opts ...UserOption) *models.User {
	t.Helper()

	id := uuid.NewString()
	phone := fmt.Sprintf("9%09d", phoneSeq.Add(1))
	email := "user_" + id[:8] + "@test.com"
	user := &models.User{
		BaseModel: models.BaseModel{ID: id},
		Email:     &email,
		FullName:  "Test User",
		Role:      role,
		Tier:      models.UserTierFree,
		Phone:     &phone,
	}
	for _, opt := range opts {
		opt(user)
	}

	require.NoError(t, db.Create(user).Error, "Не удалось создать пользователя")
	return user
}

// CreateJob создает открытую работу с оплатой выше минимума
func CreateJob(t *testing.T, db *gorm.DB, ownerID, title string) *models.Job {
	t.Helper()

	job := &models.Job{
		OwnerID:  ownerID,
		Title:    title,
		Pay:      800,
		Category: models.DefaultJobCategory,
		Location: models.DefaultJobLocation,
		Status:   models.JobStatusOpen,
	}
	require.NoError(t, db.Create(job).Error, "Не удалось создать работу")
	return job
}

// CreateCompletedJob - завершенная работа, у каждого из workerIDs заявка COMPLETED
func CreateCompletedJob(t *testing.T, db *gorm.DB, ownerID, title string, workerIDs ...string) *models.Job {
	t.Helper()

	job := CreateJob(t, db, ownerID, title)
	require.NoError(t, db.Model(job).Update("status", models.JobStatusCompleted).Error)
	job.Status = models.JobStatusCompleted
	for _, workerID := range workerIDs {
		CreateApplication(t, db, job.ID, workerID, models.ApplicationStatusCompleted)
	}
	return job
}

func CreateApplication(t *testing.T, db *gorm.DB, jobID, workerID string, status models.ApplicationStatus) *models.Application {
	t.Helper()

	application := &models.Application{
		JobID:    jobID,
		WorkerID: workerID,
		Status:   status,
	}
	require.NoError(t, db.Create(application).Error, "Не удалось создать заявку")
	return application
}

// Token подписывает access token так же, как Supabase (HS256, sub, email, exp)
func Token(t *testing.T, userID, email string, metadata map[string]interface{}) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  "authenticated",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	if metadata != nil {
		claims["user_metadata"] = metadata
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(JWTSecret))
	require.NoError(t, err)
	return signed
}
