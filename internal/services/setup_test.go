package services

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"testing"

	"caterconnect_backend/internal/logger"
	"caterconnect_backend/internal/models"
	"caterconnect_backend/internal/repositories"
	"caterconnect_backend/internal/services/dto"
	"caterconnect_backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.InitWithWriter("test", io.Discard)
	os.Exit(m.Run())
}

// testEnv - сервисы поверх отдельной SQLite, события копятся в publisher
type testEnv struct {
	db        *gorm.DB
	publisher *testutil.RecordingPublisher
	gateway   *testutil.FakeGateway

	userRepo repositories.UserRepository

	users         *UserServiceImpl
	jobs          JobService
	applications  ApplicationService
	ratings       RatingService
	notifications NotificationService
	subscriptions SubscriptionService
	public        PublicService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	publisher := &testutil.RecordingPublisher{}
	gateway := testutil.NewFakeGateway()

	userRepo := repositories.NewUserRepository()
	jobRepo := repositories.NewJobRepository()
	applicationRepo := repositories.NewApplicationRepository()
	ratingRepo := repositories.NewRatingRepository()
	notificationRepo := repositories.NewNotificationRepository()
	paymentRepo := repositories.NewPaymentRepository()

	notificationService := NewNotificationService(notificationRepo, publisher)

	return &testEnv{
		db:            db,
		publisher:     publisher,
		gateway:       gateway,
		userRepo:      userRepo,
		users:         NewUserService(userRepo, notificationService).(*UserServiceImpl),
		jobs:          NewJobService(jobRepo, userRepo),
		applications:  NewApplicationService(applicationRepo, jobRepo, userRepo, notificationService),
		ratings:       NewRatingService(ratingRepo, jobRepo, userRepo, applicationRepo, notificationService),
		notifications: notificationService,
		subscriptions: NewSubscriptionService(userRepo, paymentRepo, gateway, notificationService, 9900, "INR"),
		public:        NewPublicService(jobRepo, userRepo),
	}
}

// messagesFor - тексты уведомлений пользователя из БД, новые первыми
func (e *testEnv) messagesFor(t *testing.T, userID string) []string {
	t.Helper()

	var notifications []models.Notification
	require.NoError(t, e.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&notifications).Error)

	messages := make([]string, 0, len(notifications))
	for _, n := range notifications {
		messages = append(messages, n.Message)
	}
	return messages
}

func (e *testEnv) reloadUser(t *testing.T, id string) *models.User {
	t.Helper()

	user, err := e.userRepo.FindByID(e.db, id)
	require.NoError(t, err)
	return user
}

var syncPhoneSeq atomic.Int64

func newIdentity(metadata map[string]interface{}) *dto.Identity {
	id := uuid.NewString()
	return &dto.Identity{
		ID:           id,
		Email:        "sync_" + id[:8] + "@test.com",
		UserMetadata: metadata,
	}
}

func newIdentityWithID(id, email string) *dto.Identity {
	return &dto.Identity{ID: id, Email: email}
}

func syncRequest(role, name string) *dto.SyncProfileRequest {
	return &dto.SyncProfileRequest{
		Role:     role,
		FullName: name,
		Phone:    fmt.Sprintf("8%09d", syncPhoneSeq.Add(1)),
	}
}

func assertAppError(t *testing.T, err error, target error) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, target)
}
