package workers_test

import (
	"context"
	"errors"
	"io"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"caterconnect_backend/internal/logger"
	"caterconnect_backend/internal/models"
	"caterconnect_backend/internal/repositories"
	"caterconnect_backend/internal/services"
	"caterconnect_backend/internal/testutil"
	"caterconnect_backend/internal/workers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	logger.InitWithWriter("test", io.Discard)
	os.Exit(m.Run())
}

func TestReminderWorker_NotifiesStaleStartedApplications(t *testing.T) {
	db := testutil.NewTestDB(t)
	publisher := &testutil.RecordingPublisher{}
	notifications := services.NewNotificationService(repositories.NewNotificationRepository(), publisher)
	worker := workers.NewReminderWorker(db, repositories.NewApplicationRepository(), repositories.NewNotificationRepository(), notifications)

	owner := testutil.CreateUser(t, db, models.UserRoleOwner)
	job := testutil.CreateJob(t, db, owner.ID, "Reception dinner")

	stale := testutil.CreateApplication(t, db, job.ID, testutil.CreateUser(t, db, models.UserRoleWorker).ID, models.ApplicationStatusStarted)
	testutil.CreateApplication(t, db, job.ID, testutil.CreateUser(t, db, models.UserRoleWorker).ID, models.ApplicationStatusStarted)
	require.NoError(t, db.Model(&models.Application{}).
		Where("id = ?", stale.ID).
		UpdateColumn("updated_at", time.Now().UTC().Add(-25*time.Hour)).Error)

	sent, err := workers.Run(context.Background(), worker)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sent)

	var stored []models.Notification
	require.NoError(t, db.Where("user_id = ?", owner.ID).Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, `Reminder: Please mark job "Reception dinner" as completed if finished.`, stored[0].Message)
	require.NotNil(t, stored[0].Link)
	assert.Equal(t, "/dashboard/my-jobs", *stored[0].Link)

	require.Len(t, publisher.Events(), 1)
	assert.Equal(t, owner.ID, publisher.Events()[0].UserID)
}

func TestReminderWorker_OncePerDay(t *testing.T) {
	db := testutil.NewTestDB(t)
	publisher := &testutil.RecordingPublisher{}
	notificationRepo := repositories.NewNotificationRepository()
	notifications := services.NewNotificationService(notificationRepo, publisher)
	worker := workers.NewReminderWorker(db, repositories.NewApplicationRepository(), notificationRepo, notifications)

	owner := testutil.CreateUser(t, db, models.UserRoleOwner)
	job := testutil.CreateJob(t, db, owner.ID, "Team offsite")
	for i := 0; i < 2; i++ {
		testutil.CreateApplication(t, db, job.ID, testutil.CreateUser(t, db, models.UserRoleWorker).ID, models.ApplicationStatusStarted)
	}
	require.NoError(t, db.Model(&models.Application{}).
		Where("job_id = ?", job.ID).
		UpdateColumn("updated_at", time.Now().UTC().Add(-25*time.Hour)).Error)

	sent, err := worker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), sent, "Два работника, одна работа - одно напоминание")

	sent, err = worker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent, "Повторный прогон в течение суток молчит")

	// сутки спустя напоминаем снова
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ?", owner.ID).
		UpdateColumn("created_at", time.Now().UTC().Add(-25*time.Hour)).Error)

	sent, err = worker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), sent)
	assert.Len(t, publisher.Events(), 2)
}

func TestReminderWorker_CancelledContext(t *testing.T) {
	db := testutil.NewTestDB(t)
	notifications := services.NewNotificationService(repositories.NewNotificationRepository(), nil)
	worker := workers.NewReminderWorker(db, repositories.NewApplicationRepository(), repositories.NewNotificationRepository(), notifications)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := worker.RunOnce(ctx)
	assert.Error(t, err)
}

func TestSubscriptionWorker_ExpiresPro(t *testing.T) {
	db := testutil.NewTestDB(t)
	worker := workers.NewSubscriptionWorker(db, repositories.NewUserRepository())

	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)
	expired := testutil.CreateUser(t, db, models.UserRoleOwner, testutil.WithPro(&past))
	active := testutil.CreateUser(t, db, models.UserRoleOwner, testutil.WithPro(&future))

	affected, err := workers.Run(context.Background(), worker)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	var tiers []models.User
	require.NoError(t, db.Find(&tiers).Error)
	for _, u := range tiers {
		switch u.ID {
		case expired.ID:
			assert.Equal(t, models.UserTierFree, u.Tier)
		case active.ID:
			assert.Equal(t, models.UserTierPro, u.Tier)
		}
	}

	affected, err = worker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, affected, "Повторный прогон ничего не меняет")
}

// countingJob считает запуски и сообщает о первом
type countingJob struct {
	runs  atomic.Int64
	first chan struct{}
	err   error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) RunOnce(ctx context.Context) (int64, error) {
	if j.runs.Add(1) == 1 && j.first != nil {
		close(j.first)
	}
	return 1, j.err
}

func TestRun_PropagatesError(t *testing.T) {
	job := &countingJob{err: errors.New("boom")}

	affected, err := workers.Run(context.Background(), job)
	assert.EqualError(t, err, "boom")
	assert.Equal(t, int64(1), affected)
}

func TestScheduler_RunsAndStops(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	scheduler := workers.NewScheduler()
	job := &countingJob{first: make(chan struct{})}
	require.NoError(t, scheduler.Add("@every 1s", job))

	ctx, cancel := context.WithCancel(context.Background())
	scheduler.Start(ctx)

	select {
	case <-job.first:
	case <-time.After(5 * time.Second):
		t.Fatal("задача не запустилась по расписанию")
	}

	cancel()
	scheduler.Wait()
	assert.GreaterOrEqual(t, job.runs.Load(), int64(1))
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	scheduler := workers.NewScheduler()
	err := scheduler.Add("every now and then", &countingJob{})
	assert.Error(t, err)
}
