package workers

import (
	"context"
	"fmt"
	"time"

	"caterconnect_backend/internal/repositories"
	"caterconnect_backend/internal/services"

	"gorm.io/gorm"
)

const (
	ReminderWorkerName = "completion_reminder"

	reminderStaleAfter = 24 * time.Hour
	reminderCooldown   = 24 * time.Hour
	reminderLink       = "/dashboard/my-jobs"
)

// ReminderWorker напоминает владельцу закрыть работу, если заявка
// висит в STARTED дольше суток. По одной работе не чаще раза в сутки.
type ReminderWorker struct {
	db                  *gorm.DB
	applicationRepo     repositories.ApplicationRepository
	notificationRepo    repositories.NotificationRepository
	notificationService services.NotificationService
	staleAfter          time.Duration
	cooldown            time.Duration
}

func NewReminderWorker(
	db *gorm.DB,
	applicationRepo repositories.ApplicationRepository,
	notificationRepo repositories.NotificationRepository,
	notificationService services.NotificationService,
) *ReminderWorker {
	return &ReminderWorker{
		db:                  db,
		applicationRepo:     applicationRepo,
		notificationRepo:    notificationRepo,
		notificationService: notificationService,
		staleAfter:          reminderStaleAfter,
		cooldown:            reminderCooldown,
	}
}

func (w *ReminderWorker) Name() string {
	return ReminderWorkerName
}

// RunOnce возвращает число отправленных напоминаний
func (w *ReminderWorker) RunOnce(ctx context.Context) (int64, error) {
	db := w.db.WithContext(ctx)
	now := time.Now().UTC()
	before := now.Add(-w.staleAfter)

	applications, err := w.applicationRepo.FindStartedBefore(db, before)
	if err != nil {
		return 0, fmt.Errorf("load stale applications: %w", err)
	}

	var sent int64
	for _, application := range applications {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if application.Job == nil {
			continue
		}

		message := fmt.Sprintf("Reminder: Please mark job \"%s\" as completed if finished.", application.Job.Title)
		reminded, err := w.notificationRepo.ExistsSince(db, application.Job.OwnerID, message, now.Add(-w.cooldown))
		if err != nil {
			return sent, fmt.Errorf("check previous reminder: %w", err)
		}
		if reminded {
			continue
		}

		w.notificationService.Notify(db, application.Job.OwnerID, message, reminderLink)
		sent++
	}
	return sent, nil
}
