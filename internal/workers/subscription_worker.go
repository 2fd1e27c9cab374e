package workers

import (
	"context"
	"fmt"
	"time"

	"caterconnect_backend/internal/repositories"

	"gorm.io/gorm"
)

const SubscriptionWorkerName = "pro_expiry"

// SubscriptionWorker возвращает FREE пользователям с истекшим PRO
type SubscriptionWorker struct {
	db       *gorm.DB
	userRepo repositories.UserRepository
}

func NewSubscriptionWorker(db *gorm.DB, userRepo repositories.UserRepository) *SubscriptionWorker {
	return &SubscriptionWorker{db: db, userRepo: userRepo}
}

func (w *SubscriptionWorker) Name() string {
	return SubscriptionWorkerName
}

func (w *SubscriptionWorker) RunOnce(ctx context.Context) (int64, error) {
	expired, err := w.userRepo.ExpireProTiers(w.db.WithContext(ctx), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("expire pro tiers: %w", err)
	}
	return expired, nil
}
