package services

import (
	"caterconnect_backend/internal/logger"
	"caterconnect_backend/internal/metrics"
	"caterconnect_backend/internal/models"
	"caterconnect_backend/internal/repositories"
	"caterconnect_backend/internal/services/dto"

	"gorm.io/gorm"
)

const (
	notificationListLimit = 20

	EventNotification = "notification"
)

// Publisher доставляет событие подключенным клиентам пользователя (ws.WebSocketManager)
type Publisher interface {
	Publish(userID, eventType string, data any)
}

type NotificationService interface {
	// Notify - best-effort: ошибки только логируются и никогда не возвращаются
	Notify(db *gorm.DB, userID, message, link string)

	GetNotifications(db *gorm.DB, userID string) []*dto.NotificationResponse
	GetUnreadCount(db *gorm.DB, userID string) int64
	MarkAsRead(db *gorm.DB, userID, notificationID string) error
	MarkAllAsRead(db *gorm.DB, userID string) (int64, error)
}

type NotificationServiceImpl struct {
	notificationRepo repositories.NotificationRepository
	publisher        Publisher
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	publisher Publisher,
) NotificationService {
	return &NotificationServiceImpl{
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

func (s *NotificationServiceImpl) Notify(db *gorm.DB, userID, message, link string) {
	ctx := db.Statement.Context

	notification := &models.Notification{
		UserID:  userID,
		Message: message,
	}
	if link != "" {
		notification.Link = &link
	}

	if err := s.notificationRepo.Create(db, notification); err != nil {
		metrics.RecordNotification("failed")
		logger.CtxWithError(ctx, "failed to store notification", err, "recipient", userID)
		return
	}
	metrics.RecordNotification("stored")

	if s.publisher != nil {
		s.publisher.Publish(userID, EventNotification, toNotificationResponse(notification))
		logger.CtxDebug(ctx, "notification published", "recipient", userID, "notification_id", notification.ID)
	}
}

func (s *NotificationServiceImpl) GetNotifications(db *gorm.DB, userID string) []*dto.NotificationResponse {
	notifications, err := s.notificationRepo.FindRecentByUser(db, userID, notificationListLimit)
	if err != nil {
		logger.CtxWithError(db.Statement.Context, "failed to load notifications", err)
		return []*dto.NotificationResponse{}
	}

	result := make([]*dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		result = append(result, toNotificationResponse(&notifications[i]))
	}
	return result
}

func (s *NotificationServiceImpl) GetUnreadCount(db *gorm.DB, userID string) int64 {
	count, err := s.notificationRepo.CountUnread(db, userID)
	if err != nil {
		logger.CtxWithError(db.Statement.Context, "failed to count unread notifications", err)
		return 0
	}
	return count
}

func (s *NotificationServiceImpl) MarkAsRead(db *gorm.DB, userID, notificationID string) error {
	return mapRepoError(s.notificationRepo.MarkAsRead(db, notificationID, userID))
}

func (s *NotificationServiceImpl) MarkAllAsRead(db *gorm.DB, userID string) (int64, error) {
	updated, err := s.notificationRepo.MarkAllAsRead(db, userID)
	if err != nil {
		return 0, mapRepoError(err)
	}
	return updated, nil
}
