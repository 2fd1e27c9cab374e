package repositories

import (
	"errors"
	"time"

	"caterconnect_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
)

type NotificationRepository interface {
	Create(db *gorm.DB, notification *models.Notification) error
	FindRecentByUser(db *gorm.DB, userID string, limit int) ([]models.Notification, error)
	CountUnread(db *gorm.DB, userID string) (int64, error)
	MarkAsRead(db *gorm.DB, id, userID string) error
	MarkAllAsRead(db *gorm.DB, userID string) (int64, error)
	ExistsSince(db *gorm.DB, userID, message string, since time.Time) (bool, error)
}

type NotificationRepositoryImpl struct{}

func NewNotificationRepository() NotificationRepository {
	return &NotificationRepositoryImpl{}
}

func (r *NotificationRepositoryImpl) Create(db *gorm.DB, notification *models.Notification) error {
	return db.Create(notification).Error
}

func (r *NotificationRepositoryImpl) FindRecentByUser(db *gorm.DB, userID string, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepositoryImpl) CountUnread(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkAsRead - чужое уведомление выглядит как несуществующее
func (r *NotificationRepositoryImpl) MarkAsRead(db *gorm.DB, id, userID string) error {
	result := db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepositoryImpl) MarkAllAsRead(db *gorm.DB, userID string) (int64, error) {
	result := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// ExistsSince - было ли у пользователя такое же уведомление после since
func (r *NotificationRepositoryImpl) ExistsSince(db *gorm.DB, userID, message string, since time.Time) (bool, error) {
	var count int64
	err := db.Model(&models.Notification{}).
		Where("user_id = ? AND message = ? AND created_at >= ?", userID, message, since).
		Count(&count).Error
	return count > 0, err
}
