package services

import (
	"errors"

	"caterconnect_backend/internal/repositories"
	"caterconnect_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// mapRepoError переводит ошибки репозиториев в AppError.
// Уже готовые AppError проходят как есть.
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		return apperrors.ErrUserNotFound.WithError(err)
	case errors.Is(err, repositories.ErrJobNotFound):
		return apperrors.ErrJobNotFound.WithError(err)
	case errors.Is(err, repositories.ErrApplicationNotFound):
		return apperrors.ErrApplicationNotFound.WithError(err)
	case errors.Is(err, repositories.ErrApplicationExists):
		return apperrors.ErrDuplicateApplication.WithError(err)
	case errors.Is(err, repositories.ErrStatusMismatch):
		return apperrors.ErrStatusChanged.WithError(err)
	case errors.Is(err, repositories.ErrRatingNotFound):
		return apperrors.ErrRatingNotFound.WithError(err)
	case errors.Is(err, repositories.ErrRatingExists):
		return apperrors.ErrDuplicateRating.WithError(err)
	case errors.Is(err, repositories.ErrNotificationNotFound):
		return apperrors.ErrNotificationNotFound.WithError(err)
	case errors.Is(err, repositories.ErrPaymentOrderNotFound):
		return apperrors.ErrPaymentOrderNotFound.WithError(err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.ErrAlreadyExists(err, "resource", "Resource already exists")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrNotFound(err)
	default:
		return apperrors.DatabaseError(err)
	}
}

// beginTx - db.Begin с переводом ошибки
func beginTx(db *gorm.DB) (*gorm.DB, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.DatabaseError(tx.Error)
	}
	return tx, nil
}

func commitTx(tx *gorm.DB) error {
	if err := tx.Commit().Error; err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}
