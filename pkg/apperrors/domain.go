package apperrors

import (
	"net/http"
)

// =========================================================================
// Фабрики
// =========================================================================

// ErrNotFound - 404 поверх ошибки репозитория
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - 409, нарушен уникальный ключ
func ErrAlreadyExists(err error, domain, message string) *AppError {
	return Wrap(err, CodeAlreadyExists, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// =========================================================================
// Предопределенные ошибки
// =========================================================================

// --- Auth ---

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrProfileRequired = New(
	CodeForbidden,
	"profile",
	"Complete your profile first",
	http.StatusForbidden,
)

// --- Jobs ---

var ErrJobNotFound = New(CodeNotFound, "job", "Job not found", http.StatusNotFound)

var ErrNotJobOwner = New(
	CodeForbidden,
	"job",
	"Only the job owner can do this",
	http.StatusForbidden,
)

var ErrPayBelowMinimum = New(
	CodeValidationFailed,
	"job",
	"Daily pay must be at least ₹300",
	http.StatusBadRequest,
)

var ErrEmergencyRequiresPro = New(
	CodeForbidden,
	"subscription",
	"Emergency posts require PRO",
	http.StatusForbidden,
)

var ErrJobClosed = New(
	CodeInvalidOperation,
	"job",
	"This job is no longer accepting applications",
	http.StatusBadRequest,
)

// --- Applications ---

var ErrApplicationNotFound = New(CodeNotFound, "application", "Application not found", http.StatusNotFound)

var ErrDuplicateApplication = New(
	CodeAlreadyExists,
	"application",
	"You have already applied for this job",
	http.StatusConflict,
)

var ErrInvalidTransition = New(
	CodeInvalidStatus,
	"application",
	"This status change is not allowed",
	http.StatusBadRequest,
)

var ErrStatusChanged = New(
	CodeConflict,
	"application",
	"Application status was changed by another request",
	http.StatusConflict,
)

// --- Ratings ---

var ErrInvalidRating = New(
	CodeValidationFailed,
	"rating",
	"Rating must be 1-5",
	http.StatusBadRequest,
)

var ErrDuplicateRating = New(
	CodeAlreadyExists,
	"rating",
	"You have already rated this user for this job",
	http.StatusConflict,
)

var ErrSelfRating = New(
	CodeInvalidOperation,
	"rating",
	"You cannot rate yourself",
	http.StatusBadRequest,
)

var ErrRatingJobNotCompleted = New(
	CodeInvalidOperation,
	"rating",
	"You can rate only after the job is completed",
	http.StatusBadRequest,
)

// Оценивают друг друга только владелец работы и работник с заявкой COMPLETED
var ErrRatingNotParticipant = New(
	CodeInvalidOperation,
	"rating",
	"Only the job owner and the hired worker can rate each other",
	http.StatusBadRequest,
)

var ErrRatingNotFound = New(CodeNotFound, "rating", "Rating not found", http.StatusNotFound)

// --- Users & referrals ---

var ErrUserNotFound = New(CodeNotFound, "user", "User not found", http.StatusNotFound)

var ErrDuplicatePhone = New(
	CodeAlreadyExists,
	"user",
	"This phone number is already registered with another account",
	http.StatusConflict,
)

var ErrReferralCodeExhausted = New(
	CodeInternalError,
	"referral",
	"Could not generate a unique referral code",
	http.StatusInternalServerError,
)

// --- Notifications ---

var ErrNotificationNotFound = New(CodeNotFound, "notification", "Notification not found", http.StatusNotFound)

// --- Payments ---

var ErrPaymentOrderNotFound = New(CodeNotFound, "payment", "Payment order not found", http.StatusNotFound)

var ErrInvalidPaymentSignature = New(
	CodeForbidden,
	"payment",
	"Payment signature verification failed",
	http.StatusForbidden,
)

var ErrPaymentProvider = New(
	CodeExternalServiceError,
	"payment",
	"Payment provider error",
	http.StatusServiceUnavailable,
)
