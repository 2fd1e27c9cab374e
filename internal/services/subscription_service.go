package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"caterconnect_backend/internal/logger"
	"caterconnect_backend/internal/models"
	"caterconnect_backend/internal/repositories"
	"caterconnect_backend/internal/services/dto"
	"caterconnect_backend/internal/services/subscription"
	"caterconnect_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentGateway - то, что нужно от Razorpay. В тестах подменяется.
type PaymentGateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*subscription.Order, []byte, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
}

type SubscriptionService interface {
	CreateOrder(db *gorm.DB, userID string) (*dto.CreateOrderResponse, error)
	VerifyPayment(db *gorm.DB, userID string, req *dto.VerifyPaymentRequest) (*dto.SubscriptionResponse, error)
	Downgrade(db *gorm.DB, userID string) (*dto.SubscriptionResponse, error)
	GetSubscription(db *gorm.DB, userID string) (*dto.SubscriptionResponse, error)
}

type SubscriptionServiceImpl struct {
	userRepo            repositories.UserRepository
	paymentRepo         repositories.PaymentRepository
	gateway             PaymentGateway
	notificationService NotificationService
	amount              int64
	currency            string
}

func NewSubscriptionService(
	userRepo repositories.UserRepository,
	paymentRepo repositories.PaymentRepository,
	gateway PaymentGateway,
	notificationService NotificationService,
	amount int64,
	currency string,
) SubscriptionService {
	return &SubscriptionServiceImpl{
		userRepo:            userRepo,
		paymentRepo:         paymentRepo,
		gateway:             gateway,
		notificationService: notificationService,
		amount:              amount,
		currency:            currency,
	}
}

func (s *SubscriptionServiceImpl) CreateOrder(db *gorm.DB, userID string) (*dto.CreateOrderResponse, error) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := s.userRepo.FindByID(db, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrProfileRequired
		}
		return nil, apperrors.DatabaseError(err)
	}

	receipt := "receipt_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	order, raw, err := s.gateway.CreateOrder(ctx, s.amount, s.currency, receipt)
	if err != nil {
		logger.CtxWithError(ctx, "razorpay order creation failed", err, "receipt", receipt)
		return nil, apperrors.ErrPaymentProvider.WithError(err)
	}

	paymentOrder := &models.PaymentOrder{
		UserID:          userID,
		RazorpayOrderID: order.ID,
		Amount:          s.amount,
		Currency:        s.currency,
		Receipt:         receipt,
		Status:          models.PaymentStatusCreated,
	}
	if len(raw) > 0 {
		paymentOrder.GatewayResponse = datatypes.JSON(raw)
	}
	if err := s.paymentRepo.Create(db, paymentOrder); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	logger.CtxInfo(ctx, "payment order created", "order_id", order.ID)
	return &dto.CreateOrderResponse{
		OrderID:  order.ID,
		Amount:   s.amount,
		Currency: s.currency,
		KeyID:    s.gateway.KeyID(),
	}, nil
}

func (s *SubscriptionServiceImpl) VerifyPayment(db *gorm.DB, userID string, req *dto.VerifyPaymentRequest) (*dto.SubscriptionResponse, error) {
	if !s.gateway.VerifyPaymentSignature(req.OrderID, req.PaymentID, req.Signature) {
		logger.CtxWarn(db.Statement.Context, "invalid payment signature", "order_id", req.OrderID)
		return nil, apperrors.ErrInvalidPaymentSignature
	}

	tx, err := beginTx(db)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order, err := s.paymentRepo.FindByRazorpayOrderID(tx, req.OrderID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if order.UserID != userID {
		return nil, apperrors.ErrPaymentOrderNotFound
	}

	now := time.Now().UTC()
	paid, err := s.paymentRepo.MarkPaid(tx, order.ID, req.PaymentID, now)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	if paid {
		user, err := s.userRepo.FindByIDForUpdate(tx, userID)
		if err != nil {
			return nil, mapRepoError(err)
		}
		base := now
		if user.ProExpiresAt != nil && user.ProExpiresAt.After(now) {
			base = *user.ProExpiresAt
		}
		if err := s.userRepo.GrantPro(tx, userID, base.AddDate(0, 1, 0)); err != nil {
			return nil, mapRepoError(err)
		}
	}

	user, err := s.userRepo.FindByID(tx, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := commitTx(tx); err != nil {
		return nil, err
	}

	if paid {
		logger.CtxInfo(db.Statement.Context, "pro activated", "order_id", req.OrderID, "until", user.ProExpiresAt)
		s.notificationService.Notify(db, userID, "Welcome to PRO! Your plan is now active.", profileLink)
	}
	return toSubscriptionResponse(user), nil
}

func (s *SubscriptionServiceImpl) Downgrade(db *gorm.DB, userID string) (*dto.SubscriptionResponse, error) {
	if err := s.userRepo.SetFree(db, userID); err != nil {
		return nil, mapRepoError(err)
	}
	logger.CtxInfo(db.Statement.Context, "subscription downgraded")
	return &dto.SubscriptionResponse{Tier: string(models.UserTierFree)}, nil
}

func (s *SubscriptionServiceImpl) GetSubscription(db *gorm.DB, userID string) (*dto.SubscriptionResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return toSubscriptionResponse(user), nil
}

func toSubscriptionResponse(u *models.User) *dto.SubscriptionResponse {
	return &dto.SubscriptionResponse{
		Tier:         string(u.Tier),
		ProExpiresAt: u.ProExpiresAt,
	}
}
