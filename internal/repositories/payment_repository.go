package repositories

import (
	"errors"
	"time"

	"caterconnect_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrPaymentOrderNotFound = errors.New("payment order not found")
)

type PaymentRepository interface {
	Create(db *gorm.DB, order *models.PaymentOrder) error
	FindByRazorpayOrderID(db *gorm.DB, orderID string) (*models.PaymentOrder, error)
	MarkPaid(db *gorm.DB, id, paymentID string, paidAt time.Time) (bool, error)
}

type PaymentRepositoryImpl struct{}

func NewPaymentRepository() PaymentRepository {
	return &PaymentRepositoryImpl{}
}

func (r *PaymentRepositoryImpl) Create(db *gorm.DB, order *models.PaymentOrder) error {
	return db.Create(order).Error
}

func (r *PaymentRepositoryImpl) FindByRazorpayOrderID(db *gorm.DB, orderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	if err := forUpdate(db).Where("razorpay_order_id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// MarkPaid переводит CREATED -> PAID. false - заказ уже был оплачен раньше.
func (r *PaymentRepositoryImpl) MarkPaid(db *gorm.DB, id, paymentID string, paidAt time.Time) (bool, error) {
	result := db.Model(&models.PaymentOrder{}).
		Where("id = ? AND status = ?", id, models.PaymentStatusCreated).
		Updates(map[string]interface{}{
			"status":              models.PaymentStatusPaid,
			"razorpay_payment_id": paymentID,
			"paid_at":             paidAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
