package services

import (
	"strings"
	"testing"
	"time"

	"caterconnect_backend/internal/models"
	"caterconnect_backend/internal/services/dto"
	"caterconnect_backend/internal/testutil"
	"caterconnect_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const welcomeMessage = "Welcome to PRO! Your plan is now active."

func TestCreateOrder_StoresOrder(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, models.UserRoleOwner)

	order, err := env.subscriptions.CreateOrder(env.db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9900), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "rzp_test_fake", order.KeyID)

	var stored models.PaymentOrder
	require.NoError(t, env.db.First(&stored, "razorpay_order_id = ?", order.OrderID).Error)
	assert.Equal(t, user.ID, stored.UserID)
	assert.Equal(t, models.PaymentStatusCreated, stored.Status)
	assert.True(t, strings.HasPrefix(stored.Receipt, "receipt_"))
	assert.Len(t, stored.Receipt, len("receipt_")+16)
	assert.Contains(t, string(stored.GatewayResponse), order.OrderID)
}

func TestCreateOrder_Failures(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.subscriptions.CreateOrder(env.db, "00000000-0000-0000-0000-000000000000")
	assertAppError(t, err, apperrors.ErrProfileRequired)

	user := testutil.CreateUser(t, env.db, models.UserRoleOwner)
	env.gateway.Fail = true
	_, err = env.subscriptions.CreateOrder(env.db, user.ID)
	assertAppError(t, err, apperrors.ErrPaymentProvider)

	var count int64
	require.NoError(t, env.db.Model(&models.PaymentOrder{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestVerifyPayment_ActivatesProOnce(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, models.UserRoleOwner)

	order, err := env.subscriptions.CreateOrder(env.db, user.ID)
	require.NoError(t, err)

	req := &dto.VerifyPaymentRequest{
		OrderID:   order.OrderID,
		PaymentID: "pay_123",
		Signature: env.gateway.Sign(order.OrderID, "pay_123"),
	}

	first, err := env.subscriptions.VerifyPayment(env.db, user.ID, req)
	require.NoError(t, err)
	assert.Equal(t, string(models.UserTierPro), first.Tier)
	require.NotNil(t, first.ProExpiresAt)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 1, 0), *first.ProExpiresAt, time.Minute)

	second, err := env.subscriptions.VerifyPayment(env.db, user.ID, req)
	require.NoError(t, err)
	assert.Equal(t, string(models.UserTierPro), second.Tier)
	require.NotNil(t, second.ProExpiresAt)
	assert.True(t, first.ProExpiresAt.Equal(*second.ProExpiresAt), "Повторная проверка не продлевает PRO")

	welcomes := 0
	for _, m := range env.messagesFor(t, user.ID) {
		if m == welcomeMessage {
			welcomes++
		}
	}
	assert.Equal(t, 1, welcomes)
}

func TestVerifyPayment_ExtendsActivePro(t *testing.T) {
	env := newTestEnv(t)
	current := time.Now().UTC().Add(10 * 24 * time.Hour)
	user := testutil.CreateUser(t, env.db, models.UserRoleOwner, testutil.WithPro(&current))

	order, err := env.subscriptions.CreateOrder(env.db, user.ID)
	require.NoError(t, err)

	result, err := env.subscriptions.VerifyPayment(env.db, user.ID, &dto.VerifyPaymentRequest{
		OrderID:   order.OrderID,
		PaymentID: "pay_ext",
		Signature: env.gateway.Sign(order.OrderID, "pay_ext"),
	})
	require.NoError(t, err)
	require.NotNil(t, result.ProExpiresAt)
	assert.WithinDuration(t, current.AddDate(0, 1, 0), *result.ProExpiresAt, time.Second)
}

func TestVerifyPayment_Rejections(t *testing.T) {
	env := newTestEnv(t)
	buyer := testutil.CreateUser(t, env.db, models.UserRoleOwner)
	other := testutil.CreateUser(t, env.db, models.UserRoleOwner)

	order, err := env.subscriptions.CreateOrder(env.db, buyer.ID)
	require.NoError(t, err)

	_, err = env.subscriptions.VerifyPayment(env.db, buyer.ID, &dto.VerifyPaymentRequest{
		OrderID:   order.OrderID,
		PaymentID: "pay_1",
		Signature: "deadbeef",
	})
	assertAppError(t, err, apperrors.ErrInvalidPaymentSignature)

	_, err = env.subscriptions.VerifyPayment(env.db, other.ID, &dto.VerifyPaymentRequest{
		OrderID:   order.OrderID,
		PaymentID: "pay_1",
		Signature: env.gateway.Sign(order.OrderID, "pay_1"),
	})
	assertAppError(t, err, apperrors.ErrPaymentOrderNotFound)

	_, err = env.subscriptions.VerifyPayment(env.db, buyer.ID, &dto.VerifyPaymentRequest{
		OrderID:   "order_unknown",
		PaymentID: "pay_1",
		Signature: env.gateway.Sign("order_unknown", "pay_1"),
	})
	assertAppError(t, err, apperrors.ErrPaymentOrderNotFound)

	assert.Equal(t, models.UserTierFree, env.reloadUser(t, buyer.ID).Tier)
	assert.Equal(t, models.UserTierFree, env.reloadUser(t, other.ID).Tier)
}

func TestDowngradeAndGetSubscription(t *testing.T) {
	env := newTestEnv(t)
	until := time.Now().UTC().Add(48 * time.Hour)
	user := testutil.CreateUser(t, env.db, models.UserRoleOwner, testutil.WithPro(&until))

	current, err := env.subscriptions.GetSubscription(env.db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.UserTierPro), current.Tier)

	downgraded, err := env.subscriptions.Downgrade(env.db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.UserTierFree), downgraded.Tier)

	stored := env.reloadUser(t, user.ID)
	assert.Equal(t, models.UserTierFree, stored.Tier)
	assert.Nil(t, stored.ProExpiresAt)

	_, err = env.subscriptions.GetSubscription(env.db, "00000000-0000-0000-0000-000000000000")
	assertAppError(t, err, apperrors.ErrUserNotFound)
}
