package testutil

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"caterconnect_backend/internal/services/subscription"
)

// PublishedEvent - одно событие, отправленное через Publisher
type PublishedEvent struct {
	UserID string
	Type   string
	Data   any
}

// RecordingPublisher запоминает события вместо отправки в websocket
type RecordingPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

func (p *RecordingPublisher) Publish(userID, eventType string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, PublishedEvent{UserID: userID, Type: eventType, Data: data})
}

func (p *RecordingPublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PublishedEvent(nil), p.events...)
}

// FakeGateway - Razorpay без сети. Подпись считается тем же HMAC, что и у шлюза.
type FakeGateway struct {
	Secret string
	Fail   bool

	mu     sync.Mutex
	orders int
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{Secret: "fake_razorpay_secret"}
}

func (g *FakeGateway) KeyID() string {
	return "rzp_test_fake"
}

func (g *FakeGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (*subscription.Order, []byte, error) {
	if g.Fail {
		return nil, nil, errors.New("gateway unavailable")
	}

	g.mu.Lock()
	g.orders++
	id := fmt.Sprintf("order_fake%04d", g.orders)
	g.mu.Unlock()

	raw := fmt.Sprintf(`{"id":%q,"amount":%d,"currency":%q,"receipt":%q,"status":"created"}`, id, amount, currency, receipt)
	return &subscription.Order{
		ID:       id,
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, []byte(raw), nil
}

// Sign - подпись, которую вернул бы checkout
func (g *FakeGateway) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(g.Secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (g *FakeGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return hmac.Equal([]byte(g.Sign(orderID, paymentID)), []byte(signature))
}
