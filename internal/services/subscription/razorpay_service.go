package subscription

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.razorpay.com"

// Order - ответ Razorpay Orders API
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type RazorpayService struct {
	keyID     string
	keySecret string
	BaseURL   string
	client    *http.Client
}

// NewRazorpayService ключи берутся из конфига (razorpay.key_id / key_secret)
func NewRazorpayService(keyID, keySecret, baseURL string) *RazorpayService {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &RazorpayService{
		keyID:     keyID,
		keySecret: keySecret,
		BaseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (r *RazorpayService) KeyID() string {
	return r.keyID
}

// CreateOrder создает заказ. Возвращает заказ и сырой ответ шлюза для аудита.
func (r *RazorpayService) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, []byte, error) {
	if r.keyID == "" || r.keySecret == "" {
		return nil, nil, fmt.Errorf("razorpay keys are not configured")
	}

	body, err := json.Marshal(orderRequest{Amount: amount, Currency: currency, Receipt: receipt})
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.SetBasicAuth(r.keyID, r.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("razorpay request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, nil, fmt.Errorf("razorpay response read failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, raw, fmt.Errorf("razorpay returned %d: %s", resp.StatusCode, string(raw))
	}

	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, raw, fmt.Errorf("razorpay response decode failed: %w", err)
	}
	if order.ID == "" {
		return nil, raw, fmt.Errorf("razorpay returned order without id")
	}
	return &order, raw, nil
}

// Sign - hex(HMAC-SHA256(secret, orderID|paymentID)), так же подписывает checkout
func (r *RazorpayService) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(r.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature проверяет подпись из ответа checkout
func (r *RazorpayService) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	if r.keySecret == "" || signature == "" {
		return false
	}
	expected := r.Sign(orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
