package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.razorpay.com/v1"

// RazorpayClient talks to the Razorpay orders API and verifies its payment
// signatures (HMAC-SHA256 over "orderID|paymentID" with the key secret).
type RazorpayClient struct {
	keyID     string
	keySecret string
	baseURL   string
	http      *http.Client
}

// NewRazorpayClient creates a gateway client with a bounded request timeout.
// A timed-out or failed request surfaces as ErrUnavailable, never as success.
func NewRazorpayClient(keyID, keySecret string, timeout time.Duration) *RazorpayClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RazorpayClient{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   defaultBaseURL,
		http:      &http.Client{Timeout: timeout},
	}
}

type createOrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

// CreateOrder creates a remote order for the given amount in minor units
func (c *RazorpayClient) CreateOrder(ctx context.Context, amountMinorUnits int64, currency, receipt string) (*RemoteOrder, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:         amountMinorUnits,
		Currency:       currency,
		Receipt:        receipt,
		PaymentCapture: 1,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: gateway returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var order RemoteOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("%w: failed to decode order response: %v", ErrUnavailable, err)
	}
	return &order, nil
}

// VerifySignature checks the payment signature with a constant-time compare
func (c *RazorpayClient) VerifySignature(paymentID, orderID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
