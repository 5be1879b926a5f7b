package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	client := NewRazorpayClient("key", "secret", time.Second)

	valid := sign("secret", "order_1", "pay_1")

	assert.True(t, client.VerifySignature("pay_1", "order_1", valid))
	assert.False(t, client.VerifySignature("pay_1", "order_1", "tampered"))
	assert.False(t, client.VerifySignature("pay_2", "order_1", valid), "signature bound to payment id")
	assert.False(t, client.VerifySignature("pay_1", "order_2", valid), "signature bound to order id")
	assert.False(t, client.VerifySignature("pay_1", "order_1", ""))
}

func TestVerifySignatureWrongSecret(t *testing.T) {
	client := NewRazorpayClient("key", "secret", time.Second)
	forged := sign("other-secret", "order_1", "pay_1")
	assert.False(t, client.VerifySignature("pay_1", "order_1", forged))
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"order_xyz","amount":1000,"currency":"INR","status":"created"}`))
	}))
	defer srv.Close()

	client := NewRazorpayClient("key", "secret", time.Second)
	client.baseURL = srv.URL

	order, err := client.CreateOrder(context.Background(), 1000, "INR", "receipt_1")

	require.NoError(t, err)
	assert.Equal(t, "order_xyz", order.ID)
	assert.Equal(t, int64(1000), order.Amount)
}

func TestCreateOrderGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewRazorpayClient("key", "secret", time.Second)
	client.baseURL = srv.URL

	_, err := client.CreateOrder(context.Background(), 1000, "INR", "receipt_1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCreateOrderTimeoutIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewRazorpayClient("key", "secret", 50*time.Millisecond)
	client.baseURL = srv.URL

	_, err := client.CreateOrder(context.Background(), 1000, "INR", "receipt_1")
	assert.ErrorIs(t, err, ErrUnavailable, "timeout must never read as success")
}
