package gateway

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the gateway is not configured or cannot be
// reached within the call's deadline.
var ErrUnavailable = errors.New("payment gateway unavailable")

// RemoteOrder is the handle returned by the gateway for a created order
type RemoteOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Gateway is the payment provider capability consumed by checkout: create a
// remote order for an amount in minor units, and verify a payment signature.
// VerifySignature returns false for a mismatch; invalid is a normal outcome,
// never an error.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinorUnits int64, currency, receipt string) (*RemoteOrder, error)
	VerifySignature(paymentID, orderID, signature string) bool
}
