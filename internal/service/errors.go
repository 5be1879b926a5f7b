package service

import "errors"

// Error taxonomy surfaced to the API layer. Every failure is recoverable by
// retrying the originating action except ErrFinalizeFailed, which indicates a
// partial-application state and should be escalated if it recurs.
var (
	ErrEmptyCart               = errors.New("cart is empty")
	ErrAlreadyOwned            = errors.New("template already owned")
	ErrGatewayUnavailable      = errors.New("payment gateway unavailable")
	ErrMissingVerificationData = errors.New("missing payment verification data")
	ErrSignatureInvalid        = errors.New("payment signature invalid")
	ErrFinalizeFailed          = errors.New("payment finalization failed")
	ErrPurchaseRequired        = errors.New("purchase required")
	ErrInvalidRating           = errors.New("rating must be between 1 and 5")
	ErrNotReviewOwner          = errors.New("review belongs to another user")
	ErrNotTemplateOwner        = errors.New("template belongs to another user")
)
