package models

import "time"

// Event types
const (
	EventTypePurchaseCompleted = "PURCHASE_COMPLETED"
	EventTypeTemplateViewed    = "TEMPLATE_VIEWED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// PurchaseCompletedEvent is published once per newly finalized purchase.
// Redelivered copies carry the same EventID so consumers can deduplicate.
type PurchaseCompletedEvent struct {
	BaseEvent
	PurchaseID int64  `json:"purchase_id"`
	UserID     int64  `json:"user_id"`
	TemplateID int64  `json:"template_id"`
	Amount     int64  `json:"amount"`
	OrderID    string `json:"order_id"`
	PaymentID  string `json:"payment_id"`
}

// TemplateViewedEvent is published on catalog detail views
type TemplateViewedEvent struct {
	BaseEvent
	TemplateID int64 `json:"template_id"`
	ViewerID   int64 `json:"viewer_id,omitempty"`
}
