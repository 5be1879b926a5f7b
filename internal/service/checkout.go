package service

import (
	"context"
	"fmt"
	"time"

	"template-marketplace/internal/gateway"
	"template-marketplace/internal/models"
	"template-marketplace/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// finalizeLockTTL bounds how long a crashed finalize can hold its lock
const finalizeLockTTL = 30 * time.Second

// CheckoutStore is the persistence surface the checkout flow needs
type CheckoutStore interface {
	ListCart(ctx context.Context, userID int64) ([]models.CartEntry, error)
	FinalizeCart(ctx context.Context, userID int64, orderID, paymentID string) ([]models.Purchase, error)
}

// FinalizeLocker serializes concurrent finalize calls per user. The database
// unique constraint on (user, template) stays authoritative; the lock only
// cuts down duplicate work from webhook/client races.
type FinalizeLocker interface {
	AcquireFinalizeLock(ctx context.Context, userID int64, ttl time.Duration) (bool, error)
	ReleaseFinalizeLock(ctx context.Context, userID int64) error
}

// PurchaseEventPublisher announces newly finalized purchases
type PurchaseEventPublisher interface {
	PublishPurchaseCompleted(ctx context.Context, event *models.PurchaseCompletedEvent) error
}

// CheckoutService turns carts into gateway orders and verified payments into
// durable purchases.
type CheckoutService struct {
	store     CheckoutStore
	gateway   gateway.Gateway
	locker    FinalizeLocker
	publisher PurchaseEventPublisher
	currency  string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewCheckoutService creates a checkout service. gw may be nil when no
// gateway credentials are configured; calls then fail with
// ErrGatewayUnavailable rather than crashing at startup. locker and publisher
// may be nil as well (locking and events are then skipped).
func NewCheckoutService(
	store CheckoutStore,
	gw gateway.Gateway,
	locker FinalizeLocker,
	publisher PurchaseEventPublisher,
	currency string,
	gatewayTimeout time.Duration,
) *CheckoutService {
	if currency == "" {
		currency = "INR"
	}
	if gatewayTimeout <= 0 {
		gatewayTimeout = 10 * time.Second
	}
	return &CheckoutService{
		store:     store,
		gateway:   gw,
		locker:    locker,
		publisher: publisher,
		currency:  currency,
		timeout:   gatewayTimeout,
		logger:    util.GetLogger(),
	}
}

// CreateOrderResult is returned to the client so it can run the gateway's
// payment flow and echo the template ids back at verification time.
type CreateOrderResult struct {
	OrderID     string  `json:"order_id"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	TemplateIDs []int64 `json:"template_ids"`
}

// CreateOrder computes the cart total at call time and opens a remote order
// with the gateway. No purchase rows are written here: the cart may still
// change or be abandoned before payment completes.
func (s *CheckoutService) CreateOrder(ctx context.Context, userID int64) (*CreateOrderResult, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.CreateOrder")
	defer span.End()

	entries, err := s.store.ListCart(ctx, userID)
	if err != nil {
		util.CheckoutOrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if len(entries) == 0 {
		util.CheckoutOrdersFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	var total int64
	templateIDs := make([]int64, 0, len(entries))
	for i := range entries {
		total += entries[i].Total()
		templateIDs = append(templateIDs, entries[i].TemplateID)
	}

	if s.gateway == nil {
		util.CheckoutOrdersFailedTotal.WithLabelValues("gateway_unconfigured").Inc()
		return nil, ErrGatewayUnavailable
	}

	receipt := fmt.Sprintf("order_%d_%s", userID, uuid.New().String()[:8])

	gwCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	remote, err := s.gateway.CreateOrder(gwCtx, total, s.currency, receipt)
	util.GatewayRequestLatency.WithLabelValues("create_order").Observe(time.Since(start).Seconds())
	if err != nil {
		util.CheckoutOrdersFailedTotal.WithLabelValues("gateway_error").Inc()
		s.logger.Error("Gateway order creation failed",
			zap.Int64("user_id", userID),
			zap.Int64("amount", total),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	util.CheckoutOrdersCreatedTotal.Inc()
	s.logger.Info("Gateway order created",
		zap.Int64("user_id", userID),
		zap.String("order_id", remote.ID),
		zap.Int64("amount", total))

	return &CreateOrderResult{
		OrderID:     remote.ID,
		Amount:      total,
		Currency:    s.currency,
		TemplateIDs: templateIDs,
	}, nil
}

// FinalizeResult points the client at the post-purchase landing resource
type FinalizeResult struct {
	Redirect  string `json:"redirect"`
	Purchases int    `json:"purchases"`
}

// VerifyAndFinalize validates the gateway signature and, on success,
// materializes the user's current cart into paid purchases, bumps stats, and
// clears the cart in one store transaction. A rejected signature
// mutates nothing. A duplicate call (retried webhook) finds every purchase
// already paid and counts no stats a second time.
//
// The cart is deliberately re-read here instead of trusting the snapshot from
// CreateOrder; see CheckoutStore.ListCart for the single read point.
func (s *CheckoutService) VerifyAndFinalize(ctx context.Context, userID int64, paymentID, orderID, signature string) (*FinalizeResult, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.VerifyAndFinalize")
	defer span.End()

	if paymentID == "" || orderID == "" || signature == "" {
		return nil, ErrMissingVerificationData
	}

	if s.gateway == nil {
		util.FinalizeFailedTotal.WithLabelValues("gateway_unconfigured").Inc()
		return nil, ErrGatewayUnavailable
	}

	if !s.gateway.VerifySignature(paymentID, orderID, signature) {
		util.FinalizeFailedTotal.WithLabelValues("signature_invalid").Inc()
		s.logger.Warn("Payment signature rejected",
			zap.Int64("user_id", userID),
			zap.String("order_id", orderID),
			zap.String("payment_id", paymentID))
		return nil, ErrSignatureInvalid
	}

	if s.locker != nil {
		acquired, err := s.locker.AcquireFinalizeLock(ctx, userID, finalizeLockTTL)
		if err != nil {
			s.logger.Warn("Finalize lock unavailable, relying on upsert idempotence",
				zap.Int64("user_id", userID),
				zap.Error(err))
		} else if acquired {
			defer func() {
				if err := s.locker.ReleaseFinalizeLock(context.Background(), userID); err != nil {
					s.logger.Warn("Failed to release finalize lock",
						zap.Int64("user_id", userID),
						zap.Error(err))
				}
			}()
		}
	}

	finalized, err := s.store.FinalizeCart(ctx, userID, orderID, paymentID)
	if err != nil {
		util.FinalizeFailedTotal.WithLabelValues("db_error").Inc()
		s.logger.Error("Finalize transaction failed",
			zap.Int64("user_id", userID),
			zap.String("order_id", orderID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrFinalizeFailed, err)
	}

	if len(finalized) == 0 {
		util.FinalizeDuplicateTotal.Inc()
		s.logger.Info("Duplicate finalize call, no new purchases",
			zap.Int64("user_id", userID),
			zap.String("order_id", orderID))
	} else {
		util.FinalizeSuccessTotal.Inc()
		for i := range finalized {
			util.PurchasesCompletedTotal.Inc()
			util.PurchaseRevenueTotal.Add(float64(finalized[i].Amount))
		}
		s.logger.Info("Payment finalized",
			zap.Int64("user_id", userID),
			zap.String("order_id", orderID),
			zap.Int("purchases", len(finalized)))
	}

	s.publishCompleted(ctx, finalized)

	return &FinalizeResult{
		Redirect:  "/purchases/success",
		Purchases: len(finalized),
	}, nil
}

// publishCompleted emits purchase.completed events after commit, best-effort
func (s *CheckoutService) publishCompleted(ctx context.Context, purchases []models.Purchase) {
	if s.publisher == nil {
		return
	}
	for i := range purchases {
		p := &purchases[i]
		event := &models.PurchaseCompletedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   fmt.Sprintf("purchase-%d-%s", p.ID, p.PaymentID),
				EventType: models.EventTypePurchaseCompleted,
				Timestamp: time.Now(),
			},
			PurchaseID: p.ID,
			UserID:     p.UserID,
			TemplateID: p.TemplateID,
			Amount:     p.Amount,
			OrderID:    p.OrderID,
			PaymentID:  p.PaymentID,
		}
		if err := s.publisher.PublishPurchaseCompleted(ctx, event); err != nil {
			s.logger.Error("Failed to publish PurchaseCompleted event",
				zap.Int64("purchase_id", p.ID),
				zap.Error(err))
		}
	}
}
