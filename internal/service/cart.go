package service

import (
	"context"
	"fmt"

	"template-marketplace/internal/models"
	"template-marketplace/internal/store"
	"template-marketplace/internal/util"

	"go.uber.org/zap"
)

// CartStore is the persistence surface the cart service needs
type CartStore interface {
	GetTemplateByID(ctx context.Context, id int64) (*models.Template, error)
	AddCartItem(ctx context.Context, userID, templateID int64) (bool, error)
	RemoveCartItem(ctx context.Context, userID, templateID int64) error
	ListCart(ctx context.Context, userID int64) ([]models.CartEntry, error)
	ClearCart(ctx context.Context, userID int64) error
	HasPaidPurchase(ctx context.Context, userID, templateID int64) (bool, error)
	BumpAnalytics(ctx context.Context, templateID int64, column string) error
}

// CartService manages the per-user cart ledger
type CartService struct {
	store  CartStore
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(store CartStore) *CartService {
	return &CartService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// CartView is a user's cart with its computed total
type CartView struct {
	Items []models.CartEntry `json:"items"`
	Total int64              `json:"total"`
}

// Add puts a template in the user's cart. Re-adding is a no-op (added=false);
// adding a template the user already paid for fails with ErrAlreadyOwned so a
// buyer can never be charged twice for the same license.
func (s *CartService) Add(ctx context.Context, userID, templateID int64) (bool, error) {
	ctx, span := util.StartSpan(ctx, "CartService.Add")
	defer span.End()

	if _, err := s.store.GetTemplateByID(ctx, templateID); err != nil {
		return false, err
	}

	owned, err := s.store.HasPaidPurchase(ctx, userID, templateID)
	if err != nil {
		return false, fmt.Errorf("failed to check ownership: %w", err)
	}
	if owned {
		return false, ErrAlreadyOwned
	}

	added, err := s.store.AddCartItem(ctx, userID, templateID)
	if err != nil {
		return false, fmt.Errorf("failed to add cart item: %w", err)
	}

	if added {
		if err := s.store.BumpAnalytics(ctx, templateID, store.AnalyticsCartAdditions); err != nil {
			s.logger.Warn("Failed to bump cart_additions",
				zap.Int64("template_id", templateID),
				zap.Error(err))
		}
	}

	return added, nil
}

// Remove takes a template out of the cart; absent items are a no-op
func (s *CartService) Remove(ctx context.Context, userID, templateID int64) error {
	return s.store.RemoveCartItem(ctx, userID, templateID)
}

// List returns the cart contents with the computed total
func (s *CartService) List(ctx context.Context, userID int64) (*CartView, error) {
	items, err := s.store.ListCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}

	view := &CartView{Items: items}
	for i := range items {
		view.Total += items[i].Total()
	}
	return view, nil
}

// Clear empties the cart. The checkout flow clears the cart inside its
// finalize transaction; this standalone form exists for explicit user resets
// and is equally idempotent.
func (s *CartService) Clear(ctx context.Context, userID int64) error {
	return s.store.ClearCart(ctx, userID)
}
