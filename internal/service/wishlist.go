package service

import (
	"context"

	"template-marketplace/internal/models"
)

// WishlistStore is the persistence surface the wishlist service needs
type WishlistStore interface {
	GetTemplateByID(ctx context.Context, id int64) (*models.Template, error)
	AddWishlistItem(ctx context.Context, userID, templateID int64) (bool, error)
	RemoveWishlistItem(ctx context.Context, userID, templateID int64) error
	ListWishlist(ctx context.Context, userID int64) ([]models.WishlistItem, error)
}

// WishlistService manages per-user wishlists
type WishlistService struct {
	store WishlistStore
}

// NewWishlistService creates a new wishlist service
func NewWishlistService(store WishlistStore) *WishlistService {
	return &WishlistService{store: store}
}

// Add puts a template on the wishlist; re-adding reports added=false
func (s *WishlistService) Add(ctx context.Context, userID, templateID int64) (bool, error) {
	if _, err := s.store.GetTemplateByID(ctx, templateID); err != nil {
		return false, err
	}
	return s.store.AddWishlistItem(ctx, userID, templateID)
}

// Remove takes a template off the wishlist; absent items are a no-op
func (s *WishlistService) Remove(ctx context.Context, userID, templateID int64) error {
	return s.store.RemoveWishlistItem(ctx, userID, templateID)
}

// List returns the user's wishlist
func (s *WishlistService) List(ctx context.Context, userID int64) ([]models.WishlistItem, error) {
	return s.store.ListWishlist(ctx, userID)
}
