package store

import (
	"context"

	"template-marketplace/internal/models"
)

// AddWishlistItem inserts a wishlist entry if absent; returns true when newly added
func (s *Store) AddWishlistItem(ctx context.Context, userID, templateID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO wishlist_items (user_id, template_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, template_id) DO NOTHING`,
		userID, templateID)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// RemoveWishlistItem deletes a wishlist entry if present
func (s *Store) RemoveWishlistItem(ctx context.Context, userID, templateID int64) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM wishlist_items WHERE user_id = $1 AND template_id = $2",
		userID, templateID)
	return err
}

// ListWishlist retrieves a user's wishlist, newest first
func (s *Store) ListWishlist(ctx context.Context, userID int64) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM wishlist_items WHERE user_id = $1 ORDER BY added_at DESC",
		userID)
	return items, err
}

// IsWishlisted reports whether the template is on the user's wishlist
func (s *Store) IsWishlisted(ctx context.Context, userID, templateID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM wishlist_items WHERE user_id = $1 AND template_id = $2)",
		userID, templateID)
	return exists, err
}
