package store

import (
	"context"

	"template-marketplace/internal/models"
)

// AddCartItem inserts a cart item if absent. Returns true when the item was
// newly added, false when it was already in the cart.
func (s *Store) AddCartItem(ctx context.Context, userID, templateID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_items (user_id, template_id, quantity)
		VALUES ($1, $2, 1)
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

// RemoveCartItem deletes a cart item if present (no error when absent)
func (s *Store) RemoveCartItem(ctx context.Context, userID, templateID int64) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE user_id = $1 AND template_id = $2",
		userID, templateID)
	return err
}

// ListCart retrieves the user's cart joined with template pricing, in the
// order items were added. This is the single "read current cart" call used
// by both order creation and finalize.
func (s *Store) ListCart(ctx context.Context, userID int64) ([]models.CartEntry, error) {
	var entries []models.CartEntry
	err := s.db.SelectContext(ctx, &entries, `
		SELECT ci.id, ci.user_id, ci.template_id, ci.quantity, ci.added_at,
		       t.name AS template_name, t.slug AS template_slug, t.price AS unit_price
		FROM cart_items ci
		JOIN templates t ON t.id = ci.template_id
		WHERE ci.user_id = $1
		ORDER BY ci.added_at, ci.id`,
		userID)
	return entries, err
}

// ClearCart deletes all cart items for a user
func (s *Store) ClearCart(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID)
	return err
}

// HasCartItem reports whether the template sits in the user's cart
func (s *Store) HasCartItem(ctx context.Context, userID, templateID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM cart_items WHERE user_id = $1 AND template_id = $2)",
		userID, templateID)
	return exists, err
}

// CountCartItems returns the number of items in the user's cart
func (s *Store) CountCartItems(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM cart_items WHERE user_id = $1", userID)
	return count, err
}
