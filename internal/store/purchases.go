package store

import (
	"context"
	"database/sql"
	"fmt"

	"template-marketplace/internal/models"

	"github.com/google/uuid"
)

// FinalizeCart converts the user's current cart into paid purchases inside a
// single transaction: upsert one purchase per cart item, bump stats for items
// that were not already paid, then clear the cart. Returns the purchases that
// were newly finalized by this call (duplicate finalizes return an empty
// slice and touch no counters).
//
// The whole sequence commits or rolls back together, so a retried webhook
// either sees a clean slate or finds every purchase already paid.
func (s *Store) FinalizeCart(ctx context.Context, userID int64, orderID, paymentID string) ([]models.Purchase, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var entries []models.CartEntry
	err = tx.SelectContext(ctx, &entries, `
		SELECT ci.id, ci.user_id, ci.template_id, ci.quantity, ci.added_at,
		       t.name AS template_name, t.slug AS template_slug, t.price AS unit_price
		FROM cart_items ci
		JOIN templates t ON t.id = ci.template_id
		WHERE ci.user_id = $1
		ORDER BY ci.added_at, ci.id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	finalized := make([]models.Purchase, 0, len(entries))

	for _, entry := range entries {
		purchase, newlyPaid, err := upsertPaidPurchase(ctx, tx, userID, entry.TemplateID, entry.UnitPrice, orderID, paymentID)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert purchase for template %d: %w", entry.TemplateID, err)
		}
		if !newlyPaid {
			continue
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE templates SET downloads = downloads + 1 WHERE id = $1",
			entry.TemplateID); err != nil {
			return nil, fmt.Errorf("failed to bump downloads for template %d: %w", entry.TemplateID, err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO template_analytics (template_id, date, purchases, revenue)
			VALUES ($1, CURRENT_DATE, 1, $2)
			ON CONFLICT (template_id, date) DO UPDATE
			SET purchases = template_analytics.purchases + 1,
			    revenue   = template_analytics.revenue + EXCLUDED.revenue`,
			entry.TemplateID, purchase.Amount); err != nil {
			return nil, fmt.Errorf("failed to bump analytics for template %d: %w", entry.TemplateID, err)
		}

		finalized = append(finalized, *purchase)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM cart_items WHERE user_id = $1", userID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return finalized, nil
}

// upsertPaidPurchase enforces the at-most-one-purchase-per-(user, template)
// contract. Three outcomes:
//   - no row yet: insert paid=true with a freshly minted license key
//   - existing unpaid row: flip paid false->true, set identifiers and amount
//   - existing paid row: refresh identifiers for audit, no stat effects,
//     license key untouched
func upsertPaidPurchase(ctx context.Context, tx queryExecer, userID, templateID, amount int64, orderID, paymentID string) (*models.Purchase, bool, error) {
	purchase := models.Purchase{
		UserID:     userID,
		TemplateID: templateID,
		OrderID:    orderID,
		PaymentID:  paymentID,
		Amount:     amount,
		Paid:       true,
		LicenseKey: uuid.New().String(),
	}

	// DO NOTHING on conflict so a concurrent finalize never clobbers an
	// existing row's license key; the loser falls through to the locked read.
	err := tx.GetContext(ctx, &purchase.ID, `
		INSERT INTO purchases (user_id, template_id, order_id, payment_id, amount, paid, license_key)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6)
		ON CONFLICT (user_id, template_id) DO NOTHING
		RETURNING id`,
		userID, templateID, orderID, paymentID, amount, purchase.LicenseKey)
	if err == nil {
		return &purchase, true, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, err
	}

	var existing models.Purchase
	err = tx.GetContext(ctx, &existing,
		"SELECT * FROM purchases WHERE user_id = $1 AND template_id = $2 FOR UPDATE",
		userID, templateID)
	if err != nil {
		return nil, false, err
	}

	if existing.Paid {
		// Duplicate finalize (retried webhook): audit refresh only.
		_, err = tx.ExecContext(ctx,
			"UPDATE purchases SET order_id = $1, payment_id = $2 WHERE id = $3",
			orderID, paymentID, existing.ID)
		if err != nil {
			return nil, false, err
		}
		existing.OrderID = orderID
		existing.PaymentID = paymentID
		return &existing, false, nil
	}

	// Sole legal paid transition: false -> true.
	_, err = tx.ExecContext(ctx, `
		UPDATE purchases
		SET paid = TRUE, order_id = $1, payment_id = $2, amount = $3
		WHERE id = $4`,
		orderID, paymentID, amount, existing.ID)
	if err != nil {
		return nil, false, err
	}
	existing.Paid = true
	existing.OrderID = orderID
	existing.PaymentID = paymentID
	existing.Amount = amount
	return &existing, true, nil
}

// queryExecer is the subset of sqlx.Tx used by the purchase upsert
type queryExecer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// HasPaidPurchase reports whether the user holds a paid purchase for the template
func (s *Store) HasPaidPurchase(ctx context.Context, userID, templateID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM purchases WHERE user_id = $1 AND template_id = $2 AND paid = TRUE)",
		userID, templateID)
	return exists, err
}

// GetPurchase retrieves the purchase row for a (user, template) pair
func (s *Store) GetPurchase(ctx context.Context, userID, templateID int64) (*models.Purchase, error) {
	var purchase models.Purchase
	err := s.db.GetContext(ctx, &purchase,
		"SELECT * FROM purchases WHERE user_id = $1 AND template_id = $2",
		userID, templateID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("purchase not found for user %d, template %d", userID, templateID)
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// ListPaidPurchases retrieves the user's paid purchase history, newest first
func (s *Store) ListPaidPurchases(ctx context.Context, userID int64) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := s.db.SelectContext(ctx, &purchases,
		"SELECT * FROM purchases WHERE user_id = $1 AND paid = TRUE ORDER BY purchased_at DESC",
		userID)
	return purchases, err
}
