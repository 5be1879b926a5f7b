package store

import (
	"context"
	"database/sql"
	"fmt"

	"template-marketplace/internal/models"
)

// UpsertReview creates or replaces the user's review of a template and
// recomputes the template's denormalized rating in the same transaction.
func (s *Store) UpsertReview(ctx context.Context, review *models.Review) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, review, `
		INSERT INTO reviews (template_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (template_id, user_id) DO UPDATE
		SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = NOW()
		RETURNING *`,
		review.TemplateID, review.UserID, review.Rating, review.Comment)
	if err != nil {
		return fmt.Errorf("failed to upsert review: %w", err)
	}

	if err := recomputeRatingTx(ctx, tx, review.TemplateID); err != nil {
		return err
	}

	return tx.Commit()
}

// GetReviewByID retrieves a review by ID
func (s *Store) GetReviewByID(ctx context.Context, id int64) (*models.Review, error) {
	var review models.Review
	err := s.db.GetContext(ctx, &review, "SELECT * FROM reviews WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("review not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListReviews retrieves the most recent reviews for a template
func (s *Store) ListReviews(ctx context.Context, templateID int64, limit int) ([]models.Review, error) {
	if limit <= 0 {
		limit = 10
	}
	var reviews []models.Review
	err := s.db.SelectContext(ctx, &reviews,
		"SELECT * FROM reviews WHERE template_id = $1 ORDER BY created_at DESC LIMIT $2",
		templateID, limit)
	return reviews, err
}

// DeleteReview removes a review and recomputes the template rating in the
// same transaction.
func (s *Store) DeleteReview(ctx context.Context, reviewID, templateID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM reviews WHERE id = $1", reviewID); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if err := recomputeRatingTx(ctx, tx, templateID); err != nil {
		return err
	}

	return tx.Commit()
}

// recomputeRatingTx rewrites the template's derived rating from its reviews:
// average rounded to 2 decimal places, or 0 when no reviews remain.
func recomputeRatingTx(ctx context.Context, tx queryExecer, templateID int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE templates SET
			rating = COALESCE((SELECT ROUND(AVG(rating)::numeric, 2) FROM reviews WHERE template_id = $1), 0),
			total_reviews = (SELECT COUNT(*) FROM reviews WHERE template_id = $1)
		WHERE id = $1`,
		templateID)
	if err != nil {
		return fmt.Errorf("failed to recompute rating for template %d: %w", templateID, err)
	}
	return nil
}
