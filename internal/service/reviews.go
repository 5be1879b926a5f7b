package service

import (
	"context"
	"fmt"

	"template-marketplace/internal/models"
	"template-marketplace/internal/util"

	"go.uber.org/zap"
)

// ReviewStore is the persistence surface the review service needs. Upsert and
// delete both recompute the template's derived rating transactionally.
type ReviewStore interface {
	HasPaidPurchase(ctx context.Context, userID, templateID int64) (bool, error)
	UpsertReview(ctx context.Context, review *models.Review) error
	GetReviewByID(ctx context.Context, id int64) (*models.Review, error)
	DeleteReview(ctx context.Context, reviewID, templateID int64) error
	ListReviews(ctx context.Context, templateID int64, limit int) ([]models.Review, error)
}

// ReviewService manages reviews and the rating aggregation they drive
type ReviewService struct {
	store  ReviewStore
	logger *zap.Logger
}

// NewReviewService creates a new review service
func NewReviewService(store ReviewStore) *ReviewService {
	return &ReviewService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// AddOrUpdate writes the user's review of a template. Review existence is
// gated by a paid purchase; a second submission replaces the first.
func (s *ReviewService) AddOrUpdate(ctx context.Context, userID, templateID int64, rating int, comment string) (*models.Review, error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.AddOrUpdate")
	defer span.End()

	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	owned, err := s.store.HasPaidPurchase(ctx, userID, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to check ownership: %w", err)
	}
	if !owned {
		return nil, ErrPurchaseRequired
	}

	review := &models.Review{
		TemplateID: templateID,
		UserID:     userID,
		Rating:     rating,
		Comment:    comment,
	}
	if err := s.store.UpsertReview(ctx, review); err != nil {
		return nil, err
	}

	util.ReviewsWrittenTotal.Inc()
	s.logger.Info("Review written",
		zap.Int64("template_id", templateID),
		zap.Int64("user_id", userID),
		zap.Int("rating", rating))

	return review, nil
}

// Delete removes the caller's review and recomputes the template rating
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID int64) error {
	review, err := s.store.GetReviewByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != userID {
		return ErrNotReviewOwner
	}
	return s.store.DeleteReview(ctx, reviewID, review.TemplateID)
}

// List returns recent reviews for a template
func (s *ReviewService) List(ctx context.Context, templateID int64, limit int) ([]models.Review, error) {
	return s.store.ListReviews(ctx, templateID, limit)
}
