package service

import (
	"context"
	"fmt"
	"math"
	"testing"

	"template-marketplace/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReviewStore mirrors the transactional recompute contract: every upsert
// and delete rewrites the template's derived rating.
type fakeReviewStore struct {
	paid    map[string]bool
	reviews map[int64]*models.Review // id -> review
	rating  map[int64]float64        // template -> derived average
	count   map[int64]int            // template -> total_reviews
	nextID  int64
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{
		paid:    make(map[string]bool),
		reviews: make(map[int64]*models.Review),
		rating:  make(map[int64]float64),
		count:   make(map[int64]int),
	}
}

func (f *fakeReviewStore) HasPaidPurchase(_ context.Context, userID, templateID int64) (bool, error) {
	return f.paid[fmt.Sprintf("%d/%d", userID, templateID)], nil
}

func (f *fakeReviewStore) UpsertReview(_ context.Context, review *models.Review) error {
	for _, existing := range f.reviews {
		if existing.TemplateID == review.TemplateID && existing.UserID == review.UserID {
			existing.Rating = review.Rating
			existing.Comment = review.Comment
			review.ID = existing.ID
			f.recompute(review.TemplateID)
			return nil
		}
	}
	f.nextID++
	review.ID = f.nextID
	clone := *review
	f.reviews[review.ID] = &clone
	f.recompute(review.TemplateID)
	return nil
}

func (f *fakeReviewStore) GetReviewByID(_ context.Context, id int64) (*models.Review, error) {
	review, ok := f.reviews[id]
	if !ok {
		return nil, fmt.Errorf("review not found: %d", id)
	}
	return review, nil
}

func (f *fakeReviewStore) DeleteReview(_ context.Context, reviewID, templateID int64) error {
	delete(f.reviews, reviewID)
	f.recompute(templateID)
	return nil
}

func (f *fakeReviewStore) ListReviews(_ context.Context, templateID int64, _ int) ([]models.Review, error) {
	var out []models.Review
	for _, r := range f.reviews {
		if r.TemplateID == templateID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviewStore) recompute(templateID int64) {
	var sum, n int
	for _, r := range f.reviews {
		if r.TemplateID == templateID {
			sum += r.Rating
			n++
		}
	}
	f.count[templateID] = n
	if n == 0 {
		f.rating[templateID] = 0
		return
	}
	f.rating[templateID] = math.Round(float64(sum)/float64(n)*100) / 100
}

func TestReviewRequiresPaidPurchase(t *testing.T) {
	store := newFakeReviewStore()
	svc := NewReviewService(store)

	_, err := svc.AddOrUpdate(context.Background(), 1, 10, 5, "great")

	assert.ErrorIs(t, err, ErrPurchaseRequired)
	assert.Empty(t, store.reviews)
}

func TestReviewRatingBounds(t *testing.T) {
	store := newFakeReviewStore()
	store.paid["1/10"] = true
	svc := NewReviewService(store)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.AddOrUpdate(context.Background(), 1, 10, rating, "")
		assert.ErrorIs(t, err, ErrInvalidRating)
	}
}

func TestReviewUpsertReplacesAndRecomputes(t *testing.T) {
	store := newFakeReviewStore()
	store.paid["1/10"] = true
	store.paid["2/10"] = true
	svc := NewReviewService(store)

	_, err := svc.AddOrUpdate(context.Background(), 1, 10, 4, "good")
	require.NoError(t, err)
	_, err = svc.AddOrUpdate(context.Background(), 2, 10, 5, "excellent")
	require.NoError(t, err)

	assert.Equal(t, 4.5, store.rating[10])
	assert.Equal(t, 2, store.count[10])

	// Second submission by the same user replaces, never duplicates.
	_, err = svc.AddOrUpdate(context.Background(), 1, 10, 2, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, 2, store.count[10])
	assert.Equal(t, 3.5, store.rating[10])
}

func TestReviewDeleteRecomputesToRemaining(t *testing.T) {
	store := newFakeReviewStore()
	store.paid["1/10"] = true
	store.paid["2/10"] = true
	svc := NewReviewService(store)

	first, err := svc.AddOrUpdate(context.Background(), 1, 10, 2, "meh")
	require.NoError(t, err)
	_, err = svc.AddOrUpdate(context.Background(), 2, 10, 5, "love it")
	require.NoError(t, err)

	// Deleting one review leaves the survivor's value, not zero.
	require.NoError(t, svc.Delete(context.Background(), 1, first.ID))
	assert.Equal(t, 5.0, store.rating[10])
	assert.Equal(t, 1, store.count[10])
}

func TestReviewDeleteLastResetsRating(t *testing.T) {
	store := newFakeReviewStore()
	store.paid["1/10"] = true
	svc := NewReviewService(store)

	review, err := svc.AddOrUpdate(context.Background(), 1, 10, 3, "ok")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), 1, review.ID))
	assert.Equal(t, 0.0, store.rating[10])
	assert.Equal(t, 0, store.count[10])
}

func TestReviewDeleteOwnerOnly(t *testing.T) {
	store := newFakeReviewStore()
	store.paid["1/10"] = true
	svc := NewReviewService(store)

	review, err := svc.AddOrUpdate(context.Background(), 1, 10, 3, "ok")
	require.NoError(t, err)

	err = svc.Delete(context.Background(), 2, review.ID)
	assert.ErrorIs(t, err, ErrNotReviewOwner)
	assert.Equal(t, 1, store.count[10])
}
