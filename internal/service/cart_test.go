package service

import (
	"context"
	"fmt"
	"testing"

	"template-marketplace/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCartStore struct {
	templates map[int64]*models.Template
	cart      map[string]*models.CartEntry
	paid      map[string]bool
	bumps     map[string]int
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{
		templates: make(map[int64]*models.Template),
		cart:      make(map[string]*models.CartEntry),
		paid:      make(map[string]bool),
		bumps:     make(map[string]int),
	}
}

func key(userID, templateID int64) string {
	return fmt.Sprintf("%d/%d", userID, templateID)
}

func (f *fakeCartStore) GetTemplateByID(_ context.Context, id int64) (*models.Template, error) {
	tpl, ok := f.templates[id]
	if !ok {
		return nil, fmt.Errorf("template not found: %d", id)
	}
	return tpl, nil
}

func (f *fakeCartStore) AddCartItem(_ context.Context, userID, templateID int64) (bool, error) {
	k := key(userID, templateID)
	if _, ok := f.cart[k]; ok {
		return false, nil
	}
	f.cart[k] = &models.CartEntry{
		CartItem:  models.CartItem{UserID: userID, TemplateID: templateID, Quantity: 1},
		UnitPrice: f.templates[templateID].Price,
	}
	return true, nil
}

func (f *fakeCartStore) RemoveCartItem(_ context.Context, userID, templateID int64) error {
	delete(f.cart, key(userID, templateID))
	return nil
}

func (f *fakeCartStore) ListCart(_ context.Context, userID int64) ([]models.CartEntry, error) {
	var entries []models.CartEntry
	for _, e := range f.cart {
		if e.UserID == userID {
			entries = append(entries, *e)
		}
	}
	return entries, nil
}

func (f *fakeCartStore) ClearCart(_ context.Context, userID int64) error {
	for k, e := range f.cart {
		if e.UserID == userID {
			delete(f.cart, k)
		}
	}
	return nil
}

func (f *fakeCartStore) HasPaidPurchase(_ context.Context, userID, templateID int64) (bool, error) {
	return f.paid[key(userID, templateID)], nil
}

func (f *fakeCartStore) BumpAnalytics(_ context.Context, templateID int64, column string) error {
	f.bumps[fmt.Sprintf("%d/%s", templateID, column)]++
	return nil
}

func TestCartAddIsIdempotent(t *testing.T) {
	store := newFakeCartStore()
	store.templates[10] = &models.Template{ID: 10, Price: 1000}
	svc := NewCartService(store)

	added, err := svc.Add(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = svc.Add(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.False(t, added, "re-adding must report already present")

	assert.Equal(t, 1, store.bumps["10/cart_additions"], "analytics bumped only on first add")
}

func TestCartAddAlreadyOwned(t *testing.T) {
	store := newFakeCartStore()
	store.templates[10] = &models.Template{ID: 10, Price: 1000}
	store.paid[key(1, 10)] = true
	svc := NewCartService(store)

	_, err := svc.Add(context.Background(), 1, 10)

	assert.ErrorIs(t, err, ErrAlreadyOwned)
	assert.Empty(t, store.cart, "cart unchanged when the template is already owned")
}

func TestCartAddUnknownTemplate(t *testing.T) {
	svc := NewCartService(newFakeCartStore())

	_, err := svc.Add(context.Background(), 1, 404)
	assert.Error(t, err)
}

func TestCartRemoveAbsentIsNoError(t *testing.T) {
	store := newFakeCartStore()
	svc := NewCartService(store)

	assert.NoError(t, svc.Remove(context.Background(), 1, 10))
}

func TestCartListComputesTotal(t *testing.T) {
	store := newFakeCartStore()
	store.templates[10] = &models.Template{ID: 10, Price: 1000}
	store.templates[20] = &models.Template{ID: 20, Price: 0, IsFree: true}
	svc := NewCartService(store)

	_, err := svc.Add(context.Background(), 1, 10)
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), 1, 20)
	require.NoError(t, err)

	view, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
	assert.Equal(t, int64(1000), view.Total)
}

func TestCartTotalHonorsQuantity(t *testing.T) {
	// Quantity is 1 in practice, but the total must not assume it.
	entry := models.CartEntry{
		CartItem:  models.CartItem{Quantity: 3},
		UnitPrice: 250,
	}
	assert.Equal(t, int64(750), entry.Total())
}
