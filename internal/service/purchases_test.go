package service

import (
	"context"
	"fmt"
	"testing"

	"template-marketplace/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurchaseStore struct {
	purchases map[string]*models.Purchase
	templates map[int64]*models.Template
	bumps     map[string]int
}

func newFakePurchaseStore() *fakePurchaseStore {
	return &fakePurchaseStore{
		purchases: make(map[string]*models.Purchase),
		templates: make(map[int64]*models.Template),
		bumps:     make(map[string]int),
	}
}

func (f *fakePurchaseStore) HasPaidPurchase(_ context.Context, userID, templateID int64) (bool, error) {
	p, ok := f.purchases[key(userID, templateID)]
	return ok && p.Paid, nil
}

func (f *fakePurchaseStore) GetPurchase(_ context.Context, userID, templateID int64) (*models.Purchase, error) {
	p, ok := f.purchases[key(userID, templateID)]
	if !ok {
		return nil, fmt.Errorf("purchase not found")
	}
	return p, nil
}

func (f *fakePurchaseStore) ListPaidPurchases(_ context.Context, userID int64) ([]models.Purchase, error) {
	var out []models.Purchase
	for _, p := range f.purchases {
		if p.UserID == userID && p.Paid {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePurchaseStore) GetTemplateByID(_ context.Context, id int64) (*models.Template, error) {
	tpl, ok := f.templates[id]
	if !ok {
		return nil, fmt.Errorf("template not found: %d", id)
	}
	return tpl, nil
}

func (f *fakePurchaseStore) BumpAnalytics(_ context.Context, templateID int64, column string) error {
	f.bumps[fmt.Sprintf("%d/%s", templateID, column)]++
	return nil
}

func TestDownloadGateRequiresPaidPurchase(t *testing.T) {
	store := newFakePurchaseStore()
	store.templates[10] = &models.Template{ID: 10, Slug: "landing", ZipPath: "zips/landing.zip"}
	svc := NewPurchaseService(store)

	_, err := svc.DownloadGate(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrPurchaseRequired)

	// Unpaid leftover row still gates.
	store.purchases[key(1, 10)] = &models.Purchase{UserID: 1, TemplateID: 10, Paid: false}
	_, err = svc.DownloadGate(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrPurchaseRequired)
}

func TestDownloadGateReleasesGrant(t *testing.T) {
	store := newFakePurchaseStore()
	store.templates[10] = &models.Template{ID: 10, Slug: "landing", ZipPath: "zips/landing.zip"}
	store.purchases[key(1, 10)] = &models.Purchase{
		UserID: 1, TemplateID: 10, Paid: true, LicenseKey: "lk-1",
	}
	svc := NewPurchaseService(store)

	grant, err := svc.DownloadGate(context.Background(), 1, 10)

	require.NoError(t, err)
	assert.Equal(t, "zips/landing.zip", grant.ZipPath)
	assert.Equal(t, "lk-1", grant.LicenseKey)
	assert.Equal(t, 1, store.bumps["10/downloads"])
}

func TestLicenseKeyOnlyWhenPaid(t *testing.T) {
	store := newFakePurchaseStore()
	svc := NewPurchaseService(store)

	_, err := svc.LicenseKey(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrPurchaseRequired)

	store.purchases[key(1, 10)] = &models.Purchase{UserID: 1, TemplateID: 10, Paid: false, LicenseKey: "lk-1"}
	_, err = svc.LicenseKey(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrPurchaseRequired)

	store.purchases[key(1, 10)].Paid = true
	lk, err := svc.LicenseKey(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "lk-1", lk)
}
