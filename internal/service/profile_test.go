package service

import (
	"context"
	"testing"
	"time"

	"template-marketplace/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfileStore struct {
	profiles  map[int64]*models.UserProfile
	processed map[string]bool
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{
		profiles:  make(map[int64]*models.UserProfile),
		processed: make(map[string]bool),
	}
}

func (f *fakeProfileStore) GetOrCreateProfile(_ context.Context, userID int64) (*models.UserProfile, error) {
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	p := &models.UserProfile{UserID: userID}
	f.profiles[userID] = p
	return p, nil
}

func (f *fakeProfileStore) BumpProfileStats(_ context.Context, userID, amount int64) error {
	p, _ := f.GetOrCreateProfile(context.Background(), userID)
	p.TotalPurchases++
	p.TotalSpent += amount
	return nil
}

func (f *fakeProfileStore) IsEventProcessed(_ context.Context, eventID string) (bool, error) {
	return f.processed[eventID], nil
}

func (f *fakeProfileStore) MarkEventProcessed(_ context.Context, eventID, _ string) error {
	f.processed[eventID] = true
	return nil
}

func purchaseEvent(id string, userID, amount int64) *models.PurchaseCompletedEvent {
	return &models.PurchaseCompletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   id,
			EventType: models.EventTypePurchaseCompleted,
			Timestamp: time.Now(),
		},
		UserID: userID,
		Amount: amount,
	}
}

func TestProfileStatsBumpedOncePerEvent(t *testing.T) {
	store := newFakeProfileStore()
	svc := NewProfileService(store)

	event := purchaseEvent("evt-1", 7, 1000)
	require.NoError(t, svc.HandlePurchaseCompleted(context.Background(), event))
	// Redelivered copy of the same event.
	require.NoError(t, svc.HandlePurchaseCompleted(context.Background(), event))

	profile, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.TotalPurchases)
	assert.Equal(t, int64(1000), profile.TotalSpent)
}

func TestProfileStatsAccumulate(t *testing.T) {
	store := newFakeProfileStore()
	svc := NewProfileService(store)

	require.NoError(t, svc.HandlePurchaseCompleted(context.Background(), purchaseEvent("evt-1", 7, 1000)))
	require.NoError(t, svc.HandlePurchaseCompleted(context.Background(), purchaseEvent("evt-2", 7, 500)))

	profile, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), profile.TotalPurchases)
	assert.Equal(t, int64(1500), profile.TotalSpent)
}
