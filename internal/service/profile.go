package service

import (
	"context"
	"fmt"

	"template-marketplace/internal/models"
	"template-marketplace/internal/util"

	"go.uber.org/zap"
)

// ProfileStore is the persistence surface the profile service needs
type ProfileStore interface {
	GetOrCreateProfile(ctx context.Context, userID int64) (*models.UserProfile, error)
	BumpProfileStats(ctx context.Context, userID, amount int64) error
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// ProfileService maintains denormalized buyer stats off purchase events
type ProfileService struct {
	store  ProfileStore
	logger *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(store ProfileStore) *ProfileService {
	return &ProfileService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// Get returns the user's profile, creating an empty one on first access
func (s *ProfileService) Get(ctx context.Context, userID int64) (*models.UserProfile, error) {
	return s.store.GetOrCreateProfile(ctx, userID)
}

// HandlePurchaseCompleted bumps the buyer's aggregate stats once per event.
// Redelivered events are dropped via the processed_events table.
func (s *ProfileService) HandlePurchaseCompleted(ctx context.Context, event *models.PurchaseCompletedEvent) error {
	processed, err := s.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		s.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	if err := s.store.BumpProfileStats(ctx, event.UserID, event.Amount); err != nil {
		return fmt.Errorf("failed to bump profile stats: %w", err)
	}

	if err := s.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		s.logger.Error("Failed to mark event processed", zap.String("event_id", event.EventID), zap.Error(err))
	}

	s.logger.Info("Profile stats updated",
		zap.Int64("user_id", event.UserID),
		zap.Int64("amount", event.Amount))
	return nil
}
