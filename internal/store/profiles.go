package store

import (
	"context"

	"template-marketplace/internal/models"
)

// GetOrCreateProfile retrieves the user's profile, creating an empty one on
// first access.
func (s *Store) GetOrCreateProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.GetContext(ctx, &profile, `
		INSERT INTO user_profiles (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING *`,
		userID)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// BumpProfileStats atomically adds one purchase and its amount to the user's
// denormalized buyer stats.
func (s *Store) BumpProfileStats(ctx context.Context, userID, amount int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, total_purchases, total_spent)
		VALUES ($1, 1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET total_purchases = user_profiles.total_purchases + 1,
		    total_spent     = user_profiles.total_spent + EXCLUDED.total_spent`,
		userID, amount)
	return err
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
