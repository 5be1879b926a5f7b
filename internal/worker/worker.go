package worker

import (
	"context"
	"log"

	"template-marketplace/internal/broker"
	"template-marketplace/internal/service"
)

// ProfileStatsWorker consumes purchase events and keeps buyer profile stats
// in sync. Processing is idempotent per event id, so redeliveries are safe.
type ProfileStatsWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
}

// NewProfileStatsWorker creates a new profile stats worker
func NewProfileStatsWorker(consumer *broker.Consumer, profiles *service.ProfileService) *ProfileStatsWorker {
	eventHandler := broker.NewEventHandler()
	eventHandler.OnPurchaseCompleted(profiles.HandlePurchaseCompleted)

	return &ProfileStatsWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
	}
}

// Start starts the worker
func (w *ProfileStatsWorker) Start(ctx context.Context) error {
	log.Println("Starting profile stats worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *ProfileStatsWorker) Stop() error {
	log.Println("Stopping profile stats worker...")
	return w.consumer.Close()
}
