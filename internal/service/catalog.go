package service

import (
	"context"
	"fmt"
	"time"

	"template-marketplace/internal/models"
	"template-marketplace/internal/store"
	"template-marketplace/internal/util"

	"go.uber.org/zap"
)

// CatalogStore is the persistence surface the catalog service needs
type CatalogStore interface {
	ListTemplates(ctx context.Context, f store.TemplateFilter) ([]models.Template, error)
	GetTemplateBySlug(ctx context.Context, slug string) (*models.Template, error)
	GetCategories(ctx context.Context) ([]models.Category, error)
	IncrementTemplateViews(ctx context.Context, templateID int64) error
	BumpAnalytics(ctx context.Context, templateID int64, column string) error
	HasPaidPurchase(ctx context.Context, userID, templateID int64) (bool, error)
	IsWishlisted(ctx context.Context, userID, templateID int64) (bool, error)
	HasCartItem(ctx context.Context, userID, templateID int64) (bool, error)
	ListReviews(ctx context.Context, templateID int64, limit int) ([]models.Review, error)
	GetAnalytics(ctx context.Context, templateID int64, days int) ([]models.TemplateAnalytics, error)
}

// ViewDeduper marks a (template, viewer, day) view as unique or repeat
type ViewDeduper interface {
	MarkUniqueView(ctx context.Context, templateID, viewerID int64, day time.Time) (bool, error)
}

// ViewEventPublisher announces catalog detail views
type ViewEventPublisher interface {
	PublishTemplateViewed(ctx context.Context, event *models.TemplateViewedEvent) error
}

// CatalogService serves browse/search reads and the view-count side effects
type CatalogService struct {
	store     CatalogStore
	deduper   ViewDeduper
	publisher ViewEventPublisher
	logger    *zap.Logger
}

// NewCatalogService creates a catalog service. deduper and publisher may be
// nil; unique view tracking and view events are then skipped.
func NewCatalogService(store CatalogStore, deduper ViewDeduper, publisher ViewEventPublisher) *CatalogService {
	return &CatalogService{
		store:     store,
		deduper:   deduper,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// List returns published templates matching the filter
func (s *CatalogService) List(ctx context.Context, f store.TemplateFilter) ([]models.Template, error) {
	return s.store.ListTemplates(ctx, f)
}

// Categories returns all categories
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.store.GetCategories(ctx)
}

// BySlug resolves a published template without view-count side effects
func (s *CatalogService) BySlug(ctx context.Context, slug string) (*models.Template, error) {
	return s.store.GetTemplateBySlug(ctx, slug)
}

// TemplateDetail is the catalog detail view with viewer-specific flags
type TemplateDetail struct {
	Template   models.Template `json:"template"`
	Purchased  bool            `json:"purchased"`
	InCart     bool            `json:"in_cart"`
	Wishlisted bool            `json:"wishlisted"`
	Reviews    []models.Review `json:"reviews"`
}

// Get loads a published template by slug, bumps its view counters, and
// decorates the result with the viewer's ownership flags. viewerID 0 means
// anonymous.
func (s *CatalogService) Get(ctx context.Context, slug string, viewerID int64) (*TemplateDetail, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.Get")
	defer span.End()

	tpl, err := s.store.GetTemplateBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if err := s.store.IncrementTemplateViews(ctx, tpl.ID); err != nil {
		s.logger.Warn("Failed to bump template views", zap.Int64("template_id", tpl.ID), zap.Error(err))
	} else {
		tpl.Views++
	}
	if err := s.store.BumpAnalytics(ctx, tpl.ID, store.AnalyticsViews); err != nil {
		s.logger.Warn("Failed to bump view analytics", zap.Int64("template_id", tpl.ID), zap.Error(err))
	}

	if s.deduper != nil && viewerID != 0 {
		unique, err := s.deduper.MarkUniqueView(ctx, tpl.ID, viewerID, time.Now())
		if err != nil {
			s.logger.Warn("Unique view dedup failed", zap.Int64("template_id", tpl.ID), zap.Error(err))
		} else if unique {
			if err := s.store.BumpAnalytics(ctx, tpl.ID, store.AnalyticsUniqueViews); err != nil {
				s.logger.Warn("Failed to bump unique view analytics", zap.Int64("template_id", tpl.ID), zap.Error(err))
			}
		}
	}

	if s.publisher != nil {
		event := &models.TemplateViewedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   fmt.Sprintf("view-%d-%d-%d", tpl.ID, viewerID, time.Now().UnixNano()),
				EventType: models.EventTypeTemplateViewed,
				Timestamp: time.Now(),
			},
			TemplateID: tpl.ID,
			ViewerID:   viewerID,
		}
		if err := s.publisher.PublishTemplateViewed(ctx, event); err != nil {
			s.logger.Warn("Failed to publish TemplateViewed event", zap.Int64("template_id", tpl.ID), zap.Error(err))
		}
	}

	detail := &TemplateDetail{Template: *tpl}

	if viewerID != 0 {
		if detail.Purchased, err = s.store.HasPaidPurchase(ctx, viewerID, tpl.ID); err != nil {
			return nil, fmt.Errorf("failed to check ownership: %w", err)
		}
		if detail.InCart, err = s.store.HasCartItem(ctx, viewerID, tpl.ID); err != nil {
			return nil, fmt.Errorf("failed to check cart: %w", err)
		}
		if detail.Wishlisted, err = s.store.IsWishlisted(ctx, viewerID, tpl.ID); err != nil {
			return nil, fmt.Errorf("failed to check wishlist: %w", err)
		}
	}

	if detail.Reviews, err = s.store.ListReviews(ctx, tpl.ID, 10); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	return detail, nil
}

// Analytics returns recent daily counter buckets for a template. Only the
// template's owner may read them.
func (s *CatalogService) Analytics(ctx context.Context, slug string, viewerID int64, days int) ([]models.TemplateAnalytics, error) {
	tpl, err := s.store.GetTemplateBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if tpl.OwnerID != viewerID {
		return nil, ErrNotTemplateOwner
	}
	return s.store.GetAnalytics(ctx, tpl.ID, days)
}
