package service

import (
	"context"
	"fmt"

	"template-marketplace/internal/models"
	"template-marketplace/internal/store"
	"template-marketplace/internal/util"

	"go.uber.org/zap"
)

// PurchaseStore is the persistence surface the purchase ledger needs
type PurchaseStore interface {
	HasPaidPurchase(ctx context.Context, userID, templateID int64) (bool, error)
	GetPurchase(ctx context.Context, userID, templateID int64) (*models.Purchase, error)
	ListPaidPurchases(ctx context.Context, userID int64) ([]models.Purchase, error)
	GetTemplateByID(ctx context.Context, id int64) (*models.Template, error)
	BumpAnalytics(ctx context.Context, templateID int64, column string) error
}

// PurchaseService exposes license identity and download gating over the
// purchase ledger.
type PurchaseService struct {
	store  PurchaseStore
	logger *zap.Logger
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(store PurchaseStore) *PurchaseService {
	return &PurchaseService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// HasPaid reports whether the user holds a paid purchase for the template
func (s *PurchaseService) HasPaid(ctx context.Context, userID, templateID int64) (bool, error) {
	return s.store.HasPaidPurchase(ctx, userID, templateID)
}

// LicenseKey returns the immutable license key, present only once paid
func (s *PurchaseService) LicenseKey(ctx context.Context, userID, templateID int64) (string, error) {
	purchase, err := s.store.GetPurchase(ctx, userID, templateID)
	if err != nil {
		return "", ErrPurchaseRequired
	}
	if !purchase.Paid {
		return "", ErrPurchaseRequired
	}
	return purchase.LicenseKey, nil
}

// DownloadGrant tells the file-serving collaborator what to stream
type DownloadGrant struct {
	TemplateID int64  `json:"template_id"`
	Slug       string `json:"slug"`
	ZipPath    string `json:"zip_path"`
	LicenseKey string `json:"license_key"`
}

// DownloadGate checks the paid purchase and releases a download grant. Fails
// with ErrPurchaseRequired when no paid purchase exists.
func (s *PurchaseService) DownloadGate(ctx context.Context, userID, templateID int64) (*DownloadGrant, error) {
	ctx, span := util.StartSpan(ctx, "PurchaseService.DownloadGate")
	defer span.End()

	purchase, err := s.store.GetPurchase(ctx, userID, templateID)
	if err != nil || !purchase.Paid {
		return nil, ErrPurchaseRequired
	}

	tpl, err := s.store.GetTemplateByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	if err := s.store.BumpAnalytics(ctx, templateID, store.AnalyticsDownloads); err != nil {
		s.logger.Warn("Failed to bump download analytics",
			zap.Int64("template_id", templateID),
			zap.Error(err))
	}
	util.DownloadsServedTotal.Inc()

	return &DownloadGrant{
		TemplateID: tpl.ID,
		Slug:       tpl.Slug,
		ZipPath:    tpl.ZipPath,
		LicenseKey: purchase.LicenseKey,
	}, nil
}

// ListPaid returns the user's paid purchase history
func (s *PurchaseService) ListPaid(ctx context.Context, userID int64) ([]models.Purchase, error) {
	return s.store.ListPaidPurchases(ctx, userID)
}
