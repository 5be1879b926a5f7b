package store

import (
	"context"
	"fmt"

	"template-marketplace/internal/models"
)

// analytics columns that may be incremented from the read/purchase paths
const (
	AnalyticsViews         = "views"
	AnalyticsUniqueViews   = "unique_views"
	AnalyticsDownloads     = "downloads"
	AnalyticsCartAdditions = "cart_additions"
)

var analyticsColumns = map[string]bool{
	AnalyticsViews:         true,
	AnalyticsUniqueViews:   true,
	AnalyticsDownloads:     true,
	AnalyticsCartAdditions: true,
}

// BumpAnalytics increments one counter in today's analytics bucket for the
// template, creating the bucket on the first event of the day.
func (s *Store) BumpAnalytics(ctx context.Context, templateID int64, column string) error {
	if !analyticsColumns[column] {
		return fmt.Errorf("unknown analytics column: %s", column)
	}

	query := fmt.Sprintf(`
		INSERT INTO template_analytics (template_id, date, %[1]s)
		VALUES ($1, CURRENT_DATE, 1)
		ON CONFLICT (template_id, date) DO UPDATE
		SET %[1]s = template_analytics.%[1]s + 1`, column)

	_, err := s.db.ExecContext(ctx, query, templateID)
	return err
}

// GetAnalytics retrieves recent daily buckets for a template, newest first
func (s *Store) GetAnalytics(ctx context.Context, templateID int64, days int) ([]models.TemplateAnalytics, error) {
	if days <= 0 {
		days = 30
	}
	var buckets []models.TemplateAnalytics
	err := s.db.SelectContext(ctx, &buckets, `
		SELECT * FROM template_analytics
		WHERE template_id = $1
		ORDER BY date DESC
		LIMIT $2`,
		templateID, days)
	return buckets, err
}
