package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"template-marketplace/internal/models"
	"template-marketplace/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalogStore struct {
	templates map[string]*models.Template // slug -> template
	paid      map[string]bool
	inCart    map[string]bool
	wishes    map[string]bool
	reviews   map[int64][]models.Review
	buckets   map[int64][]models.TemplateAnalytics
	bumps     map[string]int
}

func newFakeCatalogStore() *fakeCatalogStore {
	return &fakeCatalogStore{
		templates: make(map[string]*models.Template),
		paid:      make(map[string]bool),
		inCart:    make(map[string]bool),
		wishes:    make(map[string]bool),
		reviews:   make(map[int64][]models.Review),
		buckets:   make(map[int64][]models.TemplateAnalytics),
		bumps:     make(map[string]int),
	}
}

func (f *fakeCatalogStore) ListTemplates(_ context.Context, _ store.TemplateFilter) ([]models.Template, error) {
	var out []models.Template
	for _, tpl := range f.templates {
		out = append(out, *tpl)
	}
	return out, nil
}

func (f *fakeCatalogStore) GetTemplateBySlug(_ context.Context, slug string) (*models.Template, error) {
	tpl, ok := f.templates[slug]
	if !ok {
		return nil, fmt.Errorf("template not found: %s", slug)
	}
	clone := *tpl
	return &clone, nil
}

func (f *fakeCatalogStore) GetCategories(_ context.Context) ([]models.Category, error) {
	return nil, nil
}

func (f *fakeCatalogStore) IncrementTemplateViews(_ context.Context, templateID int64) error {
	for _, tpl := range f.templates {
		if tpl.ID == templateID {
			tpl.Views++
		}
	}
	return nil
}

func (f *fakeCatalogStore) BumpAnalytics(_ context.Context, templateID int64, column string) error {
	f.bumps[fmt.Sprintf("%d/%s", templateID, column)]++
	return nil
}

func (f *fakeCatalogStore) HasPaidPurchase(_ context.Context, userID, templateID int64) (bool, error) {
	return f.paid[key(userID, templateID)], nil
}

func (f *fakeCatalogStore) HasCartItem(_ context.Context, userID, templateID int64) (bool, error) {
	return f.inCart[key(userID, templateID)], nil
}

func (f *fakeCatalogStore) IsWishlisted(_ context.Context, userID, templateID int64) (bool, error) {
	return f.wishes[key(userID, templateID)], nil
}

func (f *fakeCatalogStore) ListReviews(_ context.Context, templateID int64, _ int) ([]models.Review, error) {
	return f.reviews[templateID], nil
}

func (f *fakeCatalogStore) GetAnalytics(_ context.Context, templateID int64, _ int) ([]models.TemplateAnalytics, error) {
	return f.buckets[templateID], nil
}

// fakeViewDeduper counts each (template, viewer) pair as unique once
type fakeViewDeduper struct {
	seen map[string]bool
}

func (d *fakeViewDeduper) MarkUniqueView(_ context.Context, templateID, viewerID int64, _ time.Time) (bool, error) {
	k := fmt.Sprintf("%d/%d", templateID, viewerID)
	if d.seen[k] {
		return false, nil
	}
	d.seen[k] = true
	return true, nil
}

type viewEventRecorder struct {
	events []*models.TemplateViewedEvent
}

func (r *viewEventRecorder) PublishTemplateViewed(_ context.Context, e *models.TemplateViewedEvent) error {
	r.events = append(r.events, e)
	return nil
}

func newTestCatalog() (*CatalogService, *fakeCatalogStore, *viewEventRecorder) {
	st := newFakeCatalogStore()
	st.templates["landing"] = &models.Template{ID: 10, Slug: "landing", OwnerID: 99, IsPublished: true}
	recorder := &viewEventRecorder{}
	svc := NewCatalogService(st, &fakeViewDeduper{seen: make(map[string]bool)}, recorder)
	return svc, st, recorder
}

func TestCatalogGetBumpsViewCounters(t *testing.T) {
	svc, st, recorder := newTestCatalog()

	detail, err := svc.Get(context.Background(), "landing", 1)

	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.Template.Views)
	assert.Equal(t, 1, st.bumps["10/views"])
	assert.Equal(t, 1, st.bumps["10/unique_views"])
	assert.Len(t, recorder.events, 1)
	assert.Equal(t, int64(10), recorder.events[0].TemplateID)
}

func TestCatalogGetUniqueViewCountedOncePerViewer(t *testing.T) {
	svc, st, _ := newTestCatalog()

	_, err := svc.Get(context.Background(), "landing", 1)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), "landing", 1)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), "landing", 2)
	require.NoError(t, err)

	assert.Equal(t, 3, st.bumps["10/views"], "raw views count every hit")
	assert.Equal(t, 2, st.bumps["10/unique_views"], "unique views count distinct viewers")
}

func TestCatalogGetAnonymousSkipsViewerState(t *testing.T) {
	svc, st, _ := newTestCatalog()
	st.paid[key(1, 10)] = true

	detail, err := svc.Get(context.Background(), "landing", 0)

	require.NoError(t, err)
	assert.False(t, detail.Purchased)
	assert.False(t, detail.InCart)
	assert.False(t, detail.Wishlisted)
	assert.Zero(t, st.bumps["10/unique_views"], "anonymous views are never unique")
}

func TestCatalogGetViewerFlags(t *testing.T) {
	svc, st, _ := newTestCatalog()
	st.paid[key(1, 10)] = true
	st.inCart[key(1, 10)] = true
	st.wishes[key(1, 10)] = true

	detail, err := svc.Get(context.Background(), "landing", 1)

	require.NoError(t, err)
	assert.True(t, detail.Purchased)
	assert.True(t, detail.InCart)
	assert.True(t, detail.Wishlisted)
}

func TestCatalogAnalyticsOwnerOnly(t *testing.T) {
	svc, st, _ := newTestCatalog()
	st.buckets[10] = []models.TemplateAnalytics{{TemplateID: 10, Views: 5}}

	_, err := svc.Analytics(context.Background(), "landing", 1, 30)
	assert.ErrorIs(t, err, ErrNotTemplateOwner)

	buckets, err := svc.Analytics(context.Background(), "landing", 99, 30)
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, int64(5), buckets[0].Views)
}
