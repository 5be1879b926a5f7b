package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"template-marketplace/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetTemplateByID retrieves a template by ID
func (s *Store) GetTemplateByID(ctx context.Context, id int64) (*models.Template, error) {
	var tpl models.Template
	err := s.db.GetContext(ctx, &tpl, "SELECT * FROM templates WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("template not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

// GetTemplateBySlug retrieves a published template by slug
func (s *Store) GetTemplateBySlug(ctx context.Context, slug string) (*models.Template, error) {
	var tpl models.Template
	err := s.db.GetContext(ctx, &tpl,
		"SELECT * FROM templates WHERE slug = $1 AND is_published = TRUE", slug)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("template not found: %s", slug)
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

// TemplateFilter narrows catalog listings
type TemplateFilter struct {
	Query        string
	CategorySlug string
	FreeOnly     bool
	PaidOnly     bool
	MinRating    float64
	Sort         string
	Limit        int
	Offset       int
}

// ListTemplates retrieves published templates matching the filter
func (s *Store) ListTemplates(ctx context.Context, f TemplateFilter) ([]models.Template, error) {
	query := "SELECT t.* FROM templates t"
	var conds []string
	var args []interface{}

	if f.CategorySlug != "" {
		query += " JOIN categories c ON c.id = t.category_id"
		args = append(args, f.CategorySlug)
		conds = append(conds, fmt.Sprintf("c.slug = $%d", len(args)))
	}

	conds = append(conds, "t.is_published = TRUE")

	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		conds = append(conds, fmt.Sprintf("(t.name ILIKE $%d OR t.description ILIKE $%d)", len(args), len(args)))
	}
	if f.FreeOnly {
		conds = append(conds, "t.is_free = TRUE")
	}
	if f.PaidOnly {
		conds = append(conds, "t.is_free = FALSE")
	}
	if f.MinRating > 0 {
		args = append(args, f.MinRating)
		conds = append(conds, fmt.Sprintf("t.rating >= $%d", len(args)))
	}

	query += " WHERE " + strings.Join(conds, " AND ")

	switch f.Sort {
	case "popular":
		query += " ORDER BY t.views DESC"
	case "rating":
		query += " ORDER BY t.rating DESC"
	case "price_low":
		query += " ORDER BY t.price ASC"
	case "price_high":
		query += " ORDER BY t.price DESC"
	default:
		query += " ORDER BY t.created_at DESC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 12
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, f.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var templates []models.Template
	err := s.db.SelectContext(ctx, &templates, query, args...)
	return templates, err
}

// GetCategories retrieves all categories
func (s *Store) GetCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.SelectContext(ctx, &categories, "SELECT * FROM categories ORDER BY name")
	return categories, err
}

// IncrementTemplateViews bumps the view counter atomically
func (s *Store) IncrementTemplateViews(ctx context.Context, templateID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE templates SET views = views + 1 WHERE id = $1", templateID)
	return err
}
