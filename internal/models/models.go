package models

import "time"

// Template represents a website template in the catalog
type Template struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Slug         string    `db:"slug" json:"slug"`
	Description  string    `db:"description" json:"description"`
	CategoryID   int64     `db:"category_id" json:"category_id"`
	Price        int64     `db:"price" json:"price"`
	IsFree       bool      `db:"is_free" json:"is_free"`
	ThumbnailURL string    `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	DemoURL      string    `db:"demo_url" json:"demo_url,omitempty"`
	ZipPath      string    `db:"zip_path" json:"-"`
	OwnerID      int64     `db:"owner_id" json:"owner_id"`
	Views        int64     `db:"views" json:"views"`
	Downloads    int64     `db:"downloads" json:"downloads"`
	Rating       float64   `db:"rating" json:"rating"`
	TotalReviews int       `db:"total_reviews" json:"total_reviews"`
	IsPublished  bool      `db:"is_published" json:"is_published"`
	IsFeatured   bool      `db:"is_featured" json:"is_featured"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Category groups templates
type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
}

// CartItem represents a template sitting in a user's cart.
// Unique per (user, template); quantity is 1 for a single-license good
// but totals are always computed as price * quantity.
type CartItem struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	TemplateID int64     `db:"template_id" json:"template_id"`
	Quantity   int       `db:"quantity" json:"quantity"`
	AddedAt    time.Time `db:"added_at" json:"added_at"`
}

// CartEntry is a cart item joined with its template for display and totals
type CartEntry struct {
	CartItem
	TemplateName string `db:"template_name" json:"template_name"`
	TemplateSlug string `db:"template_slug" json:"template_slug"`
	UnitPrice    int64  `db:"unit_price" json:"unit_price"`
}

// Total returns the line total in minor units
func (e *CartEntry) Total() int64 {
	return e.UnitPrice * int64(e.Quantity)
}

// Purchase is the durable record of a paid (or pending) template purchase.
// Unique per (user, template); Paid is monotone, LicenseKey is minted once
// at row creation and never reissued.
type Purchase struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	TemplateID  int64     `db:"template_id" json:"template_id"`
	OrderID     string    `db:"order_id" json:"order_id,omitempty"`
	PaymentID   string    `db:"payment_id" json:"payment_id,omitempty"`
	Amount      int64     `db:"amount" json:"amount"`
	Paid        bool      `db:"paid" json:"paid"`
	LicenseKey  string    `db:"license_key" json:"license_key,omitempty"`
	PurchasedAt time.Time `db:"purchased_at" json:"purchased_at"`
}

// Review is a buyer's rating of a template, unique per (template, user)
type Review struct {
	ID         int64     `db:"id" json:"id"`
	TemplateID int64     `db:"template_id" json:"template_id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    string    `db:"comment" json:"comment"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// TemplateAnalytics is the per-day counter bucket for a template
type TemplateAnalytics struct {
	ID            int64     `db:"id" json:"id"`
	TemplateID    int64     `db:"template_id" json:"template_id"`
	Date          time.Time `db:"date" json:"date"`
	Views         int64     `db:"views" json:"views"`
	UniqueViews   int64     `db:"unique_views" json:"unique_views"`
	Downloads     int64     `db:"downloads" json:"downloads"`
	Purchases     int64     `db:"purchases" json:"purchases"`
	CartAdditions int64     `db:"cart_additions" json:"cart_additions"`
	Revenue       int64     `db:"revenue" json:"revenue"`
}

// WishlistItem marks a template a user wants to come back to
type WishlistItem struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	TemplateID int64     `db:"template_id" json:"template_id"`
	AddedAt    time.Time `db:"added_at" json:"added_at"`
}

// UserProfile carries denormalized buyer stats, maintained by the
// profile-stats worker from purchase events
type UserProfile struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	Bio            string    `db:"bio" json:"bio"`
	TotalPurchases int64     `db:"total_purchases" json:"total_purchases"`
	TotalSpent     int64     `db:"total_spent" json:"total_spent"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ProcessedEvent for consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
