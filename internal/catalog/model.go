package catalog

import "time"

// Product is a vendor-owned listing.
type Product struct {
	ID          int64     `json:"id"`
	VendorID    int64     `json:"vendor_id"`
	VendorName  string    `json:"vendor_name,omitempty"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Currency    string    `json:"currency"`
	Tags        []string  `json:"tags"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
