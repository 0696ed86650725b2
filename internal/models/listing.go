package models

import "time"

// ImageMetadata describes an uploaded image. It is produced once per
// uploaded file and embedded by value into a Listing; the URL points at
// the object store and is only valid after the bytes are durably stored.
type ImageMetadata struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"`
	Format string `json:"format"`
}

// Listing is a rentable/shareable space record created by a user.
// The id is assigned by the database, never by the client.
type Listing struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	CategoryID    *int64          `json:"category_id"`
	SubcategoryID *int64          `json:"subcategory_id"`
	Price         string          `json:"price"`
	Currency      string          `json:"currency"`
	FeaturedImage ImageMetadata   `json:"featured_image"`
	Images        []ImageMetadata `json:"images"`
	Address       string          `json:"address"`
	City          string          `json:"city"`
	State         string          `json:"state"`
	Country       string          `json:"country"`
	PostalCode    string          `json:"postal_code"`
	Rules         string          `json:"rules"`
	CreatedAt     time.Time       `json:"created_at"`
}
