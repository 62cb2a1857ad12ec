package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImageRef points at the bytes behind a product image or logo. At most one
// of BlobID or URL is set; a blob-backed ref wins when both could resolve.
type ImageRef struct {
	BlobID *uuid.UUID `json:"blob_id,omitempty"`
	URL    string     `json:"url,omitempty"`
}

// BlobRef returns a ref to an image stored in the database.
func BlobRef(id uuid.UUID) ImageRef {
	return ImageRef{BlobID: &id}
}

// ExternalRef returns a ref to a legacy image addressed by URL.
func ExternalRef(url string) ImageRef {
	return ImageRef{URL: url}
}

// IsZero reports whether the ref points at nothing.
func (r ImageRef) IsZero() bool {
	return r.BlobID == nil && r.URL == ""
}

// DisplayURL resolves the ref to the URL clients should load. Blob-backed
// refs resolve to the byte-serving endpoint; legacy refs resolve to their
// stored URL as-is.
func (r ImageRef) DisplayURL() string {
	if r.BlobID != nil {
		return "/api/images/" + r.BlobID.String()
	}
	return r.URL
}

// Product represents a catalog product. Cover is derived from the image
// gallery and, when non-zero, always references an image owned by this
// product.
type Product struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Price       float64    `json:"price" db:"price"`
	CategoryID  *uuid.UUID `json:"category_id" db:"category_id"`
	Cover       ImageRef   `json:"-"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`

	// Joined category fields, populated by list/detail queries.
	CategoryName *string `json:"category,omitempty"`
	CategorySlug *string `json:"slug,omitempty"`
}

// ProductImage is a gallery entry exclusively owned by its product. Data is
// nil for legacy rows that only carry an external URL. HasBlob mirrors
// whether the row holds bytes so list queries can resolve refs without
// loading payloads.
type ProductImage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	ImageURL  *string   `json:"image_url" db:"image_url"`
	Mime      string    `json:"mime" db:"mime"`
	Data      []byte    `json:"-" db:"data"`
	HasBlob   bool      `json:"-"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Ref returns the image's resolvable reference.
func (pi *ProductImage) Ref() ImageRef {
	if pi.HasBlob {
		return BlobRef(pi.ID)
	}
	if pi.ImageURL != nil && *pi.ImageURL != "" {
		return ExternalRef(*pi.ImageURL)
	}
	return ImageRef{}
}

// Category represents a product category. Deleting a category nulls the
// reference on its products, it never deletes them.
type Category struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
	Slug string    `json:"slug" db:"slug"`
}
