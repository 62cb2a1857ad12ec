package domain

import "time"

// BrandSettings is the singleton site-branding record. The logo is either a
// blob (LogoMime + bytes), a legacy external URL, or absent; at most one of
// {LogoURL, blob} is populated at a time and the blob wins if both could
// resolve. The row is created once at schema initialization and only ever
// updated.
type BrandSettings struct {
	Name      string    `json:"name" db:"brand_name"`
	Tagline   string    `json:"tagline" db:"tagline"`
	LogoURL   *string   `json:"logo_url" db:"logo_url"`
	LogoMime  *string   `json:"-" db:"logo_mime"`
	HasLogo   bool      `json:"-"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
