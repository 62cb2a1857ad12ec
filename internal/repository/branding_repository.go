package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wholesale-catalog/internal/domain"
)

var (
	ErrLogoNotFound = errors.New("logo not found")
)

// brandSettingsID is the fixed id of the singleton row, seeded by the
// schema migration. It never leaks outside this file.
const brandSettingsID = 1

// BrandingRepository is the narrow accessor for the singleton brand
// settings row. The row is only ever updated, never inserted or deleted
// here.
type BrandingRepository interface {
	Get(ctx context.Context) (*domain.BrandSettings, error)
	UpdateText(ctx context.Context, name, tagline string) error
	SetLogo(ctx context.Context, mime string, data []byte) error
	ClearLogo(ctx context.Context) error
	GetLogo(ctx context.Context) (string, []byte, error)
}

type brandingRepository struct {
	db *sql.DB
}

// NewBrandingRepository creates a new instance of BrandingRepository
func NewBrandingRepository(db *sql.DB) BrandingRepository {
	return &brandingRepository{db: db}
}

// Get reads the settings row without loading logo bytes.
func (r *brandingRepository) Get(ctx context.Context) (*domain.BrandSettings, error) {
	query := `
		SELECT COALESCE(brand_name, ''), COALESCE(tagline, ''), logo_url, logo_mime,
		       (logo_data IS NOT NULL AND LENGTH(logo_data) > 0), updated_at
		FROM brand_settings
		WHERE id = $1
	`

	settings := &domain.BrandSettings{}
	err := r.db.QueryRowContext(ctx, query, brandSettingsID).Scan(
		&settings.Name,
		&settings.Tagline,
		&settings.LogoURL,
		&settings.LogoMime,
		&settings.HasLogo,
		&settings.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read brand settings: %w", err)
	}

	return settings, nil
}

// UpdateText updates name and tagline only; logo fields are untouched.
func (r *brandingRepository) UpdateText(ctx context.Context, name, tagline string) error {
	query := `
		UPDATE brand_settings
		SET brand_name = $2, tagline = $3, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, brandSettingsID, name, tagline); err != nil {
		return fmt.Errorf("failed to update brand settings: %w", err)
	}
	return nil
}

// SetLogo stores the blob and clears the legacy URL in one statement,
// keeping the blob-or-URL exclusivity invariant.
func (r *brandingRepository) SetLogo(ctx context.Context, mime string, data []byte) error {
	query := `
		UPDATE brand_settings
		SET logo_mime = $2, logo_data = $3, logo_url = NULL, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, brandSettingsID, mime, data); err != nil {
		return fmt.Errorf("failed to set logo: %w", err)
	}
	return nil
}

// ClearLogo nulls blob and URL together. "No logo" is a distinct state
// from either logo form.
func (r *brandingRepository) ClearLogo(ctx context.Context) error {
	query := `
		UPDATE brand_settings
		SET logo_mime = NULL, logo_data = NULL, logo_url = NULL, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, brandSettingsID); err != nil {
		return fmt.Errorf("failed to clear logo: %w", err)
	}
	return nil
}

// GetLogo returns the stored logo bytes and mime type. An unpopulated blob
// is the expected steady state, surfaced as ErrLogoNotFound.
func (r *brandingRepository) GetLogo(ctx context.Context) (string, []byte, error) {
	var mime sql.NullString
	var data []byte

	err := r.db.QueryRowContext(ctx,
		`SELECT logo_mime, logo_data FROM brand_settings WHERE id = $1`,
		brandSettingsID,
	).Scan(&mime, &data)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil, ErrLogoNotFound
		}
		return "", nil, fmt.Errorf("failed to read logo: %w", err)
	}

	if len(data) == 0 {
		return "", nil, ErrLogoNotFound
	}

	if !mime.Valid || mime.String == "" {
		mime.String = "image/png"
	}
	return mime.String, data, nil
}
