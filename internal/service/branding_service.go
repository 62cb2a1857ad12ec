package service

import (
	"context"
	"errors"
	"fmt"

	"wholesale-catalog/internal/repository"
)

// Fallbacks applied when the settings row has empty name or tagline.
const (
	DefaultBrandName = "Wholesale.com"
	DefaultTagline   = "Secure wholesale buying"
)

var (
	ErrLogoFileRequired = errors.New("logo file is required")
)

// BrandingView is the resolved public view of the brand settings. LogoURL
// is the byte-serving endpoint when a blob is stored, the legacy external
// URL when only that exists, and nil when there is no logo at all.
type BrandingView struct {
	Name    string  `json:"name"`
	Tag     string  `json:"tag"`
	LogoURL *string `json:"logo_url"`
}

// BrandingService defines the business logic over the singleton brand
// settings.
type BrandingService interface {
	PublicView(ctx context.Context) (*BrandingView, error)
	AdminView(ctx context.Context) (*BrandingView, string, error)
	UpdateText(ctx context.Context, name, tag string) error
	SetLogo(ctx context.Context, mime string, data []byte) error
	ClearLogo(ctx context.Context) error
	ReadLogo(ctx context.Context) (string, []byte, error)
}

type brandingService struct {
	brandingRepo repository.BrandingRepository
}

// NewBrandingService creates a new instance of BrandingService
func NewBrandingService(brandingRepo repository.BrandingRepository) BrandingService {
	return &brandingService{brandingRepo: brandingRepo}
}

// PublicView resolves the settings row into what the storefront renders.
func (s *brandingService) PublicView(ctx context.Context) (*BrandingView, error) {
	view, _, err := s.resolve(ctx)
	return view, err
}

// AdminView is the public view plus the last-updated timestamp.
func (s *brandingService) AdminView(ctx context.Context) (*BrandingView, string, error) {
	return s.resolve(ctx)
}

func (s *brandingService) resolve(ctx context.Context) (*BrandingView, string, error) {
	settings, err := s.brandingRepo.Get(ctx)
	if err != nil {
		return nil, "", err
	}

	view := &BrandingView{
		Name: settings.Name,
		Tag:  settings.Tagline,
	}
	if view.Name == "" {
		view.Name = DefaultBrandName
	}
	if view.Tag == "" {
		view.Tag = DefaultTagline
	}

	// Blob wins over a lingering legacy URL. The timestamp query parameter
	// busts client caches when the logo changes.
	if settings.HasLogo {
		url := fmt.Sprintf("/api/branding/logo?t=%d", settings.UpdatedAt.Unix())
		view.LogoURL = &url
	} else if settings.LogoURL != nil && *settings.LogoURL != "" {
		view.LogoURL = settings.LogoURL
	}

	return view, settings.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"), nil
}

// UpdateText updates name and tagline, leaving the logo untouched.
func (s *brandingService) UpdateText(ctx context.Context, name, tag string) error {
	return s.brandingRepo.UpdateText(ctx, name, tag)
}

// SetLogo stores the uploaded blob and clears any legacy URL.
func (s *brandingService) SetLogo(ctx context.Context, mime string, data []byte) error {
	if len(data) == 0 {
		return ErrLogoFileRequired
	}
	if mime == "" {
		mime = "image/png"
	}
	return s.brandingRepo.SetLogo(ctx, mime, data)
}

// ClearLogo removes the logo entirely, both blob and legacy URL.
func (s *brandingService) ClearLogo(ctx context.Context) error {
	return s.brandingRepo.ClearLogo(ctx)
}

// ReadLogo returns the raw stored logo bytes, or ErrLogoNotFound when no
// blob is present.
func (s *brandingService) ReadLogo(ctx context.Context) (string, []byte, error) {
	return s.brandingRepo.GetLogo(ctx)
}
