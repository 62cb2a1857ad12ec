package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"wholesale-catalog/internal/domain"
	"wholesale-catalog/internal/repository"
)

type mockBrandingRepository struct {
	settings domain.BrandSettings
	logoData []byte
}

func newMockBrandingRepository() *mockBrandingRepository {
	return &mockBrandingRepository{
		settings: domain.BrandSettings{UpdatedAt: time.Now()},
	}
}

func (m *mockBrandingRepository) Get(ctx context.Context) (*domain.BrandSettings, error) {
	settings := m.settings
	return &settings, nil
}

func (m *mockBrandingRepository) UpdateText(ctx context.Context, name, tagline string) error {
	m.settings.Name = name
	m.settings.Tagline = tagline
	m.settings.UpdatedAt = time.Now()
	return nil
}

func (m *mockBrandingRepository) SetLogo(ctx context.Context, mime string, data []byte) error {
	m.settings.LogoMime = &mime
	m.settings.HasLogo = true
	m.settings.LogoURL = nil
	m.settings.UpdatedAt = time.Now()
	m.logoData = data
	return nil
}

func (m *mockBrandingRepository) ClearLogo(ctx context.Context) error {
	m.settings.LogoMime = nil
	m.settings.HasLogo = false
	m.settings.LogoURL = nil
	m.settings.UpdatedAt = time.Now()
	m.logoData = nil
	return nil
}

func (m *mockBrandingRepository) GetLogo(ctx context.Context) (string, []byte, error) {
	if !m.settings.HasLogo || len(m.logoData) == 0 {
		return "", nil, repository.ErrLogoNotFound
	}
	mime := "image/png"
	if m.settings.LogoMime != nil && *m.settings.LogoMime != "" {
		mime = *m.settings.LogoMime
	}
	return mime, m.logoData, nil
}

func TestPublicView_DefaultsApplied(t *testing.T) {
	repo := newMockBrandingRepository()
	service := NewBrandingService(repo)

	view, err := service.PublicView(context.Background())
	if err != nil {
		t.Fatalf("failed to read view: %v", err)
	}
	if view.Name != DefaultBrandName {
		t.Errorf("expected default name %q, got %q", DefaultBrandName, view.Name)
	}
	if view.Tag != DefaultTagline {
		t.Errorf("expected default tagline %q, got %q", DefaultTagline, view.Tag)
	}
	if view.LogoURL != nil {
		t.Errorf("expected no logo url, got %q", *view.LogoURL)
	}
}

func TestPublicView_BlobWinsOverLegacyURL(t *testing.T) {
	repo := newMockBrandingRepository()
	service := NewBrandingService(repo)
	ctx := context.Background()

	legacy := "https://cdn.example.com/logo.png"
	repo.settings.LogoURL = &legacy

	view, err := service.PublicView(ctx)
	if err != nil {
		t.Fatalf("failed to read view: %v", err)
	}
	if view.LogoURL == nil || *view.LogoURL != legacy {
		t.Fatalf("expected legacy url, got %v", view.LogoURL)
	}

	if err := service.SetLogo(ctx, "image/png", []byte{1, 2}); err != nil {
		t.Fatalf("failed to set logo: %v", err)
	}

	view, err = service.PublicView(ctx)
	if err != nil {
		t.Fatalf("failed to read view: %v", err)
	}
	expected := fmt.Sprintf("/api/branding/logo?t=%d", repo.settings.UpdatedAt.Unix())
	if view.LogoURL == nil || *view.LogoURL != expected {
		t.Errorf("expected blob-backed url %q, got %v", expected, view.LogoURL)
	}
	if !strings.Contains(*view.LogoURL, "?t=") {
		t.Errorf("logo url must carry a cache-busting parameter: %q", *view.LogoURL)
	}
}

func TestSetLogo_RequiresData(t *testing.T) {
	repo := newMockBrandingRepository()
	service := NewBrandingService(repo)

	err := service.SetLogo(context.Background(), "image/png", nil)
	if !errors.Is(err, ErrLogoFileRequired) {
		t.Errorf("expected ErrLogoFileRequired, got %v", err)
	}
}

func TestSetLogo_DefaultsMime(t *testing.T) {
	repo := newMockBrandingRepository()
	service := NewBrandingService(repo)
	ctx := context.Background()

	if err := service.SetLogo(ctx, "", []byte{1}); err != nil {
		t.Fatalf("failed to set logo: %v", err)
	}

	mime, _, err := service.ReadLogo(ctx)
	if err != nil {
		t.Fatalf("failed to read logo: %v", err)
	}
	if mime != "image/png" {
		t.Errorf("expected default mime image/png, got %q", mime)
	}
}

func TestClearLogo_RemovesEveryForm(t *testing.T) {
	repo := newMockBrandingRepository()
	service := NewBrandingService(repo)
	ctx := context.Background()

	if err := service.SetLogo(ctx, "image/png", []byte{1}); err != nil {
		t.Fatalf("failed to set logo: %v", err)
	}
	if err := service.ClearLogo(ctx); err != nil {
		t.Fatalf("failed to clear logo: %v", err)
	}

	view, err := service.PublicView(ctx)
	if err != nil {
		t.Fatalf("failed to read view: %v", err)
	}
	if view.LogoURL != nil {
		t.Errorf("expected no logo after clear, got %q", *view.LogoURL)
	}
	if _, _, err := service.ReadLogo(ctx); !errors.Is(err, repository.ErrLogoNotFound) {
		t.Errorf("expected ErrLogoNotFound after clear, got %v", err)
	}
}

func TestAdminView_CarriesTimestamp(t *testing.T) {
	repo := newMockBrandingRepository()
	service := NewBrandingService(repo)

	_, updatedAt, err := service.AdminView(context.Background())
	if err != nil {
		t.Fatalf("failed to read admin view: %v", err)
	}
	if _, err := time.Parse(time.RFC3339, updatedAt); err != nil {
		t.Errorf("expected RFC3339 timestamp, got %q: %v", updatedAt, err)
	}
}
