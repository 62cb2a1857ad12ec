package repository

import (
	"context"
	"errors"
	"testing"
)

func TestBrandSettings_Lifecycle(t *testing.T) {
	repo := NewBrandingRepository(testDB)
	ctx := context.Background()

	// The migration seeds the singleton row.
	settings, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("failed to read seeded settings: %v", err)
	}
	if settings.Name != "Wholesale.com" {
		t.Errorf("expected seeded name Wholesale.com, got %q", settings.Name)
	}
	if settings.HasLogo {
		t.Error("seeded row should have no logo")
	}
	if _, _, err := repo.GetLogo(ctx); !errors.Is(err, ErrLogoNotFound) {
		t.Errorf("expected ErrLogoNotFound before upload, got %v", err)
	}

	// Text updates leave the logo state alone.
	if err := repo.UpdateText(ctx, "Acme Wholesale", "Buy in bulk"); err != nil {
		t.Fatalf("failed to update text: %v", err)
	}
	settings, err = repo.Get(ctx)
	if err != nil {
		t.Fatalf("failed to reload settings: %v", err)
	}
	if settings.Name != "Acme Wholesale" || settings.Tagline != "Buy in bulk" {
		t.Errorf("text update not persisted: %+v", settings)
	}
	if settings.HasLogo {
		t.Error("text update must not touch the logo")
	}

	// Uploading a blob clears any legacy URL and makes bytes servable.
	if _, err := testDB.Exec(
		`UPDATE brand_settings SET logo_url = 'https://cdn.example.com/legacy.png' WHERE id = 1`,
	); err != nil {
		t.Fatalf("failed to seed legacy url: %v", err)
	}

	if err := repo.SetLogo(ctx, "image/svg+xml", []byte("<svg/>")); err != nil {
		t.Fatalf("failed to set logo: %v", err)
	}
	settings, err = repo.Get(ctx)
	if err != nil {
		t.Fatalf("failed to reload settings: %v", err)
	}
	if !settings.HasLogo {
		t.Error("expected HasLogo after upload")
	}
	if settings.LogoURL != nil {
		t.Errorf("blob upload must clear the legacy url, got %v", *settings.LogoURL)
	}

	mime, data, err := repo.GetLogo(ctx)
	if err != nil {
		t.Fatalf("failed to read logo: %v", err)
	}
	if mime != "image/svg+xml" {
		t.Errorf("expected stored mime, got %q", mime)
	}
	if string(data) != "<svg/>" {
		t.Errorf("logo bytes mismatch: %q", data)
	}

	// Clearing removes every logo form and is idempotent.
	if err := repo.ClearLogo(ctx); err != nil {
		t.Fatalf("failed to clear logo: %v", err)
	}
	if _, _, err := repo.GetLogo(ctx); !errors.Is(err, ErrLogoNotFound) {
		t.Errorf("expected ErrLogoNotFound after clear, got %v", err)
	}
	if err := repo.ClearLogo(ctx); err != nil {
		t.Errorf("repeat clear should succeed: %v", err)
	}
}
