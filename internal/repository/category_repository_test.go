package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"wholesale-catalog/internal/domain"

	"github.com/google/uuid"
)

func TestCategoryCreate_DuplicateSlugReturnsExisting(t *testing.T) {
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	suffix := uuid.New().String()[:8]
	first, err := repo.Create(ctx, &domain.Category{
		ID:   uuid.New(),
		Name: "Tools " + suffix,
		Slug: "tools-" + suffix,
	})
	if err != nil {
		t.Fatalf("failed to create category: %v", err)
	}

	// Same slug again, different candidate id. The original row wins.
	second, err := repo.Create(ctx, &domain.Category{
		ID:   uuid.New(),
		Name: "Tools again " + suffix,
		Slug: "tools-" + suffix,
	})
	if err != nil {
		t.Fatalf("duplicate create should not error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected existing category %s, got %s", first.ID, second.ID)
	}

	var count int
	if err := testDB.QueryRow(
		`SELECT COUNT(*) FROM categories WHERE slug = $1`, first.Slug,
	).Scan(&count); err != nil {
		t.Fatalf("failed to count categories: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly 1 row for slug, got %d", count)
	}
}

func TestCategoryCreate_DuplicateNameReturnsExisting(t *testing.T) {
	repo := NewCategoryRepository(testDB)
	ctx := context.Background()

	suffix := uuid.New().String()[:8]
	first, err := repo.Create(ctx, &domain.Category{
		ID:   uuid.New(),
		Name: "Garden " + suffix,
		Slug: "garden-" + suffix,
	})
	if err != nil {
		t.Fatalf("failed to create category: %v", err)
	}

	second, err := repo.Create(ctx, &domain.Category{
		ID:   uuid.New(),
		Name: "Garden " + suffix,
		Slug: "garden-other-" + suffix,
	})
	if err != nil {
		t.Fatalf("duplicate create should not error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected existing category %s, got %s", first.ID, second.ID)
	}
}

func TestCategoryDelete_NullsProductReferences(t *testing.T) {
	categoryRepo := NewCategoryRepository(testDB)
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()

	suffix := uuid.New().String()[:8]
	category, err := categoryRepo.Create(ctx, &domain.Category{
		ID:   uuid.New(),
		Name: "Season " + suffix,
		Slug: "season-" + suffix,
	})
	if err != nil {
		t.Fatalf("failed to create category: %v", err)
	}

	product := &domain.Product{
		ID:         uuid.New(),
		Title:      "Seasonal crate",
		Price:      9.99,
		CategoryID: &category.ID,
		CreatedAt:  time.Now(),
	}
	if _, err := productRepo.CreateWithImages(ctx, product, nil); err != nil {
		t.Fatalf("failed to create product: %v", err)
	}

	if err := categoryRepo.Delete(ctx, category.ID); err != nil {
		t.Fatalf("failed to delete category: %v", err)
	}

	// The product survives with a nulled reference.
	reloaded, err := productRepo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("product should survive category delete: %v", err)
	}
	if reloaded.CategoryID != nil {
		t.Errorf("expected nulled category reference, got %v", reloaded.CategoryID)
	}

	if err := categoryRepo.Delete(ctx, category.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("expected ErrCategoryNotFound on repeat delete, got %v", err)
	}
}
