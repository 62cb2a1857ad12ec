package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"wholesale-catalog/internal/domain"
	"wholesale-catalog/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// MaxImagesPerUpload caps a single upload batch. It is a per-call cap only:
// repeated uploads may grow a gallery past it.
const MaxImagesPerUpload = 5

var (
	ErrTitleRequired = errors.New("title is required")
	ErrInvalidPrice  = errors.New("price must be a valid number")
	ErrTooManyImages = errors.New("too many images in one upload")
	ErrNameRequired  = errors.New("category name is required")
)

// ProductInput carries validated product fields into the catalog.
type ProductInput struct {
	Title       string
	Description string
	Price       float64
	CategoryID  *uuid.UUID
}

// ProductDetail is a product plus its ordered gallery.
type ProductDetail struct {
	Product *domain.Product
	Images  []*domain.ProductImage
}

// CatalogService defines the business logic over products, galleries and
// categories.
type CatalogService interface {
	ListProducts(ctx context.Context, categorySlug string) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDetail, error)
	CreateProduct(ctx context.Context, in ProductInput, images []repository.NewImage) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput, images []repository.NewImage) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	RemoveImageByID(ctx context.Context, productID, imageID uuid.UUID) error
	RemoveImageByURL(ctx context.Context, productID uuid.UUID, url string) error
	GetImage(ctx context.Context, id uuid.UUID) (string, []byte, error)

	CreateCategory(ctx context.Context, name, slug string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// ListProducts returns products newest first, optionally filtered by exact
// category slug.
func (s *catalogService) ListProducts(ctx context.Context, categorySlug string) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx, categorySlug)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct returns a product with its gallery ordered by (sort_order, id).
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDetail, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	images, err := s.productRepo.ListImages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load gallery: %w", err)
	}

	return &ProductDetail{Product: product, Images: images}, nil
}

// CreateProduct validates the input and stores the product with its initial
// gallery. The first uploaded image becomes the cover.
func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput, images []repository.NewImage) (*domain.Product, error) {
	if err := validateProductInput(in, images); err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		CreatedAt:   time.Now(),
	}

	if _, err := s.productRepo.CreateWithImages(ctx, product, images); err != nil {
		return nil, err
	}

	return product, nil
}

// UpdateProduct validates and updates product fields; appended images
// continue the gallery's sort order and only become the cover when the
// product had none.
func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput, images []repository.NewImage) error {
	if err := validateProductInput(in, images); err != nil {
		return err
	}

	product := &domain.Product{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
	}

	_, err := s.productRepo.UpdateWithImages(ctx, product, images)
	return err
}

// DeleteProduct removes the product together with its gallery.
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// RemoveImageByID removes one gallery image; the cover is re-elected when
// the removed image held it.
func (s *catalogService) RemoveImageByID(ctx context.Context, productID, imageID uuid.UUID) error {
	return s.productRepo.RemoveImageByID(ctx, productID, imageID)
}

// RemoveImageByURL removes a legacy URL-backed gallery image by its stored
// literal URL.
func (s *catalogService) RemoveImageByURL(ctx context.Context, productID uuid.UUID, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return repository.ErrImageNotFound
	}
	return s.productRepo.RemoveImageByURL(ctx, productID, url)
}

// GetImage returns the raw bytes and mime type of a blob-backed image.
func (s *catalogService) GetImage(ctx context.Context, id uuid.UUID) (string, []byte, error) {
	return s.productRepo.GetImageBlob(ctx, id)
}

// CreateCategory creates a category, deriving the slug from the name when
// absent. Creating an already-existing slug returns the existing category.
func (s *catalogService) CreateCategory(ctx context.Context, name, slug string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = Slugify(name)
	} else {
		slug = Slugify(slug)
	}
	if slug == "" {
		return nil, ErrNameRequired
	}

	category := &domain.Category{
		ID:   uuid.New(),
		Name: name,
		Slug: slug,
	}

	return s.categoryRepo.Create(ctx, category)
}

// ListCategories returns all categories ordered by name.
func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

// DeleteCategory removes a category; its products keep existing with a
// nulled category reference.
func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categoryRepo.Delete(ctx, id)
}

func validateProductInput(in ProductInput, images []repository.NewImage) error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrTitleRequired
	}
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		return ErrInvalidPrice
	}
	if len(images) > MaxImagesPerUpload {
		return ErrTooManyImages
	}
	return nil
}

// Slugify normalizes a category name into a URL slug: lowercase, diacritics
// stripped, runs of non-alphanumerics collapsed to single dashes, trimmed,
// at most 80 characters.
func Slugify(s string) string {
	s = strings.ToLower(s)

	decomposed := norm.NFD.String(s)
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark stripped
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > 80 {
		slug = strings.TrimRight(slug[:80], "-")
	}
	return slug
}
