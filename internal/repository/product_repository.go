package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wholesale-catalog/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrImageNotFound   = errors.New("image not found")
)

// NewImage carries one uploaded file into the repository.
type NewImage struct {
	Mime string
	Data []byte
}

// ProductRepository defines the interface for product and gallery data
// access. Every multi-step mutation that touches both product_images and
// the product's cover pointer runs in a single transaction so a reader can
// never observe a cover referencing a deleted image.
type ProductRepository interface {
	CreateWithImages(ctx context.Context, product *domain.Product, images []NewImage) ([]uuid.UUID, error)
	UpdateWithImages(ctx context.Context, product *domain.Product, images []NewImage) ([]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, categorySlug string) ([]*domain.Product, error)
	ListImages(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error)
	RemoveImageByID(ctx context.Context, productID, imageID uuid.UUID) error
	RemoveImageByURL(ctx context.Context, productID uuid.UUID, url string) error
	GetImageBlob(ctx context.Context, imageID uuid.UUID) (string, []byte, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `
	p.id, p.title, p.description, p.price, p.category_id,
	p.cover_image_id, p.cover_image_url, p.created_at,
	c.name, c.slug
`

func scanProduct(row interface{ Scan(...interface{}) error }) (*domain.Product, error) {
	product := &domain.Product{}
	var description sql.NullString
	var coverID *uuid.UUID
	var coverURL sql.NullString

	err := row.Scan(
		&product.ID,
		&product.Title,
		&description,
		&product.Price,
		&product.CategoryID,
		&coverID,
		&coverURL,
		&product.CreatedAt,
		&product.CategoryName,
		&product.CategorySlug,
	)
	if err != nil {
		return nil, err
	}

	product.Description = description.String
	product.Cover = domain.ImageRef{BlobID: coverID, URL: coverURL.String}
	return product, nil
}

// CreateWithImages inserts a product plus its initial gallery in one
// transaction. Images get sort_order 0..n-1 in upload order; the first one
// becomes the cover. On any failure nothing is persisted.
func (r *productRepository) CreateWithImages(ctx context.Context, product *domain.Product, images []NewImage) ([]uuid.UUID, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO products (id, title, description, price, category_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.ExecContext(ctx, query,
		product.ID,
		product.Title,
		product.Description,
		product.Price,
		product.CategoryID,
		product.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	imageIDs, err := insertImages(ctx, tx, product.ID, images, 0)
	if err != nil {
		return nil, err
	}

	if len(imageIDs) > 0 {
		if err := setCover(ctx, tx, product.ID, domain.BlobRef(imageIDs[0])); err != nil {
			return nil, err
		}
		product.Cover = domain.BlobRef(imageIDs[0])
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return imageIDs, nil
}

// UpdateWithImages updates product fields and appends any new images, whose
// sort_order continues after the current maximum. The cover is derived only
// when the product has none; appended images never displace an existing
// cover.
func (r *productRepository) UpdateWithImages(ctx context.Context, product *domain.Product, images []NewImage) ([]uuid.UUID, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE products
		SET title = $2, description = $3, price = $4, category_id = $5
		WHERE id = $1
	`
	result, err := tx.ExecContext(ctx, query,
		product.ID,
		product.Title,
		product.Description,
		product.Price,
		product.CategoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrProductNotFound
	}

	var imageIDs []uuid.UUID
	if len(images) > 0 {
		var maxOrder int
		err = tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(sort_order), -1) FROM product_images WHERE product_id = $1`,
			product.ID,
		).Scan(&maxOrder)
		if err != nil {
			return nil, fmt.Errorf("failed to read max sort order: %w", err)
		}

		imageIDs, err = insertImages(ctx, tx, product.ID, images, maxOrder+1)
		if err != nil {
			return nil, err
		}

		cover, err := readCover(ctx, tx, product.ID)
		if err != nil {
			return nil, err
		}
		if cover.IsZero() {
			if err := setCover(ctx, tx, product.ID, domain.BlobRef(imageIDs[0])); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return imageIDs, nil
}

// Delete removes a product and its whole gallery. The explicit image purge
// is redundant with the cascading constraint but keeps the delete
// idempotent regardless of schema history.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_images WHERE product_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete product images: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return tx.Commit()
}

// FindByID retrieves a product with its joined category.
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.id = $1
	`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves products ordered by creation time descending, optionally
// filtered by exact category slug.
func (r *productRepository) List(ctx context.Context, categorySlug string) ([]*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
	`, productColumns)

	args := []interface{}{}
	if categorySlug != "" {
		query += ` WHERE c.slug = $1`
		args = append(args, categorySlug)
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// ListImages returns the product's gallery ordered by (sort_order, id)
// ascending, without loading blob payloads.
func (r *productRepository) ListImages(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error) {
	query := `
		SELECT id, product_id, image_url, COALESCE(mime, ''),
		       (data IS NOT NULL AND LENGTH(data) > 0), sort_order, created_at
		FROM product_images
		WHERE product_id = $1
		ORDER BY sort_order, id
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product images: %w", err)
	}
	defer rows.Close()

	images := []*domain.ProductImage{}
	for rows.Next() {
		img := &domain.ProductImage{}
		err := rows.Scan(
			&img.ID,
			&img.ProductID,
			&img.ImageURL,
			&img.Mime,
			&img.HasBlob,
			&img.SortOrder,
			&img.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		images = append(images, img)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product images: %w", err)
	}

	return images, nil
}

// RemoveImageByID deletes one gallery image by id and, when the deleted
// image was the cover, re-elects the first remaining image by
// (sort_order, id) in the same transaction.
func (r *productRepository) RemoveImageByID(ctx context.Context, productID, imageID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	img, err := findImageTx(ctx, tx,
		`SELECT id, image_url, (data IS NOT NULL AND LENGTH(data) > 0)
		 FROM product_images WHERE id = $1 AND product_id = $2`,
		imageID, productID,
	)
	if err != nil {
		return err
	}

	if err := deleteImageAndReelect(ctx, tx, productID, img); err != nil {
		return err
	}

	return tx.Commit()
}

// RemoveImageByURL deletes one gallery image by its stored literal URL.
// Used for legacy URL-backed rows that have no blob id to address.
func (r *productRepository) RemoveImageByURL(ctx context.Context, productID uuid.UUID, url string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	img, err := findImageTx(ctx, tx,
		`SELECT id, image_url, (data IS NOT NULL AND LENGTH(data) > 0)
		 FROM product_images WHERE product_id = $2 AND image_url = $1
		 ORDER BY sort_order, id LIMIT 1`,
		url, productID,
	)
	if err != nil {
		return err
	}

	if err := deleteImageAndReelect(ctx, tx, productID, img); err != nil {
		return err
	}

	return tx.Commit()
}

// GetImageBlob returns the stored bytes and mime type for a blob-backed
// image. Legacy URL-only rows report not found; they have no bytes to serve.
func (r *productRepository) GetImageBlob(ctx context.Context, imageID uuid.UUID) (string, []byte, error) {
	var mime sql.NullString
	var data []byte

	err := r.db.QueryRowContext(ctx,
		`SELECT mime, data FROM product_images WHERE id = $1`,
		imageID,
	).Scan(&mime, &data)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil, ErrImageNotFound
		}
		return "", nil, fmt.Errorf("failed to read image blob: %w", err)
	}

	if len(data) == 0 {
		return "", nil, ErrImageNotFound
	}

	if !mime.Valid || mime.String == "" {
		mime.String = "application/octet-stream"
	}
	return mime.String, data, nil
}

func insertImages(ctx context.Context, tx *sql.Tx, productID uuid.UUID, images []NewImage, startOrder int) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(images))
	for i, img := range images {
		id := uuid.New()
		_, err := tx.ExecContext(ctx,
			`INSERT INTO product_images (id, product_id, mime, data, sort_order, created_at)
			 VALUES ($1, $2, $3, $4, $5, NOW())`,
			id, productID, img.Mime, img.Data, startOrder+i,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert image: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func readCover(ctx context.Context, tx *sql.Tx, productID uuid.UUID) (domain.ImageRef, error) {
	var coverID *uuid.UUID
	var coverURL sql.NullString

	err := tx.QueryRowContext(ctx,
		`SELECT cover_image_id, cover_image_url FROM products WHERE id = $1`,
		productID,
	).Scan(&coverID, &coverURL)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.ImageRef{}, ErrProductNotFound
		}
		return domain.ImageRef{}, fmt.Errorf("failed to read cover: %w", err)
	}

	return domain.ImageRef{BlobID: coverID, URL: coverURL.String}, nil
}

func setCover(ctx context.Context, tx *sql.Tx, productID uuid.UUID, cover domain.ImageRef) error {
	var url interface{}
	if cover.BlobID == nil && cover.URL != "" {
		url = cover.URL
	}

	_, err := tx.ExecContext(ctx,
		`UPDATE products SET cover_image_id = $2, cover_image_url = $3 WHERE id = $1`,
		productID, cover.BlobID, url,
	)
	if err != nil {
		return fmt.Errorf("failed to set cover: %w", err)
	}
	return nil
}

func findImageTx(ctx context.Context, tx *sql.Tx, query string, args ...interface{}) (*domain.ProductImage, error) {
	img := &domain.ProductImage{}
	err := tx.QueryRowContext(ctx, query, args...).Scan(&img.ID, &img.ImageURL, &img.HasBlob)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to find image: %w", err)
	}
	return img, nil
}

// deleteImageAndReelect removes the row and repairs the cover pointer if it
// referenced the deleted image, either by blob id or by stored URL.
func deleteImageAndReelect(ctx context.Context, tx *sql.Tx, productID uuid.UUID, img *domain.ProductImage) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_images WHERE id = $1`, img.ID); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	cover, err := readCover(ctx, tx, productID)
	if err != nil {
		return err
	}

	wasCover := (cover.BlobID != nil && *cover.BlobID == img.ID) ||
		(cover.URL != "" && img.ImageURL != nil && cover.URL == *img.ImageURL)
	if !wasCover {
		return nil
	}

	next := &domain.ProductImage{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, image_url, (data IS NOT NULL AND LENGTH(data) > 0)
		 FROM product_images WHERE product_id = $1
		 ORDER BY sort_order, id LIMIT 1`,
		productID,
	).Scan(&next.ID, &next.ImageURL, &next.HasBlob)
	if err != nil {
		if err == sql.ErrNoRows {
			return setCover(ctx, tx, productID, domain.ImageRef{})
		}
		return fmt.Errorf("failed to find replacement cover: %w", err)
	}

	return setCover(ctx, tx, productID, next.Ref())
}
