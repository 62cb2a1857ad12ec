package transport

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wholesale-catalog/internal/domain"
	"wholesale-catalog/internal/middleware"
	"wholesale-catalog/internal/repository"
	"wholesale-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// errInvalidMultipart covers malformed and over-limit multipart bodies.
var errInvalidMultipart = errors.New("invalid multipart body")

// ProductResponse is the wire shape of a product. ImageURL is the resolved
// cover reference; clients never see whether it is blob- or URL-backed.
type ProductResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    *string `json:"image_url"`
	CategoryID  *string `json:"category_id"`
	Category    *string `json:"category"`
	Slug        *string `json:"slug"`
	CreatedAt   string  `json:"created_at"`
}

// GalleryImage is one resolved gallery entry.
type GalleryImage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ProductDetailResponse is a product plus its resolved gallery.
type ProductDetailResponse struct {
	ProductResponse
	Images []GalleryImage `json:"images"`
}

// CategoryResponse is the wire shape of a category.
type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CreateCategoryRequest carries a category create payload.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug"`
}

// CatalogHandler handles HTTP requests for products, galleries and
// categories.
type CatalogHandler struct {
	catalogService service.CatalogService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, maxUploadBytes int64, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)
		r.Get("/categories", h.ListCategories)
		r.Get("/images/{id}", h.ServeImage)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/categories", h.CreateCategory)
			r.Delete("/categories/{id}", h.DeleteCategory)

			r.Route("/admin/products", func(r chi.Router) {
				r.Post("/", h.CreateProduct)
				r.Put("/{id}", h.UpdateProduct)
				r.Delete("/{id}", h.DeleteProduct)
				r.Delete("/{id}/images", h.RemoveImageByURL)
				r.Delete("/{id}/images/{imageID}", h.RemoveImageByID)
			})
		})
	})
}

// ListProducts handles the public product listing with an optional
// ?category=slug filter.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	categorySlug := r.URL.Query().Get("category")

	products, err := h.catalogService.ListProducts(r.Context(), categorySlug)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	response := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		response = append(response, toProductResponse(p))
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// GetProduct handles the public product detail with its resolved gallery.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}

	detail, err := h.catalogService.GetProduct(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "failed to read product")
		return
	}

	response := ProductDetailResponse{
		ProductResponse: toProductResponse(detail.Product),
		Images:          make([]GalleryImage, 0, len(detail.Images)),
	}
	for _, img := range detail.Images {
		response.Images = append(response.Images, GalleryImage{
			ID:  img.ID.String(),
			URL: img.Ref().DisplayURL(),
		})
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// CreateProduct handles the multipart admin create: fields plus up to five
// gallery images.
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	input, images, err := h.parseProductForm(w, r)
	if err != nil {
		h.respondServiceError(w, err, "invalid request body")
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), input, images)
	if err != nil {
		h.logger.Error("Product create failed", zap.Error(err))
		h.respondServiceError(w, err, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, toProductResponse(product))
}

// UpdateProduct handles the multipart admin update. Appended images
// continue the gallery sort order; the cover is derived only when absent.
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}

	input, images, err := h.parseProductForm(w, r)
	if err != nil {
		h.respondServiceError(w, err, "invalid request body")
		return
	}

	if err := h.catalogService.UpdateProduct(r.Context(), id, input, images); err != nil {
		h.logger.Error("Product update failed", zap.Error(err), zap.String("product_id", id.String()))
		h.respondServiceError(w, err, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product updated"})
}

// DeleteProduct handles the admin delete of a product and its gallery.
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
		h.respondServiceError(w, err, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// RemoveImageByID handles deleting one gallery image by id.
func (h *CatalogHandler) RemoveImageByID(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}
	imageID, err := uuid.Parse(chi.URLParam(r, "imageID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "image not found")
		return
	}

	if err := h.catalogService.RemoveImageByID(r.Context(), productID, imageID); err != nil {
		h.respondServiceError(w, err, "failed to delete image")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "image deleted"})
}

// RemoveImageByURL handles deleting one legacy gallery image addressed by
// its stored literal URL (?url=...).
func (h *CatalogHandler) RemoveImageByURL(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}

	url := strings.TrimSpace(r.URL.Query().Get("url"))
	if url == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "url parameter is required")
		return
	}

	if err := h.catalogService.RemoveImageByURL(r.Context(), productID, url); err != nil {
		h.respondServiceError(w, err, "failed to delete image")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "image deleted"})
}

// ServeImage streams the raw bytes of a blob-backed image. Blob rows are
// immutable, hence the long-lived cache header.
func (h *CatalogHandler) ServeImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "image not found")
		return
	}

	mime, data, err := h.catalogService.GetImage(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "failed to read image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Write(data)
}

// CreateCategory handles category creation. Re-creating an existing slug
// returns the existing category rather than a conflict.
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.catalogService.CreateCategory(r.Context(), req.Name, req.Slug)
	if err != nil {
		h.logger.Error("Category create failed", zap.Error(err))
		h.respondServiceError(w, err, "failed to create category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CategoryResponse{
		ID:   category.ID.String(),
		Name: category.Name,
		Slug: category.Slug,
	})
}

// ListCategories handles the public category listing.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	response := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		response = append(response, CategoryResponse{
			ID:   c.ID.String(),
			Name: c.Name,
			Slug: c.Slug,
		})
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// DeleteCategory handles category deletion; products keep existing with a
// nulled reference.
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "category not found")
		return
	}

	if err := h.catalogService.DeleteCategory(r.Context(), id); err != nil {
		h.respondServiceError(w, err, "failed to delete category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

// parseProductForm reads the multipart product payload: text fields plus
// the optional images[] files. Bodies over the upload limit fail the parse.
func (h *CatalogHandler) parseProductForm(w http.ResponseWriter, r *http.Request) (service.ProductInput, []repository.NewImage, error) {
	var input service.ProductInput

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return input, nil, errInvalidMultipart
	}

	input.Title = strings.TrimSpace(r.FormValue("title"))
	input.Description = strings.TrimSpace(r.FormValue("description"))

	priceRaw := strings.TrimSpace(r.FormValue("price"))
	price, err := strconv.ParseFloat(priceRaw, 64)
	if err != nil {
		return input, nil, service.ErrInvalidPrice
	}
	input.Price = price

	// An absent or malformed category id means "no category", it is not an
	// error.
	if raw := strings.TrimSpace(r.FormValue("category_id")); raw != "" {
		if categoryID, err := uuid.Parse(raw); err == nil {
			input.CategoryID = &categoryID
		}
	}

	var images []repository.NewImage
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["images"] {
			file, err := header.Open()
			if err != nil {
				return input, nil, err
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				return input, nil, err
			}

			mime := header.Header.Get("Content-Type")
			if mime == "" {
				mime = "image/jpeg"
			}
			images = append(images, repository.NewImage{Mime: mime, Data: data})
		}
	}

	return input, images, nil
}

func toProductResponse(p *domain.Product) ProductResponse {
	response := ProductResponse{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.CategoryName,
		Slug:        p.CategorySlug,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
	}

	if p.CategoryID != nil {
		id := p.CategoryID.String()
		response.CategoryID = &id
	}

	if !p.Cover.IsZero() {
		url := p.Cover.DisplayURL()
		response.ImageURL = &url
	}

	return response
}

// respondServiceError maps service and repository errors onto the HTTP
// boundary: validation failures are 400, lookup misses 404, everything
// else a generic 500 with the detail logged only.
func (h *CatalogHandler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrTooManyImages),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, errInvalidMultipart):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrImageNotFound),
		errors.Is(err, repository.ErrCategoryNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())
	default:
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
