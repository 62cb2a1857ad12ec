package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"wholesale-catalog/internal/domain"
	"wholesale-catalog/internal/repository"
	"wholesale-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mock repositories for testing

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
	images   map[uuid.UUID][]*domain.ProductImage
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[uuid.UUID]*domain.Product),
		images:   make(map[uuid.UUID][]*domain.ProductImage),
	}
}

func (m *mockProductRepository) CreateWithImages(ctx context.Context, product *domain.Product, images []repository.NewImage) ([]uuid.UUID, error) {
	stored := *product
	m.products[product.ID] = &stored

	ids := make([]uuid.UUID, 0, len(images))
	for i, img := range images {
		id := uuid.New()
		m.images[product.ID] = append(m.images[product.ID], &domain.ProductImage{
			ID:        id,
			ProductID: product.ID,
			Mime:      img.Mime,
			Data:      img.Data,
			HasBlob:   len(img.Data) > 0,
			SortOrder: i,
			CreatedAt: time.Now(),
		})
		ids = append(ids, id)
	}
	if len(ids) > 0 {
		product.Cover = domain.BlobRef(ids[0])
		m.products[product.ID].Cover = domain.BlobRef(ids[0])
	}
	return ids, nil
}

func (m *mockProductRepository) UpdateWithImages(ctx context.Context, product *domain.Product, images []repository.NewImage) ([]uuid.UUID, error) {
	if _, ok := m.products[product.ID]; !ok {
		return nil, repository.ErrProductNotFound
	}
	return nil, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	delete(m.images, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockProductRepository) List(ctx context.Context, categorySlug string) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for _, p := range m.products {
		products = append(products, p)
	}
	return products, nil
}

func (m *mockProductRepository) ListImages(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error) {
	return m.images[productID], nil
}

func (m *mockProductRepository) RemoveImageByID(ctx context.Context, productID, imageID uuid.UUID) error {
	return repository.ErrImageNotFound
}

func (m *mockProductRepository) RemoveImageByURL(ctx context.Context, productID uuid.UUID, url string) error {
	return repository.ErrImageNotFound
}

func (m *mockProductRepository) GetImageBlob(ctx context.Context, imageID uuid.UUID) (string, []byte, error) {
	for _, images := range m.images {
		for _, img := range images {
			if img.ID == imageID && len(img.Data) > 0 {
				return img.Mime, img.Data, nil
			}
		}
	}
	return "", nil, repository.ErrImageNotFound
}

type mockCategoryRepository struct {
	categories map[string]*domain.Category
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{categories: make(map[string]*domain.Category)}
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if existing, ok := m.categories[category.Slug]; ok {
		return existing, nil
	}
	m.categories[category.Slug] = category
	return category, nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	categories := []*domain.Category{}
	for _, c := range m.categories {
		categories = append(categories, c)
	}
	return categories, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	for _, c := range m.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (m *mockCategoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	if c, ok := m.categories[slug]; ok {
		return c, nil
	}
	return nil, repository.ErrCategoryNotFound
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	for slug, c := range m.categories {
		if c.ID == id {
			delete(m.categories, slug)
			return nil
		}
	}
	return repository.ErrCategoryNotFound
}

func noopAuth(next http.Handler) http.Handler {
	return next
}

func newTestCatalogRouter() (chi.Router, *mockProductRepository, *mockCategoryRepository) {
	productRepo := newMockProductRepository()
	categoryRepo := newMockCategoryRepository()
	catalogService := service.NewCatalogService(productRepo, categoryRepo)
	logger, _ := zap.NewDevelopment()
	handler := NewCatalogHandler(catalogService, 10<<20, logger)

	router := chi.NewRouter()
	handler.RegisterRoutes(router, noopAuth)
	return router, productRepo, categoryRepo
}

func multipartProductBody(t *testing.T, title, price string, imageCount int) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("title", title)
	writer.WriteField("description", "A crate of things")
	writer.WriteField("price", price)
	for i := 0; i < imageCount; i++ {
		part, err := writer.CreateFormFile("images", "photo"+strconv.Itoa(i)+".jpg")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		io.Copy(part, bytes.NewReader([]byte{0xFF, 0xD8, byte(i)}))
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestCreateProduct_MultipartWithImages(t *testing.T) {
	router, productRepo, _ := newTestCatalogRouter()

	body, contentType := multipartProductBody(t, "Drill set", "49.90", 2)
	req := httptest.NewRequest("POST", "/api/admin/products/", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var response ProductResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.Title != "Drill set" {
		t.Errorf("expected echoed title, got %q", response.Title)
	}
	if response.ImageURL == nil {
		t.Fatal("expected a resolved cover image_url")
	}

	productID, err := uuid.Parse(response.ID)
	if err != nil {
		t.Fatalf("invalid product id in response: %v", err)
	}
	if len(productRepo.images[productID]) != 2 {
		t.Errorf("expected 2 stored images, got %d", len(productRepo.images[productID]))
	}

	// The cover resolves to the byte-serving endpoint of the first image.
	expected := "/api/images/" + productRepo.images[productID][0].ID.String()
	if *response.ImageURL != expected {
		t.Errorf("expected cover url %q, got %q", expected, *response.ImageURL)
	}
}

func TestCreateProduct_TooManyImages(t *testing.T) {
	router, productRepo, _ := newTestCatalogRouter()

	body, contentType := multipartProductBody(t, "Drill set", "49.90", service.MaxImagesPerUpload+1)
	req := httptest.NewRequest("POST", "/api/admin/products/", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for oversized batch, got %d", w.Code)
	}
	if len(productRepo.products) != 0 {
		t.Error("rejected upload must not create a product")
	}
}

func TestCreateProduct_InvalidPrice(t *testing.T) {
	router, _, _ := newTestCatalogRouter()

	body, contentType := multipartProductBody(t, "Drill set", "not-a-number", 0)
	req := httptest.NewRequest("POST", "/api/admin/products/", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad price, got %d", w.Code)
	}
}

func TestCreateProduct_BodyOverUploadLimit(t *testing.T) {
	productRepo := newMockProductRepository()
	categoryRepo := newMockCategoryRepository()
	catalogService := service.NewCatalogService(productRepo, categoryRepo)
	logger, _ := zap.NewDevelopment()
	handler := NewCatalogHandler(catalogService, 1<<10, logger)

	router := chi.NewRouter()
	handler.RegisterRoutes(router, noopAuth)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("title", "Crate")
	writer.WriteField("price", "5")
	part, err := writer.CreateFormFile("images", "big.jpg")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write(bytes.Repeat([]byte{0xAB}, 4<<10))
	writer.Close()

	req := httptest.NewRequest("POST", "/api/admin/products/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for over-limit body, got %d", w.Code)
	}
	if len(productRepo.products) != 0 {
		t.Error("over-limit upload must not create a product")
	}
}

func TestGetProduct_GalleryResolved(t *testing.T) {
	router, productRepo, _ := newTestCatalogRouter()

	// Seed directly through the repo; one blob image and one legacy URL row.
	product := &domain.Product{ID: uuid.New(), Title: "Crate", Price: 5, CreatedAt: time.Now()}
	productRepo.CreateWithImages(context.Background(), product,
		[]repository.NewImage{{Mime: "image/jpeg", Data: []byte{1}}})
	legacy := "https://cdn.example.com/old.jpg"
	productRepo.images[product.ID] = append(productRepo.images[product.ID], &domain.ProductImage{
		ID:        uuid.New(),
		ProductID: product.ID,
		ImageURL:  &legacy,
		SortOrder: 1,
	})

	req := httptest.NewRequest("GET", "/api/products/"+product.ID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var response ProductDetailResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(response.Images) != 2 {
		t.Fatalf("expected 2 gallery entries, got %d", len(response.Images))
	}
	if response.Images[1].URL != legacy {
		t.Errorf("legacy row should resolve to its stored url, got %q", response.Images[1].URL)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	router, _, _ := newTestCatalogRouter()

	req := httptest.NewRequest("GET", "/api/products/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}

	// Malformed ids are indistinguishable from unknown ones.
	req = httptest.NewRequest("GET", "/api/products/not-a-uuid", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for malformed id, got %d", w.Code)
	}
}

func TestServeImage_CacheHeaders(t *testing.T) {
	router, productRepo, _ := newTestCatalogRouter()

	product := &domain.Product{ID: uuid.New(), Title: "Crate", Price: 5, CreatedAt: time.Now()}
	productRepo.CreateWithImages(context.Background(), product,
		[]repository.NewImage{{Mime: "image/webp", Data: []byte{9, 9}}})
	imageID := productRepo.images[product.ID][0].ID

	req := httptest.NewRequest("GET", "/api/images/"+imageID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "image/webp" {
		t.Errorf("expected stored mime, got %q", got)
	}
	if got := w.Header().Get("Cache-Control"); got != "public, max-age=31536000, immutable" {
		t.Errorf("unexpected cache header %q", got)
	}
	if w.Body.Len() != 2 {
		t.Errorf("expected 2 bytes, got %d", w.Body.Len())
	}
}

func TestRemoveImageByURL_RequiresParam(t *testing.T) {
	router, _, _ := newTestCatalogRouter()

	req := httptest.NewRequest("DELETE", "/api/admin/products/"+uuid.New().String()+"/images", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without url param, got %d", w.Code)
	}
}

func TestCreateCategory_IdempotentResponse(t *testing.T) {
	router, _, _ := newTestCatalogRouter()

	post := func() CategoryResponse {
		body, _ := json.Marshal(CreateCategoryRequest{Name: "Power Tools"})
		req := httptest.NewRequest("POST", "/api/categories", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var response CategoryResponse
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		return response
	}

	first := post()
	second := post()

	if first.ID != second.ID {
		t.Errorf("repeated create should return the same category, got %s and %s", first.ID, second.ID)
	}
	if first.Slug != "power-tools" {
		t.Errorf("expected derived slug power-tools, got %q", first.Slug)
	}
}
