package transport

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"wholesale-catalog/internal/middleware"
	"wholesale-catalog/internal/repository"
	"wholesale-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UpdateBrandingRequest carries the editable branding text fields. The
// wire field is `tag`, matching the public branding view.
type UpdateBrandingRequest struct {
	Name string `json:"name" validate:"required,max=120"`
	Tag  string `json:"tag" validate:"max=255"`
}

// BrandingHandler handles HTTP requests for brand settings and the logo
// blob.
type BrandingHandler struct {
	brandingService service.BrandingService
	maxUploadBytes  int64
	logger          *zap.Logger
}

// NewBrandingHandler creates a new BrandingHandler
func NewBrandingHandler(brandingService service.BrandingService, maxUploadBytes int64, logger *zap.Logger) *BrandingHandler {
	return &BrandingHandler{
		brandingService: brandingService,
		maxUploadBytes:  maxUploadBytes,
		logger:          logger,
	}
}

// RegisterRoutes registers all branding routes
func (h *BrandingHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/branding", func(r chi.Router) {
		r.Get("/", h.GetBranding)
		r.Get("/logo", h.ServeLogo)
	})

	r.Route("/api/admin/branding", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetBrandingAdmin)
		r.Put("/", h.UpdateBranding)
		r.Post("/logo", h.UploadLogo)
		r.Delete("/logo", h.DeleteLogo)
	})
}

// AdminBrandingResponse is the admin branding read: the resolved view plus
// the last update timestamp.
type AdminBrandingResponse struct {
	*service.BrandingView
	UpdatedAt string `json:"updated_at"`
}

// GetBranding handles the public branding read.
func (h *BrandingHandler) GetBranding(w http.ResponseWriter, r *http.Request) {
	view, err := h.brandingService.PublicView(r.Context())
	if err != nil {
		h.logger.Error("Failed to read branding", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to read branding")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// GetBrandingAdmin handles the admin branding read, which additionally
// carries the last update timestamp.
func (h *BrandingHandler) GetBrandingAdmin(w http.ResponseWriter, r *http.Request) {
	view, updatedAt, err := h.brandingService.AdminView(r.Context())
	if err != nil {
		h.logger.Error("Failed to read branding", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to read branding")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, AdminBrandingResponse{BrandingView: view, UpdatedAt: updatedAt})
}

// UpdateBranding handles updates to the branding text. The logo is managed
// separately and is untouched here.
func (h *BrandingHandler) UpdateBranding(w http.ResponseWriter, r *http.Request) {
	var req UpdateBrandingRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.brandingService.UpdateText(r.Context(), req.Name, req.Tag); err != nil {
		h.logger.Error("Branding update failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update branding")
		return
	}

	h.logger.Info("Branding updated", zap.String("name", req.Name))
	h.respondCurrentView(w, r)
}

// UploadLogo handles the multipart logo upload. A new blob replaces any
// previous logo, blob- or URL-backed.
func (h *BrandingHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, service.ErrLogoFileRequired.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "failed to read logo file")
		return
	}

	mime := header.Header.Get("Content-Type")
	if err := h.brandingService.SetLogo(r.Context(), mime, data); err != nil {
		if errors.Is(err, service.ErrLogoFileRequired) {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Logo upload failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to store logo")
		return
	}

	h.logger.Info("Logo uploaded", zap.Int("size_bytes", len(data)))
	h.respondCurrentView(w, r)
}

// DeleteLogo handles removing the logo; branding text is unaffected.
func (h *BrandingHandler) DeleteLogo(w http.ResponseWriter, r *http.Request) {
	if err := h.brandingService.ClearLogo(r.Context()); err != nil {
		h.logger.Error("Logo delete failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete logo")
		return
	}

	h.respondCurrentView(w, r)
}

// respondCurrentView answers a successful mutation with the freshly
// resolved public view, so admin clients can rerender without a second
// request.
func (h *BrandingHandler) respondCurrentView(w http.ResponseWriter, r *http.Request) {
	view, err := h.brandingService.PublicView(r.Context())
	if err != nil {
		h.logger.Error("Failed to read branding", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to read branding")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// ServeLogo streams the stored logo bytes. The public URL carries a
// cache-busting query parameter, so the response itself can be cached
// aggressively.
func (h *BrandingHandler) ServeLogo(w http.ResponseWriter, r *http.Request) {
	mime, data, err := h.brandingService.ReadLogo(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrLogoNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "logo not found")
			return
		}
		h.logger.Error("Failed to read logo", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to read logo")
		return
	}

	if strings.TrimSpace(mime) == "" {
		mime = "image/png"
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Write(data)
}
