package transport

import (
	"errors"
	"net/http"
	"time"

	"wholesale-catalog/internal/domain"
	"wholesale-catalog/internal/middleware"
	"wholesale-catalog/internal/repository"
	"wholesale-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContactRequest carries a contact create or update payload. Every channel
// field is optional; an empty Visible defaults to hidden.
type ContactRequest struct {
	Whatsapp  string `json:"whatsapp" validate:"max=64"`
	Phone     string `json:"phone" validate:"max=64"`
	Email     string `json:"email" validate:"omitempty,email"`
	Facebook  string `json:"facebook" validate:"max=255"`
	Instagram string `json:"instagram" validate:"max=255"`
	Tiktok    string `json:"tiktok" validate:"max=255"`
	Address   string `json:"address" validate:"max=500"`
	Visible   bool   `json:"visible"`
}

// ContactResponse is the wire shape of a contact record.
type ContactResponse struct {
	ID        string `json:"id"`
	Whatsapp  string `json:"whatsapp"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
	Tiktok    string `json:"tiktok"`
	Address   string `json:"address"`
	Visible   bool   `json:"visible"`
	CreatedAt string `json:"created_at"`
}

// ContactHandler handles HTTP requests for contact records.
type ContactHandler struct {
	contactService service.ContactService
	logger         *zap.Logger
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(contactService service.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		logger:         logger,
	}
}

// RegisterRoutes registers all contact routes
func (h *ContactHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/api/contacts", h.ListPublic)

	r.Route("/api/admin/contacts", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListAll)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// ListPublic handles the public contact listing; hidden records are
// filtered out.
func (h *ContactHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contactService.ListPublic(r.Context())
	if err != nil {
		h.logger.Error("Failed to list contacts", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list contacts")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toContactResponses(contacts))
}

// ListAll handles the admin contact listing, hidden records included.
func (h *ContactHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contactService.ListAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list contacts", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list contacts")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toContactResponses(contacts))
}

// Create handles creating a contact record.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	contact, err := h.contactService.Create(r.Context(), toContactInput(req))
	if err != nil {
		h.logger.Error("Contact create failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create contact")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, toContactResponse(contact))
}

// Update handles rewriting a contact record.
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "contact not found")
		return
	}

	var req ContactRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.contactService.Update(r.Context(), id, toContactInput(req)); err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "contact not found")
			return
		}
		h.logger.Error("Contact update failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update contact")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "contact updated"})
}

// Delete handles removing a contact record.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "contact not found")
		return
	}

	if err := h.contactService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "contact not found")
			return
		}
		h.logger.Error("Contact delete failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete contact")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "contact deleted"})
}

func toContactInput(req ContactRequest) service.ContactInput {
	return service.ContactInput{
		Whatsapp:  req.Whatsapp,
		Phone:     req.Phone,
		Email:     req.Email,
		Facebook:  req.Facebook,
		Instagram: req.Instagram,
		Tiktok:    req.Tiktok,
		Address:   req.Address,
		Visible:   req.Visible,
	}
}

func toContactResponse(c *domain.Contact) ContactResponse {
	return ContactResponse{
		ID:        c.ID.String(),
		Whatsapp:  c.Whatsapp,
		Phone:     c.Phone,
		Email:     c.Email,
		Facebook:  c.Facebook,
		Instagram: c.Instagram,
		Tiktok:    c.Tiktok,
		Address:   c.Address,
		Visible:   c.Visible,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toContactResponses(contacts []*domain.Contact) []ContactResponse {
	response := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		response = append(response, toContactResponse(c))
	}
	return response
}
