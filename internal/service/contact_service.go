package service

import (
	"context"
	"time"

	"wholesale-catalog/internal/domain"
	"wholesale-catalog/internal/repository"

	"github.com/google/uuid"
)

// ContactInput carries contact fields; all of them are optional strings.
type ContactInput struct {
	Whatsapp  string
	Phone     string
	Email     string
	Facebook  string
	Instagram string
	Tiktok    string
	Address   string
	Visible   bool
}

// ContactService defines the business logic over contact records.
type ContactService interface {
	ListPublic(ctx context.Context) ([]*domain.Contact, error)
	ListAll(ctx context.Context) ([]*domain.Contact, error)
	Create(ctx context.Context, in ContactInput) (*domain.Contact, error)
	Update(ctx context.Context, id uuid.UUID, in ContactInput) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type contactService struct {
	contactRepo repository.ContactRepository
}

// NewContactService creates a new instance of ContactService
func NewContactService(contactRepo repository.ContactRepository) ContactService {
	return &contactService{contactRepo: contactRepo}
}

// ListPublic returns only the contacts flagged visible, newest first.
func (s *contactService) ListPublic(ctx context.Context) ([]*domain.Contact, error) {
	return s.contactRepo.List(ctx, true)
}

// ListAll returns every contact for the admin panel.
func (s *contactService) ListAll(ctx context.Context) ([]*domain.Contact, error) {
	return s.contactRepo.List(ctx, false)
}

// Create stores a new contact record.
func (s *contactService) Create(ctx context.Context, in ContactInput) (*domain.Contact, error) {
	contact := &domain.Contact{
		ID:        uuid.New(),
		Whatsapp:  in.Whatsapp,
		Phone:     in.Phone,
		Email:     in.Email,
		Facebook:  in.Facebook,
		Instagram: in.Instagram,
		Tiktok:    in.Tiktok,
		Address:   in.Address,
		Visible:   in.Visible,
		CreatedAt: time.Now(),
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// Update rewrites all fields of an existing contact.
func (s *contactService) Update(ctx context.Context, id uuid.UUID, in ContactInput) error {
	contact := &domain.Contact{
		ID:        id,
		Whatsapp:  in.Whatsapp,
		Phone:     in.Phone,
		Email:     in.Email,
		Facebook:  in.Facebook,
		Instagram: in.Instagram,
		Tiktok:    in.Tiktok,
		Address:   in.Address,
		Visible:   in.Visible,
	}
	return s.contactRepo.Update(ctx, contact)
}

// Delete removes a contact record.
func (s *contactService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.contactRepo.Delete(ctx, id)
}
