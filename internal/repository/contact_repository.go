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
	ErrContactNotFound = errors.New("contact not found")
)

// ContactRepository defines the interface for contact data access
type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	Update(ctx context.Context, contact *domain.Contact) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, visibleOnly bool) ([]*domain.Contact, error)
}

type contactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new instance of ContactRepository
func NewContactRepository(db *sql.DB) ContactRepository {
	return &contactRepository{db: db}
}

// Create inserts a new contact into the database using parameterized queries
func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	query := `
		INSERT INTO contacts (id, whatsapp, phone, email, facebook, instagram, tiktok, address, visible, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		contact.ID,
		contact.Whatsapp,
		contact.Phone,
		contact.Email,
		contact.Facebook,
		contact.Instagram,
		contact.Tiktok,
		contact.Address,
		contact.Visible,
		contact.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	return nil
}

// Update rewrites all editable fields of an existing contact.
func (r *contactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	query := `
		UPDATE contacts
		SET whatsapp = $2, phone = $3, email = $4, facebook = $5,
		    instagram = $6, tiktok = $7, address = $8, visible = $9
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		contact.ID,
		contact.Whatsapp,
		contact.Phone,
		contact.Email,
		contact.Facebook,
		contact.Instagram,
		contact.Tiktok,
		contact.Address,
		contact.Visible,
	)

	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrContactNotFound
	}

	return nil
}

// Delete removes a contact from the database using parameterized queries
func (r *contactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrContactNotFound
	}

	return nil
}

// List retrieves contacts ordered by creation time descending. With
// visibleOnly set, hidden rows are filtered out for the public listing.
func (r *contactRepository) List(ctx context.Context, visibleOnly bool) ([]*domain.Contact, error) {
	query := `
		SELECT id, COALESCE(whatsapp, ''), COALESCE(phone, ''), COALESCE(email, ''),
		       COALESCE(facebook, ''), COALESCE(instagram, ''), COALESCE(tiktok, ''),
		       COALESCE(address, ''), visible, created_at
		FROM contacts
	`
	if visibleOnly {
		query += ` WHERE visible = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []*domain.Contact{}
	for rows.Next() {
		contact := &domain.Contact{}
		err := rows.Scan(
			&contact.ID,
			&contact.Whatsapp,
			&contact.Phone,
			&contact.Email,
			&contact.Facebook,
			&contact.Instagram,
			&contact.Tiktok,
			&contact.Address,
			&contact.Visible,
			&contact.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}

	return contacts, nil
}
