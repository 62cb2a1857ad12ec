package domain

import (
	"time"

	"github.com/google/uuid"
)

// Contact is a storefront contact record. The public listing only shows
// rows with Visible set.
type Contact struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Whatsapp  string    `json:"whatsapp" db:"whatsapp"`
	Phone     string    `json:"phone" db:"phone"`
	Email     string    `json:"email" db:"email"`
	Facebook  string    `json:"facebook" db:"facebook"`
	Instagram string    `json:"instagram" db:"instagram"`
	Tiktok    string    `json:"tiktok" db:"tiktok"`
	Address   string    `json:"address" db:"address"`
	Visible   bool      `json:"visible" db:"visible"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
