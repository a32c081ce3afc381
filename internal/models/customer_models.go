package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer belongs to exactly one business; (business_id, phone) is unique.
// A customer without a password hash has no portal access.
type Customer struct {
	ID           uuid.UUID `json:"id" db:"id"`
	BusinessID   uuid.UUID `json:"business_id" db:"business_id"`
	Name         string    `json:"name" db:"name"`
	Phone        string    `json:"phone" db:"phone"`
	Email        *string   `json:"email,omitempty" db:"email"`
	Address      *string   `json:"address,omitempty" db:"address"`
	Notes        *string   `json:"notes,omitempty" db:"notes"`
	PasswordHash *string   `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// HasPortalAccess reports whether the customer can log in.
func (c *Customer) HasPortalAccess() bool {
	return c.PasswordHash != nil && *c.PasswordHash != ""
}

// CustomerFilters narrows customer listings inside one business.
type CustomerFilters struct {
	BusinessID uuid.UUID
	Search     string
}
