package models

import (
	"time"

	"github.com/google/uuid"
)

// Business is the tenant root. OwnerID references its first admin user.
type Business struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Category      string    `json:"category" db:"category"`
	OwnerID       uuid.UUID `json:"owner_id" db:"owner_id"`
	Email         *string   `json:"email,omitempty" db:"email"`
	Phone         *string   `json:"phone,omitempty" db:"phone"`
	Address       *string   `json:"address,omitempty" db:"address"`
	GSTNumber     *string   `json:"gst_number,omitempty" db:"gst_number"`
	LicenseNumber *string   `json:"license_number,omitempty" db:"license_number"`
	Description   *string   `json:"description,omitempty" db:"description"`
	Website       *string   `json:"website,omitempty" db:"website"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
