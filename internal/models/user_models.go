package models

import (
	"time"

	"github.com/google/uuid"
)

// Canonical upper-case roles. Stored values may predate normalization.
const (
	RoleAdmin    = "ADMIN"
	RoleStaff    = "STAFF"
	RoleCustomer = "CUSTOMER"
)

// User is a staff principal: the business admin or one of its employees.
// Email is unique across all businesses.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	BusinessID   uuid.UUID `json:"business_id" db:"business_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// PrincipalKind tells the two credential stores apart.
type PrincipalKind string

const (
	PrincipalStaff    PrincipalKind = "staff"
	PrincipalCustomer PrincipalKind = "customer"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID         uuid.UUID     `json:"id"`
	BusinessID uuid.UUID     `json:"business_id"`
	Role       string        `json:"role"`
	Kind       PrincipalKind `json:"kind"`
	Name       string        `json:"name"`
	Email      string        `json:"email,omitempty"`
}

func (p Principal) IsAdmin() bool    { return p.Role == RoleAdmin }
func (p Principal) IsCustomer() bool { return p.Role == RoleCustomer }
