// Package rbac holds the role checks gating every protected operation.
package rbac

import (
	"errors"
	"strings"

	"bizflow_backend/internal/models"
)

// ErrForbidden is returned when the role lacks permission for an operation.
var ErrForbidden = errors.New("you do not have permission to perform this action")

// NormalizeRole maps stored role values ("admin", " Staff ") to the canonical form.
func NormalizeRole(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}

// RequireAdmin passes only for ADMIN.
func RequireAdmin(role string) error {
	if NormalizeRole(role) == models.RoleAdmin {
		return nil
	}
	return ErrForbidden
}

// RequireStaffOrAdmin passes for ADMIN and STAFF.
func RequireStaffOrAdmin(role string) error {
	switch NormalizeRole(role) {
	case models.RoleAdmin, models.RoleStaff:
		return nil
	}
	return ErrForbidden
}

// Policy is a role check applied by middleware.Require.
type Policy func(role string) error
