package services

import (
	"errors"
	"sort"
	"strings"
)

// Error classes. Handlers map these to HTTP statuses; the specific errors
// below wrap exactly one of them.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation failed")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// classError carries a user-facing message and unwraps to its class.
type classError struct {
	class error
	msg   string
}

func (e *classError) Error() string { return e.msg }
func (e *classError) Unwrap() error { return e.class }

func newClassError(class error, msg string) error {
	return &classError{class: class, msg: msg}
}

var (
	ErrBusinessNotFound = newClassError(ErrNotFound, "business not found")
	ErrCustomerNotFound = newClassError(ErrNotFound, "customer not found")
	ErrProductNotFound  = newClassError(ErrNotFound, "product not found")
	ErrSaleNotFound     = newClassError(ErrNotFound, "sale not found")
	ErrExpenseNotFound  = newClassError(ErrNotFound, "expense not found")
	ErrEmployeeNotFound = newClassError(ErrNotFound, "employee not found")

	ErrEmailExists   = newClassError(ErrConflict, "a user with this email already exists")
	ErrPhoneExists   = newClassError(ErrConflict, "a customer with this phone number already exists in this business")
	ErrStockNegative = newClassError(ErrConflict, "stock cannot go below zero")

	ErrInvalidCredentials = newClassError(ErrUnauthenticated, "invalid credentials")
	ErrPrincipalNotFound  = newClassError(ErrUnauthenticated, "principal referenced by token no longer exists")
)

// ErrNotificationFailed is returned when a password was reset but the
// new credential could not be delivered. The reset itself is committed.
var ErrNotificationFailed = errors.New("password changed, but the notification could not be delivered")

// ValidationError reports one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// fieldErrors accumulates validation failures; Err returns nil when empty.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// invalidField is a one-field ValidationError.
func invalidField(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

const centsMessage = "must have at most 2 decimal places"
