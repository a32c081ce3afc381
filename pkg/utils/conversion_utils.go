package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the YYYY-MM-DD form accepted by query filters and request bodies.
const DateLayout = "2006-01-02"

// ParseUUID parses an id coming from a path or query parameter.
func ParseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// ParseOptionalUUID returns nil for an empty string.
func ParseOptionalUUID(s string) (*uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	id, err := ParseUUID(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ParseOptionalDate parses YYYY-MM-DD (or RFC 3339) and returns nil for an empty string.
func ParseOptionalDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return &t, nil
}

// StrToIntDefault converts s to an int, returning fallback when s is empty or not a number.
func StrToIntDefault(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}
