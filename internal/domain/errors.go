package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrEntityNotFound  = errors.New("entity not found")
	ErrSessionNotFound = errors.New("no saved session")
)

// AuthError is the service rejecting a credential exchange (HTTP 401).
// Description carries the server-provided error_description verbatim.
type AuthError struct {
	Description string
}

func (e *AuthError) Error() string {
	if e.Description == "" {
		return "authentication rejected"
	}
	return e.Description
}

// ValidationError is a registration conflict (HTTP 422); Field names the
// entity field that is already taken.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s already taken", e.Field)
}
