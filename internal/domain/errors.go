package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

var (
	ErrDuplicateUsername  = fmt.Errorf("username already taken: %w", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("invalid username or password: %w", ErrUnauthorized)
	ErrInvalidIdentifier  = fmt.Errorf("invalid identifier: %w", ErrBadRequest)
	ErrUnsupportedImage   = fmt.Errorf("unsupported image format: %w", ErrBadRequest)
	ErrImageTooLarge      = errors.New("image too large")
	ErrDecryptionFailure  = errors.New("decryption failure")
)

// ValidationError aggregates every violated field rule of a single request.
type ValidationError struct {
	Messages []string
}

func NewValidationError(msgs []string) *ValidationError {
	return &ValidationError{Messages: msgs}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrBadRequest }
