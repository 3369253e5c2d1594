// Package common defines sentinel errors shared by the vault core, the
// stores and both front ends. Callers should use errors.Is to match these
// values; store failures carry their cause via %w wrapping.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrConflict   = errors.New("conflict")

	// Access control.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrNoSession      = errors.New("no session")

	// Consistency errors raised when the stores disagree or fail.
	ErrStoreFailure       = errors.New("store failure")
	ErrDanglingReference  = errors.New("dangling reference")
	ErrInconsistent       = errors.New("inconsistent state")
	ErrUnsupportedContent = errors.New("unsupported content")

	ErrorValidation = errors.New("validation error")
	ErrorInternal   = errors.New("internal error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
