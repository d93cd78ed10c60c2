// Package common defines shared constants and sentinel errors used across
// the dispatch, service and repository layers. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrUniqueViolation     = errors.New("unique constraint violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrStoreTimeout        = errors.New("store timeout")
	ErrStoreUnavailable    = errors.New("store unavailable")

	// Service-level errors.
	ErrorInternal      = errors.New("internal error")
	ErrUserExists      = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")

	// Validation errors.
	ErrUnknownOperation = errors.New("unknown operation")
	ErrMissingParameter = errors.New("missing parameter")
	ErrInvalidParameter = errors.New("invalid parameter")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
