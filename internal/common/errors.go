// Package common defines shared constants and sentinel errors used across
// keyvault components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Input validation errors.
	ErrValidation       = errors.New("validation failed")
	ErrFormatValidation = errors.New("key format validation failed")

	// Crypto errors. Decryption authentication failures and key-derivation
	// failures collapse into this value so no cipher detail leaks upward.
	ErrCrypto = errors.New("crypto failure")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Reset-token lifecycle errors.
	ErrResetTokenExpired = errors.New("reset token expired")
)
