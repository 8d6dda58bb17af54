// Package common defines shared constants and sentinel errors used across
// hrkeeper layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")
	ErrorConflict     = errors.New("conflict")
	ErrorInvalidState = errors.New("invalid state transition")

	// Auth flow errors.
	ErrorAccountLocked          = errors.New("account locked")
	ErrorMFARequired            = errors.New("mfa required")
	ErrorPasswordChangeRequired = errors.New("password change required")

	// Token errors (invalid or malformed token, lifecycle).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
