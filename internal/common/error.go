// Package common defines shared constants and sentinel errors used across
// the Task Planner server layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Validation errors (malformed or rejected input).
	ErrorValidation = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Verification lifecycle errors.
	ErrVerificationCodeInvalid = errors.New("invalid or expired verification code")
	ErrTooManyRequests         = errors.New("too many requests")
)
