package utils

import (
	"errors"
	"log/slog"
)

var (
	// request errors
	ErrValidation = errors.New("validation error")

	// auth errors
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrVerificationRequired = errors.New("email verification required")
	ErrInvalidToken         = errors.New("invalid token")

	// account errors
	ErrNotFound        = errors.New("not found")
	ErrEmailTaken      = errors.New("email already in use")
	ErrAlreadyVerified = errors.New("email already verified")
	ErrCodeMismatch    = errors.New("verification code mismatch")
	ErrCodeExpired     = errors.New("verification code expired")

	// downstream errors
	ErrVendor = errors.New("vendor error")
)

// Err wraps an error as a slog attribute under the "error" key.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
