package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// Email verification flow errors.
	ErrCooldown         = errors.New("resend cooldown active")
	ErrCodeExpired      = errors.New("verification code expired")
	ErrCodeNotRequested = errors.New("no verification code outstanding")
	ErrInvalidCode      = errors.New("invalid verification code")
)

// CooldownError reports how long the caller must wait before the next
// verification email can be dispatched. It wraps ErrCooldown so callers can
// still discriminate with errors.Is.
type CooldownError struct {
	RemainingSeconds int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %d seconds before requesting a new code", e.RemainingSeconds)
}

func (e *CooldownError) Unwrap() error { return ErrCooldown }
