package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors - match with errors.Is()
var (
	// ErrNotFound: entity identifier has no record
	ErrNotFound = errors.New("not found")

	// ErrValidation: request payload fails shape validation
	ErrValidation = errors.New("validation failed")

	// ErrUpstreamUnavailable: a delegated AI provider was unreachable or errored.
	// Absorbed by the resolver chain; callers normally never see it.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrServiceUnavailable: every AI strategy, fallback included, failed
	ErrServiceUnavailable = errors.New("service unavailable")
)

// NotFoundf wraps ErrNotFound with a resource-specific message
func NotFoundf(format string, args ...any) error {
	return &wrappedError{sentinel: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

// wrappedError carries a human-readable message while still matching its sentinel
type wrappedError struct {
	sentinel error
	msg      string
}

func (e *wrappedError) Error() string { return e.msg }
func (e *wrappedError) Unwrap() error { return e.sentinel }
