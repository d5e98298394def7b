// Package apperr defines the error kinds surfaced to API clients.
// Usecases return *Error values; the HTTP layer translates the kind into a status code
// in exactly one place (platform/http/respond).
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport boundary.
type Kind int

const (
	// KindInternal is an unexpected failure. Its message is never shown to clients.
	KindInternal Kind = iota
	// KindValidation is missing or malformed input.
	KindValidation
	// KindAuth is a bad credential or an invalid/expired reset token.
	KindAuth
	// KindUnauthenticated is a missing, invalid, expired, or revoked session.
	KindUnauthenticated
	// KindNotFound is a lookup that matched no record.
	KindNotFound
	// KindDelivery is a failed mail dispatch.
	KindDelivery
	// KindUpstream is a failed object storage call.
	KindUpstream
	// KindRateLimited is a request rejected by the rate limiter.
	KindRateLimited
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not_found"
	case KindDelivery:
		return "delivery"
	case KindUpstream:
		return "upstream"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Error is an error with a kind and a client-facing message.
// Err keeps the underlying cause for logging and errors.Is/As.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// Validation returns a KindValidation error.
func Validation(msg string) *Error { return newError(KindValidation, msg, nil) }

// Auth returns a KindAuth error.
func Auth(msg string) *Error { return newError(KindAuth, msg, nil) }

// Unauthenticated returns a KindUnauthenticated error wrapping cause.
func Unauthenticated(msg string, cause error) *Error {
	return newError(KindUnauthenticated, msg, cause)
}

// NotFound returns a KindNotFound error.
func NotFound(msg string) *Error { return newError(KindNotFound, msg, nil) }

// Delivery returns a KindDelivery error wrapping cause.
func Delivery(msg string, cause error) *Error { return newError(KindDelivery, msg, cause) }

// Upstream returns a KindUpstream error wrapping cause.
func Upstream(msg string, cause error) *Error { return newError(KindUpstream, msg, cause) }

// RateLimited returns a KindRateLimited error.
func RateLimited(msg string) *Error { return newError(KindRateLimited, msg, nil) }

// Internal wraps an unexpected failure.
func Internal(cause error) *Error {
	return newError(KindInternal, "Internal Server Error", cause)
}

// KindOf reports the kind of err. Errors that are not *Error are KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
