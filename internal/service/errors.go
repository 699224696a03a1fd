package service

import (
	"errors"
	"net/http"
)

// Kind classifies a service failure.  Each kind maps to exactly one HTTP
// status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindContentRejected
	KindRateLimited
	KindUnavailable
)

// Status returns the HTTP status code for k.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindContentRejected:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Error is the user-facing failure returned by every service method.
// Message is safe to show to clients; Err carries the underlying cause
// for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func validationError(msg string) *Error { return newError(KindValidation, msg, nil) }
func notFound(msg string) *Error        { return newError(KindNotFound, msg, nil) }
func forbidden(msg string) *Error       { return newError(KindForbidden, msg, nil) }
func internal(msg string, cause error) *Error {
	return newError(KindInternal, msg, cause)
}

// KindOf extracts the kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// ErrQuotaExhausted is the message returned when a user has no generations left.
const ErrQuotaExhausted = "design quota exhausted"
