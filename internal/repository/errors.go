// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when the addressed record does not exist (or
// is not visible to the caller, e.g. a design owned by someone else).
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique key (username, email, coupon
// code) is already taken.
var ErrDuplicate = errors.New("duplicate key")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrQuotaExceeded is returned by slot reservation when the user has no
// generation left, counting in-flight holds.
var ErrQuotaExceeded = errors.New("quota exceeded")

// ErrHoldNotFound is returned when committing or cancelling a quota
// hold whose token is unknown, typically because it was already
// committed.
var ErrHoldNotFound = errors.New("quota hold not found")

// ErrAlreadyRedeemed is returned when a coupon has already been redeemed
// for the same order.  Callers treat it as a successful no-op.
var ErrAlreadyRedeemed = errors.New("coupon already redeemed for order")
