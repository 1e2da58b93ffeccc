// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios: for
// example, ErrForbidden indicates that the current user is not
// authorized to touch a resource owned by someone else, while
// ErrConflict signals a uniqueness violation in the underlying store.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested row does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response. It is distinct from ErrNotFound so that "exists
// but not yours" and "does not exist" remain distinguishable.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert hits a uniqueness constraint:
// duplicate follow, duplicate list name, book already in a list, or a
// toggle losing a race. Handlers should translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is the registration-specific uniqueness failure.
var ErrEmailExists = errors.New("email already exists")

// ErrSelfFollow is returned when a user attempts to follow themselves.
// The guard runs before any store access.
var ErrSelfFollow = errors.New("cannot follow yourself")

// ErrAlreadyRevoked is returned when revoking a token that is already
// in the blacklist. The end-state is identical, so callers report it
// as an ordinary success.
var ErrAlreadyRevoked = errors.New("token already revoked")

// isDuplicate reports whether err is a MySQL duplicate-key error
// (error 1062). The driver does not expose a typed error for this, so
// the code is matched in the message.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// isFKViolation reports whether err is a MySQL foreign-key failure
// (error 1452), meaning a referenced row does not exist.
func isFKViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1452")
}
