// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrConflict signals that an operation
// cannot proceed due to existing dependent state (e.g. deleting
// a booth that still holds a session).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as deleting a booth
// whose current_session_id is still set. Handlers should translate
// this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// Not-found sentinels, one per aggregate.  Repositories map
// sql.ErrNoRows and zero-row updates to these so handlers never see
// driver-level errors.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrRoleNotFound     = errors.New("role not found")
	ErrBoothNotFound    = errors.New("photobooth not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrPhotoNotFound    = errors.New("photo not found")
	ErrAssetNotFound    = errors.New("asset not found")
	ErrBankInfoNotFound = errors.New("bank info not found")
)

// ErrBoothUnavailable is returned by the conditional booth acquire
// when the row is not AVAILABLE, not active, or already referenced by
// a session. Handlers translate it into HTTP 409.
var ErrBoothUnavailable = errors.New("photobooth unavailable")

// ErrBoothNameExists is returned when creating or renaming a booth
// would violate the unique name constraint.
var ErrBoothNameExists = errors.New("photobooth name already exists")

// Filter attachment sentinels for the session_filters table.
var (
	ErrFilterExists   = errors.New("filter already added to session")
	ErrFilterNotFound = errors.New("filter not on session")
)

// ErrPhotoLimitReached is returned when a capture would exceed the
// session's max_photos budget.
var ErrPhotoLimitReached = errors.New("photo limit reached")

// ErrInsufficientPoints is returned by the conditional points debit
// when the user's balance is below the requested amount.
var ErrInsufficientPoints = errors.New("insufficient points")
