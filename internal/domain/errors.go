package domain

import "errors"

// ErrNotFound is returned by store implementations when the requested
// resource does not exist. Note that a missing trip document on Get is NOT
// an error (it is a nil trip) — ErrNotFound covers operations like update
// and delete that require the document to exist.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. missing required field).
var ErrValidation = errors.New("validation error")

// ErrNotAuthenticated is returned when an operation that requires a bound
// user is attempted without one. It is detected locally and never reaches
// the backend.
var ErrNotAuthenticated = errors.New("not authenticated")
