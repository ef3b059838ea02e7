package service

import "errors"

// Error taxonomy shared by every core operation. The API layer maps these to
// transport status codes; the core only guarantees the kind.
var (
	// ErrNotFound means an entity id did not resolve.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized means the caller is not a participant or owner.
	ErrUnauthorized = errors.New("not a participant")
	// ErrInvalidState means the requested transition is illegal from the
	// current state.
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict means a uniqueness rule was violated, e.g. a duplicate
	// rating.
	ErrConflict = errors.New("conflict")
	// ErrValidation means an input failed validation before any state was
	// read.
	ErrValidation = errors.New("validation failed")
)
