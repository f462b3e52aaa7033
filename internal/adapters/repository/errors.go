package repository

import "errors"

// Sentinel kinds for storage errors.
var (
	// ErrNotFound marks a lookup that resolved nothing.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate marks a write rejected by a uniqueness invariant.
	ErrDuplicate = errors.New("record already exists")
)
