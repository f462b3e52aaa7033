package service

import "errors"

// Sentinel kinds for engine input errors.
var (
	// ErrInvalidInput marks caller input rejected before any repository
	// access (blank bundle ID, empty or out-of-range percentile list).
	ErrInvalidInput = errors.New("invalid input")
)
