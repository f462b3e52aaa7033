package config

import "errors"

// Sentinel kinds for configuration errors, matchable with errors.Is.
var (
	// ErrInvalidConfig marks configuration that parsed but fails validation.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrLoadConfig wraps failures reading or parsing a config source.
	ErrLoadConfig = errors.New("load config failed")
)
