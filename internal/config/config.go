// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - Load layers defaults, an optional YAML file, and environment variables.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// StoreDSN is the SQLite database path for durable player state.
	// Empty selects the in-memory store.
	StoreDSN string `koanf:"store_dsn"`

	// ContentDir is the directory of YAML content packs (scenarios,
	// bundles, badge catalogs) loaded by calibration tooling.
	ContentDir string `koanf:"content_dir"`

	// Percentiles is the default percentile set used when calibrating
	// badge thresholds for a bundle.
	Percentiles []float64 `koanf:"percentiles"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		StoreDSN:    "",
		ContentDir:  "content",
		Percentiles: []float64{25, 50, 75, 90},
	}
}
