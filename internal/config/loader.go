package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if FABLE_CONFIG is set
//  3. env (prefix FABLE_)
func Load(ctx context.Context) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("FABLE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: FABLE_LOG_LEVEL, FABLE_STORE_DSN, ...
	// Keys keep their underscores to match the koanf struct tags.
	envProvider := env.Provider("FABLE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "fable_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Basic validation
	for _, p := range cfg.Percentiles {
		if p < 0 || p > 100 {
			return nil, fmt.Errorf("%w: percentile %v outside [0,100]", ErrInvalidConfig, p)
		}
	}
	if len(cfg.Percentiles) == 0 {
		return nil, fmt.Errorf("%w: percentiles must not be empty", ErrInvalidConfig)
	}
	return &cfg, nil
}
