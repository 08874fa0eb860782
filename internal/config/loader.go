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
//  2. file (YAML) if PULSE_CONFIG is set
//  3. env (prefix PULSE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("PULSE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: PULSE_ADDR, PULSE_BLOCK_INTERVAL_MS, ...
	// Map env keys like PULSE_GENESIS_HEIGHT -> genesis_height (flat keys),
	// preserving underscores to match koanf tags on the struct.
	envProvider := env.Provider("PULSE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "pulse_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.BlockIntervalMS <= 0:
		return nil, fmt.Errorf("%w: block_interval_ms must be positive", ErrInvalidConfig)
	case cfg.MaxFeedbackKinds <= 0:
		return nil, fmt.Errorf("%w: max_feedback_kinds must be positive", ErrInvalidConfig)
	case cfg.MaxHistogramBuckets <= 0:
		return nil, fmt.Errorf("%w: max_histogram_buckets must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
