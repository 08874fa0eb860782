// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error kinds.
package config

// Default boundary limits for the HTTP surface.
const (
	defaultMaxTitleLen       = 100
	defaultMaxDescriptionLen = 500
	defaultMaxKindLen        = 20
	defaultMaxReactionLen    = 20
	defaultMaxTextLen        = 280
	defaultMaxFeedbackKinds  = 10
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// GenesisHeight is the height reported at process start.
	GenesisHeight uint64 `koanf:"genesis_height"`

	// BlockIntervalMS is the wall-time length of one height unit.
	BlockIntervalMS int `koanf:"block_interval_ms"`

	// MaxFeedbackKinds caps the feedback-kind list length per event.
	MaxFeedbackKinds int `koanf:"max_feedback_kinds"`

	// MaxHistogramBuckets caps distinct rating values tracked per event.
	MaxHistogramBuckets int `koanf:"max_histogram_buckets"`

	// Boundary length limits enforced at the HTTP surface.
	MaxTitleLen       int `koanf:"max_title_len"`
	MaxDescriptionLen int `koanf:"max_description_len"`
	MaxKindLen        int `koanf:"max_kind_len"`
	MaxReactionLen    int `koanf:"max_reaction_len"`
	MaxTextLen        int `koanf:"max_text_len"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9090",
		GenesisHeight:       1,
		BlockIntervalMS:     1000,
		MaxFeedbackKinds:    defaultMaxFeedbackKinds,
		MaxHistogramBuckets: 10,
		MaxTitleLen:         defaultMaxTitleLen,
		MaxDescriptionLen:   defaultMaxDescriptionLen,
		MaxKindLen:          defaultMaxKindLen,
		MaxReactionLen:      defaultMaxReactionLen,
		MaxTextLen:          defaultMaxTextLen,
	}
}
