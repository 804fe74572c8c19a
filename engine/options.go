package engine

import (
	"github.com/rs/zerolog"

	"github.com/spektr-org/incomelens/logging"
	"github.com/spektr-org/incomelens/schema"
)

// ============================================================================
// ENGINE OPTIONS — Functional options for Execute()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Schema          schema.Config
	ConfidenceLevel float64 // two-sided interval drawn on aggregated points
	HistogramBins   int
	MaxHueLevels    int // more levels than this is a chart-local error
	MaxCategories   int // same, for a categorical x axis
	Logger          *zerolog.Logger
}

// WithConfidenceLevel sets the confidence level of bar and line intervals.
// Values outside (0, 1) are ignored.
func WithConfidenceLevel(level float64) Option {
	return func(c *config) {
		if level > 0 && level < 1 {
			c.ConfidenceLevel = level
		}
	}
}

// WithHistogramBins sets the number of shared histogram bins.
func WithHistogramBins(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.HistogramBins = n
		}
	}
}

// WithMaxHueLevels caps the number of series a hue column may produce.
func WithMaxHueLevels(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.MaxHueLevels = n
		}
	}
}

// WithMaxCategories caps the number of categories on a categorical x axis.
func WithMaxCategories(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.MaxCategories = n
		}
	}
}

// WithLogger sets the logger used while executing.
func WithLogger(l *zerolog.Logger) Option {
	return func(c *config) {
		c.Logger = l
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Schema:          schema.IncomeConfig(),
		ConfidenceLevel: 0.95,
		HistogramBins:   10,
		MaxHueLevels:    30,
		MaxCategories:   500,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return cfg
}
