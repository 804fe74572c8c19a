package server

import (
	"time"

	"github.com/spektr-org/incomelens/render"
)

// Config holds server configuration.
type Config struct {
	// Server settings
	Host string
	Port int

	// API settings
	PathPrefix string

	// Performance settings
	CacheTTL time.Duration

	// HTTP timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Views
	PageSize        int
	ChartSize       render.Size
	ConfidenceLevel float64
	MaxHueLevels    int
	HistogramBins   int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            8080,
		PathPrefix:      "/api/v1",
		CacheTTL:        10 * time.Minute,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		PageSize:        50,
		ChartSize:       render.DefaultSize,
		ConfidenceLevel: 0.95,
		MaxHueLevels:    30,
		HistogramBins:   10,
	}
}
