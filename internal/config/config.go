// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ToggleQueueSize bounds the in-memory hype toggle queue.
	ToggleQueueSize int `koanf:"toggle_queue_size"`

	// WorkerCount sets the number of toggle workers.
	WorkerCount int `koanf:"worker_count"`

	// ProximityWindowKM is the feed's proximity hysteresis band.
	ProximityWindowKM float64 `koanf:"proximity_window_km"`

	// JWTSecret signs session tokens. Override in production.
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTLHours bounds session token lifetime.
	TokenTTLHours int `koanf:"token_ttl_hours"`

	// GeocoderBaseURL points at the address lookup service.
	GeocoderBaseURL string `koanf:"geocoder_base_url"`

	// GeocoderTimeoutMS bounds a single geocoding request.
	GeocoderTimeoutMS int `koanf:"geocoder_timeout_ms"`
}

// New creates a Config populated with defaults. Context is accepted first to
// satisfy the project-wide convention; it is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		ToggleQueueSize:   1024,
		WorkerCount:       runtime.NumCPU() * 2,
		ProximityWindowKM: 10,
		JWTSecret:         "devsecret",
		TokenTTLHours:     24,
		GeocoderBaseURL:   "https://nominatim.openstreetmap.org",
		GeocoderTimeoutMS: 5000,
	}
}
