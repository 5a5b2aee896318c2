// Package app provides the core business service.
package app

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/undrgrnd/hype/internal/adapters/geocode"
	"github.com/undrgrnd/hype/internal/adapters/repository"
	"github.com/undrgrnd/hype/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWorkerCount sets the number of toggle workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the toggle queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithProximityWindow sets the feed's proximity hysteresis band in km.
func WithProximityWindow(km float64) Option {
	return func(s *Service) {
		if km > 0 {
			s.proximityWindowKM = km
		}
	}
}

// WithJWTSecret sets the session token signing secret.
func WithJWTSecret(secret string) Option {
	return func(s *Service) {
		if secret != "" {
			s.jwtSecret = secret
		}
	}
}

// WithTokenTTL sets the session token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithStore injects a prepared event store (used by tests to seed state).
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithGeocoder injects the address lookup client.
func WithGeocoder(g geocode.Geocoder) Option {
	return func(s *Service) {
		if g != nil {
			s.geocoder = g
		}
	}
}

// WithClock injects the time source used for feed expiry decisions.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}
