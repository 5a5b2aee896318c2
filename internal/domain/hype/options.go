// Package hype maintains per-event reaction state.
package hype

import "github.com/undrgrnd/hype/pkg/logger"

// Option applies a configuration option to the Ledger.
type Option func(*Ledger)

// WithLogger sets a custom logger for the ledger.
func WithLogger(l logger.Logger) Option {
	return func(ledger *Ledger) {
		if l != nil {
			ledger.logger = l
		}
	}
}
