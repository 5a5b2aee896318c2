// Package repository defines the authoritative event store contract and its
// in-memory implementation.
package repository

import "github.com/undrgrnd/hype/internal/domain/model"

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithEvents preloads the store with events at construction time, without
// notifying watchers (there are none yet).
func WithEvents(events ...model.Event) Option {
	return func(s *MemStore) {
		for _, e := range events {
			if e.ID != "" {
				s.events[e.ID] = copyEvent(e)
			}
		}
	}
}
