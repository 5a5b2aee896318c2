// Package repository defines the authoritative event store contract and its
// in-memory implementation.
package repository

import (
	"context"

	"github.com/undrgrnd/hype/internal/domain/model"
)

// TxFn is the pure read-modify-write body passed to Update. It receives the
// current record and returns the replacement. Returning an error aborts the
// transaction with no mutation.
type TxFn = func(model.Event) (model.Event, error)

// Store provides read/write access to the event collection.
//
// Update is the transaction primitive: the read-decide-write sequence runs
// exclusively against the current record, so two concurrent togglers can
// never lose each other's change.
type Store interface {
	// Get returns the event with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (model.Event, error)

	// Put inserts or replaces an event and notifies watchers.
	Put(ctx context.Context, e model.Event) error

	// List returns a copy of the full current collection.
	List(ctx context.Context) []model.Event

	// Update applies fn atomically to the event with the given id and
	// returns the stored result. ErrNotFound if the event does not exist;
	// any error from fn aborts with no partial mutation.
	Update(ctx context.Context, id string, fn TxFn) (model.Event, error)

	// Watch returns a channel that receives the full current list on every
	// change. Deliveries are snapshots, not diffs; a slow receiver only ever
	// observes the newest snapshot, older undelivered ones are dropped.
	// The channel closes when ctx is done or the store is closed.
	Watch(ctx context.Context) <-chan []model.Event

	// Count returns the number of stored events.
	Count(ctx context.Context) int
}
