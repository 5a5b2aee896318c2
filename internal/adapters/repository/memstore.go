package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/undrgrnd/hype/internal/domain/model"
	"github.com/undrgrnd/hype/pkg/metrics"
)

// In-memory Store implementation.
//
// All mutation funnels through a single mutex, which is what makes Update an
// exclusive read-modify-write: conflicting writers serialize instead of
// clobbering each other. Snapshots handed to readers and watchers are deep
// copies, so callers can never alias live records.

// MemStore implements Store with a map guarded by a mutex plus a set of
// snapshot watchers.
type MemStore struct {
	mu     sync.RWMutex
	events map[string]model.Event

	watcherMu   sync.Mutex
	watchers    map[uint64]chan []model.Event
	nextWatcher uint64
	drained     bool

	closed bool
}

// NewMemStore creates an empty in-memory event store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		events:   make(map[string]model.Event),
		watchers: make(map[uint64]chan []model.Event),
	}

	for _, opt := range opts {
		opt(s)
	}

	metrics.UpdateEventCount(0)
	return s
}

// Get returns the event with the given id.
func (s *MemStore) Get(_ context.Context, id string) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return model.Event{}, ErrNotFound
	}
	return copyEvent(e), nil
}

// Put inserts or replaces an event and notifies watchers.
func (s *MemStore) Put(_ context.Context, e model.Event) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.events[e.ID] = copyEvent(e)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	metrics.RecordStoreWrite()
	metrics.UpdateEventCount(len(snapshot))
	s.publish(snapshot)
	return nil
}

// List returns a copy of the full current collection, ordered by id so a
// fixed store state always lists identically.
func (s *MemStore) List(_ context.Context) []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Update applies fn atomically to the stored event.
func (s *MemStore) Update(_ context.Context, id string, fn TxFn) (model.Event, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return model.Event{}, ErrClosed
	}

	current, ok := s.events[id]
	if !ok {
		s.mu.Unlock()
		return model.Event{}, ErrNotFound
	}

	next, err := fn(copyEvent(current))
	if err != nil {
		s.mu.Unlock()
		return model.Event{}, err
	}
	next.ID = id // identity is immutable, whatever fn did
	s.events[id] = copyEvent(next)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	metrics.RecordStoreWrite()
	s.publish(snapshot)
	return next, nil
}

// Watch registers a snapshot watcher.
func (s *MemStore) Watch(ctx context.Context) <-chan []model.Event {
	out := make(chan []model.Event, 1)

	// Seed the watcher with the current state so new subscribers do not
	// wait for the next write. The seed is buffered before the channel is
	// visible to publish or Close, so no send ever races a close.
	s.mu.RLock()
	closed := s.closed
	seed := s.snapshotLocked()
	s.mu.RUnlock()
	if closed {
		close(out)
		return out
	}
	out <- seed

	s.watcherMu.Lock()
	if s.drained {
		// Close ran between the snapshot and registration; the watcher set
		// is already gone, so this channel must close itself.
		s.watcherMu.Unlock()
		close(out)
		return out
	}
	s.nextWatcher++
	id := s.nextWatcher
	s.watchers[id] = out
	metrics.UpdateWatcherCount(len(s.watchers))
	s.watcherMu.Unlock()

	go func() {
		<-ctx.Done()
		s.watcherMu.Lock()
		if ch, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(ch)
		}
		metrics.UpdateWatcherCount(len(s.watchers))
		s.watcherMu.Unlock()
	}()

	return out
}

// Count returns the number of stored events.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Close drops all watchers and rejects further writes.
func (s *MemStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.watcherMu.Lock()
	s.drained = true
	for id, ch := range s.watchers {
		delete(s.watchers, id)
		close(ch)
	}
	metrics.UpdateWatcherCount(0)
	s.watcherMu.Unlock()
	return nil
}

// publish fans a snapshot out to every watcher. Each watcher channel holds
// one pending snapshot; if the receiver has not drained the previous one it
// is replaced, so only the newest state is ever observed.
func (s *MemStore) publish(snapshot []model.Event) {
	s.watcherMu.Lock()
	defer s.watcherMu.Unlock()

	for _, ch := range s.watchers {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch: // drop the stale snapshot
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
	metrics.RecordSnapshotPublished()
}

// snapshotLocked copies the collection ordered by id. Callers hold s.mu.
func (s *MemStore) snapshotLocked() []model.Event {
	out := make([]model.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, copyEvent(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// copyEvent deep-copies an event, including the hypedBy membership slice.
func copyEvent(e model.Event) model.Event {
	if len(e.HypedBy) > 0 {
		hypedBy := make([]string, len(e.HypedBy))
		copy(hypedBy, e.HypedBy)
		e.HypedBy = hypedBy
	}
	return e
}
