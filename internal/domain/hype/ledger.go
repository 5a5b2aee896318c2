// Package hype maintains per-event reaction state: a running count plus the
// membership set of users whose reaction is currently active.
package hype

import (
	"context"
	"fmt"

	"github.com/undrgrnd/hype/internal/domain/model"
	"github.com/undrgrnd/hype/pkg/logger"
	"github.com/undrgrnd/hype/pkg/metrics"
)

// Toggle identifies one toggle request: which viewer on which event.
type Toggle struct {
	EventID string
	UserID  string
}

// Result is the outcome of an applied toggle, delivered asynchronously.
type Result struct {
	Event model.Event
	Err   error
}

// Transactor is the authoritative store's transaction primitive: it applies
// fn atomically and exclusively against the current record, so the
// read-decide-write sequence can never lose a concurrent writer's update.
type Transactor interface {
	Update(ctx context.Context, id string, fn func(model.Event) (model.Event, error)) (model.Event, error)
}

// Ledger applies toggle requests against the store.
type Ledger struct {
	store  Transactor
	logger logger.Logger
}

// NewLedger creates a ledger bound to a store transaction primitive.
func NewLedger(store Transactor, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		logger: logger.Get().Named("hype"),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Apply executes one toggle as a single transaction. A user already in the
// membership set is removed and the count decremented; otherwise the user is
// added and the count incremented. Calling twice in a row for the same user
// restores the prior state.
//
// An unauthenticated request or a missing event fails with no mutation.
func (l *Ledger) Apply(ctx context.Context, t Toggle) (model.Event, error) {
	if t.UserID == "" {
		metrics.RecordHypeError()
		return model.Event{}, ErrUnauthenticated
	}

	var removed bool
	updated, err := l.store.Update(ctx, t.EventID, func(e model.Event) (model.Event, error) {
		if e.HypedByUser(t.UserID) {
			e.Hype--
			if e.Hype < 0 {
				// Count and membership can drift apart in legacy records;
				// the count still never goes negative.
				e.Hype = 0
			}
			e.HypedBy = removeUser(e.HypedBy, t.UserID)
			removed = true
			return e, nil
		}
		e.Hype++
		e.HypedBy = append(e.HypedBy, t.UserID)
		removed = false
		return e, nil
	})
	if err != nil {
		metrics.RecordHypeError()
		l.logger.Warn(ctx, "toggle failed",
			logger.String("eventID", t.EventID),
			logger.String("userID", t.UserID),
			logger.Error(err),
		)
		return model.Event{}, fmt.Errorf("toggle hype on %s: %w", t.EventID, err)
	}

	if removed {
		metrics.RecordHypeRemoved()
	} else {
		metrics.RecordHypeApplied()
	}
	l.logger.Debug(ctx, "toggle applied",
		logger.String("eventID", t.EventID),
		logger.String("userID", t.UserID),
		logger.Bool("removed", removed),
		logger.Int("hype", updated.Hype),
	)
	return updated, nil
}

func removeUser(hypedBy []string, userID string) []string {
	out := hypedBy[:0]
	for _, id := range hypedBy {
		if id != userID {
			out = append(out, id)
		}
	}
	return out
}
