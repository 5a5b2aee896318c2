package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/undrgrnd/hype/internal/adapters/mq/queue"
	worker "github.com/undrgrnd/hype/internal/adapters/mq/worker"
	"github.com/undrgrnd/hype/internal/domain/hype"
	"github.com/undrgrnd/hype/internal/domain/model"
	"github.com/undrgrnd/hype/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeApplier records applied toggles and returns a canned outcome.
type fakeApplier struct {
	mu      sync.Mutex
	applied []hype.Toggle
	err     error
}

func (f *fakeApplier) Apply(_ context.Context, t hype.Toggle) (model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, t)
	if f.err != nil {
		return model.Event{}, f.err
	}
	return model.Event{ID: t.EventID, Hype: 1, HypedBy: []string{t.UserID}}, nil
}

func (f *fakeApplier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.applied)
}

func TestWorker_ProcessesJobs(t *testing.T) {
	Convey("Given a running worker over a queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		applier := &fakeApplier{}
		w := worker.NewWorker(q, applier, worker.WithName("test-worker"))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		Convey("When a job with a result future is enqueued", func() {
			result := make(chan hype.Result, 1)
			ok := q.Enqueue(ctx, queue.Job{
				Toggle: hype.Toggle{EventID: "e1", UserID: "u1"},
				Result: result,
			})
			So(ok, ShouldBeTrue)

			Convey("Then the toggle is applied and the future resolves", func() {
				select {
				case res := <-result:
					So(res.Err, ShouldBeNil)
					So(res.Event.ID, ShouldEqual, "e1")
					So(res.Event.Hype, ShouldEqual, 1)
				case <-time.After(time.Second):
					So("timed out waiting for result", ShouldBeEmpty)
				}
			})
		})

		Convey("When the applier fails", func() {
			applier.err = errors.New("store unavailable")
			result := make(chan hype.Result, 1)
			So(q.Enqueue(ctx, queue.Job{
				Toggle: hype.Toggle{EventID: "e1", UserID: "u1"},
				Result: result,
			}), ShouldBeTrue)

			Convey("Then the error is delivered on the future", func() {
				select {
				case res := <-result:
					So(res.Err, ShouldNotBeNil)
				case <-time.After(time.Second):
					So("timed out waiting for result", ShouldBeEmpty)
				}
			})
		})

		Convey("When a job carries no result channel", func() {
			So(q.Enqueue(ctx, queue.Job{
				Toggle: hype.Toggle{EventID: "e2", UserID: "u1"},
			}), ShouldBeTrue)

			Convey("Then the toggle is still applied", func() {
				deadline := time.After(time.Second)
				for applier.count() == 0 {
					select {
					case <-deadline:
						So("timed out waiting for apply", ShouldBeEmpty)
						return
					default:
						time.Sleep(5 * time.Millisecond)
					}
				}
				So(applier.count(), ShouldEqual, 1)
			})
		})
	})
}

func TestWorker_Shutdown(t *testing.T) {
	Convey("Given a running worker", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		w := worker.NewWorker(q, &fakeApplier{})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()
			err := w.Shutdown(shutdownCtx)

			Convey("Then it stops cleanly", func() {
				So(err, ShouldBeNil)
			})

			Convey("And a second shutdown is safe", func() {
				So(w.Shutdown(shutdownCtx), ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of workers sharing one queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		applier := &fakeApplier{}
		pool := worker.NewPool(4, q, applier)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		Convey("When many jobs are enqueued", func() {
			const jobs = 20
			results := make([]chan hype.Result, jobs)
			for i := 0; i < jobs; i++ {
				results[i] = make(chan hype.Result, 1)
				So(q.Enqueue(ctx, queue.Job{
					Toggle: hype.Toggle{EventID: "e1", UserID: "u1"},
					Result: results[i],
				}), ShouldBeTrue)
			}

			Convey("Then every future resolves", func() {
				for i := 0; i < jobs; i++ {
					select {
					case <-results[i]:
					case <-time.After(2 * time.Second):
						So("timed out waiting for results", ShouldBeEmpty)
						return
					}
				}
				So(applier.count(), ShouldEqual, jobs)
			})
		})

		Convey("When the pool is stopped", func() {
			pool.Stop()

			Convey("Then stopping again is safe", func() {
				pool.Stop()
			})
		})
	})
}

func TestNewPool_MinimumSize(t *testing.T) {
	Convey("Given a nonsensical worker count", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(1))

		Convey("When creating the pool", func() {
			pool := worker.NewPool(0, q, &fakeApplier{})

			Convey("Then it still gets at least one worker", func() {
				So(pool, ShouldNotBeNil)
				ctx, cancel := context.WithCancel(context.Background())
				pool.Start(ctx)
				cancel()
			})
		})
	})
}
