// Package worker runs the pool that applies queued hype toggles against the
// authoritative store.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/undrgrnd/hype/internal/adapters/mq/queue"
	"github.com/undrgrnd/hype/internal/domain/hype"
	"github.com/undrgrnd/hype/internal/domain/model"
	"github.com/undrgrnd/hype/pkg/logger"
	"github.com/undrgrnd/hype/pkg/metrics"
)

// Worker shutdown timing constants.
const (
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Applier applies one toggle transactionally and returns the stored result.
type Applier interface {
	Apply(ctx context.Context, t hype.Toggle) (model.Event, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes toggle jobs and delivers each job's result on its
// result channel.
type Worker struct {
	queue   Queue
	applier Applier
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a new worker with configuration options.
func NewWorker(q Queue, applier Applier, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		applier:  applier,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop until ctx is canceled or the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.processJob(ctx, job)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *Worker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob applies one toggle and delivers its result. The result channel
// is buffered by the job's creator, so the send never blocks the worker.
func (w *Worker) processJob(ctx context.Context, job queue.Job) {
	event, err := w.applier.Apply(ctx, job.Toggle)
	if err != nil {
		metrics.RecordErrorByComponent("worker", "apply_error")
		w.logger.Error(ctx, "toggle apply failed",
			logger.String("eventID", job.Toggle.EventID),
			logger.Error(err),
		)
	}

	if job.Result == nil {
		return
	}
	select {
	case job.Result <- hype.Result{Event: event, Err: err}:
	default:
		// Caller abandoned the future; nothing waits for this result.
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*Worker
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers over the same queue.
func NewPool(workerCount int, q Queue, applier Applier) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}

	pool := &Pool{
		workers: make([]*Worker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewWorker(q, applier, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop stops all workers, waiting briefly for each to finish.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
	defer cancel()
	for _, w := range p.workers {
		_ = w.Shutdown(ctx)
	}
}

// Shutdown gracefully shuts down the entire pool, waiting up to the pool
// timeout for in-flight jobs.
func (p *Pool) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}
