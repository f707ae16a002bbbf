// Package jobs provides the background job runner used for fire-and-forget
// training work. Injecting a Runner keeps the orchestrator deterministic in
// tests: production uses GoRunner, tests a SyncRunner.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"
)

// Runner schedules a job without blocking the caller.
type Runner interface {
	// Submit schedules job and returns a handle whose Done channel closes
	// when the job has finished.
	Submit(name string, job func(ctx context.Context)) Handle
}

// Handle tracks one submitted job.
type Handle interface {
	Done() <-chan struct{}
}

type handle struct {
	done chan struct{}
}

func (h *handle) Done() <-chan struct{} { return h.done }

// GoRunner runs each job on its own goroutine. A weighted semaphore bounds
// how many jobs execute at once; excess jobs wait their turn.
type GoRunner struct {
	sem     *semaphore.Weighted
	timeout time.Duration
}

// NewGoRunner creates a runner allowing up to maxParallel concurrent jobs,
// each bounded by timeout. A timeout of zero means no per-job deadline.
func NewGoRunner(maxParallel int64, timeout time.Duration) *GoRunner {
	return &GoRunner{
		sem:     semaphore.NewWeighted(maxParallel),
		timeout: timeout,
	}
}

// Submit implements Runner.
func (r *GoRunner) Submit(name string, job func(ctx context.Context)) Handle {
	h := &handle{done: make(chan struct{})}

	go func() {
		defer close(h.done)

		ctx := context.Background()
		if err := r.sem.Acquire(ctx, 1); err != nil {
			slog.Error("job semaphore acquire failed", "job", name, "error", err)
			return
		}
		defer r.sem.Release(1)

		if r.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}

		start := time.Now()
		slog.Debug("job started", "job", name)
		job(ctx)
		slog.Debug("job finished", "job", name, "duration_ms", time.Since(start).Milliseconds())
	}()

	return h
}

// SyncRunner executes jobs inline on the submitting goroutine. Test use only.
type SyncRunner struct{}

// Submit implements Runner.
func (SyncRunner) Submit(_ string, job func(ctx context.Context)) Handle {
	h := &handle{done: make(chan struct{})}
	job(context.Background())
	close(h.done)
	return h
}
