package scheduler

import (
	"context"
	"runtime"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/Iron-Ham/eigenbench/internal/affinity"
	"github.com/Iron-Ham/eigenbench/internal/event"
	"github.com/Iron-Ham/eigenbench/internal/logging"
)

// TaskFunc runs the task at index. A non-nil error aborts the run.
type TaskFunc func(ctx context.Context, index int) error

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithWorkers sets the number of workers (minimum 1).
func WithWorkers(n int) PoolOption {
	return func(p *Pool) { p.workers = max(n, 1) }
}

// WithPolicy sets the distribution policy.
func WithPolicy(policy Policy) PoolOption {
	return func(p *Pool) { p.policy = policy }
}

// WithPinning pins worker w to an allowed CPU chosen round-robin.
func WithPinning(enabled bool) PoolOption {
	return func(p *Pool) { p.pin = enabled }
}

// WithTrace records every claim in t.
func WithTrace(t *Trace) PoolOption {
	return func(p *Pool) { p.trace = t }
}

// WithEvents publishes a ChunkClaimedEvent per claim on bus.
func WithEvents(bus *event.Bus) PoolOption {
	return func(p *Pool) { p.bus = bus }
}

// WithPoolLogger sets the pool's logger.
func WithPoolLogger(l *logging.Logger) PoolOption {
	return func(p *Pool) { p.logger = l }
}

// Pool runs a fixed set of worker goroutines over one index space at a
// time. A Pool can be reused for several runs, but not concurrently.
type Pool struct {
	workers int
	policy  Policy
	pin     bool
	trace   *Trace
	bus     *event.Bus
	logger  *logging.Logger
}

// NewPool creates a Pool. Without options it runs one worker per CPU with
// the dynamic policy and the default chunk size.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		workers: runtime.NumCPU(),
		policy:  Dynamic{ChunkSize: DefaultChunkSize},
		logger:  logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Workers returns the configured worker count.
func (p *Pool) Workers() int { return p.workers }

// Policy returns the configured policy.
func (p *Pool) Policy() Policy { return p.policy }

// Run distributes [0, n) across the workers and blocks until every worker
// has joined. newWorker is called once on each worker's own thread to
// build that worker's TaskFunc, so per-worker state is never shared.
// The first error returned by any task is returned.
func (p *Pool) Run(ctx context.Context, n int, newWorker func(worker int) TaskFunc) error {
	if n <= 0 {
		return nil
	}
	claimer := p.policy.Begin(n, p.workers)

	var allowed []int
	if p.pin {
		var err error
		if allowed, err = affinity.Allowed(); err != nil {
			p.logger.Warn("cpu pinning unavailable", "error", err)
		}
	}

	if prev := runtime.GOMAXPROCS(0); prev < p.workers {
		runtime.GOMAXPROCS(p.workers)
		defer runtime.GOMAXPROCS(prev)
	}

	wp := pool.New().
		WithMaxGoroutines(p.workers).
		WithContext(ctx).
		WithFirstError().
		WithCancelOnError()
	for w := 0; w < p.workers; w++ {
		wp.Go(func(ctx context.Context) error {
			return p.work(ctx, w, claimer, allowed, newWorker)
		})
	}
	return wp.Wait()
}

func (p *Pool) work(ctx context.Context, w int, claimer Claimer, allowed []int, newWorker func(int) TaskFunc) error {
	runtime.LockOSThread()
	logger := p.logger.WithWorker(w)
	var prev []int
	if p.pin && allowed != nil {
		prev = pinThread(logger, affinity.CPUFor(w, allowed))
	}
	defer func() {
		// A thread whose mask cannot be put back stays locked, so the
		// runtime discards it when this goroutine exits.
		if prev != nil {
			if err := affinity.Restore(prev); err != nil {
				logger.Warn("failed to restore cpu affinity", "error", err)
				return
			}
		}
		runtime.UnlockOSThread()
	}()

	task := newWorker(w)
	publish := p.bus.HasSubscribers(event.TypeChunkClaimed)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk, ok := claimer.Claim(w)
		if !ok {
			return nil
		}
		if publish {
			p.bus.Publish(event.NewChunkClaimedEvent(w, chunk.Start, chunk.End))
		}
		if logger.DebugEnabled() {
			logger.Debug("chunk claimed", "start", chunk.Start, "end", chunk.End)
		}

		started := time.Now()
		err := p.runChunk(ctx, chunk, task)
		if p.trace != nil {
			p.trace.record(w, chunk, time.Since(started))
		}
		if err != nil {
			return err
		}
	}
}

// pinThread binds the locked calling thread to cpu and returns the mask
// it had before, or nil when the thread was left unpinned.
func pinThread(logger *logging.Logger, cpu int) []int {
	prev, err := affinity.Allowed()
	if err != nil {
		logger.Warn("failed to read cpu affinity", "error", err)
		return nil
	}
	if err := affinity.Pin(cpu); err != nil {
		logger.Warn("failed to pin worker", "cpu", cpu, "error", err)
		return nil
	}
	logger.Debug("worker pinned", "cpu", cpu)
	return prev
}

func (p *Pool) runChunk(ctx context.Context, chunk Chunk, task TaskFunc) error {
	for i := chunk.Start; i < chunk.End; i++ {
		if i > chunk.Start {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := task(ctx, i); err != nil {
			return err
		}
	}
	return nil
}
