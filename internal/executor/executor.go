package executor

import (
	"context"
	"time"

	"github.com/Iron-Ham/eigenbench/internal/costmodel"
	"github.com/Iron-Ham/eigenbench/internal/eigen"
	benchErrors "github.com/Iron-Ham/eigenbench/internal/errors"
	"github.com/Iron-Ham/eigenbench/internal/logging"
)

// Option configures an Executor.
type Option func(*Executor)

// WithJob selects what the solver computes. The default requests
// eigenvectors, matching the workload being measured.
func WithJob(job eigen.Job) Option {
	return func(e *Executor) { e.job = job }
}

// WithMaxTaskBytes caps a single task's buffers. Zero disables the cap.
func WithMaxTaskBytes(n int64) Option {
	return func(e *Executor) { e.maxTaskBytes = n }
}

// WithBufferReuse keeps one buffer arena for the executor's lifetime.
func WithBufferReuse(enabled bool) Option {
	return func(e *Executor) {
		if enabled {
			e.src = &arena{}
		} else {
			e.src = freshSource{}
		}
	}
}

// WithTracker records acquisitions in t.
func WithTracker(t *Tracker) Option {
	return func(e *Executor) { e.tracker = t }
}

// WithLogger sets the logger used for per-task debug output.
func WithLogger(l *logging.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// Executor computes tasks for a single worker. It is not safe for
// concurrent use.
type Executor struct {
	solver       eigen.Solver
	job          eigen.Job
	maxTaskBytes int64
	src          source
	tracker      *Tracker
	logger       *logging.Logger
}

// New creates an Executor around solver.
func New(solver eigen.Solver, opts ...Option) *Executor {
	e := &Executor{
		solver: solver,
		job:    eigen.JobVectors,
		src:    freshSource{},
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fill writes the deterministic test matrix for task j into a, which holds
// an m×m matrix in row-major order.
func Fill(a []float64, m, j int) {
	denom := 2.0 + float64(j)
	for i := range a[:m*m] {
		a[i] = float64((i+j)%17) / denom
	}
}

// Execute runs task d and returns its largest eigenvalue.
func (e *Executor) Execute(ctx context.Context, d costmodel.TaskDescriptor) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m := d.ProblemSize
	if m < 1 {
		return 0, benchErrors.NewComputeError(d.Index, int(eigen.StatusIllegalArgument)).
			WithSolver(e.solver.Name())
	}

	var started time.Time
	debug := e.logger.DebugEnabled()
	if debug {
		started = time.Now()
	}

	bufs, release, err := e.acquire(d.Index, m)
	if err != nil {
		return 0, err
	}
	defer release()

	Fill(bufs.A, m, d.Index)
	if status := e.solver.Decompose(e.job, m, bufs.A, bufs.W, bufs.Work); status != eigen.StatusOK {
		return 0, benchErrors.NewComputeError(d.Index, int(status)).WithSolver(e.solver.Name())
	}
	result := bufs.W[m-1]

	if debug {
		e.logger.Debug("task executed",
			"index", d.Index,
			"order", m,
			"duration", time.Since(started),
			"max_eigenvalue", result)
	}
	return result, nil
}

// Solver returns the underlying solver.
func (e *Executor) Solver() eigen.Solver { return e.solver }
