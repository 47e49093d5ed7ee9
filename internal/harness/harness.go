// Package harness runs one measurement: it generates the task sequence,
// distributes it over the worker pool, executes every task, and times the
// distribution phase.
package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/eigenbench/internal/costmodel"
	"github.com/Iron-Ham/eigenbench/internal/eigen"
	benchErrors "github.com/Iron-Ham/eigenbench/internal/errors"
	"github.com/Iron-Ham/eigenbench/internal/event"
	"github.com/Iron-Ham/eigenbench/internal/executor"
	"github.com/Iron-Ham/eigenbench/internal/logging"
	"github.com/Iron-Ham/eigenbench/internal/results"
	"github.com/Iron-Ham/eigenbench/internal/scheduler"
)

// Options describes one run.
type Options struct {
	Dimension  int // base matrix order
	Iterations int // number of tasks, N
	Regime     costmodel.Regime

	Workers int
	Policy  scheduler.Policy // nil means dynamic with the default chunk size
	Solver  eigen.Solver     // nil means gonum
	Pin     bool

	PoolBuffers  bool
	MaxTaskBytes int64

	// Trace records every chunk claim for the balance report.
	Trace bool

	Bus    *event.Bus
	Logger *logging.Logger
}

// Result is the outcome of a run.
type Result struct {
	RunID   string
	Tasks   []costmodel.TaskDescriptor
	Slots   *results.Slots
	Elapsed time.Duration
	Workers int
	Policy  string
	Solver  string
	Trace   *scheduler.Trace   // nil unless Options.Trace
	Buffers *executor.Tracker
}

func (o *Options) validate() error {
	if o.Dimension < 1 {
		return benchErrors.NewValidationError("dimension must be positive").
			WithField("dimension").WithValue(o.Dimension)
	}
	if o.Iterations < 0 {
		return benchErrors.NewValidationError("iterations must be non-negative").
			WithField("iterations").WithValue(o.Iterations)
	}
	if !o.Regime.Valid() {
		return benchErrors.NewValidationError("unknown regime").
			WithField("regime").WithValue(o.Regime.String()).WithCause(costmodel.ErrInvalidRegime)
	}
	if o.Workers < 1 {
		return benchErrors.NewValidationError("workers must be positive").
			WithField("workers").WithValue(o.Workers)
	}
	return nil
}

// Run executes one measurement. On a fatal task failure the partially
// filled Result is returned together with the error.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Policy == nil {
		opts.Policy = scheduler.Dynamic{ChunkSize: scheduler.DefaultChunkSize}
	}
	if opts.Solver == nil {
		opts.Solver = eigen.NewGonum()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}

	res := &Result{
		RunID:   uuid.NewString(),
		Tasks:   costmodel.Generate(opts.Iterations, opts.Dimension, opts.Regime),
		Slots:   results.NewSlots(opts.Iterations),
		Workers: opts.Workers,
		Policy:  opts.Policy.Name(),
		Solver:  opts.Solver.Name(),
		Buffers: &executor.Tracker{},
	}
	logger := opts.Logger.WithRun(res.RunID).WithPhase("distribute")

	poolOpts := []scheduler.PoolOption{
		scheduler.WithWorkers(opts.Workers),
		scheduler.WithPolicy(opts.Policy),
		scheduler.WithPinning(opts.Pin),
		scheduler.WithEvents(opts.Bus),
		scheduler.WithPoolLogger(logger),
	}
	if opts.Trace {
		res.Trace = scheduler.NewTrace()
		poolOpts = append(poolOpts, scheduler.WithTrace(res.Trace))
	}
	pool := scheduler.NewPool(poolOpts...)

	logger.Info("run starting",
		"tasks", opts.Iterations,
		"dimension", opts.Dimension,
		"regime", opts.Regime.String(),
		"workers", opts.Workers,
		"policy", res.Policy,
		"solver", res.Solver,
		"nominal_cost", costmodel.TotalCost(res.Tasks))
	opts.Bus.Publish(event.NewRunStartedEvent(res.RunID, opts.Iterations, opts.Dimension,
		opts.Regime.String(), opts.Workers, chunkSize(opts.Policy), res.Policy, res.Solver))

	newWorker := func(w int) scheduler.TaskFunc {
		return workerTask(&opts, res, logger, w)
	}

	var timer results.Timer
	timer.Start()
	err := pool.Run(ctx, opts.Iterations, newWorker)
	res.Elapsed = timer.Stop()

	if err == nil {
		if missing := res.Slots.Missing(); len(missing) > 0 {
			err = fmt.Errorf("%d result slots never written, first %d", len(missing), missing[0])
		}
	}

	opts.Bus.Publish(event.NewRunCompletedEvent(res.RunID, res.Elapsed, res.Slots.Count(), err))
	if err != nil {
		logger.Error("run failed", "error", err, "completed", res.Slots.Count())
		return res, err
	}
	logger.Info("run completed",
		"elapsed", res.Elapsed,
		"peak_buffer_bytes", res.Buffers.PeakBytes())
	return res, nil
}

func chunkSize(p scheduler.Policy) int {
	switch p := p.(type) {
	case scheduler.Dynamic:
		return p.ChunkSize
	case scheduler.Guided:
		return p.MinChunk
	default:
		return 0
	}
}

// workerTask builds worker w's TaskFunc with its own executor. Tasks that
// stop because the run was cancelled are not reported as failures.
func workerTask(opts *Options, res *Result, logger *logging.Logger, w int) scheduler.TaskFunc {
	exec := executor.New(opts.Solver,
		executor.WithBufferReuse(opts.PoolBuffers),
		executor.WithMaxTaskBytes(opts.MaxTaskBytes),
		executor.WithTracker(res.Buffers),
		executor.WithLogger(logger.WithWorker(w)),
	)
	publish := opts.Bus.HasSubscribers(event.TypeTaskCompleted)
	return func(ctx context.Context, i int) error {
		d := res.Tasks[i]
		started := time.Now()
		v, err := exec.Execute(ctx, d)
		if err != nil {
			if !benchErrors.Is(err, context.Canceled) && !benchErrors.Is(err, context.DeadlineExceeded) {
				opts.Bus.Publish(event.NewTaskFailedEvent(w, i, err))
			}
			return err
		}
		if err := res.Slots.Set(i, v); err != nil {
			return err
		}
		if publish {
			opts.Bus.Publish(event.NewTaskCompletedEvent(w, i, d.ProblemSize, time.Since(started), v))
		}
		return nil
	}
}
