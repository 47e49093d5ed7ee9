package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/eigenbench/internal/config"
	"github.com/Iron-Ham/eigenbench/internal/costmodel"
	"github.com/Iron-Ham/eigenbench/internal/eigen"
	benchErrors "github.com/Iron-Ham/eigenbench/internal/errors"
	"github.com/Iron-Ham/eigenbench/internal/event"
	"github.com/Iron-Ham/eigenbench/internal/harness"
	"github.com/Iron-Ham/eigenbench/internal/hostinfo"
	"github.com/Iron-Ham/eigenbench/internal/logging"
	"github.com/Iron-Ham/eigenbench/internal/metrics"
	"github.com/Iron-Ham/eigenbench/internal/report"
	"github.com/Iron-Ham/eigenbench/internal/scheduler"
)

const usageArgs = `
Three command line arguments required
  Dimension of array
  Number of iterations
  Choice: 'E' for even / 'U' for uneven work per iteration

`

const usageRegime = `
Third argument must be 'E' or 'U' for even or uneven
work per iteration, respectively

`

type benchArgs struct {
	dimension  int
	iterations int
	regime     costmodel.Regime
}

// parseArgs validates the positional arguments. Every failure is a
// *errors.UsageError.
func parseArgs(args []string) (benchArgs, error) {
	var a benchArgs
	if len(args) < 3 {
		return a, benchErrors.NewUsageError("three command line arguments required")
	}

	var err error
	if a.dimension, err = positiveInt(args[0]); err != nil {
		return a, benchErrors.NewUsageError("dimension must be a positive integer").
			WithArgument("dimension").WithCause(err)
	}
	if a.iterations, err = positiveInt(args[1]); err != nil {
		return a, benchErrors.NewUsageError("iterations must be a positive integer").
			WithArgument("iterations").WithCause(err)
	}
	if a.regime, err = costmodel.ParseRegime(args[2]); err != nil {
		return a, benchErrors.NewUsageError("invalid regime").
			WithArgument("regime").WithCause(err)
	}
	return a, nil
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("%d is not positive", n)
	}
	return n, nil
}

// printUsage writes the usage text for a UsageError. Usage problems end
// the command successfully, so scripts treat them like an empty run.
func printUsage(w io.Writer, ue *benchErrors.UsageError) {
	switch ue.Argument {
	case "":
		fmt.Fprint(w, usageArgs)
	case "regime":
		fmt.Fprint(w, usageRegime)
	default:
		fmt.Fprintf(w, "\n%s\n%s", ue.Error(), usageArgs)
	}
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*logging.Logger, error) {
	if cfg.Logging.Dir == "" {
		return logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level), nil
	}
	return logging.New(logging.Options{
		Dir:   cfg.Logging.Dir,
		Level: cfg.Logging.Level,
		Rotation: logging.RotationConfig{
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			Compress:   cfg.Logging.Compress,
		},
	})
}

func newSolver(cfg *config.Config) eigen.Solver {
	if cfg.Executor.Solver == "synthetic" {
		return eigen.Synthetic{Unit: cfg.Executor.SyntheticUnit()}
	}
	eigen.UseSerialBLAS()
	return eigen.NewGonum()
}

func runBench(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	a, err := parseArgs(args)
	if err != nil {
		var ue *benchErrors.UsageError
		if benchErrors.As(err, &ue) {
			printUsage(out, ue)
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return benchErrors.Wrap(err, "open log")
	}
	defer logger.Close()

	host, err := hostinfo.Collect()
	if err != nil {
		logger.Warn("host probe failed", "error", err)
	}
	workers := cfg.Run.Workers
	if workers == 0 {
		workers = host.DefaultWorkers()
	}
	budget := cfg.Executor.MaxTaskBytes()
	if budget == 0 {
		budget = host.TaskBudget(workers)
	}
	logger.Info("host", "snapshot", host.String(), "workers", workers, "task_budget_bytes", budget)

	policy, err := scheduler.ParsePolicy(cfg.Scheduler.Policy, cfg.Scheduler.ChunkSize)
	if err != nil {
		return err
	}

	bus := event.NewBus(logger)
	if logger.DebugEnabled() {
		bus.SubscribeAll(func(e event.Event) {
			logger.Debug("event", "event_type", e.EventType())
		})
	}
	var collector *metrics.Collector
	if cfg.Output.Metrics != "" {
		collector = metrics.New()
		collector.Attach(bus)
		defer collector.Detach()
	}

	res, runErr := harness.Run(cmd.Context(), harness.Options{
		Dimension:    a.dimension,
		Iterations:   a.iterations,
		Regime:       a.regime,
		Workers:      workers,
		Policy:       policy,
		Solver:       newSolver(cfg),
		Pin:          cfg.Run.Pin,
		PoolBuffers:  cfg.Executor.PoolBuffers,
		MaxTaskBytes: budget,
		Trace:        cfg.Output.Report,
		Bus:          bus,
		Logger:       logger,
	})

	if collector != nil {
		if err := writeMetrics(cmd, cfg.Output.Metrics, collector); err != nil {
			logger.Error("write metrics", "error", err)
			if runErr == nil {
				runErr = err
			}
		}
	}
	if runErr != nil {
		return runErr
	}

	if err := report.WriteSummary(out, a.dimension, a.iterations, res.Elapsed); err != nil {
		return err
	}
	if cfg.Output.DumpResults {
		if err := res.Slots.Dump(out, cfg.Output.ResultsFormat); err != nil {
			return err
		}
	}
	if cfg.Output.Report && res.Trace != nil {
		errOut := cmd.ErrOrStderr()
		rows := report.Balance(res.Trace.Workers(workers), res.Trace.Claims(), res.Tasks)
		if err := report.WriteBalance(errOut, rows, report.IsTerminal(errOut)); err != nil {
			return err
		}
	}
	return nil
}

func writeMetrics(cmd *cobra.Command, dest string, c *metrics.Collector) error {
	if dest == "-" {
		return c.Write(cmd.ErrOrStderr())
	}
	f, err := os.Create(dest)
	if err != nil {
		return benchErrors.Wrap(err, "write metrics")
	}
	if err := c.Write(f); err != nil {
		f.Close()
		return benchErrors.Wrapf(err, "write metrics to %s", dest)
	}
	return f.Close()
}
