// Package logging provides structured logging for eigenbench runs.
//
// It wraps log/slog with a JSON handler and adds run, worker and phase
// context so that the log of a run can be filtered after the fact. Standard
// output is reserved for measurements; logs go to a rotating file in the
// configured log directory, or to stderr when no directory is set.
//
// # Usage
//
//	logger, err := logging.New(logging.Options{Dir: "/tmp/eigenbench", Level: "DEBUG"})
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	runLog := logger.WithRun(runID).WithPhase("distribute")
//	runLog.WithWorker(3).Debug("chunk claimed", "start", 40, "end", 45)
//
// Output:
//
//	{"time":"...","level":"DEBUG","msg":"chunk claimed","run_id":"...","phase":"distribute","worker":3,"start":40,"end":45}
//
// # Rotation
//
// The log file is rotated by size. Backups are named eigenbench.log.1
// (newest) through eigenbench.log.N and are gzip-compressed when
// Options.Compress is set.
//
// # Testing
//
// Use [NopLogger] to discard output, or [NewWithWriter] to capture it.
package logging
