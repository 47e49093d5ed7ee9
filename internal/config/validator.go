package config

import (
	"fmt"
	"slices"
	"strings"

	benchErrors "github.com/Iron-Ham/eigenbench/internal/errors"
	"github.com/Iron-Ham/eigenbench/internal/scheduler"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "scheduler.chunk_size")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// Is lets callers match configuration failures against ErrInvalidInput.
func (e ValidationError) Is(target error) bool {
	return target == benchErrors.ErrInvalidInput
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Unwrap exposes every failure to errors.Is and errors.As.
func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i := range e {
		errs[i] = e[i]
	}
	return errs
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidSolvers returns the list of valid eigensolver backends
func ValidSolvers() []string {
	return []string{"gonum", "synthetic"}
}

// ValidResultsFormats returns the list of valid result dump formats
func ValidResultsFormats() []string {
	return []string{"text", "json", "yaml"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateRun()...)
	errors = append(errors, c.validateScheduler()...)
	errors = append(errors, c.validateExecutor()...)
	errors = append(errors, c.validateOutput()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateRun() []ValidationError {
	var errors []ValidationError

	if c.Run.Workers < 0 {
		errors = append(errors, ValidationError{
			Field:   "run.workers",
			Value:   c.Run.Workers,
			Message: "must be non-negative (0 = one per CPU)",
		})
	}

	return errors
}

func (c *Config) validateScheduler() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(scheduler.ValidPolicies(), c.Scheduler.Policy) {
		errors = append(errors, ValidationError{
			Field:   "scheduler.policy",
			Value:   c.Scheduler.Policy,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(scheduler.ValidPolicies(), ", ")),
		})
	}

	if c.Scheduler.ChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "scheduler.chunk_size",
			Value:   c.Scheduler.ChunkSize,
			Message: "must be at least 1",
		})
	}

	return errors
}

func (c *Config) validateExecutor() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidSolvers(), c.Executor.Solver) {
		errors = append(errors, ValidationError{
			Field:   "executor.solver",
			Value:   c.Executor.Solver,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidSolvers(), ", ")),
		})
	}

	if c.Executor.SyntheticUnitNs < 0 {
		errors = append(errors, ValidationError{
			Field:   "executor.synthetic_unit_ns",
			Value:   c.Executor.SyntheticUnitNs,
			Message: "must be non-negative",
		})
	}

	if c.Executor.MaxTaskMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "executor.max_task_mb",
			Value:   c.Executor.MaxTaskMB,
			Message: "must be non-negative (0 = derive from available memory)",
		})
	}

	return errors
}

func (c *Config) validateOutput() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidResultsFormats(), c.Output.ResultsFormat) {
		errors = append(errors, ValidationError{
			Field:   "output.results_format",
			Value:   c.Output.ResultsFormat,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidResultsFormats(), ", ")),
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB < 1 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be at least 1",
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
