// Package errors provides the error taxonomy for eigenbench. It defines
// sentinel errors, typed errors that carry run context, and classification
// helpers used by the command layer to decide how a failure is reported.
//
// # Error Types
//
//   - UsageError: malformed or missing command-line arguments. Reported to
//     the user; no computation is attempted.
//   - ComputeError: the eigensolver returned a non-zero status for a task.
//     Fatal for the whole run.
//   - AllocationError: a task's working buffers could not be granted.
//     Fatal for the whole run.
//   - ValidationError: an invalid configuration value.
//
// # Usage
//
//	err := errors.NewComputeError(17, 1)
//	if errors.Is(err, errors.ErrComputeFailure) { ... }
//
//	var ce *errors.ComputeError
//	if errors.As(err, &ce) {
//	    fmt.Println(ce.Index, ce.Status)
//	}
//
// # Error Classification
//
//   - UserFacing: the message can be shown verbatim
//   - Severity: Debug, Info, Warning, Error, Critical
//
// Nothing in this taxonomy is retryable: tasks are deterministic, so a
// failure points at inputs or environment rather than a transient fault.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that invalidate the whole run.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

var (
	// ErrUsage indicates malformed or missing command-line arguments.
	ErrUsage = New("usage error")
	// ErrComputeFailure indicates the eigensolver reported a non-zero status.
	ErrComputeFailure = New("compute failure")
	// ErrAllocationFailure indicates task buffers could not be allocated.
	ErrAllocationFailure = New("allocation failure")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// BenchError is the base interface for all eigenbench errors.
type BenchError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsUserFacing returns true if the error message is safe to display
	// to end users as-is.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Usage Errors
// -----------------------------------------------------------------------------

// UsageError reports malformed or missing command-line arguments.
//
// Example:
//
//	err := errors.NewUsageError("three command line arguments required")
//	err = err.WithArgument("regime")
type UsageError struct {
	baseError
	Argument string
}

// NewUsageError creates a new UsageError.
func NewUsageError(message string) *UsageError {
	return &UsageError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithArgument names the offending argument.
func (e *UsageError) WithArgument(name string) *UsageError {
	e.Argument = name
	return e
}

// WithCause adds a cause to the error.
func (e *UsageError) WithCause(cause error) *UsageError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *UsageError) Error() string {
	prefix := "usage error"
	if e.Argument != "" {
		prefix = fmt.Sprintf("usage error [argument=%s]", e.Argument)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is matches any *UsageError and ErrUsage.
func (e *UsageError) Is(target error) bool {
	if _, ok := target.(*UsageError); ok {
		return true
	}
	return target == ErrUsage
}

// -----------------------------------------------------------------------------
// Compute Errors
// -----------------------------------------------------------------------------

// ComputeError reports a non-zero eigensolver status for one task.
//
// Example:
//
//	err := errors.NewComputeError(42, 3)
//	fmt.Println(err) // "compute failure [task=42, status=3]"
type ComputeError struct {
	baseError
	Index  int
	Status int
	Solver string
}

// NewComputeError creates a ComputeError for the task at index.
func NewComputeError(index, status int) *ComputeError {
	return &ComputeError{
		baseError: baseError{
			message:    "eigensolver reported non-zero status",
			severity:   SeverityCritical,
			userFacing: true,
		},
		Index:  index,
		Status: status,
	}
}

// WithSolver records which solver failed.
func (e *ComputeError) WithSolver(name string) *ComputeError {
	e.Solver = name
	return e
}

// Error returns the formatted error message.
func (e *ComputeError) Error() string {
	parts := []string{fmt.Sprintf("task=%d", e.Index), fmt.Sprintf("status=%d", e.Status)}
	if e.Solver != "" {
		parts = append(parts, fmt.Sprintf("solver=%s", e.Solver))
	}
	return fmt.Sprintf("compute failure [%s]: %s", strings.Join(parts, ", "), e.message)
}

// Is matches any *ComputeError and ErrComputeFailure.
func (e *ComputeError) Is(target error) bool {
	if _, ok := target.(*ComputeError); ok {
		return true
	}
	return target == ErrComputeFailure
}

// -----------------------------------------------------------------------------
// Allocation Errors
// -----------------------------------------------------------------------------

// AllocationError reports that a task's buffers exceed what may be granted.
//
// Example:
//
//	err := errors.NewAllocationError(7, 1<<30, 1<<20)
type AllocationError struct {
	baseError
	Index int
	Bytes int64
	Limit int64
}

// NewAllocationError creates an AllocationError for the task at index.
func NewAllocationError(index int, bytes, limit int64) *AllocationError {
	return &AllocationError{
		baseError: baseError{
			message:    "task buffers exceed memory budget",
			severity:   SeverityCritical,
			userFacing: true,
		},
		Index: index,
		Bytes: bytes,
		Limit: limit,
	}
}

// WithCause records the runtime failure behind the allocation error.
func (e *AllocationError) WithCause(cause error) *AllocationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *AllocationError) Error() string {
	msg := fmt.Sprintf("allocation failure [task=%d, bytes=%d, limit=%d]: %s",
		e.Index, e.Bytes, e.Limit, e.message)
	if e.cause != nil {
		return msg + ": " + e.cause.Error()
	}
	return msg
}

// Is matches any *AllocationError and ErrAllocationFailure.
func (e *AllocationError) Is(target error) bool {
	if _, ok := target.(*AllocationError); ok {
		return true
	}
	return target == ErrAllocationFailure
}

// -----------------------------------------------------------------------------
// Validation Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("must be positive")
//	err = err.WithField("scheduler.chunk_size").WithValue(0)
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if target == ErrInvalidInput {
		return true
	}
	return e.cause != nil && errors.Is(e.cause, target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsUserFacing returns true if the error message is safe to display to end
// users verbatim.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var benchErr BenchError
	if As(err, &benchErr) {
		return benchErr.IsUserFacing()
	}
	return false
}

// IsFatal returns true for failures that invalidate a run: compute and
// allocation failures.
func IsFatal(err error) bool {
	return Is(err, ErrComputeFailure) || Is(err, ErrAllocationFailure)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement BenchError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}
	var benchErr BenchError
	if As(err, &benchErr) {
		return benchErr.Severity()
	}
	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to load configuration")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "worker %d failed", worker)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
