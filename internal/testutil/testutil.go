// Package testutil provides eigensolver doubles and skips shared by
// eigenbench tests.
package testutil

import (
	"sync/atomic"
	"testing"

	"github.com/Iron-Ham/eigenbench/internal/eigen"
)

// StatusSolver fails every decomposition with a fixed status.
type StatusSolver struct {
	Status eigen.Status
}

func (s StatusSolver) Name() string           { return "failing" }
func (s StatusSolver) WorkspaceLen(n int) int { return max(1, 3*n-1) }

func (s StatusSolver) Decompose(eigen.Job, int, []float64, []float64, []float64) eigen.Status {
	return s.Status
}

// FailAt wraps a solver and fails the decomposition of task Index with
// Status. The task is recognised by its fill: a[0] = (j%17)/(2+j) is
// distinct for every j in [1, 17). Index 0 never fails.
type FailAt struct {
	eigen.Solver
	Index  int
	Status eigen.Status

	calls atomic.Int32
}

func (f *FailAt) Decompose(job eigen.Job, n int, a, w, work []float64) eigen.Status {
	f.calls.Add(1)
	if f.Index != 0 && a[0] == float64(f.Index%17)/(2.0+float64(f.Index)) {
		return f.Status
	}
	return f.Solver.Decompose(job, n, a, w, work)
}

// Calls returns how many decompositions were attempted.
func (f *FailAt) Calls() int {
	return int(f.calls.Load())
}

// Counting wraps a solver and counts decompositions.
type Counting struct {
	eigen.Solver

	total atomic.Int64
}

func (c *Counting) Decompose(job eigen.Job, n int, a, w, work []float64) eigen.Status {
	c.total.Add(1)
	return c.Solver.Decompose(job, n, a, w, work)
}

// Total returns how many decompositions ran.
func (c *Counting) Total() int {
	return int(c.total.Load())
}

// SkipIfShort skips slow tests under -short.
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping in -short mode")
	}
}
