package eigen

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/lapack"
	lapackgonum "gonum.org/v1/gonum/lapack/gonum"
)

// Gonum solves with gonum's pure-Go DSYEV.
//
// gonum is row-major, so its lower triangle is the column-major upper
// triangle that a Fortran DSYEV('U') call reads from the same array.
type Gonum struct {
	impl lapackgonum.Implementation
}

// NewGonum returns a DSYEV-backed solver.
func NewGonum() *Gonum {
	return &Gonum{}
}

// Name implements Solver.
func (g *Gonum) Name() string { return "gonum" }

// WorkspaceLen implements Solver using DSYEV's lwork = -1 query.
func (g *Gonum) WorkspaceLen(n int) int {
	if n <= 0 {
		return 1
	}
	var opt [1]float64
	g.impl.Dsyev(lapack.EVCompute, blas.Lower, n, nil, n, nil, opt[:], -1)
	return max(int(opt[0]), 3*n-1, 1)
}

// Decompose implements Solver. gonum panics on malformed arguments; those
// panics are reported as StatusIllegalArgument.
func (g *Gonum) Decompose(job Job, n int, a, w, work []float64) (status Status) {
	if n == 0 {
		return StatusOK
	}
	jobz := lapack.EVNone
	if job == JobVectors {
		jobz = lapack.EVCompute
	}

	defer func() {
		if r := recover(); r != nil {
			status = StatusIllegalArgument
		}
	}()

	if !g.impl.Dsyev(jobz, blas.Lower, n, a, n, w, work, len(work)) {
		return StatusNoConvergence
	}
	return StatusOK
}
