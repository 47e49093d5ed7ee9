package eigen

import (
	"slices"
	"time"
)

// Synthetic is a stand-in solver whose running time is Unit×n³. It
// returns the diagonal of a, sorted ascending, as its "eigenvalues", which
// keeps results deterministic for a given input.
type Synthetic struct {
	Unit time.Duration
}

// Name implements Solver.
func (s Synthetic) Name() string { return "synthetic" }

// WorkspaceLen implements Solver. It mirrors DSYEV's minimum of 3n-1.
func (s Synthetic) WorkspaceLen(n int) int {
	return max(1, 3*n-1)
}

// Decompose implements Solver.
func (s Synthetic) Decompose(job Job, n int, a, w, work []float64) Status {
	if n < 0 || len(a) < n*n || len(w) < n || len(work) < s.WorkspaceLen(n) {
		return StatusIllegalArgument
	}
	if s.Unit > 0 {
		time.Sleep(s.Unit * time.Duration(n*n*n))
	}
	for i := 0; i < n; i++ {
		w[i] = a[i*n+i]
	}
	slices.Sort(w[:n])
	return StatusOK
}
