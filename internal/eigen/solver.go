package eigen

import "fmt"

// Job selects what a decomposition computes.
type Job byte

const (
	// JobValues computes eigenvalues only.
	JobValues Job = 'N'

	// JobVectors computes eigenvalues and eigenvectors.
	JobVectors Job = 'V'
)

// Status is the completion code of a decomposition. Zero means success,
// following the LAPACK info convention.
type Status int

const (
	// StatusOK reports a successful decomposition.
	StatusOK Status = 0

	// StatusIllegalArgument reports a malformed call (LAPACK info < 0).
	StatusIllegalArgument Status = -1

	// StatusNoConvergence reports that the QL/QR iteration did not converge
	// (LAPACK info > 0).
	StatusNoConvergence Status = 1
)

func (s Status) String() string {
	switch {
	case s == StatusOK:
		return "ok"
	case s < 0:
		return fmt.Sprintf("illegal argument (%d)", int(s))
	default:
		return fmt.Sprintf("no convergence (%d)", int(s))
	}
}

// Solver computes the eigenvalues of a dense symmetric matrix.
//
// Matrices are n×n with leading dimension n. Only the elements a[r*n+c]
// with r >= c are referenced: the upper triangle of the column-major view.
type Solver interface {
	// Name identifies the implementation in logs and reports.
	Name() string

	// WorkspaceLen is the sizing-only query: it returns the scratch length
	// Decompose needs for an order-n problem without touching any matrix.
	WorkspaceLen(n int) int

	// Decompose overwrites w[:n] with the eigenvalues of a in ascending
	// order. a is destroyed; with JobVectors it holds the eigenvectors on
	// return. work must be at least WorkspaceLen(n) long.
	Decompose(job Job, n int, a, w, work []float64) Status
}
