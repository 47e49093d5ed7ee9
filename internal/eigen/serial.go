package eigen

import (
	"sync"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	blasgonum "gonum.org/v1/gonum/blas/gonum"
)

// dgemmTile bounds each Dgemm sub-product. gonum runs a product serially
// while it spans fewer than four 64×64 blocks of C.
const dgemmTile = 64

var serialOnce sync.Once

// UseSerialBLAS installs SerialBLAS as the process-wide float64 BLAS used
// by gonum's LAPACK. It is safe to call more than once.
func UseSerialBLAS() {
	serialOnce.Do(func() {
		blas64.Use(SerialBLAS{})
	})
}

// SerialBLAS is gonum's BLAS with Dgemm confined to the calling goroutine.
type SerialBLAS struct {
	blasgonum.Implementation
}

// Dgemm computes C = alpha*op(A)*op(B) + beta*C one 64×64 tile of C at a
// time, each tile small enough that gonum never forks workers for it.
func (s SerialBLAS) Dgemm(tA, tB blas.Transpose, m, n, k int, alpha float64, a []float64, lda int, b []float64, ldb int, beta float64, c []float64, ldc int) {
	if m <= dgemmTile && n <= dgemmTile {
		s.Implementation.Dgemm(tA, tB, m, n, k, alpha, a, lda, b, ldb, beta, c, ldc)
		return
	}
	for i := 0; i < m; i += dgemmTile {
		mi := min(dgemmTile, m-i)
		as := a[i:]
		if tA == blas.NoTrans {
			as = a[i*lda:]
		}
		for j := 0; j < n; j += dgemmTile {
			nj := min(dgemmTile, n-j)
			bs := b[j*ldb:]
			if tB == blas.NoTrans {
				bs = b[j:]
			}
			s.Implementation.Dgemm(tA, tB, mi, nj, k, alpha, as, lda, bs, ldb, beta, c[i*ldc+j:], ldc)
		}
	}
}
