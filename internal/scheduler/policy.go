package scheduler

import (
	"fmt"
	"sync/atomic"
)

// DefaultChunkSize is the number of indices a dynamic worker claims at once.
const DefaultChunkSize = 5

// Chunk is the half-open index range [Start, End).
type Chunk struct {
	Start int
	End   int
}

// Len returns the number of indices in the chunk.
func (c Chunk) Len() int { return c.End - c.Start }

// Claimer hands out chunks for one run. Claim is safe for concurrent use;
// it returns false once the worker has nothing left to do.
type Claimer interface {
	Claim(worker int) (Chunk, bool)
}

// Policy creates the per-run claim state for n tasks and the given number
// of workers.
type Policy interface {
	Name() string
	Begin(n, workers int) Claimer
}

// Cursor is the shared state of a dynamic run: the next unclaimed index
// and the chunk size. It is created per run and never shared between runs.
type Cursor struct {
	next atomic.Int64
	n    int64
	k    int64
}

// NewCursor creates a cursor over [0, n) with chunk size k (minimum 1).
func NewCursor(n, k int) *Cursor {
	return &Cursor{n: int64(n), k: int64(max(k, 1))}
}

// Claim atomically reserves the next chunk. The cursor may run past n;
// any claim starting at or beyond n reports exhaustion.
func (c *Cursor) Claim(int) (Chunk, bool) {
	start := c.next.Add(c.k) - c.k
	if start >= c.n {
		return Chunk{}, false
	}
	return Chunk{Start: int(start), End: int(min(start+c.k, c.n))}, true
}

// Remaining returns how many indices have not been claimed yet.
func (c *Cursor) Remaining() int {
	return int(max(c.n-c.next.Load(), 0))
}

// Dynamic is the chunked self-scheduling policy.
type Dynamic struct {
	ChunkSize int
}

// Name implements Policy.
func (Dynamic) Name() string { return "dynamic" }

// Begin implements Policy.
func (d Dynamic) Begin(n, _ int) Claimer { return NewCursor(n, d.ChunkSize) }

// Static splits [0, n) into one contiguous block per worker up front.
// Block sizes differ by at most one.
type Static struct{}

// Name implements Policy.
func (Static) Name() string { return "static" }

// Begin implements Policy.
func (Static) Begin(n, workers int) Claimer {
	workers = max(workers, 1)
	return &staticClaimer{n: n, workers: workers, taken: make([]atomic.Bool, workers)}
}

type staticClaimer struct {
	n       int
	workers int
	taken   []atomic.Bool
}

func (s *staticClaimer) Claim(worker int) (Chunk, bool) {
	if worker < 0 || worker >= s.workers || s.taken[worker].Swap(true) {
		return Chunk{}, false
	}
	c := Chunk{Start: worker * s.n / s.workers, End: (worker + 1) * s.n / s.workers}
	if c.Len() == 0 {
		return Chunk{}, false
	}
	return c, true
}

// Guided hands out chunks proportional to the remaining work, never
// smaller than MinChunk except for the final tail.
type Guided struct {
	MinChunk int
}

// Name implements Policy.
func (Guided) Name() string { return "guided" }

// Begin implements Policy.
func (g Guided) Begin(n, workers int) Claimer {
	return &guidedClaimer{n: int64(n), k: int64(max(g.MinChunk, 1)), workers: int64(max(workers, 1))}
}

type guidedClaimer struct {
	next    atomic.Int64
	n       int64
	k       int64
	workers int64
}

func (g *guidedClaimer) Claim(int) (Chunk, bool) {
	for {
		start := g.next.Load()
		if start >= g.n {
			return Chunk{}, false
		}
		rem := g.n - start
		size := max(g.k, (rem+2*g.workers-1)/(2*g.workers))
		end := min(start+size, g.n)
		if g.next.CompareAndSwap(start, end) {
			return Chunk{Start: int(start), End: int(end)}, true
		}
	}
}

// ValidPolicies lists the names accepted by ParsePolicy.
func ValidPolicies() []string {
	return []string{"dynamic", "static", "guided"}
}

// ParsePolicy returns the policy called name. k is the dynamic chunk size
// and the guided minimum chunk.
func ParsePolicy(name string, k int) (Policy, error) {
	if k < 1 {
		return nil, fmt.Errorf("chunk size must be at least 1, got %d", k)
	}
	switch name {
	case "dynamic", "":
		return Dynamic{ChunkSize: k}, nil
	case "static":
		return Static{}, nil
	case "guided":
		return Guided{MinChunk: k}, nil
	default:
		return nil, fmt.Errorf("unknown scheduling policy %q", name)
	}
}
