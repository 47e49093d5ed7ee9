package scheduler

import (
	"slices"
	"sync"
	"time"
)

// Claim records one chunk handed to a worker.
type Claim struct {
	Worker int
	Start  int
	End    int
}

// WorkerStats summarizes what one worker did during a run.
type WorkerStats struct {
	Worker int
	Chunks int
	Tasks  int
	Busy   time.Duration
}

// Trace records every claim of a run. It is safe for concurrent use.
type Trace struct {
	mu      sync.Mutex
	claims  []Claim
	workers map[int]*WorkerStats
}

// NewTrace creates an empty Trace.
func NewTrace() *Trace {
	return &Trace{workers: make(map[int]*WorkerStats)}
}

func (t *Trace) stats(worker int) *WorkerStats {
	s, ok := t.workers[worker]
	if !ok {
		s = &WorkerStats{Worker: worker}
		t.workers[worker] = s
	}
	return s
}

func (t *Trace) record(worker int, c Chunk, busy time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.claims = append(t.claims, Claim{Worker: worker, Start: c.Start, End: c.End})
	s := t.stats(worker)
	s.Chunks++
	s.Tasks += c.Len()
	s.Busy += busy
}

// Claims returns a copy of all claims ordered by start index.
func (t *Trace) Claims() []Claim {
	t.mu.Lock()
	out := slices.Clone(t.claims)
	t.mu.Unlock()
	slices.SortFunc(out, func(a, b Claim) int { return a.Start - b.Start })
	return out
}

// Workers returns per-worker totals ordered by worker number. Workers
// that never claimed a chunk are included with zero counts.
func (t *Trace) Workers(n int) []WorkerStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]WorkerStats, 0, max(n, len(t.workers)))
	for w := 0; w < n; w++ {
		if s, ok := t.workers[w]; ok {
			out = append(out, *s)
		} else {
			out = append(out, WorkerStats{Worker: w})
		}
	}
	return out
}

// Owner returns the worker that ran index i, or -1.
func (t *Trace) Owner(i int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.claims {
		if i >= c.Start && i < c.End {
			return c.Worker
		}
	}
	return -1
}
