package executor

import (
	"fmt"
	"sync/atomic"

	benchErrors "github.com/Iron-Ham/eigenbench/internal/errors"
)

const float64Bytes = 8

// TaskBuffers holds the working storage for one order-m task.
type TaskBuffers struct {
	Order int
	A     []float64 // m×m, row-major, leading dimension m
	W     []float64 // m eigenvalues
	Work  []float64 // solver scratch
}

// Bytes returns the footprint of the buffers for an order-m problem with
// lwork scratch elements.
func Bytes(m, lwork int) int64 {
	return float64Bytes * (int64(m)*int64(m) + int64(m) + int64(lwork))
}

// Tracker counts buffers that are currently held. It is shared across
// executors and is safe for concurrent use.
type Tracker struct {
	live     atomic.Int64
	liveByte atomic.Int64
	peakByte atomic.Int64
	acquired atomic.Int64
}

// Live returns the number of buffer sets currently held.
func (t *Tracker) Live() int64 { return t.live.Load() }

// LiveBytes returns the bytes currently held.
func (t *Tracker) LiveBytes() int64 { return t.liveByte.Load() }

// PeakBytes returns the high-water mark of LiveBytes.
func (t *Tracker) PeakBytes() int64 { return t.peakByte.Load() }

// Acquired returns the total number of acquisitions.
func (t *Tracker) Acquired() int64 { return t.acquired.Load() }

func (t *Tracker) add(bytes int64) {
	if t == nil {
		return
	}
	t.acquired.Add(1)
	t.live.Add(1)
	cur := t.liveByte.Add(bytes)
	for {
		peak := t.peakByte.Load()
		if cur <= peak || t.peakByte.CompareAndSwap(peak, cur) {
			return
		}
	}
}

func (t *Tracker) remove(bytes int64) {
	if t == nil {
		return
	}
	t.live.Add(-1)
	t.liveByte.Add(-bytes)
}

// source hands out TaskBuffers. Implementations are owned by one worker.
type source interface {
	acquire(m, lwork int) *TaskBuffers
	release(b *TaskBuffers)
}

// freshSource allocates per task and lets the collector reclaim on release.
type freshSource struct{}

func (freshSource) acquire(m, lwork int) *TaskBuffers {
	return &TaskBuffers{
		Order: m,
		A:     make([]float64, m*m),
		W:     make([]float64, m),
		Work:  make([]float64, lwork),
	}
}

func (freshSource) release(b *TaskBuffers) {
	b.A, b.W, b.Work = nil, nil, nil
}

// arena keeps one growing buffer set for its worker.
type arena struct {
	a, w, work []float64
	held       bool
}

func grow(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	return buf[:n]
}

func (r *arena) acquire(m, lwork int) *TaskBuffers {
	if r.held {
		panic("executor: arena acquired twice without release")
	}
	r.a = grow(r.a, m*m)
	r.w = grow(r.w, m)
	r.work = grow(r.work, lwork)
	r.held = true
	return &TaskBuffers{Order: m, A: r.a, W: r.w, Work: r.work}
}

func (r *arena) release(b *TaskBuffers) {
	r.held = false
	b.A, b.W, b.Work = nil, nil, nil
}

// acquire sizes, budgets, and obtains the buffers for one task. The
// returned release func must be deferred by the caller.
func (e *Executor) acquire(index, m int) (b *TaskBuffers, release func(), err error) {
	lwork := e.solver.WorkspaceLen(m)
	bytes := Bytes(m, lwork)
	if e.maxTaskBytes > 0 && bytes > e.maxTaskBytes {
		return nil, nil, benchErrors.NewAllocationError(index, bytes, e.maxTaskBytes)
	}

	defer func() {
		if r := recover(); r != nil {
			b, release = nil, nil
			err = benchErrors.NewAllocationError(index, bytes, e.maxTaskBytes).
				WithCause(fmt.Errorf("%v", r))
		}
	}()

	b = e.src.acquire(m, lwork)
	e.tracker.add(bytes)
	return b, func() {
		e.src.release(b)
		e.tracker.remove(bytes)
	}, nil
}
