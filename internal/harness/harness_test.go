package harness

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Iron-Ham/eigenbench/internal/costmodel"
	"github.com/Iron-Ham/eigenbench/internal/eigen"
	benchErrors "github.com/Iron-Ham/eigenbench/internal/errors"
	"github.com/Iron-Ham/eigenbench/internal/event"
	"github.com/Iron-Ham/eigenbench/internal/executor"
	"github.com/Iron-Ham/eigenbench/internal/logging"
	"github.com/Iron-Ham/eigenbench/internal/results"
	"github.com/Iron-Ham/eigenbench/internal/scheduler"
	"github.com/Iron-Ham/eigenbench/internal/testutil"
)

func TestRun_EndToEndEven(t *testing.T) {
	eigen.UseSerialBLAS()
	res, err := Run(context.Background(), Options{
		Dimension:  8,
		Iterations: 20,
		Regime:     costmodel.Even,
		Workers:    4,
		Trace:      true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Slots.Len() != 20 || len(res.Slots.Missing()) != 0 {
		t.Errorf("slots: len=%d missing=%v", res.Slots.Len(), res.Slots.Missing())
	}
	if res.Elapsed <= 0 {
		t.Errorf("Elapsed = %v, want > 0", res.Elapsed)
	}
	if res.RunID == "" || res.Solver != "gonum" || res.Policy != "dynamic" {
		t.Errorf("unexpected result metadata: %+v", res)
	}
	for _, d := range res.Tasks {
		if d.ProblemSize != 8 {
			t.Fatalf("even regime produced size %d", d.ProblemSize)
		}
	}
	if res.Buffers.Live() != 0 || res.Buffers.Acquired() != 20 {
		t.Errorf("buffers: live=%d acquired=%d", res.Buffers.Live(), res.Buffers.Acquired())
	}
}

func TestRun_Deterministic(t *testing.T) {
	eigen.UseSerialBLAS()
	opts := Options{Dimension: 6, Iterations: 30, Regime: costmodel.Uneven, Workers: 3}

	first, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	opts.Workers = 5
	opts.PoolBuffers = true
	opts.Policy = scheduler.Guided{MinChunk: 2}
	second, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range first.Slots.Values() {
		if math.Float64bits(v) != math.Float64bits(second.Slots.Values()[i]) {
			t.Errorf("slot %d differs: %v vs %v", i, v, second.Slots.Values()[i])
		}
	}
}

func TestRun_EverySlotOnce(t *testing.T) {
	for _, regime := range []costmodel.Regime{costmodel.Even, costmodel.Uneven} {
		for _, n := range []int{1, 7, 64} {
			solver := &testutil.Counting{Solver: eigen.Synthetic{}}
			res, err := Run(context.Background(), Options{
				Dimension: 4, Iterations: n, Regime: regime, Workers: 3,
				Solver: solver,
			})
			if err != nil {
				t.Fatalf("%v N=%d: %v", regime, n, err)
			}
			if res.Slots.Count() != n {
				t.Errorf("%v N=%d: %d slots written", regime, n, res.Slots.Count())
			}
			if solver.Total() != n {
				t.Errorf("%v N=%d: %d decompositions", regime, n, solver.Total())
			}
		}
	}
}

func TestRun_ComputeFailureAborts(t *testing.T) {
	solver := &testutil.FailAt{Solver: eigen.Synthetic{}, Index: 9, Status: 4}
	res, err := Run(context.Background(), Options{
		Dimension: 5, Iterations: 200, Regime: costmodel.Uneven, Workers: 1,
		Solver: solver,
	})
	var ce *benchErrors.ComputeError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *ComputeError", err)
	}
	if ce.Index != 9 || ce.Status != 4 {
		t.Errorf("ComputeError = %+v, want index 9 status 4", ce)
	}
	if res == nil {
		t.Fatal("partial result should be returned")
	}
	if res.Buffers.Live() != 0 {
		t.Errorf("buffers leaked on failure path: %d live", res.Buffers.Live())
	}
	if got := solver.Calls(); got != 10 {
		t.Errorf("solver called %d times, want 10 (no work after the failure)", got)
	}
}

func TestRun_AllocationFailure(t *testing.T) {
	_, err := Run(context.Background(), Options{
		Dimension: 50, Iterations: 4, Regime: costmodel.Even, Workers: 2,
		Solver: eigen.Synthetic{}, MaxTaskBytes: 1024,
	})
	if !errors.Is(err, benchErrors.ErrAllocationFailure) {
		t.Errorf("err = %v, want allocation failure", err)
	}
}

func TestRun_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"zero dimension", Options{Dimension: 0, Iterations: 1, Regime: costmodel.Even, Workers: 1}},
		{"negative iterations", Options{Dimension: 1, Iterations: -1, Regime: costmodel.Even, Workers: 1}},
		{"bad regime", Options{Dimension: 1, Iterations: 1, Regime: 'X', Workers: 1}},
		{"no workers", Options{Dimension: 1, Iterations: 1, Regime: costmodel.Even}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Run(context.Background(), tt.opts); !errors.Is(err, benchErrors.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestRun_PublishesEvents(t *testing.T) {
	bus := event.NewBus(nil)
	var mu sync.Mutex
	counts := map[string]int{}
	bus.SubscribeAll(func(e event.Event) {
		mu.Lock()
		counts[e.EventType()]++
		mu.Unlock()
	})

	_, err := Run(context.Background(), Options{
		Dimension: 3, Iterations: 12, Regime: costmodel.Even, Workers: 2,
		Solver: eigen.Synthetic{}, Bus: bus,
	})
	if err != nil {
		t.Fatal(err)
	}
	if counts[event.TypeRunStarted] != 1 || counts[event.TypeRunCompleted] != 1 {
		t.Errorf("run events = %v", counts)
	}
	if counts[event.TypeTaskCompleted] != 12 {
		t.Errorf("task events = %d, want 12", counts[event.TypeTaskCompleted])
	}
	if counts[event.TypeChunkClaimed] != 3 {
		t.Errorf("chunk events = %d, want 3", counts[event.TypeChunkClaimed])
	}
}

// With cost-proportional sleeps under the uneven regime, dynamic chunking
// keeps per-worker task counts within one chunk's worth of each other.
func TestRun_UnevenBoundedImbalance(t *testing.T) {
	testutil.SkipIfShort(t)
	const k = 5
	res, err := Run(context.Background(), Options{
		Dimension: 4, Iterations: 100, Regime: costmodel.Uneven, Workers: 4,
		Policy: scheduler.Dynamic{ChunkSize: k},
		Solver: eigen.Synthetic{Unit: 2 * time.Microsecond},
		Trace:  true,
	})
	if err != nil {
		t.Fatal(err)
	}

	stats := res.Trace.Workers(4)
	minTasks, maxTasks := math.MaxInt, 0
	for _, s := range stats {
		minTasks = min(minTasks, s.Tasks)
		maxTasks = max(maxTasks, s.Tasks)
	}
	if maxTasks-minTasks > k {
		t.Errorf("task counts range %d..%d across workers: %+v", minTasks, maxTasks, stats)
	}
}

func TestWorkerTask_CancellationIsNotAFailure(t *testing.T) {
	bus := event.NewBus(nil)
	var failed atomic.Int32
	bus.Subscribe(event.TypeTaskFailed, func(event.Event) { failed.Add(1) })

	opts := Options{Solver: testutil.StatusSolver{Status: 2}, Bus: bus}
	res := &Result{
		Tasks:   costmodel.Generate(2, 3, costmodel.Even),
		Slots:   results.NewSlots(2),
		Buffers: &executor.Tracker{},
	}
	task := workerTask(&opts, res, logging.NopLogger(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := task(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled task err = %v, want context.Canceled", err)
	}
	if got := failed.Load(); got != 0 {
		t.Errorf("cancelled task published %d failure events, want 0", got)
	}

	if err := task(context.Background(), 1); !errors.Is(err, benchErrors.ErrComputeFailure) {
		t.Fatalf("err = %v, want compute failure", err)
	}
	if got := failed.Load(); got != 1 {
		t.Errorf("compute failure published %d failure events, want 1", got)
	}
}
