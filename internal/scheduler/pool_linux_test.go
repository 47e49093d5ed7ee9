//go:build linux

package scheduler

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/Iron-Ham/eigenbench/internal/affinity"
)

// maskRecorder collects the affinity mask of every worker thread.
func maskRecorder(mu *sync.Mutex, masks *[][]int) func(int) TaskFunc {
	return func(int) TaskFunc {
		return func(context.Context, int) error {
			cpus, err := affinity.Allowed()
			if err != nil {
				return err
			}
			mu.Lock()
			*masks = append(*masks, cpus)
			mu.Unlock()
			return nil
		}
	}
}

func TestPool_PinnedThreadsAreRestored(t *testing.T) {
	original, err := affinity.Allowed()
	if err != nil {
		t.Skipf("affinity unavailable: %v", err)
	}
	const workers = 4

	var mu sync.Mutex
	var pinned [][]int
	p := NewPool(WithWorkers(workers), WithPinning(true), WithPolicy(Dynamic{ChunkSize: 1}))
	if err := p.Run(context.Background(), 64, maskRecorder(&mu, &pinned)); err != nil {
		t.Fatalf("pinned run: %v", err)
	}
	for _, mask := range pinned {
		if len(mask) != 1 {
			t.Fatalf("pinned worker ran with mask %v, want a single cpu", mask)
		}
	}

	// Later unpinned runs reuse the same OS threads and must see the full
	// mask again.
	for range 5 {
		var unpinned [][]int
		p := NewPool(WithWorkers(workers), WithPolicy(Dynamic{ChunkSize: 1}))
		if err := p.Run(context.Background(), 64, maskRecorder(&mu, &unpinned)); err != nil {
			t.Fatalf("unpinned run: %v", err)
		}
		for _, mask := range unpinned {
			if !slices.Equal(mask, original) {
				t.Fatalf("unpinned worker ran with mask %v, want %v", mask, original)
			}
		}
	}
}
