package affinity

import (
	"runtime"
	"testing"
)

func TestCPUFor(t *testing.T) {
	tests := []struct {
		name    string
		worker  int
		allowed []int
		want    int
	}{
		{"first", 0, []int{2, 4, 6}, 2},
		{"wraps", 4, []int{2, 4, 6}, 4},
		{"single", 9, []int{3}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CPUFor(tt.worker, tt.allowed); got != tt.want {
				t.Errorf("CPUFor(%d, %v) = %d, want %d", tt.worker, tt.allowed, got, tt.want)
			}
		})
	}

	if got := CPUFor(runtime.NumCPU()+1, nil); got != 1%runtime.NumCPU() {
		t.Errorf("CPUFor fallback = %d", got)
	}
}

func TestPin_NegativeCPU(t *testing.T) {
	if err := Pin(-1); err == nil {
		t.Error("Pin(-1) should fail")
	}
}
