package hostinfo

import (
	"errors"
	"runtime"
	"testing"

	"github.com/shirou/gopsutil/v3/mem"
)

func stubProbes(t *testing.T, logical, physical int, vm *mem.VirtualMemoryStat, err error) {
	t.Helper()
	origCPU, origMem := cpuCounts, virtualMemory
	t.Cleanup(func() { cpuCounts, virtualMemory = origCPU, origMem })

	cpuCounts = func(l bool) (int, error) {
		if err != nil {
			return 0, err
		}
		if l {
			return logical, nil
		}
		return physical, nil
	}
	virtualMemory = func() (*mem.VirtualMemoryStat, error) {
		if err != nil {
			return nil, err
		}
		return vm, nil
	}
}

func TestCollect(t *testing.T) {
	stubProbes(t, 16, 8, &mem.VirtualMemoryStat{Total: 64 << 30, Available: 32 << 30}, nil)

	s, err := Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	want := Snapshot{LogicalCPUs: 16, PhysicalCPUs: 8, TotalMemory: 64 << 30, AvailableMemory: 32 << 30}
	if s != want {
		t.Errorf("Collect() = %+v, want %+v", s, want)
	}
	if s.DefaultWorkers() != 16 {
		t.Errorf("DefaultWorkers() = %d", s.DefaultWorkers())
	}
	if got := s.TaskBudget(4); got != 8<<30 {
		t.Errorf("TaskBudget(4) = %d", got)
	}
}

func TestCollect_AllProbesFail(t *testing.T) {
	stubProbes(t, 0, 0, nil, errors.New("no /proc"))

	s, err := Collect()
	if err == nil {
		t.Fatal("Collect should fail when every probe fails")
	}
	if s.DefaultWorkers() != runtime.NumCPU() {
		t.Errorf("DefaultWorkers() fallback = %d", s.DefaultWorkers())
	}
	if s.TaskBudget(4) != 0 {
		t.Error("unknown memory should disable the budget")
	}
}

func TestTaskBudget_ZeroWorkers(t *testing.T) {
	s := Snapshot{AvailableMemory: 1 << 30}
	if s.TaskBudget(0) != 0 {
		t.Error("TaskBudget(0) should be 0")
	}
}

func TestCollect_RealHost(t *testing.T) {
	s, err := Collect()
	if err != nil {
		t.Skipf("host probes unavailable: %v", err)
	}
	if s.DefaultWorkers() < 1 {
		t.Errorf("DefaultWorkers() = %d", s.DefaultWorkers())
	}
	if s.String() == "" {
		t.Error("String() should not be empty")
	}
}
