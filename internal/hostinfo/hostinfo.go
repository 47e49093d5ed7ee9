// Package hostinfo snapshots the host's CPU and memory capacity. The
// snapshot drives the default worker count and the per-task memory budget.
package hostinfo

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Probes, replaceable in tests.
var (
	cpuCounts     = cpu.Counts
	virtualMemory = mem.VirtualMemory
)

// Snapshot is a point-in-time view of host capacity.
type Snapshot struct {
	LogicalCPUs     int    `json:"logical_cpus" yaml:"logical_cpus"`
	PhysicalCPUs    int    `json:"physical_cpus" yaml:"physical_cpus"`
	TotalMemory     uint64 `json:"total_memory" yaml:"total_memory"`
	AvailableMemory uint64 `json:"available_memory" yaml:"available_memory"`
}

// Collect probes the host. Probe failures degrade to zero fields rather
// than errors, except when nothing at all could be learned.
func Collect() (Snapshot, error) {
	var s Snapshot
	var errs []error

	if n, err := cpuCounts(true); err == nil {
		s.LogicalCPUs = n
	} else {
		errs = append(errs, err)
	}
	if n, err := cpuCounts(false); err == nil {
		s.PhysicalCPUs = n
	} else {
		errs = append(errs, err)
	}
	if vm, err := virtualMemory(); err == nil && vm != nil {
		s.TotalMemory = vm.Total
		s.AvailableMemory = vm.Available
	} else if err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 3 {
		return s, fmt.Errorf("hostinfo: no probe succeeded: %w", errs[0])
	}
	return s, nil
}

// DefaultWorkers returns the worker count used when none is configured:
// one per logical CPU.
func (s Snapshot) DefaultWorkers() int {
	if s.LogicalCPUs > 0 {
		return s.LogicalCPUs
	}
	return runtime.NumCPU()
}

// TaskBudget returns the byte budget for a single task's buffers when
// workers tasks run concurrently. Zero means unknown, which disables the
// check.
func (s Snapshot) TaskBudget(workers int) int64 {
	if s.AvailableMemory == 0 || workers < 1 {
		return 0
	}
	return int64(s.AvailableMemory / uint64(workers))
}

// String renders a one-line description for logs.
func (s Snapshot) String() string {
	return fmt.Sprintf("cpus=%d/%d mem=%d/%dMiB",
		s.PhysicalCPUs, s.LogicalCPUs, s.AvailableMemory>>20, s.TotalMemory>>20)
}
