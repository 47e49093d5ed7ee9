// Package affinity binds worker threads to CPUs. Callers must hold the
// thread with runtime.LockOSThread for the binding to mean anything.
package affinity

import (
	"errors"
	"runtime"
)

// ErrUnsupported is returned on platforms without thread affinity control.
var ErrUnsupported = errors.New("affinity: not supported on this platform")

// Pin binds the calling OS thread to cpu.
func Pin(cpu int) error {
	if cpu < 0 {
		return errors.New("affinity: negative cpu id")
	}
	return pinPlatform(cpu)
}

// Allowed returns the CPUs the calling thread may currently run on, in
// ascending order.
func Allowed() ([]int, error) {
	return allowedPlatform()
}

// Restore reinstates a set captured with Allowed on the calling thread.
func Restore(cpus []int) error {
	if len(cpus) == 0 {
		return errors.New("affinity: empty cpu set")
	}
	return restorePlatform(cpus)
}

// CPUFor maps worker w onto one of the allowed CPUs round-robin. With no
// allowed set it falls back to w mod runtime.NumCPU().
func CPUFor(worker int, allowed []int) int {
	if len(allowed) == 0 {
		return worker % runtime.NumCPU()
	}
	return allowed[worker%len(allowed)]
}
