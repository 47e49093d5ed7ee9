// Package executor runs one eigenvalue task end to end: size the
// workspace, acquire the task's buffers, fill the matrix, decompose it,
// and extract the largest eigenvalue.
//
// An Executor belongs to exactly one worker. Its buffers are never
// visible to another goroutine, which is what lets the distribution phase
// run without locks on the compute path. Buffers are released on every
// exit path, including compute failures.
//
// # Buffer Lifecycle
//
// By default each task allocates fresh buffers sized to its order and
// drops them on release. WithBufferReuse switches to a per-executor arena
// that grows to the largest order seen and is handed back out for the
// next task; ownership stays exclusive because the arena is never shared.
//
// # Failures
//
//   - A non-zero solver status becomes an errors.ComputeError.
//   - Buffers larger than the configured budget become an
//     errors.AllocationError before anything is allocated.
package executor
