// Package scheduler distributes task indices [0, N) across a fixed pool of
// worker goroutines.
//
// The default policy is dynamic chunked self-scheduling: every worker pulls
// the next K consecutive indices from a shared atomic cursor, runs them in
// order, and comes back for more until the cursor passes N. Fast workers
// therefore absorb the work slow workers have not reached, which keeps the
// wall-clock time close to sum(cost)/W even when task costs are skewed.
//
// Static and guided policies are provided for comparison.
//
// # Guarantees
//
//   - Every index in [0, N) is handed out exactly once.
//   - Claimed ranges never overlap.
//   - Each worker runs on a locked OS thread, optionally pinned to a CPU.
//   - The first task error cancels the run: workers stop claiming new
//     chunks and Run returns that error after all workers have joined.
package scheduler
