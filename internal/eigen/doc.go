// Package eigen is the compute primitive behind every benchmark task: a
// dense symmetric eigensolver seen through a narrow [Solver] interface.
//
// Two implementations are provided:
//
//   - [Gonum] calls LAPACK's DSYEV as implemented by gonum, including the
//     workspace-size dry run.
//   - [Synthetic] sleeps for a time proportional to the cube of the order and
//     returns the sorted diagonal. It lets the scheduler be studied without
//     paying for real decompositions.
//
// # Serial execution
//
// Parallelism belongs to the task scheduler only. gonum's Dgemm spreads
// large products across GOMAXPROCS goroutines, which would nest a second
// level of parallelism inside every task and oversubscribe the machine.
// Call [UseSerialBLAS] once at startup, before any task runs, to install a
// BLAS that keeps every Dgemm on the calling goroutine.
package eigen
