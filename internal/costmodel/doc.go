// Package costmodel generates the task sequence for a benchmark run and
// decides how large each task's eigenproblem is.
//
// Two cost regimes are supported:
//
//   - [Even]: every task has the base problem size.
//   - [Uneven]: the problem size grows by one every [StepWidth] tasks, so the
//     sequence forms a non-decreasing staircase.
//
// Because eigendecomposition cost grows roughly with the cube of the
// problem size, the uneven regime makes late tasks far more expensive than
// early ones. A schedule that splits the index range into equal contiguous
// blocks up front leaves most workers idle while the last block finishes.
//
// # Usage
//
//	regime, err := costmodel.ParseRegime("U")
//	if err != nil {
//	    return err
//	}
//	tasks := costmodel.Generate(100, 64, regime)
//	for _, t := range tasks {
//	    fmt.Println(t.Index, t.ProblemSize)
//	}
package costmodel
