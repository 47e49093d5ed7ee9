package costmodel

import (
	"errors"
	"fmt"
)

// StepWidth is the number of consecutive tasks that share a problem size
// under the uneven regime.
const StepWidth = 5

// ErrInvalidRegime is returned by ParseRegime for anything other than
// 'E' or 'U'.
var ErrInvalidRegime = errors.New("regime must be 'E' or 'U'")

// Regime selects how problem size varies across the task sequence.
type Regime byte

const (
	// Even gives every task the base problem size.
	Even Regime = 'E'

	// Uneven grows the problem size by one every StepWidth tasks.
	Uneven Regime = 'U'
)

// String returns the lower-case name of the regime.
func (r Regime) String() string {
	switch r {
	case Even:
		return "even"
	case Uneven:
		return "uneven"
	default:
		return fmt.Sprintf("regime(%q)", byte(r))
	}
}

// Valid reports whether r is one of the known regimes.
func (r Regime) Valid() bool {
	return r == Even || r == Uneven
}

// ParseRegime reads a regime from its command-line spelling. Only the first
// character is significant, so "U" and "Uneven" both select Uneven.
func ParseRegime(s string) (Regime, error) {
	if s == "" {
		return 0, ErrInvalidRegime
	}
	r := Regime(s[0])
	if !r.Valid() {
		return 0, fmt.Errorf("%w: got %q", ErrInvalidRegime, s)
	}
	return r, nil
}

// TaskDescriptor identifies one task and the order of its eigenproblem.
type TaskDescriptor struct {
	Index       int `json:"index" yaml:"index"`
	ProblemSize int `json:"problem_size" yaml:"problem_size"`
}

// SizeOf returns the problem size of the task at index under the given
// regime. Unknown regimes are treated as Even.
func SizeOf(index int, regime Regime, baseSize int) int {
	if regime == Uneven {
		return baseSize + index/StepWidth
	}
	return baseSize
}

// Generate returns the n task descriptors of a run, in index order.
func Generate(n, baseSize int, regime Regime) []TaskDescriptor {
	if n <= 0 {
		return nil
	}
	tasks := make([]TaskDescriptor, n)
	for i := range tasks {
		tasks[i] = TaskDescriptor{
			Index:       i,
			ProblemSize: SizeOf(i, regime, baseSize),
		}
	}
	return tasks
}

// Cost is the nominal relative cost of a task of the given problem size.
// Dense symmetric eigensolvers scale with the cube of the order.
func Cost(problemSize int) float64 {
	m := float64(problemSize)
	return m * m * m
}

// TotalCost sums Cost over a task sequence.
func TotalCost(tasks []TaskDescriptor) float64 {
	var total float64
	for _, t := range tasks {
		total += Cost(t.ProblemSize)
	}
	return total
}
