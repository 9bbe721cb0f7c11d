package bucket

import (
	"fmt"
	"math"
)

// feasibilityTol absorbs floating point noise when checking the sign of a
// candidate contribution.
const feasibilityTol = 1e-12

// Constrained distributes the amount to add without moving money between
// buckets: it minimizes ‖x − b‖² subject to sum(x) equal to the amount to
// add and x ≥ 0. An optimal split may not exist when some buckets are
// already over-funded; the solver then concentrates the new money on the
// most under-funded buckets.
//
// The quadratic program is solved with an active-set iteration: the equality
// constrained least-squares problem is solved in closed form on the free
// variables, and the most negative variable is clamped to its bound until
// the candidate is feasible.
type Constrained struct {
	// MaxIterations bounds the active-set loop. Zero selects a budget of
	// one clamp per bucket, which is sufficient for this problem shape.
	MaxIterations int
}

// Solve solves the bucket problem, returning ErrNonconvergence if no
// feasible solution is found within the iteration budget.
func (c Constrained) Solve(system *System) (*Solution, error) {
	b := bVector(system)
	n := len(b)
	maxIter := c.MaxIterations
	if maxIter <= 0 {
		maxIter = n + 1
	}

	free := make([]int, n)
	for i := range free {
		free[i] = i
	}
	x := make([]float64, n)

	for iter := 0; iter < maxIter; iter++ {
		if len(free) == 0 {
			break
		}

		// minimizer of ||x-b||^2 with sum(x) fixed over the free set:
		// shift every free coordinate of b by the same multiplier
		sumFree := 0.0
		for _, i := range free {
			sumFree += b[i]
		}
		shift := (system.AmountToAdd - sumFree) / float64(len(free))

		for i := range x {
			x[i] = 0
		}
		for _, i := range free {
			x[i] = b[i] + shift
		}

		worst, worstVal := -1, -feasibilityTol
		for k, i := range free {
			if x[i] < worstVal {
				worst, worstVal = k, x[i]
			}
		}
		if worst < 0 {
			for _, i := range free {
				x[i] = math.Max(x[i], 0)
			}
			return newSolution(system, x, false)
		}
		free = append(free[:worst], free[worst+1:]...)
	}

	return nil, fmt.Errorf("constrained bucket solve with %d buckets: %w", n, ErrNonconvergence)
}
