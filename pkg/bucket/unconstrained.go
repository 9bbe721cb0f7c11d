package bucket

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Unconstrained distributes the amount to add by solving the linear system
// A·x = b with A the identity matrix, so each bucket moves directly to its
// share of the target total. Deltas may be negative: money is allowed to move
// from over-funded buckets to under-funded siblings.
type Unconstrained struct{}

// Solve solves the bucket problem exactly. The only failure mode is a
// singular system, which is not expected with an identity matrix.
func (Unconstrained) Solve(system *System) (*Solution, error) {
	n := len(system.Current.Values)
	a := identity(n)
	b := mat.NewVecDense(n, bVector(system))

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("singular bucket system: %w", err)
	}

	deltas := make([]float64, n)
	for i := range deltas {
		deltas[i] = x.AtVec(i)
	}
	return newSolution(system, deltas, true)
}

func identity(n int) *mat.Dense {
	a := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		a.Set(i, i, 1)
	}
	return a
}
