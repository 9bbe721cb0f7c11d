package bucket

import (
	"errors"
	"fmt"
	"strings"

	"github.com/awhite/budget-buckets/pkg/money"
)

// ErrNonconvergence is returned when the constrained strategy's optimizer
// fails to reach a feasible solution within its iteration budget.
var ErrNonconvergence = errors.New("solver did not converge")

// ErrRemainder is returned when the Monte Carlo strategy finishes with a
// leftover amount that is negative or larger than twice the step size.
var ErrRemainder = errors.New("remainder out of tolerance")

// Solution holds the outcome of solving a bucket system. Delta carries this
// pass's contribution to each bucket and Total the resulting bucket values.
//
// Note the dual meaning of Delta: the unconstrained strategy produces a true
// difference from the prior state (entries may be negative), while the
// constrained strategies produce the direct non-negative contribution vector.
// Callers treat both uniformly as "what this pass adds to each bucket".
type Solution struct {
	System *System
	Delta  Data
	Total  Data
}

// Solver is the single capability the orchestrator depends on: distribute a
// system's amount to add over its sibling buckets.
type Solver interface {
	Solve(system *System) (*Solution, error)
}

// newSolution assembles a solution from a delta vector, deriving the total
// as current plus delta.
func newSolution(system *System, deltas []float64, allowNegative bool) (*Solution, error) {
	delta, err := FromValues(deltas, system.Current.Labels, allowNegative)
	if err != nil {
		return nil, err
	}
	totals := make([]float64, len(deltas))
	for i := range totals {
		totals[i] = system.Current.Values[i] + delta.Values[i]
	}
	total, err := FromValues(totals, system.Current.Labels, false)
	if err != nil {
		return nil, err
	}
	return &Solution{System: system, Delta: delta, Total: total}, nil
}

// bVector computes b in the equation Ax = b: the distance from each bucket's
// current value to its share of the target total.
func bVector(system *System) []float64 {
	b := make([]float64, len(system.Current.Values))
	for i := range b {
		b[i] = system.Optimal.Amount*system.Optimal.Ratios[i] - system.Current.Values[i]
	}
	return b
}

// String renders the solution for diagnostic logging.
func (s *Solution) String() string {
	var b strings.Builder
	b.WriteString("Solution\n========\n\n")
	fmt.Fprintf(&b, "                 %s\n", strings.Join(s.System.Current.Labels, "  "))
	fmt.Fprintf(&b, "delta.values   : %s\n", money.Fmt(s.Delta.Values...))
	fmt.Fprintf(&b, "delta.amount   : %s\n\n", money.Fmt(s.Delta.Amount))
	fmt.Fprintf(&b, "total.values   : %s\n", money.Fmt(s.Total.Values...))
	fmt.Fprintf(&b, "total.amount   : %s\n\n", money.Fmt(s.Total.Amount))
	fmt.Fprintf(&b, "differ.amount  : %s\n", money.Fmt(s.Delta.Amount-s.System.AmountToAdd))
	return b.String()
}
