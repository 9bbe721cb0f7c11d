package bucket

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"
)

// DefaultStepSize is the fixed increment added to a bucket on each accepted
// Monte Carlo step.
const DefaultStepSize = 0.01

// MonteCarlo approximates the constrained strategy with randomized fixed-size
// steps. Each iteration picks a bucket uniformly at random and accepts a step
// with probability equal to that bucket's share of the remaining shortfall.
// Smaller step sizes converge toward the constrained solution at the cost of
// more iterations.
type MonteCarlo struct {
	// StepSize is the amount added per accepted step; DefaultStepSize when zero.
	StepSize float64
	// MaxSteps bounds the iteration count; proportional to the amount to
	// add over the step size when zero.
	MaxSteps int
	// Seed makes runs reproducible; a time-based seed is used when zero.
	Seed int64

	// Accept and Reject count the step outcomes of the last Solve call.
	Accept int
	Reject int
}

// Solve solves the bucket problem approximately. Any leftover remainder is
// assigned to the currently most under-funded bucket; a remainder that is
// negative or beyond twice the step size returns ErrRemainder.
func (m *MonteCarlo) Solve(system *System) (*Solution, error) {
	step := m.StepSize
	if step <= 0 {
		step = DefaultStepSize
	}
	maxSteps := m.MaxSteps
	if maxSteps <= 0 {
		maxSteps = int(10 * system.AmountToAdd / step)
	}
	seed := m.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	values := append([]float64(nil), system.Current.Values...)
	probs := shortfallProbabilities(values, system.Optimal.Values)
	totalAdded := 0.0
	m.Accept, m.Reject = 0, 0

	for i := 0; i < maxSteps; i++ {
		if floats.Sum(probs) <= 0 {
			break
		}
		if totalAdded >= system.AmountToAdd-step {
			break
		}
		index := rng.Intn(len(probs))
		if rng.Float64() <= probs[index] {
			m.Accept++
			totalAdded += step
			values[index] += step
			probs = shortfallProbabilities(values, system.Optimal.Values)
		} else {
			m.Reject++
		}
	}

	probs = shortfallProbabilities(values, system.Optimal.Values)
	deltas := make([]float64, len(values))
	for i := range deltas {
		deltas[i] = values[i] - system.Current.Values[i]
	}

	remaining := system.AmountToAdd - floats.Sum(deltas)
	if remaining < 0 || math.Abs(remaining) > 2*step {
		return nil, fmt.Errorf("monte carlo leftover %v with step size %v: %w", remaining, step, ErrRemainder)
	}
	if remaining > 0 {
		deltas[floats.MaxIdx(probs)] += remaining
	}
	return newSolution(system, deltas, false)
}

// shortfallProbabilities normalizes the positive part of optimal minus
// current into a probability vector.
func shortfallProbabilities(current, optimal []float64) []float64 {
	probs := make([]float64, len(current))
	for i := range probs {
		d := optimal[i] - current[i]
		if math.IsNaN(d) || d < 0 {
			d = 0
		}
		probs[i] = d
	}
	total := floats.Sum(probs)
	if total <= 0 {
		return make([]float64, len(current))
	}
	for i := range probs {
		probs[i] /= total
	}
	return probs
}
