// Package allocate orchestrates bucket solves over a hierarchy: a chosen
// strategy is applied bottom-up, pass after pass, until every injected
// amount has cascaded down to the leaves.
package allocate

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/awhite/budget-buckets/pkg/bucket"
	"github.com/awhite/budget-buckets/pkg/tree"
)

// ErrMaxAttempts is returned when the propagation loop does not converge
// within the configured number of passes.
var ErrMaxAttempts = errors.New("maximum solve attempts exceeded")

// DefaultMaxAttempts bounds the propagation loop. Money injected several
// levels above a leaf needs one pass per intervening level to reach it, so
// the bound only matters for pathologically deep trees.
const DefaultMaxAttempts = 10

// Options configures a solve.
type Options struct {
	// MaxAttempts bounds the propagation loop; DefaultMaxAttempts when zero.
	MaxAttempts int
}

// Solve distributes every node's amount to add over its descendants using
// the given strategy, then finalizes and validates the results. The tree is
// mutated in place; callers that need the original intact should pass
// t.Clone().
//
// The priming pass visits every node whose amount is non-negative, which
// lets unconstrained strategies redistribute existing money even when no new
// money was injected. Later passes only visit nodes funded since the
// previous pass; a pass that touches no node means the cascade is complete.
func Solve(logger *zap.Logger, t *tree.Tree, solver bucket.Solver, opts Options) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	if _, err := applyOver(logger, t, solver, func(amount float64) bool { return amount >= 0 }); err != nil {
		return err
	}

	converged := false
	for attempt := 0; attempt < maxAttempts; attempt++ {
		done, err := applyOver(logger, t, solver, func(amount float64) bool { return amount > 0 })
		if err != nil {
			return err
		}
		if done {
			logger.Debug("propagation converged",
				zap.String("op", "allocate.Solve"),
				zap.Int("attempts", attempt+1),
			)
			converged = true
			break
		}
	}
	if !converged {
		return fmt.Errorf("no convergence after %d passes: %w", maxAttempts, ErrMaxAttempts)
	}

	if err := finalize(t); err != nil {
		return err
	}

	if !tree.Validate(logger, t,
		tree.LevelsSumToOne("results_ratio", tree.GetResultsRatio),
		tree.ChildrenSumToParent("results_value", tree.GetResultsValue),
	) {
		return &tree.InvariantError{Reason: "results do not reconcile after solving"}
	}
	return nil
}

// applyOver walks the tree bottom-up and solves the bucket problem over the
// children of every parent whose amount to add meets the condition. It
// reports true when the condition was never met, i.e. the cascade is done.
func applyOver(logger *zap.Logger, t *tree.Tree, solver bucket.Solver, condition func(float64) bool) (bool, error) {
	families, err := t.BottomUp()
	if err != nil {
		return false, err
	}

	done := true
	for _, fam := range families {
		parent := t.At(fam.Parent)
		if !condition(parent.AmountToAdd) {
			continue
		}
		done = false

		currentValues := make([]float64, len(fam.Children))
		optimalRatios := make([]float64, len(fam.Children))
		labels := make([]string, len(fam.Children))
		for i, c := range fam.Children {
			child := t.At(c)
			currentValues[i] = child.CurrentValue
			optimalRatios[i] = child.OptimalRatio
			labels[i] = child.Label
		}

		system, err := bucket.NewSystem(parent.AmountToAdd, currentValues, optimalRatios, labels)
		if err != nil {
			return false, fmt.Errorf("building system for %s: %w", parent.Label, err)
		}
		solved, err := solver.Solve(system)
		if err != nil {
			return false, fmt.Errorf("solving buckets under %s: %w", parent.Label, err)
		}
		logger.Debug("solved bucket system",
			zap.String("op", "allocate.applyOver"),
			zap.String("parent", parent.Label),
			zap.Float64("amountToAdd", parent.AmountToAdd),
		)

		// negate rather than zero, so this node is skipped by later passes
		// while finalization can still recover the processed amount
		parent.AmountToAdd = -parent.AmountToAdd
		for i, c := range fam.Children {
			t.At(c).AmountToAdd += solved.Delta.Values[i]
		}
	}
	return done, nil
}

// finalize freezes the results: leaves keep current value plus everything
// that cascaded into them, internal nodes roll up their children and drop
// their spent amounts, and results ratios are normalized per level.
func finalize(t *tree.Tree) error {
	for i := 0; i < t.Len(); i++ {
		n := t.At(i)
		if len(t.Children(i)) > 0 {
			n.AmountToAdd = 0
		} else {
			n.ResultsValue = n.CurrentValue + n.AmountToAdd
		}
	}

	families, err := t.BottomUp()
	if err != nil {
		return err
	}
	for _, fam := range families {
		total := 0.0
		for _, c := range fam.Children {
			total += t.At(c).ResultsValue
		}
		t.At(fam.Parent).ResultsValue = total
	}

	tree.Normalize(t, tree.GetResultsValue, tree.SetResultsRatio)
	return nil
}
