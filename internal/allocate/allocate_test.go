package allocate

import (
	"errors"
	"math"
	"testing"

	"github.com/awhite/budget-buckets/pkg/bucket"
	"github.com/awhite/budget-buckets/pkg/tree"
)

const tolerance = 1e-6

func mustBuild(t *testing.T, rows []tree.Row) *tree.Tree {
	t.Helper()
	tr, err := tree.Build(nil, rows)
	if err != nil {
		t.Fatalf("tree.Build() error = %v", err)
	}
	return tr
}

func checkResults(t *testing.T, tr *tree.Tree, want map[string]float64) {
	t.Helper()
	for label, value := range want {
		node, ok := tr.Lookup(label)
		if !ok {
			t.Fatalf("Lookup(%q) missing", label)
		}
		if math.Abs(node.ResultsValue-value) > tolerance {
			t.Errorf("node %s results value = %v, want %v", label, node.ResultsValue, value)
		}
	}
}

func TestSolveRedistributesWithoutNewMoney(t *testing.T) {
	tr := mustBuild(t, []tree.Row{
		{Label: "A", CurrentValue: 3000, OptimalRatio: 1.0, Children: []string{"0", "1", "2"}},
		{Label: "0", CurrentValue: 3000, OptimalRatio: 0.50},
		{Label: "1", CurrentValue: 0, OptimalRatio: 0.35},
		{Label: "2", CurrentValue: 0, OptimalRatio: 0.15},
	})

	if err := Solve(nil, tr, bucket.Unconstrained{}, Options{}); err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	checkResults(t, tr, map[string]float64{
		"A": 3000, "0": 1500, "1": 1050, "2": 450,
	})
	for _, label := range []string{"0", "1", "2"} {
		node, _ := tr.Lookup(label)
		if math.Abs(node.ResultsRatio-node.OptimalRatio) > tolerance {
			t.Errorf("node %s results ratio = %v, want %v", label, node.ResultsRatio, node.OptimalRatio)
		}
	}
}

func TestSolveDistributesNewMoneyProportionally(t *testing.T) {
	tr := mustBuild(t, []tree.Row{
		{Label: "A", CurrentValue: 4000, OptimalRatio: 1.0, AmountToAdd: 1000, Children: []string{"0", "1", "2"}},
		{Label: "0", CurrentValue: 2000, OptimalRatio: 0.50},
		{Label: "1", CurrentValue: 1000, OptimalRatio: 0.25},
		{Label: "2", CurrentValue: 1000, OptimalRatio: 0.25},
	})

	if err := Solve(nil, tr, bucket.Constrained{}, Options{}); err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	checkResults(t, tr, map[string]float64{
		"A": 5000, "0": 2500, "1": 1250, "2": 1250,
	})
}

func TestSolveCascadesThroughNestedLevels(t *testing.T) {
	tr := mustBuild(t, []tree.Row{
		{Label: "B", CurrentValue: 8000, OptimalRatio: 1.0, AmountToAdd: 4000, Children: []string{"3", "4", "5"}},
		{Label: "3", CurrentValue: 4000, OptimalRatio: 0.50},
		{Label: "4", CurrentValue: 2000, OptimalRatio: 0.25},
		{Label: "5", CurrentValue: 2000, OptimalRatio: 0.25, Children: []string{"C", "D"}},
		{Label: "C", CurrentValue: 1000, OptimalRatio: 0.50},
		{Label: "D", CurrentValue: 1000, OptimalRatio: 0.50, Children: []string{"6", "7"}},
		{Label: "6", CurrentValue: 250, OptimalRatio: 0.25},
		{Label: "7", CurrentValue: 750, OptimalRatio: 0.75},
	})

	if err := Solve(nil, tr, bucket.Constrained{}, Options{}); err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	checkResults(t, tr, map[string]float64{
		"B": 12000,
		"3": 6000, "4": 3000,
		"5": 3000, "C": 1500, "D": 1500,
		"6": 375, "7": 1125,
	})
}

func TestSolveRollsUpInternalNodes(t *testing.T) {
	tr := mustBuild(t, []tree.Row{
		{Label: "A", CurrentValue: 2000, OptimalRatio: 1.0, AmountToAdd: 1000, Children: []string{"0", "1"}},
		{Label: "0", CurrentValue: 1000, OptimalRatio: 0.5},
		{Label: "1", CurrentValue: 1000, OptimalRatio: 0.5},
	})

	if err := Solve(nil, tr, bucket.Constrained{}, Options{}); err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	root, _ := tr.Lookup("A")
	if root.AmountToAdd != 0 {
		t.Errorf("root amount to add after solve = %v, want 0", root.AmountToAdd)
	}
	if math.Abs(root.ResultsValue-3000) > tolerance {
		t.Errorf("root results value = %v, want 3000", root.ResultsValue)
	}
	if math.Abs(root.ResultsRatio-1.0) > tolerance {
		t.Errorf("root results ratio = %v, want 1.0", root.ResultsRatio)
	}
}

func TestSolveMaxAttemptsExceeded(t *testing.T) {
	// money injected at the root needs one pass per level to reach the leaves
	tr := mustBuild(t, []tree.Row{
		{Label: "A", CurrentValue: 400, OptimalRatio: 1.0, AmountToAdd: 100, Children: []string{"B"}},
		{Label: "B", CurrentValue: 400, OptimalRatio: 1.0, Children: []string{"C", "D"}},
		{Label: "C", CurrentValue: 200, OptimalRatio: 0.5},
		{Label: "D", CurrentValue: 200, OptimalRatio: 0.5},
	})

	err := Solve(nil, tr, bucket.Constrained{}, Options{MaxAttempts: 1})
	if !errors.Is(err, ErrMaxAttempts) {
		t.Fatalf("Solve() error = %v, want ErrMaxAttempts", err)
	}
}

func TestSolveConvergesWithinBudget(t *testing.T) {
	tr := mustBuild(t, []tree.Row{
		{Label: "A", CurrentValue: 400, OptimalRatio: 1.0, AmountToAdd: 100, Children: []string{"B"}},
		{Label: "B", CurrentValue: 400, OptimalRatio: 1.0, Children: []string{"C", "D"}},
		{Label: "C", CurrentValue: 200, OptimalRatio: 0.5},
		{Label: "D", CurrentValue: 200, OptimalRatio: 0.5},
	})

	if err := Solve(nil, tr, bucket.Constrained{}, Options{MaxAttempts: 2}); err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	checkResults(t, tr, map[string]float64{"C": 250, "D": 250, "B": 500, "A": 500})
}
