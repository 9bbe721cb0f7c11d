package tree

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"
)

func sampleRows() []Row {
	return []Row{
		{Label: "A", CurrentValue: 4000, OptimalRatio: 1.0, AmountToAdd: 1000, Children: []string{"0", "1", "2"}},
		{Label: "0", CurrentValue: 2000, OptimalRatio: 0.50},
		{Label: "1", CurrentValue: 1000, OptimalRatio: 0.25},
		{Label: "2", CurrentValue: 1000, OptimalRatio: 0.25},
	}
}

func nestedRows() []Row {
	return []Row{
		{Label: "B", CurrentValue: 8000, OptimalRatio: 1.0, AmountToAdd: 4000, Children: []string{"3", "4", "5"}},
		{Label: "3", CurrentValue: 4000, OptimalRatio: 0.50},
		{Label: "4", CurrentValue: 2000, OptimalRatio: 0.25},
		{Label: "5", CurrentValue: 2000, OptimalRatio: 0.25, Children: []string{"C", "D"}},
		{Label: "C", CurrentValue: 1000, OptimalRatio: 0.50},
		{Label: "D", CurrentValue: 1000, OptimalRatio: 0.50, Children: []string{"6", "7"}},
		{Label: "6", CurrentValue: 250, OptimalRatio: 0.25},
		{Label: "7", CurrentValue: 750, OptimalRatio: 0.75},
	}
}

func TestBuildAssignsLevels(t *testing.T) {
	tr, err := Build(nil, nestedRows())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want := map[string]int{"B": 0, "3": 1, "4": 1, "5": 1, "C": 2, "D": 2, "6": 3, "7": 3}
	for label, level := range want {
		node, ok := tr.Lookup(label)
		if !ok {
			t.Fatalf("Lookup(%q) missing", label)
		}
		if node.Level != level {
			t.Errorf("node %s level = %d, want %d", label, node.Level, level)
		}
	}
}

func TestBuildNormalizesRatiosPerLevel(t *testing.T) {
	rows := sampleRows()
	// any positive scale normalizes to the same ratios
	rows[1].OptimalRatio = 50
	rows[2].OptimalRatio = 25
	rows[3].OptimalRatio = 25

	tr, err := Build(nil, rows)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	for _, nodes := range tr.Levels() {
		total := 0.0
		for _, i := range nodes {
			total += tr.At(i).OptimalRatio
		}
		if !Close(total, 1.0) {
			t.Errorf("optimal ratios sum = %v, want 1.0", total)
		}
	}
	node, _ := tr.Lookup("0")
	if !Close(node.OptimalRatio, 0.5) {
		t.Errorf("node 0 optimal ratio = %v, want 0.5", node.OptimalRatio)
	}
	if !Close(node.CurrentRatio, 0.5) {
		t.Errorf("node 0 current ratio = %v, want 0.5", node.CurrentRatio)
	}
}

func TestBuildComputesProductRatioAndOptimalValue(t *testing.T) {
	tr, err := Build(nil, nestedRows())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	// grand total = 4000 added + 8000 at the root
	wantProduct := map[string]float64{
		"B": 1.0, "3": 0.50, "4": 0.25, "5": 0.25,
		"C": 0.125, "D": 0.125, "6": 0.03125, "7": 0.09375,
	}
	for label, product := range wantProduct {
		node, _ := tr.Lookup(label)
		if !Close(node.ProductRatio, product) {
			t.Errorf("node %s product ratio = %v, want %v", label, node.ProductRatio, product)
		}
		if !Close(node.OptimalValue, 12000*product) {
			t.Errorf("node %s optimal value = %v, want %v", label, node.OptimalValue, 12000*product)
		}
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name       string
		rows       []Row
		structural bool
	}{
		{
			name: "edge references missing node",
			rows: []Row{
				{Label: "A", CurrentValue: 1, OptimalRatio: 1, Children: []string{"missing"}},
			},
			structural: true,
		},
		{
			name: "duplicate label",
			rows: []Row{
				{Label: "A", CurrentValue: 1, OptimalRatio: 1},
				{Label: "A", CurrentValue: 1, OptimalRatio: 1},
			},
			structural: true,
		},
		{
			name: "child with two parents",
			rows: []Row{
				{Label: "A", CurrentValue: 2, OptimalRatio: 1, Children: []string{"B", "C"}},
				{Label: "B", CurrentValue: 1, OptimalRatio: 0.5, Children: []string{"C"}},
				{Label: "C", CurrentValue: 1, OptimalRatio: 0.5},
			},
			structural: true,
		},
		{
			name: "disconnected subtree",
			rows: []Row{
				{Label: "A", CurrentValue: 1, OptimalRatio: 1, Children: []string{"B"}},
				{Label: "B", CurrentValue: 1, OptimalRatio: 1},
				{Label: "X", CurrentValue: 1, OptimalRatio: 1, Children: []string{"Y"}},
				{Label: "Y", CurrentValue: 1, OptimalRatio: 1},
			},
			structural: true,
		},
		{
			name: "children do not sum to parent",
			rows: []Row{
				{Label: "A", CurrentValue: 100, OptimalRatio: 1, Children: []string{"B", "C"}},
				{Label: "B", CurrentValue: 10, OptimalRatio: 0.5},
				{Label: "C", CurrentValue: 10, OptimalRatio: 0.5},
			},
			structural: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(nil, tt.rows)
			if err == nil {
				t.Fatal("Build() expected error")
			}
			var structural *StructuralError
			var invariant *InvariantError
			if tt.structural && !errors.As(err, &structural) {
				t.Errorf("Build() error = %v, want StructuralError", err)
			}
			if !tt.structural && !errors.As(err, &invariant) {
				t.Errorf("Build() error = %v, want InvariantError", err)
			}
		})
	}
}

func TestBuildRejectsCycle(t *testing.T) {
	tr := New()
	for _, label := range []string{"A", "B", "C"} {
		if err := tr.AddNode(&Node{Label: label, CurrentValue: 1, OptimalRatio: 1}); err != nil {
			t.Fatalf("AddNode() error = %v", err)
		}
	}
	for _, edge := range [][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}} {
		if err := tr.AddEdge(edge[0], edge[1]); err != nil {
			t.Fatalf("AddEdge() error = %v", err)
		}
	}
	if NoCycles(zap.NewNop(), tr) {
		t.Error("NoCycles() = true for a cyclic graph")
	}
	if _, err := tr.Root(); err == nil {
		t.Error("Root() expected error for a cyclic graph")
	}
}

func TestCloneIsolatesMutation(t *testing.T) {
	tr, err := Build(nil, sampleRows())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	clone := tr.Clone()
	node, _ := clone.Lookup("0")
	node.AmountToAdd = 123

	original, _ := tr.Lookup("0")
	if original.AmountToAdd != 0 {
		t.Errorf("mutating the clone changed the original: %v", original.AmountToAdd)
	}
}

func TestIsLeafExcludesChildlessRoot(t *testing.T) {
	tr := New()
	if err := tr.AddNode(&Node{Label: "only"}); err != nil {
		t.Fatalf("AddNode() error = %v", err)
	}
	if tr.IsLeaf(0) {
		t.Error("IsLeaf() = true for a childless root")
	}
}

func TestNormalizeZeroLevelWritesZeros(t *testing.T) {
	tr, err := Build(nil, sampleRows())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	// results values have not been written yet, so every level sums to zero
	Normalize(tr, GetResultsValue, SetResultsRatio)
	for i := 0; i < tr.Len(); i++ {
		if tr.At(i).ResultsRatio != 0 {
			t.Errorf("node %s results ratio = %v, want 0", tr.At(i).Label, tr.At(i).ResultsRatio)
		}
	}
}

func TestAggregate(t *testing.T) {
	tr, err := Build(nil, nestedRows())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := Aggregate(tr, GetAmountToAdd, Sum, false); !Close(got, 4000) {
		t.Errorf("Aggregate(amount_to_add) = %v, want 4000", got)
	}
	// leaves: 3, 4, C, 6, 7
	if got := Aggregate(tr, GetCurrentValue, Sum, true); !Close(got, 8000) {
		t.Errorf("Aggregate(current_value, leaves) = %v, want 8000", got)
	}
}

func TestAggregateAlongDepth(t *testing.T) {
	tr, err := Build(nil, nestedRows())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	out := make(map[string]float64, tr.Len())
	set := func(n *Node, v float64) { out[n.Label] = v }
	if err := AggregateAlongDepth(tr, GetOptimalRatio, set, Mul); err != nil {
		t.Fatalf("AggregateAlongDepth() error = %v", err)
	}
	want := map[string]float64{"B": 1.0, "5": 0.25, "D": 0.125, "7": 0.09375}
	for label, product := range want {
		if math.Abs(out[label]-product) > 1e-9 {
			t.Errorf("accumulated product at %s = %v, want %v", label, out[label], product)
		}
	}
}
