package tree

import (
	"go.uber.org/zap"
)

// Row is one bucket declaration from the input table. Children lists the
// labels of the bucket's direct descendants.
type Row struct {
	Label        string
	CurrentValue float64
	OptimalRatio float64
	AmountToAdd  float64
	Children     []string
}

// Build turns tabular rows into a validated, leveled, ratio-normalized tree.
//
// Nodes are added first and edges in a second pass, so an edge referencing a
// missing label fails with a structural error. Levels are assigned by
// breadth-first distance from the root, structural and value-sum invariants
// are checked, ratios are normalized per level, the cumulative product ratio
// is computed along the depth, and each node's optimal value is derived from
// the grand total.
func Build(logger *zap.Logger, rows []Row) (*Tree, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	t := New()
	for _, row := range rows {
		node := &Node{
			Label:        row.Label,
			Level:        -1,
			CurrentValue: row.CurrentValue,
			OptimalRatio: row.OptimalRatio,
			AmountToAdd:  row.AmountToAdd,
		}
		if err := t.AddNode(node); err != nil {
			return nil, err
		}
	}
	for _, row := range rows {
		for _, child := range row.Children {
			if err := t.AddEdge(row.Label, child); err != nil {
				return nil, err
			}
		}
	}

	root, err := t.Root()
	if err != nil {
		return nil, err
	}
	assignLevels(t, root)

	if !Validate(logger, t, NoCycles, Connected, SingleParent) {
		return nil, &StructuralError{Reason: "input does not form a rooted tree"}
	}
	if !Validate(logger, t, ChildrenSumToParent("current_value", GetCurrentValue)) {
		return nil, &InvariantError{Reason: "children's current values do not sum to their parent's"}
	}

	Normalize(t, GetOptimalRatio, SetOptimalRatio)
	Normalize(t, GetCurrentValue, SetCurrentRatio)
	if err := AggregateAlongDepth(t, GetOptimalRatio, SetProductRatio, Mul); err != nil {
		return nil, err
	}

	total := Aggregate(t, GetAmountToAdd, Sum, false) + t.At(root).CurrentValue
	for i := 0; i < t.Len(); i++ {
		n := t.At(i)
		n.OptimalValue = total * n.ProductRatio
	}

	if !Validate(logger, t,
		LevelsSumToOne("optimal_ratio", GetOptimalRatio),
		LevelsSumToOne("current_ratio", GetCurrentRatio),
	) {
		return nil, &InvariantError{Reason: "level ratios do not sum to 100 percent"}
	}

	return t, nil
}

// assignLevels writes each node's depth as the breadth-first distance from
// the root.
func assignLevels(t *Tree, root int) {
	t.At(root).Level = 0
	queue := []int{root}
	seen := make([]bool, t.Len())
	seen[root] = true
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		for _, c := range t.Children(i) {
			if !seen[c] {
				seen[c] = true
				t.At(c).Level = t.At(i).Level + 1
				queue = append(queue, c)
			}
		}
	}
	t.levels = nil
}
