package tree

// Traversal and aggregation primitives reused throughout the pipeline.

// Getter reads an attribute from a node; Setter writes one.
type Getter func(*Node) float64
type Setter func(*Node, float64)

// Reduce folds two attribute values into one.
type Reduce func(a, b float64) float64

// Sum and Mul are the reductions used by the pipeline.
func Sum(a, b float64) float64 { return a + b }
func Mul(a, b float64) float64 { return a * b }

// Normalize rescales the attribute read by get so that the values at each
// selected level sum to one, writing the scaled values with set. With no
// levels given every level is normalized. A level whose values sum to zero
// is written as all zeros.
func Normalize(t *Tree, get Getter, set Setter, levels ...int) {
	selected := t.Levels()
	if len(levels) > 0 {
		subset := make(map[int][]int, len(levels))
		for _, l := range levels {
			if nodes, ok := selected[l]; ok {
				subset[l] = nodes
			}
		}
		selected = subset
	}
	for _, nodes := range selected {
		total := 0.0
		for _, i := range nodes {
			total += get(t.At(i))
		}
		for _, i := range nodes {
			if total > 0 {
				set(t.At(i), get(t.At(i))/total)
			} else {
				set(t.At(i), 0)
			}
		}
	}
}

// Aggregate folds the attribute read by get over all nodes, or only over
// true leaves when leavesOnly is set.
func Aggregate(t *Tree, get Getter, reduce Reduce, leavesOnly bool) float64 {
	acc, first := 0.0, true
	for i := 0; i < t.Len(); i++ {
		if leavesOnly && !t.IsLeaf(i) {
			continue
		}
		v := get(t.At(i))
		if first {
			acc, first = v, false
		} else {
			acc = reduce(acc, v)
		}
	}
	return acc
}

// AggregateAlongDepth folds the attribute read by get cumulatively from the
// root: the root's output is its own value and each descendant's output is
// the reduction of its parent's output with its own value.
func AggregateAlongDepth(t *Tree, get Getter, set Setter, reduce Reduce) error {
	root, err := t.Root()
	if err != nil {
		return err
	}
	set(t.At(root), get(t.At(root)))

	type frame struct{ parent, child int }
	var stack []frame
	for _, c := range t.Children(root) {
		stack = append(stack, frame{root, c})
	}
	out := make([]float64, t.Len())
	out[root] = get(t.At(root))
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out[f.child] = reduce(out[f.parent], get(t.At(f.child)))
		set(t.At(f.child), out[f.child])
		for _, c := range t.Children(f.child) {
			stack = append(stack, frame{f.child, c})
		}
	}
	return nil
}
