package tree

// StructuralError indicates the input does not describe a rooted tree:
// a cycle, an orphan subtree, a node with multiple parents, or an edge
// referencing a missing node. No partial tree is returned alongside it.
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string {
	return "structural error: " + e.Reason
}

// InvariantError indicates a numeric invariant over the tree failed beyond
// tolerance, either at build time (children's values do not sum to their
// parent's) or after solving (results do not reconcile).
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return "invariant violation: " + e.Reason
}

// Tolerances for all numeric equality checks over the tree.
const (
	RelTol = 1e-5
	AbsTol = 1e-8
)

// Close reports whether a and b are equal within the package tolerances.
func Close(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	ref := b
	if ref < 0 {
		ref = -ref
	}
	return diff <= AbsTol+RelTol*ref
}
