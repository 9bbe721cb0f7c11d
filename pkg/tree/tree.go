// Package tree implements the bucket hierarchy: a rooted tree of labeled
// nodes carrying per-level ratio bookkeeping, the builder that constructs a
// validated tree from tabular rows, and the traversal primitives shared by
// the solving pipeline.
package tree

import (
	"fmt"
	"sort"
)

// Node is one bucket in the hierarchy. CurrentValue, OptimalRatio, and
// AmountToAdd come from the input; the remaining fields are derived. The
// orchestrator mutates AmountToAdd in place across passes and writes the
// Results fields exactly once during finalization.
type Node struct {
	Label        string
	Level        int
	CurrentValue float64
	OptimalRatio float64
	CurrentRatio float64
	ProductRatio float64
	OptimalValue float64
	AmountToAdd  float64
	ResultsValue float64
	ResultsRatio float64
}

// Tree is an explicit rooted tree over an arena of nodes addressed by
// integer index. Parent lists are retained per node even though a valid
// tree has at most one parent, so the structural validators have the raw
// edges to inspect.
type Tree struct {
	nodes    []*Node
	index    map[string]int
	children [][]int
	parents  [][]int

	// levels caches the grouping of node indices by level; structural
	// mutation invalidates it.
	levels map[int][]int
}

// Family pairs a parent index with its child indices.
type Family struct {
	Parent   int
	Children []int
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{index: make(map[string]int)}
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// AddNode adds a node to the tree. Labels must be unique.
func (t *Tree) AddNode(node *Node) error {
	if _, ok := t.index[node.Label]; ok {
		return &StructuralError{Reason: fmt.Sprintf("duplicate node label %q", node.Label)}
	}
	t.index[node.Label] = len(t.nodes)
	t.nodes = append(t.nodes, node)
	t.children = append(t.children, nil)
	t.parents = append(t.parents, nil)
	t.levels = nil
	return nil
}

// AddEdge records a directed parent→child edge. Both endpoints must already
// exist as nodes.
func (t *Tree) AddEdge(parent, child string) error {
	pi, ok := t.index[parent]
	if !ok {
		return &StructuralError{Reason: fmt.Sprintf("can not create edge with missing node: %s -> %s", parent, child)}
	}
	ci, ok := t.index[child]
	if !ok {
		return &StructuralError{Reason: fmt.Sprintf("can not create edge with missing node: %s -> %s", parent, child)}
	}
	t.children[pi] = append(t.children[pi], ci)
	t.parents[ci] = append(t.parents[ci], pi)
	t.levels = nil
	return nil
}

// At returns the node at index i.
func (t *Tree) At(i int) *Node { return t.nodes[i] }

// Lookup returns the node with the given label.
func (t *Tree) Lookup(label string) (*Node, bool) {
	i, ok := t.index[label]
	if !ok {
		return nil, false
	}
	return t.nodes[i], true
}

// Children returns the child indices of node i.
func (t *Tree) Children(i int) []int { return t.children[i] }

// Parents returns the parent indices of node i. A structurally valid tree
// has at most one entry per node.
func (t *Tree) Parents(i int) []int { return t.parents[i] }

// IsLeaf reports whether node i is a true leaf: no children and exactly one
// parent. A childless root does not count as a leaf.
func (t *Tree) IsLeaf(i int) bool {
	return len(t.children[i]) == 0 && len(t.parents[i]) == 1
}

// Root returns the index of the unique node with no incoming edges.
func (t *Tree) Root() (int, error) {
	root := -1
	for i := range t.nodes {
		if len(t.parents[i]) == 0 {
			if root >= 0 {
				return -1, &StructuralError{Reason: fmt.Sprintf(
					"multiple root nodes: %s and %s", t.nodes[root].Label, t.nodes[i].Label)}
			}
			root = i
		}
	}
	if root < 0 {
		return -1, &StructuralError{Reason: "no root node (every node has a parent)"}
	}
	return root, nil
}

// BottomUp returns every parent paired with its children, ordered so that
// the deepest families come first. Nodes without children do not appear as
// parents.
func (t *Tree) BottomUp() ([]Family, error) {
	root, err := t.Root()
	if err != nil {
		return nil, err
	}
	var families []Family
	queue := []int{root}
	seen := make([]bool, len(t.nodes))
	seen[root] = true
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		if len(t.children[i]) > 0 {
			families = append(families, Family{Parent: i, Children: t.children[i]})
		}
		for _, c := range t.children[i] {
			if !seen[c] {
				seen[c] = true
				queue = append(queue, c)
			}
		}
	}
	for l, r := 0, len(families)-1; l < r; l, r = l+1, r-1 {
		families[l], families[r] = families[r], families[l]
	}
	return families, nil
}

// Levels groups node indices by their Level attribute, in ascending level
// order within the map keys. The grouping is cached until the tree is
// structurally mutated.
func (t *Tree) Levels() map[int][]int {
	if t.levels == nil {
		t.levels = make(map[int][]int)
		for i, n := range t.nodes {
			t.levels[n.Level] = append(t.levels[n.Level], i)
		}
	}
	return t.levels
}

// LevelKeys returns the distinct levels present in the tree in ascending
// order.
func (t *Tree) LevelKeys() []int {
	levels := t.Levels()
	keys := make([]int, 0, len(levels))
	for l := range levels {
		keys = append(keys, l)
	}
	sort.Ints(keys)
	return keys
}

// Clone returns a deep copy of the tree. Callers that want to solve without
// mutating a shared tree clone it first.
func (t *Tree) Clone() *Tree {
	out := &Tree{
		nodes:    make([]*Node, len(t.nodes)),
		index:    make(map[string]int, len(t.index)),
		children: make([][]int, len(t.children)),
		parents:  make([][]int, len(t.parents)),
	}
	for i, n := range t.nodes {
		copied := *n
		out.nodes[i] = &copied
	}
	for label, i := range t.index {
		out.index[label] = i
	}
	for i := range t.children {
		out.children[i] = append([]int(nil), t.children[i]...)
		out.parents[i] = append([]int(nil), t.parents[i]...)
	}
	return out
}
