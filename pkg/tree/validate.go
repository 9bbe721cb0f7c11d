package tree

import (
	"go.uber.org/zap"
)

// Check is a side-effect-free predicate over a tree. Checks log their
// violations so a failed run explains itself.
type Check func(*zap.Logger, *Tree) bool

// Validate evaluates every check against the tree and reports whether all
// of them passed. It does not short-circuit, so one run reports every
// violation.
func Validate(logger *zap.Logger, t *Tree, checks ...Check) bool {
	if logger == nil {
		logger = zap.NewNop()
	}
	valid := true
	for _, check := range checks {
		if !check(logger, t) {
			valid = false
		}
	}
	return valid
}

// NoCycles verifies the directed edges contain no cycle.
func NoCycles(logger *zap.Logger, t *Tree) bool {
	const (
		white = iota // unvisited
		gray         // on the current path
		black        // finished
	)
	color := make([]int, t.Len())

	var visit func(i int) bool
	visit = func(i int) bool {
		color[i] = gray
		for _, c := range t.Children(i) {
			switch color[c] {
			case gray:
				logger.Error("cycle found in bucket hierarchy",
					zap.String("op", "tree.NoCycles"),
					zap.String("edge", t.At(i).Label+" -> "+t.At(c).Label),
				)
				return false
			case white:
				if !visit(c) {
					return false
				}
			}
		}
		color[i] = black
		return true
	}

	for i := 0; i < t.Len(); i++ {
		if color[i] == white && !visit(i) {
			return false
		}
	}
	return true
}

// Connected verifies the tree has no orphan subgraphs: ignoring edge
// direction, every node is reachable from every other.
func Connected(logger *zap.Logger, t *Tree) bool {
	if t.Len() == 0 {
		return true
	}
	seen := make([]bool, t.Len())
	queue := []int{0}
	seen[0] = true
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		neighbors := append(append([]int(nil), t.Children(i)...), t.Parents(i)...)
		for _, n := range neighbors {
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	valid := true
	for i, ok := range seen {
		if !ok {
			valid = false
			logger.Error("orphan node not connected to the hierarchy",
				zap.String("op", "tree.Connected"),
				zap.String("label", t.At(i).Label),
			)
		}
	}
	return valid
}

// SingleParent verifies that no node has more than one parent.
func SingleParent(logger *zap.Logger, t *Tree) bool {
	valid := true
	for i := 0; i < t.Len(); i++ {
		if len(t.Parents(i)) > 1 {
			valid = false
			logger.Error("node has multiple parents",
				zap.String("op", "tree.SingleParent"),
				zap.String("label", t.At(i).Label),
				zap.Int("parents", len(t.Parents(i))),
			)
		}
	}
	return valid
}

// LevelsSumToOne verifies that the named attribute sums to one at every
// level of the tree.
func LevelsSumToOne(name string, get Getter) Check {
	return func(logger *zap.Logger, t *Tree) bool {
		valid := true
		for level, nodes := range t.Levels() {
			total := 0.0
			for _, i := range nodes {
				total += get(t.At(i))
			}
			if !Close(total, 1.0) {
				valid = false
				logger.Error("attribute does not sum to 100 percent at level",
					zap.String("op", "tree.LevelsSumToOne"),
					zap.String("attribute", name),
					zap.Int("level", level),
					zap.Float64("total", total),
				)
			}
		}
		return valid
	}
}

// ChildrenSumToParent verifies that, for the named attribute, every parent's
// value equals the sum of its children's values.
func ChildrenSumToParent(name string, get Getter) Check {
	return func(logger *zap.Logger, t *Tree) bool {
		families, err := t.BottomUp()
		if err != nil {
			logger.Error("can not traverse hierarchy",
				zap.String("op", "tree.ChildrenSumToParent"),
				zap.Error(err),
			)
			return false
		}
		valid := true
		for _, fam := range families {
			expected := get(t.At(fam.Parent))
			observed := 0.0
			for _, c := range fam.Children {
				observed += get(t.At(c))
			}
			if !Close(observed, expected) {
				valid = false
				logger.Error("children do not sum to parent value",
					zap.String("op", "tree.ChildrenSumToParent"),
					zap.String("attribute", name),
					zap.String("label", t.At(fam.Parent).Label),
					zap.Float64("expected", expected),
					zap.Float64("observed", observed),
				)
			}
		}
		return valid
	}
}
