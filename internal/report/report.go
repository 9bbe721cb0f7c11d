// Package report renders bucket trees as ASCII art and summarizes solve
// results.
package report

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/awhite/budget-buckets/pkg/money"
	"github.com/awhite/budget-buckets/pkg/tree"
)

// Column names one node attribute to show next to each label.
type Column struct {
	Name   string
	Render func(*tree.Node) string
}

func levelColumn() Column {
	return Column{Name: "level", Render: func(n *tree.Node) string {
		return fmt.Sprintf("[%d]", n.Level)
	}}
}

func valueColumn(name string, get tree.Getter) Column {
	return Column{Name: name, Render: func(n *tree.Node) string {
		return "[" + money.FmtN(11, 2, get(n)) + "]"
	}}
}

func ratioColumn(name string, get tree.Getter) Column {
	return Column{Name: name, Render: func(n *tree.Node) string {
		return fmt.Sprintf("[%5.3f]", get(n))
	}}
}

// InputColumns shows the attributes that arrive with the input.
func InputColumns() []Column {
	return []Column{
		levelColumn(),
		valueColumn("current_value", tree.GetCurrentValue),
		ratioColumn("optimal_ratio", tree.GetOptimalRatio),
		valueColumn("amount_to_add", tree.GetAmountToAdd),
	}
}

// OutputColumns shows the attributes written by the solve.
func OutputColumns() []Column {
	return []Column{
		levelColumn(),
		valueColumn("results_value", tree.GetResultsValue),
		ratioColumn("results_ratio", tree.GetResultsRatio),
		valueColumn("amount_to_add", tree.GetAmountToAdd),
	}
}

// AllColumns shows every derived attribute.
func AllColumns() []Column {
	return []Column{
		levelColumn(),
		valueColumn("current_value", tree.GetCurrentValue),
		valueColumn("optimal_value", tree.GetOptimalValue),
		valueColumn("results_value", tree.GetResultsValue),
		ratioColumn("current_ratio", tree.GetCurrentRatio),
		ratioColumn("optimal_ratio", tree.GetOptimalRatio),
		ratioColumn("results_ratio", tree.GetResultsRatio),
		ratioColumn("product_ratio", tree.GetProductRatio),
		valueColumn("amount_to_add", tree.GetAmountToAdd),
	}
}

// Log renders the tree and writes it through the logger under the given key.
func Log(logger *zap.Logger, key string, t *tree.Tree, columns []Column) {
	if logger == nil {
		logger = zap.NewNop()
	}
	text, err := Tree(t, columns)
	if err != nil {
		logger.Error("can not render tree",
			zap.String("op", "report.Log"),
			zap.Error(err),
		)
		return
	}
	logger.Info(key + ":\n" + text)
}

const (
	prefixCross = " ├─"
	prefixFinal = " └─"
	prefixSpace = "   "
	prefixVLine = " │ "
)

// Tree renders the hierarchy as ASCII art, one node per line with the
// requested attribute columns.
func Tree(t *tree.Tree, columns []Column) (string, error) {
	root, err := t.Root()
	if err != nil {
		return "", err
	}

	maxDepth, maxLabel := 0, 0
	for i := 0; i < t.Len(); i++ {
		n := t.At(i)
		if n.Level > maxDepth {
			maxDepth = n.Level
		}
		if len(n.Label) > maxLabel {
			maxLabel = len(n.Label)
		}
	}

	var b strings.Builder
	writeNode(&b, t, root, "", maxDepth, maxLabel, columns)
	return b.String(), nil
}

func writeNode(b *strings.Builder, t *tree.Tree, i int, indent string, maxDepth, maxLabel int, columns []Column) {
	n := t.At(i)
	// pad labels so attribute columns line up across depths
	width := 3*(maxDepth+1) + 1 - 3*(n.Level+1) + maxLabel
	fmt.Fprintf(b, "%-*s", width, n.Label)
	for _, col := range columns {
		fmt.Fprintf(b, " %s=%s", col.Name, col.Render(n))
	}
	b.WriteByte('\n')

	children := t.Children(i)
	for k, c := range children {
		b.WriteString(indent)
		if k == len(children)-1 {
			b.WriteString(prefixFinal)
			writeNode(b, t, c, indent+prefixSpace, maxDepth, maxLabel, columns)
		} else {
			b.WriteString(prefixCross)
			writeNode(b, t, c, indent+prefixVLine, maxDepth, maxLabel, columns)
		}
	}
}

// Summary logs the aggregate outcome of a solve: the total amount that was
// added, the results over the leaves, and each leaf's share.
func Summary(logger *zap.Logger, t *tree.Tree) {
	if logger == nil {
		logger = zap.NewNop()
	}

	width := 15
	for i := 0; i < t.Len(); i++ {
		if len(t.At(i).Label) > width {
			width = len(t.At(i).Label)
		}
	}
	line := func(name string, value string) {
		logger.Info(fmt.Sprintf("%-*s: %s", width, name, value))
	}

	line("amount_to_add", money.Fmt(tree.Aggregate(t, tree.GetAmountToAdd, tree.Sum, false)))
	line("results_value", money.Fmt(tree.Aggregate(t, tree.GetResultsValue, tree.Sum, true)))
	line("results_ratio", money.FmtN(money.DefaultWidth, 10, tree.Aggregate(t, tree.GetResultsRatio, tree.Sum, true)))

	for i := 0; i < t.Len(); i++ {
		if t.IsLeaf(i) {
			line(t.At(i).Label, money.Fmt(t.At(i).AmountToAdd))
		}
	}
}
