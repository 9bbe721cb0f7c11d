package tree

// Named accessors for the node attributes the pipeline operates on
// generically.
var (
	GetCurrentValue Getter = func(n *Node) float64 { return n.CurrentValue }
	GetOptimalRatio Getter = func(n *Node) float64 { return n.OptimalRatio }
	GetCurrentRatio Getter = func(n *Node) float64 { return n.CurrentRatio }
	GetProductRatio Getter = func(n *Node) float64 { return n.ProductRatio }
	GetOptimalValue Getter = func(n *Node) float64 { return n.OptimalValue }
	GetAmountToAdd  Getter = func(n *Node) float64 { return n.AmountToAdd }
	GetResultsValue Getter = func(n *Node) float64 { return n.ResultsValue }
	GetResultsRatio Getter = func(n *Node) float64 { return n.ResultsRatio }

	SetOptimalRatio Setter = func(n *Node, v float64) { n.OptimalRatio = v }
	SetCurrentRatio Setter = func(n *Node, v float64) { n.CurrentRatio = v }
	SetProductRatio Setter = func(n *Node, v float64) { n.ProductRatio = v }
	SetResultsRatio Setter = func(n *Node, v float64) { n.ResultsRatio = v }
)
