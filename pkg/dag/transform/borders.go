package transform

import (
	"slices"

	"github.com/matzehuels/stratum/pkg/dag"
)

// AddBorderSegments gives every compound node a left and a right border
// dummy on each rank of its span, MinRank through MaxRank. Consecutive
// segments on one side are chained with weight-1 edges so they line up
// vertically. The segments are stored in order in BorderLeft and
// BorderRight; the last entry of each sits on MaxRank.
func AddBorderSegments(g *dag.Graph) {
	var walk func(v dag.NodeID)
	walk = func(v dag.NodeID) {
		for _, c := range slices.Clone(g.Children(v)) {
			walk(c)
		}
		node := g.Node(v)
		if !node.HasRankSpan {
			return
		}
		node.BorderLeft = node.BorderLeft[:0]
		node.BorderRight = node.BorderRight[:0]
		for rank := node.MinRank; rank <= node.MaxRank; rank++ {
			node.BorderLeft = append(node.BorderLeft, addSegment(g, v, dag.KindBorderLeft, "_bl", rank, node.BorderLeft))
			node.BorderRight = append(node.BorderRight, addSegment(g, v, dag.KindBorderRight, "_br", rank, node.BorderRight))
		}
	}
	for _, v := range slices.Clone(g.Children(dag.None)) {
		walk(v)
	}
}

func addSegment(g *dag.Graph, parent dag.NodeID, kind dag.NodeKind, prefix string, rank int, prevs []dag.NodeID) dag.NodeID {
	label := dag.NewNodeLabel(0, 0)
	label.Rank, label.Ranked = rank, true
	curr := g.AddDummy(kind, label, prefix)
	_ = g.SetParent(curr, parent)
	if len(prevs) > 0 {
		_, _ = g.AddEdge(prevs[len(prevs)-1], curr, "", &dag.EdgeLabel{MinLen: 1, Weight: 1})
	}
	return curr
}
