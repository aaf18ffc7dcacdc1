package layout

import (
	"math"

	"github.com/matzehuels/stratum/pkg/dag"
	"github.com/matzehuels/stratum/pkg/errors"
)

// assignRankMinMax records on every compound node the ranks of its top
// and bottom markers, and on the graph the highest rank in use.
func assignRankMinMax(g *dag.Graph) error {
	maxRank := 0
	for _, v := range g.Nodes() {
		n := g.Node(v)
		if n.Ranked {
			maxRank = max(maxRank, n.Rank)
		}
		if n.BorderTop == dag.None {
			continue
		}
		top, bottom := g.Node(n.BorderTop), g.Node(n.BorderBottom)
		if top == nil || bottom == nil {
			return errors.Internal("compound node %q lost a border marker", g.NodeName(v))
		}
		n.MinRank, n.MaxRank, n.HasRankSpan = top.Rank, bottom.Rank, true
	}
	g.Label().MaxRank = maxRank
	return nil
}

// removeBorderNodes sizes every compound node from its markers, then
// deletes all markers. The box spans the outermost left and right segment
// over all ranks of the compound, and the top and bottom markers. Sizing
// finishes for every compound node before the first marker goes, since
// nested compounds read shared markers.
func removeBorderNodes(g *dag.Graph) error {
	for _, v := range g.Nodes() {
		if !g.IsCompound(v) {
			continue
		}
		n := g.Node(v)
		t, b := g.Node(n.BorderTop), g.Node(n.BorderBottom)
		left, okl := outermost(g, n.BorderLeft, math.Min)
		right, okr := outermost(g, n.BorderRight, math.Max)
		if t == nil || b == nil || !okl || !okr {
			return errors.Internal("compound node %q has incomplete border markers", g.NodeName(v))
		}

		n.Width = math.Abs(right - left)
		n.Height = math.Abs(b.Y - t.Y)
		n.X = left + n.Width/2
		n.Y = t.Y + n.Height/2
	}

	for _, v := range g.Nodes() {
		if g.Node(v).Kind.IsBorder() {
			g.RemoveNode(v)
		}
	}
	return nil
}

// outermost folds the x of the segments with pick. It reports false when
// there are no segments or one of them is gone.
func outermost(g *dag.Graph, segments []dag.NodeID, pick func(a, b float64) float64) (float64, bool) {
	if len(segments) == 0 {
		return 0, false
	}
	var x float64
	for i, s := range segments {
		l := g.Node(s)
		if l == nil {
			return 0, false
		}
		if i == 0 {
			x = l.X
			continue
		}
		x = pick(x, l.X)
	}
	return x, true
}
