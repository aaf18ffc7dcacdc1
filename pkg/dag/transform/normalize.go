package transform

import (
	"github.com/matzehuels/stratum/pkg/dag"
	"github.com/matzehuels/stratum/pkg/errors"
)

// NormalizeEdges breaks every edge spanning more than one rank into a
// chain of single-rank edges through [dag.KindEdge] dummies.
//
//	Before: a (rank 0) → b (rank 3)
//	After:  a → _d1 → _d2 → b
//
// The original edge is detached, not deleted, and every dummy points back
// to it through Edge. When the edge carries a label rank, the dummy on
// that rank becomes a [dag.KindEdgeLabel] dummy sized like the label, so
// the label takes part in ordering and positioning. The first dummy of
// each chain is recorded in the graph label's DummyChains.
//
// Chain edges inherit the original weight and name.
func NormalizeEdges(g *dag.Graph) {
	gl := g.Label()
	gl.DummyChains = gl.DummyChains[:0]
	for _, e := range g.Edges() {
		normalizeEdge(g, e)
	}
}

func normalizeEdge(g *dag.Graph, e dag.EdgeID) {
	v, w := g.Endpoints(e)
	vRank, wRank := g.Node(v).Rank, g.Node(w).Rank
	if wRank <= vRank+1 {
		return
	}

	label := g.Edge(e)
	name := g.EdgeName(e)
	g.RemoveEdge(e)
	label.Points = label.Points[:0]

	prev := v
	for rank := vRank + 1; rank < wRank; rank++ {
		nl := dag.NewNodeLabel(0, 0)
		nl.Rank, nl.Ranked = rank, true
		nl.Edge = e
		kind := dag.KindEdge
		if label.HasLabelRank && rank == label.LabelRank {
			nl.Width, nl.Height = label.Width, label.Height
			nl.LabelPos = label.LabelPos
			kind = dag.KindEdgeLabel
		}
		dummy := g.AddDummy(kind, nl, "_d")
		_, _ = g.AddEdge(prev, dummy, name, &dag.EdgeLabel{MinLen: 1, Weight: label.Weight})
		if rank == vRank+1 {
			gl := g.Label()
			gl.DummyChains = append(gl.DummyChains, dummy)
		}
		prev = dummy
	}
	_, _ = g.AddEdge(prev, w, name, &dag.EdgeLabel{MinLen: 1, Weight: label.Weight})
}

// DenormalizeEdges collapses every dummy chain back into its original
// edge. The dummies' coordinates become the edge's route points; an
// edge-label dummy also hands its position and size to the edge label.
func DenormalizeEdges(g *dag.Graph) error {
	for _, v := range g.Label().DummyChains {
		node := g.Node(v)
		if node == nil {
			return errors.Internal("dummy chain head %d vanished", v)
		}
		e := node.Edge
		label := g.Edge(e)
		if label == nil {
			return errors.Internal("dummy %q refers to missing edge %d", g.NodeName(v), e)
		}
		if err := g.RestoreEdge(e); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "restore edge %d", e)
		}

		for node != nil && (node.Kind == dag.KindEdge || node.Kind == dag.KindEdgeLabel) {
			next := dag.None
			if out := g.OutEdges(v); len(out) > 0 {
				_, next = g.Endpoints(out[0])
			}
			g.RemoveNode(v)
			label.Points = append(label.Points, dag.Point{X: node.X, Y: node.Y})
			if node.Kind == dag.KindEdgeLabel {
				label.SetAnchor(node.X, node.Y)
				label.Width, label.Height = node.Width, node.Height
			}
			v = next
			node = g.Node(v)
		}
	}
	g.Label().DummyChains = nil
	return nil
}
