package layout

import (
	"math"

	"github.com/matzehuels/stratum/pkg/dag"
	"github.com/matzehuels/stratum/pkg/errors"
)

// reserveLabelSpace splits every rank in two so edge labels can sit on
// the half ranks: rank separation is halved and every minlen doubled.
// Labels not centered on their edge are widened by their offset (along
// the rank for tb and bt, across it otherwise) so they clear the line.
func reserveLabelSpace(g *dag.Graph) error {
	gl := g.Label()
	gl.RankSep /= 2
	for _, e := range g.Edges() {
		l := g.Edge(e)
		l.MinLen *= 2
		if l.LabelPos == dag.LabelCenter {
			continue
		}
		if gl.RankDir.Vertical() {
			l.Width += l.LabelOffset
		} else {
			l.Height += l.LabelOffset
		}
	}
	return nil
}

// injectLabelProxies adds an edge-proxy node midway between the ranks of
// the endpoints of every edge with a label size, so removing empty ranks
// keeps the rank its label will occupy.
func injectLabelProxies(g *dag.Graph) error {
	for _, e := range g.Edges() {
		l := g.Edge(e)
		if !truthy(l.Width) || !truthy(l.Height) {
			continue
		}
		v, w := g.Endpoints(e)
		vr, wr := g.Node(v).Rank, g.Node(w).Rank
		proxy := dag.NewNodeLabel(0, 0)
		proxy.Rank = vr + int(math.Floor(float64(wr-vr)/2))
		proxy.Ranked = true
		proxy.Edge = e
		g.AddDummy(dag.KindEdgeProxy, proxy, "_ep")
	}
	return nil
}

// removeLabelProxies records the rank of every edge-proxy on its edge and
// deletes the proxy.
func removeLabelProxies(g *dag.Graph) error {
	for _, v := range g.Nodes() {
		n := g.Node(v)
		if n.Kind != dag.KindEdgeProxy {
			continue
		}
		l := g.Edge(n.Edge)
		if l == nil {
			return errors.Internal("edge proxy %q lost its edge", g.NodeName(v))
		}
		l.LabelRank, l.HasLabelRank = n.Rank, true
		g.RemoveNode(v)
	}
	return nil
}

// fixupLabelCoords moves labels placed left or right of their edge off
// the line, undoing the width reserved for the offset.
func fixupLabelCoords(g *dag.Graph) error {
	for _, e := range g.Edges() {
		l := g.Edge(e)
		if !l.HasAnchor {
			continue
		}
		switch l.LabelPos {
		case dag.LabelLeft:
			l.Width -= l.LabelOffset
			l.X -= l.Width/2 + l.LabelOffset
		case dag.LabelRight:
			l.Width -= l.LabelOffset
			l.X += l.Width/2 + l.LabelOffset
		}
	}
	return nil
}

// truthy reports whether x counts as a present size: non-zero and a number.
func truthy(x float64) bool {
	return x != 0 && !math.IsNaN(x)
}
