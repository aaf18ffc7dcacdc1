package layout

import (
	"github.com/matzehuels/stratum/pkg/dag"
	"github.com/matzehuels/stratum/pkg/graph"
)

// writeResults copies the layout onto the caller graph: x and y for every
// node, the box of compound nodes, every route, the label anchor of edges
// that have one and the drawing size. Nothing else is written.
func writeResults(g *graph.Graph, w *dag.Graph) {
	for i, n := range g.Nodes() {
		v := dag.NodeID(i)
		l := w.Node(v)
		n.Attrs.Set("x", l.X)
		n.Attrs.Set("y", l.Y)
		if w.IsCompound(v) {
			n.Attrs.Set("width", l.Width)
			n.Attrs.Set("height", l.Height)
		}
	}

	for i, e := range g.Edges() {
		l := w.Edge(dag.EdgeID(i))
		points := make([]graph.Point, len(l.Points))
		for j, p := range l.Points {
			points[j] = graph.Point{X: p.X, Y: p.Y}
		}
		e.Attrs.Set("points", points)
		if l.HasAnchor {
			e.Attrs.Set("x", l.X)
			e.Attrs.Set("y", l.Y)
		}
	}

	gl := w.Label()
	g.Attrs.Set("width", gl.Width)
	g.Attrs.Set("height", gl.Height)
}
