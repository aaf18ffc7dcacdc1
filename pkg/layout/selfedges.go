package layout

import (
	"github.com/matzehuels/stratum/pkg/dag"
	"github.com/matzehuels/stratum/pkg/errors"
)

// removeSelfEdges detaches every loop and parks it on its node until the
// final order is known.
func removeSelfEdges(g *dag.Graph) error {
	for _, e := range g.Edges() {
		v, w := g.Endpoints(e)
		if v != w {
			continue
		}
		n := g.Node(v)
		n.SelfEdges = append(n.SelfEdges, dag.SelfEdge{Edge: e})
		g.RemoveEdge(e)
	}
	return nil
}

// insertSelfEdges puts a placeholder sized like the loop's label right of
// its node for every parked loop, shifting the rest of the rank along.
func insertSelfEdges(g *dag.Graph) error {
	for _, layer := range g.LayerMatrix() {
		shift := 0
		for i, v := range layer {
			n := g.Node(v)
			n.Order = i + shift
			for _, se := range n.SelfEdges {
				l := g.Edge(se.Edge)
				if l == nil {
					return errors.Internal("self-edge of %q has no label", g.NodeName(v))
				}
				shift++
				d := dag.NewNodeLabel(l.Width, l.Height)
				d.Rank, d.Ranked = n.Rank, true
				d.Order = i + shift
				d.Edge = se.Edge
				g.AddDummy(dag.KindSelfEdge, d, "_se")
			}
			n.SelfEdges = nil
		}
	}
	return nil
}

// positionSelfEdges turns every placeholder back into its loop. The loop
// leaves the right side of the node and bulges out as far as the
// placeholder was placed.
func positionSelfEdges(g *dag.Graph) error {
	for _, v := range g.Nodes() {
		d := g.Node(v)
		if d.Kind != dag.KindSelfEdge {
			continue
		}
		l := g.Edge(d.Edge)
		owner, _ := g.Endpoints(d.Edge)
		n := g.Node(owner)
		if l == nil || n == nil {
			return errors.Internal("self-edge placeholder %q lost its edge", g.NodeName(v))
		}

		x := n.X + n.Width/2
		y := n.Y
		dx := d.X - x
		dy := n.Height / 2
		if err := g.RestoreEdge(d.Edge); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "restore self-edge of %q", g.NodeName(owner))
		}
		g.RemoveNode(v)
		l.Points = []dag.Point{
			{X: x + 2*dx/3, Y: y - dy},
			{X: x + 5*dx/6, Y: y - dy},
			{X: x + dx, Y: y},
			{X: x + 5*dx/6, Y: y + dy},
			{X: x + 2*dx/3, Y: y + dy},
		}
		l.SetAnchor(d.X, d.Y)
	}
	return nil
}
