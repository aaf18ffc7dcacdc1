package transform

import "github.com/matzehuels/stratum/pkg/dag"

// AdjustCoordinateSystem rotates sizes into the canonical top-to-bottom
// frame before positioning. For lr and rl layouts widths and heights are
// swapped; tb and bt need nothing.
func AdjustCoordinateSystem(g *dag.Graph) {
	if !g.Label().RankDir.Vertical() {
		swapWidthHeight(g)
	}
}

// UndoCoordinateSystem maps positions from the canonical frame back to the
// graph's rank direction: bt and rl mirror the y axis, lr and rl swap the
// axes and restore sizes.
func UndoCoordinateSystem(g *dag.Graph) {
	dir := g.Label().RankDir
	if dir == dag.RankDirBT || dir == dag.RankDirRL {
		reverseY(g)
	}
	if !dir.Vertical() {
		swapXY(g)
		swapWidthHeight(g)
	}
}

func swapWidthHeight(g *dag.Graph) {
	for _, v := range g.Nodes() {
		n := g.Node(v)
		n.Width, n.Height = n.Height, n.Width
	}
	for _, e := range g.Edges() {
		l := g.Edge(e)
		l.Width, l.Height = l.Height, l.Width
	}
}

func reverseY(g *dag.Graph) {
	for _, v := range g.Nodes() {
		n := g.Node(v)
		n.Y = -n.Y
	}
	for _, e := range g.Edges() {
		l := g.Edge(e)
		for i := range l.Points {
			l.Points[i].Y = -l.Points[i].Y
		}
		if l.HasAnchor {
			l.Y = -l.Y
		}
	}
}

func swapXY(g *dag.Graph) {
	for _, v := range g.Nodes() {
		n := g.Node(v)
		n.X, n.Y = n.Y, n.X
	}
	for _, e := range g.Edges() {
		l := g.Edge(e)
		for i := range l.Points {
			l.Points[i].X, l.Points[i].Y = l.Points[i].Y, l.Points[i].X
		}
		if l.HasAnchor {
			l.X, l.Y = l.Y, l.X
		}
	}
}
