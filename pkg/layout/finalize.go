package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/stratum/pkg/dag"
)

// translateGraph moves the drawing so its bounding box, including label
// anchors, starts at the margins, and records the final size. A margin
// that is not a number counts as zero.
func translateGraph(g *dag.Graph) error {
	gl := g.Label()
	marginX, marginY := orZero(gl.MarginX), orZero(gl.MarginY)

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	found := false
	extend := func(x, y, w, h float64) {
		minX = math.Min(minX, x-w/2)
		maxX = math.Max(maxX, x+w/2)
		minY = math.Min(minY, y-h/2)
		maxY = math.Max(maxY, y+h/2)
		found = true
	}
	for _, v := range g.Nodes() {
		n := g.Node(v)
		extend(n.X, n.Y, n.Width, n.Height)
	}
	for _, e := range g.Edges() {
		if l := g.Edge(e); l.HasAnchor {
			extend(l.X, l.Y, l.Width, l.Height)
		}
	}
	if !found {
		gl.Width, gl.Height = 2*marginX, 2*marginY
		return nil
	}

	minX -= marginX
	minY -= marginY
	for _, v := range g.Nodes() {
		n := g.Node(v)
		n.X -= minX
		n.Y -= minY
	}
	for _, e := range g.Edges() {
		l := g.Edge(e)
		for i := range l.Points {
			l.Points[i].X -= minX
			l.Points[i].Y -= minY
		}
		if l.HasAnchor {
			l.X -= minX
			l.Y -= minY
		}
	}
	gl.Width = maxX - minX + marginX
	gl.Height = maxY - minY + marginY
	return nil
}

// assignNodeIntersects clips every route to the boundaries of its end
// nodes. A route without points runs between the two centers. Loops keep
// the five points they were given.
func assignNodeIntersects(g *dag.Graph) error {
	for _, e := range g.Edges() {
		v, w := g.Endpoints(e)
		if v == w {
			continue
		}
		l := g.Edge(e)
		nv, nw := g.Node(v), g.Node(w)
		var p1, p2 dag.Point
		if len(l.Points) == 0 {
			p1 = dag.Point{X: nw.X, Y: nw.Y}
			p2 = dag.Point{X: nv.X, Y: nv.Y}
		} else {
			p1 = l.Points[0]
			p2 = l.Points[len(l.Points)-1]
		}
		pts := make([]dag.Point, 0, len(l.Points)+2)
		pts = append(pts, intersectRect(nv, p1))
		pts = append(pts, l.Points...)
		l.Points = append(pts, intersectRect(nw, p2))
	}
	return nil
}

// intersectRect returns where the segment from the center of n to p
// crosses the boundary of n. If p is the center itself, the center is
// returned.
func intersectRect(n *dag.NodeLabel, p dag.Point) dag.Point {
	x, y := n.X, n.Y
	dx, dy := p.X-x, p.Y-y
	w, h := n.Width/2, n.Height/2
	if dx == 0 && dy == 0 {
		return dag.Point{X: x, Y: y}
	}

	var sx, sy float64
	if dx == 0 || math.Abs(dy)*w > math.Abs(dx)*h {
		if dy < 0 {
			h = -h
		}
		sx = h * dx / dy
		sy = h
	} else {
		if dx < 0 {
			w = -w
		}
		sx = w
		sy = w * dy / dx
	}
	return dag.Point{X: x + sx, Y: y + sy}
}

// reversePoints restores the drawing direction of edges the cycle breaker
// turned around.
func reversePoints(g *dag.Graph) error {
	for _, e := range g.Edges() {
		if l := g.Edge(e); l.Reversed {
			slices.Reverse(l.Points)
		}
	}
	return nil
}

func orZero(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return x
}
