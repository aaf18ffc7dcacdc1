package transform

import (
	"slices"

	"github.com/matzehuels/stratum/pkg/dag"
)

// NestingRun injects the constraints that keep compound nodes vertically
// compact during ranking.
//
// Every compound node receives a top and a bottom border marker, and
// weighted "nesting" edges tie each child between them. A single root
// dummy hangs above every top-level node so that the constraint graph is
// connected. All existing minlen values are multiplied by the rank factor
// 2*height+1, leaving room for border ranks between real ones; the factor
// is recorded in NodeRankFactor for [RemoveEmptyRanks].
func NestingRun(g *dag.Graph) {
	gl := g.Label()
	root := g.AddDummy(dag.KindRoot, nil, "_root")
	depths := treeDepths(g)
	height := 0
	for _, d := range depths {
		height = max(height, d)
	}
	height-- // depths are 1-based
	nodeSep := 2*height + 1

	gl.NestingRoot = root
	for _, e := range g.Edges() {
		g.Edge(e).MinLen *= float64(nodeSep)
	}

	weight := sumWeights(g) + 1
	n := &nester{g: g, root: root, nodeSep: nodeSep, weight: weight, height: height, depths: depths}
	for _, child := range slices.Clone(g.Children(dag.None)) {
		n.visit(child)
	}
	gl.NodeRankFactor = nodeSep
}

type nester struct {
	g       *dag.Graph
	root    dag.NodeID
	nodeSep int
	weight  float64
	height  int
	depths  map[dag.NodeID]int
}

func (n *nester) visit(v dag.NodeID) {
	g := n.g
	children := slices.Clone(g.Children(v))
	if len(children) == 0 {
		if v != n.root {
			_, _ = g.AddEdge(n.root, v, "", &dag.EdgeLabel{Weight: 0, MinLen: float64(n.nodeSep)})
		}
		return
	}

	top := g.AddDummy(dag.KindBorder, nil, "_bt")
	bottom := g.AddDummy(dag.KindBorder, nil, "_bb")
	label := g.Node(v)
	_ = g.SetParent(top, v)
	label.BorderTop = top
	_ = g.SetParent(bottom, v)
	label.BorderBottom = bottom

	for _, child := range children {
		n.visit(child)

		childLabel := g.Node(child)
		childTop, childBottom := child, child
		thisWeight := 2 * n.weight
		if childLabel.BorderTop != dag.None {
			childTop, childBottom = childLabel.BorderTop, childLabel.BorderBottom
			thisWeight = n.weight
		}
		minLen := 1
		if childTop == childBottom {
			minLen = n.height - n.depths[v] + 1
		}
		_, _ = g.AddEdge(top, childTop, "", &dag.EdgeLabel{Weight: thisWeight, MinLen: float64(minLen), NestingEdge: true})
		_, _ = g.AddEdge(childBottom, bottom, "", &dag.EdgeLabel{Weight: thisWeight, MinLen: float64(minLen), NestingEdge: true})
	}

	if g.Parent(v) == dag.None {
		_, _ = g.AddEdge(n.root, top, "", &dag.EdgeLabel{Weight: 0, MinLen: float64(n.height + n.depths[v])})
	}
}

// NestingCleanup removes the root dummy and every nesting edge added by
// [NestingRun]. Border markers stay; they are resolved after positioning.
func NestingCleanup(g *dag.Graph) {
	gl := g.Label()
	g.RemoveNode(gl.NestingRoot)
	gl.NestingRoot = dag.None
	for _, e := range g.Edges() {
		if g.Edge(e).NestingEdge {
			g.RemoveEdge(e)
		}
	}
}

func treeDepths(g *dag.Graph) map[dag.NodeID]int {
	depths := make(map[dag.NodeID]int)
	var walk func(v dag.NodeID, depth int)
	walk = func(v dag.NodeID, depth int) {
		for _, child := range g.Children(v) {
			walk(child, depth+1)
		}
		depths[v] = depth
	}
	for _, v := range g.Children(dag.None) {
		walk(v, 1)
	}
	return depths
}

func sumWeights(g *dag.Graph) float64 {
	total := 0.0
	for _, e := range g.Edges() {
		total += g.Edge(e).Weight
	}
	return total
}
