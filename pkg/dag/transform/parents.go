package transform

import (
	"slices"

	"github.com/matzehuels/stratum/pkg/dag"
)

// ParentDummyChains moves every dummy created by [NormalizeEdges] into the
// compound node it passes through. A chain climbs from its source's
// ancestors up to the lowest common ancestor of both endpoints, then
// descends towards the target's ancestors, switching parent whenever the
// dummy's rank leaves the current compound's rank span.
//
// Compound rank spans (MinRank, MaxRank) must already be assigned.
func ParentDummyChains(g *dag.Graph) {
	post := postorder(g)

	for _, v := range g.Label().DummyChains {
		node := g.Node(v)
		if node == nil {
			continue
		}
		src, dst := g.Endpoints(node.Edge)
		path, lca := findPath(g, post, src, dst)

		idx := 0
		pathV := path[idx]
		ascending := true
		for v != dst && g.HasNode(v) {
			node = g.Node(v)
			if ascending {
				for {
					pathV = path[idx]
					if pathV == lca || g.Node(pathV).MaxRank >= node.Rank {
						break
					}
					idx++
				}
				if pathV == lca {
					ascending = false
				}
			}
			if !ascending {
				for idx < len(path)-1 && g.Node(path[idx+1]).MinRank <= node.Rank {
					idx++
				}
				pathV = path[idx]
			}
			_ = g.SetParent(v, pathV)

			out := g.OutEdges(v)
			if len(out) == 0 {
				break
			}
			_, v = g.Endpoints(out[0])
		}
	}
}

type postNum struct{ low, lim int }

func postorder(g *dag.Graph) map[dag.NodeID]postNum {
	result := make(map[dag.NodeID]postNum)
	lim := 0
	var walk func(v dag.NodeID)
	walk = func(v dag.NodeID) {
		low := lim
		for _, c := range g.Children(v) {
			walk(c)
		}
		result[v] = postNum{low: low, lim: lim}
		lim++
	}
	for _, v := range g.Children(dag.None) {
		walk(v)
	}
	return result
}

// findPath returns the ancestors of v up to and including the lowest
// common ancestor of v and w, followed by the ancestors of w below it,
// outermost first. The ancestor None stands for the root.
func findPath(g *dag.Graph, post map[dag.NodeID]postNum, v, w dag.NodeID) ([]dag.NodeID, dag.NodeID) {
	low := min(post[v].low, post[w].low)
	lim := max(post[v].lim, post[w].lim)

	var vPath []dag.NodeID
	parent := v
	for {
		parent = g.Parent(parent)
		vPath = append(vPath, parent)
		if parent == dag.None || (post[parent].low <= low && lim <= post[parent].lim) {
			break
		}
	}
	lca := parent

	var wPath []dag.NodeID
	for parent = g.Parent(w); parent != lca && parent != dag.None; parent = g.Parent(parent) {
		wPath = append(wPath, parent)
	}
	slices.Reverse(wPath)
	return append(vPath, wPath...), lca
}
