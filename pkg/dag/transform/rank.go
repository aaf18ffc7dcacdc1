package transform

import (
	"math"

	"github.com/matzehuels/stratum/pkg/dag"
	"github.com/matzehuels/stratum/pkg/errors"
)

// Ranker names accepted in the graph label.
const (
	RankerLongestPath = "longest-path"
	RankerTightTree   = "tight-tree"
)

// KnownRanker reports whether name selects a ranker. The empty name is
// known and means longest-path.
func KnownRanker(name string) bool {
	switch name {
	case "", RankerLongestPath, RankerTightTree:
		return true
	default:
		return false
	}
}

// Rank assigns an integer rank to every node that owns no children, so
// that rank(w) >= rank(v) + minlen for every edge v→w between such
// nodes. Compound nodes are skipped; their extent is carried by the
// border markers nested inside them.
//
// # Algorithm
//
// Longest path from the sinks: each node is placed minlen above the
// lowest of its successors, sinks at rank 0. Ranks are therefore
// non-positive until [NormalizeRanks] shifts them. The "tight-tree"
// ranker additionally lifts every node with only incoming edges to the
// highest rank its in-edges allow, shortening edges into sinks.
//
// Fractional minlen values are rounded up. An edge whose minlen is NaN
// or infinite constrains nothing, so its endpoints rank as if it were
// absent; a node whose only successors sit behind such edges lands on
// rank 0 like a sink.
//
// # Errors
//
// Rank returns CYCLIC_GRAPH if the graph still contains a cycle.
func Rank(g *dag.Graph) error {
	leaves := g.Leaves()
	isLeaf := make(map[dag.NodeID]bool, len(leaves))
	for _, v := range leaves {
		isLeaf[v] = true
	}

	const (
		unvisited = iota
		active
		done
	)
	state := make(map[dag.NodeID]int, len(leaves))

	var visit func(v dag.NodeID) (int, error)
	visit = func(v dag.NodeID) (int, error) {
		label := g.Node(v)
		switch state[v] {
		case done:
			return label.Rank, nil
		case active:
			return 0, errors.New(errors.ErrCodeCyclicGraph, "cycle through node %q", g.NodeName(v))
		}
		state[v] = active

		rank, found := 0, false
		for _, e := range g.OutEdges(v) {
			_, w := g.Endpoints(e)
			if !isLeaf[w] {
				continue
			}
			wr, err := visit(w)
			if err != nil {
				return 0, err
			}
			ml, ok := minLen(g, e)
			if !ok {
				continue
			}
			if r := wr - ml; !found || r < rank {
				rank, found = r, true
			}
		}

		label.Rank, label.Ranked = rank, true
		state[v] = done
		return rank, nil
	}

	for _, v := range leaves {
		if _, err := visit(v); err != nil {
			return err
		}
	}

	if g.Label().Ranker == RankerTightTree {
		tightenSinks(g, isLeaf)
	}
	return nil
}

// minLen returns the rank span e demands, or false when its minlen is
// not a finite number.
func minLen(g *dag.Graph, e dag.EdgeID) (int, bool) {
	m := g.Edge(e).MinLen
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return 0, false
	}
	return int(math.Ceil(m)), true
}

func tightenSinks(g *dag.Graph, isLeaf map[dag.NodeID]bool) {
	for v := range isLeaf {
		if len(g.InEdges(v)) == 0 || hasLeafTarget(g, v, isLeaf) {
			continue
		}
		rank, found := 0, false
		for _, e := range g.InEdges(v) {
			u, _ := g.Endpoints(e)
			if !isLeaf[u] {
				continue
			}
			ml, ok := minLen(g, e)
			if !ok {
				continue
			}
			if r := g.Node(u).Rank + ml; !found || r > rank {
				rank, found = r, true
			}
		}
		if found {
			g.Node(v).Rank = rank
		}
	}
}

func hasLeafTarget(g *dag.Graph, v dag.NodeID, isLeaf map[dag.NodeID]bool) bool {
	for _, e := range g.OutEdges(v) {
		if _, w := g.Endpoints(e); isLeaf[w] {
			return true
		}
	}
	return false
}

// NormalizeRanks shifts all ranks so the smallest becomes 0.
func NormalizeRanks(g *dag.Graph) {
	lo, found := 0, false
	for _, v := range g.Nodes() {
		if n := g.Node(v); n.Ranked && (!found || n.Rank < lo) {
			lo, found = n.Rank, true
		}
	}
	for _, v := range g.Nodes() {
		if n := g.Node(v); n.Ranked {
			n.Rank -= lo
		}
	}
}

// RemoveEmptyRanks closes gaps left by empty ranks, except ranks that are
// a multiple of the nesting rank factor, which separate nested levels.
func RemoveEmptyRanks(g *dag.Graph) {
	lo, hi, found := 0, 0, false
	for _, v := range g.Nodes() {
		n := g.Node(v)
		if !n.Ranked {
			continue
		}
		if !found || n.Rank < lo {
			lo = n.Rank
		}
		if !found || n.Rank > hi {
			hi = n.Rank
		}
		found = true
	}
	if !found {
		return
	}

	layers := make([][]dag.NodeID, hi-lo+1)
	for _, v := range g.Nodes() {
		if n := g.Node(v); n.Ranked {
			layers[n.Rank-lo] = append(layers[n.Rank-lo], v)
		}
	}

	factor := g.Label().NodeRankFactor
	delta := 0
	for i, vs := range layers {
		if len(vs) == 0 && (factor == 0 || i%factor != 0) {
			delta--
			continue
		}
		for _, v := range vs {
			g.Node(v).Rank += delta
		}
	}
}
