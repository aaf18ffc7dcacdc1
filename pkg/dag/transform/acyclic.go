package transform

import (
	"math"
	"slices"

	"github.com/matzehuels/stratum/pkg/dag"
)

// AcyclicerGreedy selects the greedy feedback-arc-set heuristic.
const AcyclicerGreedy = "greedy"

// Acyclic makes g acyclic by reversing a feedback edge set in place.
// Reversed edges keep their handle and label and are flagged with
// Reversed so [UndoAcyclic] can flip them back. It returns the number of
// edges reversed.
//
// The graph label's Acyclicer selects the heuristic: "greedy" uses the
// Eades-Lin-Smyth ordering, anything else a depth-first search that
// reverses back edges.
//
// Self-loops must already be detached; they can never be made acyclic by
// reversal.
func Acyclic(g *dag.Graph) int {
	var fas []dag.EdgeID
	if g.Label().Acyclicer == AcyclicerGreedy {
		fas = greedyFAS(g)
	} else {
		fas = dfsFAS(g)
	}
	for _, e := range fas {
		g.Edge(e).Reversed = true
		g.Reverse(e)
	}
	return len(fas)
}

// UndoAcyclic restores the original direction of every edge reversed by
// [Acyclic].
func UndoAcyclic(g *dag.Graph) {
	for _, e := range g.Edges() {
		if label := g.Edge(e); label.Reversed {
			label.Reversed = false
			g.Reverse(e)
		}
	}
}

func dfsFAS(g *dag.Graph) []dag.EdgeID {
	const (
		white = iota
		gray
		black
	)

	color := make(map[dag.NodeID]int)
	var fas []dag.EdgeID

	var dfs func(v dag.NodeID)
	dfs = func(v dag.NodeID) {
		color[v] = gray
		for _, e := range g.OutEdges(v) {
			_, w := g.Endpoints(e)
			switch color[w] {
			case white:
				dfs(w)
			case gray:
				fas = append(fas, e)
			}
		}
		color[v] = black
	}

	for _, v := range g.Nodes() {
		if color[v] == white {
			dfs(v)
		}
	}
	return fas
}

// greedyFAS orders the nodes by repeatedly peeling sinks to the back and
// sources to the front, falling back to the node with the largest
// out-weight minus in-weight. Edges pointing backwards in that order form
// the feedback set. Edge weights are summed over parallel edges.
func greedyFAS(g *dag.Graph) []dag.EdgeID {
	nodes := g.Nodes()
	in := make(map[dag.NodeID]float64, len(nodes))
	out := make(map[dag.NodeID]float64, len(nodes))
	inDeg := make(map[dag.NodeID]int, len(nodes))
	outDeg := make(map[dag.NodeID]int, len(nodes))
	for _, e := range g.Edges() {
		v, w := g.Endpoints(e)
		wt := fasWeight(g.Edge(e).Weight)
		out[v] += wt
		in[w] += wt
		outDeg[v]++
		inDeg[w]++
	}

	removed := make(map[dag.NodeID]bool, len(nodes))
	drop := func(v dag.NodeID) {
		removed[v] = true
		for _, e := range g.OutEdges(v) {
			_, w := g.Endpoints(e)
			in[w] -= fasWeight(g.Edge(e).Weight)
			inDeg[w]--
		}
		for _, e := range g.InEdges(v) {
			u, _ := g.Endpoints(e)
			out[u] -= fasWeight(g.Edge(e).Weight)
			outDeg[u]--
		}
	}

	var head, tail []dag.NodeID
	for len(removed) < len(nodes) {
		progress := true
		for progress {
			progress = false
			for _, v := range nodes {
				if removed[v] {
					continue
				}
				switch {
				case outDeg[v] == 0:
					tail = append(tail, v)
					drop(v)
					progress = true
				case inDeg[v] == 0:
					head = append(head, v)
					drop(v)
					progress = true
				}
			}
		}
		best, bestDelta := dag.None, math.Inf(-1)
		for _, v := range nodes {
			if removed[v] {
				continue
			}
			if d := out[v] - in[v]; best == dag.None || d > bestDelta {
				best, bestDelta = v, d
			}
		}
		if best != dag.None {
			head = append(head, best)
			drop(best)
		}
	}

	slices.Reverse(tail)
	pos := dag.PosMap(append(head, tail...))
	var fas []dag.EdgeID
	for _, e := range g.Edges() {
		v, w := g.Endpoints(e)
		if pos[v] > pos[w] {
			fas = append(fas, e)
		}
	}
	return fas
}

func fasWeight(w float64) float64 {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return 1
	}
	return w
}
