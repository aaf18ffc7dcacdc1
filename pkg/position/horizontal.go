package position

import (
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/stratum/pkg/dag"
)

// sweeps is the number of alignment sweeps per run.
const sweeps = 8

// isolatedWeight is the pull of a node without neighbors in the reference
// rank. It only keeps such nodes close to their left neighbor.
const isolatedWeight = 0.1

// borderWeight is the pull of a border segment towards the outermost
// segment of its compound.
const borderWeight = 100

// medianBias picks the lower or upper median when a node has an even
// number of neighbors.
type medianBias int

const (
	biasNone medianBias = iota
	biasLeft
	biasRight
)

// PositionX assigns x to every ranked node of g. Nodes keep the order of
// their rank and neighbors are at least the separation apart.
func PositionX(g *dag.Graph) {
	layers := g.LayerMatrix()
	if len(layers) == 0 {
		return
	}
	s := &xsolver{g: g, layers: layers, nodeSep: g.Label().NodeSep, edgeSep: g.Label().EdgeSep}

	var xs map[dag.NodeID]float64
	switch align := strings.ToLower(g.Label().Align); align {
	case "ul", "ur", "dl", "dr":
		bias := biasLeft
		if align[1] == 'r' {
			bias = biasRight
		}
		xs = s.run(align[0] == 'u', bias)
	default:
		down := s.run(true, biasNone)
		up := s.run(false, biasNone)
		xs = make(map[dag.NodeID]float64, len(down))
		for v, x := range down {
			xs[v] = (x + up[v]) / 2
		}
	}

	s.x = xs
	s.widenCompounds()
	for v, x := range s.x {
		g.Node(v).X = x
	}
}

type xsolver struct {
	g       *dag.Graph
	layers  [][]dag.NodeID
	nodeSep float64
	edgeSep float64

	x map[dag.NodeID]float64
}

// run packs every rank, then sweeps. With alignUp the final sweep aligns
// nodes to their predecessors, otherwise to their successors.
func (s *xsolver) run(alignUp bool, bias medianBias) map[dag.NodeID]float64 {
	s.x = make(map[dag.NodeID]float64)
	for _, layer := range s.layers {
		x := 0.0
		for i, v := range layer {
			if i > 0 {
				x += s.sep(layer[i-1], v)
			}
			s.x[v] = x
		}
		// center every rank on 0
		shift := x / 2
		for _, v := range layer {
			s.x[v] -= shift
		}
	}

	for i := 0; i < sweeps; i++ {
		// the last sweep goes in the requested direction
		down := (sweeps-1-i)%2 == 0
		if !alignUp {
			down = !down
		}
		if down {
			for r := 1; r < len(s.layers); r++ {
				s.fit(s.layers[r], true, bias)
			}
		} else {
			for r := len(s.layers) - 2; r >= 0; r-- {
				s.fit(s.layers[r], false, bias)
			}
		}
	}
	return s.x
}

// fit moves one rank towards the median of each node's neighbors in the
// rank above (fromIn) or below.
func (s *xsolver) fit(layer []dag.NodeID, fromIn bool, bias medianBias) {
	targets := make([]float64, len(layer))
	weights := make([]float64, len(layer))
	for i, v := range layer {
		if xs := s.neighborXs(v, fromIn); len(xs) > 0 {
			targets[i] = median(xs, bias)
			weights[i] = 1
			continue
		}
		weights[i] = isolatedWeight
		switch {
		case i > 0:
			targets[i] = s.x[layer[i-1]] + s.sep(layer[i-1], v)
		case i+1 < len(layer):
			targets[i] = s.x[layer[i+1]] - s.sep(v, layer[i+1])
		default:
			targets[i] = s.x[v]
		}
	}
	s.solve(layer, targets, weights)
}

func (s *xsolver) neighborXs(v dag.NodeID, fromIn bool) []float64 {
	var xs []float64
	edges := s.g.OutEdges(v)
	if fromIn {
		edges = s.g.InEdges(v)
	}
	rank := s.g.Node(v).Rank
	for _, e := range edges {
		u, w := s.g.Endpoints(e)
		other := w
		if fromIn {
			other = u
		}
		n := s.g.Node(other)
		if n == nil || !n.Ranked || n.Rank == rank {
			continue
		}
		if x, ok := s.x[other]; ok {
			xs = append(xs, x)
		}
	}
	return xs
}

// solve places layer as close to targets as the separation constraints
// allow, minimizing the weighted squared displacement.
func (s *xsolver) solve(layer []dag.NodeID, targets, weights []float64) {
	offsets := make([]float64, len(layer))
	for i := 1; i < len(layer); i++ {
		offsets[i] = offsets[i-1] + s.sep(layer[i-1], layer[i])
	}
	shifted := make([]float64, len(layer))
	for i := range targets {
		shifted[i] = targets[i] - offsets[i]
	}
	fitted := isotonic(shifted, weights)
	for i, v := range layer {
		s.x[v] = fitted[i] + offsets[i]
	}
}

// widenCompounds pulls the border segments of a compound toward the
// outermost segment on its side, so compound sides come out straight. The
// box itself is measured from the extreme segments, not from these.
func (s *xsolver) widenCompounds() {
	left := make(map[dag.NodeID]float64)
	right := make(map[dag.NodeID]float64)
	for _, v := range s.g.Nodes() {
		n := s.g.Node(v)
		if len(n.BorderLeft) == 0 || len(n.BorderRight) == 0 {
			continue
		}
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, b := range n.BorderLeft {
			lo = min(lo, s.x[b])
		}
		for _, b := range n.BorderRight {
			hi = max(hi, s.x[b])
		}
		for _, b := range n.BorderLeft {
			left[b] = lo
		}
		for _, b := range n.BorderRight {
			right[b] = hi
		}
	}
	if len(left) == 0 {
		return
	}

	for _, layer := range s.layers {
		targets := make([]float64, len(layer))
		weights := make([]float64, len(layer))
		for i, v := range layer {
			targets[i], weights[i] = s.x[v], 1
			if x, ok := left[v]; ok {
				targets[i], weights[i] = x, borderWeight
			} else if x, ok := right[v]; ok {
				targets[i], weights[i] = x, borderWeight
			}
		}
		s.solve(layer, targets, weights)
	}
}

// sep is the minimum distance between the centers of u and its right
// neighbor v.
func (s *xsolver) sep(u, v dag.NodeID) float64 {
	_, ur := s.extent(u)
	vl, _ := s.extent(v)
	return ur + vl + (s.gap(u)+s.gap(v))/2
}

func (s *xsolver) gap(v dag.NodeID) float64 {
	if s.g.Node(v).Kind.IsDummy() {
		return s.edgeSep
	}
	return s.nodeSep
}

// extent is how far v reaches left and right of its x. Edge labels placed
// beside their edge reach only to one side.
func (s *xsolver) extent(v dag.NodeID) (left, right float64) {
	n := s.g.Node(v)
	if n.Kind == dag.KindEdgeLabel {
		switch n.LabelPos {
		case dag.LabelLeft:
			return n.Width, 0
		case dag.LabelRight:
			return 0, n.Width
		}
	}
	return n.Width / 2, n.Width / 2
}

func median(xs []float64, bias medianBias) float64 {
	slices.Sort(xs)
	n := len(xs)
	if n%2 == 1 {
		return xs[n/2]
	}
	switch bias {
	case biasLeft:
		return xs[n/2-1]
	case biasRight:
		return xs[n/2]
	default:
		return (xs[n/2-1] + xs[n/2]) / 2
	}
}
