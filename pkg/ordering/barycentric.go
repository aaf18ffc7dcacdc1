package ordering

import (
	"cmp"
	"slices"

	"github.com/matzehuels/stratum/pkg/dag"
)

// DefaultPasses is the sweep limit used when Barycentric.Passes is zero.
const DefaultPasses = 24

// stallLimit stops sweeping after this many passes without improvement.
const stallLimit = 4

// Barycentric implements the Sugiyama barycenter heuristic.
//
// Each node is pulled towards the average position of its neighbors in the
// adjacent rank, alternating top-down and bottom-up sweeps. After every
// sweep a transpose step swaps adjacent siblings while that reduces
// crossings. The best ordering seen is kept.
type Barycentric struct {
	// Passes caps the number of sweeps. Zero means DefaultPasses.
	Passes int
}

// Order implements [Orderer].
func (b Barycentric) Order(g *dag.Graph) error {
	ls, err := layers(g)
	if err != nil || len(ls) == 0 {
		return err
	}
	passes := b.Passes
	if passes <= 0 {
		passes = DefaultPasses
	}

	ls = initOrder(g, ls)
	s := &sorter{g: g}
	for i := range ls {
		ls[i] = s.sortLayer(ls[i], nil, false)
	}

	best := cloneLayers(ls)
	bestCC := dag.CountCrossings(g, ls)
	stalled := 0
	for i := 0; i < passes && stalled < stallLimit && bestCC > 0; i++ {
		if i%2 == 0 {
			for r := 1; r < len(ls); r++ {
				ls[r] = s.sortLayer(ls[r], dag.PosMap(ls[r-1]), true)
			}
		} else {
			for r := len(ls) - 2; r >= 0; r-- {
				ls[r] = s.sortLayer(ls[r], dag.PosMap(ls[r+1]), false)
			}
		}
		transpose(g, ls)

		if cc := dag.CountCrossings(g, ls); cc < bestCC {
			best, bestCC, stalled = cloneLayers(ls), cc, 0
		} else {
			stalled++
		}
	}

	apply(g, best)
	return nil
}

// initOrder walks the graph depth-first from the nodes of the lowest
// ranks, appending each node to its layer on first visit. Connected
// nodes start out close together.
func initOrder(g *dag.Graph, ls [][]dag.NodeID) [][]dag.NodeID {
	lo := 0
	for _, layer := range ls {
		if len(layer) > 0 {
			lo = g.Node(layer[0]).Rank
			break
		}
	}

	var nodes []dag.NodeID
	for _, layer := range ls {
		nodes = append(nodes, layer...)
	}
	out := make([][]dag.NodeID, len(ls))
	visited := make(map[dag.NodeID]bool, len(nodes))
	inLayers := make(map[dag.NodeID]bool, len(nodes))
	for _, v := range nodes {
		inLayers[v] = true
	}

	var dfs func(v dag.NodeID)
	dfs = func(v dag.NodeID) {
		if visited[v] || !inLayers[v] {
			return
		}
		visited[v] = true
		r := g.Node(v).Rank - lo
		out[r] = append(out[r], v)
		for _, w := range g.Successors(v) {
			dfs(w)
		}
	}
	for _, v := range nodes {
		dfs(v)
	}
	return out
}

type sorter struct {
	g *dag.Graph

	sum   map[dag.NodeID]float64
	count map[dag.NodeID]int
}

type item struct {
	id      dag.NodeID
	members []dag.NodeID
	sum     float64
	count   int
	index   int
}

// sortLayer reorders one layer by barycenter against ref, the positions
// of the adjacent layer. With fromIn the neighbors are taken from incoming
// edges, otherwise from outgoing ones. A nil ref keeps the current order
// and only restores compound contiguity.
func (s *sorter) sortLayer(layer []dag.NodeID, ref map[dag.NodeID]int, fromIn bool) []dag.NodeID {
	s.sum = make(map[dag.NodeID]float64, len(layer))
	s.count = make(map[dag.NodeID]int, len(layer))
	if ref != nil {
		for _, v := range layer {
			edges := s.g.OutEdges(v)
			if fromIn {
				edges = s.g.InEdges(v)
			}
			for _, e := range edges {
				u, w := s.g.Endpoints(e)
				other := w
				if fromIn {
					other = u
				}
				if p, ok := ref[other]; ok {
					s.sum[v] += float64(p)
					s.count[v]++
				}
			}
		}
	}
	return s.sortGroup(dag.None, layer)
}

func (s *sorter) sortGroup(parent dag.NodeID, members []dag.NodeID) []dag.NodeID {
	var left, right []dag.NodeID
	var items []*item
	byID := make(map[dag.NodeID]*item)

	for _, v := range members {
		if parent != dag.None && s.g.Parent(v) == parent {
			switch s.g.Node(v).Kind {
			case dag.KindBorderLeft:
				left = append(left, v)
				continue
			case dag.KindBorderRight:
				right = append(right, v)
				continue
			}
		}
		key := v
		for p := s.g.Parent(key); p != parent && p != dag.None; p = s.g.Parent(key) {
			key = p
		}
		it, ok := byID[key]
		if !ok {
			it = &item{id: key, index: len(items)}
			byID[key] = it
			items = append(items, it)
		}
		it.members = append(it.members, v)
		it.sum += s.sum[v]
		it.count += s.count[v]
	}

	out := make([]dag.NodeID, 0, len(members))
	out = append(out, left...)
	for _, it := range arrange(items) {
		if len(it.members) == 1 && it.members[0] == it.id {
			out = append(out, it.id)
			continue
		}
		out = append(out, s.sortGroup(it.id, it.members)...)
	}
	return append(out, right...)
}

// arrange sorts items with neighbors by barycenter and leaves the others
// in their original slots.
func arrange(items []*item) []*item {
	var sortable, fixed []*item
	for _, it := range items {
		if it.count > 0 {
			sortable = append(sortable, it)
		} else {
			fixed = append(fixed, it)
		}
	}
	slices.SortStableFunc(sortable, func(a, b *item) int {
		ba := a.sum / float64(a.count)
		bb := b.sum / float64(b.count)
		if c := cmp.Compare(ba, bb); c != 0 {
			return c
		}
		return cmp.Compare(a.index, b.index)
	})

	out := make([]*item, 0, len(items))
	fi := 0
	for _, it := range sortable {
		for fi < len(fixed) && fixed[fi].index <= len(out) {
			out = append(out, fixed[fi])
			fi++
		}
		out = append(out, it)
	}
	return append(out, fixed[fi:]...)
}

// transpose swaps adjacent siblings while doing so lowers the crossings
// around their layer. Border segments never move.
func transpose(g *dag.Graph, ls [][]dag.NodeID) {
	around := func(r int) float64 {
		var n float64
		if r > 0 {
			n += dag.CountLayerCrossings(g, ls[r-1], ls[r])
		}
		if r+1 < len(ls) {
			n += dag.CountLayerCrossings(g, ls[r], ls[r+1])
		}
		return n
	}
	swappable := func(v, w dag.NodeID) bool {
		if g.Parent(v) != g.Parent(w) {
			return false
		}
		kv, kw := g.Node(v).Kind, g.Node(w).Kind
		return kv != dag.KindBorderLeft && kv != dag.KindBorderRight &&
			kw != dag.KindBorderLeft && kw != dag.KindBorderRight
	}

	for round := 0; round < stallLimit; round++ {
		improved := false
		for r, layer := range ls {
			for i := 0; i+1 < len(layer); i++ {
				if !swappable(layer[i], layer[i+1]) {
					continue
				}
				before := around(r)
				layer[i], layer[i+1] = layer[i+1], layer[i]
				if around(r) < before {
					improved = true
				} else {
					layer[i], layer[i+1] = layer[i+1], layer[i]
				}
			}
		}
		if !improved {
			return
		}
	}
}

func cloneLayers(ls [][]dag.NodeID) [][]dag.NodeID {
	out := make([][]dag.NodeID, len(ls))
	for i, l := range ls {
		out[i] = slices.Clone(l)
	}
	return out
}
