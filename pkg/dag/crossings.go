package dag

import (
	"cmp"
	"slices"
)

// PosMap maps each node in a layer to its index.
func PosMap(layer []NodeID) map[NodeID]int {
	m := make(map[NodeID]int, len(layer))
	for i, v := range layer {
		m[v] = i
	}
	return m
}

// CountCrossings sums [CountLayerCrossings] over every pair of adjacent
// layers of a [Graph.LayerMatrix].
func CountCrossings(g *Graph, layers [][]NodeID) float64 {
	var total float64
	for i := 1; i < len(layers); i++ {
		total += CountLayerCrossings(g, layers[i-1], layers[i])
	}
	return total
}

// CountLayerCrossings returns the weighted number of crossings between the
// edges running from upper to lower. Edges (u1,v1) and (u2,v2) cross when
// u1 is left of u2 and v1 right of v2, and the pair contributes the product
// of their weights.
//
// Edges are visited in upper order while a Fenwick tree over lower
// positions accumulates the weight already seen, so the count takes
// O(E log V).
func CountLayerCrossings(g *Graph, upper, lower []NodeID) float64 {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}
	lowerPos := PosMap(lower)

	type entry struct {
		from, to int
		weight   float64
	}
	var entries []entry
	for i, v := range upper {
		for _, e := range g.OutEdges(v) {
			_, w := g.Endpoints(e)
			if pos, ok := lowerPos[w]; ok {
				entries = append(entries, entry{i, pos, g.Edge(e).Weight})
			}
		}
	}
	if len(entries) < 2 {
		return 0
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(a.from, b.from); c != 0 {
			return c
		}
		return cmp.Compare(a.to, b.to)
	})

	tree := make([]float64, len(lower)+1)
	var crossings, seen float64
	for _, en := range entries {
		// weight of earlier edges ending at or left of en.to
		var atOrLeft float64
		for i := en.to + 1; i > 0; i -= i & -i {
			atOrLeft += tree[i]
		}
		crossings += en.weight * (seen - atOrLeft)

		seen += en.weight
		for i := en.to + 1; i < len(tree); i += i & -i {
			tree[i] += en.weight
		}
	}
	return crossings
}
