// Package ordering decides the left-to-right sequence of nodes within each
// rank of a layered graph.
//
// # The Ordering Problem
//
// Edge crossings between adjacent ranks make a layered drawing hard to
// read. Finding an order with the minimum number of crossings is NP-hard,
// so orderers are heuristics: they return a good order, not a provably
// optimal one.
//
// # Compound Nodes
//
// Members of a compound node always occupy one contiguous run within each
// rank, enclosed by the compound's left and right border segments. The
// orderers in this package sort whole compound blocks as units and then
// sort inside each block recursively.
//
// # Usage
//
// The [Orderer] interface allows algorithms to be used interchangeably:
//
//	var orderer ordering.Orderer = ordering.Barycentric{Passes: 24}
//	if err := orderer.Order(g); err != nil {
//	    // a node was left without a rank
//	}
//
// The result is written to each node's Order field.
package ordering

import (
	"github.com/matzehuels/stratum/pkg/dag"
	"github.com/matzehuels/stratum/pkg/errors"
)

// Orderer assigns an Order to every ranked node of g. Orders are
// contiguous from 0 within each rank.
type Orderer interface {
	Order(g *dag.Graph) error
}

// DefaultName names the orderer returned by Default.
const DefaultName = "barycentric"

// Default returns the orderer used when none is configured.
func Default() Orderer {
	return Barycentric{}
}

// layers groups the ranked leaves of g by rank, starting at the lowest
// rank. It fails with UNASSIGNED_RANK if a node that should carry a rank
// does not.
func layers(g *dag.Graph) ([][]dag.NodeID, error) {
	leaves := g.Leaves()
	lo, hi := 0, -1
	for i, v := range leaves {
		n := g.Node(v)
		if !n.Ranked {
			return nil, errors.New(errors.ErrCodeUnassignedRank, "node %q has no rank", g.NodeName(v))
		}
		if i == 0 || n.Rank < lo {
			lo = n.Rank
		}
		if i == 0 || n.Rank > hi {
			hi = n.Rank
		}
	}
	if hi < lo {
		return nil, nil
	}
	out := make([][]dag.NodeID, hi-lo+1)
	for _, v := range leaves {
		r := g.Node(v).Rank - lo
		out[r] = append(out[r], v)
	}
	return out, nil
}

func apply(g *dag.Graph, ls [][]dag.NodeID) {
	for _, layer := range ls {
		for i, v := range layer {
			g.Node(v).Order = i
		}
	}
}
