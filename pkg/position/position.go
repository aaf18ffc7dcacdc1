// Package position assigns coordinates to the nodes of a ranked, ordered
// layered graph.
//
// Positioning works in the canonical top-to-bottom frame: ranks are
// stacked along y, and x places nodes within a rank. Other rank directions
// are handled by rotating the graph before and after this step.
//
// # Vertical
//
// Every rank is as tall as its tallest node. Nodes are centered on their
// rank's midline and ranks are separated by the graph's RankSep.
//
// # Horizontal
//
// Nodes are pulled towards the median x of their neighbors in the adjacent
// rank, sweeping down and up the layers. Each rank is then fitted to those
// targets by weighted isotonic regression, which keeps the rank's order and
// the minimum separation between neighbors while moving every node as
// little as possible. Real nodes are separated by NodeSep and dummies by
// EdgeSep. The graph's Align setting (ul, ur, dl, dr) picks which
// neighbors a node aligns to; by default the up and down alignments are
// averaged.
//
// Only ranked nodes are positioned. Compound nodes get their box later
// from their border segments.
package position

import "github.com/matzehuels/stratum/pkg/dag"

// Position assigns y and then x to every ranked node of g.
func Position(g *dag.Graph) {
	PositionY(g)
	PositionX(g)
}

// PositionY stacks the ranks of g from y=0 downwards.
func PositionY(g *dag.Graph) {
	rankSep := g.Label().RankSep
	prevY := 0.0
	for _, layer := range g.LayerMatrix() {
		maxHeight := 0.0
		for _, v := range layer {
			if h := g.Node(v).Height; h > maxHeight {
				maxHeight = h
			}
		}
		for _, v := range layer {
			g.Node(v).Y = prevY + maxHeight/2
		}
		prevY += maxHeight + rankSep
	}
}
