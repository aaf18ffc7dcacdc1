// Package layout computes layered drawings of directed graphs.
//
// Given a [graph.Graph], possibly cyclic and possibly with nodes nested
// inside other nodes, [Layout] assigns every node a center, every compound
// node a box and every edge a polyline, then writes those results back
// onto the caller's attribute records.
//
// # Pipeline
//
// A layout copies the caller graph into a private working graph, runs a
// fixed sequence of passes over it and copies the results back. The
// sequence is:
//
//  1. Reserve space for edge labels and detach self-loops
//  2. Break cycles, add nesting constraints and rank
//  3. Record label ranks, split long edges into dummy chains
//  4. Add border segments, order ranks, reinsert self-loops as placeholders
//  5. Assign coordinates, route self-loops, size compound nodes
//  6. Collapse dummy chains, rotate for the rank direction, translate,
//     clip routes to node boundaries and restore reversed edges
//
// The order is load-bearing; each pass relies on what the previous ones
// left behind. Synthetic nodes never reach the caller.
//
// # Attributes
//
// Keys are read case-insensitively. Graph: ranksep (50), edgesep (20),
// nodesep (50), marginx (0), marginy (0), rankdir (tb), acyclicer,
// ranker, align. Node: width (0), height (0). Edge: minlen (1), weight
// (1), width (0), height (0), labeloffset (10), labelpos (r).
//
// Numeric values are converted loosely: numeric strings parse, booleans
// count as 0 or 1 and anything else becomes NaN, which propagates into the
// results instead of failing the call.
//
// # Example
//
//	g := graph.New()
//	g.AddNode("a", graph.Attrs{"width": 50, "height": 20})
//	g.AddNode("b", graph.Attrs{"width": 50, "height": 20})
//	g.AddEdge("a", "b", "", nil)
//	if err := layout.Layout(g, layout.Options{}); err != nil {
//	    return err
//	}
//	a, _ := g.Node("a")
//	p, _ := a.Position()
//
// # Concurrency
//
// Layout is synchronous. Separate graphs may be laid out concurrently; one
// graph must not be shared between concurrent calls.
package layout
