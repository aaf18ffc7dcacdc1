// Package graph holds the caller-owned side of a layout: a directed,
// compound multigraph with free-form attribute records.
//
// Nodes are identified by string IDs and may be nested inside other nodes.
// Edges are identified by (source, target, name), so parallel edges need
// distinct names. Attribute keys are case-preserving but read
// case-insensitively, see [Attrs.Get].
//
// # Serialization
//
// Graphs use a node-link JSON format:
//
//	{
//	  "graph": {"rankdir": "lr"},
//	  "nodes": [{"id": "a", "attrs": {"width": 50, "height": 20}},
//	            {"id": "b", "parent": "g"}],
//	  "edges": [{"v": "a", "w": "b", "attrs": {"minlen": 2}}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("in.json")
//	graph.WriteGraphFile(g, "out.json")
//	data, _ := graph.MarshalGraph(g)
//
// # Results
//
// A layout writes x and y onto every node, width and height onto compound
// nodes, points onto every edge and x and y onto edges with a label size.
// [Node.Position], [Edge.Points] and [Graph.Size] read them back.
//
// # Concurrency
//
// A Graph is not safe for concurrent use.
package graph
