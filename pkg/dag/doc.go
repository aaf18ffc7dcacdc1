// Package dag provides the working graph that layered layout passes mutate.
//
// # Overview
//
// A layout run copies the caller's graph into a [Graph]: a directed, compound
// multigraph whose nodes and edges are addressed by stable integer handles
// ([NodeID], [EdgeID]) assigned at insertion. Labels live in index-addressed
// storage, so an edge is fully described by its (source, target, name)
// triple plus its handle, and multi-edges never collide.
//
// Every pass in the pipeline receives the same *Graph and edits it in place:
// adding synthetic nodes, reversing edges, detaching self-loops, assigning
// ranks, orders and coordinates.
//
// # Node Kinds
//
// Synthetic nodes carry a [NodeKind] from a closed set:
//
//   - [KindBorder], [KindBorderLeft], [KindBorderRight]: compound boundaries
//   - [KindEdge], [KindEdgeLabel]: links of a normalised long edge
//   - [KindEdgeProxy]: temporary holder of an edge label's rank
//   - [KindSelfEdge]: ordering placeholder for a self-loop
//   - [KindRoot]: the nesting root
//
// Real nodes are [KindNormal]. Passes switch over kinds rather than
// comparing strings.
//
// # Removal and Restoration
//
// Removing a node or edge keeps its slot. A detached edge keeps its label,
// so passes such as self-edge handling and edge normalisation can take an
// edge out of the graph and later put it back with [Graph.RestoreEdge]
// under the same handle.
//
// # Layers
//
// [Graph.LayerMatrix] groups ranked nodes by rank and sorts each layer by
// order. [CountCrossings] counts weighted edge crossings over such a matrix using a
// Fenwick tree.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Every layout call builds
// its own graph, so independent calls may run in parallel.
package dag
