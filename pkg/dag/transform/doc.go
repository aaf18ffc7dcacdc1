// Package transform implements the graph passes a layered layout is built
// from, each mutating a [dag.Graph] in place.
//
// # Overview
//
// Layered drawing needs the input graph massaged into a canonical shape
// before nodes can be ordered and positioned:
//
//   - No cycles: [Acyclic] reverses a feedback edge set, [UndoAcyclic]
//     flips it back once routing is done.
//   - Compound nodes constrain ranking: [NestingRun] adds border markers
//     and nesting edges, [NestingCleanup] removes the scaffolding again.
//   - Every node has a rank: [Rank], then [RemoveEmptyRanks] and
//     [NormalizeRanks].
//   - Every edge spans one rank: [NormalizeEdges] inserts dummy chains,
//     [DenormalizeEdges] turns them back into route points.
//   - Dummies belong to the right compound: [ParentDummyChains].
//   - Compounds have left/right walls per rank: [AddBorderSegments].
//   - Ranks always run top to bottom while positioning:
//     [AdjustCoordinateSystem] and [UndoCoordinateSystem].
//
// # Reversibility
//
// Passes that come in pairs never delete caller edges. Reversed edges keep
// their handle and carry Reversed; normalized edges are detached and
// restored by handle. Edge labels therefore survive the whole pipeline
// and collect the results.
//
// # Ordering
//
// The passes have strict ordering dependencies and are sequenced by the
// layout package. Calling them out of order produces undefined layouts.
package transform
