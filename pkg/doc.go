// Package pkg provides the libraries behind Stratum, a layered graph layout
// engine.
//
// # Overview
//
// Stratum takes a directed graph with sized nodes and computes a layered
// (Sugiyama-style) drawing: every node gets a center, every edge a
// polyline route, and the graph a bounding size. The pkg directory is
// organized in three areas:
//
//  1. Model: [graph] is the caller-facing graph with free-form attributes,
//     [dag] is the working multigraph the layout passes mutate.
//  2. Algorithms: [dag/transform] ranks, normalizes and nests the working
//     graph, [ordering] minimizes crossings and [position] assigns
//     coordinates. [layout] runs them as one pipeline.
//  3. Infrastructure: [cache], [pipeline], [config], [io], [observability],
//     [errors] and [buildinfo] serve the command-line tool.
//
// # Data flow
//
//	graph.Graph (JSON)
//	     ↓
//	[layout] builds a dag.Graph from the attributes
//	     ↓
//	acyclic → rank → nesting → normalize → order → position
//	     ↓
//	results written back as x, y, points, width, height
//
// # Quick Start
//
//	g := graph.New()
//	g.AddNode("a", graph.Attrs{"width": 40, "height": 20})
//	g.AddNode("b", graph.Attrs{"width": 40, "height": 20})
//	g.AddEdge("a", "b", "", nil)
//
//	if err := layout.Layout(g, layout.Options{}); err != nil {
//	    return err
//	}
//	a, _ := g.Node("a")
//	p, _ := a.Position()
//
// Cached layouts go through a [pipeline.Runner]:
//
//	store, _ := cache.NewFileCache(dir)
//	r := pipeline.NewRunner(store, nil, logger)
//	res, err := r.Layout(ctx, g, pipeline.Options{})
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/graph
// [dag]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/dag/transform
// [ordering]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/ordering
// [position]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/position
// [layout]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/layout
// [cache]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/pipeline#Runner
// [config]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/config
// [io]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/io
// [observability]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/stratum/pkg/buildinfo
package pkg
