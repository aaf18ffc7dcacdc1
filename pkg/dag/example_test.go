package dag_test

import (
	"fmt"

	"github.com/matzehuels/stratum/pkg/dag"
)

func ExampleGraph_basic() {
	g := dag.New(nil)
	app, _ := g.AddNode("app", dag.NewNodeLabel(40, 20))
	lib, _ := g.AddNode("lib", dag.NewNodeLabel(40, 20))
	_, _ = g.AddEdge(app, lib, "", nil)

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Successors of app:", g.NodeName(g.Successors(app)[0]))
	// Output:
	// Nodes: 2
	// Edges: 1
	// Successors of app: lib
}

func ExampleGraph_RestoreEdge() {
	g := dag.New(nil)
	a, _ := g.AddNode("a", nil)
	e, _ := g.AddEdge(a, a, "loop", nil)

	g.RemoveEdge(e)
	fmt.Println("Edges after remove:", g.EdgeCount())

	_ = g.RestoreEdge(e)
	fmt.Println("Edges after restore:", g.EdgeCount())
	// Output:
	// Edges after remove: 0
	// Edges after restore: 1
}

func ExampleGraph_LayerMatrix() {
	g := dag.New(nil)
	for i, name := range []string{"a", "b", "c"} {
		label := dag.NewNodeLabel(0, 0)
		label.Rank, label.Ranked = i/2, true
		label.Order = -i
		_, _ = g.AddNode(name, label)
	}

	for r, layer := range g.LayerMatrix() {
		names := make([]string, len(layer))
		for i, v := range layer {
			names[i] = g.NodeName(v)
		}
		fmt.Println(r, names)
	}
	// Output:
	// 0 [b a]
	// 1 [c]
}
