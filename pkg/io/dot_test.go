package io

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stratum/pkg/graph"
	"github.com/matzehuels/stratum/pkg/layout"
)

// twoNodes is a->b laid out by hand: a at (25,10), b at (25,80), 50x90.
func twoNodes(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	_, err := g.AddNode("a", graph.Attrs{"width": 50, "height": 20, "x": 25.0, "y": 10.0})
	require.NoError(t, err)
	_, err = g.AddNode("b", graph.Attrs{"width": 50, "height": 20, "x": 25.0, "y": 80.0, "label": `say "hi"`})
	require.NoError(t, err)
	_, err = g.AddEdge("a", "b", "", graph.Attrs{
		"points": []graph.Point{{X: 25, Y: 20}, {X: 25, Y: 45}, {X: 25, Y: 70}},
	})
	require.NoError(t, err)
	g.Attrs.Set("width", 50.0)
	g.Attrs.Set("height", 90.0)
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(twoNodes(t))

	assert.True(t, strings.HasPrefix(dot, "digraph G {\n"))
	assert.True(t, strings.HasSuffix(dot, "}\n"))
	assert.Contains(t, dot, `bb="0,0,50,90";`)
	assert.Contains(t, dot, `"a" [label="a", width=0.69, height=0.28, pos="25,80!"];`)
	assert.Contains(t, dot, `"b" [label="say \"hi\"", width=0.69, height=0.28, pos="25,10!"];`)
	// last segment shortened by the arrow length, arrow tip at e,
	assert.Contains(t, dot, `"a" -> "b" [pos="e,25,20 25,70 25,70 25,45 25,45 25,45 25,28 25,28"];`)
}

func TestToDOTCompound(t *testing.T) {
	g := graph.New()
	_, err := g.AddNode("cluster", nil)
	require.NoError(t, err)
	_, err = g.AddNode("x", graph.Attrs{"width": 10, "height": 10})
	require.NoError(t, err)
	require.NoError(t, g.SetParent("x", "cluster"))
	require.NoError(t, layout.Layout(g, layout.Options{}))

	dot := ToDOT(g)
	ci := strings.Index(dot, `  "cluster" [`)
	xi := strings.Index(dot, `  "x" [`)
	require.True(t, ci >= 0 && xi >= 0, dot)
	assert.Less(t, ci, xi, "compound box must be drawn before its members")
	assert.Contains(t, dot[ci:xi], `style="dashed,rounded", labelloc=t`)
}

func TestToDOTEdgeLabel(t *testing.T) {
	g := graph.New()
	_, _ = g.AddNode("a", nil)
	_, _ = g.AddNode("b", nil)
	_, err := g.AddEdge("a", "b", "", graph.Attrs{"label": "uses", "x": 40.0, "y": 30.0})
	require.NoError(t, err)
	g.Attrs.Set("height", 100.0)

	dot := ToDOT(g)
	assert.Contains(t, dot, `"a" -> "b" [label="uses", lp="40,70"];`)
	assert.Contains(t, dot, `"a" [label="a"];`, "unplaced node has no pos")
}

func TestRenderSVG(t *testing.T) {
	g := twoNodes(t)
	path := filepath.Join(t.TempDir(), "preview.svg")
	require.NoError(t, WriteSVGFile(context.Background(), g, path))

	svg, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
	assert.Contains(t, string(svg), ">a</text>")
}
