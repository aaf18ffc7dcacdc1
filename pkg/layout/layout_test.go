package layout

import (
	"bytes"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stratum/pkg/dag"
	"github.com/matzehuels/stratum/pkg/graph"
	"github.com/matzehuels/stratum/pkg/ordering"
)

type box struct{ x, y, w, h float64 }

func nodeBox(t *testing.T, g *graph.Graph, id string) box {
	t.Helper()
	n, ok := g.Node(id)
	require.True(t, ok, "node %s", id)
	p, ok := n.Position()
	require.True(t, ok, "node %s has no position", id)
	w, h := n.Size()
	return box{p.X, p.Y, w, h}
}

func edgePoints(t *testing.T, g *graph.Graph, v, w, name string) []graph.Point {
	t.Helper()
	e, ok := g.Edge(v, w, name)
	require.True(t, ok, "edge %s->%s", v, w)
	return e.Points()
}

func TestLayout_TwoNodes(t *testing.T) {
	g := graph.New()
	mustNode(t, g, "A", graph.Attrs{"width": 50, "height": 20})
	mustNode(t, g, "B", graph.Attrs{"width": 50, "height": 20})
	mustEdge(t, g, "A", "B", "", nil)

	require.NoError(t, Layout(g, Options{}))

	a, b := nodeBox(t, g, "A"), nodeBox(t, g, "B")
	assert.Equal(t, box{25, 10, 50, 20}, a)
	assert.Equal(t, box{25, 80, 50, 20}, b)

	pts := edgePoints(t, g, "A", "B", "")
	require.Len(t, pts, 3)
	assert.Equal(t, graph.Point{X: 25, Y: 20}, pts[0], "route starts on the bottom of A")
	assert.Equal(t, graph.Point{X: 25, Y: 45}, pts[1])
	assert.Equal(t, graph.Point{X: 25, Y: 70}, pts[2], "route ends on the top of B")

	w, h := g.Size()
	assert.Equal(t, 50.0, w)
	assert.Equal(t, 90.0, h)

	e, _ := g.Edge("A", "B", "")
	_, hasLabel := e.LabelPosition()
	assert.False(t, hasLabel)
}

func TestLayout_RankDir(t *testing.T) {
	tests := []struct {
		dir   string
		check func(t *testing.T, a, b box)
	}{
		{"tb", func(t *testing.T, a, b box) { assert.Greater(t, b.y, a.y); assert.InDelta(t, a.x, b.x, 1e-9) }},
		{"BT", func(t *testing.T, a, b box) { assert.Less(t, b.y, a.y); assert.InDelta(t, a.x, b.x, 1e-9) }},
		{"lr", func(t *testing.T, a, b box) { assert.Greater(t, b.x, a.x); assert.InDelta(t, a.y, b.y, 1e-9) }},
		{"RL", func(t *testing.T, a, b box) { assert.Less(t, b.x, a.x); assert.InDelta(t, a.y, b.y, 1e-9) }},
	}
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			g := graph.New()
			g.Attrs.Set("rankdir", tt.dir)
			mustNode(t, g, "A", graph.Attrs{"width": 50, "height": 20})
			mustNode(t, g, "B", graph.Attrs{"width": 50, "height": 20})
			mustEdge(t, g, "A", "B", "", nil)

			require.NoError(t, Layout(g, Options{}))
			tt.check(t, nodeBox(t, g, "A"), nodeBox(t, g, "B"))

			n, _ := g.Node("A")
			w, h := n.Size()
			assert.Equal(t, 50.0, w, "caller sizes are not rotated")
			assert.Equal(t, 20.0, h)
		})
	}
}

func TestLayout_PreservesIdentity(t *testing.T) {
	g := graph.New()
	for _, id := range []string{"cluster", "a", "b", "c", "d"} {
		mustNode(t, g, id, graph.Attrs{"width": 30, "height": 30})
	}
	_ = g.SetParent("a", "cluster")
	_ = g.SetParent("b", "cluster")
	mustEdge(t, g, "a", "b", "", graph.Attrs{"width": 20, "height": 10})
	mustEdge(t, g, "b", "c", "", nil)
	mustEdge(t, g, "c", "a", "", nil)
	mustEdge(t, g, "c", "c", "loop", nil)
	mustEdge(t, g, "a", "d", "", graph.Attrs{"minlen": 3})
	mustEdge(t, g, "a", "d", "second", nil)

	before := ids(g)
	require.NoError(t, Layout(g, Options{}))
	assert.Equal(t, before, ids(g))

	for _, n := range g.Nodes() {
		_, ok := n.Position()
		assert.True(t, ok, "node %s has no position", n.ID)
	}
	for _, e := range g.Edges() {
		assert.NotEmpty(t, e.Points(), "edge %s has no route", e.Key())
	}
}

func ids(g *graph.Graph) []string {
	var out []string
	for _, n := range g.Nodes() {
		out = append(out, "node:"+n.ID)
	}
	for _, e := range g.Edges() {
		out = append(out, "edge:"+e.Key())
	}
	return out
}

func TestLayout_SelfLoops(t *testing.T) {
	g := graph.New()
	mustNode(t, g, "a", graph.Attrs{"width": 40, "height": 20})
	for _, name := range []string{"1", "2", "3"} {
		mustEdge(t, g, "a", "a", name, nil)
	}

	require.NoError(t, Layout(g, Options{}))

	a := nodeBox(t, g, "a")
	prevBulge := a.x + a.w/2
	for _, name := range []string{"1", "2", "3"} {
		pts := edgePoints(t, g, "a", "a", name)
		require.Len(t, pts, 5, "loop %s", name)
		assert.InDelta(t, a.y-a.h/2, pts[0].Y, 1e-9)
		assert.InDelta(t, a.y+a.h/2, pts[4].Y, 1e-9)
		assert.Greater(t, pts[2].X, prevBulge, "loop %s bulges further than the one before", name)
		prevBulge = pts[2].X
	}
}

func TestLayout_EdgeLabelRank(t *testing.T) {
	g := graph.New()
	mustNode(t, g, "A", graph.Attrs{"width": 50, "height": 20})
	mustNode(t, g, "B", graph.Attrs{"width": 50, "height": 20})
	mustEdge(t, g, "A", "B", "", graph.Attrs{"width": 40, "height": 20, "minlen": 2})

	w, err := buildGraph(g)
	require.NoError(t, err)
	ps := passes(ordering.Default())
	until := slices.IndexFunc(ps, func(p pass) bool { return p.name == passRemoveLabelProxies })
	require.GreaterOrEqual(t, until, 1)

	require.NoError(t, runPasses(w, ps[:1], &timer{}))
	assert.Equal(t, 4.0, w.Edge(0).MinLen)

	require.NoError(t, runPasses(w, ps[1:until+1], &timer{}))
	l := w.Edge(0)
	require.True(t, l.HasLabelRank)
	ra, rb := w.Node(0).Rank, w.Node(1).Rank
	assert.Less(t, ra, l.LabelRank)
	assert.Less(t, l.LabelRank, rb)

	require.NoError(t, Layout(g, Options{}))
	e, _ := g.Edge("A", "B", "")
	p, ok := e.LabelPosition()
	require.True(t, ok)
	a, b := nodeBox(t, g, "A"), nodeBox(t, g, "B")
	assert.Greater(t, p.Y, a.y)
	assert.Less(t, p.Y, b.y)
	assert.Greater(t, p.X, a.x, "labels default to the right of the edge")
}

func TestLayout_Margins(t *testing.T) {
	g := graph.New()
	g.Attrs.Set("marginx", 13)
	g.Attrs.Set("marginy", "7.5")
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		mustNode(t, g, id, graph.Attrs{"width": 10 + float64(len(id))*7, "height": 15})
	}
	mustNode(t, g, "wide", graph.Attrs{"width": 120, "height": 40})
	mustEdge(t, g, "a", "b", "", nil)
	mustEdge(t, g, "a", "c", "", nil)
	mustEdge(t, g, "b", "d", "", nil)
	mustEdge(t, g, "c", "d", "", nil)
	mustEdge(t, g, "a", "e", "", nil)
	mustEdge(t, g, "wide", "e", "", nil)

	require.NoError(t, Layout(g, Options{}))

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range g.Nodes() {
		b := nodeBox(t, g, n.ID)
		minX = math.Min(minX, b.x-b.w/2)
		minY = math.Min(minY, b.y-b.h/2)
		maxX = math.Max(maxX, b.x+b.w/2)
		maxY = math.Max(maxY, b.y+b.h/2)
	}
	assert.InDelta(t, 13, minX, 1e-9)
	assert.InDelta(t, 7.5, minY, 1e-9)

	w, h := g.Size()
	assert.InDelta(t, maxX+13, w, 1e-9)
	assert.InDelta(t, maxY+7.5, h, 1e-9)
}

func TestLayout_CaseInsensitive(t *testing.T) {
	build := func(widthKey, heightKey string) *graph.Graph {
		g := graph.New()
		g.Attrs.Set("RankSep", 30)
		mustNode(t, g, "a", graph.Attrs{widthKey: 10, heightKey: 10})
		mustNode(t, g, "b", graph.Attrs{"width": 10, "height": 10})
		mustNode(t, g, "c", graph.Attrs{"width": 10, "height": 10})
		mustEdge(t, g, "a", "b", "", nil)
		mustEdge(t, g, "a", "c", "", nil)
		return g
	}
	upper, lower := build("Width", "HEIGHT"), build("width", "height")
	require.NoError(t, Layout(upper, Options{}))
	require.NoError(t, Layout(lower, Options{}))

	for _, id := range []string{"a", "b", "c"} {
		assert.Equal(t, nodeBox(t, lower, id), nodeBox(t, upper, id), "node %s", id)
	}
	for _, w := range []string{"b", "c"} {
		if diff := cmp.Diff(edgePoints(t, lower, "a", w, ""), edgePoints(t, upper, "a", w, "")); diff != "" {
			t.Errorf("route a->%s mismatch (-lower +upper):\n%s", w, diff)
		}
	}
}

// assertNested checks that every node with a parent lies inside the
// parent's box.
func assertNested(t *testing.T, g *graph.Graph) {
	t.Helper()
	const eps = 1e-6
	for _, n := range g.Nodes() {
		if n.Parent == "" {
			continue
		}
		c, p := nodeBox(t, g, n.ID), nodeBox(t, g, n.Parent)
		assert.GreaterOrEqual(t, c.x-c.w/2, p.x-p.w/2-eps, "%s leaves %s on the left", n.ID, n.Parent)
		assert.LessOrEqual(t, c.x+c.w/2, p.x+p.w/2+eps, "%s leaves %s on the right", n.ID, n.Parent)
		assert.GreaterOrEqual(t, c.y-c.h/2, p.y-p.h/2-eps, "%s leaves %s at the top", n.ID, n.Parent)
		assert.LessOrEqual(t, c.y+c.h/2, p.y+p.h/2+eps, "%s leaves %s at the bottom", n.ID, n.Parent)
	}
}

func TestLayout_Compound(t *testing.T) {
	type node struct {
		id, parent string
		w, h       float64
	}
	tests := []struct {
		name  string
		nodes []node
		edges [][2]string
	}{
		{
			name:  "single cluster",
			nodes: []node{{"cluster", "", 0, 0}, {"a", "cluster", 40, 20}, {"b", "cluster", 60, 20}},
			edges: [][2]string{{"a", "b"}},
		},
		{
			name: "nested clusters",
			nodes: []node{
				{"outer", "", 0, 0}, {"inner", "outer", 0, 0}, {"deep", "inner", 0, 0},
				{"a", "outer", 30, 20}, {"b", "inner", 50, 20}, {"c", "deep", 20, 40}, {"d", "deep", 70, 10},
			},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"a", "d"}},
		},
		{
			name: "cluster spanning several ranks",
			nodes: []node{
				{"cluster", "", 0, 0},
				{"a", "cluster", 20, 20}, {"b", "cluster", 90, 20}, {"c", "cluster", 20, 60}, {"d", "cluster", 40, 20},
				{"x", "", 120, 20},
			},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"x", "d"}},
		},
		{
			name: "edges crossing cluster boundaries",
			nodes: []node{
				{"left", "", 0, 0}, {"right", "", 0, 0},
				{"a", "left", 30, 20}, {"b", "left", 30, 20}, {"c", "right", 30, 20}, {"d", "right", 30, 20},
				{"top", "", 50, 30}, {"bottom", "", 50, 30},
			},
			edges: [][2]string{
				{"top", "a"}, {"top", "c"}, {"a", "d"}, {"c", "b"},
				{"a", "b"}, {"b", "bottom"}, {"d", "bottom"}, {"top", "bottom"},
			},
		},
		{
			// a narrow member of c0 above a wide node of c1
			name: "clusters sharing a rank",
			nodes: []node{
				{"c0", "", 0, 0}, {"c1", "", 0, 0},
				{"n0", "c0", 22, 26}, {"n1", "", 35, 26}, {"n2", "c1", 42, 14},
			},
			edges: [][2]string{{"n2", "n1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New()
			for _, n := range tt.nodes {
				var attrs graph.Attrs
				if n.w > 0 {
					attrs = graph.Attrs{"width": n.w, "height": n.h}
				}
				mustNode(t, g, n.id, attrs)
			}
			for _, n := range tt.nodes {
				require.NoError(t, g.SetParent(n.id, n.parent))
			}
			for _, e := range tt.edges {
				mustEdge(t, g, e[0], e[1], "", nil)
			}
			before := ids(g)

			require.NoError(t, Layout(g, Options{}))

			assert.Equal(t, before, ids(g), "no helper nodes or edges leak into the result")
			for _, n := range tt.nodes {
				b := nodeBox(t, g, n.id)
				if len(g.Children(n.id)) > 0 {
					assert.Greater(t, b.w, 0.0, "%s width", n.id)
					assert.Greater(t, b.h, 0.0, "%s height", n.id)
				}
			}
			assertNested(t, g)
		})
	}

	t.Run("leaves only gain x and y", func(t *testing.T) {
		g := graph.New()
		mustNode(t, g, "cluster", nil)
		mustNode(t, g, "a", graph.Attrs{"width": 40, "height": 20})
		require.NoError(t, g.SetParent("a", "cluster"))

		require.NoError(t, Layout(g, Options{}))

		leaf, _ := g.Node("a")
		assert.Len(t, leaf.Attrs, 4)
	})
}

// TestLayout_CompoundContainmentRandom lays out seeded random clustered
// graphs and checks that no child escapes its parent in any direction.
func TestLayout_CompoundContainmentRandom(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := range 60 {
		nLeaves := 3 + rng.IntN(10)
		nClusters := 1 + rng.IntN(4)
		type spec struct {
			parents map[string]string
			sizes   map[string][2]float64
			edges   [][2]string
		}
		s := spec{parents: map[string]string{}, sizes: map[string][2]float64{}}
		clusters := make([]string, nClusters)
		for c := range clusters {
			clusters[c] = fmt.Sprintf("c%d", c)
			// only earlier clusters can be parents, so nesting stays acyclic
			if c > 0 && rng.IntN(2) == 0 {
				s.parents[clusters[c]] = clusters[rng.IntN(c)]
			}
		}
		leaves := make([]string, nLeaves)
		for l := range leaves {
			leaves[l] = fmt.Sprintf("n%d", l)
			s.sizes[leaves[l]] = [2]float64{float64(10 + rng.IntN(50)), float64(10 + rng.IntN(30))}
			if k := rng.IntN(nClusters + 1); k < nClusters {
				s.parents[leaves[l]] = clusters[k]
			}
		}
		seen := map[[2]string]bool{}
		for range rng.IntN(2 * nLeaves) {
			v, w := leaves[rng.IntN(nLeaves)], leaves[rng.IntN(nLeaves)]
			if v == w || seen[[2]string{v, w}] {
				continue
			}
			seen[[2]string{v, w}] = true
			s.edges = append(s.edges, [2]string{v, w})
		}

		for _, dir := range []string{"tb", "bt", "lr", "rl"} {
			t.Run(fmt.Sprintf("graph%d/%s", i, dir), func(t *testing.T) {
				g := graph.New()
				g.Attrs.Set("rankdir", dir)
				for _, c := range clusters {
					mustNode(t, g, c, nil)
				}
				for _, l := range leaves {
					mustNode(t, g, l, graph.Attrs{"width": s.sizes[l][0], "height": s.sizes[l][1]})
				}
				for id, p := range s.parents {
					require.NoError(t, g.SetParent(id, p))
				}
				for _, e := range s.edges {
					mustEdge(t, g, e[0], e[1], "", nil)
				}

				require.NoError(t, Layout(g, Options{}))
				assertNested(t, g)
			})
		}
	}
}

func TestLayout_Cycle(t *testing.T) {
	for _, acyclicer := range []string{"", "greedy"} {
		t.Run("acyclicer="+acyclicer, func(t *testing.T) {
			g := graph.New()
			g.Attrs.Set("acyclicer", acyclicer)
			for _, id := range []string{"a", "b", "c"} {
				mustNode(t, g, id, graph.Attrs{"width": 20, "height": 20})
			}
			mustEdge(t, g, "a", "b", "", nil)
			mustEdge(t, g, "b", "c", "", nil)
			mustEdge(t, g, "c", "a", "", nil)

			require.NoError(t, Layout(g, Options{}))

			for _, e := range g.Edges() {
				pts := e.Points()
				require.GreaterOrEqual(t, len(pts), 2)
				v, w := nodeBox(t, g, e.V), nodeBox(t, g, e.W)
				first, last := pts[0], pts[len(pts)-1]
				assert.Less(t, dist(first, v), dist(first, w), "%s starts at its source", e.Key())
				assert.Less(t, dist(last, w), dist(last, v), "%s ends at its target", e.Key())
			}
		})
	}
}

func dist(p graph.Point, b box) float64 {
	return math.Hypot(p.X-b.x, p.Y-b.y)
}

func TestLayout_MalformedNumbers(t *testing.T) {
	t.Run("SizeBecomesNaN", func(t *testing.T) {
		g := graph.New()
		mustNode(t, g, "a", graph.Attrs{"width": "wide", "height": 10})
		mustNode(t, g, "b", graph.Attrs{"width": 10, "height": 10})
		mustEdge(t, g, "a", "b", "", nil)

		require.NoError(t, Layout(g, Options{}))
		w, _ := g.Size()
		assert.True(t, math.IsNaN(w), "width = %v, want NaN", w)
	})

	t.Run("MinLenConstrainsNothing", func(t *testing.T) {
		g := graph.New()
		mustNode(t, g, "a", graph.Attrs{"width": 10, "height": 10})
		mustNode(t, g, "b", graph.Attrs{"width": 10, "height": 10})
		mustEdge(t, g, "a", "b", "", graph.Attrs{"minlen": "long"})

		require.NoError(t, Layout(g, Options{}))

		// without a usable minlen both nodes share the sink rank
		a, b := nodeBox(t, g, "a"), nodeBox(t, g, "b")
		assert.Equal(t, a.y, b.y)
		assert.NotEqual(t, a.x, b.x)
		assert.NotEmpty(t, edgePoints(t, g, "a", "b", ""))
	})
}

func TestLayout_EmptyGraph(t *testing.T) {
	g := graph.New()
	g.Attrs.Set("marginx", 4)
	require.NoError(t, Layout(g, Options{}))
	w, h := g.Size()
	assert.Equal(t, 8.0, w)
	assert.Equal(t, 0.0, h)
}

func TestLayout_DebugTiming(t *testing.T) {
	build := func() *graph.Graph {
		g := graph.New()
		mustNode(t, g, "a", graph.Attrs{"width": 10, "height": 10})
		mustNode(t, g, "b", graph.Attrs{"width": 10, "height": 10})
		mustEdge(t, g, "a", "b", "", nil)
		mustEdge(t, g, "b", "b", "", nil)
		return g
	}

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	timed, plain := build(), build()
	require.NoError(t, Layout(timed, Options{DebugTiming: true, Logger: logger}))
	require.NoError(t, Layout(plain, Options{Logger: logger}))

	out := buf.String()
	for _, name := range []string{"buildLayoutGraph", "runLayout", passReserveLabelSpace, passAcyclicUndo, "updateInputGraph", "layout"} {
		assert.Contains(t, out, name)
	}
	assert.Equal(t, 1, strings.Count(out, passTranslate), "only the timed call logs")

	for _, id := range []string{"a", "b"} {
		assert.Equal(t, nodeBox(t, plain, id), nodeBox(t, timed, id))
	}
}

func TestLayout_UnknownRanker(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{})

	g := graph.New()
	g.Attrs.Set("ranker", "network-simplex")
	mustNode(t, g, "a", nil)
	mustNode(t, g, "b", nil)
	mustEdge(t, g, "a", "b", "", nil)

	require.NoError(t, Layout(g, Options{Logger: logger}))
	assert.Contains(t, buf.String(), "unknown ranker")
}

func TestPasses_Order(t *testing.T) {
	var names []string
	for _, p := range passes(ordering.Default()) {
		names = append(names, p.name)
	}
	want := []string{
		"makeSpaceForEdgeLabels", "removeSelfEdges", "acyclic", "nestingGraph.run", "rank",
		"injectEdgeLabelProxies", "removeEmptyRanks", "nestingGraph.cleanup", "normalizeRanks",
		"assignRankMinMax", "removeEdgeLabelProxies", "normalize.run", "parentDummyChains",
		"addBorderSegments", "order", "insertSelfEdges", "adjustCoordinateSystem", "position",
		"positionSelfEdges", "removeBorderNodes", "normalize.undo", "fixupEdgeLabelCoords",
		"undoCoordinateSystem", "translateGraph", "assignNodeIntersects", "reversePoints",
		"acyclic.undo",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("pass order mismatch (-want +got):\n%s", diff)
	}
}

func TestLayout_NoDummiesLeak(t *testing.T) {
	g := graph.New()
	for _, id := range []string{"outer", "inner", "a", "b", "c"} {
		mustNode(t, g, id, graph.Attrs{"width": 20, "height": 20})
	}
	_ = g.SetParent("inner", "outer")
	_ = g.SetParent("a", "inner")
	_ = g.SetParent("b", "outer")
	mustEdge(t, g, "a", "b", "", graph.Attrs{"width": 10, "height": 10, "labelpos": "l"})
	mustEdge(t, g, "c", "a", "", graph.Attrs{"minlen": 2})
	mustEdge(t, g, "b", "b", "", nil)

	w, err := buildGraph(g)
	require.NoError(t, err)
	require.NoError(t, runPasses(w, passes(ordering.Default()), &timer{}))

	assert.Equal(t, g.NodeCount(), w.NodeCount())
	assert.Equal(t, g.EdgeCount(), w.EdgeCount())
	for _, v := range w.Nodes() {
		assert.Equal(t, dag.KindNormal, w.Node(v).Kind, "node %s", w.NodeName(v))
	}
}
