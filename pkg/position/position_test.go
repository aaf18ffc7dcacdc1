package position

import (
	"math"
	"testing"

	"github.com/matzehuels/stratum/pkg/dag"
)

type fixture struct {
	t   *testing.T
	g   *dag.Graph
	ids map[string]dag.NodeID
}

func newFixture(t *testing.T, label *dag.GraphLabel) *fixture {
	return &fixture{t: t, g: dag.New(label), ids: make(map[string]dag.NodeID)}
}

func (f *fixture) node(name string, rank, order int, w, h float64) {
	f.t.Helper()
	l := dag.NewNodeLabel(w, h)
	l.Rank, l.Ranked, l.Order = rank, true, order
	id, err := f.g.AddNode(name, l)
	if err != nil {
		f.t.Fatalf("AddNode(%q) error: %v", name, err)
	}
	f.ids[name] = id
}

func (f *fixture) edge(v, w string) {
	f.t.Helper()
	if _, err := f.g.AddEdge(f.ids[v], f.ids[w], "", nil); err != nil {
		f.t.Fatal(err)
	}
}

func (f *fixture) n(name string) *dag.NodeLabel { return f.g.Node(f.ids[name]) }

func TestPositionY(t *testing.T) {
	f := newFixture(t, &dag.GraphLabel{RankSep: 50})
	f.node("a", 0, 0, 10, 20)
	f.node("b", 0, 1, 10, 40)
	f.node("c", 1, 0, 10, 10)

	PositionY(f.g)

	tests := []struct {
		name string
		want float64
	}{
		{"a", 20},
		{"b", 20},
		{"c", 40 + 50 + 5},
	}
	for _, tt := range tests {
		if got := f.n(tt.name).Y; got != tt.want {
			t.Errorf("y(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPositionX_Separation(t *testing.T) {
	f := newFixture(t, &dag.GraphLabel{NodeSep: 50, EdgeSep: 20})
	f.node("a", 0, 0, 30, 10)
	f.node("b", 0, 1, 70, 10)
	f.node("c", 0, 2, 10, 10)

	PositionX(f.g)

	if d := f.n("b").X - f.n("a").X; d < 15+35+50-1e-9 {
		t.Errorf("x(b)-x(a) = %v, want >= 100", d)
	}
	if d := f.n("c").X - f.n("b").X; d < 35+5+50-1e-9 {
		t.Errorf("x(c)-x(b) = %v, want >= 90", d)
	}
}

func TestPositionX_ChainIsStraight(t *testing.T) {
	for _, align := range []string{"", "ul", "ur", "dl", "dr"} {
		t.Run("align="+align, func(t *testing.T) {
			f := newFixture(t, &dag.GraphLabel{NodeSep: 50, EdgeSep: 20, Align: align})
			f.node("a", 0, 0, 50, 20)
			f.node("b", 1, 0, 50, 20)
			f.node("c", 2, 0, 50, 20)
			f.edge("a", "b")
			f.edge("b", "c")

			PositionX(f.g)

			if f.n("a").X != f.n("b").X || f.n("b").X != f.n("c").X {
				t.Errorf("x = %v, %v, %v, want equal", f.n("a").X, f.n("b").X, f.n("c").X)
			}
		})
	}
}

func TestPositionX_ParentCenteredOverChildren(t *testing.T) {
	f := newFixture(t, &dag.GraphLabel{NodeSep: 50, EdgeSep: 20})
	f.node("p", 0, 0, 10, 10)
	f.node("l", 1, 0, 10, 10)
	f.node("r", 1, 1, 10, 10)
	f.edge("p", "l")
	f.edge("p", "r")

	PositionX(f.g)

	mid := (f.n("l").X + f.n("r").X) / 2
	if math.Abs(f.n("p").X-mid) > 1e-9 {
		t.Errorf("x(p) = %v, want %v", f.n("p").X, mid)
	}
	if f.n("r").X-f.n("l").X < 60-1e-9 {
		t.Errorf("children overlap: %v, %v", f.n("l").X, f.n("r").X)
	}
}

func TestPositionX_EdgeLabelExtent(t *testing.T) {
	f := newFixture(t, &dag.GraphLabel{NodeSep: 0, EdgeSep: 0})
	f.node("lbl", 0, 0, 40, 10)
	f.node("n", 0, 1, 0, 0)
	f.n("lbl").Kind = dag.KindEdgeLabel
	f.n("lbl").LabelPos = dag.LabelRight

	PositionX(f.g)

	if d := f.n("n").X - f.n("lbl").X; d < 40-1e-9 {
		t.Errorf("right-placed label reserves %v, want 40", d)
	}
}

func TestIsotonic(t *testing.T) {
	tests := []struct {
		name string
		ys   []float64
		ws   []float64
		want []float64
	}{
		{"sorted", []float64{1, 2, 3}, []float64{1, 1, 1}, []float64{1, 2, 3}},
		{"pooled", []float64{3, 1}, []float64{1, 1}, []float64{2, 2}},
		{"weighted", []float64{4, 0}, []float64{3, 1}, []float64{3, 3}},
		{"empty", nil, nil, []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isotonic(tt.ys, tt.ws)
			if len(got) != len(tt.want) {
				t.Fatalf("isotonic() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("isotonic() = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestMedian(t *testing.T) {
	xs := func() []float64 { return []float64{4, 0, 2, 8} }
	if got := median(xs(), biasNone); got != 3 {
		t.Errorf("median() = %v, want 3", got)
	}
	if got := median(xs(), biasLeft); got != 2 {
		t.Errorf("median(left) = %v, want 2", got)
	}
	if got := median(xs(), biasRight); got != 4 {
		t.Errorf("median(right) = %v, want 4", got)
	}
	if got := median([]float64{5, 1, 3}, biasNone); got != 3 {
		t.Errorf("median(odd) = %v, want 3", got)
	}
}
