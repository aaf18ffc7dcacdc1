package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/stratum/pkg/dag"
	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/graph"
)

// GraphOptions are the graph-level attributes a layout reads.
type GraphOptions struct {
	RankSep float64
	EdgeSep float64
	NodeSep float64
	MarginX float64
	MarginY float64

	Acyclicer string
	Ranker    string
	RankDir   string
	Align     string
}

// NodeOptions are the node attributes a layout reads.
type NodeOptions struct {
	Width  float64
	Height float64
}

// EdgeOptions are the edge attributes a layout reads.
type EdgeOptions struct {
	MinLen      float64
	Weight      float64
	Width       float64
	Height      float64
	LabelOffset float64
	LabelPos    string
}

// DefaultGraphOptions returns the graph defaults applied to missing keys.
func DefaultGraphOptions() GraphOptions {
	return GraphOptions{RankSep: 50, EdgeSep: 20, NodeSep: 50, RankDir: "tb"}
}

// DefaultEdgeOptions returns the edge defaults applied to missing keys.
func DefaultEdgeOptions() EdgeOptions {
	return EdgeOptions{MinLen: 1, Weight: 1, LabelOffset: 10, LabelPos: "r"}
}

// ParseGraphOptions reads the whitelisted graph attributes of a.
// Keys are matched case-insensitively; values that do not convert to a
// number become NaN.
func ParseGraphOptions(a graph.Attrs) GraphOptions {
	c := a.Canonical()
	o := DefaultGraphOptions()
	number(c, "ranksep", &o.RankSep)
	number(c, "edgesep", &o.EdgeSep)
	number(c, "nodesep", &o.NodeSep)
	number(c, "marginx", &o.MarginX)
	number(c, "marginy", &o.MarginY)
	text(c, "acyclicer", &o.Acyclicer)
	text(c, "ranker", &o.Ranker)
	text(c, "rankdir", &o.RankDir)
	text(c, "align", &o.Align)
	return o
}

// ParseNodeOptions reads the whitelisted node attributes of a.
func ParseNodeOptions(a graph.Attrs) NodeOptions {
	c := a.Canonical()
	var o NodeOptions
	number(c, "width", &o.Width)
	number(c, "height", &o.Height)
	return o
}

// ParseEdgeOptions reads the whitelisted edge attributes of a.
func ParseEdgeOptions(a graph.Attrs) EdgeOptions {
	c := a.Canonical()
	o := DefaultEdgeOptions()
	number(c, "minlen", &o.MinLen)
	number(c, "weight", &o.Weight)
	number(c, "width", &o.Width)
	number(c, "height", &o.Height)
	number(c, "labeloffset", &o.LabelOffset)
	text(c, "labelpos", &o.LabelPos)
	return o
}

func number(attrs map[string]any, key string, dst *float64) {
	if v, ok := attrs[key]; ok {
		*dst = toNumber(v)
	}
}

func text(attrs map[string]any, key string, dst *string) {
	v, ok := attrs[key]
	if !ok || v == nil {
		return
	}
	if s, ok := v.(string); ok {
		*dst = s
		return
	}
	*dst = fmt.Sprint(v)
}

// toNumber converts an attribute value the way a loosely typed caller
// expects: numeric strings parse, empty strings and nil are zero, booleans
// are 0 or 1, everything else is NaN.
func toNumber(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case fmt.Stringer:
		return parseNumber(n.String())
	case string:
		return parseNumber(n)
	}
	return math.NaN()
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	lower := strings.ToLower(s)
	if len(lower) > 2 && lower[0] == '0' && strings.ContainsRune("xob", rune(lower[1])) {
		if strings.ContainsRune(lower, '_') {
			return math.NaN()
		}
		n, err := strconv.ParseUint(lower, 0, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	// ParseFloat also accepts inf, nan and underscores
	if strings.ContainsAny(lower, "n_xp") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// buildGraph copies the caller graph into a fresh working graph. Caller
// node i becomes handle i and caller edge i becomes handle i.
func buildGraph(g *graph.Graph) (*dag.Graph, error) {
	gopts := ParseGraphOptions(g.Attrs)
	w := dag.New(&dag.GraphLabel{
		RankSep:   gopts.RankSep,
		EdgeSep:   gopts.EdgeSep,
		NodeSep:   gopts.NodeSep,
		MarginX:   gopts.MarginX,
		MarginY:   gopts.MarginY,
		RankDir:   dag.ParseRankDir(gopts.RankDir),
		Acyclicer: strings.ToLower(strings.TrimSpace(gopts.Acyclicer)),
		Ranker:    strings.ToLower(strings.TrimSpace(gopts.Ranker)),
		Align:     gopts.Align,
	})

	nodes := g.Nodes()
	for _, n := range nodes {
		o := ParseNodeOptions(n.Attrs)
		if _, err := w.AddNode(n.ID, dag.NewNodeLabel(o.Width, o.Height)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "node %q", n.ID)
		}
	}
	for _, n := range nodes {
		if n.Parent == "" {
			continue
		}
		v, _ := w.NodeByName(n.ID)
		p, ok := w.NodeByName(n.Parent)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown parent %q of node %q", n.Parent, n.ID)
		}
		if err := w.SetParent(v, p); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "node %q", n.ID)
		}
	}

	for _, e := range g.Edges() {
		v, okv := w.NodeByName(e.V)
		u, oku := w.NodeByName(e.W)
		if !okv || !oku {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %s has an unknown endpoint", e.Key())
		}
		if w.IsCompound(v) || w.IsCompound(u) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %s touches a compound node", e.Key())
		}
		o := ParseEdgeOptions(e.Attrs)
		label := &dag.EdgeLabel{
			MinLen:      o.MinLen,
			Weight:      o.Weight,
			Width:       o.Width,
			Height:      o.Height,
			LabelOffset: o.LabelOffset,
			LabelPos:    dag.ParseLabelPos(o.LabelPos),
		}
		if _, err := w.AddEdge(v, u, e.Name, label); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "edge %s", e.Key())
		}
	}
	return w, nil
}
