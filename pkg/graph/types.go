package graph

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/stratum/pkg/errors"
)

// Attrs is a free-form attribute record. Keys are matched
// case-insensitively by the layout engine.
type Attrs map[string]any

// Get returns the value stored under key, ignoring case. An exact match
// wins over a case-folded one.
func (a Attrs) Get(key string) (any, bool) {
	if v, ok := a[key]; ok {
		return v, true
	}
	for _, k := range a.sortedKeys() {
		if strings.EqualFold(k, key) {
			return a[k], true
		}
	}
	return nil, false
}

// Set stores value under key and drops every other spelling of key, so a
// record never holds two case variants of one attribute.
func (a Attrs) Set(key string, value any) {
	for k := range a {
		if k != key && strings.EqualFold(k, key) {
			delete(a, k)
		}
	}
	a[key] = value
}

// Canonical returns a copy with lower-cased keys. When several keys fold
// to the same name, the already lower-case spelling wins, otherwise the
// lexicographically smallest one.
func (a Attrs) Canonical() map[string]any {
	out := make(map[string]any, len(a))
	exact := make(map[string]bool, len(a))
	for _, k := range a.sortedKeys() {
		lk := strings.ToLower(k)
		switch {
		case k == lk:
			out[lk] = a[k]
			exact[lk] = true
		case exact[lk]:
		default:
			if _, seen := out[lk]; !seen {
				out[lk] = a[k]
			}
		}
	}
	return out
}

// Clone returns a shallow copy of a.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes a with every NaN or infinite number replaced by
// null. JSON has no spelling for them, and a layout may produce them from
// malformed input.
func (a Attrs) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("null"), nil
	}
	return json.Marshal(map[string]any(a.clean()))
}

func jsonSafe(v any) any {
	switch x := v.(type) {
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case []float64:
		out := make([]any, len(x))
		for i, f := range x {
			out[i] = finite(f)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = jsonSafe(e)
		}
		return out
	case map[string]any:
		return map[string]any(Attrs(x).clean())
	case Attrs:
		return map[string]any(x.clean())
	}
	return v
}

// NonFinite reports whether any attribute of g holds a NaN or infinite
// number. Such a graph does not survive a JSON round trip unchanged.
func (g *Graph) NonFinite() bool {
	if lossy(g.Attrs) {
		return true
	}
	for _, n := range g.nodes {
		if lossy(n.Attrs) {
			return true
		}
	}
	for _, e := range g.edges {
		if lossy(e.Attrs) {
			return true
		}
	}
	return false
}

func lossy(v any) bool {
	switch x := v.(type) {
	case float64:
		return finite(x) == nil
	case float32:
		return finite(float64(x)) == nil
	case []float64:
		for _, f := range x {
			if finite(f) == nil {
				return true
			}
		}
	case []Point:
		for _, p := range x {
			if finite(p.X) == nil || finite(p.Y) == nil {
				return true
			}
		}
	case []any:
		for _, e := range x {
			if lossy(e) {
				return true
			}
		}
	case map[string]any:
		for _, e := range x {
			if lossy(e) {
				return true
			}
		}
	case Attrs:
		for _, e := range x {
			if lossy(e) {
				return true
			}
		}
	}
	return false
}

func (a Attrs) clean() Attrs {
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = jsonSafe(v)
	}
	return out
}

func (a Attrs) sortedKeys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Node is a caller-owned node.
type Node struct {
	ID     string `json:"id"`
	Parent string `json:"parent,omitempty"`
	Attrs  Attrs  `json:"attrs,omitempty"`
}

// Edge is a caller-owned directed edge. Name distinguishes parallel edges
// between the same pair of nodes.
type Edge struct {
	V     string `json:"v"`
	W     string `json:"w"`
	Name  string `json:"name,omitempty"`
	Attrs Attrs  `json:"attrs,omitempty"`
}

// Key returns a printable identity of the edge.
func (e *Edge) Key() string {
	if e.Name == "" {
		return fmt.Sprintf("%s->%s", e.V, e.W)
	}
	return fmt.Sprintf("%s->%s[%s]", e.V, e.W, e.Name)
}

type edgeKey struct{ v, w, name string }

// Graph is a directed, compound multigraph owned by the caller. Nodes may
// be nested inside other nodes through Parent. Layout results are written
// back into the attribute records.
//
// Graph is not safe for concurrent use.
type Graph struct {
	Attrs Attrs

	nodes   []*Node
	nodeIdx map[string]int
	edges   []*Edge
	edgeIdx map[edgeKey]int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		Attrs:   Attrs{},
		nodeIdx: make(map[string]int),
		edgeIdx: make(map[edgeKey]int),
	}
}

// AddNode adds a node. IDs must be unique.
func (g *Graph) AddNode(id string, attrs Attrs) (*Node, error) {
	if _, exists := g.nodeIdx[id]; exists {
		return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate node %q", id)
	}
	if attrs == nil {
		attrs = Attrs{}
	}
	n := &Node{ID: id, Attrs: attrs}
	g.nodeIdx[id] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	return n, nil
}

// Node looks up a node by ID.
func (g *Graph) Node(id string) (*Node, bool) {
	i, ok := g.nodeIdx[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// SetParent nests id inside parent. An empty parent moves id to the top
// level.
func (g *Graph) SetParent(id, parent string) error {
	n, ok := g.Node(id)
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "unknown node %q", id)
	}
	if parent != "" {
		if _, ok := g.Node(parent); !ok {
			return errors.New(errors.ErrCodeInvalidInput, "unknown parent %q of node %q", parent, id)
		}
		for p := parent; p != ""; p = g.Parent(p) {
			if p == id {
				return errors.New(errors.ErrCodeInvalidInput, "node %q cannot contain itself", id)
			}
		}
	}
	n.Parent = parent
	return nil
}

// Parent returns the parent of id, or "" for top-level nodes.
func (g *Graph) Parent(id string) string {
	if n, ok := g.Node(id); ok {
		return n.Parent
	}
	return ""
}

// Children returns the IDs nested directly inside id in insertion order.
// Children("") returns the top-level nodes.
func (g *Graph) Children(id string) []string {
	var out []string
	for _, n := range g.nodes {
		if n.Parent == id {
			out = append(out, n.ID)
		}
	}
	return out
}

// AddEdge adds an edge v→w. Both endpoints must exist and (v, w, name)
// must be unique.
func (g *Graph) AddEdge(v, w, name string, attrs Attrs) (*Edge, error) {
	if _, ok := g.Node(v); !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "edge source %q is not a node", v)
	}
	if _, ok := g.Node(w); !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "edge target %q is not a node", w)
	}
	k := edgeKey{v, w, name}
	if _, exists := g.edgeIdx[k]; exists {
		return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate edge %s->%s name %q", v, w, name)
	}
	if attrs == nil {
		attrs = Attrs{}
	}
	e := &Edge{V: v, W: w, Name: name, Attrs: attrs}
	g.edgeIdx[k] = len(g.edges)
	g.edges = append(g.edges, e)
	return e, nil
}

// Edge looks up an edge by its endpoints and name.
func (g *Graph) Edge(v, w, name string) (*Edge, bool) {
	i, ok := g.edgeIdx[edgeKey{v, w, name}]
	if !ok {
		return nil, false
	}
	return g.edges[i], true
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge { return slices.Clone(g.edges) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }
