package dag

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownNode is returned when a handle does not refer to a live node.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownEdge is returned when a handle does not refer to a live edge.
	ErrUnknownEdge = errors.New("unknown edge")

	// ErrParentCycle is returned by [Graph.SetParent] when the new parent is
	// the node itself or one of its descendants.
	ErrParentCycle = errors.New("parent would create a containment cycle")
)

// NodeID is a stable integer handle for a node. Handles are assigned in
// insertion order and never reused within one graph.
type NodeID int

// EdgeID is a stable integer handle for an edge.
type EdgeID int

// None is the absent node handle; as a parent it denotes the root.
const None NodeID = -1

// NoEdge is the absent edge handle.
const NoEdge EdgeID = -1

type nodeEntry struct {
	name     string
	label    *NodeLabel
	alive    bool
	parent   NodeID
	children []NodeID
	out      []EdgeID
	in       []EdgeID
}

type edgeEntry struct {
	v, w  NodeID
	name  string
	label *EdgeLabel
	alive bool
}

// Graph is a directed, compound multigraph addressed by integer handles.
// It is the working graph every layout pass mutates in place.
//
// Removed nodes and edges keep their slot so handles stay valid as
// references; [Graph.RestoreEdge] revives a removed edge with its label.
//
// The zero value is not usable - use New. Graph is not safe for concurrent use.
type Graph struct {
	label   *GraphLabel
	nodes   []nodeEntry
	edges   []edgeEntry
	byName  map[string]NodeID
	roots   []NodeID
	dummies int
}

// New creates an empty graph with the given graph label.
func New(label *GraphLabel) *Graph {
	if label == nil {
		label = &GraphLabel{}
	}
	label.NestingRoot = None
	return &Graph{
		label:  label,
		byName: make(map[string]NodeID),
	}
}

// Label returns the graph-level label.
func (g *Graph) Label() *GraphLabel { return g.label }

// AddNode adds a node with a unique name and returns its handle.
// A nil label is replaced with a zero-sized one.
func (g *Graph) AddNode(name string, label *NodeLabel) (NodeID, error) {
	if _, exists := g.byName[name]; exists {
		return None, fmt.Errorf("duplicate node %q", name)
	}
	if label == nil {
		label = NewNodeLabel(0, 0)
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, nodeEntry{name: name, label: label, alive: true, parent: None})
	g.byName[name] = id
	g.roots = append(g.roots, id)
	return id, nil
}

// AddDummy inserts a synthetic node of the given kind with a generated
// name built from prefix. Dummy names never collide with existing names.
func (g *Graph) AddDummy(kind NodeKind, label *NodeLabel, prefix string) NodeID {
	if label == nil {
		label = NewNodeLabel(0, 0)
	}
	label.Kind = kind
	for {
		g.dummies++
		name := fmt.Sprintf("%s%d", prefix, g.dummies)
		if _, exists := g.byName[name]; exists {
			continue
		}
		id, _ := g.AddNode(name, label)
		return id
	}
}

// HasNode reports whether v is a live node.
func (g *Graph) HasNode(v NodeID) bool {
	return v >= 0 && int(v) < len(g.nodes) && g.nodes[v].alive
}

// Node returns the label of v, or nil if v is not live.
func (g *Graph) Node(v NodeID) *NodeLabel {
	if !g.HasNode(v) {
		return nil
	}
	return g.nodes[v].label
}

// NodeName returns the name v was added with.
func (g *Graph) NodeName(v NodeID) string {
	if v < 0 || int(v) >= len(g.nodes) {
		return ""
	}
	return g.nodes[v].name
}

// NodeByName looks up a live node by name.
func (g *Graph) NodeByName(name string) (NodeID, bool) {
	id, ok := g.byName[name]
	if !ok || !g.HasNode(id) {
		return None, false
	}
	return id, true
}

// Nodes returns all live nodes in handle order.
func (g *Graph) Nodes() []NodeID {
	ids := make([]NodeID, 0, len(g.nodes))
	for i := range g.nodes {
		if g.nodes[i].alive {
			ids = append(ids, NodeID(i))
		}
	}
	return ids
}

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int {
	n := 0
	for i := range g.nodes {
		if g.nodes[i].alive {
			n++
		}
	}
	return n
}

// RemoveNode deletes v together with its incident edges. Children of v
// are moved to v's parent.
func (g *Graph) RemoveNode(v NodeID) {
	if !g.HasNode(v) {
		return
	}
	n := &g.nodes[v]
	for _, e := range slices.Clone(n.out) {
		g.RemoveEdge(e)
	}
	for _, e := range slices.Clone(n.in) {
		g.RemoveEdge(e)
	}
	parent := n.parent
	for _, c := range slices.Clone(n.children) {
		_ = g.SetParent(c, parent)
	}
	g.detach(v)
	n.alive = false
	delete(g.byName, n.name)
}

// SetParent moves v under parent. Passing None moves v to the root.
func (g *Graph) SetParent(v, parent NodeID) error {
	if !g.HasNode(v) {
		return ErrUnknownNode
	}
	if parent != None {
		if !g.HasNode(parent) {
			return ErrUnknownNode
		}
		for a := parent; a != None; a = g.nodes[a].parent {
			if a == v {
				return ErrParentCycle
			}
		}
	}
	g.detach(v)
	g.nodes[v].parent = parent
	if parent == None {
		g.roots = append(g.roots, v)
	} else {
		g.nodes[parent].children = append(g.nodes[parent].children, v)
	}
	return nil
}

func (g *Graph) detach(v NodeID) {
	p := g.nodes[v].parent
	if p == None {
		g.roots = slices.DeleteFunc(g.roots, func(c NodeID) bool { return c == v })
		return
	}
	g.nodes[p].children = slices.DeleteFunc(g.nodes[p].children, func(c NodeID) bool { return c == v })
}

// Parent returns the parent of v, or None for root-level nodes.
func (g *Graph) Parent(v NodeID) NodeID {
	if !g.HasNode(v) {
		return None
	}
	return g.nodes[v].parent
}

// Children returns the children of v in insertion order. Children(None)
// returns the root-level nodes. The slice must not be modified.
func (g *Graph) Children(v NodeID) []NodeID {
	if v == None {
		return g.roots
	}
	if !g.HasNode(v) {
		return nil
	}
	return g.nodes[v].children
}

// IsCompound reports whether v owns at least one child.
func (g *Graph) IsCompound(v NodeID) bool { return len(g.Children(v)) > 0 }

// AddEdge adds a directed edge v→w. Multiple edges between the same pair
// are allowed; name only disambiguates them for callers.
func (g *Graph) AddEdge(v, w NodeID, name string, label *EdgeLabel) (EdgeID, error) {
	if !g.HasNode(v) || !g.HasNode(w) {
		return NoEdge, ErrUnknownNode
	}
	if label == nil {
		label = &EdgeLabel{MinLen: 1, Weight: 1}
	}
	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, edgeEntry{v: v, w: w, name: name, label: label, alive: true})
	g.link(id)
	return id, nil
}

func (g *Graph) link(e EdgeID) {
	ed := g.edges[e]
	g.nodes[ed.v].out = append(g.nodes[ed.v].out, e)
	g.nodes[ed.w].in = append(g.nodes[ed.w].in, e)
}

func (g *Graph) unlink(e EdgeID) {
	ed := g.edges[e]
	g.nodes[ed.v].out = slices.DeleteFunc(g.nodes[ed.v].out, func(x EdgeID) bool { return x == e })
	g.nodes[ed.w].in = slices.DeleteFunc(g.nodes[ed.w].in, func(x EdgeID) bool { return x == e })
}

// HasEdge reports whether e is a live edge.
func (g *Graph) HasEdge(e EdgeID) bool {
	return e >= 0 && int(e) < len(g.edges) && g.edges[e].alive
}

// Edge returns the label of e. The label of a removed edge stays
// reachable so detached edges can carry state until restored.
func (g *Graph) Edge(e EdgeID) *EdgeLabel {
	if e < 0 || int(e) >= len(g.edges) {
		return nil
	}
	return g.edges[e].label
}

// Endpoints returns the current source and target of e.
func (g *Graph) Endpoints(e EdgeID) (v, w NodeID) {
	if e < 0 || int(e) >= len(g.edges) {
		return None, None
	}
	return g.edges[e].v, g.edges[e].w
}

// EdgeName returns the disambiguating name of e.
func (g *Graph) EdgeName(e EdgeID) string {
	if e < 0 || int(e) >= len(g.edges) {
		return ""
	}
	return g.edges[e].name
}

// Edges returns all live edges in handle order.
func (g *Graph) Edges() []EdgeID {
	ids := make([]EdgeID, 0, len(g.edges))
	for i := range g.edges {
		if g.edges[i].alive {
			ids = append(ids, EdgeID(i))
		}
	}
	return ids
}

// EdgeCount returns the number of live edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for i := range g.edges {
		if g.edges[i].alive {
			n++
		}
	}
	return n
}

// RemoveEdge detaches e from the graph. Its label stays addressable.
func (g *Graph) RemoveEdge(e EdgeID) {
	if !g.HasEdge(e) {
		return
	}
	g.unlink(e)
	g.edges[e].alive = false
}

// RestoreEdge reinstates a removed edge with its original label.
func (g *Graph) RestoreEdge(e EdgeID) error {
	if e < 0 || int(e) >= len(g.edges) {
		return ErrUnknownEdge
	}
	ed := &g.edges[e]
	if ed.alive {
		return nil
	}
	if !g.HasNode(ed.v) || !g.HasNode(ed.w) {
		return ErrUnknownNode
	}
	ed.alive = true
	g.link(e)
	return nil
}

// Reverse flips the direction of e in place, keeping its handle and label.
func (g *Graph) Reverse(e EdgeID) {
	if !g.HasEdge(e) {
		return
	}
	g.unlink(e)
	ed := &g.edges[e]
	ed.v, ed.w = ed.w, ed.v
	g.link(e)
}

// OutEdges returns the live edges leaving v.
func (g *Graph) OutEdges(v NodeID) []EdgeID {
	if !g.HasNode(v) {
		return nil
	}
	return g.nodes[v].out
}

// InEdges returns the live edges entering v.
func (g *Graph) InEdges(v NodeID) []EdgeID {
	if !g.HasNode(v) {
		return nil
	}
	return g.nodes[v].in
}

// Successors returns the distinct targets of v's outgoing edges.
func (g *Graph) Successors(v NodeID) []NodeID {
	var out []NodeID
	for _, e := range g.OutEdges(v) {
		if w := g.edges[e].w; !slices.Contains(out, w) {
			out = append(out, w)
		}
	}
	return out
}

// Predecessors returns the distinct sources of v's incoming edges.
func (g *Graph) Predecessors(v NodeID) []NodeID {
	var in []NodeID
	for _, e := range g.InEdges(v) {
		if u := g.edges[e].v; !slices.Contains(in, u) {
			in = append(in, u)
		}
	}
	return in
}

// Neighbors returns the distinct nodes adjacent to v in either direction.
func (g *Graph) Neighbors(v NodeID) []NodeID {
	ns := g.Predecessors(v)
	for _, w := range g.Successors(v) {
		if !slices.Contains(ns, w) {
			ns = append(ns, w)
		}
	}
	return ns
}

// Leaves returns every live node that owns no children, in handle order.
// This is the non-compound view ranking and positioning operate on.
func (g *Graph) Leaves() []NodeID {
	var ids []NodeID
	for _, v := range g.Nodes() {
		if !g.IsCompound(v) {
			ids = append(ids, v)
		}
	}
	return ids
}

// LayerMatrix groups every ranked node by rank, each layer sorted by
// Order. Index 0 is the lowest rank present; missing ranks yield empty
// layers.
func (g *Graph) LayerMatrix() [][]NodeID {
	lo, hi, found := 0, -1, false
	for _, v := range g.Nodes() {
		n := g.nodes[v].label
		if !n.Ranked {
			continue
		}
		if !found || n.Rank < lo {
			lo = n.Rank
		}
		if !found || n.Rank > hi {
			hi = n.Rank
		}
		found = true
	}
	if !found {
		return nil
	}
	layers := make([][]NodeID, hi-lo+1)
	for _, v := range g.Nodes() {
		if n := g.nodes[v].label; n.Ranked {
			layers[n.Rank-lo] = append(layers[n.Rank-lo], v)
		}
	}
	for _, layer := range layers {
		slices.SortStableFunc(layer, func(a, b NodeID) int {
			return cmp.Compare(g.nodes[a].label.Order, g.nodes[b].label.Order)
		})
	}
	return layers
}
