package dag

import "strings"

// NodeKind distinguishes real nodes from the synthetic nodes that layout
// passes insert and later remove. The set is closed: every pass that
// inspects a kind switches over these values only.
type NodeKind int

const (
	// KindNormal is a node that came from the caller's graph.
	KindNormal NodeKind = iota
	// KindBorder marks the top or bottom of a compound node.
	KindBorder
	// KindBorderLeft is a per-rank left border segment of a compound node.
	KindBorderLeft
	// KindBorderRight is a per-rank right border segment of a compound node.
	KindBorderRight
	// KindEdge is a link in the dummy chain of a long edge.
	KindEdge
	// KindEdgeLabel is the dummy chain link that carries an edge label.
	KindEdgeLabel
	// KindEdgeProxy temporarily holds the rank of an edge label.
	KindEdgeProxy
	// KindSelfEdge is an ordering placeholder for a self-loop.
	KindSelfEdge
	// KindRoot is the nesting root tying all top-level nodes together.
	KindRoot
)

var kindNames = [...]string{
	KindNormal:      "normal",
	KindBorder:      "border",
	KindBorderLeft:  "border-left",
	KindBorderRight: "border-right",
	KindEdge:        "edge",
	KindEdgeLabel:   "edge-label",
	KindEdgeProxy:   "edge-proxy",
	KindSelfEdge:    "self-edge",
	KindRoot:        "root",
}

func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsDummy reports whether the kind denotes a synthetic node.
func (k NodeKind) IsDummy() bool { return k != KindNormal }

// IsBorder reports whether the kind is any of the compound border markers.
func (k NodeKind) IsBorder() bool {
	switch k {
	case KindBorder, KindBorderLeft, KindBorderRight:
		return true
	default:
		return false
	}
}

// LabelPos places an edge label relative to its edge.
type LabelPos int

const (
	LabelRight LabelPos = iota
	LabelLeft
	LabelCenter
)

// ParseLabelPos maps "l", "r", "c" (and their long forms) to a LabelPos.
// Unrecognised values yield LabelRight, the engine default.
func ParseLabelPos(s string) LabelPos {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "left":
		return LabelLeft
	case "c", "center", "centre":
		return LabelCenter
	default:
		return LabelRight
	}
}

func (p LabelPos) String() string {
	switch p {
	case LabelLeft:
		return "l"
	case LabelCenter:
		return "c"
	default:
		return "r"
	}
}

// RankDir is the flow axis of the layout.
type RankDir string

const (
	RankDirTB RankDir = "tb"
	RankDirBT RankDir = "bt"
	RankDirLR RankDir = "lr"
	RankDirRL RankDir = "rl"
)

// ParseRankDir normalises a rank direction. Unknown values map to top-to-bottom.
func ParseRankDir(s string) RankDir {
	switch d := RankDir(strings.ToLower(strings.TrimSpace(s))); d {
	case RankDirTB, RankDirBT, RankDirLR, RankDirRL:
		return d
	default:
		return RankDirTB
	}
}

// Vertical reports whether ranks flow along the y axis (tb or bt).
func (d RankDir) Vertical() bool { return d == RankDirTB || d == RankDirBT }

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GraphLabel holds graph-level settings and computed results.
type GraphLabel struct {
	RankSep float64
	EdgeSep float64
	NodeSep float64
	MarginX float64
	MarginY float64
	RankDir RankDir

	Acyclicer string
	Ranker    string
	Align     string

	// MaxRank is the highest rank after normalisation.
	MaxRank int
	// Width and Height are the final drawing extent.
	Width  float64
	Height float64

	// NestingRoot is the root inserted by the nesting pass, or None.
	NestingRoot NodeID
	// NodeRankFactor is the rank multiplier applied by the nesting pass.
	NodeRankFactor int
	// DummyChains lists the first dummy of every normalised long edge.
	DummyChains []NodeID
}

// SelfEdge is a self-loop detached from the graph until its placeholder
// is positioned.
type SelfEdge struct {
	Edge EdgeID
}

// NodeLabel is the mutable layout state of one node.
type NodeLabel struct {
	Width  float64
	Height float64
	X      float64
	Y      float64

	Rank   int
	Ranked bool
	Order  int

	Kind NodeKind

	// Compound bookkeeping, set only on nodes that own children.
	BorderTop    NodeID
	BorderBottom NodeID
	BorderLeft   []NodeID
	BorderRight  []NodeID
	MinRank      int
	MaxRank      int
	HasRankSpan  bool

	// SelfEdges are the loops pending reinsertion; nil until first use.
	SelfEdges []SelfEdge

	// Edge is the originating edge of a proxy, self-edge or chain dummy.
	Edge EdgeID
	// LabelPos is copied onto edge-label dummies.
	LabelPos LabelPos
}

// NewNodeLabel returns a label with all handle references cleared.
func NewNodeLabel(width, height float64) *NodeLabel {
	return &NodeLabel{
		Width:        width,
		Height:       height,
		BorderTop:    None,
		BorderBottom: None,
		Edge:         NoEdge,
	}
}

// EdgeLabel is the mutable layout state of one edge.
type EdgeLabel struct {
	MinLen      float64
	Weight      float64
	Width       float64
	Height      float64
	LabelPos    LabelPos
	LabelOffset float64

	Points []Point

	// X, Y anchor the label when HasAnchor is set.
	X         float64
	Y         float64
	HasAnchor bool

	Reversed bool

	LabelRank    int
	HasLabelRank bool

	// NestingEdge marks constraint edges added by the nesting pass.
	NestingEdge bool
}

// SetAnchor records the label anchor.
func (e *EdgeLabel) SetAnchor(x, y float64) {
	e.X, e.Y, e.HasAnchor = x, y, true
}
