package graph

import (
	"encoding/json"
	"math"
)

// Point is a position in the drawing.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MarshalJSON writes a non-finite coordinate as null, which decodes back
// to NaN through [Edge.Points].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		X any `json:"x"`
		Y any `json:"y"`
	}{finite(p.X), finite(p.Y)})
}

// Position returns the center a layout assigned to n.
func (n *Node) Position() (Point, bool) {
	return position(n.Attrs)
}

// Size returns the width and height of n. After a layout the size of a
// compound node is its bounding box.
func (n *Node) Size() (width, height float64) {
	return number(n.Attrs, "width"), number(n.Attrs, "height")
}

// Points returns the route of e. It understands both the typed slice a
// layout writes and the decoded JSON form.
func (e *Edge) Points() []Point {
	v, ok := e.Attrs.Get("points")
	if !ok {
		return nil
	}
	switch ps := v.(type) {
	case []Point:
		return ps
	case []any:
		out := make([]Point, 0, len(ps))
		for _, p := range ps {
			m, ok := p.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, Point{X: toFloat(m["x"]), Y: toFloat(m["y"])})
		}
		return out
	}
	return nil
}

// LabelPosition returns the label anchor of e. Only edges with a label
// size get one.
func (e *Edge) LabelPosition() (Point, bool) {
	return position(e.Attrs)
}

// Size returns the drawing size recorded by the last layout.
func (g *Graph) Size() (width, height float64) {
	return number(g.Attrs, "width"), number(g.Attrs, "height")
}

func position(a Attrs) (Point, bool) {
	x, okx := a.Get("x")
	y, oky := a.Get("y")
	if !okx || !oky {
		return Point{}, false
	}
	return Point{X: toFloat(x), Y: toFloat(y)}, true
}

func number(a Attrs, key string) float64 {
	v, ok := a.Get(key)
	if !ok {
		return 0
	}
	return toFloat(v)
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return math.NaN()
}

// finite returns f, or nil when f is NaN or infinite.
func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
