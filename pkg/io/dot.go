package io

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/stratum/pkg/graph"
)

const (
	pointsPerInch = 72
	arrowLength   = 8
)

var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func quote(s string) string { return `"` + quoter.Replace(s) + `"` }

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// ToDOT renders a laid-out graph as a DOT document with every position
// pinned. Nodes without a position (the graph was never laid out) are
// written without pos and left to Graphviz.
func ToDOT(g *graph.Graph) string {
	_, height := g.Size()
	flip := func(p graph.Point) string { return num(p.X) + "," + num(height-p.Y) }

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	width, _ := g.Size()
	fmt.Fprintf(&buf, "  bb=%q;\n", "0,0,"+num(width)+","+num(height))
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true, fontsize=10];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	// compound boxes first so members paint over them
	var compounds, leaves []*graph.Node
	for _, n := range g.Nodes() {
		if len(g.Children(n.ID)) > 0 {
			compounds = append(compounds, n)
		} else {
			leaves = append(leaves, n)
		}
	}
	for _, n := range compounds {
		attrs := nodeAttrs(n, flip)
		attrs = append(attrs, `style="dashed,rounded"`, "labelloc=t")
		fmt.Fprintf(&buf, "  %s [%s];\n", quote(n.ID), strings.Join(attrs, ", "))
	}
	for _, n := range leaves {
		fmt.Fprintf(&buf, "  %s [%s];\n", quote(n.ID), strings.Join(nodeAttrs(n, flip), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		var attrs []string
		if pos := splinePos(e.Points(), flip); pos != "" {
			attrs = append(attrs, "pos="+quote(pos))
		}
		if label := text(e.Attrs, "label"); label != "" {
			attrs = append(attrs, "label="+quote(label))
			if p, ok := e.LabelPosition(); ok {
				attrs = append(attrs, "lp="+quote(flip(p)))
			}
		}
		fmt.Fprintf(&buf, "  %s -> %s", quote(e.V), quote(e.W))
		if len(attrs) > 0 {
			fmt.Fprintf(&buf, " [%s]", strings.Join(attrs, ", "))
		}
		buf.WriteString(";\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n *graph.Node, flip func(graph.Point) string) []string {
	label := text(n.Attrs, "label")
	if label == "" {
		label = n.ID
	}
	attrs := []string{"label=" + quote(label)}
	w, h := n.Size()
	if w > 0 {
		attrs = append(attrs, "width="+num(w/pointsPerInch))
	}
	if h > 0 {
		attrs = append(attrs, "height="+num(h/pointsPerInch))
	}
	if p, ok := n.Position(); ok && !math.IsNaN(p.X) && !math.IsNaN(p.Y) {
		attrs = append(attrs, "pos="+quote(flip(p)+"!"))
	}
	return attrs
}

// splinePos encodes a polyline as a Graphviz spline: every segment becomes
// a cubic Bezier with control points on its ends, and the last segment is
// shortened to leave room for the arrowhead at "e,".
func splinePos(points []graph.Point, flip func(graph.Point) string) string {
	if len(points) < 2 {
		return ""
	}
	pts := append([]graph.Point(nil), points...)
	end := pts[len(pts)-1]
	prev := pts[len(pts)-2]
	dx, dy := end.X-prev.X, end.Y-prev.Y
	if d := math.Hypot(dx, dy); d > 2*arrowLength {
		pts[len(pts)-1] = graph.Point{X: end.X - dx/d*arrowLength, Y: end.Y - dy/d*arrowLength}
	}

	parts := []string{"e," + flip(end), flip(pts[0])}
	for i := 1; i < len(pts); i++ {
		parts = append(parts, flip(pts[i-1]), flip(pts[i]), flip(pts[i]))
	}
	return strings.Join(parts, " ")
}

func text(a graph.Attrs, key string) string {
	v, ok := a.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
