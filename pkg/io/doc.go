// Package io turns laid-out graphs into Graphviz documents.
//
// [ToDOT] writes a DOT document whose nodes, compound boxes and edge routes
// are pinned to the coordinates computed by the layout engine, so Graphviz
// only draws and never moves anything. [RenderSVG] runs that document
// through the embedded Graphviz (no system install needed) to produce an
// SVG preview.
//
// # Coordinates
//
// Layout coordinates grow downwards; Graphviz coordinates grow upwards.
// ToDOT flips y against the drawing height stored on the graph, and treats
// one layout unit as one point. Widths and heights are converted to the
// inches Graphviz expects.
//
// # Compound nodes
//
// A compound node becomes a dashed box drawn before its members, with its
// label at the top. Members are drawn on top of it.
//
// # Usage
//
//	if err := layout.Layout(g, layout.Options{}); err != nil {
//	    return err
//	}
//	svg, err := io.RenderSVG(ctx, g)
package io
