package io

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/graph"
)

// RenderSVG draws a laid-out graph with Graphviz. The nop2 engine keeps
// every node and edge where the layout put them.
func RenderSVG(ctx context.Context, g *graph.Graph) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NOP2)

	doc, err := graphviz.ParseBytes([]byte(ToDOT(g)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse generated DOT")
	}
	defer doc.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, doc, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteSVGFile renders g and writes the SVG to path.
func WriteSVGFile(ctx context.Context, g *graph.Graph, path string) error {
	svg, err := RenderSVG(ctx, g)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, svg, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}
