package graph

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/stratum/pkg/errors"
)

// document is the JSON wire form of a Graph.
type document struct {
	Graph Attrs   `json:"graph"`
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// MarshalGraph converts a graph to JSON bytes. Nodes and edges keep their
// insertion order.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a graph to a JSON file with 0644 permissions.
// The graph is encoded in full before the file is touched, and the file
// is replaced by rename, so a failed write leaves any previous file intact.
func WriteGraphFile(g *Graph, path string) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".stratum-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "chmod %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "rename %s", path)
	}
	return nil
}

// WriteGraph writes a graph as JSON to an io.Writer.
func WriteGraph(g *Graph, w io.Writer) error {
	return writeGraphTo(g, w)
}

// ReadGraphFile reads a JSON file and returns the decoded graph.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes a JSON graph from an io.Reader.
// Parents may be listed after their children.
func ReadGraph(r io.Reader) (*Graph, error) {
	return readGraphFrom(r)
}

func writeGraphTo(g *Graph, w io.Writer) error {
	doc := document{Graph: g.Attrs, Nodes: g.nodes, Edges: g.edges}
	if doc.Graph == nil {
		doc.Graph = Attrs{}
	}
	if doc.Nodes == nil {
		doc.Nodes = []*Node{}
	}
	if doc.Edges == nil {
		doc.Edges = []*Edge{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "encode")
	}
	return nil
}

func readGraphFrom(r io.Reader) (*Graph, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode")
	}

	g := New()
	if doc.Graph != nil {
		g.Attrs = doc.Graph
	}
	for _, n := range doc.Nodes {
		if n == nil || n.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node without id")
		}
		if _, err := g.AddNode(n.ID, n.Attrs); err != nil {
			return nil, err
		}
	}
	for _, n := range doc.Nodes {
		if n.Parent == "" {
			continue
		}
		if err := g.SetParent(n.ID, n.Parent); err != nil {
			return nil, err
		}
	}
	for _, e := range doc.Edges {
		if e == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "null edge")
		}
		if _, err := g.AddEdge(e.V, e.W, e.Name, e.Attrs); err != nil {
			return nil, err
		}
	}
	return g, nil
}
