package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/pybundle/pkg/dag"
	"github.com/matzehuels/pybundle/pkg/project"
)

// Options adds run context to an exported graph.
type Options struct {
	Root   string     // Project root; node IDs are made relative to it
	Entry  string     // Entry file
	Order  []string   // Bundle order
	Cycles []dag.Edge // Back edges reported by the sorter
}

type graph struct {
	Root   string   `json:"root,omitempty"`
	Entry  string   `json:"entry,omitempty"`
	Nodes  []node   `json:"nodes"`
	Edges  []edge   `json:"edges"`
	Order  []string `json:"order,omitempty"`
	Cycles []edge   `json:"cycles,omitempty"`
}

type node struct {
	ID         string       `json:"id"`
	Path       string       `json:"path"`
	ImportedBy []string     `json:"imported_by,omitempty"`
	Meta       dag.Metadata `json:"meta,omitempty"`
}

type edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Cycle bool   `json:"cycle,omitempty"`
}

// WriteJSON encodes an import graph as JSON and writes it to w.
//
// Node IDs are root-relative, slash-separated paths; the absolute path is
// kept in "path". Edges and nodes keep graph insertion order, so the output
// is stable for a given project.
func WriteJSON(g *dag.Graph, w io.Writer, opts Options) error {
	rel := func(p string) string {
		if opts.Root == "" {
			return p
		}
		return project.Rel(opts.Root, p)
	}

	out := graph{
		Root:  opts.Root,
		Nodes: make([]node, 0, g.NodeCount()),
		Edges: make([]edge, 0, g.EdgeCount()),
	}
	if opts.Entry != "" {
		out.Entry = rel(opts.Entry)
	}
	for _, id := range g.Nodes() {
		meta := g.Meta(id)
		if len(meta) == 0 {
			meta = nil
		}
		n := node{ID: rel(id), Path: id, Meta: meta}
		for _, p := range g.Parents(id) {
			n.ImportedBy = append(n.ImportedBy, rel(p))
		}
		out.Nodes = append(out.Nodes, n)
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, edge{From: rel(e.From), To: rel(e.To), Cycle: slices.Contains(opts.Cycles, e)})
	}
	for _, p := range opts.Order {
		out.Order = append(out.Order, rel(p))
	}
	for _, e := range opts.Cycles {
		out.Cycles = append(out.Cycles, edge{From: rel(e.From), To: rel(e.To), Cycle: true})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes an import graph to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *dag.Graph, path string, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(g, f, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
