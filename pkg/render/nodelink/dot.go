package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pybundle/pkg/dag"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Entry is highlighted when set.
	Entry string

	// Cycles are drawn as dashed red edges.
	Cycles []dag.Edge

	// Order, when set, prefixes labels with the file's bundle position.
	Order []string

	// Detailed includes node metadata in labels.
	Detailed bool
}

// ToDOT converts an import graph to Graphviz DOT format.
//
// Nodes are labelled with their "rel" metadata (the root-relative path)
// when present and with their ID otherwise. Edges point from importer to
// imported file.
func ToDOT(g *dag.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"monospace\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	pos := dag.PosMap(opts.Order)
	for _, id := range g.Nodes() {
		label := fmtLabel(id, g.Meta(id), pos, g.InDegree(id), opts.Detailed)
		attrs := fmtAttrs(id, g.Meta(id), label, opts.Entry)
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if slices.Contains(opts.Cycles, e) {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, color=red];\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(id string, meta dag.Metadata, pos map[string]int, importers int, detailed bool) string {
	name := id
	if rel, ok := meta["rel"].(string); ok && rel != "" {
		name = rel
	}
	if i, ok := pos[id]; ok {
		name = fmt.Sprintf("%d. %s", i+1, name)
	}
	if !detailed {
		return name
	}

	var parts []string
	for _, k := range slices.Sorted(maps.Keys(meta)) {
		if k == "rel" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, meta[k]))
	}
	if importers > 0 {
		parts = append(parts, fmt.Sprintf("imported by: %d", importers))
	}
	if len(parts) == 0 {
		return name
	}
	return name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(id string, meta dag.Metadata, label, entry string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case id == entry:
		attrs = append(attrs, "fillcolor=lightblue", "penwidth=2")
	case meta["parse_error"] != nil:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=mistyrose")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one
// that scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
