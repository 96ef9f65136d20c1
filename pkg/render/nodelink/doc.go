// Package nodelink renders import graphs as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Entry: entry, Cycles: cycles})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools.
//
// # Styling
//
// The entry file is drawn with a heavy blue box, files that failed to
// parse with a dashed outline, and back edges reported by the sorter as
// dashed red arrows, so circular imports stand out.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package nodelink
