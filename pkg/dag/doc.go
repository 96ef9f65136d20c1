// Package dag provides the dependency graph that connects the source files
// of a bundle.
//
// # Overview
//
// Nodes are canonical file paths; an edge from A to B means A imports B and
// B must therefore appear before A in the bundle. Despite the package name
// the graph may contain cycles: Python tolerates circular imports, so the
// graph records them and leaves it to [transform.TopologicalSort] to report
// them.
//
// # Basic Usage
//
//	g := dag.New()
//	_ = g.AddEdge("/proj/app.py", "/proj/utils.py")
//	_ = g.AddEdge("/proj/app.py", "/proj/pkg/__init__.py")
//
// Edges add missing endpoints implicitly, so the order in which files are
// discovered is the order of [Graph.Nodes].
//
// # Determinism
//
// Go maps have no stable iteration order, so the graph keeps an explicit
// node slice and per-node dependency slices. Two builds over the same
// project produce identical node and edge sequences, which makes the
// topological order, and the bundle, byte-for-byte reproducible.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. A bundling run owns its
// graph and discards it after writing.
//
// [transform.TopologicalSort]: github.com/matzehuels/pybundle/pkg/dag/transform
package dag
