package dag

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] and [Graph.AddEdge] when
	// a node ID is empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNode is returned by [Graph.SetMeta] when the node does not exist.
	ErrUnknownNode = errors.New("unknown node")
)

// Metadata stores arbitrary key-value pairs attached to nodes.
// It is used to record per-file facts (root-relative path, parse status)
// for export. Metadata maps are never nil after a node is added.
type Metadata map[string]any

// Edge is a directed dependency: From depends on To.
type Edge struct {
	From string
	To   string
}

// Graph is a directed dependency graph keyed by canonical file path.
//
// Nodes and each node's dependency list keep insertion order, so every
// traversal over the graph is reproducible for identical input. Cycles are
// allowed; the graph does not reject them.
//
// The zero value is not usable - use New to create a Graph.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes    []string
	meta     map[string]Metadata
	outgoing map[string][]string
	incoming map[string][]string
	edges    map[Edge]struct{}
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		meta:     make(map[string]Metadata),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		edges:    make(map[Edge]struct{}),
	}
}

// AddNode adds a node. Returns ErrInvalidNodeID for an empty ID or
// ErrDuplicateNodeID if it already exists.
func (g *Graph) AddNode(id string) error {
	if id == "" {
		return ErrInvalidNodeID
	}
	if g.HasNode(id) {
		return ErrDuplicateNodeID
	}
	g.nodes = append(g.nodes, id)
	g.meta[id] = Metadata{}
	return nil
}

// EnsureNode adds id if it is not already present.
func (g *Graph) EnsureNode(id string) error {
	if g.HasNode(id) {
		return nil
	}
	return g.AddNode(id)
}

// AddEdge records that from depends on to. Missing endpoints are added
// implicitly, in the order from, to. Adding an existing edge is a no-op.
func (g *Graph) AddEdge(from, to string) error {
	if from == "" || to == "" {
		return ErrInvalidNodeID
	}
	if err := g.EnsureNode(from); err != nil {
		return err
	}
	if err := g.EnsureNode(to); err != nil {
		return err
	}
	e := Edge{From: from, To: to}
	if _, ok := g.edges[e]; ok {
		return nil
	}
	g.edges[e] = struct{}{}
	g.outgoing[from] = append(g.outgoing[from], to)
	g.incoming[to] = append(g.incoming[to], from)
	return nil
}

// HasNode reports whether id is in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.meta[id]
	return ok
}

// HasEdge reports whether from depends directly on to.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.edges[Edge{From: from, To: to}]
	return ok
}

// Nodes returns node IDs in insertion order. The slice is a copy.
func (g *Graph) Nodes() []string { return slices.Clone(g.nodes) }

// Edges returns all edges grouped by source in node insertion order, and by
// target in insertion order within a source.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for _, from := range g.nodes {
		for _, to := range g.outgoing[from] {
			out = append(out, Edge{From: from, To: to})
		}
	}
	return out
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Children returns the direct dependencies of id in insertion order.
// The returned slice should not be modified - use it as a read-only view.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the nodes that depend directly on id.
// The returned slice should not be modified - use it as a read-only view.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// OutDegree returns the number of dependencies of id.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of dependents of id.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// Meta returns the metadata of id, or nil if the node does not exist.
// The returned map belongs to the graph.
func (g *Graph) Meta(id string) Metadata { return g.meta[id] }

// SetMeta sets one metadata key on an existing node.
func (g *Graph) SetMeta(id, key string, value any) error {
	m, ok := g.meta[id]
	if !ok {
		return ErrUnknownNode
	}
	m[key] = value
	return nil
}

// Sinks returns nodes without dependencies, in insertion order.
func (g *Graph) Sinks() []string {
	var out []string
	for _, id := range g.nodes {
		if len(g.outgoing[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// PosMap creates a position lookup map from a slice of node IDs.
// The returned map maps each ID to its index in the slice.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}
