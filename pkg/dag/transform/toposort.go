package transform

import "github.com/matzehuels/pybundle/pkg/dag"

const (
	white = iota
	gray
	black
)

// frame is one open node on the explicit DFS stack. next indexes the child
// to visit when the frame is resumed.
type frame struct {
	id   string
	next int
}

// TopologicalSort orders the nodes of g so that every dependency precedes
// its dependents, tolerating cycles.
//
// The traversal is a depth-first post-order walk with white/gray/black
// marking, started from every node in insertion order. When a child is
// found gray (open on the current path) the edge from the node on top of the
// stack to that child is recorded as a back edge and skipped; traversal
// continues with the remaining children. Every node appears exactly once in
// the result, including nodes unreachable from the first root.
//
// For every edge (u, v) of g that is not returned as a back edge, v precedes
// u in the order. The result is deterministic for a given graph.
func TopologicalSort(g *dag.Graph) (order []string, backEdges []dag.Edge) {
	color := make(map[string]int, g.NodeCount())
	order = make([]string, 0, g.NodeCount())

	var stack []frame
	for _, root := range g.Nodes() {
		if color[root] != white {
			continue
		}
		color[root] = gray
		stack = append(stack[:0], frame{id: root})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.Children(top.id)
			if top.next == len(children) {
				color[top.id] = black
				order = append(order, top.id)
				stack = stack[:len(stack)-1]
				continue
			}

			child := children[top.next]
			top.next++
			switch color[child] {
			case white:
				color[child] = gray
				stack = append(stack, frame{id: child})
			case gray:
				backEdges = append(backEdges, dag.Edge{From: top.id, To: child})
			}
		}
	}
	return order, backEdges
}

// CycleNodes returns the distinct endpoints of edges in first-seen order.
func CycleNodes(edges []dag.Edge) []string {
	seen := make(map[string]bool, 2*len(edges))
	var out []string
	for _, e := range edges {
		for _, id := range [2]string{e.From, e.To} {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}
