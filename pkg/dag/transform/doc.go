// Package transform orders a dependency graph for bundling.
//
// [TopologicalSort] is a cycle-tolerant depth-first post-order sort. Python
// permits circular imports, so a cycle is not an error: the sort reports
// each back edge it meets and still returns every node exactly once, with
// all edges outside the reported set respected.
//
// The walk uses an explicit stack rather than recursion, so deep import
// chains cannot exhaust the goroutine stack.
package transform
