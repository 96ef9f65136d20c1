// Package deps discovers the local source files an entry file depends on.
//
// # Overview
//
// Discovery is split into three roles so that language details stay out of
// the traversal:
//
//   - [Extractor] reads one file's import statements into [Specifier] values
//   - [Resolver] maps a specifier to a canonical file inside the project
//   - [Builder] walks the imports breadth-first and records a [dag.Graph]
//
// A [Language] bundles an extractor and resolver constructor; the python
// subpackage provides the implementation used by pybundle.
//
// # Building a Graph
//
//	lang := python.Language
//	res, _ := lang.Resolver(root, deps.Options{})
//	b := &deps.Builder{Extractor: lang.Extractor(), Resolver: res}
//	result, err := b.Build(ctx, entry, root)
//
// The builder keeps a visited set keyed by canonical path, so a file
// reachable through several imports (a diamond) is read and parsed once.
// Traversal is first-in first-out and each file's specifiers are handled
// in source order, which makes node order deterministic for a given tree.
//
// # Failure Handling
//
// A file that cannot be read or parsed becomes a [Diagnostic] and a node
// without edges; the walk continues. Specifiers that name external or
// missing modules produce no edge and no diagnostic.
//
// [dag.Graph]: github.com/matzehuels/pybundle/pkg/dag.Graph
package deps
