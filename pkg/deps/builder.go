package deps

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pybundle/pkg/dag"
	"github.com/matzehuels/pybundle/pkg/project"
)

// Node metadata keys set by Builder.
const (
	MetaRel        = "rel"         // Root-relative, slash-separated path
	MetaParseError = "parse_error" // Set when the file yielded no specifiers
)

// Diagnostic is a non-fatal problem with one file.
type Diagnostic struct {
	File string
	Err  error
}

// Result is the outcome of Builder.Build.
type Result struct {
	Graph       *dag.Graph
	Files       []string               // Canonical paths in discovery order
	Sources     map[string]*SourceFile // Loaded files, keyed by path
	Diagnostics []Diagnostic
}

// Builder discovers the files an entry file transitively imports.
//
// A Builder holds no per-run state; each Build call starts fresh.
type Builder struct {
	Extractor Extractor
	Resolver  Resolver
	Logger    *log.Logger
	ReadFile  func(string) ([]byte, error) // Defaults to os.ReadFile
}

// Build walks imports breadth-first from entry. entry and root must be
// canonical. Every file that resolves inside root becomes a node; an edge
// from A to B means A imports B. Files outside root and self-imports are
// dropped.
//
// Unreadable or unparsable files are recorded as diagnostics and contribute
// no edges. Build itself fails only when given an empty entry.
func (b *Builder) Build(ctx context.Context, entry, root string) (*Result, error) {
	if entry == "" {
		return nil, dag.ErrInvalidNodeID
	}
	logger := b.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	res := &Result{
		Graph:   dag.New(),
		Sources: make(map[string]*SourceFile),
	}
	visited := make(map[string]bool)
	queue := []string{entry}

	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		if visited[path] {
			continue
		}
		visited[path] = true
		res.Files = append(res.Files, path)

		if err := res.Graph.EnsureNode(path); err != nil {
			return nil, err
		}
		_ = res.Graph.SetMeta(path, MetaRel, project.Rel(root, path))

		src := NewSourceFile(path, b.ReadFile)
		res.Sources[path] = src

		specs, err := src.Specifiers(ctx, b.Extractor)
		if err != nil {
			logger.Debug("skipping imports", "file", project.Rel(root, path), "error", err)
			_ = res.Graph.SetMeta(path, MetaParseError, err.Error())
			res.Diagnostics = append(res.Diagnostics, Diagnostic{File: path, Err: err})
			continue
		}

		for _, spec := range specs {
			for _, dep := range b.Resolver.ResolveAll(spec) {
				if dep == path {
					continue
				}
				if !project.Within(root, dep) {
					logger.Debug("dropping dependency outside root", "file", project.Rel(root, path), "dep", dep)
					continue
				}
				if err := res.Graph.AddEdge(path, dep); err != nil {
					return nil, err
				}
				if !visited[dep] {
					queue = append(queue, dep)
				}
			}
		}
		logger.Debug("scanned", "file", project.Rel(root, path), "imports", len(specs), "deps", res.Graph.OutDegree(path))
	}

	return res, nil
}
