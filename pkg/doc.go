// Package pkg provides the libraries behind pybundle, which concatenates a
// Python program into one dependency-ordered text file.
//
// # Overview
//
// A bundle is built in four steps, each owned by one package:
//
//	entry file
//	    ↓
//	[project]    find the project root (marker files)
//	    ↓
//	[deps]       discover local imports breadth-first ([deps/python])
//	    ↓
//	[dag]        import graph; [dag/transform] orders it, reporting cycles
//	    ↓
//	[bundle]     write the files, dependencies first and entry last
//
// [pipeline] sequences the steps for every front-end and reports progress
// through [event].
//
// # Quick Start
//
//	runner := pipeline.NewRunner(logger)
//	res, err := runner.Run(ctx, pipeline.Options{
//	    Entry:  "app/main.py",
//	    Output: "dist/bundle.txt",
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Order)
//
// # Main Packages
//
// [project] - Root detection from marker files and path helpers (canonical
// paths, containment checks, root-relative names).
//
// [deps] - Language-neutral discovery: the Extractor and Resolver roles and
// the breadth-first graph Builder.
//
// [deps/python] - Python import extraction with tree-sitter, module
// resolution relative to the project root, and classification of standard
// library and installed packages through search paths.
//
// [dag] - Insertion-ordered directed graph of files.
//
// [dag/transform] - Cycle-tolerant topological sort.
//
// [bundle] - Bundle encoding and file output with a content digest.
//
// [pipeline] - The run orchestrator used by the CLI, TUI and HTTP server.
//
// # Supporting Packages
//
// [config] - Settings from defaults, pyproject.toml, TOML files and the
// environment.
//
// [event] - Structured progress events and sinks.
//
// [errors] - Coded errors following the bundling failure taxonomy.
//
// [observability] - Hooks for pipeline phases and HTTP requests.
//
// [io] - JSON export of the import graph.
//
// [render/nodelink] - Graphviz DOT and SVG diagrams of the import graph.
//
// [buildinfo] - Version information set at link time.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/deps/...     # Specific package
//	go test -run Example ./... # Examples only
//
// [project]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/project
// [deps]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/deps
// [deps/python]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/deps/python
// [dag]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/dag/transform
// [bundle]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/bundle
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/pipeline
// [config]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/config
// [event]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/event
// [errors]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/observability
// [io]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/io
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/render/nodelink
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/pybundle/pkg/buildinfo
package pkg
