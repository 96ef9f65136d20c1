// Package cli implements the pybundle command-line interface.
//
// Every front-end drives the same [pipeline.Runner]; they only differ in how
// they present the run's event stream.
//
// # Commands
//
//   - bundle: write the dependency-ordered bundle for an entry file
//   - graph: export the import graph as JSON, DOT or SVG
//   - roots: show which project root an entry file belongs to
//   - tui: run a bundle with an interactive progress view
//   - serve: expose bundling over HTTP
//   - completion: generate shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is attached to the command context and retrieved with loggerFromContext.
//
// [pipeline.Runner]: github.com/matzehuels/pybundle/pkg/pipeline.Runner
package cli
