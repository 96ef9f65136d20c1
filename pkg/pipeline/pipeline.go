// Package pipeline runs a complete bundling pass.
//
// This package sequences the bundling steps so that the CLI, the TUI and the
// HTTP server share one implementation:
//
//  1. Root: find the project root above the entry file
//  2. Graph: discover local imports breadth-first
//  3. Sort: order files dependencies-first, reporting cycles
//  4. Write: concatenate the files into the bundle, entry last
//
// Progress is reported as structured [event.Event] values through the sink
// in [Options]; the runner's logger receives one summary line per phase.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	res, err := runner.Run(ctx, pipeline.Options{
//	    Entry:  "app/main.py",
//	    Output: "dist/bundle.txt",
//	    Sink:   event.LogSink(logger),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Order)
//
// For callers that only need success or failure, [Bundle] wraps a run in a
// single call returning a bool.
//
// # Failure Policy
//
// Only a missing entry file ([errors.ErrCodeFatalInput]) and an unwritable
// output ([errors.ErrCodeOutputIO]) stop a run. Syntax errors,
// unreadable dependencies and import cycles are reported as warnings and
// the bundle is still produced. Any other failure, including a panic inside
// a phase, is returned as [errors.ErrCodeInternal].
//
// # Concurrency
//
// Run keeps all per-run state on the stack, so one Runner may serve
// concurrent runs. Within a run nothing happens in parallel, and the context
// is only checked before each phase starts.
//
// [errors.ErrCodeFatalInput]: github.com/matzehuels/pybundle/pkg/errors.ErrCodeFatalInput
// [errors.ErrCodeOutputIO]: github.com/matzehuels/pybundle/pkg/errors.ErrCodeOutputIO
// [errors.ErrCodeInternal]: github.com/matzehuels/pybundle/pkg/errors.ErrCodeInternal
package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pybundle/pkg/config"
	"github.com/matzehuels/pybundle/pkg/dag"
	"github.com/matzehuels/pybundle/pkg/deps"
	"github.com/matzehuels/pybundle/pkg/deps/python"
	"github.com/matzehuels/pybundle/pkg/event"
	"github.com/matzehuels/pybundle/pkg/project"
)

// Options configures a single run.
type Options struct {
	// Entry is the entry source file (absolute or relative to the working
	// directory). It must exist.
	Entry string `json:"entry"`

	// Output is the bundle path. Empty uses the configured output, which
	// defaults to combined_output.txt in the working directory.
	Output string `json:"output,omitempty"`

	// Root overrides project root detection.
	Root string `json:"root,omitempty"`

	// DryRun computes the order without writing a bundle.
	DryRun bool `json:"dry_run,omitempty"`

	// Config holds explicit settings. Zero fields fall back to the
	// project's [tool.pybundle] table and then to built-in defaults.
	Config config.Config `json:"-"`

	// Sink receives progress events. Nil discards them.
	Sink event.Sink `json:"-"`

	// Language selects extraction and resolution (default: Python).
	Language *deps.Language `json:"-"`
}

// Result contains the outputs of a run. Fields are filled as phases
// complete, so a failed run still carries what was computed before the
// failure.
type Result struct {
	// RunID identifies the run on every emitted event.
	RunID string

	// Entry is the canonical entry path.
	Entry string

	// Root is the detected (or overridden) project root.
	Root project.Root

	// Files lists discovered files in discovery order.
	Files []string

	// Graph is the import graph over Files.
	Graph *dag.Graph

	// Order is the bundle order, entry last.
	Order []string

	// Cycles are the back edges found while sorting.
	Cycles []dag.Edge

	// Diagnostics are per-file problems that did not stop the run.
	Diagnostics []deps.Diagnostic

	// Output is the absolute bundle path; empty on a dry run.
	Output string

	// Digest is the hex SHA-256 of the bundle; empty on a dry run.
	Digest string

	// Unreadable lists files replaced by error blocks.
	Unreadable []string

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains run statistics.
type Stats struct {
	FileCount  int
	EdgeCount  int
	CycleCount int
	RootTime   time.Duration
	GraphTime  time.Duration
	SortTime   time.Duration
	WriteTime  time.Duration
	TotalTime  time.Duration
}

// Bundle runs the pipeline with default settings and reports success. It is
// the embeddable entry point: all detail goes to sink.
func Bundle(ctx context.Context, entry, output string, sink event.Sink) bool {
	r := NewRunner(log.NewWithOptions(io.Discard, log.Options{}))
	_, err := r.Run(ctx, Options{Entry: entry, Output: output, Sink: sink})
	return err == nil
}

func (o Options) language() *deps.Language {
	if o.Language != nil {
		return o.Language
	}
	return python.Language
}
