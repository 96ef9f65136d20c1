package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/pybundle/pkg/bundle"
	"github.com/matzehuels/pybundle/pkg/config"
	"github.com/matzehuels/pybundle/pkg/dag/transform"
	"github.com/matzehuels/pybundle/pkg/deps"
	"github.com/matzehuels/pybundle/pkg/errors"
	"github.com/matzehuels/pybundle/pkg/event"
	"github.com/matzehuels/pybundle/pkg/observability"
	"github.com/matzehuels/pybundle/pkg/project"
)

// Runner executes bundling runs.
//
// The Runner is stateless except for its logger - it doesn't store run
// results. Multiple goroutines can safely use the same Runner.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger uses log.Default().
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// run holds the mutable state of one Run call.
type run struct {
	opts    Options
	cfg     config.Config
	em      *event.Emitter
	res     *Result
	sources map[string]*deps.SourceFile
}

// Run executes root detection, graph building, sorting and writing.
//
// The returned Result is never nil. On failure the error carries a code
// from pkg/errors and an error event has been emitted.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	st := &run{
		opts: opts,
		res:  &Result{RunID: uuid.NewString()},
	}
	st.em = event.NewEmitter(st.res.RunID, opts.Sink)
	st.em.Infof("Starting bundling process")

	err := r.execute(ctx, st)

	st.res.Stats.TotalTime = time.Since(start)
	observability.Pipeline().OnRunComplete(ctx, len(st.res.Files), len(st.res.Cycles), st.res.Stats.TotalTime, err)
	if err != nil {
		r.fail(st, err)
		return st.res, err
	}

	st.em.Enter(event.PhaseDone)
	if opts.DryRun {
		st.em.Infof("Dry run finished. %d files ordered", len(st.res.Order))
	} else {
		st.em.Emit(event.SeverityInfo, map[string]any{"output": st.res.Output, "digest": st.res.Digest},
			"Bundling process finished. Output: %s", st.res.Output)
	}
	r.Logger.Info("bundled",
		"files", st.res.Stats.FileCount,
		"cycles", st.res.Stats.CycleCount,
		"duration", st.res.Stats.TotalTime)
	return st.res, nil
}

func (r *Runner) execute(ctx context.Context, st *run) error {
	if err := r.prepare(st); err != nil {
		return err
	}
	if err := r.phase(ctx, st, event.PhaseRoot, &st.res.Stats.RootTime, r.locateRoot); err != nil {
		return err
	}
	if err := r.phase(ctx, st, event.PhaseGraph, &st.res.Stats.GraphTime, func(st *run) error {
		return r.buildGraph(context.WithoutCancel(ctx), st)
	}); err != nil {
		return err
	}
	if err := r.phase(ctx, st, event.PhaseSort, &st.res.Stats.SortTime, r.sort); err != nil {
		return err
	}
	if st.opts.DryRun {
		return nil
	}
	return r.phase(ctx, st, event.PhaseWrite, &st.res.Stats.WriteTime, r.write)
}

// prepare validates settings and the entry file. A missing entry is fatal
// before any other work.
func (r *Runner) prepare(st *run) error {
	st.cfg = config.Default().Merge(st.opts.Config)
	if err := st.cfg.Validate(); err != nil {
		return err
	}
	if err := errors.ValidatePath("entry", st.opts.Entry); err != nil {
		return err
	}
	if !st.opts.DryRun {
		if out := st.output(); out != "" {
			if err := errors.ValidateOutputPath(out); err != nil {
				return err
			}
		}
	}

	entry, err := project.Canonical(st.opts.Entry)
	if err != nil || !project.IsFile(entry) {
		return errors.New(errors.ErrCodeFatalInput, "Main Python file not found: %s", st.opts.Entry)
	}
	st.res.Entry = entry
	if lang := st.opts.language(); !lang.Supports(entry) {
		st.em.Warnf("Entry %s is not a %s source file", filepath.Base(entry), lang.Name)
	}
	return nil
}

// phase runs fn as one pipeline step: it checks ctx, reports hooks, times
// the step and converts a panic into an internal error.
func (r *Runner) phase(ctx context.Context, st *run, p event.Phase, elapsed *time.Duration, fn func(*run) error) (err error) {
	if cerr := ctx.Err(); cerr != nil {
		return errors.Wrap(errors.ErrCodeInternal, cerr, "run cancelled before %s phase", p)
	}

	hooks := observability.Pipeline()
	hooks.OnPhaseStart(ctx, string(p))
	st.em.Enter(p)
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Wrap(errors.ErrCodeInternal, &panicError{value: rec, stack: debug.Stack()},
				"unexpected failure in %s phase", p)
		}
		*elapsed = time.Since(start)
		hooks.OnPhaseComplete(ctx, string(p), *elapsed, err)
	}()

	if err := fn(st); err != nil {
		if errors.GetCode(err) == "" {
			return errors.Wrap(errors.ErrCodeInternal, err, "%s phase failed", p)
		}
		return err
	}
	return nil
}

func (r *Runner) locateRoot(st *run) error {
	if st.opts.Root != "" {
		dir, err := project.Canonical(st.opts.Root)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "root %s", st.opts.Root)
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return errors.New(errors.ErrCodeInvalidPath, "root is not a directory: %s", st.opts.Root)
		}
		if !project.Within(dir, st.res.Entry) {
			return errors.New(errors.ErrCodeInvalidInput, "entry %s is outside root %s", st.res.Entry, dir)
		}
		st.res.Root = project.Root{Dir: dir}
		st.em.Emit(event.SeverityInfo, map[string]any{"root": dir}, "Using project root: %s", dir)
	} else {
		root, err := project.Locate(st.res.Entry, st.cfg.Markers)
		if err != nil {
			return err
		}
		st.res.Root = root
		if root.Fallback() {
			st.em.Emit(event.SeverityWarn, map[string]any{"root": root.Dir},
				"No project root marker found. Defaulting project root to: %s", root.Dir)
		} else {
			st.em.Emit(event.SeverityInfo, map[string]any{"root": root.Dir, "marker": root.Marker},
				"Detected project root: %s", root.Dir)
		}
	}

	pc, ok, err := config.LoadPyproject(st.res.Root.Dir)
	switch {
	case err != nil:
		st.em.Warnf("Ignoring project settings: %v", err)
	case ok:
		st.cfg = config.Default().Merge(pc).Merge(st.opts.Config)
		if err := st.cfg.Validate(); err != nil {
			return err
		}
		st.em.Debugf("Applied [tool.pybundle] settings from pyproject.toml")
	}

	r.Logger.Info("located project root", "root", st.res.Root.Dir, "marker", st.res.Root.Marker)
	return nil
}

func (r *Runner) buildGraph(ctx context.Context, st *run) error {
	root := st.res.Root.Dir
	lang := st.opts.language()
	resolver, err := lang.Resolver(root, deps.Options{
		SourceExt:     st.cfg.SourceExt,
		InitFile:      st.cfg.InitFile,
		SearchPaths:   st.cfg.SearchPaths,
		NoSystemPaths: st.cfg.NoSystemPaths,
		Logger:        r.Logger,
	})
	if err != nil {
		return fmt.Errorf("create %s resolver: %w", lang.Name, err)
	}

	b := &deps.Builder{Extractor: lang.Extractor(), Resolver: resolver, Logger: r.Logger}
	built, err := b.Build(ctx, st.res.Entry, root)
	if err != nil {
		return err
	}
	st.sources = built.Sources
	st.res.Graph = built.Graph
	st.res.Files = built.Files
	st.res.Diagnostics = built.Diagnostics
	st.res.Stats.FileCount = len(built.Files)
	st.res.Stats.EdgeCount = built.Graph.EdgeCount()

	for _, d := range built.Diagnostics {
		fields := map[string]any{"file": project.Rel(root, d.File), "code": string(errors.ErrCodeParseFailure)}
		var syn *deps.SyntaxError
		if errors.As(d.Err, &syn) {
			fields["line"] = syn.Line
		}
		st.em.Emit(event.SeverityWarn, fields, "Skipping imports of %s: %v", project.Rel(root, d.File), d.Err)
	}
	st.em.Emit(event.SeverityInfo, map[string]any{"files": st.rels(built.Files)},
		"Identified %d project files", len(built.Files))

	r.Logger.Info("built import graph",
		"files", built.Graph.NodeCount(),
		"edges", built.Graph.EdgeCount())
	return nil
}

func (r *Runner) sort(st *run) error {
	order, cycles := transform.TopologicalSort(st.res.Graph)
	st.res.Cycles = cycles
	st.res.Order = bundle.ForceLast(order, st.res.Entry)
	st.res.Stats.CycleCount = len(cycles)

	st.em.Infof("Topological sort complete")
	if len(cycles) > 0 {
		edges := make([]string, len(cycles))
		for i, e := range cycles {
			edges[i] = st.rel(e.From) + " -> " + st.rel(e.To)
		}
		st.em.Emit(event.SeverityWarn,
			map[string]any{
				"code":  string(errors.ErrCodeCycleDetected),
				"nodes": st.rels(transform.CycleNodes(cycles)),
				"edges": edges,
			},
			"Circular dependencies detected (bundling will proceed with a best-effort order)")
	} else {
		st.em.Infof("No circular dependencies detected")
	}
	st.em.Emit(event.SeverityInfo, map[string]any{"order": st.rels(st.res.Order)}, "File order for bundling")

	r.Logger.Info("sorted files", "files", len(st.res.Order), "cycles", len(cycles))
	return nil
}

func (r *Runner) write(st *run) error {
	output := st.output()
	if canon, err := project.Canonical(output); err == nil && slices.Contains(st.res.Files, canon) {
		return errors.New(errors.ErrCodeInvalidPath, "output %s would overwrite the project file %s", output, st.rel(canon))
	}
	st.em.Infof("Writing combined file to: %s", output)

	read := func(path string) ([]byte, error) {
		if src, ok := st.sources[path]; ok {
			return src.Content()
		}
		return os.ReadFile(path)
	}
	sum, err := bundle.WriteFile(output, st.res.Order, st.res.Entry, st.res.Root.Dir, read)
	if err != nil {
		return errors.Wrap(errors.ErrCodeOutputIO, err, "Failed to write output file %s", output)
	}

	for _, fe := range sum.Errors {
		st.res.Unreadable = append(st.res.Unreadable, fe.Rel)
		st.em.Emit(event.SeverityWarn, map[string]any{"file": fe.Rel}, "Could not read %s: %v", fe.Rel, fe.Err)
	}
	st.res.Output = sum.Path
	st.res.Digest = sum.Digest
	st.em.Emit(event.SeverityInfo,
		map[string]any{"output": sum.Path, "bytes": sum.Bytes, "digest": sum.Digest},
		"Combined file created successfully")

	r.Logger.Info("wrote bundle", "output", sum.Path, "bytes", sum.Bytes, "digest", sum.Digest[:12])
	return nil
}

func (r *Runner) fail(st *run, err error) {
	fields := map[string]any{"code": string(errors.GetCode(err)), "fatal": errors.Fatal(err)}
	var pe *panicError
	if errors.As(err, &pe) {
		fields["stack"] = string(pe.stack)
	}
	st.em.Emit(event.SeverityError, fields, "Error: %s", errors.Detail(err))
	r.Logger.Error("bundling failed", "phase", st.em.Phase, "error", err)
}

func (st *run) output() string {
	if st.opts.Output != "" {
		return st.opts.Output
	}
	return st.cfg.Output
}

func (st *run) rel(path string) string { return project.Rel(st.res.Root.Dir, path) }

func (st *run) rels(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = st.rel(p)
	}
	return out
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.value) }
