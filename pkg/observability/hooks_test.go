package observability_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pybundle/pkg/config"
	"github.com/matzehuels/pybundle/pkg/errors"
	"github.com/matzehuels/pybundle/pkg/event"
	"github.com/matzehuels/pybundle/pkg/observability"
	"github.com/matzehuels/pybundle/pkg/pipeline"
)

// runStats is what a metrics exporter would collect from the hooks.
type runStats struct {
	observability.NoopPipelineHooks

	mu        sync.Mutex
	started   []string
	completed []string
	failed    map[string]error
	runs      []runRecord
}

type runRecord struct {
	files  int
	cycles int
	err    error
}

func (s *runStats) OnPhaseStart(_ context.Context, phase string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, phase)
}

func (s *runStats) OnPhaseComplete(_ context.Context, phase string, _ time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = append(s.completed, phase)
	if err != nil {
		if s.failed == nil {
			s.failed = make(map[string]error)
		}
		s.failed[phase] = err
	}
}

func (s *runStats) OnRunComplete(_ context.Context, files, cycles int, _ time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, runRecord{files: files, cycles: cycles, err: err})
}

func install(t *testing.T) *runStats {
	t.Helper()
	s := &runStats{}
	observability.SetPipelineHooks(s)
	t.Cleanup(observability.Reset)
	return s
}

func project(t *testing.T, files map[string]string) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	files[".project_root"] = ""
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func run(root, entry, output string, dryRun bool) error {
	runner := pipeline.NewRunner(log.NewWithOptions(io.Discard, log.Options{}))
	_, err := runner.Run(context.Background(), pipeline.Options{
		Entry:  filepath.Join(root, entry),
		Output: output,
		DryRun: dryRun,
		Config: config.Config{NoSystemPaths: true},
	})
	return err
}

func phases(ps ...event.Phase) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}

func TestHooksFollowDryRun(t *testing.T) {
	stats := install(t)
	root := project(t, map[string]string{
		"main.py": "import a\n",
		"a.py":    "import b\n",
		"b.py":    "import a\n",
	})

	if err := run(root, "main.py", "", true); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := phases(event.PhaseRoot, event.PhaseGraph, event.PhaseSort)
	if !slices.Equal(stats.started, want) || !slices.Equal(stats.completed, want) {
		t.Errorf("started = %v, completed = %v, want %v", stats.started, stats.completed, want)
	}
	if len(stats.failed) != 0 {
		t.Errorf("failed phases = %v", stats.failed)
	}
	if len(stats.runs) != 1 || stats.runs[0] != (runRecord{files: 3, cycles: 1}) {
		t.Errorf("runs = %+v, want one run of 3 files with 1 cycle", stats.runs)
	}
}

func TestHooksReportFailedWrite(t *testing.T) {
	stats := install(t)
	root := project(t, map[string]string{"main.py": "import lib\n", "lib.py": ""})

	err := run(root, "main.py", filepath.Join(root, "lib.py"), false)
	if err == nil {
		t.Fatal("run overwrote a project file")
	}

	want := phases(event.PhaseRoot, event.PhaseGraph, event.PhaseSort, event.PhaseWrite)
	if !slices.Equal(stats.completed, want) {
		t.Errorf("completed = %v, want %v", stats.completed, want)
	}
	if got := stats.failed[string(event.PhaseWrite)]; errors.GetCode(got) != errors.ErrCodeInvalidPath {
		t.Errorf("write phase error = %v", got)
	}
	if len(stats.runs) != 1 || stats.runs[0].files != 2 || stats.runs[0].err == nil {
		t.Errorf("runs = %+v", stats.runs)
	}
}

func TestHooksSeeRunRejectedBeforePhases(t *testing.T) {
	stats := install(t)
	root := project(t, map[string]string{})

	err := run(root, "missing.py", filepath.Join(root, "out.txt"), false)
	if errors.GetCode(err) != errors.ErrCodeFatalInput {
		t.Fatalf("run error = %v, want %s", err, errors.ErrCodeFatalInput)
	}
	if len(stats.started) != 0 {
		t.Errorf("phases started for a missing entry: %v", stats.started)
	}
	if len(stats.runs) != 1 || stats.runs[0].files != 0 || errors.GetCode(stats.runs[0].err) != errors.ErrCodeFatalInput {
		t.Errorf("runs = %+v", stats.runs)
	}
}

type requestLog struct {
	observability.NoopHTTPHooks
}

func TestRegistry(t *testing.T) {
	t.Cleanup(observability.Reset)
	stats, requests := &runStats{}, &requestLog{}

	tests := []struct {
		name         string
		apply        func()
		wantPipeline observability.PipelineHooks
		wantHTTP     observability.HTTPHooks
	}{
		{"defaults", observability.Reset, observability.NoopPipelineHooks{}, observability.NoopHTTPHooks{}},
		{"set pipeline", func() { observability.SetPipelineHooks(stats) }, stats, observability.NoopHTTPHooks{}},
		{"set http", func() { observability.SetHTTPHooks(requests) }, stats, requests},
		{"nil is ignored", func() {
			observability.SetPipelineHooks(nil)
			observability.SetHTTPHooks(nil)
		}, stats, requests},
		{"reset", observability.Reset, observability.NoopPipelineHooks{}, observability.NoopHTTPHooks{}},
	}

	for _, tt := range tests {
		tt.apply()
		if got := observability.Pipeline(); got != tt.wantPipeline {
			t.Errorf("%s: Pipeline() = %T", tt.name, got)
		}
		if got := observability.HTTP(); got != tt.wantHTTP {
			t.Errorf("%s: HTTP() = %T", tt.name, got)
		}
	}
}

func TestNoopHooks(t *testing.T) {
	ctx := context.Background()
	var p observability.PipelineHooks = observability.NoopPipelineHooks{}
	p.OnPhaseStart(ctx, string(event.PhaseGraph))
	p.OnPhaseComplete(ctx, string(event.PhaseGraph), time.Millisecond, nil)
	p.OnRunComplete(ctx, 0, 0, time.Millisecond, errors.New(errors.ErrCodeInternal, "boom"))

	var h observability.HTTPHooks = observability.NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/healthz")
	h.OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)
}
