package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pybundle/pkg/buildinfo"
	"github.com/matzehuels/pybundle/pkg/config"
	"github.com/matzehuels/pybundle/pkg/errors"
	"github.com/matzehuels/pybundle/pkg/event"
	"github.com/matzehuels/pybundle/pkg/observability"
	"github.com/matzehuels/pybundle/pkg/pipeline"
	"github.com/matzehuels/pybundle/pkg/project"
)

const (
	maxRequestBytes = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// serveCommand creates the serve command, an HTTP front-end to the pipeline.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		base     string
		settings settingsFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve bundling over HTTP",
		Long: `Serve starts an HTTP server that bundles on request.

Endpoints:
  POST /v1/bundles  {"entry": "...", "output": "...", "root": "...", "dry_run": false}
  GET  /healthz

Relative paths in requests are resolved against --base, and every path
must stay inside it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := settings.config(os.Getenv)
			if err != nil {
				return err
			}
			srv, err := newServer(loggerFromContext(cmd.Context()), base, cfg)
			if err != nil {
				return err
			}
			return srv.listen(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&base, "base", ".", "directory that request paths are confined to")
	settings.register(cmd)

	return cmd
}

// =============================================================================
// Server
// =============================================================================

type server struct {
	logger *log.Logger
	base   string
	cfg    config.Config
}

func newServer(logger *log.Logger, base string, cfg config.Config) (*server, error) {
	dir, err := project.Canonical(base)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "base %s", base)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "base is not a directory: %s", base)
	}
	return &server{logger: logger, base: dir, cfg: cfg}, nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/bundles", s.handleBundle)
	return r
}

func (s *server) listen(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "base", s.base)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(sctx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// observe reports every request to the registered HTTP hooks.
func (s *server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"request_id", middleware.GetReqID(r.Context()),
			"duration", elapsed)
	})
}

// =============================================================================
// Handlers
// =============================================================================

type bundleRequest struct {
	Entry  string `json:"entry"`
	Output string `json:"output,omitempty"`
	Root   string `json:"root,omitempty"`
	DryRun bool   `json:"dry_run,omitempty"`
}

type edgeJSON struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type errorJSON struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type bundleResponse struct {
	RunID   string        `json:"run_id,omitempty"`
	Success bool          `json:"success"`
	Root    string        `json:"root,omitempty"`
	Order   []string      `json:"order"`
	Cycles  []edgeJSON    `json:"cycles"`
	Output  string        `json:"output,omitempty"`
	Digest  string        `json:"digest,omitempty"`
	Events  []event.Event `json:"events"`
	Error   *errorJSON    `json:"error,omitempty"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
	})
}

func (s *server) handleBundle(w http.ResponseWriter, r *http.Request) {
	var req bundleRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeFailure(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request"))
		return
	}
	if req.Entry == "" {
		writeFailure(w, errors.New(errors.ErrCodeInvalidInput, "entry is required"))
		return
	}
	ext := s.cfg.SourceExt
	if ext == "" {
		ext = config.DefaultSourceExt
	}
	if err := errors.ValidateEntryPath(req.Entry, ext); err != nil {
		writeFailure(w, err)
		return
	}

	opts := pipeline.Options{DryRun: req.DryRun, Config: s.cfg}
	var err error
	if opts.Entry, err = s.confine(req.Entry); err != nil {
		writeFailure(w, err)
		return
	}
	if req.Output != "" {
		if opts.Output, err = s.confine(req.Output); err != nil {
			writeFailure(w, err)
			return
		}
		if filepath.Ext(opts.Output) == ext {
			writeFailure(w, errors.New(errors.ErrCodeInvalidPath, "output must not be a %s source file: %s", ext, req.Output))
			return
		}
	} else if !req.DryRun {
		opts.Output = filepath.Join(s.base, config.DefaultOutput)
	}
	if req.Root != "" {
		if opts.Root, err = s.confine(req.Root); err != nil {
			writeFailure(w, err)
			return
		}
	}

	// One runner and one collector per request.
	var events event.Collector
	opts.Sink = &events
	res, runErr := pipeline.NewRunner(s.logger).Run(r.Context(), opts)

	resp := bundleResponse{
		RunID:   res.RunID,
		Success: runErr == nil,
		Order:   []string{},
		Cycles:  []edgeJSON{},
		Root:    res.Root.Dir,
		Output:  res.Output,
		Digest:  res.Digest,
		Events:  events.Filter(event.SeverityInfo),
	}
	for _, e := range res.Cycles {
		resp.Cycles = append(resp.Cycles, edgeJSON{
			From: project.Rel(res.Root.Dir, e.From),
			To:   project.Rel(res.Root.Dir, e.To),
		})
	}
	for _, p := range res.Order {
		resp.Order = append(resp.Order, project.Rel(res.Root.Dir, p))
	}

	status := http.StatusOK
	if runErr != nil {
		status = statusFor(runErr)
		resp.Error = &errorJSON{Code: string(errors.GetCode(runErr)), Message: errors.UserMessage(runErr)}
	}
	writeJSON(w, status, resp)
}

// confine resolves p against the base directory and rejects paths outside it.
func (s *server) confine(p string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.base, p)
	}
	canon, err := project.Canonical(p)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", p)
	}
	if !project.Within(s.base, canon) {
		return "", errors.New(errors.ErrCodeInvalidPath, "path is outside the served directory: %s", p)
	}
	return canon, nil
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeFatalInput, errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPath, errors.ErrCodeInvalidConfig:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeFailure(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), bundleResponse{
		Order:  []string{},
		Cycles: []edgeJSON{},
		Events: []event.Event{},
		Error:  &errorJSON{Code: string(errors.GetCode(err)), Message: errors.UserMessage(err)},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
