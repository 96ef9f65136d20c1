package python

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pybundle/pkg/deps"
	"github.com/matzehuels/pybundle/pkg/project"
)

// Resolver maps import specifiers to files inside one project root.
//
// An absolute import is first offered to the Locator: a built-in module, or
// one defined outside the root, is external. Otherwise (not found, or found
// inside the root, e.g. a local file shadowing an installed one) the module
// is looked up manually as base/a/b.py then base/a/b/__init__.py, where base
// is the root for absolute imports and the importing file's directory,
// walked up level-1 times, for relative ones. If neither exists, or the base
// lies above the root, the same candidates are tried directly under the
// root.
//
// A Resolver has no mutable state besides its locator's cache.
type Resolver struct {
	root      string
	locator   Locator
	sourceExt string
	initFile  string
	logger    *log.Logger
}

// NewResolver returns a resolver for root. A nil locator treats every
// absolute import as potentially local.
func NewResolver(root string, locator Locator, opts deps.Options) (*Resolver, error) {
	opts = opts.WithDefaults()
	canon, err := project.Canonical(root)
	if err != nil {
		return nil, err
	}
	return &Resolver{
		root:      canon,
		locator:   locator,
		sourceExt: opts.SourceExt,
		initFile:  opts.InitFile,
		logger:    opts.Logger,
	}, nil
}

// Root returns the canonical project root.
func (r *Resolver) Root() string { return r.root }

// ResolveAll returns the module's file followed by every imported name that
// is itself a submodule of it ("from pkg import helpers" depends on
// pkg/helpers.py as well as pkg/__init__.py). Names of an external module
// are not probed.
//
// Nothing is returned for external modules, modules not found in the
// project, an absolute import with an empty name, and relative imports that
// climb past the filesystem root.
func (r *Resolver) ResolveAll(spec deps.Specifier) []string {
	if spec.Level == 0 && r.external(spec.Name) {
		return nil
	}
	var out []string
	if p, ok := r.local(spec.Name, spec.Level, spec.File, true); ok {
		out = append(out, p)
	}
	for _, name := range spec.Names {
		sub := name
		if spec.Name != "" {
			sub = spec.Name + "." + name
		}
		if p, ok := r.local(sub, spec.Level, spec.File, false); ok && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// external reports whether an absolute module name is built in or defined
// outside the root. An empty name is external: there is nothing to resolve.
func (r *Resolver) external(name string) bool {
	if name == "" {
		return true
	}
	if r.locator == nil {
		return false
	}
	loc, err := r.locator.Locate(name)
	switch {
	case errors.Is(err, ErrNotFound):
		return false
	case err != nil:
		r.logger.Warn("module lookup failed", "module", name, "error", err)
		return false
	case loc.BuiltIn:
		r.logger.Debug("ignoring built-in module", "module", name)
		return true
	}
	origin, err := project.Canonical(loc.File)
	if err != nil || !project.Within(r.root, origin) {
		r.logger.Debug("ignoring external module", "module", name, "origin", loc.File)
		return true
	}
	return false
}

func (r *Resolver) local(name string, level int, from string, retry bool) (string, bool) {
	base, ok := r.base(level, from)
	if !ok {
		return "", false
	}
	var segs []string
	if name != "" {
		segs = strings.Split(name, ".")
	}
	if project.Within(r.root, base) {
		if p, ok := r.candidate(base, segs); ok {
			return p, true
		}
		if base == r.root {
			return "", false
		}
	}
	if !retry {
		return "", false
	}
	return r.candidate(r.root, segs)
}

// base returns the directory a specifier is resolved against, or false if a
// relative import runs out of filesystem ancestors. The base may lie above
// the root; nothing there is ever returned.
func (r *Resolver) base(level int, from string) (string, bool) {
	if level == 0 {
		return r.root, true
	}
	dir := filepath.Dir(from)
	for i := 1; i < level; i++ {
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
	return dir, true
}

// candidate tries base/segs.py then base/segs/__init__.py. With no segments
// only the package init of base itself is tried.
func (r *Resolver) candidate(base string, segs []string) (string, bool) {
	path := filepath.Join(append([]string{base}, segs...)...)
	var tries []string
	if len(segs) > 0 {
		tries = append(tries, path+r.sourceExt)
	}
	tries = append(tries, filepath.Join(path, r.initFile))

	for _, p := range tries {
		if !project.IsFile(p) {
			continue
		}
		canon, err := project.Canonical(p)
		if err != nil || !project.Within(r.root, canon) {
			continue
		}
		return canon, true
	}
	return "", false
}
