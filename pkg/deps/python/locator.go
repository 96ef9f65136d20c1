package python

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrNotFound is returned by a Locator when no search directory defines the
// module.
var ErrNotFound = errors.New("module not found")

// Location is where a module is defined: a file, or the interpreter itself.
type Location struct {
	File    string // Defining file; empty when BuiltIn
	BuiltIn bool   // Compiled into the interpreter
}

// Locator finds the file that defines a module by name, the way the
// interpreter's import system would, without running an interpreter.
type Locator interface {
	Locate(name string) (Location, error)
}

// SearchPathLocator scans an ordered list of directories, like sys.path.
//
// The first directory that defines the top-level package wins; submodules
// are then looked up inside that package only. A directory without an
// __init__.py is not treated as a package.
type SearchPathLocator struct {
	paths []string
}

// NewSearchPathLocator returns a locator over paths, in priority order.
// Empty and duplicate entries are dropped.
func NewSearchPathLocator(paths ...string) *SearchPathLocator {
	l := &SearchPathLocator{}
	for _, p := range paths {
		if p == "" {
			continue
		}
		p = filepath.Clean(p)
		if !slices.Contains(l.paths, p) {
			l.paths = append(l.paths, p)
		}
	}
	return l
}

// Paths returns the search directories in priority order.
func (l *SearchPathLocator) Paths() []string { return slices.Clone(l.paths) }

// Locate resolves a dotted module name.
func (l *SearchPathLocator) Locate(name string) (Location, error) {
	if name == "" {
		return Location{}, ErrNotFound
	}
	parts := strings.Split(name, ".")
	if IsBuiltin(parts[0]) {
		if len(parts) == 1 {
			return Location{BuiltIn: true}, nil
		}
		return Location{}, ErrNotFound
	}

	for _, dir := range l.paths {
		file, ok := findModule(dir, parts[0])
		if !ok {
			continue
		}
		pkg := filepath.Join(dir, parts[0])
		for _, part := range parts[1:] {
			if filepath.Base(file) != initFile {
				return Location{}, ErrNotFound
			}
			if file, ok = findModule(pkg, part); !ok {
				return Location{}, ErrNotFound
			}
			pkg = filepath.Join(pkg, part)
		}
		return Location{File: file}, nil
	}
	return Location{}, ErrNotFound
}

const initFile = "__init__.py"

// findModule looks for name in dir in the interpreter's order: regular
// package, extension module, source module.
func findModule(dir, name string) (string, bool) {
	if p := filepath.Join(dir, name, initFile); isFile(p) {
		return p, true
	}
	for _, pattern := range []string{name + ".*.so", name + ".so", name + ".*.pyd", name + ".pyd"} {
		if matches, _ := filepath.Glob(filepath.Join(dir, pattern)); len(matches) > 0 {
			return matches[0], true
		}
	}
	if p := filepath.Join(dir, name+".py"); isFile(p) {
		return p, true
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// CachedLocator memoises another Locator's answers, including misses.
// It is safe for concurrent use.
type CachedLocator struct {
	next  Locator
	cache *lru.Cache[string, cached]
}

type cached struct {
	loc Location
	err error
}

// NewCachedLocator wraps next with an LRU cache of the given size.
func NewCachedLocator(next Locator, size int) (*CachedLocator, error) {
	c, err := lru.New[string, cached](size)
	if err != nil {
		return nil, err
	}
	return &CachedLocator{next: next, cache: c}, nil
}

// Locate returns the cached answer for name, consulting the wrapped
// locator on a miss.
func (c *CachedLocator) Locate(name string) (Location, error) {
	if v, ok := c.cache.Get(name); ok {
		return v.loc, v.err
	}
	loc, err := c.next.Locate(name)
	c.cache.Add(name, cached{loc: loc, err: err})
	return loc, err
}

// Len returns the number of cached names.
func (c *CachedLocator) Len() int { return c.cache.Len() }

// DiscoverSystemPaths returns the interpreter directories present on this
// machine: standard library, lib-dynload and site-packages of every
// python3.x under /usr/lib and /usr/local/lib, the active virtualenv's
// site-packages, and Lib under PYTHONHOME on Windows layouts.
// Non-existent directories are omitted.
func DiscoverSystemPaths(getenv func(string) string) []string {
	if getenv == nil {
		getenv = os.Getenv
	}

	var patterns []string
	if venv := getenv("VIRTUAL_ENV"); venv != "" {
		patterns = append(patterns,
			filepath.Join(venv, "lib", "python3*", "site-packages"),
			filepath.Join(venv, "Lib", "site-packages"),
		)
	}
	if home := getenv("PYTHONHOME"); home != "" {
		patterns = append(patterns,
			filepath.Join(home, "lib", "python3*"),
			filepath.Join(home, "lib", "python3*", "lib-dynload"),
			filepath.Join(home, "lib", "python3*", "site-packages"),
			filepath.Join(home, "Lib"),
			filepath.Join(home, "DLLs"),
			filepath.Join(home, "Lib", "site-packages"),
		)
	}
	for _, prefix := range []string{"/usr/local/lib", "/usr/lib"} {
		patterns = append(patterns,
			filepath.Join(prefix, "python3*"),
			filepath.Join(prefix, "python3*", "lib-dynload"),
			filepath.Join(prefix, "python3*", "site-packages"),
			filepath.Join(prefix, "python3*", "dist-packages"),
		)
	}
	patterns = append(patterns, "/usr/lib/python3/dist-packages")

	var out []string
	for _, pattern := range patterns {
		matches, _ := filepath.Glob(pattern)
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.IsDir() && !slices.Contains(out, m) {
				out = append(out, m)
			}
		}
	}
	return out
}
