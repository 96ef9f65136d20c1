package deps

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	DefaultSourceExt = ".py"         // Module source file extension
	DefaultInitFile  = "__init__.py" // File a package directory resolves to
	DefaultCacheSize = 1024          // Locator results remembered per run
)

// Options configures extraction and resolution.
type Options struct {
	SourceExt     string      // Module source extension (default: ".py")
	InitFile      string      // Package init file name (default: "__init__.py")
	SearchPaths   []string    // Extra directories for external-module lookup
	NoSystemPaths bool        // Skip discovery of the interpreter's own directories
	CacheSize     int         // Locator cache entries (default: 1024)
	Logger        *log.Logger // Per-file detail at debug level (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.SourceExt == "" {
		opts.SourceExt = DefaultSourceExt
	}
	if opts.InitFile == "" {
		opts.InitFile = DefaultInitFile
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return opts
}

// Specifier is one module reference found in an import statement, before
// resolution.
//
// Level counts leading dots: 0 is an absolute import, N > 0 is relative to
// the importing file's directory walked up N-1 times. Names holds the
// imported names of a from-import, which may themselves be submodules.
type Specifier struct {
	Name  string   // Dotted module name, possibly empty ("from . import x")
	Level int      // Relative level
	Names []string // Names imported by a from-import
	File  string   // Canonical path of the importing file
	Line  int      // 1-based line of the statement
}

// String returns the specifier as written, e.g. "..pkg.mod".
func (s Specifier) String() string {
	return strings.Repeat(".", s.Level) + s.Name
}

// Extractor finds the import specifiers of one source file. It never
// resolves paths or judges locality.
type Extractor interface {
	// Extract parses src (the content of path) and returns its specifiers in
	// source order. A syntax error yields a *SyntaxError and no specifiers.
	Extract(ctx context.Context, path string, src []byte) ([]Specifier, error)
}

// Resolver maps specifiers to canonical project files.
type Resolver interface {
	// ResolveAll returns every project file the statement depends on: the
	// module itself and any imported names that are submodules. The result
	// has no duplicates.
	ResolveAll(spec Specifier) []string
}

// SourceFile is a file discovered during graph building. Its content is read
// on first use and its specifiers are extracted at most once.
type SourceFile struct {
	Path string

	read     func(string) ([]byte, error)
	loaded   bool
	content  []byte
	readErr  error
	parsed   bool
	specs    []Specifier
	parseErr error
}

// NewSourceFile returns a lazily loaded file. A nil read uses os.ReadFile.
func NewSourceFile(path string, read func(string) ([]byte, error)) *SourceFile {
	if read == nil {
		read = os.ReadFile
	}
	return &SourceFile{Path: path, read: read}
}

// Content returns the file's bytes, reading them on the first call.
func (f *SourceFile) Content() ([]byte, error) {
	if !f.loaded {
		f.content, f.readErr = f.read(f.Path)
		f.loaded = true
	}
	return f.content, f.readErr
}

// Specifiers returns the file's import specifiers, running ex on the first
// call only. Later calls return the cached result even if ex differs.
func (f *SourceFile) Specifiers(ctx context.Context, ex Extractor) ([]Specifier, error) {
	if f.parsed {
		return f.specs, f.parseErr
	}
	f.parsed = true
	src, err := f.Content()
	if err != nil {
		f.parseErr = err
		return nil, err
	}
	f.specs, f.parseErr = ex.Extract(ctx, f.Path, src)
	return f.specs, f.parseErr
}
