package python

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/pybundle/pkg/deps"
)

// mapLocator answers from a fixed table; anything else is not found.
type mapLocator map[string]Location

func (m mapLocator) Locate(name string) (Location, error) {
	if loc, ok := m[name]; ok {
		return loc, nil
	}
	return Location{}, ErrNotFound
}

// mkTree creates files (slash paths, empty content) under a canonical temp
// root and returns the root.
func mkTree(t *testing.T, files ...string) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func newTestResolver(t *testing.T, root string, loc Locator) *Resolver {
	t.Helper()
	r, err := NewResolver(root, loc, deps.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

// resolveModule resolves the specifier's module alone, without probing
// imported names.
func resolveModule(r deps.Resolver, spec deps.Specifier) (string, bool) {
	spec.Names = nil
	got := r.ResolveAll(spec)
	if len(got) == 0 {
		return "", false
	}
	return got[0], true
}

func TestResolve(t *testing.T) {
	root := mkTree(t,
		"__init__.py",
		"app.py",
		"utils.py",
		"pkg/__init__.py",
		"pkg/helpers.py",
		"pkg/sub/__init__.py",
		"pkg/sub/mod.py",
		"both.py",
		"both/__init__.py",
		"sys.py",
		"scripts/run.py",
	)
	outside := mkTree(t, "requests/__init__.py")
	loc := mapLocator{
		"sys":      {BuiltIn: true},
		"requests": {File: filepath.Join(outside, "requests", "__init__.py")},
		"utils":    {File: filepath.Join(root, "utils.py")},
	}
	r := newTestResolver(t, root, loc)

	app := filepath.Join(root, "app.py")
	subMod := filepath.Join(root, "pkg", "sub", "mod.py")

	tests := []struct {
		name string
		spec deps.Specifier
		want string // slash path under root, "" for NotLocal
	}{
		{"local module found inside root by locator", deps.Specifier{Name: "utils", File: app}, "utils.py"},
		{"package init", deps.Specifier{Name: "pkg", File: app}, "pkg/__init__.py"},
		{"dotted submodule", deps.Specifier{Name: "pkg.helpers", File: app}, "pkg/helpers.py"},
		{"module preferred over package", deps.Specifier{Name: "both", File: app}, "both.py"},
		{"built-in shadows local file", deps.Specifier{Name: "sys", File: app}, ""},
		{"installed outside root", deps.Specifier{Name: "requests", File: app}, ""},
		{"unknown absolute", deps.Specifier{Name: "nothere", File: app}, ""},
		{"empty absolute", deps.Specifier{File: app}, ""},
		{"relative sibling", deps.Specifier{Name: "mod", Level: 1, File: filepath.Join(root, "pkg", "sub", "__init__.py")}, "pkg/sub/mod.py"},
		{"relative parent package", deps.Specifier{Level: 2, File: subMod}, "pkg/__init__.py"},
		{"relative current package", deps.Specifier{Level: 1, File: subMod}, "pkg/sub/__init__.py"},
		{"relative up two", deps.Specifier{Name: "helpers", Level: 2, File: subMod}, "pkg/helpers.py"},
		{"relative falls back to root", deps.Specifier{Name: "utils", Level: 1, File: subMod}, "utils.py"},
		{"relative empty name falls back to root package", deps.Specifier{Level: 1, File: filepath.Join(root, "scripts", "run.py")}, "__init__.py"},
		{"relative above root retried at root", deps.Specifier{Name: "utils", Level: 2, File: app}, "utils.py"},
		{"relative empty name above root", deps.Specifier{Level: 2, File: app}, "__init__.py"},
		{"relative above root missing at root", deps.Specifier{Name: "x", Level: 2, File: app}, ""},
		{"relative far too deep", deps.Specifier{Name: "x", Level: 64, File: subMod}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resolveModule(r, tt.spec)
			if tt.want == "" {
				if ok {
					t.Errorf("Resolve(%s) = %q, want NotLocal", tt.spec, got)
				}
				return
			}
			want := filepath.Join(root, filepath.FromSlash(tt.want))
			if !ok || got != want {
				t.Errorf("Resolve(%s) = %q, %v; want %q", tt.spec, got, ok, want)
			}
		})
	}
}

func TestResolve_AboveRootUsesRootOnly(t *testing.T) {
	parent := mkTree(t, "shared.py", "utils.py", "proj/main.py", "proj/utils.py")
	root := filepath.Join(parent, "proj")
	r := newTestResolver(t, root, nil)
	main := filepath.Join(root, "main.py")

	// from ..shared import x: only exists above the root
	spec := deps.Specifier{Name: "shared", Level: 2, File: main}
	if got, ok := resolveModule(r, spec); ok {
		t.Errorf("Resolve(%s) = %q, want NotLocal", spec, got)
	}

	// from ..utils import x: the root copy wins over the parent's
	spec = deps.Specifier{Name: "utils", Level: 2, Names: []string{"x"}, File: main}
	got := r.ResolveAll(spec)
	if want := []string{filepath.Join(root, "utils.py")}; !slices.Equal(got, want) {
		t.Errorf("ResolveAll(%s) = %v, want %v", spec, got, want)
	}
}

func TestResolveAll_Submodules(t *testing.T) {
	root := mkTree(t, "app.py", "utils.py", "pkg/__init__.py", "pkg/helpers.py")
	r := newTestResolver(t, root, mapLocator{"os": {File: "/usr/lib/python3.12/os.py"}})
	pkgInit := filepath.Join(root, "pkg", "__init__.py")

	tests := []struct {
		name string
		spec deps.Specifier
		want []string
	}{
		{
			name: "from . import sibling",
			spec: deps.Specifier{Level: 1, Names: []string{"helpers"}, File: pkgInit},
			// the package itself is the importing file; the builder drops it
			want: []string{"pkg/__init__.py", "pkg/helpers.py"},
		},
		{
			name: "from pkg import helpers",
			spec: deps.Specifier{Name: "pkg", Names: []string{"helpers", "VERSION"}, File: filepath.Join(root, "app.py")},
			want: []string{"pkg/__init__.py", "pkg/helpers.py"},
		},
		{
			name: "names are not retried at root",
			spec: deps.Specifier{Level: 1, Names: []string{"utils"}, File: pkgInit},
			want: []string{"pkg/__init__.py"},
		},
		{
			name: "external module names not probed",
			spec: deps.Specifier{Name: "os", Names: []string{"path"}, File: filepath.Join(root, "app.py")},
			want: nil,
		},
		{
			name: "duplicate results collapse",
			spec: deps.Specifier{Name: "pkg", Names: []string{"helpers", "helpers"}, File: filepath.Join(root, "app.py")},
			want: []string{"pkg/__init__.py", "pkg/helpers.py"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ResolveAll(tt.spec)
			var want []string
			for _, w := range tt.want {
				want = append(want, filepath.Join(root, filepath.FromSlash(w)))
			}
			if !slices.Equal(got, want) {
				t.Errorf("ResolveAll(%s) = %v, want %v", tt.spec, got, want)
			}
		})
	}
}

func TestResolve_SymlinkOutOfRoot(t *testing.T) {
	outside := mkTree(t, "secret.py")
	root := mkTree(t, "app.py")
	if err := os.Symlink(filepath.Join(outside, "secret.py"), filepath.Join(root, "link.py")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	r := newTestResolver(t, root, nil)

	if got, ok := resolveModule(r, deps.Specifier{Name: "link", File: filepath.Join(root, "app.py")}); ok {
		t.Errorf("symlink escaping root resolved to %q", got)
	}
}

func TestLanguageResolver(t *testing.T) {
	root := mkTree(t, "app.py", "utils.py")
	res, err := Language.Resolver(root, deps.Options{NoSystemPaths: true})
	if err != nil {
		t.Fatal(err)
	}
	got, ok := resolveModule(res, deps.Specifier{Name: "utils", File: filepath.Join(root, "app.py")})
	if !ok || got != filepath.Join(root, "utils.py") {
		t.Errorf("Resolve(utils) = %q, %v", got, ok)
	}
	if _, ok := resolveModule(res, deps.Specifier{Name: "sys", File: filepath.Join(root, "app.py")}); ok {
		t.Error("built-in sys resolved as local")
	}
}
