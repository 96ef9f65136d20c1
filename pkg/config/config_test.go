package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/pybundle/pkg/errors"
)

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if c.Output != DefaultOutput {
		t.Errorf("Output = %q, want %q", c.Output, DefaultOutput)
	}
	if !slices.Contains(c.Markers, ".git") || !slices.Contains(c.Markers, ".project_root") {
		t.Errorf("Markers = %v, missing defaults", c.Markers)
	}

	// Mutating the returned slice must not leak into later calls.
	c.Markers[0] = "changed"
	if Default().Markers[0] == "changed" {
		t.Error("Default() should return a fresh marker slice")
	}
}

func TestMerge(t *testing.T) {
	base := Default()
	got := base.Merge(Config{
		Markers:       []string{"setup.cfg"},
		SearchPaths:   []string{"/opt/py"},
		NoSystemPaths: true,
		Output:        "out.txt",
	})

	if !slices.Equal(got.Markers, []string{"setup.cfg"}) {
		t.Errorf("Markers = %v", got.Markers)
	}
	if !slices.Equal(got.SearchPaths, []string{"/opt/py"}) {
		t.Errorf("SearchPaths = %v", got.SearchPaths)
	}
	if !got.NoSystemPaths {
		t.Error("NoSystemPaths should be set")
	}
	if got.Output != "out.txt" {
		t.Errorf("Output = %q", got.Output)
	}
	if got.SourceExt != DefaultSourceExt || got.InitFile != DefaultInitFile {
		t.Error("zero fields in overlay should keep base values")
	}

	// Zero overlay changes nothing.
	if again := got.Merge(Config{}); again.Output != "out.txt" || !again.NoSystemPaths {
		t.Errorf("empty merge changed config: %+v", again)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"no markers", func(c *Config) { c.Markers = nil }},
		{"marker with path", func(c *Config) { c.Markers = []string{"a/b"} }},
		{"extension without dot", func(c *Config) { c.SourceExt = "py" }},
		{"init with path", func(c *Config) { c.InitFile = "pkg/__init__.py" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mod(&c)
			err := c.Validate()
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() = %v, want %s", err, errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pybundle.toml")
	content := `markers = [".git"]
search-paths = ["vendor", "/opt/lib"]
output = "bundle.txt"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !slices.Equal(c.SearchPaths, []string{"vendor", "/opt/lib"}) {
		t.Errorf("SearchPaths = %v", c.SearchPaths)
	}
	if c.Output != "bundle.txt" {
		t.Errorf("Output = %q", c.Output)
	}
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pybundle.toml")
	if err := os.WriteFile(path, []byte("outptu = \"typo.txt\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("LoadFile() = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadPyproject(t *testing.T) {
	dir := t.TempDir()

	if _, ok, err := LoadPyproject(dir); ok || err != nil {
		t.Fatalf("missing pyproject: ok=%v err=%v", ok, err)
	}

	content := `[project]
name = "demo"

[tool.pybundle]
markers = ["pyproject.toml"]
no-system-paths = true
`
	if err := os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	c, ok, err := LoadPyproject(dir)
	if err != nil || !ok {
		t.Fatalf("LoadPyproject: ok=%v err=%v", ok, err)
	}
	if !c.NoSystemPaths || !slices.Equal(c.Markers, []string{"pyproject.toml"}) {
		t.Errorf("config = %+v", c)
	}
	if name := ProjectName(dir); name != "demo" {
		t.Errorf("ProjectName = %q, want demo", name)
	}
}

func TestLoadPyprojectWithoutTable(t *testing.T) {
	dir := t.TempDir()
	content := "[tool.poetry]\nname = \"poetry-demo\"\n"
	if err := os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := LoadPyproject(dir); ok || err != nil {
		t.Errorf("ok=%v err=%v, want no table", ok, err)
	}
	if name := ProjectName(dir); name != "poetry-demo" {
		t.Errorf("ProjectName = %q, want poetry-demo", name)
	}
}

func TestFromEnv(t *testing.T) {
	sep := string(filepath.ListSeparator)
	env := map[string]string{
		EnvSearchPath: "/a" + sep + "/b",
		EnvPythonPath: sep + "/c",
	}
	c := FromEnv(func(k string) string { return env[k] })

	want := []string{"/a", "/b", "/c"}
	if !slices.Equal(c.SearchPaths, want) {
		t.Errorf("SearchPaths = %v, want %v", c.SearchPaths, want)
	}
}
