// Package config loads pybundle settings.
//
// Settings come from, lowest precedence first: built-in defaults, the
// [tool.pybundle] table of the project's pyproject.toml, an explicit TOML
// file, and the environment. Command-line flags are applied last by the
// CLI through [Config.Merge].
//
// Example pyproject.toml section:
//
//	[tool.pybundle]
//	markers = [".git", "pyproject.toml"]
//	search-paths = ["vendor"]
//	output = "dist/bundle.txt"
package config

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pybundle/pkg/errors"
)

const (
	// DefaultOutput is the bundle path used when none is given.
	DefaultOutput = "combined_output.txt"

	// DefaultSourceExt is the extension of a module source file.
	DefaultSourceExt = ".py"

	// DefaultInitFile is the file a package directory resolves to.
	DefaultInitFile = "__init__.py"

	// EnvSearchPath holds extra module search directories (OS path list).
	EnvSearchPath = "PYBUNDLE_SEARCH_PATH"

	// EnvPythonPath is the interpreter's own search path variable.
	EnvPythonPath = "PYTHONPATH"
)

// DefaultMarkers are the names whose presence marks a project root.
var DefaultMarkers = []string{".git", "pyproject.toml", "setup.py", "requirements.txt", ".project_root"}

// Config holds bundling settings.
type Config struct {
	// Markers are file or directory names that identify a project root.
	Markers []string `toml:"markers"`

	// SearchPaths are extra directories consulted when classifying an
	// absolute import as standard-library or third-party.
	SearchPaths []string `toml:"search-paths"`

	// NoSystemPaths disables discovery of the interpreter's standard
	// distribution directories.
	NoSystemPaths bool `toml:"no-system-paths"`

	// Output is the bundle file path.
	Output string `toml:"output"`

	// SourceExt and InitFile describe the module layout.
	SourceExt string `toml:"source-extension"`
	InitFile  string `toml:"package-init"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Markers:   slices.Clone(DefaultMarkers),
		Output:    DefaultOutput,
		SourceExt: DefaultSourceExt,
		InitFile:  DefaultInitFile,
	}
}

// Merge returns c overlaid with every non-zero field of o.
// Slices in o replace those in c; NoSystemPaths is sticky once set.
func (c Config) Merge(o Config) Config {
	if len(o.Markers) > 0 {
		c.Markers = slices.Clone(o.Markers)
	}
	if len(o.SearchPaths) > 0 {
		c.SearchPaths = slices.Clone(o.SearchPaths)
	}
	if o.NoSystemPaths {
		c.NoSystemPaths = true
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.SourceExt != "" {
		c.SourceExt = o.SourceExt
	}
	if o.InitFile != "" {
		c.InitFile = o.InitFile
	}
	return c
}

// Validate checks that the settings can drive a run.
func (c Config) Validate() error {
	if len(c.Markers) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "at least one project root marker is required")
	}
	for _, m := range c.Markers {
		if m == "" || filepath.Base(m) != m {
			return errors.New(errors.ErrCodeInvalidConfig, "marker must be a plain name: %q", m)
		}
	}
	if c.SourceExt == "" || c.SourceExt[0] != '.' {
		return errors.New(errors.ErrCodeInvalidConfig, "source extension must start with a dot: %q", c.SourceExt)
	}
	if c.InitFile == "" || filepath.Base(c.InitFile) != c.InitFile {
		return errors.New(errors.ErrCodeInvalidConfig, "package init must be a plain file name: %q", c.InitFile)
	}
	return nil
}

// LoadFile decodes a standalone TOML settings file.
func LoadFile(path string) (Config, error) {
	var c Config
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	return c, nil
}

// LoadPyproject reads the [tool.pybundle] table from dir/pyproject.toml.
// A missing file or table yields a zero Config and ok == false.
func LoadPyproject(dir string) (c Config, ok bool, err error) {
	path := filepath.Join(dir, "pyproject.toml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, false, nil
	}
	if err != nil {
		return Config{}, false, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	var doc struct {
		Tool struct {
			Pybundle *Config `toml:"pybundle"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Config{}, false, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if doc.Tool.Pybundle == nil {
		return Config{}, false, nil
	}
	return *doc.Tool.Pybundle, true, nil
}

// FromEnv collects settings from environment variables. PYBUNDLE_SEARCH_PATH
// entries come before PYTHONPATH entries, mirroring interpreter lookup order.
func FromEnv(getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	var c Config
	for _, key := range []string{EnvSearchPath, EnvPythonPath} {
		for _, p := range filepath.SplitList(getenv(key)) {
			if p != "" {
				c.SearchPaths = append(c.SearchPaths, p)
			}
		}
	}
	return c
}

// ProjectName returns the project name declared in dir/pyproject.toml,
// checking [project] first and then [tool.poetry]. It returns "" when
// neither is present.
func ProjectName(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml"))
	if err != nil {
		return ""
	}
	var pyproject struct {
		Tool struct {
			Poetry struct {
				Name string `toml:"name"`
			} `toml:"poetry"`
		} `toml:"tool"`
		Project struct {
			Name string `toml:"name"`
		} `toml:"project"`
	}
	if err := toml.Unmarshal(data, &pyproject); err != nil {
		return ""
	}
	if pyproject.Project.Name != "" {
		return pyproject.Project.Name
	}
	return pyproject.Tool.Poetry.Name
}
