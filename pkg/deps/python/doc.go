// Package python implements import discovery for Python projects.
//
// [Extractor] parses source with tree-sitter and reports every import
// statement as a [deps.Specifier]. [Resolver] decides which specifiers name
// files inside the project root, consulting a [Locator] to recognise
// standard-library and installed modules by scanning the interpreter's
// directories instead of importing anything.
//
// # Classification
//
// For "import a.b" the locator is asked first. Built-in modules (sys,
// builtins, ...) and modules defined outside the project are external and
// yield no edge. A module the locator cannot find, or finds inside the
// project, is looked up as a.b.py and a/b/__init__.py under the root.
// Relative imports skip the locator and resolve against the importing
// file's package. When that fails, or the package lies above the project
// root, the module is looked up under the root instead.
//
// [deps.Specifier]: github.com/matzehuels/pybundle/pkg/deps.Specifier
package python
