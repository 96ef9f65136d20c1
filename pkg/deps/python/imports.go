package python

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tspython "github.com/smacker/go-tree-sitter/python"

	"github.com/matzehuels/pybundle/pkg/deps"
)

// maxNear bounds the source excerpt quoted in a syntax error.
const maxNear = 24

// Extractor reads import statements from Python source using the
// tree-sitter Python grammar. It is safe for concurrent use; each call
// creates its own parser.
type Extractor struct{}

// NewExtractor returns an Extractor.
func NewExtractor() *Extractor { return &Extractor{} }

// Extract returns one specifier per imported module in source order:
//
//	import a.b, c as d        -> "a.b", "c"
//	from ..pkg import x, y    -> "pkg" level 2, names [x y]
//	from . import x           -> "" level 1, names [x]
//	from m import *           -> "m", no names
//
// Imports nested in functions, classes and conditional blocks are included.
// "from __future__" statements are ignored. If the tree contains an error
// or missing node the file yields a *deps.SyntaxError and no specifiers.
func (e *Extractor) Extract(ctx context.Context, path string, src []byte) ([]deps.Specifier, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(tspython.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(path, root, src)
	}

	var specs []deps.Specifier
	collect(root, src, path, &specs)
	return specs, nil
}

func collect(n *sitter.Node, src []byte, path string, out *[]deps.Specifier) {
	switch n.Type() {
	case "import_statement":
		line := lineOf(n)
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if name := moduleName(n.NamedChild(i), src); name != "" {
				*out = append(*out, deps.Specifier{Name: name, File: path, Line: line})
			}
		}
		return
	case "import_from_statement":
		*out = append(*out, fromImport(n, src, path))
		return
	case "future_import_statement":
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		collect(n.NamedChild(i), src, path, out)
	}
}

func fromImport(n *sitter.Node, src []byte, path string) deps.Specifier {
	spec := deps.Specifier{File: path, Line: lineOf(n)}

	mod := n.ChildByFieldName("module_name")
	if mod != nil {
		if mod.Type() == "relative_import" {
			for i := 0; i < int(mod.ChildCount()); i++ {
				switch c := mod.Child(i); c.Type() {
				case "import_prefix":
					spec.Level = strings.Count(c.Content(src), ".")
				case "dotted_name":
					spec.Name = dotted(c, src)
				}
			}
		} else {
			spec.Name = dotted(mod, src)
		}
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if mod != nil && c.StartByte() == mod.StartByte() {
			continue
		}
		if name := moduleName(c, src); name != "" {
			spec.Names = append(spec.Names, name)
		}
	}
	return spec
}

// moduleName returns the dotted name of a dotted_name or aliased_import
// node, ignoring any alias. Other node types yield "".
func moduleName(n *sitter.Node, src []byte) string {
	switch n.Type() {
	case "dotted_name":
		return dotted(n, src)
	case "aliased_import":
		if name := n.ChildByFieldName("name"); name != nil {
			return dotted(name, src)
		}
	}
	return ""
}

// dotted joins the identifiers of a dotted_name, dropping any whitespace or
// comments between them.
func dotted(n *sitter.Node, src []byte) string {
	if n.Type() != "dotted_name" {
		return strings.TrimSpace(n.Content(src))
	}
	parts := make([]string, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == "identifier" {
			parts = append(parts, c.Content(src))
		}
	}
	return strings.Join(parts, ".")
}

func lineOf(n *sitter.Node) int { return int(n.StartPoint().Row) + 1 }

func syntaxError(path string, root *sitter.Node, src []byte) *deps.SyntaxError {
	bad := firstError(root)
	if bad == nil {
		bad = root
	}
	p := bad.StartPoint()
	err := &deps.SyntaxError{File: path, Line: int(p.Row) + 1, Column: int(p.Column) + 1}
	if bad.IsMissing() {
		err.Near = "missing " + bad.Type()
		return err
	}
	near, _, _ := strings.Cut(strings.TrimSpace(bad.Content(src)), "\n")
	if len(near) > maxNear {
		near = near[:maxNear]
	}
	err.Near = near
	return err
}

// firstError returns the first ERROR or missing node in document order.
func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstError(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}
