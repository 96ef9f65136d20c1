// Package project finds the boundary of a Python project and answers
// path questions relative to it.
//
// A project root is the nearest ancestor directory of an entry file that
// contains one of a configured set of marker names (version control
// directory, packaging manifests, a root sentinel). [Locate] never fails:
// when no marker is found up to the filesystem root it falls back to the
// entry file's own directory, which may be narrower than the real project.
//
// Every path handed out by this package is canonical: absolute, cleaned,
// with symbolic links resolved. Canonical paths are the node identities of
// the dependency graph, so two spellings of one file collapse to one node.
package project
