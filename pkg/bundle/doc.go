// Package bundle writes ordered source files into a single text bundle.
//
// Each file becomes a fenced block delimited by "# Start of <path>" and
// "# End of <path>" comment lines, so the bundle stays valid Python when
// the fences are stripped and each file's origin is visible to a reader.
// Blocks appear in the order given, with the entry file always last: every
// module the entry imports has been defined by the time the entry's own
// code appears.
//
// A missing or unreadable input never aborts the bundle; it is replaced by
// an error block. Failing to create or write the output file is the only
// error [WriteFile] returns.
package bundle
