package project

import (
	"os"
	"path/filepath"
	"strings"
)

// Canonical returns the absolute, cleaned form of path with symbolic links
// resolved. Paths that do not exist are returned absolute and cleaned.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return filepath.Clean(abs), nil
}

// Within reports whether path lies under dir (or is dir itself). Both are
// compared lexically; pass canonical paths.
func Within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Rel returns path relative to dir with forward slashes, the form used in
// bundle delimiters and progress output. If path is not under dir it is
// returned unchanged (slash-normalized).
func Rel(dir, path string) string {
	if rel, err := filepath.Rel(dir, path); err == nil && Within(dir, path) {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

// IsFile reports whether path names an existing regular file.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
