package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// maxPathLen bounds paths accepted from remote callers.
const maxPathLen = 4096

// ValidatePath validates a caller-supplied file path before it reaches the
// filesystem. It rejects empty paths, control characters and NUL bytes.
//
// Relative paths and parent references are allowed: the CLI resolves them
// against the working directory like any other tool.
func ValidatePath(kind, path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "%s path cannot be empty", kind)
	}
	if len(path) > maxPathLen {
		return New(ErrCodeInvalidPath, "%s path too long (max %d characters)", kind, maxPathLen)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "%s path contains invalid control characters", kind)
		}
	}
	return nil
}

// ValidateEntryPath validates the path of an entry source file.
// The extension must match ext (for example ".py").
func ValidateEntryPath(path, ext string) error {
	if err := ValidatePath("entry", path); err != nil {
		return err
	}
	if ext != "" && filepath.Ext(path) != ext {
		return New(ErrCodeInvalidPath, "entry file must have a %s extension: %s", ext, filepath.Base(path))
	}
	return nil
}

// ValidateOutputPath validates a bundle output path. The path must name a
// file, not a directory.
func ValidateOutputPath(path string) error {
	if err := ValidatePath("output", path); err != nil {
		return err
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "output path must name a file: %s", path)
	}
	return nil
}
