package bundle

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/matzehuels/pybundle/pkg/project"
)

// ReadFunc returns the content of one source file.
type ReadFunc func(path string) ([]byte, error)

// ErrInvalidUTF8 is reported in place of a file whose content is not UTF-8.
var ErrInvalidUTF8 = errors.New("content is not valid UTF-8")

// FileError records a file replaced by an inline error block.
type FileError struct {
	Rel string
	Err error
}

// Summary describes a written bundle.
type Summary struct {
	Path   string      // Absolute output path
	Files  int         // Blocks written, including error blocks
	Errors []FileError // Files that could not be read
	Bytes  int64       // Bundle size
	Digest string      // Hex SHA-256 of the bundle bytes
}

// ForceLast returns a copy of order with entry moved to the end. If entry is
// absent it is appended.
func ForceLast(order []string, entry string) []string {
	out := make([]string, 0, len(order)+1)
	for _, p := range order {
		if p != entry {
			out = append(out, p)
		}
	}
	return append(out, entry)
}

// Encode writes one block per file, in order, to w:
//
//	```
//	# Start of pkg/helpers.py
//	<content, newline-terminated>
//	# End of pkg/helpers.py
//	```
//
// followed by a blank line. Paths are shown relative to root with forward
// slashes. A file that cannot be read (or is not UTF-8) becomes an error
// block and is listed in the returned slice; only a failure writing to w
// is returned as an error.
func Encode(w io.Writer, files []string, root string, read ReadFunc) ([]FileError, error) {
	if read == nil {
		read = os.ReadFile
	}
	bw := bufio.NewWriter(w)
	var bad []FileError

	for _, path := range files {
		rel := project.Rel(root, path)
		content, err := read(path)
		if err == nil && !utf8.Valid(content) {
			err = ErrInvalidUTF8
		}
		if err != nil {
			bad = append(bad, FileError{Rel: rel, Err: err})
			writeErrorBlock(bw, rel, err)
			continue
		}

		fmt.Fprintf(bw, "```\n# Start of %s\n", rel)
		bw.Write(content)
		if len(content) == 0 || content[len(content)-1] != '\n' {
			bw.WriteByte('\n')
		}
		fmt.Fprintf(bw, "# End of %s\n```\n\n", rel)
	}

	if err := bw.Flush(); err != nil {
		return bad, err
	}
	return bad, nil
}

func writeErrorBlock(w io.Writer, rel string, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(w, "```\n# Error: File not found: %s\n```\n\n", rel)
		return
	}
	fmt.Fprintf(w, "```\n# Error reading file: %s (%s)\n```\n\n", rel, cause(err))
}

// cause strips the path from *fs.PathError so the block names the file
// once, in root-relative form.
func cause(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

// WriteFile forces entry last in order and writes the bundle to output,
// creating parent directories as needed. Any error returned here means the
// bundle could not be written; unreadable inputs are reported in the
// Summary instead.
func WriteFile(output string, order []string, entry, root string, read ReadFunc) (*Summary, error) {
	abs, err := filepath.Abs(output)
	if err != nil {
		return nil, fmt.Errorf("output %s: %w", output, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(abs)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", abs, err)
	}

	files := ForceLast(order, entry)
	h := sha256.New()
	cw := &countingWriter{w: io.MultiWriter(f, h)}
	bad, err := Encode(cw, files, root, read)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", abs, err)
	}

	return &Summary{
		Path:   abs,
		Files:  len(files),
		Errors: bad,
		Bytes:  cw.n,
		Digest: hex.EncodeToString(h.Sum(nil)),
	}, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
