package bundle

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func memFS(files map[string]string) ReadFunc {
	return func(path string) ([]byte, error) {
		s, ok := files[path]
		if !ok {
			return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
		}
		return []byte(s), nil
	}
}

func TestForceLast(t *testing.T) {
	tests := []struct {
		name  string
		order []string
		entry string
		want  []string
	}{
		{"already last", []string{"a", "b", "main"}, "main", []string{"a", "b", "main"}},
		{"moved", []string{"main", "a", "b"}, "main", []string{"a", "b", "main"}},
		{"absent", []string{"a"}, "main", []string{"a", "main"}},
		{"empty", nil, "main", []string{"main"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := slices.Clone(tt.order)
			if got := ForceLast(in, tt.entry); !slices.Equal(got, tt.want) {
				t.Errorf("ForceLast() = %v, want %v", got, tt.want)
			}
			if !slices.Equal(in, tt.order) {
				t.Errorf("ForceLast modified its input: %v", in)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	root := filepath.FromSlash("/proj")
	read := memFS(map[string]string{
		filepath.FromSlash("/proj/pkg/helpers.py"): "X = 1",
		filepath.FromSlash("/proj/app.py"):         "import pkg\n",
		filepath.FromSlash("/proj/empty.py"):       "",
	})
	files := []string{
		filepath.FromSlash("/proj/pkg/helpers.py"),
		filepath.FromSlash("/proj/empty.py"),
		filepath.FromSlash("/proj/gone.py"),
		filepath.FromSlash("/proj/app.py"),
	}

	var buf bytes.Buffer
	bad, err := Encode(&buf, files, root, read)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	want := "```\n# Start of pkg/helpers.py\nX = 1\n# End of pkg/helpers.py\n```\n\n" +
		"```\n# Start of empty.py\n\n# End of empty.py\n```\n\n" +
		"```\n# Error: File not found: gone.py\n```\n\n" +
		"```\n# Start of app.py\nimport pkg\n# End of app.py\n```\n\n"
	if got := buf.String(); got != want {
		t.Errorf("Encode() output mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
	if len(bad) != 1 || bad[0].Rel != "gone.py" {
		t.Errorf("FileErrors = %v", bad)
	}
}

func TestEncode_ReadErrorBlock(t *testing.T) {
	read := func(path string) ([]byte, error) {
		if strings.HasSuffix(path, "locked.py") {
			return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrPermission}
		}
		return []byte("\xff\xfe"), nil
	}
	var buf bytes.Buffer
	bad, err := Encode(&buf, []string{"/p/locked.py", "/p/binary.py"}, "/p", read)
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "# Error reading file: locked.py (permission denied)\n") {
		t.Errorf("missing permission error block:\n%s", out)
	}
	if !strings.Contains(out, "# Error reading file: binary.py (content is not valid UTF-8)\n") {
		t.Errorf("missing UTF-8 error block:\n%s", out)
	}
	if len(bad) != 2 || !errors.Is(bad[1].Err, ErrInvalidUTF8) {
		t.Errorf("FileErrors = %v", bad)
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestEncode_WriterError(t *testing.T) {
	read := memFS(map[string]string{"/p/a.py": "x\n"})
	if _, err := Encode(failWriter{}, []string{"/p/a.py"}, "/p", read); err == nil {
		t.Error("expected write error")
	}
}

func TestWriteFile(t *testing.T) {
	root := t.TempDir()
	entry := filepath.Join(root, "main.py")
	dep := filepath.Join(root, "dep.py")
	for path, body := range map[string]string{entry: "import dep\n", dep: "VALUE = 2\n"} {
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	out := filepath.Join(root, "dist", "nested", "bundle.txt")

	sum, err := WriteFile(out, []string{entry, dep}, entry, root, nil)
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "```\n# Start of dep.py\n") {
		t.Errorf("dependency not first:\n%s", data)
	}
	if !strings.HasSuffix(string(data), "# End of main.py\n```\n\n") {
		t.Errorf("entry not last:\n%s", data)
	}
	if sum.Files != 2 || sum.Bytes != int64(len(data)) || len(sum.Digest) != 64 {
		t.Errorf("Summary = %+v", sum)
	}

	again, err := WriteFile(out, []string{entry, dep}, entry, root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if again.Digest != sum.Digest {
		t.Error("rewriting the same bundle changed its digest")
	}
}

func TestWriteFile_OutputIsDirectory(t *testing.T) {
	dir := t.TempDir()
	_, err := WriteFile(dir, nil, filepath.Join(dir, "main.py"), dir, memFS(nil))
	if err == nil {
		t.Fatal("expected error writing to a directory")
	}
}
