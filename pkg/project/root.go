package project

import (
	"os"
	"path/filepath"
)

// Root is a located project boundary.
type Root struct {
	// Dir is the canonical root directory.
	Dir string
	// Marker is the marker name that matched, or "" for the fallback.
	Marker string
}

// Fallback reports whether no marker was found.
func (r Root) Fallback() bool { return r.Marker == "" }

// Locate walks up from the directory containing start, returning the first
// ancestor (including that directory) that contains any of markers. All
// markers are checked at one level before moving up. If the filesystem root
// is reached without a match, the directory containing start is returned.
func Locate(start string, markers []string) (Root, error) {
	file, err := Canonical(start)
	if err != nil {
		return Root{}, err
	}
	dir := file
	if info, err := os.Stat(file); err == nil && !info.IsDir() {
		dir = filepath.Dir(file)
	}

	for cur := dir; ; {
		for _, m := range markers {
			if exists(filepath.Join(cur, m)) {
				return Root{Dir: cur, Marker: m}, nil
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}
	return Root{Dir: dir}, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
