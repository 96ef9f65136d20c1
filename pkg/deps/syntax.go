package deps

import "fmt"

// SyntaxError reports a file that could not be parsed. The file contributes
// no specifiers; graph building continues.
type SyntaxError struct {
	File   string
	Line   int // 1-based
	Column int // 1-based
	Near   string
}

func (e *SyntaxError) Error() string {
	if e.Near != "" {
		return fmt.Sprintf("%s:%d:%d: invalid syntax near %q", e.File, e.Line, e.Column, e.Near)
	}
	return fmt.Sprintf("%s:%d:%d: invalid syntax", e.File, e.Line, e.Column)
}
