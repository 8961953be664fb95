package ast

import "fmt"

// Location identifies a position in an RCL source file.
// It is attached to AST nodes so that validation errors can point at the
// offending line.
type Location struct {
	File   string // Source file path
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

// IsValid returns true if the location has at least a file or a line number.
func (l Location) IsValid() bool {
	return l.File != "" || l.Line > 0
}

// String returns the location in "file:line:column" form.
func (l Location) String() string {
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	if l.Line > 0 {
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return l.File
}
