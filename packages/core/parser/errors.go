package parser

import "strconv"

// SyntaxError reports a malformed request block. It is fatal for the
// enclosing block only; sibling blocks in the same document parse
// independently.
type SyntaxError struct {
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return "line " + strconv.Itoa(e.Line) + ": " + e.Message
	}
	return e.Message
}
