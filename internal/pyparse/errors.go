package pyparse

import (
	"fmt"

	"github.com/roach88/pyrs/internal/pyast"
)

// SyntaxError reports source text the lexer or parser could not accept.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

// Pos returns the position of the offending token.
func (e *SyntaxError) Pos() pyast.Pos {
	return pyast.Pos{Line: e.Line, Column: e.Column}
}

func errorAt(line, col int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}
