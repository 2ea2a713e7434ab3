package lower

import (
	"errors"
	"fmt"

	"github.com/roach88/pyrs/internal/ir"
	"github.com/roach88/pyrs/internal/pyast"
)

// ErrUnsupported matches every lowering failure with errors.Is.
var ErrUnsupported = errors.New("unsupported construct")

// Error codes reported by the CLI.
const (
	CodeUnsupportedStatement  = "E210"
	CodeUnsupportedExpression = "E211"
	CodeUnsupportedIdentifier = "E212"
)

// UnsupportedStatementError reports a statement shape with no IR form.
type UnsupportedStatementError struct {
	Description string
	Pos         pyast.Pos
}

func (e *UnsupportedStatementError) Error() string {
	return fmt.Sprintf("%s: unsupported statement: %s", e.Pos, e.Description)
}

func (e *UnsupportedStatementError) Is(target error) bool { return target == ErrUnsupported }

// Code returns the diagnostic code for this error.
func (e *UnsupportedStatementError) Code() string { return CodeUnsupportedStatement }

// UnsupportedExpressionError reports an argument or element with no IR form.
type UnsupportedExpressionError struct {
	Description string
	Pos         pyast.Pos
}

func (e *UnsupportedExpressionError) Error() string {
	return fmt.Sprintf("%s: unsupported expression: %s", e.Pos, e.Description)
}

func (e *UnsupportedExpressionError) Is(target error) bool { return target == ErrUnsupported }

// Code returns the diagnostic code for this error.
func (e *UnsupportedExpressionError) Code() string { return CodeUnsupportedExpression }

// UnsupportedIdentifierError reports a callee absent from the idiom table.
type UnsupportedIdentifierError struct {
	Name ir.Identifier
	Pos  pyast.Pos
}

func (e *UnsupportedIdentifierError) Error() string {
	return fmt.Sprintf("%s: unsupported identifier %q: no idiom maps this name", e.Pos, e.Name)
}

func (e *UnsupportedIdentifierError) Is(target error) bool { return target == ErrUnsupported }

// Code returns the diagnostic code for this error.
func (e *UnsupportedIdentifierError) Code() string { return CodeUnsupportedIdentifier }
