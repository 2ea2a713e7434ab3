package transpile

import (
	"errors"

	"github.com/hashicorp/go-multierror"

	"github.com/roach88/pyrs/internal/lower"
	"github.com/roach88/pyrs/internal/pyast"
)

// Diagnostic kinds.
const (
	KindParse                 = "parse"
	KindUnsupportedStatement  = "unsupported_statement"
	KindUnsupportedExpression = "unsupported_expression"
	KindUnsupportedIdentifier = "unsupported_identifier"
	KindInternal              = "internal"
)

// CodeInternal is reported for failures that carry no code of their own.
const CodeInternal = "E100"

// Diagnostic is the structured form of a transpilation failure.
type Diagnostic struct {
	Kind    string `json:"kind" yaml:"kind"`
	Code    string `json:"code" yaml:"code"`
	Line    int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column  int    `json:"column,omitempty" yaml:"column,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// Classify converts an error returned by Transpile, Lower or Check into
// diagnostics. A *multierror.Error from Check yields one per failure.
func Classify(err error) []Diagnostic {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		out := make([]Diagnostic, 0, len(merr.Errors))
		for _, e := range merr.Errors {
			out = append(out, classifyOne(e))
		}
		return out
	}
	return []Diagnostic{classifyOne(err)}
}

func classifyOne(err error) Diagnostic {
	d := Diagnostic{Message: err.Error()}

	var (
		parseErr *ParseError
		stmtErr  *lower.UnsupportedStatementError
		exprErr  *lower.UnsupportedExpressionError
		identErr *lower.UnsupportedIdentifierError
		pos      pyast.Pos
	)
	switch {
	case errors.As(err, &parseErr):
		d.Kind, d.Code, pos = KindParse, parseErr.Code(), parseErr.Pos()
	case errors.As(err, &stmtErr):
		d.Kind, d.Code, pos = KindUnsupportedStatement, stmtErr.Code(), stmtErr.Pos
	case errors.As(err, &exprErr):
		d.Kind, d.Code, pos = KindUnsupportedExpression, exprErr.Code(), exprErr.Pos
	case errors.As(err, &identErr):
		d.Kind, d.Code, pos = KindUnsupportedIdentifier, identErr.Code(), identErr.Pos
	default:
		d.Kind, d.Code = KindInternal, CodeInternal
	}
	d.Line, d.Column = pos.Line, pos.Column
	return d
}
