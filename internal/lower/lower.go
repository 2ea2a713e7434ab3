// Package lower converts parsed Python statements into IR.
//
// Lowering is pure: it reads the AST and the idiom table and allocates new
// IR values. It never keeps references into the AST and never mutates the
// table. Every construct outside the supported set is reported with one of
// the Unsupported*Error types, all of which match ErrUnsupported.
package lower

import (
	"fmt"

	"github.com/roach88/pyrs/internal/idiom"
	"github.com/roach88/pyrs/internal/ir"
	"github.com/roach88/pyrs/internal/lang"
	"github.com/roach88/pyrs/internal/pyast"
)

// Lowerer lowers statements for the language pair P.
// A Lowerer is safe for concurrent use.
type Lowerer[P lang.Pair] struct {
	table *idiom.Table[P]
	spell func(ir.Identifier) string
}

// Option configures a Lowerer.
type Option[P lang.Pair] func(*Lowerer[P])

// WithSpelling sets how the target language spells a source variable name.
// Two distinct names that spell the same way in one Scope are an
// UnsupportedExpressionError.
func WithSpelling[P lang.Pair](spell func(ir.Identifier) string) Option[P] {
	return func(l *Lowerer[P]) {
		l.spell = spell
	}
}

// New creates a Lowerer that checks callees against table. Without
// WithSpelling names keep their source spelling.
func New[P lang.Pair](table *idiom.Table[P], opts ...Option[P]) *Lowerer[P] {
	l := &Lowerer[P]{table: table}
	for _, opt := range opts {
		opt(l)
	}
	if l.spell == nil {
		l.spell = func(id ir.Identifier) string { return string(id) }
	}
	return l
}

// Scope lowers the statements of one module. It remembers the target
// spelling of every variable name seen so far.
// A Scope is not safe for concurrent use.
type Scope[P lang.Pair] struct {
	lowerer *Lowerer[P]
	names   map[string]ir.Identifier
}

// NewScope starts an empty Scope.
func (l *Lowerer[P]) NewScope() *Scope[P] {
	return &Scope[P]{lowerer: l, names: make(map[string]ir.Identifier)}
}

// Module lowers every statement of m in source order and stops at the
// first failure.
func (l *Lowerer[P]) Module(m *pyast.Module) ([]ir.Statement[P], error) {
	scope := l.NewScope()
	stmts := make([]ir.Statement[P], 0, len(m.Body))
	for _, s := range m.Body {
		lowered, err := scope.Statement(s)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, lowered)
	}
	return stmts, nil
}

// Statement lowers one top-level statement in a fresh Scope.
func (l *Lowerer[P]) Statement(s pyast.Stmt) (ir.Statement[P], error) {
	return l.NewScope().Statement(s)
}

// Expression lowers one value in a fresh Scope.
func (l *Lowerer[P]) Expression(e pyast.Expr) (ir.Expression[P], error) {
	return l.NewScope().Expression(e)
}

// Statement lowers one top-level statement.
//
//   - an expression statement holding a call becomes FunctionCall
//   - an expression statement holding a list display becomes ListLiteral
//   - "name = value" becomes Let
//
// Everything else is an UnsupportedStatementError.
func (l *Scope[P]) Statement(s pyast.Stmt) (ir.Statement[P], error) {
	switch s := s.(type) {
	case *pyast.ExprStmt:
		switch v := s.Value.(type) {
		case *pyast.Call:
			callee, args, err := l.call(v)
			if err != nil {
				return nil, err
			}
			return &ir.FunctionCall[P]{Callee: callee, Arguments: args}, nil
		case *pyast.List:
			elems, err := l.expressions(v.Elts)
			if err != nil {
				return nil, err
			}
			return &ir.ListLiteral[P]{Elements: elems}, nil
		}

	case *pyast.Assign:
		if len(s.Targets) != 1 {
			break
		}
		name, ok := s.Targets[0].(*pyast.Name)
		if !ok {
			break
		}
		value, err := l.Expression(s.Value)
		if err != nil {
			return nil, err
		}
		id, err := l.bind(name)
		if err != nil {
			return nil, err
		}
		return &ir.Let[P]{Name: id, Value: value}, nil
	}

	return nil, &UnsupportedStatementError{Description: pyast.Describe(s), Pos: s.Position()}
}

// Expression lowers an argument, element or assigned value.
func (l *Scope[P]) Expression(e pyast.Expr) (ir.Expression[P], error) {
	switch e := e.(type) {
	case *pyast.Str:
		if e.Kind != pyast.StrPlain {
			break
		}
		return &ir.StringLiteral[P]{Value: e.Value}, nil
	case *pyast.Bool:
		return &ir.BoolLiteral[P]{Value: e.Value}, nil
	case *pyast.Name:
		id, err := l.bind(e)
		if err != nil {
			return nil, err
		}
		return &ir.Variable[P]{Name: id}, nil
	case *pyast.List:
		elems, err := l.expressions(e.Elts)
		if err != nil {
			return nil, err
		}
		return &ir.List[P]{Elements: elems}, nil
	case *pyast.Call:
		callee, args, err := l.call(e)
		if err != nil {
			return nil, err
		}
		return &ir.Call[P]{Callee: callee, Arguments: args}, nil
	}

	return nil, &UnsupportedExpressionError{Description: pyast.Describe(e), Pos: e.Position()}
}

// call checks the callee against the idiom table and lowers the
// positional arguments in order.
func (l *Scope[P]) call(c *pyast.Call) (ir.Identifier, []ir.Expression[P], error) {
	name, ok := c.Func.(*pyast.Name)
	if !ok {
		return "", nil, &UnsupportedExpressionError{
			Description: "call of " + pyast.Describe(c.Func),
			Pos:         c.Func.Position(),
		}
	}
	if _, ok := l.lowerer.table.Lookup(name.Id); !ok {
		return "", nil, &UnsupportedIdentifierError{Name: ir.Identifier(name.Id), Pos: name.Pos}
	}
	if len(c.Keywords) > 0 {
		kw := c.Keywords[0]
		return "", nil, &UnsupportedExpressionError{Description: pyast.Describe(kw), Pos: kw.Pos}
	}

	args, err := l.expressions(c.Args)
	if err != nil {
		return "", nil, err
	}
	return ir.Identifier(name.Id), args, nil
}

func (l *Scope[P]) expressions(exprs []pyast.Expr) ([]ir.Expression[P], error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	out := make([]ir.Expression[P], 0, len(exprs))
	for _, e := range exprs {
		lowered, err := l.Expression(e)
		if err != nil {
			return nil, err
		}
		out = append(out, lowered)
	}
	return out, nil
}

// bind records the target spelling of a variable name and fails when a
// different source name already took that spelling.
func (l *Scope[P]) bind(n *pyast.Name) (ir.Identifier, error) {
	id := ir.Identifier(n.Id)
	spelled := l.lowerer.spell(id)
	if prev, ok := l.names[spelled]; ok && prev != id {
		return "", &UnsupportedExpressionError{
			Description: fmt.Sprintf("name %q: spelled %s, which %q already uses", n.Id, spelled, prev),
			Pos:         n.Pos,
		}
	}
	l.names[spelled] = id
	return id, nil
}
