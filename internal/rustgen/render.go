// Package rustgen renders Python→Rust IR as Rust source text.
//
// Rendering is pure and total over the IR: the renderer implements both IR
// visitor interfaces, so a new IR variant does not compile until it has a
// rendering here. An idiom-table miss means lowering let an unchecked
// callee through; that is a bug, reported by panicking with
// *InvariantViolation rather than returned as an error.
package rustgen

import (
	"fmt"
	"strings"

	"github.com/roach88/pyrs/internal/idiom"
	"github.com/roach88/pyrs/internal/ir"
	"github.com/roach88/pyrs/internal/lang"
)

// Separators between rendered items.
const (
	ArgumentSeparator = ","
	ElementSeparator  = ", "
)

// InvariantViolation is the panic value for IR that lowering should have
// rejected.
type InvariantViolation struct {
	Callee ir.Identifier
	Msg    string
}

func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("rustgen: invariant violated for %q: %s", v.Callee, v.Msg)
}

// Renderer turns IR statements into Rust text.
// A Renderer is safe for concurrent use.
type Renderer struct {
	table *idiom.Table[lang.PythonRust]
}

// New creates a Renderer that spells callees through table. The table must
// be the one the IR was lowered against.
func New(table *idiom.Table[lang.PythonRust]) *Renderer {
	return &Renderer{table: table}
}

// Render renders one statement.
func (r *Renderer) Render(s ir.Statement[lang.PythonRust]) string {
	w := &writer{table: r.table}
	s.Accept(w)
	return w.sb.String()
}

// RenderProgram renders statements in order, one per line.
func (r *Renderer) RenderProgram(stmts []ir.Statement[lang.PythonRust]) string {
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = r.Render(s)
	}
	return strings.Join(lines, "\n")
}

type pr = lang.PythonRust

// writer implements ir.StatementVisitor and ir.ExpressionVisitor.
type writer struct {
	table *idiom.Table[pr]
	sb    strings.Builder

	// format is set while rendering the format-string argument of a
	// format macro.
	format bool
}

var (
	_ ir.StatementVisitor[pr]  = (*writer)(nil)
	_ ir.ExpressionVisitor[pr] = (*writer)(nil)
)

func (w *writer) resolve(callee ir.Identifier) idiom.Idiom {
	e, ok := w.table.Lookup(string(callee))
	if !ok {
		panic(&InvariantViolation{Callee: callee, Msg: "no idiom entry at render time"})
	}
	return e
}

// call writes "<target>(<a1>,<a2>,...)". A format macro whose first
// argument is not a string literal gets a "{}" placeholder per argument
// in front.
func (w *writer) call(callee ir.Identifier, args []ir.Expression[pr]) {
	target := w.resolve(callee)
	w.sb.WriteString(target.Target)
	w.sb.WriteByte('(')
	literal := true
	if target.Format && len(args) > 0 {
		if _, literal = args[0].(*ir.StringLiteral[pr]); !literal {
			w.sb.WriteString(Quote(strings.Repeat("{} ", len(args)-1)+"{}", false))
		}
	}
	for i, a := range args {
		if i > 0 || !literal {
			w.sb.WriteString(ArgumentSeparator)
		}
		w.format = i == 0 && literal && target.Format
		a.Accept(w)
		w.format = false
	}
	w.sb.WriteByte(')')
}

func (w *writer) elements(elems []ir.Expression[pr]) {
	w.sb.WriteString("vec![")
	for i, e := range elems {
		if i > 0 {
			w.sb.WriteString(ElementSeparator)
		}
		e.Accept(w)
	}
	w.sb.WriteByte(']')
}

func (w *writer) VisitFunctionCall(s *ir.FunctionCall[pr]) {
	w.call(s.Callee, s.Arguments)
}

func (w *writer) VisitListLiteral(s *ir.ListLiteral[pr]) {
	w.elements(s.Elements)
}

func (w *writer) VisitLet(s *ir.Let[pr]) {
	w.sb.WriteString("let ")
	w.sb.WriteString(Ident(s.Name))
	w.sb.WriteString(" = ")
	s.Value.Accept(w)
	w.sb.WriteByte(';')
}

func (w *writer) VisitStringLiteral(e *ir.StringLiteral[pr]) {
	w.sb.WriteString(Quote(e.Value, w.format))
}

func (w *writer) VisitBoolLiteral(e *ir.BoolLiteral[pr]) {
	if e.Value {
		w.sb.WriteString("true")
	} else {
		w.sb.WriteString("false")
	}
}

func (w *writer) VisitVariable(e *ir.Variable[pr]) {
	w.sb.WriteString(Ident(e.Name))
}

func (w *writer) VisitList(e *ir.List[pr]) {
	w.format = false
	w.elements(e.Elements)
}

func (w *writer) VisitCall(e *ir.Call[pr]) {
	w.format = false
	w.call(e.Callee, e.Arguments)
}
