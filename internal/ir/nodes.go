package ir

import "github.com/roach88/pyrs/internal/lang"

// Identifier is a source-language name, kept in source spelling.
// Callee identifiers are mapped to target spellings at render time.
type Identifier string

func (id Identifier) String() string {
	return string(id)
}

// Statement is a top-level IR statement for the language pair P.
type Statement[P lang.Pair] interface {
	Accept(v StatementVisitor[P])
	statement()
}

// Expression is a value-producing IR node for the language pair P.
type Expression[P lang.Pair] interface {
	Accept(v ExpressionVisitor[P])
	expression()
}

// StatementVisitor is implemented by every consumer of statements.
type StatementVisitor[P lang.Pair] interface {
	VisitFunctionCall(s *FunctionCall[P])
	VisitListLiteral(s *ListLiteral[P])
	VisitLet(s *Let[P])
}

// ExpressionVisitor is implemented by every consumer of expressions.
type ExpressionVisitor[P lang.Pair] interface {
	VisitStringLiteral(e *StringLiteral[P])
	VisitBoolLiteral(e *BoolLiteral[P])
	VisitVariable(e *Variable[P])
	VisitList(e *List[P])
	VisitCall(e *Call[P])
}

// --- Statements ---

// FunctionCall invokes Callee with Arguments, in order.
type FunctionCall[P lang.Pair] struct {
	Callee    Identifier
	Arguments []Expression[P]
}

// ListLiteral is a list display evaluated as a statement.
type ListLiteral[P lang.Pair] struct {
	Elements []Expression[P]
}

// Let binds Value to a new local Name.
type Let[P lang.Pair] struct {
	Name  Identifier
	Value Expression[P]
}

func (s *FunctionCall[P]) Accept(v StatementVisitor[P]) { v.VisitFunctionCall(s) }
func (s *ListLiteral[P]) Accept(v StatementVisitor[P])  { v.VisitListLiteral(s) }
func (s *Let[P]) Accept(v StatementVisitor[P])          { v.VisitLet(s) }

func (*FunctionCall[P]) statement() {}
func (*ListLiteral[P]) statement()  {}
func (*Let[P]) statement()          {}

// --- Expressions ---

// StringLiteral holds the decoded text of a string literal. Escaping for
// the target language happens at render time.
type StringLiteral[P lang.Pair] struct {
	Value string
}

// BoolLiteral is true or false.
type BoolLiteral[P lang.Pair] struct {
	Value bool
}

// Variable references a name bound earlier in the program.
type Variable[P lang.Pair] struct {
	Name Identifier
}

// List is a list display used as a value.
type List[P lang.Pair] struct {
	Elements []Expression[P]
}

// Call is a function call used as a value.
type Call[P lang.Pair] struct {
	Callee    Identifier
	Arguments []Expression[P]
}

func (e *StringLiteral[P]) Accept(v ExpressionVisitor[P]) { v.VisitStringLiteral(e) }
func (e *BoolLiteral[P]) Accept(v ExpressionVisitor[P])   { v.VisitBoolLiteral(e) }
func (e *Variable[P]) Accept(v ExpressionVisitor[P])      { v.VisitVariable(e) }
func (e *List[P]) Accept(v ExpressionVisitor[P])          { v.VisitList(e) }
func (e *Call[P]) Accept(v ExpressionVisitor[P])          { v.VisitCall(e) }

func (*StringLiteral[P]) expression() {}
func (*BoolLiteral[P]) expression()   {}
func (*Variable[P]) expression()      {}
func (*List[P]) expression()          {}
func (*Call[P]) expression()          {}
