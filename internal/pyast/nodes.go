// Package pyast defines the syntax tree produced by pyparse for the
// supported Python subset.
//
// The tree is shaped after Python's own ast module: a Module holds a list
// of statements, compound statements hold nested bodies, and every node
// records the position of its first token.
package pyast

import "fmt"

// Pos is a 1-based line and column in the source text.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid reports whether p was set by the parser.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

// Node is implemented by every AST node.
type Node interface {
	Position() Pos
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Module is the root of a parsed source file.
type Module struct {
	Body []Stmt
}

// --- Statements ---

// ExprStmt is an expression evaluated for its effect.
type ExprStmt struct {
	Pos   Pos
	Value Expr
}

// Assign is "t1 = t2 = ... = value".
type Assign struct {
	Pos     Pos
	Targets []Expr
	Value   Expr
}

// AugAssign is "target op= value".
type AugAssign struct {
	Pos    Pos
	Target Expr
	Op     string // "+", "-", ...
	Value  Expr
}

// Pass is the "pass" statement.
type Pass struct {
	Pos Pos
}

// Break is the "break" statement.
type Break struct {
	Pos Pos
}

// Continue is the "continue" statement.
type Continue struct {
	Pos Pos
}

// Return is "return [value]".
type Return struct {
	Pos   Pos
	Value Expr // nil for a bare return
}

// Raise is "raise [exc]".
type Raise struct {
	Pos Pos
	Exc Expr // nil for a bare raise
}

// Assert is "assert test [, msg]".
type Assert struct {
	Pos  Pos
	Test Expr
	Msg  Expr
}

// Del is "del t1, t2".
type Del struct {
	Pos     Pos
	Targets []Expr
}

// Global is "global a, b".
type Global struct {
	Pos   Pos
	Names []string
}

// Import is "import a.b, c".
type Import struct {
	Pos   Pos
	Names []string
}

// If is an if/elif/else chain. An elif is an If nested in Orelse.
type If struct {
	Pos    Pos
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

// While is a while loop.
type While struct {
	Pos    Pos
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

// For is "for target in iter:".
type For struct {
	Pos    Pos
	Target Expr
	Iter   Expr
	Body   []Stmt
	Orelse []Stmt
}

// FunctionDef is "def name(params):".
type FunctionDef struct {
	Pos    Pos
	Name   string
	Params []string
	Body   []Stmt
}

func (s *ExprStmt) Position() Pos    { return s.Pos }
func (s *Assign) Position() Pos      { return s.Pos }
func (s *AugAssign) Position() Pos   { return s.Pos }
func (s *Pass) Position() Pos        { return s.Pos }
func (s *Break) Position() Pos       { return s.Pos }
func (s *Continue) Position() Pos    { return s.Pos }
func (s *Return) Position() Pos      { return s.Pos }
func (s *Raise) Position() Pos       { return s.Pos }
func (s *Assert) Position() Pos      { return s.Pos }
func (s *Del) Position() Pos         { return s.Pos }
func (s *Global) Position() Pos      { return s.Pos }
func (s *Import) Position() Pos      { return s.Pos }
func (s *If) Position() Pos          { return s.Pos }
func (s *While) Position() Pos       { return s.Pos }
func (s *For) Position() Pos         { return s.Pos }
func (s *FunctionDef) Position() Pos { return s.Pos }

func (*ExprStmt) stmtNode()    {}
func (*Assign) stmtNode()      {}
func (*AugAssign) stmtNode()   {}
func (*Pass) stmtNode()        {}
func (*Break) stmtNode()       {}
func (*Continue) stmtNode()    {}
func (*Return) stmtNode()      {}
func (*Raise) stmtNode()       {}
func (*Assert) stmtNode()      {}
func (*Del) stmtNode()         {}
func (*Global) stmtNode()      {}
func (*Import) stmtNode()      {}
func (*If) stmtNode()          {}
func (*While) stmtNode()       {}
func (*For) stmtNode()         {}
func (*FunctionDef) stmtNode() {}

// --- Expressions ---

// StrKind distinguishes string literal prefixes.
type StrKind int

const (
	StrPlain StrKind = iota // "..." , r"...", u"..."
	StrBytes                // b"..."
	StrFormat               // f"..."
)

// Name is an identifier reference. Id is NFKC-normalized.
type Name struct {
	Pos Pos
	Id  string
}

// Str is a string literal with escapes already decoded.
// Adjacent literals are concatenated into one Str.
type Str struct {
	Pos   Pos
	Value string
	Kind  StrKind
}

// Int is an integer literal, kept in source spelling.
type Int struct {
	Pos     Pos
	Literal string
}

// Float is a floating point literal, kept in source spelling.
type Float struct {
	Pos     Pos
	Literal string
}

// Bool is True or False.
type Bool struct {
	Pos   Pos
	Value bool
}

// NoneLit is None.
type NoneLit struct {
	Pos Pos
}

// List is "[e1, e2]".
type List struct {
	Pos  Pos
	Elts []Expr
}

// Tuple is "(e1, e2)" or a bare "e1, e2".
type Tuple struct {
	Pos  Pos
	Elts []Expr
}

// Dict is "{k: v}".
type Dict struct {
	Pos    Pos
	Keys   []Expr
	Values []Expr
}

// Set is "{e1, e2}".
type Set struct {
	Pos  Pos
	Elts []Expr
}

// Keyword is a "name=value" call argument.
type Keyword struct {
	Pos   Pos
	Arg   string
	Value Expr
}

// Call is "func(args, keywords)".
type Call struct {
	Pos      Pos
	Func     Expr
	Args     []Expr
	Keywords []*Keyword
}

// Starred is "*value" in an argument list.
type Starred struct {
	Pos   Pos
	Value Expr
}

// Attribute is "value.attr".
type Attribute struct {
	Pos   Pos
	Value Expr
	Attr  string
}

// Subscript is "value[index]".
type Subscript struct {
	Pos   Pos
	Value Expr
	Index Expr
}

// BinOp is "left op right" for arithmetic operators.
type BinOp struct {
	Pos   Pos
	Op    string
	Left  Expr
	Right Expr
}

// UnaryOp is "op operand" for -, +, ~ and not.
type UnaryOp struct {
	Pos     Pos
	Op      string
	Operand Expr
}

// BoolOp is a chain of "and" or "or".
type BoolOp struct {
	Pos    Pos
	Op     string
	Values []Expr
}

// Compare is "left op1 c1 op2 c2 ...".
type Compare struct {
	Pos         Pos
	Left        Expr
	Ops         []string
	Comparators []Expr
}

// IfExp is "body if test else orelse".
type IfExp struct {
	Pos    Pos
	Test   Expr
	Body   Expr
	Orelse Expr
}

func (e *Name) Position() Pos      { return e.Pos }
func (e *Str) Position() Pos       { return e.Pos }
func (e *Int) Position() Pos       { return e.Pos }
func (e *Float) Position() Pos     { return e.Pos }
func (e *Bool) Position() Pos      { return e.Pos }
func (e *NoneLit) Position() Pos   { return e.Pos }
func (e *List) Position() Pos      { return e.Pos }
func (e *Tuple) Position() Pos     { return e.Pos }
func (e *Dict) Position() Pos      { return e.Pos }
func (e *Set) Position() Pos       { return e.Pos }
func (e *Keyword) Position() Pos   { return e.Pos }
func (e *Call) Position() Pos      { return e.Pos }
func (e *Starred) Position() Pos   { return e.Pos }
func (e *Attribute) Position() Pos { return e.Pos }
func (e *Subscript) Position() Pos { return e.Pos }
func (e *BinOp) Position() Pos     { return e.Pos }
func (e *UnaryOp) Position() Pos   { return e.Pos }
func (e *BoolOp) Position() Pos    { return e.Pos }
func (e *Compare) Position() Pos   { return e.Pos }
func (e *IfExp) Position() Pos     { return e.Pos }

func (*Name) exprNode()      {}
func (*Str) exprNode()       {}
func (*Int) exprNode()       {}
func (*Float) exprNode()     {}
func (*Bool) exprNode()      {}
func (*NoneLit) exprNode()   {}
func (*List) exprNode()      {}
func (*Tuple) exprNode()     {}
func (*Dict) exprNode()      {}
func (*Set) exprNode()       {}
func (*Keyword) exprNode()   {}
func (*Call) exprNode()      {}
func (*Starred) exprNode()   {}
func (*Attribute) exprNode() {}
func (*Subscript) exprNode() {}
func (*BinOp) exprNode()     {}
func (*UnaryOp) exprNode()   {}
func (*BoolOp) exprNode()    {}
func (*Compare) exprNode()   {}
func (*IfExp) exprNode()     {}
