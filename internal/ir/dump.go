package ir

import (
	"strconv"
	"strings"

	"github.com/roach88/pyrs/internal/lang"
)

// Node is a pair-independent view of an IR tree, used for debugging output
// and hashing. JSON and YAML tags use snake_case.
type Node struct {
	Kind     string `json:"kind" yaml:"kind"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Value    string `json:"value,omitempty" yaml:"value,omitempty"`
	Children []Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Node kinds.
const (
	KindFunctionCall  = "function_call"
	KindListLiteral   = "list_literal"
	KindLet           = "let"
	KindStringLiteral = "string"
	KindBoolLiteral   = "bool"
	KindVariable      = "variable"
	KindList          = "list"
	KindCall          = "call"
)

// String renders n as an s-expression, e.g. (function_call print (string "hi")).
func (n Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n Node) write(sb *strings.Builder) {
	sb.WriteByte('(')
	sb.WriteString(n.Kind)
	if n.Name != "" {
		sb.WriteByte(' ')
		sb.WriteString(n.Name)
	}
	switch n.Kind {
	case KindStringLiteral:
		sb.WriteByte(' ')
		sb.WriteString(strconv.Quote(n.Value))
	case KindBoolLiteral:
		sb.WriteByte(' ')
		sb.WriteString(n.Value)
	}
	for _, c := range n.Children {
		sb.WriteByte(' ')
		c.write(sb)
	}
	sb.WriteByte(')')
}

// Dump converts a statement into its Node form.
func Dump[P lang.Pair](s Statement[P]) Node {
	d := &dumper[P]{}
	s.Accept(d)
	return d.out
}

// DumpExpression converts an expression into its Node form.
func DumpExpression[P lang.Pair](e Expression[P]) Node {
	d := &dumper[P]{}
	e.Accept(d)
	return d.out
}

// DumpAll converts a program into Node form, preserving order.
func DumpAll[P lang.Pair](stmts []Statement[P]) []Node {
	nodes := make([]Node, len(stmts))
	for i, s := range stmts {
		nodes[i] = Dump(s)
	}
	return nodes
}

// dumper implements both visitors; out holds the last visited node.
type dumper[P lang.Pair] struct {
	out Node
}

func (d *dumper[P]) children(exprs []Expression[P]) []Node {
	if len(exprs) == 0 {
		return nil
	}
	nodes := make([]Node, len(exprs))
	for i, e := range exprs {
		nodes[i] = DumpExpression(e)
	}
	return nodes
}

func (d *dumper[P]) VisitFunctionCall(s *FunctionCall[P]) {
	d.out = Node{Kind: KindFunctionCall, Name: string(s.Callee), Children: d.children(s.Arguments)}
}

func (d *dumper[P]) VisitListLiteral(s *ListLiteral[P]) {
	d.out = Node{Kind: KindListLiteral, Children: d.children(s.Elements)}
}

func (d *dumper[P]) VisitLet(s *Let[P]) {
	d.out = Node{Kind: KindLet, Name: string(s.Name), Children: []Node{DumpExpression(s.Value)}}
}

func (d *dumper[P]) VisitStringLiteral(e *StringLiteral[P]) {
	d.out = Node{Kind: KindStringLiteral, Value: e.Value}
}

func (d *dumper[P]) VisitBoolLiteral(e *BoolLiteral[P]) {
	d.out = Node{Kind: KindBoolLiteral, Value: strconv.FormatBool(e.Value)}
}

func (d *dumper[P]) VisitVariable(e *Variable[P]) {
	d.out = Node{Kind: KindVariable, Name: string(e.Name)}
}

func (d *dumper[P]) VisitList(e *List[P]) {
	d.out = Node{Kind: KindList, Children: d.children(e.Elements)}
}

func (d *dumper[P]) VisitCall(e *Call[P]) {
	d.out = Node{Kind: KindCall, Name: string(e.Callee), Children: d.children(e.Arguments)}
}

var (
	_ StatementVisitor[lang.PythonRust]  = (*dumper[lang.PythonRust])(nil)
	_ ExpressionVisitor[lang.PythonRust] = (*dumper[lang.PythonRust])(nil)
)
