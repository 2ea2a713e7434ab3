package pyast

import "fmt"

// Describe returns a short human-readable description of a node's shape,
// suitable for diagnostics ("integer literal 1", "for loop").
func Describe(n Node) string {
	switch n := n.(type) {
	case *ExprStmt:
		return "expression statement (" + Describe(n.Value) + ")"
	case *Assign:
		if len(n.Targets) > 1 {
			return "chained assignment"
		}
		return "assignment"
	case *AugAssign:
		return fmt.Sprintf("augmented assignment (%s=)", n.Op)
	case *Pass:
		return "pass statement"
	case *Break:
		return "break statement"
	case *Continue:
		return "continue statement"
	case *Return:
		return "return statement"
	case *Raise:
		return "raise statement"
	case *Assert:
		return "assert statement"
	case *Del:
		return "del statement"
	case *Global:
		return "global statement"
	case *Import:
		return "import statement"
	case *If:
		return "if statement"
	case *While:
		return "while loop"
	case *For:
		return "for loop"
	case *FunctionDef:
		return fmt.Sprintf("function definition %q", n.Name)

	case *Name:
		return fmt.Sprintf("name %q", n.Id)
	case *Str:
		switch n.Kind {
		case StrBytes:
			return "bytes literal"
		case StrFormat:
			return "f-string"
		}
		return "string literal"
	case *Int:
		return "integer literal " + n.Literal
	case *Float:
		return "float literal " + n.Literal
	case *Bool:
		return "boolean literal"
	case *NoneLit:
		return "None literal"
	case *List:
		return "list literal"
	case *Tuple:
		return "tuple literal"
	case *Dict:
		return "dict literal"
	case *Set:
		return "set literal"
	case *Keyword:
		if n.Arg == "" {
			return "keyword unpacking **"
		}
		return fmt.Sprintf("keyword argument %q", n.Arg)
	case *Call:
		return "call"
	case *Starred:
		return "starred argument"
	case *Attribute:
		return fmt.Sprintf("attribute access .%s", n.Attr)
	case *Subscript:
		return "subscript"
	case *BinOp:
		return fmt.Sprintf("binary operator %s", n.Op)
	case *UnaryOp:
		return fmt.Sprintf("unary operator %s", n.Op)
	case *BoolOp:
		return fmt.Sprintf("boolean operator %s", n.Op)
	case *Compare:
		return "comparison"
	case *IfExp:
		return "conditional expression"
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("%T", n)
	}
}
