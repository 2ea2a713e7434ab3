package pyparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pyrs/internal/pyast"
)

func parseOne(t *testing.T, src string) pyast.Stmt {
	t.Helper()
	mod, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, mod.Body, 1)
	return mod.Body[0]
}

func parseExpr(t *testing.T, src string) pyast.Expr {
	t.Helper()
	stmt, ok := parseOne(t, src).(*pyast.ExprStmt)
	require.True(t, ok, "expected expression statement")
	return stmt.Value
}

func TestParse_PrintCall(t *testing.T) {
	stmt := parseOne(t, `print("hello")`)

	want := &pyast.ExprStmt{
		Pos: pyast.Pos{Line: 1, Column: 1},
		Value: &pyast.Call{
			Pos:  pyast.Pos{Line: 1, Column: 1},
			Func: &pyast.Name{Pos: pyast.Pos{Line: 1, Column: 1}, Id: "print"},
			Args: []pyast.Expr{
				&pyast.Str{Pos: pyast.Pos{Line: 1, Column: 7}, Value: "hello"},
			},
		},
	}
	assert.Equal(t, want, stmt)
}

func TestParse_ModuleOrder(t *testing.T) {
	mod, err := Parse("a = 1\nprint(a)\n\nb = [a]\n")
	require.NoError(t, err)
	require.Len(t, mod.Body, 3)

	assert.IsType(t, &pyast.Assign{}, mod.Body[0])
	assert.IsType(t, &pyast.ExprStmt{}, mod.Body[1])
	assert.IsType(t, &pyast.Assign{}, mod.Body[2])
	assert.Equal(t, 4, mod.Body[2].Position().Line)
}

func TestParse_SemicolonSeparated(t *testing.T) {
	mod, err := Parse("a = 1; print(a);\n")
	require.NoError(t, err)
	require.Len(t, mod.Body, 2)
	assert.Equal(t, 8, mod.Body[1].Position().Column)
}

func TestParse_Assignments(t *testing.T) {
	t.Run("chain", func(t *testing.T) {
		stmt := parseOne(t, "a = b = []").(*pyast.Assign)
		require.Len(t, stmt.Targets, 2)
		assert.Equal(t, "a", stmt.Targets[0].(*pyast.Name).Id)
		assert.Equal(t, "b", stmt.Targets[1].(*pyast.Name).Id)
		assert.IsType(t, &pyast.List{}, stmt.Value)
	})

	t.Run("tuple unpacking", func(t *testing.T) {
		stmt := parseOne(t, "a, *b = xs").(*pyast.Assign)
		target := stmt.Targets[0].(*pyast.Tuple)
		require.Len(t, target.Elts, 2)
		assert.IsType(t, &pyast.Starred{}, target.Elts[1])
	})

	t.Run("attribute and subscript", func(t *testing.T) {
		stmt := parseOne(t, "a.b[0] = 1").(*pyast.Assign)
		assert.IsType(t, &pyast.Subscript{}, stmt.Targets[0])
	})

	t.Run("augmented", func(t *testing.T) {
		stmt := parseOne(t, "x += 1").(*pyast.AugAssign)
		assert.Equal(t, "+", stmt.Op)
		assert.Equal(t, "x", stmt.Target.(*pyast.Name).Id)
	})
}

func TestParse_CompoundStatements(t *testing.T) {
	src := `
def greet(name, *args, sep: str = " ", **kw) -> None:
    for x in xs:
        if x:
            print(x)
        elif y:
            pass
        else:
            break
    else:
        pass
    while True: continue
    return name
`
	fn := parseOne(t, src).(*pyast.FunctionDef)
	assert.Equal(t, "greet", fn.Name)
	assert.Equal(t, []string{"name", "*args", "sep", "**kw"}, fn.Params)
	require.Len(t, fn.Body, 3)

	loop := fn.Body[0].(*pyast.For)
	assert.Equal(t, "x", loop.Target.(*pyast.Name).Id)
	require.Len(t, loop.Orelse, 1)

	branch := loop.Body[0].(*pyast.If)
	require.Len(t, branch.Orelse, 1)
	elif := branch.Orelse[0].(*pyast.If)
	assert.IsType(t, &pyast.Pass{}, elif.Body[0])
	assert.IsType(t, &pyast.Break{}, elif.Orelse[0])

	while := fn.Body[1].(*pyast.While)
	assert.IsType(t, &pyast.Continue{}, while.Body[0])
	assert.IsType(t, &pyast.Return{}, fn.Body[2])
}

func TestParse_SimpleStatements(t *testing.T) {
	tests := []struct {
		src  string
		want pyast.Stmt
	}{
		{"pass", &pyast.Pass{}},
		{"import os.path, sys as s", &pyast.Import{}},
		{"global a, b", &pyast.Global{}},
		{"del a, b[0]", &pyast.Del{}},
		{"assert x, 'msg'", &pyast.Assert{}},
		{"raise ValueError('x') from err", &pyast.Raise{}},
		{"return", &pyast.Return{}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.IsType(t, tt.want, parseOne(t, tt.src))
		})
	}

	imp := parseOne(t, "import os.path, sys as s").(*pyast.Import)
	assert.Equal(t, []string{"os.path", "sys"}, imp.Names)
	del := parseOne(t, "del a, b[0]").(*pyast.Del)
	assert.Len(t, del.Targets, 2)
}

func TestParse_Expressions(t *testing.T) {
	t.Run("precedence", func(t *testing.T) {
		expr := parseExpr(t, "a + b * c ** -d").(*pyast.BinOp)
		assert.Equal(t, "+", expr.Op)
		mul := expr.Right.(*pyast.BinOp)
		assert.Equal(t, "*", mul.Op)
		pow := mul.Right.(*pyast.BinOp)
		assert.Equal(t, "**", pow.Op)
		assert.IsType(t, &pyast.UnaryOp{}, pow.Right)
	})

	t.Run("comparison chain", func(t *testing.T) {
		expr := parseExpr(t, "a < b is not c not in d").(*pyast.Compare)
		assert.Equal(t, []string{"<", "is not", "not in"}, expr.Ops)
		assert.Len(t, expr.Comparators, 3)
	})

	t.Run("boolean", func(t *testing.T) {
		expr := parseExpr(t, "a or b and not c").(*pyast.BoolOp)
		assert.Equal(t, "or", expr.Op)
		and := expr.Values[1].(*pyast.BoolOp)
		assert.Equal(t, "and", and.Op)
		assert.Equal(t, "not", and.Values[1].(*pyast.UnaryOp).Op)
	})

	t.Run("conditional", func(t *testing.T) {
		assert.IsType(t, &pyast.IfExp{}, parseExpr(t, "a if b else c"))
	})

	t.Run("displays", func(t *testing.T) {
		assert.IsType(t, &pyast.Tuple{}, parseExpr(t, "()"))
		assert.IsType(t, &pyast.Tuple{}, parseExpr(t, "(1,)"))
		assert.IsType(t, &pyast.Int{}, parseExpr(t, "(1)"))
		assert.IsType(t, &pyast.Dict{}, parseExpr(t, "{}"))
		assert.IsType(t, &pyast.Dict{}, parseExpr(t, "{'a': 1, 'b': 2,}"))
		assert.IsType(t, &pyast.Set{}, parseExpr(t, "{1, 2}"))

		list := parseExpr(t, "[1, 'two', [],]").(*pyast.List)
		assert.Len(t, list.Elts, 3)
	})

	t.Run("trailers", func(t *testing.T) {
		call := parseExpr(t, "a.b(c)[0](d)").(*pyast.Call)
		sub := call.Func.(*pyast.Subscript)
		inner := sub.Value.(*pyast.Call)
		attr := inner.Func.(*pyast.Attribute)
		assert.Equal(t, "b", attr.Attr)
	})

	t.Run("call arguments", func(t *testing.T) {
		call := parseExpr(t, "f(a, *b, sep='', **kw)").(*pyast.Call)
		require.Len(t, call.Args, 2)
		assert.IsType(t, &pyast.Starred{}, call.Args[1])
		require.Len(t, call.Keywords, 2)
		assert.Equal(t, "sep", call.Keywords[0].Arg)
		assert.Empty(t, call.Keywords[1].Arg)
	})

	t.Run("adjacent strings", func(t *testing.T) {
		str := parseExpr(t, `"a" 'b' "c"`).(*pyast.Str)
		assert.Equal(t, "abc", str.Value)
		assert.Equal(t, pyast.StrPlain, str.Kind)

		str = parseExpr(t, `"a" f"{b}"`).(*pyast.Str)
		assert.Equal(t, pyast.StrFormat, str.Kind)
	})

	t.Run("literals", func(t *testing.T) {
		assert.Equal(t, true, parseExpr(t, "True").(*pyast.Bool).Value)
		assert.Equal(t, false, parseExpr(t, "False").(*pyast.Bool).Value)
		assert.IsType(t, &pyast.NoneLit{}, parseExpr(t, "None"))
		assert.Equal(t, "1.5", parseExpr(t, "1.5").(*pyast.Float).Literal)
	})
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		line   int
		column int
		msg    string
	}{
		{"python 2 print", `print "hi"`, 1, 7, "expected newline, got string"},
		{"unclosed call", "print(\"hi\"", 1, 11, "inside brackets"},
		{"missing block", "if x:\nprint(x)\n", 2, 1, "expected an indented block"},
		{"unexpected indent", "a\n  b\n", 2, 3, "unexpected indent"},
		{"assign to literal", "1 = a", 1, 1, "cannot assign to integer literal 1"},
		{"assign to call", "f() = a", 1, 1, "cannot assign to call"},
		{"augassign to tuple", "a, b += 1", 1, 1, "illegal expression for augmented assignment"},
		{"class", "class A:\n    pass\n", 1, 1, "class definitions are not supported"},
		{"lambda", "f = lambda: 1", 1, 5, "lambda expressions are not supported"},
		{"comprehension", "[x for x in y]", 1, 4, "comprehensions are not supported"},
		{"slice", "a[1:2]", 1, 4, "slices are not supported"},
		{"walrus", "(a := 1)", 1, 4, "assignment expressions are not supported"},
		{"annotated", "a: int = 1", 1, 2, "annotated assignments are not supported"},
		{"positional after keyword", "f(a=1, b)", 1, 8, "positional argument follows keyword argument"},
		{"mixed bytes", `b"a" "b"`, 1, 6, "cannot mix bytes"},
		{"missing else", "a if b", 1, 7, "expected 'else'"},
		{"dangling operator", "a +", 1, 4, "expected expression, got newline"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Contains(t, syntaxErr.Msg, tt.msg)
			assert.Equal(t, tt.line, syntaxErr.Line, "line")
			assert.Equal(t, tt.column, syntaxErr.Column, "column")
		})
	}
}

func TestParse_Empty(t *testing.T) {
	mod, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, mod.Body)
}
