package pyast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		node Node
		want string
	}{
		{&ExprStmt{Value: &Int{Literal: "1"}}, "expression statement (integer literal 1)"},
		{&Assign{Targets: []Expr{&Name{Id: "a"}, &Name{Id: "b"}}}, "chained assignment"},
		{&Assign{Targets: []Expr{&Name{Id: "a"}}}, "assignment"},
		{&AugAssign{Op: "+"}, "augmented assignment (+=)"},
		{&For{}, "for loop"},
		{&FunctionDef{Name: "main"}, `function definition "main"`},
		{&Name{Id: "x"}, `name "x"`},
		{&Str{Kind: StrPlain}, "string literal"},
		{&Str{Kind: StrBytes}, "bytes literal"},
		{&Str{Kind: StrFormat}, "f-string"},
		{&Float{Literal: "1.5"}, "float literal 1.5"},
		{&NoneLit{}, "None literal"},
		{&Keyword{Arg: "sep"}, `keyword argument "sep"`},
		{&Keyword{}, "keyword unpacking **"},
		{&Attribute{Attr: "append"}, "attribute access .append"},
		{&BinOp{Op: "+"}, "binary operator +"},
		{&BoolOp{Op: "and"}, "boolean operator and"},
		{nil, "<nil>"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.node))
		})
	}
}

func TestPos(t *testing.T) {
	assert.Equal(t, "3:7", Pos{Line: 3, Column: 7}.String())
	assert.True(t, Pos{Line: 1, Column: 1}.IsValid())
	assert.False(t, Pos{}.IsValid())
}
