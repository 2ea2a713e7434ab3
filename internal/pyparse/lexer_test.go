package pyparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pyrs/internal/pyast"
)

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func TestTokenize_SimpleCall(t *testing.T) {
	tokens, err := Tokenize(`print("hi")`)
	require.NoError(t, err)

	assert.Equal(t, []TokenType{NAME, LPAREN, STRING, RPAREN, NEWLINE, EOF}, tokenTypes(tokens))
	assert.Equal(t, "print", tokens[0].Literal)
	assert.Equal(t, `"hi"`, tokens[2].Literal)
	assert.Equal(t, "hi", tokens[2].Value)
	assert.Equal(t, 1, tokens[2].Line)
	assert.Equal(t, 7, tokens[2].Column)
}

func TestTokenize_Indentation(t *testing.T) {
	src := "if x:\n    a\n\n    # comment\n    b\nc\n"
	tokens, err := Tokenize(src)
	require.NoError(t, err)

	assert.Equal(t, []TokenType{
		IF, NAME, COLON, NEWLINE,
		INDENT, NAME, NEWLINE,
		NAME, NEWLINE,
		DEDENT, NAME, NEWLINE,
		EOF,
	}, tokenTypes(tokens))
}

func TestTokenize_DedentAtEOF(t *testing.T) {
	tokens, err := Tokenize("while x:\n  if y:\n    z")
	require.NoError(t, err)

	types := tokenTypes(tokens)
	assert.Equal(t, []TokenType{NEWLINE, DEDENT, DEDENT, EOF}, types[len(types)-4:])
}

func TestTokenize_TabsAlignToEight(t *testing.T) {
	tokens, err := Tokenize("if x:\n\ta\n        b\n")
	require.NoError(t, err)
	assert.NotContains(t, tokenTypes(tokens)[5:], INDENT, "a tab and eight spaces are the same level")
}

func TestTokenize_BadDedent(t *testing.T) {
	_, err := Tokenize("if x:\n    a\n  b\n")
	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, 3, syntaxErr.Line)
	assert.Contains(t, syntaxErr.Msg, "unindent")
}

func TestTokenize_ImplicitLineJoining(t *testing.T) {
	tokens, err := Tokenize("print(\n    1,\n    2)\n")
	require.NoError(t, err)
	assert.Equal(t, []TokenType{NAME, LPAREN, INT, COMMA, INT, RPAREN, NEWLINE, EOF}, tokenTypes(tokens))
}

func TestTokenize_BackslashContinuation(t *testing.T) {
	tokens, err := Tokenize("x = 1 + \\\n    2\n")
	require.NoError(t, err)
	assert.Equal(t, []TokenType{NAME, ASSIGN, INT, PLUS, INT, NEWLINE, EOF}, tokenTypes(tokens))
}

func TestTokenize_CRLF(t *testing.T) {
	tokens, err := Tokenize("a\r\nb\r\n")
	require.NoError(t, err)
	assert.Equal(t, []TokenType{NAME, NEWLINE, NAME, NEWLINE, EOF}, tokenTypes(tokens))
	assert.Equal(t, 2, tokens[2].Line)
}

func TestTokenize_Strings(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		value string
		kind  pyast.StrKind
	}{
		{"double quoted", `"hello"`, "hello", pyast.StrPlain},
		{"single quoted", `'hello'`, "hello", pyast.StrPlain},
		{"embedded quote", `'say "hi"'`, `say "hi"`, pyast.StrPlain},
		{"escaped quote", `"a\"b"`, `a"b`, pyast.StrPlain},
		{"newline escape", `"a\nb"`, "a\nb", pyast.StrPlain},
		{"tab and backslash", `"\t\\"`, "\t\\", pyast.StrPlain},
		{"hex escape", `"\x41"`, "A", pyast.StrPlain},
		{"octal escape", `"\101\0"`, "A\x00", pyast.StrPlain},
		{"unicode escape", `"\u00e9\U0001F600"`, "é😀", pyast.StrPlain},
		{"unknown escape kept", `"\d"`, `\d`, pyast.StrPlain},
		{"raw string", `r"\n\d"`, `\n\d`, pyast.StrPlain},
		{"raw escaped quote", `r"\""`, `\"`, pyast.StrPlain},
		{"unicode prefix", `u"x"`, "x", pyast.StrPlain},
		{"bytes", `b"x"`, "x", pyast.StrBytes},
		{"raw bytes", `Rb"\x"`, `\x`, pyast.StrBytes},
		{"f-string", `f"{x}"`, "{x}", pyast.StrFormat},
		{"triple quoted", "\"\"\"a\n\"b\"\n\"\"\"", "a\n\"b\"\n", pyast.StrPlain},
		{"escaped newline", "'a\\\nb'", "ab", pyast.StrPlain},
		{"non-ascii", `"héllo"`, "héllo", pyast.StrPlain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.src)
			require.NoError(t, err)
			require.Equal(t, STRING, tokens[0].Type)
			assert.Equal(t, tt.value, tokens[0].Value)
			assert.Equal(t, tt.kind, tokens[0].Kind)
			assert.Equal(t, tt.src, tokens[0].Literal)
		})
	}
}

func TestTokenize_Numbers(t *testing.T) {
	tests := []struct {
		src string
		tt  TokenType
	}{
		{"0", INT},
		{"42", INT},
		{"1_000", INT},
		{"0x2A", INT},
		{"0o17", INT},
		{"0b1010", INT},
		{"1.5", FLOAT},
		{"1.", FLOAT},
		{".5", FLOAT},
		{"1e3", FLOAT},
		{"1E-3", FLOAT},
		{"2j", FLOAT},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tokens, err := Tokenize(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.tt, tokens[0].Type)
			assert.Equal(t, tt.src, tokens[0].Literal)
		})
	}
}

func TestTokenize_Operators(t *testing.T) {
	tokens, err := Tokenize("a **= b // c != d -> e := f << g")
	require.NoError(t, err)
	assert.Equal(t, []TokenType{
		NAME, AUGASSIGN, NAME, DSLASH, NAME, NE, NAME, ARROW, NAME, WALRUS, NAME, LSHIFT, NAME, NEWLINE, EOF,
	}, tokenTypes(tokens))
	assert.Equal(t, "**=", tokens[1].Literal)
}

func TestTokenize_KeywordsAndNormalization(t *testing.T) {
	tokens, err := Tokenize("for ﬁle in None")
	require.NoError(t, err)
	assert.Equal(t, []TokenType{FOR, NAME, IN, NONE, NEWLINE, EOF}, tokenTypes(tokens))
	assert.Equal(t, "file", tokens[1].Literal, "identifiers are NFKC normalized")
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"unterminated", `print("hi`, "unterminated string literal"},
		{"unterminated triple", `"""abc`, "unterminated triple-quoted"},
		{"newline in string", "'a\nb'", "unterminated string literal"},
		{"bad hex escape", `"\xZZ"`, `\xXX`},
		{"invalid character", "a $ b", "invalid character"},
		{"stray backslash", `a \ b`, "line continuation"},
		{"unclosed bracket", "print(1", "inside brackets"},
		{"bad number", "1abc", "invalid decimal literal"},
		{"lone surrogate", `"\ud800"`, `invalid \u escape`},
		{"surrogate long form", `"\U0000DFFF"`, `invalid \u escape`},
		{"out of range", `"\U00110000"`, `invalid \u escape`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.src)
			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Contains(t, syntaxErr.Msg, tt.msg)
			assert.True(t, syntaxErr.Pos().IsValid())
		})
	}
}

func TestTokenize_ByteOrderMark(t *testing.T) {
	tokens, err := Tokenize("\uFEFFprint(\"hi\")\n")
	require.NoError(t, err)

	assert.Equal(t, []TokenType{NAME, LPAREN, STRING, RPAREN, NEWLINE, EOF}, tokenTypes(tokens))
	assert.Equal(t, 1, tokens[0].Column)
}

func TestTokenize_InvalidUTF8(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		line, col int
	}{
		{"in string", "print(\"\xff\")", 1, 8},
		{"second line", "x = 1\nprint(\"a\xc3\")\n", 2, 9},
		{"after multibyte rune", "\"é\x80\"", 1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.src)
			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Contains(t, syntaxErr.Msg, "invalid UTF-8")
			assert.Equal(t, tt.line, syntaxErr.Line)
			assert.Equal(t, tt.col, syntaxErr.Column)
		})
	}
}

func TestTokenize_Empty(t *testing.T) {
	for _, src := range []string{"", "\n\n", "# only a comment\n", "   \n"} {
		tokens, err := Tokenize(src)
		require.NoError(t, err)
		assert.Equal(t, []TokenType{EOF}, tokenTypes(tokens), "source %q", src)
	}
}
