package pyparse

import "github.com/roach88/pyrs/internal/pyast"

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF
	NEWLINE
	INDENT
	DEDENT

	// Literals
	NAME   // x, print
	INT    // 42, 0x2a, 1_000
	FLOAT  // 1.5, 1e3, 2j
	STRING // "hello", r'\d', b"..", f"{x}"

	// Keywords
	FALSE
	NONE
	TRUE
	AND
	AS
	ASSERT
	ASYNC
	AWAIT
	BREAK
	CLASS
	CONTINUE
	DEF
	DEL
	ELIF
	ELSE
	EXCEPT
	FINALLY
	FOR
	FROM
	GLOBAL
	IF
	IMPORT
	IN
	IS
	LAMBDA
	NONLOCAL
	NOT
	OR
	PASS
	RAISE
	RETURN
	TRY
	WHILE
	WITH
	YIELD

	// Operators
	PLUS      // +
	MINUS     // -
	STAR      // *
	DSTAR     // **
	SLASH     // /
	DSLASH    // //
	PERCENT   // %
	AT        // @
	TILDE     // ~
	AMP       // &
	PIPE      // |
	CARET     // ^
	LSHIFT    // <<
	RSHIFT    // >>
	LT        // <
	GT        // >
	LE        // <=
	GE        // >=
	EQ        // ==
	NE        // !=
	ASSIGN    // =
	AUGASSIGN // +=, -=, ... (Literal holds the operator)
	WALRUS    // :=
	ARROW     // ->

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	LBRACKET  // [
	RBRACKET  // ]
	LBRACE    // {
	RBRACE    // }
	COMMA     // ,
	COLON     // :
	SEMICOLON // ;
	DOT       // .
)

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string // source text; for AUGASSIGN the operator

	// Value and Kind are set for STRING tokens: the decoded text and prefix kind.
	Value string
	Kind  pyast.StrKind

	Line   int
	Column int
}

// Pos returns the token position.
func (t Token) Pos() pyast.Pos {
	return pyast.Pos{Line: t.Line, Column: t.Column}
}

var keywords = map[string]TokenType{
	"False":    FALSE,
	"None":     NONE,
	"True":     TRUE,
	"and":      AND,
	"as":       AS,
	"assert":   ASSERT,
	"async":    ASYNC,
	"await":    AWAIT,
	"break":    BREAK,
	"class":    CLASS,
	"continue": CONTINUE,
	"def":      DEF,
	"del":      DEL,
	"elif":     ELIF,
	"else":     ELSE,
	"except":   EXCEPT,
	"finally":  FINALLY,
	"for":      FOR,
	"from":     FROM,
	"global":   GLOBAL,
	"if":       IF,
	"import":   IMPORT,
	"in":       IN,
	"is":       IS,
	"lambda":   LAMBDA,
	"nonlocal": NONLOCAL,
	"not":      NOT,
	"or":       OR,
	"pass":     PASS,
	"raise":    RAISE,
	"return":   RETURN,
	"try":      TRY,
	"while":    WHILE,
	"with":     WITH,
	"yield":    YIELD,
}

// LookupIdent returns the keyword token type for ident, or NAME.
func LookupIdent(ident string) TokenType {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return NAME
}

var tokenNames = map[TokenType]string{
	ILLEGAL:   "ILLEGAL",
	EOF:       "end of file",
	NEWLINE:   "newline",
	INDENT:    "indent",
	DEDENT:    "dedent",
	NAME:      "name",
	INT:       "integer",
	FLOAT:     "float",
	STRING:    "string",
	PLUS:      "'+'",
	MINUS:     "'-'",
	STAR:      "'*'",
	DSTAR:     "'**'",
	SLASH:     "'/'",
	DSLASH:    "'//'",
	PERCENT:   "'%'",
	AT:        "'@'",
	TILDE:     "'~'",
	AMP:       "'&'",
	PIPE:      "'|'",
	CARET:     "'^'",
	LSHIFT:    "'<<'",
	RSHIFT:    "'>>'",
	LT:        "'<'",
	GT:        "'>'",
	LE:        "'<='",
	GE:        "'>='",
	EQ:        "'=='",
	NE:        "'!='",
	ASSIGN:    "'='",
	AUGASSIGN: "augmented assignment",
	WALRUS:    "':='",
	ARROW:     "'->'",
	LPAREN:    "'('",
	RPAREN:    "')'",
	LBRACKET:  "'['",
	RBRACKET:  "']'",
	LBRACE:    "'{'",
	RBRACE:    "'}'",
	COMMA:     "','",
	COLON:     "':'",
	SEMICOLON: "';'",
	DOT:       "'.'",
}

// String returns a string representation of the token type
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	for kw, tt := range keywords {
		if tt == t {
			return "'" + kw + "'"
		}
	}
	return "unknown"
}
