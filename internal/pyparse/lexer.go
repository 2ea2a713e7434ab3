package pyparse

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/pyrs/internal/pyast"
)

const tabSize = 8

// Lexer scans Python source and produces tokens. Block structure is
// reported with NEWLINE, INDENT and DEDENT tokens the way CPython's
// tokenizer does: blank and comment-only lines produce nothing, and line
// breaks inside brackets are joined.
type Lexer struct {
	input       []rune
	pos         int   // index of the current rune
	line        int   // current line number
	lineStart   int   // index of the first rune of the current line
	indents     []int // indentation stack, indents[0] == 0
	parenDepth  int
	atLineStart bool
	tokens      []Token
	err         error // set when the input is not valid UTF-8
}

// NewLexer creates a new Lexer instance
func NewLexer(input string) *Lexer {
	input = strings.TrimPrefix(input, "\uFEFF")
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")
	return &Lexer{
		input:       []rune(input),
		line:        1,
		indents:     []int{0},
		atLineStart: true,
		err:         checkUTF8(input),
	}
}

// checkUTF8 reports the first byte of input that does not start a valid
// UTF-8 sequence. Columns count runes, as the lexer does.
func checkUTF8(input string) error {
	line, col := 1, 1
	for i := 0; i < len(input); {
		r, size := utf8.DecodeRuneInString(input[i:])
		if r == utf8.RuneError && size == 1 {
			return errorAt(line, col, "invalid UTF-8 byte 0x%02x", input[i])
		}
		if r == '\n' {
			line, col = line+1, 1
		} else {
			col++
		}
		i += size
	}
	return nil
}

// Tokenize returns all tokens from the input, ending with EOF.
func Tokenize(input string) ([]Token, error) {
	return NewLexer(input).Tokenize()
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) ch() rune {
	return l.peek(0)
}

func (l *Lexer) peek(n int) rune {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) column() int {
	return l.pos - l.lineStart + 1
}

// advance consumes one rune, keeping line bookkeeping current.
func (l *Lexer) advance() {
	if l.ch() == '\n' {
		l.line++
		l.lineStart = l.pos + 1
	}
	l.pos++
}

func (l *Lexer) emit(tt TokenType, literal string, line, col int) {
	l.tokens = append(l.tokens, Token{Type: tt, Literal: literal, Line: line, Column: col})
}

func (l *Lexer) lastType() TokenType {
	if len(l.tokens) == 0 {
		return ILLEGAL
	}
	return l.tokens[len(l.tokens)-1].Type
}

// Tokenize scans the whole input.
func (l *Lexer) Tokenize() ([]Token, error) {
	if l.err != nil {
		return nil, l.err
	}
	for {
		if l.atLineStart {
			if err := l.scanIndentation(); err != nil {
				return nil, err
			}
		}
		l.skipSpaces()

		switch c := l.ch(); {
		case l.eof():
			if err := l.finish(); err != nil {
				return nil, err
			}
			return l.tokens, nil
		case c == '#':
			for !l.eof() && l.ch() != '\n' {
				l.pos++
			}
		case c == '\n':
			if l.parenDepth == 0 {
				if t := l.lastType(); t != NEWLINE && t != ILLEGAL {
					l.emit(NEWLINE, "", l.line, l.column())
				}
				l.atLineStart = true
			}
			l.advance()
		default:
			if err := l.scanToken(); err != nil {
				return nil, err
			}
		}
	}
}

// scanIndentation measures the indentation of the next non-blank line and
// emits INDENT or DEDENT tokens against the indentation stack.
func (l *Lexer) scanIndentation() error {
	for {
		col := 0
	measure:
		for {
			switch l.ch() {
			case ' ':
				col++
			case '\t':
				col = (col/tabSize + 1) * tabSize
			case '\f':
				col = 0
			default:
				break measure
			}
			l.pos++
		}
		if l.eof() {
			l.atLineStart = false
			return nil
		}
		if c := l.ch(); c == '#' || c == '\n' {
			for !l.eof() && l.ch() != '\n' {
				l.pos++
			}
			if l.eof() {
				l.atLineStart = false
				return nil
			}
			l.advance()
			continue
		}

		l.atLineStart = false
		top := l.indents[len(l.indents)-1]
		switch {
		case col > top:
			l.indents = append(l.indents, col)
			l.emit(INDENT, "", l.line, l.column())
		case col < top:
			for col < l.indents[len(l.indents)-1] {
				l.indents = l.indents[:len(l.indents)-1]
				l.emit(DEDENT, "", l.line, l.column())
			}
			if col != l.indents[len(l.indents)-1] {
				return errorAt(l.line, l.column(), "unindent does not match any outer indentation level")
			}
		}
		return nil
	}
}

// skipSpaces skips blanks and explicit backslash line joins.
func (l *Lexer) skipSpaces() {
	for {
		switch c := l.ch(); {
		case c == ' ' || c == '\t' || c == '\f':
			l.pos++
		case c == '\\' && l.peek(1) == '\n':
			l.advance()
			l.advance()
		default:
			return
		}
	}
}

// finish closes the token stream: a final NEWLINE, pending DEDENTs, EOF.
func (l *Lexer) finish() error {
	if l.parenDepth > 0 {
		return errorAt(l.line, l.column(), "unexpected end of file inside brackets")
	}
	if t := l.lastType(); t != NEWLINE && t != ILLEGAL && t != DEDENT {
		l.emit(NEWLINE, "", l.line, l.column())
	}
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.emit(DEDENT, "", l.line, l.column())
	}
	l.emit(EOF, "", l.line, l.column())
	return nil
}

func (l *Lexer) scanToken() error {
	line, col := l.line, l.column()
	c := l.ch()

	switch {
	case isIdentStart(c):
		ident := l.readIdentifier()
		if isStringPrefix(ident) && (l.ch() == '"' || l.ch() == '\'') {
			return l.scanString(ident, line, col)
		}
		// Identifiers are compared after NFKC normalization (PEP 3131).
		ident = norm.NFKC.String(ident)
		l.emit(LookupIdent(ident), ident, line, col)
		return nil
	case isDigit(c) || (c == '.' && isDigit(l.peek(1))):
		return l.scanNumber(line, col)
	case c == '"' || c == '\'':
		return l.scanString("", line, col)
	default:
		return l.scanOperator(line, col)
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for !l.eof() && isIdentContinue(l.ch()) {
		l.pos++
	}
	return string(l.input[start:l.pos])
}

func (l *Lexer) readDigits(valid func(rune) bool) {
	for !l.eof() && (valid(l.ch()) || l.ch() == '_') {
		l.pos++
	}
}

// scanNumber reads an integer, float or imaginary literal.
func (l *Lexer) scanNumber(line, col int) error {
	start := l.pos
	tt := INT

	if l.ch() == '0' && strings.ContainsRune("xXoObB", l.peek(1)) {
		l.pos += 2
		l.readDigits(isHexDigit)
	} else {
		l.readDigits(isDigit)
		if l.ch() == '.' {
			tt = FLOAT
			l.pos++
			l.readDigits(isDigit)
		}
		if c := l.ch(); c == 'e' || c == 'E' {
			next := l.peek(1)
			if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peek(2))) {
				tt = FLOAT
				l.pos += 2
				l.readDigits(isDigit)
			}
		}
		if c := l.ch(); c == 'j' || c == 'J' {
			tt = FLOAT
			l.pos++
		}
	}

	if isIdentStart(l.ch()) {
		return errorAt(line, col, "invalid decimal literal")
	}
	l.emit(tt, string(l.input[start:l.pos]), line, col)
	return nil
}

// scanString reads a string literal starting at the opening quote.
// prefix holds any r/u/b/f prefix letters already consumed.
func (l *Lexer) scanString(prefix string, line, col int) error {
	lower := strings.ToLower(prefix)
	raw := strings.Contains(lower, "r")
	kind := pyast.StrPlain
	switch {
	case strings.Contains(lower, "b"):
		kind = pyast.StrBytes
	case strings.Contains(lower, "f"):
		kind = pyast.StrFormat
	}

	start := l.pos - len([]rune(prefix))
	quote := l.ch()
	triple := l.peek(1) == quote && l.peek(2) == quote
	if triple {
		l.pos += 3
	} else {
		l.pos++
	}

	var sb strings.Builder
	for {
		if l.eof() {
			if triple {
				return errorAt(line, col, "unterminated triple-quoted string literal")
			}
			return errorAt(line, col, "unterminated string literal")
		}
		c := l.ch()
		if c == '\n' && !triple {
			return errorAt(line, col, "unterminated string literal")
		}
		if c == quote {
			if !triple {
				l.pos++
				break
			}
			if l.peek(1) == quote && l.peek(2) == quote {
				l.pos += 3
				break
			}
		}
		if c == '\\' {
			l.advance()
			if raw {
				// The backslash stays, but it still protects the next rune.
				sb.WriteRune('\\')
				if !l.eof() {
					sb.WriteRune(l.ch())
					l.advance()
				}
				continue
			}
			if err := l.readEscape(&sb, kind, line, col); err != nil {
				return err
			}
			continue
		}
		sb.WriteRune(c)
		l.advance()
	}

	l.tokens = append(l.tokens, Token{
		Type:    STRING,
		Literal: string(l.input[start:l.pos]),
		Value:   sb.String(),
		Kind:    kind,
		Line:    line,
		Column:  col,
	})
	return nil
}

var simpleEscapes = map[rune]rune{
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
}

// readEscape decodes the escape sequence following a backslash.
func (l *Lexer) readEscape(sb *strings.Builder, kind pyast.StrKind, line, col int) error {
	if l.eof() {
		return errorAt(line, col, "unterminated string literal")
	}
	c := l.ch()
	if r, ok := simpleEscapes[c]; ok {
		sb.WriteRune(r)
		l.advance()
		return nil
	}

	switch {
	case c == '\n':
		l.advance()
	case c >= '0' && c <= '7':
		v := 0
		for i := 0; i < 3 && l.ch() >= '0' && l.ch() <= '7'; i++ {
			v = v*8 + int(l.ch()-'0')
			l.pos++
		}
		sb.WriteRune(rune(v))
	case c == 'x':
		l.pos++
		r, ok := l.readHex(2)
		if !ok {
			return errorAt(line, col, `truncated \xXX escape`)
		}
		sb.WriteRune(r)
	case (c == 'u' || c == 'U') && kind != pyast.StrBytes:
		n := 4
		if c == 'U' {
			n = 8
		}
		l.pos++
		r, ok := l.readHex(n)
		if !ok || !utf8.ValidRune(r) {
			return errorAt(line, col, `invalid \u escape`)
		}
		sb.WriteRune(r)
	case c == 'N' && kind != pyast.StrBytes:
		return errorAt(line, col, `\N{...} escapes are not supported`)
	default:
		sb.WriteRune('\\')
		sb.WriteRune(c)
		l.advance()
	}
	return nil
}

func (l *Lexer) readHex(n int) (rune, bool) {
	if l.pos+n > len(l.input) {
		return 0, false
	}
	digits := string(l.input[l.pos : l.pos+n])
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, false
	}
	l.pos += n
	return rune(v), true
}

var operators = []struct {
	text string
	tt   TokenType
}{
	// Longest first.
	{"**=", AUGASSIGN}, {"//=", AUGASSIGN}, {">>=", AUGASSIGN}, {"<<=", AUGASSIGN},
	{"**", DSTAR}, {"//", DSLASH}, {"<<", LSHIFT}, {">>", RSHIFT},
	{"<=", LE}, {">=", GE}, {"==", EQ}, {"!=", NE}, {"->", ARROW}, {":=", WALRUS},
	{"+=", AUGASSIGN}, {"-=", AUGASSIGN}, {"*=", AUGASSIGN}, {"/=", AUGASSIGN},
	{"%=", AUGASSIGN}, {"&=", AUGASSIGN}, {"|=", AUGASSIGN}, {"^=", AUGASSIGN}, {"@=", AUGASSIGN},
	{"+", PLUS}, {"-", MINUS}, {"*", STAR}, {"/", SLASH}, {"%", PERCENT}, {"@", AT},
	{"~", TILDE}, {"&", AMP}, {"|", PIPE}, {"^", CARET}, {"<", LT}, {">", GT}, {"=", ASSIGN},
	{"(", LPAREN}, {")", RPAREN}, {"[", LBRACKET}, {"]", RBRACKET}, {"{", LBRACE}, {"}", RBRACE},
	{",", COMMA}, {":", COLON}, {";", SEMICOLON}, {".", DOT},
}

func (l *Lexer) scanOperator(line, col int) error {
	for _, op := range operators {
		if !l.hasPrefix(op.text) {
			continue
		}
		l.pos += len(op.text)
		switch op.tt {
		case LPAREN, LBRACKET, LBRACE:
			l.parenDepth++
		case RPAREN, RBRACKET, RBRACE:
			if l.parenDepth > 0 {
				l.parenDepth--
			}
		}
		l.emit(op.tt, op.text, line, col)
		return nil
	}

	if l.ch() == '\\' {
		return errorAt(line, col, "unexpected character after line continuation character")
	}
	return errorAt(line, col, "invalid character %q", l.ch())
}

func (l *Lexer) hasPrefix(s string) bool {
	i := l.pos
	for _, r := range s {
		if i >= len(l.input) || l.input[i] != r {
			return false
		}
		i++
	}
	return true
}

// Helper functions

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.Is(unicode.Nl, ch)
}

func isIdentContinue(ch rune) bool {
	return isIdentStart(ch) || unicode.IsDigit(ch) || unicode.In(ch, unicode.Mn, unicode.Mc, unicode.Pc)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}

func isStringPrefix(s string) bool {
	switch strings.ToLower(s) {
	case "r", "u", "b", "f", "br", "rb", "fr", "rf":
		return true
	}
	return false
}
