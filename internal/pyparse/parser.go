// Package pyparse turns Python source text into a pyast.Module.
//
// The parser accepts the statement and expression grammar of Python 3
// minus the constructs pyrs never lowers (classes, exception handling,
// comprehensions, lambdas, async code). Those are reported as syntax
// errors so callers see one diagnostic for "cannot read this file".
package pyparse

import (
	"strings"

	"github.com/roach88/pyrs/internal/pyast"
)

// Parser holds the parser state
type Parser struct {
	tokens []Token
	pos    int
}

// bailout carries the first syntax error up to Parse.
type bailout struct {
	err *SyntaxError
}

// Parse parses a complete Python module.
func Parse(src string) (mod *pyast.Module, err error) {
	tokens, lexErr := Tokenize(src)
	if lexErr != nil {
		return nil, lexErr
	}

	p := &Parser{tokens: tokens}
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			mod, err = nil, b.err
		}
	}()
	return p.parseModule(), nil
}

// current returns the current token
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

// peek returns the next token without consuming
func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos+1]
}

// advance moves to the next token and returns the consumed token
func (p *Parser) advance() Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(tt TokenType) bool {
	return p.current().Type == tt
}

func (p *Parser) checkAny(types ...TokenType) bool {
	cur := p.current().Type
	for _, tt := range types {
		if cur == tt {
			return true
		}
	}
	return false
}

// match consumes the current token if it has type tt.
func (p *Parser) match(tt TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

// expect consumes the current token if it matches the expected type,
// otherwise aborts the parse.
func (p *Parser) expect(tt TokenType) Token {
	tok := p.current()
	if tok.Type != tt {
		p.fail(tok, "expected %s, got %s", tt, tok.Type)
	}
	return p.advance()
}

func (p *Parser) fail(tok Token, format string, args ...any) {
	panic(bailout{err: errorAt(tok.Line, tok.Column, format, args...)})
}

func (p *Parser) failAt(pos pyast.Pos, format string, args ...any) {
	panic(bailout{err: errorAt(pos.Line, pos.Column, format, args...)})
}

func (p *Parser) unsupported(tok Token, what string) {
	p.fail(tok, "%s are not supported", what)
}

// --- Statements ---

func (p *Parser) parseModule() *pyast.Module {
	mod := &pyast.Module{}
	for !p.check(EOF) {
		mod.Body = append(mod.Body, p.parseStatement()...)
	}
	return mod
}

func (p *Parser) parseStatement() []pyast.Stmt {
	tok := p.current()
	switch tok.Type {
	case IF:
		return []pyast.Stmt{p.parseIf()}
	case WHILE:
		return []pyast.Stmt{p.parseWhile()}
	case FOR:
		return []pyast.Stmt{p.parseFor()}
	case DEF:
		return []pyast.Stmt{p.parseFunctionDef()}
	case CLASS:
		p.unsupported(tok, "class definitions")
	case TRY:
		p.unsupported(tok, "try statements")
	case WITH:
		p.unsupported(tok, "with statements")
	case ASYNC:
		p.unsupported(tok, "async statements")
	case AT:
		p.unsupported(tok, "decorators")
	case INDENT:
		p.fail(tok, "unexpected indent")
	}
	return p.parseSimpleStatements()
}

// parseSimpleStatements parses "small (; small)* [;] NEWLINE".
func (p *Parser) parseSimpleStatements() []pyast.Stmt {
	stmts := []pyast.Stmt{p.parseSmallStatement()}
	for p.match(SEMICOLON) {
		if p.check(NEWLINE) {
			break
		}
		stmts = append(stmts, p.parseSmallStatement())
	}
	p.expect(NEWLINE)
	return stmts
}

func (p *Parser) atStatementEnd() bool {
	return p.checkAny(NEWLINE, SEMICOLON, EOF)
}

func (p *Parser) parseSmallStatement() pyast.Stmt {
	tok := p.current()
	pos := tok.Pos()

	switch tok.Type {
	case PASS:
		p.advance()
		return &pyast.Pass{Pos: pos}
	case BREAK:
		p.advance()
		return &pyast.Break{Pos: pos}
	case CONTINUE:
		p.advance()
		return &pyast.Continue{Pos: pos}
	case RETURN:
		p.advance()
		stmt := &pyast.Return{Pos: pos}
		if !p.atStatementEnd() {
			stmt.Value = p.parseTestList(true)
		}
		return stmt
	case RAISE:
		p.advance()
		stmt := &pyast.Raise{Pos: pos}
		if !p.atStatementEnd() {
			stmt.Exc = p.parseTest()
			if p.match(FROM) {
				p.parseTest()
			}
		}
		return stmt
	case ASSERT:
		p.advance()
		stmt := &pyast.Assert{Pos: pos, Test: p.parseTest()}
		if p.match(COMMA) {
			stmt.Msg = p.parseTest()
		}
		return stmt
	case DEL:
		p.advance()
		targets, _ := p.parseExprElements()
		for _, target := range targets {
			p.checkTarget(target, "delete")
		}
		return &pyast.Del{Pos: pos, Targets: targets}
	case GLOBAL:
		p.advance()
		return &pyast.Global{Pos: pos, Names: p.parseNameList()}
	case NONLOCAL:
		p.unsupported(tok, "nonlocal statements")
	case IMPORT:
		p.advance()
		return &pyast.Import{Pos: pos, Names: p.parseImportNames()}
	case FROM:
		p.unsupported(tok, "from-import statements")
	case YIELD:
		p.unsupported(tok, "yield expressions")
	}

	return p.parseExpressionStatement()
}

// parseExpressionStatement parses an expression statement, an assignment
// chain or an augmented assignment.
func (p *Parser) parseExpressionStatement() pyast.Stmt {
	pos := p.current().Pos()
	first := p.parseTestList(true)

	switch {
	case p.check(ASSIGN):
		exprs := []pyast.Expr{first}
		for p.match(ASSIGN) {
			exprs = append(exprs, p.parseTestList(true))
		}
		targets, value := exprs[:len(exprs)-1], exprs[len(exprs)-1]
		for _, target := range targets {
			p.checkTarget(target, "assign to")
		}
		return &pyast.Assign{Pos: pos, Targets: targets, Value: value}

	case p.check(AUGASSIGN):
		tok := p.advance()
		switch first.(type) {
		case *pyast.Name, *pyast.Attribute, *pyast.Subscript:
		default:
			p.failAt(first.Position(), "'%s' is an illegal expression for augmented assignment", pyast.Describe(first))
		}
		value := p.parseTestList(false)
		return &pyast.AugAssign{
			Pos:    pos,
			Target: first,
			Op:     strings.TrimSuffix(tok.Literal, "="),
			Value:  value,
		}

	case p.check(COLON):
		p.unsupported(p.current(), "annotated assignments")
	}

	return &pyast.ExprStmt{Pos: pos, Value: first}
}

// checkTarget rejects expressions that cannot appear on the left of an
// assignment or in a del statement.
func (p *Parser) checkTarget(e pyast.Expr, verb string) {
	switch e := e.(type) {
	case *pyast.Name, *pyast.Attribute, *pyast.Subscript:
	case *pyast.Tuple:
		for _, elt := range e.Elts {
			p.checkTarget(elt, verb)
		}
	case *pyast.List:
		for _, elt := range e.Elts {
			p.checkTarget(elt, verb)
		}
	case *pyast.Starred:
		p.checkTarget(e.Value, verb)
	default:
		p.failAt(e.Position(), "cannot %s %s", verb, pyast.Describe(e))
	}
}

func (p *Parser) parseNameList() []string {
	names := []string{p.expect(NAME).Literal}
	for p.match(COMMA) {
		names = append(names, p.expect(NAME).Literal)
	}
	return names
}

// parseImportNames parses "dotted [as name] (, dotted [as name])*".
// Aliases are accepted and dropped.
func (p *Parser) parseImportNames() []string {
	var names []string
	for {
		parts := []string{p.expect(NAME).Literal}
		for p.match(DOT) {
			parts = append(parts, p.expect(NAME).Literal)
		}
		if p.match(AS) {
			p.expect(NAME)
		}
		names = append(names, strings.Join(parts, "."))
		if !p.match(COMMA) {
			return names
		}
	}
}

// parseBlock parses ": NEWLINE INDENT stmt+ DEDENT" or a one-line suite.
func (p *Parser) parseBlock() []pyast.Stmt {
	p.expect(COLON)
	if !p.check(NEWLINE) {
		return p.parseSimpleStatements()
	}
	p.advance()
	if !p.check(INDENT) {
		p.fail(p.current(), "expected an indented block")
	}
	p.advance()

	var body []pyast.Stmt
	for !p.check(DEDENT) && !p.check(EOF) {
		body = append(body, p.parseStatement()...)
	}
	p.expect(DEDENT)
	return body
}

// parseIf parses an if statement; elif clauses become nested Ifs.
func (p *Parser) parseIf() pyast.Stmt {
	tok := p.advance() // if or elif
	stmt := &pyast.If{Pos: tok.Pos(), Test: p.parseTest()}
	stmt.Body = p.parseBlock()

	switch {
	case p.check(ELIF):
		stmt.Orelse = []pyast.Stmt{p.parseIf()}
	case p.match(ELSE):
		stmt.Orelse = p.parseBlock()
	}
	return stmt
}

func (p *Parser) parseWhile() pyast.Stmt {
	tok := p.expect(WHILE)
	stmt := &pyast.While{Pos: tok.Pos(), Test: p.parseTest()}
	stmt.Body = p.parseBlock()
	if p.match(ELSE) {
		stmt.Orelse = p.parseBlock()
	}
	return stmt
}

func (p *Parser) parseFor() pyast.Stmt {
	tok := p.expect(FOR)
	target := p.parseExprList()
	p.checkTarget(target, "assign to")
	p.expect(IN)

	stmt := &pyast.For{Pos: tok.Pos(), Target: target, Iter: p.parseTestList(false)}
	stmt.Body = p.parseBlock()
	if p.match(ELSE) {
		stmt.Orelse = p.parseBlock()
	}
	return stmt
}

// parseFunctionDef parses a def. Annotations and defaults are checked for
// syntax and dropped; star parameters keep their * or ** prefix.
func (p *Parser) parseFunctionDef() pyast.Stmt {
	tok := p.expect(DEF)
	stmt := &pyast.FunctionDef{Pos: tok.Pos(), Name: p.expect(NAME).Literal}

	p.expect(LPAREN)
	for !p.check(RPAREN) {
		switch {
		case p.match(SLASH):
			// positional-only marker
		case p.check(STAR) && (p.peek().Type == COMMA || p.peek().Type == RPAREN):
			// keyword-only marker
			p.advance()
		default:
			prefix := ""
			if p.match(STAR) {
				prefix = "*"
			} else if p.match(DSTAR) {
				prefix = "**"
			}
			name := p.expect(NAME).Literal
			if p.match(COLON) {
				p.parseTest()
			}
			if p.match(ASSIGN) {
				p.parseTest()
			}
			stmt.Params = append(stmt.Params, prefix+name)
		}
		if !p.match(COMMA) {
			break
		}
	}
	p.expect(RPAREN)
	if p.match(ARROW) {
		p.parseTest()
	}

	stmt.Body = p.parseBlock()
	return stmt
}

// --- Expressions ---

func startsExpression(tt TokenType) bool {
	switch tt {
	case NAME, INT, FLOAT, STRING, TRUE, FALSE, NONE,
		LPAREN, LBRACKET, LBRACE, MINUS, PLUS, TILDE, NOT, STAR, LAMBDA, AWAIT:
		return true
	}
	return false
}

// parseTestList parses "test (, test)* [,]", producing a Tuple when a
// comma is present. With star set, *expr elements are allowed.
func (p *Parser) parseTestList(star bool) pyast.Expr {
	element := p.parseTest
	if star {
		element = p.parseTestOrStar
	}

	first := element()
	if !p.check(COMMA) {
		return first
	}
	tuple := &pyast.Tuple{Pos: first.Position(), Elts: []pyast.Expr{first}}
	for p.match(COMMA) {
		if !startsExpression(p.current().Type) {
			break
		}
		tuple.Elts = append(tuple.Elts, element())
	}
	return tuple
}

// parseExprList parses loop targets, which stop short of comparisons so
// "for x in xs" leaves "in" unconsumed.
func (p *Parser) parseExprList() pyast.Expr {
	elts, comma := p.parseExprElements()
	if !comma {
		return elts[0]
	}
	return &pyast.Tuple{Pos: elts[0].Position(), Elts: elts}
}

// parseExprElements parses "expr (, expr)* [,]" and reports whether a
// comma was seen.
func (p *Parser) parseExprElements() ([]pyast.Expr, bool) {
	element := func() pyast.Expr {
		if tok := p.current(); tok.Type == STAR {
			p.advance()
			return &pyast.Starred{Pos: tok.Pos(), Value: p.parseBitOr()}
		}
		return p.parseBitOr()
	}

	elts := []pyast.Expr{element()}
	comma := false
	for p.match(COMMA) {
		comma = true
		if !startsExpression(p.current().Type) {
			break
		}
		elts = append(elts, element())
	}
	return elts, comma
}

func (p *Parser) parseTestOrStar() pyast.Expr {
	if tok := p.current(); tok.Type == STAR {
		p.advance()
		return &pyast.Starred{Pos: tok.Pos(), Value: p.parseBitOr()}
	}
	return p.parseTest()
}

// parseTest parses a full expression including conditional expressions.
func (p *Parser) parseTest() pyast.Expr {
	switch tok := p.current(); tok.Type {
	case LAMBDA:
		p.unsupported(tok, "lambda expressions")
	case YIELD:
		p.unsupported(tok, "yield expressions")
	}

	body := p.parseOrTest()
	if p.check(WALRUS) {
		p.unsupported(p.current(), "assignment expressions")
	}
	if !p.match(IF) {
		return body
	}
	test := p.parseOrTest()
	p.expect(ELSE)
	return &pyast.IfExp{Pos: body.Position(), Test: test, Body: body, Orelse: p.parseTest()}
}

func (p *Parser) parseOrTest() pyast.Expr {
	return p.parseBoolOp(OR, "or", p.parseAndTest)
}

func (p *Parser) parseAndTest() pyast.Expr {
	return p.parseBoolOp(AND, "and", p.parseNotTest)
}

func (p *Parser) parseBoolOp(tt TokenType, op string, next func() pyast.Expr) pyast.Expr {
	first := next()
	if !p.check(tt) {
		return first
	}
	expr := &pyast.BoolOp{Pos: first.Position(), Op: op, Values: []pyast.Expr{first}}
	for p.match(tt) {
		expr.Values = append(expr.Values, next())
	}
	return expr
}

func (p *Parser) parseNotTest() pyast.Expr {
	if tok := p.current(); tok.Type == NOT {
		p.advance()
		return &pyast.UnaryOp{Pos: tok.Pos(), Op: "not", Operand: p.parseNotTest()}
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() pyast.Expr {
	left := p.parseBitOr()
	var cmp *pyast.Compare
	for {
		var op string
		switch tok := p.current(); tok.Type {
		case LT, GT, EQ, GE, LE, NE:
			op = tok.Literal
		case IN:
			op = "in"
		case NOT:
			if p.peek().Type != IN {
				return finishCompare(left, cmp)
			}
			p.advance()
			op = "not in"
		case IS:
			op = "is"
			if p.peek().Type == NOT {
				p.advance()
				op = "is not"
			}
		default:
			return finishCompare(left, cmp)
		}
		p.advance()

		if cmp == nil {
			cmp = &pyast.Compare{Pos: left.Position(), Left: left}
		}
		cmp.Ops = append(cmp.Ops, op)
		cmp.Comparators = append(cmp.Comparators, p.parseBitOr())
	}
}

func finishCompare(left pyast.Expr, cmp *pyast.Compare) pyast.Expr {
	if cmp == nil {
		return left
	}
	return cmp
}

func (p *Parser) parseBitOr() pyast.Expr {
	return p.parseBinary(p.parseBitXor, PIPE)
}

func (p *Parser) parseBitXor() pyast.Expr {
	return p.parseBinary(p.parseBitAnd, CARET)
}

func (p *Parser) parseBitAnd() pyast.Expr {
	return p.parseBinary(p.parseShift, AMP)
}

func (p *Parser) parseShift() pyast.Expr {
	return p.parseBinary(p.parseArith, LSHIFT, RSHIFT)
}

func (p *Parser) parseArith() pyast.Expr {
	return p.parseBinary(p.parseTerm, PLUS, MINUS)
}

func (p *Parser) parseTerm() pyast.Expr {
	return p.parseBinary(p.parseFactor, STAR, SLASH, DSLASH, PERCENT, AT)
}

// parseBinary parses a left-associative chain of the given operators.
func (p *Parser) parseBinary(next func() pyast.Expr, ops ...TokenType) pyast.Expr {
	left := next()
	for p.checkAny(ops...) {
		op := p.advance()
		right := next()
		left = &pyast.BinOp{Pos: left.Position(), Op: op.Literal, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseFactor() pyast.Expr {
	if tok := p.current(); p.checkAny(PLUS, MINUS, TILDE) {
		p.advance()
		return &pyast.UnaryOp{Pos: tok.Pos(), Op: tok.Literal, Operand: p.parseFactor()}
	}
	return p.parsePower()
}

// parsePower parses "atom trailers [** factor]"; ** is right-associative
// and binds tighter than a unary operator on its left.
func (p *Parser) parsePower() pyast.Expr {
	base := p.parseAtomExpr()
	if p.match(DSTAR) {
		return &pyast.BinOp{Pos: base.Position(), Op: "**", Left: base, Right: p.parseFactor()}
	}
	return base
}

func (p *Parser) parseAtomExpr() pyast.Expr {
	if tok := p.current(); tok.Type == AWAIT {
		p.unsupported(tok, "await expressions")
	}

	expr := p.parseAtom()
	for {
		switch p.current().Type {
		case LPAREN:
			expr = p.parseCall(expr)
		case LBRACKET:
			p.advance()
			index := p.parseSubscriptIndex()
			p.expect(RBRACKET)
			expr = &pyast.Subscript{Pos: expr.Position(), Value: expr, Index: index}
		case DOT:
			p.advance()
			attr := p.expect(NAME)
			expr = &pyast.Attribute{Pos: expr.Position(), Value: expr, Attr: attr.Literal}
		default:
			return expr
		}
	}
}

func (p *Parser) parseSubscriptIndex() pyast.Expr {
	if p.check(COLON) {
		p.unsupported(p.current(), "slices")
	}
	index := p.parseTestList(false)
	if p.check(COLON) {
		p.unsupported(p.current(), "slices")
	}
	return index
}

// parseCall parses an argument list following fn.
func (p *Parser) parseCall(fn pyast.Expr) pyast.Expr {
	p.expect(LPAREN)
	call := &pyast.Call{Pos: fn.Position(), Func: fn}

	sawKeyword := false
	for !p.check(RPAREN) {
		tok := p.current()
		switch {
		case tok.Type == STAR:
			p.advance()
			call.Args = append(call.Args, &pyast.Starred{Pos: tok.Pos(), Value: p.parseTest()})
		case tok.Type == DSTAR:
			p.advance()
			call.Keywords = append(call.Keywords, &pyast.Keyword{Pos: tok.Pos(), Value: p.parseTest()})
			sawKeyword = true
		case tok.Type == NAME && p.peek().Type == ASSIGN:
			p.advance()
			p.advance()
			call.Keywords = append(call.Keywords, &pyast.Keyword{Pos: tok.Pos(), Arg: tok.Literal, Value: p.parseTest()})
			sawKeyword = true
		default:
			if sawKeyword {
				p.fail(tok, "positional argument follows keyword argument")
			}
			arg := p.parseTest()
			if p.check(FOR) {
				p.unsupported(p.current(), "generator expressions")
			}
			call.Args = append(call.Args, arg)
		}
		if !p.match(COMMA) {
			break
		}
	}
	p.expect(RPAREN)
	return call
}

func (p *Parser) parseAtom() pyast.Expr {
	tok := p.current()
	pos := tok.Pos()

	switch tok.Type {
	case NAME:
		p.advance()
		return &pyast.Name{Pos: pos, Id: tok.Literal}
	case INT:
		p.advance()
		return &pyast.Int{Pos: pos, Literal: tok.Literal}
	case FLOAT:
		p.advance()
		return &pyast.Float{Pos: pos, Literal: tok.Literal}
	case STRING:
		return p.parseStrings()
	case TRUE, FALSE:
		p.advance()
		return &pyast.Bool{Pos: pos, Value: tok.Type == TRUE}
	case NONE:
		p.advance()
		return &pyast.NoneLit{Pos: pos}
	case LPAREN:
		return p.parseParen()
	case LBRACKET:
		p.advance()
		list := &pyast.List{Pos: pos, Elts: p.parseDisplayElements(RBRACKET)}
		p.expect(RBRACKET)
		return list
	case LBRACE:
		return p.parseBrace()
	}

	p.fail(tok, "expected expression, got %s", tok.Type)
	return nil
}

// parseStrings concatenates adjacent string literals into one Str.
func (p *Parser) parseStrings() pyast.Expr {
	first := p.current()
	str := &pyast.Str{Pos: first.Pos(), Kind: first.Kind}

	var sb strings.Builder
	for p.check(STRING) {
		tok := p.advance()
		if (tok.Kind == pyast.StrBytes) != (first.Kind == pyast.StrBytes) {
			p.fail(tok, "cannot mix bytes and nonbytes literals")
		}
		if tok.Kind == pyast.StrFormat {
			str.Kind = pyast.StrFormat
		}
		sb.WriteString(tok.Value)
	}
	str.Value = sb.String()
	return str
}

// parseParen parses "()" , "(expr)" or a parenthesized tuple.
func (p *Parser) parseParen() pyast.Expr {
	open := p.expect(LPAREN)
	if p.match(RPAREN) {
		return &pyast.Tuple{Pos: open.Pos()}
	}

	first := p.parseTestOrStar()
	if p.check(FOR) {
		p.unsupported(p.current(), "generator expressions")
	}
	if !p.check(COMMA) {
		p.expect(RPAREN)
		return first
	}

	tuple := &pyast.Tuple{Pos: open.Pos(), Elts: []pyast.Expr{first}}
	for p.match(COMMA) && !p.check(RPAREN) {
		tuple.Elts = append(tuple.Elts, p.parseTestOrStar())
	}
	p.expect(RPAREN)
	return tuple
}

// parseDisplayElements parses the comma separated elements of a list or
// set display up to, but not including, the closing token.
func (p *Parser) parseDisplayElements(closing TokenType) []pyast.Expr {
	var elts []pyast.Expr
	for !p.check(closing) {
		elts = append(elts, p.parseTestOrStar())
		if p.check(FOR) {
			p.unsupported(p.current(), "comprehensions")
		}
		if !p.match(COMMA) {
			break
		}
	}
	return elts
}

// parseBrace parses a dict or set display.
func (p *Parser) parseBrace() pyast.Expr {
	open := p.expect(LBRACE)
	pos := open.Pos()
	if p.match(RBRACE) {
		return &pyast.Dict{Pos: pos}
	}
	if p.check(DSTAR) {
		p.unsupported(p.current(), "dict unpacking displays")
	}

	first := p.parseTestOrStar()
	if !p.check(COLON) {
		if p.check(FOR) {
			p.unsupported(p.current(), "comprehensions")
		}
		set := &pyast.Set{Pos: pos, Elts: []pyast.Expr{first}}
		if p.match(COMMA) {
			set.Elts = append(set.Elts, p.parseDisplayElements(RBRACE)...)
		}
		p.expect(RBRACE)
		return set
	}

	dict := &pyast.Dict{Pos: pos}
	key := first
	for {
		p.expect(COLON)
		dict.Keys = append(dict.Keys, key)
		dict.Values = append(dict.Values, p.parseTest())
		if p.check(FOR) {
			p.unsupported(p.current(), "comprehensions")
		}
		if !p.match(COMMA) || p.check(RBRACE) {
			break
		}
		key = p.parseTest()
	}
	p.expect(RBRACE)
	return dict
}
