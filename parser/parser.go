// Package parser builds an ast.Program from a token stream by Pratt parsing,
// in the spirit of Thorsten Ball's "Writing an Interpreter in Go": a table of
// prefix and infix parse functions keyed by token type, dispatched by
// operator precedence.
package parser

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/DragonGamesStudios/Geo-AID/ast"
	"github.com/DragonGamesStudios/Geo-AID/err"
	"github.com/DragonGamesStudios/Geo-AID/token"
)

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	tokens   []token.Token
	pos      int
	cur      token.Token
	peek     token.Token
	Errors   err.Errors
	iterSeq  int // last iterator id handed to a parenthesized comma list; 0 stays with a let's bare list

	prefixFns map[token.Type]prefixParseFn
	infixFns  map[token.Type]infixParseFn
}

func New(tokens []token.Token) *Parser {
	p := &Parser{tokens: tokens}
	p.prefixFns = map[token.Type]prefixParseFn{
		token.NUMBER:   p.parseNumber,
		token.STRING:   p.parseString,
		token.IDENT:    p.parseIdentOrCall,
		token.POINT:    p.parsePointRun,
		token.LPAREN:   p.parseGroup,
		token.MINUS:    p.parsePrefix,
		token.BANG:     p.parseNot,
	}
	p.infixFns = map[token.Type]infixParseFn{
		token.PLUS:   p.parseBinary,
		token.MINUS:  p.parseBinary,
		token.STAR:   p.parseBinary,
		token.SLASH:  p.parseBinary,
		token.CARET:  p.parseBinary,
		token.ASSIGN: p.parseRuleOp,
		token.LT:     p.parseRuleOp,
		token.LE:     p.parseRuleOp,
		token.GT:     p.parseRuleOp,
		token.GE:     p.parseRuleOp,
		token.LIESON: p.parseRuleOp,
	}
	p.pos = -1
	p.advance()
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.pos++
	if p.pos < len(p.tokens) {
		p.peek = p.tokens[p.pos]
	} else {
		p.peek = token.Token{Type: token.EOF}
	}
}

func (p *Parser) expect(t token.Type, id string) bool {
	if p.cur.Type == t {
		return true
	}
	p.Errors = append(p.Errors, err.New(id, p.cur, string(t)))
	return false
}

// ParseProgram consumes the whole token stream, collecting every statement
// it can and every error it finds, rather than bailing at the first one.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for p.cur.Type != token.EOF {
		if p.cur.Type == token.SEMICOLON || p.cur.Type == token.NEWLINE {
			p.advance()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		p.skipToStatementEnd()
	}
	return prog
}

func (p *Parser) skipToStatementEnd() {
	for p.cur.Type != token.SEMICOLON && p.cur.Type != token.EOF && p.cur.Type != token.NEWLINE {
		p.advance()
	}
	if p.cur.Type == token.SEMICOLON || p.cur.Type == token.NEWLINE {
		p.advance()
	}
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case token.LET:
		return p.parseLetStatement()
	case token.QUESTION:
		return p.parseQueryStatement()
	default:
		tok := p.cur
		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil
		}
		return &ast.RuleStatement{Token: tok, Rule: expr}
	}
}

func (p *Parser) parseLetStatement() ast.Statement {
	tok := p.cur
	p.advance() // consume 'let'

	var names []*ast.Ident
	for {
		// A bound name is either an ordinary identifier (a line, scalar,
		// circle, ...) or a single point letter, since the lexer already
		// tokenizes a capitalized letter as its own token.POINT.
		if p.cur.Type != token.IDENT && p.cur.Type != token.POINT {
			p.Errors = append(p.Errors, err.New("parse/let/names", p.cur))
			return nil
		}
		names = append(names, &ast.Ident{Token: p.cur, Name: p.cur.Literal})
		p.advance()
		if p.cur.Type != token.COMMA {
			break
		}
		p.advance()
	}

	if !p.expect(token.ASSIGN, "parse/let/assign") {
		return nil
	}
	p.advance()

	rhs := p.parseExpression(LOWEST)
	if p.cur.Type == token.COMMA {
		// A bare, unparenthesized comma list directly on the rhs of 'let' is
		// the default id-0 iterator, e.g. `let A, B = X, Y;`.
		branches := []ast.Expression{rhs}
		for p.cur.Type == token.COMMA {
			p.advance()
			branches = append(branches, p.parseExpression(LOWEST))
		}
		rhs = &ast.IteratorExpression{Token: tok, Id: 0, Branches: branches}
	}

	stmt := &ast.LetStatement{Token: tok, Names: names, Value: rhs}

	// Optional trailing rule chain: further rule expressions applied to the
	// freshly bound names, terminated by ';' or newline or EOF.
	for p.cur.Type != token.SEMICOLON && p.cur.Type != token.NEWLINE && p.cur.Type != token.EOF {
		rule := p.parseExpression(LOWEST)
		if rule == nil {
			break
		}
		stmt.Rules = append(stmt.Rules, rule)
	}
	return stmt
}

func (p *Parser) parseQueryStatement() ast.Statement {
	tok := p.cur
	p.advance() // consume '?'
	var targets []ast.Expression
	for {
		targets = append(targets, p.parseExpression(RULEOP+1))
		if p.cur.Type != token.COMMA {
			break
		}
		p.advance()
	}
	return &ast.QueryStatement{Token: tok, Targets: targets}
}

// parseExpression is the Pratt core. Top-level comma sequences (iterators)
// are handled by callers that know whether a comma here means "iterate" or
// "next list element"; parseExpression itself stops before a bare comma.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixFns[p.cur.Type]
	if prefix == nil {
		p.Errors = append(p.Errors, err.New("parse/noprefix", p.cur))
		return nil
	}
	left := prefix()

	for precedenceOf(p.cur.Type) > precedence && p.infixFns[p.cur.Type] != nil {
		infix := p.infixFns[p.cur.Type]
		left = infix(left)
	}
	return left
}

// parseNumber decodes the digit run of a NUMBER token. A naive
// successive-multiply-and-add scan across the decimal point accumulates
// float error digit by digit; decimal.NewFromString instead keeps the
// integer and fractional parts as exact digit strings and only converts to
// a float64 once, at the end, which is the decode this grammar requires.
func (p *Parser) parseNumber() ast.Expression {
	tok := p.cur
	lit := tok.Literal
	i := 0
	for i < len(lit) && (lit[i] >= '0' && lit[i] <= '9' || lit[i] == '.') {
		i++
	}
	numPart := lit[:i]
	unit := lit[i:]
	value := 0.0
	if d, decErr := decimal.NewFromString(numPart); decErr == nil {
		value, _ = d.Float64()
	}
	switch strings.ToLower(unit) {
	case "", "cm", "deg", "rad":
		// recognized; the unroller converts to a dimensioned Scalar.
	default:
		p.Errors = append(p.Errors, err.New("lex/unit/unknown", tok, unit))
	}
	p.advance()
	return &ast.NumberLiteral{Token: tok, Value: value, Unit: strings.ToLower(unit)}
}

func (p *Parser) parseString() ast.Expression {
	tok := p.cur
	p.advance()
	return &ast.StringLiteral{Token: tok, Value: tok.Literal}
}

func (p *Parser) parseIdentOrCall() ast.Expression {
	tok := p.cur
	name := tok.Literal
	p.advance()
	if p.cur.Type != token.LPAREN {
		return &ast.Ident{Token: tok, Name: name}
	}
	p.advance() // consume '('
	call := &ast.CallExpression{Token: tok, Raw: name}
	if p.cur.Type != token.RPAREN {
		call.Args = append(call.Args, p.parseIteratorBranch())
		for p.cur.Type == token.COMMA {
			p.advance()
			call.Args = append(call.Args, p.parseIteratorBranch())
		}
	}
	if !p.expect(token.RPAREN, "parse/unclosed") {
		return call
	}
	p.advance() // consume ')'
	if p.cur.Type == token.LBRACKET {
		call.Props = p.parsePropertyBlock()
	}
	return call
}

// parseIteratorBranch parses one comma-joined argument position. A
// parenthesized comma list such as (l1, l2, l3) passed as a single argument
// is itself an iterator over an argument slot; each top-level call argument
// is otherwise just an ordinary expression.
func (p *Parser) parseIteratorBranch() ast.Expression {
	return p.parseExpression(LOWEST)
}

func (p *Parser) parseGroup() ast.Expression {
	tok := p.cur
	p.advance() // consume '('
	first := p.parseExpression(LOWEST)
	if p.cur.Type != token.COMMA {
		if !p.expect(token.RPAREN, "parse/unclosed") {
			return first
		}
		p.advance()
		return first
	}
	branches := []ast.Expression{first}
	for p.cur.Type == token.COMMA {
		p.advance()
		branches = append(branches, p.parseExpression(LOWEST))
	}
	p.expect(token.RPAREN, "parse/unclosed")
	if p.cur.Type == token.RPAREN {
		p.advance()
	}
	// A parenthesized comma list is a nested iterator distinct from the
	// default id-0 list a bare comma produces on the right of a let;
	// each occurrence gets a fresh id so that nested iterators combine as a
	// Cartesian product rather than colliding with id 0.
	p.iterSeq++
	return &ast.IteratorExpression{Token: tok, Id: p.iterSeq, Branches: branches}
}

func (p *Parser) parsePointRun() ast.Expression {
	tok := p.cur
	var points []*ast.PointLiteral
	for p.cur.Type == token.POINT {
		points = append(points, &ast.PointLiteral{Token: p.cur, Name: p.cur.Literal})
		p.advance()
	}
	if len(points) == 1 {
		return points[0]
	}
	return &ast.PointCollection{Token: tok, Points: points}
}

func (p *Parser) parsePrefix() ast.Expression {
	tok := p.cur
	p.advance()
	operand := p.parseExpression(PREFIX)
	return &ast.BinaryExpression{Token: tok, Operator: "-", Left: &ast.NumberLiteral{Token: tok, Value: 0}, Right: operand}
}

func (p *Parser) parseNot() ast.Expression {
	tok := p.cur
	p.advance()
	rule := p.parseExpression(NOT)
	return &ast.NotExpression{Token: tok, Rule: rule}
}

func (p *Parser) parseBinary(left ast.Expression) ast.Expression {
	tok := p.cur
	prec := precedenceOf(p.cur.Type)
	op := string(p.cur.Type)
	p.advance()
	right := p.parseExpression(prec)
	return &ast.BinaryExpression{Token: tok, Operator: op, Left: left, Right: right}
}

// parseRuleOp parses a rule operator, folding chained comparisons
// (a < b < c) into a ChainExpression per the language's chaining sugar.
func (p *Parser) parseRuleOp(left ast.Expression) ast.Expression {
	tok := p.cur
	op := ruleOpLiteral(p.cur.Type)
	prec := precedenceOf(p.cur.Type)
	p.advance()
	right := p.parseExpression(prec)

	if next := precedenceOf(p.cur.Type); next == RULEOP {
		// a < b < c: keep chaining into one ChainExpression.
		chain := &ast.ChainExpression{Token: tok, Operators: []string{op}, Operands: []ast.Expression{left, right}}
		for precedenceOf(p.cur.Type) == RULEOP {
			opTok := p.cur
			nextOp := ruleOpLiteral(p.cur.Type)
			p.advance()
			operand := p.parseExpression(precedenceOf(opTok.Type))
			chain.Operators = append(chain.Operators, nextOp)
			chain.Operands = append(chain.Operands, operand)
		}
		return chain
	}
	return &ast.BinaryExpression{Token: tok, Operator: op, Left: left, Right: right}
}

func ruleOpLiteral(t token.Type) string {
	switch t {
	case token.ASSIGN:
		return "="
	case token.LIESON:
		return "lies_on"
	default:
		return string(t)
	}
}

func (p *Parser) parsePropertyBlock() *ast.PropertyBlock {
	tok := p.cur
	p.advance() // consume '['
	block := &ast.PropertyBlock{Token: tok}
	for p.cur.Type != token.RBRACKET && p.cur.Type != token.EOF {
		if p.cur.Type != token.IDENT {
			p.Errors = append(p.Errors, err.New("parse/property/key", p.cur))
			break
		}
		keyTok := p.cur
		key := p.cur.Literal
		p.advance()
		if !p.expect(token.ASSIGN, "parse/expected") {
			break
		}
		p.advance()
		val := p.parseExpression(LOWEST)
		block.Pairs = append(block.Pairs, ast.PropertyPair{Key: key, KeyToken: keyTok, Value: val})
		if p.cur.Type == token.COMMA {
			p.advance()
		}
	}
	if p.cur.Type == token.RBRACKET {
		p.advance()
	}
	return block
}
