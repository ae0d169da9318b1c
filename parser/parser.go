// parser.go implements a recursive-descent parser over Ionia's token
// stream, producing the five-variant AST defined in package ast. Errors
// are accumulated at statement granularity: a bad statement is reported
// and skipped, and parsing resumes at the next token that looks like the
// start of a new statement.
package parser

import (
	"fmt"

	"github.com/MaxXSoft/Ionia/ast"
	"github.com/MaxXSoft/Ionia/token"
)

// Parser turns a flat token slice into a slice of top-level AST nodes.
type Parser struct {
	tokens   []token.Token
	position int
	errors   []error
}

// New creates a Parser over tokens. tokens must end with an EOF token.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse consumes the entire token stream and returns every top-level
// statement it could parse, along with every syntax error encountered.
func (p *Parser) Parse() ([]ast.Node, []error) {
	var nodes []ast.Node
	for !p.isAtEnd() {
		n, ok := p.parseStatement()
		if ok {
			nodes = append(nodes, n)
		} else {
			p.synchronize()
		}
	}
	return nodes, p.errors
}

func (p *Parser) cur() token.Token {
	return p.tokens[p.position]
}

func (p *Parser) peek() token.Token {
	if p.position+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.position+1]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if !p.isAtEnd() {
		p.position++
	}
	return t
}

func (p *Parser) check(tt token.TokenType) bool {
	return p.cur().TokenType == tt
}

func (p *Parser) isAtEnd() bool {
	return p.cur().TokenType == token.EOF
}

func (p *Parser) errorf(t token.Token, format string, args ...any) {
	p.errors = append(p.errors, CreateSyntaxError(t.Line, t.Column, fmt.Sprintf(format, args...)))
}

// expect consumes the current token if it has type tt, otherwise records
// an error naming what was expected and returns ok=false without
// advancing, so the caller can decide how to recover.
func (p *Parser) expect(tt token.TokenType, what string) (token.Token, bool) {
	if p.check(tt) {
		return p.advance(), true
	}
	p.errorf(p.cur(), "expected %s but got %q", what, p.cur().Lexeme)
	return token.Token{}, false
}

// synchronize skips tokens until one looks like the start of a fresh
// statement: an identifier immediately followed by '=' or '('.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.check(token.IDENTIFIER) {
			next := p.peek().TokenType
			if next == token.ASSIGN || next == token.LPA {
				return
			}
		}
		p.advance()
	}
}

// parseStatement parses `id '=' expr` or `id '(' argList? ')' chain*`.
func (p *Parser) parseStatement() (ast.Node, bool) {
	idTok, ok := p.expect(token.IDENTIFIER, "an identifier")
	if !ok {
		return nil, false
	}
	switch p.cur().TokenType {
	case token.ASSIGN:
		return p.parseDefine(idTok)
	case token.LPA:
		callee := &ast.Id{Name: idTok.Lexeme, Line: idTok.Line, Column: idTok.Column}
		return p.parseCallChain(callee, idTok)
	default:
		p.errorf(p.cur(), "invalid statement: expected '=' or '(' after %q", idTok.Lexeme)
		return nil, false
	}
}

// parseDefine parses the `'=' expr` tail of a define, given the already
// consumed identifier token.
func (p *Parser) parseDefine(idTok token.Token) (ast.Node, bool) {
	p.advance() // '='
	expr, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	return &ast.Define{Name: idTok.Lexeme, Expr: expr, Line: idTok.Line, Column: idTok.Column}, true
}

// parseExpr parses `'(' paramList? ')' ':' expr`, `id '(' argList? ')' chain*`,
// `id '=' expr`, a bare `id`, or a `number`.
func (p *Parser) parseExpr() (ast.Node, bool) {
	switch p.cur().TokenType {
	case token.LPA:
		return p.parseFunc()
	case token.NUMBER:
		t := p.advance()
		n, ok := t.Literal.(int32)
		if !ok {
			p.errorf(t, "invalid number literal %q", t.Lexeme)
			return nil, false
		}
		return &ast.Num{Value: n, Line: t.Line, Column: t.Column}, true
	case token.IDENTIFIER:
		idTok := p.advance()
		switch p.cur().TokenType {
		case token.LPA:
			callee := &ast.Id{Name: idTok.Lexeme, Line: idTok.Line, Column: idTok.Column}
			return p.parseCallChain(callee, idTok)
		case token.ASSIGN:
			return p.parseDefine(idTok)
		default:
			return &ast.Id{Name: idTok.Lexeme, Line: idTok.Line, Column: idTok.Column}, true
		}
	default:
		p.errorf(p.cur(), "invalid expression: unexpected %q", p.cur().Lexeme)
		return nil, false
	}
}

// parseFunc parses `'(' paramList? ')' ':' expr`, with the leading '('
// still unconsumed.
func (p *Parser) parseFunc() (ast.Node, bool) {
	open, ok := p.expect(token.LPA, "'('")
	if !ok {
		return nil, false
	}
	var params []string
	if !p.check(token.RPA) {
		for {
			idTok, ok := p.expect(token.IDENTIFIER, "a parameter name")
			if !ok {
				return nil, false
			}
			params = append(params, idTok.Lexeme)
			if !p.check(token.COMMA) {
				break
			}
			p.advance() // ','
		}
	}
	if _, ok := p.expect(token.RPA, "')'"); !ok {
		return nil, false
	}
	if _, ok := p.expect(token.COLON, "':'"); !ok {
		return nil, false
	}
	body, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	return &ast.Func{Params: params, Body: body, Line: open.Line, Column: open.Column}, true
}

// parseCallChain parses one or more `'(' argList? ')'` suffixes applied
// to callee, left-associatively: `f(x)(y)` becomes a FunCall whose
// Callee is itself the FunCall for `f(x)`.
func (p *Parser) parseCallChain(callee ast.Node, tok token.Token) (ast.Node, bool) {
	for p.check(token.LPA) {
		p.advance() // '('
		var args []ast.Node
		if !p.check(token.RPA) {
			for {
				arg, ok := p.parseExpr()
				if !ok {
					return nil, false
				}
				args = append(args, arg)
				if !p.check(token.COMMA) {
					break
				}
				p.advance() // ','
			}
		}
		if _, ok := p.expect(token.RPA, "')'"); !ok {
			return nil, false
		}
		callee = &ast.FunCall{Callee: callee, Args: args, Line: tok.Line, Column: tok.Column}
	}
	return callee, true
}
