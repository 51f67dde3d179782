package compiler

import (
	"fmt"

	"tauc/pkg/diag"
)

// SyntaxError is the failure value of a parse. By the time it is returned
// the matching diagnostic has already gone to the sink.
type SyntaxError struct {
	Loc      diag.Location
	Found    string
	Expected string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: unexpected `%s`, was expecting %s", e.Loc, e.Found, e.Expected)
}

// Parser is a recursive-descent parser over one buffer. It owns the single
// lookahead token; every grammar rule starts at p.tok.
//
// Rules return (Node, error):
//
//	(node, nil)  matched
//	(nil, nil)   the leading token is not this rule's; nothing consumed
//	(nil, err)   committed and failed; diagnostic logged, partial tree freed
type Parser struct {
	lx   *Lexer
	tok  Token
	sink diag.Sink
}

// NewParser primes a parser with the first token of src. A nil sink falls
// back to diag.Default().
func NewParser(name string, src []byte, sink diag.Sink) *Parser {
	if sink == nil {
		sink = diag.Default()
	}
	p := &Parser{lx: NewLexer(name, src, sink), sink: sink}
	p.tok = p.advance(p.lx.Start())
	return p
}

// Parse parses a whole buffer into a compilation unit. On failure it returns
// nil and the first error, with the diagnostic already emitted.
func Parse(name string, src []byte, sink diag.Sink) (*CompilationUnit, error) {
	return NewParser(name, src, sink).ParseCompilationUnit()
}

// ParseCompilationUnit parses the remainder of the buffer as a compilation
// unit. The caller owns the returned tree and releases it with Free.
func (p *Parser) ParseCompilationUnit() (*CompilationUnit, error) {
	unit, err := p.parseCompilationUnit()
	if err != nil {
		return nil, err
	}
	return unit, nil
}

// ParseExpr parses a single expression starting at the lookahead. A buffer
// that does not start with an expression is a syntax error.
func (p *Parser) ParseExpr() (Node, error) {
	return p.required(p.parseExpr, "<expression>")
}

// advance returns the token after prev. A NONE token from a lexical error
// is kept as the lookahead; no rule matches it.
func (p *Parser) advance(prev Token) Token {
	return p.lx.Next(prev)
}

func (p *Parser) peek() Token { return p.tok }

// consume returns the lookahead and moves past it.
func (p *Parser) consume() Token {
	tok := p.tok
	p.tok = p.advance(tok)
	return tok
}

func (p *Parser) match(kind TokenKind) bool   { return p.tok.Kind == kind }
func (p *Parser) matchPunct(pu Punct) bool    { return p.tok.IsPunct(pu) }
func (p *Parser) matchKeyword(k Keyword) bool { return p.tok.IsKeyword(k) }

func (p *Parser) accept(kind TokenKind) (Token, bool) {
	if !p.match(kind) {
		return Token{}, false
	}
	return p.consume(), true
}

func (p *Parser) acceptPunct(pu Punct) (Token, bool) {
	if !p.matchPunct(pu) {
		return Token{}, false
	}
	return p.consume(), true
}

func (p *Parser) acceptKeyword(k Keyword) (Token, bool) {
	if !p.matchKeyword(k) {
		return Token{}, false
	}
	return p.consume(), true
}

func (p *Parser) skipEOL() {
	for p.match(EOL) {
		p.consume()
	}
}

// fail logs a syntax error at the lookahead and returns it.
func (p *Parser) fail(expected string) error {
	tok := p.peek()
	p.sink.Log(diag.Error, tok.Loc, "unexpected `%s`, was expecting %s", tok.Describe(), expected)
	return &SyntaxError{Loc: tok.Loc, Found: tok.Describe(), Expected: expected}
}

// required runs rule and turns a soft non-match into a hard failure.
func (p *Parser) required(rule func() (Node, error), expected string) (Node, error) {
	n, err := rule()
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, p.fail(expected)
	}
	return n, nil
}
