package compiler

import "tauc/pkg/stack"

//  Expressions, loosest binding first

// binaryOp maps an operator token (punctuation or keyword) to its node kind.
type binaryOp struct {
	punct   Punct
	keyword Keyword
	kind    NodeKind
}

var (
	castOps   = []binaryOp{{keyword: KW_AS, kind: CAST_EXPR}}
	logOrOps  = []binaryOp{{punct: D_PIPE, kind: LOG_OR_EXPR}}
	logAndOps = []binaryOp{{punct: D_AMP, kind: LOG_AND_EXPR}}
	relOps    = []binaryOp{{punct: D_EQ, kind: EQ_EXPR}, {punct: BANG_EQ, kind: NE_EXPR}}
	cmpOps    = []binaryOp{
		{punct: LT, kind: LT_EXPR}, {punct: LT_EQ, kind: LE_EXPR},
		{punct: GT, kind: GT_EXPR}, {punct: GT_EQ, kind: GE_EXPR},
	}
	bitOrOps  = []binaryOp{{punct: PIPE, kind: BIT_OR_EXPR}, {punct: CARET, kind: BIT_XOR_EXPR}}
	bitAndOps = []binaryOp{{punct: AMP, kind: BIT_AND_EXPR}}
	shiftOps  = []binaryOp{{punct: SHR, kind: RSH_EXPR}, {punct: SHL, kind: LSH_EXPR}}
	termOps   = []binaryOp{{punct: PLUS, kind: ADD_EXPR}, {punct: HYPHEN, kind: SUB_EXPR}}
	factorOps = []binaryOp{{punct: AST, kind: MUL_EXPR}, {punct: SLASH, kind: DIV_EXPR}, {punct: PCT, kind: REM_EXPR}}
	proofOps  = []binaryOp{{punct: COLON, kind: PROOF_EXPR}}
	valueOps  = []binaryOp{{punct: DOT, kind: VALUE_LOOKUP_EXPR}}
	staticOps = []binaryOp{{punct: D_COLON, kind: STATIC_LOOKUP_EXPR}}

	refOps   = []binaryOp{{punct: AMP, kind: U_REF_EXPR}}
	unaryOps = []binaryOp{
		{punct: PLUS, kind: U_POS_EXPR}, {punct: HYPHEN, kind: U_NEG_EXPR},
		{punct: BANG, kind: U_LOG_NOT_EXPR}, {punct: TILDE, kind: U_BIT_NOT_EXPR},
	}
)

func (p *Parser) matchOp(ops []binaryOp) (binaryOp, bool) {
	for _, op := range ops {
		if op.keyword != KW_NONE && p.matchKeyword(op.keyword) {
			return op, true
		}
		if op.punct != PUNCT_NONE && p.matchPunct(op.punct) {
			return op, true
		}
	}
	return binaryOp{}, false
}

// parseLeftAssoc parses next { op next }, folding to the left.
func (p *Parser) parseLeftAssoc(next func() (Node, error), ops []binaryOp) (Node, error) {
	left, err := next()
	if left == nil || err != nil {
		return nil, err
	}
	for {
		op, ok := p.matchOp(ops)
		if !ok {
			return left, nil
		}
		tok := p.consume()
		right, err := p.required(next, "<expression>")
		if err != nil {
			Free(left)
			return nil, err
		}
		left = NewBinaryExpr(op.kind, tok, left, right)
	}
}

type prefix struct {
	kind NodeKind
	tok  Token
}

// parsePrefixed parses { op } next. Once a prefix is consumed the operand is
// required. The first prefix ends up outermost.
func (p *Parser) parsePrefixed(next func() (Node, error), ops []binaryOp) (Node, error) {
	var seen []prefix
	for {
		op, ok := p.matchOp(ops)
		if !ok {
			break
		}
		seen = append(seen, prefix{kind: op.kind, tok: p.consume()})
	}

	operand, err := next()
	if err != nil {
		return nil, err
	}
	if operand == nil {
		if len(seen) == 0 {
			return nil, nil
		}
		return nil, p.fail("<expression>")
	}
	for i := len(seen) - 1; i >= 0; i-- {
		operand = NewUnaryExpr(seen[i].kind, seen[i].tok, operand)
	}
	return operand, nil
}

func (p *Parser) parseExpr() (Node, error) { return p.parseCastExpr() }

func (p *Parser) parseCastExpr() (Node, error)   { return p.parseLeftAssoc(p.parseLogOrExpr, castOps) }
func (p *Parser) parseLogOrExpr() (Node, error)  { return p.parseLeftAssoc(p.parseLogAndExpr, logOrOps) }
func (p *Parser) parseLogAndExpr() (Node, error) { return p.parseLeftAssoc(p.parseRelExpr, logAndOps) }
func (p *Parser) parseRelExpr() (Node, error)    { return p.parseLeftAssoc(p.parseCmpExpr, relOps) }
func (p *Parser) parseCmpExpr() (Node, error)    { return p.parseLeftAssoc(p.parseBitOrExpr, cmpOps) }
func (p *Parser) parseBitOrExpr() (Node, error)  { return p.parseLeftAssoc(p.parseBitAndExpr, bitOrOps) }
func (p *Parser) parseBitAndExpr() (Node, error) { return p.parseLeftAssoc(p.parseShiftExpr, bitAndOps) }
func (p *Parser) parseShiftExpr() (Node, error)  { return p.parseLeftAssoc(p.parseTermExpr, shiftOps) }
func (p *Parser) parseTermExpr() (Node, error)   { return p.parseLeftAssoc(p.parseFactorExpr, termOps) }
func (p *Parser) parseFactorExpr() (Node, error) { return p.parseLeftAssoc(p.parseRefExpr, factorOps) }

func (p *Parser) parseRefExpr() (Node, error) { return p.parsePrefixed(p.parseProofExpr, refOps) }

func (p *Parser) parseProofExpr() (Node, error) {
	return p.parseLeftAssoc(p.parseValueLookupExpr, proofOps)
}

func (p *Parser) parseValueLookupExpr() (Node, error) {
	return p.parseLeftAssoc(p.parseStaticLookupExpr, valueOps)
}

func (p *Parser) parseStaticLookupExpr() (Node, error) {
	return p.parseLeftAssoc(p.parseUnaryExpr, staticOps)
}

func (p *Parser) parseUnaryExpr() (Node, error) { return p.parsePrefixed(p.parseCallExpr, unaryOps) }

// parseCallExpr parses index_expr { "(" [ expr { "," expr } ] ")" }.
func (p *Parser) parseCallExpr() (Node, error) {
	callee, err := p.parseIndexExpr()
	if callee == nil || err != nil {
		return nil, err
	}
	for p.matchPunct(LPAR) {
		open := p.consume()
		args, err := p.parsePassingArgs(open)
		if err != nil {
			Free(callee)
			return nil, err
		}
		callee = NewCallExpr(open, callee, args)
	}
	return callee, nil
}

// parsePassingArgs parses the argument list after an opening paren.
func (p *Parser) parsePassingArgs(open Token) (*PassingArgs, error) {
	items := stack.New[Node]()

	first, err := p.parseExpr()
	if err != nil {
		items.Free()
		return nil, err
	}
	if first != nil {
		adopt(items, first)
		for p.matchPunct(COMMA) {
			p.consume()
			arg, err := p.required(p.parseExpr, "<expression>")
			if err != nil {
				items.Free()
				return nil, err
			}
			adopt(items, arg)
		}
	}

	if _, ok := p.acceptPunct(RPAR); !ok {
		items.Free()
		return nil, p.fail("<closing `)`>")
	}
	return NewPassingArgs(open, items), nil
}

// parseIndexExpr parses primary_expr { "[" expr "]" }.
func (p *Parser) parseIndexExpr() (Node, error) {
	target, err := p.parsePrimaryExpr()
	if target == nil || err != nil {
		return nil, err
	}
	for p.matchPunct(LSBR) {
		open := p.consume()
		index, err := p.required(p.parseExpr, "<expression>")
		if err != nil {
			Free(target)
			return nil, err
		}
		if _, ok := p.acceptPunct(RSBR); !ok {
			Free(target)
			Free(index)
			return nil, p.fail("<closing `]`>")
		}
		target = NewIndexExpr(open, target, index)
	}
	return target, nil
}

// parsePrimaryExpr parses a parenthesized expression or an atom.
func (p *Parser) parsePrimaryExpr() (Node, error) {
	if _, ok := p.acceptPunct(LPAR); ok {
		inner, err := p.required(p.parseExpr, "<expression>")
		if err != nil {
			return nil, err
		}
		if _, ok := p.acceptPunct(RPAR); !ok {
			Free(inner)
			return nil, p.fail("<closing `)`>")
		}
		return inner, nil
	}
	return p.parseAtom()
}

func (p *Parser) parseAtom() (Node, error) {
	switch p.peek().Kind {
	case IDENTIFIER, INT_LIT, FLOAT_LIT, STR_LIT, BOOL_LIT, NIL_LIT, UNIT_LIT:
		return NewAtom(p.consume()), nil
	}
	return nil, nil
}
