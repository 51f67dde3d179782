package compiler

import "tauc/pkg/stack"

//  Statements and blocks

// assignKind maps an assignment operator to its statement kind.
func assignKind(t Token) (NodeKind, bool) {
	if t.Kind != PUNCT {
		return 0, false
	}
	switch t.Punct {
	case EQ:
		return ASSIGN_STMT, true
	case PLUS_EQ:
		return ACCUM_ADD_STMT, true
	case HYPHEN_EQ:
		return ACCUM_SUB_STMT, true
	case AST_EQ:
		return ACCUM_MUL_STMT, true
	case SLASH_EQ:
		return ACCUM_DIV_STMT, true
	case PCT_EQ:
		return ACCUM_REM_STMT, true
	case AMP_EQ:
		return ACCUM_AND_STMT, true
	case PIPE_EQ:
		return ACCUM_OR_STMT, true
	case CARET_EQ:
		return ACCUM_XOR_STMT, true
	case SHR_EQ:
		return ACCUM_RSH_STMT, true
	case SHL_EQ:
		return ACCUM_LSH_STMT, true
	}
	return 0, false
}

// parseStatementOrDecl tries a local declaration before a statement.
func (p *Parser) parseStatementOrDecl() (Node, error) {
	decl, err := p.parseDecl()
	if decl != nil || err != nil {
		return decl, err
	}
	return p.parseStatement()
}

func (p *Parser) parseStatement() (Node, error) {
	tok := p.peek()
	switch {
	case tok.IsKeyword(KW_RETURN):
		return p.parseReturnStmt()
	case tok.IsKeyword(KW_CONTINUE):
		return NewContinueStmt(p.consume()), nil
	case tok.IsKeyword(KW_BREAK):
		return NewBreakStmt(p.consume()), nil
	case tok.IsKeyword(KW_IF):
		return p.parseIfStmt()
	case tok.IsKeyword(KW_WHILE), tok.IsKeyword(KW_LOOP):
		return p.parseWhileStmt()
	}
	return p.parseAssignOrCallStmt()
}

// return [expr]
func (p *Parser) parseReturnStmt() (Node, error) {
	tok := p.consume()
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return NewReturnStmt(tok, value), nil
}

// parseBranch parses the "expr block" tail shared by if, elif and while.
func (p *Parser) parseBranch(kind NodeKind, tok Token) (*Branch, error) {
	cond, err := p.required(p.parseExpr, "<expression>")
	if err != nil {
		return nil, err
	}
	body, err := p.requireBlock()
	if err != nil {
		Free(cond)
		return nil, err
	}
	return NewBranch(kind, tok, cond, body), nil
}

// if expr block { elif expr block } [ else block ]
func (p *Parser) parseIfStmt() (Node, error) {
	tok := p.consume()
	main, err := p.parseBranch(MAIN_BRANCH, tok)
	if err != nil {
		return nil, err
	}

	elifs := stack.New[Node]()
	for p.matchKeyword(KW_ELIF) {
		br, err := p.parseBranch(ELIF_BRANCH, p.consume())
		if err != nil {
			Free(main)
			elifs.Free()
			return nil, err
		}
		adopt(elifs, br)
	}

	var els *Branch
	if elseTok, ok := p.acceptKeyword(KW_ELSE); ok {
		body, err := p.requireBlock()
		if err != nil {
			Free(main)
			elifs.Free()
			return nil, err
		}
		els = NewBranch(ELSE_BRANCH, elseTok, nil, body)
	}
	return NewIfStmt(tok, main, elifs, els), nil
}

// (while | loop) expr block
func (p *Parser) parseWhileStmt() (Node, error) {
	tok := p.consume()
	cond, err := p.required(p.parseExpr, "<expression>")
	if err != nil {
		return nil, err
	}
	body, err := p.requireBlock()
	if err != nil {
		Free(cond)
		return nil, err
	}
	return NewWhileStmt(tok, cond, body), nil
}

// parseAssignOrCallStmt parses an expression and then decides: followed by
// an assignment operator it is the target of an assignment, otherwise it
// must be a call.
func (p *Parser) parseAssignOrCallStmt() (Node, error) {
	target, err := p.parseExpr()
	if target == nil || err != nil {
		return nil, err
	}

	if kind, ok := assignKind(p.peek()); ok {
		tok := p.consume()
		value, err := p.required(p.parseExpr, "<expression>")
		if err != nil {
			Free(target)
			return nil, err
		}
		return NewAssignStmt(kind, tok, target, value), nil
	}

	if call, ok := target.(*CallExpr); ok {
		return NewCallStmt(call.Tok(), call), nil
	}
	Free(target)
	return nil, p.fail("<assignment operator>")
}

// parseBlock parses "{" { statement_or_decl EOL } "}". Blank lines are
// skipped and the last item may close on "}" directly.
func (p *Parser) parseBlock() (*Block, error) {
	open, ok := p.acceptPunct(LCBR)
	if !ok {
		return nil, nil
	}
	p.skipEOL()

	items := stack.New[Node]()
	for !p.matchPunct(RCBR) {
		item, err := p.parseStatementOrDecl()
		if err == nil && item == nil {
			err = p.fail("<closing `}`>")
		}
		if err != nil {
			items.Free()
			return nil, err
		}
		adopt(items, item)

		if p.match(EOL) {
			p.skipEOL()
			continue
		}
		if !p.matchPunct(RCBR) {
			items.Free()
			return nil, p.fail("<end of line>")
		}
	}
	p.consume()
	return NewBlock(open, items), nil
}

func (p *Parser) requireBlock() (*Block, error) {
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, p.fail("<block>")
	}
	return body, nil
}
