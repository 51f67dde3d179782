package compiler

import "tauc/pkg/stack"

//  Declarations and the compilation unit

// parseDecl parses let | proc | type | extern, or returns (nil, nil).
func (p *Parser) parseDecl() (Node, error) {
	tok := p.peek()
	switch {
	case tok.IsKeyword(KW_LET):
		return p.parseLetDecl()
	case tok.IsKeyword(KW_PROC):
		return p.parseProcDecl()
	case tok.IsKeyword(KW_TYPE):
		return p.parseTypeDecl()
	case tok.IsKeyword(KW_EXTERN):
		return p.parseExternDecl()
	}
	return nil, nil
}

func (p *Parser) parseIdentifier() *Atom {
	if !p.match(IDENTIFIER) {
		return nil
	}
	return NewAtom(p.consume())
}

func (p *Parser) requireIdentifier() (*Atom, error) {
	if name := p.parseIdentifier(); name != nil {
		return name, nil
	}
	return nil, p.fail("<identifier>")
}

// ": expr"
func (p *Parser) parseTypeBind() (*TypeBind, error) {
	tok, ok := p.acceptPunct(COLON)
	if !ok {
		return nil, nil
	}
	typ, err := p.required(p.parseExpr, "<expression>")
	if err != nil {
		return nil, err
	}
	return NewTypeBind(tok, typ), nil
}

func (p *Parser) requireTypeBind() (*TypeBind, error) {
	bind, err := p.parseTypeBind()
	if err != nil {
		return nil, err
	}
	if bind == nil {
		return nil, p.fail("<type bind>")
	}
	return bind, nil
}

// "= expr"
func (p *Parser) parseDataBind() (Node, error) {
	tok, ok := p.acceptPunct(EQ)
	if !ok {
		return nil, nil
	}
	value, err := p.required(p.parseExpr, "<expression>")
	if err != nil {
		return nil, err
	}
	return NewDataBind(tok, value), nil
}

func (p *Parser) parsePrototype() (Node, error) {
	if tok, ok := p.acceptKeyword(KW_PROTOTYPE); ok {
		return NewPrototype(tok), nil
	}
	return nil, nil
}

func (p *Parser) parsePrototypeOrDataBind() (Node, error) {
	if proto, err := p.parsePrototype(); proto != nil || err != nil {
		return proto, err
	}
	return p.parseDataBind()
}

// let identifier type_bind (prototype | data_bind)
func (p *Parser) parseLetDecl() (Node, error) {
	tok := p.consume()
	name, err := p.requireIdentifier()
	if err != nil {
		return nil, err
	}
	typ, err := p.requireTypeBind()
	if err != nil {
		Free(name)
		return nil, err
	}
	def, err := p.required(p.parsePrototypeOrDataBind, "<prototype or data bind>")
	if err != nil {
		Free(name)
		Free(typ)
		return nil, err
	}
	return NewLetDecl(tok, name, typ, def), nil
}

// proc identifier formal_args type_bind (prototype | data_bind | block)
func (p *Parser) parseProcDecl() (Node, error) {
	tok := p.consume()
	name, err := p.requireIdentifier()
	if err != nil {
		return nil, err
	}
	args, err := p.parseFormalArgs()
	if err == nil && args == nil {
		err = p.fail("<formal args>")
	}
	if err != nil {
		Free(name)
		return nil, err
	}
	ret, err := p.requireTypeBind()
	if err != nil {
		Free(name)
		Free(args)
		return nil, err
	}
	def, err := p.required(p.parseProcDef, "<prototype, block or data bind>")
	if err != nil {
		Free(name)
		Free(args)
		Free(ret)
		return nil, err
	}
	return NewProcDecl(tok, name, args, ret, def), nil
}

func (p *Parser) parseProcDef() (Node, error) {
	if def, err := p.parsePrototypeOrDataBind(); def != nil || err != nil {
		return def, err
	}
	body, err := p.parseBlock()
	if body == nil || err != nil {
		return nil, err
	}
	return body, nil
}

// "(" [ formal_arg { "," formal_arg } ] ")"
func (p *Parser) parseFormalArgs() (*FormalArgs, error) {
	open, ok := p.acceptPunct(LPAR)
	if !ok {
		return nil, nil
	}

	items := stack.New[Node]()
	first, err := p.parseFormalArg()
	if err != nil {
		items.Free()
		return nil, err
	}
	if first != nil {
		adopt(items, first)
		for p.matchPunct(COMMA) {
			p.consume()
			arg, err := p.parseFormalArg()
			if err == nil && arg == nil {
				err = p.fail("<formal arg>")
			}
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
	return NewFormalArgs(open, items), nil
}

// identifier type_bind
func (p *Parser) parseFormalArg() (*FormalArg, error) {
	name := p.parseIdentifier()
	if name == nil {
		return nil, nil
	}
	typ, err := p.requireTypeBind()
	if err != nil {
		Free(name)
		return nil, err
	}
	return NewFormalArg(name.Tok(), name, typ), nil
}

// type identifier (prototype | data_bind)
func (p *Parser) parseTypeDecl() (Node, error) {
	tok := p.consume()
	name, err := p.requireIdentifier()
	if err != nil {
		return nil, err
	}
	def, err := p.required(p.parsePrototypeOrDataBind, "<prototype or data bind>")
	if err != nil {
		Free(name)
		return nil, err
	}
	return NewTypeDecl(tok, name, def), nil
}

// extern (let_decl | proc_decl | type_decl)
func (p *Parser) parseExternDecl() (Node, error) {
	tok := p.consume()
	var (
		decl Node
		err  error
	)
	switch t := p.peek(); {
	case t.IsKeyword(KW_LET):
		decl, err = p.parseLetDecl()
	case t.IsKeyword(KW_PROC):
		decl, err = p.parseProcDecl()
	case t.IsKeyword(KW_TYPE):
		decl, err = p.parseTypeDecl()
	default:
		return nil, p.fail("<let, proc or type decl>")
	}
	if err != nil {
		return nil, err
	}
	return NewExternDecl(tok, decl), nil
}

// module static_lookup_expr
func (p *Parser) parseModuleDecl() (*ModuleDecl, error) {
	tok, ok := p.acceptKeyword(KW_MODULE)
	if !ok {
		return nil, nil
	}
	path, err := p.required(p.parseStaticLookupExpr, "<static lookup>")
	if err != nil {
		return nil, err
	}
	return NewModuleDecl(tok, path), nil
}

// parseDecls parses { decl EOL }. The last declaration may end at EOF.
func (p *Parser) parseDecls() (*Decls, error) {
	tok := p.peek()
	items := stack.New[Node]()
	for {
		decl, err := p.parseDecl()
		if err != nil {
			items.Free()
			return nil, err
		}
		if decl == nil {
			break
		}
		adopt(items, decl)

		if p.match(EOL) {
			p.skipEOL()
			continue
		}
		if !p.match(EOF) {
			items.Free()
			return nil, p.fail("<end of line>")
		}
	}
	return NewDecls(tok, items), nil
}

// module_decl EOL decls EOF
func (p *Parser) parseCompilationUnit() (*CompilationUnit, error) {
	p.skipEOL()
	tok := p.peek()

	mod, err := p.parseModuleDecl()
	if err == nil && mod == nil {
		err = p.fail("<module decl>")
	}
	if err != nil {
		return nil, err
	}

	if p.match(EOL) {
		p.skipEOL()
	} else if !p.match(EOF) {
		Free(mod)
		return nil, p.fail("<end of line>")
	}

	decls, err := p.parseDecls()
	if err != nil {
		Free(mod)
		return nil, err
	}
	if !p.match(EOF) {
		Free(mod)
		Free(decls)
		return nil, p.fail("<end of file>")
	}
	return NewCompilationUnit(tok, mod, decls), nil
}
