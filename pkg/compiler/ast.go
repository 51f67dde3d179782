package compiler

import (
	"fmt"
	"reflect"
	"strings"

	"tauc/pkg/stack"
)

// Node is implemented by every AST construct. A node exclusively owns its
// children: the tree has no shared subtrees and no back references.
type Node interface {
	Kind() NodeKind
	// Tok is the token that anchors the node for diagnostics.
	Tok() Token
	// Children lists the owned subtrees in source order, absent ones skipped.
	Children() []Node
	// Freed reports whether Free has released the node.
	Freed() bool
	// String renders the subtree as an s-expression, e.g. (ADD_EXPR a b).
	String() string

	free()
}

// node carries what every construct shares.
type node struct {
	tok   Token
	freed bool
}

func (n *node) Tok() Token  { return n.tok }
func (n *node) Freed() bool { return n.freed }

func (n *node) release(kind NodeKind) {
	if n.freed {
		panic(fmt.Sprintf("compiler: %s at %s freed twice", kind, n.tok.Loc))
	}
	n.freed = true
}

func isNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Free releases n and its whole subtree. It is a no-op for nil, and panics
// if any node in the subtree was already freed.
func Free(n Node) {
	if isNil(n) {
		return
	}
	n.free()
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of that node.
func Walk(n Node, fn func(Node) bool) {
	if isNil(n) || !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}

// Sexpr renders n in the canonical s-expression form used by String.
func Sexpr(n Node) string {
	var sb strings.Builder
	writeSexpr(&sb, n)
	return sb.String()
}

func writeSexpr(sb *strings.Builder, n Node) {
	if isNil(n) {
		sb.WriteString("()")
		return
	}
	if a, ok := n.(*Atom); ok {
		sb.Write(a.tok.Text)
		return
	}
	sb.WriteByte('(')
	sb.WriteString(n.Kind().String())
	for _, c := range n.Children() {
		sb.WriteByte(' ')
		writeSexpr(sb, c)
	}
	sb.WriteByte(')')
}

// children collects the non-nil entries of nodes.
func children(nodes ...Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if !isNil(n) {
			out = append(out, n)
		}
	}
	return out
}

// ownedList returns items, or a fresh stack when items is nil.
func ownedList(items *stack.Stack[Node]) *stack.Stack[Node] {
	if items == nil {
		return stack.New[Node]()
	}
	return items
}

// adopt pushes n onto items with Free as its destructor.
func adopt(items *stack.Stack[Node], n Node) {
	items.Push(n, Free)
}

//  Expression nodes

// Atom is an identifier or a literal. The token kind tells which.
//
//	let x: Int = 0
//	    ^  Atom{IDENTIFIER "x"}     ^  Atom{INT_LIT "0"}
type Atom struct {
	node
}

func NewAtom(tok Token) *Atom { return &Atom{node: node{tok: tok}} }

func (*Atom) Kind() NodeKind       { return ATOM }
func (*Atom) Children() []Node     { return nil }
func (a *Atom) String() string     { return string(a.tok.Text) }
func (a *Atom) free()              { a.release(ATOM) }
func (a *Atom) Text() string       { return string(a.tok.Text) }
func (a *Atom) IsIdentifier() bool { return a.tok.Kind == IDENTIFIER }

// BinaryExpr is every infix form: arithmetic, comparison, logic, casts,
// proofs and lookups.
//
//	a + b * c
//	  ^  BinaryExpr{Op: ADD_EXPR, Left: a, Right: BinaryExpr{Op: MUL_EXPR, ...}}
type BinaryExpr struct {
	node
	Op    NodeKind
	Left  Node
	Right Node
}

func NewBinaryExpr(op NodeKind, tok Token, left, right Node) *BinaryExpr {
	return &BinaryExpr{node: node{tok: tok}, Op: op, Left: left, Right: right}
}

func (e *BinaryExpr) Kind() NodeKind   { return e.Op }
func (e *BinaryExpr) Children() []Node { return children(e.Left, e.Right) }
func (e *BinaryExpr) String() string   { return Sexpr(e) }
func (e *BinaryExpr) free() {
	e.release(e.Op)
	Free(e.Left)
	Free(e.Right)
}

// UnaryExpr is a prefix operator applied to Operand. Chains of prefixes nest
// outermost first: -!x is U_NEG_EXPR(U_LOG_NOT_EXPR(x)).
type UnaryExpr struct {
	node
	Op      NodeKind
	Operand Node
}

func NewUnaryExpr(op NodeKind, tok Token, operand Node) *UnaryExpr {
	return &UnaryExpr{node: node{tok: tok}, Op: op, Operand: operand}
}

func (e *UnaryExpr) Kind() NodeKind   { return e.Op }
func (e *UnaryExpr) Children() []Node { return children(e.Operand) }
func (e *UnaryExpr) String() string   { return Sexpr(e) }
func (e *UnaryExpr) free() {
	e.release(e.Op)
	Free(e.Operand)
}

// PassingArgs is the parenthesized argument list of a call.
type PassingArgs struct {
	node
	Args *stack.Stack[Node]
}

// NewPassingArgs takes ownership of args; nil means no arguments.
func NewPassingArgs(tok Token, args *stack.Stack[Node]) *PassingArgs {
	return &PassingArgs{node: node{tok: tok}, Args: ownedList(args)}
}

func (*PassingArgs) Kind() NodeKind           { return PASSING_ARGS }
func (a *PassingArgs) Children() []Node       { return a.Args.Values() }
func (a *PassingArgs) String() string         { return Sexpr(a) }
func (a *PassingArgs) Len() int               { return a.Args.Len() }
func (a *PassingArgs) Arg(i int) (Node, bool) { return a.Args.Get(i) }
func (a *PassingArgs) free() {
	a.release(PASSING_ARGS)
	a.Args.Free()
}

// CallExpr represents Callee(Args...).
//
//	f(a, b)  ->  (CALL_EXPR f (PASSING_ARGS a b))
type CallExpr struct {
	node
	Callee Node
	Args   *PassingArgs
}

func NewCallExpr(tok Token, callee Node, args *PassingArgs) *CallExpr {
	return &CallExpr{node: node{tok: tok}, Callee: callee, Args: args}
}

func (*CallExpr) Kind() NodeKind { return CALL_EXPR }
func (e *CallExpr) Children() []Node {
	if e.Args == nil {
		return children(e.Callee)
	}
	return children(e.Callee, e.Args)
}
func (e *CallExpr) String() string { return Sexpr(e) }
func (e *CallExpr) free() {
	e.release(CALL_EXPR)
	Free(e.Callee)
	if e.Args != nil {
		e.Args.free()
	}
}

// IndexExpr represents Target[Index].
type IndexExpr struct {
	node
	Target Node
	Index  Node
}

func NewIndexExpr(tok Token, target, index Node) *IndexExpr {
	return &IndexExpr{node: node{tok: tok}, Target: target, Index: index}
}

func (*IndexExpr) Kind() NodeKind     { return INDEX_EXPR }
func (e *IndexExpr) Children() []Node { return children(e.Target, e.Index) }
func (e *IndexExpr) String() string   { return Sexpr(e) }
func (e *IndexExpr) free() {
	e.release(INDEX_EXPR)
	Free(e.Target)
	Free(e.Index)
}

//  Statement nodes

// ReturnStmt represents return [Value].
type ReturnStmt struct {
	node
	Value Node // may be nil
}

func NewReturnStmt(tok Token, value Node) *ReturnStmt {
	return &ReturnStmt{node: node{tok: tok}, Value: value}
}

func (*ReturnStmt) Kind() NodeKind     { return RETURN_STMT }
func (s *ReturnStmt) Children() []Node { return children(s.Value) }
func (s *ReturnStmt) String() string   { return Sexpr(s) }
func (s *ReturnStmt) free() {
	s.release(RETURN_STMT)
	Free(s.Value)
}

// ContinueStmt represents continue
type ContinueStmt struct {
	node
}

func NewContinueStmt(tok Token) *ContinueStmt { return &ContinueStmt{node: node{tok: tok}} }

func (*ContinueStmt) Kind() NodeKind   { return CONTINUE_STMT }
func (*ContinueStmt) Children() []Node { return nil }
func (s *ContinueStmt) String() string { return Sexpr(s) }
func (s *ContinueStmt) free()          { s.release(CONTINUE_STMT) }

// BreakStmt represents break
type BreakStmt struct {
	node
}

func NewBreakStmt(tok Token) *BreakStmt { return &BreakStmt{node: node{tok: tok}} }

func (*BreakStmt) Kind() NodeKind   { return BREAK_STMT }
func (*BreakStmt) Children() []Node { return nil }
func (s *BreakStmt) String() string { return Sexpr(s) }
func (s *BreakStmt) free()          { s.release(BREAK_STMT) }

// Branch is one arm of an if statement. MAIN_BRANCH and ELIF_BRANCH carry a
// condition; ELSE_BRANCH does not.
type Branch struct {
	node
	kind NodeKind
	Cond Node
	Body *Block
}

func NewBranch(kind NodeKind, tok Token, cond Node, body *Block) *Branch {
	return &Branch{node: node{tok: tok}, kind: kind, Cond: cond, Body: body}
}

func (b *Branch) Kind() NodeKind { return b.kind }
func (b *Branch) Children() []Node {
	if b.Body == nil {
		return children(b.Cond)
	}
	return children(b.Cond, b.Body)
}
func (b *Branch) String() string { return Sexpr(b) }
func (b *Branch) free() {
	b.release(b.kind)
	Free(b.Cond)
	if b.Body != nil {
		b.Body.free()
	}
}

// IfStmt represents if cond {..} elif cond {..} else {..}.
//
//	(IF_STMT (MAIN_BRANCH a (BLOCK)) (ELIF_BRANCH b (BLOCK)) (ELSE_BRANCH (BLOCK)))
type IfStmt struct {
	node
	Main  *Branch
	Elifs *stack.Stack[Node]
	Else  *Branch // may be nil
}

func NewIfStmt(tok Token, main *Branch, elifs *stack.Stack[Node], els *Branch) *IfStmt {
	return &IfStmt{node: node{tok: tok}, Main: main, Elifs: ownedList(elifs), Else: els}
}

func (*IfStmt) Kind() NodeKind { return IF_STMT }
func (s *IfStmt) Children() []Node {
	out := make([]Node, 0, s.Elifs.Len()+2)
	if s.Main != nil {
		out = append(out, s.Main)
	}
	out = append(out, s.Elifs.Values()...)
	if s.Else != nil {
		out = append(out, s.Else)
	}
	return out
}
func (s *IfStmt) String() string { return Sexpr(s) }
func (s *IfStmt) free() {
	s.release(IF_STMT)
	if s.Main != nil {
		s.Main.free()
	}
	s.Elifs.Free()
	if s.Else != nil {
		s.Else.free()
	}
}

// WhileStmt represents while cond {..}; loop is accepted as a synonym.
type WhileStmt struct {
	node
	Cond Node
	Body *Block
}

func NewWhileStmt(tok Token, cond Node, body *Block) *WhileStmt {
	return &WhileStmt{node: node{tok: tok}, Cond: cond, Body: body}
}

func (*WhileStmt) Kind() NodeKind { return WHILE_STMT }
func (s *WhileStmt) Children() []Node {
	if s.Body == nil {
		return children(s.Cond)
	}
	return children(s.Cond, s.Body)
}
func (s *WhileStmt) String() string { return Sexpr(s) }
func (s *WhileStmt) free() {
	s.release(WHILE_STMT)
	Free(s.Cond)
	if s.Body != nil {
		s.Body.free()
	}
}

// AssignStmt represents Target op Value, where Op is ASSIGN_STMT for a plain
// "=" or one of the ACCUM_*_STMT kinds for compound assignment.
//
//	x += 1  ->  (ACCUM_ADD_STMT x 1)
type AssignStmt struct {
	node
	Op     NodeKind
	Target Node
	Value  Node
}

func NewAssignStmt(op NodeKind, tok Token, target, value Node) *AssignStmt {
	return &AssignStmt{node: node{tok: tok}, Op: op, Target: target, Value: value}
}

func (s *AssignStmt) Kind() NodeKind   { return s.Op }
func (s *AssignStmt) Children() []Node { return children(s.Target, s.Value) }
func (s *AssignStmt) String() string   { return Sexpr(s) }
func (s *AssignStmt) free() {
	s.release(s.Op)
	Free(s.Target)
	Free(s.Value)
}

// CallStmt is a call evaluated for its side effects.
type CallStmt struct {
	node
	Call *CallExpr
}

func NewCallStmt(tok Token, call *CallExpr) *CallStmt {
	return &CallStmt{node: node{tok: tok}, Call: call}
}

func (*CallStmt) Kind() NodeKind { return CALL_STMT }
func (s *CallStmt) Children() []Node {
	if s.Call == nil {
		return nil
	}
	return []Node{s.Call}
}
func (s *CallStmt) String() string { return Sexpr(s) }
func (s *CallStmt) free() {
	s.release(CALL_STMT)
	if s.Call != nil {
		s.Call.free()
	}
}

// Block represents { item; item; ... } where items are statements or
// declarations.
type Block struct {
	node
	Items *stack.Stack[Node]
}

func NewBlock(tok Token, items *stack.Stack[Node]) *Block {
	return &Block{node: node{tok: tok}, Items: ownedList(items)}
}

func (*Block) Kind() NodeKind     { return BLOCK }
func (b *Block) Children() []Node { return b.Items.Values() }
func (b *Block) String() string   { return Sexpr(b) }
func (b *Block) free() {
	b.release(BLOCK)
	b.Items.Free()
}

//  Declaration nodes

// TypeBind represents ": Type".
type TypeBind struct {
	node
	Type Node
}

func NewTypeBind(tok Token, typ Node) *TypeBind {
	return &TypeBind{node: node{tok: tok}, Type: typ}
}

func (*TypeBind) Kind() NodeKind     { return TYPE_BIND }
func (b *TypeBind) Children() []Node { return children(b.Type) }
func (b *TypeBind) String() string   { return Sexpr(b) }
func (b *TypeBind) free() {
	b.release(TYPE_BIND)
	Free(b.Type)
}

// DataBind represents "= Value".
type DataBind struct {
	node
	Value Node
}

func NewDataBind(tok Token, value Node) *DataBind {
	return &DataBind{node: node{tok: tok}, Value: value}
}

func (*DataBind) Kind() NodeKind     { return DATA_BIND }
func (b *DataBind) Children() []Node { return children(b.Value) }
func (b *DataBind) String() string   { return Sexpr(b) }
func (b *DataBind) free() {
	b.release(DATA_BIND)
	Free(b.Value)
}

// Prototype marks a declaration without a definition.
type Prototype struct {
	node
}

func NewPrototype(tok Token) *Prototype { return &Prototype{node: node{tok: tok}} }

func (*Prototype) Kind() NodeKind   { return PROTOTYPE }
func (*Prototype) Children() []Node { return nil }
func (p *Prototype) String() string { return Sexpr(p) }
func (p *Prototype) free()          { p.release(PROTOTYPE) }

// FormalArg represents "name: Type" in a procedure signature.
type FormalArg struct {
	node
	Name *Atom
	Type *TypeBind
}

func NewFormalArg(tok Token, name *Atom, typ *TypeBind) *FormalArg {
	return &FormalArg{node: node{tok: tok}, Name: name, Type: typ}
}

func (*FormalArg) Kind() NodeKind { return FORMAL_ARG }
func (a *FormalArg) Children() []Node {
	out := make([]Node, 0, 2)
	if a.Name != nil {
		out = append(out, a.Name)
	}
	if a.Type != nil {
		out = append(out, a.Type)
	}
	return out
}
func (a *FormalArg) String() string { return Sexpr(a) }
func (a *FormalArg) free() {
	a.release(FORMAL_ARG)
	if a.Name != nil {
		a.Name.free()
	}
	if a.Type != nil {
		a.Type.free()
	}
}

// FormalArgs is the parenthesized parameter list of a procedure.
type FormalArgs struct {
	node
	Args *stack.Stack[Node]
}

func NewFormalArgs(tok Token, args *stack.Stack[Node]) *FormalArgs {
	return &FormalArgs{node: node{tok: tok}, Args: ownedList(args)}
}

func (*FormalArgs) Kind() NodeKind     { return FORMAL_ARGS }
func (a *FormalArgs) Children() []Node { return a.Args.Values() }
func (a *FormalArgs) String() string   { return Sexpr(a) }
func (a *FormalArgs) Len() int         { return a.Args.Len() }
func (a *FormalArgs) free() {
	a.release(FORMAL_ARGS)
	a.Args.Free()
}

// ModuleDecl represents module a::b.
type ModuleDecl struct {
	node
	Path Node
}

func NewModuleDecl(tok Token, path Node) *ModuleDecl {
	return &ModuleDecl{node: node{tok: tok}, Path: path}
}

func (*ModuleDecl) Kind() NodeKind     { return MODULE_DECL }
func (d *ModuleDecl) Children() []Node { return children(d.Path) }
func (d *ModuleDecl) String() string   { return Sexpr(d) }
func (d *ModuleDecl) free() {
	d.release(MODULE_DECL)
	Free(d.Path)
}

// LetDecl represents let name: Type (prototype | = value).
//
//	let x: Int = 0  ->  (LET_DECL x (TYPE_BIND Int) (DATA_BIND 0))
type LetDecl struct {
	node
	Name *Atom
	Type *TypeBind
	Def  Node // *Prototype or *DataBind
}

func NewLetDecl(tok Token, name *Atom, typ *TypeBind, def Node) *LetDecl {
	return &LetDecl{node: node{tok: tok}, Name: name, Type: typ, Def: def}
}

func (*LetDecl) Kind() NodeKind { return LET_DECL }
func (d *LetDecl) Children() []Node {
	out := make([]Node, 0, 3)
	if d.Name != nil {
		out = append(out, d.Name)
	}
	if d.Type != nil {
		out = append(out, d.Type)
	}
	return append(out, children(d.Def)...)
}
func (d *LetDecl) String() string { return Sexpr(d) }
func (d *LetDecl) free() {
	d.release(LET_DECL)
	if d.Name != nil {
		d.Name.free()
	}
	if d.Type != nil {
		d.Type.free()
	}
	Free(d.Def)
}

// ProcDecl represents proc name(args): Ret (prototype | = value | block).
type ProcDecl struct {
	node
	Name *Atom
	Args *FormalArgs
	Ret  *TypeBind
	Def  Node // *Prototype, *DataBind or *Block
}

func NewProcDecl(tok Token, name *Atom, args *FormalArgs, ret *TypeBind, def Node) *ProcDecl {
	return &ProcDecl{node: node{tok: tok}, Name: name, Args: args, Ret: ret, Def: def}
}

func (*ProcDecl) Kind() NodeKind { return PROC_DECL }
func (d *ProcDecl) Children() []Node {
	out := make([]Node, 0, 4)
	if d.Name != nil {
		out = append(out, d.Name)
	}
	if d.Args != nil {
		out = append(out, d.Args)
	}
	if d.Ret != nil {
		out = append(out, d.Ret)
	}
	return append(out, children(d.Def)...)
}
func (d *ProcDecl) String() string { return Sexpr(d) }
func (d *ProcDecl) free() {
	d.release(PROC_DECL)
	if d.Name != nil {
		d.Name.free()
	}
	if d.Args != nil {
		d.Args.free()
	}
	if d.Ret != nil {
		d.Ret.free()
	}
	Free(d.Def)
}

// TypeDecl represents type Name (prototype | = value).
type TypeDecl struct {
	node
	Name *Atom
	Def  Node // *Prototype or *DataBind
}

func NewTypeDecl(tok Token, name *Atom, def Node) *TypeDecl {
	return &TypeDecl{node: node{tok: tok}, Name: name, Def: def}
}

func (*TypeDecl) Kind() NodeKind { return TYPE_DECL }
func (d *TypeDecl) Children() []Node {
	if d.Name == nil {
		return children(d.Def)
	}
	return children(d.Name, d.Def)
}
func (d *TypeDecl) String() string { return Sexpr(d) }
func (d *TypeDecl) free() {
	d.release(TYPE_DECL)
	if d.Name != nil {
		d.Name.free()
	}
	Free(d.Def)
}

// ExternDecl wraps a let, proc or type declaration defined elsewhere.
type ExternDecl struct {
	node
	Decl Node
}

func NewExternDecl(tok Token, decl Node) *ExternDecl {
	return &ExternDecl{node: node{tok: tok}, Decl: decl}
}

func (*ExternDecl) Kind() NodeKind     { return EXTERN_DECL }
func (d *ExternDecl) Children() []Node { return children(d.Decl) }
func (d *ExternDecl) String() string   { return Sexpr(d) }
func (d *ExternDecl) free() {
	d.release(EXTERN_DECL)
	Free(d.Decl)
}

// Decls is the top-level declaration list of a compilation unit.
type Decls struct {
	node
	Items *stack.Stack[Node]
}

func NewDecls(tok Token, items *stack.Stack[Node]) *Decls {
	return &Decls{node: node{tok: tok}, Items: ownedList(items)}
}

func (*Decls) Kind() NodeKind     { return DECLS }
func (d *Decls) Children() []Node { return d.Items.Values() }
func (d *Decls) String() string   { return Sexpr(d) }
func (d *Decls) Len() int         { return d.Items.Len() }
func (d *Decls) free() {
	d.release(DECLS)
	d.Items.Free()
}

// CompilationUnit is the root of a parsed buffer.
type CompilationUnit struct {
	node
	Module *ModuleDecl
	Decls  *Decls
}

func NewCompilationUnit(tok Token, module *ModuleDecl, decls *Decls) *CompilationUnit {
	return &CompilationUnit{node: node{tok: tok}, Module: module, Decls: decls}
}

func (*CompilationUnit) Kind() NodeKind { return COMPILATION_UNIT }
func (u *CompilationUnit) Children() []Node {
	out := make([]Node, 0, 2)
	if u.Module != nil {
		out = append(out, u.Module)
	}
	if u.Decls != nil {
		out = append(out, u.Decls)
	}
	return out
}
func (u *CompilationUnit) String() string { return Sexpr(u) }
func (u *CompilationUnit) free() {
	u.release(COMPILATION_UNIT)
	if u.Module != nil {
		u.Module.free()
	}
	if u.Decls != nil {
		u.Decls.free()
	}
}
