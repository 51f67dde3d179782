package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tauc/pkg/diag"
	"tauc/pkg/stack"
)

// lexOne returns the first token of src.
func lexOne(src string) Token {
	return Tokenize("ast.tau", []byte(src), diag.Discard)[0]
}

func TestConstructors(t *testing.T) {
	a, b, c := NewAtom(lexOne("a")), NewAtom(lexOne("b")), NewAtom(lexOne("c"))
	mul := NewBinaryExpr(MUL_EXPR, lexOne("*"), b, c)
	add := NewBinaryExpr(ADD_EXPR, lexOne("+"), a, mul)
	defer Free(add)

	assert.Equal(t, ADD_EXPR, add.Kind())
	assert.Equal(t, "(ADD_EXPR a (MUL_EXPR b c))", add.String())
	assert.Equal(t, []Node{a, mul}, add.Children())
	assert.True(t, add.Tok().IsPunct(PLUS))
	assert.True(t, a.IsIdentifier())
	assert.False(t, NewAtom(lexOne("1")).IsIdentifier())
}

func TestAbsentChildrenAreSkipped(t *testing.T) {
	tok := lexOne("x")
	tests := []struct {
		name string
		node Node
		want string
	}{
		{name: "Return Without Value", node: NewReturnStmt(tok, nil), want: "(RETURN_STMT)"},
		{name: "Else Branch", node: NewBranch(ELSE_BRANCH, tok, nil, NewBlock(tok, nil)), want: "(ELSE_BRANCH (BLOCK))"},
		{name: "If Without Else", node: NewIfStmt(tok, NewBranch(MAIN_BRANCH, tok, NewAtom(tok), NewBlock(tok, nil)), nil, nil), want: "(IF_STMT (MAIN_BRANCH x (BLOCK)))"},
		{name: "Empty Args", node: NewPassingArgs(tok, nil), want: "(PASSING_ARGS)"},
		{name: "Unit Without Module", node: NewCompilationUnit(tok, nil, NewDecls(tok, nil)), want: "(COMPILATION_UNIT (DECLS))"},
		{name: "Prototype", node: NewPrototype(tok), want: "(PROTOTYPE)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.node.String())
			require.NotPanics(t, func() { Free(tt.node) })
			assert.True(t, tt.node.Freed())
		})
	}
}

func TestFreeNil(t *testing.T) {
	assert.NotPanics(t, func() { Free(nil) })

	var block *Block
	assert.NotPanics(t, func() { Free(block) })
	assert.Equal(t, "()", Sexpr(block))
}

func TestDoubleFreePanics(t *testing.T) {
	a := NewAtom(lexOne("a"))
	Free(a)
	assert.True(t, a.Freed())
	assert.Panics(t, func() { Free(a) })
}

func TestFreeListsTopDown(t *testing.T) {
	items := stack.New[Node]()
	var order []string
	for _, name := range []string{"a", "b", "c"} {
		items.Push(NewAtom(lexOne(name)), func(n Node) {
			order = append(order, n.String())
			Free(n)
		})
	}
	args := NewPassingArgs(lexOne("("), items)
	require.Equal(t, 3, args.Len())

	second, ok := args.Arg(1)
	require.True(t, ok)
	assert.Equal(t, "b", second.String())
	_, ok = args.Arg(3)
	assert.False(t, ok)

	Free(args)
	assert.Equal(t, []string{"c", "b", "a"}, order)
	assert.True(t, second.Freed())
}

func TestWalk(t *testing.T) {
	n, _, err := parseWith("f(a + b, c)", parseExprRule)
	require.NoError(t, err)
	defer Free(n)

	var seen []NodeKind
	Walk(n, func(n Node) bool {
		seen = append(seen, n.Kind())
		return true
	})
	assert.Equal(t, []NodeKind{CALL_EXPR, ATOM, PASSING_ARGS, ADD_EXPR, ATOM, ATOM, ATOM}, seen)

	seen = nil
	Walk(n, func(n Node) bool {
		seen = append(seen, n.Kind())
		return n.Kind() != PASSING_ARGS
	})
	assert.Equal(t, []NodeKind{CALL_EXPR, ATOM, PASSING_ARGS}, seen)

	var unit *CompilationUnit
	assert.NotPanics(t, func() { Walk(unit, func(Node) bool { return true }) })
}

func TestNodeKindString(t *testing.T) {
	assert.Equal(t, "ACCUM_LSH_STMT", ACCUM_LSH_STMT.String())
	assert.Equal(t, "COMPILATION_UNIT", COMPILATION_UNIT.String())
	assert.Equal(t, "NodeKind(200)", NodeKind(200).String())
}
