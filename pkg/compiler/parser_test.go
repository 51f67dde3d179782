package compiler

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tauc/pkg/diag"
	"tauc/pkg/stack"
)

// topology normalizes an expected s-expression, so expectations can be
// written across several lines with any spacing.
func topology(t *testing.T, sexpr string) string {
	t.Helper()
	rec := diag.NewRecorder(nil)
	open := stack.New[*strings.Builder]()
	var out strings.Builder

	emit := func(term string) {
		top, ok := open.Peek()
		if !ok {
			out.WriteString(term)
			return
		}
		if top.Len() > 1 {
			top.WriteByte(' ')
		}
		top.WriteString(term)
	}

	for tok := range NewLexer("<expected>", []byte(sexpr), rec).Tokens() {
		switch {
		case tok.IsPunct(LPAR):
			sb := &strings.Builder{}
			sb.WriteByte('(')
			open.Push(sb, nil)
		case tok.IsPunct(RPAR):
			sb, ok := open.Pop()
			require.True(t, ok, "unbalanced expectation %q", sexpr)
			sb.WriteByte(')')
			emit(sb.String())
		case tok.Kind == EOF, tok.Kind == EOL:
		default:
			emit(string(tok.Text))
		}
	}
	require.Zero(t, rec.Errors(), "bad expectation %q", sexpr)
	require.True(t, open.IsEmpty(), "unbalanced expectation %q", sexpr)
	return out.String()
}

// parseWith runs one grammar rule over src.
func parseWith(src string, rule func(*Parser) (Node, error)) (Node, *diag.Recorder, error) {
	rec := diag.NewRecorder(nil)
	p := NewParser("test.tau", []byte(src), rec)
	n, err := rule(p)
	return n, rec, err
}

func parseExprRule(p *Parser) (Node, error) { return p.ParseExpr() }
func parseStmtRule(p *Parser) (Node, error) { return p.parseStatementOrDecl() }
func parseDeclRule(p *Parser) (Node, error) { return p.parseDecl() }

func parseUnitRule(p *Parser) (Node, error) {
	unit, err := p.ParseCompilationUnit()
	if unit == nil {
		return nil, err
	}
	return unit, err
}

type parseCase struct {
	name  string
	input string
	want  string
}

func runParseCases(t *testing.T, rule func(*Parser) (Node, error), tests []parseCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, rec, err := parseWith(tt.input, rule)
			require.NoError(t, err, "diagnostics: %v", rec.Diagnostics())
			require.NotNil(t, n)
			assert.Equal(t, topology(t, tt.want), n.String())
			assert.Zero(t, rec.Errors())
			Free(n)
		})
	}
}

type failCase struct {
	name     string
	input    string
	expected string
}

func runFailCases(t *testing.T, rule func(*Parser) (Node, error), tests []failCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				n   Node
				rec *diag.Recorder
				err error
			)
			require.NotPanics(t, func() { n, rec, err = parseWith(tt.input, rule) })
			assert.Nil(t, n)

			var syn *SyntaxError
			require.True(t, errors.As(err, &syn), "want *SyntaxError, got %v", err)
			assert.Equal(t, tt.expected, syn.Expected)

			diags := rec.Diagnostics()
			require.Len(t, diags, 1)
			assert.Equal(t, diag.Error, diags[0].Level)
			assert.Equal(t, syn.Loc, diags[0].Loc)
			assert.Equal(t, "unexpected `"+syn.Found+"`, was expecting "+tt.expected, diags[0].Message)
		})
	}
}

func TestParseExpr(t *testing.T) {
	runParseCases(t, parseExprRule, []parseCase{
		{name: "Sum Of Product", input: "a+b*c", want: "(ADD_EXPR a (MUL_EXPR b c))"},
		{name: "Product Then Sum", input: "a*b+c", want: "(ADD_EXPR (MUL_EXPR a b) c)"},
		{name: "Left Associative", input: "a - b - c", want: "(SUB_EXPR (SUB_EXPR a b) c)"},
		{name: "Parenthesized", input: "(a + b) * c", want: "(MUL_EXPR (ADD_EXPR a b) c)"},
		{name: "Logic", input: "a || b && c", want: "(LOG_OR_EXPR a (LOG_AND_EXPR b c))"},
		{name: "Relational Over Compare", input: "a == b < c", want: "(EQ_EXPR a (LT_EXPR b c))"},
		{name: "Compare Operators", input: "a <= b >= c > d != e", want: `
			(NE_EXPR
			  (GT_EXPR (GE_EXPR (LE_EXPR a b) c) d)
			  e)`},
		{name: "Bitwise", input: "a | b ^ c & d", want: "(BIT_XOR_EXPR (BIT_OR_EXPR a b) (BIT_AND_EXPR c d))"},
		{name: "Shifts", input: "a << 1 >> 2", want: "(RSH_EXPR (LSH_EXPR a 1) 2)"},
		{name: "Remainder And Division", input: "a % b / c", want: "(DIV_EXPR (REM_EXPR a b) c)"},
		{name: "Cast", input: "x + 1 as Int", want: "(CAST_EXPR (ADD_EXPR x 1) Int)"},
		{name: "Prefix Chain", input: "-!x", want: "(U_NEG_EXPR (U_LOG_NOT_EXPR x))"},
		{name: "Prefix Plus And Complement", input: "+~x", want: "(U_POS_EXPR (U_BIT_NOT_EXPR x))"},
		{name: "Reference Of Lookup", input: "& a.b", want: "(U_REF_EXPR (VALUE_LOOKUP_EXPR a b))"},
		{name: "Static Lookup", input: "a::b::c", want: "(STATIC_LOOKUP_EXPR (STATIC_LOOKUP_EXPR a b) c)"},
		{name: "Proof", input: "x: T", want: "(PROOF_EXPR x T)"},
		{name: "Call", input: "f(a, b)", want: "(CALL_EXPR f (PASSING_ARGS a b))"},
		{name: "Call Without Args", input: "f()", want: "(CALL_EXPR f (PASSING_ARGS))"},
		{name: "Chained Calls", input: "f(a)(b)", want: "(CALL_EXPR (CALL_EXPR f (PASSING_ARGS a)) (PASSING_ARGS b))"},
		{name: "Call Across Lines", input: "f(\n  a,\n  b\n)", want: "(CALL_EXPR f (PASSING_ARGS a b))"},
		{name: "Index", input: "xs[i + 1]", want: "(INDEX_EXPR xs (ADD_EXPR i 1))"},
		{name: "Indexed Callee", input: "fs[0](x)", want: "(CALL_EXPR (INDEX_EXPR fs 0) (PASSING_ARGS x))"},
		{name: "Literals", input: `f(1.5, "s", true, nil, unit, 0x10)`, want: `(CALL_EXPR f (PASSING_ARGS 1.5 "s" true nil unit 0x10))`},
	})
}

func TestParseExprFailures(t *testing.T) {
	runFailCases(t, parseExprRule, []failCase{
		{name: "Dangling Static Lookup", input: "bad::+", expected: "<expression>"},
		{name: "Empty", input: "", expected: "<expression>"},
		{name: "Missing Operand", input: "a +", expected: "<expression>"},
		{name: "Missing Argument", input: "f(a,", expected: "<expression>"},
		{name: "Unclosed Call", input: "f(a", expected: "<closing `)`>"},
		{name: "Unclosed Index", input: "xs[1", expected: "<closing `]`>"},
		{name: "Unclosed Paren", input: "(a", expected: "<closing `)`>"},
		{name: "Prefix Without Operand", input: "-", expected: "<expression>"},
		{name: "Unspaced Double Reference", input: "&&x", expected: "<expression>"},
	})
}

// "&&" lexes as one token, so a double reference needs a space.
func TestParseDoubleReference(t *testing.T) {
	n, rec, err := parseWith("& &x", parseExprRule)
	require.NoError(t, err)
	assert.Equal(t, "(U_REF_EXPR (U_REF_EXPR x))", n.String())
	assert.Zero(t, rec.Errors())
	Free(n)
}

func TestBadStaticLookupLogsOnce(t *testing.T) {
	n, rec, err := parseWith("bad::+", parseExprRule)
	assert.Nil(t, n)
	require.Error(t, err)
	require.Len(t, rec.Diagnostics(), 1)
	assert.Equal(t, "test.tau:0:6 error: unexpected `<EOF>`, was expecting <expression>", rec.Diagnostics()[0].String())
}

func TestParseStatement(t *testing.T) {
	runParseCases(t, parseStmtRule, []parseCase{
		{name: "Return", input: "return", want: "(RETURN_STMT)"},
		{name: "Return Value", input: "return x + 1", want: "(RETURN_STMT (ADD_EXPR x 1))"},
		{name: "Continue", input: "continue", want: "(CONTINUE_STMT)"},
		{name: "Break", input: "break", want: "(BREAK_STMT)"},
		{name: "Assign", input: "x = 1", want: "(ASSIGN_STMT x 1)"},
		{name: "Accumulate", input: "x += 1", want: "(ACCUM_ADD_STMT x 1)"},
		{name: "Shift Accumulate", input: "x <<= 2", want: "(ACCUM_LSH_STMT x 2)"},
		{name: "Indexed Target", input: "xs[i] ^= m", want: "(ACCUM_XOR_STMT (INDEX_EXPR xs i) m)"},
		{name: "Call", input: "f(x)", want: "(CALL_STMT (CALL_EXPR f (PASSING_ARGS x)))"},
		{name: "Empty If", input: "if c { }", want: "(IF_STMT (MAIN_BRANCH c (BLOCK)))"},
		{name: "If Elif Else", input: "if a { f() } elif b { g() } else { h() }", want: `
			(IF_STMT
			  (MAIN_BRANCH a (BLOCK (CALL_STMT (CALL_EXPR f (PASSING_ARGS)))))
			  (ELIF_BRANCH b (BLOCK (CALL_STMT (CALL_EXPR g (PASSING_ARGS)))))
			  (ELSE_BRANCH (BLOCK (CALL_STMT (CALL_EXPR h (PASSING_ARGS))))))`},
		{name: "While", input: "while i < n {\n\ti += 1\n}", want: "(WHILE_STMT (LT_EXPR i n) (BLOCK (ACCUM_ADD_STMT i 1)))"},
		{name: "Loop", input: "loop x { break }", want: "(WHILE_STMT x (BLOCK (BREAK_STMT)))"},
		{name: "Local Let", input: "let y: Int = 2", want: "(LET_DECL y (TYPE_BIND Int) (DATA_BIND 2))"},
		{name: "Block Items", input: "if c {\n\n  x = 1; y = 2\n\n  z -= 3\n}", want: `
			(IF_STMT (MAIN_BRANCH c
			  (BLOCK (ASSIGN_STMT x 1) (ASSIGN_STMT y 2) (ACCUM_SUB_STMT z 3))))`},
	})
}

func TestParseStatementFailures(t *testing.T) {
	runFailCases(t, parseStmtRule, []failCase{
		{name: "Bare Expression", input: "x", expected: "<assignment operator>"},
		{name: "Missing Value", input: "x =", expected: "<expression>"},
		{name: "If Without Condition", input: "if { }", expected: "<expression>"},
		{name: "If Without Block", input: "if c", expected: "<block>"},
		{name: "Else Without Block", input: "if c { } else", expected: "<block>"},
		{name: "Elif Without Block", input: "if c { } elif d", expected: "<block>"},
		{name: "Bad Block Item", input: "while c { x }", expected: "<assignment operator>"},
		{name: "Items On One Line", input: "if c { f() g() }", expected: "<end of line>"},
		{name: "Unclosed Block", input: "if c {", expected: "<closing `}`>"},
	})
}

func TestStatementSoftNonMatch(t *testing.T) {
	rec := diag.NewRecorder(nil)
	p := NewParser("soft.tau", []byte("else { }"), rec)
	n, err := p.parseStatementOrDecl()
	assert.Nil(t, n)
	assert.NoError(t, err)
	assert.True(t, p.peek().IsKeyword(KW_ELSE), "cursor must not move")
	assert.Zero(t, rec.Errors())
}

func TestParseDecl(t *testing.T) {
	runParseCases(t, parseDeclRule, []parseCase{
		{name: "Let", input: "let x: Int = 0", want: "(LET_DECL x (TYPE_BIND Int) (DATA_BIND 0))"},
		{name: "Let Prototype", input: "let x: Int prototype", want: "(LET_DECL x (TYPE_BIND Int) (PROTOTYPE))"},
		{name: "Type", input: "type Pair = Tuple(Int, Int)", want: "(TYPE_DECL Pair (DATA_BIND (CALL_EXPR Tuple (PASSING_ARGS Int Int))))"},
		{name: "Type Prototype", input: "type Opaque prototype", want: "(TYPE_DECL Opaque (PROTOTYPE))"},
		{name: "Proc Block", input: "proc p(i: I): O {\n\treturn i\n}", want: `
			(PROC_DECL p
			  (FORMAL_ARGS (FORMAL_ARG i (TYPE_BIND I)))
			  (TYPE_BIND O)
			  (BLOCK (RETURN_STMT i)))`},
		{name: "Proc Data Bind", input: "proc id(a: T, b: U): T = a", want: `
			(PROC_DECL id
			  (FORMAL_ARGS (FORMAL_ARG a (TYPE_BIND T)) (FORMAL_ARG b (TYPE_BIND U)))
			  (TYPE_BIND T)
			  (DATA_BIND a))`},
		{name: "Proc Prototype", input: "proc main(): Unit prototype", want: "(PROC_DECL main (FORMAL_ARGS) (TYPE_BIND Unit) (PROTOTYPE))"},
		{name: "Extern", input: "extern proc puts(s: Str): Int prototype", want: `
			(EXTERN_DECL
			  (PROC_DECL puts (FORMAL_ARGS (FORMAL_ARG s (TYPE_BIND Str))) (TYPE_BIND Int) (PROTOTYPE)))`},
		{name: "Nested Decl In Proc", input: "proc f(): Int {\n\tlet t: Int = 1\n\treturn t\n}", want: `
			(PROC_DECL f (FORMAL_ARGS) (TYPE_BIND Int)
			  (BLOCK (LET_DECL t (TYPE_BIND Int) (DATA_BIND 1)) (RETURN_STMT t)))`},
	})
}

func TestParseDeclFailures(t *testing.T) {
	runFailCases(t, parseDeclRule, []failCase{
		{name: "Let Without Name", input: "let = 0", expected: "<identifier>"},
		{name: "Let Without Type", input: "let x = 0", expected: "<type bind>"},
		{name: "Let Without Definition", input: "let x: Int", expected: "<prototype or data bind>"},
		{name: "Type Without Definition", input: "type T", expected: "<prototype or data bind>"},
		{name: "Proc Without Args", input: "proc p: Int", expected: "<formal args>"},
		{name: "Proc Without Return Type", input: "proc p() = 0", expected: "<type bind>"},
		{name: "Proc Without Definition", input: "proc p(): Int", expected: "<prototype, block or data bind>"},
		{name: "Trailing Comma", input: "proc p(a: A,): Int prototype", expected: "<formal arg>"},
		{name: "Untyped Arg", input: "proc p(a): Int prototype", expected: "<type bind>"},
		{name: "Unclosed Args", input: "proc p(a: A", expected: "<closing `)`>"},
		{name: "Extern Module", input: "extern module", expected: "<let, proc or type decl>"},
		{name: "Data Bind Without Value", input: "let x: Int =", expected: "<expression>"},
	})
}

func TestParseCompilationUnit(t *testing.T) {
	runParseCases(t, parseUnitRule, []parseCase{
		{
			name:  "Single Let",
			input: "module example; let x: Int = 0;",
			want:  "(COMPILATION_UNIT (MODULE_DECL example) (DECLS (LET_DECL x (TYPE_BIND Int) (DATA_BIND 0))))",
		},
		{
			name:  "Module Only",
			input: "module m",
			want:  "(COMPILATION_UNIT (MODULE_DECL m) (DECLS))",
		},
		{
			name:  "Program",
			input: "\n\nmodule std::io\n\nextern proc write(fd: Int, s: Str): Int prototype\n\nproc println(s: Str): Unit {\n\twrite(1, s)\n\twrite(1, \"\\n\")\n}",
			want: `
				(COMPILATION_UNIT
				  (MODULE_DECL (STATIC_LOOKUP_EXPR std io))
				  (DECLS
				    (EXTERN_DECL (PROC_DECL write
				      (FORMAL_ARGS (FORMAL_ARG fd (TYPE_BIND Int)) (FORMAL_ARG s (TYPE_BIND Str)))
				      (TYPE_BIND Int)
				      (PROTOTYPE)))
				    (PROC_DECL println
				      (FORMAL_ARGS (FORMAL_ARG s (TYPE_BIND Str)))
				      (TYPE_BIND Unit)
				      (BLOCK
				        (CALL_STMT (CALL_EXPR write (PASSING_ARGS 1 s)))
				        (CALL_STMT (CALL_EXPR write (PASSING_ARGS 1 "\n")))))))`,
		},
	})
}

func TestParseCompilationUnitFailures(t *testing.T) {
	runFailCases(t, parseUnitRule, []failCase{
		{name: "No Module", input: "let x: Int = 0", expected: "<module decl>"},
		{name: "Module Without Path", input: "module", expected: "<static lookup>"},
		{name: "Module Not Terminated", input: "module m let x: Int = 0", expected: "<end of line>"},
		{name: "Decls Not Terminated", input: "module m\nlet x: Int = 0 let y: Int = 1", expected: "<end of line>"},
		{name: "Statement At Top Level", input: "module m\nx = 1", expected: "<end of file>"},
	})
}

func TestParseEndToEnd(t *testing.T) {
	rec := diag.NewRecorder(nil)
	unit, err := Parse("example.tau", []byte("module example; let x: Int = 0;"), rec)
	require.NoError(t, err)
	require.NotNil(t, unit)
	defer Free(unit)

	assert.Empty(t, rec.Diagnostics(), "a successful parse prints nothing")
	assert.Equal(t, "(MODULE_DECL example)", unit.Module.String())
	require.Equal(t, 1, unit.Decls.Len())

	let, ok := unit.Decls.Children()[0].(*LetDecl)
	require.True(t, ok)
	assert.Equal(t, "x", let.Name.Text())
	assert.Equal(t, diag.Location{Buffer: "example.tau", Row: 0, Col: 20}, let.Name.Tok().Loc)

	zero, ok := let.Def.(*DataBind).Value.(*Atom)
	require.True(t, ok)
	v, err := zero.Tok().Int()
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestParseLexicalError(t *testing.T) {
	tests := []struct {
		name  string
		input string
		found string
		col   int
	}{
		{name: "Trailing Unknown", input: "module m\nlet x: Int = 0 @\n", found: "@", col: 15},
		{name: "Between Operands", input: "module m\nlet x: Int = 1 @ + 2\n", found: "@", col: 15},
		{name: "Unknown Before Identifier", input: "module m\nlet x: Int = a @ b\n", found: "@", col: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := diag.NewRecorder(nil)
			unit, err := Parse("lex.tau", []byte(tt.input), rec)
			assert.Nil(t, unit)

			var syn *SyntaxError
			require.True(t, errors.As(err, &syn), "want *SyntaxError, got %v", err)
			loc := diag.Location{Buffer: "lex.tau", Row: 1, Col: tt.col}
			assert.Equal(t, loc, syn.Loc)
			assert.Equal(t, tt.found, syn.Found)

			diags := rec.Diagnostics()
			require.Len(t, diags, 2, "lexer and parser each report once")
			assert.Equal(t, loc, diags[0].Loc)
			assert.Equal(t, loc, diags[1].Loc)
			assert.Contains(t, diags[1].Message, "unexpected `"+tt.found+"`")
		})
	}
}

// Every node reachable from a parsed tree is released by one Free of the
// root, and none of them twice.
func TestFreeReleasesWholeTree(t *testing.T) {
	src := `module demo::app

extern let stdout: File prototype
type Point = Record(x: Int, y: Int)

proc norm(p: Point, scale: Float): Float {
	let sq: Float = p.x * p.x + p.y * p.y
	if sq == 0 { return 0 } elif sq < 0 { return -1 } else { sq /= scale }
	loop sq > 1 {
		sq = roots[0](sq) as Float
		if !done(&sq) { continue }
		break
	}
	info("norm", ~flags, 0b1010)
	return sq
}
`
	unit, err := Parse("free.tau", []byte(src), diag.Discard)
	require.NoError(t, err)

	var nodes []Node
	Walk(unit, func(n Node) bool {
		nodes = append(nodes, n)
		return true
	})
	require.Greater(t, len(nodes), 60)
	for _, n := range nodes {
		require.False(t, n.Freed())
	}

	require.NotPanics(t, func() { Free(unit) })
	for _, n := range nodes {
		assert.True(t, n.Freed(), "%s at %s not freed", n.Kind(), n.Tok().Loc)
	}
	assert.Panics(t, func() { Free(unit) }, "double free must be caught")
}

func TestParseNilSinkUsesDefault(t *testing.T) {
	unit, err := Parse("quiet.tau", []byte("module m\n"), nil)
	require.NoError(t, err)
	Free(unit)
}
