package compiler

import (
	"fmt"

	"tauc/pkg/diag"
)

// TokenKind identifies the category of a lexed token.
type TokenKind uint8

const (
	NONE TokenKind = iota // start of buffer, or a lexical error

	EOF // end of input, zero length
	EOL // run of newlines and semicolons

	// Literals
	INT_LIT   // 42, 0b1010, 0o17, 0xff
	FLOAT_LIT // 1.5, 0.12e+10
	STR_LIT   // "..."
	BOOL_LIT  // true, false
	NIL_LIT   // nil
	UNIT_LIT  // unit

	PUNCT      // operator or delimiter, see Punct
	KEYWORD    // reserved word, see Keyword
	IDENTIFIER // variable / procedure / type name
)

func (k TokenKind) String() string {
	switch k {
	case NONE:
		return "NONE"
	case EOF:
		return "EOF"
	case EOL:
		return "EOL"
	case INT_LIT:
		return "INT_LIT"
	case FLOAT_LIT:
		return "FLOAT_LIT"
	case STR_LIT:
		return "STR_LIT"
	case BOOL_LIT:
		return "BOOL_LIT"
	case NIL_LIT:
		return "NIL_LIT"
	case UNIT_LIT:
		return "UNIT_LIT"
	case PUNCT:
		return "PUNCT"
	case KEYWORD:
		return "KEYWORD"
	case IDENTIFIER:
		return "IDENTIFIER"
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Punct tags the fixed operator and delimiter set.
type Punct uint8

const (
	PUNCT_NONE Punct = iota

	SHR_EQ    // >>=
	SHL_EQ    // <<=
	D_EQ      // ==
	SHR       // >>
	SHL       // <<
	D_AMP     // &&
	D_PIPE    // ||
	D_COLON   // ::
	COLON_EQ  // :=
	BANG_EQ   // !=
	GT_EQ     // >=
	LT_EQ     // <=
	PLUS_EQ   // +=
	HYPHEN_EQ // -=
	AST_EQ    // *=
	SLASH_EQ  // /=
	PCT_EQ    // %=
	AMP_EQ    // &=
	PIPE_EQ   // |=
	CARET_EQ  // ^=

	// Paired delimiters
	LPAR // (
	RPAR // )
	LSBR // [
	RSBR // ]
	LCBR // {
	RCBR // }

	COLON  // :
	DOT    // .
	COMMA  // ,
	EQ     // =
	BANG   // !
	LT     // <
	GT     // >
	PLUS   // +
	HYPHEN // -
	AST    // *
	SLASH  // /
	PCT    // %
	PIPE   // |
	AMP    // &
	CARET  // ^
	TILDE  // ~
	QUOTE  // '
)

// Text returns the source spelling of p.
func (p Punct) Text() string {
	switch p {
	case SHR_EQ:
		return ">>="
	case SHL_EQ:
		return "<<="
	case D_EQ:
		return "=="
	case SHR:
		return ">>"
	case SHL:
		return "<<"
	case D_AMP:
		return "&&"
	case D_PIPE:
		return "||"
	case D_COLON:
		return "::"
	case COLON_EQ:
		return ":="
	case BANG_EQ:
		return "!="
	case GT_EQ:
		return ">="
	case LT_EQ:
		return "<="
	case PLUS_EQ:
		return "+="
	case HYPHEN_EQ:
		return "-="
	case AST_EQ:
		return "*="
	case SLASH_EQ:
		return "/="
	case PCT_EQ:
		return "%="
	case AMP_EQ:
		return "&="
	case PIPE_EQ:
		return "|="
	case CARET_EQ:
		return "^="
	case LPAR:
		return "("
	case RPAR:
		return ")"
	case LSBR:
		return "["
	case RSBR:
		return "]"
	case LCBR:
		return "{"
	case RCBR:
		return "}"
	case COLON:
		return ":"
	case DOT:
		return "."
	case COMMA:
		return ","
	case EQ:
		return "="
	case BANG:
		return "!"
	case LT:
		return "<"
	case GT:
		return ">"
	case PLUS:
		return "+"
	case HYPHEN:
		return "-"
	case AST:
		return "*"
	case SLASH:
		return "/"
	case PCT:
		return "%"
	case PIPE:
		return "|"
	case AMP:
		return "&"
	case CARET:
		return "^"
	case TILDE:
		return "~"
	case QUOTE:
		return "'"
	}
	return ""
}

func (p Punct) String() string {
	if t := p.Text(); t != "" {
		return t
	}
	return fmt.Sprintf("Punct(%d)", int(p))
}

// puncts lists every punctuation tag longest spelling first, which is the
// order the lexer tries them in.
var puncts = []Punct{
	SHR_EQ, SHL_EQ,
	D_EQ, SHR, SHL, D_AMP, D_PIPE, D_COLON, COLON_EQ, BANG_EQ, GT_EQ, LT_EQ,
	PLUS_EQ, HYPHEN_EQ, AST_EQ, SLASH_EQ, PCT_EQ, AMP_EQ, PIPE_EQ, CARET_EQ,
	LPAR, RPAR, LSBR, RSBR, LCBR, RCBR,
	COLON, DOT, COMMA, EQ, BANG, LT, GT, PLUS, HYPHEN, AST, SLASH, PCT, PIPE, AMP, CARET, TILDE, QUOTE,
}

// Keyword tags the reserved words. true, false, nil and unit are literals,
// not keywords.
type Keyword uint8

const (
	KW_NONE Keyword = iota
	KW_MODULE
	KW_EXTERN
	KW_PROC
	KW_LET
	KW_PROTOTYPE
	KW_TYPE
	KW_IF
	KW_ELIF
	KW_ELSE
	KW_WHILE
	KW_LOOP
	KW_BREAK
	KW_CONTINUE
	KW_RETURN
	KW_AS
)

func (k Keyword) String() string {
	switch k {
	case KW_MODULE:
		return "module"
	case KW_EXTERN:
		return "extern"
	case KW_PROC:
		return "proc"
	case KW_LET:
		return "let"
	case KW_PROTOTYPE:
		return "prototype"
	case KW_TYPE:
		return "type"
	case KW_IF:
		return "if"
	case KW_ELIF:
		return "elif"
	case KW_ELSE:
		return "else"
	case KW_WHILE:
		return "while"
	case KW_LOOP:
		return "loop"
	case KW_BREAK:
		return "break"
	case KW_CONTINUE:
		return "continue"
	case KW_RETURN:
		return "return"
	case KW_AS:
		return "as"
	}
	return fmt.Sprintf("Keyword(%d)", int(k))
}

// classifyWord maps a scanned word to its token kind and keyword tag.
func classifyWord(word []byte) (TokenKind, Keyword) {
	switch string(word) {
	case "true", "false":
		return BOOL_LIT, KW_NONE
	case "nil":
		return NIL_LIT, KW_NONE
	case "unit":
		return UNIT_LIT, KW_NONE
	case "module":
		return KEYWORD, KW_MODULE
	case "extern":
		return KEYWORD, KW_EXTERN
	case "proc":
		return KEYWORD, KW_PROC
	case "let":
		return KEYWORD, KW_LET
	case "prototype":
		return KEYWORD, KW_PROTOTYPE
	case "type":
		return KEYWORD, KW_TYPE
	case "if":
		return KEYWORD, KW_IF
	case "elif":
		return KEYWORD, KW_ELIF
	case "else":
		return KEYWORD, KW_ELSE
	case "while":
		return KEYWORD, KW_WHILE
	case "loop":
		return KEYWORD, KW_LOOP
	case "break":
		return KEYWORD, KW_BREAK
	case "continue":
		return KEYWORD, KW_CONTINUE
	case "return":
		return KEYWORD, KW_RETURN
	case "as":
		return KEYWORD, KW_AS
	}
	return IDENTIFIER, KW_NONE
}

// Base is the radix of a numeric literal.
type Base uint8

const (
	DEC Base = iota
	BIN
	OCT
	HEX
)

func (b Base) String() string {
	switch b {
	case DEC:
		return "dec"
	case BIN:
		return "bin"
	case OCT:
		return "oct"
	case HEX:
		return "hex"
	}
	return fmt.Sprintf("Base(%d)", int(b))
}

// Radix returns 10, 2, 8 or 16.
func (b Base) Radix() int {
	switch b {
	case BIN:
		return 2
	case OCT:
		return 8
	case HEX:
		return 16
	}
	return 10
}

// Balance is the count of unmatched brackets as of a token, the token itself
// included.
type Balance struct {
	Paren   int32
	Bracket int32
	Brace   int32
}

func (b Balance) String() string {
	return fmt.Sprintf("(%d,%d,%d)", b.Paren, b.Bracket, b.Brace)
}

// suppressesEOL reports whether newlines are currently insignificant.
func (b Balance) suppressesEOL() bool {
	return b.Paren > 0 || b.Bracket > 0
}

// Token is a single lexical unit produced by the Lexer. Text aliases the
// source buffer and is never copied.
type Token struct {
	Kind    TokenKind
	Punct   Punct
	Keyword Keyword
	Base    Base

	Offset  int    // byte offset of Text in the source
	Text    []byte // the exact source bytes that were matched
	Loc     diag.Location
	Balance Balance

	// position just past the token, where Next resumes
	endRow int
	endCol int
}

// Len is the token's length in bytes.
func (t Token) Len() int { return len(t.Text) }

// End is the offset just past the token.
func (t Token) End() int { return t.Offset + len(t.Text) }

// IsPunct reports whether t is the punctuation p.
func (t Token) IsPunct(p Punct) bool { return t.Kind == PUNCT && t.Punct == p }

// IsKeyword reports whether t is the keyword k.
func (t Token) IsKeyword(k Keyword) bool { return t.Kind == KEYWORD && t.Keyword == k }

// Describe names the token for diagnostics: its text, or its kind in angle
// brackets when it has none.
func (t Token) Describe() string {
	if len(t.Text) == 0 {
		return "<" + t.Kind.String() + ">"
	}
	return string(t.Text)
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  %s", t.Kind, t.Text, t.Loc)
}
