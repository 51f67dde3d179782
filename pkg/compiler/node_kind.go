package compiler

import "fmt"

// NodeKind tags every AST construct. Its String form is the head of the
// node's s-expression.
type NodeKind uint8

const (
	ATOM NodeKind = iota

	// Binary expressions, loosest binding first
	CAST_EXPR
	LOG_OR_EXPR
	LOG_AND_EXPR
	EQ_EXPR
	NE_EXPR
	LT_EXPR
	LE_EXPR
	GT_EXPR
	GE_EXPR
	BIT_OR_EXPR
	BIT_XOR_EXPR
	BIT_AND_EXPR
	LSH_EXPR
	RSH_EXPR
	ADD_EXPR
	SUB_EXPR
	MUL_EXPR
	DIV_EXPR
	REM_EXPR
	PROOF_EXPR
	VALUE_LOOKUP_EXPR
	STATIC_LOOKUP_EXPR

	// Prefix expressions
	U_REF_EXPR
	U_POS_EXPR
	U_NEG_EXPR
	U_LOG_NOT_EXPR
	U_BIT_NOT_EXPR

	// Postfix expressions
	CALL_EXPR
	PASSING_ARGS
	INDEX_EXPR

	// Statements
	RETURN_STMT
	CONTINUE_STMT
	BREAK_STMT
	IF_STMT
	MAIN_BRANCH
	ELIF_BRANCH
	ELSE_BRANCH
	WHILE_STMT
	ASSIGN_STMT
	ACCUM_ADD_STMT
	ACCUM_SUB_STMT
	ACCUM_MUL_STMT
	ACCUM_DIV_STMT
	ACCUM_REM_STMT
	ACCUM_AND_STMT
	ACCUM_OR_STMT
	ACCUM_XOR_STMT
	ACCUM_RSH_STMT
	ACCUM_LSH_STMT
	CALL_STMT
	BLOCK

	// Declarations
	TYPE_BIND
	DATA_BIND
	PROTOTYPE
	FORMAL_ARGS
	FORMAL_ARG
	MODULE_DECL
	LET_DECL
	PROC_DECL
	TYPE_DECL
	EXTERN_DECL
	DECLS
	COMPILATION_UNIT
)

func (k NodeKind) String() string {
	switch k {
	case ATOM:
		return "ATOM"
	case CAST_EXPR:
		return "CAST_EXPR"
	case LOG_OR_EXPR:
		return "LOG_OR_EXPR"
	case LOG_AND_EXPR:
		return "LOG_AND_EXPR"
	case EQ_EXPR:
		return "EQ_EXPR"
	case NE_EXPR:
		return "NE_EXPR"
	case LT_EXPR:
		return "LT_EXPR"
	case LE_EXPR:
		return "LE_EXPR"
	case GT_EXPR:
		return "GT_EXPR"
	case GE_EXPR:
		return "GE_EXPR"
	case BIT_OR_EXPR:
		return "BIT_OR_EXPR"
	case BIT_XOR_EXPR:
		return "BIT_XOR_EXPR"
	case BIT_AND_EXPR:
		return "BIT_AND_EXPR"
	case LSH_EXPR:
		return "LSH_EXPR"
	case RSH_EXPR:
		return "RSH_EXPR"
	case ADD_EXPR:
		return "ADD_EXPR"
	case SUB_EXPR:
		return "SUB_EXPR"
	case MUL_EXPR:
		return "MUL_EXPR"
	case DIV_EXPR:
		return "DIV_EXPR"
	case REM_EXPR:
		return "REM_EXPR"
	case PROOF_EXPR:
		return "PROOF_EXPR"
	case VALUE_LOOKUP_EXPR:
		return "VALUE_LOOKUP_EXPR"
	case STATIC_LOOKUP_EXPR:
		return "STATIC_LOOKUP_EXPR"
	case U_REF_EXPR:
		return "U_REF_EXPR"
	case U_POS_EXPR:
		return "U_POS_EXPR"
	case U_NEG_EXPR:
		return "U_NEG_EXPR"
	case U_LOG_NOT_EXPR:
		return "U_LOG_NOT_EXPR"
	case U_BIT_NOT_EXPR:
		return "U_BIT_NOT_EXPR"
	case CALL_EXPR:
		return "CALL_EXPR"
	case PASSING_ARGS:
		return "PASSING_ARGS"
	case INDEX_EXPR:
		return "INDEX_EXPR"
	case RETURN_STMT:
		return "RETURN_STMT"
	case CONTINUE_STMT:
		return "CONTINUE_STMT"
	case BREAK_STMT:
		return "BREAK_STMT"
	case IF_STMT:
		return "IF_STMT"
	case MAIN_BRANCH:
		return "MAIN_BRANCH"
	case ELIF_BRANCH:
		return "ELIF_BRANCH"
	case ELSE_BRANCH:
		return "ELSE_BRANCH"
	case WHILE_STMT:
		return "WHILE_STMT"
	case ASSIGN_STMT:
		return "ASSIGN_STMT"
	case ACCUM_ADD_STMT:
		return "ACCUM_ADD_STMT"
	case ACCUM_SUB_STMT:
		return "ACCUM_SUB_STMT"
	case ACCUM_MUL_STMT:
		return "ACCUM_MUL_STMT"
	case ACCUM_DIV_STMT:
		return "ACCUM_DIV_STMT"
	case ACCUM_REM_STMT:
		return "ACCUM_REM_STMT"
	case ACCUM_AND_STMT:
		return "ACCUM_AND_STMT"
	case ACCUM_OR_STMT:
		return "ACCUM_OR_STMT"
	case ACCUM_XOR_STMT:
		return "ACCUM_XOR_STMT"
	case ACCUM_RSH_STMT:
		return "ACCUM_RSH_STMT"
	case ACCUM_LSH_STMT:
		return "ACCUM_LSH_STMT"
	case CALL_STMT:
		return "CALL_STMT"
	case BLOCK:
		return "BLOCK"
	case TYPE_BIND:
		return "TYPE_BIND"
	case DATA_BIND:
		return "DATA_BIND"
	case PROTOTYPE:
		return "PROTOTYPE"
	case FORMAL_ARGS:
		return "FORMAL_ARGS"
	case FORMAL_ARG:
		return "FORMAL_ARG"
	case MODULE_DECL:
		return "MODULE_DECL"
	case LET_DECL:
		return "LET_DECL"
	case PROC_DECL:
		return "PROC_DECL"
	case TYPE_DECL:
		return "TYPE_DECL"
	case EXTERN_DECL:
		return "EXTERN_DECL"
	case DECLS:
		return "DECLS"
	case COMPILATION_UNIT:
		return "COMPILATION_UNIT"
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}
