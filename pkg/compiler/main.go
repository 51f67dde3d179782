// Package compiler is the tau language front end: a pull-based lexer with
// bracket-balance end-of-line elision, an owned AST, and a recursive-descent
// parser.
//
// Pipeline: source buffer → Lexer.Next → Parser → *CompilationUnit
package compiler
