// File: doc.go
// Title: Pascal Parser Package Documentation
// Description: Lexical analyzer and recursive-descent parser for the Pascal
//              subset evaluated by spi.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial lexer and parser

/*
Package parser turns source text into an ast tree.

The Lexer produces tokens on demand; the Parser pulls them with one token
of lookahead and consumes input only through eat, which fails with a
*SyntaxError when the lookahead has the wrong kind. Lexer failures surface
unchanged as *LexError.

Grammar (program mode):

	program              : compound_statement DOT
	compound_statement   : BEGIN statement_list END
	statement_list       : statement (SEMI statement)*
	statement            : compound_statement | assignment_statement | empty
	assignment_statement : variable ASSIGN expr
	variable             : ID
	empty                :
	expr                 : term ((PLUS | MINUS) term)*
	term                 : factor ((MUL | DIV) factor)*
	factor               : (PLUS | MINUS) factor | INTEGER | LPAREN expr RPAREN | variable

Calculator mode parses a single expr. Both modes require EOF after the top
level rule.

Usage:

	p := parser.NewParser(parser.NewLexer(src), parser.Options{Logger: logger})
	program, err := p.ParseProgram()
*/
package parser
