// File: errors.go
// Title: Lexical and Syntax Errors
// Description: Typed errors raised by the lexer and parser. Both carry the
//              byte offset of the offending input.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial implementation

package parser

import (
	"errors"
	"fmt"
)

// ErrParserUsed is returned when a parser instance is asked to parse twice
var ErrParserUsed = errors.New("parser: instance already used")

// LexError reports a character that starts no token
type LexError struct {
	Char   rune
	Offset int
	Line   int
	Column int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("invalid character %q at offset %d (line %d, column %d)", e.Char, e.Offset, e.Line, e.Column)
}

// SyntaxError reports a token of the wrong kind
type SyntaxError struct {
	Expected Kind
	Actual   Kind
	Lexeme   string
	Offset   int
	Line     int
	Column   int
}

func (e *SyntaxError) Error() string {
	got := e.Actual.String()
	if e.Lexeme != "" {
		got = fmt.Sprintf("%s %q", got, e.Lexeme)
	}
	return fmt.Sprintf("expected %s, got %s at offset %d (line %d, column %d)", e.Expected, got, e.Offset, e.Line, e.Column)
}
