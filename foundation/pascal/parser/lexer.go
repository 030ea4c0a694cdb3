// File: lexer.go
// Title: Pascal Lexical Analyzer
// Description: Converts source text into a lazy stream of tokens. Tracks
//              byte offset, line and column of every token for error
//              reporting.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial lexer implementation

package parser

import (
	"fmt"
	"unicode/utf8"

	mdwast "github.com/msto63/spi/foundation/pascal/ast"
)

// Kind represents the type of a lexical token
type Kind int

const (
	EOF Kind = iota
	INTEGER
	PLUS
	MINUS
	MUL
	DIV
	LPAREN
	RPAREN
	ASSIGN
	SEMI
	DOT
	BEGIN
	END
	ID
)

var kindNames = [...]string{
	EOF:     "EOF",
	INTEGER: "INTEGER",
	PLUS:    "PLUS",
	MINUS:   "MINUS",
	MUL:     "MUL",
	DIV:     "DIV",
	LPAREN:  "LPAREN",
	RPAREN:  "RPAREN",
	ASSIGN:  "ASSIGN",
	SEMI:    "SEMI",
	DOT:     "DOT",
	BEGIN:   "BEGIN",
	END:     "END",
	ID:      "ID",
}

// String returns the token kind name
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Reserved words, matched case-sensitively
var keywords = map[string]Kind{
	"BEGIN": BEGIN,
	"END":   END,
}

var singleCharTokens = map[byte]Kind{
	'+': PLUS,
	'-': MINUS,
	'*': MUL,
	'/': DIV,
	'(': LPAREN,
	')': RPAREN,
	';': SEMI,
	'.': DOT,
}

// Token represents a lexical token
type Token struct {
	Kind   Kind
	Lexeme string // empty for EOF
	Offset int
	Line   int
	Column int
}

// String renders the token as Token(KIND, lexeme)
func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %s)", t.Kind, t.Lexeme)
}

// Pos returns the token position as an ast position
func (t Token) Pos() mdwast.Position {
	return mdwast.Position{Offset: t.Offset, Line: t.Line, Column: t.Column}
}

// Lexer tokenizes source text on demand
type Lexer struct {
	input  string
	pos    int
	line   int
	column int

	// Sticky once set: every later call returns it again
	err error
}

// NewLexer creates a lexer over input
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		line:   1,
		column: 1,
	}
}

// NextToken returns the next token. After the input is exhausted it returns
// EOF on every call; after a lexical error it returns that error on every call.
func (l *Lexer) NextToken() (Token, error) {
	if l.err != nil {
		return Token{}, l.err
	}

	l.skipWhitespace()

	start := Token{Offset: l.pos, Line: l.line, Column: l.column}
	if l.pos >= len(l.input) {
		start.Kind = EOF
		return start, nil
	}

	ch := l.input[l.pos]
	switch {
	case isDigit(ch):
		start.Kind = INTEGER
		start.Lexeme = l.readWhile(isDigit)
		return start, nil

	case isLetter(ch):
		word := l.readWhile(isAlnum)
		start.Lexeme = word
		if kind, ok := keywords[word]; ok {
			start.Kind = kind
		} else {
			start.Kind = ID
		}
		return start, nil

	case ch == ':' && l.peek() == '=':
		l.advance()
		l.advance()
		start.Kind = ASSIGN
		start.Lexeme = ":="
		return start, nil
	}

	if kind, ok := singleCharTokens[ch]; ok {
		l.advance()
		start.Kind = kind
		start.Lexeme = string(ch)
		return start, nil
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	l.err = &LexError{Char: r, Offset: l.pos, Line: l.line, Column: l.column}
	return Token{}, l.err
}

// Tokenize collects the complete token stream including the final EOF
func Tokenize(input string) ([]Token, error) {
	lexer := NewLexer(input)
	var tokens []Token
	for {
		tok, err := lexer.NextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) advance() {
	if l.input[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
}

func (l *Lexer) peek() byte {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.advance()
	}
}

func (l *Lexer) readWhile(pred func(byte) bool) string {
	start := l.pos
	for l.pos < len(l.input) && pred(l.input[l.pos]) {
		l.advance()
	}
	return l.input[start:l.pos]
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isAlnum(ch byte) bool {
	return isLetter(ch) || isDigit(ch)
}
