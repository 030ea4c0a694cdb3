// File: parser_test.go
// Title: Pascal Parser Unit Tests
// Description: Tests precedence, associativity, program structure, syntax
//              errors and canonical printer round trips.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial parser test suite

package parser

import (
	"errors"
	"io"
	"testing"

	mdwlog "github.com/msto63/spi/foundation/core/log"
	mdwast "github.com/msto63/spi/foundation/pascal/ast"
)

var quietLogger = mdwlog.NewWithConfig(mdwlog.Config{Level: mdwlog.LevelFatal, Output: io.Discard})

func parseExpr(t *testing.T, input string) mdwast.Node {
	t.Helper()
	node, err := NewParser(NewLexer(input), Options{Logger: quietLogger}).ParseExpression()
	if err != nil {
		t.Fatalf("ParseExpression(%q) error: %v", input, err)
	}
	return node
}

func parseProgram(t *testing.T, input string) *mdwast.Compound {
	t.Helper()
	program, err := NewParser(NewLexer(input), Options{Logger: quietLogger}).ParseProgram()
	if err != nil {
		t.Fatalf("ParseProgram(%q) error: %v", input, err)
	}
	return program
}

func TestParser_ExpressionShape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Precedence", "7 + 3 * (10 / (12 / (3 + 1) - 1))", "(7 + (3 * (10 / ((12 / (3 + 1)) - 1))))"},
		{"Left associative minus", "1 - 2 - 3", "((1 - 2) - 3)"},
		{"Left associative divide", "8 / 4 / 2", "((8 / 4) / 2)"},
		{"Double negation", "- -3", "--3"},
		{"Unary binds tightest", "-3 + 4", "(-3 + 4)"},
		{"Unary over parentheses", "-(1 + 2) * +x", "(-(1 + 2) * +x)"},
		{"Variable", "count", "count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseExpr(t, tt.input).String(); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParser_UnaryNesting(t *testing.T) {
	outer, ok := parseExpr(t, "- -3").(*mdwast.UnaryOp)
	if !ok || outer.Op != mdwast.OpSub {
		t.Fatalf("Expected outer unary minus, got %#v", outer)
	}
	inner, ok := outer.Operand.(*mdwast.UnaryOp)
	if !ok || inner.Op != mdwast.OpSub {
		t.Fatalf("Expected inner unary minus, got %#v", outer.Operand)
	}
	if num, ok := inner.Operand.(*mdwast.Num); !ok || num.Literal != "3" {
		t.Errorf("Expected literal 3, got %#v", inner.Operand)
	}
}

func TestParser_Program(t *testing.T) {
	program := parseProgram(t, "BEGIN a := 2; b := a + 3; BEGIN x := 1 END END.")

	if len(program.Statements) != 3 {
		t.Fatalf("Expected 3 statements, got %d", len(program.Statements))
	}
	if assign, ok := program.Statements[0].(*mdwast.Assign); !ok || assign.Target.Name != "a" {
		t.Errorf("Expected assignment to a, got %v", program.Statements[0])
	}
	nested, ok := program.Statements[2].(*mdwast.Compound)
	if !ok {
		t.Fatalf("Expected nested compound, got %T", program.Statements[2])
	}
	if len(nested.Statements) != 1 || nested.Statements[0].String() != "x := 1" {
		t.Errorf("Unexpected nested compound: %s", nested)
	}
}

func TestParser_EmptyStatements(t *testing.T) {
	tests := []struct {
		input string
		kinds []mdwast.Kind
	}{
		{"BEGIN END.", []mdwast.Kind{mdwast.KindNoOp}},
		{"BEGIN ; ; END.", []mdwast.Kind{mdwast.KindNoOp, mdwast.KindNoOp, mdwast.KindNoOp}},
		{"BEGIN a := 1; END.", []mdwast.Kind{mdwast.KindAssign, mdwast.KindNoOp}},
		{"BEGIN BEGIN END END.", []mdwast.Kind{mdwast.KindCompound}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program := parseProgram(t, tt.input)
			if len(program.Statements) != len(tt.kinds) {
				t.Fatalf("Expected %d statements, got %d", len(tt.kinds), len(program.Statements))
			}
			for i, stmt := range program.Statements {
				if stmt.Kind() != tt.kinds[i] {
					t.Errorf("Statement %d: expected %s, got %s", i, tt.kinds[i], stmt.Kind())
				}
			}
		})
	}
}

func TestParser_Positions(t *testing.T) {
	program := parseProgram(t, "BEGIN\n  x := 1 + y\nEND.")

	assign := program.Statements[0].(*mdwast.Assign)
	if pos := assign.Pos(); pos.Line != 2 || pos.Column != 3 || pos.Offset != 8 {
		t.Errorf("Expected assignment at offset 8, 2:3, got %d, %s", pos.Offset, pos)
	}
	sum := assign.Value.(*mdwast.BinOp)
	if sum.Pos().Column != 8 {
		t.Errorf("Expected binary operation to start at column 8, got %d", sum.Pos().Column)
	}
}

func TestParser_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		calc     bool
		expected Kind
		actual   Kind
		offset   int
	}{
		{"Missing final dot", "BEGIN a := 1 END", false, DOT, EOF, 16},
		{"Missing separator", "BEGIN a := 1 b := 2 END", false, SEMI, ID, 13},
		{"Compound as expression", "BEGIN a := 2; b := a + 3; c := BEGIN x := 1 END END.", false, ID, BEGIN, 31},
		{"Trailing input after program", "BEGIN END. x", false, EOF, ID, 11},
		{"Missing BEGIN", "a := 1.", false, BEGIN, ID, 0},
		{"Missing assign", "BEGIN a 1 END.", false, ASSIGN, INTEGER, 8},
		{"Unclosed paren", "(1 + 2", true, RPAREN, EOF, 6},
		{"Two numbers", "1 2", true, EOF, INTEGER, 2},
		{"Empty expression", "", true, ID, EOF, 0},
		{"Dangling operator", "1 +", true, ID, EOF, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(NewLexer(tt.input), Options{Logger: quietLogger})
			var err error
			if tt.calc {
				_, err = p.ParseExpression()
			} else {
				_, err = p.ParseProgram()
			}

			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("Expected *SyntaxError, got %v", err)
			}
			if syntaxErr.Expected != tt.expected || syntaxErr.Actual != tt.actual {
				t.Errorf("Expected %s/%s, got %s/%s", tt.expected, tt.actual, syntaxErr.Expected, syntaxErr.Actual)
			}
			if syntaxErr.Offset != tt.offset {
				t.Errorf("Expected offset %d, got %d", tt.offset, syntaxErr.Offset)
			}
		})
	}
}

func TestParser_LexErrorSurfaces(t *testing.T) {
	tests := []struct {
		input string
		calc  bool
	}{
		{"3 @ 4", true},
		{"@", true},
		{"BEGIN a = 1 END.", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := NewParser(NewLexer(tt.input), Options{Logger: quietLogger})
			var err error
			if tt.calc {
				_, err = p.ParseExpression()
			} else {
				_, err = p.ParseProgram()
			}
			var lexErr *LexError
			if !errors.As(err, &lexErr) {
				t.Errorf("Expected *LexError, got %v", err)
			}
		})
	}
}

func TestParser_SingleUse(t *testing.T) {
	p := NewParser(NewLexer("1"), Options{Logger: quietLogger})
	if _, err := p.ParseExpression(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := p.ParseExpression(); !errors.Is(err, ErrParserUsed) {
		t.Errorf("Expected ErrParserUsed, got %v", err)
	}
}

func TestParser_RoundTrip(t *testing.T) {
	programs := []string{
		"BEGIN END.",
		"BEGIN a := 2; b := a + 3; BEGIN x := 1 END END.",
		"BEGIN number := 2; a := number; b := 10 * a + 10 * number / 4; c := a - - b; END.",
		"BEGIN BEGIN ; END; y := -(+x - 3) END.",
	}
	for _, src := range programs {
		t.Run(src, func(t *testing.T) {
			first := parseProgram(t, src)
			second := parseProgram(t, mdwast.FormatProgram(first))
			if !mdwast.Equal(first, second) {
				t.Errorf("Round trip changed the tree:\n%s\n%s", first, second)
			}
			again := parseProgram(t, src)
			if !mdwast.Equal(first, again) {
				t.Error("Parsing the same source twice gave different trees")
			}
		})
	}

	expressions := []string{"7 + 3 * (10 / (12 / (3 + 1) - 1))", "- -3", "a - (b - c)", "-x * -(y / 2)"}
	for _, src := range expressions {
		t.Run(src, func(t *testing.T) {
			first := parseExpr(t, src)
			second := parseExpr(t, first.String())
			if !mdwast.Equal(first, second) {
				t.Errorf("Round trip changed the tree: %s vs %s", first, second)
			}
		})
	}
}
