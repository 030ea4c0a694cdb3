// File: ast_test.go
// Title: AST Unit Tests
// Description: Tests the canonical printer, structural equality, traversal
//              and the YAML dump.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial AST test suite

package ast

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func num(lit string) *Num { return &Num{Literal: lit} }

func sampleProgram() *Compound {
	// BEGIN a := -3 + x; BEGIN END END.
	return &Compound{
		Statements: []Node{
			&Assign{
				Target: &Var{Name: "a"},
				Value: &BinOp{
					Op:    OpAdd,
					Left:  &UnaryOp{Op: OpSub, Operand: num("3")},
					Right: &Var{Name: "x"},
				},
			},
			&Compound{Statements: []Node{&NoOp{}}},
		},
	}
}

func TestPrinter(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"Literal", num("42"), "42"},
		{"Unary", &UnaryOp{Op: OpSub, Operand: &UnaryOp{Op: OpSub, Operand: num("3")}}, "--3"},
		{"Binary", &BinOp{Op: OpDiv, Left: num("7"), Right: num("2")}, "(7 / 2)"},
		{"Assign", &Assign{Target: &Var{Name: "x"}, Value: num("1")}, "x := 1"},
		{"Empty compound", &Compound{Statements: []Node{&NoOp{}}}, "BEGIN  END"},
		{"Program", sampleProgram(), "BEGIN a := (-3 + x); BEGIN  END END"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.String(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}

	if got := FormatProgram(sampleProgram()); !strings.HasSuffix(got, "END END.") {
		t.Errorf("Expected program to end with a dot, got %q", got)
	}
}

func TestEqualIgnoresPositions(t *testing.T) {
	a := &BinOp{Op: OpMul, Left: num("2"), Right: &Var{Name: "y"}, At: Position{Offset: 0}}
	b := &BinOp{Op: OpMul, Left: &Num{Literal: "2", At: Position{Offset: 9}}, Right: &Var{Name: "y", At: Position{Line: 4}}}

	if !Equal(a, b) {
		t.Error("Expected trees differing only in position to be equal")
	}
	if !Equal(sampleProgram(), sampleProgram()) {
		t.Error("Expected identical programs to be equal")
	}
}

func TestEqualDetectsDifferences(t *testing.T) {
	tests := []struct {
		name string
		a, b Node
	}{
		{"Literal", num("1"), num("2")},
		{"Kind", num("1"), &Var{Name: "1"}},
		{"Operator", &BinOp{Op: OpAdd, Left: num("1"), Right: num("2")}, &BinOp{Op: OpSub, Left: num("1"), Right: num("2")}},
		{"Unary operator", &UnaryOp{Op: OpAdd, Operand: num("1")}, &UnaryOp{Op: OpSub, Operand: num("1")}},
		{"Target", &Assign{Target: &Var{Name: "a"}, Value: num("1")}, &Assign{Target: &Var{Name: "b"}, Value: num("1")}},
		{"Statement count", &Compound{Statements: []Node{&NoOp{}}}, &Compound{Statements: []Node{&NoOp{}, &NoOp{}}}},
		{"Nil", num("1"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Equal(tt.a, tt.b) {
				t.Errorf("Expected %v and %v to differ", tt.a, tt.b)
			}
		})
	}

	if !Equal(nil, nil) {
		t.Error("Expected nil trees to be equal")
	}
}

func TestInspect(t *testing.T) {
	var kinds []Kind
	Inspect(sampleProgram(), func(n Node) bool {
		kinds = append(kinds, n.Kind())
		return true
	})

	want := []Kind{KindCompound, KindAssign, KindVar, KindBinOp, KindUnaryOp, KindNum, KindVar, KindCompound, KindNoOp}
	if len(kinds) != len(want) {
		t.Fatalf("Expected %d nodes, got %d: %v", len(want), len(kinds), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("Node %d: expected %s, got %s", i, want[i], kinds[i])
		}
	}

	if Count(sampleProgram()) != len(want) {
		t.Errorf("Expected Count %d, got %d", len(want), Count(sampleProgram()))
	}

	skipped := 0
	Inspect(sampleProgram(), func(n Node) bool {
		skipped++
		return n.Kind() != KindAssign
	})
	if skipped != 4 {
		t.Errorf("Expected 4 visits when skipping assignment children, got %d", skipped)
	}
}

func TestDump(t *testing.T) {
	out, err := Dump(sampleProgram(), DumpOptions{})
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !strings.HasPrefix(string(out), "kind: Compound\n") {
		t.Errorf("Expected kind to come first, got:\n%s", out)
	}

	var decoded struct {
		Kind       string `yaml:"kind"`
		Statements []struct {
			Kind   string `yaml:"kind"`
			Target string `yaml:"target"`
			Value  struct {
				Kind string `yaml:"kind"`
				Op   string `yaml:"op"`
				Left struct {
					Op      string `yaml:"op"`
					Operand struct {
						Value int64 `yaml:"value"`
					} `yaml:"operand"`
				} `yaml:"left"`
				Right struct {
					Name string `yaml:"name"`
				} `yaml:"right"`
			} `yaml:"value"`
		} `yaml:"statements"`
	}
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Dump output is not valid YAML: %v\n%s", err, out)
	}

	if len(decoded.Statements) != 2 {
		t.Fatalf("Expected 2 statements, got %d", len(decoded.Statements))
	}
	assign := decoded.Statements[0]
	if assign.Kind != "Assign" || assign.Target != "a" {
		t.Errorf("Unexpected assignment: %+v", assign)
	}
	if assign.Value.Op != "+" || assign.Value.Left.Op != "-" || assign.Value.Left.Operand.Value != 3 {
		t.Errorf("Unexpected expression: %+v", assign.Value)
	}
	if assign.Value.Right.Name != "x" {
		t.Errorf("Expected right operand x, got %q", assign.Value.Right.Name)
	}
}

func TestDumpPositions(t *testing.T) {
	out, err := Dump(&Var{Name: "x", At: Position{Offset: 8, Line: 2, Column: 3}}, DumpOptions{Positions: true})
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !strings.HasPrefix(string(out), "kind: Var\nat: ") {
		t.Errorf("Expected position right after kind, got:\n%s", out)
	}

	var decoded map[string]string
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Dump output is not valid YAML: %v", err)
	}
	if decoded["at"] != "2:3" || decoded["name"] != "x" {
		t.Errorf("Unexpected dump: %v", decoded)
	}
}
