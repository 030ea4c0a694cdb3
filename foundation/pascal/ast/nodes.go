// File: nodes.go
// Title: Pascal AST Node Definitions
// Description: Sealed node interface and the seven node kinds of the
//              language, plus source positions and operators.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial node set

package ast

import (
	"fmt"
	"strings"
)

// Position is a location in the source text
type Position struct {
	Offset int // 0-based byte offset
	Line   int // 1-based
	Column int // 1-based, in bytes
}

// String returns a human-readable position
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Kind names a node variant
type Kind string

const (
	KindNum      Kind = "Num"
	KindVar      Kind = "Var"
	KindUnaryOp  Kind = "UnaryOp"
	KindBinOp    Kind = "BinOp"
	KindAssign   Kind = "Assign"
	KindCompound Kind = "Compound"
	KindNoOp     Kind = "NoOp"
)

// Kinds lists every node variant
var Kinds = []Kind{KindNum, KindVar, KindUnaryOp, KindBinOp, KindAssign, KindCompound, KindNoOp}

// Node is implemented by every syntax tree node
type Node interface {
	Kind() Kind
	Pos() Position
	String() string

	node()
}

// Operator is an arithmetic operator
type Operator byte

const (
	OpAdd Operator = '+'
	OpSub Operator = '-'
	OpMul Operator = '*'
	OpDiv Operator = '/'
)

// String returns the operator symbol
func (o Operator) String() string {
	return string(rune(o))
}

// Num is an unsigned integer literal
type Num struct {
	Literal string
	At      Position
}

// Var is a variable reference
type Var struct {
	Name string
	At   Position
}

// UnaryOp applies + or - to its operand
type UnaryOp struct {
	Op      Operator
	Operand Node
	At      Position
}

// BinOp applies an arithmetic operator to two operands
type BinOp struct {
	Op    Operator
	Left  Node
	Right Node
	At    Position
}

// Assign binds the value of an expression to a variable
type Assign struct {
	Target *Var
	Value  Node
	At     Position
}

// Compound is a BEGIN ... END block
type Compound struct {
	Statements []Node
	At         Position
}

// NoOp is the empty statement
type NoOp struct {
	At Position
}

func (*Num) node()      {}
func (*Var) node()      {}
func (*UnaryOp) node()  {}
func (*BinOp) node()    {}
func (*Assign) node()   {}
func (*Compound) node() {}
func (*NoOp) node()     {}

func (*Num) Kind() Kind      { return KindNum }
func (*Var) Kind() Kind      { return KindVar }
func (*UnaryOp) Kind() Kind  { return KindUnaryOp }
func (*BinOp) Kind() Kind    { return KindBinOp }
func (*Assign) Kind() Kind   { return KindAssign }
func (*Compound) Kind() Kind { return KindCompound }
func (*NoOp) Kind() Kind     { return KindNoOp }

func (n *Num) Pos() Position      { return n.At }
func (n *Var) Pos() Position      { return n.At }
func (n *UnaryOp) Pos() Position  { return n.At }
func (n *BinOp) Pos() Position    { return n.At }
func (n *Assign) Pos() Position   { return n.At }
func (n *Compound) Pos() Position { return n.At }
func (n *NoOp) Pos() Position     { return n.At }

// String implementations render canonical source. Binary operations are
// always parenthesized so the output parses back to the same tree.

func (n *Num) String() string { return n.Literal }

func (n *Var) String() string { return n.Name }

func (n *UnaryOp) String() string {
	return n.Op.String() + n.Operand.String()
}

func (n *BinOp) String() string {
	return "(" + n.Left.String() + " " + n.Op.String() + " " + n.Right.String() + ")"
}

func (n *Assign) String() string {
	return n.Target.String() + " := " + n.Value.String()
}

func (n *Compound) String() string {
	parts := make([]string, len(n.Statements))
	for i, stmt := range n.Statements {
		parts[i] = stmt.String()
	}
	return "BEGIN " + strings.Join(parts, "; ") + " END"
}

func (n *NoOp) String() string { return "" }

// FormatProgram renders a complete program, including the final dot
func FormatProgram(program *Compound) string {
	return program.String() + "."
}
