// File: equal.go
// Title: Structural Equality and Traversal
// Description: Position-insensitive tree comparison and a depth-first
//              traversal helper.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial implementation

package ast

import "fmt"

// Equal reports whether a and b are the same tree, ignoring positions
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch x := a.(type) {
	case *Num:
		return x.Literal == b.(*Num).Literal
	case *Var:
		return x.Name == b.(*Var).Name
	case *UnaryOp:
		y := b.(*UnaryOp)
		return x.Op == y.Op && Equal(x.Operand, y.Operand)
	case *BinOp:
		y := b.(*BinOp)
		return x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Assign:
		y := b.(*Assign)
		return Equal(x.Target, y.Target) && Equal(x.Value, y.Value)
	case *Compound:
		y := b.(*Compound)
		if len(x.Statements) != len(y.Statements) {
			return false
		}
		for i := range x.Statements {
			if !Equal(x.Statements[i], y.Statements[i]) {
				return false
			}
		}
		return true
	case *NoOp:
		return true
	default:
		panic(fmt.Sprintf("ast: unhandled node kind %T", a))
	}
}

// Inspect traverses the tree depth-first in source order, calling fn for
// each node. Children are skipped when fn returns false.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	switch x := n.(type) {
	case *UnaryOp:
		Inspect(x.Operand, fn)
	case *BinOp:
		Inspect(x.Left, fn)
		Inspect(x.Right, fn)
	case *Assign:
		Inspect(x.Target, fn)
		Inspect(x.Value, fn)
	case *Compound:
		for _, stmt := range x.Statements {
			Inspect(stmt, fn)
		}
	}
}

// Count returns the number of nodes in the tree
func Count(n Node) int {
	count := 0
	Inspect(n, func(Node) bool {
		count++
		return true
	})
	return count
}
