// File: doc.go
// Title: Pascal AST Package Documentation
// Description: Abstract syntax tree for the Pascal subset evaluated by spi.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial AST with printer, equality and YAML dump

/*
Package ast defines the syntax tree produced by the pascal parser.

The node set is closed: Node carries an unexported marker method, so only
the types declared here implement it. Consumers dispatch with a type switch
over

  • Num       integer literal, kept as its digit string
  • Var       variable reference
  • UnaryOp   sign applied to an operand
  • BinOp     + - * / over two operands
  • Assign    variable := expression
  • Compound  BEGIN ... END statement list
  • NoOp      empty statement

Nodes are built bottom-up by the parser and never mutated afterwards.
String renders canonical source that parses back to an Equal tree; Dump
renders the tree as YAML for inspection.
*/
package ast
