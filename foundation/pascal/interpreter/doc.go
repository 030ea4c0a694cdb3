// File: doc.go
// Title: Pascal Interpreter Package Documentation
// Description: Tree-walking evaluator for the Pascal subset evaluated by spi.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial evaluator

/*
Package interpreter evaluates ast trees.

Evaluation dispatches with a single type switch over the closed ast node
set. Variables live in an explicit Environment: one flat scope per run,
created by Run and returned to the caller, so assignments inside nested
BEGIN ... END blocks are visible everywhere.

Arithmetic is int64. Addition, subtraction, multiplication, negation and
division are checked for overflow; division truncates toward zero. Failures
are *RuntimeError values that match ErrUndefinedVariable, ErrDivisionByZero
or ErrIntegerOverflow with errors.Is. A node outside the ast package's set
is a programming error and panics.
*/
package interpreter
