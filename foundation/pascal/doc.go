// File: doc.go
// Title: Pascal Engine Package Documentation
// Description: High-level entry point that runs source text through the
//              lexer, parser and evaluator.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial engine

/*
Package pascal evaluates programs written in a small Pascal subset.

	engine := pascal.New(pascal.Options{Logger: logger})

	res, err := engine.Execute(ctx, pascal.ModeProgram, "BEGIN a := 2; b := a * 3 END.")
	// res.Bindings: a = 2, b = 6

	res, err = engine.Execute(ctx, pascal.ModeCalc, "7 + 3 * (10 / (12 / (3 + 1) - 1))")
	// *res.Value: 22

Failures are *error.Error values from foundation/core/error carrying
CodePascalLex, CodePascalSyntax or CodePascalRuntime together with offset
details. The typed errors of the parser and interpreter packages remain
reachable with errors.As.

Every Execute call evaluates in a fresh environment; nothing persists
between calls.
*/
package pascal
