// Package error provides structured error handling for the spi interpreter.
//
// Package: error
// Title: spi Error Handling Framework
// Description: Implements a structured error type with codes, severity,
//              operation context, details and a captured stack trace. Core
//              interpreter errors (lexical, syntax, runtime) are lifted into
//              this type at the engine boundary so that shells can render
//              and log them uniformly.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-16
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-16 v0.2.0: Interpreter codes, errors.As based lookups
//
// Usage:
//   import mdwerror "github.com/msto63/spi/foundation/core/error"
//
//   err := mdwerror.Wrap(syntaxErr, "failed to parse program").
//     WithCode(mdwerror.CodePascalSyntax).
//     WithOperation("pascal.Engine.Execute").
//     WithDetail("offset", 12)
//
//   if mdwerror.HasCode(err, mdwerror.CodePascalSyntax) {
//     // point the user at the offending token
//   }
package error
