// File: errors.go
// Title: Runtime Errors
// Description: Typed evaluation failures with errors.Is sentinels.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial implementation

package interpreter

import (
	"errors"
	"fmt"

	mdwast "github.com/msto63/spi/foundation/pascal/ast"
)

// Sentinels matched by *RuntimeError through errors.Is
var (
	ErrUndefinedVariable = errors.New("undefined variable")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrIntegerOverflow   = errors.New("integer overflow")
)

// ErrNotExpression is returned by Calc for statement nodes
var ErrNotExpression = errors.New("interpreter: node yields no value")

// RuntimeErrorKind classifies a runtime error
type RuntimeErrorKind int

const (
	UndefinedVariable RuntimeErrorKind = iota + 1
	DivisionByZero
	IntegerOverflow
)

// String returns the kind name
func (k RuntimeErrorKind) String() string {
	switch k {
	case UndefinedVariable:
		return "UndefinedVariable"
	case DivisionByZero:
		return "DivisionByZero"
	case IntegerOverflow:
		return "IntegerOverflow"
	default:
		return fmt.Sprintf("RuntimeErrorKind(%d)", int(k))
	}
}

// RuntimeError reports a failed evaluation
type RuntimeError struct {
	Kind RuntimeErrorKind
	Name string // variable name for UndefinedVariable
	Pos  mdwast.Position
}

func (e *RuntimeError) Error() string {
	switch e.Kind {
	case UndefinedVariable:
		return fmt.Sprintf("undefined variable %q at offset %d", e.Name, e.Pos.Offset)
	case DivisionByZero:
		return fmt.Sprintf("division by zero at offset %d", e.Pos.Offset)
	case IntegerOverflow:
		return fmt.Sprintf("integer overflow at offset %d", e.Pos.Offset)
	default:
		return fmt.Sprintf("runtime error %s at offset %d", e.Kind, e.Pos.Offset)
	}
}

// Is matches the sentinel for the error kind
func (e *RuntimeError) Is(target error) bool {
	switch target {
	case ErrUndefinedVariable:
		return e.Kind == UndefinedVariable
	case ErrDivisionByZero:
		return e.Kind == DivisionByZero
	case ErrIntegerOverflow:
		return e.Kind == IntegerOverflow
	}
	return false
}
