// File: codes.go
// Title: Error Codes
// Description: Structured error codes used across spi. Codes group errors
//              into categories that shells use to pick a message style and
//              that the engine uses to derive a severity.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-16
//
// Change History:
// - 2025-01-24 v0.1.0: Initial code set
// - 2026-10-16 v0.2.0: Replaced service codes with interpreter codes

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeCanceled     Code = "CANCELED"

	// Storage
	CodeDatabaseError    Code = "DATABASE_ERROR"
	CodeConnectionFailed Code = "CONNECTION_FAILED"

	// Interpreter pipeline
	CodePascalLex     Code = "PASCAL_LEX"
	CodePascalSyntax  Code = "PASCAL_SYNTAX"
	CodePascalRuntime Code = "PASCAL_RUNTIME"

	// Configuration and environment
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeInvalidConfig Code = "INVALID_CONFIG"

	// Validation
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeInvalidLength    Code = "INVALID_LENGTH"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known valid code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput, CodeCanceled,
		CodeDatabaseError, CodeConnectionFailed,
		CodePascalLex, CodePascalSyntax, CodePascalRuntime,
		CodeConfigError, CodeInvalidConfig,
		CodeValidationFailed, CodeInvalidLength:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeDatabaseError, CodeConnectionFailed:
		return "storage"
	case CodePascalLex, CodePascalSyntax, CodePascalRuntime:
		return "pascal"
	case CodeConfigError, CodeInvalidConfig:
		return "configuration"
	case CodeValidationFailed, CodeInvalidLength:
		return "validation"
	default:
		return "generic"
	}
}

// IsUserError reports whether the code describes a problem with the
// submitted program or input rather than with spi itself.
func (c Code) IsUserError() bool {
	switch c {
	case CodePascalLex, CodePascalSyntax, CodePascalRuntime,
		CodeInvalidInput, CodeValidationFailed, CodeInvalidLength:
		return true
	default:
		return false
	}
}
