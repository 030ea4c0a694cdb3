// File: severity.go
// Title: Error Severity Levels
// Description: Severity levels for errors and the mapping from error codes
//              to a default severity. The logger uses severity to pick the
//              level an error is reported at.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-16
//
// Change History:
// - 2025-01-24 v0.1.0: Initial severity levels
// - 2026-10-16 v0.2.0: Severity mapping for interpreter codes

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow is a problem with user input: a bad program, a typo.
	SeverityLow Severity = iota

	// SeverityMedium affects an operation but the process keeps working.
	SeverityMedium

	// SeverityHigh is a failure of a subsystem such as the run journal.
	SeverityHigh

	// SeverityCritical means spi cannot continue.
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should trigger alerts
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode determines appropriate severity level based on error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeInternal:
		return SeverityCritical
	case CodeDatabaseError, CodeConnectionFailed, CodeConfigError, CodeInvalidConfig:
		return SeverityHigh
	case CodePascalLex, CodePascalSyntax, CodePascalRuntime,
		CodeInvalidInput, CodeNotFound, CodeValidationFailed, CodeInvalidLength:
		return SeverityLow
	default:
		return SeverityMedium
	}
}
