// ============================================================================
// spi - Simple Pascal Interpreter
// ============================================================================
//
// Package:     repl
// Description: Transcript entries and async messages of the REPL
// Author:      Mike Stoffels
// Created:     2025-12-07
// License:     MIT
// ============================================================================

package repl

import (
	"time"

	"github.com/msto63/spi/foundation/pascal"
)

// EntryKind classifies a transcript line
type EntryKind int

const (
	EntryInput EntryKind = iota
	EntryResult
	EntryError
	EntrySystem
)

// TranscriptEntry is one block of the transcript
type TranscriptEntry struct {
	Kind      EntryKind
	Mode      pascal.Mode
	Content   string
	Timestamp time.Time
	Duration  time.Duration
}

// evalResultMsg is sent when an evaluation finishes
type evalResultMsg struct {
	input  string
	mode   pascal.Mode
	result *pascal.Result
	err    error
}
