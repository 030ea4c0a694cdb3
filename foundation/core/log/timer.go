// File: timer.go
// Title: Performance Timer
// Description: Measures pipeline stages (lex, parse, evaluate, journal
//              writes) and logs their duration through the owning logger.
// Author: msto63
// Version: v0.2.1
// Created: 2025-01-24
// Modified: 2026-10-16
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with performance timing
// - 2026-10-16 v0.2.0: Durations travel on the entry, checkpoints at trace level
// - 2026-10-16 v0.2.1: Rejected input logs failures at the timer level

package log

import (
	"time"

	mdwerror "github.com/msto63/spi/foundation/core/error"
)

// Timer represents a performance timer for measuring operation duration
type Timer struct {
	logger    *Logger
	operation string
	startTime time.Time
	fields    Fields
	level     Level
	stopped   bool
}

// NewTimer creates a new timer for the given operation
func NewTimer(logger *Logger, operation string) *Timer {
	return &Timer{
		logger:    logger,
		operation: operation,
		startTime: time.Now(),
		fields:    make(Fields),
		level:     LevelDebug,
	}
}

// WithLevel sets the log level for the timer completion message
func (t *Timer) WithLevel(level Level) *Timer {
	t.level = level
	return t
}

// WithField adds a field to be logged when the timer completes
func (t *Timer) WithField(key string, value interface{}) *Timer {
	t.fields[key] = value
	return t
}

// Elapsed returns the elapsed time since the timer was started
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.startTime)
}

// Stop stops the timer and logs the elapsed time
func (t *Timer) Stop() time.Duration {
	if t.stopped {
		return 0
	}
	elapsed := t.Elapsed()
	t.stopped = true

	if t.logger != nil {
		t.logger.log(t.level, t.operation+" completed", nil, elapsed,
			t.fields, Fields{"operation": t.operation})
	}
	return elapsed
}

// StopWithError stops the timer and logs err with the elapsed time. Errors in
// the submitted input log at the timer's own level, others by severity.
func (t *Timer) StopWithError(err error) time.Duration {
	if t.stopped {
		return 0
	}
	elapsed := t.Elapsed()
	t.stopped = true

	if t.logger != nil {
		level := LevelError
		switch {
		case err == nil:
		case mdwerror.GetCode(err).IsUserError():
			level = t.level
		default:
			level = LevelForSeverity(mdwerror.GetSeverity(err))
		}
		t.logger.log(level, t.operation+" failed", err, elapsed,
			t.fields, Fields{"operation": t.operation, "success": false})
	}
	return elapsed
}

// Checkpoint logs an intermediate timing checkpoint
func (t *Timer) Checkpoint(name string, fields ...Fields) {
	if t.stopped || t.logger == nil {
		return
	}
	base := Fields{
		"operation":  t.operation,
		"checkpoint": name,
		"elapsed":    t.Elapsed().String(),
	}
	t.logger.log(LevelTrace, t.operation+" checkpoint: "+name, nil, 0,
		append([]Fields{t.fields, base}, fields...)...)
}

// Cancel cancels the timer without logging completion
func (t *Timer) Cancel() {
	t.stopped = true
}

// IsRunning returns true if the timer is still running
func (t *Timer) IsRunning() bool {
	return !t.stopped
}
