// Package log provides structured logging for spi.
//
// Package: log
// Title: spi Structured Logging
// Description: Structured logger with levels, immutable context cloning,
//              four output formats and stage timers. Integrates with the
//              spi error package so that coded errors are logged at a level
//              derived from their severity.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-16
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging and error integration
// - 2026-10-16 v0.2.0: Run IDs replace request/user context, stderr default output
//
// Usage:
//   import mdwlog "github.com/msto63/spi/foundation/core/log"
//
//   logger := mdwlog.New().
//     WithLevel(mdwlog.LevelDebug).
//     WithFormat(mdwlog.FormatText).
//     WithField("component", "pascal-engine").
//     WithRunID(runID)
//
//   logger.Debug("Parsing program", mdwlog.Fields{"length": len(src)})
//
//   timer := logger.StartTimer("pascal.evaluate")
//   // ... evaluate
//   timer.Stop()
package log
