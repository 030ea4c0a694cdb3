// File: context.go
// Title: Run Context
// Description: Carries the run ID of one evaluation through context.Context
//              so engine log entries can be correlated with journal entries.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial implementation

package pascal

import "context"

type runIDKey struct{}

// ContextWithRunID returns a context carrying runID
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run ID stored in ctx, if any
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
