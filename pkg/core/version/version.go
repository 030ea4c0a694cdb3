// ============================================================================
// spi - Simple Pascal Interpreter
// ============================================================================
//
// Package:     version
// Description: Central version management for spi and its components
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants for spi components
const (
	// Platform version
	Platform = "1.0.0"

	// Component versions
	Language  = "1.0.0"
	Evaluator = "1.0.0"
	Journal   = "1.0.0"
	Websocket = "1.0.0"
)

// Build metadata, set via -ldflags "-X github.com/msto63/spi/pkg/core/version.Commit=..."
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "language":
		return Language
	case "evaluator":
		return Evaluator
	case "journal":
		return Journal
	case "websocket":
		return Websocket
	default:
		return Platform
	}
}

// BuildInfo describes the running binary
type BuildInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Info returns the build information of the running binary
func Info() BuildInfo {
	return BuildInfo{
		Version:   Platform,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a one-line summary
func (b BuildInfo) String() string {
	return fmt.Sprintf("spi %s (commit %s, built %s, %s %s)",
		b.Version, b.Commit, b.BuildDate, b.GoVersion, b.Platform)
}
