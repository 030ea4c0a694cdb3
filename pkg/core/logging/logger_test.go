package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mdwerror "github.com/msto63/spi/foundation/core/error"
	mdwlog "github.com/msto63/spi/foundation/core/log"
	"github.com/msto63/spi/pkg/core/config"
)

func TestLevel_Constants(t *testing.T) {
	if LevelDebug != 0 {
		t.Errorf("LevelDebug = %d, want 0", LevelDebug)
	}
	if LevelInfo != 1 {
		t.Errorf("LevelInfo = %d, want 1", LevelInfo)
	}
	if LevelWarn != 2 {
		t.Errorf("LevelWarn = %d, want 2", LevelWarn)
	}
	if LevelError != 3 {
		t.Errorf("LevelError = %d, want 3", LevelError)
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	logger := New("test-service")

	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if logger.Name() != "test-service" {
		t.Errorf("name = %v, want test-service", logger.Name())
	}
}

func TestLogger_WithLevel(t *testing.T) {
	logger := New("test")
	result := logger.WithLevel(LevelDebug)

	if result.Name() != "test" {
		t.Errorf("name should be preserved: got %v", result.Name())
	}
	if !result.IsLevelEnabled(mdwlog.LevelDebug) {
		t.Error("WithLevel(LevelDebug) should enable debug")
	}
	if logger.IsLevelEnabled(mdwlog.LevelDebug) {
		t.Error("WithLevel should not modify the original logger")
	}
}

func TestLogger_KeyValues(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(LoggerConfig{Level: "debug", Format: "text", Output: &buf})
	logger := Wrap(base, "grpc")

	logger.Info("request handled", "method", "/spi.v1.Evaluator/Evaluate", "code", "OK", "orphan")

	out := buf.String()
	if !strings.Contains(out, "{grpc} request handled [code=OK method=/spi.v1.Evaluator/Evaluate]") {
		t.Errorf("Unexpected output: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected mdwlog.Level
	}{
		{"trace", mdwlog.LevelTrace},
		{"debug", mdwlog.LevelDebug},
		{"info", mdwlog.LevelInfo},
		{"warn", mdwlog.LevelWarn},
		{"warning", mdwlog.LevelWarn},
		{" error ", mdwlog.LevelError},
		{"invalid", mdwlog.LevelInfo},
		{"", mdwlog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig("my-service")

	if cfg.ServiceName != "my-service" {
		t.Errorf("ServiceName = %v, want my-service", cfg.ServiceName)
	}
	if cfg.Level != "info" {
		t.Errorf("Level = %v, want info", cfg.Level)
	}
	if cfg.Format != "text" {
		t.Errorf("Format = %v, want text", cfg.Format)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.General.LogLevel = "warn"
	cfg.General.LogFormat = "json"

	lc := FromConfig("spi", cfg, false)
	if lc.Level != "warn" || lc.Format != "json" || lc.Verbose {
		t.Errorf("FromConfig() = %+v", lc)
	}

	lc = FromConfig("spi", nil, true)
	if lc.Level != "info" || !lc.Verbose {
		t.Errorf("FromConfig(nil) = %+v", lc)
	}
}

func TestNewLogger_Verbose(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		verbose  bool
		expected mdwlog.Level
	}{
		{"info stays info", "info", false, mdwlog.LevelInfo},
		{"verbose lowers to debug", "warn", true, mdwlog.LevelDebug},
		{"verbose keeps trace", "trace", true, mdwlog.LevelTrace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(LoggerConfig{Level: tt.level, Verbose: tt.verbose, Output: &bytes.Buffer{}})
			if logger.GetLevel() != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, logger.GetLevel())
			}
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{
		ServiceName: "spi",
		Level:       "info",
		Format:      "json",
		Output:      &buf,
	})

	logger.Info("ready", mdwlog.Field("mode", "calc"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["logger"] != "spi" || entry["message"] != "ready" || entry["mode"] != "calc" {
		t.Errorf("Unexpected entry: %v", entry)
	}
}

func TestNewLogger_AdditionalOutputs(t *testing.T) {
	var primary, extra bytes.Buffer
	logger := NewLogger(LoggerConfig{
		Level:             "info",
		Format:            "unknown-format",
		Output:            &primary,
		AdditionalOutputs: []io.Writer{&extra},
	})

	logger.Info("twice")

	if !strings.Contains(primary.String(), "[INF] twice") {
		t.Errorf("Expected text fallback in primary, got %q", primary.String())
	}
	if primary.String() != extra.String() {
		t.Errorf("Expected identical outputs, got %q and %q", primary.String(), extra.String())
	}
}

func TestRedirect(t *testing.T) {
	var console bytes.Buffer
	base := NewLogger(LoggerConfig{Level: "info", Output: &console})

	discarded, closer, err := Redirect(base, "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	discarded.Info("hidden")
	if err := closer.Close(); err != nil {
		t.Errorf("Expected nil from Close, got %v", err)
	}
	if console.Len() != 0 {
		t.Errorf("Expected nothing on the console, got %q", console.String())
	}

	path := filepath.Join(t.TempDir(), "repl.log")
	toFile, closer, err := Redirect(base, path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	toFile.Info("kept")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "[INF] kept") {
		t.Errorf("Expected log line in file, got %q", string(data))
	}
	if console.Len() != 0 {
		t.Errorf("Expected nothing on the console, got %q", console.String())
	}

	base.Info("visible")
	if !strings.Contains(console.String(), "visible") {
		t.Errorf("Expected base logger unchanged, got %q", console.String())
	}

	_, _, err = Redirect(base, filepath.Join(t.TempDir(), "missing", "repl.log"))
	if !mdwerror.HasCode(err, mdwerror.CodeConfigError) {
		t.Errorf("Expected CodeConfigError, got %v", err)
	}
}

func TestToFields(t *testing.T) {
	fields := toFields()
	if fields != nil {
		t.Error("toFields() with no args should return nil")
	}

	fields = toFields("key1", "value1", "key2", 42)
	if fields["key1"] != "value1" {
		t.Errorf("fields[key1] = %v, want value1", fields["key1"])
	}
	if fields["key2"] != 42 {
		t.Errorf("fields[key2] = %v, want 42", fields["key2"])
	}

	fields = toFields(123, "value")
	if len(fields) != 0 {
		t.Errorf("Non-string key should be skipped, got %v fields", len(fields))
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	logger := Wrap(NewLogger(LoggerConfig{Output: &bytes.Buffer{}}), "benchmark")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", "iteration", i)
	}
}
