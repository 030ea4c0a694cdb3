package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mdwerror "github.com/msto63/spi/foundation/core/error"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"milliseconds", "100ms", 100 * time.Millisecond, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestDuration_MarshalText(t *testing.T) {
	d := Duration{5 * time.Minute}
	result, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}
	if string(result) != "5m0s" {
		t.Errorf("MarshalText() = %v, want 5m0s", string(result))
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.General.LogLevel != "info" || cfg.General.LogFormat != "text" {
		t.Errorf("General = %+v, want info/text", cfg.General)
	}
	if cfg.Interpreter.DefaultMode != "program" {
		t.Errorf("Interpreter.DefaultMode = %v, want program", cfg.Interpreter.DefaultMode)
	}
	if cfg.Interpreter.MaxInputLength != 64*1024 {
		t.Errorf("Interpreter.MaxInputLength = %v, want 65536", cfg.Interpreter.MaxInputLength)
	}
	if !cfg.History.Enabled {
		t.Error("History should be enabled by default")
	}
	if cfg.GRPC.Enabled {
		t.Error("gRPC should be disabled by default")
	}
	if !cfg.Cache.Enabled || cfg.Cache.MaxItems != 1024 || cfg.Cache.TTL.Duration != 10*time.Minute {
		t.Errorf("Cache = %+v, want enabled/1024/10m", cfg.Cache)
	}
	if cfg.ServerAddress() != "127.0.0.1:8765" {
		t.Errorf("ServerAddress() = %v, want 127.0.0.1:8765", cfg.ServerAddress())
	}
	if cfg.GRPCAddress() != "127.0.0.1:9765" {
		t.Errorf("GRPCAddress() = %v, want 127.0.0.1:9765", cfg.GRPCAddress())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/spi.toml")
	if !mdwerror.HasCode(err, mdwerror.CodeNotFound) {
		t.Errorf("Load() expected CodeNotFound, got %v", err)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "spi.toml")

	configContent := `
[general]
log_level = "debug"

[interpreter]
default_mode = "calc"

[history]
enabled = false

[server]
port = 9999
read_timeout = "5s"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.LogLevel != "debug" {
		t.Errorf("General.LogLevel = %v, want debug", cfg.General.LogLevel)
	}
	if cfg.Interpreter.DefaultMode != "calc" {
		t.Errorf("Interpreter.DefaultMode = %v, want calc", cfg.Interpreter.DefaultMode)
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want false from file")
	}
	if cfg.Server.Port != 9999 || cfg.Server.ReadTimeout.Duration != 5*time.Second {
		t.Errorf("Server = %+v, want port 9999 and 5s timeout", cfg.Server)
	}

	// Defaults for keys missing from the file
	if cfg.General.LogFormat != "text" {
		t.Errorf("General.LogFormat = %v, want text (default)", cfg.General.LogFormat)
	}
	if cfg.REPL.Prompt != "spi> " {
		t.Errorf("REPL.Prompt = %q, want default", cfg.REPL.Prompt)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "spi.toml")
	if err := os.WriteFile(configPath, []byte("[general\nlog_level ="), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	if _, err := Load(configPath); !mdwerror.HasCode(err, mdwerror.CodeConfigError) {
		t.Errorf("Load() expected CodeConfigError, got %v", err)
	}
	if _, err := LoadOrDefault(configPath); err == nil {
		t.Error("LoadOrDefault() should not hide parse errors")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Server.Port != 8765 {
		t.Errorf("Server.Port = %v, want default", cfg.Server.Port)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SPI_LOG_LEVEL", "warn")
	t.Setenv("SPI_SERVER_PORT", "7000")
	t.Setenv("SPI_GRPC_ENABLED", "true")
	t.Setenv("SPI_HISTORY_PATH", "$SPI_TEST_DIR/journal.db")
	t.Setenv("SPI_TEST_DIR", "/tmp/spi-test")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}

	if cfg.General.LogLevel != "warn" {
		t.Errorf("General.LogLevel = %v, want warn", cfg.General.LogLevel)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %v, want 7000", cfg.Server.Port)
	}
	if !cfg.GRPC.Enabled {
		t.Error("GRPC.Enabled = false, want true")
	}
	if cfg.History.Path != "/tmp/spi-test/journal.db" {
		t.Errorf("History.Path = %v, want expanded path", cfg.History.Path)
	}
}

func TestEnvOverrides_Invalid(t *testing.T) {
	t.Setenv("SPI_SERVER_PORT", "eighty")

	_, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
	if !mdwerror.HasCode(err, mdwerror.CodeInvalidConfig) {
		t.Errorf("Expected CodeInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		problem string
	}{
		{"bad level", func(c *Config) { c.General.LogLevel = "loud" }, "general.log_level"},
		{"bad format", func(c *Config) { c.General.LogFormat = "xml" }, "general.log_format"},
		{"bad mode", func(c *Config) { c.Interpreter.DefaultMode = "repl" }, "interpreter.default_mode"},
		{"negative length", func(c *Config) { c.Interpreter.MaxInputLength = -1 }, "max_input_length"},
		{"zero list limit", func(c *Config) { c.History.ListLimit = 0 }, "history.list_limit"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"grpc port", func(c *Config) { c.GRPC.Port = -5 }, "grpc.port"},
		{"empty cache", func(c *Config) { c.Cache.MaxItems = -1 }, "cache.max_items"},
		{"negative ttl", func(c *Config) { c.Cache.TTL.Duration = -time.Second }, "cache.ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !mdwerror.HasCode(err, mdwerror.CodeInvalidConfig) {
				t.Fatalf("Expected CodeInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.problem) {
				t.Errorf("Expected %q in %q", tt.problem, err.Error())
			}
		})
	}
}
