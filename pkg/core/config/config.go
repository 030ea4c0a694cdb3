package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	mdwerror "github.com/msto63/spi/foundation/core/error"
	mdwlog "github.com/msto63/spi/foundation/core/log"
)

// DefaultPath is the config file used when --config is not given
const DefaultPath = "./configs/spi.toml"

// Config holds the complete application configuration
type Config struct {
	General     GeneralConfig     `toml:"general"`
	Interpreter InterpreterConfig `toml:"interpreter"`
	REPL        REPLConfig        `toml:"repl"`
	History     HistoryConfig     `toml:"history"`
	Server      ServerConfig      `toml:"server"`
	GRPC        GRPCConfig        `toml:"grpc"`
	Cache       CacheConfig       `toml:"cache"`
}

// GeneralConfig holds logging settings
type GeneralConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// InterpreterConfig holds evaluation settings
type InterpreterConfig struct {
	MaxInputLength int    `toml:"max_input_length"`
	DefaultMode    string `toml:"default_mode"`
}

// REPLConfig holds interactive shell settings
type REPLConfig struct {
	Prompt     string `toml:"prompt"`
	CalcPrompt string `toml:"calc_prompt"`

	// LogFile receives log output while the shell runs; empty discards it
	LogFile string `toml:"log_file"`
}

// HistoryConfig holds run journal settings
type HistoryConfig struct {
	Enabled   bool   `toml:"enabled"`
	Path      string `toml:"path"`
	ListLimit int    `toml:"list_limit"`
}

// ServerConfig holds websocket endpoint settings
type ServerConfig struct {
	Host         string   `toml:"host"`
	Port         int      `toml:"port"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// GRPCConfig holds evaluator service settings
type GRPCConfig struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
}

// CacheConfig holds the result cache used by the network endpoints
type CacheConfig struct {
	Enabled  bool     `toml:"enabled"`
	MaxItems int      `toml:"max_items"`
	TTL      Duration `toml:"ttl"`
}

// Duration wraps time.Duration for TOML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration
func Default() *Config {
	cfg := &Config{
		History: HistoryConfig{Enabled: true},
		Cache:   CacheConfig{Enabled: true},
	}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML file. Keys missing from the file
// keep their default values; SPI_* environment variables override both.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, mdwerror.Newf("config file not found: %s", path).
			WithCode(mdwerror.CodeNotFound).
			WithDetail("path", path)
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, mdwerror.Wrap(err, "failed to parse config").
			WithCode(mdwerror.CodeConfigError).
			WithDetail("path", path)
	}

	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.expandEnvVars()

	return cfg, nil
}

// LoadOrDefault loads path if it exists and falls back to the defaults
// otherwise. Parse errors in an existing file are still returned.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(os.ExpandEnv(path)); os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.applyEnv(); err != nil {
			return nil, err
		}
		cfg.expandEnvVars()
		return cfg, nil
	}
	return Load(path)
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	// Interpreter
	if c.Interpreter.MaxInputLength == 0 {
		c.Interpreter.MaxInputLength = 64 * 1024
	}
	if c.Interpreter.DefaultMode == "" {
		c.Interpreter.DefaultMode = "program"
	}

	// REPL
	if c.REPL.Prompt == "" {
		c.REPL.Prompt = "spi> "
	}
	if c.REPL.CalcPrompt == "" {
		c.REPL.CalcPrompt = "calc> "
	}

	// History
	if c.History.Path == "" {
		c.History.Path = "./data/spi-history.db"
	}
	if c.History.ListLimit == 0 {
		c.History.ListLimit = 20
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8765
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 60 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 10 * time.Second
	}

	// gRPC
	if c.GRPC.Host == "" {
		c.GRPC.Host = "127.0.0.1"
	}
	if c.GRPC.Port == 0 {
		c.GRPC.Port = 9765
	}

	// Cache
	if c.Cache.MaxItems == 0 {
		c.Cache.MaxItems = 1024
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = 10 * time.Minute
	}
}

// applyEnv applies SPI_* environment overrides
func (c *Config) applyEnv() error {
	strVars := map[string]*string{
		"SPI_LOG_LEVEL":    &c.General.LogLevel,
		"SPI_LOG_FORMAT":   &c.General.LogFormat,
		"SPI_DEFAULT_MODE": &c.Interpreter.DefaultMode,
		"SPI_HISTORY_PATH": &c.History.Path,
		"SPI_SERVER_HOST":  &c.Server.Host,
		"SPI_GRPC_HOST":    &c.GRPC.Host,
	}
	for name, target := range strVars {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*target = v
		}
	}

	intVars := map[string]*int{
		"SPI_MAX_INPUT_LENGTH": &c.Interpreter.MaxInputLength,
		"SPI_SERVER_PORT":      &c.Server.Port,
		"SPI_GRPC_PORT":        &c.GRPC.Port,
	}
	for name, target := range intVars {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError(name, v, err)
		}
		*target = n
	}

	boolVars := map[string]*bool{
		"SPI_HISTORY_ENABLED": &c.History.Enabled,
		"SPI_GRPC_ENABLED":    &c.GRPC.Enabled,
		"SPI_CACHE_ENABLED":   &c.Cache.Enabled,
	}
	for name, target := range boolVars {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError(name, v, err)
		}
		*target = b
	}

	return nil
}

func envError(name, value string, err error) error {
	return mdwerror.Wrap(err, fmt.Sprintf("invalid value for %s", name)).
		WithCode(mdwerror.CodeInvalidConfig).
		WithDetail("variable", name).
		WithDetail("value", value)
}

// expandEnvVars expands environment variables in configuration values
func (c *Config) expandEnvVars() {
	c.History.Path = os.ExpandEnv(c.History.Path)
	if strings.HasPrefix(c.History.Path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			c.History.Path = filepath.Join(home, c.History.Path[2:])
		}
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	var problems []string

	if _, err := mdwlog.ParseLevel(c.General.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("general.log_level: %v", err))
	}
	if _, err := mdwlog.ParseFormat(c.General.LogFormat); err != nil {
		problems = append(problems, fmt.Sprintf("general.log_format: %v", err))
	}
	if c.Interpreter.MaxInputLength < 0 {
		problems = append(problems, "interpreter.max_input_length must not be negative")
	}
	if m := strings.ToLower(c.Interpreter.DefaultMode); m != "program" && m != "calc" {
		problems = append(problems, fmt.Sprintf("interpreter.default_mode: unknown mode %q", c.Interpreter.DefaultMode))
	}
	if c.History.ListLimit < 1 {
		problems = append(problems, "history.list_limit must be positive")
	}
	if c.History.Enabled && c.History.Path == "" {
		problems = append(problems, "history.path is required when history is enabled")
	}
	if !validPort(c.Server.Port) {
		problems = append(problems, fmt.Sprintf("server.port out of range: %d", c.Server.Port))
	}
	if !validPort(c.GRPC.Port) {
		problems = append(problems, fmt.Sprintf("grpc.port out of range: %d", c.GRPC.Port))
	}
	if c.Cache.Enabled && c.Cache.MaxItems < 1 {
		problems = append(problems, "cache.max_items must be positive")
	}
	if c.Cache.TTL.Duration < 0 {
		problems = append(problems, "cache.ttl must not be negative")
	}

	if len(problems) > 0 {
		return mdwerror.New("invalid configuration: "+strings.Join(problems, "; ")).
			WithCode(mdwerror.CodeInvalidConfig).
			WithDetail("problems", problems)
	}
	return nil
}

func validPort(port int) bool {
	return port > 0 && port <= 65535
}

// ServerAddress returns the websocket listen address
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GRPCAddress returns the evaluator service listen address
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.GRPC.Host, c.GRPC.Port)
}
