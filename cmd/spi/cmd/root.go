package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	mdwerror "github.com/msto63/spi/foundation/core/error"
	mdwlog "github.com/msto63/spi/foundation/core/log"
	"github.com/msto63/spi/foundation/pascal"
	"github.com/msto63/spi/internal/history"
	"github.com/msto63/spi/internal/tui/repl"
	"github.com/msto63/spi/pkg/core/config"
	"github.com/msto63/spi/pkg/core/logging"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	cfgFile      string
	verbose      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "spi",
	Short: "spi - Simple Pascal Interpreter",
	Long: `spi interprets a small Pascal subset: integer expressions, assignments
and nested BEGIN ... END blocks.

Modes:
  program  - BEGIN ... END. programs, prints the final variables
  calc     - a single integer expression, prints its value

Shells:
  run, calc, tokens, ast  - one-shot evaluation
  repl                    - interactive terminal shell
  serve                   - WebSocket and gRPC endpoints
  remote                  - evaluate on a running gRPC server
  history                 - inspect the run journal`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch outputFormat {
		case "text", "yaml", "json":
			return nil
		default:
			return mdwerror.Newf("unknown output format %q", outputFormat).
				WithCode(mdwerror.CodeInvalidInput)
		}
	},
}

// Execute runs the root command and prints a failing command's error
func Execute() error {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format: text, yaml or json")
}

// evalError is returned after the error has been rendered with its source
// excerpt, so Execute does not print it twice
type evalError struct {
	err error
}

func (e *evalError) Error() string { return e.err.Error() }
func (e *evalError) Unwrap() error { return e.err }

func printError(err error) {
	if _, ok := err.(*evalError); ok {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// reportEvalError prints err with the offending source line and wraps it so
// it is reported only once
func reportEvalError(input string, err error) error {
	fmt.Fprintln(os.Stderr, repl.FormatError(input, err))
	return &evalError{err: err}
}

// env bundles what every evaluating command needs
type env struct {
	config  *config.Config
	logger  *mdwlog.Logger
	engine  *pascal.Engine
	store   *history.Store
	journal history.Recorder
}

func (e *env) Close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.WarnWithErr("Failed to close history", err)
		}
	}
}

// setup loads the configuration and builds the logger and engine. The
// journal is opened when withJournal is set and history is enabled.
func setup(withJournal bool) (*env, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewLogger(logging.FromConfig("spi", cfg, verbose))
	mdwlog.SetDefault(logger)

	e := &env{
		config: cfg,
		logger: logger,
		engine: pascal.New(pascal.Options{
			Logger:         logger,
			MaxInputLength: cfg.Interpreter.MaxInputLength,
		}),
	}

	if withJournal && cfg.History.Enabled {
		store, err := history.Open(history.Config{Path: cfg.History.Path})
		if err != nil {
			// The journal is optional; evaluation still works without it
			logger.WarnWithErr("History disabled", err)
		} else {
			e.store = store
			e.journal = store
		}
	}
	return e, nil
}

// readInput returns the -e expression, the named file or stdin
func readInput(expr string, args []string) (string, error) {
	if expr != "" {
		return expr, nil
	}
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", mdwerror.Wrap(err, "failed to read input file").
				WithCode(mdwerror.CodeNotFound).
				WithDetail("path", args[0])
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", mdwerror.Wrap(err, "failed to read stdin").
			WithCode(mdwerror.CodeInvalidInput)
	}
	return string(data), nil
}

// printValue writes v in the selected output format; text falls back to
// the value's String method
func printValue(w io.Writer, v interface{}) error {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		out := fmt.Sprint(v)
		if out != "" && !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		_, err := io.WriteString(w, out)
		return err
	}
}
