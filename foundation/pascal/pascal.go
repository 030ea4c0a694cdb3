// File: pascal.go
// Title: Pascal Engine
// Description: Runs text through tokens, tree and evaluation in program or
//              calculator mode. Checks the context between stages, times each
//              stage and lifts core errors into coded errors.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial engine implementation

package pascal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	mdwerror "github.com/msto63/spi/foundation/core/error"
	mdwlog "github.com/msto63/spi/foundation/core/log"
	mdwast "github.com/msto63/spi/foundation/pascal/ast"
	mdwinterp "github.com/msto63/spi/foundation/pascal/interpreter"
	mdwparser "github.com/msto63/spi/foundation/pascal/parser"
)

// DefaultMaxInputLength is used when Options.MaxInputLength is zero
const DefaultMaxInputLength = 64 * 1024

// Mode selects the grammar used for an input
type Mode string

const (
	// ModeProgram parses BEGIN ... END. programs and yields bindings
	ModeProgram Mode = "program"

	// ModeCalc parses a single expression and yields an integer
	ModeCalc Mode = "calc"
)

// ParseMode parses a mode name
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeProgram:
		return ModeProgram, nil
	case ModeCalc:
		return ModeCalc, nil
	default:
		return "", mdwerror.Newf("unknown mode %q", s).
			WithCode(mdwerror.CodeInvalidInput).
			WithDetail("valid", []string{string(ModeProgram), string(ModeCalc)})
	}
}

// Options configures the engine
type Options struct {
	Logger *mdwlog.Logger

	// MaxInputLength rejects longer inputs; negative disables the check
	MaxInputLength int
}

// Executor evaluates one input in a fresh environment. *Engine implements it;
// wrappers such as result caches can stand in for it.
type Executor interface {
	Execute(ctx context.Context, mode Mode, input string) (*Result, error)
}

// Engine evaluates source text. It holds only immutable configuration and
// is safe for concurrent use.
type Engine struct {
	interp  *mdwinterp.Interpreter
	logger  *mdwlog.Logger
	options Options
}

// Result is the outcome of one evaluation
type Result struct {
	Mode     Mode                `json:"mode" yaml:"mode"`
	Value    *int64              `json:"value,omitempty" yaml:"value,omitempty"`
	Bindings []mdwinterp.Binding `json:"bindings,omitempty" yaml:"bindings,omitempty"`
	Nodes    int                 `json:"nodes" yaml:"nodes"`
	Duration time.Duration       `json:"duration_ns" yaml:"-"`
}

// String renders the result the way the CLI and REPL print it
func (r *Result) String() string {
	if r.Mode == ModeCalc && r.Value != nil {
		return fmt.Sprintf("%d", *r.Value)
	}
	lines := make([]string, len(r.Bindings))
	for i, b := range r.Bindings {
		lines[i] = fmt.Sprintf("%s = %d", b.Name, b.Value)
	}
	return strings.Join(lines, "\n")
}

// New creates an engine
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.MaxInputLength == 0 {
		opts.MaxInputLength = DefaultMaxInputLength
	}

	logger := opts.Logger.WithField("component", "pascal-engine")
	return &Engine{
		interp:  mdwinterp.New(mdwinterp.Options{Logger: opts.Logger}),
		logger:  logger,
		options: opts,
	}
}

// Execute parses and evaluates input in the given mode
func (e *Engine) Execute(ctx context.Context, mode Mode, input string) (*Result, error) {
	const op = "pascal.Engine.Execute"
	logger := e.loggerFor(ctx)
	start := time.Now()

	logger.Debug("Executing input", mdwlog.Fields{"mode": mode, "length": len(input)})

	if err := ctx.Err(); err != nil {
		return nil, liftError(err, op)
	}

	tree, err := e.parse(logger, mode, input, op)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, liftError(err, op)
	}

	timer := logger.StartTimer("pascal.evaluate").WithField("mode", string(mode))
	result := &Result{Mode: mode, Nodes: mdwast.Count(tree)}

	switch mode {
	case ModeCalc:
		v, err := e.interp.Calc(tree)
		if err != nil {
			lifted := liftError(err, op)
			timer.StopWithError(lifted)
			return nil, lifted
		}
		result.Value = &v
	default:
		env, err := e.interp.Run(tree.(*mdwast.Compound))
		if err != nil {
			lifted := liftError(err, op)
			timer.StopWithError(lifted)
			return nil, lifted
		}
		result.Bindings = env.Bindings()
	}
	timer.Stop()

	result.Duration = time.Since(start)
	return result, nil
}

// Parse parses input without evaluating it
func (e *Engine) Parse(ctx context.Context, mode Mode, input string) (mdwast.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, liftError(err, "pascal.Engine.Parse")
	}
	return e.parse(e.loggerFor(ctx), mode, input, "pascal.Engine.Parse")
}

// Tokens returns the complete token stream of input
func (e *Engine) Tokens(input string) ([]mdwparser.Token, error) {
	if err := e.checkLength(input); err != nil {
		return nil, err
	}
	tokens, err := mdwparser.Tokenize(input)
	if err != nil {
		return tokens, liftError(err, "pascal.Engine.Tokens")
	}
	return tokens, nil
}

// parse returns lifted errors so the stage timer logs them by severity
func (e *Engine) parse(logger *mdwlog.Logger, mode Mode, input, op string) (mdwast.Node, error) {
	if err := e.checkLength(input); err != nil {
		return nil, err
	}

	timer := logger.StartTimer("pascal.parse").WithField("mode", string(mode))
	p := mdwparser.NewParser(mdwparser.NewLexer(input), mdwparser.Options{Logger: logger})

	var (
		tree mdwast.Node
		err  error
	)
	switch mode {
	case ModeProgram:
		var program *mdwast.Compound
		program, err = p.ParseProgram()
		if err == nil {
			tree = program
		}
	case ModeCalc:
		tree, err = p.ParseExpression()
	default:
		timer.Cancel()
		_, err = ParseMode(string(mode))
		return nil, err
	}

	if err != nil {
		lifted := liftError(err, op)
		timer.StopWithError(lifted)
		return nil, lifted
	}
	timer.Stop()
	return tree, nil
}

func (e *Engine) checkLength(input string) error {
	limit := e.options.MaxInputLength
	if limit > 0 && len(input) > limit {
		return mdwerror.Newf("input exceeds maximum length of %d bytes", limit).
			WithCode(mdwerror.CodeInvalidLength).
			WithDetail("length", len(input)).
			WithDetail("max", limit)
	}
	return nil
}

func (e *Engine) loggerFor(ctx context.Context) *mdwlog.Logger {
	if id := RunIDFromContext(ctx); id != "" {
		return e.logger.WithRunID(id)
	}
	return e.logger
}

// liftError wraps core errors into coded errors with position details.
// Errors that already carry a code are returned unchanged.
func liftError(err error, op string) error {
	var coded *mdwerror.Error
	if errors.As(err, &coded) {
		return err
	}

	var (
		lexErr     *mdwparser.LexError
		syntaxErr  *mdwparser.SyntaxError
		runtimeErr *mdwinterp.RuntimeError
	)
	switch {
	case errors.As(err, &lexErr):
		return mdwerror.Wrap(err, "lexical error").
			WithCode(mdwerror.CodePascalLex).
			WithOperation(op).
			WithDetails(map[string]interface{}{
				"offset": lexErr.Offset,
				"line":   lexErr.Line,
				"column": lexErr.Column,
				"char":   string(lexErr.Char),
			})

	case errors.As(err, &syntaxErr):
		return mdwerror.Wrap(err, "syntax error").
			WithCode(mdwerror.CodePascalSyntax).
			WithOperation(op).
			WithDetails(map[string]interface{}{
				"offset":   syntaxErr.Offset,
				"line":     syntaxErr.Line,
				"column":   syntaxErr.Column,
				"expected": syntaxErr.Expected.String(),
				"actual":   syntaxErr.Actual.String(),
			})

	case errors.As(err, &runtimeErr):
		wrapped := mdwerror.Wrap(err, "runtime error").
			WithCode(mdwerror.CodePascalRuntime).
			WithOperation(op).
			WithDetail("kind", runtimeErr.Kind.String()).
			WithDetail("offset", runtimeErr.Pos.Offset)
		if runtimeErr.Name != "" {
			wrapped.WithDetail("name", runtimeErr.Name)
		}
		return wrapped

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return mdwerror.Wrap(err, "evaluation canceled").
			WithCode(mdwerror.CodeCanceled).
			WithOperation(op)

	default:
		return mdwerror.Wrap(err, "evaluation failed").
			WithCode(mdwerror.CodeInternal).
			WithOperation(op)
	}
}

// ErrorOffset returns the source offset carried by an evaluation error, or
// -1 if the error has no position
func ErrorOffset(err error) int {
	var (
		lexErr     *mdwparser.LexError
		syntaxErr  *mdwparser.SyntaxError
		runtimeErr *mdwinterp.RuntimeError
	)
	switch {
	case errors.As(err, &lexErr):
		return lexErr.Offset
	case errors.As(err, &syntaxErr):
		return syntaxErr.Offset
	case errors.As(err, &runtimeErr):
		return runtimeErr.Pos.Offset
	}

	// Errors rebuilt from a remote response only carry the offset detail
	var coded *mdwerror.Error
	if errors.As(err, &coded) {
		if v, ok := coded.Detail("offset"); ok {
			if offset, ok := v.(int); ok {
				return offset
			}
		}
	}
	return -1
}
