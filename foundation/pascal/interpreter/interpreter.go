// File: interpreter.go
// Title: Tree-Walking Evaluator
// Description: Evaluates syntax trees against an explicit environment with
//              checked int64 arithmetic.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial evaluator implementation

package interpreter

import (
	"fmt"
	"math"
	"strconv"

	mdwlog "github.com/msto63/spi/foundation/core/log"
	mdwast "github.com/msto63/spi/foundation/pascal/ast"
)

// Options configures an interpreter
type Options struct {
	Logger *mdwlog.Logger
}

// Interpreter evaluates syntax trees. It holds no per-run state and may be
// shared between goroutines.
type Interpreter struct {
	logger *mdwlog.Logger
}

// Result is the value of one node. Statements yield no value.
type Result struct {
	Value    int64
	HasValue bool
}

func value(v int64) Result { return Result{Value: v, HasValue: true} }

// New creates an interpreter
func New(opts Options) *Interpreter {
	logger := opts.Logger
	if logger == nil {
		logger = mdwlog.GetDefault()
	}
	return &Interpreter{logger: logger.WithField("component", "pascal-interpreter")}
}

// Run evaluates a program in a fresh environment and returns it
func (i *Interpreter) Run(program *mdwast.Compound) (*Environment, error) {
	_, env, err := i.Evaluate(program, NewEnvironment())
	if err != nil {
		i.logger.Debug("Program evaluation failed", mdwlog.Fields{"error": err.Error()})
		return nil, err
	}
	i.logger.Debug("Program evaluated", mdwlog.Fields{"bindings": env.Len()})
	return env, nil
}

// Calc evaluates a single expression in an empty environment
func (i *Interpreter) Calc(expr mdwast.Node) (int64, error) {
	result, _, err := i.Evaluate(expr, NewEnvironment())
	if err != nil {
		return 0, err
	}
	if !result.HasValue {
		return 0, ErrNotExpression
	}
	return result.Value, nil
}

// Evaluate evaluates node in env and returns its result together with the
// environment. A nil env is replaced by a new one.
func (i *Interpreter) Evaluate(node mdwast.Node, env *Environment) (Result, *Environment, error) {
	if env == nil {
		env = NewEnvironment()
	}
	result, err := i.eval(node, env)
	return result, env, err
}

func (i *Interpreter) eval(node mdwast.Node, env *Environment) (Result, error) {
	switch n := node.(type) {
	case *mdwast.Num:
		v, err := strconv.ParseInt(n.Literal, 10, 64)
		if err != nil {
			return Result{}, &RuntimeError{Kind: IntegerOverflow, Pos: n.At}
		}
		return value(v), nil

	case *mdwast.Var:
		v, ok := env.Get(n.Name)
		if !ok {
			return Result{}, &RuntimeError{Kind: UndefinedVariable, Name: n.Name, Pos: n.At}
		}
		return value(v), nil

	case *mdwast.UnaryOp:
		operand, err := i.eval(n.Operand, env)
		if err != nil {
			return Result{}, err
		}
		if n.Op == mdwast.OpAdd {
			return operand, nil
		}
		if operand.Value == math.MinInt64 {
			return Result{}, &RuntimeError{Kind: IntegerOverflow, Pos: n.At}
		}
		return value(-operand.Value), nil

	case *mdwast.BinOp:
		left, err := i.eval(n.Left, env)
		if err != nil {
			return Result{}, err
		}
		right, err := i.eval(n.Right, env)
		if err != nil {
			return Result{}, err
		}
		v, kind := apply(n.Op, left.Value, right.Value)
		if kind != 0 {
			return Result{}, &RuntimeError{Kind: kind, Pos: n.At}
		}
		return value(v), nil

	case *mdwast.Assign:
		v, err := i.eval(n.Value, env)
		if err != nil {
			return Result{}, err
		}
		env.Set(n.Target.Name, v.Value)
		if i.logger.IsLevelEnabled(mdwlog.LevelTrace) {
			i.logger.Trace("Assigned variable", mdwlog.Fields{"name": n.Target.Name, "value": v.Value})
		}
		return v, nil

	case *mdwast.Compound:
		for _, stmt := range n.Statements {
			if _, err := i.eval(stmt, env); err != nil {
				return Result{}, err
			}
		}
		return Result{}, nil

	case *mdwast.NoOp:
		return Result{}, nil

	default:
		panic(fmt.Sprintf("interpreter: unhandled node kind %T", node))
	}
}

// apply returns the result of a op b, or the kind of failure
func apply(op mdwast.Operator, a, b int64) (int64, RuntimeErrorKind) {
	switch op {
	case mdwast.OpAdd:
		if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
			return 0, IntegerOverflow
		}
		return a + b, 0
	case mdwast.OpSub:
		if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
			return 0, IntegerOverflow
		}
		return a - b, 0
	case mdwast.OpMul:
		if a == 0 || b == 0 {
			return 0, 0
		}
		r := a * b
		if r/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
			return 0, IntegerOverflow
		}
		return r, 0
	case mdwast.OpDiv:
		if b == 0 {
			return 0, DivisionByZero
		}
		if a == math.MinInt64 && b == -1 {
			return 0, IntegerOverflow
		}
		return a / b, 0
	default:
		panic(fmt.Sprintf("interpreter: unknown operator %q", rune(op)))
	}
}
