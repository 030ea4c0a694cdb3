// File: parser.go
// Title: Pascal Recursive Descent Parser
// Description: LL(1) parser with one token of lookahead. Builds ast trees for
//              complete programs and for single calculator expressions.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial parser implementation

package parser

import (
	mdwlog "github.com/msto63/spi/foundation/core/log"
	mdwast "github.com/msto63/spi/foundation/pascal/ast"
)

// Options configures a parser
type Options struct {
	Logger *mdwlog.Logger
}

// Parser builds a syntax tree from a token stream. An instance parses once.
type Parser struct {
	lexer   *Lexer
	current Token
	logger  *mdwlog.Logger
	used    bool
}

// NewParser creates a parser reading from lexer
func NewParser(lexer *Lexer, opts Options) *Parser {
	logger := opts.Logger
	if logger == nil {
		logger = mdwlog.GetDefault()
	}

	return &Parser{
		lexer:  lexer,
		logger: logger.WithField("component", "pascal-parser"),
	}
}

// ParseProgram parses program : compound_statement DOT, followed by EOF
func (p *Parser) ParseProgram() (*mdwast.Compound, error) {
	if err := p.start("program"); err != nil {
		return nil, err
	}

	program, err := p.compoundStatement()
	if err != nil {
		return nil, p.fail("program", err)
	}
	if err := p.eat(DOT); err != nil {
		return nil, p.fail("program", err)
	}
	if err := p.eat(EOF); err != nil {
		return nil, p.fail("program", err)
	}

	p.logger.Debug("Parsed program", mdwlog.Fields{"statements": len(program.Statements)})
	return program, nil
}

// ParseExpression parses a single expr followed by EOF
func (p *Parser) ParseExpression() (mdwast.Node, error) {
	if err := p.start("expression"); err != nil {
		return nil, err
	}

	node, err := p.expr()
	if err != nil {
		return nil, p.fail("expression", err)
	}
	if err := p.eat(EOF); err != nil {
		return nil, p.fail("expression", err)
	}

	p.logger.Debug("Parsed expression", mdwlog.Fields{"nodes": mdwast.Count(node)})
	return node, nil
}

func (p *Parser) start(rule string) error {
	if p.used {
		return ErrParserUsed
	}
	p.used = true

	p.logger.Debug("Starting parse", mdwlog.Fields{"rule": rule})

	tok, err := p.lexer.NextToken()
	if err != nil {
		return p.fail(rule, err)
	}
	p.current = tok
	return nil
}

func (p *Parser) fail(rule string, err error) error {
	p.logger.Debug("Parse failed", mdwlog.Fields{"rule": rule, "error": err.Error()})
	return err
}

// eat consumes the lookahead if it has the expected kind
func (p *Parser) eat(kind Kind) error {
	if p.current.Kind != kind {
		return &SyntaxError{
			Expected: kind,
			Actual:   p.current.Kind,
			Lexeme:   p.current.Lexeme,
			Offset:   p.current.Offset,
			Line:     p.current.Line,
			Column:   p.current.Column,
		}
	}

	// EOF is never advanced past
	if kind == EOF {
		return nil
	}

	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.current = tok
	return nil
}

// compound_statement : BEGIN statement_list END
func (p *Parser) compoundStatement() (*mdwast.Compound, error) {
	at := p.current.Pos()
	if err := p.eat(BEGIN); err != nil {
		return nil, err
	}

	statements, err := p.statementList()
	if err != nil {
		return nil, err
	}

	if err := p.eat(END); err != nil {
		return nil, err
	}
	return &mdwast.Compound{Statements: statements, At: at}, nil
}

// statement_list : statement (SEMI statement)*
func (p *Parser) statementList() ([]mdwast.Node, error) {
	first, err := p.statement()
	if err != nil {
		return nil, err
	}
	statements := []mdwast.Node{first}

	for p.current.Kind == SEMI {
		if err := p.eat(SEMI); err != nil {
			return nil, err
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}

	// An identifier here means a separator was left out
	if p.current.Kind == ID {
		return nil, p.eat(SEMI)
	}
	return statements, nil
}

// statement : compound_statement | assignment_statement | empty
func (p *Parser) statement() (mdwast.Node, error) {
	switch p.current.Kind {
	case BEGIN:
		compound, err := p.compoundStatement()
		if err != nil {
			return nil, err
		}
		return compound, nil
	case ID:
		return p.assignmentStatement()
	default:
		return &mdwast.NoOp{At: p.current.Pos()}, nil
	}
}

// assignment_statement : variable ASSIGN expr
func (p *Parser) assignmentStatement() (mdwast.Node, error) {
	target, err := p.variable()
	if err != nil {
		return nil, err
	}
	if err := p.eat(ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.expr()
	if err != nil {
		return nil, err
	}
	return &mdwast.Assign{Target: target, Value: value, At: target.At}, nil
}

// variable : ID
func (p *Parser) variable() (*mdwast.Var, error) {
	tok := p.current
	if err := p.eat(ID); err != nil {
		return nil, err
	}
	return &mdwast.Var{Name: tok.Lexeme, At: tok.Pos()}, nil
}

// expr : term ((PLUS | MINUS) term)*
func (p *Parser) expr() (mdwast.Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}

	for p.current.Kind == PLUS || p.current.Kind == MINUS {
		op := p.current
		if err := p.eat(op.Kind); err != nil {
			return nil, err
		}
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &mdwast.BinOp{Op: operatorFor(op.Kind), Left: left, Right: right, At: left.Pos()}
	}
	return left, nil
}

// term : factor ((MUL | DIV) factor)*
func (p *Parser) term() (mdwast.Node, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}

	for p.current.Kind == MUL || p.current.Kind == DIV {
		op := p.current
		if err := p.eat(op.Kind); err != nil {
			return nil, err
		}
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = &mdwast.BinOp{Op: operatorFor(op.Kind), Left: left, Right: right, At: left.Pos()}
	}
	return left, nil
}

// factor : (PLUS | MINUS) factor | INTEGER | LPAREN expr RPAREN | variable
func (p *Parser) factor() (mdwast.Node, error) {
	tok := p.current

	switch tok.Kind {
	case PLUS, MINUS:
		if err := p.eat(tok.Kind); err != nil {
			return nil, err
		}
		operand, err := p.factor()
		if err != nil {
			return nil, err
		}
		return &mdwast.UnaryOp{Op: operatorFor(tok.Kind), Operand: operand, At: tok.Pos()}, nil

	case INTEGER:
		if err := p.eat(INTEGER); err != nil {
			return nil, err
		}
		return &mdwast.Num{Literal: tok.Lexeme, At: tok.Pos()}, nil

	case LPAREN:
		if err := p.eat(LPAREN); err != nil {
			return nil, err
		}
		node, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.eat(RPAREN); err != nil {
			return nil, err
		}
		return node, nil

	default:
		v, err := p.variable()
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

func operatorFor(kind Kind) mdwast.Operator {
	switch kind {
	case PLUS:
		return mdwast.OpAdd
	case MINUS:
		return mdwast.OpSub
	case MUL:
		return mdwast.OpMul
	default:
		return mdwast.OpDiv
	}
}
