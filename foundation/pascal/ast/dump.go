// File: dump.go
// Title: YAML Tree Dump
// Description: Renders a syntax tree as YAML for the ast command.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial implementation

package ast

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DumpOptions controls the YAML dump
type DumpOptions struct {
	// Positions adds an "at" key with line:column to every node
	Positions bool
	Indent    int
}

// Dump renders n as a YAML document with keys in a fixed order
func Dump(n Node, opts DumpOptions) ([]byte, error) {
	if opts.Indent <= 0 {
		opts.Indent = 2
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(opts.Indent)
	if err := enc.Encode(toYAML(n, opts)); err != nil {
		return nil, fmt.Errorf("encode ast: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode ast: %w", err)
	}
	return buf.Bytes(), nil
}

func toYAML(n Node, opts DumpOptions) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value *yaml.Node) {
		m.Content = append(m.Content, scalar(key), value)
	}

	add("kind", scalar(string(n.Kind())))
	if opts.Positions {
		add("at", scalar(n.Pos().String()))
	}

	switch x := n.(type) {
	case *Num:
		add("value", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: x.Literal})
	case *Var:
		add("name", scalar(x.Name))
	case *UnaryOp:
		add("op", scalar(x.Op.String()))
		add("operand", toYAML(x.Operand, opts))
	case *BinOp:
		add("op", scalar(x.Op.String()))
		add("left", toYAML(x.Left, opts))
		add("right", toYAML(x.Right, opts))
	case *Assign:
		add("target", scalar(x.Target.Name))
		add("value", toYAML(x.Value, opts))
	case *Compound:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, stmt := range x.Statements {
			seq.Content = append(seq.Content, toYAML(stmt, opts))
		}
		add("statements", seq)
	case *NoOp:
	default:
		panic(fmt.Sprintf("ast: unhandled node kind %T", n))
	}

	return m
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}
