// File: environment.go
// Title: Variable Environment
// Description: Flat name to value mapping owned by one evaluation run.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial implementation

package interpreter

import "sort"

// Binding is a single variable and its value
type Binding struct {
	Name  string `json:"name" yaml:"name"`
	Value int64  `json:"value" yaml:"value"`
}

// Environment holds the variables of one run
type Environment struct {
	values map[string]int64
}

// NewEnvironment creates an empty environment
func NewEnvironment() *Environment {
	return &Environment{values: make(map[string]int64)}
}

// Get returns the value bound to name
func (e *Environment) Get(name string) (int64, bool) {
	v, ok := e.values[name]
	return v, ok
}

// Set binds name to value, replacing any earlier binding
func (e *Environment) Set(name string, value int64) {
	e.values[name] = value
}

// Len returns the number of bound variables
func (e *Environment) Len() int {
	return len(e.values)
}

// Bindings returns all bindings sorted by name
func (e *Environment) Bindings() []Binding {
	out := make([]Binding, 0, len(e.values))
	for name, value := range e.values {
		out = append(out, Binding{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Map returns a copy of the bindings
func (e *Environment) Map() map[string]int64 {
	out := make(map[string]int64, len(e.values))
	for name, value := range e.values {
		out[name] = value
	}
	return out
}
