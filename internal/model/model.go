// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Model and Constraint structures.

package model

import (
	"fmt"
	"sync"

	"github.com/vk/fmexport/internal/nomial"
	"github.com/vk/fmexport/internal/varkey"
)

// Oper is a constraint comparison operator.
type Oper string

const (
	LessEq    Oper = "<="
	GreaterEq Oper = ">="
	Equal     Oper = "="
)

// Constraint is `Left Oper Right`.
type Constraint struct {
	Label string
	Left  nomial.Signomial
	Right nomial.Signomial
	Oper  Oper
}

// String renders the constraint with the default printer.
func (c Constraint) String() string {
	return fmt.Sprintf("%s %s %s", c.Left, c.Oper, c.Right)
}

// Keys returns the variables of both sides in order of first appearance.
func (c Constraint) Keys() []*varkey.Key {
	return appendUnique(c.Left.Keys(), c.Right.Keys()...)
}

// Model is an optimization model ready for export.
type Model struct {
	Name          string
	Substitutions Substitutions
	Constraints   []Constraint
	Cost          nomial.Signomial
	Solver        Solver

	keys []*varkey.Key
	mu   sync.Mutex
}

// New creates an empty model.
func New(name string) *Model {
	return &Model{
		Name:          name,
		Substitutions: Substitutions{},
	}
}

// Declare appends k to the model's variables. Declaration order is the
// model's natural iteration order.
func (m *Model) Declare(keys ...*varkey.Key) {
	m.keys = append(m.keys, keys...)
}

// Declared returns every declared key in natural order.
func (m *Model) Declared() []*varkey.Key {
	out := make([]*varkey.Key, len(m.keys))
	copy(out, m.keys)
	return out
}

// AddConstraint appends c to the model.
func (m *Model) AddConstraint(c Constraint) {
	m.Constraints = append(m.Constraints, c)
}

// VarKeys returns the declared keys that appear in the cost or in any
// constraint, in natural order.
func (m *Model) VarKeys() []*varkey.Key {
	used := make(map[*varkey.Key]struct{})
	for _, k := range m.Cost.Keys() {
		used[k] = struct{}{}
	}
	for _, c := range m.Constraints {
		for _, k := range c.Keys() {
			used[k] = struct{}{}
		}
	}

	var out []*varkey.Key
	for _, k := range m.keys {
		if _, ok := used[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Lookup resolves a canonical variable name such as `Wing.S` or `z[2]`.
func (m *Model) Lookup(name string) (*varkey.Key, error) {
	return varkey.Find(m.keys, name)
}

func appendUnique(keys []*varkey.Key, more ...*varkey.Key) []*varkey.Key {
	seen := make(map[*varkey.Key]struct{}, len(keys))
	for _, k := range keys {
		seen[k] = struct{}{}
	}
	for _, k := range more {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}
