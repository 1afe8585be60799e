// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the substitution map and its scoped checkout.
//
// Export needs the model's substitutions cleared while it rewrites a copy of
// the constraints, and it must put them back no matter how it exits. The
// Checkout type owns that window: the model's lock is held from Checkout()
// until Restore(), so no other caller can observe or change the cleared
// state in between.

package model

import (
	"sync"

	"github.com/vk/fmexport/internal/varkey"
)

// Substitutions pins variables to numeric values.
type Substitutions map[*varkey.Key]float64

// Clone returns an independent copy of s.
func (s Substitutions) Clone() Substitutions {
	out := make(Substitutions, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Has reports whether k is pinned.
func (s Substitutions) Has(k *varkey.Key) bool {
	_, ok := s[k]
	return ok
}

// Checkout is exclusive, temporary ownership of a model's substitutions.
type Checkout struct {
	m     *Model
	saved Substitutions
	once  sync.Once
}

// Checkout clears the model's substitutions and returns a handle that owns
// the saved originals. The caller must call Restore, normally via defer.
func (m *Model) Checkout() *Checkout {
	m.mu.Lock()
	saved := m.Substitutions
	if saved == nil {
		saved = Substitutions{}
	}
	m.Substitutions = Substitutions{}
	return &Checkout{m: m, saved: saved}
}

// Substitutions returns a working copy of the checked-out substitutions.
func (c *Checkout) Substitutions() Substitutions {
	return c.saved.Clone()
}

// Restore puts the original substitutions back and releases the model.
// Calling it more than once is a no-op.
func (c *Checkout) Restore() {
	c.once.Do(func() {
		c.m.Substitutions = c.saved
		c.m.mu.Unlock()
	})
}

// Pinned returns a copy of the model's substitutions taken under its lock.
func (m *Model) Pinned() Substitutions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Substitutions.Clone()
}

// Pin resolves name and pins that variable to v, replacing any earlier value.
func (m *Model) Pin(name string, v float64) error {
	k, err := m.Lookup(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Substitutions == nil {
		m.Substitutions = Substitutions{}
	}
	m.Substitutions[k] = v
	return nil
}
