// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the in-memory representation of an optimization
// model: its variables, the substitutions that pin some of them to numbers,
// its constraints and its cost.
//
// # Core Concepts
//
//   - Model: The root container. It owns the declared variable keys in their
//     natural order (declaration order, depth-first over submodels), the
//     Substitutions map, the constraint list and the cost signomial.
//
//   - Constraint: A left side, a right side and a comparison operator. The
//     sides are nomial.Signomial values and are never modified in place.
//
//   - Checkout: Scoped ownership of the model's substitutions. Export code
//     checks the substitutions out, works on a copy and restores the original
//     on every exit path.
//
//   - Solver: The contract for obtaining a numeric solution of the model.
//     The Recorded solver replays solutions stored alongside the model.
//
// The package is format-agnostic; loaders such as internal/hcl build a Model
// from a concrete file format.
package model
