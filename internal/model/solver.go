// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the solver contract used to obtain a numeric solution
// of a model, and the Recorded implementation that replays stored results.

package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/fmexport/internal/varkey"
)

// Procedure names a solve procedure.
const (
	ProcedureSolve      = "solve"
	ProcedureLocalSolve = "localsolve"
)

// ErrNoSolution is returned when a solver has no result for a procedure.
var ErrNoSolution = errors.New("no solution available")

// Solution maps free variables to their optimal values.
type Solution map[*varkey.Key]float64

// Solver produces numeric solutions of a model. Solve is the primary
// procedure; LocalSolve is the fallback (local / iterative) procedure.
type Solver interface {
	Solve(ctx context.Context, m *Model) (Solution, error)
	LocalSolve(ctx context.Context, m *Model) (Solution, error)
}

// Recorded is a Solver that returns previously recorded solutions keyed
// by procedure name.
type Recorded struct {
	Solutions map[string]Solution
}

// NewRecorded creates an empty Recorded solver.
func NewRecorded() *Recorded {
	return &Recorded{Solutions: make(map[string]Solution)}
}

// Record stores sol as the result of procedure.
func (r *Recorded) Record(procedure string, sol Solution) {
	r.Solutions[procedure] = sol
}

// Solve returns the recorded "solve" result.
func (r *Recorded) Solve(ctx context.Context, m *Model) (Solution, error) {
	return r.replay(ctx, ProcedureSolve)
}

// LocalSolve returns the recorded "localsolve" result.
func (r *Recorded) LocalSolve(ctx context.Context, m *Model) (Solution, error) {
	return r.replay(ctx, ProcedureLocalSolve)
}

func (r *Recorded) replay(ctx context.Context, procedure string) (Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sol, ok := r.Solutions[procedure]
	if !ok {
		return nil, fmt.Errorf("%s: %w", procedure, ErrNoSolution)
	}
	out := make(Solution, len(sol))
	for k, v := range sol {
		out[k] = v
	}
	return out, nil
}
