package export

import (
	"context"
	"fmt"

	"github.com/vk/fmexport/internal/ctxlog"
	"github.com/vk/fmexport/internal/model"
	"github.com/vk/fmexport/internal/nomial"
)

// Row is one exported expression: a canonical constraint or the objective.
// Log is set in log-space mode; Grad holds one derivative per position when
// the matching gradient flag is on.
type Row struct {
	Label string
	Kind  Kind
	Expr  nomial.Signomial
	Log   *LogSum
	Grad  []nomial.Signomial
}

// Result is the fully materialized export of one model.
type Result struct {
	Model        string
	Index        *Index
	Inequalities []Row
	Equalities   []Row
	Objective    Row
	Guess        InitialGuess

	Algorithm       Algorithm
	LogSpace        bool
	GradObjective   bool
	GradConstraints bool
}

// Lookup returns the position to name table.
func (r *Result) Lookup() []string {
	return r.Index.Lookup()
}

// Export rewrites m for fmincon. The model's substitutions are checked out
// for the duration of the rewrite and restored on every return path, so m
// is unchanged when Export returns.
func Export(ctx context.Context, m *model.Model, opts Options) (*Result, error) {
	opts, err := opts.effective()
	if err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx).With("model", m.Name)

	solver := opts.Solver
	if solver == nil {
		solver = m.Solver
	}

	pinned := m.Pinned()
	ix := BuildIndex(m.VarKeys(), pinned)
	logger.Debug("Indexed free variables.", "free", ix.Len(), "pinned", len(pinned))

	// The guess may solve the original model, so it runs before checkout.
	guess, err := BuildGuess(ctx, m, ix, opts.Guess, opts.LogSpace, solver)
	if err != nil {
		return nil, err
	}

	co := m.Checkout()
	defer co.Restore()
	sub := ix.Substitution(co.Substitutions())

	res := &Result{
		Model:           m.Name,
		Index:           ix,
		Guess:           guess,
		Algorithm:       opts.Algorithm,
		LogSpace:        opts.LogSpace,
		GradObjective:   opts.GradObjective,
		GradConstraints: opts.GradConstraints,
	}

	for i, c := range m.Constraints {
		row, err := exportConstraint(c, sub, ix, opts)
		if err != nil {
			return nil, fmt.Errorf("constraint %d: %w", i+1, err)
		}
		if row.Kind == EqZero {
			res.Equalities = append(res.Equalities, row)
		} else {
			res.Inequalities = append(res.Inequalities, row)
		}
	}

	cost, err := m.Cost.Substitute(sub)
	if err != nil {
		return nil, fmt.Errorf("objective: %w", err)
	}
	res.Objective = Row{Label: "objective", Expr: cost}
	switch {
	case opts.LogSpace:
		ls, err := LogObjective(cost)
		if err != nil {
			return nil, err
		}
		res.Objective.Log = ls
	case opts.GradObjective:
		res.Objective.Grad = Gradient(cost, ix)
	}

	logger.Debug("Exported model.",
		"inequalities", len(res.Inequalities),
		"equalities", len(res.Equalities),
		"log_space", res.LogSpace,
	)
	return res, nil
}

func exportConstraint(c model.Constraint, sub nomial.Substitution, ix *Index, opts Options) (Row, error) {
	s, err := Substitute(c, sub)
	if err != nil {
		return Row{}, err
	}

	if opts.LogSpace {
		ls, kind, err := LogConstraint(s)
		if err != nil {
			return Row{}, err
		}
		return Row{Label: c.Label, Kind: kind, Expr: s.Left, Log: ls}, nil
	}

	canon, err := Orient(s)
	if err != nil {
		return Row{}, err
	}
	row := Row{Label: canon.Label, Kind: canon.Kind, Expr: canon.Expr}
	if opts.GradConstraints {
		row.Grad = Gradient(canon.Expr, ix)
	}
	return row, nil
}
