// Package export turns a model.Model into the pieces of an fmincon problem:
// positional variables, canonical constraints, analytic derivatives and an
// initial guess.
//
// The pipeline runs in one sequential pass:
//
//  1. Index assigns x(1)..x(n) to the free variables in natural order,
//     skipping pinned ones.
//  2. The initial guess is built, solving the original model first when the
//     strategy needs a numeric solution.
//  3. The model's substitutions are checked out; each constraint is
//     substituted exactly once (pinned -> number, free -> placeholder) and
//     rewritten into `expr <= 0` or `expr = 0` form.
//  4. Each canonical expression is differentiated with respect to every
//     placeholder, or, in log-space mode, rewritten as a log-sum-exp with
//     gradients disabled.
//
// The caller's model is unchanged when Export returns, including on error.
// Export produces structured values only; rendering into text is the job of
// internal/mfile.
package export
