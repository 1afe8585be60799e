package export

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fmexport/internal/model"
	"github.com/vk/fmexport/internal/nomial"
	"github.com/vk/fmexport/internal/varkey"
	"pgregory.net/rapid"
)

// render flattens a result into comparable strings.
func render(r *Result) []string {
	out := append([]string(nil), r.Lookup()...)
	rows := append(append([]Row(nil), r.Inequalities...), r.Equalities...)
	rows = append(rows, r.Objective)
	for _, row := range rows {
		out = append(out, row.Kind.String()+" "+row.Expr.String())
		for _, g := range row.Grad {
			out = append(out, "  d "+g.String())
		}
	}
	return out
}

func bigRat(p, q int64) *big.Rat { return big.NewRat(p, q) }

func centralDifference(t *testing.T, e nomial.Signomial, at map[*varkey.Key]float64, k *varkey.Key) float64 {
	t.Helper()
	h := 1e-6 * math.Max(1, math.Abs(at[k]))
	shifted := func(d float64) float64 {
		pt := make(map[*varkey.Key]float64, len(at))
		for key, v := range at {
			pt[key] = v
		}
		pt[k] += d
		v, err := e.Eval(pt)
		require.NoError(t, err)
		return v
	}
	return (shifted(h) - shifted(-h)) / (2 * h)
}

func TestExport_SingleFreeVariable(t *testing.T) {
	x := varkey.New("x")
	m := model.New("Simple")
	m.Declare(x)
	m.AddConstraint(model.Constraint{Left: nomial.Var(x), Right: nomial.Const(1), Oper: model.GreaterEq})
	m.Cost = nomial.Var(x)

	res, err := Export(context.Background(), m, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, res.Inequalities, 1)
	assert.Empty(t, res.Equalities)
	ineq := res.Inequalities[0]
	assert.Equal(t, LessEqZero, ineq.Kind)
	assert.Equal(t, "1 - x(1)", ineq.Expr.String())
	require.Len(t, ineq.Grad, 1)
	assert.Equal(t, "-1", ineq.Grad[0].String())

	assert.Equal(t, "x(1)", res.Objective.Expr.String())
	require.Len(t, res.Objective.Grad, 1)
	assert.Equal(t, "1", res.Objective.Grad[0].String())

	assert.Equal(t, InitialGuess{Values: []float64{1}, Uniform: true}, res.Guess)
	assert.Equal(t, []string{"x_1: x"}, res.Lookup())
	assert.Equal(t, InteriorPoint, res.Algorithm)
}

func TestExport_PinnedVariableTakesNoPosition(t *testing.T) {
	x, y := varkey.New("x"), varkey.New("y")
	m := model.New("Pinned")
	m.Declare(y, x)
	m.Substitutions[y] = 5
	m.AddConstraint(model.Constraint{Left: nomial.Var(x).Mul(nomial.Var(y)), Right: nomial.Const(1), Oper: model.GreaterEq})
	m.AddConstraint(model.Constraint{Left: nomial.Var(x), Right: nomial.Const(10), Oper: model.LessEq})
	m.Cost = nomial.Var(x)

	res, err := Export(context.Background(), m, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"x_1: x"}, res.Lookup())
	_, ok := res.Index.Position(y)
	assert.False(t, ok, "pinned variable must not occupy a position")

	require.Len(t, res.Inequalities, 2)
	assert.Equal(t, "1 - 5*x(1)", res.Inequalities[0].Expr.String())
	assert.Equal(t, "x(1) - 10", res.Inequalities[1].Expr.String())
	assert.Equal(t, "-5", res.Inequalities[0].Grad[0].String())

	// The source model is untouched.
	assert.Equal(t, model.Substitutions{y: 5}, m.Substitutions)
	assert.Equal(t, "x*y", m.Constraints[0].Left.String())
}

func TestExport_EqualityGoesToCeq(t *testing.T) {
	x, y := varkey.New("x"), varkey.New("y")
	m := model.New("Eq")
	m.Declare(x, y)
	m.AddConstraint(model.Constraint{Left: nomial.Var(x), Right: nomial.Const(2).Mul(nomial.Var(y)), Oper: model.Equal})
	m.Cost = nomial.Var(x).Add(nomial.Var(y))

	res, err := Export(context.Background(), m, DefaultOptions())
	require.NoError(t, err)

	assert.Empty(t, res.Inequalities)
	require.Len(t, res.Equalities, 1)
	eq := res.Equalities[0]
	assert.Equal(t, EqZero, eq.Kind)
	assert.Equal(t, "2*x(2) - x(1)", eq.Expr.String())
	assert.Equal(t, "-1", eq.Grad[0].String())
	assert.Equal(t, "2", eq.Grad[1].String())
}

func TestExport_GradientFlags(t *testing.T) {
	x := varkey.New("x")
	m := model.New("Flags")
	m.Declare(x)
	m.AddConstraint(model.Constraint{Left: nomial.Var(x), Right: nomial.Const(1), Oper: model.GreaterEq})
	m.Cost = nomial.Var(x)

	opts := DefaultOptions()
	opts.GradConstraints = false
	res, err := Export(context.Background(), m, opts)
	require.NoError(t, err)
	assert.Nil(t, res.Inequalities[0].Grad)
	assert.Len(t, res.Objective.Grad, 1)

	opts = DefaultOptions()
	opts.LogSpace = true
	res, err = Export(context.Background(), m, opts)
	require.NoError(t, err)
	assert.False(t, res.GradObjective)
	assert.False(t, res.GradConstraints)
	assert.Nil(t, res.Objective.Grad)
	assert.Nil(t, res.Inequalities[0].Grad)
	require.NotNil(t, res.Inequalities[0].Log)
	assert.True(t, res.Inequalities[0].Log.Negate)
	assert.Equal(t, InitialGuess{Values: []float64{0}, Uniform: true}, res.Guess)
}

func TestExport_LogSpacePrecondition(t *testing.T) {
	x := varkey.New("x")

	testCases := []struct {
		name       string
		constraint model.Constraint
		cost       nomial.Signomial
	}{
		{
			name:       "right side is not one",
			constraint: model.Constraint{Left: nomial.Var(x), Right: nomial.Const(2), Oper: model.GreaterEq},
			cost:       nomial.Var(x),
		},
		{
			name:       "signomial left side",
			constraint: model.Constraint{Left: nomial.Var(x).Sub(nomial.Const(1)), Right: nomial.Const(1), Oper: model.LessEq},
			cost:       nomial.Var(x),
		},
		{
			name:       "signomial cost",
			constraint: model.Constraint{Left: nomial.Var(x), Right: nomial.Const(1), Oper: model.LessEq},
			cost:       nomial.Const(3).Sub(nomial.Var(x)),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := model.New("Log")
			m.Declare(x)
			m.AddConstraint(tc.constraint)
			m.Cost = tc.cost

			opts := DefaultOptions()
			opts.LogSpace = true
			res, err := Export(context.Background(), m, opts)
			require.ErrorIs(t, err, ErrLogSpacePrecondition)
			assert.Nil(t, res)
			assert.Empty(t, m.Substitutions)

			// The checkout was released.
			m.Checkout().Restore()
		})
	}
}

func TestExport_ErrorRestoresSubstitutions(t *testing.T) {
	x, y := varkey.New("x"), varkey.New("y")
	m := model.New("Restore")
	m.Declare(x, y)
	m.Substitutions[y] = 2
	m.AddConstraint(model.Constraint{Left: nomial.Var(x), Right: nomial.Var(y), Oper: model.LessEq})
	m.Cost = nomial.Var(x)

	opts := DefaultOptions()
	opts.LogSpace = true
	_, err := Export(context.Background(), m, opts)
	require.ErrorIs(t, err, ErrLogSpacePrecondition)
	assert.Equal(t, model.Substitutions{y: 2}, m.Substitutions)
}

func TestExport_UnknownAlgorithm(t *testing.T) {
	m := model.New("Empty")
	opts := DefaultOptions()
	opts.Algorithm = "simplex"
	_, err := Export(context.Background(), m, opts)
	require.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestExport_NormalizesAlgorithm(t *testing.T) {
	x := varkey.New("x")
	m := model.New("Upper")
	m.Declare(x)
	m.AddConstraint(model.Constraint{Left: nomial.Var(x), Right: nomial.Const(1), Oper: model.GreaterEq})
	m.Cost = nomial.Var(x)

	opts := DefaultOptions()
	opts.Algorithm = " SQP "
	res, err := Export(context.Background(), m, opts)
	require.NoError(t, err)
	assert.Equal(t, SQP, res.Algorithm)
}

func TestExport_SolverErrorPropagates(t *testing.T) {
	x := varkey.New("x")
	m := model.New("NoSolution")
	m.Declare(x)
	m.Cost = nomial.Var(x)
	m.Solver = model.NewRecorded()

	opts := DefaultOptions()
	opts.Guess = OrderFloor()
	_, err := Export(context.Background(), m, opts)
	require.ErrorIs(t, err, model.ErrNoSolution)
	assert.Contains(t, err.Error(), model.ProcedureLocalSolve)
}

func TestOrient_SignRules(t *testing.T) {
	a, b := varkey.New("a"), varkey.New("b")

	testCases := []struct {
		oper     model.Oper
		wantExpr string
		wantKind Kind
	}{
		{model.LessEq, "a - b", LessEqZero},
		{model.GreaterEq, "b - a", LessEqZero},
		{model.Equal, "b - a", EqZero},
	}

	for _, tc := range testCases {
		t.Run(string(tc.oper), func(t *testing.T) {
			c := model.Constraint{Left: nomial.Var(a), Right: nomial.Var(b), Oper: tc.oper}
			got, err := Orient(c)
			require.NoError(t, err)
			assert.Equal(t, tc.wantExpr, got.Expr.String())
			assert.Equal(t, tc.wantKind, got.Kind)
		})
	}

	_, err := Orient(model.Constraint{Left: nomial.Var(a), Right: nomial.Var(b), Oper: "<"})
	require.Error(t, err)
}

func TestRewrite_RejectsSecondSubstitution(t *testing.T) {
	x := varkey.New("x")
	ix := BuildIndex([]*varkey.Key{x}, nil)
	sub := ix.Substitution(nil)
	c := model.Constraint{Left: nomial.Var(x), Right: nomial.Const(1), Oper: model.LessEq}

	once, err := Substitute(c, sub)
	require.NoError(t, err)
	assert.Equal(t, "x(1)", once.Left.String())

	_, err = Rewrite(once, sub)
	require.ErrorIs(t, err, nomial.ErrResubstituted)
	assert.Equal(t, "x", c.Left.String())
}

func TestJacobian_MatchesFiniteDifferences(t *testing.T) {
	x, y := varkey.New("x"), varkey.New("y")
	ix := BuildIndex([]*varkey.Key{x, y}, nil)
	sub := ix.Substitution(nil)

	yPow, err := nomial.Var(y).Pow(bigRat(-1, 2))
	require.NoError(t, err)
	xSq, err := nomial.Var(x).Pow(bigRat(2, 1))
	require.NoError(t, err)
	c := model.Constraint{
		Left:  xSq.Mul(yPow).Add(nomial.Const(3).Mul(nomial.Var(x))),
		Right: nomial.Const(4).Mul(nomial.Var(y)),
		Oper:  model.GreaterEq,
	}
	canon, err := Rewrite(c, sub)
	require.NoError(t, err)

	table := Jacobian([]Canonical{canon}, ix)
	require.Len(t, table, 1)
	require.Len(t, table[0], 2)

	point := map[*varkey.Key]float64{ix.Placeholder(1): 1.7, ix.Placeholder(2): 0.6}
	for p := 1; p <= ix.Len(); p++ {
		got, err := table[0][p-1].Eval(point)
		require.NoError(t, err)
		assert.InEpsilon(t, centralDifference(t, canon.Expr, point, ix.Placeholder(p)), got, 1e-5)
	}
}

func TestExport_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(t, "n")
		m := model.New("Generated")
		keys := make([]*varkey.Key, n)
		for i := range keys {
			keys[i] = varkey.NewIndexed("v", i)
		}
		m.Declare(keys...)

		pinned := 0
		for i, k := range keys {
			if rapid.Bool().Draw(t, fmt.Sprintf("pin%d", i)) {
				m.Substitutions[k] = rapid.Float64Range(0.5, 4).Draw(t, fmt.Sprintf("value%d", i))
				pinned++
			}
			m.AddConstraint(model.Constraint{Left: nomial.Var(k), Right: nomial.Const(1), Oper: model.GreaterEq})
			m.Cost = m.Cost.Add(nomial.Var(k))
		}

		first, err := Export(context.Background(), m, DefaultOptions())
		require.NoError(t, err)
		second, err := Export(context.Background(), m, DefaultOptions())
		require.NoError(t, err)

		require.Equal(t, render(first), render(second))
		require.Equal(t, n-pinned, first.Index.Len())

		for p := 1; p <= first.Index.Len(); p++ {
			k, ok := first.Index.KeyAt(p)
			require.True(t, ok)
			got, ok := first.Index.Position(k)
			require.True(t, ok)
			require.Equal(t, p, got)
			require.Equal(t, fmt.Sprintf("x_%d: %s", p, k), first.Lookup()[p-1])
			require.False(t, m.Substitutions.Has(k))
		}
	})
}

func TestExport_NilSolverForSolutionGuess(t *testing.T) {
	x := varkey.New("x")
	m := model.New("NoSolver")
	m.Declare(x)
	m.Cost = nomial.Var(x)

	opts := DefaultOptions()
	opts.Guess = OneSigFig()
	_, err := Export(context.Background(), m, opts)
	require.True(t, errors.Is(err, ErrNoSolver))
}
