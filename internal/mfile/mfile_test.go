package mfile

import (
	"context"
	"math/big"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fmexport/internal/export"
	"github.com/vk/fmexport/internal/model"
	"github.com/vk/fmexport/internal/nomial"
	"github.com/vk/fmexport/internal/varkey"
)

func bigRat(n int64) *big.Rat        { return big.NewRat(n, 1) }
func bigRatFrac(p, q int64) *big.Rat { return big.NewRat(p, q) }

func simpleModel() *model.Model {
	x := varkey.New("x")
	m := model.New("Simple")
	m.Declare(x)
	m.AddConstraint(model.Constraint{Left: nomial.Var(x), Right: nomial.Const(1), Oper: model.GreaterEq})
	m.Cost = nomial.Var(x)
	return m
}

func renderModel(t *testing.T, m *model.Model, opts export.Options) Artifacts {
	t.Helper()
	res, err := export.Export(context.Background(), m, opts)
	require.NoError(t, err)
	arts, err := Render(res)
	require.NoError(t, err)
	return arts
}

func content(t *testing.T, arts Artifacts, name string) string {
	t.Helper()
	art, ok := arts.Get(name)
	require.True(t, ok, "missing artifact %s", name)
	return string(art.Content)
}

func TestRender_SimpleModel(t *testing.T) {
	arts := renderModel(t, simpleModel(), export.DefaultOptions())
	assert.Equal(t, []string{ConfunFile, ObjfunFile, MainFile, LookupFile}, arts.Names())

	wantConfun := `function [c, ceq, DC, DCeq] = confun(x)
% Nonlinear inequality constraints
c = [
    1 - x(1)
    -x
    ];

ceq = [
      ];
if nargout > 2
    DC = [
          -1;...
          -eye(numel(x))
         ]';
    DCeq = [
           ]';
end
`
	if diff := cmp.Diff(wantConfun, content(t, arts, ConfunFile)); diff != "" {
		t.Errorf("confun.m mismatch (-want +got):\n%s", diff)
	}

	wantObjfun := `function [f, gradf] = objfun(x)
f = x(1);
if nargout > 1
    gradf  = [1];
end
`
	if diff := cmp.Diff(wantObjfun, content(t, arts, ObjfunFile)); diff != "" {
		t.Errorf("objfun.m mismatch (-want +got):\n%s", diff)
	}

	driver := content(t, arts, MainFile)
	assert.Contains(t, driver, "x0 = ones(1,1);\noptions = optimoptions('fmincon');\n")
	assert.Contains(t, driver, "options.Algorithm = 'interior-point';")
	assert.Contains(t, driver, "options.SpecifyObjectiveGradient = true;")
	assert.Contains(t, driver, "options.SpecifyConstraintGradient = true;")
	assert.Contains(t, driver, "fprintf(fid, '%.5g', fval);")
	assert.Contains(t, driver, `fprintf(fid, '%.4g\n', x(i));`)
	assert.NotContains(t, driver, "logsolution.txt")

	assert.Equal(t, "x_1: x\n", content(t, arts, LookupFile))
}

func TestRender_MatrixLayout(t *testing.T) {
	x, y := varkey.New("x"), varkey.New("y")
	m := model.New("Matrix")
	m.Declare(x, y)
	sq, err := nomial.Var(x).Pow(bigRat(2))
	require.NoError(t, err)
	m.AddConstraint(model.Constraint{Left: sq.Mul(nomial.Var(y)), Right: nomial.Const(1), Oper: model.LessEq})
	m.AddConstraint(model.Constraint{Left: nomial.Var(x), Right: nomial.Var(y), Oper: model.Equal})
	m.Cost = nomial.Var(x).Add(nomial.Var(y))

	opts := export.DefaultOptions()
	opts.Algorithm = export.SQP
	opts.Guess = export.List(0.5, 2)
	arts := renderModel(t, m, opts)

	wantConfun := `function [c, ceq, DC, DCeq] = confun(x)
% Nonlinear inequality constraints
c = [
    x(1).^2*x(2) - 1
    -x
    ];

ceq = [
      x(2) - x(1)
      ];
if nargout > 2
    DC = [
          2*x(1)*x(2),...
          x(1).^2;...
          -eye(numel(x))
         ]';
    DCeq = [
            -1,...
            1
           ]';
end
`
	if diff := cmp.Diff(wantConfun, content(t, arts, ConfunFile)); diff != "" {
		t.Errorf("confun.m mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, content(t, arts, ObjfunFile), "gradf  = [1\n              1];")

	driver := content(t, arts, MainFile)
	assert.Contains(t, driver, "x0 = [0.5, 2]';\n")
	assert.Contains(t, driver, "options.Algorithm = 'sqp';")
	assert.Equal(t, "x_1: x\nx_2: y\n", content(t, arts, LookupFile))
}

func TestRender_LogSpace(t *testing.T) {
	x, y := varkey.New("x"), varkey.New("y")
	m := model.New("Log")
	m.Declare(x, y)
	inv, err := nomial.Var(y).Pow(bigRat(-1))
	require.NoError(t, err)
	m.AddConstraint(model.Constraint{Left: nomial.Const(2).Mul(nomial.Var(x)).Mul(inv).Add(nomial.Const(3)), Right: nomial.Const(1), Oper: model.LessEq})
	m.AddConstraint(model.Constraint{Left: nomial.Var(x), Right: nomial.Const(1), Oper: model.GreaterEq})
	m.AddConstraint(model.Constraint{Left: nomial.Var(x).Mul(nomial.Var(y)), Right: nomial.Const(1), Oper: model.Equal})
	m.Cost = nomial.Var(x)

	opts := export.DefaultOptions()
	opts.LogSpace = true
	arts := renderModel(t, m, opts)

	wantConfun := `function [c, ceq, DC, DCeq] = confun(x)
% Nonlinear inequality constraints
c = [
    log(2*exp(x(1) - x(2)) + 3*exp(0))
    -log(1*exp(x(1)))
    ];

ceq = [
      log(1*exp(x(1) + x(2)))
      ];
`
	if diff := cmp.Diff(wantConfun, content(t, arts, ConfunFile)); diff != "" {
		t.Errorf("confun.m mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "function [f, gradf] = objfun(x)\nf = log(1*exp(x(1)));\n", content(t, arts, ObjfunFile))

	driver := content(t, arts, MainFile)
	assert.Contains(t, driver, "x0 = zeros(2,1);\n")
	assert.Contains(t, driver, "options.SpecifyObjectiveGradient = false;")
	assert.Contains(t, driver, "fprintf(fid, '%.5g', exp(fval));")
	assert.Contains(t, driver, `fprintf(fid, '%.4g\n', exp(x(i)));`)
	assert.Contains(t, driver, "fid = fopen('logsolution.txt', 'w');")
}

func TestRender_NilResult(t *testing.T) {
	_, err := Render(nil)
	require.ErrorIs(t, err, ErrNilResult)
}

func TestLinearForm(t *testing.T) {
	a, b := varkey.Placeholder(1), varkey.Placeholder(2)
	m := nomial.NewMonomial(4,
		nomial.Factor{Key: a, Exp: bigRatFrac(-1, 3)},
		nomial.Factor{Key: b, Exp: bigRatFrac(1, 2)},
	)
	assert.Equal(t, "-(1/3)*x(1) + 0.5*x(2)", linearForm(m))
}

func TestWriter_WritesAllArtifacts(t *testing.T) {
	fs := afero.NewMemMapFs()
	arts := renderModel(t, simpleModel(), export.DefaultOptions())

	w := NewWriter(fs, "out")
	require.NoError(t, w.Write(context.Background(), arts))

	entries, err := afero.ReadDir(fs, "out")
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	assert.Equal(t, []string{ConfunFile, LookupFile, MainFile, ObjfunFile}, names, "no temporary files remain")

	got, err := afero.ReadFile(fs, filepath.Join("out", ObjfunFile))
	require.NoError(t, err)
	want, _ := arts.Get(ObjfunFile)
	assert.Equal(t, want.Content, got)
}

func TestWriter_ReadOnlyFilesystem(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, base.MkdirAll("out", 0o755))
	w := NewWriter(afero.NewReadOnlyFs(base), "out")

	err := w.Write(context.Background(), Artifacts{{Name: MainFile, Content: []byte("x0 = 1;\n")}})
	require.Error(t, err)

	exists, err := afero.Exists(base, filepath.Join("out", MainFile))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWriter_CanceledContext(t *testing.T) {
	fs := afero.NewMemMapFs()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewWriter(fs, "out").Write(ctx, Artifacts{{Name: MainFile, Content: []byte("x")}})
	require.ErrorIs(t, err, context.Canceled)

	entries, err := afero.ReadDir(fs, "out")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
