package hcl

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fmexport/internal/model"
	"github.com/vk/fmexport/internal/varkey"
)

const aircraft = `
model "Aircraft" {
  variable "x" {}
  variable "rho" {
    value = 1.2
    units = "kg/m^3"
  }
  variable "z" { length = 3 }

  constraints = [
    x >= 1,
    pow(x, 0.5) * z[0] <= 1,
    Wing.S * rho == 2,
    z >= 0.1,
  ]
  objective = x + sum(z)

  model "Wing" {
    variable "S" { label = "area" }
    constraints = [S >= 0.5]
  }

  solution "solve" {
    values = { "x" = 1, "Wing.S" = 2, "z[0]" = 1, "z[1]" = 1, "z[2]" = 1 }
  }
}
`

func load(t *testing.T, src string) (*model.Model, error) {
	t.Helper()
	return NewLoader(afero.NewMemMapFs()).LoadSource(context.Background(), "test.hcl", []byte(src))
}

// mod wraps body lines in a model block, one statement per line.
func mod(lines ...string) string {
	return "model \"M\" {\n  " + strings.Join(lines, "\n  ") + "\n}\n"
}

func names(keys []*varkey.Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

func TestLoad_Aircraft(t *testing.T) {
	m, err := load(t, aircraft)
	require.NoError(t, err)

	assert.Equal(t, "Aircraft", m.Name)
	assert.Equal(t, []string{"x", "rho", "z[0]", "z[1]", "z[2]", "Wing.S"}, names(m.Declared()))

	rho, err := m.Lookup("rho")
	require.NoError(t, err)
	assert.Equal(t, model.Substitutions{rho: 1.2}, m.Substitutions)
	assert.Equal(t, "kg/m^3", rho.Units)

	s, err := m.Lookup("Wing.S")
	require.NoError(t, err)
	assert.Equal(t, "area", s.Label)
	assert.Equal(t, []string{"Wing"}, s.Lineage)

	got := make([]string, len(m.Constraints))
	for i, c := range m.Constraints {
		got[i] = c.String()
	}
	assert.Equal(t, []string{
		"x >= 1",
		"x**0.5*z[0] <= 1",
		"Wing.S*rho = 2",
		"z[0] >= 0.1",
		"z[1] >= 0.1",
		"z[2] >= 0.1",
		"Wing.S >= 0.5",
	}, got, "pinned variables stay symbolic until export")
	assert.Equal(t, "Aircraft.constraints[3][1]", m.Constraints[4].Label)
	assert.Equal(t, "Aircraft.Wing.constraints[0]", m.Constraints[6].Label)

	assert.Equal(t, "x + z[0] + z[1] + z[2]", m.Cost.String())

	require.NotNil(t, m.Solver)
	sol, err := m.Solver.Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, 2.0, sol[s])
	assert.Len(t, sol, 5)
}

func TestLoad_Operators(t *testing.T) {
	testCases := []struct {
		name string
		expr string
		want string
	}{
		{"division by monomial", "(x + 1) / (2 * y)", "0.5*x*y**(-1) + 0.5*y**(-1)"},
		{"unary minus", "-x + 3", "-x + 3"},
		{"sqrt", "sqrt(x * y)", "x**0.5*y**0.5"},
		{"negative exponent", "pow(x, -2)", "x**(-2)"},
		{"constant exponent expression", "pow(y, 1 / 4)", "y**0.25"},
		{"prod over vector", "prod(v)", "v[0]*v[1]"},
		{"vector broadcast then sum", "sum(2 * v)", "2*v[0] + 2*v[1]"},
		{"binomial", "pow(x + 1, 2)", "x**2 + 2*x + 1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := `model "M" {
  variable "x" {}
  variable "y" {}
  variable "v" { length = 2 }
  objective = ` + tc.expr + `
}`
			m, err := load(t, src)
			require.NoError(t, err)
			assert.Equal(t, tc.want, m.Cost.String())
		})
	}
}

func TestLoad_VectorValue(t *testing.T) {
	m, err := load(t, `model "M" {
  variable "w" {
    length = 2
    value  = [3, 4]
  }
  variable "x" {}
  constraints = [x >= sum(w)]
  objective = x
}`)
	require.NoError(t, err)

	w0, err := m.Lookup("w[0]")
	require.NoError(t, err)
	w1, err := m.Lookup("w[1]")
	require.NoError(t, err)
	assert.Equal(t, model.Substitutions{w0: 3, w1: 4}, m.Substitutions)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "strict inequality",
			src:     mod(`variable "x" {}`, `constraints = [x > 1]`, `objective = x`),
			wantErr: "Strict inequality",
		},
		{
			name:    "unknown reference",
			src:     mod(`variable "x" {}`, `constraints = [y >= 1]`, `objective = x`),
			wantErr: `no variable "y"`,
		},
		{
			name:    "unknown submodel",
			src:     mod(`variable "x" {}`, `constraints = [Tail.S >= 1]`, `objective = x`),
			wantErr: `no submodel "Tail"`,
		},
		{
			name:    "division by posynomial",
			src:     mod(`variable "x" {}`, `objective = 1 / (x + 1)`),
			wantErr: "Invalid operation",
		},
		{
			name:    "variable exponent",
			src:     mod(`variable "x" {}`, `objective = pow(x, x)`),
			wantErr: "must be a constant",
		},
		{
			name:    "unknown function",
			src:     mod(`variable "x" {}`, `objective = log(x)`),
			wantErr: "Unknown function",
		},
		{
			name:    "index on scalar",
			src:     mod(`variable "x" {}`, `objective = x[0]`),
			wantErr: "is not a vector",
		},
		{
			name:    "index out of range",
			src:     mod(`variable "v" { length = 2 }`, `objective = v[2]`),
			wantErr: "out of range",
		},
		{
			name:    "vector objective",
			src:     mod(`variable "v" { length = 2 }`, `objective = v`),
			wantErr: "must be a scalar",
		},
		{
			name:    "vector length mismatch",
			src:     mod(`variable "v" { length = 2 }`, `variable "w" { length = 3 }`, `constraints = [v <= w]`, `objective = sum(v)`),
			wantErr: "Length mismatch",
		},
		{
			name:    "duplicate variable",
			src:     mod(`variable "x" {}`, `variable "x" {}`, `objective = x`),
			wantErr: "Duplicate variable",
		},
		{
			name:    "missing objective",
			src:     mod(`variable "x" {}`),
			wantErr: "Missing objective",
		},
		{
			name:    "objective on submodel",
			src:     mod(`variable "x" {}`, `objective = x`, `model "S" { objective = 1 }`),
			wantErr: "Objective on submodel",
		},
		{
			name:    "unknown solution variable",
			src:     mod(`variable "x" {}`, `objective = x`, `solution "solve" { values = { "y" = 1 } }`),
			wantErr: "Unknown variable",
		},
		{
			name:    "unknown procedure",
			src:     mod(`variable "x" {}`, `objective = x`, `solution "guess" { values = { "x" = 1 } }`),
			wantErr: "Unknown procedure",
		},
		{
			name:    "vector value length",
			src:     mod("variable \"v\" {\n    length = 2\n    value  = [1]\n  }", `objective = sum(v)`),
			wantErr: "2 but 1 values",
		},
		{
			name:    "constraints not a list",
			src:     mod(`variable "x" {}`, `constraints = x`, `objective = x`),
			wantErr: "must be a list",
		},
		{
			name:    "syntax error",
			src:     `model "M" {`,
			wantErr: "failed to parse HCL file test.hcl",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(t, tc.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_RootModelCount(t *testing.T) {
	_, err := load(t, `model "A" { objective = 1 }
model "B" { objective = 1 }`)
	require.ErrorIs(t, err, ErrRootModel)

	_, err = load(t, `# nothing here`)
	require.ErrorIs(t, err, ErrRootModel)
}

func TestLoader_LoadFromDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := filepath.Join("work", "models")
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, "aircraft.hcl"), []byte(aircraft), 0o644))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, "README.md"), []byte("notes"), 0o644))

	m, err := NewLoader(fs).Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "Aircraft", m.Name)

	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, "other.hcl"), []byte(`model "Other" { objective = 1 }`), 0o644))
	_, err = NewLoader(fs).Load(context.Background(), dir)
	require.ErrorIs(t, err, ErrRootModel)

	_, err = NewLoader(fs).Load(context.Background(), filepath.Join(dir, "README.md"))
	require.ErrorIs(t, err, ErrNoModelFiles)
}
