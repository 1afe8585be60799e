package mfile

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/vk/fmexport/internal/export"
	"github.com/vk/fmexport/internal/nomial"
)

// Artifact file names.
const (
	ConfunFile = "confun.m"
	ObjfunFile = "objfun.m"
	MainFile   = "main.m"
	LookupFile = "lookup.txt"
)

// Row separators inside the derivative matrices. The indentation lines
// entries up under the opening bracket.
const (
	dcEntrySep   = ",...\n          "
	dcRowSep     = ";\n          "
	dceqEntrySep = ",...\n            "
	dceqRowSep   = ";\n            "
	gradfSep     = "\n              "
)

// ErrNilResult is returned when Render is called without a result.
var ErrNilResult = errors.New("nothing to render")

// Artifact is one rendered output file.
type Artifact struct {
	Name    string
	Content []byte
}

// Artifacts is the ordered set produced by Render.
type Artifacts []Artifact

// Get returns the artifact called name.
func (a Artifacts) Get(name string) (Artifact, bool) {
	for _, art := range a {
		if art.Name == name {
			return art, true
		}
	}
	return Artifact{}, false
}

// Names returns the artifact names in output order.
func (a Artifacts) Names() []string {
	out := make([]string, len(a))
	for i, art := range a {
		out[i] = art.Name
	}
	return out
}

type confunData struct {
	C          []string
	Ceq        []string
	Positivity bool
	Gradients  bool
	DC         string
	DCeq       string
}

type objfunData struct {
	F         string
	Gradients bool
	Gradf     string
}

type mainData struct {
	X0         string
	Algorithm  string
	GradObj    bool
	GradConstr bool
	Fval       string
	Solval     string
	LogSpace   bool
}

// Render builds every artifact for res in memory.
func Render(res *export.Result) (Artifacts, error) {
	if res == nil {
		return nil, ErrNilResult
	}

	confun := confunData{
		Positivity: !res.LogSpace,
		Gradients:  res.GradConstraints,
	}
	for _, row := range res.Inequalities {
		confun.C = append(confun.C, rowText(row))
	}
	for _, row := range res.Equalities {
		confun.Ceq = append(confun.Ceq, rowText(row))
	}
	if confun.Gradients {
		confun.DC = derivativeMatrix(res.Inequalities, dcEntrySep, dcRowSep)
		if confun.Positivity {
			if confun.DC != "" {
				confun.DC += ";..." + strings.TrimPrefix(dcRowSep, ";")
			}
			confun.DC += "-eye(numel(x))"
		}
		confun.DCeq = derivativeMatrix(res.Equalities, dceqEntrySep, dceqRowSep)
	}

	objfun := objfunData{
		F:         rowText(res.Objective),
		Gradients: res.GradObjective,
		Gradf:     strings.Join(formatAll(res.Objective.Grad), gradfSep),
	}

	driver := mainData{
		X0:         initialGuess(res.Guess, res.LogSpace),
		Algorithm:  string(res.Algorithm),
		GradObj:    res.GradObjective,
		GradConstr: res.GradConstraints,
		Fval:       "fval",
		Solval:     "x(i)",
		LogSpace:   res.LogSpace,
	}
	if res.LogSpace {
		driver.Fval = "exp(fval)"
		driver.Solval = "exp(x(i))"
	}

	out := make(Artifacts, 0, 4)
	for _, step := range []struct {
		tmpl *template.Template
		data any
	}{
		{confunTmpl, confun},
		{objfunTmpl, objfun},
		{mainTmpl, driver},
		{lookupTmpl, res.Lookup()},
	} {
		var buf bytes.Buffer
		if err := step.tmpl.Execute(&buf, step.data); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", step.tmpl.Name(), err)
		}
		out = append(out, Artifact{Name: step.tmpl.Name(), Content: buf.Bytes()})
	}
	return out, nil
}

func rowText(row export.Row) string {
	if row.Log != nil {
		return LogSum(row.Log)
	}
	return Matlab.Format(row.Expr)
}

func formatAll(exprs []nomial.Signomial) []string {
	out := make([]string, len(exprs))
	for i, e := range exprs {
		out[i] = Matlab.Format(e)
	}
	return out
}

func derivativeMatrix(rows []export.Row, entrySep, rowSep string) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = strings.Join(formatAll(row.Grad), entrySep)
	}
	return strings.Join(lines, rowSep)
}

// initialGuess renders the x0 assignment.
func initialGuess(g export.InitialGuess, logSpace bool) string {
	if g.Uniform {
		fill := "ones"
		if logSpace {
			fill = "zeros"
		}
		return fmt.Sprintf("x0 = %s(%d,1);", fill, len(g.Values))
	}
	values := make([]string, len(g.Values))
	for i, v := range g.Values {
		values[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "x0 = [" + strings.Join(values, ", ") + "]';"
}
