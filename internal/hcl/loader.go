package hcl

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/spf13/afero"
	"github.com/vk/fmexport/internal/ctxlog"
	"github.com/vk/fmexport/internal/fsutil"
	"github.com/vk/fmexport/internal/model"
)

// Extension is the file extension of model files.
const Extension = ".hcl"

var (
	// ErrNoModelFiles is returned when the given paths hold no model file.
	ErrNoModelFiles = errors.New("no model files found")

	// ErrRootModel is returned unless exactly one root model block exists.
	ErrRootModel = errors.New("expected exactly one root model")
)

// Loader reads model files from a filesystem.
type Loader struct {
	fs afero.Fs
}

// NewLoader creates a loader reading from fs, or from the OS filesystem when
// fs is nil.
func NewLoader(fs afero.Fs) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{fs: fs}
}

type parsedRoot struct {
	file  string
	block *modelBlock
}

// Load parses every model file under paths and builds the single root
// model they define.
func (l *Loader) Load(ctx context.Context, paths ...string) (*model.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(l.fs, Extension, paths...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoModelFiles
	}
	logger.Debug("Discovered model files.", "count", len(files))

	parser := hclparse.NewParser()
	var roots []parsedRoot
	for _, file := range files {
		src, err := afero.ReadFile(l.fs, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read model file %s: %w", file, err)
		}
		found, err := decodeFile(parser, src, file)
		if err != nil {
			return nil, err
		}
		roots = append(roots, found...)
	}
	return build(ctx, roots)
}

// LoadSource builds the model defined by a single in-memory source.
func (l *Loader) LoadSource(ctx context.Context, filename string, src []byte) (*model.Model, error) {
	roots, err := decodeFile(hclparse.NewParser(), src, filename)
	if err != nil {
		return nil, err
	}
	return build(ctx, roots)
}

func decodeFile(parser *hclparse.Parser, src []byte, file string) ([]parsedRoot, error) {
	hclFile, diags := parser.ParseHCL(src, file)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
	}

	out := make([]parsedRoot, len(root.Models))
	for i, b := range root.Models {
		out[i] = parsedRoot{file: file, block: b}
	}
	return out, nil
}

func build(ctx context.Context, roots []parsedRoot) (*model.Model, error) {
	logger := ctxlog.FromContext(ctx)

	if len(roots) != 1 {
		names := make([]string, len(roots))
		for i, r := range roots {
			names[i] = fmt.Sprintf("%q in %s", r.block.Name, r.file)
		}
		return nil, fmt.Errorf("%w, found %d %v", ErrRootModel, len(roots), names)
	}
	root := roots[0]

	m := model.New(root.block.Name)
	top, diags := declare(ctx, m, root.block, root.block.Name, nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid model in %s: %w", root.file, diags)
	}

	diags = addConstraints(m, top)
	diags = append(diags, setObjective(m, top)...)
	diags = append(diags, recordSolutions(ctx, m, root.block)...)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid model in %s: %w", root.file, diags)
	}

	logger.Debug("HCL loading complete.",
		"model", m.Name,
		"variables", len(m.Declared()),
		"pinned", len(m.Substitutions),
		"constraints", len(m.Constraints),
	)
	return m, nil
}

// addConstraints translates the constraints of s and its submodels,
// parents first.
func addConstraints(m *model.Model, s *scope) hcl.Diagnostics {
	var diags hcl.Diagnostics
	if attr := s.block.Constraints; attr != nil {
		list, ok := attr.Expr.(*hclsyntax.TupleConsExpr)
		if !ok {
			diags = append(diags, errorf(attr.Expr.Range(), "Invalid constraints", "The constraints of model %s must be a list.", s.path))
		} else {
			for i, e := range list.Exprs {
				cs, d := s.constraints(e)
				diags = append(diags, d...)
				for j, c := range cs {
					c.Label = fmt.Sprintf("%s.constraints[%d]", s.path, i)
					if len(cs) > 1 {
						c.Label += fmt.Sprintf("[%d]", j)
					}
					m.AddConstraint(c)
				}
			}
		}
	}
	for _, child := range s.order {
		diags = append(diags, addConstraints(m, child)...)
	}
	return diags
}

func setObjective(m *model.Model, s *scope) hcl.Diagnostics {
	attr := s.block.Objective
	if attr == nil {
		return hcl.Diagnostics{errorf(hcl.Range{}, "Missing objective", "Model %s has no objective.", s.path)}
	}
	expr, ok := attr.Expr.(hclsyntax.Expression)
	if !ok {
		return hcl.Diagnostics{errorf(attr.Expr.Range(), "Invalid objective", "The objective must be written in native HCL syntax.")}
	}
	cost, diags := s.walk(expr)
	if diags.HasErrors() {
		return diags
	}
	if cost.vector {
		return hcl.Diagnostics{errorf(attr.Expr.Range(), "Invalid objective", "The objective must be a scalar; wrap vectors in sum or prod.")}
	}
	m.Cost = cost.elems[0]
	return nil
}

// recordSolutions attaches a model.Recorded solver holding the root's
// solution blocks. Names are resolved against the declared variables.
func recordSolutions(ctx context.Context, m *model.Model, b *modelBlock) hcl.Diagnostics {
	if len(b.Solutions) == 0 {
		return nil
	}

	var diags hcl.Diagnostics
	rec := model.NewRecorded()
	for _, sb := range b.Solutions {
		if sb.Procedure != model.ProcedureSolve && sb.Procedure != model.ProcedureLocalSolve {
			diags = append(diags, errorf(sb.Values.Range(), "Unknown procedure", "Solution procedure must be %q or %q, got %q.", model.ProcedureSolve, model.ProcedureLocalSolve, sb.Procedure))
			continue
		}
		if _, dup := rec.Solutions[sb.Procedure]; dup {
			diags = append(diags, errorf(sb.Values.Range(), "Duplicate solution", "Only one %q solution is allowed.", sb.Procedure))
			continue
		}

		var values map[string]float64
		if _, d := decodeExpr(ctx, sb.Values, &values); d.HasErrors() {
			diags = append(diags, d...)
			continue
		}
		sol := make(model.Solution, len(values))
		for name, v := range values {
			k, err := m.Lookup(name)
			if err != nil {
				diags = append(diags, errorf(sb.Values.Range(), "Unknown variable", "Solution %q: %s.", sb.Procedure, err))
				continue
			}
			sol[k] = v
		}
		rec.Record(sb.Procedure, sol)
	}
	m.Solver = rec
	return diags
}
