package hcl

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/fmexport/internal/model"
	"github.com/vk/fmexport/internal/varkey"
)

// variable is a declared model variable; vectors hold one key per element.
type variable struct {
	keys   []*varkey.Key
	vector bool
}

// scope is the name space of one model block.
type scope struct {
	path     string
	lineage  []string
	block    *modelBlock
	vars     map[string]*variable
	children map[string]*scope
	order    []*scope
}

// declare walks b depth-first, declaring every variable on m in natural
// order (own variables first, then submodels) and pinning those with a
// value.
func declare(ctx context.Context, m *model.Model, b *modelBlock, path string, lineage []string) (*scope, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	s := &scope{
		path:     path,
		lineage:  lineage,
		block:    b,
		vars:     make(map[string]*variable),
		children: make(map[string]*scope),
	}

	for _, vb := range b.Variables {
		if !validName(vb.Name) {
			diags = append(diags, errorf(vb.Value.Range(), "Invalid variable name", "%q is not a valid variable name in model %s.", vb.Name, path))
			continue
		}
		if _, dup := s.vars[vb.Name]; dup {
			diags = append(diags, errorf(vb.Value.Range(), "Duplicate variable", "Variable %q is declared twice in model %s.", vb.Name, path))
			continue
		}
		v, d := declareVariable(ctx, m, vb, lineage)
		diags = append(diags, d...)
		if v != nil {
			s.vars[vb.Name] = v
		}
	}

	for _, sub := range b.Models {
		if _, clash := s.vars[sub.Name]; clash {
			diags = append(diags, errorf(hcl.Range{}, "Duplicate name", "Submodel %q of %s has the same name as a variable.", sub.Name, path))
			continue
		}
		if _, dup := s.children[sub.Name]; dup {
			diags = append(diags, errorf(hcl.Range{}, "Duplicate submodel", "Submodel %q is declared twice in model %s.", sub.Name, path))
			continue
		}
		if sub.Objective != nil {
			diags = append(diags, errorf(sub.Objective.Range, "Objective on submodel", "Only the root model may set an objective; %s.%s does.", path, sub.Name))
		}
		if len(sub.Solutions) > 0 {
			diags = append(diags, errorf(hcl.Range{}, "Solution on submodel", "Only the root model may record solutions; %s.%s does.", path, sub.Name))
		}

		childLineage := append(append([]string(nil), lineage...), sub.Name)
		child, d := declare(ctx, m, sub, path+"."+sub.Name, childLineage)
		diags = append(diags, d...)
		s.children[sub.Name] = child
		s.order = append(s.order, child)
	}
	return s, diags
}

func declareVariable(ctx context.Context, m *model.Model, vb *variableBlock, lineage []string) (*variable, hcl.Diagnostics) {
	if vb.Length < 0 {
		return nil, hcl.Diagnostics{errorf(vb.Value.Range(), "Invalid length", "Variable %q has negative length %d.", vb.Name, vb.Length)}
	}

	v := &variable{vector: vb.Length > 0}
	if v.vector {
		for i := 0; i < vb.Length; i++ {
			v.keys = append(v.keys, newKey(vb, i, lineage))
		}
	} else {
		v.keys = []*varkey.Key{newKey(vb, -1, lineage)}
	}
	m.Declare(v.keys...)

	if v.vector {
		var values []float64
		ok, diags := decodeExpr(ctx, vb.Value, &values)
		if diags.HasErrors() || !ok {
			return v, diags
		}
		if len(values) != len(v.keys) {
			return v, hcl.Diagnostics{errorf(vb.Value.Range(), "Invalid value", "Vector %q has length %d but %d values were given.", vb.Name, len(v.keys), len(values))}
		}
		for i, k := range v.keys {
			m.Substitutions[k] = values[i]
		}
		return v, nil
	}

	var value float64
	ok, diags := decodeExpr(ctx, vb.Value, &value)
	if ok {
		m.Substitutions[v.keys[0]] = value
	}
	return v, diags
}

func newKey(vb *variableBlock, index int, lineage []string) *varkey.Key {
	k := varkey.NewIndexed(vb.Name, index, append([]string(nil), lineage...)...)
	k.Units = vb.Units
	k.Label = vb.Label
	return k
}

// validName reports whether name parses as a single unindexed segment.
func validName(name string) bool {
	addr, err := varkey.Parse(name)
	return err == nil && len(addr.Path) == 1 && !addr.Path[0].HasIndex()
}

// lookup resolves a dotted path of submodel names followed by a variable
// name, relative to s.
func (s *scope) lookup(names []string) (*variable, error) {
	cur := s
	for _, n := range names[:len(names)-1] {
		child, ok := cur.children[n]
		if !ok {
			return nil, fmt.Errorf("model %s has no submodel %q", cur.path, n)
		}
		cur = child
	}
	last := names[len(names)-1]
	v, ok := cur.vars[last]
	if !ok {
		if _, isModel := cur.children[last]; isModel {
			return nil, fmt.Errorf("%s refers to a model, not a variable", strings.Join(names, "."))
		}
		return nil, fmt.Errorf("model %s has no variable %q", cur.path, last)
	}
	return v, nil
}

func errorf(rng hcl.Range, summary, format string, args ...any) *hcl.Diagnostic {
	d := &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   fmt.Sprintf(format, args...),
	}
	if rng.Filename != "" {
		d.Subject = rng.Ptr()
	}
	return d
}
