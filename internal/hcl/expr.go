package hcl

import (
	"math/big"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/fmexport/internal/model"
	"github.com/vk/fmexport/internal/nomial"
	"github.com/zclconf/go-cty/cty/gocty"
)

// operand is the translation of an expression: a scalar or a vector of
// signomials. Arithmetic broadcasts scalars over vectors.
type operand struct {
	elems  []nomial.Signomial
	vector bool
}

func scalar(s nomial.Signomial) operand {
	return operand{elems: []nomial.Signomial{s}}
}

// constant returns the value of a scalar operand without variables.
func (o operand) constant() (float64, bool) {
	if o.vector {
		return 0, false
	}
	s := o.elems[0]
	if s.IsZero() {
		return 0, true
	}
	mon, ok := s.Monomial()
	if !ok || !mon.IsConstant() {
		return 0, false
	}
	return mon.C, true
}

var half = big.NewRat(1, 2)

// constraints translates one element of a `constraints` list. A vector
// comparison yields one constraint per element.
func (s *scope) constraints(expr hcl.Expression) ([]model.Constraint, hcl.Diagnostics) {
	bin, ok := expr.(*hclsyntax.BinaryOpExpr)
	if !ok {
		return nil, hcl.Diagnostics{errorf(expr.Range(), "Invalid constraint", "A constraint must compare two expressions with <=, >= or ==.")}
	}

	var oper model.Oper
	switch bin.Op {
	case hclsyntax.OpLessThanOrEqual:
		oper = model.LessEq
	case hclsyntax.OpGreaterThanOrEqual:
		oper = model.GreaterEq
	case hclsyntax.OpEqual:
		oper = model.Equal
	case hclsyntax.OpLessThan, hclsyntax.OpGreaterThan:
		return nil, hcl.Diagnostics{errorf(expr.Range(), "Strict inequality", "Strict comparisons are not supported; use <= or >=.")}
	default:
		return nil, hcl.Diagnostics{errorf(expr.Range(), "Invalid constraint", "A constraint must compare two expressions with <=, >= or ==.")}
	}

	left, diags := s.walk(bin.LHS)
	right, d := s.walk(bin.RHS)
	diags = append(diags, d...)
	if diags.HasErrors() {
		return nil, diags
	}

	pairs, d := zip(left, right, expr.Range())
	if d.HasErrors() {
		return nil, d
	}
	out := make([]model.Constraint, len(pairs))
	for i, p := range pairs {
		out[i] = model.Constraint{Left: p[0], Right: p[1], Oper: oper}
	}
	return out, nil
}

// walk translates an arithmetic expression.
func (s *scope) walk(expr hclsyntax.Expression) (operand, hcl.Diagnostics) {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		f, err := numberValue(e.Val)
		if err != nil {
			return operand{}, hcl.Diagnostics{errorf(e.Range(), "Invalid literal", "Only numbers may appear in expressions: %s.", err)}
		}
		return scalar(nomial.Const(f)), nil

	case *hclsyntax.ParenthesesExpr:
		return s.walk(e.Expression)

	case *hclsyntax.UnaryOpExpr:
		if e.Op != hclsyntax.OpNegate {
			return operand{}, hcl.Diagnostics{errorf(e.Range(), "Unsupported operator", "Only unary minus is supported.")}
		}
		v, diags := s.walk(e.Val)
		if diags.HasErrors() {
			return operand{}, diags
		}
		return mapOperand(v, func(x nomial.Signomial) (nomial.Signomial, error) { return x.Neg(), nil }, e.Range())

	case *hclsyntax.BinaryOpExpr:
		return s.arithmetic(e)

	case *hclsyntax.ScopeTraversalExpr:
		return s.reference(e.Traversal, e.Range())

	case *hclsyntax.FunctionCallExpr:
		return s.call(e)
	}
	return operand{}, hcl.Diagnostics{errorf(expr.Range(), "Unsupported expression", "Expressions may only use numbers, variables, + - * /, pow, sqrt, sum and prod.")}
}

func (s *scope) arithmetic(e *hclsyntax.BinaryOpExpr) (operand, hcl.Diagnostics) {
	var op func(a, b nomial.Signomial) (nomial.Signomial, error)
	switch e.Op {
	case hclsyntax.OpAdd:
		op = func(a, b nomial.Signomial) (nomial.Signomial, error) { return a.Add(b), nil }
	case hclsyntax.OpSubtract:
		op = func(a, b nomial.Signomial) (nomial.Signomial, error) { return a.Sub(b), nil }
	case hclsyntax.OpMultiply:
		op = func(a, b nomial.Signomial) (nomial.Signomial, error) { return a.Mul(b), nil }
	case hclsyntax.OpDivide:
		op = func(a, b nomial.Signomial) (nomial.Signomial, error) { return a.Div(b) }
	case hclsyntax.OpLessThan, hclsyntax.OpGreaterThan, hclsyntax.OpLessThanOrEqual,
		hclsyntax.OpGreaterThanOrEqual, hclsyntax.OpEqual, hclsyntax.OpNotEqual:
		return operand{}, hcl.Diagnostics{errorf(e.Range(), "Misplaced comparison", "Comparisons may only appear at the top of a constraint.")}
	default:
		return operand{}, hcl.Diagnostics{errorf(e.Range(), "Unsupported operator", "Only + - * / are supported.")}
	}

	left, diags := s.walk(e.LHS)
	right, d := s.walk(e.RHS)
	diags = append(diags, d...)
	if diags.HasErrors() {
		return operand{}, diags
	}

	pairs, diags := zip(left, right, e.Range())
	if diags.HasErrors() {
		return operand{}, diags
	}
	out := operand{vector: left.vector || right.vector, elems: make([]nomial.Signomial, len(pairs))}
	for i, p := range pairs {
		v, err := op(p[0], p[1])
		if err != nil {
			return operand{}, hcl.Diagnostics{errorf(e.Range(), "Invalid operation", "%s.", err)}
		}
		out.elems[i] = v
	}
	return out, nil
}

// reference resolves `name`, `Sub.name` or `name[i]`.
func (s *scope) reference(t hcl.Traversal, rng hcl.Range) (operand, hcl.Diagnostics) {
	names := []string{t.RootName()}
	index := -1
	for i, step := range t[1:] {
		switch st := step.(type) {
		case hcl.TraverseAttr:
			names = append(names, st.Name)
		case hcl.TraverseIndex:
			if i != len(t)-2 {
				return operand{}, hcl.Diagnostics{errorf(rng, "Invalid reference", "Only the last part of a reference may be indexed.")}
			}
			if err := gocty.FromCtyValue(st.Key, &index); err != nil || index < 0 {
				return operand{}, hcl.Diagnostics{errorf(rng, "Invalid index", "Index must be a non-negative integer.")}
			}
		default:
			return operand{}, hcl.Diagnostics{errorf(rng, "Invalid reference", "Unsupported reference form.")}
		}
	}

	v, err := s.lookup(names)
	if err != nil {
		return operand{}, hcl.Diagnostics{errorf(rng, "Unknown reference", "%s.", err)}
	}

	if index >= 0 {
		if !v.vector {
			return operand{}, hcl.Diagnostics{errorf(rng, "Invalid index", "%s is not a vector.", strings.Join(names, "."))}
		}
		if index >= len(v.keys) {
			return operand{}, hcl.Diagnostics{errorf(rng, "Invalid index", "Index %d is out of range for %s of length %d.", index, strings.Join(names, "."), len(v.keys))}
		}
		return scalar(nomial.Var(v.keys[index])), nil
	}

	out := operand{vector: v.vector, elems: make([]nomial.Signomial, len(v.keys))}
	for i, k := range v.keys {
		out.elems[i] = nomial.Var(k)
	}
	return out, nil
}

func (s *scope) call(e *hclsyntax.FunctionCallExpr) (operand, hcl.Diagnostics) {
	wantArgs := map[string]int{"pow": 2, "sqrt": 1, "sum": 1, "prod": 1}
	n, known := wantArgs[e.Name]
	if !known {
		return operand{}, hcl.Diagnostics{errorf(e.Range(), "Unknown function", "Function %q is not supported; use pow, sqrt, sum or prod.", e.Name)}
	}
	if len(e.Args) != n {
		return operand{}, hcl.Diagnostics{errorf(e.Range(), "Wrong number of arguments", "%s takes %d argument(s), got %d.", e.Name, n, len(e.Args))}
	}

	arg, diags := s.walk(e.Args[0])
	if diags.HasErrors() {
		return operand{}, diags
	}

	switch e.Name {
	case "pow":
		exp, diags := s.walk(e.Args[1])
		if diags.HasErrors() {
			return operand{}, diags
		}
		c, ok := exp.constant()
		if !ok {
			return operand{}, hcl.Diagnostics{errorf(e.Args[1].Range(), "Invalid exponent", "The exponent of pow must be a constant.")}
		}
		r, err := nomial.RatFromFloat(c)
		if err != nil {
			return operand{}, hcl.Diagnostics{errorf(e.Args[1].Range(), "Invalid exponent", "%s.", err)}
		}
		return mapOperand(arg, func(x nomial.Signomial) (nomial.Signomial, error) { return x.Pow(r) }, e.Range())

	case "sqrt":
		return mapOperand(arg, func(x nomial.Signomial) (nomial.Signomial, error) { return x.Pow(half) }, e.Range())

	case "sum":
		var total nomial.Signomial
		for _, x := range arg.elems {
			total = total.Add(x)
		}
		return scalar(total), nil

	default: // prod
		total := nomial.Const(1)
		for _, x := range arg.elems {
			total = total.Mul(x)
		}
		return scalar(total), nil
	}
}

func mapOperand(o operand, f func(nomial.Signomial) (nomial.Signomial, error), rng hcl.Range) (operand, hcl.Diagnostics) {
	out := operand{vector: o.vector, elems: make([]nomial.Signomial, len(o.elems))}
	for i, x := range o.elems {
		v, err := f(x)
		if err != nil {
			return operand{}, hcl.Diagnostics{errorf(rng, "Invalid operation", "%s.", err)}
		}
		out.elems[i] = v
	}
	return out, nil
}

// zip pairs the elements of two operands, broadcasting a scalar side.
func zip(a, b operand, rng hcl.Range) ([][2]nomial.Signomial, hcl.Diagnostics) {
	n := len(a.elems)
	if len(b.elems) > n {
		n = len(b.elems)
	}
	if a.vector && b.vector && len(a.elems) != len(b.elems) {
		return nil, hcl.Diagnostics{errorf(rng, "Length mismatch", "Vectors of length %d and %d cannot be combined.", len(a.elems), len(b.elems))}
	}
	if (a.vector && len(a.elems) == 0) || (b.vector && len(b.elems) == 0) {
		return nil, hcl.Diagnostics{errorf(rng, "Empty vector", "Empty vectors cannot be combined.")}
	}

	out := make([][2]nomial.Signomial, n)
	for i := range out {
		out[i] = [2]nomial.Signomial{pick(a, i), pick(b, i)}
	}
	return out, nil
}

func pick(o operand, i int) nomial.Signomial {
	if !o.vector {
		return o.elems[0]
	}
	return o.elems[i]
}
