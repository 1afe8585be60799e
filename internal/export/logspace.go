package export

import (
	"fmt"

	"github.com/vk/fmexport/internal/model"
	"github.com/vk/fmexport/internal/nomial"
)

// LogSum is `log(sum_i C_i * exp(sum_j e_ij * x(j)))`, negated when
// Negate is set. The placeholders are read as log-space variables.
type LogSum struct {
	Negate bool
	Terms  []nomial.Monomial
}

// LogConstraint rewrites a substituted posynomial constraint `P op 1` into
// log-sum-exp form. Any other shape violates the log-space precondition.
func LogConstraint(c model.Constraint) (*LogSum, Kind, error) {
	if !c.Right.IsOne() {
		return nil, 0, fmt.Errorf("%w: right side of %q is %s, not 1", ErrLogSpacePrecondition, c, c.Right)
	}
	if !c.Left.IsPosynomial() {
		return nil, 0, fmt.Errorf("%w: left side of %q is not a posynomial", ErrLogSpacePrecondition, c)
	}

	ls := &LogSum{Terms: c.Left.Terms()}
	switch c.Oper {
	case model.LessEq:
		return ls, LessEqZero, nil
	case model.GreaterEq:
		// P >= 1 is -log(P) <= 0.
		ls.Negate = true
		return ls, LessEqZero, nil
	case model.Equal:
		return ls, EqZero, nil
	}
	return nil, 0, fmt.Errorf("unsupported constraint operator %q", c.Oper)
}

// LogObjective rewrites a substituted posynomial cost into log-sum-exp form.
func LogObjective(cost nomial.Signomial) (*LogSum, error) {
	if !cost.IsPosynomial() {
		return nil, fmt.Errorf("%w: cost %s is not a posynomial", ErrLogSpacePrecondition, cost)
	}
	return &LogSum{Terms: cost.Terms()}, nil
}
