package export

import (
	"fmt"

	"github.com/vk/fmexport/internal/model"
	"github.com/vk/fmexport/internal/nomial"
)

// Kind is the canonical form of a rewritten constraint.
type Kind int

const (
	// LessEqZero is `expr <= 0`.
	LessEqZero Kind = iota
	// EqZero is `expr = 0`.
	EqZero
)

func (k Kind) String() string {
	if k == EqZero {
		return "= 0"
	}
	return "<= 0"
}

// Canonical is a constraint rewritten as `Expr <= 0` or `Expr = 0`.
type Canonical struct {
	Label string
	Expr  nomial.Signomial
	Kind  Kind
}

// Substitute applies sub to both sides of c exactly once and returns the
// substituted copy. c itself is not modified.
func Substitute(c model.Constraint, sub nomial.Substitution) (model.Constraint, error) {
	left, err := c.Left.Substitute(sub)
	if err != nil {
		return model.Constraint{}, fmt.Errorf("left side of %q: %w", c, err)
	}
	right, err := c.Right.Substitute(sub)
	if err != nil {
		return model.Constraint{}, fmt.Errorf("right side of %q: %w", c, err)
	}
	return model.Constraint{Label: c.Label, Left: left, Right: right, Oper: c.Oper}, nil
}

// Orient rewrites an already substituted constraint:
//
//	left <= right  ->  left - right <= 0
//	left >= right  ->  right - left <= 0
//	left =  right  ->  right - left  = 0
func Orient(c model.Constraint) (Canonical, error) {
	switch c.Oper {
	case model.LessEq:
		return Canonical{Label: c.Label, Expr: c.Left.Sub(c.Right), Kind: LessEqZero}, nil
	case model.GreaterEq:
		return Canonical{Label: c.Label, Expr: c.Right.Sub(c.Left), Kind: LessEqZero}, nil
	case model.Equal:
		// The sign for equalities only affects the sign of the derivative
		// rows; right-left is kept for output compatibility.
		return Canonical{Label: c.Label, Expr: c.Right.Sub(c.Left), Kind: EqZero}, nil
	}
	return Canonical{}, fmt.Errorf("unsupported constraint operator %q", c.Oper)
}

// Rewrite substitutes and orients c.
func Rewrite(c model.Constraint, sub nomial.Substitution) (Canonical, error) {
	s, err := Substitute(c, sub)
	if err != nil {
		return Canonical{}, err
	}
	return Orient(s)
}
