package nomial

import (
	"fmt"
	"math/big"

	"github.com/vk/fmexport/internal/varkey"
)

// Signomial is an ordered sum of monomials. The zero value is the
// constant 0.
type Signomial struct {
	terms []Monomial
}

// Var returns the signomial consisting of the single variable k.
func Var(k *varkey.Key) Signomial {
	return Signomial{terms: []Monomial{NewMonomial(1, Factor{Key: k, Exp: ratOne})}}
}

// Const returns the constant signomial c.
func Const(c float64) Signomial {
	return FromMonomials(NewMonomial(c))
}

// FromMonomials sums the given terms, merging like terms.
func FromMonomials(terms ...Monomial) Signomial {
	var s Signomial
	for _, t := range terms {
		s.terms = appendTerm(s.terms, t)
	}
	return s.compact()
}

func appendTerm(terms []Monomial, t Monomial) []Monomial {
	for i := range terms {
		if terms[i].sameExps(t) {
			terms[i] = Monomial{C: terms[i].C + t.C, Factors: terms[i].Factors}
			return terms
		}
	}
	return append(terms, t)
}

func (s Signomial) compact() Signomial {
	out := make([]Monomial, 0, len(s.terms))
	for _, t := range s.terms {
		if t.C != 0 {
			out = append(out, t)
		}
	}
	return Signomial{terms: out}
}

// Terms returns a copy of the monomial terms of s in order.
func (s Signomial) Terms() []Monomial {
	out := make([]Monomial, len(s.terms))
	copy(out, s.terms)
	return out
}

// Len returns the number of terms.
func (s Signomial) Len() int { return len(s.terms) }

// IsZero reports whether s is the constant 0.
func (s Signomial) IsZero() bool { return len(s.terms) == 0 }

// IsPosynomial reports whether every coefficient of s is positive.
func (s Signomial) IsPosynomial() bool {
	if len(s.terms) == 0 {
		return false
	}
	for _, t := range s.terms {
		if t.C <= 0 {
			return false
		}
	}
	return true
}

// Monomial returns the only term of s when s has exactly one.
func (s Signomial) Monomial() (Monomial, bool) {
	if len(s.terms) != 1 {
		return Monomial{}, false
	}
	return s.terms[0], true
}

// IsOne reports whether s is exactly the constant 1.
func (s Signomial) IsOne() bool {
	m, ok := s.Monomial()
	return ok && m.IsConstant() && m.C == 1
}

// Keys returns the distinct variables of s in order of first appearance.
func (s Signomial) Keys() []*varkey.Key {
	seen := make(map[*varkey.Key]struct{})
	var keys []*varkey.Key
	for _, t := range s.terms {
		for _, f := range t.Factors {
			if _, ok := seen[f.Key]; ok {
				continue
			}
			seen[f.Key] = struct{}{}
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// Add returns s+o.
func (s Signomial) Add(o Signomial) Signomial {
	terms := make([]Monomial, 0, len(s.terms)+len(o.terms))
	terms = append(terms, s.terms...)
	for _, t := range o.terms {
		terms = appendTerm(terms, t)
	}
	return Signomial{terms: terms}.compact()
}

// Neg returns -s.
func (s Signomial) Neg() Signomial {
	out := make([]Monomial, len(s.terms))
	for i, t := range s.terms {
		out[i] = t.scale(-1)
	}
	return Signomial{terms: out}
}

// Sub returns s-o.
func (s Signomial) Sub(o Signomial) Signomial {
	return s.Add(o.Neg())
}

// Mul returns s*o, expanded term by term.
func (s Signomial) Mul(o Signomial) Signomial {
	var terms []Monomial
	for _, a := range s.terms {
		for _, b := range o.terms {
			terms = appendTerm(terms, a.Mul(b))
		}
	}
	return Signomial{terms: terms}.compact()
}

// Div returns s/o. Only division by a non-zero monomial is defined.
func (s Signomial) Div(o Signomial) (Signomial, error) {
	m, ok := o.Monomial()
	if !ok {
		return Signomial{}, fmt.Errorf("%w: division by a %d-term expression", ErrDomain, o.Len())
	}
	inv, err := m.Pow(big.NewRat(-1, 1))
	if err != nil {
		return Signomial{}, err
	}
	return s.Mul(FromMonomials(inv)), nil
}

// Pow returns s raised to r. Monomials accept any rational power;
// multi-term signomials only non-negative integer powers.
func (s Signomial) Pow(r *big.Rat) (Signomial, error) {
	if m, ok := s.Monomial(); ok {
		p, err := m.Pow(r)
		if err != nil {
			return Signomial{}, err
		}
		return FromMonomials(p), nil
	}
	if r.Sign() == 0 {
		return Const(1), nil
	}
	if !r.IsInt() || r.Sign() < 0 || !r.Num().IsInt64() {
		return Signomial{}, fmt.Errorf("%w: %d-term expression to power %s", ErrDomain, s.Len(), r.String())
	}
	out := Const(1)
	for i := int64(0); i < r.Num().Int64(); i++ {
		out = out.Mul(s)
	}
	return out, nil
}

// Eval returns the numeric value of s at values.
func (s Signomial) Eval(values map[*varkey.Key]float64) (float64, error) {
	var sum float64
	for _, t := range s.terms {
		v, err := t.Eval(values)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum, nil
}

// String renders s with the `**` power operator.
func (s Signomial) String() string {
	return DefaultPrinter.Format(s)
}
