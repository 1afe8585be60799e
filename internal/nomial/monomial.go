package nomial

import (
	"fmt"
	"math"
	"math/big"
	"sort"

	"github.com/vk/fmexport/internal/varkey"
)

// Factor is one variable raised to a non-zero rational exponent.
type Factor struct {
	Key *varkey.Key
	Exp *big.Rat
}

// Monomial is C times the product of its factors. Factors are kept sorted
// by varkey.Less, hold distinct keys and never carry a zero exponent.
type Monomial struct {
	C       float64
	Factors []Factor
}

// NewMonomial builds a normalized monomial from arbitrary factors.
func NewMonomial(c float64, factors ...Factor) Monomial {
	return Monomial{C: c, Factors: normalizeFactors(factors)}
}

func normalizeFactors(in []Factor) []Factor {
	out := make([]Factor, 0, len(in))
	for _, f := range in {
		merged := false
		for i := range out {
			if out[i].Key == f.Key {
				out[i].Exp = new(big.Rat).Add(out[i].Exp, f.Exp)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, Factor{Key: f.Key, Exp: new(big.Rat).Set(f.Exp)})
		}
	}

	kept := out[:0]
	for _, f := range out {
		if f.Exp.Sign() != 0 {
			kept = append(kept, f)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return varkey.Less(kept[i].Key, kept[j].Key) })
	return kept
}

// Exp returns the exponent of k in m, zero when k does not occur.
func (m Monomial) Exp(k *varkey.Key) *big.Rat {
	for _, f := range m.Factors {
		if f.Key == k {
			return new(big.Rat).Set(f.Exp)
		}
	}
	return new(big.Rat)
}

// IsConstant reports whether m has no variable factors.
func (m Monomial) IsConstant() bool {
	return len(m.Factors) == 0
}

// Mul returns m*o.
func (m Monomial) Mul(o Monomial) Monomial {
	factors := make([]Factor, 0, len(m.Factors)+len(o.Factors))
	factors = append(factors, m.Factors...)
	factors = append(factors, o.Factors...)
	return NewMonomial(m.C*o.C, factors...)
}

// Pow returns m raised to the rational power r.
func (m Monomial) Pow(r *big.Rat) (Monomial, error) {
	if m.C < 0 && !r.IsInt() {
		return Monomial{}, fmt.Errorf("%w: negative coefficient to power %s", ErrDomain, r.String())
	}
	if m.C == 0 && r.Sign() < 0 {
		return Monomial{}, fmt.Errorf("%w: zero to negative power %s", ErrDomain, r.String())
	}
	factors := make([]Factor, len(m.Factors))
	for i, f := range m.Factors {
		factors[i] = Factor{Key: f.Key, Exp: new(big.Rat).Mul(f.Exp, r)}
	}
	return NewMonomial(math.Pow(m.C, ratFloat(r)), factors...), nil
}

// Eval returns the numeric value of m at values.
func (m Monomial) Eval(values map[*varkey.Key]float64) (float64, error) {
	out := m.C
	for _, f := range m.Factors {
		v, ok := values[f.Key]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnbound, f.Key)
		}
		out *= math.Pow(v, ratFloat(f.Exp))
	}
	return out, nil
}

func (m Monomial) sameExps(o Monomial) bool {
	if len(m.Factors) != len(o.Factors) {
		return false
	}
	for _, f := range m.Factors {
		if f.Exp.Cmp(o.Exp(f.Key)) != 0 {
			return false
		}
	}
	return true
}

func (m Monomial) scale(c float64) Monomial {
	return Monomial{C: m.C * c, Factors: m.Factors}
}
