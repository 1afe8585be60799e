package nomial

import (
	"math/big"

	"github.com/vk/fmexport/internal/varkey"
)

// Diff returns the partial derivative of s with respect to k. Each term
// c*k^e*rest becomes c*e*k^(e-1)*rest; terms without k vanish.
func (s Signomial) Diff(k *varkey.Key) Signomial {
	var terms []Monomial
	for _, t := range s.terms {
		e := t.Exp(k)
		if e.Sign() == 0 {
			continue
		}
		factors := make([]Factor, 0, len(t.Factors))
		for _, f := range t.Factors {
			if f.Key == k {
				factors = append(factors, Factor{Key: k, Exp: new(big.Rat).Sub(e, ratOne)})
				continue
			}
			factors = append(factors, f)
		}
		terms = append(terms, NewMonomial(t.C*ratFloat(e), factors...))
	}
	return FromMonomials(terms...)
}
