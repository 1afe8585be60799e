package nomial

import (
	"fmt"
	"math"

	"github.com/vk/fmexport/internal/varkey"
)

// Value is the replacement for one variable: either a number or another
// key (a positional placeholder).
type Value struct {
	Number float64
	Key    *varkey.Key
}

// Pinned replaces a variable with the number v.
func Pinned(v float64) Value { return Value{Number: v} }

// Renamed replaces a variable with the key k.
func Renamed(k *varkey.Key) Value { return Value{Key: k} }

// Substitution maps variables to their replacement values.
type Substitution map[*varkey.Key]Value

// Substitute applies sub to s in a single pass. Applying any substitution
// to an expression that already holds placeholders fails with
// ErrResubstituted.
func (s Signomial) Substitute(sub Substitution) (Signomial, error) {
	terms := make([]Monomial, 0, len(s.terms))
	for _, t := range s.terms {
		c := t.C
		factors := make([]Factor, 0, len(t.Factors))
		for _, f := range t.Factors {
			if f.Key.IsPlaceholder() {
				return Signomial{}, fmt.Errorf("%w: found %s", ErrResubstituted, f.Key)
			}
			v, ok := sub[f.Key]
			switch {
			case !ok:
				factors = append(factors, f)
			case v.Key != nil:
				factors = append(factors, Factor{Key: v.Key, Exp: f.Exp})
			default:
				c *= math.Pow(v.Number, ratFloat(f.Exp))
			}
		}
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return Signomial{}, fmt.Errorf("%w: substitution produced coefficient %v", ErrDomain, c)
		}
		terms = append(terms, NewMonomial(c, factors...))
	}
	return FromMonomials(terms...), nil
}
