package nomial

import (
	"math"
	"math/big"
	"strings"
)

// Printer renders expressions as source text. Pow is the spelling of the
// power operator in the target language.
type Printer struct {
	Pow string
}

// DefaultPrinter renders with the `**` power operator.
var DefaultPrinter = Printer{Pow: "**"}

// Format renders s as a sum of terms; the zero signomial renders as `0`.
func (p Printer) Format(s Signomial) string {
	if s.IsZero() {
		return "0"
	}
	var sb strings.Builder
	for i, t := range s.terms {
		neg := t.C < 0
		switch {
		case i == 0 && neg:
			sb.WriteString("-")
		case i > 0 && neg:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}
		sb.WriteString(p.body(math.Abs(t.C), t.Factors))
	}
	return sb.String()
}

// FormatMonomial renders a single monomial including its sign.
func (p Printer) FormatMonomial(m Monomial) string {
	if m.C < 0 {
		return "-" + p.body(-m.C, m.Factors)
	}
	return p.body(m.C, m.Factors)
}

func (p Printer) body(c float64, factors []Factor) string {
	if len(factors) == 0 {
		return FormatFloat(c)
	}
	parts := make([]string, 0, len(factors)+1)
	if c != 1 {
		parts = append(parts, FormatFloat(c))
	}
	for _, f := range factors {
		if f.Exp.Cmp(ratOne) == 0 {
			parts = append(parts, f.Key.String())
			continue
		}
		parts = append(parts, f.Key.String()+p.Pow+formatExponent(f.Exp))
	}
	return strings.Join(parts, "*")
}

// FormatRat renders a rational exponent as a plain factor, e.g. `0.5`,
// `-2` or `(1/3)`.
func FormatRat(r *big.Rat) string {
	return formatRat(r)
}
