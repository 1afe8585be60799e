package mfile

import (
	"math/big"
	"strings"

	"github.com/vk/fmexport/internal/export"
	"github.com/vk/fmexport/internal/nomial"
)

// Matlab prints expressions with the element-wise power operator.
var Matlab = nomial.Printer{Pow: ".^"}

// LogSum renders `log(C1*exp(e11*x(1) + ...) + ...)`, prefixed with `-`
// when the sum is negated. A constant term renders `C*exp(0)`.
func LogSum(ls *export.LogSum) string {
	terms := make([]string, len(ls.Terms))
	for i, t := range ls.Terms {
		terms[i] = nomial.FormatFloat(t.C) + "*exp(" + linearForm(t) + ")"
	}
	out := "log(" + strings.Join(terms, " + ") + ")"
	if ls.Negate {
		return "-" + out
	}
	return out
}

// linearForm renders the exponents of t as a linear form in the log-space
// placeholders.
func linearForm(t nomial.Monomial) string {
	if len(t.Factors) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, f := range t.Factors {
		neg := f.Exp.Sign() < 0
		e := nomial.FormatRat(new(big.Rat).Abs(f.Exp))
		switch {
		case i == 0 && neg:
			sb.WriteString("-")
		case i > 0 && neg:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}
		if e != "1" {
			sb.WriteString(e + "*")
		}
		sb.WriteString(f.Key.String())
	}
	return sb.String()
}
