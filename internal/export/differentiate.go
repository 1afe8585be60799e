package export

import "github.com/vk/fmexport/internal/nomial"

// Gradient returns the partial derivatives of expr with respect to every
// positional variable, in position order.
func Gradient(expr nomial.Signomial, ix *Index) []nomial.Signomial {
	grad := make([]nomial.Signomial, ix.Len())
	for p := 1; p <= ix.Len(); p++ {
		grad[p-1] = expr.Diff(ix.Placeholder(p))
	}
	return grad
}

// Jacobian returns the derivative table of rows x positions.
func Jacobian(rows []Canonical, ix *Index) [][]nomial.Signomial {
	table := make([][]nomial.Signomial, len(rows))
	for i, r := range rows {
		table[i] = Gradient(r.Expr, ix)
	}
	return table
}
