// Package nomial implements the monomial / signomial algebra used to
// represent optimization models.
//
// A Monomial is a real coefficient times a product of variables raised to
// exact rational exponents (math/big.Rat). A Signomial is an ordered sum of
// monomials; like terms are merged on addition, keeping the position of the
// first occurrence so output stays deterministic. A Signomial whose
// coefficients are all positive is a posynomial.
//
// Values are immutable: every operation returns a new value and never
// modifies its receiver or arguments.
package nomial
