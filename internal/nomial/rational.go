package nomial

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

var ratOne = big.NewRat(1, 1)

// RatFromFloat converts f into the rational its shortest decimal form
// denotes, so 0.1 becomes 1/10 rather than the nearest binary fraction.
func RatFromFloat(f float64) (*big.Rat, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("exponent %v is not finite", f)
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
	if !ok {
		return nil, fmt.Errorf("cannot represent %v as a rational", f)
	}
	return r, nil
}

func ratFloat(r *big.Rat) float64 {
	f, _ := r.Float64()
	return f
}

// formatRat renders an exponent: integers and terminating decimals plainly,
// other rationals as a parenthesized fraction.
func formatRat(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	if n, exact := r.FloatPrec(); exact {
		return r.FloatString(n)
	}
	return "(" + r.String() + ")"
}

// formatExponent is formatRat with negative values wrapped so that the
// power operator never meets a bare unary minus.
func formatExponent(r *big.Rat) string {
	s := formatRat(r)
	if r.Sign() < 0 && s[0] != '(' {
		return "(" + s + ")"
	}
	return s
}

// FormatFloat renders a coefficient in its shortest exact decimal form.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
