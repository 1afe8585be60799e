package export

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/vk/fmexport/internal/ctxlog"
	"github.com/vk/fmexport/internal/model"
	"github.com/vk/fmexport/internal/varkey"
)

// GuessKind selects an initial guess strategy.
type GuessKind int

const (
	GuessInvalid GuessKind = iota
	GuessOnes
	GuessOrderFloor
	GuessOrderRound
	GuessOneSigFig
	GuessList
	GuessMap
)

var guessNames = map[GuessKind]string{
	GuessOnes:       "ones",
	GuessOrderFloor: "order-of-magnitude-floor",
	GuessOrderRound: "order-of-magnitude-round",
	GuessOneSigFig:  "almost-exact-solution",
	GuessList:       "list",
	GuessMap:        "map",
}

func (k GuessKind) String() string {
	if s, ok := guessNames[k]; ok {
		return s
	}
	return fmt.Sprintf("GuessKind(%d)", int(k))
}

// NeedsSolution reports whether the strategy solves the model first.
func (k GuessKind) NeedsSolution() bool {
	return k == GuessOrderFloor || k == GuessOrderRound || k == GuessOneSigFig
}

// Guess is an initial guess strategy. Values is used by GuessList; ByName
// and ByKey by GuessMap (names are resolved against the model).
type Guess struct {
	Kind   GuessKind
	Values []float64
	ByName map[string]float64
	ByKey  map[*varkey.Key]float64
}

// Ones guesses 1 for every variable (0 in log space).
func Ones() Guess { return Guess{Kind: GuessOnes} }

// OrderFloor guesses 10^floor(log10(x*)).
func OrderFloor() Guess { return Guess{Kind: GuessOrderFloor} }

// OrderRound guesses 10^round(log10(x*)).
func OrderRound() Guess { return Guess{Kind: GuessOrderRound} }

// OneSigFig guesses x* rounded to one significant figure.
func OneSigFig() Guess { return Guess{Kind: GuessOneSigFig} }

// List guesses the given values in position order.
func List(values ...float64) Guess { return Guess{Kind: GuessList, Values: values} }

// Map guesses values by canonical variable name.
func Map(byName map[string]float64) Guess { return Guess{Kind: GuessMap, ByName: byName} }

// KeyMap guesses values by variable key.
func KeyMap(byKey map[*varkey.Key]float64) Guess { return Guess{Kind: GuessMap, ByKey: byKey} }

// ParseGuess maps a strategy name to its Guess.
func ParseGuess(name string) (Guess, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ones":
		return Ones(), nil
	case "order-of-magnitude-floor":
		return OrderFloor(), nil
	case "order-of-magnitude-round":
		return OrderRound(), nil
	case "almost-exact-solution":
		return OneSigFig(), nil
	}
	return Guess{}, fmt.Errorf("%w: %q", ErrUnexpectedGuess, name)
}

// InitialGuess is the starting point in position order. Uniform is set
// when every value is the strategy's constant (ones, or zeros in log space).
type InitialGuess struct {
	Values  []float64
	Uniform bool
}

// BuildGuess produces the initial guess for the free variables in ix.
// Solution-based strategies call solver.Solve and fall back once to
// solver.LocalSolve; the fallback's error is returned unmodified.
func BuildGuess(ctx context.Context, m *model.Model, ix *Index, g Guess, logSpace bool, solver model.Solver) (InitialGuess, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building initial guess.", "strategy", g.Kind.String(), "free_variables", ix.Len(), "log_space", logSpace)

	n := ix.Len()
	var values []float64

	switch g.Kind {
	case GuessOnes:
		fill := 1.0
		if logSpace {
			fill = 0
		}
		values = make([]float64, n)
		for i := range values {
			values[i] = fill
		}
		return InitialGuess{Values: values, Uniform: true}, nil

	case GuessList:
		if len(g.Values) != n {
			return InitialGuess{}, fmt.Errorf("%w: got %d values for %d free variables", ErrGuessMismatch, len(g.Values), n)
		}
		values = append([]float64(nil), g.Values...)

	case GuessMap:
		byKey, err := resolveGuessMap(m, g)
		if err != nil {
			return InitialGuess{}, err
		}
		if len(byKey) != n {
			return InitialGuess{}, fmt.Errorf("%w: got %d entries for %d free variables", ErrGuessMismatch, len(byKey), n)
		}
		values = make([]float64, n)
		for i, k := range ix.Keys() {
			v, ok := byKey[k]
			if !ok {
				return InitialGuess{}, fmt.Errorf("%w: no value for %s", ErrGuessMismatch, k)
			}
			values[i] = v
		}

	case GuessOrderFloor, GuessOrderRound, GuessOneSigFig:
		sol, err := solveWithFallback(ctx, m, solver)
		if err != nil {
			return InitialGuess{}, err
		}
		values = make([]float64, n)
		for i, k := range ix.Keys() {
			x, ok := sol[k]
			if !ok {
				return InitialGuess{}, fmt.Errorf("solution has no value for free variable %s", k)
			}
			v, err := roundSolution(g.Kind, x)
			if err != nil {
				return InitialGuess{}, fmt.Errorf("%s: %w", k, err)
			}
			values[i] = v
		}

	default:
		return InitialGuess{}, fmt.Errorf("%w: %s", ErrUnexpectedGuess, g.Kind)
	}

	if logSpace {
		for i, v := range values {
			if v <= 0 {
				return InitialGuess{}, fmt.Errorf("%w: log-space guess for position %d is %v", ErrNonPositive, i+1, v)
			}
			values[i] = math.Log(v)
		}
	}
	return InitialGuess{Values: values}, nil
}

func resolveGuessMap(m *model.Model, g Guess) (map[*varkey.Key]float64, error) {
	out := make(map[*varkey.Key]float64, len(g.ByKey)+len(g.ByName))
	for k, v := range g.ByKey {
		out[k] = v
	}
	for name, v := range g.ByName {
		k, err := m.Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGuessMismatch, err)
		}
		if _, dup := out[k]; dup {
			return nil, fmt.Errorf("%w: %s given twice", ErrGuessMismatch, k)
		}
		out[k] = v
	}
	return out, nil
}

func solveWithFallback(ctx context.Context, m *model.Model, solver model.Solver) (model.Solution, error) {
	logger := ctxlog.FromContext(ctx)
	if solver == nil {
		return nil, ErrNoSolver
	}

	sol, err := solver.Solve(ctx, m)
	if err == nil {
		return sol, nil
	}
	logger.Warn("Primary solve failed, trying local solve.", "error", err)

	sol, err = solver.LocalSolve(ctx, m)
	if err != nil {
		return nil, err
	}
	return sol, nil
}

// roundSolution applies the strategy's rounding to a solution value.
func roundSolution(kind GuessKind, x float64) (float64, error) {
	switch kind {
	case GuessOrderFloor:
		if x <= 0 {
			return 0, fmt.Errorf("%w: order of magnitude of %v", ErrNonPositive, x)
		}
		return math.Pow(10, math.Floor(math.Log10(x))), nil
	case GuessOrderRound:
		if x <= 0 {
			return 0, fmt.Errorf("%w: order of magnitude of %v", ErrNonPositive, x)
		}
		return math.Pow(10, math.RoundToEven(math.Log10(x))), nil
	case GuessOneSigFig:
		if x == 0 {
			return 0, nil
		}
		digits := -int(math.Floor(math.Log10(math.Abs(x))))
		return roundDigits(x, digits), nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnexpectedGuess, kind)
}

// roundDigits rounds the exact binary value of x to the given number of
// decimal digits, half to even; negative digits round to tens, hundreds and
// so on. The result is the float nearest to the rounded decimal.
func roundDigits(x float64, digits int) float64 {
	r := new(big.Rat)
	if math.IsInf(x, 0) || math.IsNaN(x) || r.SetFloat64(x) == nil {
		return x
	}

	n := digits
	if n < 0 {
		n = -n
	}
	scale := new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil))
	if digits >= 0 {
		r.Mul(r, scale)
	} else {
		r.Quo(r, scale)
	}

	out := new(big.Rat).SetInt(roundHalfEven(r))
	if digits >= 0 {
		out.Quo(out, scale)
	} else {
		out.Mul(out, scale)
	}
	f, _ := out.Float64()
	return f
}

// roundHalfEven rounds r to the nearest integer, ties to even.
func roundHalfEven(r *big.Rat) *big.Int {
	q, rem := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	twice := new(big.Int).Abs(rem)
	twice.Lsh(twice, 1)
	switch twice.Cmp(r.Denom()) {
	case 1:
		q.Add(q, big.NewInt(int64(r.Sign())))
	case 0:
		if q.Bit(0) == 1 {
			q.Add(q, big.NewInt(int64(r.Sign())))
		}
	}
	return q
}
