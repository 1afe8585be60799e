package export

import (
	"fmt"
	"strings"

	"github.com/vk/fmexport/internal/model"
)

// Algorithm is the fmincon algorithm the driver script selects.
type Algorithm string

const (
	InteriorPoint Algorithm = "interior-point"
	SQP           Algorithm = "sqp"
)

// ParseAlgorithm accepts "interior-point" or "sqp" in any case.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case InteriorPoint:
		return InteriorPoint, nil
	case SQP:
		return SQP, nil
	}
	return "", fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownAlgorithm, s, InteriorPoint, SQP)
}

// Options configures one export.
type Options struct {
	Algorithm Algorithm
	Guess     Guess

	// GradObjective and GradConstraints include analytic gradients of the
	// objective and constraints. Both are forced off in log-space mode.
	GradObjective   bool
	GradConstraints bool

	LogSpace bool

	// Solver overrides the model's own solver for solution-based guesses.
	Solver model.Solver
}

// DefaultOptions returns interior-point, ones, gradients on.
func DefaultOptions() Options {
	return Options{
		Algorithm:       InteriorPoint,
		Guess:           Ones(),
		GradObjective:   true,
		GradConstraints: true,
	}
}

func (o Options) effective() (Options, error) {
	if o.Algorithm == "" {
		o.Algorithm = InteriorPoint
	}
	alg, err := ParseAlgorithm(string(o.Algorithm))
	if err != nil {
		return o, err
	}
	o.Algorithm = alg
	if o.LogSpace {
		o.GradObjective = false
		o.GradConstraints = false
	}
	return o, nil
}
