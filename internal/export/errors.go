package export

import "errors"

var (
	// ErrLogSpacePrecondition is returned when log-space export meets a
	// constraint whose right side is not 1 or whose left side (or the cost)
	// is not a posynomial.
	ErrLogSpacePrecondition = errors.New("log-space precondition violated")

	// ErrGuessMismatch is returned when explicit guess values do not cover
	// exactly the free variables.
	ErrGuessMismatch = errors.New("initial guess does not match free variables")

	// ErrUnexpectedGuess is returned for an unknown guess strategy.
	ErrUnexpectedGuess = errors.New("unexpected guess type")

	// ErrNonPositive is returned when a value that must pass through a
	// logarithm is not positive.
	ErrNonPositive = errors.New("value must be positive")

	// ErrNoSolver is returned when a solution-based guess is requested
	// without a solver.
	ErrNoSolver = errors.New("guess strategy requires a solver")

	// ErrUnknownAlgorithm is returned for an unsupported fmincon algorithm.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
)
