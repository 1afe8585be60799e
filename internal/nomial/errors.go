package nomial

import "errors"

var (
	// ErrDomain is returned for operations outside the algebra, such as a
	// fractional power of a multi-term signomial.
	ErrDomain = errors.New("nomial: operation outside domain")

	// ErrUnbound is returned when evaluation meets a variable without a value.
	ErrUnbound = errors.New("nomial: unbound variable")

	// ErrResubstituted is returned when a substitution is applied to an
	// expression that already contains positional placeholders.
	ErrResubstituted = errors.New("nomial: expression already substituted")
)
