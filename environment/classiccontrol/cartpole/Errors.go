package cartpole

import "errors"

// Failure kinds surfaced by the cart-pole environment. All are
// synchronous and local: a call returning one of these has left the
// environment's state and histories untouched.
var (
	// ErrInvalidParameter indicates a physical parameter that is
	// non-finite, non-positive where positivity is required, or that
	// would make the dynamics denominator vanish.
	ErrInvalidParameter = errors.New("cartpole: invalid physical parameter")

	// ErrInvalidState indicates a state vector that does not have
	// exactly four components or that contains non-finite values.
	ErrInvalidState = errors.New("cartpole: invalid state")

	// ErrNumericalDivergence indicates that the integrator produced a
	// non-finite state from finite inputs.
	ErrNumericalDivergence = errors.New("cartpole: numerical divergence")

	// ErrStepAfterTermination indicates that Step was called on a
	// terminated episode before Reset.
	ErrStepAfterTermination = errors.New("cartpole: step called on " +
		"terminated episode")
)
