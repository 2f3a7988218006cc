package cartpole

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/gopole/environment"
	"github.com/samuelfneumann/gopole/spec"
	ts "github.com/samuelfneumann/gopole/timestep"
	"github.com/samuelfneumann/gopole/utils/floatutils"
)

// Continuous implements the cart-pole environment with a continuous
// action: the horizontal force applied to the cart, as a single real
// scalar.
//
// Legal actions lie in [MinContinuousAction, MaxContinuousAction].
// This declared range is wider than the MaxForce physical parameter
// and is deliberately left unreconciled with it: actions are validated
// against the declared range only and the force reaches the dynamics
// unclamped. Harnesses that want forces limited to MaxForce must clamp
// before calling Step.
//
// Continuous implements the environment.Environment interface.
type Continuous struct {
	*base
}

// NewContinuous constructs a new cart-pole environment with the
// reference physical parameters and forward-Euler integration
func NewContinuous(t env.Task, discount float64) (*Continuous,
	ts.TimeStep, error) {
	return NewContinuousWith(t, discount, DefaultParams(), NewEuler())
}

// NewContinuousWith constructs a new cart-pole environment with the
// argument physical parameters and integration strategy. The strategy
// is fixed for the lifetime of the environment.
func NewContinuousWith(t env.Task, discount float64, params Params,
	integrator Integrator) (*Continuous, ts.TimeStep, error) {
	base, firstStep, err := newBase(t, discount, params, integrator)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newContinuous: %w", err)
	}

	return &Continuous{base}, firstStep, nil
}

// ActionSpec returns the action specification of the environment
func (c *Continuous) ActionSpec() spec.Environment {
	shape := mat.NewVecDense(ActionDims, nil)
	lowerBound := mat.NewVecDense(ActionDims,
		[]float64{MinContinuousAction})
	upperBound := mat.NewVecDense(ActionDims,
		[]float64{MaxContinuousAction})

	return spec.NewEnvironment(shape, spec.Action, lowerBound,
		upperBound, spec.Continuous)
}

// Step takes one environmental step given action a and returns the
// next timestep, whether that timestep is the last in the episode, and
// any error that prevented the transition. Actions are 1-dimensional,
// finite, and bounded by the declared action range; illegal actions
// are rejected without touching the environment.
func (c *Continuous) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	if a == nil || a.Len() != ActionDims {
		return ts.TimeStep{}, false, fmt.Errorf("step: actions should "+
			"be %v-dimensional", ActionDims)
	}

	force := a.AtVec(0)
	if !floatutils.Finite(force) {
		return ts.TimeStep{}, false, fmt.Errorf("step: illegal action "+
			"%v is not finite", force)
	}
	if force < MinContinuousAction || force > MaxContinuousAction {
		return ts.TimeStep{}, false, fmt.Errorf("step: illegal action "+
			"%v ∉ [%v, %v]", force, MinContinuousAction,
			MaxContinuousAction)
	}

	return c.step(a, force)
}
