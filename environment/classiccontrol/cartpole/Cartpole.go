// Package cartpole implements the Cartpole classic control environment:
// an inverted pendulum mounted on a cart which moves along one
// horizontal axis.
//
// The state features are continuous and consist of the pole's angle
// from upright, the pole's angular velocity, the cart's displacement
// from the origin, and the cart's velocity -- in that order. The same
// ordering is used everywhere: in observations, in start states, and
// in the state history.
//
// An episode fails when the pole angle or the cart displacement leaves
// its threshold interval. Stepping a terminated episode is a usage
// error; Reset must be called first.
package cartpole

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	env "github.com/samuelfneumann/gopole/environment"
	"github.com/samuelfneumann/gopole/spec"
	ts "github.com/samuelfneumann/gopole/timestep"
	"github.com/samuelfneumann/gopole/utils/floatutils"
)

// phase tracks the episode state machine. Episodes move from
// uninitialized to running on Reset, and from running to terminated
// when an Ender fires. Only Reset leaves the terminated phase.
type phase int

const (
	uninitialized phase = iota
	running
	terminated
)

// base implements the underlying cart-pole environment. It owns the
// current state, the simulation clock, and the state and force
// histories, and it orchestrates integration, termination checks, and
// reward computation on each step. The Continuous struct embeds a base
// environment and validates actions against the declared action range.
//
// Note that this struct does not implement the environment.Environment
// interface itself: action validation is the embedding environment's
// concern.
type base struct {
	env.Task
	params     Params
	integrator Integrator
	discount   float64

	phase        phase
	state        *mat.VecDense
	lastStep     ts.TimeStep
	elapsed      float64
	stateHistory []*mat.VecDense
	forceHistory []float64
}

// newBase creates a new base environment with the argument task,
// physical parameters, and integration strategy, and starts the first
// episode
func newBase(t env.Task, discount float64, params Params,
	integrator Integrator) (*base, ts.TimeStep, error) {
	if err := params.Validate(); err != nil {
		return nil, ts.TimeStep{}, err
	}
	if integrator == nil {
		integrator = NewEuler()
	}

	b := &base{
		Task:       t,
		params:     params,
		integrator: integrator,
		discount:   discount,
		phase:      uninitialized,
	}

	firstStep, err := b.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, err
	}

	return b, firstStep, nil
}

// Reset starts a new episode from a state drawn from the task's
// Starter and returns the first timestep. The simulation clock is
// cleared, both histories are emptied, and the starting state becomes
// history entry 0. On error the environment is left exactly as it was.
func (b *base) Reset() (ts.TimeStep, error) {
	step, err := b.ResetTo(b.Start())
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %w", err)
	}
	return step, nil
}

// ResetTo starts a new episode from the argument state. The state must
// have exactly four finite components; otherwise an error wrapping
// ErrInvalidState is returned and the environment is left exactly as
// it was.
func (b *base) ResetTo(state mat.Vector) (ts.TimeStep, error) {
	validated, err := validateState(state)
	if err != nil {
		return ts.TimeStep{}, err
	}

	startStep := ts.New(ts.First, 0, b.discount, validated, 0)

	b.phase = running
	b.state = validated
	b.lastStep = startStep
	b.elapsed = 0
	b.stateHistory = []*mat.VecDense{validated}
	b.forceHistory = nil

	return startStep, nil
}

// step advances the environment by one time step under the applied
// force. The action argument is the already-validated action vector
// that produced the force; it is passed through to the task's reward
// computation. step returns the next timestep, whether that timestep
// is the last in the episode, and any error that prevented the
// transition. A failed step leaves the state and both histories
// exactly as they were.
func (b *base) step(action *mat.VecDense, force float64) (ts.TimeStep,
	bool, error) {
	switch b.phase {
	case terminated:
		return ts.TimeStep{}, true, fmt.Errorf("step: %w",
			ErrStepAfterTermination)
	case uninitialized:
		return ts.TimeStep{}, false, fmt.Errorf("step: environment was " +
			"never reset")
	}

	nextState := b.integrator.Advance(b.state, force, b.params)
	if !floatutils.AllFinite(nextState.RawVector().Data) {
		return ts.TimeStep{}, false, fmt.Errorf("step: %w: force %v "+
			"drove the state to %v", ErrNumericalDivergence, force,
			nextState.RawVector().Data)
	}

	// Commit the transition
	b.state = nextState
	b.stateHistory = append(b.stateHistory, nextState)
	b.forceHistory = append(b.forceHistory, force)

	// The simulation clock only advances under Runge-Kutta
	// integration; under Euler the step count is the time base.
	if _, ok := b.integrator.(RK4); ok {
		b.elapsed += b.params.Dt
	}

	// The reward is computed from the post-transition state, the
	// applied force, and the termination outcome. The task owns the
	// failure thresholds, so its reward and its enders agree on
	// whether this state terminates the episode.
	reward := b.GetReward(b.lastStep.Observation, action, nextState)
	nextStep := ts.New(ts.Mid, reward, b.discount, nextState,
		b.lastStep.Number+1)

	if last := b.End(&nextStep); last {
		b.phase = terminated
	}

	b.lastStep = nextStep
	return nextStep, nextStep.Last(), nil
}

// CurrentTimeStep returns the last TimeStep returned by Reset or Step
func (b *base) CurrentTimeStep() ts.TimeStep {
	return b.lastStep
}

// State returns a copy of the current environment state
func (b *base) State() *mat.VecDense {
	return mat.VecDenseCopyOf(b.state)
}

// ElapsedTime returns the elapsed simulation time of the current
// episode. The clock accumulates only under RK4 integration.
func (b *base) ElapsedTime() float64 {
	return b.elapsed
}

// StateHistory returns the ordered sequence of states visited in the
// current episode, starting with the episode's starting state. After N
// steps the history holds N+1 entries.
func (b *base) StateHistory() []*mat.VecDense {
	history := make([]*mat.VecDense, len(b.stateHistory))
	copy(history, b.stateHistory)
	return history
}

// ForceHistory returns the ordered sequence of forces applied in the
// current episode. After N steps the history holds N entries.
func (b *base) ForceHistory() []float64 {
	history := make([]float64, len(b.forceHistory))
	copy(history, b.forceHistory)
	return history
}

// Params returns the physical parameters of the environment
func (b *base) Params() Params {
	return b.params
}

// Terminated returns whether the current episode has ended. A
// terminated environment must be Reset before it can be stepped.
func (b *base) Terminated() bool {
	return b.phase == terminated
}

// ObservationSpec returns the observation specification of the
// environment
func (b *base) ObservationSpec() spec.Environment {
	shape := mat.NewVecDense(ObservationDims, nil)

	lower := []float64{-AngleBounds, -AngularVelocityBounds,
		-PositionBounds, -SpeedBounds}
	lowerBound := mat.NewVecDense(ObservationDims, lower)

	upper := []float64{AngleBounds, AngularVelocityBounds,
		PositionBounds, SpeedBounds}
	upperBound := mat.NewVecDense(ObservationDims, upper)

	return spec.NewEnvironment(shape, spec.Observation, lowerBound,
		upperBound, spec.Continuous)
}

// DiscountSpec returns the discounting specification of the environment
func (b *base) DiscountSpec() spec.Environment {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{b.discount})
	upperBound := mat.NewVecDense(1, []float64{b.discount})

	return spec.NewEnvironment(shape, spec.Discount, lowerBound,
		upperBound, spec.Continuous)
}

// String returns a string representation of the environment
func (b *base) String() string {
	msg := "Cartpole  |  Angle: %v  |  Angular Velocity: %v  |  " +
		"Position: %v  |  Speed: %v"

	angle, angularVelocity := b.state.AtVec(0), b.state.AtVec(1)
	position, speed := b.state.AtVec(2), b.state.AtVec(3)

	return fmt.Sprintf(msg, angle, angularVelocity, position, speed)
}

// validateState ensures that a state has exactly four finite
// components, returning a dense copy of it. Invalid states are
// rejected with an error wrapping ErrInvalidState before they can
// reach the environment or its history.
func validateState(state mat.Vector) (*mat.VecDense, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: state is nil", ErrInvalidState)
	}
	if state.Len() != ObservationDims {
		return nil, fmt.Errorf("%w: state has %v components, expected %v",
			ErrInvalidState, state.Len(), ObservationDims)
	}

	validated := mat.NewVecDense(ObservationDims, nil)
	for i := 0; i < ObservationDims; i++ {
		value := state.AtVec(i)
		if !floatutils.Finite(value) {
			return nil, fmt.Errorf("%w: component %v is not finite (%v)",
				ErrInvalidState, i, value)
		}
		validated.SetVec(i, value)
	}

	return validated, nil
}
