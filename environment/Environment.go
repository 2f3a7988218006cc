// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gopole/spec"
	ts "github.com/samuelfneumann/gopole/timestep"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() mat.Vector
}

// Ender determines whether a timestep is the last in an episode. If
// so, implementations adjust the TimeStep's StepType field to
// timestep.Last and set the appropriate EndType.
type Ender interface {
	End(*ts.TimeStep) bool
}

// Task implements the reward scheme for taking actions in some
// environment, as well as the distribution of starting states and the
// conditions under which episodes end
type Task interface {
	Starter
	Ender

	// GetReward returns the reward for taking action a in state,
	// transitioning to nextState
	GetReward(state, a, nextState mat.Vector) float64

	// AtGoal returns whether the argument state is a goal state
	AtGoal(state mat.Matrix) bool

	// Min and Max return the minimum and maximum attainable rewards
	Min() float64
	Max() float64

	RewardSpec() spec.Environment
}

// Environment implements a simulated environment, which includes a
// Task to complete. Reset starts a new episode, returning the first
// timestep. Step takes one environmental step given an action,
// returning the next timestep, whether that timestep is the last in
// the episode, and any error that prevented the transition. A failed
// Step or Reset leaves the environment exactly as it was before the
// call.
type Environment interface {
	Task
	Reset() (ts.TimeStep, error)
	Step(action *mat.VecDense) (ts.TimeStep, bool, error)
	CurrentTimeStep() ts.TimeStep
	DiscountSpec() spec.Environment
	ObservationSpec() spec.Environment
	ActionSpec() spec.Environment
}
