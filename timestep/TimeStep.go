// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either a first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType denotes the reason that an episode ended. Episodes may end
// because the environment reached a terminal state or because the
// episode was cut off at a timestep limit.
type EndType int

const (
	// Nil indicates that the episode has not yet ended
	Nil EndType = iota

	// TerminalStateReached indicates that the episode ended because
	// the environment entered a terminal state
	TerminalStateReached

	// Timeout indicates that the episode was cut off at a timestep
	// limit
	Timeout
)

func (e EndType) String() string {
	switch e {
	case TerminalStateReached:
		return "TerminalStateReached"
	case Timeout:
		return "Timeout"
	default:
		return "Nil"
	}
}

// TimeStep packages together a single timestep in an environment
type TimeStep struct {
	StepType
	Reward      float64
	Discount    float64
	Observation mat.Vector
	Number      int
	endType     EndType
}

// New constructs a new TimeStep
func New(t StepType, r, d float64, o mat.Vector, n int) TimeStep {
	return TimeStep{t, r, d, o, n, Nil}
}

// SetEnd sets the reason for which the episode ended
func (t *TimeStep) SetEnd(e EndType) {
	t.endType = e
}

// EndingType returns the reason for which the episode ended
func (t *TimeStep) EndingType() EndType {
	return t.endType
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

// TerminatedAtFailure returns whether the TimeStep ended its episode
// in an environmental terminal state rather than at a timestep limit
func (t *TimeStep) TerminatedAtFailure() bool {
	return t.Last() && t.endType == TerminalStateReached
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"Step Number:  %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Discount, t.Number)
}
