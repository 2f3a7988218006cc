package cartpole

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/samuelfneumann/gopole/environment"
	"github.com/samuelfneumann/gopole/spec"
	ts "github.com/samuelfneumann/gopole/timestep"
)

// Regulate implements the cart-pole regulation task. The goal of the
// agent is to keep the pole upright and the cart at the origin using
// as little force as possible.
//
// Rewards sum three terms with no normalization or clipping:
//
//	R = -0.1⋅(5θ² + r² + 0.05F²)   quadratic regulation cost
//	  + 0.1⋅[|θ| < UprightBonusAngle]   near-upright bonus
//	  - 100⋅[failed]   penalty when the step fails the episode
//
// where θ and r are taken from the post-transition state and F is the
// force that produced it. The failure penalty applies only to
// threshold violations, never to timestep-limit cutoffs.
//
// Episodes end in failure when |θ| exceeds the angle threshold or |r|
// exceeds the displacement threshold, and end by timeout at an
// optional timestep limit.
type Regulate struct {
	env.Starter
	stepLimiter           env.Ender
	failLimiter           env.Ender
	angleThreshold        float64
	displacementThreshold float64
}

// NewRegulate creates and returns a new Regulate task with starting
// states drawn from s and failure thresholds taken from p. If
// episodeSteps is positive, episodes are additionally cut off after
// that many steps.
func NewRegulate(s env.Starter, episodeSteps int, p Params) *Regulate {
	legalIntervals := []r1.Interval{
		{Min: -p.AngleThreshold, Max: p.AngleThreshold},
		{Min: -p.DisplacementThreshold, Max: p.DisplacementThreshold},
	}
	failureIndices := []int{0, 2}

	failLimiter := env.NewIntervalLimit(legalIntervals, failureIndices,
		ts.TerminalStateReached)

	var stepLimiter env.Ender
	if episodeSteps > 0 {
		stepLimiter = env.NewStepLimit(episodeSteps)
	}

	return &Regulate{s, stepLimiter, failLimiter, p.AngleThreshold,
		p.DisplacementThreshold}
}

// End checks if a TimeStep is the last in an episode. If so, it
// adjusts the TimeStep's StepType and EndType and returns true.
// Otherwise, the function does not adjust the TimeStep and returns
// false.
func (r *Regulate) End(t *ts.TimeStep) bool {
	if end := r.failLimiter.End(t); end {
		return true
	}
	if r.stepLimiter != nil {
		if end := r.stepLimiter.End(t); end {
			return true
		}
	}
	return false
}

// GetReward returns the reward for taking action a in some state,
// resulting in a transition to nextState
func (r *Regulate) GetReward(_ mat.Vector, a mat.Vector,
	nextState mat.Vector) float64 {
	angle := nextState.AtVec(0)
	position := nextState.AtVec(2)
	force := a.AtVec(0)

	reward := -0.1 * (5*angle*angle + position*position +
		0.05*force*force)

	// Angle of 0 is pointing straight up
	if math.Abs(angle) < UprightBonusAngle {
		reward += UprightBonus
	}

	if r.failed(nextState) {
		reward -= FailurePenalty
	}

	return reward
}

// AtGoal returns whether or not the argument state is a goal state:
// the pole near upright and the cart near the origin
func (r *Regulate) AtGoal(state mat.Matrix) bool {
	return math.Abs(state.At(0, 0)) < UprightBonusAngle &&
		math.Abs(state.At(2, 0)) < MaxStartDisplacement
}

// Min returns the minimum possible reward that can be received for a
// state within the declared observation bounds
func (r *Regulate) Min() float64 {
	return -0.1*(5*AngleBounds*AngleBounds+PositionBounds*PositionBounds+
		0.05*MaxContinuousAction*MaxContinuousAction) - FailurePenalty
}

// Max returns the maximum possible reward that can be received in the
// environment
func (r *Regulate) Max() float64 {
	return UprightBonus
}

// RewardSpec returns the reward specification for the environment
func (r *Regulate) RewardSpec() spec.Environment {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{r.Min()})
	upperBound := mat.NewVecDense(1, []float64{r.Max()})

	return spec.NewEnvironment(shape, spec.Reward, lowerBound,
		upperBound, spec.Continuous)
}

// failed returns whether state violates the failure thresholds
func (r *Regulate) failed(state mat.Vector) bool {
	return math.Abs(state.AtVec(0)) > r.angleThreshold ||
		math.Abs(state.AtVec(2)) > r.displacementThreshold
}

// NewStateStarter returns the reference start-state distribution: the
// pole angle is drawn uniformly from [-MaxStartAngle, MaxStartAngle],
// the cart displacement is drawn uniformly from
// [-MaxStartDisplacement, MaxStartDisplacement], and both velocities
// are exactly 0.
func NewStateStarter(seed uint64) env.UniformStarter {
	return env.NewUniformStarter([]r1.Interval{
		{Min: -MaxStartAngle, Max: MaxStartAngle},
		{Min: 0, Max: 0},
		{Min: -MaxStartDisplacement, Max: MaxStartDisplacement},
		{Min: 0, Max: 0},
	}, seed)
}
