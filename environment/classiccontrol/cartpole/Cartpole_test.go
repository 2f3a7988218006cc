package cartpole

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// fixedStarter always starts episodes from the same state
type fixedStarter struct {
	state []float64
}

func (f fixedStarter) Start() mat.Vector {
	return mat.NewVecDense(len(f.state), f.state)
}

func newTestEnv(t *testing.T, start []float64,
	integrator Integrator) *Continuous {
	t.Helper()

	params := DefaultParams()
	task := NewRegulate(fixedStarter{start}, 0, params)

	env, _, err := NewContinuousWith(task, 1.0, params, integrator)
	if err != nil {
		t.Fatalf("could not construct environment: %v", err)
	}
	return env
}

func zeroAction() *mat.VecDense {
	return mat.NewVecDense(ActionDims, nil)
}

// TestZeroInputFixedPoint checks that repeated zero-force steps from
// the upright centred state leave the state unchanged and never end
// the episode, under both integrators.
func TestZeroInputFixedPoint(t *testing.T) {
	for _, integrator := range []Integrator{NewEuler(), NewRK4()} {
		env := newTestEnv(t, []float64{0, 0, 0, 0}, integrator)

		for i := 0; i < 50; i++ {
			step, last, err := env.Step(zeroAction())
			if err != nil {
				t.Fatalf("%v: step %v failed: %v", integrator, i, err)
			}
			if last {
				t.Fatalf("%v: episode ended at the fixed point on "+
					"step %v", integrator, i)
			}
			for j := 0; j < ObservationDims; j++ {
				if math.Abs(step.Observation.AtVec(j)) > 1e-12 {
					t.Errorf("%v: component %v drifted to %v",
						integrator, j, step.Observation.AtVec(j))
				}
			}
			if step.Reward != UprightBonus {
				t.Errorf("%v: reward at fixed point should be exactly "+
					"%v, got %v", integrator, UprightBonus, step.Reward)
			}
		}
	}
}

// TestHistoryGrowth checks that after Reset followed by N steps the
// state history has exactly N+1 entries and the force history has
// exactly N entries, in call order.
func TestHistoryGrowth(t *testing.T) {
	env := newTestEnv(t, []float64{0.01, 0, 0.01, 0}, NewEuler())

	const steps = 25
	forces := make([]float64, 0, steps)
	action := zeroAction()
	for i := 0; i < steps; i++ {
		force := float64(i%5) - 2.0
		action.SetVec(0, force)
		forces = append(forces, force)

		if _, _, err := env.Step(action); err != nil {
			t.Fatalf("step %v failed: %v", i, err)
		}
	}

	stateHistory := env.StateHistory()
	if len(stateHistory) != steps+1 {
		t.Fatalf("state history has %v entries, want %v",
			len(stateHistory), steps+1)
	}
	forceHistory := env.ForceHistory()
	if len(forceHistory) != steps {
		t.Fatalf("force history has %v entries, want %v",
			len(forceHistory), steps)
	}
	for i, force := range forces {
		if forceHistory[i] != force {
			t.Errorf("force history entry %v is %v, want %v", i,
				forceHistory[i], force)
		}
	}
	if !mat.Equal(stateHistory[len(stateHistory)-1], env.State()) {
		t.Error("final state history entry does not match the current " +
			"state")
	}

	// Reset clears both histories and re-seeds the state history
	if _, err := env.Reset(); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if got := len(env.StateHistory()); got != 1 {
		t.Errorf("state history has %v entries after reset, want 1", got)
	}
	if got := len(env.ForceHistory()); got != 0 {
		t.Errorf("force history has %v entries after reset, want 0", got)
	}
}

// TestTerminationOnFirstStep checks that a start state beyond the
// angle threshold terminates on the very first step and that the
// reward includes the failure penalty.
func TestTerminationOnFirstStep(t *testing.T) {
	env := newTestEnv(t, []float64{0.9, 0, 0, 0}, NewEuler())

	step, last, err := env.Step(zeroAction())
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if !last {
		t.Fatal("episode did not terminate from an over-threshold angle")
	}
	if !step.TerminatedAtFailure() {
		t.Error("termination was not marked as a terminal state")
	}
	if step.Reward > -FailurePenalty {
		t.Errorf("reward %v does not include the failure penalty",
			step.Reward)
	}
	if !env.Terminated() {
		t.Error("environment does not report termination")
	}
}

// TestStepAfterTermination checks that stepping a terminated episode
// is rejected without mutating state or history.
func TestStepAfterTermination(t *testing.T) {
	env := newTestEnv(t, []float64{0.9, 0, 0, 0}, NewEuler())

	if _, last, err := env.Step(zeroAction()); err != nil || !last {
		t.Fatalf("setup step: last=%v, err=%v", last, err)
	}

	stateBefore := env.State()
	statesBefore := len(env.StateHistory())
	forcesBefore := len(env.ForceHistory())

	_, _, err := env.Step(zeroAction())
	if !errors.Is(err, ErrStepAfterTermination) {
		t.Fatalf("expected ErrStepAfterTermination, got %v", err)
	}

	if !mat.Equal(stateBefore, env.State()) {
		t.Error("rejected step modified the state")
	}
	if len(env.StateHistory()) != statesBefore ||
		len(env.ForceHistory()) != forcesBefore {
		t.Error("rejected step modified the histories")
	}

	// Reset recovers the environment
	if _, err := env.Reset(); err != nil {
		t.Fatalf("reset after termination failed: %v", err)
	}
	if _, _, err := env.Step(zeroAction()); err != nil {
		t.Errorf("step after reset failed: %v", err)
	}
}

// TestResetToRejectsInvalidStates checks that state assignment rejects
// wrong arities and non-finite values, leaving the prior state
// untouched.
func TestResetToRejectsInvalidStates(t *testing.T) {
	env := newTestEnv(t, []float64{0.01, 0, 0.01, 0}, NewEuler())
	before := env.State()

	invalid := []mat.Vector{
		mat.NewVecDense(3, []float64{1, 2, 3}),
		mat.NewVecDense(5, []float64{1, 2, 3, 4, 5}),
		mat.NewVecDense(4, []float64{math.NaN(), 0, 0, 0}),
		mat.NewVecDense(4, []float64{0, math.Inf(1), 0, 0}),
		nil,
	}

	for _, state := range invalid {
		if _, err := env.ResetTo(state); !errors.Is(err, ErrInvalidState) {
			t.Errorf("state %v: expected ErrInvalidState, got %v", state,
				err)
		}
		if !mat.Equal(before, env.State()) {
			t.Fatalf("state %v: rejected assignment modified the state",
				state)
		}
	}
}

// TestNumericalDivergenceDetected checks that an integration step
// producing a non-finite state is reported and does not enter the
// history.
func TestNumericalDivergenceDetected(t *testing.T) {
	env := newTestEnv(t, []float64{0.01, 0, 0.01, 0}, NewEuler())

	// A finite but extreme angular velocity overflows the θ̇² term in
	// the equations of motion.
	if _, err := env.ResetTo(mat.NewVecDense(4,
		[]float64{0.1, 1e200, 0, 0})); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	statesBefore := len(env.StateHistory())

	_, _, err := env.Step(zeroAction())
	if !errors.Is(err, ErrNumericalDivergence) {
		t.Fatalf("expected ErrNumericalDivergence, got %v", err)
	}
	if len(env.StateHistory()) != statesBefore {
		t.Error("diverged state entered the history")
	}
	if got := env.State().AtVec(1); got != 1e200 {
		t.Errorf("diverged step modified the state: %v", got)
	}
}

// TestIllegalActions checks that out-of-range, non-finite, and
// mis-shaped actions are rejected without stepping.
func TestIllegalActions(t *testing.T) {
	env := newTestEnv(t, []float64{0.01, 0, 0.01, 0}, NewEuler())
	statesBefore := len(env.StateHistory())

	illegal := []*mat.VecDense{
		mat.NewVecDense(1, []float64{MaxContinuousAction + 1}),
		mat.NewVecDense(1, []float64{MinContinuousAction - 1}),
		mat.NewVecDense(1, []float64{math.NaN()}),
		mat.NewVecDense(2, []float64{0, 0}),
		nil,
	}

	for _, action := range illegal {
		if _, _, err := env.Step(action); err == nil {
			t.Errorf("action %v was not rejected", action)
		}
	}
	if len(env.StateHistory()) != statesBefore {
		t.Error("a rejected action stepped the environment")
	}

	// The declared range deliberately exceeds MaxForce: forces beyond
	// the nominal physical limit are legal.
	action := mat.NewVecDense(1, []float64{MaxForce + 2})
	if _, _, err := env.Step(action); err != nil {
		t.Errorf("action beyond MaxForce but within the declared range "+
			"was rejected: %v", err)
	}
}

// TestSimulationClock checks that elapsed time accumulates under RK4
// integration only.
func TestSimulationClock(t *testing.T) {
	const steps = 10

	euler := newTestEnv(t, []float64{0.01, 0, 0, 0}, NewEuler())
	rk4 := newTestEnv(t, []float64{0.01, 0, 0, 0}, NewRK4())

	for i := 0; i < steps; i++ {
		if _, _, err := euler.Step(zeroAction()); err != nil {
			t.Fatal(err)
		}
		if _, _, err := rk4.Step(zeroAction()); err != nil {
			t.Fatal(err)
		}
	}

	if got := euler.ElapsedTime(); got != 0 {
		t.Errorf("Euler clock advanced to %v, want 0", got)
	}
	want := steps * DefaultParams().Dt
	if got := rk4.ElapsedTime(); math.Abs(got-want) > 1e-12 {
		t.Errorf("RK4 clock is %v, want %v", got, want)
	}

	if _, err := rk4.Reset(); err != nil {
		t.Fatal(err)
	}
	if got := rk4.ElapsedTime(); got != 0 {
		t.Errorf("clock is %v after reset, want 0", got)
	}
}

// TestInvalidParameters checks that misconfigured physical parameters
// fail fast at construction time.
func TestInvalidParameters(t *testing.T) {
	bad := []func(*Params){
		func(p *Params) { p.CartMass = 0 },
		func(p *Params) { p.PoleMass = -0.1 },
		func(p *Params) { p.PoleLength = 0 },
		func(p *Params) { p.Gravity = math.NaN() },
		func(p *Params) { p.Dt = 0 },
		func(p *Params) { p.MaxForce = math.Inf(1) },
		func(p *Params) { p.AngleThreshold = -1 },
		func(p *Params) { p.DisplacementThreshold = 0 },
	}

	for i, corrupt := range bad {
		params := DefaultParams()
		corrupt(&params)

		task := NewRegulate(fixedStarter{[]float64{0, 0, 0, 0}}, 0,
			params)
		_, _, err := NewContinuousWith(task, 1.0, params, NewEuler())
		if !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("case %v: expected ErrInvalidParameter, got %v", i,
				err)
		}
	}
}

// TestStartStateDistribution checks the reference start distribution:
// the angle and displacement are bounded and both velocities are
// exactly zero.
func TestStartStateDistribution(t *testing.T) {
	starter := NewStateStarter(42)

	for i := 0; i < 100; i++ {
		state := starter.Start()

		if theta := state.AtVec(0); math.Abs(theta) > MaxStartAngle {
			t.Errorf("start angle %v out of range", theta)
		}
		if thetaDot := state.AtVec(1); thetaDot != 0 {
			t.Errorf("start angular velocity is %v, want exactly 0",
				thetaDot)
		}
		if r := state.AtVec(2); math.Abs(r) > MaxStartDisplacement {
			t.Errorf("start displacement %v out of range", r)
		}
		if rDot := state.AtVec(3); rDot != 0 {
			t.Errorf("start speed is %v, want exactly 0", rDot)
		}
	}
}
