package environment

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	ts "github.com/samuelfneumann/gopole/timestep"
)

func midStep(obs []float64, number int) ts.TimeStep {
	return ts.New(ts.Mid, 0, 1, mat.NewVecDense(len(obs), obs), number)
}

func TestStepLimit(t *testing.T) {
	ender := NewStepLimit(10)

	step := midStep([]float64{0}, 9)
	if ender.End(&step) {
		t.Error("episode ended before the step limit")
	}

	step = midStep([]float64{0}, 10)
	if !ender.End(&step) {
		t.Fatal("episode did not end at the step limit")
	}
	if !step.Last() || step.EndingType() != ts.Timeout {
		t.Error("step limit should end episodes with a Timeout")
	}
}

func TestIntervalLimit(t *testing.T) {
	ender := NewIntervalLimit([]r1.Interval{{Min: -1, Max: 1}}, []int{1},
		ts.TerminalStateReached)

	step := midStep([]float64{5, 0.5}, 1)
	if ender.End(&step) {
		t.Error("in-interval feature ended the episode")
	}

	step = midStep([]float64{0, -1.5}, 2)
	if !ender.End(&step) {
		t.Fatal("out-of-interval feature did not end the episode")
	}
	if step.EndingType() != ts.TerminalStateReached {
		t.Error("interval escape should end episodes as terminal states")
	}
}

func TestFunctionEnder(t *testing.T) {
	ender := NewFunctionEnder(func(obs mat.Vector) bool {
		return obs.AtVec(0) > 2
	}, ts.TerminalStateReached)

	step := midStep([]float64{1}, 1)
	if ender.End(&step) {
		t.Error("predicate false but episode ended")
	}

	step = midStep([]float64{3}, 2)
	if !ender.End(&step) || !step.Last() {
		t.Error("predicate true but episode did not end")
	}
}

func TestUniformStarter(t *testing.T) {
	bounds := []r1.Interval{
		{Min: -0.25, Max: 0.25},
		{Min: 0, Max: 0},
	}
	starter := NewUniformStarter(bounds, 1623)

	for i := 0; i < 100; i++ {
		state := starter.Start()

		if state.Len() != len(bounds) {
			t.Fatalf("start state has %v features, want %v", state.Len(),
				len(bounds))
		}
		if v := state.AtVec(0); math.Abs(v) > 0.25 {
			t.Errorf("feature 0 is %v, out of bounds", v)
		}
		if v := state.AtVec(1); v != 0 {
			t.Errorf("degenerate interval sampled %v, want exactly 0", v)
		}
	}
}
