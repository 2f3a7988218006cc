package cartpole

import (
	"gonum.org/v1/gonum/mat"
)

// Integrator advances the cart-pole state by one fixed time step of
// p.Dt under a constant applied force. Implementations are stateless
// and deterministic: identical inputs always produce identical
// outputs, and the argument state is never modified.
type Integrator interface {
	Advance(state *mat.VecDense, force float64, p Params) *mat.VecDense
	String() string
}

// Euler implements forward-Euler integration with a single derivative
// evaluation per step
type Euler struct{}

// NewEuler returns a new forward-Euler Integrator
func NewEuler() Euler {
	return Euler{}
}

// Advance computes state + dt⋅f(state)
func (e Euler) Advance(state *mat.VecDense, force float64,
	p Params) *mat.VecDense {
	next := mat.NewVecDense(ObservationDims, nil)
	next.AddScaledVec(state, p.Dt, derivative(state, force, p))
	return next
}

func (e Euler) String() string {
	return "Euler"
}

// RK4 implements classical 4th-order Runge-Kutta integration with four
// derivative evaluations per step
type RK4 struct{}

// NewRK4 returns a new 4th-order Runge-Kutta Integrator
func NewRK4() RK4 {
	return RK4{}
}

// Advance computes state + (dt/6)⋅(k₁ + 2k₂ + 2k₃ + k₄) for the four
// classical Runge-Kutta stages
func (r RK4) Advance(state *mat.VecDense, force float64,
	p Params) *mat.VecDense {
	k1 := derivative(state, force, p)

	stage := mat.NewVecDense(ObservationDims, nil)
	stage.AddScaledVec(state, p.Dt/2, k1)
	k2 := derivative(stage, force, p)

	stage.AddScaledVec(state, p.Dt/2, k2)
	k3 := derivative(stage, force, p)

	stage.AddScaledVec(state, p.Dt, k3)
	k4 := derivative(stage, force, p)

	weighted := mat.NewVecDense(ObservationDims, nil)
	weighted.AddVec(k1, k4)
	weighted.AddScaledVec(weighted, 2, k2)
	weighted.AddScaledVec(weighted, 2, k3)

	next := mat.NewVecDense(ObservationDims, nil)
	next.AddScaledVec(state, p.Dt/6, weighted)
	return next
}

func (r RK4) String() string {
	return "RK4"
}
