package cartpole

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// derivative computes the state derivative of the nonlinear cart-pole
// with no friction. The state and the returned derivative are ordered
// (θ, θ̇, r, ṙ) and (θ̇, θ̈, ṙ, r̈) respectively, where θ is the pole
// angle from upright and r is the cart displacement from the origin.
//
// The equations of motion share the denominator
//
//	D = m⋅cos(2θ) − m − 2M
//
// and are
//
//	r̈ = (−m⋅g⋅sin(2θ) + 2⋅l⋅m⋅sin(θ)⋅θ̇² − 2F) / D
//	θ̈ = 2⋅(−g⋅(m+M)⋅sin(θ) + l⋅m⋅cos(θ)⋅sin(θ)⋅θ̇² − F⋅cos(θ)) / (l⋅D)
//
// The function is pure and never fails for finite inputs; |D| ≥ 2M for
// any physically valid parameters (see Params.Validate).
func derivative(state *mat.VecDense, force float64, p Params) *mat.VecDense {
	phi := state.AtVec(0)
	phiDot := state.AtVec(1)
	rDot := state.AtVec(3)

	cosPhi := math.Cos(phi)
	sinPhi := math.Sin(phi)
	sin2Phi := math.Sin(2 * phi)
	cos2Phi := math.Cos(2 * phi)

	g := p.Gravity
	m := p.PoleMass
	M := p.CartMass
	l := p.PoleLength

	d := m*cos2Phi - m - 2*M

	rDDot := (-m*g*sin2Phi + 2*l*m*sinPhi*phiDot*phiDot - 2*force) / d
	phiDDot := 2 * (-g*(m+M)*sinPhi + l*m*cosPhi*sinPhi*phiDot*phiDot -
		force*cosPhi) / (l * d)

	return mat.NewVecDense(ObservationDims,
		[]float64{phiDot, phiDDot, rDot, rDDot})
}
