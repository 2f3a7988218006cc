package cartpole

import (
	"fmt"
	"math"
)

const (
	// Default physical constants
	Gravity    float64 = 9.8
	CartMass   float64 = 1.0
	PoleMass   float64 = 0.1
	PoleLength float64 = 0.5
	MaxForce   float64 = 10.0 // Nominal maximum applicable force
	Dt         float64 = 0.01 // Seconds between state updates

	// Episode failure thresholds
	AngleThreshold        float64 = math.Pi / 4
	DisplacementThreshold float64 = 2.4

	// Bounds (+/-) on state variables, in the order
	// (angle, angular velocity, position, speed)
	AngleBounds           float64 = math.Pi
	AngularVelocityBounds float64 = math.MaxFloat64
	PositionBounds        float64 = 4.8
	SpeedBounds           float64 = math.MaxFloat64

	// Bounds on the declared continuous action. The declared range is
	// wider than MaxForce and the two are left unreconciled: actions
	// are validated against these bounds only and are never clamped to
	// MaxForce before reaching the dynamics.
	MinContinuousAction float64 = -15.0
	MaxContinuousAction float64 = 15.0

	// Start-state distribution bounds
	MaxStartAngle        float64 = 15.0 * math.Pi / 180.0
	MaxStartDisplacement float64 = 1.0

	// Reward shaping
	UprightBonusAngle float64 = 10.0 * math.Pi / 180.0
	UprightBonus      float64 = 0.1
	FailurePenalty    float64 = 100.0

	ObservationDims int = 4
	ActionDims      int = 1
)

// Params holds the physical parameters of a cart-pole system. A Params
// value is immutable for the lifetime of an environment: it is
// validated once at construction time and only read afterwards.
type Params struct {
	Gravity               float64
	CartMass              float64
	PoleMass              float64
	PoleLength            float64
	MaxForce              float64
	Dt                    float64
	AngleThreshold        float64
	DisplacementThreshold float64
}

// DefaultParams returns the reference physical parameters
func DefaultParams() Params {
	return Params{
		Gravity:               Gravity,
		CartMass:              CartMass,
		PoleMass:              PoleMass,
		PoleLength:            PoleLength,
		MaxForce:              MaxForce,
		Dt:                    Dt,
		AngleThreshold:        AngleThreshold,
		DisplacementThreshold: DisplacementThreshold,
	}
}

// Validate returns an error wrapping ErrInvalidParameter if any
// parameter is non-finite or non-positive, or if the parameters would
// make the dynamics denominator vanish. The denominator
// m⋅cos(2φ) − m − 2M is closest to zero at φ = 0, where its magnitude
// is 2M, so it cannot vanish for a strictly positive cart mass.
func (p Params) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"gravity", p.Gravity},
		{"cart mass", p.CartMass},
		{"pole mass", p.PoleMass},
		{"pole length", p.PoleLength},
		{"maximum force", p.MaxForce},
		{"time step", p.Dt},
		{"angle threshold", p.AngleThreshold},
		{"displacement threshold", p.DisplacementThreshold},
	}

	for _, param := range positive {
		if math.IsNaN(param.value) || math.IsInf(param.value, 0) {
			return fmt.Errorf("%w: %v is not finite (%v)",
				ErrInvalidParameter, param.name, param.value)
		}
		if param.value <= 0 {
			return fmt.Errorf("%w: %v must be positive, got %v",
				ErrInvalidParameter, param.name, param.value)
		}
	}

	if 2*p.CartMass == 0 {
		return fmt.Errorf("%w: dynamics denominator vanishes for cart "+
			"mass %v", ErrInvalidParameter, p.CartMass)
	}

	return nil
}
