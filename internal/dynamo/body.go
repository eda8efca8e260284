package dynamo

import (
	"fmt"
	"math"
)

// Body is a point mass owned by exactly one System.
// The force accumulator is transient: it is only meaningful between
// ComputeForces and the end of the same Step.
type Body struct {
	id       string
	mass     float64
	Position Vector
	Velocity Vector
	force    Vector
}

// NewBody validates mass and returns a body with a zeroed force accumulator.
func NewBody(id string, mass float64, position, velocity Vector) (*Body, error) {
	if !(mass > 0) {
		return nil, fmt.Errorf("%w: body %q has mass %g", ErrInvalidMass, id, mass)
	}
	return &Body{
		id:       id,
		mass:     mass,
		Position: position,
		Velocity: velocity,
	}, nil
}

func (b *Body) ID() string    { return b.id }
func (b *Body) Mass() float64 { return b.mass }
func (b *Body) Force() Vector { return b.force }
func (b *Body) ResetForce()   { b.force = Zero }

// ApplyForce advances the velocity by (f / m) * dt.
func (b *Body) ApplyForce(f Vector, dt float64) {
	acc := Vector{f.X / b.mass, f.Y / b.mass, f.Z / b.mass}
	b.Velocity = b.Velocity.Add(acc.Scale(dt))
}

// Move advances the position by v * dt using the current velocity.
func (b *Body) Move(dt float64) {
	b.Position = b.Position.Add(b.Velocity.Scale(dt))
}

func (b *Body) KineticEnergy() float64 {
	return 0.5 * b.mass * b.Velocity.MagnitudeSq()
}

func (b *Body) Momentum() Vector {
	return b.Velocity.Scale(b.mass)
}

// PotentialEnergyWith returns the pair potential -G*m_a*m_b/d.
// A body has zero potential energy with itself. Two distinct bodies at
// the same position yield -Inf, marking a degenerate state.
func (b *Body) PotentialEnergyWith(other *Body, g float64) float64 {
	if b.id == other.id {
		return 0
	}
	d := b.Position.Sub(other.Position).Magnitude()
	if d == 0 {
		return math.Inf(-1)
	}
	return -g * (b.mass * other.mass) / d
}

// Clone returns a deep copy, including the current force accumulator.
func (b *Body) Clone() *Body {
	c := *b
	return &c
}

func (b *Body) finite() bool {
	return b.Position.IsFinite() && b.Velocity.IsFinite()
}

func (b *Body) String() string {
	return fmt.Sprintf("ID: %s, Mass: %.2e kg, Position: %s, Velocity: %s m/s",
		b.id, b.mass, b.Position, b.Velocity)
}
