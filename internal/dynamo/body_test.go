package dynamo

import (
	"errors"
	"math"
	"testing"
)

func mustBody(t *testing.T, id string, mass float64, pos, vel Vector) *Body {
	t.Helper()
	b, err := NewBody(id, mass, pos, vel)
	if err != nil {
		t.Fatalf("NewBody(%q): %v", id, err)
	}
	return b
}

func TestNewBody_InvalidMass(t *testing.T) {
	for _, m := range []float64{0, -1, -1e-30, math.Inf(-1), math.NaN()} {
		b, err := NewBody("x", m, Zero, Zero)
		if !errors.Is(err, ErrInvalidMass) {
			t.Errorf("mass %v: expected ErrInvalidMass, got %v", m, err)
		}
		if b != nil {
			t.Errorf("mass %v: expected nil body", m)
		}
	}
}

func TestNewBody_ZeroForce(t *testing.T) {
	b := mustBody(t, "sun", 1.989e30, Vec(1, 2, 3), Vec(4, 5, 6))
	if !b.Force().Equal(Zero) {
		t.Errorf("force = %v, want zero", b.Force())
	}
	if b.ID() != "sun" || b.Mass() != 1.989e30 {
		t.Errorf("unexpected identity %s %g", b.ID(), b.Mass())
	}
}

func TestBody_ApplyForce(t *testing.T) {
	b := mustBody(t, "a", 2, Zero, Vec(1, 0, 0))
	b.ApplyForce(Vec(4, -2, 0), 0.5)
	if !b.Velocity.Equal(Vec(2, -0.5, 0)) {
		t.Errorf("velocity = %v", b.Velocity)
	}

	b.ApplyForce(Zero, 10)
	if !b.Velocity.Equal(Vec(2, -0.5, 0)) {
		t.Errorf("zero force changed velocity to %v", b.Velocity)
	}
}

func TestBody_Move(t *testing.T) {
	b := mustBody(t, "a", 1, Vec(1, 1, 1), Vec(2, 0, -4))
	b.Move(0.25)
	if !b.Position.Equal(Vec(1.5, 1, 0)) {
		t.Errorf("position = %v", b.Position)
	}
}

func TestBody_KineticEnergy(t *testing.T) {
	b := mustBody(t, "a", 1, Zero, Vec(3, 4, 0))
	if got := b.KineticEnergy(); got != 12.5 {
		t.Errorf("kinetic energy = %v, want 12.5", got)
	}
}

func TestBody_PotentialEnergy(t *testing.T) {
	a := mustBody(t, "a", 1, Zero, Zero)
	b := mustBody(t, "b", 1, Vec(1, 0, 0), Zero)

	if got := a.PotentialEnergyWith(b, DefaultG); got != -DefaultG {
		t.Errorf("potential = %v, want %v", got, -DefaultG)
	}
}

func TestBody_PotentialEnergySymmetric(t *testing.T) {
	tests := []struct {
		name   string
		ma, mb float64
		pa, pb Vector
	}{
		{"unit", 1, 1, Zero, Vec(1, 0, 0)},
		{"earth moon", 5.972e24, 7.348e22, Zero, Vec(3.844e8, 0, 0)},
		{"skew", 3.5, 0.25, Vec(-1, 2, 7), Vec(4, -9, 0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustBody(t, "a", tt.ma, tt.pa, Zero)
			b := mustBody(t, "b", tt.mb, tt.pb, Zero)
			if ab, ba := a.PotentialEnergyWith(b, DefaultG), b.PotentialEnergyWith(a, DefaultG); ab != ba {
				t.Errorf("asymmetric potential: %v vs %v", ab, ba)
			}
		})
	}
}

func TestBody_SelfPotentialIsZero(t *testing.T) {
	for _, m := range []float64{1e-3, 1, 5.972e24} {
		b := mustBody(t, "self", m, Vec(m, -m, 3), Zero)
		if got := b.PotentialEnergyWith(b, DefaultG); got != 0 {
			t.Errorf("self potential = %v", got)
		}
	}
}

func TestBody_CoincidentPotential(t *testing.T) {
	a := mustBody(t, "a", 1, Vec(2, 2, 2), Zero)
	b := mustBody(t, "b", 1, Vec(2, 2, 2), Zero)
	if got := a.PotentialEnergyWith(b, DefaultG); !math.IsInf(got, -1) {
		t.Errorf("coincident potential = %v, want -Inf", got)
	}
}

func TestBody_Clone(t *testing.T) {
	b := mustBody(t, "a", 1, Vec(1, 0, 0), Vec(0, 1, 0))
	c := b.Clone()
	c.Move(1)
	if !b.Position.Equal(Vec(1, 0, 0)) {
		t.Error("clone shares state with original")
	}
}
