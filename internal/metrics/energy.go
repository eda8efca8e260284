package metrics

import (
	"math"

	"github.com/san-kum/orbitsim/internal/sim"
)

// EnergyDrift tracks the largest relative deviation of total energy from the
// first observed sample. Samples with non-finite energy are skipped.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s sim.Sample) {
	energy := s.Total
	if math.IsInf(energy, 0) || math.IsNaN(energy) {
		return
	}

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift tracks the largest |P - P0| in kg·m/s, where P0 is the
// momentum of the first observed sample.
type MomentumDrift struct {
	name     string
	initial  sim.Sample
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(s sim.Sample) {
	if m.samples == 0 {
		m.initial = s
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, s.Momentum.Sub(m.initial.Momentum).Magnitude())
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = sim.Sample{}
	m.maxDrift = 0
	m.samples = 0
}
