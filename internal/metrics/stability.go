package metrics

import (
	"math"

	"github.com/san-kum/orbitsim/internal/sim"
)

// Degeneracy reports the fraction of steps whose potential energy was -Inf,
// i.e. steps that ended with at least two distinct bodies at the same position.
type Degeneracy struct {
	name       string
	violations int
	samples    int
}

func NewDegeneracy() *Degeneracy {
	return &Degeneracy{name: "degenerate_fraction"}
}

func (d *Degeneracy) Name() string {
	return d.name
}

func (d *Degeneracy) Observe(s sim.Sample) {
	d.samples++
	if math.IsInf(s.Potential, -1) {
		d.violations++
	}
}

func (d *Degeneracy) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	return float64(d.violations) / float64(d.samples)
}

func (d *Degeneracy) Reset() {
	d.violations = 0
	d.samples = 0
}

// Standard returns the metrics attached to `run` and to menu runs.
func Standard() []sim.Metric {
	return []sim.Metric{NewEnergyDrift(), NewMomentumDrift(), NewDegeneracy()}
}
