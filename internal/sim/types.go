package sim

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

var (
	ErrInvalidConfig = errors.New("sim: invalid run configuration")
	ErrNoBodies      = errors.New("sim: no bodies to simulate")
)

// Sample holds the diagnostics recorded after one step.
// Time is the simulation time at which the step started.
type Sample struct {
	Step            int           `json:"step"`
	Time            float64       `json:"time"`
	Kinetic         float64       `json:"kinetic"`
	Potential       float64       `json:"potential"`
	Total           float64       `json:"total"`
	Momentum        dynamo.Vector `json:"momentum"`
	AngularMomentum dynamo.Vector `json:"angular_momentum"`
}

func newSample(step int, t float64, d dynamo.Diagnostics) Sample {
	return Sample{
		Step:            step,
		Time:            t,
		Kinetic:         d.Kinetic,
		Potential:       d.Potential,
		Total:           d.Total,
		Momentum:        d.Momentum,
		AngularMomentum: d.AngularMomentum,
	}
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(sys *dynamo.System, s Sample)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(sys *dynamo.System, s Sample)

func (f ObserverFunc) OnStep(sys *dynamo.System, s Sample) { f(sys, s) }

type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool
	// RecordEvery keeps every Nth sample in the Result. Observers and
	// metrics still see every step. Values below 1 keep all samples.
	RecordEvery int
}

func (c Config) Validate() error {
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, c.Duration)
	}
	return nil
}

// EstimatedSteps is ceil(Duration/Dt) plus one for the step that rounding of
// the accumulated clock may add. It is 0 for an invalid configuration.
func (c Config) EstimatedSteps() int {
	if c.Validate() != nil {
		return 0
	}
	return int(math.Ceil(c.Duration/c.Dt)) + 1
}

// LimitSamples returns a copy of c whose RecordEvery keeps at most limit
// samples. A non-positive limit leaves c unchanged.
func (c Config) LimitSamples(limit int) Config {
	steps := c.EstimatedSteps()
	if limit > 0 && steps > limit {
		c.RecordEvery = (steps + limit - 1) / limit
	}
	return c
}

type Result struct {
	Samples     []Sample
	Initial     dynamo.Diagnostics
	Final       dynamo.Diagnostics
	Metrics     map[string]float64
	StepsTaken  int
	EnergyDrift float64
	Elapsed     time.Duration
}

// SimulationError wraps an error with the step at which it occurred.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
