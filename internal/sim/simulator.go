package sim

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// maxPrealloc bounds the sample slice allocated before a run starts.
const maxPrealloc = 4096

type Simulator struct {
	logger    *slog.Logger
	metrics   []Metric
	observers []Observer
}

// New returns a Simulator that logs to logger. A nil logger discards output.
func New(logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Simulator{
		logger:    logger,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run advances sys in place until cfg.Duration is covered. The clock starts at
// zero and is advanced by dt after every step while t < Duration, so rounding
// in the accumulated time can add one step over Duration/dt. On cancellation
// the partial result is returned together with ctx.Err().
func (s *Simulator) Run(ctx context.Context, sys *dynamo.System, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sys.Len() == 0 {
		return nil, ErrNoBodies
	}

	every := cfg.RecordEvery
	if every < 1 {
		every = 1
	}

	capacity := cfg.EstimatedSteps()/every + 1
	if capacity > maxPrealloc {
		capacity = maxPrealloc
	}
	result := &Result{
		Samples: make([]Sample, 0, capacity),
		Initial: sys.Diagnostics(),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	s.logger.Info("run started",
		"bodies", sys.Len(),
		"dt", cfg.Dt,
		"duration", cfg.Duration,
		"g", sys.G(),
		"workers", sys.Workers(),
	)
	start := time.Now()

	var runErr error
	t := 0.0
	for i := 0; t < cfg.Duration; i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		sys.Step(cfg.Dt)
		result.StepsTaken++

		if cfg.ValidateState {
			if err := sys.CheckFinite(); err != nil {
				runErr = &SimulationError{Step: i + 1, Time: t, Wrapped: err}
				break
			}
		}

		sample := newSample(i+1, t, sys.Diagnostics())
		for _, m := range s.metrics {
			m.Observe(sample)
		}
		for _, obs := range s.observers {
			obs.OnStep(sys, sample)
		}
		if i%every == 0 {
			result.Samples = append(result.Samples, sample)
		}

		s.logger.Debug("step",
			"step", sample.Step,
			"t", sample.Time,
			"kinetic", sample.Kinetic,
			"potential", sample.Potential,
		)

		t += cfg.Dt
	}

	result.Final = sys.Diagnostics()
	result.EnergyDrift = relativeDrift(result.Initial.Total, result.Final.Total)
	result.Elapsed = time.Since(start)
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	if runErr != nil {
		s.logger.Warn("run stopped", "steps", result.StepsTaken, "error", runErr)
		return result, runErr
	}

	s.logger.Info("run finished",
		"steps", result.StepsTaken,
		"elapsed", result.Elapsed,
		"energy_drift", result.EnergyDrift,
	)
	return result, nil
}

// relativeDrift is |final-initial|/|initial|, or 0 when initial is zero or
// either value is not finite (a degenerate pair yields -Inf potential).
func relativeDrift(initial, final float64) float64 {
	if initial == 0 || math.IsInf(initial, 0) || math.IsNaN(initial) ||
		math.IsInf(final, 0) || math.IsNaN(final) {
		return 0
	}
	return math.Abs(final-initial) / math.Abs(initial)
}
