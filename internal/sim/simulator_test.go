package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

func twoBody(t *testing.T) *dynamo.System {
	t.Helper()
	sys := dynamo.NewSystem(dynamo.WithG(1))
	if err := sys.AddBody("a", 1, dynamo.Vec(-0.5, 0, 0), dynamo.Vec(0, -0.7, 0)); err != nil {
		t.Fatal(err)
	}
	if err := sys.AddBody("b", 1, dynamo.Vec(0.5, 0, 0), dynamo.Vec(0, 0.7, 0)); err != nil {
		t.Fatal(err)
	}
	return sys
}

func TestSimulatorRun(t *testing.T) {
	sys := twoBody(t)
	s := New(nil)

	result, err := s.Run(context.Background(), sys, Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// ten additions of 0.1 stay just below 1.0, so an eleventh step runs
	if result.StepsTaken != 11 {
		t.Errorf("expected 11 steps, got %d", result.StepsTaken)
	}
	if len(result.Samples) != 11 {
		t.Fatalf("expected 11 samples, got %d", len(result.Samples))
	}

	clock := 0.0
	for i, smp := range result.Samples {
		if smp.Step != i+1 {
			t.Errorf("sample %d has step %d", i, smp.Step)
		}
		if smp.Time != clock {
			t.Errorf("sample %d time = %v, want %v", i, smp.Time, clock)
		}
		clock += 0.1
		if smp.Total != smp.Kinetic+smp.Potential {
			t.Errorf("sample %d total mismatch", i)
		}
		if smp.Momentum.Magnitude() > 1e-12 {
			t.Errorf("sample %d momentum drifted: %v", i, smp.Momentum)
		}
	}

	last := result.Samples[len(result.Samples)-1]
	if last.Kinetic != result.Final.Kinetic {
		t.Error("final diagnostics do not match the last sample")
	}
}

func TestSimulatorStepCount(t *testing.T) {
	tests := []struct {
		dt, duration float64
		steps        int
	}{
		{0.1, 1.0, 11},
		{0.3, 1.0, 4},
		{1.0, 1.0, 1},
		{2.0, 1.0, 1},
		{0.25, 1.0, 4},
		{0.5, 0.75, 2},
	}

	for _, tt := range tests {
		result, err := New(nil).Run(context.Background(), twoBody(t), Config{Dt: tt.dt, Duration: tt.duration})
		if err != nil {
			t.Fatalf("dt=%v: %v", tt.dt, err)
		}
		if result.StepsTaken != tt.steps {
			t.Errorf("dt=%v duration=%v: expected %d steps, got %d", tt.dt, tt.duration, tt.steps, result.StepsTaken)
		}
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
		{"nan dt", Config{Dt: math.NaN(), Duration: 1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(nil).Run(context.Background(), twoBody(t), tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSimulatorNoBodies(t *testing.T) {
	_, err := New(nil).Run(context.Background(), dynamo.NewSystem(), Config{Dt: 1, Duration: 1})
	if !errors.Is(err, ErrNoBodies) {
		t.Errorf("expected ErrNoBodies, got %v", err)
	}
}

func TestSimulatorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(nil)
	s.AddObserver(ObserverFunc(func(_ *dynamo.System, smp Sample) {
		if smp.Step == 3 {
			cancel()
		}
	}))

	result, err := s.Run(ctx, twoBody(t), Config{Dt: 0.01, Duration: 10})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 3 {
		t.Errorf("expected partial result with 3 steps, got %+v", result)
	}
}

func TestSimulatorValidateState(t *testing.T) {
	sys := dynamo.NewSystem()
	if err := sys.AddBody("runaway", 1, dynamo.Zero, dynamo.Vec(math.Inf(1), 0, 0)); err != nil {
		t.Fatal(err)
	}

	_, err := New(nil).Run(context.Background(), sys, Config{Dt: 1, Duration: 5, ValidateState: true})
	var simErr *SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %v", err)
	}
	if simErr.Step != 1 {
		t.Errorf("expected failure at step 1, got %d", simErr.Step)
	}
	if !errors.Is(err, dynamo.ErrNonFinite) {
		t.Errorf("expected wrapped ErrNonFinite, got %v", err)
	}
}

func TestSimulatorDegeneratePairKeepsRunning(t *testing.T) {
	sys := dynamo.NewSystem()
	_ = sys.AddBody("a", 1, dynamo.Zero, dynamo.Zero)
	_ = sys.AddBody("b", 1, dynamo.Zero, dynamo.Zero)

	result, err := New(nil).Run(context.Background(), sys, Config{Dt: 1, Duration: 3, ValidateState: true})
	if err != nil {
		t.Fatalf("degenerate pair must not fail the run: %v", err)
	}
	if !math.IsInf(result.Samples[0].Potential, -1) {
		t.Errorf("expected -Inf potential, got %v", result.Samples[0].Potential)
	}
	if result.EnergyDrift != 0 {
		t.Errorf("expected drift 0 for non-finite energy, got %v", result.EnergyDrift)
	}
}

type countMetric struct {
	count int
}

func (c *countMetric) Name() string   { return "count" }
func (c *countMetric) Observe(Sample) { c.count++ }
func (c *countMetric) Value() float64 { return float64(c.count) }
func (c *countMetric) Reset()         { c.count = 0 }

func TestSimulatorMetrics(t *testing.T) {
	s := New(nil)
	metric := &countMetric{count: 42}
	s.AddMetric(metric)

	result, err := s.Run(context.Background(), twoBody(t), Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if got, ok := result.Metrics["count"]; !ok || got != 11 {
		t.Errorf("expected count metric 11, got %v (present=%v)", got, ok)
	}
}

func TestSimulatorRecordEvery(t *testing.T) {
	s := New(nil)
	seen := 0
	s.AddObserver(ObserverFunc(func(*dynamo.System, Sample) { seen++ }))

	result, err := s.Run(context.Background(), twoBody(t), Config{Dt: 0.1, Duration: 1.0, RecordEvery: 3})
	if err != nil {
		t.Fatal(err)
	}
	if seen != 11 {
		t.Errorf("observer saw %d steps, want 11", seen)
	}
	if len(result.Samples) != 4 {
		t.Errorf("expected 4 recorded samples, got %d", len(result.Samples))
	}
}

func TestEnsembleRun(t *testing.T) {
	sys := twoBody(t)
	before := sys.Bodies()[0].Position

	e := NewEnsemble(New(nil), func() Metric { return &countMetric{} })
	results, err := e.Run(context.Background(), sys, Config{Dt: 1, Duration: 1}, []float64{0.25, 0.125})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].StepsTaken != 4 || results[1].StepsTaken != 8 {
		t.Errorf("unexpected step counts %d, %d", results[0].StepsTaken, results[1].StepsTaken)
	}
	if results[1].Metrics["count"] != 8 {
		t.Errorf("metric not isolated per run: %v", results[1].Metrics["count"])
	}
	if !sys.Bodies()[0].Position.Equal(before) {
		t.Error("ensemble modified the input system")
	}
	if results[0].Initial != results[1].Initial {
		t.Error("runs must start from the same initial state")
	}
}

func TestLimitSamples(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		max   int
		every int
	}{
		{"short run keeps everything", Config{Dt: 1, Duration: 10}, 100, 0},
		{"long run is thinned", Config{Dt: 0.25, Duration: 1000}, 100, 41},
		{"no limit", Config{Dt: 0.25, Duration: 1000}, 0, 0},
		{"invalid config untouched", Config{Dt: 0, Duration: 1000}, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.LimitSamples(tt.max).RecordEvery; got != tt.every {
				t.Errorf("RecordEvery = %d, want %d", got, tt.every)
			}
		})
	}
}

func TestLimitSamplesCapsResult(t *testing.T) {
	cfg := Config{Dt: 0.25, Duration: 1000}.LimitSamples(100)

	result, err := New(nil).Run(context.Background(), twoBody(t), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if result.StepsTaken != 4000 {
		t.Errorf("expected 4000 steps, got %d", result.StepsTaken)
	}
	if len(result.Samples) > 100 {
		t.Errorf("kept %d samples, limit is 100", len(result.Samples))
	}
}
