package sim

import (
	"context"
	"sync"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// MetricFactory builds a fresh metric per run so runs never share state.
type MetricFactory func() Metric

// Ensemble runs independent clones of one system with different time steps.
// It is used to compare how energy drift depends on dt.
type Ensemble struct {
	base    *Simulator
	metrics []MetricFactory
}

func NewEnsemble(s *Simulator, metrics ...MetricFactory) *Ensemble {
	return &Ensemble{base: s, metrics: metrics}
}

// Run simulates a clone of sys for every dt in dts, concurrently. The input
// system is not modified. Results are returned in the order of dts.
func (e *Ensemble) Run(ctx context.Context, sys *dynamo.System, cfg Config, dts []float64) ([]*Result, error) {
	results := make([]*Result, len(dts))
	errs := make([]error, len(dts))

	var wg sync.WaitGroup
	for i, dt := range dts {
		wg.Add(1)
		go func(idx int, clone *dynamo.System, dt float64) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Dt = dt

			s := New(e.base.logger.With("dt", dt))
			for _, mk := range e.metrics {
				s.AddMetric(mk())
			}

			results[idx], errs[idx] = s.Run(ctx, clone, cfgCopy)
		}(i, sys.Clone(), dt)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
