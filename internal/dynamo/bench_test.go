package dynamo

import (
	"fmt"
	"math/rand"
	"testing"
)

func benchSystem(n, workers int) *System {
	rng := rand.New(rand.NewSource(1))
	s := NewSystem(WithG(1), WithWorkers(workers))
	for i := 0; i < n; i++ {
		pos := Vec(rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64())
		vel := Vec(rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()).Scale(0.1)
		_ = s.AddBody(fmt.Sprintf("b%d", i), 1+rng.Float64(), pos, vel)
	}
	return s
}

func BenchmarkComputeForces(b *testing.B) {
	for _, n := range []int{16, 128, 512} {
		b.Run(fmt.Sprintf("serial/%d", n), func(b *testing.B) {
			s := benchSystem(n, 1)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s.ComputeForces()
			}
		})
		b.Run(fmt.Sprintf("parallel/%d", n), func(b *testing.B) {
			s := benchSystem(n, 0)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s.ComputeForces()
			}
		})
	}
}

func BenchmarkStep(b *testing.B) {
	s := benchSystem(128, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Step(1e-4)
	}
}

func TestParallelFor_CoversRange(t *testing.T) {
	tests := []struct {
		n, minChunk, workers int
	}{
		{0, 4, 4},
		{3, 4, 4},
		{100, 16, 4},
		{100, 10, 3},
		{17, 1, 8},
	}

	for _, tt := range tests {
		seen := make([]int, tt.n)
		chunks := make([]int, tt.workers+1)
		used := ParallelFor(tt.n, tt.minChunk, tt.workers, func(w, start, end int) {
			chunks[w]++
			for i := start; i < end; i++ {
				seen[i]++
			}
		})
		for i, c := range seen {
			if c != 1 {
				t.Errorf("n=%d: index %d visited %d times", tt.n, i, c)
			}
		}
		for w := 0; w < used; w++ {
			if chunks[w] != 1 {
				t.Errorf("n=%d: worker %d ran %d times", tt.n, w, chunks[w])
			}
		}
	}
}
