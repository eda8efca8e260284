package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

var ErrShortSeries = errors.New("analysis: series too short")

// minSamples is the shortest series with at least one non-DC bin.
const minSamples = 4

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// PowerSpectrum returns the magnitude of the first half of the spectrum of
// data after removing its mean, applying a Hann window and zero-padding to a
// power of two. Bin k has frequency k/(len(padded)*dt).
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	n := nextPow2(len(data))
	padded := make([]float64, n)

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	for i, v := range data {
		padded[i] = v - mean
	}
	window.Apply(padded[:len(data)], window.Hann)

	spectrum := fft.FFTReal(padded)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod returns the period, in the units of dt, of the strongest
// non-DC component of a uniformly sampled series. The peak is refined by
// parabolic interpolation over its neighbours.
func DominantPeriod(data []float64, dt float64) (float64, error) {
	if len(data) < minSamples {
		return 0, ErrShortSeries
	}
	if !(dt > 0) {
		return 0, errors.New("analysis: sample spacing must be positive")
	}

	ps := PowerSpectrum(data)
	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	if ps[peak] == 0 {
		return math.Inf(1), nil
	}

	bin := float64(peak)
	if peak+1 < len(ps) {
		a, b, c := ps[peak-1], ps[peak], ps[peak+1]
		if denom := a - 2*b + c; denom != 0 {
			bin += 0.5 * (a - c) / denom
		}
	}

	n := nextPow2(len(data))
	return float64(n) * dt / bin, nil
}
